package env

import (
	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

// ObjectRecord is the environment record backing `with` statements and a
// realm's global object bindings: every binding is a property on an
// underlying object rather than a private name table.
type ObjectRecord struct {
	outer      Environment
	base       *object.Object
	atoms      *atom.Interner
	withEnv    bool // true for `with` statement environments
}

// NewObjectEnv wraps base as an environment record. withEnv marks a
// `with`-statement environment, whose only effect is that WithBaseObject
// returns base. Symbol.unscopables is not consulted: every property of
// base, own or inherited, is visible to binding resolution.
func NewObjectEnv(outer Environment, base *object.Object, atoms *atom.Interner, withEnv bool) *ObjectRecord {
	return &ObjectRecord{outer: outer, base: base, atoms: atoms, withEnv: withEnv}
}

func (o *ObjectRecord) Outer() Environment { return o.outer }

func (o *ObjectRecord) keyFor(name atom.Atom) value.PropertyKey { return value.StringKey(name) }

func (o *ObjectRecord) HasBinding(name atom.Atom) bool {
	ok, _ := o.base.HasProperty(o.keyFor(name))
	return ok
}

func (o *ObjectRecord) CreateMutableBinding(name atom.Atom, deletable bool) error {
	_, err := o.base.DefineOwnProperty(o.keyFor(name), object.DataDescriptor(value.Undefined, true, true, deletable))
	return err
}

func (o *ObjectRecord) CreateImmutableBinding(name atom.Atom, strict bool) error {
	_, err := o.base.DefineOwnProperty(o.keyFor(name), object.DataDescriptor(value.Undefined, false, true, false))
	return err
}

func (o *ObjectRecord) InitializeBinding(name atom.Atom, v value.Value) error {
	_, err := o.base.Set(o.keyFor(name), v, value.Object(o.base))
	return err
}

func (o *ObjectRecord) SetMutableBinding(name atom.Atom, v value.Value, strict bool) error {
	ok, err := o.base.Set(o.keyFor(name), v, value.Object(o.base))
	if err != nil {
		return err
	}
	if !ok && strict {
		return diag.New(diag.KindType, diag.Span{}, "cannot assign to read-only property %q", o.resolveName(name))
	}
	return nil
}

func (o *ObjectRecord) GetBindingValue(name atom.Atom, strict bool) (value.Value, error) {
	has, _ := o.base.HasProperty(o.keyFor(name))
	if !has {
		if strict {
			return value.Value{}, diag.New(diag.KindReference, diag.Span{}, "%s is not defined", o.resolveName(name))
		}
		return value.Undefined, nil
	}
	return o.base.Get(o.keyFor(name), value.Object(o.base))
}

func (o *ObjectRecord) DeleteBinding(name atom.Atom) (bool, error) {
	return o.base.Delete(o.keyFor(name))
}

func (o *ObjectRecord) HasThisBinding() bool          { return false }
func (o *ObjectRecord) HasSuperBinding() bool         { return false }
func (o *ObjectRecord) WithBaseObject() *object.Object {
	if o.withEnv {
		return o.base
	}
	return nil
}
func (o *ObjectRecord) GetThisBinding() (value.Value, error) {
	return value.Value{}, diag.New(diag.KindReference, diag.Span{}, "no `this` binding in this environment")
}

func (o *ObjectRecord) resolveName(name atom.Atom) string {
	if o.atoms == nil {
		return "<binding>"
	}
	return o.atoms.Resolve(name)
}
