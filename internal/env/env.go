// Package env implements the environment-record hierarchy (C6):
// Declarative, Object, Function, and Global records, each exposing the
// binding API the compiler's scope analysis and the VM's binding opcodes
// rely on.
package env

import (
	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

// Environment is the common interface every environment-record variant
// implements. Every binding access goes through it by name; the compiler
// emits no slot-indexed binding access.
type Environment interface {
	HasBinding(name atom.Atom) bool
	CreateMutableBinding(name atom.Atom, deletable bool) error
	CreateImmutableBinding(name atom.Atom, strict bool) error
	InitializeBinding(name atom.Atom, v value.Value) error
	SetMutableBinding(name atom.Atom, v value.Value, strict bool) error
	GetBindingValue(name atom.Atom, strict bool) (value.Value, error)
	DeleteBinding(name atom.Atom) (bool, error)
	HasThisBinding() bool
	HasSuperBinding() bool
	WithBaseObject() *object.Object
	GetThisBinding() (value.Value, error)
	Outer() Environment
}

// binding is one name's record inside a Declarative environment.
type binding struct {
	mutable     bool
	strict      bool
	initialized bool
	deletable   bool
	value       value.Value
}

// Declarative implements let/const/catch/function-body environments: a
// flat table of name -> binding, chained to an outer environment.
type Declarative struct {
	outer    Environment
	atoms    *atom.Interner
	bindings map[atom.Atom]*binding
	// slots is index-addressed storage reached only through GetSlot/
	// SetSlot; no compiled code uses it, so every binding lives in
	// bindings.
	slots []value.Value
}

// NewDeclarative creates an empty declarative environment sized for
// slotCount compile-time-resolved bindings, chained to outer. atoms
// resolves bindings created in this environment back to their source
// text for diagnostics.
func NewDeclarative(outer Environment, atoms *atom.Interner, slotCount int) *Declarative {
	d := &Declarative{outer: outer, atoms: atoms, bindings: map[atom.Atom]*binding{}}
	if slotCount > 0 {
		d.slots = make([]value.Value, slotCount)
		for i := range d.slots {
			d.slots[i] = value.Empty
		}
	}
	return d
}

// GetSlot/SetSlot index slots directly: no name lookup and no TDZ check
// (IsSlotTDZ reports whether a slot still holds the TDZ sentinel).
func (d *Declarative) GetSlot(i int) value.Value { return d.slots[i] }
func (d *Declarative) SetSlot(i int, v value.Value) { d.slots[i] = v }

// IsSlotTDZ reports whether slot i still holds the "empty" TDZ sentinel.
func (d *Declarative) IsSlotTDZ(i int) bool { return d.slots[i].IsEmpty() }

func (d *Declarative) Outer() Environment { return d.outer }

func (d *Declarative) HasBinding(name atom.Atom) bool {
	_, ok := d.bindings[name]
	return ok
}

func (d *Declarative) CreateMutableBinding(name atom.Atom, deletable bool) error {
	d.bindings[name] = &binding{mutable: true, deletable: deletable, value: value.Undefined, initialized: true}
	return nil
}

func (d *Declarative) CreateImmutableBinding(name atom.Atom, strict bool) error {
	d.bindings[name] = &binding{mutable: false, strict: strict}
	return nil
}

// CreateLetBinding declares name as a mutable binding that starts in its
// temporal dead zone, unlike CreateMutableBinding (which is used for `var`
// and initializes immediately to undefined). InitializeBinding clears the
// TDZ once the `let` declaration's own initializer (or implicit undefined
// initializer) runs.
func (d *Declarative) CreateLetBinding(name atom.Atom) error {
	d.bindings[name] = &binding{mutable: true}
	return nil
}

func (d *Declarative) InitializeBinding(name atom.Atom, v value.Value) error {
	b, ok := d.bindings[name]
	if !ok {
		return diag.New(diag.KindReference, diag.Span{}, "cannot initialize unknown binding")
	}
	b.value = v
	b.initialized = true
	return nil
}

func (d *Declarative) SetMutableBinding(name atom.Atom, v value.Value, strict bool) error {
	b, ok := d.bindings[name]
	if !ok {
		if strict {
			return diag.New(diag.KindReference, diag.Span{}, "assignment to an undeclared variable")
		}
		d.bindings[name] = &binding{mutable: true, deletable: true, initialized: true, value: v}
		return nil
	}
	if !b.initialized {
		return diag.New(diag.KindReference, diag.Span{}, "cannot assign before initialization")
	}
	if !b.mutable {
		if strict || b.strict {
			return diag.New(diag.KindType, diag.Span{}, "assignment to constant binding")
		}
		return nil
	}
	b.value = v
	return nil
}

func (d *Declarative) GetBindingValue(name atom.Atom, strict bool) (value.Value, error) {
	b, ok := d.bindings[name]
	if !ok {
		return value.Value{}, diag.New(diag.KindReference, diag.Span{}, "%s is not defined", d.resolveName(name))
	}
	if !b.initialized {
		return value.Value{}, diag.New(diag.KindReference, diag.Span{}, "cannot access binding before initialization")
	}
	return b.value, nil
}

func (d *Declarative) DeleteBinding(name atom.Atom) (bool, error) {
	b, ok := d.bindings[name]
	if !ok {
		return true, nil
	}
	if !b.deletable {
		return false, nil
	}
	delete(d.bindings, name)
	return true, nil
}

func (d *Declarative) resolveName(name atom.Atom) string {
	if d.atoms == nil {
		return "<binding>"
	}
	return d.atoms.Resolve(name)
}

func (d *Declarative) HasThisBinding() bool            { return false }
func (d *Declarative) HasSuperBinding() bool            { return false }
func (d *Declarative) WithBaseObject() *object.Object   { return nil }
func (d *Declarative) GetThisBinding() (value.Value, error) {
	return value.Value{}, diag.New(diag.KindReference, diag.Span{}, "no `this` binding in this environment")
}
