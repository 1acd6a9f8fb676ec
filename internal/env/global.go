package env

import (
	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

// Global is the hybrid environment record a realm's top level runs in:
// an Object record over the global object for `var`/function bindings,
// a Declarative record for top-level `let`/`const`/class, and a
// var-names set recording every `var` ever declared.
type Global struct {
	objectRecord *ObjectRecord
	declRecord   *Declarative
	varNames     map[atom.Atom]bool
	globalObj    *object.Object
}

// NewGlobal creates the global environment for a realm whose global
// object is globalObj.
func NewGlobal(globalObj *object.Object, atoms *atom.Interner) *Global {
	return &Global{
		objectRecord: NewObjectEnv(nil, globalObj, atoms, false),
		declRecord:   NewDeclarative(nil, atoms, 0),
		varNames:     map[atom.Atom]bool{},
		globalObj:    globalObj,
	}
}

func (g *Global) Outer() Environment { return nil }

func (g *Global) HasBinding(name atom.Atom) bool {
	return g.declRecord.HasBinding(name) || g.objectRecord.HasBinding(name)
}

func (g *Global) CreateMutableBinding(name atom.Atom, deletable bool) error {
	return g.declRecord.CreateMutableBinding(name, deletable)
}

func (g *Global) CreateImmutableBinding(name atom.Atom, strict bool) error {
	return g.declRecord.CreateImmutableBinding(name, strict)
}

// CreateLetBinding declares a top-level `let`/`const`/class name in the
// global declarative record (not as a global-object property), TDZ'd
// until InitializeBinding runs. Picked up by internal/vm's OpDeclareLet
// handler via an interface assertion (see DESIGN.md's C12 entry).
func (g *Global) CreateLetBinding(name atom.Atom) error {
	return g.declRecord.CreateLetBinding(name)
}

func (g *Global) InitializeBinding(name atom.Atom, v value.Value) error {
	if g.declRecord.HasBinding(name) {
		return g.declRecord.InitializeBinding(name, v)
	}
	return g.objectRecord.InitializeBinding(name, v)
}

func (g *Global) SetMutableBinding(name atom.Atom, v value.Value, strict bool) error {
	if g.declRecord.HasBinding(name) {
		return g.declRecord.SetMutableBinding(name, v, strict)
	}
	return g.objectRecord.SetMutableBinding(name, v, strict)
}

func (g *Global) GetBindingValue(name atom.Atom, strict bool) (value.Value, error) {
	if g.declRecord.HasBinding(name) {
		return g.declRecord.GetBindingValue(name, strict)
	}
	return g.objectRecord.GetBindingValue(name, strict)
}

func (g *Global) DeleteBinding(name atom.Atom) (bool, error) {
	if g.declRecord.HasBinding(name) {
		return g.declRecord.DeleteBinding(name)
	}
	ok, err := g.objectRecord.DeleteBinding(name)
	if ok {
		delete(g.varNames, name)
	}
	return ok, err
}

func (g *Global) HasThisBinding() bool            { return true }
func (g *Global) HasSuperBinding() bool           { return false }
func (g *Global) WithBaseObject() *object.Object  { return nil }
func (g *Global) GetThisBinding() (value.Value, error) {
	return value.Object(g.globalObj), nil
}

// HasVarDeclaration reports whether name was ever declared with `var`.
func (g *Global) HasVarDeclaration(name atom.Atom) bool { return g.varNames[name] }

// HasLexicalDeclaration reports whether name is a top-level let/const/class.
func (g *Global) HasLexicalDeclaration(name atom.Atom) bool { return g.declRecord.HasBinding(name) }

// HasRestrictedGlobalProperty reports whether name names a
// non-configurable own property of the global object, which blocks a new
// top-level lexical declaration of the same name.
func (g *Global) HasRestrictedGlobalProperty(name atom.Atom) bool {
	desc, ok := g.globalObj.GetOwnProperty(value.StringKey(name))
	return ok && !desc.Configurable
}

// CanDeclareGlobalVar reports whether a `var` declaration of name is
// permitted: either the global object is extensible, or it already has
// an own property by that name.
func (g *Global) CanDeclareGlobalVar(name atom.Atom) bool {
	if _, ok := g.globalObj.GetOwnProperty(value.StringKey(name)); ok {
		return true
	}
	return g.globalObj.IsExtensible()
}

// CanDeclareGlobalFunction mirrors CanDeclareGlobalVar but additionally
// requires an existing own property to be configurable or a
// writable+enumerable data property.
func (g *Global) CanDeclareGlobalFunction(name atom.Atom) bool {
	desc, ok := g.globalObj.GetOwnProperty(value.StringKey(name))
	if !ok {
		return g.globalObj.IsExtensible()
	}
	if desc.Configurable {
		return true
	}
	return !desc.IsAccessor() && desc.Writable && desc.Enumerable
}

// CreateGlobalVarBinding declares name as a `var`, recording it in the
// var-names set and creating (if absent) an own property on the global
// object.
func (g *Global) CreateGlobalVarBinding(name atom.Atom, deletable bool) error {
	if _, ok := g.globalObj.GetOwnProperty(value.StringKey(name)); !ok && g.globalObj.IsExtensible() {
		if _, err := g.globalObj.DefineOwnProperty(value.StringKey(name), object.DataDescriptor(value.Undefined, true, true, deletable)); err != nil {
			return diag.Wrap(diag.Span{}, err)
		}
	}
	g.varNames[name] = true
	return nil
}

// CreateGlobalFunctionBinding declares name as a hoisted function
// binding, eagerly installing v (unlike CreateGlobalVarBinding, which
// leaves the value as undefined until the initializer runs).
func (g *Global) CreateGlobalFunctionBinding(name atom.Atom, v value.Value, deletable bool) error {
	existing, ok := g.globalObj.GetOwnProperty(value.StringKey(name))
	var desc object.Descriptor
	if !ok || existing.Configurable {
		desc = object.DataDescriptor(v, true, true, deletable)
	} else {
		desc = object.DataDescriptor(v, existing.Writable, existing.Enumerable, existing.Configurable)
	}
	if _, err := g.globalObj.DefineOwnProperty(value.StringKey(name), desc); err != nil {
		return diag.Wrap(diag.Span{}, err)
	}
	g.varNames[name] = true
	return nil
}
