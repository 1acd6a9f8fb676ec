// Package object implements property storage, the prototype chain, and
// internal-method dispatch (component C5). Objects carry a shape + slot
// vector core plus an optional exotic kind tag that selects an
// internal-methods vtable — a capability split where new exotic kinds
// are added by defining a new kind constant and its vtable, not a
// subtype hierarchy.
package object

import (
	"esprit/internal/atom"
	"esprit/internal/shape"
	"esprit/internal/value"
)

// Kind tags which internal-methods vtable an object uses.
type Kind uint8

const (
	KindOrdinary Kind = iota
	KindArray
	KindFunction
	KindBoundFunction
	KindError
	KindArguments
	KindProxy
)

// Methods is the internal-method vtable. Ordinary objects
// use ordinaryMethods; exotic kinds override only the methods whose
// behavior actually differs (e.g. Array overrides DefineOwnProperty and
// OwnPropertyKeys to maintain `length` and numeric-key ordering).
type Methods struct {
	GetPrototypeOf    func(o *Object) value.Value
	SetPrototypeOf    func(o *Object, proto value.Value) bool
	IsExtensible      func(o *Object) bool
	PreventExtensions func(o *Object) bool
	GetOwnProperty    func(o *Object, key value.PropertyKey) (Descriptor, bool)
	DefineOwnProperty func(o *Object, key value.PropertyKey, desc Descriptor) (bool, error)
	HasProperty       func(o *Object, key value.PropertyKey) (bool, error)
	Get               func(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error)
	Set               func(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) (bool, error)
	Delete            func(o *Object, key value.PropertyKey) (bool, error)
	OwnPropertyKeys   func(o *Object) []value.PropertyKey

	// Call and Construct are nil for non-callable, non-constructible
	// objects; IsCallable/IsConstructible check them directly.
	Call      func(o *Object, this value.Value, args []value.Value) (value.Value, error)
	Construct func(o *Object, args []value.Value, newTarget *Object) (value.Value, error)
}

// Object is the heap-allocated representation of every ECMAScript object
// value. It implements both value.HeapRef (so it can be wrapped in a
// value.Value) and heap.Cell (so the collector can trace and sweep it).
type Object struct {
	shape      *shape.Shape
	slots      []value.Value
	elements   *elements
	extensible bool

	kind    Kind
	methods *Methods

	// ext holds kind-specific state: *arrayExt or *functionExt (nil for
	// other kinds).
	ext interface{}

	atoms *atom.Interner
}

// New creates an ordinary object with prototype proto (value.Null for no
// prototype) using atoms to intern property keys.
func New(proto value.Value, atoms *atom.Interner) *Object {
	return &Object{
		shape:      shape.NewRoot(proto),
		extensible: true,
		kind:       KindOrdinary,
		methods:    &ordinaryMethods,
		atoms:      atoms,
	}
}

// TypeOfTag implements value.HeapRef.
func (o *Object) TypeOfTag() string {
	if o.IsCallable() {
		return "function"
	}
	return "object"
}

// Trace reports every Value this object holds strongly: its slots, its
// indexed elements, and its shape's prototype link.
func (o *Object) Trace(visit func(value.Value)) {
	for _, v := range o.slots {
		visit(v)
	}
	if o.elements != nil {
		o.elements.trace(visit)
	}
	visit(o.shape.Prototype())
	switch ext := o.ext.(type) {
	case *functionExt:
		if ext.homeObject != nil {
			visit(value.Object(ext.homeObject))
		}
		if ext.boundThis != nil {
			visit(*ext.boundThis)
		}
		for _, a := range ext.boundArgs {
			visit(a)
		}
	}
}

// Kind reports the exotic-object kind tag.
func (o *Object) Kind() Kind { return o.kind }

// Shape returns the object's current shape.
func (o *Object) Shape() *shape.Shape { return o.shape }

// Atoms returns the interner this object resolves string property keys
// against.
func (o *Object) Atoms() *atom.Interner { return o.atoms }

// IsCallable reports whether [[Call]] is implemented.
func (o *Object) IsCallable() bool { return o.methods.Call != nil }

// IsConstructible reports whether [[Construct]] is implemented.
func (o *Object) IsConstructible() bool { return o.methods.Construct != nil }

// --- internal-method dispatch: thin forwarders onto the vtable ---

func (o *Object) GetPrototypeOf() value.Value { return o.methods.GetPrototypeOf(o) }

func (o *Object) SetPrototypeOf(proto value.Value) bool { return o.methods.SetPrototypeOf(o, proto) }

func (o *Object) IsExtensible() bool { return o.methods.IsExtensible(o) }

func (o *Object) PreventExtensions() bool { return o.methods.PreventExtensions(o) }

func (o *Object) GetOwnProperty(key value.PropertyKey) (Descriptor, bool) {
	return o.methods.GetOwnProperty(o, key)
}

func (o *Object) DefineOwnProperty(key value.PropertyKey, desc Descriptor) (bool, error) {
	return o.methods.DefineOwnProperty(o, key, desc)
}

func (o *Object) HasProperty(key value.PropertyKey) (bool, error) {
	return o.methods.HasProperty(o, key)
}

func (o *Object) Get(key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return o.methods.Get(o, key, receiver)
}

func (o *Object) Set(key value.PropertyKey, v value.Value, receiver value.Value) (bool, error) {
	return o.methods.Set(o, key, v, receiver)
}

func (o *Object) Delete(key value.PropertyKey) (bool, error) {
	return o.methods.Delete(o, key)
}

func (o *Object) OwnPropertyKeys() []value.PropertyKey {
	return o.methods.OwnPropertyKeys(o)
}

func (o *Object) Call(this value.Value, args []value.Value) (value.Value, error) {
	if o.methods.Call == nil {
		return value.Value{}, newTypeError("value is not callable")
	}
	return o.methods.Call(o, this, args)
}

func (o *Object) Construct(args []value.Value, newTarget *Object) (value.Value, error) {
	if o.methods.Construct == nil {
		return value.Value{}, newTypeError("value is not a constructor")
	}
	return o.methods.Construct(o, args, newTarget)
}

// GetSlot and SetSlot are the fast-path accessors the VM's property
// opcodes use once a shape lookup has resolved a slot index.
func (o *Object) GetSlot(idx int) value.Value {
	if idx < 0 || idx >= len(o.slots) {
		return value.Undefined
	}
	return o.slots[idx]
}

func (o *Object) SetSlot(idx int, v value.Value) {
	for idx >= len(o.slots) {
		o.slots = append(o.slots, value.Undefined)
	}
	o.slots[idx] = v
}

func newTypeError(msg string) error {
	return &simpleError{kind: "TypeError", msg: msg}
}

// simpleError is a minimal error carrier used only before internal/diag's
// richer *diag.Error is wired through the VM's call sites; it satisfies
// the standard error interface so Methods functions can return plain Go
// errors during bring-up.
type simpleError struct {
	kind string
	msg  string
}

func (e *simpleError) Error() string { return e.kind + ": " + e.msg }
