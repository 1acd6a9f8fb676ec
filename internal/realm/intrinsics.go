package realm

import (
	"esprit/internal/atom"
	"esprit/internal/heap"
	"esprit/internal/object"
	"esprit/internal/value"
)

// Intrinsics is the realm's table of built-in prototype objects, the
// bottom of every object's prototype chain. The built-in function and
// property layer (outside this engine's core) populates these further;
// this package only establishes the prototype chain. It installs no
// methods: FunctionPrototype is itself a callable no-op returning
// undefined, and nothing is defined on the other three.
type Intrinsics struct {
	ObjectPrototype   *object.Object
	FunctionPrototype *object.Object
	ArrayPrototype    *object.Object
	ErrorPrototype    *object.Object
}

// newIntrinsics builds the prototype chain bottom-up:
// ObjectPrototype has no prototype of its own; FunctionPrototype and
// ArrayPrototype and ErrorPrototype all inherit from it.
func newIntrinsics(h *heap.Heap, atoms *atom.Interner) *Intrinsics {
	objProto := object.New(value.Null, atoms)
	h.Allocate(objProto)

	funcProto := object.NewNativeFunction(value.Object(objProto), atoms, "", 0,
		func(this value.Value, args []value.Value) (value.Value, error) { return value.Undefined, nil })
	h.Allocate(funcProto)

	arrProto := object.NewArray(value.Object(objProto), atoms)
	h.Allocate(arrProto)

	errProto := object.New(value.Object(objProto), atoms)
	h.Allocate(errProto)

	return &Intrinsics{
		ObjectPrototype:   objProto,
		FunctionPrototype: funcProto,
		ArrayPrototype:    arrProto,
		ErrorPrototype:    errProto,
	}
}
