package object

import (
	"esprit/internal/atom"
	"esprit/internal/shape"
	"esprit/internal/value"
)

// NativeFunc is a function body implemented in Go rather than compiled
// bytecode: the shape every built-in method and the bootstrap layer uses.
type NativeFunc func(this value.Value, args []value.Value) (value.Value, error)

// NativeConstructFunc is a native [[Construct]] body.
type NativeConstructFunc func(args []value.Value, newTarget *Object) (value.Value, error)

// functionExt is the kind-specific state of a KindFunction or
// KindBoundFunction object. invoke/construct are set once, at creation,
// by whichever layer produces the function: NewNativeFunction for
// built-ins, or internal/vm for interpreted closures (via SetInvoker),
// keeping this package free of an import on internal/vm or
// internal/compiler.
type functionExt struct {
	name   string
	length int

	invoke    func(o *Object, this value.Value, args []value.Value) (value.Value, error)
	construct func(o *Object, args []value.Value, newTarget *Object) (value.Value, error)

	homeObject *Object
	isArrow    bool

	boundTarget *Object
	boundThis   *value.Value
	boundArgs   []value.Value

	// code and closureEnv are opaque handles the VM attaches to an
	// interpreted function: a *compiler.CodeBlock and an *env.Environment
	// respectively. internal/object never dereferences them.
	code       interface{}
	closureEnv interface{}
}

var functionMethods = func() Methods {
	m := ordinaryMethods
	m.Call = func(o *Object, this value.Value, args []value.Value) (value.Value, error) {
		ext := o.ext.(*functionExt)
		if ext.invoke == nil {
			return value.Value{}, newTypeError(ext.name + " has no callable body bound yet")
		}
		return ext.invoke(o, this, args)
	}
	return m
}()

var constructibleFunctionMethods = func() Methods {
	m := functionMethods
	m.Construct = func(o *Object, args []value.Value, newTarget *Object) (value.Value, error) {
		ext := o.ext.(*functionExt)
		if ext.construct == nil {
			return value.Value{}, newTypeError(ext.name + " is not a constructor")
		}
		return ext.construct(o, args, newTarget)
	}
	return m
}()

func newFunctionObject(proto value.Value, atoms *atom.Interner, name string, length int, kind Kind, methods *Methods) *Object {
	o := &Object{
		shape:      shape.NewRoot(proto),
		extensible: true,
		kind:       kind,
		methods:    methods,
		atoms:      atoms,
	}
	if atoms != nil {
		defineHidden(o, atoms, "name", value.String(name))
		defineHidden(o, atoms, "length", value.Number(float64(length)))
	}
	return o
}

func defineHidden(o *Object, atoms *atom.Interner, name string, v value.Value) {
	key, err := value.ToPropertyKeyInterned(value.String(name), atoms)
	if err != nil {
		return
	}
	_, _ = o.DefineOwnProperty(key, DataDescriptor(v, false, false, true))
}

// NewNativeFunction builds a KindFunction object whose [[Call]] invokes fn.
func NewNativeFunction(proto value.Value, atoms *atom.Interner, name string, length int, fn NativeFunc) *Object {
	o := newFunctionObject(proto, atoms, name, length, KindFunction, &functionMethods)
	o.ext = &functionExt{
		name:   name,
		length: length,
		invoke: func(_ *Object, this value.Value, args []value.Value) (value.Value, error) { return fn(this, args) },
	}
	return o
}

// NewNativeConstructor builds a KindFunction object that is both callable
// and constructible.
func NewNativeConstructor(proto value.Value, atoms *atom.Interner, name string, length int, call NativeFunc, construct NativeConstructFunc) *Object {
	o := newFunctionObject(proto, atoms, name, length, KindFunction, &constructibleFunctionMethods)
	o.ext = &functionExt{
		name:   name,
		length: length,
		invoke: func(_ *Object, this value.Value, args []value.Value) (value.Value, error) { return call(this, args) },
		construct: func(_ *Object, args []value.Value, newTarget *Object) (value.Value, error) {
			return construct(args, newTarget)
		},
	}
	return o
}

// NewInterpretedFunction builds a KindFunction object ready for
// internal/vm to attach compiled code via SetInvoker. This keeps function
// *construction* (in the compiler/VM) decoupled from function
// *representation* (here).
func NewInterpretedFunction(proto value.Value, atoms *atom.Interner, name string, length int, code, closureEnv interface{}, isArrow bool) *Object {
	o := newFunctionObject(proto, atoms, name, length, KindFunction, &constructibleFunctionMethods)
	o.ext = &functionExt{
		name:       name,
		length:     length,
		code:       code,
		closureEnv: closureEnv,
		isArrow:    isArrow,
	}
	return o
}

// SetInvoker lets internal/vm attach the interpreted [[Call]]/[[Construct]]
// bodies once a compiled CodeBlock is available.
func (o *Object) SetInvoker(call func(o *Object, this value.Value, args []value.Value) (value.Value, error),
	construct func(o *Object, args []value.Value, newTarget *Object) (value.Value, error)) {
	ext := o.ext.(*functionExt)
	ext.invoke = call
	ext.construct = construct
}

// Code and ClosureEnv expose the opaque handles internal/vm attached at
// creation time.
func (o *Object) Code() interface{}       { return o.ext.(*functionExt).code }
func (o *Object) ClosureEnv() interface{} { return o.ext.(*functionExt).closureEnv }
func (o *Object) IsArrow() bool           { return o.ext.(*functionExt).isArrow }

// HomeObject returns the [[HomeObject]] used to resolve `super`.
func (o *Object) HomeObject() *Object { return o.ext.(*functionExt).homeObject }

// SetHomeObject sets [[HomeObject]] for a method.
func (o *Object) SetHomeObject(home *Object) { o.ext.(*functionExt).homeObject = home }

// Bind implements the core of Function.prototype.bind: a KindBoundFunction
// whose [[Call]] prepends boundArgs and forces boundThis.
func Bind(target *Object, atoms *atom.Interner, boundThis value.Value, boundArgs []value.Value, proto value.Value) *Object {
	name := "bound " + target.ext.(*functionExt).name
	length := target.ext.(*functionExt).length - len(boundArgs)
	if length < 0 {
		length = 0
	}
	o := newFunctionObject(proto, atoms, name, length, KindBoundFunction, &constructibleFunctionMethods)
	bt := boundThis
	o.ext = &functionExt{
		name:        name,
		length:      length,
		boundTarget: target,
		boundThis:   &bt,
		boundArgs:   boundArgs,
		invoke: func(_ *Object, _ value.Value, args []value.Value) (value.Value, error) {
			return target.Call(bt, append(append([]value.Value{}, boundArgs...), args...))
		},
		construct: func(_ *Object, args []value.Value, newTarget *Object) (value.Value, error) {
			return target.Construct(append(append([]value.Value{}, boundArgs...), args...), newTarget)
		},
	}
	return o
}
