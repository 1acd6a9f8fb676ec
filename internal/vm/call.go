package vm

import (
	"esprit/internal/compiler"
	"esprit/internal/diag"
	"esprit/internal/env"
	"esprit/internal/object"
	"esprit/internal/value"
)

// makeClosure implements OpMakeClosure: wraps child in an interpreted
// function object capturing f.env as its closure scope. Ordinary
// functions (not arrows, not generators — generators get their own
// object shape, see coroutine.go) get a fresh `prototype` object with a
// back-pointing `constructor`, the same pair OpClassHeritage later
// rewires for a derived class.
func (vm *VM) makeClosure(f *CallFrame, child *compiler.CodeBlock) *object.Object {
	name := child.Name
	if name == "<anonymous>" {
		name = ""
	}
	fn := object.NewInterpretedFunction(value.Object(vm.realm.Intrinsics.FunctionPrototype),
		vm.realm.Atoms, name, child.NumParams, child, f.env, child.IsArrow)
	vm.realm.Heap.Allocate(fn)
	fn.SetInvoker(
		func(o *object.Object, this value.Value, args []value.Value) (value.Value, error) {
			return vm.invokeInterpreted(o, this, args)
		},
		func(o *object.Object, args []value.Value, newTarget *object.Object) (value.Value, error) {
			return vm.constructInterpreted(o, args, newTarget)
		},
	)
	if !child.IsArrow && !child.IsGenerator {
		proto := vm.newObject()
		ctorKey := value.StringKey(vm.realm.Atoms.Intern("constructor"))
		if _, err := proto.DefineOwnProperty(ctorKey, object.DataDescriptor(value.Object(fn), true, false, true)); err != nil {
			vm.goError(err)
		}
		protoKey := value.StringKey(vm.realm.Atoms.Intern("prototype"))
		if _, err := fn.DefineOwnProperty(protoKey, object.DataDescriptor(value.Object(proto), true, false, false)); err != nil {
			vm.goError(err)
		}
	}
	return fn
}

// invokeInterpreted is the [[Call]] body every interpreted function
// object's invoker closes over. A generator function never actually
// runs its code block here — it builds and returns the generator object
// instead (see coroutine.go); an async function runs synchronously up
// to its first await or completion (see runAsync); everything else runs
// straight through to return.
func (vm *VM) invokeInterpreted(o *object.Object, this value.Value, args []value.Value) (value.Value, error) {
	code, closureEnv, err := closureState(o)
	if err != nil {
		return value.Value{}, err
	}
	if code.IsGenerator {
		return value.Object(vm.newGenerator(o, code, closureEnv, this, args)), nil
	}
	frame, err := vm.newCallFrame(code, closureEnv, o, this, args, nil)
	if err != nil {
		return value.Value{}, err
	}
	if code.IsAsync {
		return vm.runAsync(frame)
	}
	out, err := vm.runFrame(frame)
	if err != nil {
		return value.Value{}, err
	}
	return out.value, nil
}

// constructInterpreted is the [[Construct]] body: allocates a fresh
// `this` from newTarget.prototype (falling back to ObjectPrototype if
// `prototype` isn't an object, matching OrdinaryCreateFromConstructor),
// runs the body, and returns the body's own return value if it's an
// object or `this` otherwise. Derived-class super() forwarding is not
// implemented (see DESIGN.md), so every constructor call is treated as
// an ordinary one with `this` already bound on entry.
func (vm *VM) constructInterpreted(o *object.Object, args []value.Value, newTarget *object.Object) (value.Value, error) {
	code, closureEnv, err := closureState(o)
	if err != nil {
		return value.Value{}, err
	}
	if code.IsGenerator || code.IsArrow {
		return value.Value{}, diag.New(diag.KindType, diag.Span{}, "this function is not a constructor")
	}
	proto := value.Object(vm.realm.Intrinsics.ObjectPrototype)
	if desc, ok := newTarget.GetOwnProperty(value.StringKey(vm.realm.Atoms.Intern("prototype"))); ok && desc.Value.IsObject() {
		proto = desc.Value
	}
	this := value.Object(vm.newObjectWithProto(proto))
	frame, err := vm.newCallFrame(code, closureEnv, o, this, args, newTarget)
	if err != nil {
		return value.Value{}, err
	}
	out, err := vm.runFrame(frame)
	if err != nil {
		return value.Value{}, err
	}
	if out.value.IsObject() {
		return out.value, nil
	}
	return this, nil
}

// closureState reads back the *compiler.CodeBlock/env.Environment pair
// makeClosure attached, failing gracefully for a function object that
// was never built by this VM (shouldn't happen, since every callable in
// a running realm is either native or produced by makeClosure, but the
// type assertions would otherwise panic unhelpfully).
func closureState(o *object.Object) (*compiler.CodeBlock, env.Environment, error) {
	code, ok := o.Code().(*compiler.CodeBlock)
	if !ok {
		return nil, nil, diag.New(diag.KindType, diag.Span{}, "value has no interpreted function body")
	}
	e, ok := o.ClosureEnv().(env.Environment)
	if !ok {
		return nil, nil, diag.New(diag.KindType, diag.Span{}, "value has no closure environment")
	}
	return code, e, nil
}

// newCallFrame builds the Function environment record and CallFrame for
// one invocation of code: ordinary functions get their own `this`
// binding, arrows inherit the enclosing lexical `this` (mode
// ThisLexical, so GetThisBinding delegates to closureEnv).
func (vm *VM) newCallFrame(code *compiler.CodeBlock, closureEnv env.Environment, fn *object.Object, this value.Value, args []value.Value, newTarget *object.Object) (*CallFrame, error) {
	mode := env.ThisOrdinary
	if code.IsArrow {
		mode = env.ThisLexical
	}
	fnEnv := env.NewFunctionEnv(closureEnv, vm.realm.Atoms, 0, mode, fn, newTarget, nil)
	if mode != env.ThisLexical {
		if err := fnEnv.BindThis(this); err != nil {
			return nil, err
		}
	}
	f := newFrame(code, fnEnv, this, args)
	if newTarget != nil {
		f.newTarget = value.Object(newTarget)
	}
	return f, nil
}

// call implements OpCall/OpCallSpread's shared body: any non-callable
// callee (including null/undefined from a missing property) is a
// TypeError, matching ordinary [[Call]] dispatch failure.
func (vm *VM) call(callee value.Value, this value.Value, args []value.Value) value.Value {
	fn := vm.asCallableObject(callee)
	if fn == nil {
		return value.Undefined
	}
	v, err := fn.Call(this, args)
	if err != nil {
		vm.goError(err)
		return value.Undefined
	}
	return v
}

// construct implements OpNew/OpNewSpread.
func (vm *VM) construct(callee value.Value, args []value.Value) value.Value {
	fn := vm.asCallableObject(callee)
	if fn == nil {
		return value.Undefined
	}
	if !fn.IsConstructible() {
		vm.throwNew(diag.KindType, "value is not a constructor")
		return value.Undefined
	}
	v, err := fn.Construct(args, fn)
	if err != nil {
		vm.goError(err)
		return value.Undefined
	}
	return v
}

func (vm *VM) asCallableObject(v value.Value) *object.Object {
	if !v.IsObject() {
		vm.throwNew(diag.KindType, "%s is not a function", value.ToStringValue(v))
		return nil
	}
	o, ok := v.AsObject().(*object.Object)
	if !ok || !o.IsCallable() {
		vm.throwNew(diag.KindType, "value is not a function")
		return nil
	}
	return o
}

// arrayElements reads a JS array value's dense [0, length) run into a Go
// slice, backing OpCallSpread/OpNewSpread's argument-array consumption.
func (vm *VM) arrayElements(v value.Value) []value.Value {
	o := vm.asObject(v)
	if o == nil {
		return nil
	}
	n := o.Length()
	out := make([]value.Value, n)
	for i := uint32(0); i < n; i++ {
		el, err := o.Get(value.IndexKey(i), v)
		if err != nil {
			vm.goError(err)
			return out
		}
		out[i] = el
	}
	return out
}
