package vm

import (
	"esprit/internal/compiler"
	"esprit/internal/env"
	"esprit/internal/object"
	"esprit/internal/value"
)

// iterResult builds the {value, done} shape both generator step results
// and for-of's own generator-consumption path (see iter.go's
// readIterResult) agree on.
func (vm *VM) iterResult(v value.Value, done bool) *object.Object {
	o := vm.newObject()
	vm.defineProp(value.Object(o), value.StringKey(vm.realm.Atoms.Intern("value")), v)
	vm.defineProp(value.Object(o), value.StringKey(vm.realm.Atoms.Intern("done")), value.Bool(done))
	return o
}

// newGenerator implements the [[Call]] of a generator function: it never
// runs the body here. It builds the suspended CallFrame and an object
// exposing next/throw/return closures over it, matching the documented
// "a generator function call produces a generator object, not a result"
// split (see call.go's invokeInterpreted).
func (vm *VM) newGenerator(fnObj *object.Object, code *compiler.CodeBlock, closureEnv env.Environment, this value.Value, args []value.Value) *object.Object {
	frame, err := vm.newCallFrame(code, closureEnv, fnObj, this, args, nil)
	if err != nil {
		vm.goError(err)
	}
	g := vm.newObject()
	started := false

	step := func(resume func()) (value.Value, error) {
		if frame.done {
			return value.Object(vm.iterResult(value.Undefined, true)), nil
		}
		if resume != nil {
			resume()
		}
		out, runErr := vm.runFrame(frame)
		if runErr != nil {
			frame.done = true
			return value.Value{}, runErr
		}
		if out.signal == sigYield {
			return value.Object(vm.iterResult(out.value, false)), nil
		}
		frame.done = true
		return value.Object(vm.iterResult(out.value, true)), nil
	}

	nextFn := object.NewNativeFunction(value.Object(vm.realm.Intrinsics.FunctionPrototype), vm.realm.Atoms, "next", 1,
		func(_ value.Value, callArgs []value.Value) (value.Value, error) {
			var resume func()
			if started {
				v := value.Undefined
				if len(callArgs) > 0 {
					v = callArgs[0]
				}
				resume = func() { frame.push(v) }
			}
			started = true
			return step(resume)
		})

	throwFn := object.NewNativeFunction(value.Object(vm.realm.Intrinsics.FunctionPrototype), vm.realm.Atoms, "throw", 1,
		func(_ value.Value, callArgs []value.Value) (value.Value, error) {
			v := value.Undefined
			if len(callArgs) > 0 {
				v = callArgs[0]
			}
			if !started {
				// Nothing has run yet to install a handler: throwing into
				// a brand-new generator is simply an uncaught throw.
				started = true
				frame.done = true
				return value.Value{}, vm.wrapThrown(v)
			}
			return step(func() { frame.pendingResumeThrow = &v })
		})

	returnFn := object.NewNativeFunction(value.Object(vm.realm.Intrinsics.FunctionPrototype), vm.realm.Atoms, "return", 1,
		func(_ value.Value, callArgs []value.Value) (value.Value, error) {
			v := value.Undefined
			if len(callArgs) > 0 {
				v = callArgs[0]
			}
			// Simplification: a pending try/finally around the suspended
			// yield point does not run before the generator completes
			// (see DESIGN.md).
			frame.done = true
			return value.Object(vm.iterResult(v, true)), nil
		})

	vm.defineProp(value.Object(g), value.StringKey(vm.realm.Atoms.Intern("next")), value.Object(nextFn))
	vm.defineProp(value.Object(g), value.StringKey(vm.realm.Atoms.Intern("throw")), value.Object(throwFn))
	vm.defineProp(value.Object(g), value.StringKey(vm.realm.Atoms.Intern("return")), value.Object(returnFn))
	return g
}

// newPromise builds the minimal internal pending/fulfilled/rejected
// record async/await suspends against. There is no exposed Promise
// constructor, no .then, no combinators — just enough state for one
// async function's await to observe another's eventual settlement (see
// DESIGN.md).
func (vm *VM) newPromise() *object.Object {
	p := vm.newObject()
	vm.setHidden(p, "__promiseState", value.String("pending"))
	vm.setHidden(p, "__promiseValue", value.Undefined)
	return p
}

func (vm *VM) setHidden(o *object.Object, name string, v value.Value) {
	key := value.StringKey(vm.realm.Atoms.Intern(name))
	if _, err := o.DefineOwnProperty(key, object.DataDescriptor(v, true, false, true)); err != nil {
		vm.goError(err)
	}
}

func (vm *VM) getHidden(o *object.Object, name string) value.Value {
	key := value.StringKey(vm.realm.Atoms.Intern(name))
	if d, ok := o.GetOwnProperty(key); ok {
		return d.Value
	}
	return value.Undefined
}

func (vm *VM) isPromise(v value.Value) (*object.Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	o, ok := v.AsObject().(*object.Object)
	if !ok {
		return nil, false
	}
	if _, ok := o.GetOwnProperty(value.StringKey(vm.realm.Atoms.Intern("__promiseState"))); !ok {
		return nil, false
	}
	return o, true
}

// settlePromise fulfills or rejects p, then schedules every waiter
// registered against it (see awaitValue) as a fresh job, matching
// promise reactions' microtask-queue timing.
func (vm *VM) settlePromise(p *object.Object, v value.Value, isErr bool) {
	state := "fulfilled"
	if isErr {
		state = "rejected"
	}
	vm.setHidden(p, "__promiseState", value.String(state))
	vm.setHidden(p, "__promiseValue", v)
	waiters := vm.promiseWaiters[p]
	delete(vm.promiseWaiters, p)
	for _, w := range waiters {
		w := w
		vm.enqueueJob(func() { w(v, isErr) })
	}
}

// awaitValue schedules cont to run, as a later job, with the eventual
// settlement of v. A non-promise operand is treated as already
// fulfilled with itself, matching `await` implicitly wrapping any
// awaited operand the way Promise.resolve would.
func (vm *VM) awaitValue(v value.Value, cont func(value.Value, bool)) {
	p, ok := vm.isPromise(v)
	if !ok {
		vm.enqueueJob(func() { cont(v, false) })
		return
	}
	state := vm.getHidden(p, "__promiseState").AsString()
	if state != "pending" {
		val := vm.getHidden(p, "__promiseValue")
		isErr := state == "rejected"
		vm.enqueueJob(func() { cont(val, isErr) })
		return
	}
	if vm.promiseWaiters == nil {
		vm.promiseWaiters = map[*object.Object][]func(value.Value, bool){}
	}
	vm.promiseWaiters[p] = append(vm.promiseWaiters[p], cont)
}

// runAsync implements an async (non-generator) function's [[Call]]: it
// returns an internal promise immediately and drives the frame forward
// on the job queue, suspending at each OpAwait until DrainJobs resumes
// it (see vm.go's DrainJobs).
func (vm *VM) runAsync(frame *CallFrame) (value.Value, error) {
	p := vm.newPromise()
	vm.stepAsync(frame, p)
	return value.Object(p), nil
}

func (vm *VM) stepAsync(frame *CallFrame, p *object.Object) {
	out, err := vm.runFrame(frame)
	if err != nil {
		vm.settlePromise(p, vm.errorValue(err), true)
		return
	}
	switch out.signal {
	case sigAwait:
		awaited := out.value
		vm.awaitValue(awaited, func(v value.Value, isErr bool) {
			if isErr {
				frame.pendingResumeThrow = &v
			} else {
				frame.push(v)
			}
			vm.stepAsync(frame, p)
		})
	default:
		vm.settlePromise(p, out.value, false)
	}
}
