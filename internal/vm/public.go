package vm

import "esprit/internal/value"

// Call invokes fn as an ECMAScript function with the given this/args,
// backing the embedder's call() entry point (see spec.md §6's External
// Interfaces). Unlike the unexported call used by OpCall/OpCallSpread's
// dispatch, which relies on an enclosing runLoop's recover to turn an
// uncaught throw into a returned error, this installs its own recover:
// there is no enclosing frame here, since the embedder is calling in from
// outside any running bytecode.
func (vm *VM) Call(fn, this value.Value, args []value.Value) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if tv, ok := r.(thrownValue); ok {
				err = vm.wrapThrown(tv.v)
				return
			}
			panic(r)
		}
	}()
	result = vm.call(fn, this, args)
	return result, nil
}
