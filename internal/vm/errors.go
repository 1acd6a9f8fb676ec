package vm

import (
	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

// thrownValue is the panic payload OpThrow, and every opcode handler that
// raises a language-level exception, uses to unwind to the nearest
// handler. Using panic/recover here mirrors the compiler's own
// panic(*diag.Error)/recover idiom in Compile rather than threading a
// second return value through every opcode handler.
type thrownValue struct{ v value.Value }

// JSError is what escapes the VM's API (Run/Call) when a thrown value
// reaches the top of the call stack uncaught. It carries the thrown
// value itself, not just a message, so a host embedding the engine can
// inspect a thrown Error object's properties.
type JSError struct {
	Value value.Value
	vm    *VM
}

func (e *JSError) Error() string {
	if e.vm != nil {
		return e.vm.describeError(e.Value)
	}
	return "uncaught exception"
}

// throw panics with v as the thrown value, unwinding to the nearest
// handler in the current frame or, failing that, the nearest Go caller's
// own recover (see runFrame).
func (vm *VM) throw(v value.Value) {
	panic(thrownValue{v})
}

// throwNew builds a plain Error-shaped object (name/message, prototype
// from the realm's single ErrorPrototype — this core doesn't maintain
// per-kind TypeError/RangeError prototypes, see DESIGN.md) and throws it.
func (vm *VM) throwNew(kind diag.Kind, format string, args ...interface{}) {
	vm.throw(vm.newError(kind, format, args...))
}

func (vm *VM) newError(kind diag.Kind, format string, args ...interface{}) value.Value {
	return vm.errorValue(diag.New(kind, diag.Span{}, format, args...))
}

// errorValue converts a Go error into a thrown JS value: a *diag.Error
// becomes a proper Error-shaped object so script can catch and inspect
// it; any other error is wrapped as a HostError-kind Error object.
func (vm *VM) errorValue(err error) value.Value {
	if err == nil {
		return value.Undefined
	}
	if je, ok := err.(*JSError); ok {
		return je.Value
	}
	derr, ok := err.(*diag.Error)
	if !ok {
		derr = diag.Wrap(diag.Span{}, err)
	}
	o := object.New(value.Object(vm.realm.Intrinsics.ErrorPrototype), vm.realm.Atoms)
	vm.realm.Heap.Allocate(o)
	_, _ = o.DefineOwnProperty(value.StringKey(vm.realm.Atoms.Intern("name")),
		object.DataDescriptor(value.String(string(derr.Kind)), true, false, true))
	_, _ = o.DefineOwnProperty(value.StringKey(atom.Message),
		object.DataDescriptor(value.String(derr.Message), true, false, true))
	return value.Object(o)
}

// wrapThrown converts a thrown value with no matching handler anywhere
// in the call stack into the Go error the VM's public API returns.
func (vm *VM) wrapThrown(v value.Value) error {
	return &JSError{Value: v, vm: vm}
}

// describeError renders a thrown value for JSError.Error()/logging:
// "name: message" for an Error-shaped object, ToStringValue otherwise.
func (vm *VM) describeError(v value.Value) string {
	if v.IsObject() {
		if o, ok := v.AsObject().(*object.Object); ok {
			name := "Error"
			msg := ""
			if d, ok := o.GetOwnProperty(value.StringKey(vm.realm.Atoms.Intern("name"))); ok {
				name = value.ToStringValue(d.Value)
			}
			if d, ok := o.GetOwnProperty(value.StringKey(atom.Message)); ok {
				msg = value.ToStringValue(d.Value)
			}
			return name + ": " + msg
		}
	}
	return value.ToStringValue(v)
}

// goError converts a Go error raised by a lower layer (object property
// access, environment binding resolution) into a thrown JS value and
// panics with it, so every opcode handler can treat "operation failed"
// uniformly regardless of whether the failure originated as a Go error
// or a literal `throw` statement.
func (vm *VM) goError(err error) {
	if err == nil {
		return
	}
	vm.throw(vm.errorValue(err))
}
