package vm

import (
	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/env"
	"esprit/internal/value"
)

// letDeclarer is implemented by the environment kinds that can hold a
// let/const/class binding in its temporal dead zone: Declarative and
// Global. It isn't part of env.Environment itself since With/Object and
// Function-as-delegate records never host a lexical declaration
// directly (see DESIGN.md's Open Question resolution for C11).
type letDeclarer interface {
	CreateLetBinding(name atom.Atom) error
}

// declareVar implements OpDeclareVar. The compiler only emits this
// opcode once, during a function or program's own hoisting pass, before
// any nested block environment is pushed — so f.env is already the
// binding's true home (the global environment, or the function's own
// top-level environment) with no scope walk required.
func (vm *VM) declareVar(f *CallFrame, name atom.Atom) {
	if g, ok := f.env.(*env.Global); ok {
		if err := g.CreateGlobalVarBinding(name, false); err != nil {
			vm.goError(err)
		}
		return
	}
	if f.env.HasBinding(name) {
		return
	}
	if err := f.env.CreateMutableBinding(name, false); err != nil {
		vm.goError(err)
	}
}

// declareLet implements OpDeclareLet: installs name in its TDZ in the
// current environment, which must be a Declarative or Global record.
func (vm *VM) declareLet(f *CallFrame, name atom.Atom) {
	ld, ok := f.env.(letDeclarer)
	if !ok {
		vm.throwNew(diag.KindSyntax, "cannot declare %s here", vm.realm.Atoms.Resolve(name))
		return
	}
	if err := ld.CreateLetBinding(name); err != nil {
		vm.goError(err)
	}
}

// declareConst implements OpDeclareConst. strict is pinned to true:
// assigning to a const binding is a TypeError in both sloppy and strict
// code, unlike an ordinary immutable binding's strict-only diagnostic.
func (vm *VM) declareConst(f *CallFrame, name atom.Atom) {
	if err := f.env.CreateImmutableBinding(name, true); err != nil {
		vm.goError(err)
	}
}

// initBinding implements OpInitBinding: the first store into a
// freshly declared binding, clearing its TDZ.
func (vm *VM) initBinding(f *CallFrame, name atom.Atom, v value.Value) {
	if err := f.env.InitializeBinding(name, v); err != nil {
		vm.goError(err)
	}
}

// getBinding implements OpGetBinding: walks the environment chain by
// name (no compile-time slot resolution — see opcode.go's doc comment)
// and resolves through whichever record actually owns the binding.
// Always passed strict=true to GetBindingValue: referencing an
// undeclared identifier is a ReferenceError regardless of the running
// code's strictness.
func (vm *VM) getBinding(f *CallFrame, name atom.Atom) value.Value {
	for e := f.env; e != nil; e = e.Outer() {
		if e.HasBinding(name) {
			v, err := e.GetBindingValue(name, true)
			if err != nil {
				vm.goError(err)
				return value.Undefined
			}
			return v
		}
	}
	vm.throwNew(diag.KindReference, "%s is not defined", vm.realm.Atoms.Resolve(name))
	return value.Undefined
}

// setBinding implements OpSetBinding. strict comes straight from the
// instruction's B operand. A name not found anywhere in the chain is a
// ReferenceError in strict code; in sloppy code it implicitly creates a
// new global property, matching plain assignment's legacy behavior.
func (vm *VM) setBinding(f *CallFrame, name atom.Atom, v value.Value, strict bool) {
	for e := f.env; e != nil; e = e.Outer() {
		if e.HasBinding(name) {
			if err := e.SetMutableBinding(name, v, strict); err != nil {
				vm.goError(err)
			}
			return
		}
	}
	if strict {
		vm.throwNew(diag.KindReference, "%s is not defined", vm.realm.Atoms.Resolve(name))
		return
	}
	if err := vm.realm.GlobalEnv.SetMutableBinding(name, v, false); err != nil {
		vm.goError(err)
	}
}
