package env

import (
	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

// ThisMode distinguishes ordinary functions (which get their own `this`)
// from arrow functions (lexical `this`, inherited from the enclosing
// scope) and derived-class constructors (which start with an
// uninitialized `this` until `super()` runs).
type ThisMode uint8

const (
	ThisOrdinary ThisMode = iota
	ThisLexical
	ThisDerivedUninitialized
)

// Function is the environment record created on every ordinary function
// call: a Declarative record plus `this`, `new.target`, and the home
// object used to resolve `super`.
type Function struct {
	*Declarative

	mode            ThisMode
	thisValue       value.Value
	thisInitialized bool
	newTarget       *object.Object
	functionObj     *object.Object
	homeObject      *object.Object
}

// NewFunctionEnv creates a function environment chained to outer.
// Arrow functions (mode == ThisLexical) never hold a `this` of their own;
// HasThisBinding/GetThisBinding delegate to the outer environment.
func NewFunctionEnv(outer Environment, atoms *atom.Interner, slotCount int, mode ThisMode, fn, newTarget, home *object.Object) *Function {
	return &Function{
		Declarative: NewDeclarative(outer, atoms, slotCount),
		mode:        mode,
		newTarget:   newTarget,
		functionObj: fn,
		homeObject:  home,
	}
}

// BindThis sets the environment's `this` value and marks it initialized;
// for an ordinary call this happens immediately, for a derived
// constructor it happens only after `super()` returns.
func (f *Function) BindThis(v value.Value) error {
	if f.mode == ThisLexical {
		return diag.New(diag.KindReference, diag.Span{}, "arrow functions have no `this` binding to set")
	}
	if f.thisInitialized {
		return diag.New(diag.KindReference, diag.Span{}, "super() called more than once")
	}
	f.thisValue = v
	f.thisInitialized = true
	return nil
}

func (f *Function) HasThisBinding() bool { return f.mode != ThisLexical }

func (f *Function) HasSuperBinding() bool { return f.homeObject != nil && f.mode != ThisLexical }

func (f *Function) WithBaseObject() *object.Object { return nil }

func (f *Function) GetThisBinding() (value.Value, error) {
	if f.mode == ThisLexical {
		return f.outer.GetThisBinding()
	}
	if !f.thisInitialized {
		return value.Value{}, diag.New(diag.KindReference, diag.Span{}, "must call super constructor before accessing `this`")
	}
	return f.thisValue, nil
}

// GetSuperBase resolves [[HomeObject]].[[GetPrototypeOf]](), the base
// object `super.prop` reads start from.
func (f *Function) GetSuperBase() value.Value {
	if f.homeObject == nil {
		return value.Undefined
	}
	return f.homeObject.GetPrototypeOf()
}

// NewTarget returns the [[NewTarget]] value visible inside this call.
func (f *Function) NewTarget() *object.Object { return f.newTarget }
