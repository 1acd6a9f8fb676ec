package env

import (
	"testing"

	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

func TestDeclarativeBindingLifecycle(t *testing.T) {
	in := atom.New()
	x := in.Intern("x")
	d := NewDeclarative(nil, in, 0)

	if d.HasBinding(x) {
		t.Fatalf("binding should not exist before creation")
	}
	if err := d.CreateMutableBinding(x, false); err != nil {
		t.Fatal(err)
	}
	if err := d.SetMutableBinding(x, value.Number(1), true); err != nil {
		t.Fatal(err)
	}
	got, err := d.GetBindingValue(x, true)
	if err != nil || got.AsNumber() != 1 {
		t.Fatalf("GetBindingValue = %v, %v, want 1", got, err)
	}
}

func TestUninitializedBindingIsTDZ(t *testing.T) {
	in := atom.New()
	x := in.Intern("x")
	d := NewDeclarative(nil, in, 0)
	if err := d.CreateImmutableBinding(x, true); err != nil {
		t.Fatal(err)
	}

	_, err := d.GetBindingValue(x, true)
	if err == nil {
		t.Fatalf("accessing an uninitialized binding must throw a reference error")
	}
	derr, ok := err.(*diag.Error)
	if !ok || derr.Kind != diag.KindReference {
		t.Fatalf("TDZ access should produce a ReferenceError, got %v", err)
	}

	if err := d.InitializeBinding(x, value.Number(1)); err != nil {
		t.Fatal(err)
	}
	got, err := d.GetBindingValue(x, true)
	if err != nil || got.AsNumber() != 1 {
		t.Fatalf("after initialization GetBindingValue = %v, %v, want 1", got, err)
	}
}

func TestConstBindingRejectsReassignment(t *testing.T) {
	in := atom.New()
	x := in.Intern("x")
	d := NewDeclarative(nil, in, 0)
	d.CreateImmutableBinding(x, true)
	d.InitializeBinding(x, value.Number(1))

	err := d.SetMutableBinding(x, value.Number(2), true)
	if err == nil {
		t.Fatalf("assigning to a const binding should fail")
	}
}

func TestSlotFastPathAndTDZ(t *testing.T) {
	in := atom.New()
	d := NewDeclarative(nil, in, 1)
	if !d.IsSlotTDZ(0) {
		t.Fatalf("a fresh slot should start as TDZ")
	}
	d.SetSlot(0, value.Number(7))
	if d.IsSlotTDZ(0) {
		t.Fatalf("slot should no longer be TDZ after assignment")
	}
	if d.GetSlot(0).AsNumber() != 7 {
		t.Fatalf("GetSlot = %v, want 7", d.GetSlot(0))
	}
}

func TestGlobalVarAndLexicalCoexist(t *testing.T) {
	in := atom.New()
	globalObj := object.New(value.Null, in)
	g := NewGlobal(globalObj, in)

	varName := in.Intern("v")
	if err := g.CreateGlobalVarBinding(varName, false); err != nil {
		t.Fatal(err)
	}
	if !g.HasVarDeclaration(varName) {
		t.Fatalf("var declaration should be tracked")
	}
	if err := g.InitializeBinding(varName, value.Number(1)); err != nil {
		t.Fatal(err)
	}
	got, err := g.GetBindingValue(varName, true)
	if err != nil || got.AsNumber() != 1 {
		t.Fatalf("GetBindingValue(v) = %v, %v, want 1", got, err)
	}

	letName := in.Intern("l")
	if err := g.CreateMutableBinding(letName, false); err != nil {
		t.Fatal(err)
	}
	if !g.HasLexicalDeclaration(letName) {
		t.Fatalf("lexical declaration should be tracked separately from var")
	}
}

func TestFunctionEnvThisAndArrowDelegation(t *testing.T) {
	in := atom.New()
	globalObj := object.New(value.Null, in)
	g := NewGlobal(globalObj, in)

	outer := NewFunctionEnv(g, in, 0, ThisOrdinary, nil, nil, nil)
	if err := outer.BindThis(value.Number(42)); err != nil {
		t.Fatal(err)
	}

	arrow := NewFunctionEnv(outer, in, 0, ThisLexical, nil, nil, nil)
	got, err := arrow.GetThisBinding()
	if err != nil || got.AsNumber() != 42 {
		t.Fatalf("arrow `this` should delegate to the enclosing ordinary function, got %v, %v", got, err)
	}
}

func TestDerivedConstructorThisUninitializedUntilSuper(t *testing.T) {
	in := atom.New()
	fn := NewFunctionEnv(nil, in, 0, ThisDerivedUninitialized, nil, nil, nil)
	if _, err := fn.GetThisBinding(); err == nil {
		t.Fatalf("accessing `this` before super() must fail")
	}
	if err := fn.BindThis(value.Undefined); err != nil {
		t.Fatal(err)
	}
	if _, err := fn.GetThisBinding(); err != nil {
		t.Fatalf("this` should be accessible after super(): %v", err)
	}
}
