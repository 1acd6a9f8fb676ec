package realm

import (
	"testing"

	"esprit/internal/atom"
	"esprit/internal/config"
	"esprit/internal/value"
)

func TestNewRealmHasDistinctIDsAndAtoms(t *testing.T) {
	r1 := New(config.GCConfig{}, nil)
	r2 := New(config.GCConfig{}, nil)

	if r1.ID == r2.ID {
		t.Fatalf("two realms should not share an ID")
	}
	if r1.Atoms == r2.Atoms {
		t.Fatalf("two realms should not share an interner")
	}
}

func TestWellKnownAtomsAlignAcrossRealms(t *testing.T) {
	r := New(config.GCConfig{}, nil)
	if r.Atoms.Resolve(atom.Prototype) != "prototype" {
		t.Fatalf("well-known atom Prototype should resolve the same way in a fresh realm interner")
	}
	if r.Atoms.Resolve(atom.Length) != "length" {
		t.Fatalf("well-known atom Length should resolve the same way in a fresh realm interner")
	}
}

func TestIntrinsicsPrototypeChain(t *testing.T) {
	r := New(config.GCConfig{}, nil)

	if r.Intrinsics.ObjectPrototype.GetPrototypeOf() != value.Null {
		t.Fatalf("ObjectPrototype's prototype should be null")
	}
	funcProtoParent := r.Intrinsics.FunctionPrototype.GetPrototypeOf()
	if funcProtoParent.AsObject() != r.Intrinsics.ObjectPrototype {
		t.Fatalf("FunctionPrototype should inherit from ObjectPrototype")
	}
	arrProtoParent := r.Intrinsics.ArrayPrototype.GetPrototypeOf()
	if arrProtoParent.AsObject() != r.Intrinsics.ObjectPrototype {
		t.Fatalf("ArrayPrototype should inherit from ObjectPrototype")
	}
}

func TestGlobalObjectInheritsObjectPrototype(t *testing.T) {
	r := New(config.GCConfig{}, nil)
	proto := r.Global.GetPrototypeOf()
	if proto.AsObject() != r.Intrinsics.ObjectPrototype {
		t.Fatalf("the global object should inherit from ObjectPrototype")
	}
}

func TestRegisterGlobalProperty(t *testing.T) {
	r := New(config.GCConfig{}, nil)
	if err := r.RegisterGlobalProperty("answer", value.Number(42), true, true, true); err != nil {
		t.Fatal(err)
	}

	name := r.Atoms.Intern("answer")
	got, err := r.GlobalEnv.GetBindingValue(name, true)
	if err != nil || got.AsNumber() != 42 {
		t.Fatalf("GetBindingValue(answer) = %v, %v, want 42", got, err)
	}
}

func TestCollectGarbageKeepsRoots(t *testing.T) {
	r := New(config.GCConfig{}, nil)
	before := r.Heap.Len()
	r.CollectGarbage()
	after := r.Heap.Len()
	if after != before {
		t.Fatalf("collecting with only roots live should not free anything: before=%d after=%d", before, after)
	}
}
