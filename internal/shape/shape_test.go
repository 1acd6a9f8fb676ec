package shape

import (
	"testing"

	"esprit/internal/atom"
	"esprit/internal/value"
)

func key(in *atom.Interner, s string) value.PropertyKey {
	pk, err := value.ToPropertyKeyInterned(value.String(s), in)
	if err != nil {
		panic(err)
	}
	return pk
}

func TestSameTransitionSequenceConverges(t *testing.T) {
	in := atom.New()
	root := NewRoot(value.Null)

	s1 := root
	s1, _ = s1.AddProperty(key(in, "a"), DataDefault)
	s1, _ = s1.AddProperty(key(in, "b"), DataDefault)

	s2 := root
	s2, _ = s2.AddProperty(key(in, "a"), DataDefault)
	s2, _ = s2.AddProperty(key(in, "b"), DataDefault)

	if s1 != s2 {
		t.Fatalf("two objects adding the same keys in the same order must reach the same shape identity")
	}
}

func TestDifferentOrderDiverges(t *testing.T) {
	in := atom.New()
	root := NewRoot(value.Null)

	s1 := root
	s1, _ = s1.AddProperty(key(in, "a"), DataDefault)
	s1, _ = s1.AddProperty(key(in, "b"), DataDefault)

	s2 := root
	s2, _ = s2.AddProperty(key(in, "b"), DataDefault)
	s2, _ = s2.AddProperty(key(in, "a"), DataDefault)

	if s1 == s2 {
		t.Fatalf("adding keys in a different order should not converge on the same shape")
	}
}

func TestSlotIndexStable(t *testing.T) {
	in := atom.New()
	root := NewRoot(value.Null)
	ka := key(in, "a")

	s1, idx1 := root.AddProperty(ka, DataDefault)
	s1b := s1.ChangeAttributes(ka, Enumerable)
	slot, ok := s1b.Lookup(ka)
	if !ok || slot.Index != idx1 {
		t.Fatalf("an attribute-change transition must keep the same slot index")
	}
}

func TestDeleteDemotesToUnique(t *testing.T) {
	in := atom.New()
	root := NewRoot(value.Null)
	ka := key(in, "a")
	shared, _ := root.AddProperty(ka, DataDefault)

	if shared.Kind() != Shared {
		t.Fatalf("fresh transitions should remain shared")
	}
	unique := shared.ToUnique()
	if unique.Kind() != Unique {
		t.Fatalf("ToUnique must produce a Unique shape")
	}
	unique.RemoveProperty(ka)
	if _, ok := unique.Lookup(ka); ok {
		t.Fatalf("deleted property should no longer resolve")
	}
	if _, ok := shared.Lookup(ka); !ok {
		t.Fatalf("demoting to unique must not mutate the original shared shape")
	}
}

func TestAddPropertyPanicsOnDuplicateKey(t *testing.T) {
	in := atom.New()
	root := NewRoot(value.Null)
	ka := key(in, "a")
	child, _ := root.AddProperty(ka, DataDefault)

	defer func() {
		if recover() == nil {
			t.Fatalf("AddProperty with an already-present key should panic (engine bug)")
		}
	}()
	child.AddProperty(ka, DataDefault)
}

func TestUniqueShapeHasNoSharedTransitionCache(t *testing.T) {
	in := atom.New()
	root := NewRoot(value.Null)
	shared, _ := root.AddProperty(key(in, "a"), DataDefault)
	u1 := shared.ToUnique()
	u2 := shared.ToUnique()

	u1, _ = u1.AddProperty(key(in, "b"), DataDefault)
	u2, _ = u2.AddProperty(key(in, "b"), DataDefault)
	if u1 == u2 {
		t.Fatalf("two independent unique shapes adding the same key must not be aliased")
	}
}
