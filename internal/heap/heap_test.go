package heap

import (
	"testing"

	"esprit/internal/value"
)

// fakeCell is a minimal Cell used to exercise the collector without
// depending on internal/object.
type fakeCell struct {
	name string
	refs []value.Value
}

func (f *fakeCell) TypeOfTag() string { return "object" }
func (f *fakeCell) Trace(visit func(value.Value)) {
	for _, v := range f.refs {
		visit(v)
	}
}

func newHeap() *Heap {
	return New(Config{InitialHeapObjects: 2, GCTriggerRatio: 2.0}, nil)
}

func TestCollectFreesUnreachable(t *testing.T) {
	h := newHeap()
	root := &fakeCell{name: "root"}
	garbage := &fakeCell{name: "garbage"}
	h.Allocate(root)
	h.Allocate(garbage)

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	h.Collect([]Cell{root})
	if h.Len() != 1 {
		t.Fatalf("Len() after collect = %d, want 1", h.Len())
	}
	if _, ok := h.cells[root]; !ok {
		t.Fatalf("root should survive collection")
	}
}

func TestCollectFollowsEdges(t *testing.T) {
	h := newHeap()
	child := &fakeCell{name: "child"}
	parent := &fakeCell{name: "parent", refs: []value.Value{value.Object(child)}}
	h.Allocate(parent)
	h.Allocate(child)

	h.Collect([]Cell{parent})
	if h.Len() != 2 {
		t.Fatalf("child reachable from parent should survive, Len() = %d", h.Len())
	}
}

func TestCollectHandlesCycles(t *testing.T) {
	h := newHeap()
	a := &fakeCell{name: "a"}
	b := &fakeCell{name: "b"}
	a.refs = []value.Value{value.Object(b)}
	b.refs = []value.Value{value.Object(a)}
	h.Allocate(a)
	h.Allocate(b)

	h.Collect(nil)
	if h.Len() != 0 {
		t.Fatalf("a cycle unreachable from any root must be collected, Len() = %d", h.Len())
	}
}

func TestWeakRefClearedOnCollect(t *testing.T) {
	h := newHeap()
	target := &fakeCell{name: "target"}
	h.Allocate(target)
	wr := h.NewWeakRef(target)

	if ref, ok := wr.Deref(); !ok || ref != target {
		t.Fatalf("weak ref should resolve before collection")
	}

	h.Collect(nil)
	if _, ok := wr.Deref(); ok {
		t.Fatalf("weak ref should clear once its target is collected")
	}
}

func TestKeepAliveSurvivesUntilCleared(t *testing.T) {
	h := newHeap()
	target := &fakeCell{name: "kept"}
	h.Allocate(target)
	h.KeepAlive(target)

	h.Collect(nil)
	if h.Len() != 1 {
		t.Fatalf("kept-alive cell should survive a collection, Len() = %d", h.Len())
	}

	h.ClearKeptAlive()
	h.Collect(nil)
	if h.Len() != 0 {
		t.Fatalf("cell should be collected once kept-alive list is cleared, Len() = %d", h.Len())
	}
}

func TestFinalizerRunsAfterCollection(t *testing.T) {
	h := newHeap()
	target := &fakeCell{name: "finalized"}
	h.Allocate(target)
	h.RegisterFinalizer(target, value.String("held"))

	h.Collect(nil)
	if !h.HasPendingFinalizers() {
		t.Fatalf("expected a pending finalizer after target was collected")
	}

	var seen []string
	h.RunFinalizers(func(v value.Value) {
		seen = append(seen, value.ToStringValue(v))
	})
	if len(seen) != 1 || seen[0] != "held" {
		t.Fatalf("RunFinalizers delivered %v, want [held]", seen)
	}
	if h.HasPendingFinalizers() {
		t.Fatalf("pending finalizers should be drained after RunFinalizers")
	}
}

func TestUnregisterFinalizerCancelsIt(t *testing.T) {
	h := newHeap()
	target := &fakeCell{name: "cancelled"}
	h.Allocate(target)
	tok := h.RegisterFinalizer(target, value.String("held"))
	h.UnregisterFinalizer(tok)

	h.Collect(nil)
	if h.HasPendingFinalizers() {
		t.Fatalf("cancelled finalizer must not run")
	}
}

func TestShouldCollectGrowsWithRatio(t *testing.T) {
	h := New(Config{InitialHeapObjects: 2, GCTriggerRatio: 2.0}, nil)
	a := &fakeCell{name: "a"}
	b := &fakeCell{name: "b"}
	h.Allocate(a)
	if h.ShouldCollect() {
		t.Fatalf("one live cell should not yet trigger collection")
	}
	h.Allocate(b)
	if !h.ShouldCollect() {
		t.Fatalf("reaching the initial threshold should trigger collection")
	}
	h.Collect([]Cell{a, b})
	if h.ShouldCollect() {
		t.Fatalf("after a collection the threshold should scale with the new live count")
	}
}
