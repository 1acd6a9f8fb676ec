package heap

// WeakRef holds a non-owning reference to a Cell. It never keeps its
// target alive; once the collector frees the target, Deref starts
// returning (nil, false).
type WeakRef struct {
	target Cell
	alive  bool
}

// NewWeakRef registers a weak reference to target and returns it. The
// heap tracks every live WeakRef so a future Collect can clear it.
func (h *Heap) NewWeakRef(target Cell) *WeakRef {
	wr := &WeakRef{target: target, alive: target != nil}
	h.weakRefs = append(h.weakRefs, wr)
	return wr
}

// Deref returns the referent and true if it is still alive. Callers that
// want deref to extend the target's lifetime until the next job-queue
// turn should follow a successful Deref with h.KeepAlive(target).
func (wr *WeakRef) Deref() (Cell, bool) {
	if !wr.alive {
		return nil, false
	}
	return wr.target, true
}

func (h *Heap) clearWeakRefsTo(c Cell) {
	for _, wr := range h.weakRefs {
		if wr.target == c {
			wr.alive = false
			wr.target = nil
		}
	}
}
