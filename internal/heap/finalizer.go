package heap

import "esprit/internal/value"

// FinalizationToken identifies one registration so it can later be
// unregistered (the unregisterToken argument of FinalizationRegistry, an
// external built-in layered on top of this mechanism).
type FinalizationToken uint64

type finalizerEntry struct {
	token      FinalizationToken
	target     Cell
	heldValue  value.Value
	registered bool
}

type pendingFinalizer struct {
	heldValue value.Value
}

// RegisterFinalizer arranges for heldValue to be handed to a finalizer
// callback once target becomes unreachable. Returns a token that
// UnregisterFinalizer can use to cancel the registration early.
func (h *Heap) RegisterFinalizer(target Cell, heldValue value.Value) FinalizationToken {
	tok := FinalizationToken(len(h.finalizers) + 1)
	h.finalizers = append(h.finalizers, finalizerEntry{
		token:      tok,
		target:     target,
		heldValue:  heldValue,
		registered: true,
	})
	return tok
}

// UnregisterFinalizer cancels a pending finalization registration.
func (h *Heap) UnregisterFinalizer(tok FinalizationToken) {
	for i := range h.finalizers {
		if h.finalizers[i].token == tok {
			h.finalizers[i].registered = false
		}
	}
}

func (h *Heap) queueFinalizersFor(c Cell) {
	for i := range h.finalizers {
		f := &h.finalizers[i]
		if f.registered && f.target == c {
			f.registered = false
			h.pendingFinalizers = append(h.pendingFinalizers, pendingFinalizer{heldValue: f.heldValue})
		}
	}
}

// HasPendingFinalizers reports whether any finalizer callbacks are
// waiting to run.
func (h *Heap) HasPendingFinalizers() bool { return len(h.pendingFinalizers) > 0 }

// RunFinalizers invokes run once per pending finalizer, in the order
// their targets were collected, then clears the pending list. Collect
// does not call it and neither does the VM; pending callbacks run only
// when a caller invokes this.
func (h *Heap) RunFinalizers(run func(heldValue value.Value)) {
	pending := h.pendingFinalizers
	h.pendingFinalizers = nil
	for _, p := range pending {
		run(p.heldValue)
	}
}
