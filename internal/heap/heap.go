// Package heap implements a mark-and-sweep tracing collector (C3): a
// single-threaded mutator, strong and weak references, and finalization
// callbacks. Cycles are handled natively because liveness is decided by
// reachability from an explicit root set, never by reference counting.
package heap

import (
	"esprit/internal/diag/log"
	"esprit/internal/value"
)

// Cell is anything the collector can allocate, trace, and sweep. Objects
// (internal/object) are the only cells production code Allocates; the
// VM's for-in/for-of cursors also implement Cell and reach Collect only
// as roots taken from a call frame's operand stack. Trace must
// report every Value this cell holds a strong reference to so the mark
// phase can follow edges transitively.
type Cell interface {
	value.HeapRef
	Trace(visit func(value.Value))
}

// Config tunes when the collector runs a cycle.
type Config struct {
	InitialHeapObjects int
	GCTriggerRatio     float64
}

// Heap owns every live Cell allocated by one agent/realm. It is not safe
// for concurrent use from multiple goroutines, matching the engine's
// single-threaded execution model.
type Heap struct {
	cfg    Config
	logger *log.Logger

	cells       map[Cell]struct{}
	liveAtLastGC int

	weakRefs   []*WeakRef
	finalizers []finalizerEntry
	keptAlive  []Cell

	pendingFinalizers []pendingFinalizer

	stats Stats
}

// Stats tracks cumulative collector activity for diagnostics and tests.
type Stats struct {
	Collections  int
	Allocated    int
	Freed        int
}

// New creates an empty heap.
func New(cfg Config, logger *log.Logger) *Heap {
	if cfg.InitialHeapObjects <= 0 {
		cfg.InitialHeapObjects = 4096
	}
	if cfg.GCTriggerRatio <= 1.0 {
		cfg.GCTriggerRatio = 2.0
	}
	if logger == nil {
		logger = log.New(nil)
	}
	return &Heap{
		cfg:    cfg,
		logger: logger,
		cells:  make(map[Cell]struct{}),
	}
}

// Allocate registers a newly constructed cell with the heap. Every object
// constructor (internal/object.New*) must call this exactly once.
func (h *Heap) Allocate(c Cell) {
	h.cells[c] = struct{}{}
	h.stats.Allocated++
}

// Len reports the number of live cells currently tracked.
func (h *Heap) Len() int { return len(h.cells) }

// Stats returns a snapshot of cumulative collector statistics.
func (h *Heap) Stats() Stats { return h.stats }

// ShouldCollect reports whether the heap has grown enough since the last
// collection to warrant running one. The engine itself never calls it:
// a collection runs only when Collect is invoked (realm or VM
// CollectGarbage).
func (h *Heap) ShouldCollect() bool {
	threshold := h.cfg.InitialHeapObjects
	if h.liveAtLastGC > 0 {
		threshold = int(float64(h.liveAtLastGC) * h.cfg.GCTriggerRatio)
	}
	return len(h.cells) >= threshold
}

// Collect runs one mark-and-sweep cycle over roots, clears weak
// references to anything collected, and queues finalizers for anything
// collected that had one registered. Runs synchronously: the spec models
// no concurrent collection (single-threaded mutator).
func (h *Heap) Collect(roots []Cell) {
	h.logger.Debugf(log.GC, "collection #%d starting: %d live cells", h.stats.Collections+1, len(h.cells))

	marked := make(map[Cell]struct{}, len(h.cells))
	var worklist []Cell
	for _, r := range roots {
		if r == nil {
			continue
		}
		if _, ok := marked[r]; !ok {
			marked[r] = struct{}{}
			worklist = append(worklist, r)
		}
	}
	for _, r := range h.keptAlive {
		if _, ok := marked[r]; !ok {
			marked[r] = struct{}{}
			worklist = append(worklist, r)
		}
	}

	for len(worklist) > 0 {
		n := len(worklist) - 1
		cur := worklist[n]
		worklist = worklist[:n]
		cur.Trace(func(v value.Value) {
			if !v.IsObject() {
				return
			}
			ref, ok := v.AsObject().(Cell)
			if !ok {
				return
			}
			if _, seen := marked[ref]; seen {
				return
			}
			marked[ref] = struct{}{}
			worklist = append(worklist, ref)
		})
	}

	freed := 0
	for c := range h.cells {
		if _, alive := marked[c]; alive {
			continue
		}
		delete(h.cells, c)
		freed++
		h.clearWeakRefsTo(c)
		h.queueFinalizersFor(c)
	}

	h.stats.Collections++
	h.stats.Freed += freed
	h.liveAtLastGC = len(h.cells)
	h.logger.Debugf(log.GC, "collection #%d finished: freed %d, %d live cells remain", h.stats.Collections, freed, len(h.cells))
}

// KeepAlive extends c's lifetime until ClearKeptAlive is called, backing
// the WeakRef.prototype.deref rule that a global "kept-alive" list
// extends the lifetime of objects observed via deref until the next turn
// of the job queue.
func (h *Heap) KeepAlive(c Cell) {
	h.keptAlive = append(h.keptAlive, c)
}

// ClearKeptAlive drops the kept-alive list. Call at the start of each new
// job-queue turn (internal/vm.VM.DrainJobs).
func (h *Heap) ClearKeptAlive() {
	h.keptAlive = h.keptAlive[:0]
}
