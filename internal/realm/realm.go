// Package realm implements the self-contained evaluation environment
// (C7): an intrinsics table, a global object, and the global environment
// record every script or module runs against. A Realm owns its own
// interner, heap, and global scope; nothing here is process-global
// except the well-known-atom prefix every realm's interner is seeded
// from.
package realm

import (
	"github.com/google/uuid"

	"esprit/internal/atom"
	"esprit/internal/config"
	"esprit/internal/diag"
	"esprit/internal/diag/log"
	"esprit/internal/env"
	"esprit/internal/heap"
	"esprit/internal/object"
	"esprit/internal/value"
)

// Realm is one agent's isolated evaluation context: create_agent's return
// value (wrapped further by pkg/esprit as Context). Each Realm has its
// own atom table, heap, and global scope, so two realms in the same
// process never share mutable state beyond the read-only well-known-atom
// prefix.
type Realm struct {
	ID         string
	Atoms      *atom.Interner
	Heap       *heap.Heap
	Intrinsics *Intrinsics
	Global     *object.Object
	GlobalEnv  *env.Global
	Logger     *log.Logger
}

// New creates a fresh realm with default intrinsics and an empty global
// object, backing the embedder's create_agent entry point. cfg tunes the
// realm's heap; passing a zero GCConfig falls back to heap.Config's own
// defaults.
func New(cfg config.GCConfig, logger *log.Logger) *Realm {
	if logger == nil {
		logger = log.Default()
	}
	atoms := atom.NewRealmInterner()

	heapCfg := heap.Config{InitialHeapObjects: cfg.InitialHeapObjects, GCTriggerRatio: cfg.GCTriggerRatio}
	if heapCfg.InitialHeapObjects == 0 {
		heapCfg.InitialHeapObjects = 4096
	}
	if heapCfg.GCTriggerRatio == 0 {
		heapCfg.GCTriggerRatio = 2.0
	}
	h := heap.New(heapCfg, logger)

	intrinsics := newIntrinsics(h, atoms)

	globalObj := object.New(value.Object(intrinsics.ObjectPrototype), atoms)
	h.Allocate(globalObj)

	globalEnv := env.NewGlobal(globalObj, atoms)

	r := &Realm{
		ID:         uuid.New().String(),
		Atoms:      atoms,
		Heap:       h,
		Intrinsics: intrinsics,
		Global:     globalObj,
		GlobalEnv:  globalEnv,
		Logger:     logger,
	}
	logger.Debugf(log.Realm, "created realm %s", r.ID)
	return r
}

// RegisterGlobalProperty installs name on the global object with the
// given attributes, backing the embedder's register_global_property
// entry point. A configurable=false, non-writable registration is how
// the engine itself installs `undefined`, `NaN`, and `globalThis`.
func (r *Realm) RegisterGlobalProperty(name string, v value.Value, writable, enumerable, configurable bool) error {
	a := r.Atoms.Intern(name)
	desc := object.DataDescriptor(v, writable, enumerable, configurable)
	ok, err := r.Global.DefineOwnProperty(value.StringKey(a), desc)
	if err != nil {
		return err
	}
	if !ok {
		return diag.New(diag.KindType, diag.Span{}, "cannot redefine global property %q", name)
	}
	return nil
}

// Roots returns the realm's GC root set: the global object and every
// intrinsic prototype. The VM contributes the active call-frame stack
// and job queue as additional roots when it invokes Heap.Collect;
// Roots() alone is what's reachable when the realm is otherwise idle.
func (r *Realm) Roots() []heap.Cell {
	return []heap.Cell{
		r.Global,
		r.Intrinsics.ObjectPrototype,
		r.Intrinsics.FunctionPrototype,
		r.Intrinsics.ArrayPrototype,
		r.Intrinsics.ErrorPrototype,
	}
}

// CollectGarbage forces a mark-and-sweep pass over the realm's heap
// using Roots() as the root set. The VM does not call it: VM.CollectGarbage
// runs its own collection over a larger root set that also covers the
// live call-frame stack. This method is for callers (tests, a host
// forcing a collection between turns) that only care about realm-level
// liveness.
func (r *Realm) CollectGarbage() {
	r.Heap.Collect(r.Roots())
}
