// Package esprit is the embedding facade over the engine: the six
// operations an embedder drives a script through (create an agent, parse
// source, evaluate it, register a host global, call a function value
// back into script, and drain the microtask queue). It is a genuine
// small facade, not a mass type-alias re-export of the internal engine
// packages: this surface is six functions, not an entire internal API.
package esprit

import (
	"esprit/internal/atom"
	"esprit/internal/ast"
	"esprit/internal/compiler"
	"esprit/internal/config"
	"esprit/internal/diag/log"
	"esprit/internal/parser"
	"esprit/internal/realm"
	"esprit/internal/value"
	"esprit/internal/vm"
)

// Context is one embedder-visible agent: a realm (atoms, heap, globals)
// and the VM driving it. Nothing else in this package holds engine state
// outside a Context.
type Context struct {
	realm *realm.Realm
	vm    *vm.VM
}

// CreateAgent builds a fresh realm with default intrinsics installed and a
// VM ready to run scripts against it. A nil cfg falls back to
// config.DefaultConfig().
func CreateAgent(cfg *config.Config) *Context {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := log.Default()
	r := realm.New(cfg.GC, logger)
	m := vm.New(r, cfg.VM)
	return &Context{realm: r, vm: m}
}

// Script is parsed, compiled, and ready to run — the shared return type
// of ParseScript and ParseModule. Parsing and compiling happen together:
// nothing in this facade exposes an uncompiled AST, since no embedder
// operation needs one.
type Script struct {
	code *compiler.CodeBlock
}

// ParseScript parses source as a top-level script and compiles it against
// ctx's atom table, ready for Evaluate.
func ParseScript(source string, ctx *Context) (*Script, error) {
	prog, err := parser.ParseScript(source, ctx.realm.Atoms)
	if err != nil {
		return nil, err
	}
	return compileProgram(prog, ctx)
}

// ParseModule parses source as a module body. The core has no module
// loader (see spec.md §6's host hooks — resolving import specifiers is
// explicitly not part of the core), so this only supports a single
// self-contained module with no imports; compilation fails the same way
// ParseScript's would on anything else invalid.
func ParseModule(source string, ctx *Context) (*Script, error) {
	prog, err := parser.ParseModule(source, ctx.realm.Atoms)
	if err != nil {
		return nil, err
	}
	return compileProgram(prog, ctx)
}

func compileProgram(prog *ast.Program, ctx *Context) (*Script, error) {
	code, err := compiler.Compile(prog, ctx.realm.Atoms)
	if err != nil {
		return nil, err
	}
	return &Script{code: code}, nil
}

// Completion mirrors a script or call's outcome: either a normal value,
// or a thrown one. This only ever carries a normal-or-throw pair, never
// break/continue/return — those completion kinds never escape a whole
// script or function boundary (see spec.md §4.9).
type Completion struct {
	Value  value.Value
	Thrown bool
}

// Evaluate runs script to completion against ctx's realm. A script-level
// uncaught throw is reported as a Completion with Thrown set, not a Go
// error — only a genuine host-side failure (an internal invariant
// violation) comes back as err. Exceeding the call-stack limit is a
// thrown RangeError, so it is also reported with Thrown set.
func Evaluate(script *Script, ctx *Context) (Completion, error) {
	v, err := ctx.vm.RunProgram(script.code)
	return completionFrom(v, err)
}

// Call invokes fn (typically a function value obtained by running a
// script that assigns it to a registered global, or returned from one)
// with the given this/arguments, without going through a Script. This is
// how a host resumes script-defined callbacks — an event handler, a
// generator driven from Go, a completion callback — outside of Evaluate.
func Call(fn, this value.Value, args []value.Value, ctx *Context) (Completion, error) {
	v, err := ctx.vm.Call(fn, this, args)
	return completionFrom(v, err)
}

func completionFrom(v value.Value, err error) (Completion, error) {
	if err == nil {
		return Completion{Value: v}, nil
	}
	if je, ok := err.(*vm.JSError); ok {
		return Completion{Value: je.Value, Thrown: true}, nil
	}
	return Completion{}, err
}

// RegisterGlobalProperty installs v as a property of ctx's global object,
// visible to every script subsequently run against ctx.
func RegisterGlobalProperty(name string, v value.Value, writable, enumerable, configurable bool, ctx *Context) error {
	return ctx.realm.RegisterGlobalProperty(name, v, writable, enumerable, configurable)
}

// DrainJobs runs ctx's microtask queue to completion: every queued
// promise-reaction and async/await resumption job, including ones
// enqueued by jobs that run during this same call, per
// internal/vm.VM.DrainJobs's documented ordering contract.
func DrainJobs(ctx *Context) {
	ctx.vm.DrainJobs()
}

// Atoms exposes ctx's interner, for a host building value.Value property
// keys to pass to RegisterGlobalProperty or to read back off a returned
// object.
func (ctx *Context) Atoms() *atom.Interner { return ctx.realm.Atoms }

// CollectGarbage forces an immediate mark-and-sweep pass over ctx's heap.
// The engine never collects on its own (internal/heap's ShouldCollect
// trigger is not consulted anywhere), so this is the only way a
// collection runs through this facade.
func (ctx *Context) CollectGarbage() { ctx.vm.CollectGarbage() }
