// Package vm implements the bytecode interpreter (C11): call frames,
// the operand-stack dispatch loop, exception unwinding through
// CodeBlock.Handlers, and generator/async suspension. It is the last
// component wired together — every opcode it executes is defined by
// internal/compiler, every value it manipulates by internal/value and
// internal/object, every binding it resolves by internal/env.
package vm

import (
	"esprit/internal/compiler"
	"esprit/internal/config"
	"esprit/internal/diag"
	"esprit/internal/diag/log"
	"esprit/internal/env"
	"esprit/internal/heap"
	"esprit/internal/object"
	"esprit/internal/realm"
	"esprit/internal/value"
)

// VM executes compiled code blocks against one realm. A VM is not safe
// for concurrent use by multiple goroutines: the heap it drives is a
// single-threaded-mutator collector (see internal/heap), and generator/
// async suspension is implemented as explicit frame capture rather than
// parked goroutines, so only one frame is ever "running" at a time.
type VM struct {
	realm *realm.Realm
	cfg   config.VMConfig

	// frames is the live call-frame stack, walked by CollectRoots so the
	// collector can trace through every frame's operand stack and
	// argument list even though no frame is individually heap.Allocate'd.
	frames []*CallFrame

	// jobs is the FIFO microtask queue: await resumptions and (once a
	// Promise built-in layer exists) promise reactions. DrainJobs runs it
	// to completion, per internal/heap.Heap.ClearKeptAlive's documented
	// "call at the start of each job-queue turn" contract.
	jobs []func()

	// promiseWaiters holds the continuations registered against a still-
	// pending internal promise (see coroutine.go), keyed by the promise
	// object itself. There is no exposed Promise constructor or .then —
	// this only backs async/await's own suspension protocol.
	promiseWaiters map[*object.Object][]func(value.Value, bool)

	interruptCheck func() error
}

// New creates a VM bound to r, tuned by cfg (zero value is usable:
// MaxCallStackDepth of 0 falls back to config.DefaultConfig()'s 8192).
func New(r *realm.Realm, cfg config.VMConfig) *VM {
	if cfg.MaxCallStackDepth == 0 {
		cfg.MaxCallStackDepth = config.DefaultConfig().VM.MaxCallStackDepth
	}
	return &VM{realm: r, cfg: cfg}
}

// SetInterruptCheck installs a host hook consulted at every loop
// iteration's top (see checkInterrupt) when cfg.InterruptEnabled is set,
// letting an embedder force a HostError throw to cancel a runaway script.
func (vm *VM) SetInterruptCheck(fn func() error) { vm.interruptCheck = fn }

// RunProgram runs a top-level script/module CodeBlock against the
// realm's global environment and returns its completion value.
func (vm *VM) RunProgram(code *compiler.CodeBlock) (value.Value, error) {
	f := newFrame(code, vm.realm.GlobalEnv, value.Object(vm.realm.Global), nil)
	out, err := vm.runFrame(f)
	if err != nil {
		return value.Undefined, err
	}
	return out.value, nil
}

// DrainJobs runs the microtask queue to completion, including jobs
// enqueued by a job that itself runs during this call (matching
// "promise reactions run in FIFO order of scheduling" — new jobs append
// to the same queue rather than a second generation). Per
// heap.Heap.ClearKeptAlive's contract, the kept-alive WeakRef list is
// cleared once per turn rather than once per job.
func (vm *VM) DrainJobs() {
	vm.realm.Heap.ClearKeptAlive()
	for len(vm.jobs) > 0 {
		job := vm.jobs[0]
		vm.jobs = vm.jobs[1:]
		job()
	}
}

func (vm *VM) enqueueJob(fn func()) {
	vm.realm.Logger.Debugf(log.Job, "scheduling job, queue depth now %d", len(vm.jobs)+1)
	vm.jobs = append(vm.jobs, fn)
}

// CollectGarbage runs a mark-and-sweep pass using the realm's intrinsic
// roots plus every live call frame's reachable values as the root set:
// the frame stack itself is never heap.Allocate'd (it isn't a Cell), but
// every object value it still holds is traced transitively, per
// heap.Heap.Collect's documented root-seeding contract.
func (vm *VM) CollectGarbage() {
	cells := vm.realm.Roots()
	for _, f := range vm.frames {
		for _, v := range f.stack {
			if c, ok := asCell(v); ok {
				cells = append(cells, c)
			}
		}
		for _, v := range f.args {
			if c, ok := asCell(v); ok {
				cells = append(cells, c)
			}
		}
		if c, ok := asCell(f.this); ok {
			cells = append(cells, c)
		}
	}
	vm.realm.Heap.Collect(cells)
}

func asCell(v value.Value) (heap.Cell, bool) {
	if !v.IsObject() {
		return nil, false
	}
	c, ok := v.AsObject().(heap.Cell)
	return c, ok
}

// runFrame drives f's code from its current pc until it returns,
// suspends (sigYield/sigAwait), or an exception escapes uncaught. It is
// re-entrant: resuming a suspended generator/async frame is just calling
// runFrame again on the same *CallFrame.
func (vm *VM) runFrame(f *CallFrame) (outcome, error) {
	if f.pendingResumeThrow != nil {
		t := *f.pendingResumeThrow
		f.pendingResumeThrow = nil
		if !vm.handleThrow(f, t, f.pc) {
			return outcome{}, vm.wrapThrown(t)
		}
	}

	vm.frames = append(vm.frames, f)
	defer func() { vm.frames = vm.frames[:len(vm.frames)-1] }()

	if len(vm.frames) > vm.cfg.MaxCallStackDepth {
		return outcome{}, vm.wrapThrown(vm.newError(diag.KindRange, "Maximum call stack size exceeded"))
	}

	for {
		sig, val, thrown, err := vm.runLoop(f)
		if err != nil {
			return outcome{}, err
		}
		if thrown == nil {
			return outcome{signal: sig, value: val}, nil
		}
		if vm.handleThrow(f, *thrown, f.lastPC) {
			continue
		}
		return outcome{}, vm.wrapThrown(*thrown)
	}
}

// runLoop executes instructions from f.pc until a return/yield/await
// completion, or a thrown value (caught locally via recover, reported
// through the named thrown return rather than re-panicking) ends this
// particular stretch of execution.
func (vm *VM) runLoop(f *CallFrame) (sig signal, val value.Value, thrown *value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if tv, ok := r.(thrownValue); ok {
				v := tv.v
				thrown = &v
				return
			}
			panic(r)
		}
	}()

	for {
		if vm.interruptCheck != nil && vm.cfg.InterruptEnabled {
			if ierr := vm.interruptCheck(); ierr != nil {
				vm.goError(ierr)
			}
		}
		instr := f.code.Code[f.pc]
		f.lastPC = f.pc
		f.pc++

		switch instr.Op {
		case compiler.OpConst:
			f.push(f.code.Consts[instr.A])
		case compiler.OpUndefined:
			f.push(value.Undefined)
		case compiler.OpNull:
			f.push(value.Null)
		case compiler.OpTrue:
			f.push(value.True)
		case compiler.OpFalse:
			f.push(value.False)
		case compiler.OpThis:
			f.push(f.this)
		case compiler.OpPop:
			f.pop()
		case compiler.OpDup:
			f.dup()
		case compiler.OpSwap:
			f.swap()
		case compiler.OpRotTop:
			f.rotTop(instr.A)

		case compiler.OpGetBinding:
			f.push(vm.getBinding(f, instr.Atom))
		case compiler.OpSetBinding:
			v := f.peek(0)
			vm.setBinding(f, instr.Atom, v, instr.B != 0)
		case compiler.OpDeclareVar:
			vm.declareVar(f, instr.Atom)
		case compiler.OpDeclareLet:
			vm.declareLet(f, instr.Atom)
		case compiler.OpDeclareConst:
			vm.declareConst(f, instr.Atom)
		case compiler.OpInitBinding:
			vm.initBinding(f, instr.Atom, f.pop())

		case compiler.OpGetProp:
			obj := f.pop()
			f.push(vm.getProp(obj, value.StringKey(instr.Atom)))
		case compiler.OpSetProp:
			v := f.pop()
			obj := f.pop()
			vm.setProp(obj, value.StringKey(instr.Atom), v)
		case compiler.OpGetPropValue:
			key := f.pop()
			obj := f.pop()
			f.push(vm.getProp(obj, vm.toKey(key)))
		case compiler.OpSetPropValue:
			v := f.pop()
			key := f.pop()
			obj := f.pop()
			vm.setProp(obj, vm.toKey(key), v)
		case compiler.OpDeleteProp:
			obj := f.pop()
			f.push(value.Bool(vm.deleteProp(obj, value.StringKey(instr.Atom))))
		case compiler.OpDeletePropVal:
			key := f.pop()
			obj := f.pop()
			f.push(value.Bool(vm.deleteProp(obj, vm.toKey(key))))

		case compiler.OpBinary:
			right := f.pop()
			left := f.pop()
			f.push(vm.binaryOp(compiler.BinOp(instr.A), left, right))
		case compiler.OpUnary:
			v := f.pop()
			f.push(vm.unaryOp(compiler.UnOp(instr.A), v))
		case compiler.OpUpdate:
			v := f.pop()
			f.push(vm.updateOp(v, instr.A))

		case compiler.OpJump:
			f.pc = instr.A
		case compiler.OpJumpIfFalse:
			if !value.ToBoolean(f.pop()) {
				f.pc = instr.A
			}
		case compiler.OpJumpIfTrue:
			if value.ToBoolean(f.pop()) {
				f.pc = instr.A
			}
		case compiler.OpJumpIfNullish:
			if f.pop().IsNullish() {
				f.pc = instr.A
			}
		case compiler.OpJumpIfNotNullish:
			if !f.pop().IsNullish() {
				f.pc = instr.A
			}
		case compiler.OpThrow:
			vm.throw(f.pop())
		case compiler.OpReturn:
			return sigReturn, f.pop(), nil, nil

		case compiler.OpPushEnv:
			f.env = env.NewDeclarative(f.env, vm.realm.Atoms, 0)
		case compiler.OpPopEnv:
			f.env = f.env.Outer()

		case compiler.OpMakeClosure:
			f.push(value.Object(vm.makeClosure(f, f.code.Children[instr.A])))
		case compiler.OpCall:
			args := f.popN(instr.A)
			callee := f.pop()
			this := f.pop()
			f.push(vm.call(callee, this, args))
		case compiler.OpCallSpread:
			argsArr := f.pop()
			callee := f.pop()
			this := f.pop()
			f.push(vm.call(callee, this, vm.arrayElements(argsArr)))
		case compiler.OpNew:
			args := f.popN(instr.A)
			callee := f.pop()
			f.push(vm.construct(callee, args))
		case compiler.OpNewSpread:
			argsArr := f.pop()
			callee := f.pop()
			f.push(vm.construct(callee, vm.arrayElements(argsArr)))
		case compiler.OpGetIteratorItem:
			f.push(vm.drainRemaining(f.pop()))
		case compiler.OpSpreadArray:
			src := f.pop()
			dst := f.peek(0)
			vm.spreadInto(dst, src)

		case compiler.OpLoadArg:
			if instr.A < len(f.args) {
				f.push(f.args[instr.A])
			} else {
				f.push(value.Undefined)
			}
		case compiler.OpArgCount:
			f.push(value.Number(float64(len(f.args))))
		case compiler.OpRestArgs:
			start := instr.A
			var rest []value.Value
			if start < len(f.args) {
				rest = f.args[start:]
			}
			f.push(vm.newArrayOf(rest))

		case compiler.OpNewObject:
			f.push(value.Object(vm.newObject()))
		case compiler.OpNewArray:
			f.push(value.Object(vm.newArrayOf(nil)))
		case compiler.OpPushElement:
			v := f.pop()
			arr := f.peek(0)
			vm.pushElement(arr, v)
		case compiler.OpDefineProp:
			v := f.pop()
			obj := f.peek(0)
			vm.defineProp(obj, value.StringKey(instr.Atom), v)
		case compiler.OpDefinePropVal:
			v := f.pop()
			key := f.pop()
			obj := f.peek(0)
			vm.defineProp(obj, vm.toKey(key), v)
		case compiler.OpDefineAccessor:
			fn := f.pop()
			key := f.pop()
			obj := f.peek(0)
			vm.defineAccessor(obj, vm.toKey(key), fn, instr.A == 1)

		case compiler.OpClassHeritage:
			super := f.pop()
			ctor := f.peek(0)
			vm.applyClassHeritage(ctor, super)

		case compiler.OpForInNext:
			if !vm.forInNext(f) {
				f.pc = instr.A
			}
		case compiler.OpForOfNext:
			if !vm.forOfNext(f) {
				f.pc = instr.A
			}

		case compiler.OpAwait:
			return sigAwait, f.pop(), nil, nil
		case compiler.OpYield:
			return sigYield, f.pop(), nil, nil

		default:
			vm.throwNew(diag.KindType, "unimplemented opcode %v", instr.Op)
		}

		if f.pendingFinallyEnd >= 0 && f.pc == f.pendingFinallyEnd {
			v := f.pendingFinallyValue
			f.pendingFinallyEnd = -1
			if !vm.handleThrow(f, v, f.pc) {
				vm.throw(v)
			}
		}
	}
}

// handleThrow finds the innermost Handler in f.code.Handlers covering
// atPC. If it has a catch, the operand stack is truncated to empty (see
// CallFrame.truncateStack), v is pushed, and f.pc jumps to CatchPC. If it
// only has a finally, f.pc jumps there and the pending value is armed to
// be re-thrown once control falls past FinallyEndPC (see the
// pendingFinallyEnd check at the bottom of runLoop's instruction loop).
// Returns false if no handler covers atPC, meaning v propagates out of
// this frame entirely.
func (vm *VM) handleThrow(f *CallFrame, v value.Value, atPC int) bool {
	// A throw raised while an earlier finally-without-catch is still
	// pending (i.e. this throw happened inside that finally's own body)
	// is itself the finally's abrupt completion, which takes priority
	// over — and so discards — the value it was about to re-throw.
	f.pendingFinallyEnd = -1

	for i := len(f.code.Handlers) - 1; i >= 0; i-- {
		h := f.code.Handlers[i]
		if atPC < h.StartPC || atPC >= h.EndPC {
			continue
		}
		f.truncateStack()
		if h.CatchPC >= 0 {
			f.push(v)
			f.pc = h.CatchPC
			return true
		}
		if h.FinallyPC >= 0 {
			f.pendingFinallyValue = v
			f.pendingFinallyEnd = h.FinallyEndPC
			f.pc = h.FinallyPC
			return true
		}
	}
	return false
}

// newObject is the OpNewObject opcode.
func (vm *VM) newObject() *object.Object {
	o := object.New(value.Object(vm.realm.Intrinsics.ObjectPrototype), vm.realm.Atoms)
	vm.realm.Heap.Allocate(o)
	return o
}
