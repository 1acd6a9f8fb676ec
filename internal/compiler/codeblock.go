package compiler

import (
	"esprit/internal/atom"
	"esprit/internal/value"
)

// Handler is one entry of a try-block's table-driven exception record:
// `(start-pc, end-pc, catch-pc, finally-pc)`. CatchPC/FinallyPC are -1
// when the corresponding clause is absent. FinallyEndPC marks where the
// finally clause's own code ends, so the VM knows when control has
// fallen out of it normally (as opposed to via its own nested abrupt
// completion) and the original pending throw should resume; it is -1
// when FinallyPC is. Explicit return/break/continue crossing a
// try/catch boundary never go through this table at all — the compiler
// inlines the finally clause's statements at each such exit site
// instead (see Compiler.finallyStack), so only OpThrow needs runtime
// handler dispatch.
type Handler struct {
	StartPC      int
	EndPC        int
	CatchPC      int
	FinallyPC    int
	FinallyEndPC int
}

// CodeBlock is the unit of compiled code: the script/module top level, or
// one function literal. Nested function literals compile to child
// CodeBlocks referenced by OpMakeClosure's operand.
type CodeBlock struct {
	Name   string
	Code   []Instruction
	Consts []value.Value

	// NumParams is the length of the formal parameter list. How arguments
	// bind to parameters (defaults, rest, destructuring) is not recorded
	// here; it is lowered inline in Code by a synthetic prologue.
	NumParams int

	Children []*CodeBlock
	Handlers []Handler

	IsArrow     bool
	IsGenerator bool
	IsAsync     bool
	IsStrict    bool

	// FreeVars is never filled in by the compiler and stays nil;
	// resolution is always by-name through the live environment chain at
	// run time.
	FreeVars []atom.Atom
}

// AddConst interns v into the constant pool, returning its index. Equal
// numbers/strings/booleans are deduplicated; this is a simplification
// over a full structural cache but keeps common literals (0, 1, "",
// undefined-as-const) from growing the pool unboundedly in a loop body.
func (c *CodeBlock) AddConst(v value.Value) int {
	for i, existing := range c.Consts {
		if sameConstant(existing, v) {
			return i
		}
	}
	c.Consts = append(c.Consts, v)
	return len(c.Consts) - 1
}

func sameConstant(a, b value.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case value.KindNumber:
		return a.AsNumber() == b.AsNumber()
	case value.KindString:
		return a.AsString() == b.AsString()
	case value.KindBoolean:
		return a.AsBoolean() == b.AsBoolean()
	default:
		return false
	}
}

func (c *CodeBlock) emit(op Op) int {
	c.Code = append(c.Code, Instruction{Op: op})
	return len(c.Code) - 1
}

func (c *CodeBlock) emitA(op Op, a int) int {
	c.Code = append(c.Code, Instruction{Op: op, A: a})
	return len(c.Code) - 1
}

func (c *CodeBlock) emitAtom(op Op, a atom.Atom) int {
	c.Code = append(c.Code, Instruction{Op: op, Atom: a})
	return len(c.Code) - 1
}

func (c *CodeBlock) emitAB(op Op, a, bv int) int {
	c.Code = append(c.Code, Instruction{Op: op, A: a, B: bv})
	return len(c.Code) - 1
}

// patchJump rewrites a previously emitted jump instruction's target to
// the current end of the code stream.
func (c *CodeBlock) patchJump(pc int) {
	c.Code[pc].A = len(c.Code)
}

func (c *CodeBlock) patchJumpTo(pc, target int) {
	c.Code[pc].A = target
}

func (c *CodeBlock) here() int { return len(c.Code) }
