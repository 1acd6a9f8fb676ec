package compiler

import (
	"esprit/internal/ast"
	"esprit/internal/atom"
	"esprit/internal/diag"
)

func (c *Compiler) compileStatement(n ast.Node) {
	switch s := n.(type) {
	case *ast.BlockStatement:
		c.compileBlock(s)
	case *ast.VariableDeclaration:
		c.compileVariableDeclaration(s)
	case *ast.ExpressionStatement:
		c.compileExpression(s.Expression)
		c.block.emit(OpPop)
	case *ast.EmptyStatement:
		// no-op
	case *ast.IfStatement:
		c.compileIf(s)
	case *ast.ForStatement:
		c.compileFor(s, atom.Invalid)
	case *ast.ForInStatement:
		c.compileForIn(s, atom.Invalid)
	case *ast.ForOfStatement:
		c.compileForOf(s, atom.Invalid)
	case *ast.WhileStatement:
		c.compileWhile(s, atom.Invalid)
	case *ast.DoWhileStatement:
		c.compileDoWhile(s, atom.Invalid)
	case *ast.ReturnStatement:
		if s.Argument != nil {
			c.compileExpression(s.Argument)
		} else {
			c.block.emit(OpUndefined)
		}
		c.runFinallyBlocks(0)
		c.unwindEnvsTo(0)
		c.block.emit(OpReturn)
	case *ast.BreakStatement:
		c.compileBreak(s.Label)
	case *ast.ContinueStatement:
		c.compileContinue(s.Label)
	case *ast.ThrowStatement:
		c.compileExpression(s.Argument)
		c.block.emit(OpThrow)
	case *ast.TryStatement:
		c.compileTry(s)
	case *ast.SwitchStatement:
		c.compileSwitch(s)
	case *ast.LabeledStatement:
		c.compileLabeled(s)
	case *ast.DebuggerStatement:
		// no-op: no debugger hook exists in this core.
	case *ast.FunctionDeclaration:
		// Already bound by hoistDeclarations at the top of this block.
	case *ast.ClassDeclaration:
		c.compileClassDeclaration(s)
	default:
		c.fail(n.Span(), "compiler: unsupported statement node %T", n)
	}
}

func (c *Compiler) compileBlock(b *ast.BlockStatement) {
	c.pushEnvN(len(b.Body))
	c.hoistLexicalDeclarations(b.Body)
	for _, stmt := range b.Body {
		c.compileStatement(stmt)
	}
	c.popEnvN()
}

// pushEnvN/popEnvN emit OpPushEnv/OpPopEnv and track the compile-time env
// nesting depth (Compiler.envDepth) so a jump that skips the matching
// OpPopEnv — break, continue, return — can still unwind the runtime env
// chain correctly via unwindEnvsTo.
func (c *Compiler) pushEnvN(n int) {
	c.block.emitA(OpPushEnv, n)
	c.envDepth++
}

func (c *Compiler) popEnvN() {
	c.block.emit(OpPopEnv)
	c.envDepth--
}

// unwindEnvsTo emits one OpPopEnv per env level between the current
// compile-time depth and target, for a jump/return that is about to skip
// over their matching (in-stream, never-reached) OpPopEnv instructions.
// It does not itself adjust Compiler.envDepth: compilation of the
// enclosing scope continues normally afterward.
func (c *Compiler) unwindEnvsTo(target int) {
	for i := c.envDepth; i > target; i-- {
		c.block.emit(OpPopEnv)
	}
}

// hoistLexicalDeclarations pre-declares every let/const/class binding
// directly in this block (uninitialized, i.e. in its TDZ) so forward
// references inside the block see a TDZ error rather than an outer
// binding of the same name, matching block-scoped declaration semantics.
func (c *Compiler) hoistLexicalDeclarations(body []ast.Node) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			if s.Kind == "let" || s.Kind == "const" {
				for _, d := range s.Declarations {
					names := map[atom.Atom]bool{}
					collectPatternNames(d.ID, names)
					for name := range names {
						if s.Kind == "const" {
							c.block.emitAtom(OpDeclareConst, name)
						} else {
							c.block.emitAtom(OpDeclareLet, name)
						}
					}
				}
			}
		case *ast.ClassDeclaration:
			c.block.emitAtom(OpDeclareLet, s.ID)
		}
	}
}

func (c *Compiler) compileVariableDeclaration(s *ast.VariableDeclaration) {
	for _, d := range s.Declarations {
		if d.Init == nil {
			if s.Kind == "var" {
				continue // already pre-declared as undefined by hoisting
			}
			c.block.emit(OpUndefined)
			c.compileBindingInit(d.ID)
			continue
		}
		c.compileExpression(d.Init)
		c.compileBindingInit(d.ID)
	}
}

// compileBindingInit assigns the value on top of the stack to a binding
// target via OpInitBinding (for simple identifiers, so TDZ is cleared)
// or, for a destructuring pattern, via the shared destructure-assign path.
func (c *Compiler) compileBindingInit(target ast.Node) {
	if id, ok := target.(*ast.Identifier); ok {
		c.block.emitAtom(OpInitBinding, id.Name)
		return
	}
	c.compileDestructureAssign(target)
}

func (c *Compiler) compileIf(s *ast.IfStatement) {
	c.compileExpression(s.Test)
	jf := c.block.emit(OpJumpIfFalse)
	c.compileStatement(s.Consequent)
	if s.Alternate != nil {
		jend := c.block.emit(OpJump)
		c.block.patchJump(jf)
		c.compileStatement(s.Alternate)
		c.block.patchJump(jend)
	} else {
		c.block.patchJump(jf)
	}
}

func (c *Compiler) pushLoop() *loopCtx {
	l := &loopCtx{finallyDepth: len(c.finallyStack), envDepth: c.envDepth}
	c.loops = append(c.loops, l)
	return l
}

// runFinallyBlocks inline-compiles every active finally clause from the
// innermost down to (but not including) index floor, in that order,
// directly ahead of a jump/return that crosses them. Each finally's
// statements run exactly the way compileBlock always compiles them, so
// an abrupt completion the finally itself performs (its own return,
// throw, or a break/continue out of it) simply takes priority over
// whatever pending completion is crossing it, with no runtime bookkeeping.
func (c *Compiler) runFinallyBlocks(floor int) {
	saved := c.finallyStack
	for i := len(saved) - 1; i >= floor; i-- {
		// While finally i is being inlined only the entries outside it are
		// active, so a return/break/continue inside it crosses those alone.
		c.finallyStack = saved[:i:i]
		c.compileBlock(saved[i])
	}
	c.finallyStack = saved
}

func (c *Compiler) popLoop() {
	c.loops = c.loops[:len(c.loops)-1]
}

func (c *Compiler) patchLoopExits(l *loopCtx, continueTarget, breakTarget int) {
	for _, pc := range l.continueJumps {
		c.block.patchJumpTo(pc, continueTarget)
	}
	for _, pc := range l.breakJumps {
		c.block.patchJumpTo(pc, breakTarget)
	}
}

func (c *Compiler) compileFor(s *ast.ForStatement, label atom.Atom) {
	hasScope := false
	if decl, ok := s.Init.(*ast.VariableDeclaration); ok && decl.Kind != "var" {
		hasScope = true
		c.pushEnvN(len(decl.Declarations))
		c.hoistLexicalDeclarations([]ast.Node{decl})
	}
	if s.Init != nil {
		if decl, ok := s.Init.(*ast.VariableDeclaration); ok {
			c.compileVariableDeclaration(decl)
		} else {
			c.compileExpression(s.Init)
			c.block.emit(OpPop)
		}
	}

	l := c.pushLoop()
	c.labels = append(c.labels, labelEntry{name: label, loop: l})

	testPC := c.block.here()
	var exitJump int
	hasTest := s.Test != nil
	if hasTest {
		c.compileExpression(s.Test)
		exitJump = c.block.emit(OpJumpIfFalse)
	}
	c.compileStatement(s.Body)
	continuePC := c.block.here()
	if s.Update != nil {
		c.compileExpression(s.Update)
		c.block.emit(OpPop)
	}
	c.block.emitA(OpJump, testPC)
	endPC := c.block.here()
	if hasTest {
		c.block.patchJump(exitJump)
	}

	c.patchLoopExits(l, continuePC, endPC)
	c.labels = c.labels[:len(c.labels)-1]
	c.popLoop()
	if hasScope {
		c.popEnvN()
	}
}

func (c *Compiler) compileWhile(s *ast.WhileStatement, label atom.Atom) {
	l := c.pushLoop()
	c.labels = append(c.labels, labelEntry{name: label, loop: l})

	testPC := c.block.here()
	c.compileExpression(s.Test)
	exitJump := c.block.emit(OpJumpIfFalse)
	c.compileStatement(s.Body)
	c.block.emitA(OpJump, testPC)
	endPC := c.block.here()
	c.block.patchJump(exitJump)

	c.patchLoopExits(l, testPC, endPC)
	c.labels = c.labels[:len(c.labels)-1]
	c.popLoop()
}

func (c *Compiler) compileDoWhile(s *ast.DoWhileStatement, label atom.Atom) {
	l := c.pushLoop()
	c.labels = append(c.labels, labelEntry{name: label, loop: l})

	startPC := c.block.here()
	c.compileStatement(s.Body)
	continuePC := c.block.here()
	c.compileExpression(s.Test)
	c.block.emitAB(OpJumpIfTrue, startPC, 0)
	endPC := c.block.here()

	c.patchLoopExits(l, continuePC, endPC)
	c.labels = c.labels[:len(c.labels)-1]
	c.popLoop()
}

func (c *Compiler) compileForIn(s *ast.ForInStatement, label atom.Atom) {
	c.compileExpression(s.Right)
	l := c.pushLoop()
	c.labels = append(c.labels, labelEntry{name: label, loop: l})

	continuePC := c.block.here()
	exitJump := c.block.emit(OpForInNext) // pushes next key, or jumps A on exhaustion
	c.pushEnvN(1)
	c.bindForTarget(s.Left)
	c.compileStatement(s.Body)
	c.popEnvN()
	c.block.emitA(OpJump, continuePC)
	endPC := c.block.here()
	c.block.patchJump(exitJump)
	c.block.emit(OpPop) // drop the iterated object

	c.patchLoopExits(l, continuePC, endPC)
	c.labels = c.labels[:len(c.labels)-1]
	c.popLoop()
}

func (c *Compiler) compileForOf(s *ast.ForOfStatement, label atom.Atom) {
	c.compileExpression(s.Right)
	l := c.pushLoop()
	c.labels = append(c.labels, labelEntry{name: label, loop: l})

	continuePC := c.block.here()
	exitJump := c.block.emit(OpForOfNext)
	c.pushEnvN(1)
	c.bindForTarget(s.Left)
	c.compileStatement(s.Body)
	c.popEnvN()
	c.block.emitA(OpJump, continuePC)
	endPC := c.block.here()
	c.block.patchJump(exitJump)
	c.block.emit(OpPop)

	c.patchLoopExits(l, continuePC, endPC)
	c.labels = c.labels[:len(c.labels)-1]
	c.popLoop()
}

// bindForTarget binds the freshly-iterated value (left on the stack by
// OpForInNext/OpForOfNext) to a for-in/for-of head, which is either a
// fresh let/const/var declaration or a plain assignment target.
func (c *Compiler) bindForTarget(left ast.Node) {
	if decl, ok := left.(*ast.VariableDeclaration); ok {
		target := decl.Declarations[0].ID
		names := map[atom.Atom]bool{}
		collectPatternNames(target, names)
		for name := range names {
			if decl.Kind == "const" {
				c.block.emitAtom(OpDeclareConst, name)
			} else {
				c.block.emitAtom(OpDeclareLet, name)
			}
		}
		c.compileBindingInit(target)
		return
	}
	c.compileAssignTo(left)
	c.block.emit(OpPop)
}

func (c *Compiler) compileBreak(label atom.Atom) {
	target := c.findLoop(label)
	if target == nil {
		c.fail(diag.Span{}, "compiler: break outside a loop or switch")
		return
	}
	c.runFinallyBlocks(target.finallyDepth)
	c.unwindEnvsTo(target.envDepth)
	pc := c.block.emit(OpJump)
	target.breakJumps = append(target.breakJumps, pc)
}

func (c *Compiler) compileContinue(label atom.Atom) {
	target := c.findLoop(label)
	if label == atom.Invalid {
		// Skip switch contexts: only iteration loops register a labels
		// entry for their own loopCtx, so the innermost such ctx is the
		// continue target.
		target = nil
		for i := len(c.loops) - 1; i >= 0 && target == nil; i-- {
			for _, le := range c.labels {
				if le.loop == c.loops[i] {
					target = c.loops[i]
				}
			}
		}
	}
	if target == nil {
		c.fail(diag.Span{}, "compiler: continue outside a loop")
		return
	}
	c.runFinallyBlocks(target.finallyDepth)
	c.unwindEnvsTo(target.envDepth)
	pc := c.block.emit(OpJump)
	target.continueJumps = append(target.continueJumps, pc)
}

// findLoop resolves a break/continue target: an unlabeled jump targets
// the innermost active loop (or switch, for break only — modeled as a
// loopCtx with no continueJumps ever populated); a labeled jump looks up
// the label stack for the loop that label annotates.
func (c *Compiler) findLoop(label atom.Atom) *loopCtx {
	if label == atom.Invalid {
		if len(c.loops) == 0 {
			return nil
		}
		return c.loops[len(c.loops)-1]
	}
	for i := len(c.labels) - 1; i >= 0; i-- {
		if c.labels[i].name == label {
			return c.labels[i].loop
		}
	}
	return nil
}

func (c *Compiler) compileLabeled(s *ast.LabeledStatement) {
	switch body := s.Body.(type) {
	case *ast.ForStatement:
		c.compileFor(body, s.Label)
	case *ast.ForInStatement:
		c.compileForIn(body, s.Label)
	case *ast.ForOfStatement:
		c.compileForOf(body, s.Label)
	case *ast.WhileStatement:
		c.compileWhile(body, s.Label)
	case *ast.DoWhileStatement:
		c.compileDoWhile(body, s.Label)
	default:
		// A label on a non-loop statement only matters for `break label;`
		// reaching it directly; model it as a zero-continue loopCtx so
		// findLoop can resolve the break target.
		l := &loopCtx{finallyDepth: len(c.finallyStack), envDepth: c.envDepth}
		c.labels = append(c.labels, labelEntry{name: s.Label, loop: l})
		c.compileStatement(s.Body)
		end := c.block.here()
		for _, pc := range l.breakJumps {
			c.block.patchJumpTo(pc, end)
		}
		c.labels = c.labels[:len(c.labels)-1]
	}
}

func (c *Compiler) compileTry(s *ast.TryStatement) {
	h := Handler{CatchPC: -1, FinallyPC: -1, FinallyEndPC: -1}

	// The finally clause is pushed for the duration of the try AND catch
	// bodies, so any return/break/continue inside either one inlines it
	// ahead of the jump — but popped again before the finally clause
	// itself compiles, so it never inlines into itself.
	if s.Finalizer != nil {
		c.finallyStack = append(c.finallyStack, s.Finalizer)
	}

	h.StartPC = c.block.here()
	c.compileBlock(s.Block)
	h.EndPC = c.block.here()
	afterTryJump := c.block.emit(OpJump)

	var catchStart, catchEnd int
	if s.HasCatch {
		catchStart = c.block.here()
		h.CatchPC = catchStart
		c.pushEnvN(1)
		if s.Param != nil {
			names := map[atom.Atom]bool{}
			collectPatternNames(s.Param, names)
			for name := range names {
				c.block.emitAtom(OpDeclareLet, name)
			}
			c.compileBindingInit(s.Param)
		} else {
			c.block.emit(OpPop) // discard the thrown value, no binding to receive it
		}
		c.hoistLexicalDeclarations(s.Handler.Body)
		for _, stmt := range s.Handler.Body {
			c.compileStatement(stmt)
		}
		c.popEnvN()
		catchEnd = c.block.here()
	}
	c.block.patchJump(afterTryJump)

	if s.Finalizer != nil {
		c.finallyStack = c.finallyStack[:len(c.finallyStack)-1]
		h.FinallyPC = c.block.here()
		c.compileBlock(s.Finalizer)
		h.FinallyEndPC = c.block.here()
	}
	c.block.Handlers = append(c.block.Handlers, h)

	// An exception raised inside the catch clause itself still must run
	// the finally before propagating — the StartPC..EndPC range above
	// only covers the try block, so register a second entry (no catch of
	// its own) spanning the catch clause with the same finally target.
	if s.HasCatch && s.Finalizer != nil {
		c.block.Handlers = append(c.block.Handlers, Handler{
			StartPC: catchStart, EndPC: catchEnd,
			CatchPC: -1, FinallyPC: h.FinallyPC, FinallyEndPC: h.FinallyEndPC,
		})
	}
}

func (c *Compiler) compileSwitch(s *ast.SwitchStatement) {
	c.compileExpression(s.Discriminant)
	c.pushEnvN(len(s.Cases))
	for _, cs := range s.Cases {
		c.hoistLexicalDeclarations(cs.Consequent)
	}

	l := &loopCtx{finallyDepth: len(c.finallyStack), envDepth: c.envDepth} // switch reuses loopCtx purely as a break target
	c.loops = append(c.loops, l)

	type pending struct {
		jump int
		cs   *ast.SwitchCase
	}
	var tests []pending
	var defaultCase *ast.SwitchCase
	for _, cs := range s.Cases {
		if cs.Test == nil {
			defaultCase = cs
			continue
		}
		c.block.emit(OpDup)
		c.compileExpression(cs.Test)
		c.block.emitA(OpBinary, int(BinStrictEq))
		jmp := c.block.emit(OpJumpIfTrue)
		tests = append(tests, pending{jmp, cs})
	}
	jDefault := c.block.emit(OpJump)

	// Cases run in source order and fall through into the next one when a
	// body doesn't end in break, so bodies are emitted back-to-back; each
	// case's test/default jump is patched to the PC it's about to reach.
	for _, cs := range s.Cases {
		if cs == defaultCase {
			c.block.patchJump(jDefault)
		}
		for _, t := range tests {
			if t.cs == cs {
				c.block.patchJump(t.jump)
			}
		}
		for _, stmt := range cs.Consequent {
			c.compileStatement(stmt)
		}
	}
	if defaultCase == nil {
		c.block.patchJump(jDefault)
	}

	// Break jumps target the pop itself, not past it: the discriminant
	// pushed before the case tests is still live on the stack at every
	// break site, so the jump must still run through OpPop rather than
	// skip it and leak the slot for the rest of the function.
	popPC := c.block.here()
	c.block.emit(OpPop) // discard the discriminant
	for _, pc := range l.breakJumps {
		c.block.patchJumpTo(pc, popPC)
	}
	c.loops = c.loops[:len(c.loops)-1]
	c.popEnvN()
}
