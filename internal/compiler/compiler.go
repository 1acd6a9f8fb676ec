package compiler

import (
	"esprit/internal/ast"
	"esprit/internal/atom"
	"esprit/internal/diag"
)

// Compiler lowers one internal/ast.Program (or nested function body) into
// a CodeBlock tree. A fresh Compiler is created per function literal
// (including the top-level script/module); it keeps no link to the
// Compiler of the enclosing function.
type Compiler struct {
	atoms *atom.Interner
	block *CodeBlock

	loops  []*loopCtx
	labels []labelEntry

	// envDepth counts live OpPushEnv/OpPopEnv nesting within this
	// function's code, tracked purely at compile time via pushEnvN/
	// popEnvN. A jump that exits one or more env scopes (break,
	// continue, return) can't rely on the stream's own OpPopEnv
	// instructions running — they sit on the fall-through path the jump
	// skips — so compileBreak/compileContinue/the return case emit
	// exactly enough extra OpPopEnv instructions via unwindEnvsTo to
	// bring the runtime env chain back in step with the jump target's
	// depth. Resets to 0 per Compiler instance, i.e. per function.
	envDepth int

	// finallyStack holds the Finalizer block of every try statement
	// currently being compiled (try/catch body only — popped before the
	// finally clause itself is compiled, and runFinallyBlocks hides each
	// entry while inlining it, so a finally never re-enters itself). A
	// return/break/continue that compiles while one or more
	// entries are active inlines those blocks' statements, innermost
	// first, ahead of the jump/return instruction, so the finally clause
	// always runs before control actually leaves — and any abrupt
	// completion the finally clause triggers on its own naturally
	// overrides the pending one, since it's just ordinary statement
	// compilation. Thrown exceptions can't be predicted this way, so
	// those still go through CodeBlock.Handlers at run time.
	finallyStack []*ast.BlockStatement
}

type labelEntry struct {
	name atom.Atom
	loop *loopCtx // non-nil when the label annotates a loop statement
}

// loopCtx accumulates the break/continue jump instructions a loop body
// emits; both are patched once the loop's structure (exit pc, continue
// pc) is known. finallyDepth is len(Compiler.finallyStack) at the point
// the loop (or switch, or label) was entered, so a break/continue
// targeting it knows exactly which active finally blocks it crosses.
type loopCtx struct {
	breakJumps    []int
	continueJumps []int
	finallyDepth  int
	envDepth      int
}

// Compile lowers prog into a top-level CodeBlock. The block's return
// value is the script's completion value — the last top-level
// expression statement's value, or undefined if the program is empty or
// ends with a non-expression statement — matching a script's own
// completion value rather than an explicit `return` (top-level code has
// none).
func Compile(prog *ast.Program, atoms *atom.Interner) (*CodeBlock, error) {
	c := &Compiler{atoms: atoms, block: &CodeBlock{Name: "<script>", IsStrict: prog.IsModule}}
	lastIsValue, err := c.compileProgram(prog)
	if err != nil {
		return nil, err
	}
	if !lastIsValue {
		c.block.emit(OpUndefined)
	}
	c.block.emit(OpReturn)
	return c.block, nil
}

// compileProgram compiles every top-level statement, discarding every
// expression statement's value except the very last one (left on the
// stack for Compile's trailing OpReturn to pick up), and reports whether
// the last statement left a value there at all.
func (c *Compiler) compileProgram(prog *ast.Program) (lastIsValue bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if cerr, ok := r.(*diag.Error); ok {
				err = cerr
				return
			}
			panic(r)
		}
	}()
	c.hoistDeclarations(prog.Body)
	c.hoistLexicalDeclarations(prog.Body)
	for i, stmt := range prog.Body {
		if i == len(prog.Body)-1 {
			if expr, ok := stmt.(*ast.ExpressionStatement); ok {
				c.compileExpression(expr.Expression)
				lastIsValue = true
				continue
			}
		}
		c.compileStatement(stmt)
	}
	return lastIsValue, nil
}

func (c *Compiler) fail(span diag.Span, format string, args ...interface{}) {
	panic(diag.New(diag.KindSyntax, span, format, args...))
}

// hoistDeclarations implements function-declaration and var hoisting:
// every `function` declaration directly in this statement list is bound
// and initialized before the rest of the block runs, and every `var`
// anywhere in the subtree (found via a recursive walk, not descending
// into nested function bodies) is pre-declared as undefined.
func (c *Compiler) hoistDeclarations(body []ast.Node) {
	varNames := map[atom.Atom]bool{}
	collectVarNames(body, varNames)
	for name := range varNames {
		c.block.emitAtom(OpDeclareVar, name)
	}
	for _, stmt := range body {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok {
			c.emitFunctionExpression(fn.ID, fn.Params, fn.Body, fn.IsGenerator, fn.IsAsync, false)
			c.block.emitAtom(OpDeclareVar, fn.ID)
			c.block.emitAtom(OpInitBinding, fn.ID)
		}
	}
}

// collectVarNames recurses into every statement form that does not
// introduce its own function-level scope, collecting `var` binding
// names per Annex B-style hoisting; nested function bodies are opaque.
func collectVarNames(body []ast.Node, out map[atom.Atom]bool) {
	for _, n := range body {
		collectVarNamesIn(n, out)
	}
}

func collectVarNamesIn(n ast.Node, out map[atom.Atom]bool) {
	switch s := n.(type) {
	case *ast.VariableDeclaration:
		if s.Kind == "var" {
			for _, d := range s.Declarations {
				collectPatternNames(d.ID, out)
			}
		}
	case *ast.BlockStatement:
		collectVarNames(s.Body, out)
	case *ast.IfStatement:
		collectVarNamesIn(s.Consequent, out)
		if s.Alternate != nil {
			collectVarNamesIn(s.Alternate, out)
		}
	case *ast.ForStatement:
		if s.Init != nil {
			collectVarNamesIn(s.Init, out)
		}
		collectVarNamesIn(s.Body, out)
	case *ast.ForInStatement:
		collectVarNamesIn(s.Left, out)
		collectVarNamesIn(s.Body, out)
	case *ast.ForOfStatement:
		collectVarNamesIn(s.Left, out)
		collectVarNamesIn(s.Body, out)
	case *ast.WhileStatement:
		collectVarNamesIn(s.Body, out)
	case *ast.DoWhileStatement:
		collectVarNamesIn(s.Body, out)
	case *ast.TryStatement:
		collectVarNames(s.Block.Body, out)
		if s.Handler != nil {
			collectVarNames(s.Handler.Body, out)
		}
		if s.Finalizer != nil {
			collectVarNames(s.Finalizer.Body, out)
		}
	case *ast.SwitchStatement:
		for _, cs := range s.Cases {
			collectVarNames(cs.Consequent, out)
		}
	case *ast.LabeledStatement:
		collectVarNamesIn(s.Body, out)
	}
}

func collectPatternNames(n ast.Node, out map[atom.Atom]bool) {
	switch p := n.(type) {
	case *ast.Identifier:
		out[p.Name] = true
	case *ast.ArrayPattern:
		for _, e := range p.Elements {
			if e != nil {
				collectPatternNames(e, out)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			collectPatternNames(prop.Value, out)
		}
	case *ast.AssignmentPattern:
		collectPatternNames(p.Left, out)
	case *ast.RestElement:
		collectPatternNames(p.Argument, out)
	}
}
