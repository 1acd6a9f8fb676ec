package compiler

import (
	"esprit/internal/ast"
	"esprit/internal/atom"
)

// emitFunctionExpression lowers a function/arrow literal into a child
// CodeBlock and emits OpMakeClosure in the current block referencing it.
// name is atom.Invalid for an anonymous function expression.
func (c *Compiler) emitFunctionExpression(name atom.Atom, params []ast.Node, body ast.Node, isGenerator, isAsync, isArrow bool) {
	child := c.compileFunctionBody(name, params, body, isGenerator, isAsync, isArrow)
	idx := len(c.block.Children)
	c.block.Children = append(c.block.Children, child)
	c.block.emitA(OpMakeClosure, idx)
}

func (c *Compiler) compileArrowFunction(e *ast.ArrowFunctionExpression) {
	child := c.compileFunctionBody(atom.Invalid, e.Params, e.Body, false, e.IsAsync, true)
	idx := len(c.block.Children)
	c.block.Children = append(c.block.Children, child)
	c.block.emitA(OpMakeClosure, idx)
}

func (c *Compiler) compileFunctionBody(name atom.Atom, params []ast.Node, body ast.Node, isGenerator, isAsync, isArrow bool) *CodeBlock {
	blockName := "<anonymous>"
	if name != atom.Invalid {
		blockName = c.atoms.Resolve(name)
	}
	child := &CodeBlock{
		Name:        blockName,
		NumParams:   len(params),
		IsArrow:     isArrow,
		IsGenerator: isGenerator,
		IsAsync:     isAsync,
	}
	sub := &Compiler{atoms: c.atoms, block: child}
	if !isArrow {
		// The legacy `arguments` object, approximated as a plain array of
		// the call's actual arguments rather than the real array-like
		// exotic object (no live mapping to named parameters in sloppy
		// mode — see DESIGN.md).
		child.emitAtom(OpDeclareLet, atom.Arguments)
		child.emitA(OpRestArgs, 0)
		child.emitAtom(OpInitBinding, atom.Arguments)
	}
	sub.emitParamPrologue(params)

	switch b := body.(type) {
	case *ast.BlockStatement:
		sub.hoistDeclarations(b.Body)
		sub.hoistLexicalDeclarations(b.Body)
		for _, stmt := range b.Body {
			sub.compileStatement(stmt)
		}
		child.emit(OpUndefined)
		child.emit(OpReturn)
	default:
		// Concise arrow body: the expression's value is the return value.
		sub.compileExpression(body)
		child.emit(OpReturn)
	}
	return child
}

// emitParamPrologue declares each parameter's binding name(s), then binds
// it from the call's actual arguments: OpLoadArg for a positional
// parameter (pushing undefined past argc, so a default kicks in exactly
// like it would for a too-few-arguments call) or OpRestArgs for a rest
// parameter. Defaults and destructuring are handled by the same
// compileBindingInit path a let/const declaration's initializer uses.
func (c *Compiler) emitParamPrologue(params []ast.Node) {
	for i, p := range params {
		if rest, ok := p.(*ast.RestElement); ok {
			c.declareParamPattern(rest.Argument)
			c.block.emitA(OpRestArgs, i)
			c.compileBindingInit(rest.Argument)
			continue
		}
		c.declareParamPattern(p)
		c.block.emitA(OpLoadArg, i)
		c.compileBindingInit(p)
	}
}

// declareParamPattern pre-declares every binding name a destructuring
// parameter pattern introduces.
func (c *Compiler) declareParamPattern(pattern ast.Node) {
	names := map[atom.Atom]bool{}
	collectPatternNames(pattern, names)
	for n := range names {
		c.block.emitAtom(OpDeclareLet, n)
	}
}
