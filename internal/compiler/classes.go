package compiler

import (
	"esprit/internal/ast"
	"esprit/internal/atom"
	"esprit/internal/value"
)

func (c *Compiler) compileClassDeclaration(s *ast.ClassDeclaration) {
	c.compileClass(s.ID, s.SuperClass, s.Body)
	c.block.emitAtom(OpInitBinding, s.ID)
}

func (c *Compiler) compileClassExpression(e *ast.ClassExpression) {
	c.compileClass(e.ID, e.SuperClass, e.Body)
}

// compileClass emits a constructor closure, wires superclass heritage
// (if any), and installs every method/accessor/static field onto the
// constructor or its prototype. Instance fields are collected and spliced
// into the constructor body as a `this.<name> = <init>` prologue, run
// before the explicit constructor's own statements (or, absent an
// explicit constructor, as the entire body).
func (c *Compiler) compileClass(name atom.Atom, superClass ast.Node, members []*ast.ClassMember) {
	var ctor *ast.ClassMember
	var instanceFields []*ast.ClassMember
	for _, m := range members {
		if m.Kind == "constructor" {
			ctor = m
			continue
		}
		if m.Kind == "field" && !m.Static {
			instanceFields = append(instanceFields, m)
		}
	}

	child := c.compileConstructorBody(ctor, instanceFields, superClass != nil)
	idx := len(c.block.Children)
	c.block.Children = append(c.block.Children, child)
	c.block.emitA(OpMakeClosure, idx)

	if superClass != nil {
		c.compileExpression(superClass)
		c.block.emit(OpClassHeritage)
	}

	for _, m := range members {
		if m.Kind == "constructor" || (m.Kind == "field" && !m.Static) {
			continue
		}
		c.compileClassMember(m)
	}
}

// compileConstructorBody builds the CodeBlock for a class's constructor:
// an explicit `constructor(...)` method's params/body when present,
// otherwise a synthesized default (taking no parameters; a derived
// class's implicit super(...) forwarding is not implemented — see
// DESIGN.md). Instance field initializers run first, as `this.<name> =
// <init>` assignments, matching field-initialization-before-constructor-
// body-order semantics.
func (c *Compiler) compileConstructorBody(ctor *ast.ClassMember, fields []*ast.ClassMember, derived bool) *CodeBlock {
	var params []ast.Node
	var bodyStmts []ast.Node
	if ctor != nil {
		fn := ctor.Value.(*ast.FunctionExpression)
		params = fn.Params
		bodyStmts = fn.Body.Body
	}

	child := &CodeBlock{Name: "constructor", NumParams: len(params)}
	sub := &Compiler{atoms: c.atoms, block: child}
	sub.emitParamPrologue(params)

	for _, f := range fields {
		sub.block.emit(OpThis)
		if f.Value != nil {
			sub.compileExpression(f.Value)
		} else {
			sub.block.emit(OpUndefined)
		}
		sub.block.emitAtom(OpSetProp, sub.propertyKeyAtom(f.Key))
	}

	sub.hoistDeclarations(bodyStmts)
	sub.hoistLexicalDeclarations(bodyStmts)
	for _, stmt := range bodyStmts {
		sub.compileStatement(stmt)
	}
	child.emit(OpThis)
	child.emit(OpReturn)
	return child
}

func (c *Compiler) compileClassMember(m *ast.ClassMember) {
	// A field's Value is its initializer expression (or nil), not a
	// function, so only methods and accessors get a child CodeBlock.
	idx := -1
	if m.Kind != "field" {
		fn := m.Value.(*ast.FunctionExpression)
		child := c.compileFunctionBody(atom.Invalid, fn.Params, fn.Body, fn.IsGenerator, fn.IsAsync, false)
		idx = len(c.block.Children)
		c.block.Children = append(c.block.Children, child)
	}

	// Target object: the constructor itself for a static member, its
	// prototype for an instance member.
	loadTarget := func() {
		c.block.emit(OpDup) // ctor is already on top after OpMakeClosure/OpClassHeritage
		if !m.Static {
			c.block.emitAtom(OpGetProp, c.atoms.Intern("prototype"))
		}
	}

	switch m.Kind {
	case "get", "set":
		loadTarget()
		if m.Computed {
			c.compileExpression(m.Key)
		} else {
			c.block.emitA(OpConst, c.block.AddConst(value.String(c.atoms.Resolve(c.propertyKeyAtom(m.Key)))))
		}
		c.block.emitA(OpMakeClosure, idx)
		accessorIdx := 0
		if m.Kind == "set" {
			accessorIdx = 1
		}
		c.block.emitA(OpDefineAccessor, accessorIdx)
		c.block.emit(OpPop)
	case "field": // static field
		loadTarget()
		if m.Value != nil {
			c.compileExpression(m.Value)
		} else {
			c.block.emit(OpUndefined)
		}
		c.block.emitAtom(OpDefineProp, c.propertyKeyAtom(m.Key))
		c.block.emit(OpPop)
	default: // "method"
		loadTarget()
		c.block.emitA(OpMakeClosure, idx)
		c.block.emitAtom(OpDefineProp, c.propertyKeyAtom(m.Key))
		c.block.emit(OpPop)
	}
}
