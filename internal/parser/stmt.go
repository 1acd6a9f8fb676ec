package parser

import (
	"esprit/internal/ast"
	"esprit/internal/atom"
	"esprit/internal/lexer"
)

// parseStatementListItem parses a StatementListItem: either a Declaration
// (function/class/let/const) or an ordinary Statement.
func (p *Parser) parseStatementListItem() ast.Node {
	switch {
	case p.isKeyword("function"):
		return p.parseFunctionDeclaration(false)
	case p.isContextualKeyword("async") && p.peekIsFunction() && !p.lex.Peek(0).PrecedingLineTerminator:
		p.advance()
		return p.parseFunctionDeclaration(true)
	case p.isKeyword("class"):
		return p.parseClassTail()
	case p.isKeyword("let") || p.isKeyword("const"):
		return p.parseVariableStatement()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseStatement() ast.Node {
	start := p.tok.Span
	switch {
	case p.isPunct("{"):
		return p.parseBlockStatement()
	case p.isKeyword("var"):
		return p.parseVariableStatement()
	case p.isPunct(";"):
		p.advance()
		return &ast.EmptyStatement{Base: b(start)}
	case p.isKeyword("if"):
		return p.parseIfStatement()
	case p.isKeyword("for"):
		return p.parseForStatement()
	case p.isKeyword("while"):
		return p.parseWhileStatement()
	case p.isKeyword("do"):
		return p.parseDoWhileStatement()
	case p.isKeyword("return"):
		return p.parseReturnStatement()
	case p.isKeyword("break"):
		return p.parseBreakStatement()
	case p.isKeyword("continue"):
		return p.parseContinueStatement()
	case p.isKeyword("throw"):
		return p.parseThrowStatement()
	case p.isKeyword("try"):
		return p.parseTryStatement()
	case p.isKeyword("switch"):
		return p.parseSwitchStatement()
	case p.isKeyword("debugger"):
		p.advance()
		p.semicolon()
		return &ast.DebuggerStatement{Base: b(start)}
	case p.tok.Kind == lexer.Identifier && p.lex.Peek(0).Kind == lexer.Punctuator && p.lex.Peek(0).Text == ":":
		return p.parseLabeledStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	start := p.expectPunct("{")
	var body []ast.Node
	for !p.isPunct("}") {
		body = append(body, p.parseStatementListItem())
	}
	p.expectPunct("}")
	return &ast.BlockStatement{Base: b(mergeSpan(start, p.tok.Span)), Body: body}
}

func (p *Parser) parseVariableStatement() *ast.VariableDeclaration {
	decl := p.parseVariableDeclarationList()
	p.semicolon()
	return decl
}

// parseVariableDeclarationList parses `var|let|const Decl, Decl, ...`
// without consuming the trailing semicolon, so for/for-in/for-of heads can
// reuse it.
func (p *Parser) parseVariableDeclarationList() *ast.VariableDeclaration {
	start := p.tok.Span
	kind := p.advance().Text
	var decls []*ast.VariableDeclarator
	for {
		declStart := p.tok.Span
		target := p.parseBindingTarget()
		var init ast.Node
		if p.eatPunct("=") {
			init = p.parseAssignment()
		}
		decls = append(decls, &ast.VariableDeclarator{Base: b(mergeSpan(declStart, p.tok.Span)), ID: target, Init: init})
		if !p.eatPunct(",") {
			break
		}
	}
	return &ast.VariableDeclaration{Base: b(mergeSpan(start, p.tok.Span)), Kind: kind, Declarations: decls}
}

func (p *Parser) parseExpressionStatement() ast.Node {
	start := p.tok.Span
	expr := p.parseExpression()
	p.semicolon()
	return &ast.ExpressionStatement{Base: b(mergeSpan(start, p.tok.Span)), Expression: expr}
}

func (p *Parser) parseIfStatement() ast.Node {
	start := p.expectKeyword("if")
	p.expectPunct("(")
	test := p.parseExpression()
	p.expectPunct(")")
	cons := p.parseStatement()
	var alt ast.Node
	if p.eatKeyword("else") {
		alt = p.parseStatement()
	}
	return &ast.IfStatement{Base: b(mergeSpan(start, p.tok.Span)), Test: test, Consequent: cons, Alternate: alt}
}

// parseForStatement disambiguates ForStatement/ForInStatement/
// ForOfStatement by parsing the head's first clause, then branching on
// whether `in`/`of` follows.
func (p *Parser) parseForStatement() ast.Node {
	start := p.expectKeyword("for")
	isAwait := p.eatKeyword("await")
	p.expectPunct("(")

	var left ast.Node
	var isDecl bool

	switch {
	case p.isPunct(";"):
		// no init clause
	case p.isKeyword("var") || p.isKeyword("let") || p.isKeyword("const"):
		isDecl = true
		left = p.parseVariableDeclarationList()
	default:
		left = p.parseExpression()
	}

	if p.isKeyword("in") || p.isKeyword("of") {
		isOf := p.tok.Text == "of"
		p.advance()
		var target ast.Node = left
		if isDecl {
			target = left
		}
		right := p.condParseAssignmentOrExpression(isOf)
		p.expectPunct(")")
		body := p.parseStatement()
		if isOf {
			return &ast.ForOfStatement{Base: b(mergeSpan(start, p.tok.Span)), Left: target, Right: right, Body: body, IsAwait: isAwait}
		}
		return &ast.ForInStatement{Base: b(mergeSpan(start, p.tok.Span)), Left: target, Right: right, Body: body}
	}

	p.expectPunct(";")
	var test ast.Node
	if !p.isPunct(";") {
		test = p.parseExpression()
	}
	p.expectPunct(";")
	var update ast.Node
	if !p.isPunct(")") {
		update = p.parseExpression()
	}
	p.expectPunct(")")
	body := p.parseStatement()
	return &ast.ForStatement{Base: b(mergeSpan(start, p.tok.Span)), Init: left, Test: test, Update: update, Body: body}
}

// condParseAssignmentOrExpression parses the right-hand side of `of`
// (an AssignmentExpression) vs. `in` (a full Expression), per their
// distinct grammar productions.
func (p *Parser) condParseAssignmentOrExpression(isOf bool) ast.Node {
	if isOf {
		return p.parseAssignment()
	}
	return p.parseExpression()
}

func (p *Parser) parseWhileStatement() ast.Node {
	start := p.expectKeyword("while")
	p.expectPunct("(")
	test := p.parseExpression()
	p.expectPunct(")")
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	return &ast.WhileStatement{Base: b(mergeSpan(start, p.tok.Span)), Test: test, Body: body}
}

func (p *Parser) parseDoWhileStatement() ast.Node {
	start := p.expectKeyword("do")
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	p.expectKeyword("while")
	p.expectPunct("(")
	test := p.parseExpression()
	p.expectPunct(")")
	p.eatPunct(";")
	return &ast.DoWhileStatement{Base: b(mergeSpan(start, p.tok.Span)), Body: body, Test: test}
}

func (p *Parser) parseReturnStatement() ast.Node {
	start := p.expectKeyword("return")
	if p.isPunct(";") || p.isPunct("}") || p.tok.Kind == lexer.EOF || p.tok.PrecedingLineTerminator {
		p.semicolon()
		return &ast.ReturnStatement{Base: b(start)}
	}
	arg := p.parseExpression()
	p.semicolon()
	return &ast.ReturnStatement{Base: b(mergeSpan(start, p.tok.Span)), Argument: arg}
}

func (p *Parser) parseBreakStatement() ast.Node {
	start := p.expectKeyword("break")
	label := atom.Invalid
	if p.tok.Kind == lexer.Identifier && !p.tok.PrecedingLineTerminator {
		label = p.advance().Atom
	}
	p.semicolon()
	return &ast.BreakStatement{Base: b(mergeSpan(start, p.tok.Span)), Label: label}
}

func (p *Parser) parseContinueStatement() ast.Node {
	start := p.expectKeyword("continue")
	label := atom.Invalid
	if p.tok.Kind == lexer.Identifier && !p.tok.PrecedingLineTerminator {
		label = p.advance().Atom
	}
	p.semicolon()
	return &ast.ContinueStatement{Base: b(mergeSpan(start, p.tok.Span)), Label: label}
}

func (p *Parser) parseThrowStatement() ast.Node {
	start := p.expectKeyword("throw")
	if p.tok.PrecedingLineTerminator {
		p.fail(p.tok.Span, "illegal newline after throw")
	}
	arg := p.parseExpression()
	p.semicolon()
	return &ast.ThrowStatement{Base: b(mergeSpan(start, p.tok.Span)), Argument: arg}
}

func (p *Parser) parseTryStatement() ast.Node {
	start := p.expectKeyword("try")
	block := p.parseBlockStatement()
	stmt := &ast.TryStatement{Base: b(start), Block: block}
	if p.eatKeyword("catch") {
		stmt.HasCatch = true
		if p.eatPunct("(") {
			stmt.Param = p.parseBindingTarget()
			p.expectPunct(")")
		}
		stmt.Handler = p.parseBlockStatement()
	}
	if p.eatKeyword("finally") {
		stmt.Finalizer = p.parseBlockStatement()
	}
	stmt.Sp = mergeSpan(start, p.tok.Span)
	return stmt
}

func (p *Parser) parseSwitchStatement() ast.Node {
	start := p.expectKeyword("switch")
	p.expectPunct("(")
	disc := p.parseExpression()
	p.expectPunct(")")
	p.expectPunct("{")
	p.inSwitch++
	var cases []*ast.SwitchCase
	for !p.isPunct("}") {
		caseStart := p.tok.Span
		var test ast.Node
		if p.eatKeyword("case") {
			test = p.parseExpression()
		} else {
			p.expectKeyword("default")
		}
		p.expectPunct(":")
		var body []ast.Node
		for !p.isPunct("}") && !p.isKeyword("case") && !p.isKeyword("default") {
			body = append(body, p.parseStatementListItem())
		}
		cases = append(cases, &ast.SwitchCase{Base: b(mergeSpan(caseStart, p.tok.Span)), Test: test, Consequent: body})
	}
	p.inSwitch--
	p.expectPunct("}")
	return &ast.SwitchStatement{Base: b(mergeSpan(start, p.tok.Span)), Discriminant: disc, Cases: cases}
}

func (p *Parser) parseLabeledStatement() ast.Node {
	start := p.tok.Span
	label := p.advance().Atom
	p.expectPunct(":")
	body := p.parseStatement()
	return &ast.LabeledStatement{Base: b(mergeSpan(start, p.tok.Span)), Label: label, Body: body}
}
