package parser

import (
	"esprit/internal/ast"
	"esprit/internal/lexer"
)

func (p *Parser) parsePrimary() ast.Node {
	if p.isRegexStart() {
		return p.parseRegexLiteral()
	}

	start := p.tok.Span
	switch {
	case p.isKeyword("this"):
		p.advance()
		return &ast.ThisExpression{Base: b(start)}
	case p.isKeyword("super"):
		if p.inMethod == 0 {
			p.fail(start, "'super' keyword is only valid inside a method")
		}
		p.advance()
		return &ast.SuperExpression{Base: b(start)}
	case p.isKeyword("null"):
		p.advance()
		return &ast.Literal{Base: b(start), Kind: ast.LitNull}
	case p.isKeyword("true") || p.isKeyword("false"):
		v := p.advance().Text == "true"
		return &ast.Literal{Base: b(start), Kind: ast.LitBool, Bool: v}
	case p.isKeyword("function"):
		return p.parseFunctionExpression(false)
	case p.isContextualKeyword("async") && p.peekIsFunction():
		p.advance()
		return p.parseFunctionExpression(true)
	case p.isKeyword("class"):
		return p.parseClassExpression()
	case p.tok.Kind == lexer.NumericLiteral:
		return p.parseNumericLiteral()
	case p.tok.Kind == lexer.StringLiteral:
		t := p.advance()
		return &ast.Literal{Base: b(start), Kind: ast.LitString, String: t.Cooked}
	case p.tok.Kind == lexer.NoSubTemplate || p.tok.Kind == lexer.TemplateHead:
		return p.parseTemplateLiteral()
	case p.tok.Kind == lexer.Identifier || (p.tok.Kind == lexer.Keyword && isContextualIdentifier(p.tok.Text)):
		name := p.advance().Atom
		return &ast.Identifier{Base: b(start), Name: name}
	case p.tok.Kind == lexer.PrivateIdentifier:
		name := p.advance().Atom
		return &ast.PrivateIdentifier{Base: b(start), Name: name}
	case p.isPunct("("):
		return p.parseParenthesizedExpression()
	case p.isPunct("["):
		return p.parseArrayLiteral()
	case p.isPunct("{"):
		return p.parseObjectLiteral()
	}
	p.fail(p.tok.Span, "unexpected token %q", p.tok.Text)
	return nil
}

// isContextualIdentifier reports whether a keyword-shaped token may also
// act as an ordinary identifier outside its special grammar position
// (e.g. `async`, `let`, `yield`, `await`, `static`, `of`, `get`, `set`).
func isContextualIdentifier(text string) bool {
	switch text {
	case "async", "let", "yield", "await", "static", "of", "get", "set":
		return true
	}
	return false
}

func (p *Parser) peekIsFunction() bool {
	return p.lex.Peek(0).Kind == lexer.Keyword && p.lex.Peek(0).Text == "function"
}

func (p *Parser) parseRegexLiteral() ast.Node {
	start := p.tok.Span
	re := p.advanceForRegex()
	return &ast.Literal{Base: b(start), Kind: ast.LitRegex, RegexBody: re.RegexBody, RegexFlags: re.RegexFlags}
}

func (p *Parser) parseNumericLiteral() ast.Node {
	start := p.tok.Span
	t := p.advance()
	switch t.NumKind {
	case lexer.NumBigInt:
		return &ast.Literal{Base: b(start), Kind: ast.LitBigInt, BigIntText: t.NumBigIntText}
	case lexer.NumFloat:
		return &ast.Literal{Base: b(start), Kind: ast.LitNumber, Number: t.NumFloat}
	default:
		return &ast.Literal{Base: b(start), Kind: ast.LitNumber, Number: float64(t.NumInt)}
	}
}

func (p *Parser) parseTemplateLiteral() *ast.TemplateLiteral {
	start := p.tok.Span
	var quasis []ast.TemplateElement
	var exprs []ast.Node

	t := p.advance()
	quasis = append(quasis, ast.TemplateElement{Cooked: t.Cooked, Raw: t.Raw, CookedInvalid: t.CookedInvalid})
	if t.Kind == lexer.NoSubTemplate {
		return &ast.TemplateLiteral{Base: b(mergeSpan(start, p.tok.Span)), Quasis: quasis}
	}
	for {
		exprs = append(exprs, p.parseExpression())
		p.lex.SetGoal(lexer.GoalTemplateTail)
		if !p.isPunct("}") {
			p.fail(p.tok.Span, "expected `}` to resume template literal")
		}
		t = p.advance()
		quasis = append(quasis, ast.TemplateElement{Cooked: t.Cooked, Raw: t.Raw, CookedInvalid: t.CookedInvalid})
		if t.Kind == lexer.TemplateTail {
			break
		}
	}
	return &ast.TemplateLiteral{Base: b(mergeSpan(start, p.tok.Span)), Quasis: quasis, Expressions: exprs}
}

func (p *Parser) parseArrayLiteral() ast.Node {
	start := p.expectPunct("[")
	var elems []ast.Node
	for !p.isPunct("]") {
		if p.isPunct(",") {
			elems = append(elems, nil)
			p.advance()
			continue
		}
		if p.eatPunct("...") {
			elemStart := p.tok.Span
			elems = append(elems, &ast.SpreadElement{Base: b(elemStart), Argument: p.parseAssignment()})
		} else {
			elems = append(elems, p.parseAssignment())
		}
		if !p.isPunct("]") {
			p.expectPunct(",")
		}
	}
	p.expectPunct("]")
	return &ast.ArrayExpression{Base: b(mergeSpan(start, p.tok.Span)), Elements: elems}
}

func (p *Parser) parseObjectLiteral() ast.Node {
	start := p.expectPunct("{")
	var props []*ast.Property
	for !p.isPunct("}") {
		props = append(props, p.parseObjectProperty())
		if !p.isPunct("}") {
			p.expectPunct(",")
		}
	}
	p.expectPunct("}")
	return &ast.ObjectExpression{Base: b(mergeSpan(start, p.tok.Span)), Properties: props}
}

func (p *Parser) parseObjectProperty() *ast.Property {
	start := p.tok.Span
	if p.eatPunct("...") {
		return &ast.Property{Base: b(mergeSpan(start, p.tok.Span)), Kind: "spread", Value: p.parseAssignment()}
	}

	isGetSet := (p.isContextualKeyword("get") || p.isContextualKeyword("set")) && !p.nextStartsPropertyEnd()
	if isGetSet {
		kind := p.advance().Text
		key, computed := p.parsePropertyKey()
		fn := p.parseFunctionTail(false, false)
		return &ast.Property{Base: b(mergeSpan(start, p.tok.Span)), Key: key, Computed: computed, Kind: kind, Value: fn}
	}

	isAsync := p.isContextualKeyword("async") && !p.nextStartsPropertyEnd()
	if isAsync {
		p.advance()
	}
	isGenerator := p.eatPunct("*")

	key, computed := p.parsePropertyKey()

	if p.isPunct("(") {
		fn := p.parseFunctionTail(isGenerator, isAsync)
		return &ast.Property{Base: b(mergeSpan(start, p.tok.Span)), Key: key, Computed: computed, Kind: "init", Value: fn}
	}
	if p.eatPunct(":") {
		val := p.parseAssignment()
		return &ast.Property{Base: b(mergeSpan(start, p.tok.Span)), Key: key, Computed: computed, Kind: "init", Value: val}
	}
	if p.eatPunct("=") {
		// Shorthand with a default, valid only inside a destructuring
		// pattern; retained as an AssignmentPattern so the cover-grammar
		// retrofit in toAssignmentTarget can recognize it unchanged.
		def := p.parseAssignment()
		ident, _ := key.(*ast.Identifier)
		return &ast.Property{Base: b(mergeSpan(start, p.tok.Span)), Key: key, Kind: "init", Shorthand: true,
			Value: &ast.AssignmentPattern{Left: ident, Default: def}}
	}
	return &ast.Property{Base: b(mergeSpan(start, p.tok.Span)), Key: key, Kind: "init", Shorthand: true, Value: key}
}

func (p *Parser) nextStartsPropertyEnd() bool {
	n := p.lex.Peek(0)
	return n.Kind == lexer.Punctuator && (n.Text == ":" || n.Text == "(" || n.Text == "," || n.Text == "}" || n.Text == "=")
}

func (p *Parser) parsePropertyKey() (ast.Node, bool) {
	start := p.tok.Span
	if p.eatPunct("[") {
		key := p.parseAssignment()
		p.expectPunct("]")
		return key, true
	}
	if p.tok.Kind == lexer.StringLiteral {
		t := p.advance()
		return &ast.Literal{Base: b(start), Kind: ast.LitString, String: t.Cooked}, false
	}
	if p.tok.Kind == lexer.NumericLiteral {
		return p.parseNumericLiteral(), false
	}
	if p.tok.Kind == lexer.PrivateIdentifier {
		name := p.advance().Atom
		return &ast.PrivateIdentifier{Base: b(start), Name: name}, false
	}
	name := p.expectIdentifierName()
	return &ast.Identifier{Base: b(start), Name: name}, false
}

func (p *Parser) parseParenthesizedExpression() ast.Node {
	p.expectPunct("(")
	expr := p.parseExpression()
	p.expectPunct(")")
	return expr
}

func (p *Parser) parseClassExpression() ast.Node {
	decl := p.parseClassTail()
	return &ast.ClassExpression{Base: decl.Base, ID: decl.ID, SuperClass: decl.SuperClass, Body: decl.Body}
}
