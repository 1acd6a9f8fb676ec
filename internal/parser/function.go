package parser

import (
	"esprit/internal/ast"
	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/lexer"
)

// parserMark snapshots everything needed to backtrack a failed speculative
// parse: the lexer's own position plus the parser's one token of
// lookahead, which lives outside the lexer's buffer.
type parserMark struct {
	lex lexer.Mark
	tok lexer.Token
}

func (p *Parser) mark() parserMark { return parserMark{lex: p.lex.Mark(), tok: p.tok} }

func (p *Parser) reset(m parserMark) {
	p.lex.Reset(m.lex)
	p.tok = m.tok
}

// tryParseArrow attempts the arrow-function cover-grammar retrofit: a bare
// identifier or async identifier followed by `=>`, or a parenthesized
// parameter list (optionally preceded by `async` with no line break)
// followed by `=>`. On any mismatch, the lexer/parser state is restored as
// if tryParseArrow had never been called.
func (p *Parser) tryParseArrow() (ast.Node, bool) {
	start := p.tok.Span

	if p.tok.Kind == lexer.Identifier && p.lex.Peek(0).Kind == lexer.Punctuator && p.lex.Peek(0).Text == "=>" {
		nameTok := p.advance()
		p.checkBindingIdentifier(nameTok.Atom, nameTok.Span)
		p.advance() // consume =>
		return p.finishArrow(start, []ast.Node{&ast.Identifier{Base: b(start), Name: nameTok.Atom}}, false), true
	}

	isAsync := p.isContextualKeyword("async") && !p.lex.Peek(0).PrecedingLineTerminator
	if isAsync && p.lex.Peek(0).Kind == lexer.Identifier && p.lex.Peek(1).Kind == lexer.Punctuator && p.lex.Peek(1).Text == "=>" {
		p.advance()
		nameTok := p.advance()
		p.checkBindingIdentifier(nameTok.Atom, nameTok.Span)
		p.advance()
		return p.finishArrow(start, []ast.Node{&ast.Identifier{Base: b(start), Name: nameTok.Atom}}, true), true
	}

	m := p.mark()
	if isAsync {
		p.advance()
	}
	if !p.isPunct("(") {
		p.reset(m)
		return nil, false
	}

	params, ok := p.tryParseParenParams()
	if !ok || !(p.isPunct("=>") && !p.tok.PrecedingLineTerminator) {
		p.reset(m)
		return nil, false
	}
	p.advance() // consume =>
	return p.finishArrow(start, params, isAsync), true
}

// tryParseParenParams parses a parenthesized list as if it were an arrow
// parameter list, reporting failure instead of panicking so tryParseArrow
// can fall back to parsing the same tokens as a parenthesized expression.
func (p *Parser) tryParseParenParams() (params []ast.Node, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isSyntax := r.(*diag.Error); isSyntax {
				params, ok = nil, false
				return
			}
			panic(r)
		}
	}()
	p.expectPunct("(")
	for !p.isPunct(")") {
		params = append(params, p.parseBindingElement())
		if !p.isPunct(")") {
			p.expectPunct(",")
		}
	}
	p.expectPunct(")")
	return params, true
}

func (p *Parser) finishArrow(start diag.Span, params []ast.Node, isAsync bool) *ast.ArrowFunctionExpression {
	p.checkParams(params, start, true) // arrow functions never get the Annex B duplicate-name relaxation
	p.inAsync += boolToInt(isAsync)
	defer func() { p.inAsync -= boolToInt(isAsync) }()

	if p.isPunct("{") {
		body, becameStrict := p.parseFunctionBody(!isSimpleParamList(params))
		if becameStrict {
			p.checkStrictParamNames(params, start)
		}
		return &ast.ArrowFunctionExpression{Base: b(mergeSpan(start, p.tok.Span)), Params: params, Body: body, IsAsync: isAsync}
	}
	body := p.parseAssignment()
	return &ast.ArrowFunctionExpression{Base: b(mergeSpan(start, p.tok.Span)), Params: params, Body: body, IsExpression: true, IsAsync: isAsync}
}

// parseBindingElement parses one parameter/destructuring-array-element:
// a binding target optionally followed by `= default` or, for the final
// parameter, a `...rest` element.
func (p *Parser) parseBindingElement() ast.Node {
	start := p.tok.Span
	if p.eatPunct("...") {
		return &ast.RestElement{Base: b(mergeSpan(start, p.tok.Span)), Argument: p.parseBindingTarget()}
	}
	target := p.parseBindingTarget()
	if p.eatPunct("=") {
		def := p.parseAssignment()
		return &ast.AssignmentPattern{Base: b(mergeSpan(start, p.tok.Span)), Left: target, Default: def}
	}
	return target
}

// parseBindingTarget parses an Identifier, ArrayPattern, or ObjectPattern
// binding position (used by declarations, parameters, and catch clauses).
func (p *Parser) parseBindingTarget() ast.Node {
	start := p.tok.Span
	switch {
	case p.isPunct("["):
		p.advance()
		var elems []ast.Node
		for !p.isPunct("]") {
			if p.isPunct(",") {
				elems = append(elems, nil)
				p.advance()
				continue
			}
			elems = append(elems, p.parseBindingElement())
			if !p.isPunct("]") {
				p.expectPunct(",")
			}
		}
		p.expectPunct("]")
		return &ast.ArrayPattern{Base: b(mergeSpan(start, p.tok.Span)), Elements: elems}
	case p.isPunct("{"):
		p.advance()
		var props []*ast.Property
		for !p.isPunct("}") {
			if p.eatPunct("...") {
				restStart := p.tok.Span
				props = append(props, &ast.Property{Base: b(restStart), Kind: "spread", Value: &ast.RestElement{Base: b(restStart), Argument: p.parseBindingTarget()}})
				break
			}
			propStart := p.tok.Span
			key, computed := p.parsePropertyKey()
			var val ast.Node
			if p.eatPunct(":") {
				val = p.parseBindingElement()
			} else {
				ident, _ := key.(*ast.Identifier)
				if ident != nil {
					p.checkBindingIdentifier(ident.Name, propStart)
				}
				val = ident
				if p.eatPunct("=") {
					val = &ast.AssignmentPattern{Left: ident, Default: p.parseAssignment()}
				}
			}
			props = append(props, &ast.Property{Base: b(mergeSpan(propStart, p.tok.Span)), Key: key, Computed: computed, Kind: "init", Value: val})
			if !p.isPunct("}") {
				p.expectPunct(",")
			}
		}
		p.expectPunct("}")
		return &ast.ObjectPattern{Base: b(mergeSpan(start, p.tok.Span)), Properties: props}
	default:
		name := p.expectIdentifierName()
		p.checkBindingIdentifier(name, start)
		return &ast.Identifier{Base: b(start), Name: name}
	}
}

func (p *Parser) parseParams() []ast.Node {
	p.expectPunct("(")
	var params []ast.Node
	for !p.isPunct(")") {
		params = append(params, p.parseBindingElement())
		if !p.isPunct(")") {
			p.expectPunct(",")
		}
	}
	p.expectPunct(")")
	return params
}

// parseFunctionExpression parses a `function` (or, with isAsync, an
// already-consumed-`async` `function`) expression, including the
// generator-star.
func (p *Parser) parseFunctionExpression(isAsync bool) ast.Node {
	start := p.expectKeyword("function")
	isGenerator := p.eatPunct("*")
	var name atom.Atom = atom.Invalid
	if p.tok.Kind == lexer.Identifier {
		nameTok := p.advance()
		p.checkBindingIdentifier(nameTok.Atom, nameTok.Span)
		name = nameTok.Atom
	}
	p.inFunction++
	p.inGenerator += boolToInt(isGenerator)
	p.inAsync += boolToInt(isAsync)
	outerMethod := p.inMethod
	p.inMethod = 0
	params := p.parseParams()
	p.checkParams(params, start, isGenerator || isAsync)
	body, becameStrict := p.parseFunctionBody(!isSimpleParamList(params))
	if becameStrict {
		p.checkStrictParamNames(params, start)
	}
	p.inMethod = outerMethod
	p.inFunction--
	p.inGenerator -= boolToInt(isGenerator)
	p.inAsync -= boolToInt(isAsync)
	return &ast.FunctionExpression{Base: b(mergeSpan(start, p.tok.Span)), ID: name, Params: params, Body: body, IsGenerator: isGenerator, IsAsync: isAsync}
}

// parseFunctionDeclaration parses a `function` declaration (statement
// position); the `function` keyword must not yet be consumed.
func (p *Parser) parseFunctionDeclaration(isAsync bool) *ast.FunctionDeclaration {
	start := p.expectKeyword("function")
	isGenerator := p.eatPunct("*")
	nameTok := p.tok
	name := p.expectIdentifierName()
	p.checkBindingIdentifier(name, nameTok.Span)
	p.inFunction++
	p.inGenerator += boolToInt(isGenerator)
	p.inAsync += boolToInt(isAsync)
	outerMethod := p.inMethod
	p.inMethod = 0
	params := p.parseParams()
	p.checkParams(params, start, isGenerator || isAsync)
	body, becameStrict := p.parseFunctionBody(!isSimpleParamList(params))
	if becameStrict {
		p.checkStrictParamNames(params, start)
	}
	p.inMethod = outerMethod
	p.inFunction--
	p.inGenerator -= boolToInt(isGenerator)
	p.inAsync -= boolToInt(isAsync)
	return &ast.FunctionDeclaration{Base: b(mergeSpan(start, p.tok.Span)), ID: name, Params: params, Body: body, IsGenerator: isGenerator, IsAsync: isAsync}
}

// parseFunctionTail parses the parameter list and body of a method,
// getter, or setter, with the name already consumed by the caller. Methods
// never get Annex B's duplicate-parameter relaxation, regardless of
// strictness or parameter shape.
func (p *Parser) parseFunctionTail(isGenerator, isAsync bool) *ast.FunctionExpression {
	start := p.tok.Span
	p.inFunction++
	p.inGenerator += boolToInt(isGenerator)
	p.inAsync += boolToInt(isAsync)
	p.inMethod++
	params := p.parseParams()
	p.checkParams(params, start, true)
	body, becameStrict := p.parseFunctionBody(!isSimpleParamList(params))
	if becameStrict {
		p.checkStrictParamNames(params, start)
	}
	p.inMethod--
	p.inFunction--
	p.inGenerator -= boolToInt(isGenerator)
	p.inAsync -= boolToInt(isAsync)
	return &ast.FunctionExpression{Base: b(mergeSpan(start, p.tok.Span)), ID: atom.Invalid, Params: params, Body: body, IsGenerator: isGenerator, IsAsync: isAsync}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseClassTail parses `class [Name] [extends Expr] { ... }`, shared by
// class declarations and class expressions; the `class` keyword must not
// yet be consumed.
func (p *Parser) parseClassTail() *ast.ClassDeclaration {
	start := p.expectKeyword("class")
	var name atom.Atom = atom.Invalid
	if p.tok.Kind == lexer.Identifier {
		nameTok := p.advance()
		p.checkBindingIdentifier(nameTok.Atom, nameTok.Span)
		name = nameTok.Atom
	}
	var super ast.Node
	if p.eatKeyword("extends") {
		super = p.parseLeftHandSide()
	}
	p.expectPunct("{")

	// A class body is always strict code, independent of any directive
	// and regardless of the strictness of the code containing the class.
	outerStrict := p.strict
	p.strict = true
	var members []*ast.ClassMember
	for !p.isPunct("}") {
		if p.eatPunct(";") {
			continue
		}
		members = append(members, p.parseClassMember())
	}
	p.strict = outerStrict

	p.expectPunct("}")
	return &ast.ClassDeclaration{Base: b(mergeSpan(start, p.tok.Span)), ID: name, SuperClass: super, Body: members}
}

func (p *Parser) parseClassMember() *ast.ClassMember {
	start := p.tok.Span
	static := false
	if p.isKeyword("static") && !p.nextStartsPropertyEnd() {
		static = true
		p.advance()
	}

	kind := "method"
	isGenerator := false
	isAsync := false

	if (p.isContextualKeyword("get") || p.isContextualKeyword("set")) && !p.nextStartsPropertyEnd() {
		kind = p.advance().Text
	} else {
		if p.isContextualKeyword("async") && !p.nextStartsPropertyEnd() && !p.lex.Peek(0).PrecedingLineTerminator {
			isAsync = true
			p.advance()
		}
		isGenerator = p.eatPunct("*")
	}

	isPrivate := p.tok.Kind == lexer.PrivateIdentifier
	key, computed := p.parsePropertyKey()

	if !p.isPunct("(") {
		// Field declaration: key [= initializer] ;
		var init ast.Node
		if p.eatPunct("=") {
			// A field initializer has the same [[HomeObject]] binding a
			// method body does, so `super.prop` is valid here too (though
			// `super(...)` never is, same as any non-constructor method).
			p.inMethod++
			init = p.parseAssignment()
			p.inMethod--
		}
		p.semicolon()
		return &ast.ClassMember{Base: b(mergeSpan(start, p.tok.Span)), Key: key, Computed: computed, Static: static, Kind: "field", Value: init, IsPrivate: isPrivate}
	}

	fn := p.parseFunctionTail(isGenerator, isAsync)
	if kind == "method" && !static {
		if id, ok := key.(*ast.Identifier); ok && p.atoms.Resolve(id.Name) == "constructor" {
			kind = "constructor"
		}
	}
	return &ast.ClassMember{Base: b(mergeSpan(start, p.tok.Span)), Key: key, Computed: computed, Static: static, Kind: kind, Value: fn, IsPrivate: isPrivate}
}
