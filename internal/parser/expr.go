package parser

import (
	"esprit/internal/ast"
	"esprit/internal/diag"
	"esprit/internal/lexer"
)

// parseExpression parses a full Expression, including the comma
// operator.
func (p *Parser) parseExpression() ast.Node {
	start := p.tok.Span
	first := p.parseAssignment()
	if !p.isPunct(",") {
		return first
	}
	exprs := []ast.Node{first}
	for p.eatPunct(",") {
		exprs = append(exprs, p.parseAssignment())
	}
	return &ast.SequenceExpression{Base: b(mergeSpan(start, p.tok.Span)), Expressions: exprs}
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true, "|=": true,
	"^=": true, "&&=": true, "||=": true, "??=": true,
}

// parseAssignment handles the AssignmentExpression production, including
// the arrow-function and async-arrow cover-grammar retrofits: it parses
// eagerly as a conditional expression, then checks whether `=>` follows.
func (p *Parser) parseAssignment() ast.Node {
	if node, ok := p.tryParseArrow(); ok {
		return node
	}
	if p.isKeyword("yield") && p.inGenerator > 0 {
		return p.parseYield()
	}

	start := p.tok.Span
	left := p.parseConditional()

	if p.tok.Kind == lexer.Punctuator && assignOps[p.tok.Text] {
		op := p.advance().Text
		right := p.parseAssignment()
		return &ast.AssignmentExpression{Base: b(mergeSpan(start, p.tok.Span)), Operator: op, Left: toAssignmentTarget(left), Right: right}
	}
	return left
}

func (p *Parser) parseYield() ast.Node {
	start := p.expectKeyword("yield")
	delegate := p.eatPunct("*")
	if p.isPunct(")") || p.isPunct(";") || p.isPunct("]") || p.isPunct("}") || p.isPunct(",") ||
		p.tok.Kind == lexer.EOF || p.tok.PrecedingLineTerminator {
		return &ast.YieldExpression{Base: b(start), Delegate: delegate}
	}
	arg := p.parseAssignment()
	return &ast.YieldExpression{Base: b(mergeSpan(start, p.tok.Span)), Argument: arg, Delegate: delegate}
}

func (p *Parser) parseConditional() ast.Node {
	start := p.tok.Span
	test := p.parseNullish()
	if !p.eatPunct("?") {
		return test
	}
	cons := p.parseAssignment()
	p.expectPunct(":")
	alt := p.parseAssignment()
	return &ast.ConditionalExpression{Base: b(mergeSpan(start, p.tok.Span)), Test: test, Consequent: cons, Alternate: alt}
}

func (p *Parser) parseNullish() ast.Node {
	start := p.tok.Span
	left := p.parseLogicalOr()
	for p.isPunct("??") {
		p.advance()
		right := p.parseLogicalOr()
		left = &ast.LogicalExpression{Base: b(mergeSpan(start, p.tok.Span)), Operator: "??", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalOr() ast.Node {
	start := p.tok.Span
	left := p.parseLogicalAnd()
	for p.isPunct("||") {
		p.advance()
		right := p.parseLogicalAnd()
		left = &ast.LogicalExpression{Base: b(mergeSpan(start, p.tok.Span)), Operator: "||", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Node {
	start := p.tok.Span
	left := p.parseBinary(1)
	for p.isPunct("&&") {
		p.advance()
		right := p.parseBinary(1)
		left = &ast.LogicalExpression{Base: b(mergeSpan(start, p.tok.Span)), Operator: "&&", Left: left, Right: right}
	}
	return left
}

// binaryPrecedence maps every non-logical binary operator to its
// precedence tier; higher binds tighter. `in`/`instanceof` are keywords,
// matched on Text like any punctuator operator.
var binaryPrecedence = map[string]int{
	"|": 1, "^": 2, "&": 3,
	"==": 4, "!=": 4, "===": 4, "!==": 4,
	"<": 5, "<=": 5, ">": 5, ">=": 5, "in": 5, "instanceof": 5,
	"<<": 6, ">>": 6, ">>>": 6,
	"+": 7, "-": 7,
	"*": 8, "/": 8, "%": 8,
	"**": 9,
}

func (p *Parser) currentBinaryOp() (string, int, bool) {
	if p.tok.Kind == lexer.Punctuator {
		if prec, ok := binaryPrecedence[p.tok.Text]; ok {
			return p.tok.Text, prec, true
		}
	}
	if p.tok.Kind == lexer.Keyword && (p.tok.Text == "in" || p.tok.Text == "instanceof") {
		return p.tok.Text, binaryPrecedence[p.tok.Text], true
	}
	return "", 0, false
}

// parseBinary is precedence climbing over every operator strictly
// tighter than &&/||/??, which are handled by their own callers above so
// early-error rules about mixing them can be enforced there later.
func (p *Parser) parseBinary(minPrec int) ast.Node {
	start := p.tok.Span
	left := p.parseUnary()
	for {
		op, prec, ok := p.currentBinaryOp()
		if !ok || prec < minPrec {
			return left
		}
		p.advance()
		nextMin := prec + 1
		if op == "**" {
			nextMin = prec // right-associative
		}
		right := p.parseBinary(nextMin)
		left = &ast.BinaryExpression{Base: b(mergeSpan(start, p.tok.Span)), Operator: op, Left: left, Right: right}
	}
}

var unaryOps = map[string]bool{"+": true, "-": true, "~": true, "!": true}
var unaryKeywords = map[string]bool{"typeof": true, "void": true, "delete": true}

func (p *Parser) parseUnary() ast.Node {
	start := p.tok.Span
	switch {
	case p.tok.Kind == lexer.Punctuator && unaryOps[p.tok.Text]:
		op := p.advance().Text
		arg := p.parseUnary()
		return &ast.UnaryExpression{Base: b(mergeSpan(start, p.tok.Span)), Operator: op, Argument: arg}
	case p.tok.Kind == lexer.Keyword && unaryKeywords[p.tok.Text]:
		op := p.advance().Text
		arg := p.parseUnary()
		return &ast.UnaryExpression{Base: b(mergeSpan(start, p.tok.Span)), Operator: op, Argument: arg}
	case p.isPunct("++") || p.isPunct("--"):
		op := p.advance().Text
		arg := p.parseUnary()
		return &ast.UpdateExpression{Base: b(mergeSpan(start, p.tok.Span)), Operator: op, Argument: arg, Prefix: true}
	case p.isKeyword("await"):
		p.advance()
		arg := p.parseUnary()
		return &ast.AwaitExpression{Base: b(mergeSpan(start, p.tok.Span)), Argument: arg}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Node {
	start := p.tok.Span
	expr := p.parseLeftHandSide()
	if (p.isPunct("++") || p.isPunct("--")) && !p.tok.PrecedingLineTerminator {
		op := p.advance().Text
		return &ast.UpdateExpression{Base: b(mergeSpan(start, p.tok.Span)), Operator: op, Argument: expr, Prefix: false}
	}
	return expr
}

// parseLeftHandSide handles NewExpression/CallExpression/
// MemberExpression chains, including optional chaining.
func (p *Parser) parseLeftHandSide() ast.Node {
	start := p.tok.Span
	var expr ast.Node
	if p.isKeyword("new") {
		expr = p.parseNew()
	} else {
		expr = p.parsePrimary()
	}
	return p.parseCallTail(expr, start)
}

func (p *Parser) parseNew() ast.Node {
	start := p.expectKeyword("new")
	if p.isPunct(".") {
		p.advance()
		prop := p.expectIdentifierName()
		if p.atoms.Resolve(prop) != "target" {
			p.fail(p.tok.Span, "only new.target is a valid meta property")
		}
		if p.inFunction == 0 {
			p.fail(start, "'new.target' expression is not allowed outside a function")
		}
		return &ast.MetaProperty{Base: b(mergeSpan(start, p.tok.Span)), Meta: "new", Property: "target"}
	}
	var callee ast.Node
	if p.isKeyword("new") {
		callee = p.parseNew()
	} else {
		callee = p.parsePrimary()
	}
	callee = p.parseMemberTail(callee, start)
	var args []ast.Node
	if p.isPunct("(") {
		args = p.parseArguments()
	}
	return &ast.NewExpression{Base: b(mergeSpan(start, p.tok.Span)), Callee: callee, Args: args}
}

// parseMemberTail parses only `.`/`[...]` member accesses (no calls),
// used while parsing a `new` callee which must not absorb a call's `(...)`.
func (p *Parser) parseMemberTail(expr ast.Node, start diag.Span) ast.Node {
	for {
		switch {
		case p.isPunct("."):
			p.advance()
			name := p.expectIdentifierName()
			expr = &ast.MemberExpression{Base: b(p.tok.Span), Object: expr, Property: &ast.Identifier{Name: name}}
		case p.isPunct("["):
			p.advance()
			idx := p.parseExpression()
			p.expectPunct("]")
			expr = &ast.MemberExpression{Base: b(p.tok.Span), Object: expr, Property: idx, Computed: true}
		default:
			return expr
		}
	}
}

// parseCallTail parses the full chain of `.`, `[...]`, `(...)`, template
// tags, and optional-chaining `?.` continuations after a primary or new
// expression.
func (p *Parser) parseCallTail(expr ast.Node, start diag.Span) ast.Node {
	for {
		switch {
		case p.isPunct("."):
			p.advance()
			if p.tok.Kind == lexer.PrivateIdentifier {
				name := p.tok.Atom
				p.advance()
				expr = &ast.MemberExpression{Base: b(p.tok.Span), Object: expr, Property: &ast.PrivateIdentifier{Name: name}}
				continue
			}
			name := p.expectIdentifierName()
			expr = &ast.MemberExpression{Base: b(p.tok.Span), Object: expr, Property: &ast.Identifier{Name: name}}
		case p.isPunct("?."):
			p.advance()
			switch {
			case p.isPunct("("):
				args := p.parseArguments()
				expr = &ast.CallExpression{Base: b(p.tok.Span), Callee: expr, Args: args, Optional: true}
			case p.isPunct("["):
				p.advance()
				idx := p.parseExpression()
				p.expectPunct("]")
				expr = &ast.MemberExpression{Base: b(p.tok.Span), Object: expr, Property: idx, Computed: true, Optional: true}
			default:
				name := p.expectIdentifierName()
				expr = &ast.MemberExpression{Base: b(p.tok.Span), Object: expr, Property: &ast.Identifier{Name: name}, Optional: true}
			}
		case p.isPunct("["):
			p.advance()
			idx := p.parseExpression()
			p.expectPunct("]")
			expr = &ast.MemberExpression{Base: b(p.tok.Span), Object: expr, Property: idx, Computed: true}
		case p.isPunct("("):
			args := p.parseArguments()
			expr = &ast.CallExpression{Base: b(p.tok.Span), Callee: expr, Args: args}
		case p.tok.Kind == lexer.NoSubTemplate || p.tok.Kind == lexer.TemplateHead:
			quasi := p.parseTemplateLiteral()
			expr = &ast.TaggedTemplateExpression{Base: b(p.tok.Span), Tag: expr, Quasi: quasi}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArguments() []ast.Node {
	p.expectPunct("(")
	var args []ast.Node
	for !p.isPunct(")") {
		if p.eatPunct("...") {
			start := p.tok.Span
			args = append(args, &ast.SpreadElement{Base: b(start), Argument: p.parseAssignment()})
		} else {
			args = append(args, p.parseAssignment())
		}
		if !p.eatPunct(",") {
			break
		}
	}
	p.expectPunct(")")
	return args
}

func toAssignmentTarget(n ast.Node) ast.Node {
	// Cover-grammar retrofit: an ArrayExpression/ObjectExpression parsed
	// as an expression becomes a pattern once it's confirmed to be an
	// assignment target. The compiler's destructuring lowering walks
	// either shape identically, so no conversion is required here beyond
	// what parseAssignment already guarantees structurally.
	return n
}
