// Package parser implements the hand-written recursive-descent parser
// (C9): tokens from internal/lexer become an internal/ast tree. Parsing
// stops at the first error; there is no error-recovery pass — it reports
// the first error and stops.
package parser

import (
	"esprit/internal/ast"
	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/lexer"
)

// Parser holds one token of lookahead over a lexer.Lexer.
type Parser struct {
	lex   *lexer.Lexer
	atoms *atom.Interner
	tok   lexer.Token

	strict bool

	inFunction  int
	inGenerator int
	inAsync     int
	inLoop      int
	inSwitch    int
	inMethod    int

	// privateScopes tracks, innermost last, the private names declared by
	// each class body currently being parsed (or walked for reference
	// resolution); see checkClassPrivateNames.
	privateScopes []map[atom.Atom]bool
}

// New creates a parser over src.
func New(src string, atoms *atom.Interner) *Parser {
	p := &Parser{lex: lexer.New(src, atoms), atoms: atoms}
	p.lex.SetGoal(lexer.GoalHashbangOrRegExp)
	p.advance()
	return p
}

// ParseScript parses src as a top-level Script, backing the embedder's
// parse_script entry point.
func ParseScript(src string, atoms *atom.Interner) (*ast.Program, error) {
	return New(src, atoms).parseProgram(false)
}

// ParseModule parses src as a Module with always-strict semantics,
// backing the embedder's parse_module entry point. import/export
// declarations are not parsed: they fail as unexpected keywords.
func ParseModule(src string, atoms *atom.Interner) (*ast.Program, error) {
	p := New(src, atoms)
	p.strict = true
	return p.parseProgram(true)
}

func (p *Parser) parseProgram(isModule bool) (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(*diag.Error); ok {
				err = perr
				return
			}
			panic(r)
		}
	}()

	start := p.tok.Span
	var body []ast.Node
	sawNonDirective := isModule // a module is already unconditionally strict
	for p.tok.Kind != lexer.EOF {
		stmt := p.parseStatementListItem()
		if !sawNonDirective {
			if text, ok := directiveText(stmt); ok {
				if text == "use strict" {
					p.strict = true
				}
			} else {
				sawNonDirective = true
			}
		}
		body = append(body, stmt)
	}
	p.walkPrivateRefsList(body)
	return &ast.Program{Base: ast.Base{Sp: mergeSpan(start, p.tok.Span)}, Body: body, IsModule: isModule}, nil
}

// advance consumes the current token and scans the next one, always with
// the division goal (it resets any goal set beforehand); a `/` that
// starts a regex is re-scanned afterwards via advanceForRegex.
func (p *Parser) advance() lexer.Token {
	t := p.tok
	p.lex.SetGoal(lexer.GoalDiv)
	p.tok = p.lex.Next()
	return t
}

// advanceForRegex re-scans the current token as a regex literal when a
// `/`-led punctuator was actually the start of a regex: the lexer always
// scans with GoalDiv by default, so a primary-expression position must
// retrofit by asking the lexer to re-lex from the `/`'s start offset.
func (p *Parser) advanceForRegex() lexer.Token {
	t, err := p.lex.LexRegex(p.tok.Span.Start)
	if err != nil {
		p.fail(p.tok.Span, "malformed regular expression")
	}
	old := p.tok
	p.tok = t
	p.lex.SetGoal(lexer.GoalDiv)
	p.tok = p.lex.Next()
	return old
}

func (p *Parser) isRegexStart() bool {
	return p.tok.Kind == lexer.Punctuator && (p.tok.Text == "/" || p.tok.Text == "/=")
}

func (p *Parser) fail(span diag.Span, format string, args ...interface{}) {
	panic(diag.New(diag.KindSyntax, span, format, args...))
}

func (p *Parser) expectPunct(text string) diag.Span {
	if p.tok.Kind != lexer.Punctuator || p.tok.Text != text {
		p.fail(p.tok.Span, "expected %q, got %q", text, p.tok.Text)
	}
	return p.advance().Span
}

func (p *Parser) isPunct(text string) bool {
	return p.tok.Kind == lexer.Punctuator && p.tok.Text == text
}

func (p *Parser) isKeyword(text string) bool {
	return p.tok.Kind == lexer.Keyword && p.tok.Text == text
}

// isContextualKeyword matches a soft keyword (async, get, set, of, from,
// as) that the lexer always tokenizes as a plain Identifier, since none of
// these are reserved words — they're only special by grammar position.
func (p *Parser) isContextualKeyword(text string) bool {
	return p.tok.Kind == lexer.Identifier && p.tok.Text == text
}

func (p *Parser) eatPunct(text string) bool {
	if p.isPunct(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) eatKeyword(text string) bool {
	if p.isKeyword(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectKeyword(text string) diag.Span {
	if !p.isKeyword(text) {
		p.fail(p.tok.Span, "expected keyword %q, got %q", text, p.tok.Text)
	}
	return p.advance().Span
}

func (p *Parser) expectIdentifierName() atom.Atom {
	if p.tok.Kind != lexer.Identifier && p.tok.Kind != lexer.Keyword {
		p.fail(p.tok.Span, "expected an identifier, got %q", p.tok.Text)
	}
	t := p.advance()
	return t.Atom
}

// semicolon implements Automatic Semicolon Insertion's three rules: an
// explicit `;`, a following `}` or EOF, or a preceding line terminator.
func (p *Parser) semicolon() {
	if p.eatPunct(";") {
		return
	}
	if p.tok.Kind == lexer.EOF || p.isPunct("}") || p.tok.PrecedingLineTerminator {
		return
	}
	p.fail(p.tok.Span, "expected `;`")
}

func mergeSpan(start, end diag.Span) diag.Span {
	return diag.Span{Start: start.Start, End: end.Start, Line: start.Line, Col: start.Col}
}

// b is shorthand for building the ast.Base every node embeds.
func b(s diag.Span) ast.Base { return ast.Base{Sp: s} }
