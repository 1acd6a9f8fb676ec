package parser

import (
	"testing"

	"esprit/internal/ast"
	"esprit/internal/atom"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ParseScript(src, atom.NewRealmInterner())
	if err != nil {
		t.Fatalf("ParseScript(%q): unexpected error: %v", src, err)
	}
	return prog
}

func TestParseArithmeticPrecedence(t *testing.T) {
	prog := parse(t, "1 + 2 * 3;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	bin := stmt.Expression.(*ast.BinaryExpression)
	if bin.Operator != "+" {
		t.Fatalf("expected top-level +, got %q", bin.Operator)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || rhs.Operator != "*" {
		t.Fatalf("expected * to bind tighter than +, got %#v", bin.Right)
	}
}

func TestParseExponentRightAssociative(t *testing.T) {
	prog := parse(t, "2 ** 3 ** 2;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	bin := stmt.Expression.(*ast.BinaryExpression)
	if bin.Operator != "**" {
		t.Fatalf("expected **, got %q", bin.Operator)
	}
	if _, ok := bin.Right.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected ** to be right-associative, got %#v", bin.Right)
	}
	if lit, ok := bin.Left.(*ast.Literal); !ok || lit.Number != 2 {
		t.Fatalf("expected left operand to be the literal 2, got %#v", bin.Left)
	}
}

func TestParseNewWithMemberCalleeExcludesCallParens(t *testing.T) {
	prog := parse(t, "new a.b();")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	ne := stmt.Expression.(*ast.NewExpression)
	member, ok := ne.Callee.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expected new's callee to be a MemberExpression, got %#v", ne.Callee)
	}
	if _, ok := member.Object.(*ast.Identifier); !ok {
		t.Fatalf("expected member object to be identifier a, got %#v", member.Object)
	}
}

func TestParseArrowFunctionSingleParam(t *testing.T) {
	prog := parse(t, "const f = x => x + 1;")
	decl := prog.Body[0].(*ast.VariableDeclaration)
	init := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	if len(init.Params) != 1 {
		t.Fatalf("expected 1 param, got %d", len(init.Params))
	}
	if !init.IsExpression {
		t.Fatalf("expected concise (expression) arrow body")
	}
}

func TestParseArrowFunctionParenParams(t *testing.T) {
	prog := parse(t, "const f = (a, b) => { return a + b; };")
	decl := prog.Body[0].(*ast.VariableDeclaration)
	init := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	if len(init.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(init.Params))
	}
	if init.IsExpression {
		t.Fatalf("expected block body, not concise")
	}
	if _, ok := init.Body.(*ast.BlockStatement); !ok {
		t.Fatalf("expected block body, got %#v", init.Body)
	}
}

func TestParseParenthesizedExpressionIsNotArrow(t *testing.T) {
	prog := parse(t, "(1 + 2);")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	if _, ok := stmt.Expression.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected plain parenthesized binary expression, got %#v", stmt.Expression)
	}
}

func TestParseDestructuringDeclaration(t *testing.T) {
	prog := parse(t, "let { a, b: [c, ...d] } = obj;")
	decl := prog.Body[0].(*ast.VariableDeclaration)
	pattern, ok := decl.Declarations[0].ID.(*ast.ObjectPattern)
	if !ok {
		t.Fatalf("expected ObjectPattern, got %#v", decl.Declarations[0].ID)
	}
	if len(pattern.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(pattern.Properties))
	}
}

func TestParseForOfLoop(t *testing.T) {
	prog := parse(t, "for (const x of xs) { sum += x; }")
	stmt := prog.Body[0].(*ast.ForOfStatement)
	if _, ok := stmt.Left.(*ast.VariableDeclaration); !ok {
		t.Fatalf("expected VariableDeclaration head, got %#v", stmt.Left)
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	prog := parse(t, "try { a(); } catch (e) { b(); } finally { c(); }")
	stmt := prog.Body[0].(*ast.TryStatement)
	if !stmt.HasCatch || stmt.Finalizer == nil {
		t.Fatalf("expected both catch and finally clauses present")
	}
}

func TestParseClassWithMethodsAndFields(t *testing.T) {
	prog := parse(t, "class C extends Base { #x = 1; constructor() { super(); } get y() { return this.#x; } }")
	decl := prog.Body[0].(*ast.ClassDeclaration)
	if decl.SuperClass == nil {
		t.Fatalf("expected a superclass")
	}
	var sawField, sawCtor, sawGetter bool
	for _, m := range decl.Body {
		switch m.Kind {
		case "field":
			sawField = true
		case "constructor":
			sawCtor = true
		case "get":
			sawGetter = true
		}
	}
	if !sawField || !sawCtor || !sawGetter {
		t.Fatalf("expected field, constructor, and getter members, got %#v", decl.Body)
	}
}

func TestParseTemplateLiteralWithSubstitution(t *testing.T) {
	prog := parse(t, "`a${1 + 1}b`;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	tmpl := stmt.Expression.(*ast.TemplateLiteral)
	if len(tmpl.Quasis) != 2 || len(tmpl.Expressions) != 1 {
		t.Fatalf("expected 2 quasis and 1 expression, got %d/%d", len(tmpl.Quasis), len(tmpl.Expressions))
	}
}

func TestParseAsyncArrowWithAwait(t *testing.T) {
	prog := parse(t, "const f = async x => await x;")
	decl := prog.Body[0].(*ast.VariableDeclaration)
	init := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	if !init.IsAsync {
		t.Fatalf("expected IsAsync true")
	}
	if _, ok := init.Body.(*ast.AwaitExpression); !ok {
		t.Fatalf("expected await expression body, got %#v", init.Body)
	}
}

func TestParseRegexLiteralAfterAssignment(t *testing.T) {
	prog := parse(t, "const re = /ab+c/gi;")
	decl := prog.Body[0].(*ast.VariableDeclaration)
	lit := decl.Declarations[0].Init.(*ast.Literal)
	if lit.Kind != ast.LitRegex || lit.RegexBody != "ab+c" || lit.RegexFlags != "gi" {
		t.Fatalf("unexpected regex literal: %#v", lit)
	}
}

func TestParseDivisionNotConfusedWithRegex(t *testing.T) {
	prog := parse(t, "const x = a / b / c;")
	decl := prog.Body[0].(*ast.VariableDeclaration)
	bin, ok := decl.Declarations[0].Init.(*ast.BinaryExpression)
	if !ok || bin.Operator != "/" {
		t.Fatalf("expected a division chain, got %#v", decl.Declarations[0].Init)
	}
}

func TestParseLabeledBreak(t *testing.T) {
	prog := parse(t, "outer: for (;;) { break outer; }")
	label := prog.Body[0].(*ast.LabeledStatement)
	forStmt := label.Body.(*ast.ForStatement)
	block := forStmt.Body.(*ast.BlockStatement)
	brk := block.Body[0].(*ast.BreakStatement)
	if brk.Label == atom.Invalid {
		t.Fatalf("expected a labeled break")
	}
}

func TestParseSyntaxErrorStopsAtFirstFailure(t *testing.T) {
	_, err := ParseScript("let x = ;", atom.NewRealmInterner())
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
}

func TestParseASIInsertsBeforeNewline(t *testing.T) {
	prog := parse(t, "let a = 1\nlet b = 2")
	if len(prog.Body) != 2 {
		t.Fatalf("expected ASI to split into 2 statements, got %d", len(prog.Body))
	}
}

func TestParseReturnASIBeforeExpressionOnNextLine(t *testing.T) {
	// ASI forces `return` alone to terminate with no argument, per the
	// no-LineTerminator-here restriction between `return` and its operand.
	prog := parse(t, "function f() {\n  return\n  1;\n}")
	fn := prog.Body[0].(*ast.FunctionDeclaration)
	ret := fn.Body.Body[0].(*ast.ReturnStatement)
	if ret.Argument != nil {
		t.Fatalf("expected bare return due to ASI, got argument %#v", ret.Argument)
	}
}
