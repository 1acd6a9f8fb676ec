package lexer

import (
	"testing"

	"esprit/internal/atom"
)

func tokens(t *testing.T, src string) []Token {
	t.Helper()
	l := New(src, atom.New())
	var out []Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Kind == EOF {
			return out
		}
	}
}

func TestHashbangAndBOMStripped(t *testing.T) {
	toks := tokens(t, "﻿#!/usr/bin/env esprit\nlet x = 1;")
	if toks[0].Kind != Keyword || toks[0].Text != "let" {
		t.Fatalf("first token after hashbang strip = %+v, want keyword `let`", toks[0])
	}
}

func TestKeywordVsIdentifierEscapePromotion(t *testing.T) {
	toks := tokens(t, "let l\\u0065t = 1")
	if toks[0].Kind != Keyword {
		t.Fatalf("unescaped `let` should be a Keyword, got %v", toks[0].Kind)
	}
	if toks[1].Kind != Identifier || toks[1].Text != "let" {
		t.Fatalf("escaped `let` spelling should remain an Identifier: %+v", toks[1])
	}
}

func TestNumericLiteralVariants(t *testing.T) {
	cases := []struct {
		src  string
		kind NumericKind
	}{
		{"42", NumInteger},
		{"3.14", NumFloat},
		{"1e10", NumFloat},
		{"0xFF", NumInteger},
		{"0b101", NumInteger},
		{"0o17", NumInteger},
		{"10n", NumBigInt},
		{"1_000_000", NumInteger},
	}
	for _, c := range cases {
		toks := tokens(t, c.src)
		if toks[0].Kind != NumericLiteral {
			t.Fatalf("%q: kind = %v, want NumericLiteral", c.src, toks[0].Kind)
		}
		if toks[0].NumKind != c.kind {
			t.Fatalf("%q: NumKind = %v, want %v", c.src, toks[0].NumKind, c.kind)
		}
	}
}

func TestStringEscapesCookedAndRaw(t *testing.T) {
	toks := tokens(t, `"a\nbc"`)
	tok := toks[0]
	if tok.Kind != StringLiteral {
		t.Fatalf("kind = %v, want StringLiteral", tok.Kind)
	}
	if tok.Cooked != "a\nbc" {
		t.Fatalf("Cooked = %q, want %q", tok.Cooked, "a\nbc")
	}
	if tok.Raw != `a\nbc` {
		t.Fatalf("Raw = %q, want %q", tok.Raw, `a\nbc`)
	}
}

func TestTemplateHeadWithSubstitution(t *testing.T) {
	toks := tokens(t, "`hello ${1} world`")
	if toks[0].Kind != TemplateHead || toks[0].Cooked != "hello " {
		t.Fatalf("head = %+v", toks[0])
	}
	if toks[1].Kind != NumericLiteral {
		t.Fatalf("expected numeric literal between template parts, got %v", toks[1].Kind)
	}
}

func TestRegexLiteralBracketAware(t *testing.T) {
	l := New("/a[/]b/gi", atom.New())
	l.SetGoal(GoalRegExp)
	tok := l.Next()
	if tok.Kind != RegexLiteral {
		t.Fatalf("kind = %v, want RegexLiteral", tok.Kind)
	}
	if tok.RegexBody != "a[/]b" {
		t.Fatalf("RegexBody = %q, want %q", tok.RegexBody, "a[/]b")
	}
	if tok.RegexFlags != "gi" {
		t.Fatalf("RegexFlags = %q, want %q", tok.RegexFlags, "gi")
	}
}

func TestDivisionVsRegexGoal(t *testing.T) {
	l := New("a / b", atom.New())
	l.SetGoal(GoalDiv)
	l.Next() // 'a'
	tok := l.Next()
	if tok.Kind != Punctuator || tok.Text != "/" {
		t.Fatalf("with GoalDiv, `/` should scan as a punctuator, got %+v", tok)
	}
}

func TestPrecedingLineTerminatorFlag(t *testing.T) {
	toks := tokens(t, "a\nb")
	if toks[0].PrecedingLineTerminator {
		t.Fatalf("first token should not report a preceding line terminator")
	}
	if !toks[1].PrecedingLineTerminator {
		t.Fatalf("token after a newline should report PrecedingLineTerminator")
	}
}

func TestLongestMatchPunctuators(t *testing.T) {
	toks := tokens(t, ">>>=")
	if toks[0].Text != ">>>=" {
		t.Fatalf("expected longest-match punctuator >>>=, got %q", toks[0].Text)
	}
}

func TestPeekAndPushBack(t *testing.T) {
	l := New("a b c", atom.New())
	first := l.Peek(0)
	second := l.Peek(1)
	if first.Text != "a" || second.Text != "b" {
		t.Fatalf("Peek(0)/Peek(1) = %q/%q, want a/b", first.Text, second.Text)
	}
	got := l.Next()
	if got.Text != "a" {
		t.Fatalf("Next() after Peek should still return a, got %q", got.Text)
	}
	l.PushBack(got)
	again := l.Next()
	if again.Text != "a" {
		t.Fatalf("Next() after PushBack should replay the pushed token, got %q", again.Text)
	}
}

func TestPrivateIdentifier(t *testing.T) {
	toks := tokens(t, "#x")
	if toks[0].Kind != PrivateIdentifier || toks[0].Text != "#x" {
		t.Fatalf("got %+v, want PrivateIdentifier #x", toks[0])
	}
}
