package lexer

import (
	"esprit/internal/atom"
	"esprit/internal/diag"
)

// Kind identifies a token's lexical category.
type Kind int

const (
	EOF Kind = iota
	Punctuator
	Keyword
	Identifier
	PrivateIdentifier // #x
	NumericLiteral
	StringLiteral
	TemplateHead   // `...${
	TemplateMiddle // }...${
	TemplateTail   // }...`
	NoSubTemplate  // `...`
	RegexLiteral
	LineTerminator
)

// NumericKind distinguishes the three numeric literal shapes a token can
// carry; the parser/compiler picks the corresponding value.Value
// constructor.
type NumericKind int

const (
	NumInteger NumericKind = iota
	NumFloat
	NumBigInt
)

// Token is one lexical unit. Kind == EOF marks the end of the stream; the
// lexer keeps producing EOF tokens on repeated Next() calls past the end
// rather than erroring.
type Token struct {
	Kind Kind
	Span diag.Span

	// Text is the source text of a punctuator, the decoded spelling of a
	// keyword/identifier (\u escapes resolved), and a numeric literal's
	// text with `_` separators and any `n` suffix removed. String and
	// template tokens leave it empty; they carry Cooked/Raw instead.
	Text string

	// Atom is populated for Identifier, PrivateIdentifier, and Keyword
	// tokens so the parser never has to re-intern a name later.
	Atom atom.Atom

	// ContainsEscape is true when an identifier or keyword spelling used a
	// \uXXXX escape; an escaped reserved word stays an Identifier, never
	// promoted to Keyword.
	ContainsEscape bool

	// PrecedingLineTerminator is true iff a line terminator (or a
	// single-line/multi-line comment containing one) appeared between
	// this token and the previous one; the parser consults it for ASI.
	PrecedingLineTerminator bool

	// NumKind/NumInt/NumFloat/NumBigIntText are populated for
	// NumericLiteral tokens.
	NumKind       NumericKind
	NumInt        int64
	NumFloat      float64
	NumBigIntText string // digits with any 0x/0o/0b prefix kept, "_" and suffix "n" stripped

	// Cooked/Raw hold a string or template literal's cooked (escapes
	// translated) and raw (original bytes) forms. CookedInvalid is true
	// when an escape sequence did not decode or the literal was not
	// terminated (Cooked then holds only what did decode), which is legal
	// in a tagged template (only the raw form is used) but a syntax error
	// anywhere else.
	Cooked        string
	Raw           string
	CookedInvalid bool

	// RegexBody/RegexFlags are populated for RegexLiteral tokens.
	RegexBody  string
	RegexFlags string
}

// Goal selects which lexical grammar governs the next token, resolving
// the `/` vs. regex-literal and `}` vs. template-continuation
// ambiguities the parser alone can disambiguate from grammar position.
type Goal int

const (
	GoalDiv Goal = iota
	GoalRegExp
	GoalTemplateTail
	GoalHashbangOrRegExp
)
