package lexer

import (
	"strconv"
	"strings"
)

// scanIdentifierOrKeyword consumes an IdentifierName (which may contain
// \uXXXX escapes) and promotes it to Keyword iff its decoded spelling is
// a reserved word and no escape was used.
func (l *Lexer) scanIdentifierOrKeyword() Token {
	var sb strings.Builder
	containsEscape := false

	readPart := func(first bool) bool {
		if l.peekRune() == '\\' {
			containsEscape = true
			l.advanceRune() // '\'
			if l.peekRune() == 'u' {
				l.advanceRune()
				r, ok := l.readUnicodeEscape()
				if ok {
					sb.WriteRune(r)
				}
				return true
			}
			return false
		}
		r := l.peekRune()
		if first && !isIdentifierStart(r) {
			return false
		}
		if !first && !isIdentifierPart(r) {
			return false
		}
		sb.WriteRune(l.advanceRune())
		return true
	}

	if !readPart(true) {
		// Malformed lead byte; consume one rune so the stream still
		// advances and report it as an unrecognized single-char token.
		l.advanceRune()
		return Token{Kind: Punctuator, Text: sb.String()}
	}
	for !l.atEOF() && (isIdentifierPart(l.peekRune()) || l.peekRune() == '\\') {
		if !readPart(false) {
			break
		}
	}

	text := sb.String()
	kind := Identifier
	if !containsEscape && reservedWords[text] {
		kind = Keyword
	}
	a := l.atoms.Intern(text)
	return Token{Kind: kind, Text: text, Atom: a, ContainsEscape: containsEscape}
}

// scanPrivateIdentifier consumes `#` followed by an IdentifierName, for
// private class fields/methods (`#x`).
func (l *Lexer) scanPrivateIdentifier() Token {
	l.advanceRune() // '#'
	inner := l.scanIdentifierOrKeyword()
	text := "#" + inner.Text
	return Token{Kind: PrivateIdentifier, Text: text, Atom: l.atoms.Intern(text), ContainsEscape: inner.ContainsEscape}
}

// readUnicodeEscape consumes either `uXXXX` or `u{X...X}` (the leading
// 'u' has already been consumed by the caller) and returns the decoded
// code point.
func (l *Lexer) readUnicodeEscape() (rune, bool) {
	if l.peekRune() == '{' {
		l.advanceRune()
		var sb strings.Builder
		for !l.atEOF() && l.peekRune() != '}' {
			sb.WriteRune(l.advanceRune())
		}
		if !l.atEOF() {
			l.advanceRune() // '}'
		}
		v, err := strconv.ParseInt(sb.String(), 16, 32)
		if err != nil {
			return 0, false
		}
		return rune(v), true
	}
	var sb strings.Builder
	for i := 0; i < 4 && !l.atEOF(); i++ {
		sb.WriteRune(l.advanceRune())
	}
	v, err := strconv.ParseInt(sb.String(), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// scanNumber consumes a NumericLiteral: decimal (with optional exponent),
// 0b/0o/0x radix-prefixed, legacy octal, or any of those with a trailing
// BigInt `n` suffix. Numeric separators (`_`) are accepted and stripped.
func (l *Lexer) scanNumber() Token {
	var sb strings.Builder
	isBigInt := false
	isFloat := false

	writeDigits := func(valid func(rune) bool) {
		for !l.atEOF() {
			r := l.peekRune()
			if r == '_' {
				l.advanceRune()
				continue
			}
			if !valid(r) {
				break
			}
			sb.WriteRune(l.advanceRune())
		}
	}

	isHex := func(r rune) bool {
		return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
	}
	isOctDigit := func(r rune) bool { return r >= '0' && r <= '7' }
	isBinDigit := func(r rune) bool { return r == '0' || r == '1' }

	if l.peekRune() == '0' && (l.peekRuneAt(1) == 'x' || l.peekRuneAt(1) == 'X') {
		sb.WriteRune(l.advanceRune())
		sb.WriteRune(l.advanceRune())
		writeDigits(isHex)
	} else if l.peekRune() == '0' && (l.peekRuneAt(1) == 'o' || l.peekRuneAt(1) == 'O') {
		sb.WriteRune(l.advanceRune())
		sb.WriteRune(l.advanceRune())
		writeDigits(isOctDigit)
	} else if l.peekRune() == '0' && (l.peekRuneAt(1) == 'b' || l.peekRuneAt(1) == 'B') {
		sb.WriteRune(l.advanceRune())
		sb.WriteRune(l.advanceRune())
		writeDigits(isBinDigit)
	} else {
		writeDigits(isDigit)
		if l.peekRune() == '.' {
			isFloat = true
			sb.WriteRune(l.advanceRune())
			writeDigits(isDigit)
		}
		if l.peekRune() == 'e' || l.peekRune() == 'E' {
			isFloat = true
			sb.WriteRune(l.advanceRune())
			if l.peekRune() == '+' || l.peekRune() == '-' {
				sb.WriteRune(l.advanceRune())
			}
			writeDigits(isDigit)
		}
	}

	if l.peekRune() == 'n' {
		isBigInt = true
		l.advanceRune()
	}

	text := sb.String()
	tok := Token{Kind: NumericLiteral, Text: text}
	switch {
	case isBigInt:
		tok.NumKind = NumBigInt
		tok.NumBigIntText = text
	case isFloat:
		tok.NumKind = NumFloat
		tok.NumFloat = parseFloatLiteral(text)
	default:
		tok.NumKind = NumInteger
		tok.NumInt = parseIntLiteral(text)
	}
	return tok
}

func parseFloatLiteral(text string) float64 {
	v, _ := strconv.ParseFloat(text, 64)
	return v
}

func parseIntLiteral(text string) int64 {
	base := 10
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		base, text = 16, text[2:]
	case strings.HasPrefix(text, "0o") || strings.HasPrefix(text, "0O"):
		base, text = 8, text[2:]
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		base, text = 2, text[2:]
	case len(text) > 1 && text[0] == '0':
		base = 8 // legacy octal; strict-mode rejection is a parser early error
	}
	v, _ := strconv.ParseInt(text, base, 64)
	return v
}

// scanString consumes a single/double-quoted StringLiteral, producing
// both the cooked (escape-translated) and raw forms.
func (l *Lexer) scanString(quote rune) Token {
	l.advanceRune() // opening quote
	var cooked, raw strings.Builder
	invalid := false
	for !l.atEOF() && l.peekRune() != quote {
		if l.peekRune() == '\\' {
			rawStart := l.pos
			l.advanceRune()
			ok := l.scanEscapeInto(&cooked)
			raw.WriteString(l.src[rawStart:l.pos])
			if !ok {
				invalid = true
			}
			continue
		}
		if isLineTerminator(l.peekRune()) {
			invalid = true
			break
		}
		r := l.advanceRune()
		cooked.WriteRune(r)
		raw.WriteRune(r)
	}
	if !l.atEOF() {
		l.advanceRune() // closing quote
	}
	return Token{Kind: StringLiteral, Cooked: cooked.String(), Raw: raw.String(), CookedInvalid: invalid}
}

// scanEscapeInto decodes one escape sequence (the leading backslash has
// already been consumed) into cooked, reporting whether it was
// recognized. Legacy octal escapes are accepted lexically; rejecting them
// in strict mode is the parser's job.
func (l *Lexer) scanEscapeInto(cooked *strings.Builder) bool {
	if l.atEOF() {
		return false
	}
	r := l.peekRune()
	switch r {
	case 'n':
		l.advanceRune()
		cooked.WriteByte('\n')
	case 't':
		l.advanceRune()
		cooked.WriteByte('\t')
	case 'r':
		l.advanceRune()
		cooked.WriteByte('\r')
	case 'b':
		l.advanceRune()
		cooked.WriteByte('\b')
	case 'f':
		l.advanceRune()
		cooked.WriteByte('\f')
	case 'v':
		l.advanceRune()
		cooked.WriteByte('\v')
	case '0':
		if !isDigit(l.peekRuneAt(1)) {
			l.advanceRune()
			cooked.WriteByte(0)
		} else {
			return l.scanLegacyOctalEscape(cooked)
		}
	case '1', '2', '3', '4', '5', '6', '7':
		return l.scanLegacyOctalEscape(cooked)
	case 'x':
		l.advanceRune()
		var sb strings.Builder
		for i := 0; i < 2 && !l.atEOF(); i++ {
			sb.WriteRune(l.advanceRune())
		}
		v, err := strconv.ParseInt(sb.String(), 16, 32)
		if err != nil {
			return false
		}
		cooked.WriteRune(rune(v))
	case 'u':
		l.advanceRune()
		rn, ok := l.readUnicodeEscape()
		if !ok {
			return false
		}
		cooked.WriteRune(rn)
	case '\n', '\r', '\u2028', '\u2029':
		l.advanceRune() // line continuation: no character added
	default:
		cooked.WriteRune(l.advanceRune())
	}
	return true
}

func (l *Lexer) scanLegacyOctalEscape(cooked *strings.Builder) bool {
	var sb strings.Builder
	for i := 0; i < 3 && !l.atEOF() && l.peekRune() >= '0' && l.peekRune() <= '7'; i++ {
		sb.WriteRune(l.advanceRune())
	}
	v, err := strconv.ParseInt(sb.String(), 8, 32)
	if err != nil {
		return false
	}
	cooked.WriteRune(rune(v))
	return true
}

// scanTemplate consumes a template literal part starting at a backtick
// (isHead) or starting after a previously-consumed `}` continuation. It
// stops at an unescaped backtick (NoSubTemplate/TemplateTail) or at
// `${` (TemplateHead/TemplateMiddle).
func (l *Lexer) scanTemplate(isHead bool) Token {
	l.advanceRune() // opening backtick or leading '}'
	var cooked, raw strings.Builder
	invalid := false
	for {
		if l.atEOF() {
			invalid = true
			break
		}
		if l.peekRune() == '`' {
			l.advanceRune()
			kind := NoSubTemplate
			if !isHead {
				kind = TemplateTail
			}
			return Token{Kind: kind, Cooked: cooked.String(), Raw: raw.String(), CookedInvalid: invalid}
		}
		if l.peekRune() == '$' && l.peekRuneAt(1) == '{' {
			l.advanceRune()
			l.advanceRune()
			kind := TemplateHead
			if !isHead {
				kind = TemplateMiddle
			}
			return Token{Kind: kind, Cooked: cooked.String(), Raw: raw.String(), CookedInvalid: invalid}
		}
		if l.peekRune() == '\\' {
			rawStart := l.pos
			l.advanceRune()
			ok := l.scanEscapeInto(&cooked)
			raw.WriteString(l.src[rawStart:l.pos])
			if !ok {
				invalid = true
			}
			continue
		}
		r := l.advanceRune()
		cooked.WriteRune(r)
		raw.WriteRune(r)
	}
	kind := NoSubTemplate
	if !isHead {
		kind = TemplateTail
	}
	return Token{Kind: kind, Cooked: cooked.String(), Raw: raw.String(), CookedInvalid: true}
}

// scanPunctuatorOrTemplateContinuation handles `}` specially when the
// parser has set GoalTemplateTail (meaning this `}` resumes a template
// literal rather than closing a block/substitution), then falls back to
// ordinary multi/single-character punctuator matching.
func (l *Lexer) scanPunctuatorOrTemplateContinuation() Token {
	if l.peekRune() == '}' && l.goal == GoalTemplateTail {
		return l.scanTemplate(false)
	}
	for _, p := range punctuators {
		if strings.HasPrefix(l.src[l.pos:], p) {
			for range p {
				l.advanceRune()
			}
			return Token{Kind: Punctuator, Text: p}
		}
	}
	r := l.advanceRune()
	return Token{Kind: Punctuator, Text: string(r)}
}

// scanRegex consumes a RegexLiteral body (bracket-aware, so a `/` inside
// a character class does not terminate the body) and its trailing flags,
// without validating the regex grammar itself.
func (l *Lexer) scanRegex() Token {
	l.advanceRune() // opening '/'
	var body strings.Builder
	inClass := false
	for !l.atEOF() {
		r := l.peekRune()
		if r == '\\' {
			body.WriteRune(l.advanceRune())
			if !l.atEOF() {
				body.WriteRune(l.advanceRune())
			}
			continue
		}
		if r == '[' {
			inClass = true
		} else if r == ']' {
			inClass = false
		} else if r == '/' && !inClass {
			l.advanceRune()
			break
		} else if isLineTerminator(r) {
			break
		}
		body.WriteRune(l.advanceRune())
	}
	var flags strings.Builder
	for !l.atEOF() && isIdentifierPart(l.peekRune()) {
		flags.WriteRune(l.advanceRune())
	}
	return Token{Kind: RegexLiteral, RegexBody: body.String(), RegexFlags: flags.String()}
}
