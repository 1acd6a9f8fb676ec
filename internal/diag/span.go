package diag

import "fmt"

// Span identifies a range of source text by byte offsets and 1-based
// line/column of its start, matching the spans AST and token nodes carry.
type Span struct {
	Start, End int
	Line, Col  int
}

// String renders a span for error messages and test assertions.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Col)
}
