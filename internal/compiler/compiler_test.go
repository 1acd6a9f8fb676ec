package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esprit/internal/atom"
	"esprit/internal/compiler"
	"esprit/internal/parser"
)

func compile(t *testing.T, source string) *compiler.CodeBlock {
	t.Helper()
	atoms := atom.New()
	prog, err := parser.ParseScript(source, atoms)
	require.NoError(t, err)
	code, err := compiler.Compile(prog, atoms)
	require.NoError(t, err)
	return code
}

// lastTwoOps reports the final two opcodes emitted for a program, the
// shape Compile's trailing sequence always takes: either the last
// expression statement's own value followed by OpReturn, or a synthesized
// OpUndefined followed by OpReturn when the program is empty or ends in a
// non-expression statement.
func lastTwoOps(t *testing.T, code *compiler.CodeBlock) (compiler.Op, compiler.Op) {
	t.Helper()
	n := len(code.Code)
	require.GreaterOrEqual(t, n, 2)
	return code.Code[n-2].Op, code.Code[n-1].Op
}

// TestCompileTrailingExpressionStatementIsNotDiscarded pins the script
// completion-value contract: Compile must leave the final top-level
// expression statement's own value on the stack for its trailing
// OpReturn, not an unconditional OpUndefined — every earlier statement in
// the program is still discarded via its own OpPop.
func TestCompileTrailingExpressionStatementIsNotDiscarded(t *testing.T) {
	code := compile(t, "1; 2; 3;")
	secondLast, last := lastTwoOps(t, code)
	assert.Equal(t, compiler.OpReturn, last)
	assert.NotEqual(t, compiler.OpUndefined, secondLast)
}

func TestCompileEmptyProgramReturnsUndefined(t *testing.T) {
	code := compile(t, "")
	secondLast, last := lastTwoOps(t, code)
	assert.Equal(t, compiler.OpUndefined, secondLast)
	assert.Equal(t, compiler.OpReturn, last)
}

func TestCompileTrailingNonExpressionStatementReturnsUndefined(t *testing.T) {
	code := compile(t, "let x = 1;")
	secondLast, last := lastTwoOps(t, code)
	assert.Equal(t, compiler.OpUndefined, secondLast)
	assert.Equal(t, compiler.OpReturn, last)
}

func TestCompileSyntaxErrorIsReportedAtParseTime(t *testing.T) {
	atoms := atom.New()
	_, err := parser.ParseScript("let = ;", atoms)
	assert.Error(t, err)
}

func TestCompileFunctionBodyUnaffectedByScriptCompletionHandling(t *testing.T) {
	// compileProgram's special-casing of the final top-level expression
	// statement is scoped to script/module top level only; a function
	// body with no explicit return still falls through to its own
	// ordinary undefined-returning path, compiled by compileFunctionBody
	// rather than compileProgram.
	code := compile(t, "(function() { 1; 2; 3; });")
	require.Len(t, code.Children, 1)
	fn := code.Children[0]
	secondLast, last := lastTwoOps(t, fn)
	assert.Equal(t, compiler.OpReturn, last)
	assert.Equal(t, compiler.OpUndefined, secondLast)
}
