// Package ast defines the syntax tree the parser (C9) produces and the
// compiler (C10) walks. Every node is a pointer to a concrete struct
// implementing Node; there is no separate "statement" vs "expression"
// interface because several constructs (e.g. function declarations) are
// valid in both positions depending on context.
package ast

import (
	"esprit/internal/atom"
	"esprit/internal/diag"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Span() diag.Span
}

type Base struct{ Sp diag.Span }

func (b Base) Span() diag.Span { return b.Sp }

// Program is the root of a parsed script or module.
type Program struct {
	Base
	Body     []Node
	IsModule bool
}

// ---- Statements ----

type BlockStatement struct {
	Base
	Body []Node
}

// VariableDeclaration covers var/let/const; Kind is one of "var", "let",
// "const".
type VariableDeclaration struct {
	Base
	Kind         string
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	Base
	ID   Node // Identifier or a binding pattern
	Init Node // nil if no initializer
}

type ExpressionStatement struct {
	Base
	Expression Node
}

type EmptyStatement struct{ Base }

type IfStatement struct {
	Base
	Test       Node
	Consequent Node
	Alternate  Node // nil if no else
}

type ForStatement struct {
	Base
	Init   Node // VariableDeclaration, expression, or nil
	Test   Node
	Update Node
	Body   Node
}

// ForInStatement and ForOfStatement share shape; IsAwait marks
// `for await (... of ...)`.
type ForInStatement struct {
	Base
	Left  Node // VariableDeclaration or assignment target
	Right Node
	Body  Node
}

type ForOfStatement struct {
	Base
	Left    Node
	Right   Node
	Body    Node
	IsAwait bool
}

type WhileStatement struct {
	Base
	Test Node
	Body Node
}

type DoWhileStatement struct {
	Base
	Body Node
	Test Node
}

type ReturnStatement struct {
	Base
	Argument Node // nil for bare `return`
}

type BreakStatement struct {
	Base
	Label atom.Atom // atom.Invalid if unlabeled
}

type ContinueStatement struct {
	Base
	Label atom.Atom
}

type ThrowStatement struct {
	Base
	Argument Node
}

type TryStatement struct {
	Base
	Block     *BlockStatement
	Param     Node // catch binding pattern, nil if catch has none or no catch clause
	HasCatch  bool
	Handler   *BlockStatement
	Finalizer *BlockStatement // nil if no finally
}

type SwitchStatement struct {
	Base
	Discriminant Node
	Cases        []*SwitchCase
}

type SwitchCase struct {
	Base
	Test       Node // nil for `default`
	Consequent []Node
}

type LabeledStatement struct {
	Base
	Label atom.Atom
	Body  Node
}

type DebuggerStatement struct{ Base }

// ---- Declarations reused as expressions in expression position ----

type FunctionDeclaration struct {
	Base
	ID          atom.Atom // atom.Invalid for a default-exported anonymous function
	Params      []Node
	Body        *BlockStatement
	IsGenerator bool
	IsAsync     bool
}

type ClassDeclaration struct {
	Base
	ID         atom.Atom
	SuperClass Node
	Body       []*ClassMember
}

type ClassMember struct {
	Base
	Key         Node
	Computed    bool
	Static      bool
	Kind        string // "method", "get", "set", "field", "constructor"
	Value       Node   // FunctionExpression for methods, initializer expr (or nil) for fields
	IsPrivate   bool
}

// ---- Expressions ----

type Identifier struct {
	Base
	Name atom.Atom
}

type PrivateIdentifier struct {
	Base
	Name atom.Atom
}

type ThisExpression struct{ Base }
type SuperExpression struct{ Base }

// MetaProperty covers new.target and import.meta.
type MetaProperty struct {
	Base
	Meta     string
	Property string
}

// LiteralKind distinguishes a Literal node's payload.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBool
	LitNumber
	LitBigInt
	LitString
	LitRegex
)

type Literal struct {
	Base
	Kind       LiteralKind
	Bool       bool
	Number     float64
	BigIntText string
	String     string
	RegexBody  string
	RegexFlags string
}

type TemplateLiteral struct {
	Base
	Quasis      []TemplateElement
	Expressions []Node
}

type TemplateElement struct {
	Cooked        string
	Raw           string
	CookedInvalid bool
}

type TaggedTemplateExpression struct {
	Base
	Tag   Node
	Quasi *TemplateLiteral
}

type ArrayExpression struct {
	Base
	Elements []Node // nil entries are elisions; SpreadElement for `...x`
}

type ObjectExpression struct {
	Base
	Properties []*Property
}

type Property struct {
	Base
	Key       Node
	Value     Node
	Computed  bool
	Shorthand bool
	Kind      string // "init", "get", "set", "spread"
}

type FunctionExpression struct {
	Base
	ID          atom.Atom // atom.Invalid if anonymous
	Params      []Node
	Body        *BlockStatement
	IsGenerator bool
	IsAsync     bool
}

type ArrowFunctionExpression struct {
	Base
	Params       []Node
	Body         Node // *BlockStatement, or an expression for a concise body
	IsExpression bool // true when Body is a concise-body expression
	IsAsync      bool
}

type ClassExpression struct {
	Base
	ID         atom.Atom
	SuperClass Node
	Body       []*ClassMember
}

type UnaryExpression struct {
	Base
	Operator string
	Argument Node
}

type UpdateExpression struct {
	Base
	Operator string
	Argument Node
	Prefix   bool
}

type BinaryExpression struct {
	Base
	Operator string
	Left     Node
	Right    Node
}

type LogicalExpression struct {
	Base
	Operator string // "&&", "||", "??"
	Left     Node
	Right    Node
}

type AssignmentExpression struct {
	Base
	Operator string // "=", "+=", ..., "&&=", "||=", "??="
	Left     Node   // identifier, member expression, or destructuring pattern
	Right    Node
}

type ConditionalExpression struct {
	Base
	Test       Node
	Consequent Node
	Alternate  Node
}

type CallExpression struct {
	Base
	Callee   Node
	Args     []Node // SpreadElement for `...x`
	Optional bool
}

type NewExpression struct {
	Base
	Callee Node
	Args   []Node
}

type MemberExpression struct {
	Base
	Object   Node
	Property Node // Identifier/PrivateIdentifier if !Computed, else an expression
	Computed bool
	Optional bool
}

type SequenceExpression struct {
	Base
	Expressions []Node
}

type SpreadElement struct {
	Base
	Argument Node
}

type YieldExpression struct {
	Base
	Argument Node // nil for bare `yield`
	Delegate bool // `yield*`
}

type AwaitExpression struct {
	Base
	Argument Node
}

// ---- Destructuring patterns ----

type ArrayPattern struct {
	Base
	Elements []Node // nil entries are elisions; RestElement for the tail
}

type ObjectPattern struct {
	Base
	Properties []*Property // Kind "init"; RestElement for `...rest`
}

type AssignmentPattern struct {
	Base
	Left    Node
	Default Node
}

type RestElement struct {
	Base
	Argument Node
}
