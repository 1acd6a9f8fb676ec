// Package compiler lowers an internal/ast tree into a tree of CodeBlocks:
// one per script/module top level and one per function literal. The
// instruction stream is a flat slice of fixed-shape Instruction values
// rather than a packed byte stream with a 1-byte opcode and
// variable-sized operands — a deliberate simplification, since nothing
// in this engine's scope (no separate bytecode serialization format, no
// cross-process loading) needs the packed on-disk representation that
// encoding exists to save space for.
package compiler

import "esprit/internal/atom"

// Op is one bytecode instruction's opcode.
type Op int

const (
	// Load/store.
	OpConst Op = iota
	OpUndefined
	OpNull
	OpTrue
	OpFalse
	OpThis
	OpPop
	OpDup
	OpSwap
	// OpRotTop, A=n (n>=2): pops the top element and reinserts it n-1
	// positions below the new top, leaving everything deeper than depth n
	// untouched. A=2 is equivalent to OpSwap; compound/update assignment
	// to a member expression uses A=3 (plain object.prop) or A=4
	// (computed object[key]) to reorder a duplicated object/key back
	// under a freshly computed value before storing it, without
	// re-evaluating the object or key expressions a second time.
	OpRotTop

	// Bindings, resolved by name through the active environment chain.
	// Escape analysis / compile-time slot assignment is not implemented;
	// every binding resolves dynamically by atom (see DESIGN.md's Open
	// Question resolution for C11).
	OpGetBinding
	// OpSetBinding also clears the binding's TDZ if still uninitialized,
	// unifying plain reassignment with the first-time store a pattern
	// leaf needs during let/const/parameter destructuring — both go
	// through compileDestructureAssign's shared compileAssignTo path (see
	// DESIGN.md's Open Question resolution for C11). OpInitBinding is
	// still used directly wherever a target is a bare identifier.
	OpSetBinding // strict-mode flag via B
	OpDeclareVar
	OpDeclareLet
	OpDeclareConst
	OpInitBinding

	// Properties.
	OpGetProp       // by atom (Instruction.Atom)
	OpSetProp       // by atom (Instruction.Atom)
	OpGetPropValue  // computed: key is on stack
	OpSetPropValue  // computed: key, then value on stack
	OpDeleteProp    // by atom (Instruction.Atom)
	OpDeletePropVal // computed

	// Arithmetic/bitwise/relational/equality/logical-unary.
	OpBinary // A selects BinOp
	OpUnary  // A selects UnOp
	// OpUpdate, A = +1 or -1: pops a number, pushes it plus A. Prefix vs.
	// postfix ++/-- is handled entirely by the compiler's choice of which
	// duplicated value survives on the stack as the expression's result
	// (see compileUpdate), not by this opcode.
	OpUpdate

	// Control flow.
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	// OpJumpIfNullish/OpJumpIfNotNullish pop the tested value and jump on
	// the named condition, falling through (value already popped)
	// otherwise — same one-pop convention as OpJumpIfFalse/OpJumpIfTrue.
	OpJumpIfNullish
	OpJumpIfNotNullish
	OpThrow
	OpReturn

	// Environment scoping.
	OpPushEnv // A = hint size
	OpPopEnv

	// Functions/calls.
	OpMakeClosure // A = index into CodeBlock.Children
	OpCall        // A = argc
	OpCallSpread  // this, callee, argsArray -> result
	OpNew         // A = argc
	OpNewSpread   // callee, argsArray -> result
	OpGetIteratorItem
	OpSpreadArray // expand top-of-stack iterable into the array below it

	// Parameter binding. A function's call frame carries its actual
	// arguments separately from the environment it declares bindings
	// into, so the compiler (not the VM) owns turning "argument N" into
	// "parameter pattern's bindings" — covering defaults and
	// destructuring the same way a plain declaration's initializer does.
	OpLoadArg  // A = index: push arguments[A], or undefined past argc
	OpArgCount // push the call's actual argument count
	OpRestArgs // A = start index: push a new array of arguments[A:]

	// Objects/arrays.
	OpNewObject
	OpNewArray
	OpPushElement    // array, value -> array (append)
	OpDefineProp     // object, value -> object; by atom (Instruction.Atom)
	OpDefinePropVal  // object, key, value -> object
	OpDefineAccessor // object, key, getter-or-setter fn -> object; A: 0=getter 1=setter

	// Classes. A class's [[Prototype]] linkage (constructor -> superclass,
	// constructor.prototype -> superclass.prototype) is installed by one
	// opcode rather than exposed as separately settable primitives, since
	// nothing outside class evaluation needs to rewire an object's
	// [[Prototype]] after creation.
	OpClassHeritage // ctor, superCtor -> ctor

	// try/finally/catch is table-driven (CodeBlock.Handlers); no opcode
	// marks handler entry or exit.

	// Iteration (for-in/for-of), implemented over the engine's own
	// object/array machinery rather than the full Symbol.iterator
	// protocol, since the built-in layer that would define
	// Array.prototype[Symbol.iterator] is out of this core's scope (see
	// DESIGN.md).
	OpForInNext // pops nothing; pushes next key or jumps A on exhaustion
	OpForOfNext // pops nothing; pushes next value or jumps A on exhaustion

	OpAwait // suspend current async frame; resumes with resolved value or throw
	OpYield // suspend current generator frame
)

// BinOp enumerates the binary operators OpBinary dispatches on.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinExp
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
	BinUShr
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNeq
	BinStrictEq
	BinStrictNeq
	BinIn
	BinInstanceof
	BinAnd // logical &&, still short-circuited at compile time via jumps
	BinOr
	BinNullish
)

// UnOp enumerates the unary operators OpUnary dispatches on.
type UnOp int

const (
	UnMinus UnOp = iota
	UnPlus
	UnNot
	UnBitNot
	UnTypeof
	UnVoid
	UnDelete
)

// Instruction is one bytecode instruction. Which operand fields are
// meaningful depends on Op; unused fields are zero.
type Instruction struct {
	Op   Op
	A    int
	B    int
	Atom atom.Atom
}
