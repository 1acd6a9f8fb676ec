package value

import (
	"fmt"
	"math/big"
)

// BigIntBinaryOp applies op (one of "+","-","*","/","%","**","&","|","^",
// "<<",">>") to two BigInt values, backing the BigInt-aware arithmetic
// opcode. Division/modulo by zero raise a RangeError; cross-type
// arithmetic with Number is rejected by callers before this function is
// reached.
func BigIntBinaryOp(op string, a, b Value) (Value, error) {
	if !a.IsBigInt() || !b.IsBigInt() {
		return Value{}, fmt.Errorf("TypeError: BigIntBinaryOp requires two BigInt operands")
	}
	x, y := a.AsBigInt(), b.AsBigInt()
	z := new(big.Int)

	switch op {
	case "+":
		z.Add(x, y)
	case "-":
		z.Sub(x, y)
	case "*":
		z.Mul(x, y)
	case "/":
		if y.Sign() == 0 {
			return Value{}, fmt.Errorf("RangeError: division by zero")
		}
		z.Quo(x, y)
	case "%":
		if y.Sign() == 0 {
			return Value{}, fmt.Errorf("RangeError: division by zero")
		}
		z.Rem(x, y)
	case "**":
		if y.Sign() < 0 {
			return Value{}, fmt.Errorf("RangeError: exponent must be non-negative")
		}
		z.Exp(x, y, nil)
	case "&":
		z.And(x, y)
	case "|":
		z.Or(x, y)
	case "^":
		z.Xor(x, y)
	case "<<":
		if !y.IsInt64() || y.Sign() < 0 {
			return Value{}, fmt.Errorf("RangeError: shift amount out of range")
		}
		z.Lsh(x, uint(y.Int64()))
	case ">>":
		if !y.IsInt64() || y.Sign() < 0 {
			return Value{}, fmt.Errorf("RangeError: shift amount out of range")
		}
		z.Rsh(x, uint(y.Int64()))
	default:
		return Value{}, fmt.Errorf("engine bug: unknown BigInt operator %q", op)
	}
	return BigInt(z), nil
}

// BigIntCompare returns -1, 0, or 1 comparing two BigInt values.
func BigIntCompare(a, b Value) int {
	return a.AsBigInt().Cmp(b.AsBigInt())
}

// BigIntNegate returns -v for a BigInt v.
func BigIntNegate(v Value) Value {
	return BigInt(new(big.Int).Neg(v.AsBigInt()))
}
