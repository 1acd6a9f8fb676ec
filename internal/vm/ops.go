package vm

import (
	"math"
	"math/big"

	"esprit/internal/compiler"
	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

// toNumeric runs ToNumberValue, converting its returned error (a plain Go
// error from value.ToNumberValue's ToPrimitive step) into a thrown value
// via goError/panic so every arithmetic opcode handler can call it
// without its own error plumbing.
func (vm *VM) toNumeric(v value.Value) float64 {
	n, err := value.ToNumberValue(v)
	if err != nil {
		vm.goError(err)
		return math.NaN()
	}
	return n
}

func (vm *VM) toPrimitive(v value.Value, hint string) value.Value {
	p, err := value.ToPrimitive(v, hint)
	if err != nil {
		vm.goError(err)
		return value.Undefined
	}
	return p
}

func (vm *VM) toStringValue(v value.Value) string {
	s, err := value.ToStringFull(v)
	if err != nil {
		vm.goError(err)
		return ""
	}
	return s
}

// binaryOp implements OpBinary. Arithmetic and relational operators run
// the full two-step ToPrimitive-then-coerce algorithm per operand;
// BinAnd/BinOr/BinNullish are included for completeness even though the
// compiler currently only ever lowers `&&`/`||`/`??` via short-circuit
// jumps (see compileLogical), never through this opcode.
func (vm *VM) binaryOp(op compiler.BinOp, left, right value.Value) value.Value {
	switch op {
	case compiler.BinAdd:
		return vm.add(left, right)
	case compiler.BinSub:
		return vm.arith(left, right, func(a, b float64) float64 { return a - b }, (*big.Int).Sub)
	case compiler.BinMul:
		return vm.arith(left, right, func(a, b float64) float64 { return a * b }, (*big.Int).Mul)
	case compiler.BinDiv:
		return vm.arith(left, right, func(a, b float64) float64 { return a / b }, bigIntDiv)
	case compiler.BinMod:
		return vm.arith(left, right, math.Mod, (*big.Int).Mod)
	case compiler.BinExp:
		return vm.arith(left, right, math.Pow, bigIntExp)
	case compiler.BinBitAnd:
		return value.Number(float64(value.ToInt32(left) & value.ToInt32(right)))
	case compiler.BinBitOr:
		return value.Number(float64(value.ToInt32(left) | value.ToInt32(right)))
	case compiler.BinBitXor:
		return value.Number(float64(value.ToInt32(left) ^ value.ToInt32(right)))
	case compiler.BinShl:
		return value.Number(float64(value.ToInt32(left) << (value.ToUint32(right) & 31)))
	case compiler.BinShr:
		return value.Number(float64(value.ToInt32(left) >> (value.ToUint32(right) & 31)))
	case compiler.BinUShr:
		return value.Number(float64(value.ToUint32(left) >> (value.ToUint32(right) & 31)))
	case compiler.BinLt:
		return vm.relational(left, right, func(c int) bool { return c < 0 })
	case compiler.BinLe:
		return vm.relational(left, right, func(c int) bool { return c <= 0 })
	case compiler.BinGt:
		return vm.relational(left, right, func(c int) bool { return c > 0 })
	case compiler.BinGe:
		return vm.relational(left, right, func(c int) bool { return c >= 0 })
	case compiler.BinEq:
		return value.Bool(vm.looseEqual(left, right))
	case compiler.BinNeq:
		return value.Bool(!vm.looseEqual(left, right))
	case compiler.BinStrictEq:
		return value.Bool(strictEqual(left, right))
	case compiler.BinStrictNeq:
		return value.Bool(!strictEqual(left, right))
	case compiler.BinIn:
		return value.Bool(vm.hasProperty(left, right))
	case compiler.BinInstanceof:
		return value.Bool(vm.instanceOf(left, right))
	case compiler.BinAnd:
		if !value.ToBoolean(left) {
			return left
		}
		return right
	case compiler.BinOr:
		if value.ToBoolean(left) {
			return left
		}
		return right
	case compiler.BinNullish:
		if !left.IsNullish() {
			return left
		}
		return right
	default:
		vm.throwNew(diag.KindType, "unsupported binary operator")
		return value.Undefined
	}
}

// add implements `+`: string concatenation wins once either ToPrimitive
// result is a string, otherwise numeric (or BigInt) addition.
func (vm *VM) add(left, right value.Value) value.Value {
	lp := vm.toPrimitive(left, "default")
	rp := vm.toPrimitive(right, "default")
	if lp.IsString() || rp.IsString() {
		return value.String(vm.toStringValue(lp) + vm.toStringValue(rp))
	}
	if lp.IsBigInt() || rp.IsBigInt() {
		return vm.bigIntArith(lp, rp, (*big.Int).Add)
	}
	return value.Number(vm.toNumeric(lp) + vm.toNumeric(rp))
}

// arith implements a numeric binary operator: if either ToPrimitive
// result is a BigInt, both must be (mixed BigInt/Number arithmetic is a
// TypeError) and bigFn runs instead of fn.
func (vm *VM) arith(left, right value.Value, fn func(a, b float64) float64, bigFn func(z, x, y *big.Int) *big.Int) value.Value {
	lp := vm.toPrimitive(left, "number")
	rp := vm.toPrimitive(right, "number")
	if lp.IsBigInt() || rp.IsBigInt() {
		return vm.bigIntArith(lp, rp, bigFn)
	}
	return value.Number(fn(vm.toNumeric(lp), vm.toNumeric(rp)))
}

func (vm *VM) bigIntArith(left, right value.Value, fn func(z, x, y *big.Int) *big.Int) value.Value {
	if !left.IsBigInt() || !right.IsBigInt() {
		vm.throwNew(diag.KindType, "cannot mix BigInt and other types")
		return value.Undefined
	}
	return value.BigInt(fn(new(big.Int), left.AsBigInt(), right.AsBigInt()))
}

func bigIntDiv(z, x, y *big.Int) *big.Int { return z.Quo(x, y) }

func bigIntExp(z, x, y *big.Int) *big.Int { return z.Exp(x, y, nil) }

// relational implements the abstract relational comparison: string
// comparison if both operands' primitives are strings, numeric
// comparison otherwise, with NaN making every relational test false.
func (vm *VM) relational(left, right value.Value, test func(cmp int) bool) value.Value {
	lp := vm.toPrimitive(left, "number")
	rp := vm.toPrimitive(right, "number")
	if lp.IsString() && rp.IsString() {
		ls, rs := lp.AsString(), rp.AsString()
		switch {
		case ls < rs:
			return value.Bool(test(-1))
		case ls > rs:
			return value.Bool(test(1))
		default:
			return value.Bool(test(0))
		}
	}
	ln, rn := vm.toNumeric(lp), vm.toNumeric(rp)
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return value.False
	}
	switch {
	case ln < rn:
		return value.Bool(test(-1))
	case ln > rn:
		return value.Bool(test(1))
	default:
		return value.Bool(test(0))
	}
}

// strictEqual implements ===: no coercion, same kind required (except
// there is no separate "same numeric type" wrinkle since Number and
// BigInt are already distinct kinds).
func strictEqual(a, b value.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case value.KindUndefined, value.KindNull:
		return true
	case value.KindBoolean:
		return a.AsBoolean() == b.AsBoolean()
	case value.KindNumber:
		return a.AsNumber() == b.AsNumber()
	case value.KindBigInt:
		return a.AsBigInt().Cmp(b.AsBigInt()) == 0
	case value.KindString:
		return a.AsString() == b.AsString()
	case value.KindSymbol:
		return a.AsSymbol() == b.AsSymbol()
	case value.KindObject:
		return a.AsObject() == b.AsObject()
	default:
		return false
	}
}

// looseEqual implements the abstract equality algorithm (==): same-kind
// operands defer to strictEqual; null/undefined are mutually (and only
// self-) equal; number/string/boolean/object combinations reduce via the
// standard coercion ladder.
func (vm *VM) looseEqual(a, b value.Value) bool {
	if a.Kind() == b.Kind() {
		return strictEqual(a, b)
	}
	if a.IsNullish() && b.IsNullish() {
		return true
	}
	if a.IsNullish() || b.IsNullish() {
		return false
	}
	if a.IsNumber() && b.IsString() {
		return a.AsNumber() == vm.toNumeric(b)
	}
	if a.IsString() && b.IsNumber() {
		return vm.toNumeric(a) == b.AsNumber()
	}
	if a.IsBoolean() {
		return vm.looseEqual(value.Number(vm.toNumeric(a)), b)
	}
	if b.IsBoolean() {
		return vm.looseEqual(a, value.Number(vm.toNumeric(b)))
	}
	if (a.IsNumber() || a.IsString() || a.IsBigInt()) && b.IsObject() {
		return vm.looseEqual(a, vm.toPrimitive(b, "default"))
	}
	if a.IsObject() && (b.IsNumber() || b.IsString() || b.IsBigInt()) {
		return vm.looseEqual(vm.toPrimitive(a, "default"), b)
	}
	if a.IsBigInt() && b.IsNumber() {
		f, _ := new(big.Float).SetInt(a.AsBigInt()).Float64()
		return f == b.AsNumber()
	}
	if a.IsNumber() && b.IsBigInt() {
		f, _ := new(big.Float).SetInt(b.AsBigInt()).Float64()
		return a.AsNumber() == f
	}
	return false
}

// hasProperty implements the `in` operator: the right-hand side must be
// an object.
func (vm *VM) hasProperty(left, right value.Value) bool {
	o := vm.asObject(right)
	if o == nil {
		return false
	}
	key := vm.toKey(left)
	ok, err := o.HasProperty(key)
	if err != nil {
		vm.goError(err)
		return false
	}
	return ok
}

// instanceOf implements `instanceof`: walks left's prototype chain
// looking for right's own `prototype` value.
func (vm *VM) instanceOf(left, right value.Value) bool {
	ctor := vm.asCallableObject(right)
	if ctor == nil {
		return false
	}
	protoDesc, ok := ctor.GetOwnProperty(value.StringKey(vm.realm.Atoms.Intern("prototype")))
	if !ok || !protoDesc.Value.IsObject() {
		vm.throwNew(diag.KindType, "function has no prototype property in instanceof check")
		return false
	}
	if !left.IsObject() {
		return false
	}
	target := protoDesc.Value.AsObject()
	cur := vm.asObject(left)
	if cur == nil {
		return false
	}
	for {
		protoVal := cur.GetPrototypeOf()
		if !protoVal.IsObject() {
			return false
		}
		if protoVal.AsObject() == target {
			return true
		}
		cur, ok = protoVal.AsObject().(*object.Object)
		if !ok {
			return false
		}
	}
}

// unaryOp implements OpUnary. `delete` never reaches here (the compiler
// special-cases it into OpDeleteProp/OpDeletePropVal/OpTrue directly —
// see compileDelete), so UnDelete has no case.
func (vm *VM) unaryOp(op compiler.UnOp, v value.Value) value.Value {
	switch op {
	case compiler.UnMinus:
		if v.IsBigInt() {
			return value.BigInt(new(big.Int).Neg(v.AsBigInt()))
		}
		return value.Number(-vm.toNumeric(v))
	case compiler.UnPlus:
		if v.IsBigInt() {
			vm.throwNew(diag.KindType, "cannot convert a BigInt to a number")
			return value.Undefined
		}
		return value.Number(vm.toNumeric(v))
	case compiler.UnNot:
		return value.Bool(!value.ToBoolean(v))
	case compiler.UnBitNot:
		if v.IsBigInt() {
			return value.BigInt(new(big.Int).Not(v.AsBigInt()))
		}
		return value.Number(float64(^value.ToInt32(v)))
	case compiler.UnTypeof:
		return value.String(typeOfValue(v))
	case compiler.UnVoid:
		return value.Undefined
	default:
		vm.throwNew(diag.KindType, "unsupported unary operator")
		return value.Undefined
	}
}

func typeOfValue(v value.Value) string {
	switch v.Kind() {
	case value.KindUndefined:
		return "undefined"
	case value.KindNull:
		return "object"
	case value.KindBoolean:
		return "boolean"
	case value.KindNumber:
		return "number"
	case value.KindBigInt:
		return "bigint"
	case value.KindString:
		return "string"
	case value.KindSymbol:
		return "symbol"
	case value.KindObject:
		return v.AsObject().TypeOfTag()
	default:
		return "undefined"
	}
}

// updateOp implements OpUpdate: a BigInt operand gets delta added as a
// BigInt; any other operand is coerced with ToNumberValue and gets delta
// added as a Number.
func (vm *VM) updateOp(v value.Value, delta int) value.Value {
	if v.IsBigInt() {
		return value.BigInt(new(big.Int).Add(v.AsBigInt(), big.NewInt(int64(delta))))
	}
	return value.Number(vm.toNumeric(v) + float64(delta))
}
