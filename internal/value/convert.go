package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Primitiver is implemented by heap references (objects) that know how to
// convert themselves to a primitive, i.e. OrdinaryToPrimitive plus any
// Symbol.toPrimitive override. Defined here (not in internal/object) so
// ToPrimitive can call back into object behavior without value importing
// object.
type Primitiver interface {
	ToPrimitive(hint string) (Value, error)
}

// ToPrimitive implements the abstract operation of the same name.
// hint is "default", "number", or "string".
func ToPrimitive(v Value, hint string) (Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	if p, ok := v.ref.(Primitiver); ok {
		return p.ToPrimitive(hint)
	}
	return v, nil
}

// ToBoolean implements ToBoolean.
func ToBoolean(v Value) bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.num != 0
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBigInt:
		return v.big.Sign() != 0
	case KindString:
		return len(v.str) != 0
	case KindSymbol, KindObject:
		return true
	default:
		return false
	}
}

// ToNumber implements ToNumber. Objects must already have
// been reduced via ToPrimitive(v, "number") by the caller; ToNumber
// itself never calls back into object behavior, mirroring the spec's
// layering (ToNumber in turn calls ToPrimitive internally, but this
// package cannot — so VM-level numeric coercion goes through
// value.ToNumberValue below instead, which does the two-step for callers
// that hold a HeapRef-capable Value).
func ToNumber(v Value) float64 {
	switch v.kind {
	case KindUndefined:
		return math.NaN()
	case KindNull:
		return 0
	case KindBoolean:
		return v.num
	case KindNumber:
		return v.num
	case KindBigInt:
		// Real engines throw TypeError for BigInt->Number coercion via
		// ToNumber; callers needing that distinction should check
		// IsBigInt before calling ToNumber.
		f, _ := new(big.Float).SetInt(v.big).Float64()
		return f
	case KindString:
		return stringToNumber(v.str)
	case KindSymbol:
		return math.NaN()
	default:
		return math.NaN()
	}
}

// ToNumberValue performs the full ToNumber abstract operation including
// the ToPrimitive(hint=number) step for objects.
func ToNumberValue(v Value) (float64, error) {
	if v.IsObject() {
		prim, err := ToPrimitive(v, "number")
		if err != nil {
			return 0, err
		}
		v = prim
	}
	if v.IsBigInt() {
		return 0, fmt.Errorf("TypeError: cannot convert a BigInt to a number")
	}
	return ToNumber(v), nil
}

func stringToNumber(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	if t == "Infinity" || t == "+Infinity" {
		return math.Inf(1)
	}
	if t == "-Infinity" {
		return math.Inf(-1)
	}
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		n, err := strconv.ParseUint(t[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	if strings.HasPrefix(t, "0b") || strings.HasPrefix(t, "0B") {
		n, err := strconv.ParseUint(t[2:], 2, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	if strings.HasPrefix(t, "0o") || strings.HasPrefix(t, "0O") {
		n, err := strconv.ParseUint(t[2:], 8, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// toInt32Bits implements the shared integer-reduction step of ToInt32/
// ToUint32.
func toInt32Bits(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	n = math.Trunc(n)
	// reduce modulo 2^32 into [0, 2^32)
	m := math.Mod(n, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}

// ToInt32 implements ToInt32.
func ToInt32(v Value) int32 {
	return int32(toInt32Bits(ToNumber(v)))
}

// ToUint32 implements ToUint32.
func ToUint32(v Value) uint32 {
	return toInt32Bits(ToNumber(v))
}

// ToLength implements ToLength: clamps to [0, 2^53-1].
func ToLength(v Value) float64 {
	n := ToNumber(v)
	if math.IsNaN(n) || n <= 0 {
		return 0
	}
	const maxLength = 9007199254740991 // 2^53-1
	if n > maxLength {
		return maxLength
	}
	return math.Trunc(n)
}

// ToIndex implements ToIndex: like ToLength, but rejects
// negative integer indices with a RangeError.
func ToIndex(v Value) (int64, error) {
	n := ToNumber(v)
	if math.IsNaN(n) {
		return 0, nil
	}
	i := math.Trunc(n)
	const maxIndex = 9007199254740991
	if i < 0 || i > maxIndex {
		return 0, fmt.Errorf("RangeError: index out of range")
	}
	return int64(i), nil
}

// ToStringValue implements ToString for primitives already reduced via
// ToPrimitive(hint=string); it does not call back into object behavior.
func ToStringValue(v Value) string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		if v.num != 0 {
			return "true"
		}
		return "false"
	case KindNumber:
		return NumberToString(v.num)
	case KindBigInt:
		return v.big.String()
	case KindString:
		return v.str
	case KindSymbol:
		panic("TypeError: cannot convert a Symbol to a string implicitly")
	default:
		return ""
	}
}

// ToStringFull performs the full ToString abstract operation, including
// the ToPrimitive(hint=string) step for objects.
func ToStringFull(v Value) (string, error) {
	if v.IsObject() {
		prim, err := ToPrimitive(v, "string")
		if err != nil {
			return "", err
		}
		v = prim
	}
	if v.IsSymbol() {
		return "", fmt.Errorf("TypeError: cannot convert a Symbol value to a string")
	}
	return ToStringValue(v), nil
}

// NumberToString formats n per the ECMAScript Number::toString algorithm,
// approximated with Go's shortest round-trippable float formatting.
func NumberToString(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if n == 0 {
		if math.Signbit(n) {
			return "0" // ECMAScript prints -0 as "0" via ToString
		}
		return "0"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// ToPropertyKey implements ToPropertyKey: strings stay
// strings, symbols stay symbols, everything else is coerced via ToString.
func ToPropertyKey(v Value) (Value, error) {
	if v.IsSymbol() {
		return v, nil
	}
	s, err := ToStringFull(v)
	if err != nil {
		return Value{}, err
	}
	return String(s), nil
}
