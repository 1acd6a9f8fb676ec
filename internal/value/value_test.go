package value

import (
	"math"
	"math/big"
	"testing"

	"esprit/internal/atom"
)

func TestToBoolean(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Undefined, false},
		{Null, false},
		{Number(0), false},
		{Number(math.NaN()), false},
		{Number(1), true},
		{String(""), false},
		{String("x"), true},
		{NewSymbol("s"), true},
	}
	for _, c := range cases {
		if got := ToBoolean(c.v); got != c.want {
			t.Errorf("ToBoolean(%v) = %v, want %v", c.v.Kind(), got, c.want)
		}
	}
}

func TestSameValueDistinguishesZeroAndNaN(t *testing.T) {
	posZero := Number(0)
	negZero := Number(math.Copysign(0, -1))
	if SameValue(posZero, negZero) {
		t.Fatalf("SameValue(+0, -0) should be false")
	}
	if !SameValueZero(posZero, negZero) {
		t.Fatalf("SameValueZero(+0, -0) should be true")
	}
	nan := Number(math.NaN())
	if !SameValue(nan, nan) {
		t.Fatalf("SameValue(NaN, NaN) should be true")
	}
	if StrictEquals(nan, nan) {
		t.Fatalf("StrictEquals(NaN, NaN) should be false")
	}
}

func TestSymbolIdentity(t *testing.T) {
	a := NewSymbol("x")
	b := NewSymbol("x")
	if StrictEquals(a, b) {
		t.Fatalf("two symbols with the same description must not be equal")
	}
	if !StrictEquals(a, a) {
		t.Fatalf("a symbol must equal itself")
	}
}

func TestToInt32Wraps(t *testing.T) {
	got := ToInt32(Number(4294967296 + 5))
	if got != 5 {
		t.Fatalf("ToInt32 = %d, want 5", got)
	}
	got = ToInt32(Number(-1))
	if got != -1 {
		t.Fatalf("ToInt32(-1) = %d, want -1", got)
	}
}

func TestStringToNumber(t *testing.T) {
	cases := map[string]float64{
		"":      0,
		"   ":   0,
		"123":   123,
		"0x1A":  26,
		"0b101": 5,
		"0o17":  15,
	}
	for in, want := range cases {
		got := ToNumber(String(in))
		if got != want {
			t.Errorf("ToNumber(%q) = %v, want %v", in, got, want)
		}
	}
	if !math.IsNaN(ToNumber(String("not a number"))) {
		t.Fatalf("ToNumber of garbage string should be NaN")
	}
}

func TestPropertyKeyInterning(t *testing.T) {
	in := atom.New()
	k1, err := ToPropertyKeyInterned(String("foo"), in)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := ToPropertyKeyInterned(String("foo"), in)
	if err != nil {
		t.Fatal(err)
	}
	if !k1.Equal(k2) {
		t.Fatalf("interning the same property-key string twice should be equal")
	}

	idx, err := ToPropertyKeyInterned(String("42"), in)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Kind() != KeyIndex || idx.Index() != 42 {
		t.Fatalf("numeric-looking string key should canonicalize to an index key, got kind=%v", idx.Kind())
	}

	leadingZero, err := ToPropertyKeyInterned(String("01"), in)
	if err != nil {
		t.Fatal(err)
	}
	if leadingZero.Kind() != KeyString {
		t.Fatalf("leading-zero numeric string must not canonicalize to an index key")
	}
}

func TestBigIntArithmetic(t *testing.T) {
	a := BigInt(big.NewInt(10))
	b := BigInt(big.NewInt(3))

	sum, err := BigIntBinaryOp("+", a, b)
	if err != nil || sum.AsBigInt().Int64() != 13 {
		t.Fatalf("10n + 3n = %v, err=%v", sum, err)
	}

	_, err = BigIntBinaryOp("/", a, BigInt(big.NewInt(0)))
	if err == nil {
		t.Fatalf("division by zero should error")
	}
}
