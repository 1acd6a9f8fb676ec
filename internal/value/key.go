package value

import (
	"strconv"

	"esprit/internal/atom"
)

// KeyKind discriminates the three property-key forms: string, symbol,
// and array index.
type KeyKind uint8

const (
	KeyString KeyKind = iota
	KeySymbol
	KeyIndex
)

// PropertyKey is the sum type `{String atom, Symbol, Array index (u32)}`.
// Array indices are split out so dense arrays can use a packed
// indexed-element vector instead of going through the shape's property
// table for every numeric index.
type PropertyKey struct {
	kind  KeyKind
	atom  atom.Atom
	sym   *Symbol
	index uint32
}

// StringKey builds a PropertyKey from an already-interned atom.
func StringKey(a atom.Atom) PropertyKey { return PropertyKey{kind: KeyString, atom: a} }

// SymbolKey builds a PropertyKey from a Symbol.
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{kind: KeySymbol, sym: s} }

// IndexKey builds a PropertyKey from an array index.
func IndexKey(i uint32) PropertyKey { return PropertyKey{kind: KeyIndex, index: i} }

func (k PropertyKey) Kind() KeyKind   { return k.kind }
func (k PropertyKey) Atom() atom.Atom { return k.atom }
func (k PropertyKey) Symbol() *Symbol { return k.sym }
func (k PropertyKey) Index() uint32   { return k.index }

// Equal reports whether two property keys identify the same property.
func (k PropertyKey) Equal(other PropertyKey) bool {
	if k.kind != other.kind {
		return false
	}
	switch k.kind {
	case KeyString:
		return k.atom == other.atom
	case KeySymbol:
		return k.sym == other.sym
	case KeyIndex:
		return k.index == other.index
	default:
		return false
	}
}

// ToPropertyKeyInterned runs ToPropertyKey and, for string results, either
// recognizes a canonical array index or interns the string via in,
// producing the key representation internal/shape and internal/object
// operate on.
func ToPropertyKeyInterned(v Value, in *atom.Interner) (PropertyKey, error) {
	pk, err := ToPropertyKey(v)
	if err != nil {
		return PropertyKey{}, err
	}
	if pk.IsSymbol() {
		return SymbolKey(pk.AsSymbol()), nil
	}
	s := pk.AsString()
	if idx, ok := canonicalArrayIndex(s); ok {
		return IndexKey(idx), nil
	}
	return StringKey(in.Intern(s)), nil
}

// canonicalArrayIndex reports whether s is the canonical decimal string
// form of an array index in [0, 2^32-2], per the CanonicalNumericIndexString
// family of spec algorithms.
func canonicalArrayIndex(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] == '0' {
		return 0, false // "01" etc. is not a canonical index string
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n > 0xFFFFFFFE {
		return 0, false
	}
	return uint32(n), true
}
