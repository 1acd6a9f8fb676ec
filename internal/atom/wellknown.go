package atom

// Well is the process-wide interner of well-known names, pre-populated
// with a fixed set at package init. It is read-only after that and safe
// to share across realms/agents; per-realm user atoms live in each
// Realm's own *Interner instead.
var Well = New()

// Well-known atoms, interned once at package init so every realm in the
// process shares the same integer handles for these names. Declared as
// vars (not const) because Atom values are assigned by Well.Intern, but
// they never change after init().
var (
	Prototype    Atom
	Constructor  Atom
	Length       Atom
	Name         Atom
	Message      Atom
	Value        Atom
	Done         Atom
	Next         Atom
	Return       Atom
	Throw        Atom
	ToString     Atom
	ValueOf      Atom
	This         Atom
	Arguments    Atom
	Get          Atom
	Set          Atom
	Writable     Atom
	Enumerable   Atom
	Configurable Atom
	Undefined    Atom
	Null         Atom

	// Well-known symbol descriptions: the actual Symbol values live in
	// internal/value, but their description strings are interned here so
	// every realm resolves the same atom for them.
	SymbolIterator      Atom
	SymbolAsyncIterator Atom
	SymbolHasInstance   Atom
	SymbolToStringTag   Atom
)

func init() {
	Prototype = Well.Intern("prototype")
	Constructor = Well.Intern("constructor")
	Length = Well.Intern("length")
	Name = Well.Intern("name")
	Message = Well.Intern("message")
	Value = Well.Intern("value")
	Done = Well.Intern("done")
	Next = Well.Intern("next")
	Return = Well.Intern("return")
	Throw = Well.Intern("throw")
	ToString = Well.Intern("toString")
	ValueOf = Well.Intern("valueOf")
	This = Well.Intern("this")
	Arguments = Well.Intern("arguments")
	Get = Well.Intern("get")
	Set = Well.Intern("set")
	Writable = Well.Intern("writable")
	Enumerable = Well.Intern("enumerable")
	Configurable = Well.Intern("configurable")
	Undefined = Well.Intern("undefined")
	Null = Well.Intern("null")

	SymbolIterator = Well.Intern("Symbol.iterator")
	SymbolAsyncIterator = Well.Intern("Symbol.asyncIterator")
	SymbolHasInstance = Well.Intern("Symbol.hasInstance")
	SymbolToStringTag = Well.Intern("Symbol.toStringTag")

	// Single-digit numeric atoms, used as array-index property keys for
	// the first ten dense-array slots without going through ToString.
	for i := 0; i <= 9; i++ {
		Well.Intern(string(rune('0' + i)))
	}
}
