package object

import (
	"esprit/internal/atom"
	"esprit/internal/shape"
	"esprit/internal/value"
)

// arrayExt is the exotic state of a KindArray object: just the `length`
// invariant, since element storage lives in Object.elements (shared with
// every other indexed-element consumer).
type arrayExt struct {
	length uint32
}

var arrayMethods = func() Methods {
	m := ordinaryMethods
	m.GetOwnProperty = arrayGetOwnProperty
	m.Get = arrayGet
	m.Set = arraySet
	m.HasProperty = arrayHasProperty
	m.DefineOwnProperty = arrayDefineOwnProperty
	m.Delete = arrayDelete
	m.OwnPropertyKeys = arrayOwnPropertyKeys
	return m
}()

// NewArray builds a new exotic array with the given prototype (normally
// Array.prototype from the active realm) and initial length 0.
func NewArray(proto value.Value, atoms *atom.Interner) *Object {
	o := &Object{
		shape:      shape.NewRoot(proto),
		elements:   newElements(),
		extensible: true,
		kind:       KindArray,
		methods:    &arrayMethods,
		atoms:      atoms,
		ext:        &arrayExt{},
	}
	return o
}

// Length returns the array's current `length` value.
func (o *Object) Length() uint32 {
	if ext, ok := o.ext.(*arrayExt); ok {
		return ext.length
	}
	return 0
}

func isLengthKey(atoms *atom.Interner, key value.PropertyKey) bool {
	if key.Kind() != value.KeyString || atoms == nil {
		return false
	}
	return atoms.Resolve(key.Atom()) == "length"
}

func arrayGetOwnProperty(o *Object, key value.PropertyKey) (Descriptor, bool) {
	if key.Kind() == value.KeyIndex {
		v, ok := o.elements.get(key.Index())
		if !ok {
			return Descriptor{}, false
		}
		return DataDescriptor(v, true, true, true), true
	}
	if isLengthKey(o.atoms, key) {
		return DataDescriptor(value.Number(float64(o.Length())), true, false, false), true
	}
	return OrdinaryGetOwnProperty(o, key)
}

func arrayGet(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	if key.Kind() == value.KeyIndex {
		if v, ok := o.elements.get(key.Index()); ok {
			return v, nil
		}
		return value.Undefined, nil
	}
	if isLengthKey(o.atoms, key) {
		return value.Number(float64(o.Length())), nil
	}
	return OrdinaryGet(o, key, receiver)
}

func arrayHasProperty(o *Object, key value.PropertyKey) (bool, error) {
	if key.Kind() == value.KeyIndex {
		_, ok := o.elements.get(key.Index())
		return ok, nil
	}
	if isLengthKey(o.atoms, key) {
		return true, nil
	}
	return OrdinaryHasProperty(o, key)
}

func arraySet(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) (bool, error) {
	if key.Kind() == value.KeyIndex {
		if !receiver.IsObject() || receiver.AsObject().(*Object) != o {
			return createDataPropertyOnReceiver(receiver, key, v)
		}
		o.elements.set(key.Index(), v)
		ext := o.ext.(*arrayExt)
		if key.Index()+1 > ext.length {
			ext.length = key.Index() + 1
		}
		return true, nil
	}
	if isLengthKey(o.atoms, key) {
		n, err := value.ToIndex(v)
		if err != nil || n < 0 {
			return false, newRangeError("invalid array length")
		}
		o.setLength(uint32(n))
		return true, nil
	}
	return OrdinarySet(o, key, v, receiver)
}

func (o *Object) setLength(newLen uint32) {
	ext := o.ext.(*arrayExt)
	if newLen < ext.length {
		for i := newLen; i < ext.length; i++ {
			o.elements.delete(i)
		}
	}
	ext.length = newLen
}

func arrayDefineOwnProperty(o *Object, key value.PropertyKey, desc Descriptor) (bool, error) {
	if key.Kind() == value.KeyIndex {
		if desc.HasValue {
			ok, err := arraySet(o, key, desc.Value, value.Object(o))
			return ok, err
		}
		return true, nil
	}
	if isLengthKey(o.atoms, key) {
		if !desc.HasValue {
			return true, nil
		}
		ok, err := arraySet(o, key, desc.Value, value.Object(o))
		return ok, err
	}
	return OrdinaryDefineOwnProperty(o, key, desc)
}

func arrayDelete(o *Object, key value.PropertyKey) (bool, error) {
	if key.Kind() == value.KeyIndex {
		o.elements.delete(key.Index())
		return true, nil
	}
	return OrdinaryDelete(o, key)
}

func arrayOwnPropertyKeys(o *Object) []value.PropertyKey {
	var indices []value.PropertyKey
	ext := o.ext.(*arrayExt)
	for i := uint32(0); i < ext.length; i++ {
		if _, ok := o.elements.get(i); ok {
			indices = append(indices, value.IndexKey(i))
		}
	}
	rest := OrdinaryOwnPropertyKeys(o)
	out := make([]value.PropertyKey, 0, len(indices)+len(rest)+1)
	out = append(out, indices...)
	out = append(out, rest...)
	if o.atoms != nil {
		lengthKey, err := value.ToPropertyKeyInterned(value.String("length"), o.atoms)
		if err == nil {
			out = append(out, lengthKey)
		}
	}
	return out
}

func newRangeError(msg string) error { return &simpleError{kind: "RangeError", msg: msg} }
