package vm

import (
	"unicode/utf16"

	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

// toKey implements the computed-key half of OpGetPropValue/OpSetPropValue/
// OpDeletePropVal/OpDefinePropVal: ToPropertyKey plus the canonical-index
// recognition and atom interning internal/object's shape tables expect.
func (vm *VM) toKey(v value.Value) value.PropertyKey {
	k, err := value.ToPropertyKeyInterned(v, vm.realm.Atoms)
	if err != nil {
		vm.goError(err)
		return value.PropertyKey{}
	}
	return k
}

func (vm *VM) asObject(v value.Value) *object.Object {
	o, ok := v.AsObject().(*object.Object)
	if !ok {
		vm.throwNew(diag.KindType, "value is not a recognized object")
		return nil
	}
	return o
}

// getProp implements OpGetProp/OpGetPropValue. null/undefined always
// throw (there's nothing to read a property from); a string gets the
// minimal "length" and indexed-character treatment real code actually
// exercises, since no String.prototype object exists in this core (see
// DESIGN.md); every other primitive simply has no own properties.
func (vm *VM) getProp(base value.Value, key value.PropertyKey) value.Value {
	if base.IsNullish() {
		vm.throwNew(diag.KindType, "cannot read properties of %s", value.ToStringValue(base))
		return value.Undefined
	}
	if base.IsString() {
		return vm.stringProp(base.AsString(), key)
	}
	if !base.IsObject() {
		return value.Undefined
	}
	o := vm.asObject(base)
	if o == nil {
		return value.Undefined
	}
	v, err := o.Get(key, base)
	if err != nil {
		vm.goError(err)
		return value.Undefined
	}
	return v
}

func (vm *VM) stringProp(s string, key value.PropertyKey) value.Value {
	units := utf16.Encode([]rune(s))
	if key.Kind() == value.KeyIndex {
		i := key.Index()
		if i < uint32(len(units)) {
			return value.String(string(utf16.Decode(units[i : i+1])))
		}
		return value.Undefined
	}
	if key.Kind() == value.KeyString && vm.realm.Atoms.Resolve(key.Atom()) == "length" {
		return value.Number(float64(len(units)))
	}
	return value.Undefined
}

// setProp implements OpSetProp/OpSetPropValue. Assigning onto a
// null/undefined base is a TypeError; assigning onto any other
// primitive is simply discarded (ordinary [[Set]] on a boxed primitive
// never actually mutates the primitive itself).
func (vm *VM) setProp(base value.Value, key value.PropertyKey, v value.Value) {
	if base.IsNullish() {
		vm.throwNew(diag.KindType, "cannot set properties of %s", value.ToStringValue(base))
		return
	}
	if !base.IsObject() {
		return
	}
	o := vm.asObject(base)
	if o == nil {
		return
	}
	if _, err := o.Set(key, v, base); err != nil {
		vm.goError(err)
	}
}

// deleteProp implements OpDeleteProp/OpDeletePropVal.
func (vm *VM) deleteProp(base value.Value, key value.PropertyKey) bool {
	if !base.IsObject() {
		return true
	}
	o := vm.asObject(base)
	if o == nil {
		return false
	}
	ok, err := o.Delete(key)
	if err != nil {
		vm.goError(err)
		return false
	}
	return ok
}
