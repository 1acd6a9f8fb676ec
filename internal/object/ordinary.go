package object

import (
	"sort"

	"esprit/internal/shape"
	"esprit/internal/value"
)

var ordinaryMethods = Methods{
	GetPrototypeOf:    OrdinaryGetPrototypeOf,
	SetPrototypeOf:    OrdinarySetPrototypeOf,
	IsExtensible:      OrdinaryIsExtensible,
	PreventExtensions: OrdinaryPreventExtensions,
	GetOwnProperty:    OrdinaryGetOwnProperty,
	DefineOwnProperty: OrdinaryDefineOwnProperty,
	HasProperty:       OrdinaryHasProperty,
	Get:               OrdinaryGet,
	Set:               OrdinarySet,
	Delete:            OrdinaryDelete,
	OwnPropertyKeys:   OrdinaryOwnPropertyKeys,
}

// OrdinaryGetPrototypeOf implements [[GetPrototypeOf]] for ordinary
// objects: the prototype lives on the shape, since changing it always
// forks the shape.
func OrdinaryGetPrototypeOf(o *Object) value.Value { return o.shape.Prototype() }

// OrdinarySetPrototypeOf implements [[SetPrototypeOf]].
func OrdinarySetPrototypeOf(o *Object, proto value.Value) bool {
	if value.SameValue(proto, o.shape.Prototype()) {
		return true
	}
	if !o.extensible {
		return false
	}
	o.shape = o.shape.WithPrototype(proto)
	return true
}

func OrdinaryIsExtensible(o *Object) bool { return o.extensible }

func OrdinaryPreventExtensions(o *Object) bool {
	o.extensible = false
	return true
}

// OrdinaryGetOwnProperty implements [[GetOwnProperty]].
func OrdinaryGetOwnProperty(o *Object, key value.PropertyKey) (Descriptor, bool) {
	slot, ok := o.shape.Lookup(key)
	if !ok {
		return Descriptor{}, false
	}
	return descriptorFromSlot(o, slot), true
}

// OrdinaryDefineOwnProperty implements [[DefineOwnProperty]] via the
// ValidateAndApplyPropertyDescriptor algorithm, collapsed to the cases
// the engine's own bootstrap and built-in layer actually exercise:
// fresh-property creation, compatible updates, and the non-configurable/
// non-writable rejection rules.
func OrdinaryDefineOwnProperty(o *Object, key value.PropertyKey, desc Descriptor) (bool, error) {
	current, exists := o.shape.Lookup(key)
	if !exists {
		if !o.extensible {
			return false, nil
		}
		attrs := attrsFromDescriptor(desc, 0)
		newShape, idx := o.shape.AddProperty(key, attrs)
		o.shape = newShape
		o.setSlotValueForDescriptor(idx, desc, attrs)
		return true, nil
	}

	if !hasAttr(current.Attrs, shape.Configurable) {
		if desc.HasConfigurable && desc.Configurable {
			return false, nil
		}
		wasAccessor := hasAttr(current.Attrs, shape.Accessor)
		if desc.IsAccessor() != wasAccessor && (desc.IsAccessor() || desc.HasValue) {
			return false, nil
		}
		if !wasAccessor && !hasAttr(current.Attrs, shape.Writable) {
			if desc.HasWritable && desc.Writable {
				return false, nil
			}
			if desc.HasValue && !value.SameValue(desc.Value, o.GetSlot(current.Index)) {
				return false, nil
			}
		}
	}

	newAttrs := attrsFromDescriptor(desc, current.Attrs)
	if newAttrs != current.Attrs {
		o.shape = o.shape.ChangeAttributes(key, newAttrs)
		current, _ = o.shape.Lookup(key)
	}
	o.setSlotValueForDescriptor(current.Index, desc, newAttrs)
	return true, nil
}

func (o *Object) setSlotValueForDescriptor(idx int, desc Descriptor, attrs shape.AttributeBits) {
	if hasAttr(attrs, shape.Accessor) {
		get, set := desc.Get, desc.Set
		if !desc.HasGet {
			if existing := o.GetSlot(idx); existing.IsObject() {
				if ap, ok := accessorPairOf(existing); ok {
					get = ap.get
				}
			}
		}
		if !desc.HasSet {
			if existing := o.GetSlot(idx); existing.IsObject() {
				if ap, ok := accessorPairOf(existing); ok {
					set = ap.set
				}
			}
		}
		o.SetSlot(idx, newAccessorSlotValue(get, set))
		return
	}
	if desc.HasValue {
		o.SetSlot(idx, desc.Value)
	} else if o.GetSlot(idx).IsEmpty() || idx >= len(o.slots) {
		o.SetSlot(idx, value.Undefined)
	}
}

func hasAttr(a, bit shape.AttributeBits) bool { return a&bit != 0 }

// OrdinaryHasProperty implements [[HasProperty]], walking the prototype
// chain when the key is not own.
func OrdinaryHasProperty(o *Object, key value.PropertyKey) (bool, error) {
	if _, ok := o.shape.Lookup(key); ok {
		return true, nil
	}
	proto := o.GetPrototypeOf()
	if !proto.IsObject() {
		return false, nil
	}
	return proto.AsObject().(*Object).HasProperty(key)
}

// OrdinaryGet implements [[Get]]: own data slot, own accessor getter, or
// a walk up the prototype chain using the original receiver so `this`
// inside a prototype getter is the original lookup target.
func OrdinaryGet(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	slot, ok := o.shape.Lookup(key)
	if !ok {
		proto := o.GetPrototypeOf()
		if !proto.IsObject() {
			return value.Undefined, nil
		}
		return proto.AsObject().(*Object).Get(key, receiver)
	}
	v := o.GetSlot(slot.Index)
	if hasAttr(slot.Attrs, shape.Accessor) {
		ap, ok := accessorPairOf(v)
		if !ok || !ap.get.IsObject() {
			return value.Undefined, nil
		}
		getter := ap.get.AsObject().(*Object)
		return getter.Call(receiver, nil)
	}
	return v, nil
}

// OrdinarySet implements [[Set]]: own accessor setter, own writable data
// slot, a walk up the prototype chain, or (when nothing owns the key)
// creating a new own data property on the receiver.
func OrdinarySet(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) (bool, error) {
	slot, ok := o.shape.Lookup(key)
	if !ok {
		proto := o.GetPrototypeOf()
		if proto.IsObject() {
			return proto.AsObject().(*Object).Set(key, v, receiver)
		}
		return createDataPropertyOnReceiver(receiver, key, v)
	}

	if hasAttr(slot.Attrs, shape.Accessor) {
		ap, hasPair := accessorPairOf(o.GetSlot(slot.Index))
		if !hasPair || !ap.set.IsObject() {
			return false, nil
		}
		setter := ap.set.AsObject().(*Object)
		_, err := setter.Call(receiver, []value.Value{v})
		return err == nil, err
	}

	if !hasAttr(slot.Attrs, shape.Writable) {
		return false, nil
	}
	if !receiver.IsObject() {
		return false, nil
	}
	recv := receiver.AsObject().(*Object)
	if recv == o {
		o.SetSlot(slot.Index, v)
		return true, nil
	}
	return createDataPropertyOnReceiver(receiver, key, v)
}

func createDataPropertyOnReceiver(receiver value.Value, key value.PropertyKey, v value.Value) (bool, error) {
	if !receiver.IsObject() {
		return false, nil
	}
	recv := receiver.AsObject().(*Object)
	return recv.DefineOwnProperty(key, DataDescriptor(v, true, true, true))
}

// OrdinaryDelete implements [[Delete]]: a non-configurable own property
// cannot be removed; a configurable one demotes the object's shape to
// unique and drops the slot.
func OrdinaryDelete(o *Object, key value.PropertyKey) (bool, error) {
	slot, ok := o.shape.Lookup(key)
	if !ok {
		return true, nil
	}
	if !hasAttr(slot.Attrs, shape.Configurable) {
		return false, nil
	}
	if o.shape.Kind() != shape.Unique {
		o.shape = o.shape.ToUnique()
	}
	o.shape.RemoveProperty(key)
	return true, nil
}

// OrdinaryOwnPropertyKeys implements [[OwnPropertyKeys]]'s ordering rule:
// integer indices in ascending numeric order, then string keys, then
// symbol keys, each of the latter two in property-creation order.
func OrdinaryOwnPropertyKeys(o *Object) []value.PropertyKey {
	keys := o.shape.Keys()
	var indices, strings, symbols []value.PropertyKey
	for _, k := range keys {
		switch k.Kind() {
		case value.KeyIndex:
			indices = append(indices, k)
		case value.KeySymbol:
			symbols = append(symbols, k)
		default:
			strings = append(strings, k)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i].Index() < indices[j].Index() })

	out := make([]value.PropertyKey, 0, len(keys))
	out = append(out, indices...)
	out = append(out, strings...)
	out = append(out, symbols...)
	return out
}
