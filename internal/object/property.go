package object

import (
	"esprit/internal/shape"
	"esprit/internal/value"
)

// Descriptor is the "full" property descriptor form: a data descriptor
// (Value + Writable) or an accessor descriptor (Get + Set), plus the two
// common bits Enumerable and Configurable. Each Has* flag tracks whether
// the caller specified that field at all, matching the partial-descriptor
// semantics Object.defineProperty relies on.
type Descriptor struct {
	Value value.Value
	Get   value.Value
	Set   value.Value

	Writable     bool
	Enumerable   bool
	Configurable bool

	HasValue        bool
	HasWritable      bool
	HasGet          bool
	HasSet          bool
	HasEnumerable   bool
	HasConfigurable bool
}

// IsAccessor reports whether desc describes a getter/setter pair rather
// than a data property.
func (d Descriptor) IsAccessor() bool { return d.HasGet || d.HasSet }

// DataDescriptor builds a complete data-property descriptor.
func DataDescriptor(v value.Value, writable, enumerable, configurable bool) Descriptor {
	return Descriptor{
		Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable,
		HasValue: true, HasWritable: true, HasEnumerable: true, HasConfigurable: true,
	}
}

// AccessorDescriptor builds a complete accessor-property descriptor.
func AccessorDescriptor(get, set value.Value, enumerable, configurable bool) Descriptor {
	return Descriptor{
		Get: get, Set: set, Enumerable: enumerable, Configurable: configurable,
		HasGet: true, HasSet: true, HasEnumerable: true, HasConfigurable: true,
	}
}

func descriptorFromSlot(o *Object, slot shape.Slot) Descriptor {
	if slot.Attrs&shape.Accessor != 0 {
		pair := o.GetSlot(slot.Index)
		get, set := value.Undefined, value.Undefined
		if ap, ok := accessorPairOf(pair); ok {
			get, set = ap.get, ap.set
		}
		return Descriptor{
			Get: get, Set: set,
			Enumerable:   slot.Attrs&shape.Enumerable != 0,
			Configurable: slot.Attrs&shape.Configurable != 0,
			HasGet:       true, HasSet: true, HasEnumerable: true, HasConfigurable: true,
		}
	}
	return Descriptor{
		Value:        o.GetSlot(slot.Index),
		Writable:     slot.Attrs&shape.Writable != 0,
		Enumerable:   slot.Attrs&shape.Enumerable != 0,
		Configurable: slot.Attrs&shape.Configurable != 0,
		HasValue: true, HasWritable: true, HasEnumerable: true, HasConfigurable: true,
	}
}

// accessorPair is the payload stored in an accessor slot.
type accessorPair struct {
	get, set value.Value
}

func accessorPairOf(v value.Value) (accessorPair, bool) {
	box, ok := v.AsObject().(*accessorBox)
	if !ok {
		return accessorPair{}, false
	}
	return box.pair, true
}

// accessorBox wraps an accessorPair so it can travel through a
// value.Value slot without value.HeapRef growing an accessor-specific
// method; the box is never exposed to script.
type accessorBox struct {
	pair accessorPair
}

func (b *accessorBox) TypeOfTag() string { return "object" }

func newAccessorSlotValue(get, set value.Value) value.Value {
	return value.Object(&accessorBox{pair: accessorPair{get: get, set: set}})
}

func attrsFromDescriptor(d Descriptor, fallback shape.AttributeBits) shape.AttributeBits {
	writable := fallback&shape.Writable != 0
	enumerable := fallback&shape.Enumerable != 0
	configurable := fallback&shape.Configurable != 0
	accessor := fallback&shape.Accessor != 0
	if d.HasWritable {
		writable = d.Writable
	}
	if d.HasEnumerable {
		enumerable = d.Enumerable
	}
	if d.HasConfigurable {
		configurable = d.Configurable
	}
	if d.IsAccessor() {
		accessor = true
	} else if d.HasValue || d.HasWritable {
		accessor = false
	}
	var a shape.AttributeBits
	if writable {
		a |= shape.Writable
	}
	if enumerable {
		a |= shape.Enumerable
	}
	if configurable {
		a |= shape.Configurable
	}
	if accessor {
		a |= shape.Accessor
	}
	return a
}
