package vm

import (
	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

// newArrayOf builds a fresh array holding elems in order, backing
// OpRestArgs and the generator/iterator "drain remainder" helpers as
// well as OpNewArray's empty case (elems == nil).
func (vm *VM) newArrayOf(elems []value.Value) *object.Object {
	arr := object.NewArray(value.Object(vm.realm.Intrinsics.ArrayPrototype), vm.realm.Atoms)
	vm.realm.Heap.Allocate(arr)
	for i, v := range elems {
		if _, err := arr.Set(value.IndexKey(uint32(i)), v, value.Object(arr)); err != nil {
			vm.goError(err)
			return arr
		}
	}
	return arr
}

// newObjectWithProto builds a plain ordinary object with an explicit
// prototype value, backing [[Construct]]'s OrdinaryCreateFromConstructor
// step (OpNewObject always uses the realm's ObjectPrototype instead).
func (vm *VM) newObjectWithProto(proto value.Value) *object.Object {
	o := object.New(proto, vm.realm.Atoms)
	vm.realm.Heap.Allocate(o)
	return o
}

// pushElement implements OpPushElement: append v at the array's current
// length, the same growth-by-assignment path a[a.length] = v takes.
func (vm *VM) pushElement(arrVal value.Value, v value.Value) {
	arr := vm.asObject(arrVal)
	if arr == nil {
		return
	}
	if _, err := arr.Set(value.IndexKey(arr.Length()), v, arrVal); err != nil {
		vm.goError(err)
	}
}

// defineProp/defineProp-by-value implement OpDefineProp/OpDefinePropVal:
// an enumerable, writable, configurable own data property, matching
// object-literal-property semantics. Class members reuse the same
// opcode (see DESIGN.md); this core does not distinguish a class
// method's non-enumerable attributes from a plain literal property's.
func (vm *VM) defineProp(objVal value.Value, key value.PropertyKey, v value.Value) {
	o := vm.asObject(objVal)
	if o == nil {
		return
	}
	if _, err := o.DefineOwnProperty(key, object.DataDescriptor(v, true, true, true)); err != nil {
		vm.goError(err)
	}
}

// defineAccessor implements OpDefineAccessor: installs fn as the getter
// (isSetter == false) or setter (isSetter == true) half of key's
// accessor pair, preserving whichever half an earlier getter/setter
// declaration for the same key already installed.
func (vm *VM) defineAccessor(objVal value.Value, key value.PropertyKey, fn value.Value, isSetter bool) {
	o := vm.asObject(objVal)
	if o == nil {
		return
	}
	get, set := value.Undefined, value.Undefined
	if existing, ok := o.GetOwnProperty(key); ok && existing.IsAccessor() {
		get, set = existing.Get, existing.Set
	}
	if isSetter {
		set = fn
	} else {
		get = fn
	}
	if _, err := o.DefineOwnProperty(key, object.AccessorDescriptor(get, set, true, true)); err != nil {
		vm.goError(err)
	}
}

// applyClassHeritage implements OpClassHeritage: wires a derived class's
// [[Prototype]] linkage in one step (constructor -> superclass,
// constructor.prototype -> superclass.prototype) rather than exposing
// [[SetPrototypeOf]] as a separately invoked primitive, since nothing
// outside class evaluation ever needs to rewire an object's prototype
// chain this way.
func (vm *VM) applyClassHeritage(ctorVal value.Value, superVal value.Value) {
	if superVal.IsNull() {
		return
	}
	superCtor := vm.asObject(superVal)
	ctor := vm.asObject(ctorVal)
	if superCtor == nil || ctor == nil {
		return
	}
	protoKey := value.StringKey(vm.realm.Atoms.Intern("prototype"))
	ctorProtoDesc, ok := ctor.GetOwnProperty(protoKey)
	if !ok {
		vm.throwNew(diag.KindType, "class constructor has no prototype property")
		return
	}
	ctorProto := vm.asObject(ctorProtoDesc.Value)
	superProtoDesc, ok := superCtor.GetOwnProperty(protoKey)
	if !ok || ctorProto == nil {
		vm.throwNew(diag.KindType, "superclass has no prototype property")
		return
	}
	ctorProto.SetPrototypeOf(superProtoDesc.Value)
	ctor.SetPrototypeOf(value.Object(superCtor))
}
