package object

import (
	"testing"

	"esprit/internal/atom"
	"esprit/internal/shape"
	"esprit/internal/value"
)

func strKey(t *testing.T, in *atom.Interner, s string) value.PropertyKey {
	t.Helper()
	k, err := value.ToPropertyKeyInterned(value.String(s), in)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestDefineAndGetOwnProperty(t *testing.T) {
	in := atom.New()
	o := New(value.Null, in)
	k := strKey(t, in, "x")

	ok, err := o.DefineOwnProperty(k, DataDescriptor(value.Number(42), true, true, true))
	if !ok || err != nil {
		t.Fatalf("DefineOwnProperty failed: ok=%v err=%v", ok, err)
	}
	got, err := o.Get(k, value.Object(o))
	if err != nil || got.AsNumber() != 42 {
		t.Fatalf("Get = %v, %v, want 42", got, err)
	}
}

func TestPrototypeChainGet(t *testing.T) {
	in := atom.New()
	proto := New(value.Null, in)
	kGreeting := strKey(t, in, "greeting")
	proto.DefineOwnProperty(kGreeting, DataDescriptor(value.String("hi"), true, true, true))

	child := New(value.Object(proto), in)
	got, err := child.Get(kGreeting, value.Object(child))
	if err != nil || got.AsString() != "hi" {
		t.Fatalf("inherited Get = %v, %v, want hi", got, err)
	}
}

func TestNonWritablePropertyRejectsSet(t *testing.T) {
	in := atom.New()
	o := New(value.Null, in)
	k := strKey(t, in, "frozen")
	o.DefineOwnProperty(k, DataDescriptor(value.Number(1), false, true, true))

	ok, err := o.Set(k, value.Number(2), value.Object(o))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("Set on a non-writable property should fail")
	}
	got, _ := o.Get(k, value.Object(o))
	if got.AsNumber() != 1 {
		t.Fatalf("value should remain 1, got %v", got.AsNumber())
	}
}

func TestNonConfigurableDeleteRejected(t *testing.T) {
	in := atom.New()
	o := New(value.Null, in)
	k := strKey(t, in, "perm")
	o.DefineOwnProperty(k, DataDescriptor(value.Number(1), true, true, false))

	ok, err := o.Delete(k)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("deleting a non-configurable property should fail")
	}
}

func TestConfigurableDeleteDemotesShape(t *testing.T) {
	in := atom.New()
	o := New(value.Null, in)
	k := strKey(t, in, "temp")
	o.DefineOwnProperty(k, DataDescriptor(value.Number(1), true, true, true))

	ok, err := o.Delete(k)
	if !ok || err != nil {
		t.Fatalf("delete should succeed: ok=%v err=%v", ok, err)
	}
	if _, found := o.GetOwnProperty(k); found {
		t.Fatalf("deleted property should no longer be own")
	}
	if o.Shape().Kind() != shape.Unique {
		t.Fatalf("delete should demote the shape to unique, got kind %v", o.Shape().Kind())
	}
}

func TestAccessorProperty(t *testing.T) {
	in := atom.New()
	o := New(value.Null, in)
	kBacking := strKey(t, in, "_v")
	o.DefineOwnProperty(kBacking, DataDescriptor(value.Number(10), true, true, true))

	getter := NewNativeFunction(value.Null, in, "get v", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return this.AsObject().(*Object).Get(kBacking, this)
	})
	setter := NewNativeFunction(value.Null, in, "set v", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		_, err := this.AsObject().(*Object).Set(kBacking, args[0], this)
		return value.Undefined, err
	})
	kV := strKey(t, in, "v")
	o.DefineOwnProperty(kV, AccessorDescriptor(value.Object(getter), value.Object(setter), true, true))

	got, err := o.Get(kV, value.Object(o))
	if err != nil || got.AsNumber() != 10 {
		t.Fatalf("accessor get = %v, %v, want 10", got, err)
	}
	if _, err := o.Set(kV, value.Number(99), value.Object(o)); err != nil {
		t.Fatal(err)
	}
	got, _ = o.Get(kBacking, value.Object(o))
	if got.AsNumber() != 99 {
		t.Fatalf("accessor set should have updated backing slot to 99, got %v", got.AsNumber())
	}
}

func TestArrayLengthTracksElements(t *testing.T) {
	in := atom.New()
	arr := NewArray(value.Null, in)
	idx0 := value.IndexKey(0)
	idx5 := value.IndexKey(5)

	if _, err := arr.Set(idx0, value.String("a"), value.Object(arr)); err != nil {
		t.Fatal(err)
	}
	if arr.Length() != 1 {
		t.Fatalf("length after setting index 0 = %d, want 1", arr.Length())
	}
	if _, err := arr.Set(idx5, value.String("f"), value.Object(arr)); err != nil {
		t.Fatal(err)
	}
	if arr.Length() != 6 {
		t.Fatalf("length after setting index 5 = %d, want 6", arr.Length())
	}

	kLength := strKey(t, in, "length")
	if _, err := arr.Set(kLength, value.Number(2), value.Object(arr)); err != nil {
		t.Fatal(err)
	}
	if arr.Length() != 2 {
		t.Fatalf("shrinking length should update Length(), got %d", arr.Length())
	}
	if _, ok := arr.elements.get(5); ok {
		t.Fatalf("shrinking length should drop elements beyond the new length")
	}
}

func TestNativeFunctionCallAndBind(t *testing.T) {
	in := atom.New()
	add := NewNativeFunction(value.Null, in, "add", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(args[0].AsNumber() + args[1].AsNumber()), nil
	})
	if !add.IsCallable() {
		t.Fatalf("native function should be callable")
	}
	got, err := add.Call(value.Undefined, []value.Value{value.Number(2), value.Number(3)})
	if err != nil || got.AsNumber() != 5 {
		t.Fatalf("add(2,3) = %v, %v, want 5", got, err)
	}

	bound := Bind(add, in, value.Undefined, []value.Value{value.Number(10)}, value.Null)
	got, err = bound.Call(value.Undefined, []value.Value{value.Number(5)})
	if err != nil || got.AsNumber() != 15 {
		t.Fatalf("bound(5) = %v, %v, want 15", got, err)
	}
}

func TestNonCallableCallErrors(t *testing.T) {
	in := atom.New()
	o := New(value.Null, in)
	if o.IsCallable() {
		t.Fatalf("ordinary object should not be callable")
	}
	if _, err := o.Call(value.Undefined, nil); err == nil {
		t.Fatalf("calling a non-callable object should error")
	}
}

func TestOwnPropertyKeysOrdering(t *testing.T) {
	in := atom.New()
	o := New(value.Null, in)
	o.DefineOwnProperty(strKey(t, in, "b"), DataDescriptor(value.Number(1), true, true, true))
	o.DefineOwnProperty(value.IndexKey(2), DataDescriptor(value.Number(1), true, true, true))
	o.DefineOwnProperty(strKey(t, in, "a"), DataDescriptor(value.Number(1), true, true, true))
	o.DefineOwnProperty(value.IndexKey(0), DataDescriptor(value.Number(1), true, true, true))

	keys := o.OwnPropertyKeys()
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys, got %d", len(keys))
	}
	if keys[0].Kind() != value.KeyIndex || keys[0].Index() != 0 {
		t.Fatalf("integer indices must sort first, ascending; got %v", keys[0])
	}
	if keys[1].Kind() != value.KeyIndex || keys[1].Index() != 2 {
		t.Fatalf("integer indices must sort ascending; got %v", keys[1])
	}
	if keys[2].Kind() != value.KeyString {
		t.Fatalf("string keys should follow indices in creation order")
	}
}
