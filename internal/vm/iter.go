package vm

import (
	"strconv"

	"esprit/internal/atom"
	"esprit/internal/diag"
	"esprit/internal/object"
	"esprit/internal/value"
)

// forInCursor walks the enumerable string-keyed properties of an object
// and its prototype chain, deduplicated by name — an approximation of
// for-in's real [[OwnPropertyKeys]]/[[GetPrototypeOf]] walk, adequate
// for this core's own-property-table object model (no Proxy exotic
// behavior to account for). Not heap.Allocate'd: it only ever lives on
// a call frame's operand stack, which CollectGarbage already walks
// directly as a root (see vm.go), and Trace keeps its source object
// alive for as long as the cursor itself is reachable.
type forInCursor struct {
	keys   []value.PropertyKey
	idx    int
	atoms  *atom.Interner
	source *object.Object
}

func (c *forInCursor) TypeOfTag() string             { return "object" }
func (c *forInCursor) Trace(visit func(value.Value)) { visit(value.Object(c.source)) }

func newForInCursor(o *object.Object, atoms *atom.Interner) *forInCursor {
	seen := map[string]bool{}
	var keys []value.PropertyKey
	for cur := o; cur != nil; {
		for _, k := range cur.OwnPropertyKeys() {
			if k.Kind() == value.KeySymbol {
				continue
			}
			desc, ok := cur.GetOwnProperty(k)
			if !ok || !desc.Enumerable {
				continue
			}
			name := keyText(k, atoms)
			if seen[name] {
				continue
			}
			seen[name] = true
			keys = append(keys, k)
		}
		protoVal := cur.GetPrototypeOf()
		if !protoVal.IsObject() {
			break
		}
		next, ok := protoVal.AsObject().(*object.Object)
		if !ok {
			break
		}
		cur = next
	}
	return &forInCursor{keys: keys, atoms: atoms, source: o}
}

func keyText(k value.PropertyKey, atoms *atom.Interner) string {
	switch k.Kind() {
	case value.KeyString:
		return atoms.Resolve(k.Atom())
	case value.KeyIndex:
		return strconv.Itoa(int(k.Index()))
	default:
		return ""
	}
}

func (c *forInCursor) next() (value.Value, bool) {
	if c.idx >= len(c.keys) {
		return value.Value{}, false
	}
	k := c.keys[c.idx]
	c.idx++
	return value.String(keyText(k, c.atoms)), true
}

func asForInCursor(v value.Value) (*forInCursor, bool) {
	if !v.IsObject() {
		return nil, false
	}
	c, ok := v.AsObject().(*forInCursor)
	return c, ok
}

// forInNext implements OpForInNext: iterating a non-object (the common
// `for (k in null)`/`for (k in undefined)` case) simply never yields,
// matching real for-in's silent-no-op behavior there.
func (vm *VM) forInNext(f *CallFrame) bool {
	top := f.peek(0)
	cursor, ok := asForInCursor(top)
	if !ok {
		if !top.IsObject() {
			return false
		}
		o, ok := top.AsObject().(*object.Object)
		if !ok {
			return false
		}
		cursor = newForInCursor(o, vm.realm.Atoms)
		f.stack[len(f.stack)-1] = value.Object(cursor)
	}
	key, ok := cursor.next()
	if !ok {
		return false
	}
	f.push(key)
	return true
}

// forOfKind discriminates the handful of iterable shapes this core
// supports directly, in place of a full Symbol.iterator protocol (see
// opcode.go's OpForInNext/OpForOfNext doc comment).
type forOfKind int

const (
	forOfArray forOfKind = iota
	forOfString
	forOfGenerator
)

type forOfCursor struct {
	kind  forOfKind
	arr   *object.Object
	idx   uint32
	runes []rune
	gen   *object.Object
}

func (c *forOfCursor) TypeOfTag() string { return "object" }

func (c *forOfCursor) Trace(visit func(value.Value)) {
	if c.arr != nil {
		visit(value.Object(c.arr))
	}
	if c.gen != nil {
		visit(value.Object(c.gen))
	}
}

func asForOfCursor(v value.Value) (*forOfCursor, bool) {
	if !v.IsObject() {
		return nil, false
	}
	c, ok := v.AsObject().(*forOfCursor)
	return c, ok
}

// newForOfCursor builds a cursor from a raw for-of/spread/destructuring
// source: arrays and strings (by code point) are walked directly; any
// other object exposing a callable `next` method (a generator object —
// see coroutine.go) is driven through that next()/{value,done} protocol;
// everything else is not iterable.
func (vm *VM) newForOfCursor(v value.Value) *forOfCursor {
	if v.IsString() {
		return &forOfCursor{kind: forOfString, runes: []rune(v.AsString())}
	}
	if !v.IsObject() {
		vm.throwNew(diag.KindType, "%s is not iterable", value.ToStringValue(v))
		return nil
	}
	o, ok := v.AsObject().(*object.Object)
	if !ok {
		vm.throwNew(diag.KindType, "value is not iterable")
		return nil
	}
	if o.Kind() == object.KindArray {
		return &forOfCursor{kind: forOfArray, arr: o}
	}
	nextFn, err := o.Get(value.StringKey(vm.realm.Atoms.Intern("next")), v)
	if err == nil && nextFn.IsObject() {
		if fo, ok := nextFn.AsObject().(*object.Object); ok && fo.IsCallable() {
			return &forOfCursor{kind: forOfGenerator, gen: o}
		}
	}
	vm.throwNew(diag.KindType, "value is not iterable")
	return nil
}

func (vm *VM) cursorNext(c *forOfCursor) (value.Value, bool) {
	switch c.kind {
	case forOfArray:
		if c.idx >= c.arr.Length() {
			return value.Value{}, false
		}
		v, err := c.arr.Get(value.IndexKey(c.idx), value.Object(c.arr))
		if err != nil {
			vm.goError(err)
			return value.Value{}, false
		}
		c.idx++
		return v, true
	case forOfString:
		if int(c.idx) >= len(c.runes) {
			return value.Value{}, false
		}
		r := c.runes[c.idx]
		c.idx++
		return value.String(string(r)), true
	case forOfGenerator:
		next := vm.getPropSimple(c.gen, "next")
		res := vm.call(next, value.Object(c.gen), nil)
		return vm.readIterResult(res)
	default:
		return value.Value{}, false
	}
}

// readIterResult reads the {value, done} shape coroutine.go's generator
// next()/throw()/return() methods return.
func (vm *VM) readIterResult(res value.Value) (value.Value, bool) {
	o := vm.asObject(res)
	if o == nil {
		return value.Undefined, false
	}
	if value.ToBoolean(vm.getPropSimple(o, "done")) {
		return value.Value{}, false
	}
	return vm.getPropSimple(o, "value"), true
}

func (vm *VM) getPropSimple(o *object.Object, name string) value.Value {
	v, err := o.Get(value.StringKey(vm.realm.Atoms.Intern(name)), value.Object(o))
	if err != nil {
		vm.goError(err)
		return value.Undefined
	}
	return v
}

// forOfNext implements OpForOfNext.
func (vm *VM) forOfNext(f *CallFrame) bool {
	top := f.peek(0)
	cursor, ok := asForOfCursor(top)
	if !ok {
		cursor = vm.newForOfCursor(top)
		if cursor == nil {
			return false
		}
		f.stack[len(f.stack)-1] = value.Object(cursor)
	}
	v, ok := vm.cursorNext(cursor)
	if !ok {
		return false
	}
	f.push(v)
	return true
}

// drainRemaining implements OpGetIteratorItem: builds (or continues) a
// for-of cursor over v and collects every remaining value into a new
// array, backing a rest element in array-destructuring.
func (vm *VM) drainRemaining(v value.Value) value.Value {
	cursor, ok := asForOfCursor(v)
	if !ok {
		cursor = vm.newForOfCursor(v)
		if cursor == nil {
			return value.Object(vm.newArrayOf(nil))
		}
	}
	var out []value.Value
	for {
		item, ok := vm.cursorNext(cursor)
		if !ok {
			break
		}
		out = append(out, item)
	}
	return value.Object(vm.newArrayOf(out))
}

// spreadInto implements OpSpreadArray. Object spread and array spread
// share this opcode (see compileObjectExpression's comment); which
// behavior runs is decided by dst's own kind: an array destination
// drains src through the same cursor machinery for-of uses and appends
// each element, an ordinary-object destination copies src's own
// enumerable properties across by key instead.
func (vm *VM) spreadInto(dst value.Value, src value.Value) {
	dstObj := vm.asObject(dst)
	if dstObj == nil {
		return
	}
	if dstObj.Kind() == object.KindArray {
		cursor := vm.newForOfCursor(src)
		if cursor == nil {
			return
		}
		for {
			item, ok := vm.cursorNext(cursor)
			if !ok {
				break
			}
			vm.pushElement(dst, item)
		}
		return
	}
	srcObj := vm.asObject(src)
	if srcObj == nil {
		return
	}
	for _, k := range srcObj.OwnPropertyKeys() {
		if k.Kind() == value.KeySymbol {
			continue
		}
		desc, ok := srcObj.GetOwnProperty(k)
		if !ok || !desc.Enumerable {
			continue
		}
		v, err := srcObj.Get(k, src)
		if err != nil {
			vm.goError(err)
			return
		}
		vm.defineProp(dst, k, v)
	}
}
