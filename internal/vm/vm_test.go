package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esprit/internal/compiler"
	"esprit/internal/config"
	"esprit/internal/object"
	"esprit/internal/parser"
	"esprit/internal/realm"
	"esprit/internal/value"
	"esprit/internal/vm"
)

// arrayElem reads index i out of a value known to be an array, for
// asserting on an array-shaped completion value without a script-level
// helper to index into it.
func arrayElem(t *testing.T, v value.Value, i uint32) value.Value {
	t.Helper()
	o, ok := v.AsObject().(*object.Object)
	require.True(t, ok)
	elem, err := o.Get(value.IndexKey(i), v)
	require.NoError(t, err)
	return elem
}

func eval(t *testing.T, source string) (value.Value, error) {
	t.Helper()
	r := realm.New(config.DefaultConfig().GC, nil)
	prog, err := parser.ParseScript(source, r.Atoms)
	require.NoError(t, err)
	code, err := compiler.Compile(prog, r.Atoms)
	require.NoError(t, err)
	m := vm.New(r, config.DefaultConfig().VM)
	v, runErr := m.RunProgram(code)
	m.DrainJobs()
	return v, runErr
}

// The nine try/catch/finally completion-arithmetic combinations: a
// finally block's own abrupt completion (return/throw/break) always
// overrides whatever the try or catch block was about to complete with;
// otherwise the try/catch completion passes through unchanged.
func TestTryCatchFinallyCompletionArithmetic(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   float64
		throws bool
	}{
		{
			name:   "try normal, no throw, finally normal",
			source: `(function(){ try { return 1; } finally { } })();`,
			want:   1,
		},
		{
			name:   "try throws, catch returns, finally normal",
			source: `(function(){ try { throw 1; } catch (e) { return e + 1; } finally { } })();`,
			want:   2,
		},
		{
			name:   "try throws, no catch, finally normal: throw propagates",
			source: `(function(){ try { throw 1; } finally { } })();`,
			throws: true,
		},
		{
			name:   "try returns, finally returns: finally wins",
			source: `(function(){ try { return 1; } finally { return 2; } })();`,
			want:   2,
		},
		{
			name:   "try throws, finally returns: finally swallows the throw",
			source: `(function(){ try { throw 1; } finally { return 2; } })();`,
			want:   2,
		},
		{
			name:   "try normal, catch not run, finally returns",
			source: `(function(){ try { 1; } catch (e) { return -1; } finally { return 2; } })();`,
			want:   2,
		},
		{
			name:   "loop break inside try, finally normal",
			source: `(function(){ for (;;) { try { break; } finally { } } return 7; })();`,
			want:   7,
		},
		{
			name:   "loop continue inside try, finally normal",
			source: `(function(){ let i = 0, n = 0; for (; i < 3; i++) { try { if (i === 1) continue; n++; } finally { } } return n; })();`,
			want:   2,
		},
		{
			name:   "finally throws: overrides try's own throw",
			source: `(function(){ try { try { throw 1; } finally { throw 2; } } catch (e) { return e; } })();`,
			want:   2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := eval(t, tc.source)
			if tc.throws {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, v.AsNumber())
		})
	}
}

func TestGeneratorResumeSemantics(t *testing.T) {
	v, err := eval(t, `
		function* gen() {
			const x = yield 1;
			const y = yield x + 1;
			return x + y;
		}
		const g = gen();
		const a = g.next();
		const b = g.next(10);
		const c = g.next(20);
		[a.value, a.done, b.value, b.done, c.value, c.done];
	`)
	require.NoError(t, err)
	assert.Equal(t, float64(1), arrayElem(t, v, 0).AsNumber())
	assert.False(t, value.ToBoolean(arrayElem(t, v, 1)))
	assert.Equal(t, float64(11), arrayElem(t, v, 2).AsNumber())
	assert.False(t, value.ToBoolean(arrayElem(t, v, 3)))
	assert.Equal(t, float64(30), arrayElem(t, v, 4).AsNumber())
	assert.True(t, value.ToBoolean(arrayElem(t, v, 5)))
}

func TestGeneratorThrowAfterStartIsCaughtInsideBody(t *testing.T) {
	v, err := eval(t, `
		function* gen() {
			try {
				yield 1;
				return "not reached";
			} catch (e) {
				return "caught " + e;
			}
		}
		const g = gen();
		g.next();
		g.throw("boom").value;
	`)
	require.NoError(t, err)
	assert.Equal(t, "caught boom", v.AsString())
}

func TestGeneratorReturnEndsIterationImmediately(t *testing.T) {
	v, err := eval(t, `
		function* gen() { yield 1; yield 2; }
		const g = gen();
		g.next();
		const r = g.return(99);
		[r.value, r.done, g.next().done];
	`)
	require.NoError(t, err)
	assert.Equal(t, float64(99), arrayElem(t, v, 0).AsNumber())
	assert.True(t, value.ToBoolean(arrayElem(t, v, 1)))
	assert.True(t, value.ToBoolean(arrayElem(t, v, 2)))
}

func TestAsyncCallReturnsBeforeItsBodyCompletes(t *testing.T) {
	// An async function call always synchronously returns a pending
	// promise without blocking on its own body; "result" is still
	// unobserved at the point the script's own completion value is
	// produced, since that happens before DrainJobs ever resumes the
	// suspended await chain.
	v, err := eval(t, `
		let result = 0;
		async function f() {
			const a = await 10;
			const b = await 20;
			result = a + b;
		}
		f();
		result;
	`)
	require.NoError(t, err)
	assert.Equal(t, float64(0), v.AsNumber())
}

func TestForOfOverArray(t *testing.T) {
	v, err := eval(t, `
		let sum = 0;
		for (const x of [1, 2, 3]) { sum += x; }
		sum;
	`)
	require.NoError(t, err)
	assert.Equal(t, float64(6), v.AsNumber())
}

func TestForOfOverGenerator(t *testing.T) {
	v, err := eval(t, `
		function* gen() { yield 1; yield 2; yield 3; }
		let sum = 0;
		for (const x of gen()) { sum += x; }
		sum;
	`)
	require.NoError(t, err)
	assert.Equal(t, float64(6), v.AsNumber())
}

func TestForInOverObjectAndPrototypeChain(t *testing.T) {
	v, err := eval(t, `
		function Base() {}
		Base.prototype.baseMethod = function() { return 1; };
		function Derived() {}
		Derived.prototype = new Base();
		const d = new Derived();
		d.ownProp = 5;
		let keys = [];
		let i = 0;
		for (const k in d) { keys[i] = k; i++; }
		keys.length;
	`)
	require.NoError(t, err)
	assert.Equal(t, float64(2), v.AsNumber())
}

func TestArraySpreadAndRestDestructuring(t *testing.T) {
	v, err := eval(t, `
		const [first, ...rest] = [1, 2, 3, 4];
		const combined = [...rest, first];
		combined.length;
	`)
	require.NoError(t, err)
	assert.Equal(t, float64(4), v.AsNumber())
}

func TestBigIntArithmetic(t *testing.T) {
	v, err := eval(t, `10n + 20n;`)
	require.NoError(t, err)
	assert.True(t, v.IsBigInt())
}

func TestBigIntAndNumberMixThrowsTypeError(t *testing.T) {
	_, err := eval(t, `10n + 1;`)
	assert.Error(t, err)
}

func TestUncaughtThrowReportedAsJSError(t *testing.T) {
	_, err := eval(t, `null.foo;`)
	require.Error(t, err)
	je, ok := err.(*vm.JSError)
	require.True(t, ok)
	assert.True(t, je.Value.IsObject())
}
