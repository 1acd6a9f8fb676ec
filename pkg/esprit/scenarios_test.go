package esprit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// scenario is one independent end-to-end check against its own freshly
// created agent — source in, expected completion out. Each runs against
// its own Context; nothing here is shared mutable state.
type scenario struct {
	name   string
	source string
	thrown bool
	want   float64
}

var endToEndScenarios = []scenario{
	{name: "arithmetic", source: "2 * (3 + 4);", want: 14},
	{name: "closures capture by reference", source: `
		function counter() {
			let n = 0;
			return function() { n += 1; return n; };
		}
		const c = counter();
		c(); c(); c();
	`, want: 3},
	{name: "recursion", source: `
		function fib(n) { return n < 2 ? n : fib(n - 1) + fib(n - 2); }
		fib(10);
	`, want: 55},
	{name: "try finally does not swallow a caught value", source: `
		function f() {
			try {
				throw 5;
			} catch (e) {
				return e * 2;
			} finally {
				// no abrupt completion here; try/catch's own value wins
			}
		}
		f();
	`, want: 10},
	{name: "generator drives a for-of sum", source: `
		function* range(n) { for (let i = 0; i < n; i++) { yield i; } }
		let sum = 0;
		for (const x of range(5)) { sum += x; }
		sum;
	`, want: 10},
	{name: "uncaught throw is a thrown completion, not a Go error", source: `
		throw 42;
	`, thrown: true},
}

// TestEndToEndScenarios runs every scenario (spec.md §8's Testable
// Properties A-F shape, one evaluate() per independent agent) fanned out
// concurrently with errgroup.Group: each scenario owns its own realm and
// VM, so nothing but the assertion goroutine's own bookkeeping is shared,
// matching the engine's own single-threaded-per-realm concurrency model
// (see SPEC_FULL.md's domain-stack entry for errgroup) — this only
// parallelizes *across* independent realms, never inside one.
func TestEndToEndScenarios(t *testing.T) {
	var g errgroup.Group
	results := make([]Completion, len(endToEndScenarios))

	for i, sc := range endToEndScenarios {
		i, sc := i, sc
		g.Go(func() error {
			ctx := CreateAgent(nil)
			script, err := ParseScript(sc.source, ctx)
			if err != nil {
				return err
			}
			c, err := Evaluate(script, ctx)
			if err != nil {
				return err
			}
			DrainJobs(ctx)
			results[i] = c
			return nil
		})
	}

	require.NoError(t, g.Wait())

	for i, sc := range endToEndScenarios {
		t.Run(sc.name, func(t *testing.T) {
			c := results[i]
			if sc.thrown {
				assert.True(t, c.Thrown)
				return
			}
			require.False(t, c.Thrown)
			assert.Equal(t, sc.want, c.Value.AsNumber())
		})
	}
}
