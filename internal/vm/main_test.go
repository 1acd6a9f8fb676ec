package vm_test

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain guards this package's own "single-threaded mutator, no parked
// goroutines" invariant (see vm.go's VM doc comment): generator/async
// suspension is implemented as explicit frame capture, never a parked
// goroutine, so a leak here would mean that invariant had quietly broken.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
