package region

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/internal/physmem"
)

// testBase is the physical address of the first byte of test memory.
const testBase = 0x10000

// newMem returns size bytes of physical memory at testBase, filled with a
// non-zero pattern so that zeroing is observable.
func newMem(t testing.TB, size int) (*physmem.Memory, []byte) {
	t.Helper()
	backing := make([]byte, size)
	for i := range backing {
		backing[i] = 0xA5
	}
	return physmem.FromBytes(testBase, backing), backing
}

func rng(addr, size uintptr) alloc.Range {
	return alloc.Range{Addr: addr, Size: size}
}

func mustLayout(t testing.TB, size, align uintptr) alloc.Layout {
	t.Helper()
	l, err := alloc.NewLayout(size, align)
	require.NoError(t, err)
	return l
}

// requirePanicsWith runs fn and requires it to panic with an error matching target.
func requirePanicsWith(t testing.TB, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, target)
	}()
	fn()
}

func requireZero(t testing.TB, b []byte) {
	t.Helper()
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, v)
		}
	}
}
