package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrAlloc indicates an allocation could not be satisfied: a layout the
	// allocator does not serve, or no free memory left.
	ErrAlloc = errors.New("alloc: allocation failed")

	// ErrInvalidLayout indicates a zero size or a non power-of-two alignment.
	ErrInvalidLayout = errors.New("alloc: invalid layout")

	// ErrInvariant marks panics raised when allocator state can no longer
	// be trusted. It is never returned.
	ErrInvariant = errors.New("alloc: invariant violated")
)

// Fault records the address and layout involved in an allocator failure.
// Allocate returns one wrapping ErrAlloc; invariant panics from Deallocate
// carry one wrapping ErrInvariant. Addr is zero when no address applies.
type Fault struct {
	Addr   uintptr
	Layout Layout
	Err    error
}

func (f *Fault) Error() string {
	if f.Addr == 0 {
		return fmt.Sprintf("%v (%v)", f.Err, f.Layout)
	}
	return fmt.Sprintf("%v (addr=%#x %v)", f.Err, f.Addr, f.Layout)
}

func (f *Fault) Unwrap() error { return f.Err }
