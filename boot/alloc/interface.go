package alloc

// Allocator is the allocation capability shared by the boot-time allocators.
//
// Implementations:
//   - region.Allocator: whole-block allocation out of firmware memory regions
//   - slab.Allocator: fixed-layout slabs out of a single buffer
//
// Memory returned by Allocate is zeroed, and is zeroed again by Deallocate.
// Bytes written in between are preserved verbatim.
type Allocator interface {
	// Allocate returns the address and live bytes of a new allocation
	// satisfying l. len(b) >= l.Size() and addr is aligned to l.Align().
	// Failures wrap ErrAlloc.
	Allocate(l Layout) (addr uintptr, b []byte, err error)

	// Deallocate releases an allocation made with the same layout.
	// Passing an address this allocator did not hand out, or a different
	// layout, panics with an error wrapping ErrInvariant.
	Deallocate(addr uintptr, l Layout)
}
