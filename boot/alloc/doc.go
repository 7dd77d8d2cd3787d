// Package alloc defines the vocabulary shared by the boot-time allocators.
//
// # Overview
//
// Before a general-purpose heap exists, the boot loader has two allocators:
//
//   - region.Allocator: tracks large spans of usable physical memory reported
//     by firmware, ordered by address and merged when contiguous.
//   - slab.Allocator: partitions one buffer into equally sized slabs tracked by
//     a bitmap.
//
// Both implement the Allocator interface, so code that builds boxed values
// and tables during boot does not care which one it was handed.
//
// # Layouts
//
// Every request carries a Layout: a size and a power-of-two alignment.
// Allocators only hand out memory satisfying both:
//
//	l, err := alloc.NewLayout(64, 8)
//	if err != nil {
//	    return err
//	}
//	addr, b, err := a.Allocate(l)
//	if err != nil {
//	    return err // wraps alloc.ErrAlloc
//	}
//	copy(b, record)
//	...
//	a.Deallocate(addr, l)
//
// # Memory
//
// Allocator headers live inside the memory they manage. Memory abstracts the
// physical address space: addresses are identities, and Bytes returns the
// live backing bytes for a physical range.
//
// # Errors and invariants
//
// Input validation, placement conflicts and exhaustion are returned as
// errors. Invariant violations (a foreign pointer passed to Deallocate, a
// layout mismatch, a corrupted header) panic with an error wrapping
// ErrInvariant; the allocator's state can no longer be trusted and the boot
// sequence halts.
//
// # Thread Safety
//
// Allocators are single-owner values. They are not safe for concurrent use
// and must not be copied after first use.
package alloc
