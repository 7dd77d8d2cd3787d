// Package slab implements the boot-time slab allocator: one contiguous
// storage range split into equally sized slabs and a trailing occupancy
// bitmap.
//
// # Storage Layout
//
//	base                                  bitmap             base+size
//	│ slab 0 │ slab 1 │ ... │ slab N-1 │ … │ b0 b1 ... bK-1 │
//
// The bitmap holds ceil(size/slabSize/8) bytes. It is carved from the end of
// the storage, so the usable buffer, and therefore the capacity N, is what
// remains in front of it. Bit i%8 of byte i/8 tracks slab i: 0 is free, 1 is
// used. Bits past N exist only because the bitmap is byte-granular; they are
// set at construction and never cleared.
//
// # Allocation
//
// The allocator is exact-size only. Allocate fails with alloc.ErrAlloc for
// any layout other than the one it was built with, even when slabs are free.
// Otherwise it scans the bitmap byte by byte and takes the lowest zero bit of
// the first byte that has one, so slabs are handed out in ascending address
// order.
//
// Deallocate clears the slab's bit and zeroes its bytes. Freeing a pointer
// outside the buffer, a misaligned pointer, a free slab or a foreign layout
// panics with an error wrapping alloc.ErrInvariant.
//
// # Ownership
//
// An Allocator is single-owner. It is not safe for concurrent use and must
// not be copied; callers serialize access by holding the only pointer.
package slab
