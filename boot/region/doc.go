// Package region implements the physical region allocator: the first
// allocator the boot loader builds, directly on top of the firmware memory
// map.
//
// # Overview
//
// The allocator keeps a singly linked list of regions, each one contiguous
// span of usable physical memory, ordered by address. Regions never overlap
// and are never contiguous: a range that touches an existing region is merged
// into it on insertion.
//
//	[pre][Region header][Block header][cell][cell]...[cell][post]
//	     ^ RegionAlign   ^ first free block
//
// Each region starts with a header (format.RegionHeaderSize bytes) aligned
// to format.RegionAlign. Unaligned bytes skipped before the header are its
// pre size; trailing bytes too small to form a cell are its post size. Both
// are always smaller than one cell.
//
// The header is followed by blocks. A block header is exactly one cell and
// counts the cells that follow it. A fresh region has one free block covering
// every cell, and all cells are zeroed.
//
// # Construction
//
//	a, err := region.New(mem, []alloc.Range{
//	    {Addr: 0x100000, Size: 0x7ee0000},
//	    {Addr: 0x8000000, Size: 0x100000},
//	})
//	if err != nil {
//	    return err // ErrNoRegions, ErrOverlappingRegion, or a *RegionError
//	}
//
// Entries may arrive in any order. The first invalid entry aborts the whole
// construction.
//
// # Allocation
//
// Allocation is whole-block: a request takes an entire free block whose
// cells can hold the layout at its alignment. Blocks are never split, so each
// region holds exactly one block and serves one allocation at a time. This is
// enough to reserve the buffer a slab allocator is then built over.
//
// # Corruption detection
//
// Every block header carries a status tag (format.StatusFree or
// format.StatusUsed). Each read validates it; any other value panics with
// ErrCorruptBlock because the memory was overwritten by something that does
// not own it.
package region
