package slab

import (
	"fmt"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/internal/buf"
	"github.com/raccog/caliga-bootloader/internal/logger"
)

// noCopy may be embedded into structs which must not be copied after first
// use. See go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Allocator hands out fixed-layout slabs from one storage range.
type Allocator struct {
	_ noCopy

	mem    alloc.Memory
	base   uintptr
	size   uintptr
	layout alloc.Layout

	capacity  uintptr // usable slabs in the buffer
	bitmap    uintptr // address of the first bitmap byte
	bitmapLen uintptr
}

var _ alloc.Allocator = (*Allocator)(nil)

// New builds a slab allocator over [addr, addr+size) of mem. Every byte of
// the storage is zeroed.
func New(mem alloc.Memory, addr, size uintptr, layout alloc.Layout) (*Allocator, error) {
	slabSize := layout.Size()
	switch {
	case slabSize == 0 || !buf.IsPowerOfTwo(layout.Align()):
		return nil, fmt.Errorf("%w: slab layout %v", alloc.ErrInvalidLayout, layout)
	case size == 0:
		return nil, ErrInvalidSize
	case size/2 < slabSize:
		return nil, fmt.Errorf("%w: %d bytes for %v", ErrStorageTooSmall, size, layout)
	case size%slabSize != 0:
		return nil, fmt.Errorf("%w: %d bytes for %v", ErrNonDivisibleSize, size, layout)
	case !mem.Contains(addr, size):
		return nil, fmt.Errorf("%w: [%#x, +%#x)", ErrOutOfBounds, addr, size)
	case !buf.IsAligned(addr, layout.Align()):
		return nil, fmt.Errorf("%w: base %#x for %v", ErrInvalidAlignment, addr, layout)
	}

	storage := mem.Bytes(addr, size)
	clear(storage)

	bitmapLen := bitmapBytes(size / slabSize)
	bufferLen := size - bitmapLen
	a := &Allocator{
		mem:       mem,
		base:      addr,
		size:      size,
		layout:    layout,
		capacity:  bufferLen / slabSize,
		bitmap:    addr + bufferLen,
		bitmapLen: bitmapLen,
	}
	maskTail(storage[bufferLen:], a.capacity)

	logger.Debug("slab allocator ready",
		"base", addr, "size", size, "layout", layout.String(),
		"capacity", a.capacity, "bitmap_bytes", bitmapLen)
	return a, nil
}

// Capacity returns the number of slabs the allocator can hand out.
func (a *Allocator) Capacity() int { return int(a.capacity) }

// Layout returns the only layout Allocate accepts.
func (a *Allocator) Layout() alloc.Layout { return a.layout }

// InUse returns the number of slabs currently allocated.
func (a *Allocator) InUse() int {
	masked := a.bitmapLen*8 - a.capacity
	return int(ones(a.bits()) - masked)
}

// Bitmap returns a copy of the occupancy bitmap, masked bits included.
func (a *Allocator) Bitmap() []byte {
	return append([]byte(nil), a.bits()...)
}

func (a *Allocator) bits() []byte {
	return a.mem.Bytes(a.bitmap, a.bitmapLen)
}

// Allocate returns the lowest free slab. l must equal Layout().
func (a *Allocator) Allocate(l alloc.Layout) (uintptr, []byte, error) {
	if l != a.layout {
		return 0, nil, &alloc.Fault{Layout: l, Err: fmt.Errorf("slab: allocator serves %v: %w", a.layout, alloc.ErrAlloc)}
	}
	bm := a.bits()
	i, ok := firstZero(bm)
	if !ok {
		return 0, nil, &alloc.Fault{Layout: l, Err: fmt.Errorf("slab: all %d slabs in use: %w", a.capacity, alloc.ErrAlloc)}
	}
	setBit(bm, i)

	addr := a.base + i*a.layout.Size()
	logger.Trace("slab alloc", "index", i, "addr", addr)
	return addr, a.mem.Bytes(addr, a.layout.Size()), nil
}

// Deallocate returns the slab at addr and zeroes it.
func (a *Allocator) Deallocate(addr uintptr, l alloc.Layout) {
	if l != a.layout {
		a.fault(addr, l, "allocator serves %v", a.layout)
	}
	if addr < a.base || addr >= a.bitmap {
		a.fault(addr, l, "outside buffer [%#x, %#x)", a.base, a.bitmap)
	}
	off := addr - a.base
	if off%a.layout.Size() != 0 {
		a.fault(addr, l, "not at a slab boundary")
	}
	i := off / a.layout.Size()
	bm := a.bits()
	if i >= a.capacity || !testBit(bm, i) {
		a.fault(addr, l, "slab %d is not in use", i)
	}

	clearBit(bm, i)
	clear(a.mem.Bytes(addr, a.layout.Size()))
	logger.Trace("slab free", "index", i, "addr", addr)
}

func (a *Allocator) fault(addr uintptr, l alloc.Layout, format string, args ...any) {
	panic(&alloc.Fault{
		Addr:   addr,
		Layout: l,
		Err:    fmt.Errorf("slab: %w: deallocate: %s", alloc.ErrInvariant, fmt.Sprintf(format, args...)),
	})
}
