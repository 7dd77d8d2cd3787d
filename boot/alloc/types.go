package alloc

import (
	"fmt"
	"unsafe"

	"github.com/raccog/caliga-bootloader/internal/buf"
)

// Layout describes an allocation request: a size in bytes and an alignment.
// Two layouts are equal iff both fields match.
type Layout struct {
	size  uintptr
	align uintptr
}

// NewLayout validates and returns a layout. align must be a power of two and
// size must be non-zero.
func NewLayout(size, align uintptr) (Layout, error) {
	if size == 0 {
		return Layout{}, fmt.Errorf("%w: zero size", ErrInvalidLayout)
	}
	if !buf.IsPowerOfTwo(align) {
		return Layout{}, fmt.Errorf("%w: align %d is not a power of two", ErrInvalidLayout, align)
	}
	return Layout{size: size, align: align}, nil
}

// MustLayout is like NewLayout but panics on an invalid layout. For
// package-level layouts built from constants.
func MustLayout(size, align uintptr) Layout {
	l, err := NewLayout(size, align)
	if err != nil {
		panic(err)
	}
	return l
}

// LayoutOf returns the layout of a value of type T.
func LayoutOf[T any]() Layout {
	var v T
	size := unsafe.Sizeof(v)
	if size == 0 {
		size = 1
	}
	return Layout{size: size, align: unsafe.Alignof(v)}
}

// Size returns the requested size in bytes.
func (l Layout) Size() uintptr { return l.size }

// Align returns the requested alignment in bytes.
func (l Layout) Align() uintptr { return l.align }

func (l Layout) String() string {
	return fmt.Sprintf("size=%#x align=%#x", l.size, l.align)
}

// Range is one (start, length) pair of a firmware memory map.
type Range struct {
	Addr uintptr
	Size uintptr
}

// End returns the first address past r. ok is false when r wraps past the
// end of the address space.
func (r Range) End() (uintptr, bool) {
	return buf.AddAddr(r.Addr, r.Size)
}

func (r Range) String() string {
	return fmt.Sprintf("[%#x, +%#x)", r.Addr, r.Size)
}

// Memory is a byte-addressable view of physical memory.
type Memory interface {
	// Contains reports whether [addr, addr+n) is backed.
	Contains(addr, n uintptr) bool

	// Bytes returns the live bytes backing [addr, addr+n). Callers check
	// Contains first; an unbacked range panics.
	Bytes(addr, n uintptr) []byte
}
