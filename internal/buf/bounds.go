// Package buf contains overflow-checked address arithmetic.
package buf

import "fmt"

// AddAddr adds n bytes to addr, returning ok = false when the result would
// wrap past the end of the address space.
func AddAddr(addr, n uintptr) (uintptr, bool) {
	if addr > ^uintptr(0)-n {
		return 0, false
	}
	return addr + n, true
}

// MulAddr multiplies a count by an element size, returning ok = false on overflow.
// Used to size slab storage and memory map entries given in pages.
func MulAddr(count, size uintptr) (uintptr, bool) {
	if count == 0 || size == 0 {
		return 0, true
	}
	if count > ^uintptr(0)/size {
		return 0, false
	}
	return count * size, true
}

// IsPowerOfTwo reports whether n is a non-zero power of two.
func IsPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// AlignUp rounds addr up to the next multiple of align, which must be a power of two.
// ok is false when rounding would wrap past the end of the address space.
//
// Example:
//
//	AlignUp(0x1001, 0x20) = 0x1020
//	AlignUp(0x1020, 0x20) = 0x1020
func AlignUp(addr, align uintptr) (uintptr, bool) {
	mask := align - 1
	sum, ok := AddAddr(addr, mask)
	if !ok {
		return 0, false
	}
	return sum &^ mask, true
}

// IsAligned reports whether addr is a multiple of align (a power of two).
func IsAligned(addr, align uintptr) bool {
	return addr&(align-1) == 0
}

// CheckRange validates that [addr, addr+n) lies within [base, base+length).
// Returns the offset of addr relative to base, or an error describing the
// specific failure (overflow or out of bounds).
//
//	off, err := buf.CheckRange(m.base, uintptr(len(m.data)), addr, n)
//	if err != nil {
//	    return fmt.Errorf("physmem: %w", err)
//	}
func CheckRange(base, length, addr, n uintptr) (uintptr, error) {
	end, ok := AddAddr(addr, n)
	if !ok {
		return 0, fmt.Errorf("overflow: addr=%#x + size=%#x", addr, n)
	}
	limit, ok := AddAddr(base, length)
	if !ok {
		return 0, fmt.Errorf("overflow: base=%#x + len=%#x", base, length)
	}
	if addr < base || end > limit {
		return 0, fmt.Errorf("bounds: [%#x, %#x) outside [%#x, %#x)", addr, end, base, limit)
	}
	return addr - base, nil
}
