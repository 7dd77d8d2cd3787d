package slab

import "math/bits"

// bitmapBytes is the bitmap size for storage holding count slab-sized units.
func bitmapBytes(count uintptr) uintptr {
	return (count + 7) / 8
}

// maskTail marks every bit at or past capacity as permanently used.
func maskTail(bm []byte, capacity uintptr) {
	start := capacity / 8
	if rem := capacity % 8; rem != 0 {
		bm[start] = 0xFF << rem
		start++
	}
	for i := start; i < uintptr(len(bm)); i++ {
		bm[i] = 0xFF
	}
}

// firstZero returns the index of the lowest clear bit in bm.
func firstZero(bm []byte) (uintptr, bool) {
	for i, b := range bm {
		if b != 0xFF {
			return uintptr(i)*8 + uintptr(bits.TrailingZeros8(^b)), true
		}
	}
	return 0, false
}

func ones(bm []byte) uintptr {
	var n int
	for _, b := range bm {
		n += bits.OnesCount8(b)
	}
	return uintptr(n)
}

func testBit(bm []byte, i uintptr) bool { return bm[i/8]&(1<<(i%8)) != 0 }
func setBit(bm []byte, i uintptr)       { bm[i/8] |= 1 << (i % 8) }
func clearBit(bm []byte, i uintptr)     { bm[i/8] &^= 1 << (i % 8) }
