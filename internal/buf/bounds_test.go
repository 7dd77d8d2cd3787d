package buf

import "testing"

func TestAddAddr(t *testing.T) {
	if sum, ok := AddAddr(0x1000, 0x100); !ok || sum != 0x1100 {
		t.Fatalf("AddAddr = %#x,%v want 0x1100,true", sum, ok)
	}
	top := ^uintptr(0)
	if sum, ok := AddAddr(top, 0); !ok || sum != top {
		t.Fatalf("AddAddr(max, 0) should not overflow")
	}
	if _, ok := AddAddr(top, 1); ok {
		t.Fatalf("expected overflow when adding past the address space")
	}
	if _, ok := AddAddr(top-0xff, 0x100); ok {
		t.Fatalf("expected overflow for a range ending past the address space")
	}
}

func TestMulAddr(t *testing.T) {
	if p, ok := MulAddr(7, 32); !ok || p != 224 {
		t.Fatalf("MulAddr(7,32)=%d,%v", p, ok)
	}
	if p, ok := MulAddr(0, ^uintptr(0)); !ok || p != 0 {
		t.Fatalf("MulAddr with zero count should be 0")
	}
	if _, ok := MulAddr(^uintptr(0)/2+1, 2); ok {
		t.Fatalf("expected overflow")
	}
}

func TestAlignment(t *testing.T) {
	cases := []struct {
		addr, align, want uintptr
	}{
		{0x1000, 0x20, 0x1000},
		{0x1001, 0x20, 0x1020},
		{0x101f, 0x20, 0x1020},
		{0x1, 0x1, 0x1},
		{0x7, 0x8, 0x8},
	}
	for _, tc := range cases {
		got, ok := AlignUp(tc.addr, tc.align)
		if !ok || got != tc.want {
			t.Fatalf("AlignUp(%#x,%#x)=%#x,%v want %#x", tc.addr, tc.align, got, ok, tc.want)
		}
		if !IsAligned(got, tc.align) {
			t.Fatalf("IsAligned(%#x,%#x) = false", got, tc.align)
		}
	}
	if _, ok := AlignUp(^uintptr(0), 0x20); ok {
		t.Fatalf("AlignUp should fail near the top of the address space")
	}
	if IsAligned(0x1008, 0x10) {
		t.Fatalf("0x1008 is not 16-byte aligned")
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []uintptr{1, 2, 4, 8, 4096, 1 << 40} {
		if !IsPowerOfTwo(n) {
			t.Fatalf("IsPowerOfTwo(%d) = false", n)
		}
	}
	for _, n := range []uintptr{0, 3, 6, 12, 4097} {
		if IsPowerOfTwo(n) {
			t.Fatalf("IsPowerOfTwo(%d) = true", n)
		}
	}
}

func TestCheckRange(t *testing.T) {
	off, err := CheckRange(0x1000, 0x100, 0x1010, 0x20)
	if err != nil || off != 0x10 {
		t.Fatalf("CheckRange = %#x, %v", off, err)
	}
	if _, err := CheckRange(0x1000, 0x100, 0x10f0, 0x20); err == nil {
		t.Fatalf("expected out of bounds for a range crossing the end")
	}
	if _, err := CheckRange(0x1000, 0x100, 0xff0, 0x20); err == nil {
		t.Fatalf("expected out of bounds for a range starting before base")
	}
	if _, err := CheckRange(0x1000, 0x100, ^uintptr(0), 2); err == nil {
		t.Fatalf("expected overflow")
	}
	if off, err := CheckRange(0x1000, 0x100, 0x1100, 0); err != nil || off != 0x100 {
		t.Fatalf("empty range at the end should be in bounds: %#x %v", off, err)
	}
}
