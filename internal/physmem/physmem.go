// Package physmem provides a simulated physical address space for the boot
// allocators.
//
// A Memory maps a host buffer onto a range of physical addresses
// [Base, Base+Size). Allocator headers and payloads are read and written
// through Bytes using physical addresses, so the allocators keep the
// address-as-identity design they would have on real hardware while the host
// buffer stays an ordinary Go slice.
//
// On Linux, macOS and FreeBSD the buffer is an anonymous mapping (New) or a
// shared file mapping (Open), which lets a memory image be inspected after a
// simulated boot. Other platforms fall back to heap buffers.
package physmem

import (
	"errors"
	"fmt"
	"math"

	"github.com/raccog/caliga-bootloader/internal/buf"
)

var (
	// ErrOutOfRange indicates an access outside the backed physical range.
	ErrOutOfRange = errors.New("physmem: address range not backed")

	// ErrInvalidSize indicates a zero or unrepresentable memory size.
	ErrInvalidSize = errors.New("physmem: invalid size")

	// ErrClosed indicates use of a Memory after Close.
	ErrClosed = errors.New("physmem: memory closed")
)

// Memory is a contiguous span of simulated physical memory.
//
// Memory is not safe for concurrent use.
type Memory struct {
	base    uintptr
	data    []byte
	release func() error
	flush   func([]byte) error
}

// FromBytes wraps b as physical memory starting at base. The caller keeps
// ownership of b; Close only drops the reference.
func FromBytes(base uintptr, b []byte) *Memory {
	if _, ok := buf.AddAddr(base, uintptr(len(b))); !ok {
		panic(fmt.Sprintf("physmem: base %#x + len %#x overflows", base, len(b)))
	}
	return &Memory{base: base, data: b}
}

// New creates zeroed physical memory of size bytes at base, backed by an
// anonymous host mapping where the platform supports one.
func New(base, size uintptr) (*Memory, error) {
	if err := validate(base, size); err != nil {
		return nil, err
	}
	data, release, err := mapAnon(int(size))
	if err != nil {
		return nil, fmt.Errorf("physmem: map %d bytes: %w", size, err)
	}
	return &Memory{base: base, data: data, release: release}, nil
}

// Open maps the memory image at path as physical memory of size bytes at base.
// The file is created or extended with zeroes as needed. Writes reach the
// file on Sync or Close.
func Open(path string, base, size uintptr) (*Memory, error) {
	if err := validate(base, size); err != nil {
		return nil, err
	}
	data, flush, release, err := mapFile(path, int(size))
	if err != nil {
		return nil, fmt.Errorf("physmem: map image %s: %w", path, err)
	}
	return &Memory{base: base, data: data, release: release, flush: flush}, nil
}

func validate(base, size uintptr) error {
	if size == 0 || size > math.MaxInt {
		return fmt.Errorf("%w: %#x", ErrInvalidSize, size)
	}
	if _, ok := buf.AddAddr(base, size); !ok {
		return fmt.Errorf("%w: base %#x + size %#x overflows", ErrOutOfRange, base, size)
	}
	return nil
}

// Base returns the first physical address backed by m.
func (m *Memory) Base() uintptr { return m.base }

// Size returns the number of bytes backed by m.
func (m *Memory) Size() uintptr { return uintptr(len(m.data)) }

// End returns the first physical address past m.
func (m *Memory) End() uintptr { return m.base + uintptr(len(m.data)) }

// Contains reports whether [addr, addr+n) is backed by m.
func (m *Memory) Contains(addr, n uintptr) bool {
	if m.data == nil {
		return false
	}
	_, err := buf.CheckRange(m.base, uintptr(len(m.data)), addr, n)
	return err == nil
}

// Bytes returns the live bytes backing [addr, addr+n).
//
// Callers validate ranges with Contains before touching memory; an
// unbacked range here is a caller bug and panics.
func (m *Memory) Bytes(addr, n uintptr) []byte {
	if m.data == nil {
		panic(ErrClosed)
	}
	off, err := buf.CheckRange(m.base, uintptr(len(m.data)), addr, n)
	if err != nil {
		panic(fmt.Errorf("%w: %v", ErrOutOfRange, err))
	}
	return m.data[off : off+n : off+n]
}

// Sync writes a file-backed image to disk. It is a no-op for anonymous memory.
func (m *Memory) Sync() error {
	if m.data == nil {
		return ErrClosed
	}
	if m.flush == nil {
		return nil
	}
	return m.flush(m.data)
}

// Close syncs and releases the host buffer. Closing twice is a no-op.
func (m *Memory) Close() error {
	if m.data == nil {
		return nil
	}
	var err error
	if m.flush != nil {
		err = m.flush(m.data)
	}
	if m.release != nil {
		err = errors.Join(err, m.release())
	}
	m.data = nil
	m.release = nil
	m.flush = nil
	return err
}
