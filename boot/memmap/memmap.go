// Package memmap models the memory map firmware hands the boot loader and
// selects the ranges the physical allocator may manage.
package memmap

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/internal/buf"
)

// PageSize is the firmware page size used by page-counted entries.
const PageSize = 0x1000

var (
	// ErrUnknownType indicates a memory type name or value outside the known set.
	ErrUnknownType = errors.New("memmap: unknown memory type")

	// ErrBadNumber indicates an address or size that does not parse.
	ErrBadNumber = errors.New("memmap: bad number")

	// ErrBadEntry indicates an entry with an inconsistent length.
	ErrBadEntry = errors.New("memmap: bad entry")
)

// Entry is one firmware memory descriptor. Its length is given in bytes
// (Size) or in firmware pages (Pages), not both.
type Entry struct {
	Addr  Hex    `yaml:"addr"`
	Size  Hex    `yaml:"size,omitempty"`
	Pages uint64 `yaml:"pages,omitempty"`
	Type  Type   `yaml:"type"`
}

// Len returns the entry length in bytes.
func (e Entry) Len() uintptr {
	if e.Pages != 0 {
		return uintptr(e.Pages) * PageSize
	}
	return uintptr(e.Size)
}

func (e Entry) validate() error {
	if e.Size != 0 && e.Pages != 0 {
		return fmt.Errorf("%w: entry at %v sets both size and pages", ErrBadEntry, e.Addr)
	}
	if e.Pages != 0 {
		if _, ok := buf.MulAddr(uintptr(e.Pages), PageSize); !ok {
			return fmt.Errorf("%w: entry at %v: %d pages overflow", ErrBadEntry, e.Addr, e.Pages)
		}
	}
	if _, ok := buf.AddAddr(uintptr(e.Addr), e.Len()); !ok {
		return fmt.Errorf("%w: entry at %v: length %#x wraps the address space", ErrBadEntry, e.Addr, e.Len())
	}
	return nil
}

// Map is a firmware memory map in firmware order.
type Map []Entry

// Usable returns the conventional, non-empty entries as allocator ranges,
// keeping firmware order.
func (m Map) Usable() []alloc.Range {
	var out []alloc.Range
	for _, e := range m {
		if e.Type != Conventional || e.Len() == 0 {
			continue
		}
		out = append(out, alloc.Range{Addr: uintptr(e.Addr), Size: e.Len()})
	}
	return out
}

// TotalUsable returns the bytes covered by Usable.
func (m Map) TotalUsable() uintptr {
	var total uintptr
	for _, r := range m.Usable() {
		total += r.Size
	}
	return total
}

// Validate checks every entry.
func (m Map) Validate() error {
	for _, e := range m {
		if err := e.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Load decodes a YAML memory map: a sequence of entries.
//
//	- addr: 0x100000
//	  pages: 256
//	  type: conventional
func Load(r io.Reader) (Map, error) {
	var m Map
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("memmap: decode: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
