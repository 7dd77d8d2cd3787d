package region

import (
	"errors"
	"fmt"

	"github.com/raccog/caliga-bootloader/boot/alloc"
)

var (
	// ErrNoRegions indicates an empty memory map.
	ErrNoRegions = errors.New("region: memory map has no regions")

	// ErrOverlappingRegion indicates a region overlapping one already in the list.
	ErrOverlappingRegion = errors.New("region: overlapping region")

	// ErrNullRegion indicates a region starting at address zero.
	ErrNullRegion = errors.New("region: null region address")

	// ErrRegionTooSmall indicates a region with no room for a header, a block
	// header and one cell after alignment.
	ErrRegionTooSmall = errors.New("region: region too small")

	// ErrRegionOutOfBounds indicates a region wrapping past the address space
	// or not backed by physical memory.
	ErrRegionOutOfBounds = errors.New("region: region out of bounds")

	// ErrRegionBusy indicates a range contiguous with a region that has
	// already been allocated from, which cannot be merged.
	ErrRegionBusy = errors.New("region: contiguous region in use")

	// ErrCorruptBlock marks panics raised when a block header fails validation.
	ErrCorruptBlock = fmt.Errorf("region: corrupt block header: %w", alloc.ErrInvariant)
)

// RegionError records a rejected memory-map entry.
type RegionError struct {
	Addr uintptr
	Size uintptr
	Err  error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("region [%#x, +%#x): %v", e.Addr, e.Size, e.Err)
}

func (e *RegionError) Unwrap() error { return e.Err }

// invariant panics with an error wrapping alloc.ErrInvariant.
func invariant(format string, args ...any) {
	panic(fmt.Errorf("region: %w: %s", alloc.ErrInvariant, fmt.Sprintf(format, args...)))
}

// fault panics with an alloc.Fault for a bad request against addr.
func fault(addr uintptr, l alloc.Layout, format string, args ...any) {
	panic(&alloc.Fault{
		Addr:   addr,
		Layout: l,
		Err:    fmt.Errorf("region: %w: %s", alloc.ErrInvariant, fmt.Sprintf(format, args...)),
	})
}
