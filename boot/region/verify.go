package region

import (
	"errors"
	"fmt"

	"github.com/raccog/caliga-bootloader/internal/format"
)

// ErrInvalidList indicates a region list that breaks ordering, overlap,
// contiguity or padding rules.
var ErrInvalidList = errors.New("region: invalid region list")

// Validate walks the region list and checks every structural rule: strictly
// increasing header addresses, pairwise disjoint and non-contiguous padded
// spans, padding below one cell, and valid block headers. It returns the
// first violation found.
func (a *Allocator) Validate() error {
	var (
		prev    Region
		hasPrev bool
	)
	for cur := a.head; cur != 0; {
		r := a.region(cur)
		h := r.header()

		if uintptr(h.PreSize) >= format.CellSize || uintptr(h.PostSize) >= format.CellSize {
			return fmt.Errorf("%w: region %#x padding pre=%d post=%d", ErrInvalidList, r.addr, h.PreSize, h.PostSize)
		}
		if h.Size < format.MinRegionSize || h.Size%format.CellSize != 0 {
			return fmt.Errorf("%w: region %#x size %#x", ErrInvalidList, r.addr, h.Size)
		}
		if hasPrev {
			ps, rs := prev.Span(), r.Span()
			switch {
			case !ps.Before(rs):
				return fmt.Errorf("%w: region %#x not after %#x", ErrInvalidList, r.addr, prev.addr)
			case ps.Overlaps(rs):
				return fmt.Errorf("%w: %v overlaps %v", ErrInvalidList, ps, rs)
			case ps.Adjacent(rs):
				return fmt.Errorf("%w: %v contiguous with %v", ErrInvalidList, ps, rs)
			}
		}

		// Walks the free list, validating every header on it.
		r.freeCells()

		prev, hasPrev = r, true
		cur = h.Next
	}
	return nil
}
