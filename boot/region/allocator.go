package region

import (
	"fmt"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/boot/span"
	"github.com/raccog/caliga-bootloader/internal/buf"
	"github.com/raccog/caliga-bootloader/internal/format"
	"github.com/raccog/caliga-bootloader/internal/logger"
)

// noCopy may be embedded into structs which must not be copied after first
// use. See go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Allocator is the physical region allocator. It owns an address-ordered
// list of regions.
//
// An Allocator is single-owner: it is not safe for concurrent use and must
// not be copied.
type Allocator struct {
	_ noCopy

	mem  alloc.Memory
	head uintptr // first region header, 0 when empty
}

var _ alloc.Allocator = (*Allocator)(nil)

// RegionInfo is a snapshot of one region in the list.
type RegionInfo struct {
	Addr      uintptr `json:"addr"`
	Size      uintptr `json:"size"`
	PreSize   uintptr `json:"pre_size"`
	PostSize  uintptr `json:"post_size"`
	FreeCells uintptr `json:"free_cells"`
}

// New builds a region for every (addr, size) pair of memoryMap and inserts
// it. Pairs may be unsorted; the first invalid pair aborts construction.
func New(mem alloc.Memory, memoryMap []alloc.Range) (*Allocator, error) {
	if len(memoryMap) == 0 {
		return nil, ErrNoRegions
	}

	a := &Allocator{mem: mem}
	for _, rng := range memoryMap {
		if err := a.Insert(rng.Addr, rng.Size); err != nil {
			return nil, err
		}
	}

	logger.Info("physical allocator ready", "regions", a.Len(), "free_bytes", a.FreeBytes())
	return a, nil
}

// Insert adds [addr, addr+size) to the allocator, for memory that becomes
// usable after construction. On error the list is unchanged.
//
// A range contiguous with a region that has been allocated from cannot be
// merged and is rejected with ErrRegionBusy.
func (a *Allocator) Insert(addr, size uintptr) error {
	p, err := planRegion(a.mem, addr, size)
	if err != nil {
		return err
	}
	// Initializing zeroes memory, so every conflict is ruled out first.
	if err := a.checkPlacement(p.whole); err != nil {
		return &RegionError{Addr: addr, Size: size, Err: err}
	}
	if err := a.insertRegion(p.init(a.mem)); err != nil {
		return &RegionError{Addr: addr, Size: size, Err: err}
	}
	return nil
}

// checkPlacement reports whether s overlaps any region, or touches one that
// can no longer be merged.
func (a *Allocator) checkPlacement(s span.Span) error {
	for cur := a.head; cur != 0; {
		r := a.region(cur)
		rs := r.Span()
		if rs.Overlaps(s) {
			return fmt.Errorf("%w: %v overlaps %v", ErrOverlappingRegion, s, rs)
		}
		if rs.Adjacent(s) && !r.fresh() {
			return fmt.Errorf("%w: %v touches %v", ErrRegionBusy, s, rs)
		}
		cur = r.next()
	}
	return nil
}

func (a *Allocator) region(addr uintptr) Region {
	return Region{mem: a.mem, addr: addr}
}

// insertRegion places r in address order, merging it with a contiguous
// predecessor, successor, or both. Overlap with either neighbour aborts
// before the list is touched.
func (a *Allocator) insertRegion(r Region) error {
	if a.head == 0 {
		a.head = r.addr
		logger.Debug("region inserted", "addr", r.addr, "size", r.Size())
		return nil
	}

	var (
		prev    Region
		hasPrev bool
		next    Region
		hasNext bool
	)
	for cur := a.head; cur != 0; {
		c := a.region(cur)
		if c.addr > r.addr {
			next, hasNext = c, true
			break
		}
		prev, hasPrev = c, true
		cur = c.next()
	}

	s := r.Span()
	if hasPrev && prev.Span().Overlaps(s) {
		return fmt.Errorf("%w: %v overlaps %v", ErrOverlappingRegion, s, prev.Span())
	}
	if hasNext && next.Span().Overlaps(s) {
		return fmt.Errorf("%w: %v overlaps %v", ErrOverlappingRegion, s, next.Span())
	}

	switch {
	case hasPrev && prev.Span().Adjacent(s):
		merged := merge(prev, r)
		if hasNext && merged.Span().Adjacent(next.Span()) {
			// merge allows only one linked side.
			merged.setNext(0)
			merge(merged, next)
		}
	case hasNext && s.Adjacent(next.Span()):
		merged := merge(r, next)
		a.link(prev, hasPrev, merged.addr)
	default:
		if hasNext {
			r.setNext(next.addr)
		}
		a.link(prev, hasPrev, r.addr)
		logger.Debug("region inserted", "addr", r.addr, "size", r.Size())
	}
	return nil
}

// link points prev (or the list head) at addr.
func (a *Allocator) link(prev Region, hasPrev bool, addr uintptr) {
	if hasPrev {
		prev.setNext(addr)
		return
	}
	a.head = addr
}

// Len returns the number of regions in the list.
func (a *Allocator) Len() int {
	n := 0
	for cur := a.head; cur != 0; cur = a.region(cur).next() {
		n++
	}
	return n
}

// Regions returns a snapshot of the list in address order.
func (a *Allocator) Regions() []RegionInfo {
	var out []RegionInfo
	for cur := a.head; cur != 0; {
		r := a.region(cur)
		h := r.header()
		out = append(out, RegionInfo{
			Addr:      r.addr,
			Size:      h.Size,
			PreSize:   uintptr(h.PreSize),
			PostSize:  uintptr(h.PostSize),
			FreeCells: r.freeCells(),
		})
		cur = h.Next
	}
	return out
}

// FreeBytes returns the bytes held by free blocks across all regions.
func (a *Allocator) FreeBytes() uintptr {
	var total uintptr
	for cur := a.head; cur != 0; {
		r := a.region(cur)
		total += r.freeCells() * format.CellSize
		cur = r.next()
	}
	return total
}

// Allocate takes the first free block, in address order, whose cells can
// hold l at l.Align(). The returned bytes run from the aligned address to the
// end of the block.
func (a *Allocator) Allocate(l alloc.Layout) (uintptr, []byte, error) {
	for cur := a.head; cur != 0; {
		r := a.region(cur)
		h := r.header()

		var prev uintptr
		for b := h.FirstFree; b != 0; {
			bh := r.block(b)
			if bh.Status != format.StatusFree {
				panic(fmt.Errorf("%w: used block %#x on free list of region %#x", ErrCorruptBlock, b, r.addr))
			}
			data := b + format.BlockHeaderSize
			end := data + bh.CellCount*format.CellSize
			aligned, ok := buf.AlignUp(data, l.Align())
			if ok && aligned <= end && end-aligned >= l.Size() {
				if prev == 0 {
					h.FirstFree = bh.Next
					r.put(h)
				} else {
					ph := r.block(prev)
					ph.Next = bh.Next
					r.putBlock(prev, ph)
				}
				bh.Next = 0
				bh.Status = format.StatusUsed
				r.putBlock(b, bh)

				logger.Trace("region alloc", "region", r.addr, "addr", aligned, "len", end-aligned, "layout", l.String())
				return aligned, a.mem.Bytes(aligned, end-aligned), nil
			}
			prev = b
			b = bh.Next
		}
		cur = h.Next
	}
	return 0, nil, &alloc.Fault{Layout: l, Err: fmt.Errorf("region: no free block: %w", alloc.ErrAlloc)}
}

// Deallocate returns the block holding addr to its region's free list and
// zeroes its cells.
func (a *Allocator) Deallocate(addr uintptr, l alloc.Layout) {
	r, ok := a.find(addr)
	if !ok {
		fault(addr, l, "deallocate: not in any region")
	}

	// Blocks are never split, so the region's only block is its first.
	b := r.firstBlockAddr()
	bh := r.block(b)
	if bh.Status != format.StatusUsed {
		fault(addr, l, "deallocate: block %#x is not in use", b)
	}
	data := b + format.BlockHeaderSize
	cells := span.Span{Start: data, End: data + bh.CellCount*format.CellSize}
	req, err := span.New(addr, l.Size())
	if err != nil || !cells.Contains(addr) || !cells.ContainsSpan(req) || !buf.IsAligned(addr, l.Align()) {
		fault(addr, l, "deallocate: does not match block %v", cells)
	}

	clear(a.mem.Bytes(cells.Start, cells.Len()))

	h := r.header()
	bh.Status = format.StatusFree
	bh.Next = h.FirstFree
	r.putBlock(b, bh)
	h.FirstFree = b
	r.put(h)

	logger.Trace("region free", "region", r.addr, "addr", addr, "layout", l.String())
}

// find returns the region whose cells contain addr.
func (a *Allocator) find(addr uintptr) (Region, bool) {
	for cur := a.head; cur != 0; {
		r := a.region(cur)
		if r.cells().Contains(addr) {
			return r, true
		}
		if r.addr > addr {
			break
		}
		cur = r.next()
	}
	return Region{}, false
}
