package region

import (
	"fmt"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/boot/span"
	"github.com/raccog/caliga-bootloader/internal/buf"
	"github.com/raccog/caliga-bootloader/internal/format"
)

// Region is a handle to a region header living in physical memory. The
// header address is the region's identity.
type Region struct {
	mem  alloc.Memory
	addr uintptr
}

// NewRegion initializes a region over [addr, addr+size): it aligns the
// header, zeroes every cell and writes a single free block covering them.
func NewRegion(mem alloc.Memory, addr, size uintptr) (Region, error) {
	p, err := planRegion(mem, addr, size)
	if err != nil {
		return Region{}, err
	}
	return p.init(mem), nil
}

// regionPlan is a validated region placement that has not touched memory yet.
type regionPlan struct {
	addr, size, pre, post uintptr
	whole                 span.Span
}

func planRegion(mem alloc.Memory, addr, size uintptr) (regionPlan, error) {
	whole, err := span.New(addr, size)
	if err != nil {
		return regionPlan{}, &RegionError{Addr: addr, Size: size, Err: fmt.Errorf("%w: %w", ErrRegionOutOfBounds, err)}
	}
	if addr == 0 {
		return regionPlan{}, &RegionError{Addr: addr, Size: size, Err: ErrNullRegion}
	}
	if !mem.Contains(addr, size) {
		return regionPlan{}, &RegionError{Addr: addr, Size: size, Err: ErrRegionOutOfBounds}
	}

	aligned, ok := buf.AlignUp(addr, format.RegionAlign)
	if !ok || aligned-addr > size || size-(aligned-addr) < format.MinRegionSize {
		return regionPlan{}, &RegionError{Addr: addr, Size: size, Err: ErrRegionTooSmall}
	}
	pre := aligned - addr
	avail := size - pre
	post := (avail - format.RegionHeaderSize) % format.CellSize
	return regionPlan{addr: aligned, size: avail - post, pre: pre, post: post, whole: whole}, nil
}

func (p regionPlan) init(mem alloc.Memory) Region {
	r := Region{mem: mem, addr: p.addr}
	// Zero everything so stray memory contents never leak into allocations.
	clear(mem.Bytes(p.addr, p.size))

	r.putBlock(r.firstBlockAddr(), format.BlockHeader{
		CellCount: freshCellCount(p.size),
		Status:    format.StatusFree,
	})
	r.put(format.RegionHeader{
		FirstFree: r.firstBlockAddr(),
		Size:      p.size,
		PreSize:   uint32(p.pre),
		PostSize:  uint32(p.post),
	})
	return r
}

// freshCellCount is the cell count of the single block of a fresh region
// spanning size bytes.
func freshCellCount(size uintptr) uintptr {
	return (size-format.RegionHeaderSize)/format.CellSize - 1
}

// Addr returns the address of the region header.
func (r Region) Addr() uintptr { return r.addr }

// Size returns the bytes spanned by the header and all cells.
func (r Region) Size() uintptr { return r.header().Size }

// PreSize returns the unaligned bytes skipped before the header.
func (r Region) PreSize() uintptr { return uintptr(r.header().PreSize) }

// PostSize returns the trailing bytes too small to form a cell.
func (r Region) PostSize() uintptr { return uintptr(r.header().PostSize) }

// Span returns the padded span [addr-pre, addr+size+post) the region claims.
func (r Region) Span() span.Span {
	h := r.header()
	return span.Span{
		Start: r.addr - uintptr(h.PreSize),
		End:   r.addr + h.Size + uintptr(h.PostSize),
	}
}

// cells returns the span of block headers and cells.
func (r Region) cells() span.Span {
	return span.Span{Start: r.firstBlockAddr(), End: r.addr + r.header().Size}
}

func (r Region) firstBlockAddr() uintptr {
	return r.addr + format.RegionHeaderSize
}

func (r Region) next() uintptr { return r.header().Next }

func (r Region) setNext(next uintptr) {
	h := r.header()
	h.Next = next
	r.put(h)
}

func (r Region) header() format.RegionHeader {
	h, err := format.ParseRegion(r.mem.Bytes(r.addr, format.RegionHeaderSize))
	if err != nil {
		invariant("region header at %#x: %v", r.addr, err)
	}
	return h
}

func (r Region) put(h format.RegionHeader) {
	format.PutRegion(r.mem.Bytes(r.addr, format.RegionHeaderSize), h)
}

// block reads and validates the block header at addr.
func (r Region) block(addr uintptr) format.BlockHeader {
	c := r.cells()
	if !c.Contains(addr) || (addr-c.Start)%format.CellSize != 0 {
		panic(fmt.Errorf("%w: block %#x outside region %#x cells %v", ErrCorruptBlock, addr, r.addr, c))
	}
	h, err := format.ParseBlock(r.mem.Bytes(addr, format.BlockHeaderSize))
	if err != nil {
		panic(fmt.Errorf("%w: block %#x in region %#x: %v", ErrCorruptBlock, addr, r.addr, err))
	}
	if end := addr + format.BlockHeaderSize + h.CellCount*format.CellSize; end > c.End || end < addr {
		panic(fmt.Errorf("%w: block %#x with %d cells overruns region %#x", ErrCorruptBlock, addr, h.CellCount, r.addr))
	}
	return h
}

func (r Region) putBlock(addr uintptr, h format.BlockHeader) {
	format.PutBlock(r.mem.Bytes(addr, format.BlockHeaderSize), h)
}

// fresh reports whether r still has its single all-free block.
func (r Region) fresh() bool {
	h := r.header()
	if h.FirstFree != r.firstBlockAddr() {
		return false
	}
	b := r.block(h.FirstFree)
	return b.Status == format.StatusFree && b.Next == 0 && b.CellCount == freshCellCount(h.Size)
}

// freeCells walks the free list and sums cell counts.
func (r Region) freeCells() uintptr {
	h := r.header()
	limit := h.Size / format.CellSize
	var total uintptr
	for b, n := h.FirstFree, uintptr(0); b != 0; n++ {
		if n > limit {
			panic(fmt.Errorf("%w: free list of region %#x does not terminate", ErrCorruptBlock, r.addr))
		}
		bh := r.block(b)
		if bh.Status != format.StatusFree {
			panic(fmt.Errorf("%w: used block %#x on free list of region %#x", ErrCorruptBlock, b, r.addr))
		}
		total += bh.CellCount
		b = bh.Next
	}
	return total
}
