package region

import (
	"github.com/raccog/caliga-bootloader/internal/format"
	"github.com/raccog/caliga-bootloader/internal/logger"
)

// merge folds two contiguous, fresh regions into one and returns the
// surviving lower region. The upper region's header is zeroed and its cells,
// together with the padding between the two, join the surviving free block.
//
// At most one of the two may have a next link. Anything else is a caller bug
// and panics.
func merge(a, b Region) Region {
	first, second := a, b
	if b.addr < a.addr {
		first, second = b, a
	}
	fs, ss := first.Span(), second.Span()
	if fs.Overlaps(ss) || !fs.Adjacent(ss) {
		invariant("merge of non-contiguous regions %v and %v", fs, ss)
	}

	fh, sh := first.header(), second.header()
	unaligned := uintptr(fh.PostSize) + uintptr(sh.PreSize)
	if unaligned != 0 && unaligned != format.CellSize {
		invariant("merge of %v and %v leaves %d unaligned bytes", fs, ss, unaligned)
	}
	if fh.Next != 0 && sh.Next != 0 {
		invariant("merge of %v and %v: both regions are linked", fs, ss)
	}
	if !first.fresh() || !second.fresh() {
		invariant("merge of %v and %v: region already allocated from", fs, ss)
	}

	absorbed := unaligned + sh.Size
	// Second's header, first's trailing slack and second's leading slack.
	clear(first.mem.Bytes(first.addr+fh.Size, absorbed))

	blockAddr := first.firstBlockAddr()
	block := first.block(blockAddr)
	block.CellCount += absorbed / format.CellSize
	first.putBlock(blockAddr, block)

	next := fh.Next
	if next == 0 {
		next = sh.Next
	}
	first.put(format.RegionHeader{
		FirstFree: fh.FirstFree,
		Next:      next,
		Size:      fh.Size + absorbed,
		PreSize:   fh.PreSize,
		PostSize:  sh.PostSize,
	})

	logger.Debug("region merged",
		"first", first.addr, "second", second.addr, "size", fh.Size+absorbed)
	return first
}
