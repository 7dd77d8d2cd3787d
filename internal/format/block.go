package format

import "fmt"

// BlockHeader is the decoded form of a block header.
type BlockHeader struct {
	Next      uintptr
	CellCount uintptr
	Status    Status
}

// ParseBlock decodes the block header at the start of b and validates its
// status tag.
func ParseBlock(b []byte) (BlockHeader, error) {
	if len(b) < BlockHeaderSize {
		return BlockHeader{}, fmt.Errorf("block: %w", ErrTruncated)
	}
	h := BlockHeader{
		Next:      uintptr(ReadU64(b, BlockNextOffset)),
		CellCount: uintptr(ReadU64(b, BlockCellCountOffset)),
		Status:    Status(ReadU32(b, BlockStatusOffset)),
	}
	if !h.Status.Valid() {
		return h, fmt.Errorf("block: %w %#x", ErrBadStatus, uint32(h.Status))
	}
	return h, nil
}

// PutBlock encodes h at the start of b, clearing the reserved bytes.
func PutBlock(b []byte, h BlockHeader) {
	clear(b[:BlockHeaderSize])
	PutU64(b, BlockNextOffset, uint64(h.Next))
	PutU64(b, BlockCellCountOffset, uint64(h.CellCount))
	PutU32(b, BlockStatusOffset, uint32(h.Status))
}
