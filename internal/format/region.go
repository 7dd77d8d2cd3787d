package format

import "fmt"

// RegionHeader is the decoded form of a region header.
type RegionHeader struct {
	FirstFree uintptr
	Next      uintptr
	Size      uintptr
	PreSize   uint32
	PostSize  uint32
}

// ParseRegion decodes the region header at the start of b.
func ParseRegion(b []byte) (RegionHeader, error) {
	if len(b) < RegionHeaderSize {
		return RegionHeader{}, fmt.Errorf("region: %w", ErrTruncated)
	}
	return RegionHeader{
		FirstFree: uintptr(ReadU64(b, RegionFirstFreeOffset)),
		Next:      uintptr(ReadU64(b, RegionNextOffset)),
		Size:      uintptr(ReadU64(b, RegionSizeOffset)),
		PreSize:   ReadU32(b, RegionPreSizeOffset),
		PostSize:  ReadU32(b, RegionPostSizeOffset),
	}, nil
}

// PutRegion encodes h at the start of b, clearing the reserved bytes.
func PutRegion(b []byte, h RegionHeader) {
	clear(b[:RegionHeaderSize])
	PutU64(b, RegionFirstFreeOffset, uint64(h.FirstFree))
	PutU64(b, RegionNextOffset, uint64(h.Next))
	PutU64(b, RegionSizeOffset, uint64(h.Size))
	PutU32(b, RegionPreSizeOffset, h.PreSize)
	PutU32(b, RegionPostSizeOffset, h.PostSize)
}
