// Package format describes the in-memory layout of the headers the physical
// region allocator writes into the memory it manages. Headers are fixed-size,
// little-endian records so that their size, and therefore the cell size, does
// not depend on the host's pointer width.
package format

const (
	// BlockHeaderSize is the size of a block header. A block header
	// precedes every run of cells, used or free.
	//
	// Layout (little-endian):
	//
	//	Offset  Size  Field
	//	0x00    8     Next free block address (0 = none)
	//	0x08    8     Cell count (cells after the header)
	//	0x10    4     Status tag
	//	0x14    4     Reserved
	//	0x18    8     Reserved
	BlockHeaderSize = 0x20

	// CellSize is the allocation granule inside a region. It equals one
	// block header so a block header always occupies exactly one cell.
	CellSize = BlockHeaderSize

	// RegionHeaderSize is the size of a region header, two cells.
	//
	// Layout (little-endian):
	//
	//	Offset  Size  Field
	//	0x00    8     First free block address (0 = none)
	//	0x08    8     Next region address (0 = none)
	//	0x10    8     Size (header and cells, without pre/post padding)
	//	0x18    4     Pre size
	//	0x1C    4     Post size
	//	0x20    32    Reserved
	RegionHeaderSize = 0x40

	// RegionAlign is the alignment of a region header. It never exceeds
	// CellSize, which bounds pre and post padding below one cell.
	RegionAlign = CellSize

	// MinRegionSize is the smallest aligned region: a region header, one
	// block header and one allocatable cell.
	MinRegionSize = RegionHeaderSize + 2*CellSize
)

// Region header field offsets.
const (
	RegionFirstFreeOffset = 0x00
	RegionNextOffset      = 0x08
	RegionSizeOffset      = 0x10
	RegionPreSizeOffset   = 0x18
	RegionPostSizeOffset  = 0x1C
)

// Block header field offsets.
const (
	BlockNextOffset      = 0x00
	BlockCellCountOffset = 0x08
	BlockStatusOffset    = 0x10
)

// Status is the tag stored in every block header. Any value other than
// StatusFree or StatusUsed means the header was overwritten by something
// that does not own it.
type Status uint32

const (
	StatusFree Status = 0xdea1be7f
	StatusUsed Status = 0x6c2ef40d
)

// Valid reports whether s is one of the two known tags.
func (s Status) Valid() bool {
	return s == StatusFree || s == StatusUsed
}

func (s Status) String() string {
	switch s {
	case StatusFree:
		return "free"
	case StatusUsed:
		return "used"
	default:
		return "corrupt"
	}
}
