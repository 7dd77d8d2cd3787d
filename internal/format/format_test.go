package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderSizes(t *testing.T) {
	require.Equal(t, CellSize, BlockHeaderSize)
	require.Equal(t, 2*CellSize, RegionHeaderSize)
	require.LessOrEqual(t, RegionAlign, CellSize)
	require.Equal(t, 0x80, MinRegionSize)
}

func TestRegionRoundTrip(t *testing.T) {
	b := make([]byte, RegionHeaderSize)
	for i := range b {
		b[i] = 0xAA
	}
	want := RegionHeader{
		FirstFree: 0x10040,
		Next:      0x20000,
		Size:      0x1100,
		PreSize:   0x18,
		PostSize:  0x08,
	}
	PutRegion(b, want)

	got, err := ParseRegion(b)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// Reserved bytes are cleared.
	for i := 0x20; i < RegionHeaderSize; i++ {
		require.Zero(t, b[i], "reserved byte %#x", i)
	}

	_, err = ParseRegion(b[:RegionHeaderSize-1])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestBlockRoundTrip(t *testing.T) {
	b := make([]byte, BlockHeaderSize)
	want := BlockHeader{Next: 0x30000, CellCount: 125, Status: StatusFree}
	PutBlock(b, want)

	got, err := ParseBlock(b)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, uint32(0xdea1be7f), ReadU32(b, BlockStatusOffset))

	_, err = ParseBlock(b[:8])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestBlockBadStatus(t *testing.T) {
	b := make([]byte, BlockHeaderSize)
	PutBlock(b, BlockHeader{CellCount: 1, Status: StatusUsed})
	PutU32(b, BlockStatusOffset, 0x41414141)

	h, err := ParseBlock(b)
	require.ErrorIs(t, err, ErrBadStatus)
	require.Equal(t, "corrupt", h.Status.String())
}

func TestCellRounding(t *testing.T) {
	require.Equal(t, uintptr(0), CellsFor(0))
	require.Equal(t, uintptr(1), CellsFor(1))
	require.Equal(t, uintptr(1), CellsFor(32))
	require.Equal(t, uintptr(2), CellsFor(33))
	require.Equal(t, uintptr(0x40), CellFloor(0x5f))
}
