package boot

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/boot/slab"
	"github.com/raccog/caliga-bootloader/internal/physmem"
)

const sampleConfig = `
memory:
  base: 0x100000
  size: 0x40000
map:
  - {addr: 0x100000, size: 0x1000, type: reserved}
  - {addr: 0x101000, size: 0x8000, type: conventional}
  - {addr: 0x109000, size: 0x7000, type: conventional}
  - {addr: 0x120000, pages: 16, type: conventional}
  - {addr: 0x130000, size: 0x1000, type: mmio}
slab:
  size: 64
  align: 8
  count: 64
console:
  kind: uart
  log_level: debug
devices:
  - {name: pl011, base: 0x9000000, kind: uart}
`

func loadSample(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(strings.NewReader(sampleConfig))
	require.NoError(t, err)
	return cfg
}

func sampleVolume() fstest.MapFS {
	return fstest.MapFS{
		"EFI/caliga/kernel.elf": {Data: []byte("\x7fELF kernel image")},
		"EFI/caliga/initrd":     {Data: bytes.Repeat([]byte{0xAB}, 300)},
		"EFI/BOOT/BOOTX64.EFI":  {Data: []byte("MZ")},
	}
}

// newPool returns a slab pool of 64 byte slabs over heap memory.
func newPool(t *testing.T, count int) *slab.Allocator {
	t.Helper()
	size := slabUnits(64, count) * 64
	mem := physmem.FromBytes(0x8000, make([]byte, size))
	pool, err := slab.New(mem, 0x8000, size, alloc.MustLayout(64, 8))
	require.NoError(t, err)
	require.GreaterOrEqual(t, pool.Capacity(), count)
	return pool
}
