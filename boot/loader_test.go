package boot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccog/caliga-bootloader/boot/diag"
	"github.com/raccog/caliga-bootloader/boot/memmap"
	"github.com/raccog/caliga-bootloader/boot/region"
)

func TestSlabUnits(t *testing.T) {
	cases := []struct {
		size  uintptr
		count int
		want  uintptr
	}{
		{1, 1, 2},
		{64, 2, 3},
		{64, 64, 65},
		{1, 8, 10},
		{8, 504, 512},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slabUnits(tc.size, tc.count), "size=%d count=%d", tc.size, tc.count)
	}
}

func TestStart(t *testing.T) {
	cfg := loadSample(t)
	cfg.FS = sampleVolume()

	var sink bytes.Buffer
	l, err := Start(cfg, diag.NewUART(&sink, false))
	require.NoError(t, err)
	defer l.Close()

	st := l.Status()
	require.Len(t, st.Regions, 2)
	// The two contiguous conventional entries are one region, and the slab
	// storage took its only block.
	assert.Equal(t, uintptr(0x101000), st.Regions[0].Addr)
	assert.Equal(t, uintptr(0xF000), st.Regions[0].Size)
	assert.Zero(t, st.Regions[0].FreeCells)
	assert.Equal(t, region.RegionInfo{Addr: 0x120000, Size: 0x10000, FreeCells: 2045}, st.Regions[1])
	assert.Equal(t, uintptr(2045*32), st.FreeBytes)

	assert.Equal(t, SlabStatus{Addr: 0x101060, Size: 64, Align: 8, Capacity: 64, InUse: 1}, st.Slab)
	assert.Equal(t, []Device{{Name: "pl011", Base: 0x9000000, Kind: DeviceUART}}, st.Devices)

	fd, err := l.Files.Open("/EFI/caliga/initrd")
	require.NoError(t, err)
	size, err := l.Files.Size(fd)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), size)
	assert.Equal(t, 2, l.Slab.InUse())

	assert.Contains(t, sink.String(), "boot complete")
	require.NoError(t, l.Validate())

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}

func TestStart_QuietConsole(t *testing.T) {
	cfg := loadSample(t)
	cfg.Console.Quiet = true

	var sink bytes.Buffer
	l, err := Start(cfg, diag.NewUART(&sink, false))
	require.NoError(t, err)
	defer l.Close()
	assert.Empty(t, sink.String())
}

func TestStart_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no usable memory", func(c *Config) { c.Map = c.Map[:1] }, "physical allocator"},
		{"null region", func(c *Config) {
			c.Memory.Base = 0
			c.Map = memmap.Map{{Addr: 0, Size: 0x1000, Type: memmap.Conventional}}
		}, "physical allocator"},
		{"map outside memory", func(c *Config) {
			c.Map = memmap.Map{{Addr: 0x200000, Size: 0x1000, Type: memmap.Conventional}}
		}, "physical allocator"},
		{"slab does not fit", func(c *Config) { c.Slab.Count = 4096 }, "reserve slab storage"},
		{"duplicate device", func(c *Config) { c.Devices = append(c.Devices, c.Devices[0]) }, "devices"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := loadSample(t)
			cfg.Console.Quiet = true
			tc.mutate(cfg)

			l, err := Start(cfg, diag.NewUART(&bytes.Buffer{}, false))
			require.Error(t, err)
			require.Nil(t, l)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestStart_MemoryImage(t *testing.T) {
	dir := t.TempDir()
	doc := strings.Replace(sampleConfig, "size: 0x40000\n", "size: 0x40000\n  image: mem.img\n", 1)
	path := filepath.Join(dir, "boot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	cfg.Console.Quiet = true

	l, err := Start(cfg, diag.NewUART(&bytes.Buffer{}, false))
	require.NoError(t, err)

	// The pl011 record is the first slab, 0x101060 - 0x100000 into the image.
	requireRecord := func() {
		t.Helper()
		img, err := os.ReadFile(filepath.Join(dir, "mem.img"))
		require.NoError(t, err)
		require.Len(t, img, 0x40000)
		rec := img[0x1060:]
		assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x09}, rec[0:4])
		assert.Equal(t, "pl011", string(rec[devNameOffset:devNameOffset+5]))
	}

	// Start syncs the image once boot completes.
	requireRecord()
	require.NoError(t, l.Close())
	requireRecord()
}
