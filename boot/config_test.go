package boot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccog/caliga-bootloader/boot/memmap"
)

func TestLoadConfig(t *testing.T) {
	cfg := loadSample(t)

	assert.Equal(t, memmap.Hex(0x100000), cfg.Memory.Base)
	assert.Equal(t, memmap.Hex(0x40000), cfg.Memory.Size)
	assert.Len(t, cfg.Map, 5)
	assert.Equal(t, SlabConfig{Size: 64, Align: 8, Count: 64}, cfg.Slab)
	assert.Equal(t, "uart", cfg.Console.Kind)
	assert.Equal(t, []DeviceConfig{{Name: "pl011", Base: 0x9000000, Kind: DeviceUART}}, cfg.Devices)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("memory: {base: 0x1000, size: 0x10000}\n"))
	require.NoError(t, err)

	assert.Equal(t, SlabConfig{Size: DefaultSlabSize, Align: DefaultSlabAlign, Count: DefaultSlabCount}, cfg.Slab)
	assert.Equal(t, "uart", cfg.Console.Kind)
	assert.Empty(t, cfg.Map)
}

func TestLoadConfig_Errors(t *testing.T) {
	cases := map[string]string{
		"no memory":       "map: []\n",
		"wrapping memory": "memory: {base: 0xffffffffffffff00, size: 0x1000}\n",
		"slab too small":  "memory: {base: 0x1000, size: 0x1000}\nslab: {size: 16}\n",
		"bad slab align":  "memory: {base: 0x1000, size: 0x1000}\nslab: {size: 64, align: 24}\n",
		"negative count":  "memory: {base: 0x1000, size: 0x1000}\nslab: {count: -1}\n",
		"console kind":    "memory: {base: 0x1000, size: 0x1000}\nconsole: {kind: vga}\n",
		"log level":       "memory: {base: 0x1000, size: 0x1000}\nconsole: {log_level: chatty}\n",
		"entry both":      "memory: {base: 0x1000, size: 0x1000}\nmap: [{addr: 0x1000, size: 0x10, pages: 1, type: conventional}]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(doc))
			require.ErrorIs(t, err, ErrConfig)
		})
	}

	_, err := LoadConfig(strings.NewReader("memory: {base: 0x1000, size: 0x1000}\nbogus: 1\n"))
	require.Error(t, err)

	_, err = LoadConfig(strings.NewReader("memory: {base: 0x1000, size: 0x1000}\ndevices: [{name: x, base: 0, kind: tape}]\n"))
	require.ErrorIs(t, err, ErrConfig)
}

func TestLoadConfigFile_ResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.yaml")
	doc := "memory: {base: 0x1000, size: 0x10000, image: mem.img}\nroot: esp\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mem.img"), cfg.Memory.Image)
	assert.Equal(t, filepath.Join(dir, "esp"), cfg.Root)

	_, err = LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
