package boot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/boot/memmap"
	"github.com/raccog/caliga-bootloader/internal/buf"
)

// Default slab pool shape.
const (
	DefaultSlabSize  = 64
	DefaultSlabAlign = 8
	DefaultSlabCount = 64
)

// ErrConfig indicates an invalid boot description.
var ErrConfig = errors.New("boot: invalid config")

// Config is the boot description: the simulated physical memory, the
// firmware memory map, the bootstrap slab pool and the console.
type Config struct {
	Memory  MemoryConfig   `yaml:"memory"`
	Map     memmap.Map     `yaml:"map"`
	Slab    SlabConfig     `yaml:"slab"`
	Console ConsoleConfig  `yaml:"console"`
	Devices []DeviceConfig `yaml:"devices,omitempty"`

	// Root is a host directory served as the boot volume.
	Root string `yaml:"root,omitempty"`

	// FS overrides Root. It is not part of the YAML document.
	FS fs.FS `yaml:"-"`
}

// MemoryConfig describes the physical address space. With Image set, the
// space is a file mapped at Base; otherwise it is anonymous memory.
type MemoryConfig struct {
	Base  memmap.Hex `yaml:"base"`
	Size  memmap.Hex `yaml:"size"`
	Image string     `yaml:"image,omitempty"`
}

// SlabConfig sizes the bootstrap slab pool. Count is the minimum number of
// slabs; storage is rounded up so the bitmap does not eat into it.
type SlabConfig struct {
	Size  memmap.Hex `yaml:"size"`
	Align memmap.Hex `yaml:"align"`
	Count int        `yaml:"count"`
}

// ConsoleConfig selects the diagnostic channel.
type ConsoleConfig struct {
	Kind     string `yaml:"kind"` // "uart" (default) or "uefi"
	CP437    bool   `yaml:"cp437,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"` // debug, info, warn, error
	Quiet    bool   `yaml:"quiet,omitempty"`
}

// DeviceConfig is a device registered at boot.
type DeviceConfig struct {
	Name string     `yaml:"name"`
	Base memmap.Hex `yaml:"base"`
	Kind DeviceKind `yaml:"kind"`
}

// LoadConfig decodes a YAML boot description and applies defaults.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("boot: decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigFile reads a boot description from path. A relative Image or
// Root is resolved against the config file's directory.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("boot: open config: %w", err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	cfg.Memory.Image = resolve(dir, cfg.Memory.Image)
	cfg.Root = resolve(dir, cfg.Root)
	return cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func (c *Config) applyDefaults() {
	if c.Slab.Size == 0 {
		c.Slab.Size = DefaultSlabSize
	}
	if c.Slab.Align == 0 {
		c.Slab.Align = DefaultSlabAlign
	}
	if c.Slab.Count == 0 {
		c.Slab.Count = DefaultSlabCount
	}
	if c.Console.Kind == "" {
		c.Console.Kind = "uart"
	}
}

// Validate checks the description without touching memory.
func (c *Config) Validate() error {
	if c.Memory.Size == 0 {
		return fmt.Errorf("%w: memory.size is zero", ErrConfig)
	}
	if _, ok := buf.AddAddr(uintptr(c.Memory.Base), uintptr(c.Memory.Size)); !ok {
		return fmt.Errorf("%w: memory [%v, +%v) wraps the address space", ErrConfig, c.Memory.Base, c.Memory.Size)
	}
	if err := c.Map.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if c.Slab.Count < 1 {
		return fmt.Errorf("%w: slab.count %d", ErrConfig, c.Slab.Count)
	}
	if c.Slab.Size < recordSize {
		return fmt.Errorf("%w: slab.size %v is below the %d byte boot record", ErrConfig, c.Slab.Size, recordSize)
	}
	if _, err := alloc.NewLayout(uintptr(c.Slab.Size), uintptr(c.Slab.Align)); err != nil {
		return fmt.Errorf("%w: slab: %w", ErrConfig, err)
	}
	switch c.Console.Kind {
	case "uart", "uefi":
	default:
		return fmt.Errorf("%w: console.kind %q", ErrConfig, c.Console.Kind)
	}
	if _, err := c.logLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) logLevel() (slog.Level, error) {
	var l slog.Level
	if c.Console.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.Console.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: console.log_level: %w", ErrConfig, err)
	}
	return l, nil
}
