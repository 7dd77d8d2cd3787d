package boot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/boot/diag"
	"github.com/raccog/caliga-bootloader/boot/region"
	"github.com/raccog/caliga-bootloader/boot/slab"
	"github.com/raccog/caliga-bootloader/internal/buf"
	"github.com/raccog/caliga-bootloader/internal/logger"
	"github.com/raccog/caliga-bootloader/internal/physmem"
)

// Loader is the boot-time state handed to the kernel.
type Loader struct {
	Config  *Config
	Memory  *physmem.Memory
	Console *diag.Channel
	Regions *region.Allocator
	Slab    *slab.Allocator
	Devices *DeviceTable
	Files   *FileTable

	slabAddr uintptr
}

// NewConsole returns the diagnostic channel cfg selects, writing to out.
func NewConsole(cfg ConsoleConfig, out io.Writer) *diag.Channel {
	if cfg.Kind == "uefi" {
		return diag.NewUEFIConsole(out)
	}
	return diag.NewUART(out, cfg.CP437)
}

// Start runs the boot sequence: physical memory, the physical region
// allocator over the usable memory map, slab storage reserved from it, the
// slab pool, and the device and file tables on top. Log output goes to ch.
//
// A failed step is returned wrapped with the step's name; memory mapped by
// earlier steps is released.
func Start(cfg *Config, ch *diag.Channel) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.logLevel()
	logger.Init(logger.Options{Enabled: !cfg.Console.Quiet, Writer: ch, Level: level})

	mem, err := openMemory(cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("boot: memory: %w", err)
	}
	l := &Loader{Config: cfg, Memory: mem, Console: ch}
	if err := l.start(); err != nil {
		return nil, errors.Join(err, mem.Close())
	}
	// An image holds the boot records from here on, even if the caller
	// halts before Close.
	if err := mem.Sync(); err != nil {
		logger.Warn("memory image not synced", "image", cfg.Memory.Image, "err", err)
	}

	logger.Info("boot complete",
		"regions", l.Regions.Len(),
		"free_bytes", l.Regions.FreeBytes(),
		"slabs", l.Slab.Capacity(),
		"devices", l.Devices.Len())
	return l, nil
}

func openMemory(mc MemoryConfig) (*physmem.Memory, error) {
	if mc.Image != "" {
		return physmem.Open(mc.Image, uintptr(mc.Base), uintptr(mc.Size))
	}
	return physmem.New(uintptr(mc.Base), uintptr(mc.Size))
}

func (l *Loader) start() error {
	cfg := l.Config

	regions, err := region.New(l.Memory, cfg.Map.Usable())
	if err != nil {
		return fmt.Errorf("boot: physical allocator: %w", err)
	}
	l.Regions = regions

	size, align := uintptr(cfg.Slab.Size), uintptr(cfg.Slab.Align)
	slabLayout, err := alloc.NewLayout(size, align)
	if err != nil {
		return fmt.Errorf("boot: slab layout: %w", err)
	}
	storage, ok := buf.MulAddr(slabUnits(size, cfg.Slab.Count), size)
	if !ok {
		return fmt.Errorf("%w: slab storage for %d slabs of %#x bytes overflows", ErrConfig, cfg.Slab.Count, size)
	}
	storageLayout, err := alloc.NewLayout(storage, align)
	if err != nil {
		return fmt.Errorf("boot: slab storage: %w", err)
	}
	addr, _, err := regions.Allocate(storageLayout)
	if err != nil {
		return fmt.Errorf("boot: reserve slab storage: %w", err)
	}
	l.slabAddr = addr

	pool, err := slab.New(l.Memory, addr, storage, slabLayout)
	if err != nil {
		return fmt.Errorf("boot: slab pool: %w", err)
	}
	l.Slab = pool

	l.Devices = NewDeviceTable(pool)
	for _, d := range cfg.Devices {
		if _, err := l.Devices.Register(Device{Name: d.Name, Base: uintptr(d.Base), Kind: d.Kind}); err != nil {
			return fmt.Errorf("boot: devices: %w", err)
		}
	}

	fsys := cfg.FS
	if fsys == nil && cfg.Root != "" {
		fsys = os.DirFS(cfg.Root)
	}
	l.Files = NewFileTable(fsys, pool)
	return nil
}

// slabUnits returns the smallest storage, in slabs of size bytes, whose
// capacity after the bitmap is at least count.
func slabUnits(size uintptr, count int) uintptr {
	n := max(uintptr(count), 2)
	for n-((n+7)/8+size-1)/size < uintptr(count) {
		n++
	}
	return n
}

// Status is a snapshot of the loader's allocators.
type Status struct {
	Regions   []region.RegionInfo `json:"regions"`
	FreeBytes uintptr             `json:"free_bytes"`
	Slab      SlabStatus          `json:"slab"`
	Devices   []Device            `json:"devices"`
	OpenFiles int                 `json:"open_files"`
}

// SlabStatus describes the slab pool.
type SlabStatus struct {
	Addr     uintptr `json:"addr"`
	Size     uintptr `json:"size"`
	Align    uintptr `json:"align"`
	Capacity int     `json:"capacity"`
	InUse    int     `json:"in_use"`
}

// Status returns a snapshot of the loader's allocators.
func (l *Loader) Status() Status {
	sl := l.Slab.Layout()
	return Status{
		Regions:   l.Regions.Regions(),
		FreeBytes: l.Regions.FreeBytes(),
		Slab: SlabStatus{
			Addr:     l.slabAddr,
			Size:     sl.Size(),
			Align:    sl.Align(),
			Capacity: l.Slab.Capacity(),
			InUse:    l.Slab.InUse(),
		},
		Devices:   l.Devices.Devices(),
		OpenFiles: l.Files.OpenCount(),
	}
}

// Validate checks the region list and every block header reachable from it.
func (l *Loader) Validate() error {
	return l.Regions.Validate()
}

// Close closes open files and releases physical memory. A memory image
// keeps the final contents, slab storage included.
func (l *Loader) Close() error {
	var errs []error
	if l.Files != nil {
		errs = append(errs, l.Files.CloseAll())
	}
	if l.Memory != nil {
		errs = append(errs, l.Memory.Close())
	}
	return errors.Join(errs...)
}
