package boot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/internal/format"
	"github.com/raccog/caliga-bootloader/internal/logger"
)

// recordSize is the smallest slab that holds a boot record: a device with a
// 16 byte name, or an open file.
const recordSize = 32

// Device record layout inside its slab (little-endian):
//
//	Offset  Size  Field
//	0x00    8     MMIO base
//	0x08    4     Kind
//	0x0C    1     Name length
//	0x10    n     Name bytes, up to slab size - 0x10
const (
	devBaseOffset    = 0x00
	devKindOffset    = 0x08
	devNameLenOffset = 0x0C
	devNameOffset    = 0x10
)

var (
	// ErrDeviceExists indicates a second registration under one name.
	ErrDeviceExists = errors.New("boot: device already registered")

	// ErrNoDevice indicates a lookup or removal of an unknown device.
	ErrNoDevice = errors.New("boot: no such device")

	// ErrDeviceName indicates an empty name or one that does not fit a record.
	ErrDeviceName = errors.New("boot: bad device name")
)

// Pool is an allocator serving one fixed layout, such as the slab pool.
type Pool interface {
	alloc.Allocator
	Layout() alloc.Layout
}

// DeviceKind classifies a registered device.
type DeviceKind uint32

const (
	DeviceUART DeviceKind = iota + 1
	DeviceBlock
	DeviceFramebuffer
)

var deviceKindNames = map[DeviceKind]string{
	DeviceUART:        "uart",
	DeviceBlock:       "block",
	DeviceFramebuffer: "framebuffer",
}

func (k DeviceKind) String() string {
	if s, ok := deviceKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("device(%d)", uint32(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k DeviceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DeviceKind) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for kind, name := range deviceKindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: device kind %q", ErrConfig, text)
}

// Device is a boot-time device: a block device handed over by firmware or an
// MMIO peripheral such as the PL011 UART.
type Device struct {
	Name string     `json:"name"`
	Base uintptr    `json:"base"`
	Kind DeviceKind `json:"kind"`
}

// Handle identifies a registered device. It is the address of its record.
type Handle uintptr

// DeviceTable is the boot-time device registry. Each record is one slab of
// the pool; the table only keeps their boxes in registration order.
type DeviceTable struct {
	pool    Pool
	records []*alloc.Box
}

// NewDeviceTable returns an empty table allocating records from pool.
func NewDeviceTable(pool Pool) *DeviceTable {
	return &DeviceTable{pool: pool}
}

// Register stores d in a new record.
func (t *DeviceTable) Register(d Device) (Handle, error) {
	l := t.pool.Layout()
	if d.Name == "" || l.Size() < devNameOffset || uintptr(len(d.Name)) > l.Size()-devNameOffset || len(d.Name) > 0xFF {
		return 0, fmt.Errorf("%w: %q", ErrDeviceName, d.Name)
	}
	if _, _, ok := t.find(d.Name); ok {
		return 0, fmt.Errorf("%w: %s", ErrDeviceExists, d.Name)
	}

	rec := make([]byte, devNameOffset+len(d.Name))
	format.PutU64(rec, devBaseOffset, uint64(d.Base))
	format.PutU32(rec, devKindOffset, uint32(d.Kind))
	rec[devNameLenOffset] = byte(len(d.Name))
	copy(rec[devNameOffset:], d.Name)

	box, err := alloc.NewBox(t.pool, l, rec)
	if err != nil {
		return 0, fmt.Errorf("boot: register %s: %w", d.Name, err)
	}
	t.records = append(t.records, box)

	logger.Debug("device registered", "name", d.Name, "kind", d.Kind.String(), "base", d.Base, "record", box.Addr())
	return Handle(box.Addr()), nil
}

// Lookup returns the device registered under name.
func (t *DeviceTable) Lookup(name string) (Device, Handle, bool) {
	d, i, ok := t.find(name)
	if !ok {
		return Device{}, 0, false
	}
	return d, Handle(t.records[i].Addr()), true
}

// Remove frees the record of h.
func (t *DeviceTable) Remove(h Handle) error {
	for i, box := range t.records {
		if Handle(box.Addr()) == h {
			box.Free()
			t.records = append(t.records[:i], t.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: handle %#x", ErrNoDevice, uintptr(h))
}

// Devices returns every registered device in registration order.
func (t *DeviceTable) Devices() []Device {
	out := make([]Device, 0, len(t.records))
	for _, box := range t.records {
		out = append(out, decodeDevice(box.Bytes()))
	}
	return out
}

// Len returns the number of registered devices.
func (t *DeviceTable) Len() int { return len(t.records) }

func (t *DeviceTable) find(name string) (Device, int, bool) {
	for i, box := range t.records {
		if d := decodeDevice(box.Bytes()); d.Name == name {
			return d, i, true
		}
	}
	return Device{}, 0, false
}

func decodeDevice(rec []byte) Device {
	n := int(rec[devNameLenOffset])
	return Device{
		Name: string(rec[devNameOffset : devNameOffset+n]),
		Base: uintptr(format.ReadU64(rec, devBaseOffset)),
		Kind: DeviceKind(format.ReadU32(rec, devKindOffset)),
	}
}
