package memmap

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is a firmware memory descriptor type. Values match the UEFI
// EFI_MEMORY_TYPE encoding.
type Type uint32

const (
	Reserved Type = iota
	LoaderCode
	LoaderData
	BootServicesCode
	BootServicesData
	RuntimeServicesCode
	RuntimeServicesData
	Conventional
	Unusable
	ACPIReclaim
	ACPINVS
	MMIO
)

var typeNames = [...]string{
	Reserved:            "reserved",
	LoaderCode:          "loader_code",
	LoaderData:          "loader_data",
	BootServicesCode:    "boot_services_code",
	BootServicesData:    "boot_services_data",
	RuntimeServicesCode: "runtime_services_code",
	RuntimeServicesData: "runtime_services_data",
	Conventional:        "conventional",
	Unusable:            "unusable",
	ACPIReclaim:         "acpi_reclaim",
	ACPINVS:             "acpi_nvs",
	MMIO:                "mmio",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint32(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint32(t))
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText accepts a type name, case-insensitively, or its numeric value.
func (t *Type) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range typeNames {
		if s == name {
			*t = Type(i)
			return nil
		}
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil || n >= uint64(len(typeNames)) {
		return fmt.Errorf("%w: %q", ErrUnknownType, text)
	}
	*t = Type(n)
	return nil
}
