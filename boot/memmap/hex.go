package memmap

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Hex is an address or size scalar. It decodes from hex (0x...), octal
// (0o...), binary (0b...) or decimal, with optional underscores, and encodes
// as hex.
type Hex uintptr

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *Hex) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected a scalar", ErrBadNumber, value.Line)
	}
	n, err := strconv.ParseUint(value.Value, 0, strconv.IntSize)
	if err != nil {
		return fmt.Errorf("%w: line %d: %q", ErrBadNumber, value.Line, value.Value)
	}
	*h = Hex(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (h Hex) MarshalYAML() (any, error) {
	return h.String(), nil
}

func (h Hex) String() string {
	return fmt.Sprintf("%#x", uintptr(h))
}
