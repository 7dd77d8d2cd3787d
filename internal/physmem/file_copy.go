//go:build !linux && !darwin && !freebsd

package physmem

import (
	"errors"
	"io/fs"
	"os"
)

// mapFile reads the image into memory when shared file mappings are not
// used. The flush function writes the whole image back.
func mapFile(path string, size int) ([]byte, func([]byte) error, func() error, error) {
	data := make([]byte, size)
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil, err
	}
	copy(data, existing)

	flush := func(b []byte) error {
		return os.WriteFile(path, b, 0o600)
	}
	return data, flush, func() error { return nil }, nil
}
