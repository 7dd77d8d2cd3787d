//go:build linux || darwin || freebsd

package physmem

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func mapAnon(size int) ([]byte, func() error, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return data, unmapper(data), nil
}

func mapFile(path string, size int) ([]byte, func([]byte) error, func() error, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close() // safe before return; mapping keeps pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, nil, nil, err
	}
	if info.Size() < int64(size) {
		// Extends with zeroes.
		if err := f.Truncate(int64(size)); err != nil {
			return nil, nil, nil, err
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, nil, err
	}
	flush := func(b []byte) error {
		return unix.Msync(b, unix.MS_SYNC)
	}
	return data, flush, unmapper(data), nil
}

func unmapper(data []byte) func() error {
	return func() error {
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
}
