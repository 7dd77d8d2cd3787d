package slab

import "errors"

// Construction errors, returned by New in this order of precedence.
var (
	// ErrInvalidSize indicates empty storage.
	ErrInvalidSize = errors.New("slab: storage size is zero")

	// ErrStorageTooSmall indicates storage that cannot hold two slabs.
	ErrStorageTooSmall = errors.New("slab: storage smaller than two slabs")

	// ErrNonDivisibleSize indicates storage that is not a whole number of slabs.
	ErrNonDivisibleSize = errors.New("slab: storage size not a multiple of slab size")

	// ErrOutOfBounds indicates storage not backed by physical memory.
	ErrOutOfBounds = errors.New("slab: storage out of bounds")

	// ErrInvalidAlignment indicates a storage base that does not satisfy the slab alignment.
	ErrInvalidAlignment = errors.New("slab: storage misaligned for slab layout")
)
