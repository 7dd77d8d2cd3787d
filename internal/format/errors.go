package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadStatus indicates a block header carried an unknown status tag.
	ErrBadStatus = errors.New("format: bad block status")
)
