// Package span implements half-open physical address spans. All overlap and
// contiguity decisions of the region allocator go through this type.
package span

import (
	"errors"
	"fmt"

	"github.com/raccog/caliga-bootloader/internal/buf"
)

// ErrOverflow indicates a span whose end would wrap past the address space.
var ErrOverflow = errors.New("span: address overflow")

// Span is the half-open address range [Start, End).
type Span struct {
	Start uintptr
	End   uintptr
}

// New returns the span [start, start+size).
func New(start, size uintptr) (Span, error) {
	end, ok := buf.AddAddr(start, size)
	if !ok {
		return Span{}, fmt.Errorf("%w: start %#x size %#x", ErrOverflow, start, size)
	}
	return Span{Start: start, End: end}, nil
}

// Len returns the number of bytes in s.
func (s Span) Len() uintptr { return s.End - s.Start }

// Empty reports whether s covers no bytes.
func (s Span) Empty() bool { return s.End <= s.Start }

// Contains reports whether addr lies in s.
func (s Span) Contains(addr uintptr) bool {
	return addr >= s.Start && addr < s.End
}

// ContainsSpan reports whether o lies entirely in s.
func (s Span) ContainsSpan(o Span) bool {
	return o.Start >= s.Start && o.End <= s.End
}

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool {
	if s.Empty() || o.Empty() {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

// Adjacent reports whether s and o touch with no gap and no overlap.
func (s Span) Adjacent(o Span) bool {
	return s.End == o.Start || o.End == s.Start
}

// Before reports whether s starts below o.
func (s Span) Before(o Span) bool { return s.Start < o.Start }

func (s Span) String() string {
	return fmt.Sprintf("[%#x, %#x)", s.Start, s.End)
}
