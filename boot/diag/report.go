package diag

import (
	"fmt"
	"strings"

	"github.com/raccog/caliga-bootloader/boot/alloc"
)

// Kind classifies a fatal report.
type Kind uint8

const (
	KindPanic     Kind = iota // any other panic
	KindInvariant             // allocator state can no longer be trusted
	KindAlloc                 // allocation failure nothing can recover from
	KindBoot                  // boot sequence step failed
)

func (k Kind) String() string {
	switch k {
	case KindInvariant:
		return "invariant"
	case KindAlloc:
		return "alloc"
	case KindBoot:
		return "boot"
	default:
		return "panic"
	}
}

// Report is the fatal diagnostic written before the loader halts. Addr and
// Layout are zero when they do not apply.
type Report struct {
	Kind   Kind
	Addr   uintptr
	Layout alloc.Layout
	Err    error
}

func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FATAL %s", r.Kind)
	if r.Addr != 0 {
		fmt.Fprintf(&sb, " addr=%#x", r.Addr)
	}
	if r.Layout != (alloc.Layout{}) {
		fmt.Fprintf(&sb, " size=%#x align=%#x", r.Layout.Size(), r.Layout.Align())
	}
	if r.Err != nil {
		fmt.Fprintf(&sb, ": %v", r.Err)
	}
	return sb.String()
}

// Fatal writes r as a single line.
func (c *Channel) Fatal(r Report) error {
	return c.Printf("%s\n", r)
}
