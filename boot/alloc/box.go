package alloc

import "fmt"

// Box is a single value placed in memory obtained from an Allocator.
type Box struct {
	a      Allocator
	layout Layout
	addr   uintptr
	b      []byte
}

// NewBox allocates l from a and copies init into the start of the
// allocation. init must fit in l.Size().
func NewBox(a Allocator, l Layout, init []byte) (*Box, error) {
	if uintptr(len(init)) > l.Size() {
		return nil, fmt.Errorf("%w: %d byte value does not fit %v", ErrInvalidLayout, len(init), l)
	}
	addr, b, err := a.Allocate(l)
	if err != nil {
		return nil, err
	}
	copy(b, init)
	return &Box{a: a, layout: l, addr: addr, b: b[:l.Size()]}, nil
}

// Addr returns the physical address of the value.
func (x *Box) Addr() uintptr { return x.addr }

// Layout returns the layout the box was allocated with.
func (x *Box) Layout() Layout { return x.layout }

// Bytes returns the live payload, exactly Layout().Size() bytes. It returns
// nil after Free.
func (x *Box) Bytes() []byte { return x.b }

// Free returns the allocation to its allocator. Calling Free again is a no-op.
func (x *Box) Free() {
	if x.b == nil {
		return
	}
	x.a.Deallocate(x.addr, x.layout)
	x.b = nil
}
