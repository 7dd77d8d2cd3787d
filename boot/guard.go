package boot

import (
	"errors"
	"fmt"

	"github.com/raccog/caliga-bootloader/boot/alloc"
	"github.com/raccog/caliga-bootloader/boot/diag"
)

// ErrHalted is returned by Guard when halt returns after a fatal panic.
var ErrHalted = errors.New("boot: halted")

// Guard runs fn as the loader's top level. An error from fn is reported on
// ch and returned. A panic is reported as FATAL on a stolen handle of ch,
// then halt is called. On hardware halt never returns; when it does,
// Guard returns an error wrapping ErrHalted. There are no retries.
func Guard(ch *diag.Channel, halt func(), fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		rep := diag.Report{Kind: diag.KindPanic}
		if e, ok := r.(error); ok {
			rep = reportFor(e)
			if rep.Kind == diag.KindBoot {
				rep.Kind = diag.KindPanic
			}
		} else {
			rep.Err = fmt.Errorf("%v", r)
		}
		_ = ch.Steal().Fatal(rep)
		halt()
		err = fmt.Errorf("%w: %w", ErrHalted, rep.Err)
	}()

	if err := fn(); err != nil {
		_ = ch.Fatal(reportFor(err))
		return err
	}
	return nil
}

// reportFor classifies err and lifts the address and layout out of an
// alloc.Fault.
func reportFor(err error) diag.Report {
	rep := diag.Report{Kind: diag.KindBoot, Err: err}
	switch {
	case errors.Is(err, alloc.ErrInvariant):
		rep.Kind = diag.KindInvariant
	case errors.Is(err, alloc.ErrAlloc):
		rep.Kind = diag.KindAlloc
	}
	var f *alloc.Fault
	if errors.As(err, &f) {
		rep.Addr = f.Addr
		rep.Layout = f.Layout
	}
	return rep
}
