// Package diag is the boot loader's diagnostic channel: a byte sink for log
// output and the last words of a fatal halt.
//
// Two sinks exist in practice. A serial UART takes bytes verbatim, optionally
// translated to code page 437 for terminals that expect it. The UEFI text
// console takes UCS-2 characters, so text is encoded as UTF-16LE with CRLF
// line endings.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Channel is an owning handle to a diagnostic sink. Writes through one
// handle are serialized.
type Channel struct {
	mu   sync.Mutex
	w    io.Writer
	name string
	enc  encoding.Encoding // nil writes bytes through unchanged
	crlf bool
}

// NewUART returns a channel writing to a serial sink. With cp437 set, text is
// translated to code page 437 and runes it cannot represent become SUB (0x1A).
func NewUART(w io.Writer, cp437 bool) *Channel {
	c := &Channel{w: w, name: "uart"}
	if cp437 {
		c.enc = charmap.CodePage437
	}
	return c
}

// NewUEFIConsole returns a channel writing UTF-16LE text with CRLF line
// endings, the format of the firmware's simple text output protocol.
func NewUEFIConsole(w io.Writer) *Channel {
	return &Channel{
		w:    w,
		name: "uefi",
		enc:  unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
		crlf: true,
	}
}

// Name returns "uart" or "uefi".
func (c *Channel) Name() string { return c.name }

// Steal returns a second owning handle on the same sink. Only the fatal
// path uses it: a report must not wait on a handle whose owner panicked.
func (c *Channel) Steal() *Channel {
	return &Channel{w: c.w, name: c.name, enc: c.enc, crlf: c.crlf}
}

// Write encodes p, UTF-8 text, for the sink and writes it. It returns
// len(p) on success.
func (c *Channel) Write(p []byte) (int, error) {
	out, err := c.encode(p)
	if err != nil {
		return 0, fmt.Errorf("diag: %s: encode: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(out); err != nil {
		return 0, fmt.Errorf("diag: %s: write: %w", c.name, err)
	}
	return len(p), nil
}

// Printf formats a line onto the channel.
func (c *Channel) Printf(format string, args ...any) error {
	_, err := fmt.Fprintf(c, format, args...)
	return err
}

func (c *Channel) encode(p []byte) ([]byte, error) {
	if c.crlf {
		p = bytes.ReplaceAll(p, []byte("\r\n"), []byte("\n"))
		p = bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	}
	if c.enc == nil {
		return p, nil
	}
	out, _, err := transform.Bytes(encoding.ReplaceUnsupported(c.enc.NewEncoder()), p)
	return out, err
}
