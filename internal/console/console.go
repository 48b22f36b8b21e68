// Package console implements the 80x25 VGA text console and its hosted
// stand-in: spec.md §6 specifies a physical framebuffer at 0xB8000 with
// cells packed as attr<<8|char, putchar/clear/switch, and newline
// scrolling. Since this module runs hosted rather than on real hardware,
// the framebuffer is a plain Go array and — following the pattern in
// smoynes-elsie's internal/tty package — a real terminal (via x/term) can
// be attached so the console is interactively usable in a shell.
package console

import (
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/BXS-86/kernel/internal/circbuf"
	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/mem"
)

const (
	Width       = 80
	Height      = 25
	NumConsoles = 12
	DefaultAttr = 0x07
)

// Console_t is one of the NumConsoles virtual text screens, selected by
// Switch. Only the active console's cells are what Snapshot exposes.
type Console_t struct {
	screens [NumConsoles][Width * Height]uint16
	active  int
	row     int
	col     int
	input   circbuf.Circbuf_t

	// Mirror, when non-nil, receives every byte written to the active
	// screen (e.g. a host terminal); see Attach.
	Mirror func(b byte)
}

// New constructs a console with all screens blanked and the keyboard input
// queue backed by pfa.
func New(pfa *mem.PFA_t) *Console_t {
	c := &Console_t{}
	c.input.Init(4096, pfa)
	for s := range c.screens {
		c.clearScreen(s)
	}
	return c
}

func (c *Console_t) blankCell() uint16 {
	return uint16(DefaultAttr)<<8 | uint16(' ')
}

func (c *Console_t) clearScreen(s int) {
	b := c.blankCell()
	for i := range c.screens[s] {
		c.screens[s][i] = b
	}
}

// Clear blanks the active screen and homes the cursor.
func (c *Console_t) Clear() {
	c.clearScreen(c.active)
	c.row, c.col = 0, 0
}

// Switch changes the active screen; n must be in [0, NumConsoles).
func (c *Console_t) Switch(n int) defs.Err_t {
	if n < 0 || n >= NumConsoles {
		return defs.Errno(defs.InvalidArgument)
	}
	c.active = n
	return 0
}

// Active returns the currently selected screen index.
func (c *Console_t) Active() int { return c.active }

func (c *Console_t) scroll() {
	scr := &c.screens[c.active]
	copy(scr[:(Height-1)*Width], scr[Width:])
	blank := c.blankCell()
	for i := (Height - 1) * Width; i < Height*Width; i++ {
		scr[i] = blank
	}
	c.row = Height - 1
}

// Putchar writes one character at the cursor, advancing it and scrolling
// on newline past the last row, per spec.md §6.
func (c *Console_t) Putchar(ch byte) {
	if c.Mirror != nil {
		c.Mirror(ch)
	}
	if ch == '\n' {
		c.row++
		c.col = 0
	} else {
		idx := c.row*Width + c.col
		c.screens[c.active][idx] = uint16(DefaultAttr)<<8 | uint16(ch)
		c.col++
		if c.col >= Width {
			c.col = 0
			c.row++
		}
	}
	if c.row >= Height {
		c.scroll()
	}
}

// WriteOut implements vfs.ConsoleDevice for descriptors 1 and 2.
func (c *Console_t) WriteOut(buf []byte) (int, defs.Err_t) {
	for _, b := range buf {
		c.Putchar(b)
	}
	return len(buf), 0
}

// ReadIn implements vfs.ConsoleDevice for descriptor 0 (and any non-backed
// descriptor): it drains whatever the keyboard IRQ handler queued.
func (c *Console_t) ReadIn(buf []byte) (int, defs.Err_t) {
	return c.input.Read(buf)
}

// PushInput queues one translated keyboard character, called by the
// keyboard interrupt handler (internal/irq).
func (c *Console_t) PushInput(ch byte) {
	c.input.PushByte(ch)
}

// Snapshot decodes the active screen's character cells (ignoring
// attributes) from CP437 to UTF-8, giving a human-readable dump of what is
// currently on screen — useful for tests and for a debug tool, grounding
// golang.org/x/text/encoding/charmap in a concrete consumer.
func (c *Console_t) Snapshot() string {
	var raw [Height * Width]byte
	for i, cell := range c.screens[c.active] {
		raw[i] = byte(cell)
	}
	var sb strings.Builder
	dec := charmap.CodePage437.NewDecoder()
	for row := 0; row < Height; row++ {
		line, _ := dec.String(string(raw[row*Width : (row+1)*Width]))
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
