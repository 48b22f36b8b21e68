// Terminal hosting for the console, following the pattern in
// smoynes-elsie's internal/tty package: a real terminal stands in for
// hardware, driven through golang.org/x/term so console output shows up
// on a real screen outside of unit tests.
package console

import (
	"os"

	"golang.org/x/term"
)

// HostTerminal wires a Console_t to the process's controlling terminal:
// output is mirrored there while the terminal is in raw mode. Nothing is
// read from the terminal; keystrokes typed there do not reach the
// console's input queue.
type HostTerminal struct {
	fd    int
	state *term.State
}

// Attach puts the controlling terminal into raw mode and mirrors console
// output to it. Restore must be called to leave raw mode.
func Attach(c *Console_t) (*HostTerminal, error) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNotATTY
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	h := &HostTerminal{fd: fd, state: state}
	c.Mirror = func(b byte) {
		os.Stdout.Write([]byte{b})
	}
	return h, nil
}

// Restore leaves raw mode.
func (h *HostTerminal) Restore() error {
	return term.Restore(h.fd, h.state)
}

var errNotATTY = attachError("console: stdout is not a terminal")

type attachError string

func (e attachError) Error() string { return string(e) }
