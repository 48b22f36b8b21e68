package irq

import "github.com/BXS-86/kernel/internal/defs"

// PS/2 keyboard ports, per spec.md §6.
const (
	kbdData   = 0x60
	kbdStatus = 0x64
)

// ConsoleSink receives translated characters and console-switch requests;
// internal/console.Console_t satisfies this.
type ConsoleSink interface {
	PushInput(ch byte)
	Switch(n int) defs.Err_t
}

// Keyboard_t tracks per-key state and the shift/ctrl/alt modifiers,
// translating PS/2 scancodes to ASCII via the keymap in keymap.go, per
// spec.md §4.7.
type Keyboard_t struct {
	down  [256]bool
	shift bool
	ctrl  bool
	alt   bool
}

// Handle reads one scancode from io and, depending on what it is, updates
// modifier state, switches the active console (Ctrl+Alt+F1..F10), or
// translates and pushes an ASCII character to sink.
func (k *Keyboard_t) Handle(io PortIO, sink ConsoleSink) {
	sc := io.In8(kbdData)
	release := sc&scReleaseMask != 0
	code := sc &^ scReleaseMask
	k.down[code] = !release

	switch code {
	case scLeftShift, scRightShift:
		k.shift = !release
		return
	case scLeftCtrl:
		k.ctrl = !release
		return
	case scLeftAlt:
		k.alt = !release
		return
	}

	if release {
		return
	}

	if k.ctrl && k.alt && code >= scF1First && code <= scF10Last {
		sink.Switch(int(code - scF1First))
		return
	}

	if int(code) >= len(unshifted) {
		return
	}
	table := unshifted
	if k.shift {
		table = shifted
	}
	ch := table[code]
	if ch != 0 {
		sink.PushInput(ch)
	}
}
