package irq

// unshifted and shifted hold the ASCII translation for the first 60
// scancode-set-1 make codes (0x00..0x3B), per spec.md §4.7. Entries of 0
// produce no console character (modifiers, unmapped keys).
var unshifted = [60]byte{
	0, 27, '1', '2', '3', '4', '5', '6', '7', '8', '9', '0', '-', '=', '\b',
	'\t', 'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', '[', ']', '\n',
	0, 'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ';', '\'', '`',
	0, '\\', 'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/', 0, '*',
	0, ' ', 0, 0,
}

var shifted = [60]byte{
	0, 27, '!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '_', '+', '\b',
	'\t', 'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I', 'O', 'P', '{', '}', '\n',
	0, 'A', 'S', 'D', 'F', 'G', 'H', 'J', 'K', 'L', ':', '"', '~',
	0, '|', 'Z', 'X', 'C', 'V', 'B', 'N', 'M', '<', '>', '?', 0, '*',
	0, ' ', 0, 0,
}

// Modifier scancodes.
const (
	scLeftShift   = 0x2A
	scRightShift  = 0x36
	scLeftCtrl    = 0x1D
	scLeftAlt     = 0x38
	scReleaseMask = 0x80

	scF1First = 0x3B
	scF10Last = 0x44
)
