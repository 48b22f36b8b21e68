package vmm

import "golang.org/x/arch/x86/x86asm"

// DisasmAround decodes and formats the instructions starting at code,
// supporting the "implementations should assert them" directive spec.md
// §7 gives for internal invariant violations: when walk finds a present
// entry with a zero frame number, the caller can pass the faulting RIP's
// surrounding bytes here to get a human-readable trace alongside the
// panic rather than a bare hex dump.
func DisasmAround(code []byte, pc uint64) string {
	var out string
	for off := 0; off < len(code); {
		inst, err := x86asm.Decode(code[off:], 64)
		if err != nil {
			out += "(bad)\n"
			break
		}
		out += x86asm.GNUSyntax(inst, pc+uint64(off), nil) + "\n"
		if inst.Len == 0 {
			break
		}
		off += inst.Len
	}
	return out
}
