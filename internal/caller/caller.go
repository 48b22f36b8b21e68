// Package caller dumps the Go call stack for internal invariant
// violations, matching spec.md §7's "implementations should assert them"
// directive. Adapted from the teacher's caller package, trimmed of the
// distinct-caller-path deduplication machinery that package also provided
// (no SPEC_FULL.md component needs it: the core only ever asserts from a
// handful of fixed call sites, not from a hot loop that would benefit from
// sampling distinct stacks).
package caller

import (
	"fmt"
	"runtime"
)

// Dump formats the call stack starting at runtime.Caller(start), one frame
// per line: start 0 is Dump itself, 1 the caller of Dump.
func Dump(start int) string {
	s := ""
	for i := start; ; i++ {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if s == "" {
			s = fmt.Sprintf("%s:%d\n", f, l)
		} else {
			s += fmt.Sprintf("\t<-%s:%d\n", f, l)
		}
	}
	return s
}

// Assert panics with msg and a call-stack dump if cond is false. Used at
// the handful of fixed points spec.md §7 says must never fire in practice
// (e.g. a present PTE with a zero frame number).
func Assert(cond bool, msg string) {
	if !cond {
		panic(msg + "\n" + Dump(2))
	}
}
