// Package klog is the kernel's minimal boot/diagnostic logger: a leveled
// Printf gated by a package boolean, the same shape as the teacher's
// stats.Stats/stats.Timing toggles rather than a pulled-in logging
// framework (the teacher itself logs through plain fmt/log, see
// kernel/chentry.go).
package klog

import (
	"fmt"
	"os"
)

// Verbose gates Debugf output; boot always emits Infof.
var Verbose = false

// Infof prints an unconditional boot/diagnostic message.
func Infof(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[bxkernel] "+format+"\n", args...)
}

// Debugf prints only when Verbose is set.
func Debugf(format string, args ...interface{}) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "[bxkernel debug] "+format+"\n", args...)
	}
}
