// Package oommsg carries out-of-memory notifications from the PFA/kernel
// heap to anything listening (boot-time diagnostics, tests), mirroring the
// teacher's oommsg package.
package oommsg

// Oommsg_t is sent on a Ch when memory is exhausted.
type Oommsg_t struct {
	Need   int
	Resume chan bool
}

// NewCh allocates a fresh, unbuffered OOM notification channel.
func NewCh() chan Oommsg_t {
	return make(chan Oommsg_t)
}

// Notify sends need on ch if someone is listening, otherwise returns
// immediately (best-effort; the core never blocks a syscall on a logger).
func Notify(ch chan Oommsg_t, need int) {
	select {
	case ch <- Oommsg_t{Need: need, Resume: nil}:
	default:
	}
}
