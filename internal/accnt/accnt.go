// Package accnt accumulates per-process CPU accounting, adapted from the
// teacher's accnt package. Samples are later exported as pprof profile
// samples by the D_PROF character device (see internal/proc).
package accnt

import (
	"sync"
	"sync/atomic"
)

// Accnt_t accumulates a process's user and system time in nanoseconds.
type Accnt_t struct {
	Userns int64
	Sysns  int64
	mu     sync.Mutex
}

// Utadd adds delta nanoseconds of user time.
func (a *Accnt_t) Utadd(delta int64) {
	atomic.AddInt64(&a.Userns, delta)
}

// Systadd adds delta nanoseconds of system time.
func (a *Accnt_t) Systadd(delta int64) {
	atomic.AddInt64(&a.Sysns, delta)
}

// Add merges another record into this one under lock, so a parent can fold
// in a reaped child's usage.
func (a *Accnt_t) Add(n *Accnt_t) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Userns += atomic.LoadInt64(&n.Userns)
	a.Sysns += atomic.LoadInt64(&n.Sysns)
}

// Snapshot returns a consistent (userns, sysns) pair.
func (a *Accnt_t) Snapshot() (int64, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Userns, a.Sysns
}
