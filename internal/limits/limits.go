// Package limits tracks system-wide resource limits the core enforces,
// defaulting to the caps recovered from original_source/kernel.c.
package limits

import "sync/atomic"

// Sysatomic_t is an atomically adjustable numeric limit.
type Sysatomic_t int64

// Given increases the limit by n.
func (s *Sysatomic_t) Given(n uint) {
	atomic.AddInt64((*int64)(s), int64(n))
}

// Taken tries to decrement the limit by n, returning false (and leaving
// the limit unchanged) if that would drive it negative.
func (s *Sysatomic_t) Taken(n uint) bool {
	if atomic.AddInt64((*int64)(s), -int64(n)) >= 0 {
		return true
	}
	atomic.AddInt64((*int64)(s), int64(n))
	return false
}

// Take decrements the limit by one.
func (s *Sysatomic_t) Take() bool { return s.Taken(1) }

// Give increments the limit by one.
func (s *Sysatomic_t) Give() { s.Given(1) }

// Get reads the current value.
func (s *Sysatomic_t) Get() int64 { return atomic.LoadInt64((*int64)(s)) }

// Syslimit_t holds the configured system-wide limits.
type Syslimit_t struct {
	Sysprocs int          // max processes on the ring (MAX_PROCESSES)
	Vnodes   int          // max live inodes
	Fds      Sysatomic_t  // max open file objects system-wide
	Mounts   int          // max mount table rows
	Blocks   int          // max kernel-heap pages outstanding
}

// MkSysLimit returns the default limit set, matching original_source's
// MAX_PROCESSES / MAX_DEVICES / MAX_FILESYSTEMS #defines.
func MkSysLimit() *Syslimit_t {
	return &Syslimit_t{
		Sysprocs: 256,
		Vnodes:   20000,
		Fds:      8192,
		Mounts:   32,
		Blocks:   1 << 18,
	}
}
