// Package msi allocates interrupt vectors above the remapped PIC range,
// adapted from the teacher's msi package. The legacy PIC (spec.md §4.7)
// only drives the timer and keyboard; this table exists so a device
// registered through internal/device can claim a free vector without
// colliding with either PIC line.
package msi

import "sync"

// Vec_t is an interrupt vector number.
type Vec_t uint

// PICBase is the first vector available after PIC remap (0x20), so MSI
// vectors start above the 16 lines the master/slave 8259 pair can raise.
const PICBase Vec_t = 0x20

// pool tracks which of the 56..63 MSI-style vectors are free, as in the
// teacher's package.
type pool_t struct {
	mu    sync.Mutex
	avail map[Vec_t]bool
}

var pool = pool_t{avail: map[Vec_t]bool{
	56: true, 57: true, 58: true, 59: true, 60: true, 61: true, 62: true, 63: true,
}}

// Alloc claims an available vector, panicking if none remain — a
// configuration error discovered at device-registration time, not a
// runtime condition a syscall handler must recover from.
func Alloc() Vec_t {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	for v := range pool.avail {
		delete(pool.avail, v)
		return v
	}
	panic("no more interrupt vectors")
}

// Free releases a previously allocated vector.
func Free(v Vec_t) {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if pool.avail[v] {
		panic("double free of interrupt vector")
	}
	pool.avail[v] = true
}
