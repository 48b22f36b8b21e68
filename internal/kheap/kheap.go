// Package kheap implements the kernel-internal small-object allocator:
// spec.md §4.3 calls for a bump allocator over a fixed static buffer with
// no general release, acceptable because kernel-internal lifetimes
// dominate. The default size (128 MiB) is recovered from
// original_source/kernel.c's HEAP_SIZE rather than spec.md's 64 MiB
// strawman. New takes the size as an argument; cmd/bxkernel passes
// DefaultSize, and its Config has no heap-size setting.
package kheap

import (
	"sync"

	"github.com/BXS-86/kernel/internal/oommsg"
)

// DefaultSize is the original kernel's HEAP_SIZE.
const DefaultSize = 128 << 20

// MinAlign is the minimum alignment every allocation must satisfy.
const MinAlign = 16

// Heap_t is a bump allocator: kalloc never fails until the buffer is
// exhausted, kfree is a no-op, and krealloc always allocates fresh and
// copies forward.
type Heap_t struct {
	mu   sync.Mutex
	buf  []byte
	next int
	oom  chan oommsg.Oommsg_t
}

// New allocates a Heap_t backed by a size-byte static buffer.
func New(size int) *Heap_t {
	return &Heap_t{buf: make([]byte, size)}
}

// Listen registers ch to receive an Oommsg_t every time Kalloc/Krealloc
// finds the heap exhausted, per SPEC_FULL.md's oommsg wiring.
func (h *Heap_t) Listen(ch chan oommsg.Oommsg_t) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.oom = ch
}

func align(n int) int {
	return (n + MinAlign - 1) &^ (MinAlign - 1)
}

// Kalloc returns an n-byte region, or nil if the heap is exhausted.
func (h *Heap_t) Kalloc(n int) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	start := align(h.next)
	if start+n > len(h.buf) {
		if h.oom != nil {
			oommsg.Notify(h.oom, n)
		}
		return nil
	}
	h.next = start + n
	return h.buf[start : start+n : start+n]
}

// Kcalloc returns an n-byte, zeroed region, or nil if the heap is
// exhausted. A bump allocator's backing buffer starts zeroed and is never
// reused, so this is just Kalloc — kept as a distinct name because the
// spec requires the zeroing guarantee to be explicit at the call site.
func (h *Heap_t) Kcalloc(n int) []byte {
	return h.Kalloc(n)
}

// Kfree is a no-op: nothing handed out by the heap is ever reclaimed.
func (h *Heap_t) Kfree(_ []byte) {}

// Krealloc always allocates a fresh n-byte region and copies min(len(old),
// n) bytes forward.
func (h *Heap_t) Krealloc(old []byte, n int) []byte {
	nb := h.Kalloc(n)
	if nb == nil {
		return nil
	}
	copy(nb, old)
	return nb
}

// Used reports bytes handed out so far, for the D_STAT device.
func (h *Heap_t) Used() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.next
}

// Cap reports the heap's total configured size.
func (h *Heap_t) Cap() int {
	return len(h.buf)
}
