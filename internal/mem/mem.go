// Package mem implements the physical memory map and page frame allocator
// (spec.md §3 "Physical memory map", §4.1 PFA) plus the page-table-entry
// bit layout shared with internal/vmm. Physical memory is modelled as a
// single byte-addressable slice (PhysRAM) so every invariant in spec.md §8
// is directly observable in tests without real hardware, the same
// trade-off gopheros/elsie make to keep kernel logic host-testable.
package mem

import (
	"encoding/binary"
	"sync"

	"github.com/BXS-86/kernel/internal/oommsg"
)

// PGSHIFT is the base-2 exponent of the page size.
const PGSHIFT = 12

// PGSIZE is the size of a single page/frame in bytes.
const PGSIZE = 1 << PGSHIFT

// PGOFFSET masks the in-page offset of an address.
const PGOFFSET Pa_t = PGSIZE - 1

// PGMASK masks the page-aligned part of an address.
const PGMASK Pa_t = ^PGOFFSET

// Page table entry bits, x86-64 layout.
const (
	PTE_P  Pa_t = 1 << 0 // present
	PTE_W  Pa_t = 1 << 1 // writable
	PTE_U  Pa_t = 1 << 2 // user-accessible
	PTE_PWT Pa_t = 1 << 3 // write-through
	PTE_PCD Pa_t = 1 << 4 // cache-disable
	PTE_A  Pa_t = 1 << 5 // accessed
	PTE_D  Pa_t = 1 << 6 // dirty
	PTE_PS Pa_t = 1 << 7 // huge page
	PTE_G  Pa_t = 1 << 8 // global

	PTE_ADDR Pa_t = 0x000ffffffffff000 // bits 12-51, the 40-bit frame number
	PTE_NX   Pa_t = 1 << 63            // no-execute
)

// Pa_t is a physical address.
type Pa_t uint64

// Va_t is a virtual address.
type Va_t uint64

// KernelEnd is the lowest physical address the PFA may ever return, per the
// invariant "no byte below the kernel image is ever returned by the PFA".
const KernelEnd Pa_t = 2 << 20 // 2 MiB

// region_t is a contiguous run of physical memory of a given type.
type region_t struct {
	start Pa_t
	end   Pa_t // exclusive
	used  bool
}

// PFA_t is the page frame allocator: an ordered region list plus a LIFO
// free list whose link word lives in the freed frame itself.
type PFA_t struct {
	mu       sync.Mutex
	ram      []byte
	regions  []region_t
	freeHead Pa_t // 0 means empty; Pa_t(0) is never a valid frame (kernel image)
	capacity int  // total allocatable bytes at construction
	used     int  // bytes currently allocated (not yet freed)
	oom      chan oommsg.Oommsg_t
}

// Listen registers ch to receive an Oommsg_t every time Alloc finds the
// allocator exhausted, per SPEC_FULL.md's oommsg wiring.
func (p *PFA_t) Listen(ch chan oommsg.Oommsg_t) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.oom = ch
}

// NewPFA builds a PFA over ramSize bytes of simulated RAM, with a single
// initial region covering [KernelEnd, ramSize).
func NewPFA(ramSize int) *PFA_t {
	if ramSize <= int(KernelEnd) {
		panic("not enough simulated RAM for the kernel image")
	}
	p := &PFA_t{
		ram:      make([]byte, ramSize),
		regions:  []region_t{{start: KernelEnd, end: Pa_t(ramSize)}},
		capacity: ramSize - int(KernelEnd),
	}
	return p
}

// RAM exposes the backing simulated physical memory for direct access by
// the VMM (reading/writing page table frames) and device models.
func (p *PFA_t) RAM() []byte { return p.ram }

// Capacity returns the total number of allocatable bytes.
func (p *PFA_t) Capacity() int { return p.capacity }

// Used returns the number of bytes currently allocated (not yet freed).
func (p *PFA_t) Used() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.used
}

// Conserved reports whether free bytes plus allocated-but-unfreed bytes
// equals the original capacity — the invariant spec.md §8 requires.
func (p *PFA_t) Conserved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	free := p.freeBytesLocked()
	return free+p.used == p.capacity
}

func (p *PFA_t) freeBytesLocked() int {
	free := 0
	for _, r := range p.regions {
		if !r.used {
			free += int(r.end - r.start)
		}
	}
	for fh := p.freeHead; fh != 0; {
		free += PGSIZE
		fh = Pa_t(binary.LittleEndian.Uint64(p.ram[fh : fh+8]))
	}
	return free
}

// Alloc hands out n physically contiguous 4 KiB frames, or returns
// (0, false) on exhaustion. A single frame is served from the LIFO free
// list first; a multi-frame request always carves from a region, since the
// free list offers no contiguity guarantee.
func (p *PFA_t) Alloc(n int) (Pa_t, bool) {
	if n <= 0 {
		panic("bad frame count")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if n == 1 && p.freeHead != 0 {
		pa := p.freeHead
		p.freeHead = Pa_t(binary.LittleEndian.Uint64(p.ram[pa : pa+8]))
		p.used += PGSIZE
		return pa, true
	}

	need := Pa_t(n * PGSIZE)
	for i := range p.regions {
		r := &p.regions[i]
		if r.used || r.end-r.start < need {
			continue
		}
		pa := r.start
		r.start += need
		p.used += int(need)
		return pa, true
	}
	if p.oom != nil {
		oommsg.Notify(p.oom, int(need))
	}
	return 0, false
}

// AllocZeroed allocates a single frame and zeroes it, the behaviour every
// VMM intermediate-table allocation requires.
func (p *PFA_t) AllocZeroed() (Pa_t, bool) {
	pa, ok := p.Alloc(1)
	if !ok {
		return 0, false
	}
	p.Zero(pa)
	return pa, true
}

// Zero clears the frame at pa.
func (p *PFA_t) Zero(pa Pa_t) {
	clear(p.ram[pa : pa+PGSIZE])
}

// Free returns n frames starting at pa to the allocator. Frames are pushed
// onto the free list individually; a contiguous run freed together is
// simply n pushes, matching the single-frame free-list invariant.
func (p *PFA_t) Free(pa Pa_t, n int) {
	if pa < KernelEnd {
		panic("freeing below the kernel image")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < n; i++ {
		frame := pa + Pa_t(i*PGSIZE)
		binary.LittleEndian.PutUint64(p.ram[frame:frame+8], uint64(p.freeHead))
		p.freeHead = frame
		p.used -= PGSIZE
	}
}

// ReadU64 reads a little-endian 64-bit word from physical memory.
func (p *PFA_t) ReadU64(pa Pa_t) uint64 {
	return binary.LittleEndian.Uint64(p.ram[pa : pa+8])
}

// WriteU64 writes a little-endian 64-bit word to physical memory.
func (p *PFA_t) WriteU64(pa Pa_t, v uint64) {
	binary.LittleEndian.PutUint64(p.ram[pa:pa+8], v)
}
