// Package vmm implements the virtual memory manager: 4-level x86-64 page
// tables built and edited on top of internal/mem's page frame allocator,
// per spec.md §4.2. Addresses are broken down with the standard 9/9/9/9/12
// split (PML4/PDP/PD/PT/offset); an address space is identified by the
// physical address of its PML4, matching the teacher's vm package's
// identification of an address space by its top-level table.
package vmm

import (
	"github.com/BXS-86/kernel/internal/caller"
	"github.com/BXS-86/kernel/internal/mem"
)

// Map flags, as named in spec.md §4.2.
const (
	FlagUser  = 1
	FlagWrite = 2
	FlagNX    = 4
)

// HighHalfBase is the virtual address of the kernel's high-half window.
const HighHalfBase mem.Va_t = 0xFFFFFFFF80000000

// IdentityMapSize is how much of low memory the kernel identity-maps.
const IdentityMapSize = 4 << 30 // 4 GiB

// HighHalfMirrorSize is how much of low memory the high-half window mirrors.
const HighHalfMirrorSize = 1 << 30 // 1 GiB

// VMM_t builds and edits page tables using a shared page frame allocator.
type VMM_t struct {
	pfa        *mem.PFA_t
	kernelPML4 mem.Pa_t
}

// NewVMM constructs a VMM_t and the initial kernel address space: identity
// mapping of the first 4 GiB plus the high-half mirror of the first 1 GiB,
// as spec.md §4.2 "Algorithmic rules" requires.
func NewVMM(pfa *mem.PFA_t) (*VMM_t, bool) {
	v := &VMM_t{pfa: pfa}
	pml4, ok := pfa.AllocZeroed()
	if !ok {
		return nil, false
	}
	v.kernelPML4 = pml4

	for pa := mem.Pa_t(0); pa < IdentityMapSize; pa += mem.PGSIZE {
		if !v.mapIn(pml4, mem.Va_t(pa), pa, FlagWrite) {
			return nil, false
		}
	}
	for pa := mem.Pa_t(0); pa < HighHalfMirrorSize; pa += mem.PGSIZE {
		if !v.mapIn(pml4, HighHalfBase+mem.Va_t(pa), pa, FlagWrite) {
			return nil, false
		}
	}
	return v, true
}

// KernelAS returns the PML4 physical address of the kernel address space.
func (v *VMM_t) KernelAS() mem.Pa_t { return v.kernelPML4 }

// idx breaks a virtual address into its five components.
func idx(va mem.Va_t) (pml4i, pdpi, pdi, pti int, off uint64) {
	u := uint64(va)
	pml4i = int((u >> 39) & 0x1ff)
	pdpi = int((u >> 30) & 0x1ff)
	pdi = int((u >> 21) & 0x1ff)
	pti = int((u >> 12) & 0x1ff)
	off = u & 0xfff
	return
}

func (v *VMM_t) entry(table mem.Pa_t, i int) mem.Pa_t {
	return mem.Pa_t(v.pfa.ReadU64(table + mem.Pa_t(i*8)))
}

func (v *VMM_t) setEntry(table mem.Pa_t, i int, e mem.Pa_t) {
	v.pfa.WriteU64(table+mem.Pa_t(i*8), uint64(e))
}

// walk descends from pml4 to the leaf PT for va, allocating and zeroing any
// missing intermediate table when create is true. It returns the PT's
// physical address and the index of the leaf entry within it.
func (v *VMM_t) walk(pml4 mem.Pa_t, va mem.Va_t, create bool) (pt mem.Pa_t, leaf int, ok bool) {
	pml4i, pdpi, pdi, pti, _ := idx(va)
	table := pml4
	for _, i := range []int{pml4i, pdpi, pdi} {
		e := v.entry(table, i)
		if e&mem.PTE_P == 0 {
			if !create {
				return 0, 0, false
			}
			child, got := v.pfa.AllocZeroed()
			if !got {
				return 0, 0, false
			}
			e = mem.Pa_t(child) | mem.PTE_P | mem.PTE_W | mem.PTE_U
			v.setEntry(table, i, e)
		}
		if e&mem.PTE_ADDR == 0 {
			ram := v.pfa.RAM()
			lo, hi := table, table+64
			if int(hi) > len(ram) {
				hi = mem.Pa_t(len(ram))
			}
			panic("present entry with zero frame number\n" + DisasmAround(ram[lo:hi], uint64(lo)) +
				"called from:\n" + caller.Dump(1))
		}
		table = e & mem.PTE_ADDR
	}
	return table, pti, true
}

func flagsToPTE(pa mem.Pa_t, flags int) mem.Pa_t {
	e := (pa &^ mem.PGOFFSET) | mem.PTE_P
	if flags&FlagWrite != 0 {
		e |= mem.PTE_W
	}
	if flags&FlagUser != 0 {
		e |= mem.PTE_U
	}
	if flags&FlagNX != 0 {
		e |= mem.PTE_NX
	}
	return e
}

// mapIn is the internal mapping primitive shared by Map and bootstrap; it
// skips TLB invalidation (there is no real TLB in this model — each
// Translate call walks the tables fresh).
func (v *VMM_t) mapIn(pml4 mem.Pa_t, va mem.Va_t, pa mem.Pa_t, flags int) bool {
	pt, leaf, ok := v.walk(pml4, va, true)
	if !ok {
		return false
	}
	v.setEntry(pt, leaf, flagsToPTE(pa, flags))
	return true
}

// Map installs va -> pa with the given flags, materializing any missing
// intermediate table. It returns false on allocator exhaustion (-ENOMEM at
// the caller).
func (v *VMM_t) Map(pml4 mem.Pa_t, va mem.Va_t, pa mem.Pa_t, flags int) bool {
	return v.mapIn(pml4, va, pa, flags)
}

// Unmap clears the leaf entry for va. Intermediate tables are left in
// place, reclaimed only when the address space is destroyed.
func (v *VMM_t) Unmap(pml4 mem.Pa_t, va mem.Va_t) {
	pt, leaf, ok := v.walk(pml4, va, false)
	if !ok {
		return
	}
	v.setEntry(pt, leaf, 0)
}

// Translate returns the physical address mapped for va, or (0, false) if
// any level of the walk is absent.
func (v *VMM_t) Translate(pml4 mem.Pa_t, va mem.Va_t) (mem.Pa_t, bool) {
	pt, leaf, ok := v.walk(pml4, va, false)
	if !ok {
		return 0, false
	}
	e := v.entry(pt, leaf)
	if e&mem.PTE_P == 0 {
		return 0, false
	}
	_, _, _, _, off := idx(va)
	return (e & mem.PTE_ADDR) | mem.Pa_t(off), true
}

// NewAddressSpace allocates a fresh PML4 and copies the kernel's high-half
// PML4 entries (256..511) so the high half is shared across every address
// space while the low half starts entirely absent.
func (v *VMM_t) NewAddressSpace() (mem.Pa_t, bool) {
	pml4, ok := v.pfa.AllocZeroed()
	if !ok {
		return 0, false
	}
	for i := 256; i < 512; i++ {
		v.setEntry(pml4, i, v.entry(v.kernelPML4, i))
	}
	return pml4, true
}

// CopyAddressSpace duplicates every mapped low-half page of src into a
// freshly allocated address space: a real page-by-page copy, not
// copy-on-write (spec.md's Non-goals exclude COW fork). Returns (0, false)
// on allocator exhaustion, in which case the caller should treat it as
// -ENOMEM; the partly built copy has already been destroyed here, so the
// caller has nothing to clean up.
func (v *VMM_t) CopyAddressSpace(src mem.Pa_t) (mem.Pa_t, bool) {
	dst, ok := v.NewAddressSpace()
	if !ok {
		return 0, false
	}
	ram := v.pfa.RAM()
	ok = v.walkLowHalf(src, func(va mem.Va_t, pa mem.Pa_t, flags int) bool {
		newFrame, got := v.pfa.Alloc(1)
		if !got {
			return false
		}
		copy(ram[newFrame:newFrame+mem.PGSIZE], ram[pa:pa+mem.PGSIZE])
		return v.mapIn(dst, va, newFrame, flags)
	})
	if !ok {
		v.DestroyAddressSpace(dst)
		return 0, false
	}
	return dst, true
}

// walkLowHalf calls fn for every present leaf mapping in the low half
// (user space) of pml4, stopping and returning false the first time fn
// does.
func (v *VMM_t) walkLowHalf(pml4 mem.Pa_t, fn func(va mem.Va_t, pa mem.Pa_t, flags int) bool) bool {
	for i4 := 0; i4 < 256; i4++ {
		e4 := v.entry(pml4, i4)
		if e4&mem.PTE_P == 0 {
			continue
		}
		pdp := e4 & mem.PTE_ADDR
		for i3 := 0; i3 < 512; i3++ {
			e3 := v.entry(pdp, i3)
			if e3&mem.PTE_P == 0 {
				continue
			}
			pd := e3 & mem.PTE_ADDR
			for i2 := 0; i2 < 512; i2++ {
				e2 := v.entry(pd, i2)
				if e2&mem.PTE_P == 0 {
					continue
				}
				pt := e2 & mem.PTE_ADDR
				for i1 := 0; i1 < 512; i1++ {
					e1 := v.entry(pt, i1)
					if e1&mem.PTE_P == 0 {
						continue
					}
					va := mem.Va_t((uint64(i4) << 39) | (uint64(i3) << 30) | (uint64(i2) << 21) | (uint64(i1) << 12))
					flags := 0
					if e1&mem.PTE_W != 0 {
						flags |= FlagWrite
					}
					if e1&mem.PTE_U != 0 {
						flags |= FlagUser
					}
					if e1&mem.PTE_NX != 0 {
						flags |= FlagNX
					}
					pa := e1 & mem.PTE_ADDR
					if !fn(va, pa, flags) {
						return false
					}
				}
			}
		}
	}
	return true
}

// DestroyAddressSpace frees every frame owned by the low half of pml4
// (recursively) and then the PML4 itself. High-half entries, shared with
// every other address space, are left untouched.
func (v *VMM_t) DestroyAddressSpace(pml4 mem.Pa_t) {
	if pml4 == v.kernelPML4 {
		panic("destroying the kernel address space")
	}
	for i := 0; i < 256; i++ {
		e := v.entry(pml4, i)
		if e&mem.PTE_P == 0 {
			continue
		}
		v.freeSubtree(e&mem.PTE_ADDR, 3)
	}
	v.pfa.Free(pml4, 1)
}

// freeSubtree recursively frees a page-table subtree rooted at table, at
// the given depth (3 = PDP, 2 = PD, 1 = PT). Present PT entries are user
// data frames, not tables, but the recursion still reaches and frees them:
// calling freeSubtree(frame, 0) on one simply frees that frame, since
// depth 0 never descends further. This is what makes destroying an
// address space also reclaim its mapped data pages.
func (v *VMM_t) freeSubtree(table mem.Pa_t, depth int) {
	if depth > 0 {
		for i := 0; i < 512; i++ {
			e := v.entry(table, i)
			if e&mem.PTE_P == 0 {
				continue
			}
			v.freeSubtree(e&mem.PTE_ADDR, depth-1)
		}
	}
	v.pfa.Free(table, 1)
}
