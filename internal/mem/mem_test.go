package mem

import (
	"testing"

	"github.com/BXS-86/kernel/internal/oommsg"
)

const testRAMSize = 8 << 20 // 8 MiB

func TestAllocNeverReturnsBelowKernelEnd(t *testing.T) {
	p := NewPFA(testRAMSize)
	for i := 0; i < 100; i++ {
		pa, ok := p.Alloc(1)
		if !ok {
			t.Fatalf("Alloc(1) failed on iteration %d", i)
		}
		if pa < KernelEnd {
			t.Fatalf("Alloc(1) returned %#x, below KernelEnd %#x", pa, KernelEnd)
		}
	}
}

func TestAllocFreeConserved(t *testing.T) {
	p := NewPFA(testRAMSize)
	if !p.Conserved() {
		t.Fatal("fresh PFA is not conserved")
	}

	var frames []Pa_t
	for i := 0; i < 16; i++ {
		pa, ok := p.Alloc(1)
		if !ok {
			t.Fatalf("Alloc(1) failed on iteration %d", i)
		}
		frames = append(frames, pa)
	}
	if !p.Conserved() {
		t.Fatal("PFA not conserved after allocation")
	}
	if p.Used() != 16*PGSIZE {
		t.Errorf("Used() = %d, want %d", p.Used(), 16*PGSIZE)
	}

	for _, pa := range frames {
		p.Free(pa, 1)
	}
	if !p.Conserved() {
		t.Fatal("PFA not conserved after freeing")
	}
	if p.Used() != 0 {
		t.Errorf("Used() = %d, want 0 after freeing everything", p.Used())
	}
}

func TestFreeListReusesSingleFrames(t *testing.T) {
	p := NewPFA(testRAMSize)
	a, ok := p.Alloc(1)
	if !ok {
		t.Fatal("Alloc(1) failed")
	}
	p.Free(a, 1)

	b, ok := p.Alloc(1)
	if !ok {
		t.Fatal("Alloc(1) failed after Free")
	}
	if a != b {
		t.Errorf("Alloc() after Free(a) = %#x, want the freed frame %#x back (LIFO)", b, a)
	}
}

func TestAllocExhaustion(t *testing.T) {
	p := NewPFA(int(KernelEnd) + PGSIZE)
	if _, ok := p.Alloc(1); !ok {
		t.Fatal("Alloc(1) failed on a freshly constructed single-frame PFA")
	}
	if _, ok := p.Alloc(1); ok {
		t.Fatal("Alloc(1) succeeded after the single frame was already taken")
	}
}

func TestAllocExhaustionNotifiesListener(t *testing.T) {
	p := NewPFA(int(KernelEnd) + PGSIZE)
	ch := make(chan oommsg.Oommsg_t, 1)
	p.Listen(ch)

	if _, ok := p.Alloc(1); !ok {
		t.Fatal("Alloc(1) failed on a freshly constructed single-frame PFA")
	}
	if _, ok := p.Alloc(1); ok {
		t.Fatal("Alloc(1) succeeded after the single frame was already taken")
	}

	select {
	case msg := <-ch:
		if msg.Need != PGSIZE {
			t.Errorf("Need = %d, want %d", msg.Need, PGSIZE)
		}
	default:
		t.Error("expected an oommsg notification on allocator exhaustion")
	}
}

func TestAllocZeroedClearsFrame(t *testing.T) {
	p := NewPFA(testRAMSize)
	pa, ok := p.Alloc(1)
	if !ok {
		t.Fatal("Alloc(1) failed")
	}
	for i := 0; i < PGSIZE; i++ {
		p.ram[int(pa)+i] = 0xff
	}
	p.Free(pa, 1)

	pa2, ok := p.AllocZeroed()
	if !ok {
		t.Fatal("AllocZeroed() failed")
	}
	for i := 0; i < PGSIZE; i++ {
		if p.ram[int(pa2)+i] != 0 {
			t.Fatalf("AllocZeroed() left a nonzero byte at offset %d", i)
			break
		}
	}
}

func TestReadWriteU64(t *testing.T) {
	p := NewPFA(testRAMSize)
	pa, ok := p.Alloc(1)
	if !ok {
		t.Fatal("Alloc(1) failed")
	}
	p.WriteU64(pa, 0xdeadbeefcafebabe)
	if got := p.ReadU64(pa); got != 0xdeadbeefcafebabe {
		t.Errorf("ReadU64() = %#x, want %#x", got, uint64(0xdeadbeefcafebabe))
	}
}

func TestFreeBelowKernelEndPanics(t *testing.T) {
	p := NewPFA(testRAMSize)
	defer func() {
		if recover() == nil {
			t.Error("expected panic freeing below KernelEnd")
		}
	}()
	p.Free(0, 1)
}
