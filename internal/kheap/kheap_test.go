package kheap

import (
	"bytes"
	"testing"

	"github.com/BXS-86/kernel/internal/oommsg"
)

func TestKallocAlignmentAndGrowth(t *testing.T) {
	h := New(4096)

	a := h.Kalloc(1)
	b := h.Kalloc(1)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("Kalloc(1) returned wrong-sized slices: %d, %d", len(a), len(b))
	}
	if h.Used() < MinAlign {
		t.Errorf("Used() = %d, want at least MinAlign (%d) after two allocations", h.Used(), MinAlign)
	}
}

func TestKallocExhaustion(t *testing.T) {
	h := New(64)
	if got := h.Kalloc(64); got == nil {
		t.Fatal("Kalloc(64) failed to fill an exactly-64-byte heap")
	}
	if got := h.Kalloc(1); got != nil {
		t.Error("Kalloc(1) succeeded on an exhausted heap")
	}
}

func TestKallocExhaustionNotifiesListener(t *testing.T) {
	h := New(16)
	ch := make(chan oommsg.Oommsg_t, 1)
	h.Listen(ch)

	if got := h.Kalloc(16); got == nil {
		t.Fatal("Kalloc(16) failed to fill an exactly-16-byte heap")
	}
	if got := h.Kalloc(1); got != nil {
		t.Fatal("Kalloc(1) succeeded on an exhausted heap")
	}

	select {
	case msg := <-ch:
		if msg.Need != 1 {
			t.Errorf("Need = %d, want 1", msg.Need)
		}
	default:
		t.Error("expected an oommsg notification on heap exhaustion")
	}
}

func TestKreallocCopiesForward(t *testing.T) {
	h := New(4096)
	old := h.Kalloc(4)
	copy(old, []byte{1, 2, 3, 4})

	grown := h.Krealloc(old, 8)
	if grown == nil {
		t.Fatal("Krealloc failed")
	}
	if !bytes.Equal(grown[:4], []byte{1, 2, 3, 4}) {
		t.Errorf("Krealloc() did not preserve the original bytes: %v", grown[:4])
	}
}

func TestKfreeIsNoop(t *testing.T) {
	h := New(4096)
	a := h.Kalloc(8)
	used := h.Used()
	h.Kfree(a)
	if h.Used() != used {
		t.Errorf("Used() changed after Kfree: %d -> %d", used, h.Used())
	}
}
