package msi

import "testing"

func TestAllocFreeRoundTrip(t *testing.T) {
	v := Alloc()
	if v < 56 || v > 63 {
		t.Fatalf("Alloc() = %d, want a vector in [56,63]", v)
	}
	Free(v)
}

func TestAllocNeverRepeatsUntilFreed(t *testing.T) {
	seen := make(map[Vec_t]bool)
	var got []Vec_t
	for i := 0; i < 8; i++ {
		v := Alloc()
		if seen[v] {
			t.Fatalf("Alloc() returned %d twice before it was freed", v)
		}
		seen[v] = true
		got = append(got, v)
	}
	for _, v := range got {
		Free(v)
	}
}

func TestFreeUnallocatedVectorPanics(t *testing.T) {
	v := Alloc()
	Free(v)
	defer func() {
		if recover() == nil {
			t.Error("expected panic freeing an already-free vector")
		}
	}()
	Free(v)
}

func TestAllocExhaustionPanics(t *testing.T) {
	var got []Vec_t
	defer func() {
		for _, v := range got {
			Free(v)
		}
		if recover() == nil {
			t.Error("expected panic on Alloc() after exhausting the pool")
		}
	}()
	for i := 0; i < 9; i++ {
		got = append(got, Alloc())
	}
}
