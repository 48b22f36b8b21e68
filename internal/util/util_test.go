package util

import "testing"

func TestMinMax(t *testing.T) {
	if got := Min(3, 5); got != 3 {
		t.Errorf("Min(3,5) = %d, want 3", got)
	}
	if got := Min(5, 3); got != 3 {
		t.Errorf("Min(5,3) = %d, want 3", got)
	}
	if got := Max(3, 5); got != 5 {
		t.Errorf("Max(3,5) = %d, want 5", got)
	}
	if got := Max(uint64(5), uint64(3)); got != 5 {
		t.Errorf("Max(5,3) = %d, want 5", got)
	}
}

func TestRoundupRounddown(t *testing.T) {
	tcs := []struct {
		v, b       uint64
		down, up   uint64
	}{
		{0, 4096, 0, 0},
		{1, 4096, 0, 4096},
		{4096, 4096, 4096, 4096},
		{4097, 4096, 4096, 8192},
		{8191, 4096, 4096, 8192},
	}
	for _, tc := range tcs {
		if got := Rounddown(tc.v, tc.b); got != tc.down {
			t.Errorf("Rounddown(%d,%d) = %d, want %d", tc.v, tc.b, got, tc.down)
		}
		if got := Roundup(tc.v, tc.b); got != tc.up {
			t.Errorf("Roundup(%d,%d) = %d, want %d", tc.v, tc.b, got, tc.up)
		}
	}
}

func TestReadnWriten(t *testing.T) {
	buf := make([]uint8, 16)

	Writen(buf, 8, 0, 0x0102030405060708)
	if got := Readn(buf, 8, 0); got != 0x0102030405060708 {
		t.Errorf("Readn(8) = %#x, want %#x", got, 0x0102030405060708)
	}

	Writen(buf, 4, 8, 0xcafebabe)
	if got := Readn(buf, 4, 8); got != int(uint32(0xcafebabe)) {
		t.Errorf("Readn(4) = %#x, want %#x", got, uint32(0xcafebabe))
	}

	Writen(buf, 2, 12, 0xbeef)
	if got := Readn(buf, 2, 12); got != 0xbeef {
		t.Errorf("Readn(2) = %#x, want %#x", got, 0xbeef)
	}

	Writen(buf, 1, 14, 0xab)
	if got := Readn(buf, 1, 14); got != 0xab {
		t.Errorf("Readn(1) = %#x, want %#x", got, 0xab)
	}
}

func TestReadnOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-bounds Readn")
		}
	}()
	Readn(make([]uint8, 4), 8, 0)
}
