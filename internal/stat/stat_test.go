package stat

import "testing"

func TestSettersAndGetters(t *testing.T) {
	var st Stat_t
	st.Wdev(1)
	st.Wino(42)
	st.Wmode(0755)
	st.Wsize(4096)
	st.Wrdev(0)
	st.Wuid(1000)
	st.Wblocks(8)
	st.Wnlink(2)
	st.Wmtime(1000, 500)

	if st.Rino() != 42 {
		t.Errorf("Rino() = %d, want 42", st.Rino())
	}
	if st.Mode() != 0755 {
		t.Errorf("Mode() = %#o, want 0755", st.Mode())
	}
	if st.Size() != 4096 {
		t.Errorf("Size() = %d, want 4096", st.Size())
	}
	if st.Blocks() != 8 {
		t.Errorf("Blocks() = %d, want 8", st.Blocks())
	}
	if st.Nlink() != 2 {
		t.Errorf("Nlink() = %d, want 2", st.Nlink())
	}
}

func TestBytesLayout(t *testing.T) {
	var st Stat_t
	st.Wdev(0x1111111111111111)
	st.Wino(0x2222222222222222)

	b := st.Bytes()
	if len(b) != 80 {
		t.Fatalf("len(Bytes()) = %d, want 80 (ten uint64 fields)", len(b))
	}

	// _dev is the first field; little-endian bytes 0 must be 0x11.
	if b[0] != 0x11 || b[7] != 0x11 {
		t.Errorf("dev field bytes = %x, want all 0x11", b[0:8])
	}
	// _ino is the second field, offset 8.
	if b[8] != 0x22 || b[15] != 0x22 {
		t.Errorf("ino field bytes = %x, want all 0x22", b[8:16])
	}
}
