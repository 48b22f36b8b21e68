package procfs

import (
	"testing"

	"github.com/BXS-86/kernel/internal/defs"
)

type fakeSource struct{}

func (fakeSource) CPUInfo() string    { return "cpu: bxkernel-virtual\n" }
func (fakeSource) MemInfo() string    { return "MemTotal: 65536 kB\n" }
func (fakeSource) VersionLine() string { return "BXKernel 0.1.0\n" }

func TestLookupAndReadEachLeaf(t *testing.T) {
	b := newBackend(fakeSource{})
	root := b.Root()

	for _, name := range []string{"cpuinfo", "meminfo", "version"} {
		ino, err := b.Lookup(root, name)
		if err != 0 {
			t.Fatalf("Lookup(%q) failed: %v", name, err)
		}
		buf := make([]byte, 64)
		n, rerr := ino.Ops.Read(ino, buf, 0)
		if rerr != 0 {
			t.Fatalf("Read(%q) failed: %v", name, rerr)
		}
		if n == 0 {
			t.Errorf("Read(%q) returned no bytes", name)
		}
	}
}

func TestLookupUnknownLeafFails(t *testing.T) {
	b := newBackend(fakeSource{})
	if _, err := b.Lookup(b.Root(), "nope"); err != defs.Errno(defs.NoSuchFile) {
		t.Errorf("Lookup(unknown) = %v, want NoSuchFile", err)
	}
}

func TestWriteAndCreateAreReadOnly(t *testing.T) {
	b := newBackend(fakeSource{})
	if _, err := b.Create(b.Root(), "x"); err != defs.Errno(defs.ReadOnlyFS) {
		t.Errorf("Create = %v, want ReadOnlyFS", err)
	}
	ino, _ := b.Lookup(b.Root(), "version")
	if _, err := ino.Ops.Write(ino, []byte("x"), 0); err != defs.Errno(defs.ReadOnlyFS) {
		t.Errorf("Write = %v, want ReadOnlyFS", err)
	}
}

func TestReaddirOrderMatchesRegistrationOrder(t *testing.T) {
	b := newBackend(fakeSource{})
	want := []string{"cpuinfo", "meminfo", "version"}
	for i, name := range want {
		d, err := b.Readdir(b.Root(), i)
		if err != 0 || d == nil {
			t.Fatalf("Readdir(%d) failed: %v", i, err)
		}
		if d.Name != name {
			t.Errorf("Readdir(%d).Name = %q, want %q", i, d.Name, name)
		}
	}
	if d, err := b.Readdir(b.Root(), len(want)); err != 0 || d != nil {
		t.Errorf("Readdir(out of range) = %+v, %v, want nil, 0", d, err)
	}
}

func TestReadPastEndOfTextReturnsZero(t *testing.T) {
	b := newBackend(fakeSource{})
	ino, _ := b.Lookup(b.Root(), "version")
	buf := make([]byte, 8)
	n, err := ino.Ops.Read(ino, buf, 10_000)
	if err != 0 {
		t.Fatalf("Read past end failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Read past end returned n=%d, want 0", n)
	}
}
