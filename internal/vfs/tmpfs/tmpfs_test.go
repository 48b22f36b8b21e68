package tmpfs

import (
	"testing"

	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/vfs"
)

func TestCreateLookupReadWrite(t *testing.T) {
	b := newBackend()
	root := b.Root()

	ino, err := b.Create(root, "hello.txt")
	if err != 0 {
		t.Fatalf("Create failed: %v", err)
	}

	n, werr := ino.Ops.Write(ino, []byte("hello"), 0)
	if werr != 0 {
		t.Fatalf("Write failed: %v", werr)
	}
	if n != 5 {
		t.Errorf("Write returned n=%d, want 5", n)
	}

	found, lerr := b.Lookup(root, "hello.txt")
	if lerr != 0 {
		t.Fatalf("Lookup failed: %v", lerr)
	}
	if found.Id != ino.Id {
		t.Errorf("Lookup returned a different inode: %d != %d", found.Id, ino.Id)
	}

	buf := make([]byte, 16)
	rn, rerr := found.Ops.Read(found, buf, 0)
	if rerr != 0 {
		t.Fatalf("Read failed: %v", rerr)
	}
	if string(buf[:rn]) != "hello" {
		t.Errorf("Read() = %q, want \"hello\"", buf[:rn])
	}
}

func TestCreateDuplicateNameFails(t *testing.T) {
	b := newBackend()
	root := b.Root()
	if _, err := b.Create(root, "a"); err != 0 {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := b.Create(root, "a"); err == 0 {
		t.Error("second Create of the same name succeeded")
	}
}

func TestUnlinkRemovesEntry(t *testing.T) {
	b := newBackend()
	root := b.Root()
	b.Create(root, "a")

	if err := b.Unlink(root, "a"); err != 0 {
		t.Fatalf("Unlink failed: %v", err)
	}
	if _, err := b.Lookup(root, "a"); err != defs.Errno(defs.NoSuchFile) {
		t.Errorf("Lookup after Unlink = %v, want NoSuchFile", err)
	}
	if err := b.Unlink(root, "a"); err == 0 {
		t.Error("Unlink of an already-removed name succeeded")
	}
}

func TestReaddirSortedAndBounded(t *testing.T) {
	b := newBackend()
	root := b.Root()
	b.Create(root, "b")
	b.Create(root, "a")
	b.Create(root, "c")

	d0, err := b.Readdir(root, 0)
	if err != 0 || d0 == nil {
		t.Fatalf("Readdir(0) failed: %v", err)
	}
	if d0.Name != "a" {
		t.Errorf("Readdir(0).Name = %q, want \"a\" (sorted order)", d0.Name)
	}

	d3, err := b.Readdir(root, 3)
	if err != 0 {
		t.Fatalf("Readdir(3) failed: %v", err)
	}
	if d3 != nil {
		t.Errorf("Readdir(3) = %+v, want nil (out of range)", d3)
	}
}

func TestWriteGrowsFileSize(t *testing.T) {
	b := newBackend()
	root := b.Root()
	ino, _ := b.Create(root, "f")

	ino.Ops.Write(ino, []byte("abc"), 0)
	if ino.Size != 3 {
		t.Fatalf("Size after first write = %d, want 3", ino.Size)
	}
	ino.Ops.Write(ino, []byte("de"), 5)
	if ino.Size != 7 {
		t.Errorf("Size after sparse write = %d, want 7", ino.Size)
	}
}

var _ vfs.Backend = (*Backend)(nil)
