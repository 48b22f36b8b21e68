package vfs

import (
	"testing"

	"github.com/BXS-86/kernel/internal/defs"
)

func TestSeekSetCurEnd(t *testing.T) {
	f := &OpenFile{Inode: &Inode{Size: 100}}

	if _, err := f.Seek(10, defs.SEEK_SET); err != 0 {
		t.Fatalf("SEEK_SET failed: %v", err)
	}
	if f.Pos != 10 {
		t.Errorf("Pos after SEEK_SET = %d, want 10", f.Pos)
	}

	if _, err := f.Seek(5, defs.SEEK_CUR); err != 0 {
		t.Fatalf("SEEK_CUR failed: %v", err)
	}
	if f.Pos != 15 {
		t.Errorf("Pos after SEEK_CUR = %d, want 15", f.Pos)
	}

	if _, err := f.Seek(0, defs.SEEK_END); err != 0 {
		t.Fatalf("SEEK_END failed: %v", err)
	}
	if f.Pos != 100 {
		t.Errorf("Pos after SEEK_END = %d, want 100", f.Pos)
	}
}

func TestSeekEndWithoutInodeFails(t *testing.T) {
	f := NewStd()
	if _, err := f.Seek(0, defs.SEEK_END); err != defs.Errno(defs.BadDescriptor) {
		t.Errorf("SEEK_END on a std stream = %v, want BadDescriptor", err)
	}
}

func TestSeekInvalidWhence(t *testing.T) {
	f := NewStd()
	if _, err := f.Seek(0, 99); err != defs.Errno(defs.InvalidArgument) {
		t.Errorf("Seek(invalid whence) = %v, want InvalidArgument", err)
	}
}

func TestReleaseUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic on refcount underflow")
		}
	}()
	f := &OpenFile{refs: 0}
	f.release()
}

type closeCountingOps struct {
	NopOpenClose
	closed *int
}

func (o closeCountingOps) Close(ino *Inode) defs.Err_t { *o.closed++; return 0 }
func (closeCountingOps) Read(ino *Inode, buf []byte, off int) (int, defs.Err_t)  { return 0, 0 }
func (closeCountingOps) Write(ino *Inode, buf []byte, off int) (int, defs.Err_t) { return 0, 0 }
func (closeCountingOps) Ioctl(ino *Inode, cmd int, arg int) (int, defs.Err_t)    { return 0, 0 }

func TestReleaseClosesInodeOnlyOnLastRef(t *testing.T) {
	closed := 0
	ino := &Inode{Ops: closeCountingOps{closed: &closed}}
	f := &OpenFile{refs: 2, Inode: ino}

	f.release()
	if closed != 0 {
		t.Fatal("inode Close called before refcount reached zero")
	}
	f.release()
	if closed != 1 {
		t.Errorf("Close called %d times, want 1", closed)
	}
}
