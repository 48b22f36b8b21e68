package vfs

import (
	"sync"

	"github.com/BXS-86/kernel/internal/defs"
)

// OpenFile is a file (open instance): spec.md §3 "{inode, pos, flags,
// mode, fs_data}", reference-counted so dup/dup2/fork aliasing (spec.md
// §9 "Shared file object") is safe — the teacher's source lacked this and
// the design notes call it out as a required fix.
type OpenFile struct {
	mu      sync.Mutex
	refs    int32
	Inode   *Inode
	Backend Backend // nil for standard streams and console fallback
	Pos     int
	Flags   int
	Mode    int
}

// NewStd builds an OpenFile for one of the three standard streams: with no
// attached inode, reads and writes fall through to the VFS's console
// device per spec.md §4.4 "Read/Write".
func NewStd() *OpenFile {
	return &OpenFile{refs: 1}
}

func (f *OpenFile) addref() { f.mu.Lock(); f.refs++; f.mu.Unlock() }

// release decrements the refcount and, when it reaches zero, calls the
// backend's Close hook on the underlying inode (spec.md §3's "close"
// capability).
func (f *OpenFile) release() defs.Err_t {
	f.mu.Lock()
	f.refs--
	if f.refs < 0 {
		f.mu.Unlock()
		panic("file object refcount underflow")
	}
	last := f.refs == 0
	ino := f.Inode
	f.mu.Unlock()
	if last && ino != nil && ino.Ops != nil {
		return ino.Ops.Close(ino)
	}
	return 0
}

// Seek implements SEEK_SET/SEEK_CUR/SEEK_END, per spec.md §4.4 "Seek".
func (f *OpenFile) Seek(off int, whence int) (int, defs.Err_t) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch whence {
	case defs.SEEK_SET:
		f.Pos = off
	case defs.SEEK_CUR:
		f.Pos += off
	case defs.SEEK_END:
		if f.Inode == nil {
			return 0, defs.Errno(defs.BadDescriptor)
		}
		f.Pos = f.Inode.Size + off
	default:
		return 0, defs.Errno(defs.InvalidArgument)
	}
	return f.Pos, 0
}

// Read/Write dispatch to the inode's ops when present, otherwise to the
// VFS's default console device, per spec.md §4.4.
func (v *VFS_t) Read(f *OpenFile, buf []byte) (int, defs.Err_t) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Inode != nil && f.Inode.Ops != nil {
		n, err := f.Inode.Ops.Read(f.Inode, buf, f.Pos)
		if err == 0 {
			f.Pos += n
		}
		return n, err
	}
	if v.Console == nil {
		return 0, defs.Errno(defs.BadDescriptor)
	}
	return v.Console.ReadIn(buf)
}

func (v *VFS_t) Write(f *OpenFile, buf []byte) (int, defs.Err_t) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Inode != nil && f.Inode.Ops != nil {
		n, err := f.Inode.Ops.Write(f.Inode, buf, f.Pos)
		if err == 0 {
			f.Pos += n
		}
		return n, err
	}
	if v.Console == nil {
		return 0, defs.Errno(defs.BadDescriptor)
	}
	return v.Console.WriteOut(buf)
}

// Getdents returns the next directory entry starting at offset, always
// synthesizing "." and ".." at offsets 0 and 1 before consulting the
// backend, per spec.md §4.4 "Directory iteration".
func (v *VFS_t) Getdents(backend Backend, dirIno *Inode, offset int) (*Dirent_t, defs.Err_t) {
	switch offset {
	case 0:
		return &Dirent_t{Name: ".", Ino: dirIno.Id, Type: DT_DIR}, 0
	case 1:
		return &Dirent_t{Name: "..", Ino: dirIno.Id, Type: DT_DIR}, 0
	default:
		return backend.Readdir(dirIno, offset-2)
	}
}
