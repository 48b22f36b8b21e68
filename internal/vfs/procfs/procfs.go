// Package procfs implements the read-only pseudo-filesystem spec.md §4.4
// describes: a root directory at /proc containing cpuinfo, meminfo, and
// version, each a statically formatted text blob sliced by (offset,
// count).
package procfs

import (
	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/vfs"
)

// Source supplies the live kernel data procfs formats into text. Kept
// decoupled from internal/proc and internal/mem so this package has no
// import-cycle risk; cmd/bxkernel wires the real Kernel aggregate in.
type Source interface {
	CPUInfo() string
	MemInfo() string
	VersionLine() string
}

type leaf struct {
	ino  *vfs.Inode
	text func() string
}

// Backend is the procfs filesystem-type implementation.
type Backend struct {
	src   Source
	root  *vfs.Inode
	leafs map[string]*leaf
	order []string
}

// New constructs a procfs backend reading from src. Pass the result (or a
// thunk returning it) to VFS_t.RegisterFSType.
func New(src Source) func() vfs.Backend {
	return func() vfs.Backend {
		return newBackend(src)
	}
}

func newBackend(src Source) *Backend {
	b := &Backend{src: src, leafs: make(map[string]*leaf)}
	b.root = &vfs.Inode{Id: 1, IsDir: true, Name: "/", Mode: vfs.S_IFDIR | 0555}
	b.addLeaf("cpuinfo", src.CPUInfo)
	b.addLeaf("meminfo", src.MemInfo)
	b.addLeaf("version", src.VersionLine)
	return b
}

func (b *Backend) addLeaf(name string, text func() string) {
	id := len(b.order) + 2
	ino := &vfs.Inode{Id: id, Name: name, Mode: vfs.S_IFREG | 0444, Ops: readOnlyOps{}, FsData: b}
	b.leafs[name] = &leaf{ino: ino, text: text}
	b.order = append(b.order, name)
}

func (b *Backend) Name() string    { return "procfs" }
func (b *Backend) Root() *vfs.Inode { return b.root }

func (b *Backend) Lookup(dir *vfs.Inode, name string) (*vfs.Inode, defs.Err_t) {
	if dir != b.root {
		return nil, defs.Errno(defs.NotADirectory)
	}
	l, ok := b.leafs[name]
	if !ok {
		return nil, defs.Errno(defs.NoSuchFile)
	}
	return l.ino, 0
}

func (b *Backend) Readdir(dir *vfs.Inode, offset int) (*vfs.Dirent_t, defs.Err_t) {
	if dir != b.root {
		return nil, defs.Errno(defs.NotADirectory)
	}
	if offset < 0 || offset >= len(b.order) {
		return nil, 0
	}
	name := b.order[offset]
	return &vfs.Dirent_t{Name: name, Ino: b.leafs[name].ino.Id, Type: vfs.DT_REG}, 0
}

func (b *Backend) Create(dir *vfs.Inode, name string) (*vfs.Inode, defs.Err_t) {
	return nil, defs.Errno(defs.ReadOnlyFS)
}

func (b *Backend) Unlink(dir *vfs.Inode, name string) defs.Err_t {
	return defs.Errno(defs.ReadOnlyFS)
}

func (b *Backend) Mount() defs.Err_t  { return 0 }
func (b *Backend) Umount() defs.Err_t { return 0 }

// textFor looks up the live text for a given leaf inode, used by readOnlyOps.
func (b *Backend) textFor(ino *vfs.Inode) (string, bool) {
	for _, name := range b.order {
		l := b.leafs[name]
		if l.ino == ino {
			return l.text(), true
		}
	}
	return "", false
}

// readOnlyOps implements vfs.InodeOps for every procfs leaf, each of
// which finds its owning Backend through a reverse pointer stashed in
// FsData so Read doesn't need a package-level registry.
type readOnlyOps struct{ vfs.NopOpenClose }

func (readOnlyOps) Read(ino *vfs.Inode, buf []byte, off int) (int, defs.Err_t) {
	b, ok := ino.FsData.(*Backend)
	if !ok {
		return 0, defs.Errno(defs.NotImplemented)
	}
	text, ok := b.textFor(ino)
	if !ok {
		return 0, defs.Errno(defs.NoSuchFile)
	}
	if off >= len(text) {
		return 0, 0
	}
	n := copy(buf, text[off:])
	return n, 0
}

func (readOnlyOps) Write(ino *vfs.Inode, buf []byte, off int) (int, defs.Err_t) {
	return 0, defs.Errno(defs.ReadOnlyFS)
}

func (readOnlyOps) Ioctl(ino *vfs.Inode, cmd int, arg int) (int, defs.Err_t) {
	return 0, defs.Errno(defs.NotImplemented)
}
