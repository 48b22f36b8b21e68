// Package vfs implements the virtual file system: mount table, open-file
// table, and the inode/file abstraction with per-backend operation
// vectors described in spec.md §3-§4.4. Backends are anything satisfying
// Backend; procfs and tmpfs (subpackages) are the two built in.
package vfs

import (
	"sync"

	"github.com/BXS-86/kernel/internal/bpath"
	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/hashtable"
	"github.com/BXS-86/kernel/internal/ustr"
)

// Dirent_t is one directory entry, as getdents returns them.
type Dirent_t struct {
	Name string
	Ino  int
	Type int // DT_DIR, DT_REG, ...
}

// Directory entry types (a subset of Linux's DT_* constants).
const (
	DT_UNKNOWN = 0
	DT_REG     = 8
	DT_DIR     = 4
	DT_CHR     = 2
)

// InodeOps is the per-file capability set spec.md §3 requires: read,
// write, open, close, ioctl. Open is called by vfs.Open each time the
// inode is opened, and Close when the last reference to that open's
// OpenFile is released (OpenFile/FDTable_t do the refcounting across
// dup/fork). Most backends have nothing to do at those points and embed
// NopOpenClose.
type InodeOps interface {
	Open(ino *Inode) defs.Err_t
	Close(ino *Inode) defs.Err_t
	Read(ino *Inode, buf []byte, off int) (int, defs.Err_t)
	Write(ino *Inode, buf []byte, off int) (int, defs.Err_t)
	Ioctl(ino *Inode, cmd int, arg int) (int, defs.Err_t)
}

// NopOpenClose implements the Open/Close half of InodeOps for backends
// with no per-open-file setup or teardown (procfs, tmpfs): embed it and
// supply Read/Write/Ioctl.
type NopOpenClose struct{}

func (NopOpenClose) Open(*Inode) defs.Err_t  { return 0 }
func (NopOpenClose) Close(*Inode) defs.Err_t { return 0 }

// Inode is the backend-agnostic file-metadata record, per spec.md §3.
type Inode struct {
	Id     int
	Size   int
	Mode   uint32
	Uid    int
	Gid    int
	Atime  int64
	Mtime  int64
	Ctime  int64
	Blocks int
	Links  int
	Name   string // <= 255 bytes
	IsDir  bool
	FsData interface{}
	Ops    InodeOps
}

// Mode bits (a minimal POSIX subset).
const (
	S_IFDIR uint32 = 0040000
	S_IFREG uint32 = 0100000
	S_IFCHR uint32 = 0020000
)

// Backend is a named filesystem implementation: the capability set
// spec.md §3 calls {lookup, read, write, create, unlink, readdir, mount,
// umount}, exposed here as a Go interface so procfs/tmpfs stay
// self-contained packages.
type Backend interface {
	Name() string
	Root() *Inode
	Lookup(dir *Inode, name string) (*Inode, defs.Err_t)
	Readdir(dir *Inode, offset int) (*Dirent_t, defs.Err_t)
	Create(dir *Inode, name string) (*Inode, defs.Err_t)
	Unlink(dir *Inode, name string) defs.Err_t
	Mount() defs.Err_t
	Umount() defs.Err_t
}

// ConsoleDevice is the default character device backing descriptors with
// no attached inode, per spec.md §4.4 "Read/Write".
type ConsoleDevice interface {
	ReadIn(buf []byte) (int, defs.Err_t)
	WriteOut(buf []byte) (int, defs.Err_t)
}

type mountRow struct {
	prefix  ustr.Ustr
	backend Backend
}

// VFS_t is the kernel's single virtual file system: a mount table and a
// registry of filesystem-type factories.
type VFS_t struct {
	mu      sync.RWMutex
	mounts  []mountRow
	fstypes *hashtable.Hashtable_t // name string -> func() Backend
	Console ConsoleDevice
}

// New constructs an empty VFS with no mounts.
func New(console ConsoleDevice) *VFS_t {
	return &VFS_t{
		fstypes: hashtable.MkHash(16),
		Console: console,
	}
}

// RegisterFSType adds a filesystem type to the registry, appended during
// the boot window (spec.md §5: "global, append-only during the boot
// window").
func (v *VFS_t) RegisterFSType(name string, factory func() Backend) {
	v.fstypes.Set(name, factory)
}

// Mount looks up fstype by name and appends a (prefix, backend) row. A
// mount over an existing prefix is allowed: the new row is appended and
// longest-match routing (see resolve) picks it for new lookups, while
// file objects opened against the prior mount keep working through their
// already-resolved Inode/Backend.
func (v *VFS_t) Mount(target ustr.Ustr, fstype string) defs.Err_t {
	factoryIfc, ok := v.fstypes.Get(fstype)
	if !ok {
		return defs.Errno(defs.NoDevice)
	}
	factory := factoryIfc.(func() Backend)
	backend := factory()
	if err := backend.Mount(); err != 0 {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounts = append(v.mounts, mountRow{prefix: bpath.Canonicalize(target), backend: backend})
	return 0
}

// Umount removes the row whose prefix exactly matches target, compacting
// the table. Only the most recently appended matching row is removed,
// matching "new row... routes to it" mount-shadowing semantics.
func (v *VFS_t) Umount(target ustr.Ustr) defs.Err_t {
	canon := bpath.Canonicalize(target)
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := len(v.mounts) - 1; i >= 0; i-- {
		if v.mounts[i].prefix.Eq(canon) {
			if err := v.mounts[i].backend.Umount(); err != 0 {
				return err
			}
			v.mounts = append(v.mounts[:i], v.mounts[i+1:]...)
			return 0
		}
	}
	return defs.Errno(defs.NoSuchFile)
}

// resolve picks the mount row whose prefix is the longest path-component
// prefix of path (spec.md §8 "Mount routing" invariant), and returns the
// residual path relative to that backend's root.
func (v *VFS_t) resolve(path ustr.Ustr) (Backend, ustr.Ustr, defs.Err_t) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.mounts) == 0 {
		return nil, nil, defs.Errno(defs.NoSuchFile)
	}
	best := -1
	bestLen := -1
	for i, m := range v.mounts {
		if path.HasPrefix(m.prefix) && len(m.prefix) > bestLen {
			best = i
			bestLen = len(m.prefix)
		}
	}
	if best < 0 {
		return nil, nil, defs.Errno(defs.NoSuchFile)
	}
	residue := path.TrimPrefix(v.mounts[best].prefix)
	return v.mounts[best].backend, residue, 0
}

// Resolve exposes path resolution for callers (syscall handlers) that need
// the backend and residual path directly, e.g. to call Readdir.
func (v *VFS_t) Resolve(path ustr.Ustr) (Backend, ustr.Ustr, defs.Err_t) {
	return v.resolve(path)
}

// Lookup resolves an absolute path to its inode by walking the residual
// path's components against the chosen backend, one Lookup call per
// component starting from the backend's root.
func (v *VFS_t) Lookup(path ustr.Ustr) (*Inode, defs.Err_t) {
	backend, residue, err := v.resolve(path)
	if err != 0 {
		return nil, err
	}
	cur := backend.Root()
	for _, comp := range residue.Split() {
		if cur == nil {
			return nil, defs.Errno(defs.NoSuchFile)
		}
		next, err := backend.Lookup(cur, comp.String())
		if err != 0 {
			return nil, err
		}
		cur = next
	}
	return cur, 0
}
