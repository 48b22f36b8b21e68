package vfs

import (
	"github.com/BXS-86/kernel/internal/bpath"
	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/ustr"
)

// Open resolves path (absolute, or relative to cwd), looks it up through
// the mount table, and installs a fresh OpenFile on the lowest free slot
// of fdt. Per spec.md §4.4 "Open".
func (v *VFS_t) Open(fdt *FDTable_t, cwd ustr.Ustr, path ustr.Ustr, flags, mode int) (int, defs.Err_t) {
	full := path
	if !path.IsAbsolute() {
		full = cwd.Extend(path)
	}
	full = bpath.Canonicalize(full)

	backend, _, _ := v.resolve(full)
	ino, err := v.Lookup(full)
	if err != 0 {
		return 0, err
	}
	if ino.Ops != nil {
		if err := ino.Ops.Open(ino); err != 0 {
			return 0, err
		}
	}
	of := &OpenFile{Inode: ino, Backend: backend, Flags: flags, Mode: mode, refs: 1}
	fd, err := fdt.Alloc(of)
	if err != 0 {
		return 0, err
	}
	return fd, 0
}
