package vfs

import (
	"sync"

	"github.com/BXS-86/kernel/internal/defs"
)

// FDTable_t is a process's open file descriptor table: a small fixed-size
// array of *OpenFile slots, per spec.md §3 "fds[MAX_FDS]". File objects
// themselves are shared across descriptors created by dup/dup2/fork; this
// table only owns the slot-to-object mapping.
type FDTable_t struct {
	mu    sync.Mutex
	slots [defs.MAX_FDS]*OpenFile
}

// NewStdFDTable builds a table with descriptors 0/1/2 wired to the
// console's stdin/stdout/stderr.
func NewStdFDTable() *FDTable_t {
	t := &FDTable_t{}
	t.slots[0] = NewStd()
	t.slots[1] = NewStd()
	t.slots[2] = NewStd()
	return t
}

// Alloc reserves the lowest-numbered free slot and installs f there.
func (t *FDTable_t) Alloc(f *OpenFile) (int, defs.Err_t) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.slots {
		if s == nil {
			t.slots[i] = f
			return i, 0
		}
	}
	return 0, defs.Errno(defs.TooManyFiles)
}

// Get returns the file object installed at fd.
func (t *FDTable_t) Get(fd int) (*OpenFile, defs.Err_t) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if fd < 0 || fd >= len(t.slots) || t.slots[fd] == nil {
		return nil, defs.Errno(defs.BadDescriptor)
	}
	return t.slots[fd], 0
}

// Close drops fd's reference to its file object, closing the underlying
// inode (if any) once the last reference is gone.
func (t *FDTable_t) Close(fd int) defs.Err_t {
	t.mu.Lock()
	f := func() *OpenFile {
		if fd < 0 || fd >= len(t.slots) || t.slots[fd] == nil {
			return nil
		}
		s := t.slots[fd]
		t.slots[fd] = nil
		return s
	}()
	t.mu.Unlock()
	if f == nil {
		return defs.Errno(defs.BadDescriptor)
	}
	f.release()
	return 0
}

// Dup aliases oldfd's file object onto the lowest-numbered free slot.
func (t *FDTable_t) Dup(oldfd int) (int, defs.Err_t) {
	f, err := t.Get(oldfd)
	if err != 0 {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.slots {
		if s == nil {
			f.addref()
			t.slots[i] = f
			return i, 0
		}
	}
	return 0, defs.Errno(defs.TooManyFiles)
}

// Dup2 aliases oldfd's file object onto newfd, closing whatever newfd
// previously held.
func (t *FDTable_t) Dup2(oldfd, newfd int) defs.Err_t {
	f, err := t.Get(oldfd)
	if err != 0 {
		return err
	}
	if oldfd == newfd {
		return 0
	}
	if newfd < 0 || newfd >= len(t.slots) {
		return defs.Errno(defs.BadDescriptor)
	}
	t.mu.Lock()
	prev := t.slots[newfd]
	f.addref()
	t.slots[newfd] = f
	t.mu.Unlock()
	if prev != nil {
		prev.release()
	}
	return 0
}

// Fork clones the table, adding a reference to every live file object so
// parent and child share them, per spec.md §3 process fork semantics.
func (t *FDTable_t) Fork() *FDTable_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	nt := &FDTable_t{}
	for i, s := range t.slots {
		if s != nil {
			s.addref()
			nt.slots[i] = s
		}
	}
	return nt
}

// CloseAll releases every live descriptor, used on process exit.
func (t *FDTable_t) CloseAll() {
	t.mu.Lock()
	live := make([]*OpenFile, 0, len(t.slots))
	for i, s := range t.slots {
		if s != nil {
			live = append(live, s)
			t.slots[i] = nil
		}
	}
	t.mu.Unlock()
	for _, f := range live {
		f.release()
	}
}
