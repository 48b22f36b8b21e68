// Package proc implements the process descriptor, the circular ring, and
// the cooperative round-robin scheduler described in spec.md §4.5. Per
// spec.md §9's redesign note ("Circular process list -> arena + indices"),
// the ring is a slotted arena indexed by stable integer handles rather
// than raw linked-list pointers: prev/next are slot indices, not
// *Proc_t, so a process never dangles after its neighbors exit.
package proc

import (
	"sync"

	"github.com/BXS-86/kernel/internal/accnt"
	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/limits"
	"github.com/BXS-86/kernel/internal/mem"
	"github.com/BXS-86/kernel/internal/ustr"
	"github.com/BXS-86/kernel/internal/vfs"
	"github.com/BXS-86/kernel/internal/vmm"
)

// State is a process's position in its lifecycle, per spec.md §3.
type State int

const (
	Runnable State = iota
	Running
	Zombie
)

func (s State) String() string {
	switch s {
	case Runnable:
		return "runnable"
	case Running:
		return "running"
	case Zombie:
		return "zombie"
	default:
		return "unknown"
	}
}

// Proc_t is one process descriptor, per spec.md §3. Name is truncated to
// 31 bytes on creation, matching the C struct's name[32] (31 chars + NUL).
type Proc_t struct {
	Pid            defs.Pid_t
	Ppid           defs.Pid_t
	State          State
	Priority       int
	SavedRSP       uint64
	CR3            mem.Pa_t
	Entry          uint64
	Heap           uint64
	Stack          uint64
	KStack         uint64
	Name           string
	PendingSignals uint64
	ExitCode       int
	Brk            uint64
	MmapNext       uint64
	Fds            *vfs.FDTable_t
	Cwd            ustr.Ustr
	Accnt          accnt.Accnt_t

	// slot is this process's own arena index; prev/next are the slot
	// indices of its ring neighbors. A lone process has its own slot on
	// both sides.
	slot int
	prev int
	next int
}

const noSlot = -1

// Table_t is the process ring: a slotted arena plus the scheduler's
// current-process cursor, per spec.md §4.5 and the arena-plus-indices
// redesign note.
type Table_t struct {
	mu      sync.Mutex
	vmm     *vmm.VMM_t
	slots   []*Proc_t // index by slot; nil means free
	current int       // slot index of the running process, or noSlot
	nextPid int64

	// procLimit enforces limits.MkSysLimit's Sysprocs cap (MAX_PROCESSES,
	// from original_source/kernel.c) across the whole ring, not just at
	// NewTable's own slot slice growth.
	procLimit limits.Sysatomic_t
}

// NewTable constructs an empty ring bound to vm for address-space
// creation/destruction/copy.
func NewTable(vm *vmm.VMM_t) *Table_t {
	t := &Table_t{vmm: vm, current: noSlot, nextPid: 1}
	t.procLimit.Given(uint(limits.MkSysLimit().Sysprocs))
	return t
}

func (t *Table_t) allocSlot(p *Proc_t) int {
	for i, s := range t.slots {
		if s == nil {
			t.slots[i] = p
			p.slot = i
			return i
		}
	}
	t.slots = append(t.slots, p)
	p.slot = len(t.slots) - 1
	return p.slot
}

// linkAfter splices newSlot into the ring immediately after afterSlot. If
// the ring is currently empty, newSlot becomes a ring of one (pointing to
// itself).
func (t *Table_t) linkAfter(afterSlot, newSlot int) {
	newP := t.slots[newSlot]
	if afterSlot == noSlot {
		newP.prev, newP.next = newSlot, newSlot
		return
	}
	afterP := t.slots[afterSlot]
	nextSlot := afterP.next
	nextP := t.slots[nextSlot]

	newP.prev = afterSlot
	newP.next = nextSlot
	afterP.next = newSlot
	nextP.prev = newSlot
}

// unlink removes slot from the ring, relinking its neighbors. It does not
// free the slot itself (the descriptor stays on the ring, in Zombie
// state, until reaped; spec.md §3 leaves reaping an open question).
func (t *Table_t) unlink(slot int) {
	p := t.slots[slot]
	if p.prev == slot {
		// sole ring member
		return
	}
	prevP, nextP := t.slots[p.prev], t.slots[p.next]
	prevP.next = p.next
	nextP.prev = p.prev
}

// NewKernelProc constructs the initial "kernel" process the scheduler is
// built around, running in the kernel's own address space. Per spec.md
// §4.5, this process must always be Runnable so schedule() always has a
// fallback.
func (t *Table_t) NewKernelProc() *Proc_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.procLimit.Take() // first process of a fresh table; the cap can't be hit yet
	p := &Proc_t{
		Pid:      defs.Pid_t(t.nextPid),
		Ppid:     0,
		State:    Runnable,
		Priority: 0,
		CR3:      t.vmm.KernelAS(),
		Name:     truncName("kernel"),
		Fds:      vfs.NewStdFDTable(),
		Cwd:      ustr.MkUstrRoot(),
	}
	t.nextPid++
	slot := t.allocSlot(p)
	t.linkAfter(noSlot, slot)
	t.current = slot
	p.State = Running
	return p
}

func truncName(s string) string {
	if len(s) > 31 {
		return s[:31]
	}
	return s
}

// Current returns the currently running process, or nil if the ring is
// empty (only true before NewKernelProc has ever run).
func (t *Table_t) Current() *Proc_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == noSlot {
		return nil
	}
	return t.slots[t.current]
}

// ByPid scans the ring for pid, returning (proc, true) if still present
// (including Zombie, unreaped descriptors).
func (t *Table_t) ByPid(pid defs.Pid_t) (*Proc_t, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.slots {
		if p != nil && p.Pid == pid {
			return p, true
		}
	}
	return nil, false
}

// Fork duplicates the current process: copy of parent and a fresh address
// space (real page copy, not COW, per spec.md's Non-goals). No kernel or
// user stack is allocated: the child's KStack is left zero and its Stack
// is the parent's value. The child is linked just before the current
// process, so a full round of Schedule reaches children in fork order.
// Returns the child's pid, -EAGAIN when the process cap is reached, or
// -ENOMEM on allocator exhaustion.
func (t *Table_t) Fork() (defs.Pid_t, defs.Err_t) {
	if !t.procLimit.Take() {
		return 0, defs.Errno(defs.TooManyProcesses)
	}

	t.mu.Lock()
	parent := t.slots[t.current]
	t.mu.Unlock()

	// The kernel process's own CR3 is the kernel address space itself
	// (identity map + high-half mirror), not a set of user mappings it
	// owns: forking it per spec.md §8 scenario 4 must not walk and copy
	// that whole map page by page. A fresh, empty low half is exactly
	// what a child of the kernel process should start with anyway, since
	// it has no real user mappings to inherit.
	var newCR3 mem.Pa_t
	var ok bool
	if parent.CR3 == t.vmm.KernelAS() {
		newCR3, ok = t.vmm.NewAddressSpace()
	} else {
		newCR3, ok = t.vmm.CopyAddressSpace(parent.CR3)
	}
	if !ok {
		t.procLimit.Give()
		return 0, defs.Errno(defs.OutOfMemory)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	child := &Proc_t{
		Pid:      defs.Pid_t(t.nextPid),
		Ppid:     parent.Pid,
		State:    Runnable,
		Priority: parent.Priority,
		CR3:      newCR3,
		Entry:    parent.Entry,
		Heap:     parent.Heap,
		Stack:    parent.Stack,
		Name:     parent.Name,
		Brk:      parent.Brk,
		MmapNext: parent.MmapNext,
		Fds:      parent.Fds.Fork(),
		Cwd:      append(ustr.Ustr(nil), parent.Cwd...),
	}
	t.nextPid++
	slot := t.allocSlot(child)
	t.linkAfter(t.slots[t.current].prev, slot)
	return child.Pid, 0
}

// Exit transitions the current process to Zombie, stamps its exit code,
// and destroys its address space (unless it is the kernel process's own,
// which is never torn down), per spec.md §4.5 "Exit". The descriptor
// remains linked on the ring.
func (t *Table_t) Exit(code int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.slots[t.current]
	p.ExitCode = code
	p.State = Zombie
	if p.Fds != nil {
		p.Fds.CloseAll()
	}
	if p.CR3 != t.vmm.KernelAS() {
		t.vmm.DestroyAddressSpace(p.CR3)
	}
}

// FreeAddressSpace destroys an address space no process references any
// longer, e.g. the one execve replaces on a running process. It is a no-op
// on the kernel's own address space, which is never torn down.
func (t *Table_t) FreeAddressSpace(cr3 mem.Pa_t) {
	if cr3 == t.vmm.KernelAS() {
		return
	}
	t.vmm.DestroyAddressSpace(cr3)
}

// Kill sets bit (signum mod 64) of pid's pending-signals mask. Returns
// -ESRCH if pid is not on the ring, per spec.md §8 testable scenario 6.
func (t *Table_t) Kill(pid defs.Pid_t, signum int) defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.slots {
		if p != nil && p.Pid == pid {
			p.PendingSignals |= 1 << uint(signum%64)
			return 0
		}
	}
	return defs.Errno(defs.NoSuchProcess)
}

// Reap removes a Zombie descriptor from the ring and frees its slot,
// folding its accounting into the parent if still present. spec.md §3
// leaves reaping unspecified; this kernel resolves the open question by
// reaping explicitly via waitpid-style polling rather than automatically
// on exit, so a parent can still read the exit code first.
func (t *Table_t) Reap(pid defs.Pid_t) defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, p := range t.slots {
		if p == nil || p.Pid != pid {
			continue
		}
		if p.State != Zombie {
			return defs.Errno(defs.InvalidArgument)
		}
		for _, parent := range t.slots {
			if parent != nil && parent.Pid == p.Ppid {
				parent.Accnt.Add(&p.Accnt)
				break
			}
		}
		t.unlink(i)
		t.slots[i] = nil
		t.procLimit.Give()
		return 0
	}
	return defs.Errno(defs.NoSuchProcess)
}

// Schedule selects the next Runnable descriptor starting from
// current.next in strict ring order, per spec.md §4.5's tie-break rule,
// and makes it current. If no Runnable successor exists, current
// continues running (guaranteed possible since the kernel idle process
// is always Runnable). Returns the newly current process.
func (t *Table_t) Schedule() *Proc_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.slots[t.current]
	if cur.State == Running {
		cur.State = Runnable
	}

	slot := cur.next
	for slot != t.current {
		cand := t.slots[slot]
		if cand.State == Runnable {
			t.current = slot
			cand.State = Running
			return cand
		}
		slot = cand.next
	}

	// No Runnable successor: current continues, unless it has already
	// exited, in which case it stays Zombie rather than being resurrected.
	if cur.State != Zombie {
		cur.State = Running
	}
	return cur
}

// Yield is schedule() invoked voluntarily by the current process, the
// only preemption point this cooperative kernel has (spec.md §6
// "Suspension points").
func (t *Table_t) Yield() *Proc_t {
	return t.Schedule()
}

// Count returns the number of live (non-freed) slots, Zombie or not.
func (t *Table_t) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, p := range t.slots {
		if p != nil {
			n++
		}
	}
	return n
}
