package proc

import (
	"testing"

	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/mem"
	"github.com/BXS-86/kernel/internal/vmm"
)

func newTable(t *testing.T) *Table_t {
	t.Helper()
	pfa := mem.NewPFA(64 << 20)
	vm, ok := vmm.NewVMM(pfa)
	if !ok {
		t.Fatal("NewVMM failed")
	}
	return NewTable(vm)
}

func TestNewKernelProcIsRunning(t *testing.T) {
	tbl := newTable(t)
	kp := tbl.NewKernelProc()
	if kp.State != Running {
		t.Errorf("kernel proc state = %s, want running", kp.State)
	}
	if got := tbl.Current(); got.Pid != kp.Pid {
		t.Errorf("Current().Pid = %d, want %d", got.Pid, kp.Pid)
	}
}

func TestForkCreatesRunnableChild(t *testing.T) {
	tbl := newTable(t)
	parent := tbl.NewKernelProc()

	childPid, err := tbl.Fork()
	if err != 0 {
		t.Fatalf("Fork failed: %v", err)
	}
	child, ok := tbl.ByPid(childPid)
	if !ok {
		t.Fatal("ByPid could not find the forked child")
	}
	if child.State != Runnable {
		t.Errorf("child state = %s, want runnable", child.State)
	}
	if child.Ppid != parent.Pid {
		t.Errorf("child.Ppid = %d, want %d", child.Ppid, parent.Pid)
	}
	if child.CR3 == parent.CR3 {
		t.Error("child shares the parent's address space (fork must copy, not alias)")
	}
}

func TestScheduleRoundRobin(t *testing.T) {
	tbl := newTable(t)
	kernel := tbl.NewKernelProc()

	c1, _ := tbl.Fork()
	c2, _ := tbl.Fork()

	got := tbl.Schedule()
	if got.Pid != c1 {
		t.Errorf("first Schedule() picked pid %d, want %d", got.Pid, c1)
	}
	got = tbl.Schedule()
	if got.Pid != c2 {
		t.Errorf("second Schedule() picked pid %d, want %d", got.Pid, c2)
	}
	got = tbl.Schedule()
	if got.Pid != kernel.Pid {
		t.Errorf("third Schedule() picked pid %d, want wraparound to kernel %d", got.Pid, kernel.Pid)
	}
}

func TestScheduleSkipsNonRunnable(t *testing.T) {
	tbl := newTable(t)
	kernel := tbl.NewKernelProc()

	c1, _ := tbl.Fork()
	_, _ = tbl.Fork()

	tbl.Schedule() // current becomes c1
	p1, _ := tbl.ByPid(c1)
	if p1.Pid != tbl.Current().Pid {
		t.Fatal("setup failed: c1 is not current")
	}

	// Exit c1 to make it a zombie, then scheduling should skip it.
	tbl.Exit(0)
	got := tbl.Schedule()
	if got.State != Running && got.Pid != kernel.Pid {
		t.Errorf("Schedule() landed on a non-runnable, non-kernel process: pid %d state %s", got.Pid, got.State)
	}
	if got.Pid == c1 {
		t.Error("Schedule() picked a zombie process")
	}
}

// TestScheduleDoesNotResurrectSoleZombie guards the "no Runnable successor"
// fallback: with only one process on the ring and it a Zombie, Schedule
// must leave it Zombie rather than flipping it back to Running.
func TestScheduleDoesNotResurrectSoleZombie(t *testing.T) {
	tbl := newTable(t)
	tbl.NewKernelProc()

	tbl.Exit(0)
	got := tbl.Schedule()
	if got.State != Zombie {
		t.Errorf("Schedule() on the ring's sole zombie process: state = %s, want Zombie", got.State)
	}
}

func TestExitTransitionsToZombieAndStampsExitCode(t *testing.T) {
	tbl := newTable(t)
	tbl.NewKernelProc()
	childPid, _ := tbl.Fork()

	tbl.Schedule() // make the child current
	cur := tbl.Current()
	if cur.Pid != childPid {
		t.Fatal("setup failed: child is not current")
	}

	tbl.Exit(7)
	p, _ := tbl.ByPid(childPid)
	if p.State != Zombie {
		t.Errorf("state after Exit = %s, want zombie", p.State)
	}
	if p.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", p.ExitCode)
	}
}

func TestReapRemovesZombieAndRejectsLiveProcess(t *testing.T) {
	tbl := newTable(t)
	tbl.NewKernelProc()
	childPid, _ := tbl.Fork()

	if err := tbl.Reap(childPid); err == 0 {
		t.Fatal("Reap succeeded on a still-runnable process")
	}

	tbl.Schedule() // make child current so it can Exit itself
	tbl.Exit(0)

	if err := tbl.Reap(childPid); err != 0 {
		t.Fatalf("Reap failed on a zombie: %v", err)
	}
	if _, ok := tbl.ByPid(childPid); ok {
		t.Error("reaped process is still on the ring")
	}
	if err := tbl.Reap(childPid); err == 0 {
		t.Error("Reap succeeded twice on the same pid")
	}
}

func TestKillUnknownPidReturnsNoSuchProcess(t *testing.T) {
	tbl := newTable(t)
	tbl.NewKernelProc()
	if err := tbl.Kill(defs.Pid_t(99999), 9); err != defs.Errno(defs.NoSuchProcess) {
		t.Errorf("Kill(unknown) = %v, want %v", err, defs.Errno(defs.NoSuchProcess))
	}
}

func TestKillSetsPendingSignal(t *testing.T) {
	tbl := newTable(t)
	kp := tbl.NewKernelProc()
	if err := tbl.Kill(kp.Pid, 9); err != 0 {
		t.Fatalf("Kill failed: %v", err)
	}
	if kp.PendingSignals&(1<<9) == 0 {
		t.Error("PendingSignals bit for signal 9 was not set")
	}
}

func TestForkRespectsProcessCap(t *testing.T) {
	tbl := newTable(t)
	tbl.NewKernelProc()

	n := 0
	for {
		if _, err := tbl.Fork(); err != 0 {
			break
		}
		n++
		if n > 1000 {
			t.Fatal("Fork never hit the process cap")
		}
	}
	if _, err := tbl.Fork(); err != defs.Errno(defs.TooManyProcesses) {
		t.Errorf("Fork() past the cap = %v, want %v", err, defs.Errno(defs.TooManyProcesses))
	}
}
