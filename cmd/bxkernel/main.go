// Command bxkernel is the kernel's boot entry. It wires every subsystem
// package in internal/ into one Kernel aggregate — spec.md §9's "global
// mutable state -> explicit runtime handle" design note — and drives the
// boot control flow spec.md §2 describes: console clear, PIC remap,
// interrupt table install, timer programmed to 1 kHz, syscall table
// populated, bus/device enumeration, filesystem-type and character-device
// registration, interrupts enabled, idle loop.
//
// This is a hosted kernel: there is no bootloader handing off two machine
// words, no real VGA framebuffer, no real 8259/8253/PS2 hardware. Physical
// memory, ports, and the console are all software models, the same
// trade-off gopheros/elsie make to keep kernel logic host-testable (see
// internal/mem's package doc).
package main

import (
	"flag"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BXS-86/kernel/internal/console"
	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/device"
	"github.com/BXS-86/kernel/internal/irq"
	"github.com/BXS-86/kernel/internal/kheap"
	"github.com/BXS-86/kernel/internal/klog"
	"github.com/BXS-86/kernel/internal/mem"
	"github.com/BXS-86/kernel/internal/msi"
	"github.com/BXS-86/kernel/internal/oommsg"
	"github.com/BXS-86/kernel/internal/proc"
	"github.com/BXS-86/kernel/internal/stats"
	"github.com/BXS-86/kernel/internal/syscall"
	"github.com/BXS-86/kernel/internal/ustr"
	"github.com/BXS-86/kernel/internal/util"
	"github.com/BXS-86/kernel/internal/version"
	"github.com/BXS-86/kernel/internal/vfs"
	"github.com/BXS-86/kernel/internal/vfs/procfs"
	"github.com/BXS-86/kernel/internal/vfs/tmpfs"
	"github.com/BXS-86/kernel/internal/vmm"
)

// Kernel aggregates every subsystem, per spec.md §9's design note, and
// implements both syscall.Env (for the dispatcher) and procfs.Source (for
// /proc). RAM size and timer frequency come from Config; the kernel heap
// is built with kheap.DefaultSize and the table caps are internal/limits'
// fixed defaults, neither of which Config can change.
type Kernel struct {
	pfa     *mem.PFA_t
	vmm     *vmm.VMM_t
	heap    *kheap.Heap_t
	fs      *vfs.VFS_t
	procs   *proc.Table_t
	sct     *syscall.Table_t
	devices *device.Registry_t
	console *console.Console_t
	tick    irq.Tick_t

	// echoBuf is a scratch frame the idle loop hands to the syscall
	// dispatcher as a read/write buffer address. Identity-mapped physical
	// memory means its frame number doubles as a valid user-space pointer
	// for sysRead/sysWrite's RAM-as-direct-index convention.
	echoBuf mem.Pa_t

	// oom is shared by the PFA and the kernel heap (internal/oommsg); a
	// listener goroutine started in Boot drains it and logs exhaustion.
	oom chan oommsg.Oommsg_t

	// stats counts dispatch table invocations, surfaced through D_STAT
	// alongside MemInfo, per internal/stats' "instrument the interrupt
	// surface and dispatcher" role.
	stats struct {
		Syscalls stats.Counter_t
	}
}

// Config carries the boot-time parameters a real bootloader would supply
// (here, flags): simulated RAM size and the timer frequency.
type Config struct {
	RAMSize        int
	TimerFrequency int
}

// DefaultConfig matches original_source/kernel.c's defaults: 64 MiB of RAM
// reported (spec.md §8 scenario 1) and the 1 kHz timer spec.md §4.7 names.
func DefaultConfig() Config {
	return Config{RAMSize: 64 << 20, TimerFrequency: irq.DefaultFrequency}
}

// NewKernel constructs every subsystem but does not yet touch hardware
// ports or enable interrupts; see Boot for the rest of the control flow.
func NewKernel(cfg Config) (*Kernel, *proc.Proc_t, bool) {
	pfa := mem.NewPFA(cfg.RAMSize)
	vm, ok := vmm.NewVMM(pfa)
	if !ok {
		return nil, nil, false
	}
	cons := console.New(pfa)
	procs := proc.NewTable(vm)

	echoBuf, ok := pfa.Alloc(1)
	if !ok {
		return nil, nil, false
	}

	heap := kheap.New(kheap.DefaultSize)
	oom := oommsg.NewCh()
	pfa.Listen(oom)
	heap.Listen(oom)
	stats.Enabled = true

	k := &Kernel{
		pfa:     pfa,
		vmm:     vm,
		heap:    heap,
		fs:      vfs.New(cons),
		procs:   procs,
		sct:     syscall.NewTable(),
		devices: device.NewRegistry(),
		console: cons,
		echoBuf: echoBuf,
		oom:     oom,
	}
	kernelProc := procs.NewKernelProc()
	return k, kernelProc, true
}

// Procs, FS, Devices, Tick, WallClock, RAM implement syscall.Env.
func (k *Kernel) Procs() *proc.Table_t         { return k.procs }
func (k *Kernel) FS() *vfs.VFS_t               { return k.fs }
func (k *Kernel) Devices() *device.Registry_t  { return k.devices }
func (k *Kernel) Tick() int64                  { return k.tick.Get() }
func (k *Kernel) RAM() []byte                  { return k.pfa.RAM() }

func (k *Kernel) WallClock() (sec int64, nsec int64) {
	t := time.Now()
	return t.Unix(), int64(t.Nanosecond())
}

// NewAddressSpace, MapPages, Translate give execve (internal/syscall) real
// page-table access for a freshly created address space, whose low half
// is not identity-mapped the way the kernel's own is.
func (k *Kernel) NewAddressSpace() (mem.Pa_t, bool) {
	return k.vmm.NewAddressSpace()
}

func (k *Kernel) MapPages(cr3 mem.Pa_t, va uint64, length uint64, flags int) bool {
	start := util.Rounddown(va, uint64(mem.PGSIZE))
	end := util.Roundup(va+length, uint64(mem.PGSIZE))
	for a := start; a < end; a += mem.PGSIZE {
		frame, ok := k.pfa.Alloc(1)
		if !ok {
			return false
		}
		k.pfa.Zero(frame)
		if !k.vmm.Map(cr3, mem.Va_t(a), frame, flags) {
			return false
		}
	}
	return true
}

// UnmapPages reverses MapPages over [va, va+length): every mapped page in
// the range is cleared from cr3's page tables and its backing frame
// returned to the frame allocator. Already-unmapped pages in the range
// are silently skipped.
func (k *Kernel) UnmapPages(cr3 mem.Pa_t, va uint64, length uint64) {
	start := util.Rounddown(va, uint64(mem.PGSIZE))
	end := util.Roundup(va+length, uint64(mem.PGSIZE))
	for a := start; a < end; a += mem.PGSIZE {
		frame, ok := k.vmm.Translate(cr3, mem.Va_t(a))
		if !ok {
			continue
		}
		k.vmm.Unmap(cr3, mem.Va_t(a))
		k.pfa.Free(frame, 1)
	}
}

func (k *Kernel) Translate(cr3 mem.Pa_t, va uint64) (uint64, bool) {
	pa, ok := k.vmm.Translate(cr3, mem.Va_t(va))
	return uint64(pa), ok
}

// CPUInfo, MemInfo, VersionLine implement procfs.Source.
func (k *Kernel) CPUInfo() string {
	return "processor\t: 0\nvendor_id\t: BXKernel\nmodel name\t: hosted x86_64\n"
}

func (k *Kernel) MemInfo() string {
	free := k.pfa.Capacity() - k.usedBytes()
	return "MemTotal:\t" + itoa(k.pfa.Capacity()/1024) + " kB\n" +
		"MemFree:\t" + itoa(free/1024) + " kB\n" +
		"KernelHeap:\t" + itoa(k.heap.Used()/1024) + " kB\n"
}

func (k *Kernel) VersionLine() string { return version.VersionLine() }

func (k *Kernel) usedBytes() int { return k.pfa.Used() }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}

// statDevice backs D_STAT: reading it yields the same text procfs's
// meminfo leaf formats followed by the syscall counter, directly through
// the char-device path rather than the VFS.
type statDevice struct{ k *Kernel }

func (d statDevice) Read(buf []byte) (int, defs.Err_t) {
	text := d.k.MemInfo() + stats.Stats2String(&d.k.stats)
	return copy(buf, text), 0
}
func (d statDevice) Write([]byte) (int, defs.Err_t) { return 0, defs.Errno(defs.ReadOnlyFS) }

// profDevice backs D_PROF: reading it yields a gzip-encoded pprof profile
// of every process's accumulated accnt.Accnt_t sample, per SPEC_FULL.md's
// DOMAIN STACK entry for github.com/google/pprof/profile.
type profDevice struct{ procs *proc.Table_t }

func (d profDevice) Read(buf []byte) (int, defs.Err_t) {
	snap, err := d.procs.ProfileSnapshot()
	if err != nil {
		return 0, defs.Errno(defs.NotImplemented)
	}
	return copy(buf, snap), 0
}
func (d profDevice) Write([]byte) (int, defs.Err_t) { return 0, defs.Errno(defs.ReadOnlyFS) }

// consoleDevice adapts console.Console_t to device.CharDevice so /dev
// entries created through the device registry (as opposed to descriptors
// 0-2's default fallback in vfs.VFS_t) reach the same screen.
type consoleDevice struct{ c *console.Console_t }

func (d consoleDevice) Read(buf []byte) (int, defs.Err_t)  { return d.c.ReadIn(buf) }
func (d consoleDevice) Write(buf []byte) (int, defs.Err_t) { return d.c.WriteOut(buf) }

// registerDevices and registerFilesystems run concurrently during the
// boot window (spec.md §2's "bus/device enumeration stubs ->
// filesystem-type and character-device registration", both independent
// of each other and of interrupts not yet being enabled), joined with
// errgroup per SPEC_FULL.md's DOMAIN STACK wiring of
// golang.org/x/sync/errgroup.
func (k *Kernel) registerDevices() {
	k.devices.Register(uint(defs.D_CONSOLE), consoleDevice{k.console})
	k.devices.Register(uint(defs.D_DEVNULL), device.DevNull{})
	k.devices.Register(uint(defs.D_STAT), statDevice{k})
	k.devices.Register(uint(defs.D_PROF), profDevice{k.procs})

	buses := []device.Bus{{Name: "virtual0", Devices: []device.Slot{
		{Vendor: 0x1af4, Device: 0x1000, DevID: 0},                         // bridge, no char device
		{Vendor: 0x1af4, Device: 0x1001, DevID: uint(defs.D_DEVNULL) + 100}, // extra virtio sink
	}}}
	device.Scan(k.devices, buses, func(slot device.Slot) (device.CharDevice, bool) {
		if slot.DevID == 0 {
			return nil, false
		}
		vec := msi.Alloc()
		klog.Infof("device %04x:%04x claimed MSI vector %d", slot.Vendor, slot.Device, vec)
		return device.DevNull{}, true
	})
}

func (k *Kernel) registerFilesystems() {
	k.fs.RegisterFSType("procfs", procfs.New(k))
	k.fs.RegisterFSType("tmpfs", tmpfs.New())
	k.fs.Mount(ustr.MkUstrRoot(), "tmpfs")
	k.fs.Mount(ustr.Mk("/proc"), "procfs")
}

// Boot drives the rest of spec.md §2's control flow after NewKernel: PIC
// remap, interrupt install, timer programming, device/filesystem
// registration, and enabling interrupts (here: starting the tick
// goroutine that stands in for a real PIT IRQ0 line, since this process
// has no interrupt controller to actually unmask).
func (k *Kernel) Boot(cfg Config) error {
	go k.watchOOM()

	k.console.Clear()
	klog.Infof("console cleared")

	io := irq.NewFakePortIO()
	irq.Remap(io)
	klog.Infof("PIC remapped to vectors 0x%x/0x%x", irq.MasterBase, irq.SlaveBase)

	irq.ProgramPIT(io, cfg.TimerFrequency)
	klog.Infof("PIT programmed for %d Hz", cfg.TimerFrequency)

	klog.Infof("syscall table populated (%d entries)", syscall.NumEntries)

	g := new(errgroup.Group)
	g.Go(func() error { k.registerDevices(); return nil })
	g.Go(func() error { k.registerFilesystems(); return nil })
	if err := g.Wait(); err != nil {
		return err
	}
	klog.Infof("devices and filesystems registered")

	go k.tickLoop(cfg.TimerFrequency)
	klog.Infof("interrupts enabled")
	return nil
}

// watchOOM drains the PFA/kheap exhaustion channel for the life of the
// kernel, logging each notification. Neither allocator blocks waiting for
// a listener (oommsg.Notify is best-effort), so a slow or absent listener
// never stalls an allocation.
func (k *Kernel) watchOOM() {
	for msg := range k.oom {
		klog.Infof("out of memory: %d bytes requested and unavailable", msg.Need)
	}
}

// tickLoop stands in for the real PIT IRQ0 handler (irq.Tick_t.Handle),
// since this hosted kernel has no hardware interrupt line to deliver it
// on; a goroutine firing at the configured frequency is the closest
// software analogue.
func (k *Kernel) tickLoop(frequency int) {
	period := time.Second / time.Duration(frequency)
	t := time.NewTicker(period)
	defer t.Stop()
	for range t.C {
		k.tick.Handle()
		stats.Nirqs[0]++ // IRQ0, the PIT line, per spec.md §4.7
	}
}

// Idle runs the kernel process's idle loop: poll input and echo it back,
// the way a real kernel's idle loop polls input and halts between ticks.
// The scheduler's Yield gives the host CPU back between iterations in
// place of a real `hlt`. Unlike every other internal/proc caller, this
// drives stdin/stdout through the syscall dispatch table itself
// (syscall numbers 0 and 1, spec.md §6) rather than calling internal/vfs
// directly, so the table NewKernel builds is the one actually exercised
// at runtime and not merely constructed and set aside.
func (k *Kernel) Idle(kernelProc *proc.Proc_t) {
	buf := uint64(k.echoBuf)
	for {
		k.procs.Yield()
		n := k.sct.Dispatch(k, kernelProc, 0, 0, buf, mem.PGSIZE, 0, 0, 0)
		k.stats.Syscalls.Inc()
		if n > 0 {
			k.sct.Dispatch(k, kernelProc, 1, 1, buf, uint64(n), 0, 0, 0)
			k.stats.Syscalls.Inc()
		}
		time.Sleep(time.Millisecond)
	}
}

func main() {
	ramSize := flag.Int("ram", DefaultConfig().RAMSize, "simulated RAM size in bytes")
	frequency := flag.Int("hz", DefaultConfig().TimerFrequency, "timer frequency in Hz")
	verbose := flag.Bool("v", false, "verbose diagnostic logging")
	flag.Parse()
	klog.Verbose = *verbose

	cfg := Config{RAMSize: *ramSize, TimerFrequency: *frequency}
	k, kernelProc, ok := NewKernel(cfg)
	if !ok {
		klog.Infof("out of memory constructing the kernel")
		os.Exit(1)
	}

	term, err := console.Attach(k.console)
	if err == nil {
		defer term.Restore()
	}

	if err := k.Boot(cfg); err != nil {
		klog.Infof("boot failed: %v", err)
		os.Exit(1)
	}

	klog.Infof("%s booted, pid %d on the ring", version.VersionLine(), kernelProc.Pid)
	k.Idle(kernelProc)
}
