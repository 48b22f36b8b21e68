// Package syscall implements the fixed 512-entry dispatch table spec.md
// §4.6 describes. Numbering for every recognized call is taken from
// spec.md §6's table, which follows (and where it deviates, explicitly
// overrides) the conventional x86-64 Linux ABI numbers also exposed by
// golang.org/x/sys/unix's SYS_* constants. NewTable writes the numbers as
// literals; abi_test.go lists the calls where the two agree and checks
// those numbers against the unix constants.
package syscall

import (
	"encoding/binary"

	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/device"
	"github.com/BXS-86/kernel/internal/mem"
	"github.com/BXS-86/kernel/internal/proc"
	"github.com/BXS-86/kernel/internal/stat"
	"github.com/BXS-86/kernel/internal/ustr"
	"github.com/BXS-86/kernel/internal/util"
	"github.com/BXS-86/kernel/internal/vfs"
	"github.com/BXS-86/kernel/internal/vmm"
)

// NumEntries is the dispatch table's fixed size, per spec.md §4.6.
const NumEntries = 512

// Env is everything a handler needs from the running kernel. A concrete
// Kernel aggregate (cmd/bxkernel) implements this; the syscall package
// itself never imports that aggregate, avoiding an import cycle since
// the aggregate is what wires this package in.
//
// RAM exposes the same byte slice internal/mem.PFA_t backs physical
// memory with. Since the boot-time identity map covers the entire
// simulated address space (internal/vmm.IdentityMapSize), a syscall
// argument naming a user buffer is also a valid index into RAM directly;
// this hosted kernel takes that shortcut instead of walking page tables
// on every copy_to/from_user, documented as an open-question resolution
// in DESIGN.md.
type Env interface {
	Procs() *proc.Table_t
	FS() *vfs.VFS_t
	Devices() *device.Registry_t
	Tick() int64
	WallClock() (sec int64, nsec int64)
	RAM() []byte

	// NewAddressSpace, MapPages, UnmapPages and Translate give execve and
	// mmap/munmap real page-table access for the cases where the
	// RAM-as-direct-index shortcut above does not hold: a freshly created
	// user address space's low half is not identity mapped, so loading an
	// ELF image, building its argv/stack, and installing or tearing down
	// mmap'd ranges must all walk page tables like real copy_to_user,
	// map_pages and unmap do. execve's own path argument is read through
	// Translate for the same reason -- by the time a process execve's a
	// second time, p.CR3 is no longer the identity map either.
	NewAddressSpace() (mem.Pa_t, bool)
	MapPages(cr3 mem.Pa_t, va uint64, length uint64, flags int) bool
	UnmapPages(cr3 mem.Pa_t, va uint64, length uint64)
	Translate(cr3 mem.Pa_t, va uint64) (uint64, bool)
}

// Handler is one syscall implementation: six raw 64-bit arguments in,
// one 64-bit return, with negative values carrying -errno per spec.md §7.
type Handler func(env Env, p *proc.Proc_t, a1, a2, a3, a4, a5, a6 uint64) int64

// Table_t is the 512-entry dispatch table. Entries left nil dispatch to
// sysNosys, per spec.md §4.6 "unmapped slots point to a sentinel
// returning -ENOSYS".
type Table_t struct {
	entries [NumEntries]Handler
}

// NewTable builds the dispatch table wired to every call spec.md §6
// recognizes.
func NewTable() *Table_t {
	t := &Table_t{}
	set := func(nr int, h Handler) { t.entries[nr] = h }

	set(0, sysRead)
	set(1, sysWrite)
	set(2, sysOpen)
	set(3, sysClose)
	set(4, sysStat)
	set(5, sysFstat)
	set(6, sysUname)
	set(7, sysGetdents)
	set(8, sysLseek)
	set(9, sysMmap)
	set(10, sysMprotect)
	set(11, sysMunmap)
	set(12, sysBrk)
	set(24, sysSchedYield)
	set(32, sysDup)
	set(33, sysDup2)
	set(35, sysNanosleep)
	set(39, sysGetpid)
	set(57, sysFork)
	set(59, sysExecve)
	set(62, sysKill)
	set(72, sysFcntl)
	set(76, sysTruncate)
	set(77, sysFtruncate)
	set(78, sysGetdents)
	set(79, sysGetcwd)
	set(80, sysChdir)
	set(82, sysRename)
	set(83, sysMkdir)
	set(84, sysRmdir)
	set(87, sysUnlink)
	set(96, sysGettimeofday)
	set(102, sysGetuid)
	set(104, sysGetgid)
	set(107, sysGetuid) // geteuid: single-user model, no distinct effective id
	set(108, sysGetgid) // getegid: ditto
	set(110, sysGetppid)
	set(164, sysMount)
	set(165, sysUmount)
	set(185, sysTime)

	return t
}

// Dispatch invokes entry nr, or the -ENOSYS sentinel if nr is out of
// range or unmapped, per spec.md §4.6.
func (t *Table_t) Dispatch(env Env, p *proc.Proc_t, nr int, a1, a2, a3, a4, a5, a6 uint64) int64 {
	if nr < 0 || nr >= NumEntries || t.entries[nr] == nil {
		return sysNosys(env, p, a1, a2, a3, a4, a5, a6)
	}
	return t.entries[nr](env, p, a1, a2, a3, a4, a5, a6)
}

func sysNosys(Env, *proc.Proc_t, uint64, uint64, uint64, uint64, uint64, uint64) int64 {
	return int64(defs.Errno(defs.NotImplemented))
}

func copyOut(ram []byte, addr uint64, data []byte) { copy(ram[addr:], data) }

func copyIn(ram []byte, addr uint64, n uint64) []byte {
	buf := make([]byte, n)
	copy(buf, ram[addr:])
	return buf
}

func readCString(ram []byte, addr uint64) string {
	end := addr
	for end < uint64(len(ram)) && ram[end] != 0 {
		end++
	}
	return string(ram[addr:end])
}

func readU64(ram []byte, addr uint64) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(ram[addr+uint64(i)]) << (8 * i)
	}
	return v
}

func writeU64(ram []byte, addr uint64, v uint64) {
	for i := 0; i < 8; i++ {
		ram[addr+uint64(i)] = byte(v >> (8 * i))
	}
}

func writeStat(ram []byte, addr uint64, s *stat.Stat_t) {
	copy(ram[addr:], s.Bytes())
}

func writeDirent(ram []byte, addr uint64, d *vfs.Dirent_t) {
	writeU64(ram, addr+0, uint64(d.Ino))
	writeU64(ram, addr+8, uint64(d.Type))
	name := d.Name
	if len(name) > 255 {
		name = name[:255]
	}
	copy(ram[addr+16:], name)
	ram[addr+16+uint64(len(name))] = 0
}

func writeUtsname(ram []byte, addr uint64) {
	const fieldLen = 65
	fields := []string{"BXKernel", "bxkernel", "v0.1.0", "v0.1.0", "x86_64"}
	for i, f := range fields {
		off := addr + uint64(i*fieldLen)
		copy(ram[off:], f)
		ram[off+uint64(len(f))] = 0
	}
}

// ok converts a successful (n, errno) pair from a lower layer into the
// int64 a syscall handler returns: n on success, the negative errno
// otherwise.
func ok(n int, err defs.Err_t) int64 {
	if err != 0 {
		return int64(err)
	}
	return int64(n)
}

func sysRead(env Env, p *proc.Proc_t, fdArg, bufArg, countArg, _, _, _ uint64) int64 {
	f, err := p.Fds.Get(int(fdArg))
	if err != 0 {
		return int64(err)
	}
	buf := make([]byte, countArg)
	n, err := env.FS().Read(f, buf)
	if err != 0 {
		return int64(err)
	}
	copyOut(env.RAM(), bufArg, buf[:n])
	return int64(n)
}

func sysWrite(env Env, p *proc.Proc_t, fdArg, bufArg, countArg, _, _, _ uint64) int64 {
	f, err := p.Fds.Get(int(fdArg))
	if err != 0 {
		return int64(err)
	}
	buf := copyIn(env.RAM(), bufArg, countArg)
	n, err := env.FS().Write(f, buf)
	return ok(n, err)
}

func sysOpen(env Env, p *proc.Proc_t, pathArg, flagsArg, modeArg, _, _, _ uint64) int64 {
	path := ustr.Mk(readCString(env.RAM(), pathArg))
	fd, err := env.FS().Open(p.Fds, p.Cwd, path, int(flagsArg), int(modeArg))
	return ok(fd, err)
}

func sysClose(_ Env, p *proc.Proc_t, fdArg, _, _, _, _, _ uint64) int64 {
	return int64(p.Fds.Close(int(fdArg)))
}

func statInode(ino *vfs.Inode) *stat.Stat_t {
	var st stat.Stat_t
	st.Wino(uint64(ino.Id))
	st.Wsize(uint64(ino.Size))
	st.Wmode(uint64(ino.Mode))
	st.Wblocks(uint64(ino.Blocks))
	st.Wnlink(uint64(ino.Links))
	return &st
}

func sysStat(env Env, p *proc.Proc_t, pathArg, statbufArg, _, _, _, _ uint64) int64 {
	path := ustr.Mk(readCString(env.RAM(), pathArg))
	full := path
	if !path.IsAbsolute() {
		full = p.Cwd.Extend(path)
	}
	ino, err := env.FS().Lookup(full)
	if err != 0 {
		return int64(err)
	}
	writeStat(env.RAM(), statbufArg, statInode(ino))
	return 0
}

func sysFstat(env Env, p *proc.Proc_t, fdArg, statbufArg, _, _, _, _ uint64) int64 {
	f, err := p.Fds.Get(int(fdArg))
	if err != 0 {
		return int64(err)
	}
	if f.Inode == nil {
		return int64(defs.Errno(defs.BadDescriptor))
	}
	writeStat(env.RAM(), statbufArg, statInode(f.Inode))
	return 0
}

func sysGetdents(env Env, p *proc.Proc_t, fdArg, bufArg, _, _, _, _ uint64) int64 {
	f, err := p.Fds.Get(int(fdArg))
	if err != 0 {
		return int64(err)
	}
	if f.Inode == nil || f.Backend == nil {
		return int64(defs.Errno(defs.NotADirectory))
	}
	d, err := env.FS().Getdents(f.Backend, f.Inode, f.Pos)
	if err != 0 {
		return int64(err)
	}
	if d == nil {
		return 0
	}
	f.Pos++
	writeDirent(env.RAM(), bufArg, d)
	return 1
}

func sysLseek(_ Env, p *proc.Proc_t, fdArg, offArg, whenceArg, _, _, _ uint64) int64 {
	f, err := p.Fds.Get(int(fdArg))
	if err != 0 {
		return int64(err)
	}
	n, err := f.Seek(int(int64(offArg)), int(whenceArg))
	return ok(n, err)
}

// protWrite is mmap(2)'s PROT_WRITE bit, the one protection flag this
// kernel honors per spec.md §9 ("sys_mmap ignores prot... the
// reimplementation should at least honour PROT_WRITE"). Every mapping is
// installed with FlagUser regardless of prot; FlagWrite is added only
// when the caller asked for it.
const protWrite = 0x2

func sysMmap(env Env, p *proc.Proc_t, addrArg, lengthArg, protArg, _, _, _ uint64) int64 {
	start := addrArg
	if start == 0 {
		start = p.MmapNext
		p.MmapNext += lengthArg
	}
	flags := vmm.FlagUser
	if protArg&protWrite != 0 {
		flags |= vmm.FlagWrite
	}
	if !env.MapPages(p.CR3, start, lengthArg, flags) {
		return int64(defs.Errno(defs.OutOfMemory))
	}
	return int64(start)
}

func sysMprotect(Env, *proc.Proc_t, uint64, uint64, uint64, uint64, uint64, uint64) int64 {
	return 0
}

func sysMunmap(env Env, p *proc.Proc_t, addrArg, lengthArg, _, _, _, _ uint64) int64 {
	env.UnmapPages(p.CR3, addrArg, lengthArg)
	return 0
}

func sysBrk(_ Env, p *proc.Proc_t, addrArg, _, _, _, _, _ uint64) int64 {
	const heapLimit = 128 << 20 // HEAP_SIZE, from original_source/kernel.c
	if addrArg != 0 && addrArg <= p.Heap+heapLimit {
		p.Brk = addrArg
	}
	return int64(p.Brk)
}

func sysSchedYield(env Env, p *proc.Proc_t, _, _, _, _, _, _ uint64) int64 {
	env.Procs().Yield()
	return 0
}

func sysDup(_ Env, p *proc.Proc_t, oldfdArg, _, _, _, _, _ uint64) int64 {
	fd, err := p.Fds.Dup(int(oldfdArg))
	return ok(fd, err)
}

func sysDup2(_ Env, p *proc.Proc_t, oldfdArg, newfdArg, _, _, _, _ uint64) int64 {
	return int64(p.Fds.Dup2(int(oldfdArg), int(newfdArg)))
}

// sysNanosleep busy-spins on the tick counter until the requested
// deadline, per spec.md §6 "nanosleep (busy-spin on the tick counter
// until deadline)". reqArg points to a {sec, nsec} pair; only a tick
// count derived from it is honored here, since this kernel's only clock
// is the 1 kHz PIT tick.
func sysNanosleep(env Env, p *proc.Proc_t, reqArg, _, _, _, _, _ uint64) int64 {
	ram := env.RAM()
	sec := readU64(ram, reqArg)
	nsec := readU64(ram, reqArg+8)
	ticks := int64(sec)*1000 + int64(nsec)/1_000_000
	deadline := env.Tick() + ticks
	for env.Tick() < deadline {
		env.Procs().Yield()
	}
	return 0
}

func sysGetpid(_ Env, p *proc.Proc_t, _, _, _, _, _, _ uint64) int64 {
	return int64(p.Pid)
}

func sysGetppid(_ Env, p *proc.Proc_t, _, _, _, _, _, _ uint64) int64 {
	return int64(p.Ppid)
}

func sysFork(env Env, p *proc.Proc_t, _, _, _, _, _, _ uint64) int64 {
	pid, err := env.Procs().Fork()
	return ok(int(pid), err)
}

// sysExecve parses an in-memory ELF image, copies every PT_LOAD segment
// into a freshly built address space that replaces the current one, and
// rewrites argv's string storage
// (not just the pointer array) onto the new user stack -- the fix
// spec.md §9 calls for over the source, which "copies argv pointers...
// but not the string storage behind them".
func sysExecve(env Env, p *proc.Proc_t, pathArg, argvArg, _, _, _, _ uint64) int64 {
	// Unlike the other syscalls in this file, execve cannot assume p.CR3
	// is the identity-mapped boot address space: a process that already
	// execve'd once is now running in a freshly built address space whose
	// low half loadELF mapped through MapPages, not through the identity
	// map. peekCString walks p.CR3's page tables instead of indexing RAM
	// directly, the same way readArgv and the rest of this function do.
	path := ustr.Mk(peekCString(env, p.CR3, pathArg))
	full := path
	if !path.IsAbsolute() {
		full = p.Cwd.Extend(path)
	}
	ino, err := env.FS().Lookup(full)
	if err != 0 {
		return int64(err)
	}
	if ino.Ops == nil {
		return int64(defs.Errno(defs.NotExecutable))
	}
	image := make([]byte, ino.Size)
	if _, err := ino.Ops.Read(ino, image, 0); err != 0 {
		return int64(err)
	}

	// argv must be read out of the *old* address space before it is torn
	// down; its string storage, not just its pointer array, has to make
	// it across to the new one (the bug spec.md §9 calls out).
	args := readArgv(env, p.CR3, argvArg)

	entry, cr3, heapBase, ok := loadELF(env, image)
	if !ok {
		return int64(defs.Errno(defs.NotExecutable))
	}
	rsp, ok := buildUserStack(env, cr3, args)
	if !ok {
		return int64(defs.Errno(defs.OutOfMemory))
	}

	old := p.CR3
	p.CR3 = cr3
	p.Entry = entry
	p.SavedRSP = rsp
	p.Heap = heapBase
	p.Brk = heapBase
	p.Stack = userStackTop
	if old != 0 && old != cr3 {
		env.Procs().FreeAddressSpace(old)
	}
	return int64(entry)
}

// ELF64 constants loadELF needs, per the ELF64 program header layout.
const (
	elfMagic = "\x7fELF"
	ptLoad   = 1
)

// userStackTop and userStackSize place the initial user stack the way
// original_source/kernel.c's USER_STACK_SIZE (32 KiB) does, just under the
// canonical address ceiling.
const (
	userStackTop  = 0x00007ffffffff000
	userStackSize = 32768
)

// loadELF parses an ELF64 executable image and maps every PT_LOAD segment
// into a freshly created address space, per spec.md §9's "minimal
// program-header parsing" scope (completeness beyond that, e.g. dynamic
// linking or section-header processing, is explicitly out of scope).
// Segment bytes are copied page by page through MapPages/Translate rather
// than indexed directly into RAM: a freshly created address space's low
// half is not identity-mapped the way the kernel's own is.
func loadELF(env Env, image []byte) (entry uint64, cr3 mem.Pa_t, heapBase uint64, ok bool) {
	if len(image) < 64 || string(image[:4]) != elfMagic {
		return 0, 0, 0, false
	}
	entry = binary.LittleEndian.Uint64(image[24:32])
	phoff := binary.LittleEndian.Uint64(image[32:40])
	phentsize := uint64(binary.LittleEndian.Uint16(image[54:56]))
	phnum := int(binary.LittleEndian.Uint16(image[56:58]))

	as, got := env.NewAddressSpace()
	if !got {
		return 0, 0, 0, false
	}

	var maxEnd uint64
	for i := 0; i < phnum; i++ {
		off := phoff + uint64(i)*phentsize
		if off+56 > uint64(len(image)) {
			return 0, 0, 0, false
		}
		ph := image[off : off+56]
		if binary.LittleEndian.Uint32(ph[0:4]) != ptLoad {
			continue
		}
		fileOff := binary.LittleEndian.Uint64(ph[8:16])
		vaddr := binary.LittleEndian.Uint64(ph[16:24])
		filesz := binary.LittleEndian.Uint64(ph[32:40])
		memsz := binary.LittleEndian.Uint64(ph[40:48])
		if fileOff+filesz > uint64(len(image)) || filesz > memsz {
			return 0, 0, 0, false
		}
		if !mapSegment(env, as, vaddr, memsz, image[fileOff:fileOff+filesz]) {
			return 0, 0, 0, false
		}
		if end := vaddr + memsz; end > maxEnd {
			maxEnd = end
		}
	}
	heapBase = util.Roundup(maxEnd, uint64(mem.PGSIZE))
	return entry, as, heapBase, true
}

// mapSegment installs one PT_LOAD segment: the whole page-rounded range is
// mapped and zeroed first (covering the memsz-filesz BSS tail), then the
// file-backed prefix is copied on top.
func mapSegment(env Env, cr3 mem.Pa_t, vaddr, memsz uint64, filedata []byte) bool {
	base := util.Rounddown(vaddr, uint64(mem.PGSIZE))
	end := util.Roundup(vaddr+memsz, uint64(mem.PGSIZE))
	if !env.MapPages(cr3, base, end-base, vmm.FlagUser|vmm.FlagWrite) {
		return false
	}
	if !pokeUser(env, cr3, base, make([]byte, end-base)) {
		return false
	}
	return pokeUser(env, cr3, vaddr, filedata)
}

// readArgv walks a NUL-terminated array of 8-byte pointers at addr in cr3's
// address space, reading each pointed-to C string.
func readArgv(env Env, cr3 mem.Pa_t, addr uint64) []string {
	var args []string
	for i := 0; ; i++ {
		ptrBytes, ok := peekUser(env, cr3, addr+uint64(i*8), 8)
		if !ok {
			break
		}
		ptr := binary.LittleEndian.Uint64(ptrBytes)
		if ptr == 0 {
			break
		}
		args = append(args, peekCString(env, cr3, ptr))
	}
	return args
}

// buildUserStack lays out argc, a NUL-terminated argv pointer array, and the
// argument strings themselves downward from the top of a freshly mapped
// user stack, returning the resulting %rsp.
func buildUserStack(env Env, cr3 mem.Pa_t, args []string) (uint64, bool) {
	base := uint64(userStackTop - userStackSize)
	if !env.MapPages(cr3, base, userStackSize, vmm.FlagUser|vmm.FlagWrite) {
		return 0, false
	}

	sp := uint64(userStackTop)
	ptrs := make([]uint64, len(args))
	for i, a := range args {
		b := append([]byte(a), 0)
		sp -= uint64(len(b))
		if !pokeUser(env, cr3, sp, b) {
			return 0, false
		}
		ptrs[i] = sp
	}

	sp &^= 7 // align before the pointer array

	var zero [8]byte
	sp -= 8
	if !pokeUser(env, cr3, sp, zero[:]) {
		return 0, false
	}
	for i := len(ptrs) - 1; i >= 0; i-- {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], ptrs[i])
		sp -= 8
		if !pokeUser(env, cr3, sp, b[:]) {
			return 0, false
		}
	}

	var argc [8]byte
	binary.LittleEndian.PutUint64(argc[:], uint64(len(args)))
	sp -= 8
	if !pokeUser(env, cr3, sp, argc[:]) {
		return 0, false
	}
	return sp, true
}

// pokeUser and peekUser copy bytes to/from a user address space through
// Translate, one page at a time, instead of indexing RAM directly — the
// only correct way to reach a freshly created address space's low half.
func pokeUser(env Env, cr3 mem.Pa_t, va uint64, data []byte) bool {
	ram := env.RAM()
	for i := 0; i < len(data); {
		pageVA := va + uint64(i)
		pa, ok := env.Translate(cr3, pageVA&^uint64(mem.PGSIZE-1))
		if !ok {
			return false
		}
		off := pageVA & uint64(mem.PGSIZE-1)
		n := uint64(mem.PGSIZE) - off
		if remain := uint64(len(data) - i); n > remain {
			n = remain
		}
		copy(ram[pa+off:pa+off+n], data[i:i+int(n)])
		i += int(n)
	}
	return true
}

func peekUser(env Env, cr3 mem.Pa_t, va uint64, n int) ([]byte, bool) {
	ram := env.RAM()
	buf := make([]byte, n)
	for i := 0; i < n; {
		pageVA := va + uint64(i)
		pa, ok := env.Translate(cr3, pageVA&^uint64(mem.PGSIZE-1))
		if !ok {
			return nil, false
		}
		off := pageVA & uint64(mem.PGSIZE-1)
		m := uint64(mem.PGSIZE) - off
		if remain := uint64(n - i); m > remain {
			m = remain
		}
		copy(buf[i:i+int(m)], ram[pa+off:pa+off+m])
		i += int(m)
	}
	return buf, true
}

func peekCString(env Env, cr3 mem.Pa_t, va uint64) string {
	var out []byte
	for i := uint64(0); ; i++ {
		b, ok := peekUser(env, cr3, va+i, 1)
		if !ok || b[0] == 0 {
			break
		}
		out = append(out, b[0])
	}
	return string(out)
}

func sysKill(env Env, _ *proc.Proc_t, pidArg, sigArg, _, _, _, _ uint64) int64 {
	return int64(env.Procs().Kill(defs.Pid_t(pidArg), int(sigArg)))
}

// fcntl command numbers, the handful spec.md's "fcntl" leaf needs.
const (
	F_DUPFD = 0
	F_GETFD = 1
	F_SETFD = 2
)

func sysFcntl(_ Env, p *proc.Proc_t, fdArg, cmdArg, argArg, _, _, _ uint64) int64 {
	switch cmdArg {
	case F_DUPFD:
		fd, err := p.Fds.Dup(int(fdArg))
		return ok(fd, err)
	case F_GETFD, F_SETFD:
		return 0
	default:
		return int64(defs.Errno(defs.InvalidArgument))
	}
}

// sysTruncate and sysFtruncate have no backend support (vfs.Backend has no
// resize operation), so like sysRename they report that honestly instead
// of faking success.
func sysTruncate(Env, *proc.Proc_t, uint64, uint64, uint64, uint64, uint64, uint64) int64 {
	return int64(defs.Errno(defs.NotImplemented))
}

func sysFtruncate(Env, *proc.Proc_t, uint64, uint64, uint64, uint64, uint64, uint64) int64 {
	return int64(defs.Errno(defs.NotImplemented))
}

func sysGetcwd(env Env, p *proc.Proc_t, bufArg, sizeArg, _, _, _, _ uint64) int64 {
	s := p.Cwd.String()
	if uint64(len(s)+1) > sizeArg {
		return int64(defs.Errno(defs.InvalidArgument))
	}
	copyOut(env.RAM(), bufArg, append([]byte(s), 0))
	return int64(len(s) + 1)
}

func sysChdir(env Env, p *proc.Proc_t, pathArg, _, _, _, _, _ uint64) int64 {
	path := ustr.Mk(readCString(env.RAM(), pathArg))
	full := path
	if !path.IsAbsolute() {
		full = p.Cwd.Extend(path)
	}
	ino, err := env.FS().Lookup(full)
	if err != 0 {
		return int64(err)
	}
	if !ino.IsDir {
		return int64(defs.Errno(defs.NotADirectory))
	}
	p.Cwd = ustr.Mk(full.String())
	return 0
}

func sysRename(Env, *proc.Proc_t, uint64, uint64, uint64, uint64, uint64, uint64) int64 {
	return int64(defs.Errno(defs.NotImplemented))
}

// sysMkdir creates the path's final component through Backend.Create.
// vfs.Backend has no directory-creating operation, so on tmpfs the new
// entry is a regular file, not a directory.
func sysMkdir(env Env, p *proc.Proc_t, pathArg, _, _, _, _, _ uint64) int64 {
	path := ustr.Mk(readCString(env.RAM(), pathArg))
	full := path
	if !path.IsAbsolute() {
		full = p.Cwd.Extend(path)
	}
	backend, residue, err := env.FS().Resolve(full)
	if err != 0 {
		return int64(err)
	}
	comps := residue.Split()
	if len(comps) == 0 {
		return int64(defs.Errno(defs.InvalidArgument))
	}
	dir := backend.Root()
	for _, c := range comps[:len(comps)-1] {
		next, err := backend.Lookup(dir, c.String())
		if err != 0 {
			return int64(err)
		}
		dir = next
	}
	_, err = backend.Create(dir, comps[len(comps)-1].String())
	return int64(err)
}

func sysRmdir(env Env, p *proc.Proc_t, pathArg, _, _, _, _, _ uint64) int64 {
	return sysUnlink(env, p, pathArg, 0, 0, 0, 0, 0)
}

func sysUnlink(env Env, p *proc.Proc_t, pathArg, _, _, _, _, _ uint64) int64 {
	path := ustr.Mk(readCString(env.RAM(), pathArg))
	full := path
	if !path.IsAbsolute() {
		full = p.Cwd.Extend(path)
	}
	backend, residue, err := env.FS().Resolve(full)
	if err != 0 {
		return int64(err)
	}
	comps := residue.Split()
	if len(comps) == 0 {
		return int64(defs.Errno(defs.InvalidArgument))
	}
	dir := backend.Root()
	for _, c := range comps[:len(comps)-1] {
		next, err := backend.Lookup(dir, c.String())
		if err != 0 {
			return int64(err)
		}
		dir = next
	}
	return int64(backend.Unlink(dir, comps[len(comps)-1].String()))
}

func sysGettimeofday(env Env, _ *proc.Proc_t, tvArg, _, _, _, _, _ uint64) int64 {
	sec, nsec := env.WallClock()
	ram := env.RAM()
	writeU64(ram, tvArg, uint64(sec))
	writeU64(ram, tvArg+8, uint64(nsec/1000))
	return 0
}

func sysGetuid(Env, *proc.Proc_t, uint64, uint64, uint64, uint64, uint64, uint64) int64 {
	return 0
}

func sysGetgid(Env, *proc.Proc_t, uint64, uint64, uint64, uint64, uint64, uint64) int64 {
	return 0
}

func sysUname(env Env, _ *proc.Proc_t, bufArg, _, _, _, _, _ uint64) int64 {
	writeUtsname(env.RAM(), bufArg)
	return 0
}

func sysMount(env Env, _ *proc.Proc_t, targetArg, fstypeArg, _, _, _, _ uint64) int64 {
	target := ustr.Mk(readCString(env.RAM(), targetArg))
	fstype := readCString(env.RAM(), fstypeArg)
	return int64(env.FS().Mount(target, fstype))
}

func sysUmount(env Env, _ *proc.Proc_t, targetArg, _, _, _, _, _ uint64) int64 {
	target := ustr.Mk(readCString(env.RAM(), targetArg))
	return int64(env.FS().Umount(target))
}

func sysTime(env Env, _ *proc.Proc_t, tlocArg, _, _, _, _, _ uint64) int64 {
	sec, _ := env.WallClock()
	if tlocArg != 0 {
		writeU64(env.RAM(), tlocArg, uint64(sec))
	}
	return sec
}
