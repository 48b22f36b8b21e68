// Package defs holds types and constants shared across every kernel
// subsystem: the errno taxonomy, device identifiers, and the small
// capability interfaces that let the VFS and process layers stay
// backend-agnostic.
package defs

// Err_t is a negated errno value, exactly as a syscall handler returns it.
// Zero and positive values mean success; the magnitude of a negative value
// names the errno. Err_t implements error so call sites outside the hot
// dispatch path (tests, tools, boot code) can use it idiomatically.
type Err_t int

func (e Err_t) Error() string {
	if e >= 0 {
		return "success"
	}
	if s, ok := errnoNames[int(-e)]; ok {
		return s
	}
	return "errno " + itoa(int(-e))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// The errno table, carried in full from original_source/kernel.c so that
// any handler may surface a precise code even though spec.md's §7 table
// only names the handful the core's own operations raise directly.
const (
	EPERM        Err_t = 1
	ENOENT       Err_t = 2
	ESRCH        Err_t = 3
	EINTR        Err_t = 4
	EIO          Err_t = 5
	ENXIO        Err_t = 6
	E2BIG        Err_t = 7
	ENOEXEC      Err_t = 8
	EBADF        Err_t = 9
	ECHILD       Err_t = 10
	EAGAIN       Err_t = 11
	ENOMEM       Err_t = 12
	EACCES       Err_t = 13
	EFAULT       Err_t = 14
	ENOTBLK      Err_t = 15
	EBUSY        Err_t = 16
	EEXIST       Err_t = 17
	EXDEV        Err_t = 18
	ENODEV       Err_t = 19
	ENOTDIR      Err_t = 20
	EISDIR       Err_t = 21
	EINVAL       Err_t = 22
	ENFILE       Err_t = 23
	EMFILE       Err_t = 24
	ENOTTY       Err_t = 25
	ETXTBSY      Err_t = 26
	EFBIG        Err_t = 27
	ENOSPC       Err_t = 28
	ESPIPE       Err_t = 29
	EROFS        Err_t = 30
	EMLINK       Err_t = 31
	EPIPE        Err_t = 32
	EDOM         Err_t = 33
	ERANGE       Err_t = 34
	ENAMETOOLONG Err_t = 36
	ENOSYS       Err_t = 38
	ENOTEMPTY    Err_t = 39
	ELOOP        Err_t = 40
	ENODATA      Err_t = 61
	ETIME        Err_t = 62
	EOVERFLOW    Err_t = 75
	EBADMSG      Err_t = 74
)

var errnoNames = map[int]string{
	1: "EPERM", 2: "ENOENT", 3: "ESRCH", 4: "EINTR", 5: "EIO", 6: "ENXIO",
	7: "E2BIG", 8: "ENOEXEC", 9: "EBADF", 10: "ECHILD", 11: "EAGAIN",
	12: "ENOMEM", 13: "EACCES", 14: "EFAULT", 15: "ENOTBLK", 16: "EBUSY",
	17: "EEXIST", 18: "EXDEV", 19: "ENODEV", 20: "ENOTDIR", 21: "EISDIR",
	22: "EINVAL", 23: "ENFILE", 24: "EMFILE", 25: "ENOTTY", 26: "ETXTBSY",
	27: "EFBIG", 28: "ENOSPC", 29: "ESPIPE", 30: "EROFS", 31: "EMLINK",
	32: "EPIPE", 33: "EDOM", 34: "ERANGE", 36: "ENAMETOOLONG", 38: "ENOSYS",
	39: "ENOTEMPTY", 40: "ELOOP", 61: "ENODATA", 62: "ETIME",
	74: "EBADMSG", 75: "EOVERFLOW",
}

// Kind names the errno categories spec.md §7 requires the core to
// distinguish, each mapped to the concrete Err_t a handler returns.
type Kind int

const (
	NoSuchFile Kind = iota
	BadDescriptor
	OutOfMemory
	TooManyFiles
	NotADirectory
	InvalidArgument
	NotImplemented
	ReadOnlyFS
	NoSuchProcess
	NoDevice
	NotExecutable
	TooManyProcesses
)

// Errno maps a Kind to the Err_t a handler should return (already negated).
func Errno(k Kind) Err_t {
	switch k {
	case NoSuchFile:
		return -ENOENT
	case BadDescriptor:
		return -EBADF
	case OutOfMemory:
		return -ENOMEM
	case TooManyFiles:
		return -EMFILE
	case NotADirectory:
		return -ENOTDIR
	case InvalidArgument:
		return -EINVAL
	case NotImplemented:
		return -ENOSYS
	case ReadOnlyFS:
		return -EROFS
	case NoSuchProcess:
		return -ESRCH
	case NoDevice:
		return -ENODEV
	case NotExecutable:
		return -ENOEXEC
	case TooManyProcesses:
		return -EAGAIN
	default:
		return -EINVAL
	}
}
