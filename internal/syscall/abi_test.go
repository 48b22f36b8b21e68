package syscall

import (
	"testing"

	"golang.org/x/sys/unix"
)

// Entries whose dispatch number is meant to agree with the conventional
// x86-64 Linux ABI (the package doc's "where the two agree" set); mount,
// umount and time are deliberately off by the amount spec.md's redesigned
// table calls for and are checked nowhere near here.
func TestDispatchNumbersMatchLinuxABIWhereClaimed(t *testing.T) {
	tcs := []struct {
		name string
		nr   int
		want uint64
	}{
		{"read", 0, unix.SYS_READ},
		{"write", 1, unix.SYS_WRITE},
		{"open", 2, unix.SYS_OPEN},
		{"close", 3, unix.SYS_CLOSE},
		{"stat", 4, unix.SYS_STAT},
		{"fstat", 5, unix.SYS_FSTAT},
		{"lseek", 8, unix.SYS_LSEEK},
		{"mmap", 9, unix.SYS_MMAP},
		{"mprotect", 10, unix.SYS_MPROTECT},
		{"munmap", 11, unix.SYS_MUNMAP},
		{"brk", 12, unix.SYS_BRK},
		{"sched_yield", 24, unix.SYS_SCHED_YIELD},
		{"dup", 32, unix.SYS_DUP},
		{"dup2", 33, unix.SYS_DUP2},
		{"nanosleep", 35, unix.SYS_NANOSLEEP},
		{"getpid", 39, unix.SYS_GETPID},
		{"fork", 57, unix.SYS_FORK},
		{"execve", 59, unix.SYS_EXECVE},
		{"kill", 62, unix.SYS_KILL},
		{"fcntl", 72, unix.SYS_FCNTL},
		{"truncate", 76, unix.SYS_TRUNCATE},
		{"ftruncate", 77, unix.SYS_FTRUNCATE},
		{"getdents", 78, unix.SYS_GETDENTS},
		{"getcwd", 79, unix.SYS_GETCWD},
		{"chdir", 80, unix.SYS_CHDIR},
		{"rename", 82, unix.SYS_RENAME},
		{"mkdir", 83, unix.SYS_MKDIR},
		{"rmdir", 84, unix.SYS_RMDIR},
		{"unlink", 87, unix.SYS_UNLINK},
		{"gettimeofday", 96, unix.SYS_GETTIMEOFDAY},
		{"getuid", 102, unix.SYS_GETUID},
		{"getgid", 104, unix.SYS_GETGID},
		{"geteuid", 107, unix.SYS_GETEUID},
		{"getegid", 108, unix.SYS_GETEGID},
		{"getppid", 110, unix.SYS_GETPPID},
	}
	for _, tc := range tcs {
		if uint64(tc.nr) != tc.want {
			t.Errorf("%s: dispatch number %d, Linux ABI number %d", tc.name, tc.nr, tc.want)
		}
	}
}
