// Package version formats the kernel identity surfaced by uname(2) and
// /proc/version, validating the release string with x/mod/semver so a
// malformed build tag is caught at boot rather than silently exposed to
// userspace.
package version

import "golang.org/x/mod/semver"

// Sysname is the value spec.md §8 scenario 1 requires uname().sysname to
// equal.
const Sysname = "BXKernel"

// Machine is the value spec.md §8 scenario 1 requires uname().machine to
// equal.
const Machine = "x86_64"

// Release is the kernel's build version, checked by IsValidRelease.
const Release = "v0.1.0"

// Nodename, Domainname are placeholder utsname fields the original
// BXS-86/kernel.c also fills in (struct utsname has them even though
// spec.md's distillation only names sysname/machine).
const (
	Nodename   = "bxkernel"
	Domainname = "(none)"
)

// Utsname mirrors the fields uname(2) fills in.
type Utsname struct {
	Sysname    string
	Nodename   string
	Release    string
	Version    string
	Machine    string
	Domainname string
}

// Uname returns the kernel's identity.
func Uname() Utsname {
	return Utsname{
		Sysname:    Sysname,
		Nodename:   Nodename,
		Release:    Release,
		Version:    VersionLine(),
		Machine:    Machine,
		Domainname: Domainname,
	}
}

// VersionLine is the text procfs's /proc/version returns, matching
// spec.md §8 scenario 2's expected "BXKernel x86_64\n".
func VersionLine() string {
	return Sysname + " " + Machine + "\n"
}

// IsValidRelease reports whether Release parses as a semantic version.
func IsValidRelease() bool {
	return semver.IsValid(Release)
}

func init() {
	if !IsValidRelease() {
		panic("version: Release is not a valid semver tag: " + Release)
	}
}
