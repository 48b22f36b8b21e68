// Package ustr implements the immutable path/string type used for every
// filesystem path inside the kernel, kept close to the teacher's ustr
// package but trimmed to what the VFS actually needs.
package ustr

// Ustr is an immutable byte-string path component or full path.
type Ustr []byte

// MkUstr returns an empty Ustr.
func MkUstr() Ustr { return Ustr{} }

// MkUstrRoot returns "/" as an Ustr.
func MkUstrRoot() Ustr { return Ustr("/") }

// Mk builds an Ustr from a Go string.
func Mk(s string) Ustr { return Ustr(s) }

// Isdot reports whether the string is ".".
func (us Ustr) Isdot() bool { return len(us) == 1 && us[0] == '.' }

// Isdotdot reports whether the string is "..".
func (us Ustr) Isdotdot() bool { return len(us) == 2 && us[0] == '.' && us[1] == '.' }

// Eq compares two Ustr values byte for byte.
func (us Ustr) Eq(s Ustr) bool {
	if len(us) != len(s) {
		return false
	}
	for i, v := range us {
		if v != s[i] {
			return false
		}
	}
	return true
}

// IsAbsolute reports whether the path begins with '/'.
func (us Ustr) IsAbsolute() bool {
	return len(us) > 0 && us[0] == '/'
}

// HasPrefix reports whether p is a path-component prefix of us: either an
// exact match, or p followed immediately by '/' within us.
func (us Ustr) HasPrefix(p Ustr) bool {
	if len(p) > len(us) {
		return false
	}
	if !Ustr(us[:len(p)]).Eq(p) {
		return false
	}
	if len(us) == len(p) {
		return true
	}
	if p.Eq(Ustr("/")) {
		return true
	}
	return us[len(p)] == '/'
}

// Extend appends '/' and p.
func (us Ustr) Extend(p Ustr) Ustr {
	tmp := make(Ustr, 0, len(us)+1+len(p))
	tmp = append(tmp, us...)
	tmp = append(tmp, '/')
	tmp = append(tmp, p...)
	return tmp
}

// TrimPrefix removes p (a path prefix per HasPrefix) from us and returns
// the residue: "/" for an exact match, otherwise the rest of us after p.
// The residue starts with '/' except when p is "/" itself, in which case
// it is us without its leading slash.
func (us Ustr) TrimPrefix(p Ustr) Ustr {
	if !us.HasPrefix(p) {
		return us
	}
	rest := us[len(p):]
	if len(rest) == 0 {
		return Ustr("/")
	}
	if rest[0] != '/' {
		return rest
	}
	return rest
}

// Split breaks the path into its '/'-separated, non-empty components.
func (us Ustr) Split() []Ustr {
	var parts []Ustr
	start := -1
	for i, b := range us {
		if b == '/' {
			if start >= 0 {
				parts = append(parts, us[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, us[start:])
	}
	return parts
}

// String renders the Ustr as a Go string.
func (us Ustr) String() string { return string(us) }
