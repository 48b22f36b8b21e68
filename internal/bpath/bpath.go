// Package bpath canonicalizes filesystem paths, resolving "." and ".."
// components without touching the filesystem. The teacher's bpath package
// was reduced in the examples pack to a bare module stub; this
// implementation fills the role its callers (vfs.Open, VFS_t.Mount/Umount) need,
// in the same style as ustr.
package bpath

import "github.com/BXS-86/kernel/internal/ustr"

// Canonicalize resolves "." and ".." components of an absolute path,
// returning an absolute path with no trailing slash (except for "/"
// itself).
func Canonicalize(p ustr.Ustr) ustr.Ustr {
	parts := p.Split()
	stack := make([]ustr.Ustr, 0, len(parts))
	for _, part := range parts {
		switch {
		case part.Isdot():
			continue
		case part.Isdotdot():
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	if len(stack) == 0 {
		return ustr.MkUstrRoot()
	}
	out := ustr.MkUstr()
	for _, c := range stack {
		out = append(out, '/')
		out = append(out, c...)
	}
	return out
}
