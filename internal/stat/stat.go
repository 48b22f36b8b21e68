// Package stat defines the on-wire layout sys_stat/sys_fstat copy into a
// caller's buffer: a fixed-width C-style struct, laid out the same way the
// original_source/kernel.c stat_t is, so Bytes can hand the dispatcher a
// raw slice to copy out instead of marshaling field by field.
package stat

import "unsafe"

// Stat_t mirrors the subset of struct stat spec.md's inode carries: device,
// inode number, mode, size, rdev (for device-backed inodes), uid, block
// count, and the mtime pair. Unexported fields keep the layout fixed even
// if a caller forgets to use a setter.
type Stat_t struct {
	_dev    uint64
	_ino    uint64
	_mode   uint64
	_size   uint64
	_rdev   uint64
	_uid    uint64
	_blocks uint64
	_nlink  uint64
	_mSec   uint64
	_mNsec  uint64
}

func (st *Stat_t) Wdev(v uint64)    { st._dev = v }
func (st *Stat_t) Wino(v uint64)    { st._ino = v }
func (st *Stat_t) Wmode(v uint64)   { st._mode = v }
func (st *Stat_t) Wsize(v uint64)   { st._size = v }
func (st *Stat_t) Wrdev(v uint64)   { st._rdev = v }
func (st *Stat_t) Wuid(v uint64)    { st._uid = v }
func (st *Stat_t) Wblocks(v uint64) { st._blocks = v }
func (st *Stat_t) Wnlink(v uint64)  { st._nlink = v }
func (st *Stat_t) Wmtime(sec, nsec uint64) {
	st._mSec = sec
	st._mNsec = nsec
}

func (st *Stat_t) Mode() uint64   { return st._mode }
func (st *Stat_t) Size() uint64   { return st._size }
func (st *Stat_t) Rdev() uint64   { return st._rdev }
func (st *Stat_t) Rino() uint64   { return st._ino }
func (st *Stat_t) Blocks() uint64 { return st._blocks }
func (st *Stat_t) Nlink() uint64  { return st._nlink }

// Bytes exposes the struct's raw little-endian bytes for a direct copy
// into a user buffer, the same cast-to-bytes trick original_source/kernel.c
// uses to write struct stat without a field-by-field marshaler.
func (st *Stat_t) Bytes() []uint8 {
	const sz = unsafe.Sizeof(*st)
	sl := (*[sz]uint8)(unsafe.Pointer(&st._dev))
	return sl[:]
}
