// Package circbuf implements a single-reader/single-writer circular byte
// buffer backed by a page frame allocator, used by the console to queue
// keyboard input. Adapted from the teacher's circbuf package; not safe for
// concurrent use, matching the teacher's own documented constraint.
package circbuf

import (
	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/mem"
)

// Circbuf_t is a circular buffer whose backing page is lazily allocated
// from a mem.PFA_t on first use.
type Circbuf_t struct {
	pfa   *mem.PFA_t
	pa    mem.Pa_t
	buf   []byte
	bufsz int
	head  int
	tail  int
}

// Init prepares cb to lazily allocate an sz-byte buffer (sz <= PGSIZE) from
// pfa on first read or write.
func (cb *Circbuf_t) Init(sz int, pfa *mem.PFA_t) {
	if sz <= 0 || sz > mem.PGSIZE {
		panic("bad circbuf size")
	}
	cb.pfa = pfa
	cb.bufsz = sz
	cb.head, cb.tail = 0, 0
}

func (cb *Circbuf_t) ensure() defs.Err_t {
	if cb.buf != nil {
		return 0
	}
	pa, ok := cb.pfa.AllocZeroed()
	if !ok {
		return defs.Errno(defs.OutOfMemory)
	}
	cb.pa = pa
	cb.buf = cb.pfa.RAM()[pa : pa+mem.Pa_t(cb.bufsz) : pa+mem.Pa_t(cb.bufsz)]
	return 0
}

// Release returns the backing page to the allocator.
func (cb *Circbuf_t) Release() {
	if cb.buf == nil {
		return
	}
	cb.pfa.Free(cb.pa, 1)
	cb.buf = nil
	cb.head, cb.tail = 0, 0
}

// Full reports whether the buffer cannot accept more bytes.
func (cb *Circbuf_t) Full() bool { return cb.head-cb.tail == cb.bufsz }

// Empty reports whether the buffer holds no bytes.
func (cb *Circbuf_t) Empty() bool { return cb.head == cb.tail }

// Used returns the number of bytes currently queued.
func (cb *Circbuf_t) Used() int { return cb.head - cb.tail }

// PushByte appends a single byte (e.g. one translated keypress), dropping
// it silently if the buffer is full — bytes already queued are kept and
// the newest input is lost, matching a real keyboard IRQ handler that
// cannot block.
func (cb *Circbuf_t) PushByte(b byte) defs.Err_t {
	if err := cb.ensure(); err != 0 {
		return err
	}
	if cb.Full() {
		return 0
	}
	cb.buf[cb.head%cb.bufsz] = b
	cb.head++
	return 0
}

// Read copies up to len(dst) queued bytes into dst, returning the count.
func (cb *Circbuf_t) Read(dst []byte) (int, defs.Err_t) {
	if err := cb.ensure(); err != 0 {
		return 0, err
	}
	n := 0
	for n < len(dst) && !cb.Empty() {
		dst[n] = cb.buf[cb.tail%cb.bufsz]
		cb.tail++
		n++
	}
	return n, 0
}
