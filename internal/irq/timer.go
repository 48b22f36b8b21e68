package irq

import "sync/atomic"

// PIT ports, per spec.md §6.
const (
	pitChannel0 = 0x40
	pitCommand  = 0x43
)

// PITDivisorBase is the PIT's input clock frequency; dividing it by the
// desired interrupt frequency gives the reload value, per spec.md §4.7.
const PITDivisorBase = 1193180

// DefaultFrequency is the default tick rate (1 kHz), per spec.md §4.7.
const DefaultFrequency = 1000

const pitSquareWaveMode = 0x36

// ProgramPIT configures the PIT to raise IRQ0 at frequency Hz.
func ProgramPIT(io PortIO, frequency int) {
	if frequency <= 0 {
		panic("bad timer frequency")
	}
	divisor := PITDivisorBase / frequency
	io.Out8(pitCommand, pitSquareWaveMode)
	io.Out8(pitChannel0, uint8(divisor&0xff))
	io.Out8(pitChannel0, uint8((divisor>>8)&0xff))
}

// Tick_t is the kernel's monotonic tick counter: a single 64-bit word,
// readable without synchronization because writes are single-word, per
// spec.md §3. atomic.Int64 is used anyway since nothing in Go guarantees
// word-tearing-free plain reads the way x86 does for aligned int64s.
type Tick_t struct {
	n atomic.Int64
}

// Handle increments the tick counter; this, and nothing else, is the
// timer interrupt handler's job (no preemption), per spec.md §4.7.
func (t *Tick_t) Handle() {
	t.n.Add(1)
}

// Get reads the current tick count.
func (t *Tick_t) Get() int64 {
	return t.n.Load()
}
