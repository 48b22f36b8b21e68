package irq

// 8259 PIC ports, per spec.md §6.
const (
	masterCmd  = 0x20
	masterData = 0x21
	slaveCmd   = 0xA0
	slaveData  = 0xA1
	ioDelay    = 0x80
)

// Remapped vector bases, per spec.md §4.7.
const (
	MasterBase = 0x20
	SlaveBase  = 0x28
)

const (
	icw1Init    = 0x11
	icw4_8086   = 0x01
	masterSlave = 0x04 // tells master there's a slave at IRQ2
	slaveID     = 0x02 // tells slave its cascade identity
)

func wait(io PortIO) { io.Out8(ioDelay, 0) }

// Remap reprograms the master/slave PIC vector bases to 0x20/0x28 so PIC
// interrupts never collide with CPU exception vectors, and must run
// before interrupts are enabled (spec.md §2 control flow).
func Remap(io PortIO) {
	io.Out8(masterCmd, icw1Init)
	wait(io)
	io.Out8(slaveCmd, icw1Init)
	wait(io)
	io.Out8(masterData, MasterBase)
	wait(io)
	io.Out8(slaveData, SlaveBase)
	wait(io)
	io.Out8(masterData, masterSlave)
	wait(io)
	io.Out8(slaveData, slaveID)
	wait(io)
	io.Out8(masterData, icw4_8086)
	wait(io)
	io.Out8(slaveData, icw4_8086)
	wait(io)
	// Unmask everything; this kernel has no other device IRQs to keep
	// quiet.
	io.Out8(masterData, 0x00)
	io.Out8(slaveData, 0x00)
}
