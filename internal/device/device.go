// Package device implements the character-device registry and the
// bus/device enumeration stub spec.md §2's boot sequence calls for
// ("bus/device enumeration stubs"). Real PCI/ACHI/NIC probing is out of
// scope (spec.md Non-goals exclude networking and a real on-disk
// filesystem, and no physical bus exists to probe in a hosted kernel);
// what remains grounded on the teacher's pci package is the shape of a
// bus scan populating a device table before interrupts are enabled.
package device

import (
	"github.com/BXS-86/kernel/internal/defs"
	"github.com/BXS-86/kernel/internal/hashtable"
)

// CharDevice is anything addressable through a device identifier
// (D_CONSOLE, D_DEVNULL, D_STAT, D_PROF, ...), per spec.md §4.4's
// "Read/Write" default path for descriptors with no attached inode.
type CharDevice interface {
	Read(buf []byte) (int, defs.Err_t)
	Write(buf []byte) (int, defs.Err_t)
}

// Registry_t maps a device identifier (major<<8|minor, see defs.Mkdev) to
// its CharDevice, built once at boot and read-only thereafter, matching
// spec.md §5's "writes to shared tables... done only during boot".
type Registry_t struct {
	devices *hashtable.Hashtable_t // uint(id) -> CharDevice
}

// NewRegistry returns an empty device registry.
func NewRegistry() *Registry_t {
	return &Registry_t{devices: hashtable.MkHash(defs.MAX_DEVICES)}
}

// Register installs dev under id (only ever called during the boot
// window). If id is already registered, the earlier device stays in
// place and dev is not installed.
func (r *Registry_t) Register(id uint, dev CharDevice) {
	r.devices.Set(int(id), dev)
}

// Lookup returns the device registered under id, if any.
func (r *Registry_t) Lookup(id uint) (CharDevice, bool) {
	v, ok := r.devices.Get(int(id))
	if !ok {
		return nil, false
	}
	return v.(CharDevice), true
}

// DevNull implements CharDevice for D_DEVNULL: writes are discarded,
// reads always report EOF.
type DevNull struct{}

func (DevNull) Read([]byte) (int, defs.Err_t)       { return 0, 0 }
func (DevNull) Write(buf []byte) (int, defs.Err_t) { return len(buf), 0 }

// Bus represents one enumerable hardware bus; in this hosted kernel the
// only "bus" is the synthetic one Scan walks, standing in for the
// teacher's PCI config-space scan.
type Bus struct {
	Name    string
	Devices []Slot
}

// Slot describes one discovered device slot: vendor/device IDs the way
// PCI config space reports them, and the char-device id it registers, if
// it has one to offer the kernel.
type Slot struct {
	Vendor uint16
	Device uint16
	DevID  uint // 0 means "no char device", e.g. a bus bridge
}

// Scan enumerates buses, registering any CharDevice each slot offers.
// Called once during boot, before interrupts are enabled (spec.md §2
// control flow: "...bus/device enumeration stubs -> filesystem-type and
// character-device registration -> interrupts enabled").
func Scan(reg *Registry_t, buses []Bus, make func(Slot) (CharDevice, bool)) {
	for _, b := range buses {
		for _, slot := range b.Devices {
			if slot.DevID == 0 {
				continue
			}
			if dev, ok := make(slot); ok {
				reg.Register(slot.DevID, dev)
			}
		}
	}
}
