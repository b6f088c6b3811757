// device_bus.go - memory-mapped device dispatch

/*
device_bus.go generalises the teacher's MachineBus I/O region table
(machine_bus.go) — which maps callback pairs onto page-masked ranges of a
single flat address space — into a dispatcher over independent Device
values, each owning its own registers and its own tick. The teacher
folds device state directly into global onRead/onWrite closures; here
every device is a self-contained value satisfying the Device interface,
registered once at bus construction, which keeps UART/Timer/Wave/
Display/GPIO mutually ignorant of each other the way spec.md §4.5
describes them.
*/

package main

import "sort"

// Device is the register-level contract every memory-mapped peripheral
// implements, per spec.md §4.5.
type Device interface {
	// Name identifies the device in error messages and trace output.
	Name() string
	// Base returns the device's base address and span in the device
	// region; accesses are dispatched to exactly one device by range.
	Base() (base uint32, span uint32)
	// Read services a load of the given size (in bytes) at offset
	// bytes from Base().
	Read(offset uint32, size int) (uint32, error)
	// Write services a store of the given size at offset.
	Write(offset uint32, size int, value uint32) error
	// Tick advances the device's internal clock by one instruction.
	Tick()
	// Reset restores the device to its power-on state.
	Reset()
	// Interrupt reports whether the device currently holds its
	// interrupt line high.
	Interrupt() bool
}

// deviceSlot pairs a device with its registered range for dispatch.
type deviceSlot struct {
	dev  Device
	base uint32
	end  uint32 // exclusive
}

// DeviceBus dispatches device-region accesses to exactly one registered
// Device per spec.md §4.5 ("non-overlapping ranges; unmapped addresses
// fault").
type DeviceBus struct {
	slots []deviceSlot
}

// NewDeviceBus builds a bus that dispatches to the given devices, sorted
// by base address so lookups can use a simple linear scan — the device
// count here is small enough (five, per spec.md §4.5) that a binary
// search or page bitmap would be needless machinery.
func NewDeviceBus(devices ...Device) *DeviceBus {
	bus := &DeviceBus{}
	for _, d := range devices {
		base, span := d.Base()
		bus.slots = append(bus.slots, deviceSlot{dev: d, base: base, end: base + span})
	}
	sort.Slice(bus.slots, func(i, j int) bool { return bus.slots[i].base < bus.slots[j].base })
	return bus
}

// find returns the slot owning addr, or nil if addr lands in a gap
// between devices.
func (b *DeviceBus) find(addr uint32) *deviceSlot {
	for i := range b.slots {
		if addr >= b.slots[i].base && addr < b.slots[i].end {
			return &b.slots[i]
		}
	}
	return nil
}

// Read dispatches a load of size bytes at virtual address addr to its
// owning device.
func (b *DeviceBus) Read(addr uint32, size int) (uint32, error) {
	slot := b.find(addr)
	if slot == nil {
		return 0, &OutOfBoundsError{Addr: addr}
	}
	return slot.dev.Read(addr-slot.base, size)
}

// Write dispatches a store of size bytes at virtual address addr to its
// owning device.
func (b *DeviceBus) Write(addr uint32, size int, value uint32) error {
	slot := b.find(addr)
	if slot == nil {
		return &OutOfBoundsError{Addr: addr}
	}
	return slot.dev.Write(addr-slot.base, size, value)
}

// Tick advances every registered device by one instruction.
func (b *DeviceBus) Tick() {
	for i := range b.slots {
		b.slots[i].dev.Tick()
	}
}

// Reset restores every registered device to its power-on state.
func (b *DeviceBus) Reset() {
	for i := range b.slots {
		b.slots[i].dev.Reset()
	}
}

// CheckInterrupts returns a bitmask of pending device interrupts, bit 0
// reserved for the timer per spec.md §4.5/§12 (additional bits left for
// devices that gain one later; only the timer asserts one today).
func (b *DeviceBus) CheckInterrupts() uint32 {
	var mask uint32
	for i := range b.slots {
		if _, ok := b.slots[i].dev.(*TimerDevice); ok && b.slots[i].dev.Interrupt() {
			mask |= 1 << 0
		}
	}
	return mask
}

// Device returns the device registered at exactly base, or nil. Used by
// the driver to reach concrete devices (e.g. to flush Wave's output file
// on exit) without the bus exposing its internal slot slice.
func (b *DeviceBus) Device(base uint32) Device {
	for i := range b.slots {
		if b.slots[i].base == base {
			return b.slots[i].dev
		}
	}
	return nil
}
