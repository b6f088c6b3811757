// memory.go - unified memory: RAM, address translation, and the device mux

/*
memory.go generalises the teacher's memory_bus.go (a flat byte slice plus
a page-keyed I/O region table) to the three-region virtual address map
spec.md §3/§4.4 describes: a code segment, a data segment, and a device
region, each translated to a physical RAM offset or to the DeviceBus.
Where the teacher biases every I/O address by table lookup on a fixed
page size, translate() here is a small ordered range check — deliberately
kept as a free function per spec.md §9 ("Address translation as a
function, not a branchy property of the Memory struct") so device
dispatch can evolve without touching RAM layout.
*/

package main

import "encoding/binary"

const (
	// DefaultMemorySize is the size of the backing physical RAM, matching
	// the "e.g., 256 MiB" sizing spec.md §3 suggests.
	DefaultMemorySize = 256 * 1024 * 1024

	// Virtual address map, per spec.md §3.
	CodeSegmentBase = 0x80000000
	CodeSegmentEnd  = 0x81000000 // exclusive
	DataSegmentBase = 0x81000000
	DataSegmentEnd  = 0x82000000 // exclusive
	DeviceBase      = 0x82000000

	// EntryPoint is the fixed program entry point and initial PC.
	EntryPoint = CodeSegmentBase

	codeSegmentPhysBase = 0x00000000
	dataSegmentPhysBase = 0x01000000
)

// translateKind tags what a translated address resolves to.
type translateKind int

const (
	translateRAM translateKind = iota
	translateDevice
)

// translation is the result of translate(): either a physical RAM offset
// or an indication that the access belongs on the device bus, carrying
// the original virtual address for the bus to re-decode into a device and
// device-relative offset.
type translation struct {
	kind     translateKind
	physAddr uint32 // valid when kind == translateRAM
	virtAddr uint32 // valid when kind == translateDevice
}

// translate maps a virtual address into either a physical RAM offset or a
// device-region indication. Ranges are checked in order; any address
// outside every defined range is OutOfBoundsError.
func translate(addr uint32) (translation, error) {
	switch {
	case addr >= CodeSegmentBase && addr < CodeSegmentEnd:
		return translation{kind: translateRAM, physAddr: codeSegmentPhysBase + (addr - CodeSegmentBase)}, nil
	case addr >= DataSegmentBase && addr < DataSegmentEnd:
		return translation{kind: translateRAM, physAddr: dataSegmentPhysBase + (addr - DataSegmentBase)}, nil
	case addr >= DeviceBase:
		return translation{kind: translateDevice, virtAddr: addr}, nil
	default:
		return translation{}, &OutOfBoundsError{Addr: addr}
	}
}

// checkAligned verifies addr is naturally aligned for size, independent
// of which region the address falls in (spec.md §4.4: "Alignment and
// length are checked before translation").
func checkAligned(addr uint32, size int) error {
	if size != 1 && size != 2 && size != 4 {
		return &InvalidSizeError{Addr: addr, Size: size}
	}
	if addr%uint32(size) != 0 {
		return &MisalignedAccessError{Addr: addr, Size: size}
	}
	return nil
}

// Memory is the unified RAM + device mux described in spec.md §4.4: a
// flat byte vector for physical RAM plus an owned DeviceBus that services
// accesses landing in the device region.
type Memory struct {
	ram []byte
	bus *DeviceBus
}

// NewMemory allocates `size` bytes of backing RAM and wires the given
// DeviceBus as the device-region handler.
func NewMemory(size int, bus *DeviceBus) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{ram: make([]byte, size), bus: bus}
}

// ReadWord reads `size` bytes (1, 2, or 4) at addr and returns them
// zero-extended into a uint32, honouring natural alignment.
func (m *Memory) ReadWord(addr uint32, size int) (uint32, error) {
	if err := checkAligned(addr, size); err != nil {
		return 0, err
	}
	t, err := translate(addr)
	if err != nil {
		return 0, err
	}
	if t.kind == translateDevice {
		return m.bus.Read(t.virtAddr, size)
	}
	return m.readRAM(t.physAddr, size)
}

// WriteWord writes the low `size` bytes of value at addr.
func (m *Memory) WriteWord(addr uint32, value uint32, size int) error {
	if err := checkAligned(addr, size); err != nil {
		return err
	}
	t, err := translate(addr)
	if err != nil {
		return err
	}
	if t.kind == translateDevice {
		return m.bus.Write(t.virtAddr, size, value)
	}
	return m.writeRAM(t.physAddr, value, size)
}

// ReadBytes returns a copy of `length` raw bytes starting at addr. The
// executor fetches through ReadWord, not through this; it refuses the
// device region since devices have no notion of a byte-range read.
func (m *Memory) ReadBytes(addr uint32, length int) ([]byte, error) {
	t, err := translate(addr)
	if err != nil {
		return nil, err
	}
	if t.kind == translateDevice {
		return nil, &DeviceError{Device: "memory", Reason: "bulk read not supported on device region"}
	}
	if int(t.physAddr)+length > len(m.ram) {
		return nil, &OutOfBoundsError{Addr: addr}
	}
	out := make([]byte, length)
	copy(out, m.ram[t.physAddr:int(t.physAddr)+length])
	return out, nil
}

// WriteBytes bulk-copies data starting at addr. This is the loader's only
// entry point into Memory; it is refused for the device region.
func (m *Memory) WriteBytes(addr uint32, data []byte) error {
	t, err := translate(addr)
	if err != nil {
		return err
	}
	if t.kind == translateDevice {
		return &DeviceError{Device: "memory", Reason: "bulk write not supported on device region"}
	}
	if int(t.physAddr)+len(data) > len(m.ram) {
		return &OutOfBoundsError{Addr: addr}
	}
	copy(m.ram[t.physAddr:], data)
	return nil
}

// TickDevices advances every device's internal clock by one instruction,
// per spec.md §4.4/§5 ("one instruction ≡ one tick").
func (m *Memory) TickDevices() {
	m.bus.Tick()
}

// PendingInterrupts forwards the device bus's interrupt bitmask.
func (m *Memory) PendingInterrupts() uint32 {
	return m.bus.CheckInterrupts()
}

func (m *Memory) readRAM(phys uint32, size int) (uint32, error) {
	if int(phys)+size > len(m.ram) {
		return 0, &OutOfBoundsError{Addr: phys}
	}
	switch size {
	case 1:
		return uint32(m.ram[phys]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(m.ram[phys : phys+2])), nil
	case 4:
		return binary.LittleEndian.Uint32(m.ram[phys : phys+4]), nil
	default:
		return 0, &InvalidSizeError{Addr: phys, Size: size}
	}
}

func (m *Memory) writeRAM(phys uint32, value uint32, size int) error {
	if int(phys)+size > len(m.ram) {
		return &OutOfBoundsError{Addr: phys}
	}
	switch size {
	case 1:
		m.ram[phys] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(m.ram[phys:phys+2], uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(m.ram[phys:phys+4], value)
	default:
		return &InvalidSizeError{Addr: phys, Size: size}
	}
	return nil
}

// Reset zeroes RAM and resets every device, matching the teacher's
// uniform Reset() convention (component_reset.go).
func (m *Memory) Reset() {
	for i := range m.ram {
		m.ram[i] = 0
	}
	m.bus.Reset()
}
