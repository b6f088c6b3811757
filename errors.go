// errors.go - fault taxonomy for the RV32I core

package main

import "fmt"

// DecodeError reports a word that does not decode into a known RV32I
// instruction, or whose fields violate an encoding constraint (e.g. an
// illegal shift funct7).
type DecodeError struct {
	Word   uint32
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at word 0x%08X: %s", e.Word, e.Reason)
}

// MisalignedAccessError is returned when a load, store, or fetch address
// is not naturally aligned for the requested size.
type MisalignedAccessError struct {
	Addr uint32
	Size int
}

func (e *MisalignedAccessError) Error() string {
	return fmt.Sprintf("misaligned access: addr=0x%08X size=%d", e.Addr, e.Size)
}

// OutOfBoundsError is returned when an address falls outside every
// defined region of the address map, lands in a gap between devices, or
// lies past the end of the backing RAM.
type OutOfBoundsError struct {
	Addr uint32
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("address out of bounds: 0x%08X", e.Addr)
}

// InvalidSizeError is returned for an access width a device or memory
// region does not support (e.g. a 4-byte access to a byte-only UART
// register).
type InvalidSizeError struct {
	Addr uint32
	Size int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid access size at 0x%08X: %d", e.Addr, e.Size)
}

// DeviceError wraps a device-specific failure (bad offset, out-of-range
// pixel coordinate, etc).
type DeviceError struct {
	Device string
	Reason string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Device, e.Reason)
}

// DeviceDisabledError is returned by a disabled device for any access
// inside its address range; the range itself is still reserved.
type DeviceDisabledError struct {
	Device string
}

func (e *DeviceDisabledError) Error() string {
	return fmt.Sprintf("%s: device disabled", e.Device)
}

// UnalignedPCError is returned when a step would leave the program
// counter on a non-4-byte boundary.
type UnalignedPCError struct {
	PC uint32
}

func (e *UnalignedPCError) Error() string {
	return fmt.Sprintf("unaligned pc: 0x%08X", e.PC)
}

// ProgramExitError is the fatal-but-clean termination raised by the
// SYS_EXIT ecall (EBREAK raises BreakpointHitError instead).
type ProgramExitError struct {
	Code uint32
}

func (e *ProgramExitError) Error() string {
	return fmt.Sprintf("program exit: code=%d", e.Code)
}

// BreakpointHitError halts the step loop when the fetch PC matches an
// address the tracer has armed as a breakpoint, or when EBREAK executes.
type BreakpointHitError struct {
	PC uint32
}

func (e *BreakpointHitError) Error() string {
	return fmt.Sprintf("breakpoint hit at 0x%08X", e.PC)
}

// exitCodeForError maps a fatal core error to the process exit code the
// driver should use, per spec.md §7.
func exitCodeForError(err error) int {
	switch e := err.(type) {
	case *BreakpointHitError:
		return 0
	case *ProgramExitError:
		return int(e.Code)
	default:
		return 1
	}
}
