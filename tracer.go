// tracer.go - instruction/memory trace ring buffers and the single-step gate

/*
tracer.go folds the teacher's MachineMonitor (debug_monitor.go) and its
breakpoint-channel machinery (debug_interface.go) down to what spec.md
§3/§4.3/§9 actually asks of a Tracer: a capability injected into the
CPU, four independent boolean toggles, two bounded ring buffers, and a
blocking single-step barrier. The teacher's monitor drives an entire
scroll-back TUI across multiple CPUs with run-until, hex-edit, and
macro scripting; none of that has a home here, since this system is
single-hart and the trace surface is three stdout prefixes
([ITRACE]/[MTRACE]/[SYSTEM]), not an interactive overlay. What survives
is the shape: a ring buffer of fixed capacity, a breakpoint set
checked before each step, and "previous register value" carried
alongside each register-trace event for change highlighting, mirroring
MachineMonitor.prevRegs.
*/

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// InstructionTraceEvent is one recorded fetch/decode for the instruction
// ring buffer.
type InstructionTraceEvent struct {
	PC  uint32
	Raw uint32
	Inst DecodedInstruction
}

// MemoryTraceEvent is one recorded load or store for the memory ring
// buffer.
type MemoryTraceEvent struct {
	Addr    uint32
	Size    int
	Value   uint32
	IsWrite bool
}

// RegisterChangeEvent pairs a register write with its prior value, so a
// renderer can highlight what changed — mirrors the teacher's
// prevRegs-based change detection in MachineMonitor.saveCurrentRegs.
type RegisterChangeEvent struct {
	Index    uint32
	Name     string
	OldValue uint32
	NewValue uint32
}

// ringBuffer is a fixed-capacity FIFO: pushing past capacity drops the
// oldest entry. Used identically for both trace buffers.
type ringBuffer[T any] struct {
	items []T
	cap   int
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	if capacity <= 0 {
		capacity = 16
	}
	return &ringBuffer[T]{cap: capacity}
}

func (r *ringBuffer[T]) push(v T) {
	r.items = append(r.items, v)
	if len(r.items) > r.cap {
		r.items = r.items[len(r.items)-r.cap:]
	}
}

func (r *ringBuffer[T]) snapshot() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// TracerOptions configures a Tracer at construction. The four booleans
// are taken as given: zero values leave every trace and single-step off.
type TracerOptions struct {
	InstructionTrace bool
	MemoryTrace      bool
	RegisterTrace    bool
	SingleStep       bool
	Capacity         int

	Out   io.Writer // trace line destination; defaults to os.Stdout
	Input io.Reader // single-step continuation source; defaults to os.Stdin
}

// Tracer is the injected debugging capability spec.md §9 calls for: the
// CPU holds a reference and checks cheap booleans, never global state.
type Tracer struct {
	itrace bool
	mtrace bool
	regtrace bool
	singleStep bool

	instructions *ringBuffer[InstructionTraceEvent]
	memory       *ringBuffer[MemoryTraceEvent]

	breakpoints map[uint32]bool
	prevRegs    [32]uint32
	haveRegs    bool

	out   io.Writer
	in    *bufio.Reader
}

// NewTracer builds a Tracer with the given options. A zero-value
// TracerOptions yields all traces off and no single-step — callers
// wanting spec.md's "default = enabled for all traces" behaviour must
// set those fields explicitly (main.go's flag wiring does this).
func NewTracer(opts TracerOptions) *Tracer {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	in := opts.Input
	if in == nil {
		in = os.Stdin
	}
	return &Tracer{
		itrace:       opts.InstructionTrace,
		mtrace:       opts.MemoryTrace,
		regtrace:     opts.RegisterTrace,
		singleStep:   opts.SingleStep,
		instructions: newRingBuffer[InstructionTraceEvent](opts.Capacity),
		memory:       newRingBuffer[MemoryTraceEvent](opts.Capacity),
		breakpoints:  make(map[uint32]bool),
		out:          out,
		in:           bufio.NewReader(in),
	}
}

// SingleStepEnabled reports whether the cooperative single-step barrier
// is armed.
func (t *Tracer) SingleStepEnabled() bool { return t.singleStep }

// SetSingleStep toggles the single-step barrier at runtime.
func (t *Tracer) SetSingleStep(enabled bool) { t.singleStep = enabled }

// WaitForContinue blocks on a single line read from the tracer's input,
// per spec.md §5: "the executor blocks on a line read from the host's
// standard input before returning; this is the one and only blocking
// point."
func (t *Tracer) WaitForContinue() {
	fmt.Fprint(t.out, "[SYSTEM] single-step: press enter to continue\n")
	_, _ = t.in.ReadString('\n')
}

// SetBreakpoint arms a breakpoint at addr.
func (t *Tracer) SetBreakpoint(addr uint32) { t.breakpoints[addr] = true }

// ClearBreakpoint disarms a breakpoint at addr, if any.
func (t *Tracer) ClearBreakpoint(addr uint32) { delete(t.breakpoints, addr) }

// ClearAllBreakpoints disarms every breakpoint.
func (t *Tracer) ClearAllBreakpoints() { t.breakpoints = make(map[uint32]bool) }

// BreakpointArmed reports whether addr currently carries a breakpoint.
func (t *Tracer) BreakpointArmed(addr uint32) bool { return t.breakpoints[addr] }

// ListBreakpoints returns the armed breakpoint addresses in no
// particular order.
func (t *Tracer) ListBreakpoints() []uint32 {
	out := make([]uint32, 0, len(t.breakpoints))
	for addr := range t.breakpoints {
		out = append(out, addr)
	}
	return out
}

// RecordInstruction appends a fetch/decode event to the instruction
// ring buffer and, if instruction tracing is enabled, writes an
// [ITRACE] line per spec.md §6.
func (t *Tracer) RecordInstruction(pc uint32, inst DecodedInstruction) {
	t.instructions.push(InstructionTraceEvent{PC: pc, Raw: inst.Raw, Inst: inst})
	if t.itrace {
		fmt.Fprintf(t.out, "[ITRACE] pc=0x%08X raw=0x%08X\n", pc, inst.Raw)
	}
}

// RecordMemory appends a load/store event to the memory ring buffer
// and, if memory tracing is enabled, writes an [MTRACE] line.
func (t *Tracer) RecordMemory(addr uint32, size int, value uint32, isWrite bool) {
	t.memory.push(MemoryTraceEvent{Addr: addr, Size: size, Value: value, IsWrite: isWrite})
	if t.mtrace {
		dir := "read"
		if isWrite {
			dir = "write"
		}
		fmt.Fprintf(t.out, "[MTRACE] %s addr=0x%08X size=%d value=0x%08X\n", dir, addr, size, value)
	}
}

// RecordRegisters compares snap against the previously recorded
// snapshot and, if register tracing is enabled, prints one [SYSTEM]
// line per changed register with its old and new value — the
// change-highlighting feature mirroring MachineMonitor.prevRegs.
func (t *Tracer) RecordRegisters(snap []RegisterSnapshot) []RegisterChangeEvent {
	var changes []RegisterChangeEvent
	for _, r := range snap {
		old := t.prevRegs[r.Index]
		if t.haveRegs && old != r.Value {
			changes = append(changes, RegisterChangeEvent{
				Index:    uint32(r.Index),
				Name:     r.Name,
				OldValue: old,
				NewValue: r.Value,
			})
		}
		t.prevRegs[r.Index] = r.Value
	}
	t.haveRegs = true

	if t.regtrace {
		for _, c := range changes {
			fmt.Fprintf(t.out, "[SYSTEM] reg %s (x%d) 0x%08X -> 0x%08X\n", c.Name, c.Index, c.OldValue, c.NewValue)
		}
	}
	return changes
}

// InstructionHistory returns a copy of the instruction ring buffer's
// current contents, oldest first.
func (t *Tracer) InstructionHistory() []InstructionTraceEvent { return t.instructions.snapshot() }

// MemoryHistory returns a copy of the memory ring buffer's current
// contents, oldest first.
func (t *Tracer) MemoryHistory() []MemoryTraceEvent { return t.memory.snapshot() }
