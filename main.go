// main.go - driver: wires CPU, Memory, DeviceBus, and Tracer together and runs the fetch-decode-execute loop

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagNoITrace   bool
	flagNoMTrace   bool
	flagNoRegTrace bool
	flagStep       bool
)

func main() {
	root := &cobra.Command{
		Use:   "rv32i [binary|config.toml]",
		Short: "RV32I reference CPU emulator",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().BoolVar(&flagNoITrace, "no-itrace", false, "disable instruction trace")
	root.Flags().BoolVar(&flagNoMTrace, "no-mtrace", false, "disable memory trace")
	root.Flags().BoolVar(&flagNoRegTrace, "no-regtrace", false, "disable register trace")
	root.Flags().BoolVar(&flagStep, "step", false, "enable single-step (blocks on stdin line between steps)")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]

	var cfg Config
	if looksLikeConfig(path) {
		loaded, err := LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = DefaultConfig(path)
	}

	cfg.Debug.InstructionTrace = cfg.Debug.InstructionTrace && !flagNoITrace
	cfg.Debug.MemoryTrace = cfg.Debug.MemoryTrace && !flagNoMTrace
	cfg.Debug.RegisterTrace = cfg.Debug.RegisterTrace && !flagNoRegTrace
	if flagStep {
		cfg.Debug.SingleStep = true
	}

	uart := NewUARTDevice(cfg.UART.Base, cfg.UART.Enabled, os.Stdout)
	timer := NewTimerDevice(cfg.Timer.Base, cfg.Timer.Enabled, cfg.Timer.AutoReload, cfg.Timer.IRQEnabled)
	timer.control |= timerControlEnable

	wave, waveCloser, err := buildWaveDevice(cfg.Wave)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[SYSTEM] wave device: %v\n", err)
		os.Exit(1)
	}
	defer waveCloser()

	display, displayCloser := buildDisplayDevice(cfg.Display)
	defer displayCloser()

	gpio := NewGPIODevice(cfg.GPIO.Base, cfg.GPIO.Enabled, nil)

	bus := NewDeviceBus(uart, timer, wave, display, gpio)
	mem := NewMemory(cfg.Memory.Size, bus)

	if err := LoadProgramFile(mem, cfg.Program.Binary); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		waveCloser()
		displayCloser()
		os.Exit(1)
	}

	tracer := NewTracer(TracerOptions{
		InstructionTrace: cfg.Debug.InstructionTrace,
		MemoryTrace:      cfg.Debug.MemoryTrace,
		RegisterTrace:    cfg.Debug.RegisterTrace,
		SingleStep:       cfg.Debug.SingleStep,
		Capacity:         cfg.Debug.TraceLimit,
		Out:              os.Stdout,
		Input:            os.Stdin,
	})

	if tracer.SingleStepEnabled() && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stdout, "[SYSTEM] single-step mode: interactive terminal detected")
	}

	cpu := NewCPU(mem, tracer)

	// os.Exit skips deferred calls, so release the devices explicitly.
	code := runLoop(cpu)
	waveCloser()
	displayCloser()
	os.Exit(code)
	return nil
}

// runLoop steps the CPU until a fatal error ends the run, returning the
// process exit code per spec.md §7's mapping.
func runLoop(cpu *CPU) int {
	for {
		if err := cpu.Step(); err != nil {
			return exitForStepError(err)
		}
	}
}

// exitForStepError maps a Step() error to a process exit code via
// exitCodeForError (errors.go). Per spec.md §7 only "all other errors"
// — neither BreakpointHit nor ProgramExit — are logged to stderr.
func exitForStepError(err error) int {
	switch err.(type) {
	case *BreakpointHitError, *ProgramExitError:
	default:
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	return exitCodeForError(err)
}

// buildWaveDevice constructs the Wave device with its file-dump sink
// and, where a host audio backend is available, a live-playback sink,
// per SPEC_FULL.md §11. The returned closer releases both on exit.
func buildWaveDevice(cfg WaveConfig) (*WaveDevice, func(), error) {
	var out io.WriteCloser
	if cfg.Enabled && cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return nil, func() {}, err
		}
		out = f
	}

	var sink waveSampleSink
	if cfg.Enabled && cfg.LiveAudio {
		live, liveErr := newOtoWaveSink()
		if liveErr == nil {
			sink = live
		} else {
			fmt.Fprintf(os.Stderr, "[SYSTEM] live audio unavailable: %v\n", liveErr)
		}
	}

	device := NewWaveDevice(cfg.Base, cfg.Enabled, out, sink)
	closer := func() {
		if err := device.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[SYSTEM] wave device close: %v\n", err)
		}
	}
	return device, closer, nil
}

// buildDisplayDevice constructs the Display device with the ebiten
// window backend, per SPEC_FULL.md §11.
func buildDisplayDevice(cfg DisplayConfig) (*DisplayDevice, func()) {
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = 256
	}
	if height <= 0 {
		height = 256
	}

	device := NewDisplayDevice(cfg.Base, cfg.Enabled, width, height, nil)
	device.SetBackend(NewEbitenDisplayBackend(device))
	closer := func() {
		if err := device.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[SYSTEM] display device close: %v\n", err)
		}
	}
	return device, closer
}
