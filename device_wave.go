// device_wave.go - single-voice waveform generator

/*
device_wave.go generalises the teacher's SoundChip (audio_chip.go), a
multi-channel register-driven synth clocked by a ring buffer and a real
sample-rate timer, down to the single CONTROL/FREQUENCY/AMPLITUDE/PHASE/
DUTY voice spec.md §4.5 specifies, clocked once per instruction instead
of once per audio frame. Two sinks consume each generated sample: a
decimal-per-line dump file (the spec's contract) and, when a live
backend is attached, the host speaker (device_wave_backend_oto.go).

The sample clock here is instructions-per-second, not wall-clock
seconds — ticking is driven by the executor's one-tick-per-instruction
cadence, so a 1 MHz instruction rate plays a very different pitch than a
real 1 MHz audio sample rate would. This is documented rather than
"fixed" because correcting it would require wall-clock threading the
spec's single-threaded execution model (§5) deliberately excludes.
*/

package main

import (
	"fmt"
	"io"
	"math"
)

const (
	waveRegControl   = 0x0
	waveRegFrequency = 0x4
	waveRegAmplitude = 0x8
	waveRegPhase     = 0xC
	waveRegDuty      = 0x10
	waveSpan         = 0x14

	waveControlEnable = 1 << 0
	waveWaveformShift = 1
	waveWaveformMask  = 0x7 // bits 3:1
)

const (
	waveformSine = iota
	waveformSquare
	waveformTriangle
	waveformSawtooth
)

// waveSampleSink receives each generated floating-point sample as it's
// produced, in addition to the file dump. Used to stream audio live.
type waveSampleSink interface {
	Push(sample float32)
	Close() error
}

// WaveDevice is a single-voice oscillator ticked once per instruction.
type WaveDevice struct {
	base    uint32
	enabled bool

	control   uint32
	frequency uint32
	amplitude uint32
	phase     uint32
	duty      uint32

	sampleCount uint32
	out         io.WriteCloser
	liveSink    waveSampleSink
}

// NewWaveDevice builds a Wave device at base, dumping samples to out (may
// be nil to disable the file sink) and optionally streaming live audio
// through sink (may be nil). duty starts at 50 (a 50% square wave),
// matching the reference device's power-on default.
func NewWaveDevice(base uint32, enabled bool, out io.WriteCloser, sink waveSampleSink) *WaveDevice {
	return &WaveDevice{base: base, enabled: enabled, duty: 50, out: out, liveSink: sink}
}

func (w *WaveDevice) Name() string { return "wave" }

func (w *WaveDevice) Base() (uint32, uint32) { return w.base, waveSpan }

func (w *WaveDevice) Read(offset uint32, size int) (uint32, error) {
	if !w.enabled {
		return 0, &DeviceDisabledError{Device: w.Name()}
	}
	if size != 4 {
		return 0, &InvalidSizeError{Addr: w.base + offset, Size: size}
	}
	switch offset {
	case waveRegControl:
		return w.control, nil
	case waveRegFrequency:
		return w.frequency, nil
	case waveRegAmplitude:
		return w.amplitude, nil
	case waveRegPhase:
		return w.phase, nil
	case waveRegDuty:
		return w.duty, nil
	default:
		return 0, &DeviceError{Device: w.Name(), Reason: "no register at that offset"}
	}
}

func (w *WaveDevice) Write(offset uint32, size int, value uint32) error {
	if !w.enabled {
		return &DeviceDisabledError{Device: w.Name()}
	}
	if size != 4 {
		return &InvalidSizeError{Addr: w.base + offset, Size: size}
	}
	switch offset {
	case waveRegControl:
		w.control = value
	case waveRegFrequency:
		w.frequency = value
	case waveRegAmplitude:
		if value > 255 {
			value = 255
		}
		w.amplitude = value
	case waveRegPhase:
		w.phase = value % 360
	case waveRegDuty:
		if value > 100 {
			value = 100
		}
		w.duty = value
	default:
		return &DeviceError{Device: w.Name(), Reason: "no register at that offset"}
	}
	return nil
}

func (w *WaveDevice) Tick() {
	if !w.enabled || w.control&waveControlEnable == 0 {
		return
	}
	t := float64(w.sampleCount) / 1000.0
	phaseRad := float64(w.phase) * math.Pi / 180.0
	angle := 2*math.Pi*float64(w.frequency)*t + phaseRad
	amp := float64(w.amplitude) / 255.0

	var raw float64
	switch (w.control >> waveWaveformShift) & waveWaveformMask {
	case waveformSine:
		raw = math.Sin(angle)
	case waveformSquare:
		duty := float64(w.duty) / 100.0
		frac := math.Mod(angle/(2*math.Pi), 1.0)
		if frac < 0 {
			frac++
		}
		if frac < duty {
			raw = 1.0
		} else {
			raw = -1.0
		}
	case waveformTriangle:
		frac := math.Mod(angle/(2*math.Pi)+0.25, 1.0)
		if frac < 0 {
			frac++
		}
		raw = 4*math.Abs(frac-0.5) - 1.0
	case waveformSawtooth:
		frac := math.Mod(angle/(2*math.Pi), 1.0)
		if frac < 0 {
			frac++
		}
		raw = 2*frac - 1.0
	}

	sample := amp * raw
	if w.out != nil {
		fmt.Fprintf(w.out, "%.6f\n", sample)
	}
	if w.liveSink != nil {
		w.liveSink.Push(float32(sample))
	}
	w.sampleCount++
}

func (w *WaveDevice) Reset() {
	w.sampleCount = 0
	w.control = 0
}

func (w *WaveDevice) Interrupt() bool { return false }

// Close releases the Wave device's file and live-audio sinks, per
// spec.md §5's scoped-release requirement for the output file resource.
func (w *WaveDevice) Close() error {
	var err error
	if w.liveSink != nil {
		err = w.liveSink.Close()
	}
	if w.out != nil {
		if cerr := w.out.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
