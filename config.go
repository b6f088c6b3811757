// config.go - TOML configuration file loading

/*
config.go is new relative to the teacher, which hard-codes its device
map and GUI settings as Go constants (file_io_constants.go,
video_chip.go's VIDEO_CTRL etc.) rather than loading them from a file.
SPEC_FULL.md §10 calls for an actual config layer, so this borrows the
dependency the wider reference corpus uses for exactly this job —
github.com/BurntSushi/toml — and defines one struct per spec.md §6's
table list: [program], [memory], [debug], and one table per device.
Binary-image building and the config-file loading *mechanics* are
explicitly out of spec.md's scope; this is the thin struct-plus-Decode
call that scope still leaves room for.
*/

package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ProgramConfig names the guest binary to load.
type ProgramConfig struct {
	Binary string `toml:"binary"`
}

// MemoryConfig sizes the backing RAM.
type MemoryConfig struct {
	Size int `toml:"size"`
}

// DebugConfig carries the four trace/step booleans plus the ring
// buffer capacity, per spec.md §6's [debug] table.
type DebugConfig struct {
	InstructionTrace bool `toml:"itrace"`
	MemoryTrace      bool `toml:"mtrace"`
	RegisterTrace    bool `toml:"regtrace"`
	SingleStep       bool `toml:"step"`
	TraceLimit       int  `toml:"trace_limit"`
}

// UARTConfig configures the UART device.
type UARTConfig struct {
	Enabled bool   `toml:"enabled"`
	Base    uint32 `toml:"base_addr"`
}

// TimerConfig configures the Timer device.
type TimerConfig struct {
	Enabled      bool   `toml:"enabled"`
	Base         uint32 `toml:"base_addr"`
	AutoReload   bool   `toml:"auto_reload"`
	IRQEnabled   bool   `toml:"interrupt_enabled"`
}

// WaveConfig configures the Wave device.
type WaveConfig struct {
	Enabled    bool   `toml:"enabled"`
	Base       uint32 `toml:"base_addr"`
	OutputFile string `toml:"output_file"`
	SampleRate int    `toml:"sample_rate"`
	LiveAudio  bool   `toml:"live_audio"`
}

// DisplayConfig configures the Display device.
type DisplayConfig struct {
	Enabled bool   `toml:"enabled"`
	Base    uint32 `toml:"base_addr"`
	Title   string `toml:"title"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
}

// GPIOConfig configures the (optional) GPIO device.
type GPIOConfig struct {
	Enabled bool   `toml:"enabled"`
	Base    uint32 `toml:"base_addr"`
}

// Config is the root of the TOML configuration file, per spec.md §6.
type Config struct {
	Program ProgramConfig `toml:"program"`
	Memory  MemoryConfig  `toml:"memory"`
	Debug   DebugConfig   `toml:"debug"`
	UART    UARTConfig    `toml:"uart"`
	Timer   TimerConfig   `toml:"timer"`
	Wave    WaveConfig    `toml:"wave"`
	Display DisplayConfig `toml:"display"`
	GPIO    GPIOConfig    `toml:"gpio"`
}

// DefaultConfig returns the configuration main.go falls back to when
// the positional argument is a raw binary rather than a config file:
// every device enabled at its spec.md §6 default base address, traces
// on, single-step off.
func DefaultConfig(binary string) Config {
	return Config{
		Program: ProgramConfig{Binary: binary},
		Memory:  MemoryConfig{Size: DefaultMemorySize},
		Debug: DebugConfig{
			InstructionTrace: true,
			MemoryTrace:      true,
			RegisterTrace:    true,
			SingleStep:       false,
			TraceLimit:       16,
		},
		UART:    UARTConfig{Enabled: true, Base: DeviceBase},
		Timer:   TimerConfig{Enabled: true, Base: DeviceBase + 0x100, AutoReload: true, IRQEnabled: true},
		Wave:    WaveConfig{Enabled: true, Base: DeviceBase + 0x200, OutputFile: "wave.out", SampleRate: 1000, LiveAudio: true},
		Display: DisplayConfig{Enabled: true, Base: DeviceBase + 0x300, Title: "RV32I display", Width: 256, Height: 256},
		GPIO:    GPIOConfig{Enabled: true, Base: DeviceBase + 0x400},
	}
}

// LoadConfig decodes a TOML config file at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.Memory.Size == 0 {
		cfg.Memory.Size = DefaultMemorySize
	}
	if cfg.Debug.TraceLimit == 0 {
		cfg.Debug.TraceLimit = 16
	}
	return cfg, nil
}

// looksLikeConfig reports whether path appears to be a TOML config
// file rather than a raw guest binary, by extension.
func looksLikeConfig(path string) bool {
	n := len(path)
	return n > 5 && path[n-5:] == ".toml"
}
