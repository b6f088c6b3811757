// device_display.go - packed-pixel framebuffer device

/*
device_display.go narrows the teacher's VideoChip (video_chip.go), a
multi-mode ANTIC/ULA/VGA-style compositor with palettes, sprites and
scanline timing, down to the single-pixel-write contract spec.md §4.5
specifies: one CTRL/STATUS/X/Y/COLOR/UPDATE register set driving a flat
RGBA framebuffer. The host-window half of the teacher's design
(video_backend_ebiten.go) is kept as a pluggable displayBackend so this
file stays testable without an actual window.
*/

package main

const (
	displayRegCtrl   = 0x0
	displayRegStatus = 0x4
	displayRegX      = 0xC
	displayRegY      = 0x10
	displayRegColor  = 0x14
	displayRegUpdate = 0x18
	displaySpan      = 0x1C

	displayCtrlEnable  = 1 << 0
	displayStatusReady = 1 << 0
)

// displayBackend is the host-facing half of the Display device: a
// window that receives pushed frames. Concrete devices implement this
// with ebiten (device_display_backend_ebiten.go); tests can supply a
// fake.
type displayBackend interface {
	Open(width, height int) error
	PushFrame(rgba []byte) error
	Close() error
}

// DisplayDevice owns a packed RGBA framebuffer and a pluggable host
// window backend.
type DisplayDevice struct {
	base    uint32
	enabled bool
	width   int
	height  int

	ctrl  uint32
	x, y  uint32
	color uint32
	fb    []byte // width*height*4, RGBA

	backend   displayBackend
	opened    bool
	lastFrame []byte
}

// NewDisplayDevice builds a Display device at base with the given pixel
// dimensions, using backend to present frames (may be nil to stay
// headless — framebuffer writes still succeed, UPDATE then only captures
// the frame for LastFrameDump).
func NewDisplayDevice(base uint32, enabled bool, width, height int, backend displayBackend) *DisplayDevice {
	return &DisplayDevice{
		base:    base,
		enabled: enabled,
		width:   width,
		height:  height,
		fb:      make([]byte, width*height*4),
		backend: backend,
	}
}

// SetBackend attaches a host window backend after construction — used
// when the backend itself needs a reference back to the device (the
// ebiten backend's clipboard pixel-dump feature), which would
// otherwise create a construction cycle.
func (d *DisplayDevice) SetBackend(backend displayBackend) {
	d.backend = backend
}

func (d *DisplayDevice) Name() string { return "display" }

func (d *DisplayDevice) Base() (uint32, uint32) { return d.base, displaySpan }

func (d *DisplayDevice) Read(offset uint32, size int) (uint32, error) {
	if !d.enabled {
		return 0, &DeviceDisabledError{Device: d.Name()}
	}
	if size != 4 {
		return 0, &InvalidSizeError{Addr: d.base + offset, Size: size}
	}
	switch offset {
	case displayRegCtrl:
		return d.ctrl, nil
	case displayRegStatus:
		return uint32(displayStatusReady), nil
	case displayRegX:
		return d.x, nil
	case displayRegY:
		return d.y, nil
	case displayRegColor:
		return d.color, nil
	default:
		return 0, &DeviceError{Device: d.Name(), Reason: "no register at that offset"}
	}
}

func (d *DisplayDevice) Write(offset uint32, size int, value uint32) error {
	if !d.enabled {
		return &DeviceDisabledError{Device: d.Name()}
	}
	if size != 4 {
		return &InvalidSizeError{Addr: d.base + offset, Size: size}
	}
	switch offset {
	case displayRegCtrl:
		d.ctrl = value
		if d.ctrl&displayCtrlEnable != 0 {
			if err := d.ensureOpen(); err != nil {
				return err
			}
		} else if d.opened && d.backend != nil {
			d.backend.Close()
			d.opened = false
		}
	case displayRegStatus:
		// Read-only; accepted and discarded.
	case displayRegX:
		if value >= uint32(d.width) {
			return &DeviceError{Device: d.Name(), Reason: "X coordinate out of range"}
		}
		d.x = value
	case displayRegY:
		if value >= uint32(d.height) {
			return &DeviceError{Device: d.Name(), Reason: "Y coordinate out of range"}
		}
		d.y = value
	case displayRegColor:
		d.color = value & 0xFFFFFF
		if d.ctrl&displayCtrlEnable != 0 {
			d.setPixel(d.x, d.y, d.color)
		}
	case displayRegUpdate:
		return d.pushFrame()
	default:
		return &DeviceError{Device: d.Name(), Reason: "no register at that offset"}
	}
	return nil
}

func (d *DisplayDevice) setPixel(x, y, rgb uint32) {
	offset := (y*uint32(d.width) + x) * 4
	d.fb[offset+0] = byte(rgb >> 16) // R
	d.fb[offset+1] = byte(rgb >> 8)  // G
	d.fb[offset+2] = byte(rgb)       // B
	d.fb[offset+3] = 0xFF            // A
}

func (d *DisplayDevice) ensureOpen() error {
	if d.opened || d.backend == nil {
		return nil
	}
	if err := d.backend.Open(d.width, d.height); err != nil {
		return &DeviceError{Device: d.Name(), Reason: err.Error()}
	}
	d.opened = true
	return nil
}

func (d *DisplayDevice) pushFrame() error {
	d.lastFrame = append(d.lastFrame[:0], d.fb...)
	if d.backend == nil || !d.opened {
		return nil
	}
	if err := d.backend.PushFrame(d.fb); err != nil {
		return &DeviceError{Device: d.Name(), Reason: err.Error()}
	}
	return nil
}

func (d *DisplayDevice) Tick() {}

func (d *DisplayDevice) Reset() {
	for i := range d.fb {
		d.fb[i] = 0
	}
	d.ctrl, d.x, d.y, d.color = 0, 0, 0, 0
}

func (d *DisplayDevice) Interrupt() bool { return false }

// Close releases the host window, per spec.md §5's scoped-release
// requirement for the Display device's GUI resource.
func (d *DisplayDevice) Close() error {
	if d.opened && d.backend != nil {
		d.opened = false
		return d.backend.Close()
	}
	return nil
}

// LastFrameDump returns the raw RGBA bytes of the frame captured by the
// last UPDATE write; the clipboard debug feature in
// device_display_backend_ebiten.go turns them into a plain-text listing.
func (d *DisplayDevice) LastFrameDump() []byte {
	return d.lastFrame
}
