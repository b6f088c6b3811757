//go:build !headless

// device_display_backend_ebiten.go - ebiten window backend for Display

/*
Adapts the teacher's EbitenOutput (video_backend_ebiten.go) — a
full keyboard-forwarding terminal window — down to an output-only frame
sink: PushFrame copies the RGBA buffer under a mutex and Draw blits it,
same as the teacher's WritePixels/DrawImage pair, but with no input
handling since this device never reads keystrokes back into the guest.
The copy-pixel-dump-to-clipboard debug feature mirrors the teacher's
clipboard paste-as-screenshot feature, adapted from paste to copy since
this Display is output-only.
*/

package main

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
)

// ebitenDisplayBackend presents DisplayDevice frames in a host window.
type ebitenDisplayBackend struct {
	width, height int
	window        *ebiten.Image
	frameBuf      []byte
	mu            sync.RWMutex
	running       bool
	readyCh       chan struct{}

	device        *DisplayDevice
	clipboardOnce sync.Once
	clipboardOK   bool
}

// NewEbitenDisplayBackend returns a displayBackend that opens a real
// ebiten window. device is used for the clipboard pixel-dump debug
// feature; it may be nil.
func NewEbitenDisplayBackend(device *DisplayDevice) *ebitenDisplayBackend {
	return &ebitenDisplayBackend{device: device}
}

func (b *ebitenDisplayBackend) Open(width, height int) error {
	b.mu.Lock()
	b.width, b.height = width, height
	b.frameBuf = make([]byte, width*height*4)
	b.running = true
	b.readyCh = make(chan struct{}, 1)
	b.mu.Unlock()

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("RV32I display")
	ebiten.SetRunnableOnUnfocused(true)

	go func() {
		if err := ebiten.RunGame(b); err != nil {
			fmt.Printf("[SYSTEM] display backend stopped: %v\n", err)
		}
	}()

	<-b.readyCh
	return nil
}

func (b *ebitenDisplayBackend) PushFrame(rgba []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return nil
	}
	copy(b.frameBuf, rgba)
	return nil
}

func (b *ebitenDisplayBackend) Close() error {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
	return nil
}

func (b *ebitenDisplayBackend) Update() error {
	b.mu.RLock()
	running := b.running
	b.mu.RUnlock()
	if !running {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) &&
		(ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)) {
		b.copyPixelDumpToClipboard()
	}
	return nil
}

func (b *ebitenDisplayBackend) Draw(screen *ebiten.Image) {
	b.mu.Lock()
	if b.window == nil {
		b.window = ebiten.NewImage(b.width, b.height)
	}
	b.window.WritePixels(b.frameBuf)
	select {
	case b.readyCh <- struct{}{}:
	default:
	}
	b.mu.Unlock()
	screen.DrawImage(b.window, nil)
}

func (b *ebitenDisplayBackend) Layout(_, _ int) (int, int) {
	return b.width, b.height
}

// copyPixelDumpToClipboard copies a plain-text RGB listing of the last
// frame to the host clipboard, for attaching to bug reports.
func (b *ebitenDisplayBackend) copyPixelDumpToClipboard() {
	b.clipboardOnce.Do(func() {
		b.clipboardOK = clipboard.Init() == nil
	})
	if !b.clipboardOK || b.device == nil {
		return
	}
	frame := b.device.LastFrameDump()
	if len(frame) == 0 {
		return
	}
	dump := make([]byte, 0, len(frame)/4*9)
	for i := 0; i+3 < len(frame); i += 4 {
		line := fmt.Sprintf("%02X%02X%02X\n", frame[i], frame[i+1], frame[i+2])
		dump = append(dump, line...)
	}
	clipboard.Write(clipboard.FmtText, dump)
}
