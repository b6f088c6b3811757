package main

import "testing"

type fakeDisplayBackend struct {
	opened    bool
	lastFrame []byte
	closed    bool
}

func (f *fakeDisplayBackend) Open(width, height int) error { f.opened = true; return nil }
func (f *fakeDisplayBackend) PushFrame(rgba []byte) error {
	f.lastFrame = append(f.lastFrame[:0], rgba...)
	return nil
}
func (f *fakeDisplayBackend) Close() error { f.closed = true; return nil }

func TestDisplaySetPixelThenUpdatePushesFrame(t *testing.T) {
	backend := &fakeDisplayBackend{}
	d := NewDisplayDevice(0x4000, true, 4, 4, backend)

	d.Write(displayRegCtrl, 4, displayCtrlEnable)
	d.Write(displayRegX, 4, 1)
	d.Write(displayRegY, 4, 1)
	d.Write(displayRegColor, 4, 0x00FF00)
	if err := d.Write(displayRegUpdate, 4, 0); err != nil {
		t.Fatalf("update: %v", err)
	}

	if !backend.opened {
		t.Fatalf("expected backend opened once CTRL.enable is set")
	}
	offset := (1*4 + 1) * 4
	if backend.lastFrame[offset] != 0 || backend.lastFrame[offset+1] != 0xFF || backend.lastFrame[offset+2] != 0 {
		t.Fatalf("expected pixel (1,1) green, got %v", backend.lastFrame[offset:offset+4])
	}
}

func TestDisplayOutOfRangeCoordinateFails(t *testing.T) {
	d := NewDisplayDevice(0x4000, true, 4, 4, nil)
	if err := d.Write(displayRegX, 4, 10); err == nil {
		t.Fatalf("expected error for X >= width")
	}
}

func TestDisplayCloseReleasesBackendOnce(t *testing.T) {
	backend := &fakeDisplayBackend{}
	d := NewDisplayDevice(0x4000, true, 2, 2, backend)
	d.Write(displayRegCtrl, 4, displayCtrlEnable)
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !backend.closed {
		t.Fatalf("expected backend closed")
	}
}

func TestDisplayLastFrameDumpReflectsLastUpdate(t *testing.T) {
	d := NewDisplayDevice(0x4000, true, 2, 2, nil)
	d.Write(displayRegCtrl, 4, displayCtrlEnable)
	d.Write(displayRegColor, 4, 0xFF0000)
	d.Write(displayRegUpdate, 4, 0)
	dump := d.LastFrameDump()
	if dump[0] != 0xFF {
		t.Fatalf("expected pixel (0,0) red channel set, got %v", dump[:4])
	}
}
