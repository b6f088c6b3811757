package main

import "testing"

func TestGPIODirectionAndOutputRoundTrip(t *testing.T) {
	g := NewGPIODevice(0x5000, true, nil)
	g.Write(gpioRegDirection, 4, 0xFF)
	g.Write(gpioRegOutput, 4, 0x0A)

	dir, _ := g.Read(gpioRegDirection, 4)
	out, _ := g.Read(gpioRegOutput, 4)
	if dir != 0xFF || out != 0x0A {
		t.Fatalf("expected direction=0xFF output=0x0A, got direction=0x%X output=0x%X", dir, out)
	}
}

func TestGPIOInputUsesSuppliedFunc(t *testing.T) {
	g := NewGPIODevice(0x5000, true, func() uint32 { return 0x55 })
	got, err := g.Read(gpioRegInput, 4)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	if got != 0x55 {
		t.Fatalf("expected 0x55, got 0x%X", got)
	}
}

func TestGPIOInputWriteRejected(t *testing.T) {
	g := NewGPIODevice(0x5000, true, nil)
	if err := g.Write(gpioRegInput, 4, 1); err == nil {
		t.Fatalf("expected write to INPUT to be rejected")
	}
}

func TestGPIOInputDefaultsToZeroWithoutFunc(t *testing.T) {
	g := NewGPIODevice(0x5000, true, nil)
	got, err := g.Read(gpioRegInput, 4)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
