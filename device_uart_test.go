package main

import (
	"bytes"
	"testing"
)

func TestUARTWriteEmitsByteToHost(t *testing.T) {
	var out bytes.Buffer
	u := NewUARTDevice(0x1000, true, &out)
	if err := u.Write(uartRegData, 1, 0x41); err != nil {
		t.Fatalf("write: %v", err)
	}
	if out.String() != "A" {
		t.Fatalf("expected host to receive 'A', got %q", out.String())
	}
}

func TestUARTReadReturnsLastByte(t *testing.T) {
	var out bytes.Buffer
	u := NewUARTDevice(0x1000, true, &out)
	u.Write(uartRegData, 1, 0x5A)
	got, err := u.Read(uartRegData, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != 0x5A {
		t.Fatalf("expected 0x5A, got 0x%X", got)
	}
}

func TestUARTStatusAlwaysTXReady(t *testing.T) {
	u := NewUARTDevice(0x1000, true, nil)
	got, err := u.Read(uartRegStatus, 1)
	if err != nil {
		t.Fatalf("read status: %v", err)
	}
	if got&uartStatusTXReady == 0 {
		t.Fatalf("expected TX_READY bit set, got 0x%X", got)
	}
}

func TestUARTRejectsNonByteAccess(t *testing.T) {
	u := NewUARTDevice(0x1000, true, nil)
	if _, err := u.Read(uartRegData, 4); err == nil {
		t.Fatalf("expected InvalidSizeError for word access")
	} else if _, ok := err.(*InvalidSizeError); !ok {
		t.Fatalf("expected *InvalidSizeError, got %T", err)
	}
}

func TestUARTDisabledRejectsAccess(t *testing.T) {
	u := NewUARTDevice(0x1000, false, nil)
	if _, err := u.Read(uartRegData, 1); err == nil {
		t.Fatalf("expected DeviceDisabledError")
	}
}
