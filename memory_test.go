package main

import "testing"

func newTestMemory() *Memory {
	bus := NewDeviceBus(
		NewUARTDevice(DeviceBase, true, nil),
	)
	// 32 MiB covers both the code segment (physical 0x00000000) and the
	// data segment (physical 0x01000000).
	return NewMemory(1<<25, bus)
}

func TestMemoryStoreLoadRoundTrip(t *testing.T) {
	mem := newTestMemory()
	if err := mem.WriteWord(DataSegmentBase, 0xCAFEBABE, 4); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := mem.ReadWord(DataSegmentBase, 4)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != 0xCAFEBABE {
		t.Fatalf("expected 0xCAFEBABE, got 0x%X", got)
	}
}

func TestMemoryMisalignedAccessFails(t *testing.T) {
	mem := newTestMemory()
	if err := mem.WriteWord(DataSegmentBase+1, 0, 4); err == nil {
		t.Fatalf("expected misaligned access error")
	} else if _, ok := err.(*MisalignedAccessError); !ok {
		t.Fatalf("expected *MisalignedAccessError, got %T", err)
	}
}

func TestMemoryOutOfRangeAddressFails(t *testing.T) {
	mem := newTestMemory()
	_, err := mem.ReadWord(0x7FFFFFFC, 4)
	if err == nil {
		t.Fatalf("expected out-of-bounds error")
	}
	if _, ok := err.(*OutOfBoundsError); !ok {
		t.Fatalf("expected *OutOfBoundsError, got %T", err)
	}
}

func TestMemoryCodeAndDataSegmentsAreDisjointPhysically(t *testing.T) {
	mem := newTestMemory()
	if err := mem.WriteWord(CodeSegmentBase, 1, 4); err != nil {
		t.Fatalf("write code: %v", err)
	}
	if err := mem.WriteWord(DataSegmentBase, 2, 4); err != nil {
		t.Fatalf("write data: %v", err)
	}
	codeVal, _ := mem.ReadWord(CodeSegmentBase, 4)
	dataVal, _ := mem.ReadWord(DataSegmentBase, 4)
	if codeVal != 1 || dataVal != 2 {
		t.Fatalf("expected code=1 data=2, got code=%d data=%d", codeVal, dataVal)
	}
}

func TestMemoryDeviceRegionDispatchesToBus(t *testing.T) {
	mem := newTestMemory()
	if err := mem.WriteWord(DeviceBase+uartRegData, 0x41, 1); err != nil {
		t.Fatalf("write uart data: %v", err)
	}
	got, err := mem.ReadWord(DeviceBase+uartRegData, 1)
	if err != nil {
		t.Fatalf("read uart data: %v", err)
	}
	if got != 0x41 {
		t.Fatalf("expected 0x41, got 0x%X", got)
	}
}

func TestMemoryWriteBytesRefusesDeviceRegion(t *testing.T) {
	mem := newTestMemory()
	if err := mem.WriteBytes(DeviceBase, []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected bulk write to device region to fail")
	}
}
