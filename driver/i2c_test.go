package driver

import "testing"

func readyI2CBus(t *testing.T) *I2CBus {
	t.Helper()
	b := NewI2CBus()
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := b.AttachDevice(0x50); err != nil {
		t.Fatalf("AttachDevice: %v", err)
	}
	return b
}

func TestI2CScanFindsAttachedDevices(t *testing.T) {
	b := readyI2CBus(t)
	addrs, err := b.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(addrs) != 1 || addrs[0] != 0x50 {
		t.Fatalf("Scan = %v, want [0x50]", addrs)
	}
}

func TestI2CWriteReadRoundTrip(t *testing.T) {
	b := readyI2CBus(t)
	want := []byte{0x01, 0x02, 0x03}
	if err := b.Write(0x50, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := b.Read(0x50, len(want))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Read = %v, want %v", got, want)
		}
	}
}

func TestI2CReadRegWriteRegRoundTrip(t *testing.T) {
	b := readyI2CBus(t)
	if err := b.WriteReg(0x50, 0x10, 0x42); err != nil {
		t.Fatalf("WriteReg: %v", err)
	}
	got, err := b.ReadReg(0x50, 0x10)
	if err != nil {
		t.Fatalf("ReadReg: %v", err)
	}
	if got != 0x42 {
		t.Fatalf("ReadReg = 0x%02x, want 0x42", got)
	}
}

func TestI2CUnknownAddressRejected(t *testing.T) {
	b := readyI2CBus(t)
	if _, err := b.Read(0x55, 1); err == nil {
		t.Fatalf("Read from unattached address: want error, got nil")
	}
}

func TestI2CAddressAboveSevenBitRangeRejected(t *testing.T) {
	b := NewI2CBus()
	b.Init()
	if err := b.AttachDevice(0x80); err == nil {
		t.Fatalf("AttachDevice(0x80): want error, got nil")
	}
}

func TestI2CRejectsBeforeInit(t *testing.T) {
	b := NewI2CBus()
	if _, err := b.Scan(); err == nil {
		t.Fatalf("Scan before Init: want error, got nil")
	}
}
