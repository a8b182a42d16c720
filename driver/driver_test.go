package driver

import (
	"errors"
	"testing"
	"time"
)

type fakeDriver struct {
	BaseDriver
	name     string
	accept   bool
	initErr  error
	irqCount int
}

func (f *fakeDriver) Info() Info { return Info{Name: f.name, Version: "1.0"} }
func (f *fakeDriver) Probe(dev DeviceInfo) bool { return f.accept }
func (f *fakeDriver) Init(dev DeviceInfo) error { return f.initErr }
func (f *fakeDriver) HandleIRQ() error {
	f.irqCount++
	return nil
}

func TestRegistryBindsFirstMatchingDriver(t *testing.T) {
	r := NewRegistry()
	a := &fakeDriver{name: "a", accept: false}
	b := &fakeDriver{name: "b", accept: true}

	if err := r.Register(a); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := r.Register(b); err != nil {
		t.Fatalf("register b: %v", err)
	}

	irq := uint32(7)
	bound := r.Discover([]DeviceInfo{{BaseAddr: 0x1000, IRQ: &irq}})

	if bound != 1 {
		t.Fatalf("bound = %d, want 1", bound)
	}

	if err := r.HandleIRQ(7); err != nil {
		t.Fatalf("HandleIRQ: %v", err)
	}
	if b.irqCount != 1 {
		t.Fatalf("irqCount = %d, want 1", b.irqCount)
	}
}

func TestRegistryOverflow(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < MaxDrivers; i++ {
		if err := r.Register(&fakeDriver{name: "d"}); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	if err := r.Register(&fakeDriver{name: "overflow"}); !errors.Is(err, ErrRegistryFull) {
		t.Fatalf("expected RegistryFull, got %v", err)
	}
}

func TestTimeoutWaitSucceeds(t *testing.T) {
	tm := NewTimeout(50_000) // 50ms
	start := time.Now()
	n := 0

	err := tm.Wait(func() bool {
		n++
		return n >= 3
	})

	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatalf("wait took too long")
	}
}

func TestTimeoutWaitExpires(t *testing.T) {
	tm := NewTimeout(1000) // 1ms
	err := tm.Wait(func() bool { return false })

	var derr *Error
	if !errors.As(err, &derr) || derr.Kind != TimeoutKind {
		t.Fatalf("expected TimeoutKind error, got %v", err)
	}
	if derr.Timeout == nil {
		t.Fatalf("expected TimeoutError detail")
	}
}

func TestCheckAlignment(t *testing.T) {
	if err := CheckAlignment(0x1000, 0x1000); err != nil {
		t.Fatalf("aligned address rejected: %v", err)
	}
	if err := CheckAlignment(0x1001, 0x1000); err == nil {
		t.Fatalf("expected alignment error")
	}
	if err := CheckAlignment(0x1000, 3); err == nil {
		t.Fatalf("expected error for non-power-of-two alignment")
	}
}

func TestCheckBoundsGPIOBoundary(t *testing.T) {
	// Raspberry Pi-class GPIO: pin 53 is the max valid index, 54 rejects
	// (section 8 boundary case).
	if err := CheckBounds(53, 0, 54); err != nil {
		t.Fatalf("pin 53 should be accepted: %v", err)
	}
	if err := CheckBounds(54, 0, 54); err == nil {
		t.Fatalf("pin 54 should be rejected")
	}
}
