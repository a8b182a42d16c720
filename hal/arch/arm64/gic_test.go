package arm64

import (
	"testing"

	"github.com/sis-kernel/sisk/hal"
)

// SendIPI and BSPID touch no memory-mapped registers directly (they either
// consult a cached field or delegate to an injected seam), so they are
// testable without real hardware — unlike Init/EnableInterrupt/GetInterrupt,
// which this package leaves untested for the same reason virtio.Device.Init
// is untested.

func TestBSPIDReturnsCachedMPIDR(t *testing.T) {
	g := &GIC{mpidr: 0x81}
	if got := g.BSPID(); got != 0x81 {
		t.Fatalf("BSPID() = %#x, want 0x81", got)
	}
}

func TestSendIPIRejectsInitAndStartupKinds(t *testing.T) {
	g := &GIC{SendSGI: func(uint64, uint8) {}}

	if err := g.SendIPI(1, hal.IPI{Kind: hal.Init}); err == nil {
		t.Fatalf("SendIPI(Init): want error, got nil")
	}
	if err := g.SendIPI(1, hal.IPI{Kind: hal.Startup}); err == nil {
		t.Fatalf("SendIPI(Startup): want error, got nil")
	}
}

func TestSendIPIRejectsWithoutSeam(t *testing.T) {
	g := &GIC{}
	if err := g.SendIPI(1, hal.IPI{Kind: hal.Fixed, Vector: 5}); err == nil {
		t.Fatalf("SendIPI without SendSGI seam: want error, got nil")
	}
}

func TestSendIPIDelegatesToSeam(t *testing.T) {
	var gotTarget uint64
	var gotID uint8

	g := &GIC{SendSGI: func(target uint64, id uint8) {
		gotTarget = target
		gotID = id
	}}

	if err := g.SendIPI(7, hal.IPI{Kind: hal.Fixed, Vector: 3}); err != nil {
		t.Fatalf("SendIPI: %v", err)
	}
	if gotTarget != 7 || gotID != 3 {
		t.Fatalf("SendSGI called with (%d, %d), want (7, 3)", gotTarget, gotID)
	}
}
