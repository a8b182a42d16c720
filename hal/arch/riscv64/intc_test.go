package riscv64

import (
	"testing"

	"github.com/sis-kernel/sisk/hal"
)

func TestBSPIDReflectsReadHartIDSeam(t *testing.T) {
	c := NewInterruptController(0x1000, 1, 0x2000, func() uint32 { return 3 })
	if got := c.BSPID(); got != 3 {
		t.Fatalf("BSPID() = %d, want 3", got)
	}
}

func TestBSPIDZeroWithoutSeam(t *testing.T) {
	c := NewInterruptController(0x1000, 1, 0x2000, nil)
	if got := c.BSPID(); got != 0 {
		t.Fatalf("BSPID() without ReadHartID = %d, want 0", got)
	}
}

func TestSendIPIRejectsNonFixedKind(t *testing.T) {
	c := NewInterruptController(0x1000, 1, 0x2000, nil)
	if err := c.SendIPI(0, hal.IPI{Kind: hal.Startup}); err == nil {
		t.Fatalf("SendIPI(Startup): want error, got nil")
	}
}
