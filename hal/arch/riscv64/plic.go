package riscv64

import "github.com/sis-kernel/sisk/hal/arch/internal/mmio"

// PLIC register layout (RISC-V Privileged Architecture, Platform-Level
// Interrupt Controller). The teacher ships no PLIC driver; the register
// map here is grounded on tinyrange-cc's rv64 PLIC device model
// (internal/hv/riscv/rv64/plic.go), which emulates the same standard
// layout a real PLIC exposes over MMIO — translated from its in-memory
// register-file emulation into genuine mmio.Read32/Write32 register access.
const (
	plicPriorityBase  = 0x000000
	plicPendingBase   = 0x001000
	plicEnableBase    = 0x002000
	plicThresholdBase = 0x200000
	plicContextStride = 0x1000
	plicEnableStride  = 0x80

	plicMaxSources = 1024
)

// PLIC represents a Platform-Level Interrupt Controller instance.
type PLIC struct {
	Base uint64
	// Context selects the per-hart, per-privilege-mode enable/threshold/
	// claim register block this instance operates on.
	Context uint64
}

// SetPriority programs source's priority (0 disables it; higher values
// take precedence over the context's threshold).
func (p *PLIC) SetPriority(source uint32, priority uint32) {
	if source == 0 || source >= plicMaxSources {
		return
	}
	mmio.Write32(p.Base+plicPriorityBase+4*uint64(source), priority&0x7)
}

// SetThreshold sets the minimum priority this context will claim.
func (p *PLIC) SetThreshold(threshold uint32) {
	mmio.Write32(p.Base+plicThresholdBase+plicContextStride*p.Context, threshold&0x7)
}

func (p *PLIC) enableAddr(source uint32) (addr uint64, bit int) {
	word := source / 32
	return p.Base + plicEnableBase + plicEnableStride*p.Context + 4*uint64(word), int(source % 32)
}

// Enable unmasks source for this context.
func (p *PLIC) Enable(source uint32) {
	if source == 0 || source >= plicMaxSources {
		return
	}
	addr, bit := p.enableAddr(source)
	mmio.Set32(addr, bit)
}

// Disable masks source for this context.
func (p *PLIC) Disable(source uint32) {
	if source == 0 || source >= plicMaxSources {
		return
	}
	addr, bit := p.enableAddr(source)
	mmio.Clear32(addr, bit)
}

// Claim reads the context's claim/complete register, returning the highest
// priority pending enabled source (0 if none).
func (p *PLIC) Claim() uint32 {
	return mmio.Read32(p.Base + plicThresholdBase + plicContextStride*p.Context + 4)
}

// Complete signals that source's interrupt handling has finished.
func (p *PLIC) Complete(source uint32) {
	mmio.Write32(p.Base+plicThresholdBase+plicContextStride*p.Context+4, source)
}
