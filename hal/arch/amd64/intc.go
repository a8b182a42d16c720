package amd64

import (
	"fmt"

	"github.com/sis-kernel/sisk/hal"
	"github.com/sis-kernel/sisk/hal/arch/internal/mmio"
)

// InterruptController implements hal.InterruptController over a Local APIC
// (IPI delivery) paired with an I/O APIC (shared line routing), matching how
// the teacher splits the two concerns across amd64/lapic and
// soc/intel/ioapic.
type InterruptController struct {
	lapic  *LAPIC
	ioapic *IOAPIC
	bspID  uint32
}

// NewInterruptController probes the BSP's LAPIC ID at construction and
// returns a ready InterruptController. ioapicGSIBase is the Global System
// Interrupt base the IOAPIC instance claims.
func NewInterruptController(lapicBase, ioapicBase uint64, ioapicGSIBase int) *InterruptController {
	l := &LAPIC{Base: lapicBase}
	l.Enable()

	io := &IOAPIC{Base: ioapicBase, GSIBase: ioapicGSIBase}
	io.Init(0)

	return &InterruptController{lapic: l, ioapic: io, bspID: l.ID()}
}

// BSPID returns the bootstrap processor's LAPIC ID, recorded at probe time.
func (c *InterruptController) BSPID() uint32 {
	return c.bspID
}

// SendIPI delivers req to target's LAPIC, blocking on the delivery-status
// bit until it clears or hal.IPIDeliveryTimeout elapses.
func (c *InterruptController) SendIPI(target uint32, req hal.IPI) error {
	c.lapic.writeICR(target, req.Vector, deliveryMode(req.Kind))

	if !mmio.WaitFor(hal.IPIDeliveryTimeout, c.lapic.Base+lapicICRL, icrDlvStatus, 1, 0) {
		return hal.ErrIPITimeout
	}
	return nil
}

// EnableLine unmasks irq on the I/O APIC, routing it to a vector numerically
// equal to irq (irq must therefore already fall within the IOAPIC's valid
// vector range).
func (c *InterruptController) EnableLine(irq uint32) error {
	if !c.ioapic.EnableInterrupt(irq, uint8(irq)) {
		return fmt.Errorf("%w: irq %d out of IOAPIC redirection range", hal.ErrInvalidAddress, irq)
	}
	return nil
}

// DisableLine masks irq on the I/O APIC.
func (c *InterruptController) DisableLine(irq uint32) error {
	if !c.ioapic.DisableInterrupt(irq) {
		return fmt.Errorf("%w: irq %d out of IOAPIC redirection range", hal.ErrInvalidAddress, irq)
	}
	return nil
}

var _ hal.InterruptController = (*InterruptController)(nil)

// deliveryMode maps a hal.IPIKind onto the ICR delivery-mode bits
// amd64/lapic/lapic.go encodes, independent of any register access so it
// can be unit tested without touching memory-mapped hardware.
func deliveryMode(kind hal.IPIKind) uint32 {
	switch kind {
	case hal.Init:
		return icrDlvInit
	case hal.Startup:
		return icrDlvSIPI
	default:
		return icrDlvIRQ
	}
}
