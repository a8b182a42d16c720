package riscv64

import (
	"fmt"

	"github.com/sis-kernel/sisk/hal"
	"github.com/sis-kernel/sisk/hal/arch/internal/mmio"
)

// clintMsip is the per-hart machine-software-interrupt-pending register
// (4 bytes per hart, starting at the CLINT base), standard across every
// CLINT-compatible platform including soc/sifive/clint's. Writing 1 raises
// a machine-mode software interrupt on the target hart — RISC-V's IPI
// mechanism, genuinely memory-mapped, unlike amd64's ICR or arm64's
// ICC_SGI1R_EL1.
const clintMsip = 0x0000

// InterruptController implements hal.InterruptController over a PLIC
// (shared line routing) paired with a CLINT's MSIP registers (IPI
// delivery). Every register both touch is memory-mapped per the RISC-V
// Privileged specification, so — unlike amd64 and arm64 — this backend
// needs no injectable assembly seam for interrupt delivery itself.
type InterruptController struct {
	plic  *PLIC
	clint uint64 // CLINT base, for MSIP access

	// ReadHartID reads the mhartid CSR. RISC-V has no MMIO-visible hart
	// identifier; mhartid is a machine-mode CSR with no teacher or pack
	// precedent for a Go read, so it is an injectable seam.
	ReadHartID func() uint32

	bspHart uint32
}

// NewInterruptController returns an InterruptController over plicBase
// (context ctx) and clintBase, probing the hart ID via readHartID if
// supplied.
func NewInterruptController(plicBase uint64, ctx uint64, clintBase uint64, readHartID func() uint32) *InterruptController {
	c := &InterruptController{
		plic:       &PLIC{Base: plicBase, Context: ctx},
		clint:      clintBase,
		ReadHartID: readHartID,
	}
	if readHartID != nil {
		c.bspHart = readHartID()
	}
	return c
}

// BSPID returns the bootstrap hart's ID, or 0 if ReadHartID was never
// wired up.
func (c *InterruptController) BSPID() uint32 {
	return c.bspHart
}

// SendIPI raises a machine-software-interrupt on target's hart by writing
// its MSIP register. RISC-V has no INIT/Startup IPI concept — secondary
// hart bring-up goes through the SBI Hart State Management extension
// (an ecall, not an IPI), which no teacher or pack file models — so only
// hal.Fixed is supported.
func (c *InterruptController) SendIPI(target uint32, req hal.IPI) error {
	if req.Kind != hal.Fixed {
		return fmt.Errorf("%w: riscv64 has no IPI-level bring-up primitive (use SBI HSM)", hal.ErrInvalidAddress)
	}
	mmio.Write32(c.clint+clintMsip+4*uint64(target), 1)
	return nil
}

// EnableLine unmasks irq at the PLIC for this context.
func (c *InterruptController) EnableLine(irq uint32) error {
	c.plic.Enable(irq)
	return nil
}

// DisableLine masks irq at the PLIC for this context.
func (c *InterruptController) DisableLine(irq uint32) error {
	c.plic.Disable(irq)
	return nil
}

var _ hal.InterruptController = (*InterruptController)(nil)
