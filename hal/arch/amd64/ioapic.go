package amd64

import "github.com/sis-kernel/sisk/hal/arch/internal/mmio"

// IOAPIC register offsets and redirection-table bit positions, ported from
// soc/intel/ioapic/ioapic.go.
const (
	ioregsel = 0x00
	iowin    = 0x10

	ioapicID  = 0x00
	ioapicVer = 0x01

	ioapicRedTBLn = 0x10
	redtblDest    = 56
	redtblMask    = 16
	redtblDestMod = 11
	redtblIntVec  = 0

	minVector = 16
	maxVector = 255
)

// IOAPIC represents an I/O APIC instance mapped at Base.
type IOAPIC struct {
	Base    uint64
	GSIBase int
}

// Init programs the IOAPIC's identification field.
func (io *IOAPIC) Init(index uint32) {
	mmio.Write32(io.Base+ioregsel, ioapicID)
	mmio.SetN32(io.Base+iowin, 24, 0xf, index)
}

// Entries returns the size of the IOAPIC redirection table.
func (io *IOAPIC) Entries() int {
	mmio.Write32(io.Base+ioregsel, ioapicVer)
	return int(mmio.Get32(io.Base+iowin, 16, 0xff)) + 1
}

// redirect writes a redirection table entry for irq, masked according to
// masked.
func (io *IOAPIC) redirect(irq uint32, vector uint8, masked bool) bool {
	index := int(irq) - io.GSIBase
	if index < 0 || index > io.Entries()-1 {
		return false
	}

	var val uint32
	// physical destination mode
	val &^= 1 << redtblDestMod

	if masked {
		val |= 1 << redtblMask
	} else {
		val &^= 1 << redtblMask
	}
	val |= uint32(vector) << redtblIntVec

	mmio.Write32(io.Base+ioregsel, uint32(ioapicRedTBLn+index*2))
	mmio.Write32(io.Base+iowin, val)

	// destination field (entry bits 56-63, the upper word): APIC ID 0, the
	// bootstrap processor
	mmio.Write32(io.Base+ioregsel, uint32(ioapicRedTBLn+index*2+1))
	mmio.Write32(io.Base+iowin, 0)
	return true
}

// EnableInterrupt unmasks irq's redirection table entry, routing it to
// vector. vector must fall within [minVector, maxVector].
func (io *IOAPIC) EnableInterrupt(irq uint32, vector uint8) bool {
	if int(vector) < minVector || int(vector) > maxVector {
		return false
	}
	return io.redirect(irq, vector, false)
}

// DisableInterrupt masks irq's redirection table entry.
func (io *IOAPIC) DisableInterrupt(irq uint32) bool {
	return io.redirect(irq, 0, true)
}
