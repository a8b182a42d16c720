// Package amd64 implements the amd64 HAL backend: the Local/IO APIC
// interrupt controller and the page tables and timers amd64 boots with.
// Grounded on amd64/lapic/lapic.go and soc/intel/ioapic/ioapic.go, both of
// which are fully register-mapped (no assembly-only operation is needed to
// drive them), ported onto hal/arch/internal/mmio.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package amd64

import "github.com/sis-kernel/sisk/hal/arch/internal/mmio"

// LAPIC register offsets and bit positions, ported verbatim from
// amd64/lapic/lapic.go.
const (
	lapicID    = 0x20
	idPos      = 24
	lapicVer   = 0x30
	verEntries = 16

	lapicEOI = 0xb0

	lapicSVR  = 0xf0
	svrEnable = 8

	lapicICRL = 0x300
	lapicICRH = 0x310

	icrDlvStatus = 12
	icrDlv       = 8

	icrDlvSIPI = 0b110 << icrDlv
	icrDlvInit = 0b101 << icrDlv
	icrDlvIRQ  = 0b000 << icrDlv
)

// LAPIC represents a Local APIC instance mapped at Base.
type LAPIC struct {
	Base uint64
}

// ID returns the LAPIC identification register.
func (l *LAPIC) ID() uint32 {
	return mmio.Get32(l.Base+lapicID, idPos, 0xf)
}

// Version returns the LAPIC version register.
func (l *LAPIC) Version() uint32 {
	return mmio.Read32(l.Base + lapicVer)
}

// Entries returns the size of the LAPIC local vector table.
func (l *LAPIC) Entries() int {
	return int(mmio.Get32(l.Base+lapicVer, verEntries, 0xff)) + 1
}

// Enable enables the Local APIC via the spurious-interrupt vector register.
func (l *LAPIC) Enable() {
	mmio.Set32(l.Base+lapicSVR, svrEnable)
}

// Disable disables the Local APIC.
func (l *LAPIC) Disable() {
	mmio.Clear32(l.Base+lapicSVR, svrEnable)
}

// ClearInterrupt signals the end of an interrupt handling routine.
func (l *LAPIC) ClearInterrupt() {
	mmio.Write32(l.Base+lapicEOI, 0)
}

// writeICR programs the Interrupt Command Register to deliver vector with
// delivery mode dlv to apicid. The teacher's reg.Wait blocks unconditionally
// on the delivery-status bit; InterruptController.SendIPI bounds that wait
// itself via mmio.WaitFor, so writeICR only issues the write.
func (l *LAPIC) writeICR(apicid uint32, vector uint8, dlv uint32) {
	mmio.SetN32(l.Base+lapicICRH, idPos, 0xff, apicid)
	mmio.Write32(l.Base+lapicICRL, dlv|uint32(vector))
}
