// Package arm64 implements the arm64 HAL backend: the GICv3 interrupt
// controller and the page tables and timers arm64 boots with. Grounded on
// arm64/gic/gic.go and arm64/timer.go.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package arm64

import (
	"fmt"
	"time"

	"github.com/sis-kernel/sisk/hal"
	"github.com/sis-kernel/sisk/hal/arch/internal/mmio"
)

// GIC Distributor and Redistributor register offsets (ARM IHI 0069G, GICv3),
// ported from arm64/gic/gic.go.
const (
	gicdCTLR       = 0x000
	ctlrAreNS      = 5
	ctlrAreS       = 4
	ctlrEnableGrp0 = 0

	gicdTYPER    = 0x004
	typerITLines = 0

	gicdIGROUPR   = 0x0080
	gicdISENABLER = 0x0100
	gicdICENABLER = 0x0180
	gicdICPENDR   = 0x0280
	gicdIROUTER   = 0x6100

	rdBase  = 0x00000
	sgiBase = 0x10000

	gicrWAKER           = rdBase + 0x0014
	wakerChildrenAsleep = 2
	wakerProcessorSleep = 1

	gicrIGROUPR = sgiBase + 0x0080

	firstSPI = 32
	firstSIN = 1020

	gicWakeTimeout = 1 * time.Second
)

// GIC represents a GICv3 distributor/redistributor pair. Its CPU-interface
// operations (enabling the system register interface, unmasking priorities,
// acknowledging/ending interrupts, reading the core's affinity) are ICC_*
// system register accesses on real hardware — arm64/gic/gic.go declares
// them "defined in gic.s", and no such file exists in this tree. They are
// exposed here as injectable seams, left nil until boot glue with a real
// assembly primitive sets them.
type GIC struct {
	GICD uint64
	GICR uint64

	mpidr uint64

	// WriteICCSREEL3 enables the system register CPU interface (ICC_SRE_EL3).
	WriteICCSREEL3 func(val uint64)
	// WriteICCPMREL1 sets the interrupt priority mask (ICC_PMR_EL1).
	WriteICCPMREL1 func(val uint64)
	// WriteICCIGRPEN0EL1 enables Group0 interrupts at the CPU interface.
	WriteICCIGRPEN0EL1 func(val uint64)
	// ReadICCIAR0 acknowledges the highest priority pending Group0 interrupt.
	ReadICCIAR0 func() uint64
	// WriteICCEOIR0 signals end-of-interrupt for a Group0 interrupt.
	WriteICCEOIR0 func(val uint64)
	// ReadMPIDREL1 reads this core's affinity/routing identifier.
	ReadMPIDREL1 func() uint64
	// SendSGI raises a Software Generated Interrupt at sgiID on the core
	// identified by targetAffinity (ICC_SGI1R_EL1 on real hardware).
	SendSGI func(targetAffinity uint64, sgiID uint8)
}

// Init brings the redistributor frame online, disables and clears every
// interrupt line, then enables the CPU interface and affinity routing.
func (g *GIC) Init() error {
	if g.GICD == 0 || g.GICR == 0 {
		return fmt.Errorf("%w: GIC distributor/redistributor base not set", hal.ErrInvalidAddress)
	}

	mmio.Clear32(g.GICR+gicrWAKER, wakerProcessorSleep)
	if !mmio.WaitFor(gicWakeTimeout, g.GICR+gicrWAKER, wakerChildrenAsleep, 1, 0) {
		return fmt.Errorf("%w: redistributor did not wake", hal.ErrTimeout)
	}

	itLinesNum := mmio.Get32(g.GICD+gicdTYPER, typerITLines, 0x1f) + 1
	for n := uint32(0); n < itLinesNum; n++ {
		mmio.Write32(g.GICD+gicdICENABLER+4*uint64(n), 0xffffffff)
		mmio.Write32(g.GICD+gicdICPENDR+4*uint64(n), 0xffffffff)
	}

	if g.WriteICCSREEL3 != nil {
		g.WriteICCSREEL3(1)
	}
	if g.WriteICCPMREL1 != nil {
		g.WriteICCPMREL1(0xff)
	}
	if g.WriteICCIGRPEN0EL1 != nil {
		g.WriteICCIGRPEN0EL1(1)
	}

	mmio.Set32(g.GICD+gicdCTLR, ctlrEnableGrp0)
	mmio.Set32(g.GICD+gicdCTLR, ctlrAreNS)
	mmio.Set32(g.GICD+gicdCTLR, ctlrAreS)

	if g.ReadMPIDREL1 != nil {
		g.mpidr = g.ReadMPIDREL1()
	}
	return nil
}

func setTo32(addr uint64, pos int, val bool) {
	if val {
		mmio.Set32(addr, pos)
	} else {
		mmio.Clear32(addr, pos)
	}
}

func (g *GIC) irqConfig(m int, enable bool) {
	if g.GICD == 0 {
		return
	}

	n := uint32(m / 32)
	i := m % 32
	var off uint32

	if enable {
		if m < firstSPI {
			mmio.Clear32(g.GICR+gicrIGROUPR+4*uint64(n), i)
		} else {
			mmio.Write64(g.GICD+gicdIROUTER+8*uint64(m), g.mpidr)
			mmio.Clear32(g.GICD+gicdIGROUPR+4*uint64(n), i)
		}
		off = gicdISENABLER
	} else {
		off = gicdICENABLER
	}

	if m < firstSPI {
		setTo32(g.GICR+sgiBase+uint64(off)+4*uint64(n), i, true)
	} else {
		setTo32(g.GICD+uint64(off)+4*uint64(n), i, true)
	}
}

// EnableInterrupt routes and unmasks interrupt id.
func (g *GIC) EnableInterrupt(id int) {
	g.irqConfig(id, true)
}

// DisableInterrupt masks interrupt id.
func (g *GIC) DisableInterrupt(id int) {
	g.irqConfig(id, false)
}

// GetInterrupt acknowledges and, for non-special interrupt numbers, ends the
// highest priority pending Group0 interrupt. Returns 0 if the CPU-interface
// seam has not been wired up.
func (g *GIC) GetInterrupt() int {
	if g.ReadICCIAR0 == nil {
		return 0
	}

	m := g.ReadICCIAR0() & 0xffffff
	if m < firstSIN && g.WriteICCEOIR0 != nil {
		g.WriteICCEOIR0(m)
	}
	return int(m)
}

// BSPID returns the bootstrap processor's cached MPIDR_EL1 affinity value.
func (g *GIC) BSPID() uint32 {
	return uint32(g.mpidr)
}

// SendIPI delivers a Software Generated Interrupt for hal.Fixed requests.
// arm64 has no GIC-level equivalent of x86's INIT/Startup IPIs — secondary
// core bring-up goes through PSCI CPU_ON, which no teacher or pack file
// models — so hal.Init and hal.Startup are rejected rather than guessed at.
func (g *GIC) SendIPI(target uint32, req hal.IPI) error {
	if req.Kind != hal.Fixed {
		return fmt.Errorf("%w: arm64 SGI delivery does not support IPI kind %v (use PSCI for bring-up)", hal.ErrInvalidAddress, req.Kind)
	}
	if g.SendSGI == nil {
		return fmt.Errorf("%w: SGI delivery not wired up", hal.ErrTimeout)
	}
	g.SendSGI(uint64(target), req.Vector)
	return nil
}

// EnableLine unmasks irq at the distributor/redistributor.
func (g *GIC) EnableLine(irq uint32) error {
	g.EnableInterrupt(int(irq))
	return nil
}

// DisableLine masks irq at the distributor/redistributor.
func (g *GIC) DisableLine(irq uint32) error {
	g.DisableInterrupt(int(irq))
	return nil
}

var _ hal.InterruptController = (*GIC)(nil)
