// ARM PrimeCell PL011 UART driver
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package virt provides hardware initialization, automatically on import,
// for the QEMU arm64 "virt" machine.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm64` as
// supported by the TamaGo framework for bare metal Go, see
// https://github.com/sis-kernel/sisk.
//
// No PL011 driver exists anywhere in the retrieval pack (the teacher's
// arm64 boards are all NXP i.MX parts with a 16550-derivative UART); this
// one is modeled directly on soc/intel/uart's struct shape and busy-wait
// Tx/Rx idiom, re-targeted at the ARM PrimeCell PL011 register layout (ARM
// DDI 0183G) that QEMU's "virt" machine emulates at UART0.
package virt

import (
	"runtime"

	"github.com/sis-kernel/sisk/hal/arch/internal/mmio"
)

// PL011 register offsets (ARM DDI 0183G).
const (
	uartDR = 0x000

	uartFR    = 0x018
	uartFRTXFF = 5
	uartFRRXFE = 4

	uartIBRD = 0x024
	uartFBRD = 0x028
	uartLCRH = 0x02c
	lcrhFEN  = 4
	lcrhWLEN = 5

	uartCR  = 0x030
	crUARTEN = 0
	crTXE    = 8
	crRXE    = 9
)

// PL011 represents a PrimeCell PL011 UART instance.
type PL011 struct {
	// Base is the UART's MMIO base address.
	Base uint64
}

// Init enables the UART with 8N1 framing and FIFOs, leaving the baud rate
// divisor as programmed by QEMU's firmware hand-off (the driver never
// calibrates UARTCLK, matching how soc/intel/uart treats baud rate as
// fixed by the platform rather than by software).
func (hw *PL011) Init() {
	if hw.Base == 0 {
		panic("invalid UART controller instance")
	}

	mmio.Write32(hw.Base+uartCR, 0)
	mmio.Write32(hw.Base+uartLCRH, (1<<lcrhFEN)|(3<<lcrhWLEN))
	mmio.Write32(hw.Base+uartCR, (1<<crUARTEN)|(1<<crTXE)|(1<<crRXE))
}

// Tx transmits a single character to the serial port.
func (hw *PL011) Tx(c byte) {
	for mmio.Read32(hw.Base+uartFR)&(1<<uartFRTXFF) != 0 {
		// wait for TX FIFO to have room for a character
	}

	mmio.Write32(hw.Base+uartDR, uint32(c))
}

// Rx receives a single character from the serial port.
func (hw *PL011) Rx() (c byte, valid bool) {
	if mmio.Read32(hw.Base+uartFR)&(1<<uartFRRXFE) != 0 {
		return
	}

	return byte(mmio.Read32(hw.Base + uartDR)), true
}

// Write data from buffer to serial port.
func (hw *PL011) Write(buf []byte) (n int, _ error) {
	for n = 0; n < len(buf); n++ {
		hw.Tx(buf[n])
	}

	return
}

// Read available data to buffer from serial port.
func (hw *PL011) Read(buf []byte) (n int, _ error) {
	var valid bool

	for n = 0; n < len(buf); n++ {
		buf[n], valid = hw.Rx()

		if !valid {
			if n == 0 {
				runtime.Gosched()
			}

			break
		}
	}

	return
}
