// QEMU virt support for tamago/arm64
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package virt

import (
	_ "unsafe"
)

// Peripheral registers, per QEMU's "virt" machine memory map.
const (
	UART0_BASE = 0x09000000

	GICD_BASE = 0x08000000
	GICR_BASE = 0x080a0000

	GENERIC_TIMER_FREQ_HZ = 62500000
)

// Peripheral instances
var (
	UART0 = &PL011{
		Base: UART0_BASE,
	}
)

// Init takes care of the lower level initialization triggered early in
// runtime setup (post World start), following the hwinit1 hook convention
// board/qemu/microvm and board/nxp/imx8mpevk use for their own bring-up.
//
//go:linkname Init runtime.hwinit1
func Init() {
	UART0.Init()
}

//go:linkname printk runtime.printk
func printk(c byte) {
	UART0.Tx(c)
}
