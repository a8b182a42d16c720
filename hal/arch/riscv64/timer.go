// Package riscv64 implements the riscv64 HAL backend: the CLINT timer and
// PLIC interrupt controller, and the page tables riscv64 boots with.
// Grounded on soc/sifive/clint/clint.go+timer.go (both fully memory-mapped)
// and, since the teacher ships no PLIC driver, tinyrange-cc's rv64 PLIC for
// the interrupt-enable/threshold register layout.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package riscv64

import (
	"runtime"

	"github.com/sis-kernel/sisk/hal"
	"github.com/sis-kernel/sisk/hal/arch/internal/mmio"
)

// CLINT register offset, ported from soc/sifive/clint/clint.go. Unlike the
// amd64/arm64 timers, the CLINT's mtime register carries no "defined in
// .s" declaration anywhere in the teacher source — it is genuinely
// memory-mapped, so this backend needs no injectable seam at all.
const clintMtime = 0xbff8

// TimeSource implements hal.TimeSource over a SiFive CLINT's memory-mapped
// mtime register, ported from clint.CLINT's Mtime/Nanotime/SetTimer.
type TimeSource struct {
	Base uint64
	// RTCCLK is the real-time clock input frequency in Hz that mtime
	// increments at.
	RTCCLK uint64

	timerOffset int64
}

// NewTimeSource returns a TimeSource over a CLINT at base counting at
// rtcclkHz.
func NewTimeSource(base uint64, rtcclkHz uint64) *TimeSource {
	return &TimeSource{Base: base, RTCCLK: rtcclkHz}
}

// Kind reports SourceGenericTimer (RISC-V has no teacher/pack-named kind of
// its own; the CLINT is the platform's only timer source).
func (t *TimeSource) Kind() hal.TimeSourceKind {
	return hal.SourceGenericTimer
}

// Mtime returns the raw CLINT mtime register value.
func (t *TimeSource) Mtime() uint64 {
	return mmio.Read64(t.Base + clintMtime)
}

// NowNS converts mtime to nanoseconds and applies the timer offset.
func (t *TimeSource) NowNS() int64 {
	return int64(mulDiv(t.Mtime(), 1_000_000_000, t.RTCCLK)) + t.timerOffset
}

// BusyWait spins until NowNS advances by at least ns.
func (t *TimeSource) BusyWait(ns int64) {
	target := t.NowNS() + ns
	for t.NowNS() < target {
		runtime.Gosched()
	}
}

// Calibrate reports RTCCLK directly — the CLINT's counting rate is a fixed
// platform parameter, not something measured against a reference interval.
func (t *TimeSource) Calibrate() (uint64, error) {
	if t.RTCCLK == 0 {
		return 0, hal.ErrInvalidAddress
	}
	return t.RTCCLK, nil
}

// mulDiv computes x*m/d without overflowing 64 bits for the ranges mtime
// conversion needs, ported verbatim from soc/sifive/clint/timer.go.
func mulDiv(x, m, d uint64) uint64 {
	divx := x / d
	modx := x - divx*d
	divm := m / d
	modm := m - divm*d
	return divx*m + modx*divm + modx*modm/d
}

var _ hal.TimeSource = (*TimeSource)(nil)
