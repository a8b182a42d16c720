package amd64

import (
	"fmt"
	"runtime"

	"github.com/sis-kernel/sisk/hal"
	"github.com/sis-kernel/sisk/hal/arch/internal/mmio"
)

// HPET register offsets (IA-PC HPET specification). The teacher's own
// amd64/timer.go calibrates the TSC against the ACPI PM timer and reads the
// counter with a hand-written assembly primitive (read_tsc, declared
// "defined in timer.s"); no .s file backing that primitive ships in this
// tree, and the ACPI PM timer is accessed over port I/O (reg.In32), which is
// equally assembly-only. The HPET main counter is genuinely memory-mapped
// and carries its own calibration (the clock period is a capability
// register field, not something to measure against a reference interval),
// so it is used here instead — same mmio primitives as every other amd64
// register access in this package, no assembly dependency at all.
const (
	hpetCapID      = 0x000 // general capabilities and ID register
	hpetGenConfig  = 0x010 // general configuration register
	hpetMainCounter = 0x0f0 // main up-counter

	hpetEnableCnf = 0 // ENABLE_CNF bit in hpetGenConfig
)

// TimeSource implements hal.TimeSource over an HPET's memory-mapped main
// counter.
type TimeSource struct {
	base     uint64
	periodFs uint64 // femtoseconds per counter tick, read from capabilities at construction
}

// NewTimeSource probes the HPET's clock period and enables its main counter.
func NewTimeSource(base uint64) *TimeSource {
	t := &TimeSource{base: base}
	t.periodFs = mmio.Read64(base+hpetCapID) >> 32
	mmio.Set32(base+hpetGenConfig, hpetEnableCnf)
	return t
}

// Kind reports SourceHPET.
func (t *TimeSource) Kind() hal.TimeSourceKind {
	return hal.SourceHPET
}

// NowNS returns the HPET main counter's value converted to nanoseconds.
func (t *TimeSource) NowNS() int64 {
	return int64(ticksToNS(mmio.Read64(t.base+hpetMainCounter), t.periodFs))
}

// BusyWait spins until NowNS advances by at least ns.
func (t *TimeSource) BusyWait(ns int64) {
	target := t.NowNS() + ns
	for t.NowNS() < target {
		runtime.Gosched()
	}
}

// Calibrate derives the counter frequency directly from the capability
// register's clock period field (no reference-interval measurement is
// needed for HPET, unlike the TSC it replaces).
func (t *TimeSource) Calibrate() (uint64, error) {
	if t.periodFs == 0 {
		return 0, fmt.Errorf("hpet: clock period capability unavailable")
	}
	return femtosecondsPerSecond / t.periodFs, nil
}

const (
	femtosecondsPerSecond  = 1_000_000_000_000_000
	femtosecondsPerNanosecond = 1_000_000
)

// ticksToNS converts a tick count at the given femtosecond period into
// nanoseconds. Kept free of register access so it can be unit tested
// without memory-mapped hardware.
func ticksToNS(ticks, periodFs uint64) uint64 {
	return (ticks * periodFs) / femtosecondsPerNanosecond
}

var _ hal.TimeSource = (*TimeSource)(nil)
