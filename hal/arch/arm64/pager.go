package arm64

import "github.com/sis-kernel/sisk/hal"

// Pager is the arm64 hal.Pager, targeting the standard ARMv8-A 4 KiB-granule,
// 4-level (Sv48-shaped) translation table format — the same shape
// hal.DefaultShifts already encodes. The teacher's own arm64/mmu.go instead
// builds a flat, ARMv7-style 2-level short-descriptor table keyed off
// runtime.MemRegion()/runtime.TextRegion() (a TamaGo-runtime-specific flat
// identity map, not a per-page table compatible with hal.Pager's
// MapPage/UnmapPage contract), so it is not ported verbatim; the walk shape
// instead follows the same 4-level/512-entry precedent amd64.CPU.FindPTE
// and hal.Table already establish.
//
// Activating a built table (set_ttbr0 in the teacher's mmu.go, "defined in
// mmu.s") is TTBR0_EL1 write, a system register access with no MMIO
// equivalent and no backing assembly file in this tree — left as an
// injectable seam, same treatment as amd64.Pager.Activate.
type Pager struct {
	*hal.Table

	// Activate loads root (a physical page-table root address) into
	// TTBR0_EL1. Left nil here; set by boot glue on real hardware.
	Activate func(root uint64)
}

// NewPager returns a Pager over an empty 4-level table using the standard
// ARMv8-A 4 KiB-granule index shifts.
func NewPager() *Pager {
	return &Pager{Table: hal.NewTable(hal.DefaultShifts)}
}

var _ hal.Pager = (*Pager)(nil)
