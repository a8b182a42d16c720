package riscv64

import "github.com/sis-kernel/sisk/hal"

// Pager is the riscv64 hal.Pager, targeting Sv48: 4 KiB pages, 4 levels of
// 512-entry tables indexed at bits 39/30/21/12 — the same shape
// hal.DefaultShifts already encodes (and identical to amd64's long-mode
// shifts), so riscv64 needs no walk logic of its own. The teacher ships no
// riscv64 MMU code at all to adapt from.
//
// Activate (the satp CSR write that makes a built table live) is a
// machine/supervisor-mode CSR write with no MMIO equivalent and no
// teacher-or-pack precedent, so it is left as an injectable seam, same
// treatment as amd64.Pager.Activate and arm64.Pager.Activate.
type Pager struct {
	*hal.Table

	// Activate loads root (a physical page-table root address, pre-shifted
	// and OR'd with the Sv48 mode field) into satp. Left nil here; set by
	// boot glue on real hardware.
	Activate func(root uint64)
}

// NewPager returns a Pager over an empty 4-level Sv48 table.
func NewPager() *Pager {
	return &Pager{Table: hal.NewTable(hal.DefaultShifts)}
}

var _ hal.Pager = (*Pager)(nil)
