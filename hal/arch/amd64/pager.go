package amd64

import "github.com/sis-kernel/sisk/hal"

// Pager is the amd64 hal.Pager. Its page-table walk (4 levels, 512 entries,
// indices at bits 39/30/21/12) is amd64.CPU.FindPTE's shape exactly, which
// is why hal.Table's DefaultShifts already match it — amd64 needs no walk
// logic of its own, only the translation-base-register write that makes a
// built table live.
//
// That write (read_cr3/write_cr0 in the teacher's mmu.go) is declared
// "defined in mmu.s" with no corresponding assembly file in this tree, and
// CR3 cannot be read or written from Go without one. Activate is therefore
// an injectable seam: platform boot glue with access to a real assembly
// primitive sets it once, and this package never calls it itself.
type Pager struct {
	*hal.Table

	// Activate loads root (a physical page-table root address) into CR3.
	// Left nil here; set by boot glue on real hardware.
	Activate func(root uint64)
}

// NewPager returns a Pager over an empty 4-level table using amd64's
// long-mode index shifts.
func NewPager() *Pager {
	return &Pager{Table: hal.NewTable(hal.DefaultShifts)}
}

var _ hal.Pager = (*Pager)(nil)
