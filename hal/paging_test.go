package hal

import (
	"errors"
	"testing"
)

func TestPagingRoundTrip(t *testing.T) {
	tbl := NewTable(DefaultShifts)

	va, err := NewVA(0x0000_7f00_0000_0000)
	if err != nil {
		t.Fatalf("NewVA: %v", err)
	}
	pa, err := NewPA(0x0000_0000_1000_0000)
	if err != nil {
		t.Fatalf("NewPA: %v", err)
	}

	if err := tbl.MapPage(va, pa, Read|Write); err != nil {
		t.Fatalf("MapPage: %v", err)
	}

	for off := uint64(0); off < PageSize; off += 256 {
		got, err := tbl.Translate(va.Add(off))
		if err != nil {
			t.Fatalf("Translate(off=%d): %v", off, err)
		}
		if want := pa.Add(off); got != want {
			t.Fatalf("Translate(off=%d) = %s, want %s", off, got, want)
		}
	}

	if err := tbl.MapPage(va, pa, Read); !errors.Is(err, ErrAlreadyMapped) {
		t.Fatalf("second MapPage = %v, want ErrAlreadyMapped", err)
	}
}

func TestUnmapThenTranslateFails(t *testing.T) {
	tbl := NewTable(DefaultShifts)
	va, _ := NewVA(0x1000)
	pa, _ := NewPA(0x2000)

	if err := tbl.MapPage(va, pa, Read|Write); err != nil {
		t.Fatalf("MapPage: %v", err)
	}
	if err := tbl.UnmapPage(va); err != nil {
		t.Fatalf("UnmapPage: %v", err)
	}
	if _, err := tbl.Translate(va); !errors.Is(err, ErrPageNotMapped) {
		t.Fatalf("Translate after unmap = %v, want ErrPageNotMapped", err)
	}
}

func TestUnmapUnmappedFails(t *testing.T) {
	tbl := NewTable(DefaultShifts)
	va, _ := NewVA(0x3000)

	if err := tbl.UnmapPage(va); !errors.Is(err, ErrPageNotMapped) {
		t.Fatalf("UnmapPage on unmapped = %v, want ErrPageNotMapped", err)
	}
}

func TestMapPageRejectsUnaligned(t *testing.T) {
	if _, err := NewVA(1); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("NewVA(1) = %v, want ErrInvalidAddress", err)
	}
}

func TestLeafFlagInvariant(t *testing.T) {
	leaf := Read | Write | Valid
	if !leaf.IsLeaf() {
		t.Fatalf("expected leaf flags to be a leaf")
	}
	if leaf.IsInterior() {
		t.Fatalf("leaf flags should not be interior")
	}

	interior := Valid | Accessed
	if interior.IsLeaf() {
		t.Fatalf("interior flags should not be a leaf")
	}
	if !interior.IsInterior() {
		t.Fatalf("expected interior flags to be interior")
	}
}

func TestPMUCounterIndexBoundary(t *testing.T) {
	if !ValidCounterIndex(MaxCounterIndex) {
		t.Fatalf("index %d should be valid", MaxCounterIndex)
	}
	if ValidCounterIndex(MaxCounterIndex + 1) {
		t.Fatalf("index %d should be invalid", MaxCounterIndex+1)
	}
}

func TestPrivilegeStacksRejectOverlap(t *testing.T) {
	transition := VA(0x1000)
	ist := [3]VA{0x1000, 0x6000, 0x8000} // overlaps transition stack

	if _, err := NewPrivilegeStacks(transition, ist); err == nil {
		t.Fatalf("expected overlap error")
	}
}

func TestPrivilegeStacksAccepted(t *testing.T) {
	transition := VA(0x1000)
	ist := [3]VA{0x6000, 0x8000, 0xa000}

	ps, err := NewPrivilegeStacks(transition, ist)
	if err != nil {
		t.Fatalf("NewPrivilegeStacks: %v", err)
	}

	if ps.Slot(DoubleFault).Base != 0x6000 {
		t.Fatalf("unexpected double fault stack base")
	}
}
