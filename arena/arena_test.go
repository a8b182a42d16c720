package arena

import "testing"

func TestAllocAdvancesOffset(t *testing.T) {
	a := New()
	buf, err := a.Alloc(64, 16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if len(buf) != 64 {
		t.Fatalf("len(buf) = %d, want 64", len(buf))
	}
	current, _ := a.Usage()
	if current != 64 {
		t.Fatalf("current offset = %d, want 64", current)
	}
}

func TestAllocRespectsAlignment(t *testing.T) {
	a := New()
	if _, err := a.Alloc(1, 32); err != nil {
		t.Fatalf("Alloc(1, 32): %v", err)
	}
	buf, err := a.Alloc(8, 32)
	if err != nil {
		t.Fatalf("Alloc(8, 32): %v", err)
	}
	// The second allocation's backing slice starts 32 bytes in, not 1.
	current, _ := a.Usage()
	if current != 40 {
		t.Fatalf("current offset = %d, want 40 (32-aligned second alloc + 8)", current)
	}
	_ = buf
}

func TestAllocRejectsNonPowerOfTwoAlignment(t *testing.T) {
	a := New()
	if _, err := a.Alloc(8, 3); err == nil {
		t.Fatalf("Alloc(align=3): want error, got nil")
	}
}

func TestAllocRejectsZeroSize(t *testing.T) {
	a := New()
	if _, err := a.Alloc(0, 16); err == nil {
		t.Fatalf("Alloc(size=0): want error, got nil")
	}
}

func TestAllocFailsWhenArenaExhausted(t *testing.T) {
	a := New()
	if _, err := a.Alloc(Size, 1); err != nil {
		t.Fatalf("Alloc(full size): %v", err)
	}
	if _, err := a.Alloc(1, 1); err == nil {
		t.Fatalf("Alloc past capacity: want error, got nil")
	}
}

func TestResetRewindsOffsetNotCumulativeStats(t *testing.T) {
	a := New()
	a.Alloc(1024, 16)
	a.Reset()

	current, peak := a.Usage()
	if current != 0 {
		t.Fatalf("current offset after Reset = %d, want 0", current)
	}
	if peak != 1024 {
		t.Fatalf("high water mark after Reset = %d, want 1024 (cumulative)", peak)
	}

	stats := a.Stats()
	if stats.AllocationCount != 1 {
		t.Fatalf("AllocationCount after Reset = %d, want 1 (cumulative)", stats.AllocationCount)
	}
}

func TestHighWaterMarkTracksPeakAcrossResets(t *testing.T) {
	a := New()
	a.Alloc(2048, 16)
	a.Reset()
	a.Alloc(512, 16)

	_, peak := a.Usage()
	if peak != 2048 {
		t.Fatalf("high water mark = %d, want 2048 (peak across resets)", peak)
	}
}
