package autonomy

import (
	"testing"

	"github.com/sis-kernel/sisk/bus"
)

func TestPreviewDoesNotMutateState(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.9, 1))
	c.On()

	before := c.Status()
	results := c.Preview(5)
	after := c.Status()

	if len(results) != 5 {
		t.Fatalf("len(Preview(5)) = %d, want 5", len(results))
	}
	if after.TotalDecisions != before.TotalDecisions {
		t.Fatalf("Preview mutated TotalDecisions: %d -> %d", before.TotalDecisions, after.TotalDecisions)
	}
	if len(c.Audit(100)) != 0 {
		t.Fatalf("Preview wrote to the audit trail")
	}
}

func TestPreviewCapsAtMaxCount(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.9, 1))

	results := c.Preview(1000)
	if len(results) != MaxPreviewCount {
		t.Fatalf("len(Preview(1000)) = %d, want %d", len(results), MaxPreviewCount)
	}
}

func TestPreviewWarnsOnLowConfidence(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.1, 1))

	results := c.Preview(1)
	if results[0].WouldExecute {
		t.Fatalf("WouldExecute = true, want false for low confidence")
	}
	if len(results[0].Warnings) == 0 {
		t.Fatalf("expected a warning for low-confidence decision")
	}
}

func TestWhatIfShowsThresholdCrossing(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.8, 1))
	if _, err := c.SetConfThreshold(0.9); err != nil {
		t.Fatalf("SetConfThreshold: %v", err)
	}

	lower := 0.5
	result := c.WhatIf(WhatIfOverrides{ConfThreshold: &lower})

	if result.Baseline.WouldExecute {
		t.Fatalf("baseline WouldExecute = true, want false (0.8 < 0.9)")
	}
	if !result.Scenario.WouldExecute {
		t.Fatalf("scenario WouldExecute = false, want true (0.8 >= 0.5)")
	}
	if len(result.Diff) == 0 {
		t.Fatalf("expected a non-empty diff when would_execute flips")
	}
}

func TestWhatIfWithNoOverridesMatchesBaseline(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.9, 1))

	result := c.WhatIf(WhatIfOverrides{})
	if result.Baseline.WouldExecute != result.Scenario.WouldExecute {
		t.Fatalf("baseline/scenario diverged with no overrides: %+v", result)
	}
}
