package autonomy

import (
	"testing"
	"time"

	"github.com/sis-kernel/sisk/bus"
)

func fixedDecision(confidence float64, actions int) Decider {
	var directives []Directive
	for i := 0; i < actions; i++ {
		directives = append(directives, Directive{Name: "noop"})
	}
	return DeciderFunc(func(ctx Context) Decision {
		return Decision{Action: directives, Confidence: confidence, Reasoning: "test"}
	})
}

// TestAutonomyFlowScenario mirrors section 8's literal end-to-end scenario
// 3: on, then conf-threshold 0.9, then a single decision of confidence
// 0.8, expecting total_decisions=1 accepted=0 deferred=1.
func TestAutonomyFlowScenario(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.8, 1))

	c.On()
	if _, err := c.SetConfThreshold(0.9); err != nil {
		t.Fatalf("SetConfThreshold: %v", err)
	}

	c.Tick(time.Now().Add(-time.Second))

	got := c.Status()
	if !got.Enabled || got.Mode != "active" {
		t.Fatalf("status = %+v, want enabled active", got)
	}
	if got.ConfThreshold != 0.9 {
		t.Fatalf("ConfThreshold = %v, want 0.9", got.ConfThreshold)
	}
	if got.TotalDecisions != 1 || got.Accepted != 0 || got.Deferred != 1 {
		t.Fatalf("decisions = %+v, want total=1 accepted=0 deferred=1", got)
	}
}

// TestConfidenceGateInvariant is the section 8 quantified invariant: for
// any decision with confidence below threshold, accepted stays unchanged
// and deferred increments by exactly one.
func TestConfidenceGateInvariant(t *testing.T) {
	cases := []float64{0.0, 0.1, 0.5, 0.69, 0.699}

	for _, conf := range cases {
		b := bus.New()
		c := New(b, fixedDecision(conf, 1))
		c.On()

		before := c.Status()
		c.Tick(time.Now().Add(-time.Second))
		after := c.Status()

		if after.Accepted != before.Accepted {
			t.Errorf("confidence %v: accepted changed from %d to %d", conf, before.Accepted, after.Accepted)
		}
		if after.Deferred != before.Deferred+1 {
			t.Errorf("confidence %v: deferred = %d, want %d", conf, after.Deferred, before.Deferred+1)
		}
	}
}

func TestConfidenceAtOrAboveThresholdIsAccepted(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.7, 1)) // default threshold is 0.7
	c.On()

	c.Tick(time.Now().Add(-time.Second))

	got := c.Status()
	if got.Accepted != 1 || got.Deferred != 0 {
		t.Fatalf("status = %+v, want accepted=1 deferred=0", got)
	}
}

func TestWatchdogTransitionsToSafeModeAfterThreeMisses(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.9, 1))
	c.On()

	c.MissTick()
	if got := c.Status(); got.Mode != "active" {
		t.Fatalf("after 1 miss, mode = %s, want active", got.Mode)
	}

	c.MissTick()
	if got := c.Status(); got.Mode != "active" || got.WatchdogResets != 1 {
		t.Fatalf("after 2 misses, status = %+v, want active with 1 watchdog reset", got)
	}

	c.MissTick()
	if got := c.Status(); got.Mode != "safe_mode" {
		t.Fatalf("after 3 misses, mode = %s, want safe_mode", got.Mode)
	}
}

func TestTickResetsWatchdogMissCounter(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.9, 1))
	c.On()

	c.MissTick()
	c.MissTick()
	c.Tick(time.Now().Add(-time.Second)) // a healthy tick clears the streak

	c.MissTick()
	c.MissTick()
	if got := c.Status(); got.Mode != "active" {
		t.Fatalf("mode = %s, want still active (streak was reset by the intervening Tick)", got.Mode)
	}
}

func TestSafeModeRejectsNewDecisionsButStatusWorks(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.9, 1))
	c.On()

	c.MissTick()
	c.MissTick()
	c.MissTick()

	before := c.Status()
	if before.Mode != "safe_mode" {
		t.Fatalf("expected safe_mode, got %s", before.Mode)
	}

	c.Tick(time.Now().Add(-time.Second))

	after := c.Status()
	if after.TotalDecisions != before.TotalDecisions {
		t.Fatalf("SafeMode must not accept new decisions: total went from %d to %d", before.TotalDecisions, after.TotalDecisions)
	}
	if after.Mode != "safe_mode" {
		t.Fatalf("status endpoint should still report safe_mode, got %s", after.Mode)
	}
}

func TestSetIntervalClampRange(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(1.0, 1))

	if _, err := c.SetInterval(10 * time.Millisecond); err == nil {
		t.Fatalf("expected error for interval below MinInterval")
	}
	if _, err := c.SetInterval(2 * time.Minute); err == nil {
		t.Fatalf("expected error for interval above MaxInterval")
	}
	if _, err := c.SetInterval(1 * time.Second); err != nil {
		t.Fatalf("1s should be within range: %v", err)
	}
}

func TestResetZeroesCounters(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.9, 1))
	c.On()
	c.Tick(time.Now().Add(-time.Second))
	c.Reset()

	got := c.Status()
	if got.Mode != "off" || got.TotalDecisions != 0 || got.Accepted != 0 || got.Deferred != 0 {
		t.Fatalf("status after Reset = %+v, want zero value in off mode", got)
	}
}

func TestAuditAndExplain(t *testing.T) {
	b := bus.New()
	c := New(b, fixedDecision(0.9, 1))
	c.On()
	c.Tick(time.Now().Add(-time.Second))

	entries := c.Audit(10)
	if len(entries) != 1 {
		t.Fatalf("len(Audit(10)) = %d, want 1", len(entries))
	}

	got, ok := c.Explain(entries[0].ID)
	if !ok {
		t.Fatalf("Explain(%q) not found", entries[0].ID)
	}
	if !got.Executed {
		t.Fatalf("expected the high-confidence decision to have executed")
	}
}
