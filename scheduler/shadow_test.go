package scheduler

import "testing"

func TestFeatureFlagsDefaultDisabled(t *testing.T) {
	ff := NewFeatureFlags()
	for _, f := range []Feature{FeatureAutonomousScheduling, FeatureWorkloadClassification, FeatureAffinityLearning, FeatureShadowMode} {
		if ff.Enabled(f) {
			t.Fatalf("feature %s enabled by default", f)
		}
	}
}

func TestFeatureFlagsToggleIndependently(t *testing.T) {
	ff := NewFeatureFlags()
	ff.Enable(FeatureShadowMode)

	if !ff.Enabled(FeatureShadowMode) {
		t.Fatalf("FeatureShadowMode not enabled after Enable")
	}
	if ff.Enabled(FeatureAffinityLearning) {
		t.Fatalf("FeatureAffinityLearning enabled as a side effect")
	}

	ff.Disable(FeatureShadowMode)
	if ff.Enabled(FeatureShadowMode) {
		t.Fatalf("FeatureShadowMode still enabled after Disable")
	}
}

func TestFeatureFlagsList(t *testing.T) {
	ff := NewFeatureFlags()
	ff.Enable(FeatureWorkloadClassification)

	list := ff.List()
	if len(list) != 4 {
		t.Fatalf("len(List()) = %d, want 4", len(list))
	}
	if !list[FeatureWorkloadClassification] {
		t.Fatalf("List()[FeatureWorkloadClassification] = false, want true")
	}
}

func TestShadowModeOffRecordsNothing(t *testing.T) {
	s := NewShadowMode()
	if pc := s.RecordDecision(); pc != nil {
		t.Fatalf("RecordDecision while off returned non-nil")
	}
	if got := s.PendingCount(); got != 0 {
		t.Fatalf("PendingCount = %d, want 0", got)
	}
}

// TestShadowModeScoresAfterWindow mirrors section 4.6's shadow-mode
// observation window: a decision is only scored once it has accumulated at
// least the configured number of downstream-outcome ticks.
func TestShadowModeScoresAfterWindow(t *testing.T) {
	s := NewShadowMode()
	s.SetWindow(3)
	s.On()

	s.RecordDecision()
	if got := s.PendingCount(); got != 1 {
		t.Fatalf("PendingCount = %d, want 1", got)
	}

	s.Advance(func() Outcome { return Agreed })
	s.Advance(func() Outcome { return Agreed })
	if got := s.Tally().Total(); got != 0 {
		t.Fatalf("Tally scored before window elapsed: %+v", s.Tally())
	}

	s.Advance(func() Outcome { return PrimaryBetter })
	if got := s.PendingCount(); got != 0 {
		t.Fatalf("PendingCount after window = %d, want 0", got)
	}

	tally := s.Tally()
	if tally.PrimaryBetter != 1 || tally.Total() != 1 {
		t.Fatalf("Tally = %+v, want one PrimaryBetter", tally)
	}
}

func TestShadowModeTracksMultiplePendingDecisions(t *testing.T) {
	s := NewShadowMode()
	s.SetWindow(1)
	s.On()

	s.RecordDecision()
	s.RecordDecision()
	s.RecordDecision()

	outcomes := []Outcome{Agreed, Agreed, ShadowBetter}
	i := 0
	s.Advance(func() Outcome {
		o := outcomes[i]
		i++
		return o
	})

	tally := s.Tally()
	if tally.Agreed != 2 || tally.ShadowBetter != 1 {
		t.Fatalf("Tally = %+v, want agreed=2 shadow-better=1", tally)
	}
}

func TestShadowModeOffDiscardsPending(t *testing.T) {
	s := NewShadowMode()
	s.On()
	s.RecordDecision()
	s.Off()

	if got := s.PendingCount(); got != 0 {
		t.Fatalf("PendingCount after Off = %d, want 0", got)
	}
}

func TestShadowModeResetClearsTallyNotEnabledState(t *testing.T) {
	s := NewShadowMode()
	s.SetWindow(1)
	s.On()
	s.RecordDecision()
	s.Advance(func() Outcome { return Agreed })

	s.Reset()

	if !s.Enabled() {
		t.Fatalf("Reset disabled shadow mode, want it to stay enabled")
	}
	if got := s.Tally().Total(); got != 0 {
		t.Fatalf("Tally after Reset = %+v, want zero", s.Tally())
	}
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{Agreed: "agreed", PrimaryBetter: "primary-better", ShadowBetter: "shadow-better"}
	for o, want := range cases {
		if got := o.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", o, got, want)
		}
	}
}
