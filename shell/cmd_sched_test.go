package shell

import (
	"strings"
	"testing"

	"github.com/sis-kernel/sisk/scheduler"
)

func newSchedState() SchedulerState {
	return SchedulerState{
		Predictor: scheduler.NewPredictor(),
		Affinity:  scheduler.NewAffinityGraph(),
		Shadow:    scheduler.NewShadowMode(),
		Features:  scheduler.NewFeatureFlags(),
	}
}

func TestSchedctlWorkloadUnclassifiedWithNoData(t *testing.T) {
	s := New()
	st := newSchedState()
	RegisterScheduler(s, st)

	out := s.Dispatch("schedctl workload net-rx")
	if !strings.Contains(out, "unclassified") {
		t.Fatalf("schedctl workload net-rx = %q, want unclassified", out)
	}
}

func TestSchedctlPrioritiesMissingOperator(t *testing.T) {
	s := New()
	st := newSchedState()
	RegisterScheduler(s, st)

	out := s.Dispatch("schedctl priorities ghost")
	if !strings.Contains(out, "[SCHEDCTL]") {
		t.Fatalf("schedctl priorities ghost = %q, want an error", out)
	}
}

func TestSchedctlFeatureToggle(t *testing.T) {
	s := New()
	st := newSchedState()
	RegisterScheduler(s, st)

	out := s.Dispatch("schedctl feature enable affinity-learning")
	if !strings.Contains(out, "-> true") {
		t.Fatalf("schedctl feature enable = %q, want -> true", out)
	}

	out = s.Dispatch("schedctl feature disable affinity-learning")
	if !strings.Contains(out, "-> false") {
		t.Fatalf("schedctl feature disable = %q, want -> false", out)
	}
}

func TestSchedctlShadowOnOffCompare(t *testing.T) {
	s := New()
	st := newSchedState()
	RegisterScheduler(s, st)

	if out := s.Dispatch("schedctl shadow on"); !strings.Contains(out, "on") {
		t.Fatalf("schedctl shadow on = %q", out)
	}
	out := s.Dispatch("schedctl shadow compare")
	if !strings.Contains(out, "agreed=0") {
		t.Fatalf("schedctl shadow compare = %q, want agreed=0 with no ticks observed", out)
	}
}

func TestSchedctlAffinityNoGroupsInitially(t *testing.T) {
	s := New()
	st := newSchedState()
	RegisterScheduler(s, st)

	out := s.Dispatch("schedctl affinity")
	if !strings.Contains(out, "0 affinity group") {
		t.Fatalf("schedctl affinity = %q, want 0 groups", out)
	}
}
