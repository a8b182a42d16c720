package scheduler

import "sync"

// Feature names the individually toggleable scheduler capabilities of
// section 4.6.
type Feature string

const (
	FeatureAutonomousScheduling Feature = "autonomous-scheduling"
	FeatureWorkloadClassification Feature = "workload-classification"
	FeatureAffinityLearning     Feature = "affinity-learning"
	FeatureShadowMode           Feature = "shadow-mode"
)

// FeatureFlags is the runtime-toggleable set of scheduler capabilities;
// every feature defaults to disabled.
type FeatureFlags struct {
	mu    sync.Mutex
	flags map[Feature]bool
}

// NewFeatureFlags creates a FeatureFlags set with every feature disabled.
func NewFeatureFlags() *FeatureFlags {
	return &FeatureFlags{flags: make(map[Feature]bool)}
}

// Enable turns f on.
func (ff *FeatureFlags) Enable(f Feature) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	ff.flags[f] = true
}

// Disable turns f off.
func (ff *FeatureFlags) Disable(f Feature) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	ff.flags[f] = false
}

// Enabled reports whether f is currently on.
func (ff *FeatureFlags) Enabled(f Feature) bool {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	return ff.flags[f]
}

// List returns every feature and its current state.
func (ff *FeatureFlags) List() map[Feature]bool {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	out := make(map[Feature]bool, len(ff.flags))
	for _, f := range []Feature{FeatureAutonomousScheduling, FeatureWorkloadClassification, FeatureAffinityLearning, FeatureShadowMode} {
		out[f] = ff.flags[f]
	}
	return out
}

// Outcome classifies one shadow-vs-primary comparison at a single decision
// point, after the observation window has elapsed for both.
type Outcome int

const (
	Agreed Outcome = iota
	PrimaryBetter
	ShadowBetter
)

func (o Outcome) String() string {
	switch o {
	case Agreed:
		return "agreed"
	case PrimaryBetter:
		return "primary-better"
	case ShadowBetter:
		return "shadow-better"
	default:
		return "unknown"
	}
}

// DefaultObservationWindow is the minimum number of downstream-outcome
// ticks a shadow decision is tracked for before it is scored, per "typically
// >= 100 ticks of downstream outcome".
const DefaultObservationWindow = 100

// ShadowTally accumulates the (agreed, primary-better, shadow-better) counts
// a ShadowMode harness records; shadow decisions never influence execution,
// only these statistics.
type ShadowTally struct {
	Agreed        uint64
	PrimaryBetter uint64
	ShadowBetter  uint64
}

// Total returns the number of scored comparisons.
func (t ShadowTally) Total() uint64 {
	return t.Agreed + t.PrimaryBetter + t.ShadowBetter
}

// pendingComparison is one in-flight shadow decision awaiting enough
// downstream ticks to be scored.
type pendingComparison struct {
	ticksObserved uint64
	outcome       Outcome
	scored        bool
}

// ShadowMode runs a secondary scheduling policy alongside the primary one,
// purely for observation: it never changes what actually executes. Once a
// decision has been observed for at least its window, its outcome is
// folded into the running tally.
type ShadowMode struct {
	mu sync.Mutex

	on     bool
	window int
	tally  ShadowTally

	pending []*pendingComparison
}

// NewShadowMode creates a ShadowMode harness using the default observation
// window, initially off.
func NewShadowMode() *ShadowMode {
	return &ShadowMode{window: DefaultObservationWindow}
}

// On enables shadow-mode comparison.
func (s *ShadowMode) On() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.on = true
}

// Off disables shadow-mode comparison; pending unscored comparisons are
// discarded.
func (s *ShadowMode) Off() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.on = false
	s.pending = nil
}

// Enabled reports whether shadow mode is currently on.
func (s *ShadowMode) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// SetWindow overrides the observation window length in ticks. Must be
// positive.
func (s *ShadowMode) SetWindow(ticks int) {
	if ticks <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = ticks
}

// RecordDecision begins tracking one shadow-vs-primary decision point; it is
// scored by the judge passed to Advance once the observation window
// elapses. Returns nil if shadow mode is off.
func (s *ShadowMode) RecordDecision() *pendingComparison {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.on {
		return nil
	}
	pc := &pendingComparison{}
	s.pending = append(s.pending, pc)
	return pc
}

// Advance moves every pending comparison forward by one downstream-outcome
// tick, scoring any that have reached the observation window using judge.
func (s *ShadowMode) Advance(judge func() Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.on {
		return
	}

	remaining := s.pending[:0]
	for _, pc := range s.pending {
		pc.ticksObserved++
		if pc.ticksObserved >= uint64(s.window) {
			switch judge() {
			case Agreed:
				s.tally.Agreed++
			case PrimaryBetter:
				s.tally.PrimaryBetter++
			case ShadowBetter:
				s.tally.ShadowBetter++
			}
			pc.scored = true
			continue
		}
		remaining = append(remaining, pc)
	}
	s.pending = remaining
}

// Tally returns a copy of the current (agreed, primary-better,
// shadow-better) counts.
func (s *ShadowMode) Tally() ShadowTally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally
}

// PendingCount returns the number of shadow decisions still awaiting their
// observation window.
func (s *ShadowMode) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Reset clears the tally and any pending comparisons, leaving the on/off
// state untouched.
func (s *ShadowMode) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tally = ShadowTally{}
	s.pending = nil
}
