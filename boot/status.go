package boot

import "sync"

// Status tracks which boot Markers have been observed so far. MarkSeen is
// idempotent and monotonic — once a Marker is set it can never be unset —
// per section 8's boot-marker monotonicity invariant.
type Status struct {
	mu   sync.Mutex
	seen map[Marker]bool
}

// NewStatus returns a Status with nothing yet observed.
func NewStatus() *Status {
	return &Status{seen: make(map[Marker]bool)}
}

// MarkSeen records that m has been observed. Calling it again for the same
// Marker has no additional effect.
func (s *Status) MarkSeen(m Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[m] = true
}

// Seen reports whether m has been observed.
func (s *Status) Seen(m Marker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[m]
}

// ShellActive reports whether the boot sequence has reached ShellReady.
func (s *Status) ShellActive() bool {
	return s.Seen(ShellReady)
}

// Complete reports whether every Marker in Sequence has been observed.
func (s *Status) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range Sequence() {
		if !s.seen[m] {
			return false
		}
	}
	return true
}

// Count reports how many distinct Markers have been observed so far.
func (s *Status) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
