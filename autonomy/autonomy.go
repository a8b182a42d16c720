package autonomy

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/blake2s"

	"github.com/sis-kernel/sisk/bus"
)

// Mode is the autonomy control loop's state, per section 4.5.
type Mode int

const (
	Off Mode = iota
	Active
	SafeMode
	LearningFrozen
)

// String renders the mode the way AutonomyStatus.mode serializes it over
// the shell/HTTP contract (section 6.4).
func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case Active:
		return "active"
	case SafeMode:
		return "safe_mode"
	case LearningFrozen:
		return "learning_frozen"
	default:
		return "unknown"
	}
}

const (
	DefaultInterval      = 500 * time.Millisecond
	MinInterval          = 50 * time.Millisecond
	MaxInterval          = 60 * time.Second
	DefaultConfThreshold = 0.7

	// watchdogSafeModeMisses is the number of consecutive missed ticks
	// that transitions the loop into SafeMode.
	watchdogSafeModeMisses = 3
)

// Status is the stable AutonomyStatus contract of section 6.4.
type Status struct {
	Enabled        bool
	Mode           string
	IntervalMS     uint64
	ConfThreshold  float64
	TotalDecisions uint64
	Accepted       uint64
	Deferred       uint64
	WatchdogResets uint64
}

// Controller is the autonomy control loop: a gated state machine that, in
// Active mode, periodically asks a Decider for a Decision and applies it
// only if its confidence clears the configured threshold.
type Controller struct {
	mu sync.Mutex

	mode          Mode
	interval      time.Duration
	confThreshold float64

	totalDecisions uint64
	accepted       uint64
	deferred       uint64
	watchdogResets uint64

	consecutiveMisses int
	lastTick          time.Time

	bus     *bus.Bus
	decider Decider

	metrics InterventionMetrics
	audit   []AuditEntry
}

// AuditEntry is one applied-or-deferred decision recorded for `autoctl
// audit`/`autoctl explain`, per original_source's AutonomyDecision.
type AuditEntry struct {
	ID         string
	Timestamp  time.Time
	Decision   Decision
	Executed   bool
	Reason     string
}

// New creates a Controller in the Off state with default interval and
// confidence threshold, reading from the given bus.
func New(b *bus.Bus, decider Decider) *Controller {
	return &Controller{
		mode:          Off,
		interval:      DefaultInterval,
		confThreshold: DefaultConfThreshold,
		bus:           b,
		decider:       decider,
	}
}

// On transitions Off/SafeMode/LearningFrozen into Active, per the "on"
// shell command. Idempotent if already Active.
func (c *Controller) On() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = Active
	c.consecutiveMisses = 0
	return c.statusLocked()
}

// Off transitions to the Off state, per the "off" shell command.
func (c *Controller) Off() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = Off
	return c.statusLocked()
}

// Reset zeroes every counter and returns to Off, per the "reset" shell
// command.
func (c *Controller) Reset() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = Off
	c.totalDecisions = 0
	c.accepted = 0
	c.deferred = 0
	c.watchdogResets = 0
	c.consecutiveMisses = 0
	c.audit = nil
	c.metrics.Reset()

	return c.statusLocked()
}

// SetInterval sets the control task's tick period, clamped to
// [MinInterval, MaxInterval], per the "interval" shell command.
func (c *Controller) SetInterval(d time.Duration) (Status, error) {
	if d < MinInterval || d > MaxInterval {
		return Status{}, fmt.Errorf("autonomy: interval %s out of range [%s, %s]", d, MinInterval, MaxInterval)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.interval = d
	return c.statusLocked(), nil
}

// SetConfThreshold sets the confidence gate, per the "conf-threshold"
// shell command. Must lie in [0, 1].
func (c *Controller) SetConfThreshold(t float64) (Status, error) {
	if t < 0 || t > 1 {
		return Status{}, fmt.Errorf("autonomy: confidence threshold %f out of range [0, 1]", t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.confThreshold = t
	return c.statusLocked(), nil
}

// Status returns the current AutonomyStatus snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	return Status{
		Enabled:        c.mode != Off,
		Mode:           c.mode.String(),
		IntervalMS:     uint64(c.interval / time.Millisecond),
		ConfThreshold:  c.confThreshold,
		TotalDecisions: c.totalDecisions,
		Accepted:       c.accepted,
		Deferred:       c.deferred,
		WatchdogResets: c.watchdogResets,
	}
}

// Tick runs one control-loop iteration: if the mode is Active, it collects
// recent bus messages, queries the Decider, and applies or defers the
// resulting Decision based on the confidence gate. Callers in SafeMode or
// LearningFrozen or Off skip decision-making but Tick still resets the
// watchdog's missed-tick count, matching a healthy scheduler invocation.
func (c *Controller) Tick(since time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastTick = time.Now()
	c.consecutiveMisses = 0

	if c.mode != Active {
		return
	}

	messages := c.bus.GetSince(uint64(since.UnixMicro()))

	ctx := Context{
		Messages:            messages,
		Mode:                c.mode,
		ConfidenceThreshold: c.confThreshold,
		IntervalMS:          uint64(c.interval / time.Millisecond),
	}

	start := time.Now()
	decision := c.decider.Decide(ctx)
	latency := time.Since(start)

	c.totalDecisions++

	entry := AuditEntry{
		ID:        decisionID(c.totalDecisions, decision.Reasoning),
		Timestamp: time.Now(),
		Decision:  decision,
	}

	if decision.Confidence >= c.confThreshold && len(decision.Action) > 0 {
		c.accepted++
		entry.Executed = true
		c.metrics.RecordSuccess()
		c.metrics.RecordLatency(uint64(latency.Nanoseconds()))
	} else {
		c.deferred++
		entry.Executed = false
		if decision.Confidence < c.confThreshold {
			entry.Reason = "confidence below threshold"
		} else {
			entry.Reason = "decision carried no directives"
		}
	}

	c.audit = append(c.audit, entry)
}

// MissTick records that the control task missed an expected tick
// (e.g. it was starved or blocked past its interval). Three consecutive
// misses transition the loop into SafeMode, where no new decisions are
// accepted but status endpoints remain functional.
func (c *Controller) MissTick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != Active {
		return
	}

	c.consecutiveMisses++

	if c.consecutiveMisses >= 2 {
		c.watchdogResets++
	}

	if c.consecutiveMisses >= watchdogSafeModeMisses {
		c.mode = SafeMode
		c.consecutiveMisses = 0
	}
}

// Audit returns up to `last` most recent audit entries, oldest first
// within that window, per `autoctl audit --last <N>`.
func (c *Controller) Audit(last int) []AuditEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if last <= 0 || last > len(c.audit) {
		last = len(c.audit)
	}

	start := len(c.audit) - last
	out := make([]AuditEntry, last)
	copy(out, c.audit[start:])
	return out
}

// Explain finds the audit entry with the given ID, for `autoctl explain`.
func (c *Controller) Explain(id string) (AuditEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.audit) - 1; i >= 0; i-- {
		if c.audit[i].ID == id {
			return c.audit[i], true
		}
	}
	return AuditEntry{}, false
}

// Metrics returns a snapshot of the intervention tally.
func (c *Controller) Metrics() InterventionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics.Snapshot()
}

// decisionID derives a stable, content-addressed AutonomyDecision.id from
// the decision sequence number and its reasoning text, so the same
// decision replayed from a persisted journal (section 6.5) hashes
// identically across runs.
func decisionID(seq uint64, reasoning string) string {
	h, _ := blake2s.New256(nil)
	fmt.Fprintf(h, "%d:%s", seq, reasoning)
	sum := h.Sum(nil)
	return "dec-" + hex.EncodeToString(sum[:8])
}
