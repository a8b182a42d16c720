package autonomy

import "sync/atomic"

// InterventionMetrics tallies the categorical interventions the autonomy
// loop has applied, plus an average latency, grounded on
// original_source/crates/kernel/src/autonomy_metrics.rs's
// AutonomyMetricsState (translated from individual AtomicU32/AtomicU64
// fields to a struct of atomic counters, matching the teacher's own
// preference for atomics over mutexes on hot per-field counters).
type InterventionMetrics struct {
	proactiveCompactions   atomic.Uint32
	oomPreventions         atomic.Uint32
	memoryPredictions      atomic.Uint32
	deadlineAdjustments    atomic.Uint32
	priorityBoosts         atomic.Uint32
	workloadRebalancing    atomic.Uint32
	policyUpdates          atomic.Uint32
	explorationActions     atomic.Uint32
	exploitationActions    atomic.Uint32
	totalInterventions     atomic.Uint32
	interventionSuccesses  atomic.Uint32

	latencySumNS   atomic.Uint64
	latencyCount   atomic.Uint32
}

// InterventionSnapshot is an immutable copy of InterventionMetrics for
// reporting.
type InterventionSnapshot struct {
	ProactiveCompactions  uint32
	OOMPreventions        uint32
	MemoryPredictions     uint32
	DeadlineAdjustments   uint32
	PriorityBoosts        uint32
	WorkloadRebalancing   uint32
	PolicyUpdates         uint32
	ExplorationActions    uint32
	ExploitationActions   uint32
	TotalInterventions    uint32
	InterventionSuccesses uint32
	AvgLatencyNS          uint64
}

func (m *InterventionMetrics) RecordProactiveCompaction() {
	m.proactiveCompactions.Add(1)
	m.totalInterventions.Add(1)
}

func (m *InterventionMetrics) RecordOOMPrevention() {
	m.oomPreventions.Add(1)
	m.totalInterventions.Add(1)
}

func (m *InterventionMetrics) RecordMemoryPrediction() {
	m.memoryPredictions.Add(1)
	m.totalInterventions.Add(1)
}

func (m *InterventionMetrics) RecordDeadlineAdjustment() {
	m.deadlineAdjustments.Add(1)
	m.totalInterventions.Add(1)
}

func (m *InterventionMetrics) RecordPriorityBoost() {
	m.priorityBoosts.Add(1)
	m.totalInterventions.Add(1)
}

func (m *InterventionMetrics) RecordWorkloadRebalancing() {
	m.workloadRebalancing.Add(1)
	m.totalInterventions.Add(1)
}

func (m *InterventionMetrics) RecordPolicyUpdate() {
	m.policyUpdates.Add(1)
	m.totalInterventions.Add(1)
}

func (m *InterventionMetrics) RecordExploration() {
	m.explorationActions.Add(1)
	m.totalInterventions.Add(1)
}

func (m *InterventionMetrics) RecordExploitation() {
	m.exploitationActions.Add(1)
	m.totalInterventions.Add(1)
}

func (m *InterventionMetrics) RecordSuccess() {
	m.interventionSuccesses.Add(1)
}

func (m *InterventionMetrics) RecordLatency(ns uint64) {
	m.latencySumNS.Add(ns)
	m.latencyCount.Add(1)
}

// AvgLatencyNS returns the running mean of recorded intervention
// latencies, or 0 if none have been recorded.
func (m *InterventionMetrics) AvgLatencyNS() uint64 {
	count := m.latencyCount.Load()
	if count == 0 {
		return 0
	}
	return m.latencySumNS.Load() / uint64(count)
}

// Snapshot takes an immutable copy of the current counters.
func (m *InterventionMetrics) Snapshot() InterventionSnapshot {
	return InterventionSnapshot{
		ProactiveCompactions:  m.proactiveCompactions.Load(),
		OOMPreventions:        m.oomPreventions.Load(),
		MemoryPredictions:     m.memoryPredictions.Load(),
		DeadlineAdjustments:   m.deadlineAdjustments.Load(),
		PriorityBoosts:        m.priorityBoosts.Load(),
		WorkloadRebalancing:   m.workloadRebalancing.Load(),
		PolicyUpdates:         m.policyUpdates.Load(),
		ExplorationActions:    m.explorationActions.Load(),
		ExploitationActions:   m.exploitationActions.Load(),
		TotalInterventions:    m.totalInterventions.Load(),
		InterventionSuccesses: m.interventionSuccesses.Load(),
		AvgLatencyNS:          m.AvgLatencyNS(),
	}
}

// SuccessRatePct mirrors the original's success_rate_pct: percentage of
// interventions recorded successful, 0 if none have run yet.
func (m *InterventionMetrics) SuccessRatePct() uint8 {
	total := m.totalInterventions.Load()
	if total == 0 {
		return 0
	}
	pct := (uint64(m.interventionSuccesses.Load()) * 100) / uint64(total)
	if pct > 100 {
		pct = 100
	}
	return uint8(pct)
}

// Reset zeroes every counter, for test isolation and the `autoctl reset`
// shell command.
func (m *InterventionMetrics) Reset() {
	m.proactiveCompactions.Store(0)
	m.oomPreventions.Store(0)
	m.memoryPredictions.Store(0)
	m.deadlineAdjustments.Store(0)
	m.priorityBoosts.Store(0)
	m.workloadRebalancing.Store(0)
	m.policyUpdates.Store(0)
	m.explorationActions.Store(0)
	m.exploitationActions.Store(0)
	m.totalInterventions.Store(0)
	m.interventionSuccesses.Store(0)
	m.latencySumNS.Store(0)
	m.latencyCount.Store(0)
}
