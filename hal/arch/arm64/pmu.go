package arm64

import (
	"fmt"
	"sync"

	"github.com/sis-kernel/sisk/hal"
)

// Event selects which ARM PMU event a programmable counter tracks, matching
// original_source/crates/kernel/src/pmu.rs's PmuEvent discriminants.
type Event uint64

const (
	EventInstRetired   Event = 0x08
	EventL1DCache      Event = 0x03 // L1 data cache refill
	EventBranchMispred Event = 0x10
	EventL2DCache      Event = 0x16 // L2 data cache access
	EventL1ICache      Event = 0x01 // L1 instruction cache refill
	EventExcTaken      Event = 0x09
)

// defaultProgram assigns each of the six event counters, matching
// pmu.rs's setup_default_events order exactly (section 8's PMU default
// program).
var defaultProgram = [hal.MaxCounterIndex + 1]Event{
	0: EventInstRetired,
	1: EventL1DCache,
	2: EventBranchMispred,
	3: EventL2DCache,
	4: EventL1ICache,
	5: EventExcTaken,
}

// allCountersMask enables event counters 0-5 plus the cycle counter (bit
// 31), matching pmu.rs's enable_counters(mask) call in setup_default_events.
const allCountersMask = 0b111111 | (1 << 31)

// PMU implements hal.PMU over the ARM PMU's system registers
// (PMCR_EL0/PMSELR_EL0/PMXEVTYPER_EL0/PMXEVCNTR_EL0/PMCCNTR_EL0/
// PMCNTENSET_EL0). Every one of those is accessed with MRS/MSR in
// original_source's pmu.rs (`core::arch::asm!`) — there is no MMIO
// equivalent and no backing .s file in this tree, so each register
// operation is an injectable seam rather than a direct register access.
type PMU struct {
	mu          sync.Mutex
	initialized bool

	// WritePMCR programs PMCR_EL0 (enable/reset-event/reset-cycle bits).
	WritePMCR func(val uint64)
	// SelectCounter writes PMSELR_EL0 to select counter idx for the
	// following PMXEVTYPER_EL0/PMXEVCNTR_EL0 access.
	SelectCounter func(idx uint64)
	// WriteEventType writes PMXEVTYPER_EL0 for the counter selected by the
	// most recent SelectCounter call.
	WriteEventType func(ev uint64)
	// ZeroEventCounter zeroes PMXEVCNTR_EL0 for the selected counter.
	ZeroEventCounter func()
	// ReadEventCounterReg reads PMXEVCNTR_EL0 for the selected counter.
	ReadEventCounterReg func() uint64
	// ReadCycleCounter reads PMCCNTR_EL0.
	ReadCycleCounter func() uint64
	// EnableCounters writes PMCNTENSET_EL0 with the given bitmask.
	EnableCounters func(mask uint64)
}

// errSeamNotWired is returned when a required register seam has not been wired up.
var errSeamNotWired = fmt.Errorf("arm64: PMU register seam not wired up")

// Init resets and enables the cycle counter and programs the six event
// counters with the default program, mirroring pmu.rs's init/
// setup_default_events.
func (p *PMU) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.WritePMCR == nil || p.SelectCounter == nil || p.WriteEventType == nil ||
		p.ZeroEventCounter == nil || p.EnableCounters == nil {
		return errSeamNotWired
	}

	const pmcrReset = (1 << 0) | (1 << 1) | (1 << 2) // E | P | C
	p.WritePMCR(pmcrReset)

	for idx, ev := range defaultProgram {
		p.SelectCounter(uint64(idx))
		p.WriteEventType(uint64(ev))
		p.ZeroEventCounter()
	}

	p.EnableCounters(allCountersMask)
	p.initialized = true
	return nil
}

// Snapshot reads the cycle counter and all six event counters in the fixed
// order pmu.rs's read_snapshot uses.
func (p *PMU) Snapshot() hal.PMUCounters {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.ReadCycleCounter == nil {
		return hal.PMUCounters{}
	}

	var c hal.PMUCounters
	c.Cycles = p.ReadCycleCounter()
	c.InstructionsRet = p.readCounterLocked(0)
	c.L1DRefills = p.readCounterLocked(1)
	c.BranchMispredicts = p.readCounterLocked(2)
	c.L2DAccesses = p.readCounterLocked(3)
	c.L1IRefills = p.readCounterLocked(4)
	c.Exceptions = p.readCounterLocked(5)
	return c
}

// ReadEventCounter reads a single event counter by index, rejecting any
// index outside 0..hal.MaxCounterIndex.
func (p *PMU) ReadEventCounter(idx int) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !hal.ValidCounterIndex(idx) {
		return 0, fmt.Errorf("%w: counter index %d exceeds %d", hal.ErrInvalidAddress, idx, hal.MaxCounterIndex)
	}
	if !p.initialized {
		return 0, fmt.Errorf("arm64: PMU not initialized")
	}
	return p.readCounterLocked(idx), nil
}

func (p *PMU) readCounterLocked(idx int) uint64 {
	if p.SelectCounter == nil || p.ReadEventCounterReg == nil {
		return 0
	}
	p.SelectCounter(uint64(idx))
	return p.ReadEventCounterReg()
}

var _ hal.PMU = (*PMU)(nil)
