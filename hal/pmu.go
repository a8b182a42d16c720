package hal

// PMUCounters is a snapshot of the seven hardware performance counters the
// default program tracks, grounded on original_source's pmu.rs default set:
// cycles plus instructions retired, L1D/L1I refills, branch mispredicts,
// L2D accesses and exceptions.
type PMUCounters struct {
	Cycles             uint64
	InstructionsRet    uint64
	L1DRefills         uint64
	L1IRefills         uint64
	BranchMispredicts  uint64
	L2DAccesses        uint64
	Exceptions         uint64
}

// PMU abstracts the architecture performance monitoring unit.
type PMU interface {
	// Init zeroes and enables the cycle counter and the six event counters
	// with the default program.
	Init() error

	// Snapshot reads all seven counters atomically with respect to
	// overflow; architectures lacking 64-bit hardware counters widen via a
	// software high-word counter incremented on the overflow interrupt.
	Snapshot() PMUCounters

	// ReadEventCounter reads one of the six event counters by index
	// (0..MaxCounterIndex); idx outside that range is a programming error
	// the implementation must reject rather than silently wrap.
	ReadEventCounter(idx int) (uint64, error)
}

// MaxCounterIndex is the highest valid event counter index (section 8
// boundary case: index 5 accepts, 6 rejects — one cycle counter plus six
// event counters, indices 0..5).
const MaxCounterIndex = 5

// ValidCounterIndex reports whether idx addresses one of the six event
// counters.
func ValidCounterIndex(idx int) bool {
	return idx >= 0 && idx <= MaxCounterIndex
}
