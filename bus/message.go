// Package bus implements the process-wide agent message bus: a
// fixed-capacity ring buffer that lets the memory, scheduling and command
// agents publish observations for the autonomy control loop and the shell
// to read back, per section 4.4.
//
// Grounded on original_source/crates/kernel/src/agent_bus.rs, translated
// from a `spin::Mutex<AgentMessageBus>` global plus a `heapless::Vec`
// return value into a `sync.Mutex`-guarded struct and plain slices, in the
// teacher's own style of small mutex-guarded singletons (e.g.
// virtio/queue/descriptor.go's access patterns).
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package bus

// Family groups the ten message Kinds into the three agent domains the
// bus's per-family counters track.
type Family int

const (
	FamilyMemory Family = iota
	FamilyScheduling
	FamilyCommand
)

func (f Family) String() string {
	switch f {
	case FamilyMemory:
		return "memory"
	case FamilyScheduling:
		return "scheduling"
	case FamilyCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Kind enumerates the ten agent message variants, grouped by family.
type Kind int

const (
	MemoryPressure Kind = iota
	MemoryCompactionNeeded
	MemoryHealthy

	SchedulingLoadHigh
	SchedulingLoadLow
	SchedulingCriticalOperatorLatency

	CommandHeavyPredicted
	CommandRapidStream
	CommandLowAccuracy
	CommandQuiet
)

func (k Kind) String() string {
	switch k {
	case MemoryPressure:
		return "MemoryPressure"
	case MemoryCompactionNeeded:
		return "MemoryCompactionNeeded"
	case MemoryHealthy:
		return "MemoryHealthy"
	case SchedulingLoadHigh:
		return "SchedulingLoadHigh"
	case SchedulingLoadLow:
		return "SchedulingLoadLow"
	case SchedulingCriticalOperatorLatency:
		return "SchedulingCriticalLatency"
	case CommandHeavyPredicted:
		return "CommandHeavyPredicted"
	case CommandRapidStream:
		return "CommandRapidStream"
	case CommandLowAccuracy:
		return "CommandLowAccuracy"
	case CommandQuiet:
		return "CommandQuiet"
	default:
		return "Unknown"
	}
}

// Family reports which of the three agent domains a Kind belongs to.
func (k Kind) Family() Family {
	switch k {
	case MemoryPressure, MemoryCompactionNeeded, MemoryHealthy:
		return FamilyMemory
	case SchedulingLoadHigh, SchedulingLoadLow, SchedulingCriticalOperatorLatency:
		return FamilyScheduling
	default:
		return FamilyCommand
	}
}

// HasConfidence reports whether this Kind carries a confidence score, per
// the original's confidence() match (messages that are purely informative
// — Healthy, LoadLow, LowAccuracy, Quiet — never do).
func (k Kind) HasConfidence() bool {
	switch k {
	case MemoryPressure, MemoryCompactionNeeded, SchedulingLoadHigh,
		SchedulingCriticalOperatorLatency, CommandHeavyPredicted, CommandRapidStream:
		return true
	default:
		return false
	}
}

// Message is a tagged, fixed-shape agent message. Rather than mirror the
// original's per-variant Rust enum fields one for one, every field a
// variant might use is carried flat (plain-old-data, as section 4.4
// requires) and Kind selects which are meaningful; see the per-field
// comments below for which Kind populates which.
type Message struct {
	Kind        Kind
	TimestampUS uint64

	// Confidence is in milli-units (0..1000); valid iff Kind.HasConfidence().
	Confidence uint16

	// Level/Fragmentation: MemoryPressure.
	Level         uint8
	Fragmentation uint8

	// Urgency: MemoryCompactionNeeded.
	Urgency uint8

	// HeadroomPercent: MemoryHealthy.
	HeadroomPercent uint8

	// DeadlineMisses/AvgLatencyUS: SchedulingLoadHigh.
	DeadlineMisses uint8
	AvgLatencyUS   uint32

	// IdlePercent: SchedulingLoadLow.
	IdlePercent uint8

	// OperatorID/LatencyUS: SchedulingCriticalOperatorLatency.
	OperatorID uint32
	LatencyUS  uint32

	// CommandHash: CommandHeavyPredicted.
	CommandHash uint32

	// CommandsPerSec: CommandRapidStream.
	CommandsPerSec uint16

	// RecentAccuracy: CommandLowAccuracy (0-100%).
	RecentAccuracy uint8

	// IdleSeconds: CommandQuiet.
	IdleSeconds uint16
}
