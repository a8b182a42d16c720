// Package profiler implements the PC-sampling profiler of section 4.7: a
// fixed-capacity circular sample buffer fed from a periodic timer tick,
// with a start/stop/report lifecycle and a 4 KiB-bucketed hotspot report.
//
// Grounded on original_source/crates/kernel/src/profiling/mod.rs for the
// buffer/histogram/report shape (MAX_SAMPLES, SAMPLE_GRANULARITY,
// circular-overwrite-with-dropped-count semantics), and on teacher
// amd64/lapic's periodic local-APIC timer as the sampling trigger this
// profiler's Sample method is meant to be called from.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package profiler

import (
	"sort"
	"sync"
	"sync/atomic"
)

// MaxSamples is the circular sample buffer's fixed capacity.
const MaxSamples = 10_000

// SampleGranularity is the address alignment a report buckets samples to
// (4 KiB, function/page level).
const SampleGranularity = 4096

// TopN is the number of hotspot buckets a report returns.
const TopN = 10

// Sample is one (PC, PID, cycle count) observation.
type Sample struct {
	PC        uint64
	PID       uint32
	Timestamp uint64
}

// Hotspot is one bucketed entry in a Report, sorted by sample count
// descending.
type Hotspot struct {
	Address    uint64
	Samples    uint64
	Percentage float64
	Symbol     string
}

// Report is the result of Profiler.Report.
type Report struct {
	TotalSamples   uint64
	DroppedSamples uint64
	Hotspots       []Hotspot
}

// SymbolResolver maps a bucketed address to a human-readable name; it
// returns ("", false) for addresses outside any known range.
type SymbolResolver func(addr uint64) (string, bool)

// Profiler collects PC samples into a fixed-size circular buffer while
// enabled, and reports the busiest 4 KiB buckets on demand.
type Profiler struct {
	enabled atomic.Bool

	mu      sync.Mutex
	samples []Sample
	nextIdx int

	sampleCount    atomic.Uint64
	droppedSamples atomic.Uint64

	resolver SymbolResolver
}

// New creates a disabled Profiler. resolver may be nil, in which case
// hotspots are reported with an empty Symbol.
func New(resolver SymbolResolver) *Profiler {
	return &Profiler{resolver: resolver}
}

// Start clears all state and begins sample collection.
func (p *Profiler) Start() {
	p.mu.Lock()
	p.samples = make([]Sample, 0, MaxSamples)
	p.nextIdx = 0
	p.mu.Unlock()

	p.sampleCount.Store(0)
	p.droppedSamples.Store(0)
	p.enabled.Store(true)
}

// Stop disables collection; samples already captured remain available to
// Report.
func (p *Profiler) Stop() {
	p.enabled.Store(false)
}

// Enabled reports whether sampling is currently active.
func (p *Profiler) Enabled() bool {
	return p.enabled.Load()
}

// Sample records one (pc, pid) observation with the given cycle-counter
// timestamp, if sampling is enabled. Once the buffer reaches MaxSamples,
// further samples circularly overwrite the oldest entry and increment the
// dropped-sample counter — total_samples still counts every call, so
// total_samples == observed_samples + dropped_samples always holds, per
// section 8's profiler-completeness invariant.
func (p *Profiler) Sample(pc uint64, pid uint32, timestamp uint64) {
	if !p.enabled.Load() {
		return
	}

	s := Sample{PC: pc, PID: pid, Timestamp: timestamp}

	p.mu.Lock()
	if len(p.samples) < MaxSamples {
		p.samples = append(p.samples, s)
	} else {
		idx := p.nextIdx % MaxSamples
		p.samples[idx] = s
		p.nextIdx++
		p.droppedSamples.Add(1)
	}
	p.mu.Unlock()

	p.sampleCount.Add(1)
}

// SampleCount returns the total number of Sample calls recorded while
// enabled, including dropped ones.
func (p *Profiler) SampleCount() uint64 {
	return p.sampleCount.Load()
}

// DroppedCount returns the number of samples dropped to circular overwrite.
func (p *Profiler) DroppedCount() uint64 {
	return p.droppedSamples.Load()
}

// Report buckets every retained sample's PC to SampleGranularity, sorts
// buckets by count descending, and returns up to TopN hotspots alongside
// the total/dropped counts.
func (p *Profiler) Report() Report {
	p.mu.Lock()
	retained := make([]Sample, len(p.samples))
	copy(retained, p.samples)
	p.mu.Unlock()

	histogram := make(map[uint64]uint64)
	for _, s := range retained {
		bucket := s.PC &^ (SampleGranularity - 1)
		histogram[bucket]++
	}

	type bucketCount struct {
		addr  uint64
		count uint64
	}
	sorted := make([]bucketCount, 0, len(histogram))
	for addr, count := range histogram {
		sorted = append(sorted, bucketCount{addr, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].addr < sorted[j].addr
	})

	total := uint64(len(retained))
	n := len(sorted)
	if n > TopN {
		n = TopN
	}

	hotspots := make([]Hotspot, 0, n)
	for _, bc := range sorted[:n] {
		var pct float64
		if total > 0 {
			pct = float64(bc.count) / float64(total) * 100
		}

		h := Hotspot{Address: bc.addr, Samples: bc.count, Percentage: pct}
		if p.resolver != nil {
			if sym, ok := p.resolver(bc.addr); ok {
				h.Symbol = sym
			}
		}
		hotspots = append(hotspots, h)
	}

	return Report{
		TotalSamples:   p.sampleCount.Load(),
		DroppedSamples: p.droppedSamples.Load(),
		Hotspots:       hotspots,
	}
}
