// Package autonomy implements the autonomy control loop: a state machine
// gated on decision confidence, a missed-tick watchdog, and the
// intervention/decision audit trail surfaced through the shell and the
// host supervisor's HTTP control plane, per section 4.5.
//
// Grounded on spec.md section 4.5 and section 6.1 directly (no prior art
// for the state machine exists in the teacher or the retrieval pack —
// the teacher contributes the mutex/counter idiom, the decision and
// contract-struct shapes are grounded on
// original_source/crates/daemon/src/api/autonomy_handlers.rs), with the
// intervention tally grounded on
// original_source/crates/kernel/src/autonomy_metrics.rs.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package autonomy

import "github.com/sis-kernel/sisk/bus"

// Context is the input to a Decider's Decide call: a snapshot of recent
// bus traffic plus the control loop's current parameters, per section 6.1.
type Context struct {
	Messages          []bus.Message
	Mode              Mode
	ConfidenceThreshold float64
	IntervalMS        uint64
}

// Directive is one opaque action a Decision may request; the core never
// interprets its contents beyond whether the slice is empty.
type Directive struct {
	Name string
	Args map[string]string
}

// AttentionWeight explains how much one input feature contributed to a
// Decision, per original_source's AttentionWeight.
type AttentionWeight struct {
	Feature string
	Weight  float64
	Value   string
}

// Decision is the opaque output of the external decision function; only
// Confidence and whether Action is empty affect control-loop state.
type Decision struct {
	Action    []Directive
	Confidence float64
	Reasoning string
	Attention []AttentionWeight
}

// Decider is the external collaborator interface section 6.1 treats as
// opaque — the core only ever calls Decide and inspects the Confidence
// and Action fields of what comes back.
type Decider interface {
	Decide(ctx Context) Decision
}

// DeciderFunc adapts a plain function to a Decider.
type DeciderFunc func(ctx Context) Decision

func (f DeciderFunc) Decide(ctx Context) Decision { return f(ctx) }
