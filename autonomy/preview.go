package autonomy

import (
	"fmt"
	"time"
)

// MaxPreviewCount bounds `autoctl preview --count <N>` per section 6.4.
const MaxPreviewCount = 100

// PreviewResult is one non-committing look at what the Decider would do
// right now, grounded on original_source's daemon-side PreviewResponse
// shape (directives, confidence, would_execute, warnings).
type PreviewResult struct {
	Directives   []string
	Confidence   float64
	WouldExecute bool
	Warnings     []string
}

// Preview asks the Decider for up to count decisions against the current
// bus state without advancing any counter, touching the audit trail, or
// otherwise mutating Controller state — strictly read-only, for
// `autoctl preview`.
func (c *Controller) Preview(count int) []PreviewResult {
	if count <= 0 {
		count = 1
	}
	if count > MaxPreviewCount {
		count = MaxPreviewCount
	}

	c.mu.Lock()
	ctx := Context{
		Messages:            c.bus.GetAll(),
		Mode:                c.mode,
		ConfidenceThreshold: c.confThreshold,
		IntervalMS:          uint64(c.interval / time.Millisecond),
	}
	threshold := c.confThreshold
	c.mu.Unlock()

	out := make([]PreviewResult, 0, count)
	for i := 0; i < count; i++ {
		decision := c.decider.Decide(ctx)
		out = append(out, previewFromDecision(decision, threshold))
	}
	return out
}

func previewFromDecision(d Decision, threshold float64) PreviewResult {
	pr := PreviewResult{
		Directives:   directiveNames(d.Action),
		Confidence:   d.Confidence,
		WouldExecute: d.Confidence >= threshold && len(d.Action) > 0,
	}
	if d.Confidence < threshold {
		pr.Warnings = append(pr.Warnings, fmt.Sprintf("confidence %.3f below threshold %.3f", d.Confidence, threshold))
	}
	if len(d.Action) == 0 {
		pr.Warnings = append(pr.Warnings, "decision carried no directives")
	}
	return pr
}

func directiveNames(directives []Directive) []string {
	names := make([]string, len(directives))
	for i, d := range directives {
		names[i] = d.Name
	}
	return names
}

// WhatIfOverrides is the subset of control-loop parameters `autoctl whatif`
// may speculatively override for its scenario run.
type WhatIfOverrides struct {
	ConfThreshold *float64
	IntervalMS    *uint64
}

// WhatIfResult compares a baseline preview (current parameters) against a
// scenario preview (overridden parameters) for the same decision, per
// original_source's WhatIfResponse{baseline, scenario, diff}.
type WhatIfResult struct {
	Baseline PreviewResult
	Scenario PreviewResult
	Diff     []string
}

// WhatIf runs one Decide call against the current bus state and evaluates
// it under both the current confidence threshold and overrides.ConfThreshold
// (if set), reporting how the accept/defer outcome would change. It never
// mutates Controller state.
func (c *Controller) WhatIf(overrides WhatIfOverrides) WhatIfResult {
	c.mu.Lock()
	baseIntervalMS := uint64(c.interval / time.Millisecond)
	ctx := Context{
		Messages:            c.bus.GetAll(),
		Mode:                c.mode,
		ConfidenceThreshold: c.confThreshold,
		IntervalMS:          baseIntervalMS,
	}
	baseThreshold := c.confThreshold
	c.mu.Unlock()

	scenarioThreshold := baseThreshold
	if overrides.ConfThreshold != nil {
		scenarioThreshold = *overrides.ConfThreshold
	}
	if overrides.IntervalMS != nil {
		ctx.IntervalMS = *overrides.IntervalMS
	}

	decision := c.decider.Decide(ctx)

	baseline := previewFromDecision(decision, baseThreshold)
	scenario := previewFromDecision(decision, scenarioThreshold)

	var diff []string
	if baseline.WouldExecute != scenario.WouldExecute {
		diff = append(diff, fmt.Sprintf("would_execute: %v -> %v", baseline.WouldExecute, scenario.WouldExecute))
	}
	if scenarioThreshold != baseThreshold {
		diff = append(diff, fmt.Sprintf("conf_threshold: %.3f -> %.3f", baseThreshold, scenarioThreshold))
	}
	if overrides.IntervalMS != nil {
		diff = append(diff, fmt.Sprintf("interval_ms: %d -> %d", baseIntervalMS, *overrides.IntervalMS))
	}

	return WhatIfResult{Baseline: baseline, Scenario: scenario, Diff: diff}
}
