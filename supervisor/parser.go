// Package supervisor implements the host-side process supervisor of
// section 4.9: it runs the kernel under QEMU over a PTY, demuxes UART
// output into typed events, drives shell RPC, and exposes an HTTP/JSON
// control plane. Grounded on original_source/apps/daemon/src/parser.rs for
// the line parser and event set, tinyrange-cc's charmbracelet/x/ansi
// dependency for escape stripping, and creack/pty + gorilla/mux for the
// process/transport and control-plane layers the teacher (a bare-metal-only
// framework) has no equivalent of.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package supervisor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/sis-kernel/sisk/boot"
)

// EventKind distinguishes the variants of ParsedEvent, mirroring parser.rs's
// ParsedEvent enum.
type EventKind int

const (
	EventMetric EventKind = iota
	EventMarker
	EventBanner
	EventShell
	EventPrompt
	EventTestResult
)

// TestOutcome is the PASS/FAIL verdict carried by an EventTestResult event.
type TestOutcome int

const (
	TestPass TestOutcome = iota
	TestFail
)

// String renders o as the shell's own [PASS]/[FAIL] spelling.
func (o TestOutcome) String() string {
	if o == TestPass {
		return "PASS"
	}
	return "FAIL"
}

// ParsedEvent is one classified line of kernel UART output. Only the fields
// relevant to Kind are populated; the rest are zero.
type ParsedEvent struct {
	Kind      EventKind
	Timestamp time.Time

	// EventMetric
	MetricName  string
	MetricValue float64

	// EventMarker
	Marker boot.Marker

	// EventBanner, EventShell
	Text string

	// EventTestResult
	TestName string
	Result   TestOutcome
}

var (
	metricPattern     = regexp.MustCompile(`METRIC\s+([a-zA-Z_][a-zA-Z0-9_]*)=([0-9.eE+-]+)`)
	promptPattern     = regexp.MustCompile(`^\s*sis>\s*$`)
	testResultPattern = regexp.MustCompile(`\[(PASS|FAIL)\]\s+(.+)`)
)

// stripANSI removes terminal escape sequences a kernel or shell line may
// carry, per section 6.2. ansi.Strip is the same routine tinyrange-cc uses
// to clean PTY output before line-oriented processing.
func stripANSI(s string) string {
	return ansi.Strip(s)
}

// LineParser is the deterministic, near-stateless demuxer of section 4.9:
// its output depends only on the input line and the two booleans tracked
// here (shellActive, sawLaunchingShell), per section 8's parser-determinism
// invariant.
type LineParser struct {
	shellActive       bool
	sawLaunchingShell bool
}

// NewLineParser returns a LineParser in its initial state: shell inactive,
// LAUNCHING SHELL not yet observed.
func NewLineParser() *LineParser {
	return &LineParser{}
}

// IsShellReady reports whether the shell prompt has been observed (directly,
// or via a ShellReady boot marker).
func (p *LineParser) IsShellReady() bool {
	return p.shellActive
}

// Reset clears shell-active and launching-shell state, for use when the
// supervised kernel restarts.
func (p *LineParser) Reset() {
	p.shellActive = false
	p.sawLaunchingShell = false
}

// ParseLine classifies one line of kernel output into a ParsedEvent,
// following the five-step precedence of section 4.9 exactly: prompt (when
// preconditioned), boot marker, test result, metric, then shell-or-banner.
// A blank line (after trimming trailing CR/LF and surrounding whitespace)
// yields no event.
func (p *LineParser) ParseLine(line string) (ParsedEvent, bool) {
	line = strings.TrimRight(line, "\r\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return ParsedEvent{}, false
	}

	now := time.Now()
	clean := stripANSI(line)

	if promptPattern.MatchString(clean) {
		if p.sawLaunchingShell {
			p.shellActive = true
			return ParsedEvent{Kind: EventPrompt, Timestamp: now}, true
		}
	}

	if marker, ok := boot.FromLine(clean); ok {
		if marker == boot.LaunchingShell {
			p.sawLaunchingShell = true
		}
		if marker == boot.ShellReady {
			p.shellActive = true
		}
		return ParsedEvent{Kind: EventMarker, Marker: marker, Timestamp: now}, true
	}

	if m := testResultPattern.FindStringSubmatch(line); m != nil {
		var result TestOutcome
		switch m[1] {
		case "PASS":
			result = TestPass
		case "FAIL":
			result = TestFail
		default:
			return ParsedEvent{}, false
		}
		return ParsedEvent{
			Kind:      EventTestResult,
			TestName:  m[2],
			Result:    result,
			Timestamp: now,
		}, true
	}

	if m := metricPattern.FindStringSubmatch(line); m != nil {
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return ParsedEvent{}, false
		}
		return ParsedEvent{
			Kind:        EventMetric,
			MetricName:  m[1],
			MetricValue: value,
			Timestamp:   now,
		}, true
	}

	if p.shellActive {
		return ParsedEvent{Kind: EventShell, Text: line, Timestamp: now}, true
	}
	return ParsedEvent{Kind: EventBanner, Text: line, Timestamp: now}, true
}

// ParseMetrics extracts every `METRIC name=value` occurrence on line,
// supporting the metric-burst case where more than one appears (section 8's
// scenario 2). Unlike ParseLine, this never mutates parser state.
func (p *LineParser) ParseMetrics(line string) []Metric {
	matches := metricPattern.FindAllStringSubmatch(line, -1)
	out := make([]Metric, 0, len(matches))
	for _, m := range matches {
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		out = append(out, Metric{Name: m[1], Value: value})
	}
	return out
}

// Metric is one (name, value) pair extracted by ParseMetrics.
type Metric struct {
	Name  string
	Value float64
}
