// Package boot defines the kernel's boot-marker sequence and the
// monotonic status set the host supervisor tracks as it observes them,
// per sections 4.12 and 6.3. Grounded on
// original_source/apps/daemon/src/parser.rs's BootMarker enum, shared here
// between the kernel's marker-emission side and the supervisor's
// marker-parsing side so the two cannot drift out of sync.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package boot

import "strings"

// Marker is one boot-sequence milestone, matching
// original_source's BootMarker variants plus ShellReady for the final
// `sis>` prompt line.
type Marker int

const (
	KernelEntered Marker = iota
	StackOK
	MMUConfigured
	MMUEnabled
	UARTReady
	GICInitialized
	VectorsInstalled
	LaunchingShell
	ShellReady
)

// markerDefs pairs each Marker with the exact substring the kernel emits
// and a human-readable description, in emission order (section 6.3).
var markerDefs = []struct {
	marker      Marker
	substring   string
	description string
}{
	{KernelEntered, "KERNEL(U)", "Kernel entry point reached"},
	{StackOK, "STACK OK", "Stack initialized"},
	{MMUConfigured, "MMU: SCTLR", "MMU control register configured"},
	{MMUEnabled, "MMU ON", "Memory management unit enabled"},
	{UARTReady, "UART: READY", "UART driver initialized"},
	{GICInitialized, "GIC: INIT", "Generic interrupt controller initialized"},
	{VectorsInstalled, "VECTORS OK", "Exception vectors installed"},
	{LaunchingShell, "LAUNCHING SHELL", "Shell launching"},
	{ShellReady, "sis>", "Shell prompt ready"},
}

// Sequence returns every Marker in the fixed emission order section 6.3
// specifies.
func Sequence() []Marker {
	out := make([]Marker, len(markerDefs))
	for i, d := range markerDefs {
		out[i] = d.marker
	}
	return out
}

// Description returns m's human-readable description.
func (m Marker) Description() string {
	for _, d := range markerDefs {
		if d.marker == m {
			return d.description
		}
	}
	return "unknown marker"
}

// Substring returns the exact text the kernel emits for m.
func (m Marker) Substring() string {
	for _, d := range markerDefs {
		if d.marker == m {
			return d.substring
		}
	}
	return ""
}

// FromLine returns the Marker whose substring appears in line, and
// whether one matched. ShellReady requires an exact "sis>" line (not just
// a substring) since "sis>" may otherwise appear inside unrelated shell
// output.
func FromLine(line string) (Marker, bool) {
	if line == "sis>" {
		return ShellReady, true
	}
	for _, d := range markerDefs {
		if d.marker == ShellReady {
			continue
		}
		if strings.Contains(line, d.substring) {
			return d.marker, true
		}
	}
	return 0, false
}
