// Package selftest implements the driver self-test harness of section
// 4.11: a per-driver probe (gpio, mailbox, pmu) plus an aggregate run,
// surfaced through the shell's `selftest` command and through [PASS]/[FAIL]
// lines the host supervisor's line parser recognizes.
//
// Grounded on original_source/crates/kernel/src/shell/selftest_helpers.rs
// for the probe set and pass/fail/skip accounting, and on driver/gpio.go +
// driver/mailbox.go + hal.PMU for the concrete checks each probe runs.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package selftest

import (
	"errors"

	"github.com/sis-kernel/sisk/driver"
	"github.com/sis-kernel/sisk/hal"
)

// Status is one test case's outcome.
type Status int

const (
	Pass Status = iota
	Fail
	Skip
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// CaseResult is one named test case's result, emitted on UART as
// `[PASS] <name>` / `[FAIL] <name>`, matching the host parser's
// TEST_RESULT_PATTERN.
type CaseResult struct {
	Name   string
	Status Status
	Reason string
}

// SuiteResult aggregates every CaseResult for one driver's probe.
type SuiteResult struct {
	Driver  string
	Cases   []CaseResult
	Passed  int
	Failed  int
	Skipped int
}

func (s *SuiteResult) record(name string, err error) {
	c := CaseResult{Name: name}
	if err == nil {
		c.Status = Pass
		s.Passed++
	} else {
		c.Status = Fail
		c.Reason = err.Error()
		s.Failed++
	}
	s.Cases = append(s.Cases, c)
}

// Harness runs self-test probes against the concrete driver instances it is
// constructed with.
type Harness struct {
	gpio    *driver.GPIOController
	mailbox *driver.Mailbox
	pmu     hal.PMU
}

// NewHarness creates a Harness over the given driver instances. Any may be
// nil, in which case that probe's SuiteResult is all-Skip.
func NewHarness(gpio *driver.GPIOController, mailbox *driver.Mailbox, pmu hal.PMU) *Harness {
	return &Harness{gpio: gpio, mailbox: mailbox, pmu: pmu}
}

var errNoDriver = errors.New("driver not present")

// RunGPIO runs the GPIO probe: initialization check, valid pin operations
// (0, 27, 53), invalid pin rejection (54, 55, 100), and the pin-53/54
// boundary, per selftest_helpers.rs's selftest_gpio_impl.
func (h *Harness) RunGPIO() SuiteResult {
	res := SuiteResult{Driver: "gpio"}

	if h.gpio == nil {
		res.Cases = append(res.Cases, CaseResult{Name: "initialization check", Status: Skip, Reason: errNoDriver.Error()})
		res.Skipped++
		return res
	}

	if !h.gpio.IsInitialized() {
		res.record("initialization check", errors.New("not initialized"))
	} else {
		res.record("initialization check", nil)
	}

	res.record("valid pin operations", validGPIOOperations(h.gpio))
	res.record("invalid pin rejection", invalidGPIORejection(h.gpio))
	res.record("boundary conditions", gpioBoundary(h.gpio))

	return res
}

func validGPIOOperations(g *driver.GPIOController) error {
	for _, pin := range []int{0, 27, driver.MaxGPIOPin} {
		if err := g.SetPin(pin); err != nil {
			return err
		}
		if err := g.ClearPin(pin); err != nil {
			return err
		}
		if _, err := g.ReadPin(pin); err != nil {
			return err
		}
	}
	return nil
}

func invalidGPIORejection(g *driver.GPIOController) error {
	for _, pin := range []int{54, 55, 100} {
		if err := g.SetPin(pin); err == nil {
			return errors.New("invalid pin accepted")
		}
	}
	return nil
}

func gpioBoundary(g *driver.GPIOController) error {
	if err := g.SetPin(driver.MaxGPIOPin); err != nil {
		return err
	}
	if err := g.SetPin(driver.MaxGPIOPin + 1); err == nil {
		return errors.New("pin beyond boundary accepted")
	}
	return nil
}

// RunMailbox runs the mailbox probe: initialization check, a single
// firmware query, and a multi-query sequence, per
// selftest_helpers.rs's selftest_mailbox_impl.
func (h *Harness) RunMailbox() SuiteResult {
	res := SuiteResult{Driver: "mailbox"}

	if h.mailbox == nil {
		res.Cases = append(res.Cases, CaseResult{Name: "initialization check", Status: Skip})
		res.Skipped++
		return res
	}

	if !h.mailbox.IsInitialized() {
		res.record("initialization check", errors.New("not initialized"))
	} else {
		res.record("initialization check", nil)
	}

	_, err := h.mailbox.GetBoardSerial()
	res.record("firmware query", err)

	res.record("multiple queries", multiMailboxQueries(h.mailbox))

	return res
}

func multiMailboxQueries(m *driver.Mailbox) error {
	if _, err := m.GetFirmwareRevision(); err != nil {
		return err
	}
	if _, err := m.GetBoardModel(); err != nil {
		return err
	}
	if _, err := m.GetBoardRevision(); err != nil {
		return err
	}
	return nil
}

// RunPMU runs the PMU probe: initialization check (a call to Init, since
// hal.PMU carries no explicit is_initialized),
// a snapshot read, valid counter reads (0..MaxCounterIndex), and invalid
// counter rejection, per selftest_helpers.rs's selftest_pmu_impl.
func (h *Harness) RunPMU() SuiteResult {
	res := SuiteResult{Driver: "pmu"}

	if h.pmu == nil {
		res.Cases = append(res.Cases, CaseResult{Name: "initialization check", Status: Skip})
		res.Skipped++
		return res
	}

	res.record("initialization check", h.pmu.Init())
	res.record("snapshot read", snapshotProbe(h.pmu))
	res.record("valid counter read", validCounterProbe(h.pmu))
	res.record("invalid counter rejection", invalidCounterProbe(h.pmu))

	return res
}

func snapshotProbe(p hal.PMU) error {
	p.Snapshot()
	return nil
}

func validCounterProbe(p hal.PMU) error {
	for i := 0; i <= hal.MaxCounterIndex; i++ {
		if _, err := p.ReadEventCounter(i); err != nil {
			return err
		}
	}
	return nil
}

func invalidCounterProbe(p hal.PMU) error {
	for _, idx := range []int{hal.MaxCounterIndex + 1, hal.MaxCounterIndex + 2, 100} {
		if _, err := p.ReadEventCounter(idx); err == nil {
			return errors.New("invalid counter accepted")
		}
	}
	return nil
}

// RunAll runs every probe in order (gpio, mailbox, pmu) and returns one
// SuiteResult per driver, per the `selftest all` command.
func (h *Harness) RunAll() []SuiteResult {
	return []SuiteResult{h.RunGPIO(), h.RunMailbox(), h.RunPMU()}
}

// Totals sums pass/fail/skip counts across every suite in results.
func Totals(results []SuiteResult) (passed, failed, skipped int) {
	for _, r := range results {
		passed += r.Passed
		failed += r.Failed
		skipped += r.Skipped
	}
	return
}
