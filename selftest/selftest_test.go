package selftest

import (
	"errors"
	"testing"

	"github.com/sis-kernel/sisk/driver"
	"github.com/sis-kernel/sisk/hal"
)

type fakePMU struct {
	initialized bool
}

func (f *fakePMU) Init() error {
	f.initialized = true
	return nil
}

func (f *fakePMU) Snapshot() hal.PMUCounters { return hal.PMUCounters{} }

func (f *fakePMU) ReadEventCounter(idx int) (uint64, error) {
	if !hal.ValidCounterIndex(idx) {
		return 0, errors.New("invalid counter index")
	}
	return uint64(idx), nil
}

func newReadyHarness() *Harness {
	gpio := driver.NewGPIOController()
	gpio.Init()
	mailbox := driver.NewMailbox()
	mailbox.Init()
	return NewHarness(gpio, mailbox, &fakePMU{})
}

func TestRunGPIOAllPass(t *testing.T) {
	h := newReadyHarness()
	res := h.RunGPIO()

	if res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("RunGPIO = %+v, want all passing", res)
	}
	if res.Passed != len(res.Cases) {
		t.Fatalf("Passed = %d, want %d (len Cases)", res.Passed, len(res.Cases))
	}
}

func TestRunGPIOSkippedWithoutDriver(t *testing.T) {
	h := NewHarness(nil, nil, nil)
	res := h.RunGPIO()

	if res.Skipped != 1 || res.Passed != 0 || res.Failed != 0 {
		t.Fatalf("RunGPIO without driver = %+v, want one skip", res)
	}
}

func TestRunGPIOFailsWithoutInit(t *testing.T) {
	gpio := driver.NewGPIOController() // not initialized
	h := NewHarness(gpio, nil, nil)
	res := h.RunGPIO()

	if res.Cases[0].Status != Fail {
		t.Fatalf("initialization check = %v, want Fail", res.Cases[0].Status)
	}
}

func TestRunMailboxAllPass(t *testing.T) {
	h := newReadyHarness()
	res := h.RunMailbox()

	if res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("RunMailbox = %+v, want all passing", res)
	}
}

func TestRunPMUValidAndInvalidCounters(t *testing.T) {
	h := newReadyHarness()
	res := h.RunPMU()

	if res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("RunPMU = %+v, want all passing", res)
	}

	names := map[string]bool{}
	for _, c := range res.Cases {
		names[c.Name] = true
	}
	for _, want := range []string{"initialization check", "snapshot read", "valid counter read", "invalid counter rejection"} {
		if !names[want] {
			t.Errorf("missing case %q", want)
		}
	}
}

func TestRunAllAggregatesTotals(t *testing.T) {
	h := newReadyHarness()
	results := h.RunAll()

	if len(results) != 3 {
		t.Fatalf("len(RunAll()) = %d, want 3", len(results))
	}

	passed, failed, skipped := Totals(results)
	if failed != 0 || skipped != 0 {
		t.Fatalf("Totals = (%d, %d, %d), want no failures or skips", passed, failed, skipped)
	}
	if passed == 0 {
		t.Fatalf("Totals passed = 0, want > 0")
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{Pass: "PASS", Fail: "FAIL", Skip: "SKIP"}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
