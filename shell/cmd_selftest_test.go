package shell

import (
	"strings"
	"testing"

	"github.com/sis-kernel/sisk/driver"
	"github.com/sis-kernel/sisk/selftest"
)

func TestSelftestAllPasses(t *testing.T) {
	s := New()
	gpio := driver.NewGPIOController()
	gpio.Init()
	mailbox := driver.NewMailbox()
	mailbox.Init()
	h := selftest.NewHarness(gpio, mailbox, nil)
	RegisterSelftest(s, h)

	out := s.Dispatch("selftest gpio")
	if !strings.Contains(out, "failed=0") {
		t.Fatalf("selftest gpio = %q, want failed=0", out)
	}

	out = s.Dispatch("selftest all")
	if !strings.Contains(out, "skipped=1") {
		t.Fatalf("selftest all = %q, want skipped=1 (pmu absent)", out)
	}
}

func TestSelftestUnknownTarget(t *testing.T) {
	s := New()
	h := selftest.NewHarness(nil, nil, nil)
	RegisterSelftest(s, h)

	out := s.Dispatch("selftest bogus")
	if !strings.Contains(out, "[SELFTEST]") {
		t.Fatalf("selftest bogus = %q, want an error", out)
	}
}
