package shell

import (
	"strings"
	"testing"

	"github.com/sis-kernel/sisk/profiler"
)

func TestProfilerStartStopReport(t *testing.T) {
	s := New()
	p := profiler.New(nil)
	RegisterProfiler(s, p)

	if out := s.Dispatch("profstart"); !strings.Contains(out, "started") {
		t.Fatalf("profstart = %q", out)
	}

	p.Sample(0x1000, 1, 1)
	p.Sample(0x1000, 1, 2)

	if out := s.Dispatch("profstop"); !strings.Contains(out, "stopped") {
		t.Fatalf("profstop = %q", out)
	}

	out := s.Dispatch("profreport")
	if !strings.Contains(out, "total=2") {
		t.Fatalf("profreport = %q, want total=2", out)
	}
}
