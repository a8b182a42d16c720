package shell

import (
	"fmt"

	"github.com/sis-kernel/sisk/selftest"
)

// RegisterSelftest binds `selftest [gpio|mailbox|pmu|all]` to h.
func RegisterSelftest(s *Shell, h *selftest.Harness) {
	s.Register("selftest", "SELFTEST", func(args []string) (Output, error) {
		target := "all"
		if len(args) > 0 {
			target = args[0]
		}

		var results []selftest.SuiteResult
		switch target {
		case "gpio":
			results = []selftest.SuiteResult{h.RunGPIO()}
		case "mailbox":
			results = []selftest.SuiteResult{h.RunMailbox()}
		case "pmu":
			results = []selftest.SuiteResult{h.RunPMU()}
		case "all":
			results = h.RunAll()
		default:
			return Output{}, fmt.Errorf("unknown selftest target %q", target)
		}

		var testLines []TestLine
		for _, r := range results {
			for _, c := range r.Cases {
				testLines = append(testLines, TestLine{Status: c.Status.String(), Name: r.Driver + "." + c.Name})
			}
		}
		passed, failed, skipped := selftest.Totals(results)
		return Output{
			Text:      fmt.Sprintf("passed=%d failed=%d skipped=%d", passed, failed, skipped),
			TestLines: testLines,
			JSON:      results,
		}, nil
	})
}
