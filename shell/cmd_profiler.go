package shell

import (
	"fmt"

	"github.com/sis-kernel/sisk/profiler"
)

// RegisterProfiler binds `profstart`/`profstop`/`profreport` to p.
func RegisterProfiler(s *Shell, p *profiler.Profiler) {
	s.Register("profstart", "PROFILER", func(args []string) (Output, error) {
		p.Start()
		return Output{Text: "profiler started"}, nil
	})
	s.Register("profstop", "PROFILER", func(args []string) (Output, error) {
		p.Stop()
		return Output{Text: "profiler stopped"}, nil
	})
	s.Register("profreport", "PROFILER", func(args []string) (Output, error) {
		report := p.Report()
		lines := make([]string, 0, len(report.Hotspots)+1)
		lines = append(lines, fmt.Sprintf("total=%d dropped=%d hotspots=%d", report.TotalSamples, report.DroppedSamples, len(report.Hotspots)))
		for _, h := range report.Hotspots {
			name := h.Symbol
			if name == "" {
				name = fmt.Sprintf("0x%x", h.Address)
			}
			lines = append(lines, fmt.Sprintf("%-32s %6d samples (%5.2f%%)", name, h.Samples, h.Percentage))
		}
		return Output{Text: joinLines(lines), JSON: report}, nil
	})
}
