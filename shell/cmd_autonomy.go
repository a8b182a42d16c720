package shell

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sis-kernel/sisk/autonomy"
)

// RegisterAutonomy binds the `autoctl` command family of section 6.4 to c.
func RegisterAutonomy(s *Shell, c *autonomy.Controller) {
	s.Register("autoctl", "AUTOCTL", func(args []string) (Output, error) {
		return dispatchAutoctl(c, args)
	})
}

func statusJSON(st autonomy.Status) map[string]any {
	return map[string]any{
		"enabled":         st.Enabled,
		"mode":            st.Mode,
		"interval_ms":     st.IntervalMS,
		"conf_threshold":  st.ConfThreshold,
		"total_decisions": st.TotalDecisions,
		"accepted":        st.Accepted,
		"deferred":        st.Deferred,
		"watchdog_resets": st.WatchdogResets,
	}
}

func statusText(st autonomy.Status) string {
	return fmt.Sprintf("enabled=%v mode=%s interval_ms=%d conf_threshold=%.3f total=%d accepted=%d deferred=%d watchdog_resets=%d",
		st.Enabled, st.Mode, st.IntervalMS, st.ConfThreshold, st.TotalDecisions, st.Accepted, st.Deferred, st.WatchdogResets)
}

func dispatchAutoctl(c *autonomy.Controller, args []string) (Output, error) {
	if len(args) == 0 {
		return Output{}, fmt.Errorf("usage: autoctl {on|off|reset|status|interval|conf-threshold|audit|explain|preview|whatif}")
	}

	switch args[0] {
	case "on":
		st := c.On()
		return Output{Text: statusText(st), JSON: statusJSON(st)}, nil
	case "off":
		st := c.Off()
		return Output{Text: statusText(st), JSON: statusJSON(st)}, nil
	case "reset":
		st := c.Reset()
		return Output{Text: statusText(st), JSON: statusJSON(st)}, nil
	case "status":
		st := c.Status()
		return Output{Text: statusText(st), JSON: statusJSON(st)}, nil
	case "interval":
		if len(args) < 2 {
			return Output{}, fmt.Errorf("usage: autoctl interval <ms>")
		}
		ms, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return Output{}, fmt.Errorf("invalid interval %q: %w", args[1], err)
		}
		st, err := c.SetInterval(time.Duration(ms) * time.Millisecond)
		if err != nil {
			return Output{}, err
		}
		return Output{Text: statusText(st), JSON: statusJSON(st)}, nil
	case "conf-threshold":
		if len(args) < 2 {
			return Output{}, fmt.Errorf("usage: autoctl conf-threshold <f>")
		}
		f, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return Output{}, fmt.Errorf("invalid confidence threshold %q: %w", args[1], err)
		}
		st, err := c.SetConfThreshold(f)
		if err != nil {
			return Output{}, err
		}
		return Output{Text: statusText(st), JSON: statusJSON(st)}, nil
	case "audit":
		last := 50
		for i := 1; i < len(args); i++ {
			if args[i] == "--last" && i+1 < len(args) {
				n, err := strconv.Atoi(args[i+1])
				if err != nil {
					return Output{}, fmt.Errorf("invalid --last %q: %w", args[i+1], err)
				}
				last = n
				i++
			}
		}
		entries := c.Audit(last)
		return Output{Text: fmt.Sprintf("%d entries", len(entries)), JSON: entries}, nil
	case "explain":
		var id string
		for i := 1; i < len(args); i++ {
			if args[i] == "--id" && i+1 < len(args) {
				id = args[i+1]
				i++
			}
		}
		if id == "" {
			return Output{}, fmt.Errorf("usage: autoctl explain --id <id>")
		}
		entry, ok := c.Explain(id)
		if !ok {
			return Output{}, fmt.Errorf("no decision with id %q", id)
		}
		return Output{Text: fmt.Sprintf("decision %s executed=%v reason=%s", entry.ID, entry.Executed, entry.Reason), JSON: entry}, nil
	case "preview":
		count := 1
		for i := 1; i < len(args); i++ {
			if args[i] == "--count" && i+1 < len(args) {
				n, err := strconv.Atoi(args[i+1])
				if err != nil {
					return Output{}, fmt.Errorf("invalid --count %q: %w", args[i+1], err)
				}
				count = n
				i++
			}
		}
		results := c.Preview(count)
		return Output{Text: fmt.Sprintf("%d preview decisions", len(results)), JSON: results}, nil
	case "whatif":
		if len(args) < 2 {
			return Output{}, fmt.Errorf("usage: autoctl whatif '<json>'")
		}
		overrides, err := parseWhatIfOverrides(args[1])
		if err != nil {
			return Output{}, err
		}
		result := c.WhatIf(overrides)
		return Output{Text: fmt.Sprintf("would_execute baseline=%v scenario=%v", result.Baseline.WouldExecute, result.Scenario.WouldExecute), JSON: result}, nil
	default:
		return Output{}, fmt.Errorf("unknown autoctl subcommand %q", args[0])
	}
}

func parseWhatIfOverrides(raw string) (autonomy.WhatIfOverrides, error) {
	var wire struct {
		ConfThreshold *float64 `json:"conf_threshold"`
		IntervalMS    *uint64  `json:"interval_ms"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return autonomy.WhatIfOverrides{}, fmt.Errorf("invalid whatif overrides json: %w", err)
	}
	return autonomy.WhatIfOverrides{ConfThreshold: wire.ConfThreshold, IntervalMS: wire.IntervalMS}, nil
}
