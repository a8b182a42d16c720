package shell

import (
	"fmt"
	"strconv"

	"github.com/sis-kernel/sisk/scheduler"
)

// SchedulerState bundles the predictive-scheduler extensions `schedctl`
// inspects and toggles, per section 4.9.
type SchedulerState struct {
	Predictor *scheduler.Predictor
	Affinity  *scheduler.AffinityGraph
	Shadow    *scheduler.ShadowMode
	Features  *scheduler.FeatureFlags
}

// RegisterScheduler binds the `schedctl` command family to st.
func RegisterScheduler(s *Shell, st SchedulerState) {
	s.Register("schedctl", "SCHEDCTL", func(args []string) (Output, error) {
		return dispatchSchedctl(st, args)
	})
}

func dispatchSchedctl(st SchedulerState, args []string) (Output, error) {
	if len(args) == 0 {
		return Output{}, fmt.Errorf("usage: schedctl {workload|priorities|affinity|shadow|feature}")
	}

	switch args[0] {
	case "workload":
		return schedctlWorkload(st, args[1:])
	case "priorities":
		return schedctlPriorities(st, args[1:])
	case "affinity":
		groups := st.Affinity.Groups()
		return Output{Text: fmt.Sprintf("%d affinity group(s)", len(groups)), JSON: groups}, nil
	case "shadow":
		return schedctlShadow(st, args[1:])
	case "feature":
		return schedctlFeature(st, args[1:])
	default:
		return Output{}, fmt.Errorf("unknown schedctl subcommand %q", args[0])
	}
}

func schedctlWorkload(st SchedulerState, args []string) (Output, error) {
	if len(args) == 0 {
		return Output{}, fmt.Errorf("usage: schedctl workload <operator>")
	}
	op := scheduler.OperatorID(args[0])
	class := st.Predictor.Classify(op)
	return Output{Text: fmt.Sprintf("%s: %s", op, class), JSON: map[string]string{"operator": string(op), "classification": string(class)}}, nil
}

func schedctlPriorities(st SchedulerState, args []string) (Output, error) {
	if len(args) == 0 {
		return Output{}, fmt.Errorf("usage: schedctl priorities <operator>")
	}
	op := scheduler.OperatorID(args[0])
	stats, ok := st.Predictor.Stats(op)
	if !ok {
		return Output{}, fmt.Errorf("no statistics recorded for operator %q", op)
	}
	return Output{
		Text: fmt.Sprintf("priority=%d miss_count=%d last_run_tick=%d", stats.Priority, stats.MissCount, stats.LastRunTick),
		JSON: stats,
	}, nil
}

func schedctlShadow(st SchedulerState, args []string) (Output, error) {
	if len(args) == 0 {
		return Output{}, fmt.Errorf("usage: schedctl shadow {on|off|compare}")
	}
	switch args[0] {
	case "on":
		st.Shadow.On()
		return Output{Text: "shadow mode on"}, nil
	case "off":
		st.Shadow.Off()
		return Output{Text: "shadow mode off"}, nil
	case "compare":
		tally := st.Shadow.Tally()
		return Output{
			Text: fmt.Sprintf("agreed=%d primary_better=%d shadow_better=%d pending=%d", tally.Agreed, tally.PrimaryBetter, tally.ShadowBetter, st.Shadow.PendingCount()),
			JSON: tally,
		}, nil
	default:
		return Output{}, fmt.Errorf("unknown schedctl shadow subcommand %q", args[0])
	}
}

func schedctlFeature(st SchedulerState, args []string) (Output, error) {
	if len(args) == 0 {
		return Output{}, fmt.Errorf("usage: schedctl feature {enable|disable|list} [name]")
	}
	switch args[0] {
	case "enable", "disable":
		if len(args) < 2 {
			return Output{}, fmt.Errorf("usage: schedctl feature %s <name>", args[0])
		}
		f := scheduler.Feature(args[1])
		if args[0] == "enable" {
			st.Features.Enable(f)
		} else {
			st.Features.Disable(f)
		}
		return Output{Text: fmt.Sprintf("%s: %s -> %v", args[0], f, st.Features.Enabled(f))}, nil
	case "list":
		list := st.Features.List()
		lines := make([]string, 0, len(list))
		for f, on := range list {
			lines = append(lines, string(f)+"="+strconv.FormatBool(on))
		}
		return Output{Text: joinLines(lines), JSON: list}, nil
	default:
		return Output{}, fmt.Errorf("unknown schedctl feature subcommand %q", args[0])
	}
}
