package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// defaultCommandTimeout is the shell RPC's default prompt-wait budget,
// section 4.9.
const defaultCommandTimeout = 5 * time.Second

// CommandResult is execute_command's return shape, section 4.9.
type CommandResult struct {
	Success bool
	Output  []string
	Error   string
}

// ErrCommandTimeout is returned by ExecuteCommand when the prompt does not
// reappear within the configured timeout.
var ErrCommandTimeout = errors.New("supervisor: command timed out waiting for prompt")

// rpc holds the serialization and event-sink state ExecuteCommand needs,
// kept separate from the read-loop fields in Process for clarity.
type rpc struct {
	mu sync.Mutex // single-writer: only one command in flight at a time, section 4.9

	sinkMu sync.Mutex
	sink   chan ParsedEvent // non-nil only while a command is in flight
}

// publish forwards ev to the in-flight command's sink, if any. Called from
// readLoop for every parsed event; a nil sink (no command in flight) is a
// cheap no-op.
func (r *rpc) publish(ev ParsedEvent) {
	r.sinkMu.Lock()
	sink := r.sink
	r.sinkMu.Unlock()
	if sink == nil {
		return
	}
	select {
	case sink <- ev:
	default:
		// The collecting ExecuteCommand call is behind; drop rather than
		// block the UART read loop.
	}
}

// ExecuteCommand writes cmdLine (plus a trailing newline) to the supervised
// shell's stdin and collects output lines until the prompt reappears or
// timeout elapses (defaultCommandTimeout if zero). Concurrent callers are
// serialized: a second call blocks until the first completes.
func (p *Process) ExecuteCommand(ctx context.Context, cmdLine string, timeout time.Duration) (CommandResult, error) {
	p.rpc.mu.Lock()
	defer p.rpc.mu.Unlock()

	if timeout == 0 {
		timeout = defaultCommandTimeout
	}

	sink := make(chan ParsedEvent, 64)
	p.rpc.sinkMu.Lock()
	p.rpc.sink = sink
	p.rpc.sinkMu.Unlock()
	defer func() {
		p.rpc.sinkMu.Lock()
		p.rpc.sink = nil
		p.rpc.sinkMu.Unlock()
	}()

	if _, err := p.Write([]byte(cmdLine + "\n")); err != nil {
		return CommandResult{}, fmt.Errorf("supervisor: writing command: %w", err)
	}

	var output []string
	deadline := time.After(timeout)

	for {
		select {
		case ev := <-sink:
			if ev.Kind == EventPrompt {
				return CommandResult{Success: true, Output: output}, nil
			}
			if text, ok := eventText(ev); ok {
				output = append(output, text)
			}
		case <-deadline:
			return CommandResult{Success: false, Output: output, Error: ErrCommandTimeout.Error()}, ErrCommandTimeout
		case <-ctx.Done():
			return CommandResult{}, ctx.Err()
		case <-p.done:
			return CommandResult{Success: false, Output: output, Error: "child exited"}, p.err
		}
	}
}

// eventText renders ev's line-like text, for the output kinds ExecuteCommand
// collects. Boot markers are not shell output, so they render to ("", false).
func eventText(ev ParsedEvent) (string, bool) {
	switch ev.Kind {
	case EventShell, EventBanner:
		return ev.Text, true
	case EventMetric:
		return fmt.Sprintf("METRIC %s=%v", ev.MetricName, ev.MetricValue), true
	case EventTestResult:
		return fmt.Sprintf("[%s] %s", ev.Result, ev.TestName), true
	default:
		return "", false
	}
}
