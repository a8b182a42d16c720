package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"

	"github.com/sis-kernel/sisk/boot"
)

// ExitCode is one of the host supervisor's process exit codes, section 6.6.
// cmd/supervisord maps errConfig/errStartupTimeout and Stop's return value
// onto these before calling os.Exit.
type ExitCode int

const (
	ExitClean          ExitCode = 0
	ExitChildCrashed   ExitCode = 2
	ExitStartupTimeout ExitCode = 3
	ExitConfigError    ExitCode = 4
)

// startupTimeout bounds how long Start waits to observe KERNEL(U) before
// reporting ExitStartupTimeout, per section 6.6.
const startupTimeout = 30 * time.Second

// Config describes how to launch the supervised kernel.
type Config struct {
	// QEMUPath is the qemu-system-* binary to run.
	QEMUPath string
	// Args are passed to QEMUPath verbatim (kernel image, machine type,
	// memory size, -serial pty or equivalent, and so on).
	Args []string
	// StartupTimeout overrides startupTimeout when non-zero, for tests.
	StartupTimeout time.Duration
}

// Process supervises one QEMU child connected over a PTY: it owns the
// child's lifecycle, demuxes its serial output through a LineParser, and
// tracks boot-marker progress via a boot.Status.
type Process struct {
	cfg Config

	cmd  *exec.Cmd
	ptmx *os.File

	writeMu sync.Mutex // serializes writes to ptmx, per the shell-RPC single-writer rule

	parser *LineParser
	status *boot.Status

	events chan ParsedEvent
	rpc    rpc

	done chan struct{}
	err  error
}

// NewProcess returns a Process configured to launch cfg.QEMUPath, but does
// not start it.
func NewProcess(cfg Config) (*Process, error) {
	if cfg.QEMUPath == "" {
		return nil, fmt.Errorf("supervisor: %w: QEMUPath is required", errConfig)
	}
	return &Process{
		cfg:    cfg,
		parser: NewLineParser(),
		status: boot.NewStatus(),
		events: make(chan ParsedEvent, 256),
		done:   make(chan struct{}),
	}, nil
}

var errConfig = errors.New("configuration error")

// Events returns the channel on which every ParsedEvent the supervised
// kernel emits is published. Readers must keep up; the channel is buffered
// but not infinite.
func (p *Process) Events() <-chan ParsedEvent {
	return p.events
}

// Status returns the boot.Status this Process maintains as markers arrive.
func (p *Process) Status() *boot.Status {
	return p.status
}

// Start launches the QEMU child over a PTY and begins demuxing its output.
// It blocks until KERNEL(U) is observed or the startup timeout elapses,
// returning ExitStartupTimeout's equivalent error in the latter case.
func (p *Process) Start(ctx context.Context) error {
	p.cmd = exec.CommandContext(ctx, p.cfg.QEMUPath, p.cfg.Args...)

	ptmx, err := pty.Start(p.cmd)
	if err != nil {
		return fmt.Errorf("supervisor: starting %s: %w", p.cfg.QEMUPath, err)
	}
	p.ptmx = ptmx

	go p.readLoop()

	timeout := p.cfg.StartupTimeout
	if timeout == 0 {
		timeout = startupTimeout
	}

	// Poll boot status rather than draining p.events directly, so every
	// event readLoop publishes stays available to Events()'s subscribers
	// (draining it here would otherwise steal pre-KERNEL(U) events, such as
	// QEMU's own startup banners, from anyone listening after Start returns).
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if p.status.Seen(boot.KernelEntered) {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("supervisor: %w: no KERNEL(U) within %s", errStartupTimeout, timeout)
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return p.err
		}
	}
}

var errStartupTimeout = errors.New("startup timeout")

// readLoop reads bytes from the PTY, buffers them into lines, and feeds each
// to the parser, until the PTY closes or the child exits.
//
// The kernel's `sis> ` prompt (section 6.3) has no trailing newline — it
// stays on the wire awaiting input rather than being followed by a line
// break — so a plain newline-splitting scanner would never flush it. The
// buffer is therefore also flushed whenever its ANSI-stripped contents
// exactly match the bare prompt text, not only on '\r'/'\n'.
func (p *Process) readLoop() {
	defer close(p.done)

	reader := bufio.NewReader(p.ptmx)
	var buf []byte

	flush := func() {
		if len(buf) == 0 {
			return
		}
		p.consumeLine(string(buf))
		buf = buf[:0]
	}

	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		if b == '\n' || b == '\r' {
			flush()
			continue
		}
		buf = append(buf, b)
		if strings.TrimSpace(stripANSI(string(buf))) == "sis>" {
			flush()
		}
	}
	flush()

	p.err = p.cmd.Wait()
}

// consumeLine parses one already-delimited line and fans it out to boot
// status tracking, any in-flight ExecuteCommand, and Events() subscribers.
func (p *Process) consumeLine(line string) {
	ev, ok := p.parser.ParseLine(line)
	if !ok {
		return
	}
	if ev.Kind == EventMarker {
		p.status.MarkSeen(ev.Marker)
	}
	p.rpc.publish(ev)
	select {
	case p.events <- ev:
	default:
		// Back-pressure: drop rather than block the read loop; the
		// supervisor favors freshness over completeness here, matching
		// the agent bus's own overflow-drops-oldest policy in spirit
		// (section 8) even though this channel drops newest instead,
		// since stalling UART drain risks wedging the child's stdout.
	}
}

// Write sends raw bytes to the child's stdin (the PTY's write side).
func (p *Process) Write(b []byte) (int, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.ptmx.Write(b)
}

// Stop requests a graceful shutdown, escalating to a kill if the child does
// not exit within grace.
func (p *Process) Stop(grace time.Duration) (ExitCode, error) {
	if p.cmd == nil || p.cmd.Process == nil {
		return ExitClean, nil
	}

	p.cmd.Process.Signal(os.Interrupt)

	select {
	case <-p.done:
	case <-time.After(grace):
		p.cmd.Process.Kill()
		<-p.done
	}

	if p.ptmx != nil {
		p.ptmx.Close()
	}

	if p.err == nil {
		return ExitClean, nil
	}
	return ExitChildCrashed, p.err
}
