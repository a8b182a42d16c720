// Command supervisord launches a QEMU-hosted sisk kernel, parses its UART
// output into boot markers and structured events, and exposes the section
// 6.4/7 HTTP/JSON control plane over the result. Grounded on
// tinyrange-cc's examples/shared/testrunner/cmd/runtest's flag-parsing and
// signal-handling shape, and on canonical-snapd's daemon entrypoint for the
// listen-and-wait-for-signal pattern.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mkevac/debugcharts"

	"github.com/sis-kernel/sisk/supervisor"
)

func main() {
	os.Exit(run())
}

func run() int {
	qemuPath := flag.String("qemu", "", "path to the qemu-system-* binary to launch")
	qemuArgs := flag.String("qemu-args", "", "space-separated arguments passed to qemu verbatim")
	listenAddr := flag.String("listen", "127.0.0.1:8787", "address for the HTTP/JSON control plane")
	debugAddr := flag.String("debug-listen", "", "address for the debugcharts runtime-introspection mux (disabled if empty)")
	startupTimeout := flag.Duration("startup-timeout", 30*time.Second, "how long to wait for KERNEL(U) before failing")
	shutdownGrace := flag.Duration("shutdown-grace", 5*time.Second, "how long to wait for a graceful child exit before killing it")
	flag.Parse()

	if *qemuPath == "" {
		fmt.Fprintln(os.Stderr, "supervisord: -qemu is required")
		return int(supervisor.ExitConfigError)
	}

	var args []string
	if *qemuArgs != "" {
		args = strings.Fields(*qemuArgs)
	}

	proc, err := supervisor.NewProcess(supervisor.Config{
		QEMUPath:       *qemuPath,
		Args:           args,
		StartupTimeout: *startupTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "supervisord: %v\n", err)
		return int(supervisor.ExitConfigError)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "supervisord: signal received, shutting down")
		cancel()
	}()

	if *debugAddr != "" {
		go func() {
			// debugcharts registers its handlers on http.DefaultServeMux via
			// init(); this listener just exposes them.
			if err := http.ListenAndServe(*debugAddr, nil); err != nil {
				fmt.Fprintf(os.Stderr, "supervisord: debug listener: %v\n", err)
			}
		}()
	}

	startErr := proc.Start(ctx)
	if startErr != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "supervisord: %v\n", startErr)
		proc.Stop(*shutdownGrace)
		return int(supervisor.ExitStartupTimeout)
	}

	httpSrv := &http.Server{Addr: *listenAddr, Handler: proc.Router()}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "supervisord: control plane: %v\n", err)
		}
	}()

	go logEvents(proc)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), *shutdownGrace)
	defer shutdownCancel()
	httpSrv.Shutdown(shutdownCtx)

	code, stopErr := proc.Stop(*shutdownGrace)
	if stopErr != nil {
		fmt.Fprintf(os.Stderr, "supervisord: child exited: %v\n", stopErr)
	}
	return int(code)
}

// logEvents prints every parsed event to stderr in the kernel's own
// `[TAG] message` convention, for operators tailing the supervisor's own
// output rather than the control plane.
func logEvents(proc *supervisor.Process) {
	for ev := range proc.Events() {
		switch ev.Kind {
		case supervisor.EventMarker:
			fmt.Fprintf(os.Stderr, "[BOOT] %s\n", ev.Marker.Description())
		case supervisor.EventMetric:
			fmt.Fprintf(os.Stderr, "[METRIC] %s=%v\n", ev.MetricName, ev.MetricValue)
		case supervisor.EventTestResult:
			fmt.Fprintf(os.Stderr, "[TEST] %s %s\n", ev.Result, ev.TestName)
		case supervisor.EventBanner:
			fmt.Fprintf(os.Stderr, "[BANNER] %s\n", ev.Text)
		}
	}
}
