package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/sis-kernel/sisk/boot"
)

func TestNewProcessRejectsEmptyQEMUPath(t *testing.T) {
	if _, err := NewProcess(Config{}); err == nil {
		t.Fatalf("NewProcess({}): expected a configuration error")
	}
}

// TestStartObservesKernelMarker runs a stand-in "kernel" (a shell one-liner)
// that immediately emits the first boot marker, and checks Start returns as
// soon as it is observed.
func TestStartObservesKernelMarker(t *testing.T) {
	p, err := NewProcess(Config{
		QEMUPath:       "/bin/sh",
		Args:           []string{"-c", "printf 'KERNEL(U)\\n'; sleep 5"},
		StartupTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewProcess: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop(200 * time.Millisecond)

	if !p.Status().Seen(boot.KernelEntered) {
		t.Fatalf("expected KernelEntered marked seen")
	}
}

// TestStartTimesOutWithoutKernelMarker runs a child that never emits
// KERNEL(U) within the (short, test-only) startup timeout.
func TestStartTimesOutWithoutKernelMarker(t *testing.T) {
	p, err := NewProcess(Config{
		QEMUPath:       "/bin/sleep",
		Args:           []string{"5"},
		StartupTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewProcess: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = p.Start(ctx)
	defer p.Stop(200 * time.Millisecond)

	if err == nil {
		t.Fatalf("Start: expected a startup-timeout error, got nil")
	}
}

// TestStopReportsCleanExit checks a child that exits on its own (success
// status) is reported as ExitClean.
func TestStopReportsCleanExit(t *testing.T) {
	p, err := NewProcess(Config{
		QEMUPath:       "/bin/sh",
		Args:           []string{"-c", "printf 'KERNEL(U)\\n'"},
		StartupTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewProcess: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Give the child a moment to exit on its own before Stop signals it.
	time.Sleep(100 * time.Millisecond)

	code, _ := p.Stop(500 * time.Millisecond)
	if code != ExitClean {
		t.Fatalf("Stop: code = %v, want ExitClean", code)
	}
}
