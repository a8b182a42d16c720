package hal

import (
	"fmt"
	"sync/atomic"
	"time"
)

// SMP bring-up timing constants, per section 4.1's per-AP sequence:
// INIT IPI -> 10ms wait -> Startup IPI -> 200us wait -> second Startup IPI
// -> wait up to 100ms for the AP's ready flag.
const (
	InitWait       = 10 * time.Millisecond
	StartupWait    = 200 * time.Microsecond
	ReadyTimeout   = 100 * time.Millisecond
	readyPollStep  = 100 * time.Microsecond
)

// APEntry is the shared entry record handed to every Application Processor.
// It is written once before the first Startup IPI and never mutated
// thereafter, per section 4.1.
type APEntry struct {
	StackTop      VA
	PageTableRoot PA
	GDTPointer    VA
	IDTPointer    VA
	EntryPC       VA
	CPUID         int
	ControllerID  uint32
}

// AP tracks a single Application Processor's bring-up state.
type AP struct {
	Entry APEntry
	ready atomic.Bool
	failed atomic.Bool
}

// Ready reports whether the AP has signalled readiness via a release-store
// to its atomic flag.
func (a *AP) Ready() bool { return a.ready.Load() }

// Failed reports whether the AP's bring-up failed: BootAPs marks it when
// the ready flag is not seen within ReadyTimeout, and an AP may mark itself
// via MarkFailed. A failed AP does not halt the BSP.
func (a *AP) Failed() bool { return a.failed.Load() }

// MarkReady performs the AP-side release-store signalling successful
// bring-up.
func (a *AP) MarkReady() { a.ready.Store(true) }

// MarkFailed records an AP bring-up failure without affecting the BSP.
func (a *AP) MarkFailed() { a.failed.Store(true) }

// SendIPIFunc delivers a single IPI to a target controller ID; supplied by
// the architecture backend (lapic.IPI on amd64, SGI on arm64's GIC).
type SendIPIFunc func(target uint32, req IPI) error

// BootAPs runs the bounded SMP bring-up sequence for every entry in aps,
// mirroring amd64.CPU.InitSMP/procresize: the shared entry record is
// written before the first SIPI, INIT is sent, followed by two Startup
// IPIs with the architectural wait windows, then a bounded poll for the
// AP's ready flag.
func BootAPs(send SendIPIFunc, aps []*AP, startupVector uint8) error {
	for _, ap := range aps {
		if err := send(ap.Entry.ControllerID, IPI{Kind: Init}); err != nil {
			return fmt.Errorf("AP %d: INIT IPI: %w", ap.Entry.CPUID, err)
		}

		time.Sleep(InitWait)

		if err := send(ap.Entry.ControllerID, IPI{Kind: Startup, Vector: startupVector}); err != nil {
			return fmt.Errorf("AP %d: first SIPI: %w", ap.Entry.CPUID, err)
		}

		time.Sleep(StartupWait)

		if err := send(ap.Entry.ControllerID, IPI{Kind: Startup, Vector: startupVector}); err != nil {
			return fmt.Errorf("AP %d: second SIPI: %w", ap.Entry.CPUID, err)
		}

		deadline := time.Now().Add(ReadyTimeout)
		for !ap.Ready() {
			if time.Now().After(deadline) {
				ap.MarkFailed()
				break
			}
			time.Sleep(readyPollStep)
		}
	}

	return nil
}
