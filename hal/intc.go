package hal

import (
	"fmt"
	"time"
)

// IPIKind enumerates the inter-processor interrupt types an
// InterruptController must support for SMP bring-up, mirroring the teacher's
// lapic.ICR_DLV_INIT / ICR_DLV_SIPI delivery modes.
type IPIKind int

const (
	Fixed IPIKind = iota
	Init
	Startup
)

// IPI describes a single inter-processor interrupt request.
type IPI struct {
	Kind   IPIKind
	Vector uint8 // meaningful for Fixed and Startup
}

// IPIDeliveryTimeout bounds how long SendIPI polls the delivery-status bit
// before giving up, per section 4.1.
const IPIDeliveryTimeout = 1 * time.Millisecond

// InterruptController abstracts the local/IO interrupt controller (APIC on
// amd64, GIC on arm64, PLIC/CLINT on riscv64).
type InterruptController interface {
	// BSPID returns the interrupt controller's identifier for the
	// bootstrap processor, recorded at probe time.
	BSPID() uint32

	// SendIPI delivers an inter-processor interrupt to target, blocking
	// until the delivery-status bit clears or IPIDeliveryTimeout elapses.
	SendIPI(target uint32, req IPI) error

	// EnableLine unmasks a shared/peripheral interrupt line.
	EnableLine(irq uint32) error

	// DisableLine masks a shared/peripheral interrupt line.
	DisableLine(irq uint32) error
}

// ErrIPITimeout is returned by SendIPI when the delivery-status bit fails to
// clear within IPIDeliveryTimeout.
var ErrIPITimeout = fmt.Errorf("%w: IPI delivery did not complete", ErrTimeout)

// ErrTimeout is the base sentinel wrapped by every bounded-wait timeout in
// the HAL and driver framework.
var ErrTimeout = fmt.Errorf("timeout")
