// Package virtio implements the split-virtqueue VirtIO transport plus the
// block, net and console device front-ends, per spec section 4.3.
//
// Grounded on the teacher's virtio/{virtio,net,descriptor}.go and
// virtio/queue/descriptor.go (register layout, descriptor/available/used
// ring shapes) and kvm/virtio/{virtio,mmio}.go (the MMIO device init
// sequence), generalized from the teacher's single ad hoc net device onto
// the block/net/console trio spec.md names.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package virtio

import (
	"fmt"

	"github.com/sis-kernel/sisk/hal/arch/internal/mmio"
)

// Device type IDs, per the VirtIO spec and grounded on the teacher's
// virtio/queue/descriptor.go device-type constants.
const (
	DeviceTypeNet     = 0x01
	DeviceTypeBlock   = 0x02
	DeviceTypeConsole = 0x03
)

// MMIO register offsets, grounded on the teacher's
// virtio/descriptor.go register map (modern virtio-mmio v2 layout).
const (
	regMagic            = 0x000
	regVersion          = 0x004
	regDeviceID         = 0x008
	regVendorID         = 0x00c
	regDeviceFeatures   = 0x010
	regDeviceFeaturesSel = 0x014
	regDriverFeatures   = 0x020
	regDriverFeaturesSel = 0x024
	regQueueSel         = 0x030
	regQueueNumMax      = 0x034
	regQueueNum         = 0x038
	regQueueReady       = 0x044
	regQueueNotify      = 0x050
	regInterruptStatus  = 0x060
	regInterruptACK     = 0x064
	regStatus           = 0x070
	regQueueDescLow     = 0x080
	regQueueDescHigh    = 0x084
	regQueueDriverLow   = 0x090
	regQueueDriverHigh  = 0x094
	regQueueDeviceLow   = 0x0a0
	regQueueDeviceHigh  = 0x0a4
	regConfig           = 0x100
)

// Device status bits.
const (
	StatusAcknowledge = 1 << 0
	StatusDriver      = 1 << 1
	StatusDriverOK    = 1 << 2
	StatusFeaturesOK  = 1 << 3
	StatusNeedsReset  = 1 << 6
	StatusFailed      = 1 << 7
)

const magicValue = 0x74726976 // "virt"

// Device represents one VirtIO MMIO transport instance shared by the
// block/net/console front-ends.
type Device struct {
	Base uint64
	Kind uint32

	Queues []*Queue
}

// Init performs the first part of the device init sequence of section 4.3:
// read magic and version, write Reset, OR Acknowledge into Status, OR
// Driver, negotiate features, OR FEATURES_OK. Queues are configured by
// SetupQueue and DRIVER_OK is set by DriverOK. If the device does not keep
// FEATURES_OK set, Init writes the FAILED status bit and returns
// ErrHardware; a bad magic value or version returns an error without
// writing Status.
func (d *Device) Init(wantFeatures uint32) error {
	if mmio.Read32(d.Base+regMagic) != magicValue {
		return fmt.Errorf("[VIRTIO] invalid magic at base %#x", d.Base)
	}

	if mmio.Read32(d.Base+regVersion) != 2 {
		return fmt.Errorf("[VIRTIO] unsupported non-modern device at base %#x", d.Base)
	}

	d.Kind = mmio.Read32(d.Base + regDeviceID)

	// Reset.
	mmio.Write32(d.Base+regStatus, 0)

	mmio.Write32(d.Base+regStatus, StatusAcknowledge)
	mmio.Write32(d.Base+regStatus, mmio.Read32(d.Base+regStatus)|StatusDriver)

	offered := mmio.Read32(d.Base + regDeviceFeatures)
	negotiated := offered & wantFeatures

	mmio.Write32(d.Base+regDriverFeatures, negotiated)
	mmio.Write32(d.Base+regStatus, mmio.Read32(d.Base+regStatus)|StatusFeaturesOK)

	if mmio.Read32(d.Base+regStatus)&StatusFeaturesOK == 0 {
		d.fail()
		return fmt.Errorf("[VIRTIO] %w: feature negotiation rejected", ErrHardware)
	}

	return nil
}

// SetupQueue selects queue index, negotiates its size against the device
// maximum, writes the three ring addresses, and marks it ready.
func (d *Device) SetupQueue(index uint32, q *Queue) error {
	mmio.Write32(d.Base+regQueueSel, index)

	max := mmio.Read32(d.Base + regQueueNumMax)
	if max == 0 {
		d.fail()
		return fmt.Errorf("[VIRTIO] %w: queue %d unavailable", ErrHardware, index)
	}
	if uint32(q.Size) > max {
		d.fail()
		return fmt.Errorf("[VIRTIO] %w: queue %d size %d exceeds max %d", ErrHardware, index, q.Size, max)
	}

	mmio.Write32(d.Base+regQueueNum, uint32(q.Size))

	mmio.Write32(d.Base+regQueueDescLow, uint32(q.DescTableAddr))
	mmio.Write32(d.Base+regQueueDescHigh, uint32(q.DescTableAddr>>32))
	mmio.Write32(d.Base+regQueueDriverLow, uint32(q.AvailRingAddr))
	mmio.Write32(d.Base+regQueueDriverHigh, uint32(q.AvailRingAddr>>32))
	mmio.Write32(d.Base+regQueueDeviceLow, uint32(q.UsedRingAddr))
	mmio.Write32(d.Base+regQueueDeviceHigh, uint32(q.UsedRingAddr>>32))

	mmio.Write32(d.Base+regQueueReady, 1)

	d.Queues = append(d.Queues, q)
	return nil
}

// DriverOK finalizes device init by ORing DRIVER_OK into Status.
func (d *Device) DriverOK() {
	mmio.Write32(d.Base+regStatus, mmio.Read32(d.Base+regStatus)|StatusDriverOK)
}

// Notify rings the queue notify doorbell.
func (d *Device) Notify(index uint32) {
	mmio.Write32(d.Base+regQueueNotify, index)
}

// AckInterrupt reads and acknowledges the device's interrupt-status
// register.
func (d *Device) AckInterrupt() uint32 {
	status := mmio.Read32(d.Base + regInterruptStatus)
	mmio.Write32(d.Base+regInterruptACK, status)
	return status
}

func (d *Device) fail() {
	mmio.Write32(d.Base+regStatus, mmio.Read32(d.Base+regStatus)|StatusFailed)
}
