package virtio

import (
	"fmt"

	"github.com/sis-kernel/sisk/hal/arch/internal/mmio"
)

// DefaultMTU is the virtio-net default payload size, per section 4.3.
const DefaultMTU = 1514

// netHeaderSize is the virtio-net per-packet header prepended to every RX
// and TX buffer (flags, gso type/size, header len, csum offsets, num
// buffers — 11 bytes in the legacy/merge-off layout this transport uses).
const netHeaderSize = 11

const netRXPrefill = 128

const netConfigMAC = 0x00 // offset of the MAC address in the config region

// NetDevice wraps a VirtIO transport Device bound to separate RX/TX
// queues, implementing the framing of section 4.3.
type NetDevice struct {
	dev    *Device
	rx, tx *Queue
	mtu    int
	mac    [6]byte
}

// NewNetDevice reads the MAC from the device configuration region, then
// pre-fills the RX queue with 128 (header+MTU)-sized writable buffers
// before the caller calls Device.DriverOK.
func NewNetDevice(dev *Device, rx, tx *Queue, mtu int) (*NetDevice, error) {
	if mtu <= 0 {
		mtu = DefaultMTU
	}

	n := &NetDevice{dev: dev, rx: rx, tx: tx, mtu: mtu}
	n.readMAC()

	if err := n.prefillRX(); err != nil {
		return nil, err
	}

	return n, nil
}

// readMAC reads the device configuration region's MAC address field, one
// 32-bit word at a time (the virtio-mmio config space is word-addressable).
func (n *NetDevice) readMAC() {
	w0 := mmio.Read32(n.dev.Base + regConfig + netConfigMAC)
	w1 := mmio.Read32(n.dev.Base + regConfig + netConfigMAC + 4)

	n.mac[0] = byte(w0)
	n.mac[1] = byte(w0 >> 8)
	n.mac[2] = byte(w0 >> 16)
	n.mac[3] = byte(w0 >> 24)
	n.mac[4] = byte(w1)
	n.mac[5] = byte(w1 >> 8)
}

// MAC returns the device's configured hardware address.
func (n *NetDevice) MAC() [6]byte { return n.mac }

func (n *NetDevice) prefillRX() error {
	for i := 0; i < netRXPrefill; i++ {
		buf := make([]byte, netHeaderSize+n.mtu)
		if _, err := n.rx.AddBuf([]Buf{
			{Addr: n.rx.RegisterBuf(buf), Len: uint32(len(buf)), Writable: true},
		}); err != nil {
			return fmt.Errorf("[VIRTIO-NET] RX prefill buffer %d: %w", i, err)
		}
	}
	return nil
}

// Send prepends the virtio-net header and submits payload as a readable
// chain, busy-waiting (bounded) for completion and ACKing the
// interrupt-status register.
func (n *NetDevice) Send(payload []byte) error {
	if len(payload) > n.mtu {
		return fmt.Errorf("%w: payload %d exceeds MTU %d", ErrInvalidInput, len(payload), n.mtu)
	}

	frame := make([]byte, netHeaderSize+len(payload))
	copy(frame[netHeaderSize:], payload)

	if _, err := n.tx.AddBuf([]Buf{
		{Addr: n.tx.RegisterBuf(frame), Len: uint32(len(frame))},
	}); err != nil {
		return fmt.Errorf("[VIRTIO-NET] submit TX: %w", err)
	}

	n.dev.Notify(1)

	if _, _, err := n.tx.WaitForUsed(); err != nil {
		return fmt.Errorf("[VIRTIO-NET] TX completion: %w", err)
	}

	n.dev.AckInterrupt()
	return nil
}

// Recv drains one completed RX buffer, if any, strips the virtio-net
// header, and returns the payload. The consumed buffer is replenished back
// onto the RX queue so the 128-buffer prefill invariant holds.
func (n *NetDevice) Recv() (payload []byte, ok bool) {
	head, length, has := n.rx.GetUsedBuf()
	if !has {
		return nil, false
	}

	buf := n.rx.ResolveAddr(n.rx.desc[head].Address, nil)
	if buf == nil || int(length) < netHeaderSize {
		return nil, false
	}

	out := make([]byte, int(length)-netHeaderSize)
	copy(out, buf[netHeaderSize:length])

	replacement := make([]byte, netHeaderSize+n.mtu)
	n.rx.AddBuf([]Buf{
		{Addr: n.rx.RegisterBuf(replacement), Len: uint32(len(replacement)), Writable: true},
	})

	return out, true
}
