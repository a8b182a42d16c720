package virtio

import "fmt"

const consoleBufSize = 256

// ConsoleDevice wraps a VirtIO transport Device with two virtqueues (RX,
// TX) carrying raw byte streams, per section 4.3 — used to surface the
// in-kernel UART-like channel to the host when a physical UART is
// unavailable.
type ConsoleDevice struct {
	dev    *Device
	rx, tx *Queue
}

// NewConsoleDevice pre-fills the RX queue with empty writable buffers so
// host-to-guest bytes have somewhere to land immediately after DriverOK.
func NewConsoleDevice(dev *Device, rx, tx *Queue) (*ConsoleDevice, error) {
	c := &ConsoleDevice{dev: dev, rx: rx, tx: tx}

	for i := 0; i < int(rx.Size); i++ {
		buf := make([]byte, consoleBufSize)
		if _, err := rx.AddBuf([]Buf{
			{Addr: rx.RegisterBuf(buf), Len: uint32(len(buf)), Writable: true},
		}); err != nil {
			return nil, fmt.Errorf("[VIRTIO-CONSOLE] RX prefill: %w", err)
		}
	}

	return c, nil
}

// Write submits a readable chain carrying data and waits for completion.
func (c *ConsoleDevice) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if _, err := c.tx.AddBuf([]Buf{
		{Addr: c.tx.RegisterBuf(data), Len: uint32(len(data))},
	}); err != nil {
		return fmt.Errorf("[VIRTIO-CONSOLE] submit write: %w", err)
	}

	c.dev.Notify(1)

	if _, _, err := c.tx.WaitForUsed(); err != nil {
		return fmt.Errorf("[VIRTIO-CONSOLE] write completion: %w", err)
	}

	return nil
}

// Read drains one completed RX buffer, if any, and replenishes the queue.
func (c *ConsoleDevice) Read() (data []byte, ok bool) {
	head, length, has := c.rx.GetUsedBuf()
	if !has {
		return nil, false
	}

	buf := c.rx.ResolveAddr(c.rx.desc[head].Address, nil)
	if buf == nil {
		return nil, false
	}

	out := make([]byte, length)
	copy(out, buf[:length])

	replacement := make([]byte, consoleBufSize)
	c.rx.AddBuf([]Buf{
		{Addr: c.rx.RegisterBuf(replacement), Len: uint32(len(replacement)), Writable: true},
	})

	return out, true
}
