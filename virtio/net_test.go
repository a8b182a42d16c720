package virtio

import "testing"

// Net and console device-level tests construct their device structs
// directly rather than through NewNetDevice/NewConsoleDevice. NewNetDevice
// touches the transport's live MMIO registers (reading the MAC from the
// configuration region) — not something a hosted unit test can exercise
// against a real Device; the console test follows the same pattern and
// repeats NewConsoleDevice's RX prefill inline. The teacher likewise never unit-tests
// code that dereferences live registers; that path is instead covered by
// the QEMU-driven self-test harness. Everything reachable without a real
// Device (RX prefill bookkeeping, frame strip/replenish) is still fully
// exercised here through the Queue directly.

func TestNetPrefillRXFillsQueue(t *testing.T) {
	rx, err := NewQueue(netRXPrefill)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	n := &NetDevice{rx: rx, mtu: DefaultMTU}
	if err := n.prefillRX(); err != nil {
		t.Fatalf("prefillRX: %v", err)
	}

	if rx.FreeCount() != 0 {
		t.Fatalf("FreeCount = %d, want 0 (queue fully prefilled)", rx.FreeCount())
	}
	if rx.InFlightCount() != netRXPrefill {
		t.Fatalf("InFlightCount = %d, want %d", rx.InFlightCount(), netRXPrefill)
	}
}

func TestNetRecvStripsHeaderAndReplenishes(t *testing.T) {
	rx, err := NewQueue(4)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	n := &NetDevice{rx: rx, mtu: DefaultMTU}

	frame := make([]byte, netHeaderSize+5)
	copy(frame[netHeaderSize:], []byte("hello"))

	head, err := rx.AddBuf([]Buf{{Addr: rx.RegisterBuf(frame), Len: uint32(len(frame)), Writable: true}})
	if err != nil {
		t.Fatalf("AddBuf: %v", err)
	}
	rx.pushUsed(head, uint32(len(frame)))

	payload, ok := n.Recv()
	if !ok {
		t.Fatalf("Recv: expected a frame")
	}
	if string(payload) != "hello" {
		t.Fatalf("payload = %q, want %q", payload, "hello")
	}

	// Recv must have replenished the consumed buffer.
	if rx.InFlightCount() != 1 {
		t.Fatalf("InFlightCount after Recv = %d, want 1 (replenished)", rx.InFlightCount())
	}
}

func TestNetSendRejectsOversizePayload(t *testing.T) {
	tx, err := NewQueue(4)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	n := &NetDevice{tx: tx, mtu: 64}
	if err := n.Send(make([]byte, 65)); err == nil {
		t.Fatalf("expected MTU rejection")
	}
}
