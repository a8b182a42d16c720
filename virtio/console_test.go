package virtio

import "testing"

func TestConsolePrefillAndRead(t *testing.T) {
	rx, err := NewQueue(8)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	tx, err := NewQueue(8)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	c := &ConsoleDevice{rx: rx, tx: tx}
	for i := 0; i < int(rx.Size); i++ {
		buf := make([]byte, consoleBufSize)
		if _, err := rx.AddBuf([]Buf{{Addr: rx.RegisterBuf(buf), Len: uint32(len(buf)), Writable: true}}); err != nil {
			t.Fatalf("prefill %d: %v", i, err)
		}
	}

	if rx.FreeCount() != 0 {
		t.Fatalf("FreeCount = %d, want 0 after prefill", rx.FreeCount())
	}

	if _, ok := c.Read(); ok {
		t.Fatalf("Read: expected no completions yet")
	}

	// Simulate the device completing one in-flight RX buffer with
	// host-typed bytes.
	head := uint16(rx.Size) - 1
	msg := []byte("sis> ")
	rx.pushUsed(head, uint32(len(msg)))

	out, ok := c.Read()
	if !ok {
		t.Fatalf("Read: expected data")
	}
	if len(out) != len(msg) {
		t.Fatalf("Read length = %d, want %d", len(out), len(msg))
	}

	// Read must replenish the consumed buffer, leaving InFlightCount
	// unchanged from before the completion.
	if rx.InFlightCount() != int(rx.Size) {
		t.Fatalf("InFlightCount after Read = %d, want %d (replenished)", rx.InFlightCount(), rx.Size)
	}
}

func TestConsoleWriteRejectsEmpty(t *testing.T) {
	c := &ConsoleDevice{}
	if err := c.Write(nil); err != nil {
		t.Fatalf("Write(nil) should be a no-op, got %v", err)
	}
}
