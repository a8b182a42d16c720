package virtio

import (
	"encoding/binary"
	"testing"
)

func TestEncodeBlkHeader(t *testing.T) {
	hdr := encodeBlkHeader(blkTypeIn, 0x1122334455667788)

	if len(hdr) != blkHeaderSize {
		t.Fatalf("header length = %d, want %d", len(hdr), blkHeaderSize)
	}
	if got := binary.LittleEndian.Uint32(hdr[0:4]); got != blkTypeIn {
		t.Fatalf("type = %#x, want %#x", got, blkTypeIn)
	}
	if got := binary.LittleEndian.Uint64(hdr[8:16]); got != 0x1122334455667788 {
		t.Fatalf("sector = %#x, want %#x", got, 0x1122334455667788)
	}
}

func TestBlockDMAPoolZerocopyRoundTrip(t *testing.T) {
	pool := NewPool(0, 4)

	addr, buf, ok := pool.Alloc()
	if !ok {
		t.Fatalf("pool.Alloc failed")
	}
	if len(buf) != BlockSize {
		t.Fatalf("buf length = %d, want %d", len(buf), BlockSize)
	}

	// Simulate the device writing sector data into the DMA buffer.
	copy(buf, []byte("sector-payload"))

	readBack := pool.At(addr)
	if string(readBack[:len("sector-payload")]) != "sector-payload" {
		t.Fatalf("pool.At returned stale data")
	}

	pool.Free(addr)
	if pool.FreeCount() != 4 {
		t.Fatalf("FreeCount after Free = %d, want 4", pool.FreeCount())
	}
}
