package virtio

import (
	"encoding/binary"
	"fmt"
)

// Block command types, per the VirtIO block device spec.
const (
	blkTypeIn  uint32 = 0 // read
	blkTypeOut uint32 = 1 // write
)

const (
	blkHeaderSize = 16 // type(4) + reserved(4) + sector(8)
	blkStatusOK   = 0
)

// BlockDevice wraps a VirtIO transport Device bound to a single request
// queue, implementing the 16-byte-header read/write flow of section 4.3.
type BlockDevice struct {
	dev   *Device
	queue *Queue
	pool  *Pool
}

// NewBlockDevice attaches to an already Init'd transport Device and its
// request queue, plus a DMA pool sized for zero-copy sector reads.
func NewBlockDevice(dev *Device, queue *Queue, pool *Pool) *BlockDevice {
	return &BlockDevice{dev: dev, queue: queue, pool: pool}
}

func encodeBlkHeader(kind uint32, sector uint64) []byte {
	hdr := make([]byte, blkHeaderSize)
	binary.LittleEndian.PutUint32(hdr[0:4], kind)
	// bytes 4:8 are reserved, left zero.
	binary.LittleEndian.PutUint64(hdr[8:16], sector)
	return hdr
}

// ReadBlock performs a 512-byte sector read: header + data(writable) +
// status(writable), submitted as one chain, waited for, and interpreted.
func (b *BlockDevice) ReadBlock(sector uint64) ([]byte, error) {
	hdr := encodeBlkHeader(blkTypeIn, sector)
	data := make([]byte, 512)
	status := make([]byte, 1)

	head, err := b.queue.AddBuf([]Buf{
		{Addr: b.queue.RegisterBuf(hdr), Len: uint32(len(hdr))},
		{Addr: b.queue.RegisterBuf(data), Len: uint32(len(data)), Writable: true},
		{Addr: b.queue.RegisterBuf(status), Len: 1, Writable: true},
	})
	if err != nil {
		return nil, fmt.Errorf("[VIRTIO-BLK] submit read: %w", err)
	}

	b.dev.Notify(0)

	if _, _, err := b.queue.WaitForUsed(); err != nil {
		return nil, fmt.Errorf("[VIRTIO-BLK] read sector %d: %w", sector, err)
	}
	_ = head

	if status[0] != blkStatusOK {
		return nil, fmt.Errorf("[VIRTIO-BLK] %w: read sector %d status %d", ErrHardware, sector, status[0])
	}

	return data, nil
}

// WriteBlock performs a 512-byte sector write.
func (b *BlockDevice) WriteBlock(sector uint64, data []byte) error {
	if len(data) != 512 {
		return fmt.Errorf("%w: block write requires exactly 512 bytes", ErrInvalidInput)
	}

	hdr := encodeBlkHeader(blkTypeOut, sector)
	status := make([]byte, 1)

	_, err := b.queue.AddBuf([]Buf{
		{Addr: b.queue.RegisterBuf(hdr), Len: uint32(len(hdr))},
		{Addr: b.queue.RegisterBuf(data), Len: uint32(len(data))},
		{Addr: b.queue.RegisterBuf(status), Len: 1, Writable: true},
	})
	if err != nil {
		return fmt.Errorf("[VIRTIO-BLK] submit write: %w", err)
	}

	b.dev.Notify(0)

	if _, _, err := b.queue.WaitForUsed(); err != nil {
		return fmt.Errorf("[VIRTIO-BLK] write sector %d: %w", sector, err)
	}

	if status[0] != blkStatusOK {
		return fmt.Errorf("[VIRTIO-BLK] %w: write sector %d status %d", ErrHardware, sector, status[0])
	}

	return nil
}

// ReadBlockZerocopy reserves a pool buffer, submits a header + data
// (writable, the pool buffer itself) + status (writable) chain, and returns
// the borrow without copying it out, per section 4.3's read_block_zerocopy.
func (b *BlockDevice) ReadBlockZerocopy(sector uint64) (bufIdx uint64, data []byte, err error) {
	addr, buf, ok := b.pool.Alloc()
	if !ok {
		return 0, nil, fmt.Errorf("[VIRTIO-BLK] %w: DMA pool exhausted", ErrOutOfSpace)
	}

	hdr := encodeBlkHeader(blkTypeIn, sector)
	status := make([]byte, 1)

	_, err = b.queue.AddBuf([]Buf{
		{Addr: b.queue.RegisterBuf(hdr), Len: uint32(len(hdr))},
		{Addr: addr, Len: uint32(len(buf)), Writable: true},
		{Addr: b.queue.RegisterBuf(status), Len: 1, Writable: true},
	})
	if err != nil {
		b.pool.Free(addr)
		return 0, nil, fmt.Errorf("[VIRTIO-BLK] submit zerocopy read: %w", err)
	}

	b.dev.Notify(0)

	if _, _, err := b.queue.WaitForUsed(); err != nil {
		b.pool.Free(addr)
		return 0, nil, fmt.Errorf("[VIRTIO-BLK] zerocopy read sector %d: %w", sector, err)
	}

	if status[0] != blkStatusOK {
		b.pool.Free(addr)
		return 0, nil, fmt.Errorf("[VIRTIO-BLK] %w: zerocopy read sector %d status %d", ErrHardware, sector, status[0])
	}

	return addr, buf, nil
}

// ReleaseBuffer returns a zero-copy read's pool buffer, per section 4.3's
// release_buffer.
func (b *BlockDevice) ReleaseBuffer(bufIdx uint64) {
	b.pool.Free(bufIdx)
}
