package virtio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Descriptor flags, grounded on the teacher's virtio/descriptor.go
// (Next/Write/Indirect) and original_source's VIRTQ_DESC_F_* constants.
const (
	DescNext     uint16 = 1
	DescWrite    uint16 = 2
	DescIndirect uint16 = 4
)

// Errors returned by AddBuf (ErrInvalidInput, ErrOutOfSpace) and by Device
// setup (ErrHardware), per section 4.3.
var (
	ErrInvalidInput = errors.New("virtio: empty descriptor chain")
	ErrOutOfSpace   = errors.New("virtio: queue has no free descriptors")
	ErrHardware     = errors.New("virtio: hardware error")
)

// Descriptor mirrors the on-the-wire VirtIO descriptor ring entry layout
// (teacher virtio/descriptor.go's Buffer/Descriptor struct).
type Descriptor struct {
	Address uint64
	Length  uint32
	Flags   uint16
	Next    uint16
}

// Buf is one segment of a descriptor chain: a guest-physical address,
// length, and whether the device may write to it.
type Buf struct {
	Addr     uint64
	Len      uint32
	Writable bool
}

// Queue is a split virtqueue: a descriptor table, available ring and used
// ring, sized to a power-of-two queue size (section 3/4.3). The free list
// plus in-flight descriptors always total Size (the conservation invariant
// of section 8).
type Queue struct {
	mu sync.Mutex

	Size uint16

	desc []Descriptor

	// DescTableAddr/AvailRingAddr/UsedRingAddr are the guest-physical
	// addresses published to the device at queue setup; they are nonzero
	// once the queue is backed by DMA memory (see NewQueueAt).
	DescTableAddr uint64
	AvailRingAddr uint64
	UsedRingAddr  uint64

	avail struct {
		flags uint16
		// shadowIdx mirrors the in-memory available index without an
		// MMIO read on every publish (section 4.3).
		shadowIdx uint32
		ring      []uint16
	}

	used struct {
		lastSeenIdx uint32
		ring        []usedElem
	}

	free    []uint16 // free descriptor indices
	inFlight map[uint16]bool

	mem     map[uint64][]byte
	memNext uint64
}

// queueAddrBase separates a queue's ad hoc buffer registrations (headers,
// status bytes, RX/TX frames passed by value from callers) from the
// device-scale synthetic addresses a Pool hands out, so the two schemes
// never collide within one Device's descriptor table.
const queueAddrBase = 1 << 48

type usedElem struct {
	id  uint16
	len uint32
}

// NewQueue allocates an in-process split virtqueue of the given power-of-two
// size. Real device backing (MMIO-visible descriptor/avail/used memory) is
// wired in by NewQueueAt when driven against actual DMA-allocated regions;
// NewQueue alone is sufficient for the conservation and ordering invariants
// tested in section 8, which do not depend on physical addressing.
func NewQueue(size uint16) (*Queue, error) {
	if size == 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: queue size %d is not a power of two", ErrInvalidInput, size)
	}

	q := &Queue{
		Size:     size,
		desc:     make([]Descriptor, size),
		free:     make([]uint16, size),
		inFlight: make(map[uint16]bool, size),
	}

	for i := range q.free {
		q.free[i] = uint16(size) - 1 - uint16(i)
	}
	q.avail.ring = make([]uint16, size)
	q.used.ring = make([]usedElem, 0, size)
	q.mem = make(map[uint64][]byte)
	q.memNext = queueAddrBase

	return q, nil
}

// RegisterBuf assigns a synthetic address to an arbitrary byte slice so it
// can be referenced by a Descriptor's Address field and later resolved by
// the simulated device side of a test. Real hardware instead uses the
// slice's physical address directly; this indirection only exists because
// a hosted Go build has no notion of guest-physical memory.
func (q *Queue) RegisterBuf(buf []byte) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	addr := q.memNext
	q.memNext++
	q.mem[addr] = buf
	return addr
}

// ResolveAddr looks up a previously registered buffer, or a Pool-owned one
// if the address falls outside this queue's registration range.
func (q *Queue) ResolveAddr(addr uint64, pool *Pool) []byte {
	q.mu.Lock()
	buf, ok := q.mem[addr]
	q.mu.Unlock()

	if ok {
		return buf
	}
	if pool != nil {
		return pool.At(addr)
	}
	return nil
}

// NewQueueAt allocates a queue and records the guest-physical addresses of
// its three backing regions, as written to the device's queue-address
// registers by Device.SetupQueue.
func NewQueueAt(size uint16, descAddr, availAddr, usedAddr uint64) (*Queue, error) {
	q, err := NewQueue(size)
	if err != nil {
		return nil, err
	}
	q.DescTableAddr = descAddr
	q.AvailRingAddr = availAddr
	q.UsedRingAddr = usedAddr
	return q, nil
}

func (q *Queue) allocDesc() (uint16, bool) {
	n := len(q.free)
	if n == 0 {
		return 0, false
	}
	idx := q.free[n-1]
	q.free = q.free[:n-1]
	q.inFlight[idx] = true
	return idx, true
}

func (q *Queue) freeDesc(idx uint16) {
	delete(q.inFlight, idx)
	q.free = append(q.free, idx)
}

// AddBuf allocates one descriptor per segment, links them with DescNext,
// writes the head to the available ring at the next slot, publishes a
// memory fence (via the atomic store below) between the ring-data write and
// the index bump, then increments the available index. Returns the head
// descriptor id.
func (q *Queue) AddBuf(chain []Buf) (head uint16, err error) {
	if len(chain) == 0 {
		return 0, ErrInvalidInput
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.free) < len(chain) {
		return 0, ErrOutOfSpace
	}

	ids := make([]uint16, len(chain))
	for i := range chain {
		idx, ok := q.allocDesc()
		if !ok {
			// Should not happen given the length check above, but undo
			// any partial allocation defensively.
			for _, done := range ids[:i] {
				q.freeDesc(done)
			}
			return 0, ErrOutOfSpace
		}
		ids[i] = idx
	}

	for i, buf := range chain {
		d := Descriptor{Address: buf.Addr, Length: buf.Len}
		if buf.Writable {
			d.Flags |= DescWrite
		}
		if i < len(chain)-1 {
			d.Flags |= DescNext
			d.Next = ids[i+1]
		}
		q.desc[ids[i]] = d
	}

	head = ids[0]

	slot := q.avail.shadowIdx % uint32(q.Size)
	q.avail.ring[slot] = head

	// Compiler fence: the descriptor-chain writes above must be globally
	// visible before the available index advances below (section 5). The
	// atomic add below is the fence: Go's memory model guarantees writes
	// preceding an atomic store are visible to any reader that observes
	// the store.
	atomic.AddUint32(&q.avail.shadowIdx, 1)

	return head, nil
}

// HasUsedBuf performs one read of the used index to check for completed
// requests, without mutating queue state.
func (q *Queue) HasUsedBuf() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return uint32(len(q.used.ring)) > q.used.lastSeenIdx
}

// GetUsedBuf polls the used ring; if the used index has advanced it reads
// the head id and byte count, frees the chain, and bumps lastSeenIdx.
func (q *Queue) GetUsedBuf() (headID uint16, lenWritten uint32, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if uint32(len(q.used.ring)) <= q.used.lastSeenIdx {
		return 0, 0, false
	}

	elem := q.used.ring[q.used.lastSeenIdx]
	q.used.lastSeenIdx++

	q.freeChain(elem.id)

	return elem.id, elem.len, true
}

func (q *Queue) freeChain(head uint16) {
	id := head
	for {
		d := q.desc[id]
		q.freeDesc(id)
		if d.Flags&DescNext == 0 {
			return
		}
		id = d.Next
	}
}

// waitForUsedBudget bounds WaitForUsed's spin, per section 4.3 (~5e7
// iterations); we express the same bound as a wall-clock budget since a
// hosted Go build cannot spin a fixed instruction count meaningfully.
const waitForUsedBudget = 2 * time.Second

// WaitForUsed spins calling GetUsedBuf until a completion is observed or
// the bounded budget elapses.
func (q *Queue) WaitForUsed() (headID uint16, lenWritten uint32, err error) {
	start := time.Now()

	for {
		if id, n, ok := q.GetUsedBuf(); ok {
			return id, n, nil
		}
		if time.Since(start) >= waitForUsedBudget {
			return 0, 0, fmt.Errorf("virtio: %w waiting for used buffer", errTimeout)
		}
	}
}

var errTimeout = errors.New("timeout")

// pushUsed is the device-side (or, in tests, simulated-device-side)
// completion callback: it appends a used-ring entry and advances the used
// index, which GetUsedBuf observes via an acquire read.
func (q *Queue) pushUsed(id uint16, length uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.used.ring = append(q.used.ring, usedElem{id: id, len: length})
}

// FreeCount reports the number of descriptors currently on the free list.
func (q *Queue) FreeCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.free)
}

// InFlightCount reports the number of descriptors currently allocated to an
// in-flight chain.
func (q *Queue) InFlightCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inFlight)
}
