package virtio

import (
	"sync"
)

// BlockSize is the fixed DMA buffer size Pool hands out (BlockDevice's
// zero-copy reads use it), grounded on the teacher's dma package using fixed-size
// blocks for VirtIO ring buffers.
const BlockSize = 4096

// Pool is a fixed-size-block DMA buffer allocator, grounded on the
// teacher's dma/alloc.go first-fit free list (container/list of blocks)
// but simplified to a single block size since its only user in this
// package, BlockDevice's zero-copy read path, needs BlockSize-granularity
// buffers (the net and console front-ends register their own buffers with
// Queue.RegisterBuf). Unlike the
// teacher, which hands out raw physical addresses via unsafe.Pointer into
// bare-metal memory, Pool backs each block with an ordinary Go byte slice
// and synthesizes a stable integer "address" so the rest of this package
// can exercise the same descriptor-address plumbing on a hosted build.
type Pool struct {
	mu    sync.Mutex
	base  uint64
	slabs map[uint64][]byte
	free  []uint64
	next  uint64
}

// NewPool creates a pool of n fixed BlockSize buffers, with synthetic
// addresses starting at base (so multiple pools, e.g. one per device, can
// be told apart without colliding).
func NewPool(base uint64, n int) *Pool {
	p := &Pool{
		base:  base,
		slabs: make(map[uint64][]byte, n),
		free:  make([]uint64, 0, n),
		next:  base,
	}
	for i := 0; i < n; i++ {
		p.grow()
	}
	return p
}

func (p *Pool) grow() uint64 {
	addr := p.next
	p.next += BlockSize
	p.slabs[addr] = make([]byte, BlockSize)
	p.free = append(p.free, addr)
	return addr
}

// Alloc returns the address and backing slice of a free block, or ok=false
// if the pool is exhausted.
func (p *Pool) Alloc() (addr uint64, buf []byte, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		return 0, nil, false
	}

	n := len(p.free)
	addr = p.free[n-1]
	p.free = p.free[:n-1]

	return addr, p.slabs[addr], true
}

// Free returns a block to the pool.
func (p *Pool) Free(addr uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.slabs[addr]; !ok {
		return
	}
	p.free = append(p.free, addr)
}

// At resolves a synthetic address back to its backing slice, for the
// simulated device side of tests to read/write DMA contents directly.
func (p *Pool) At(addr uint64) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slabs[addr]
}

// Len reports the pool's total block capacity.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slabs)
}

// FreeCount reports how many blocks are currently unallocated.
func (p *Pool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
