// Package arena implements the fixed-size bump allocator backing model
// weights, activation buffers, and KV cache storage for in-kernel
// inference, per section 4.13. Grounded on
// original_source/crates/kernel/src/llm/arena.rs's LlmArena: a static
// buffer, a monotonic offset, and a high-water mark, with no
// deallocation — only Reset rewinds the bump pointer.
//
// https://github.com/sis-kernel/sisk
//
// Copyright (c) The Sisk Authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
package arena

import (
	"fmt"
	"sync"
)

// Size is the total arena capacity in bytes.
const Size = 8 * 1024 * 1024

// DefaultAlignment is the alignment tensor allocations use absent an
// explicit override (32 bytes: SIMD-friendly and GGUF-compatible, per the
// original's ARENA_ALIGNMENT).
const DefaultAlignment = 32

// Stats reports an arena's cumulative usage.
type Stats struct {
	Offset          int
	HighWaterMark   int
	AllocationCount uint64
}

// Arena is a bump allocator over a single fixed-size buffer: Alloc hands
// out non-overlapping byte ranges with O(1) bookkeeping; Reset rewinds the
// offset without zeroing, matching the original's "freeing is free, not
// safe across aliasing" contract (callers must not retain slices across a
// Reset).
type Arena struct {
	mu            sync.Mutex
	buf           [Size]byte
	offset        int
	highWaterMark int
	allocCount    uint64
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{}
}

// Alloc reserves size bytes aligned to align (which must be a power of
// two), returning the backing slice. Returns an error if align is not a
// power of two, size is zero, or the arena has insufficient remaining
// space.
func (a *Arena) Alloc(size, align int) ([]byte, error) {
	if align <= 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("arena: alignment %d is not a power of two", align)
	}
	if size <= 0 {
		return nil, fmt.Errorf("arena: alloc size must be positive")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	mask := align - 1
	aligned := (a.offset + mask) &^ mask
	if aligned+size > Size {
		return nil, fmt.Errorf("arena: out of memory (want %d bytes at offset %d, capacity %d)", size, aligned, Size)
	}

	a.offset = aligned + size
	a.allocCount++
	if a.offset > a.highWaterMark {
		a.highWaterMark = a.offset
	}
	return a.buf[aligned:a.offset], nil
}

// Reset rewinds the bump pointer to zero without clearing memory,
// releasing every prior allocation. AllocationCount and HighWaterMark are
// cumulative and survive Reset.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offset = 0
}

// Usage reports the current and peak offsets in bytes.
func (a *Arena) Usage() (current, peak int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset, a.highWaterMark
}

// Stats reports cumulative allocator statistics.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		Offset:          a.offset,
		HighWaterMark:   a.highWaterMark,
		AllocationCount: a.allocCount,
	}
}
