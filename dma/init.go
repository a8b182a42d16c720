// First-fit memory allocator for DMA buffers
// https://github.com/sis-kernel/sisk
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma

import (
	"container/list"
)

// NewRegion carves out an independent memory region for DMA buffer
// allocation, the caller must guarantee that the passed range is never used
// by the Go runtime or by any other Region.
//
// The unique flag marks the region as the sole owner of its address range
// (as opposed to a region instantiated over memory that is also tracked
// elsewhere, e.g. a device-exposed MMIO window carved out of a region
// already under Go runtime management). It does not affect allocation
// behavior and exists so callers can document their intent at the call
// site.
func NewRegion(start uint, size int, unique bool) (r *Region, err error) {
	r = &Region{
		start: start,
		size:  uint(size),
	}

	r.freeBlocks = list.New()
	r.freeBlocks.PushFront(&block{
		addr: start,
		size: uint(size),
	})

	r.usedBlocks = make(map[uint]*block)

	_ = unique

	return r, nil
}

// Init initializes the global memory region for DMA buffer allocation, the
// application must guarantee that the passed memory range is never used by
// the Go runtime (defining runtime.ramStart and runtime.ramSize
// accordingly).
//
// The global region is used throughout the package for all DMA allocations
// performed through the package-level helper functions. Separate DMA
// regions can be allocated in other areas (e.g. external RAM, device BARs)
// with NewRegion().
func Init(start uint, size int) {
	r, err := NewRegion(start, size, true)

	if err != nil {
		panic("dma: could not initialize global region")
	}

	dma = r
}

// Reserve is the equivalent of Region.Reserve() on the global DMA region.
func Reserve(size int, align int) (addr uint, buf []byte) {
	return dma.Reserve(size, align)
}

// Reserved is the equivalent of Region.Reserved() on the global DMA region.
func Reserved(buf []byte) (res bool, addr uint) {
	return dma.Reserved(buf)
}

// Alloc is the equivalent of Region.Alloc() on the global DMA region.
func Alloc(buf []byte, align int) (addr uint) {
	return dma.Alloc(buf, align)
}

// Read is the equivalent of Region.Read() on the global DMA region.
func Read(addr uint, off int, buf []byte) {
	dma.Read(addr, off, buf)
}

// Write is the equivalent of Region.Write() on the global DMA region.
func Write(addr uint, off int, buf []byte) {
	dma.Write(addr, off, buf)
}

// Free is the equivalent of Region.Free() on the global DMA region.
func Free(addr uint) {
	dma.Free(addr)
}

// Release is the equivalent of Region.Release() on the global DMA region.
func Release(addr uint) {
	dma.Release(addr)
}
