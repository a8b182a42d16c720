package profiler

import "github.com/btcsuite/btcutil/base58"

// symbolRange is one entry in the static address-range-to-name table used
// by DefaultResolver, modeled on original_source's resolve_symbol address
// bands.
type symbolRange struct {
	low, high uint64
	name      string
}

var kernelSymbolTable = []symbolRange{
	{0x40000000, 0x40003FFF, "mm.buddy.allocate"},
	{0x40004000, 0x40007FFF, "mm.slab.allocate"},
	{0x40008000, 0x4000BFFF, "mm.pagefault"},
	{0x40010000, 0x40013FFF, "sched.schedule"},
	{0x40014000, 0x40017FFF, "sched.contextswitch"},
	{0x40020000, 0x40023FFF, "virtio.block.read"},
	{0x40024000, 0x40027FFF, "virtio.queue.addbuf"},
	{0x40030000, 0x40033FFF, "syscall.handle"},
	{0x40040000, 0x40043FFF, "bus.publish"},
	{0x40044000, 0x40047FFF, "autonomy.tick"},
	{0x40050000, 0x40053FFF, "trap.handler"},
}

// DefaultResolver looks addr up in the compile-time static kernel symbol
// table. It is the SymbolResolver a Profiler is normally constructed with.
func DefaultResolver(addr uint64) (string, bool) {
	for _, r := range kernelSymbolTable {
		if addr >= r.low && addr <= r.high {
			return r.name, true
		}
	}
	return "", false
}

// SymbolCacheKey derives a compact, base58-encoded cache key for a
// persisted report's symbol table, so repeated `profreport` calls against
// an unchanged binary can reuse a previously resolved symbol set instead of
// re-walking kernelSymbolTable on every bucket.
func SymbolCacheKey(addr uint64) string {
	b := []byte{
		byte(addr >> 56), byte(addr >> 48), byte(addr >> 40), byte(addr >> 32),
		byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr),
	}
	return base58.Encode(b)
}
