// Package arena implements a flat, bump-allocated memory region addressed by
// integer offsets. It is the backing store for the hash table engine: callers
// receive offsets from Alloc and read/write 4-byte cells at those offsets.
package arena

import (
	"encoding/binary"
	"errors"
	"fmt"

	"arenadb/pkg/config"

	"github.com/ncw/directio"
)

// Addr is an offset into an arena's buffer. Addresses are plain integers so
// that structures stored in the arena stay valid if the buffer is relocated;
// the distinct type keeps them from being mixed up with ordinary values.
type Addr int32

// NoAddr is the address for when there is no region being referenced.
const NoAddr Addr = -1

// CellSize is the width in bytes of a single arena cell.
const CellSize int32 = 4

// Error for when an allocation does not fit in the arena's remaining space.
var ErrOutOfMemory = errors.New("arena: out of memory")

// Arena is a single contiguous buffer carved up by a bump allocator.
// Allocated regions are never moved, freed, or reused.
type Arena struct {
	data []byte // The backing buffer.
	used int32  // High-water mark; everything below it has been handed out.
}

// New constructs an Arena with the given capacity in bytes.
// A non-positive capacity is replaced with the configured default.
func New(capacity int32) *Arena {
	if capacity <= 0 {
		capacity = config.DefaultArenaCapacity
	}
	// Aligned allocation keeps cells from straddling block boundaries.
	return &Arena{data: directio.AlignedBlock(int(capacity))}
}

// Alloc reserves size bytes and returns the address of the new region.
// Regions come from a zero-initialized buffer, but bytes written before a
// Reset persist into regions handed out afterwards. Returns ErrOutOfMemory
// if the arena cannot fit the request.
func (a *Arena) Alloc(size int32) (Addr, error) {
	if size <= 0 {
		return NoAddr, fmt.Errorf("arena: invalid allocation size %d", size)
	}
	if a.used+size > int32(len(a.data)) {
		return NoAddr, ErrOutOfMemory
	}
	addr := Addr(a.used)
	a.used += size
	return addr, nil
}

// ReadInt32 returns the 4-byte cell at the given address.
// The caller guarantees addr+4 <= capacity.
func (a *Arena) ReadInt32(addr Addr) int32 {
	return int32(binary.LittleEndian.Uint32(a.data[addr : addr+Addr(CellSize)]))
}

// WriteInt32 stores value into the 4-byte cell at the given address.
// The caller guarantees addr+4 <= capacity.
func (a *Arena) WriteInt32(addr Addr, value int32) {
	binary.LittleEndian.PutUint32(a.data[addr:addr+Addr(CellSize)], uint32(value))
}

// Used returns the arena's current high-water mark.
func (a *Arena) Used() int32 {
	return a.used
}

// Capacity returns the total size of the arena's buffer.
func (a *Arena) Capacity() int32 {
	return int32(len(a.data))
}

// Reset truncates the used extent back to zero. Previously handed out
// addresses become stale and must be rejected by consumers that validate
// against Used.
func (a *Arena) Reset() {
	a.used = 0
}
