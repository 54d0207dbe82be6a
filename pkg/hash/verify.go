package hash

import (
	"encoding/binary"
	"fmt"

	"arenadb/pkg/arena"
	"arenadb/pkg/entry"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash"
)

// TableStats summarizes the reachable state of one table.
type TableStats struct {
	BucketCount     int32
	Entries         int32 // entries reachable from some bucket
	NonEmptyBuckets int32
	MaxChain        int32 // length of the longest chain
	LiveBytes       int64 // header plus reachable entry storage
}

// CheckTable walks every chain of the given table and verifies its
// structural invariants: every link stays inside the arena's used extent and
// on a cell boundary, no entry is reachable twice (which would mean a cycle
// or two chains sharing a tail), and every entry's key hashes to the bucket
// it is filed under. Removed entries are unreachable by construction, so
// they are never visited.
func (s *Store) CheckTable(table arena.Addr) error {
	bucketCount, err := s.checkTablePtr(table)
	if err != nil {
		return err
	}
	used := s.arena.Used()
	visited := bitset.New(uint(used / PTRSIZE))
	for i := int32(0); i < bucketCount; i++ {
		current := asAddr(s.arena.ReadInt32(s.bucketSlot(table, i)))
		for current != arena.NoAddr {
			if current < 0 || int32(current)%PTRSIZE != 0 || int32(current)+ENTRYSIZE > used {
				return fmt.Errorf("hash: bucket %d links to bad entry address %d", i, current)
			}
			cell := uint(current) / uint(PTRSIZE)
			if visited.Test(cell) {
				return fmt.Errorf("hash: bucket %d: entry %d reachable twice (cycle or shared tail)", i, current)
			}
			visited.Set(cell)
			if got := bucketIndex(s.entryKey(current), bucketCount); got != i {
				return fmt.Errorf("hash: entry %d filed under bucket %d but hashes to %d", current, i, got)
			}
			current = s.entryNext(current)
		}
	}
	return nil
}

// Stats gathers reachability statistics for the given table.
func (s *Store) Stats(table arena.Addr) (TableStats, error) {
	bucketCount, err := s.checkTablePtr(table)
	if err != nil {
		return TableStats{}, err
	}
	stats := TableStats{BucketCount: bucketCount}
	for i := int32(0); i < bucketCount; i++ {
		chain := int32(0)
		for current := asAddr(s.arena.ReadInt32(s.bucketSlot(table, i))); current != arena.NoAddr; current = s.entryNext(current) {
			chain++
		}
		if chain > 0 {
			stats.NonEmptyBuckets++
			stats.Entries += chain
		}
		if chain > stats.MaxChain {
			stats.MaxChain = chain
		}
	}
	stats.LiveBytes = int64(BUCKET_ARRAY_OFFSET) + int64(bucketCount)*int64(PTRSIZE) +
		int64(stats.Entries)*int64(ENTRYSIZE)
	return stats, nil
}

// Fingerprint returns an xxHash digest over the table's reachable contents
// in traversal order (buckets ascending, chains head to tail). Two tables
// with the same bucket layout and contents produce the same fingerprint.
func (s *Store) Fingerprint(table arena.Addr) (uint64, error) {
	bucketCount, err := s.checkTablePtr(table)
	if err != nil {
		return 0, err
	}
	digest := xxhash.New()
	buf := make([]byte, PTRSIZE)
	for i := int32(0); i < bucketCount; i++ {
		binary.LittleEndian.PutUint32(buf, uint32(i))
		digest.Write(buf)
		for current := asAddr(s.arena.ReadInt32(s.bucketSlot(table, i))); current != arena.NoAddr; current = s.entryNext(current) {
			e := entry.New(s.entryKey(current), s.entryValue(current))
			digest.Write(e.Marshal())
		}
	}
	return digest.Sum64(), nil
}
