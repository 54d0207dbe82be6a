// Package hash implements a chained hash table whose entire state lives in
// an arena: the bucket directory and all entries are stored as 4-byte cells,
// linked by integer offsets instead of native pointers. Tables are identified
// by the address of their header region.
package hash

import (
	"fmt"
	"io"

	"arenadb/pkg/arena"
)

// Arena is the memory collaborator the engine runs against. The engine owns
// no memory itself; every operation recomputes addresses from the table
// handle using these primitives.
type Arena interface {
	Alloc(size int32) (arena.Addr, error)
	ReadInt32(addr arena.Addr) int32
	WriteInt32(addr arena.Addr, value int32)
	Used() int32
	Capacity() int32
}

// Store provides hash table operations over one arena. Any number of tables
// can coexist in the same arena.
type Store struct {
	arena Arena
}

// NewStore returns a Store backed by the given arena.
func NewStore(a Arena) *Store {
	return &Store{arena: a}
}

// GetArena returns the arena backing this store.
func (s *Store) GetArena() Arena {
	return s.arena
}

// CreateTable allocates an empty table with the requested number of buckets,
// returning its handle. A non-positive bucket count is replaced with
// DEFAULT_BUCKET_COUNT. The bucket count is fixed for the table's lifetime;
// there is no resizing.
func (s *Store) CreateTable(bucketCount int32) (arena.Addr, error) {
	if bucketCount <= 0 {
		bucketCount = DEFAULT_BUCKET_COUNT
	}
	headerSize := BUCKET_ARRAY_OFFSET + bucketCount*PTRSIZE
	tableAddr, err := s.arena.Alloc(headerSize)
	if err != nil {
		return arena.NoAddr, err
	}
	s.arena.WriteInt32(tableAddr+arena.Addr(BUCKET_COUNT_OFFSET), bucketCount)
	for i := int32(0); i < bucketCount; i++ {
		s.arena.WriteInt32(s.bucketSlot(tableAddr, i), NIL_PTR)
	}
	return tableAddr, nil
}

// GetBucketCount returns the number of buckets in the given table.
func (s *Store) GetBucketCount(table arena.Addr) (int32, error) {
	return s.checkTablePtr(table)
}

// Put inserts or updates the value for the given key. An existing entry is
// updated in place; a new key is linked at the head of its bucket's chain,
// so chains are ordered most-recent-insert first. Chains grow without bound;
// the table never rehashes.
func (s *Store) Put(table arena.Addr, key int32, value int32) error {
	bucketCount, err := s.checkTablePtr(table)
	if err != nil {
		return err
	}
	slot := s.bucketSlot(table, bucketIndex(key, bucketCount))
	head := asAddr(s.arena.ReadInt32(slot))

	if entryAddr := s.findEntry(head, key); entryAddr != arena.NoAddr {
		s.arena.WriteInt32(entryAddr+arena.Addr(ENTRY_VALUE_OFFSET), value)
		return nil
	}

	newEntry, err := s.createEntry(key, value)
	if err != nil {
		return err
	}
	s.arena.WriteInt32(newEntry+arena.Addr(ENTRY_NEXT_OFFSET), int32(head))
	s.arena.WriteInt32(slot, int32(newEntry))
	return nil
}

// Get returns the value stored for the given key. The second return value
// reports whether the key was present.
func (s *Store) Get(table arena.Addr, key int32) (int32, bool, error) {
	bucketCount, err := s.checkTablePtr(table)
	if err != nil {
		return 0, false, err
	}
	head := asAddr(s.arena.ReadInt32(s.bucketSlot(table, bucketIndex(key, bucketCount))))
	entryAddr := s.findEntry(head, key)
	if entryAddr == arena.NoAddr {
		return 0, false, nil
	}
	return s.arena.ReadInt32(entryAddr + arena.Addr(ENTRY_VALUE_OFFSET)), true, nil
}

// Contains reports whether the given key is present in the table.
func (s *Store) Contains(table arena.Addr, key int32) (bool, error) {
	_, found, err := s.Get(table, key)
	return found, err
}

// Remove unlinks the entry with the given key from its chain. Removing an
// absent key is a no-op. The unlinked entry's storage is not reclaimed; it
// becomes unreachable but its cells are left untouched.
func (s *Store) Remove(table arena.Addr, key int32) error {
	bucketCount, err := s.checkTablePtr(table)
	if err != nil {
		return err
	}
	slot := s.bucketSlot(table, bucketIndex(key, bucketCount))
	head := asAddr(s.arena.ReadInt32(slot))
	if head == arena.NoAddr {
		return nil
	}

	// Head of the chain: repoint the bucket slot.
	if s.entryKey(head) == key {
		s.arena.WriteInt32(slot, s.arena.ReadInt32(head+arena.Addr(ENTRY_NEXT_OFFSET)))
		return nil
	}

	// Otherwise splice out the matching entry behind the current one.
	current := head
	for current != arena.NoAddr {
		next := s.entryNext(current)
		if next == arena.NoAddr {
			break
		}
		if s.entryKey(next) == key {
			nextNext := s.arena.ReadInt32(next + arena.Addr(ENTRY_NEXT_OFFSET))
			s.arena.WriteInt32(current+arena.Addr(ENTRY_NEXT_OFFSET), nextNext)
			return nil
		}
		current = next
	}
	return nil
}

// Print writes a rendering of every non-empty bucket to the specified writer:
// the bucket index followed by the chain's (key:value) pairs in head-to-tail
// order. Diagnostic only.
func (s *Store) Print(table arena.Addr, w io.Writer) error {
	bucketCount, err := s.checkTablePtr(table)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "HashTable (buckets: %d):\n", bucketCount)
	for i := int32(0); i < bucketCount; i++ {
		head := asAddr(s.arena.ReadInt32(s.bucketSlot(table, i)))
		if head == arena.NoAddr {
			continue
		}
		fmt.Fprintf(w, "  Bucket %d: ", i)
		s.printChain(head, w)
		io.WriteString(w, "\n")
	}
	return nil
}

// printChain renders one chain as (key:value) pairs joined by " -> ".
func (s *Store) printChain(head arena.Addr, w io.Writer) {
	for current := head; current != arena.NoAddr; current = s.entryNext(current) {
		if current != head {
			io.WriteString(w, " -> ")
		}
		fmt.Fprintf(w, "(%d:%d)", s.entryKey(current), s.entryValue(current))
	}
}

/////////////////////////////////////////////////////////////////////////////
////////////////////////// Store Helper Functions ///////////////////////////
/////////////////////////////////////////////////////////////////////////////

// asAddr converts a stored cell value back into an address.
func asAddr(v int32) arena.Addr {
	return arena.Addr(v)
}

// bucketSlot returns the address of the bucket slot at the given index.
func (s *Store) bucketSlot(table arena.Addr, index int32) arena.Addr {
	return table + arena.Addr(BUCKET_ARRAY_OFFSET+index*PTRSIZE)
}

// entryKey returns the key of the entry at the given address.
func (s *Store) entryKey(entryAddr arena.Addr) int32 {
	return s.arena.ReadInt32(entryAddr + arena.Addr(ENTRY_KEY_OFFSET))
}

// entryValue returns the value of the entry at the given address.
func (s *Store) entryValue(entryAddr arena.Addr) int32 {
	return s.arena.ReadInt32(entryAddr + arena.Addr(ENTRY_VALUE_OFFSET))
}

// entryNext returns the address of the entry following the given one in its
// chain, or NoAddr at the end of the chain.
func (s *Store) entryNext(entryAddr arena.Addr) arena.Addr {
	return asAddr(s.arena.ReadInt32(entryAddr + arena.Addr(ENTRY_NEXT_OFFSET)))
}

// createEntry allocates a fresh entry with an empty next link.
func (s *Store) createEntry(key int32, value int32) (arena.Addr, error) {
	entryAddr, err := s.arena.Alloc(ENTRYSIZE)
	if err != nil {
		return arena.NoAddr, err
	}
	s.arena.WriteInt32(entryAddr+arena.Addr(ENTRY_KEY_OFFSET), key)
	s.arena.WriteInt32(entryAddr+arena.Addr(ENTRY_VALUE_OFFSET), value)
	s.arena.WriteInt32(entryAddr+arena.Addr(ENTRY_NEXT_OFFSET), NIL_PTR)
	return entryAddr, nil
}

// findEntry walks a chain looking for the entry with the given key,
// returning NoAddr if no entry matches.
func (s *Store) findEntry(head arena.Addr, key int32) arena.Addr {
	for current := head; current != arena.NoAddr; current = s.entryNext(current) {
		if s.entryKey(current) == key {
			return current
		}
	}
	return arena.NoAddr
}
