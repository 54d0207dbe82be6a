package hash

import (
	"errors"

	"arenadb/pkg/arena"
	"arenadb/pkg/entry"
)

// ErrNoEntries is returned by CursorAtStart when the table holds no entries.
var ErrNoEntries = errors.New("hash: table has no entries")

// Cursor points to a spot in a hash table. It visits buckets in ascending
// index order and each chain from head to tail.
type Cursor struct {
	store       *Store
	table       arena.Addr
	bucketCount int32
	bucket      int32      // index of the current bucket
	entryAddr   arena.Addr // current entry, NoAddr only transiently
}

// CursorAtStart returns a cursor to the first entry in the given table,
// or ErrNoEntries if every bucket is empty.
func (s *Store) CursorAtStart(table arena.Addr) (*Cursor, error) {
	bucketCount, err := s.checkTablePtr(table)
	if err != nil {
		return nil, err
	}
	cursor := &Cursor{store: s, table: table, bucketCount: bucketCount}
	cursor.entryAddr = asAddr(s.arena.ReadInt32(s.bucketSlot(table, 0)))
	// If the first bucket is empty, move to the first non-empty one.
	if cursor.entryAddr == arena.NoAddr {
		if cursor.Next() {
			return nil, ErrNoEntries
		}
	}
	return cursor, nil
}

// Next moves the cursor ahead by one entry.
// Returns true if we reach the end of the table.
func (cursor *Cursor) Next() bool {
	// Still inside a chain: follow the next link.
	if cursor.entryAddr != arena.NoAddr {
		if next := cursor.store.entryNext(cursor.entryAddr); next != arena.NoAddr {
			cursor.entryAddr = next
			return false
		}
	}
	// Otherwise advance to the head of the next non-empty bucket.
	for cursor.bucket++; cursor.bucket < cursor.bucketCount; cursor.bucket++ {
		head := asAddr(cursor.store.arena.ReadInt32(cursor.store.bucketSlot(cursor.table, cursor.bucket)))
		if head != arena.NoAddr {
			cursor.entryAddr = head
			return false
		}
	}
	return true
}

// GetEntry returns the entry currently pointed to by the cursor.
func (cursor *Cursor) GetEntry() (entry.Entry, error) {
	if cursor.entryAddr == arena.NoAddr || cursor.bucket >= cursor.bucketCount {
		return entry.Entry{}, errors.New("getEntry: cursor is not pointing at a valid entry")
	}
	return entry.New(
		cursor.store.entryKey(cursor.entryAddr),
		cursor.store.entryValue(cursor.entryAddr),
	), nil
}

// Select returns all entries in the given table in cursor order.
func (s *Store) Select(table arena.Addr) ([]entry.Entry, error) {
	cursor, err := s.CursorAtStart(table)
	if errors.Is(err, ErrNoEntries) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ret := make([]entry.Entry, 0)
	for {
		e, err := cursor.GetEntry()
		if err != nil {
			return nil, err
		}
		ret = append(ret, e)
		if cursor.Next() {
			return ret, nil
		}
	}
}
