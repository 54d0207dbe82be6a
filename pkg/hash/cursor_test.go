package hash_test

import (
	"errors"
	"testing"

	"arenadb/pkg/hash"
)

func TestCursor(t *testing.T) {
	t.Run("VisitsEveryEntry", testCursorVisitsEveryEntry)
	t.Run("EmptyTable", testCursorEmptyTable)
	t.Run("SkipsEmptyBuckets", testCursorSkipsEmptyBuckets)
}

func testCursorVisitsEveryEntry(t *testing.T) {
	store, _ := setupStore(t)
	table := createTable(t, store, 8)

	expected := make(map[int32]int32)
	for i := int32(0); i < 100; i++ {
		putEntry(t, store, table, i, i*2)
		expected[i] = i * 2
	}

	cursor, err := store.CursorAtStart(table)
	if err != nil {
		t.Fatal("Failed to open cursor:", err)
	}
	seen := make(map[int32]int32)
	for {
		e, err := cursor.GetEntry()
		if err != nil {
			t.Fatal("Failed to read entry from cursor:", err)
		}
		if _, dup := seen[e.Key]; dup {
			t.Fatalf("Cursor visited key %d twice", e.Key)
		}
		seen[e.Key] = e.Value
		if cursor.Next() {
			break
		}
	}
	if len(seen) != len(expected) {
		t.Fatalf("Expected cursor to visit %d entries, visited %d", len(expected), len(seen))
	}
	for k, v := range expected {
		if seen[k] != v {
			t.Errorf("Expected cursor to see (%d, %d), saw value %d", k, v, seen[k])
		}
	}
}

func testCursorEmptyTable(t *testing.T) {
	store, _ := setupStore(t)
	table := createTable(t, store, 8)

	_, err := store.CursorAtStart(table)
	if !errors.Is(err, hash.ErrNoEntries) {
		t.Errorf("Expected ErrNoEntries for an empty table, got %v", err)
	}

	entries, err := store.Select(table)
	if err != nil {
		t.Fatal("Failed to select from empty table:", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func testCursorSkipsEmptyBuckets(t *testing.T) {
	store, _ := setupStore(t)
	table := createTable(t, store, 16)

	// Sparse table: only buckets 3 and 11 are populated.
	putEntry(t, store, table, 3, 30)
	putEntry(t, store, table, 11, 110)

	entries, err := store.Select(table)
	if err != nil {
		t.Fatal("Failed to select:", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	// Cursor order is bucket-ascending.
	if entries[0].Key != 3 || entries[0].Value != 30 {
		t.Errorf("Expected first entry (3, 30), got (%d, %d)", entries[0].Key, entries[0].Value)
	}
	if entries[1].Key != 11 || entries[1].Value != 110 {
		t.Errorf("Expected second entry (11, 110), got (%d, %d)", entries[1].Key, entries[1].Value)
	}
}
