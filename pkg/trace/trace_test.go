package trace_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arenadb/pkg/arena"
	"arenadb/pkg/hash"
	"arenadb/pkg/trace"
)

// setupTrace returns a logger writing to a fresh trace file in a temp dir.
func setupTrace(t *testing.T) (*trace.Logger, string) {
	t.Parallel()
	filename := filepath.Join(t.TempDir(), "test.trace")
	logger, err := trace.NewLogger(filename)
	if err != nil {
		t.Fatal("Failed to create trace logger:", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, filename
}

// logSampleOps journals a small history: create, three puts, one remove.
func logSampleOps(t *testing.T, logger *trace.Logger) {
	if err := logger.Create(0, 4); err != nil {
		t.Fatal("Failed to log create:", err)
	}
	for _, op := range [][2]int32{{1, 100}, {5, 200}, {9, 300}} {
		if err := logger.Put(0, op[0], op[1]); err != nil {
			t.Fatal("Failed to log put:", err)
		}
	}
	if err := logger.Remove(0, 5); err != nil {
		t.Fatal("Failed to log remove:", err)
	}
}

func TestLoggerAppendsRecords(t *testing.T) {
	logger, filename := setupTrace(t)
	logSampleOps(t, logger)

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal("Failed to read trace file:", err)
	}
	expected := "create 0 4\nput 0 1 100\nput 0 5 200\nput 0 9 300\nremove 0 5\n"
	if string(data) != expected {
		t.Errorf("Expected trace contents %q, got %q", expected, string(data))
	}
}

func TestTail(t *testing.T) {
	logger, filename := setupTrace(t)
	logSampleOps(t, logger)

	records, err := trace.Tail(filename, 2)
	if err != nil {
		t.Fatal("Failed to tail trace:", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0] != "put 0 9 300" || records[1] != "remove 0 5" {
		t.Errorf("Expected the last two records oldest first, got %v", records)
	}

	// Asking for more records than exist returns the whole trace.
	all, err := trace.Tail(filename, 100)
	if err != nil {
		t.Fatal("Failed to tail trace:", err)
	}
	if len(all) != 5 {
		t.Errorf("Expected 5 records, got %d", len(all))
	}
}

func TestRecover(t *testing.T) {
	logger, filename := setupTrace(t)
	logSampleOps(t, logger)

	store := hash.NewStore(arena.New(1 << 16))
	tables, err := trace.Recover(store, filename)
	if err != nil {
		t.Fatal("Failed to recover trace:", err)
	}
	table, ok := tables[0]
	if !ok {
		t.Fatal("Expected the traced table handle 0 to be remapped")
	}

	for _, expected := range [][2]int32{{1, 100}, {9, 300}} {
		val, found, err := store.Get(table, expected[0])
		if err != nil {
			t.Fatal("Failed to get recovered entry:", err)
		}
		if !found || val != expected[1] {
			t.Errorf("Expected recovered entry (%d, %d), got (%d, %t)", expected[0], expected[1], val, found)
		}
	}
	// The removal was replayed too.
	if found, err := store.Contains(table, 5); err != nil || found {
		t.Errorf("Expected key 5 to stay removed after recovery (found=%t, err=%v)", found, err)
	}
}

func TestRecoverRejectsMalformedTrace(t *testing.T) {
	t.Parallel()
	filename := filepath.Join(t.TempDir(), "bad.trace")
	if err := os.WriteFile(filename, []byte("put 0 1 100\n"), 0666); err != nil {
		t.Fatal(err)
	}

	store := hash.NewStore(arena.New(1 << 16))
	_, err := trace.Recover(store, filename)
	if err == nil || !strings.Contains(err.Error(), "unknown table") {
		t.Errorf("Expected an unknown-table error, got %v", err)
	}
}

func TestCheckpoint(t *testing.T) {
	logger, filename := setupTrace(t)
	logSampleOps(t, logger)

	dst := filepath.Join(t.TempDir(), "checkpoint")
	if err := trace.Checkpoint(filepath.Dir(filename), dst); err != nil {
		t.Fatal("Failed to checkpoint trace folder:", err)
	}

	original, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	copied, err := os.ReadFile(filepath.Join(dst, filepath.Base(filename)))
	if err != nil {
		t.Fatal("Failed to read checkpointed trace:", err)
	}
	if string(copied) != string(original) {
		t.Error("Expected the checkpointed trace to match the original")
	}
}
