package hash

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"arenadb/pkg/arena"
	"arenadb/pkg/repl"
	"arenadb/pkg/trace"
)

// StoreRepl creates a REPL exposing the given store. If logger is non-nil,
// every mutating command is journaled to it. traceFile names the journal for
// the recent/checkpoint commands; it may be empty when logger is nil.
func StoreRepl(store *Store, logger *trace.Logger, traceFile string) *repl.REPL {
	r := repl.NewRepl()
	r.AddCommand("create", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return HandleCreate(store, logger, payload)
	}, "Create a table. usage: create <buckets>")

	r.AddCommand("put", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return "", HandlePut(store, logger, payload)
	}, "Insert or update an element. usage: put <table> <key> <value>")

	r.AddCommand("get", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return HandleGet(store, payload)
	}, "Get an element's value. usage: get <table> <key>")

	r.AddCommand("contains", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return HandleContains(store, payload)
	}, "Check whether a key is present. usage: contains <table> <key>")

	r.AddCommand("remove", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return "", HandleRemove(store, logger, payload)
	}, "Remove an element. usage: remove <table> <key>")

	r.AddCommand("select", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return HandleSelect(store, payload)
	}, "Select all elements from a table. usage: select <table>")

	r.AddCommand("print", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return HandlePrint(store, payload)
	}, "Print out the internal data representation. usage: print <table>")

	r.AddCommand("stats", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return HandleStats(store, payload)
	}, "Show reachability statistics for a table. usage: stats <table>")

	r.AddCommand("check", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return HandleCheck(store, payload)
	}, "Verify a table's structural invariants. usage: check <table>")

	r.AddCommand("fingerprint", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return HandleFingerprint(store, payload)
	}, "Digest a table's contents. usage: fingerprint <table>")

	r.AddCommand("arena", func(payload string, replConfig *repl.REPLConfig) (string, error) {
		return HandleArena(store, payload)
	}, "Show arena usage. usage: arena")

	if traceFile != "" {
		r.AddCommand("recent", func(payload string, replConfig *repl.REPLConfig) (string, error) {
			return HandleRecent(traceFile, payload)
		}, "Show the last n trace records. usage: recent <n>")

		r.AddCommand("checkpoint", func(payload string, replConfig *repl.REPLConfig) (string, error) {
			return HandleCheckpoint(traceFile, payload)
		}, "Copy the trace folder aside. usage: checkpoint <folder>")
	}

	return r
}

// parseAddr parses a table handle argument.
func parseAddr(field string) (arena.Addr, error) {
	v, err := strconv.ParseInt(field, 10, 32)
	if err != nil {
		return arena.NoAddr, fmt.Errorf("bad table handle %q: %v", field, err)
	}
	return arena.Addr(v), nil
}

// parseInt32 parses a key, value, or bucket count argument.
func parseInt32(field string) (int32, error) {
	v, err := strconv.ParseInt(field, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %v", field, err)
	}
	return int32(v), nil
}

// Handle create.
func HandleCreate(s *Store, logger *trace.Logger, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: create <buckets>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: create <buckets>")
	}
	bucketCount, err := parseInt32(fields[1])
	if err != nil {
		return "", fmt.Errorf("create error: %v", err)
	}
	table, err := s.CreateTable(bucketCount)
	if err != nil {
		return "", err
	}
	if logger != nil {
		// Journal the effective count, not the request: a non-positive
		// request was replaced with the default.
		count, err := s.GetBucketCount(table)
		if err != nil {
			return "", err
		}
		if err = logger.Create(table, count); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("table created at %d.\n", table), nil
}

// Handle put.
func HandlePut(s *Store, logger *trace.Logger, payload string) (err error) {
	fields := strings.Fields(payload)
	// Usage: put <table> <key> <value>
	if len(fields) != 4 {
		return fmt.Errorf("usage: put <table> <key> <value>")
	}
	table, err := parseAddr(fields[1])
	if err != nil {
		return fmt.Errorf("put error: %v", err)
	}
	key, err := parseInt32(fields[2])
	if err != nil {
		return fmt.Errorf("put error: %v", err)
	}
	value, err := parseInt32(fields[3])
	if err != nil {
		return fmt.Errorf("put error: %v", err)
	}
	if err = s.Put(table, key, value); err != nil {
		return err
	}
	if logger != nil {
		return logger.Put(table, key, value)
	}
	return nil
}

// Handle get.
func HandleGet(s *Store, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: get <table> <key>
	if len(fields) != 3 {
		return "", fmt.Errorf("usage: get <table> <key>")
	}
	table, err := parseAddr(fields[1])
	if err != nil {
		return "", fmt.Errorf("get error: %v", err)
	}
	key, err := parseInt32(fields[2])
	if err != nil {
		return "", fmt.Errorf("get error: %v", err)
	}
	value, found, err := s.Get(table, key)
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("no entry with key %d.\n", key), nil
	}
	return fmt.Sprintf("found entry (%d, %d).\n", key, value), nil
}

// Handle contains.
func HandleContains(s *Store, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: contains <table> <key>
	if len(fields) != 3 {
		return "", fmt.Errorf("usage: contains <table> <key>")
	}
	table, err := parseAddr(fields[1])
	if err != nil {
		return "", fmt.Errorf("contains error: %v", err)
	}
	key, err := parseInt32(fields[2])
	if err != nil {
		return "", fmt.Errorf("contains error: %v", err)
	}
	found, err := s.Contains(table, key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%t\n", found), nil
}

// Handle remove.
func HandleRemove(s *Store, logger *trace.Logger, payload string) (err error) {
	fields := strings.Fields(payload)
	// Usage: remove <table> <key>
	if len(fields) != 3 {
		return fmt.Errorf("usage: remove <table> <key>")
	}
	table, err := parseAddr(fields[1])
	if err != nil {
		return fmt.Errorf("remove error: %v", err)
	}
	key, err := parseInt32(fields[2])
	if err != nil {
		return fmt.Errorf("remove error: %v", err)
	}
	if err = s.Remove(table, key); err != nil {
		return err
	}
	if logger != nil {
		return logger.Remove(table, key)
	}
	return nil
}

// Handle select.
func HandleSelect(s *Store, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: select <table>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: select <table>")
	}
	table, err := parseAddr(fields[1])
	if err != nil {
		return "", fmt.Errorf("select error: %v", err)
	}
	entries, err := s.Select(table)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, e := range entries {
		e.Print(&sb)
	}
	return sb.String(), nil
}

// Handle print.
func HandlePrint(s *Store, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: print <table>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: print <table>")
	}
	table, err := parseAddr(fields[1])
	if err != nil {
		return "", fmt.Errorf("print error: %v", err)
	}
	var sb strings.Builder
	if err = s.Print(table, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Handle stats.
func HandleStats(s *Store, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: stats <table>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: stats <table>")
	}
	table, err := parseAddr(fields[1])
	if err != nil {
		return "", fmt.Errorf("stats error: %v", err)
	}
	stats, err := s.Stats(table)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"buckets: %d (%d non-empty)\nentries: %d\nmax chain: %d\nlive bytes: %d\n",
		stats.BucketCount, stats.NonEmptyBuckets, stats.Entries, stats.MaxChain, stats.LiveBytes,
	), nil
}

// Handle check.
func HandleCheck(s *Store, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: check <table>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: check <table>")
	}
	table, err := parseAddr(fields[1])
	if err != nil {
		return "", fmt.Errorf("check error: %v", err)
	}
	if err = s.CheckTable(table); err != nil {
		return "", err
	}
	return "ok\n", nil
}

// Handle fingerprint.
func HandleFingerprint(s *Store, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: fingerprint <table>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: fingerprint <table>")
	}
	table, err := parseAddr(fields[1])
	if err != nil {
		return "", fmt.Errorf("fingerprint error: %v", err)
	}
	fp, err := s.Fingerprint(table)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x\n", fp), nil
}

// Handle arena.
func HandleArena(s *Store, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: arena
	if len(fields) != 1 {
		return "", fmt.Errorf("usage: arena")
	}
	a := s.GetArena()
	return fmt.Sprintf("used %d of %d bytes\n", a.Used(), a.Capacity()), nil
}

// Handle recent.
func HandleRecent(traceFile string, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: recent <n>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: recent <n>")
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n <= 0 {
		return "", fmt.Errorf("recent error: bad count %q", fields[1])
	}
	records, err := trace.Tail(traceFile, n)
	if err != nil {
		return "", err
	}
	return strings.Join(records, "\n"), nil
}

// Handle checkpoint.
func HandleCheckpoint(traceFile string, payload string) (output string, err error) {
	fields := strings.Fields(payload)
	// Usage: checkpoint <folder>
	if len(fields) != 2 {
		return "", fmt.Errorf("usage: checkpoint <folder>")
	}
	if err = trace.Checkpoint(filepath.Dir(traceFile), fields[1]); err != nil {
		return "", err
	}
	return fmt.Sprintf("trace checkpointed to %s.\n", fields[1]), nil
}
