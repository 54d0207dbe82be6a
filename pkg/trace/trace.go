// Package trace implements an append-only operation journal for hash table
// mutations. A trace is a text file with one record per line:
//
//	create <table> <buckets>
//	put <table> <key> <value>
//	remove <table> <key>
//
// Traces can be tailed for inspection, checkpointed aside, and replayed to
// rebuild tables in a fresh arena.
package trace

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"arenadb/pkg/arena"

	"github.com/icza/backscanner"
	"github.com/otiai10/copy"
)

// Applier is the subset of hash table operations a trace can replay.
// Satisfied by hash.Store.
type Applier interface {
	CreateTable(bucketCount int32) (arena.Addr, error)
	Put(table arena.Addr, key int32, value int32) error
	Remove(table arena.Addr, key int32) error
}

// Logger appends mutation records to a trace file.
type Logger struct {
	file *os.File
	mtx  sync.Mutex
}

// NewLogger opens (or creates) the trace file at filename for appending.
func NewLogger(filename string) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}
	return &Logger{file: file}, nil
}

// Create records a table creation.
func (l *Logger) Create(table arena.Addr, bucketCount int32) error {
	return l.append(fmt.Sprintf("create %d %d\n", table, bucketCount))
}

// Put records an insert or update.
func (l *Logger) Put(table arena.Addr, key int32, value int32) error {
	return l.append(fmt.Sprintf("put %d %d %d\n", table, key, value))
}

// Remove records a removal.
func (l *Logger) Remove(table arena.Addr, key int32) error {
	return l.append(fmt.Sprintf("remove %d %d\n", table, key))
}

// Close closes the underlying trace file.
func (l *Logger) Close() error {
	return l.file.Close()
}

// append writes one record and syncs it to disk.
func (l *Logger) append(record string) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if _, err := l.file.WriteString(record); err != nil {
		return err
	}
	return l.file.Sync()
}

// Tail returns the last n records of the trace at filename, oldest first.
// Returns fewer than n records if the trace is shorter.
func Tail(filename string, n int) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	fstats, err := file.Stat()
	if err != nil {
		return nil, err
	}

	scanner := backscanner.New(file, int(fstats.Size()))
	records := make([]string, 0, n)
	for len(records) < n {
		line, _, err := scanner.Line()
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, line)
	}
	// Scanned newest first; flip back into file order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Checkpoint copies the folder holding trace logs into dst, preserving a
// known-good op history before the live trace is truncated or replaced.
func Checkpoint(folder string, dst string) error {
	return copy.Copy(folder, dst)
}

// Recover replays the trace at filename against the given applier. Replay
// allocates fresh regions, so handles in the trace will not match the new
// ones; the returned map translates traced handles to their replayed
// counterparts.
func Recover(applier Applier, filename string) (map[arena.Addr]arena.Addr, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tables := make(map[arena.Addr]arena.Addr)
	scanner := bufio.NewScanner(file)
	for lineno := 1; scanner.Scan(); lineno++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		args, err := parseArgs(fields[1:])
		if err != nil {
			return nil, fmt.Errorf("trace: line %d: %w", lineno, err)
		}
		switch op := fields[0]; {
		case op == "create" && len(args) == 2:
			table, err := applier.CreateTable(args[1])
			if err != nil {
				return nil, fmt.Errorf("trace: line %d: %w", lineno, err)
			}
			tables[arena.Addr(args[0])] = table
		case op == "put" && len(args) == 3:
			table, ok := tables[arena.Addr(args[0])]
			if !ok {
				return nil, fmt.Errorf("trace: line %d: put on unknown table %d", lineno, args[0])
			}
			if err := applier.Put(table, args[1], args[2]); err != nil {
				return nil, fmt.Errorf("trace: line %d: %w", lineno, err)
			}
		case op == "remove" && len(args) == 2:
			table, ok := tables[arena.Addr(args[0])]
			if !ok {
				return nil, fmt.Errorf("trace: line %d: remove on unknown table %d", lineno, args[0])
			}
			if err := applier.Remove(table, args[1]); err != nil {
				return nil, fmt.Errorf("trace: line %d: %w", lineno, err)
			}
		default:
			return nil, fmt.Errorf("trace: line %d: malformed record %q", lineno, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// parseArgs converts record arguments to 32-bit integers.
func parseArgs(fields []string) ([]int32, error) {
	args := make([]int32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad argument %q: %w", f, err)
		}
		args[i] = int32(v)
	}
	return args, nil
}
