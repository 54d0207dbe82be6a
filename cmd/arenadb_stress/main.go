package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"time"

	"arenadb/pkg/arena"
	"arenadb/pkg/config"
	"arenadb/pkg/hash"

	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"
)

// draw derives a deterministic pseudo-random value for one workload step.
func draw(seed int64, worker int, op int, lane uint32) uint64 {
	var buf [20]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(seed))
	binary.LittleEndian.PutUint32(buf[8:], uint32(worker))
	binary.LittleEndian.PutUint32(buf[12:], uint32(op))
	binary.LittleEndian.PutUint32(buf[16:], lane)
	return murmur3.Sum64(buf[:])
}

// runWorkload drives one store through a deterministic put/get/remove mix,
// checking every result against an in-memory model.
func runWorkload(worker int, seed int64, ops int, buckets int32, capacity int32, keySpace int32, verify bool) error {
	if keySpace <= 0 {
		keySpace = 1
	}
	store := hash.NewStore(arena.New(capacity))
	table, err := store.CreateTable(buckets)
	if err != nil {
		return err
	}
	model := make(map[int32]int32)

	for op := 0; op < ops; op++ {
		key := int32(draw(seed, worker, op, 0) % uint64(keySpace))
		value := int32(draw(seed, worker, op, 1))
		switch draw(seed, worker, op, 2) % 10 {
		case 0, 1, 2, 3, 4, 5: // put
			if err := store.Put(table, key, value); err != nil {
				return fmt.Errorf("worker %d op %d: put: %w", worker, op, err)
			}
			model[key] = value
		case 6, 7: // get
			got, found, err := store.Get(table, key)
			if err != nil {
				return fmt.Errorf("worker %d op %d: get: %w", worker, op, err)
			}
			want, ok := model[key]
			if found != ok || (found && got != want) {
				return fmt.Errorf("worker %d op %d: get(%d) = (%d, %t), want (%d, %t)",
					worker, op, key, got, found, want, ok)
			}
		default: // remove
			if err := store.Remove(table, key); err != nil {
				return fmt.Errorf("worker %d op %d: remove: %w", worker, op, err)
			}
			delete(model, key)
		}
	}

	if verify {
		if err := store.CheckTable(table); err != nil {
			return fmt.Errorf("worker %d: %w", worker, err)
		}
		for key, want := range model {
			got, found, err := store.Get(table, key)
			if err != nil {
				return fmt.Errorf("worker %d: verify get: %w", worker, err)
			}
			if !found || got != want {
				return fmt.Errorf("worker %d: verify get(%d) = (%d, %t), want %d",
					worker, key, got, found, want)
			}
		}
		fp, err := store.Fingerprint(table)
		if err != nil {
			return err
		}
		stats, err := store.Stats(table)
		if err != nil {
			return err
		}
		fmt.Printf("worker %d: %d live entries, max chain %d, fingerprint %016x\n",
			worker, stats.Entries, stats.MaxChain, fp)
	}
	return nil
}

// Run independent single-owner stores concurrently and hammer them.
func main() {
	var nFlag = flag.Int("n", 1, "number of workers, each with its own arena and store")
	var opsFlag = flag.Int("ops", 10000, "operations per worker")
	var bucketsFlag = flag.Int("buckets", 0, "bucket count per table (<= 0 uses the default)")
	var capacityFlag = flag.Int("capacity", int(config.DefaultArenaCapacity), "arena capacity in bytes")
	var keySpaceFlag = flag.Int("keyspace", 1024, "number of distinct keys per workload")
	var seedFlag = flag.Int64("seed", time.Now().UnixNano(), "workload seed")
	var verifyFlag = flag.Bool("verify", true, "verify table state after the workload")
	flag.Parse()

	start := time.Now()
	var g errgroup.Group
	for i := 0; i < *nFlag; i++ {
		worker := i
		g.Go(func() error {
			return runWorkload(worker, *seedFlag, *opsFlag, int32(*bucketsFlag),
				int32(*capacityFlag), int32(*keySpaceFlag), *verifyFlag)
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%d workers x %d ops in %v (seed %d)\n", *nFlag, *opsFlag, time.Since(start), *seedFlag)
}
