package hash

import (
	"fmt"

	"arenadb/pkg/arena"
)

// InvalidPointerError reports a table handle that does not refer to a live
// table header within the arena's used extent. It carries the arena's
// current bounds for diagnostics.
type InvalidPointerError struct {
	Addr     arena.Addr // The offending address.
	Want     int64      // Size of the region that would have to be readable.
	Used     int32      // Arena high-water mark at the time of the check.
	Capacity int32      // Total arena capacity.
}

func (e *InvalidPointerError) Error() string {
	return fmt.Sprintf(
		"hash: invalid table pointer %d (need %d bytes, arena used %d of %d)",
		e.Addr, e.Want, e.Used, e.Capacity,
	)
}

// checkTablePtr validates a candidate table handle before it is trusted,
// returning the table's bucket count on success. A handle is rejected if it
// is negative, if its header field cannot be read inside the arena's used
// extent, or if the declared bucket count is non-positive or implies a
// header region extending past the used extent. This is a defensive check
// against obviously wrong handles (foreign addresses, handles left stale by
// an arena reset), not a memory-safety guarantee.
func (s *Store) checkTablePtr(ptr arena.Addr) (int32, error) {
	used := s.arena.Used()
	// 64-bit arithmetic: a handle near MaxInt32 would wrap negative in 32 bits
	// and slip past the bound.
	if ptr < 0 || int64(ptr)+int64(BUCKET_ARRAY_OFFSET) > int64(used) {
		return 0, &InvalidPointerError{
			Addr:     ptr,
			Want:     int64(BUCKET_ARRAY_OFFSET),
			Used:     used,
			Capacity: s.arena.Capacity(),
		}
	}
	bucketCount := s.arena.ReadInt32(ptr + arena.Addr(BUCKET_COUNT_OFFSET))
	if bucketCount <= 0 {
		return 0, &InvalidPointerError{
			Addr:     ptr,
			Want:     int64(BUCKET_ARRAY_OFFSET),
			Used:     used,
			Capacity: s.arena.Capacity(),
		}
	}
	// 64-bit arithmetic so a garbage count cannot overflow the bound check.
	headerSize := int64(BUCKET_ARRAY_OFFSET) + int64(bucketCount)*int64(PTRSIZE)
	if int64(ptr)+headerSize > int64(used) {
		return 0, &InvalidPointerError{
			Addr:     ptr,
			Want:     headerSize,
			Used:     used,
			Capacity: s.arena.Capacity(),
		}
	}
	return bucketCount, nil
}
