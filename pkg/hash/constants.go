package hash

import "arenadb/pkg/arena"

/////////////////////////////////////////////////////////////////////////////
////////////////////////// Low-level Constants //////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// Table header layout: [bucketCount][bucket 0][bucket 1]...[bucket n-1]
const BUCKET_COUNT_OFFSET int32 = 0
const BUCKET_ARRAY_OFFSET int32 = BUCKET_COUNT_OFFSET + PTRSIZE

// Entry layout: [key][value][next]
const ENTRY_KEY_OFFSET int32 = 0
const ENTRY_VALUE_OFFSET int32 = ENTRY_KEY_OFFSET + PTRSIZE
const ENTRY_NEXT_OFFSET int32 = ENTRY_VALUE_OFFSET + PTRSIZE
const ENTRYSIZE int32 = ENTRY_NEXT_OFFSET + PTRSIZE

// Width of one arena cell; every stored field is one cell.
const PTRSIZE int32 = arena.CellSize

// Bucket count used when a table is created with a non-positive request.
const DEFAULT_BUCKET_COUNT int32 = 16

// NIL_PTR marks an empty bucket slot or the end of a chain.
const NIL_PTR int32 = int32(arena.NoAddr)
