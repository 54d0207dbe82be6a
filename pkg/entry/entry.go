package entry

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Size is the number of bytes an Entry occupies when marshalled.
const Size = 8

// Entry is a key-value pair stored in a hash table.
type Entry struct {
	Key   int32
	Value int32
}

// New constructs and returns a new Entry with the specified key and value.
func New(key int32, value int32) Entry {
	return Entry{key, value}
}

// Marshal serializes an entry into a fixed-width byte array.
func (entry Entry) Marshal() []byte {
	data := make([]byte, Size)
	binary.LittleEndian.PutUint32(data[:4], uint32(entry.Key))
	binary.LittleEndian.PutUint32(data[4:], uint32(entry.Value))
	return data
}

// UnmarshalEntry deserializes a byte array into an entry.
func UnmarshalEntry(data []byte) Entry {
	k := int32(binary.LittleEndian.Uint32(data[:4]))
	v := int32(binary.LittleEndian.Uint32(data[4:Size]))
	return Entry{Key: k, Value: v}
}

// Print writes the entry to the specified writer in the following format: (<key>, <value>)
func (entry Entry) Print(w io.Writer) {
	fmt.Fprintf(w, "(%d, %d), ", entry.Key, entry.Value)
}
