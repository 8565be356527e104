package hashindex

import (
	"encoding/binary"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Add inserts key/value if key is absent. If key is already present, it
// instead adds value's first 4 bytes, read as a little-endian int32, into
// the existing entry's first 4 bytes, in place — the rest of the value is
// left untouched. The addition wraps silently on int32 overflow; it is
// never saturated. This mirrors hashindex_add in the original C
// implementation, where the first 4 value bytes are a reference count and
// the remaining bytes (size, compressed size, ...) are only ever copied in,
// never summed, because every chunk has one fixed size regardless of how
// many archives reference it.
func (idx *Index) Add(key, value []byte) error {
	if err := idx.checkKey(key); err != nil {
		return err
	}

	if uint32(len(value)) != idx.valueSize {
		return fmt.Errorf("value length %d != value_size %d: %w", len(value), idx.valueSize, ErrInvalidInput)
	}

	off, found := idx.lookup(key)
	if !found {
		return idx.Set(key, value)
	}

	existing := bucketValue(idx.buckets, off, idx.keySize, idx.valueSize)
	sum := int32(binary.LittleEndian.Uint32(existing[:4])) + int32(binary.LittleEndian.Uint32(value[:4]))
	binary.LittleEndian.PutUint32(existing[:4], uint32(sum))

	return nil
}

// Merge applies Add to every entry of other, in iteration order. It does
// not modify other.
func (idx *Index) Merge(other *Index) error {
	if idx.closed || other.closed {
		return ErrClosed
	}

	if other.keySize != idx.keySize || other.valueSize != idx.valueSize {
		return fmt.Errorf("merge: key/value size mismatch: %w", ErrIncompatible)
	}

	var c Cursor

	for {
		key, value, next, ok := other.Next(c)
		if !ok {
			return nil
		}

		if err := idx.Add(key, value); err != nil {
			return err
		}

		c = next
	}
}

// Summary holds the accumulated chunk/size/compressed-size statistics
// produced by Summarize.
type Summary struct {
	// TotalUniqueChunks is the number of distinct entries (num_entries).
	TotalUniqueChunks int64
	// TotalChunks is the sum, over every entry, of that entry's reference
	// count.
	TotalChunks int64
	// TotalUniqueSize and TotalUniqueCSize are the sum, over every entry,
	// of its uncompressed and compressed size — each counted once
	// regardless of reference count.
	TotalUniqueSize  int64
	TotalUniqueCSize int64
	// TotalSize and TotalCSize weight each entry's size and compressed
	// size by its reference count.
	TotalSize  int64
	TotalCSize int64
}

// String renders s for human consumption, using humanized byte counts.
func (s Summary) String() string {
	return fmt.Sprintf(
		"%d unique chunks (%s unique, %s compressed), %d total chunks (%s total, %s total compressed)",
		s.TotalUniqueChunks, humanize.Bytes(uint64(s.TotalUniqueSize)), humanize.Bytes(uint64(s.TotalUniqueCSize)),
		s.TotalChunks, humanize.Bytes(uint64(s.TotalSize)), humanize.Bytes(uint64(s.TotalCSize)),
	)
}

// Summarize walks every entry and accumulates chunk count, size, and
// compressed-size statistics, mirroring hashindex_summarize in the original
// C implementation. It requires value_size >= 12 (refcount, size, csize as
// three little-endian int32 fields); any narrower value layout returns
// ErrInvalidInput.
func (idx *Index) Summarize() (Summary, error) {
	if idx.closed {
		return Summary{}, ErrClosed
	}

	if idx.valueSize < 12 {
		return Summary{}, fmt.Errorf("summarize requires value_size >= 12, got %d: %w", idx.valueSize, ErrInvalidInput)
	}

	var s Summary

	var c Cursor

	for {
		_, value, next, ok := idx.Next(c)
		if !ok {
			break
		}

		refs := int64(int32(binary.LittleEndian.Uint32(value[0:4])))
		size := int64(int32(binary.LittleEndian.Uint32(value[4:8])))
		csize := int64(int32(binary.LittleEndian.Uint32(value[8:12])))

		s.TotalUniqueChunks++
		s.TotalChunks += refs
		s.TotalUniqueSize += size
		s.TotalUniqueCSize += csize
		s.TotalSize += refs * size
		s.TotalCSize += refs * csize

		c = next
	}

	return s, nil
}
