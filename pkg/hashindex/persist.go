package hashindex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// magic is the 8-byte file signature every BORG_IDX file starts with.
var magic = [8]byte{'B', 'O', 'R', 'G', '_', 'I', 'D', 'X'}

// headerSize is the fixed on-disk header: magic (8) + num_entries (4) +
// num_buckets (4) + key_size (1) + value_size (1).
const headerSize = 18

// Write serializes idx to w in the on-disk BORG_IDX format: an 18-byte
// header (magic, num_entries, num_buckets, key_size, value_size, all
// little-endian) followed by the raw bucket array, byte for byte, with no
// padding. The format is architecture- and Go-version-independent: any
// reader that agrees on the header layout can parse it.
func Write(idx *Index, w io.Writer) error {
	if idx.closed {
		return ErrClosed
	}

	var header [headerSize]byte

	copy(header[0:8], magic[:])
	binary.LittleEndian.PutUint32(header[8:12], idx.numEntries)
	binary.LittleEndian.PutUint32(header[12:16], idx.numBuckets)
	header[16] = byte(idx.keySize)
	header[17] = byte(idx.valueSize)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("hashindex: write header: %w", err)
	}

	if _, err := w.Write(idx.buckets); err != nil {
		return fmt.Errorf("hashindex: write buckets: %w", err)
	}

	return nil
}

// Read parses a BORG_IDX file from r. It validates the magic and derives
// key_size/value_size/num_buckets from the header. If opts.KeySize or
// opts.ValueSize is non-zero, the header's corresponding field is
// re-validated against it and ErrIncompatible is returned on a mismatch;
// opts.Capacity is ignored. Read also requires r's total length to equal
// exactly headerSize + num_buckets*(key_size+value_size) — matching
// hashindex_read's length check in the original C implementation — and
// returns ErrCorrupt for either a short bucket blob or trailing data past
// the end of it.
func Read(r io.Reader, opts Options) (*Index, error) {
	var header [headerSize]byte

	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("hashindex: read header: %w", err)
	}

	if !bytes.Equal(header[0:8], magic[:]) {
		return nil, fmt.Errorf("bad magic: %w", ErrIncompatible)
	}

	numEntries := binary.LittleEndian.Uint32(header[8:12])
	numBuckets := binary.LittleEndian.Uint32(header[12:16])
	keySize := uint32(header[16])
	valueSize := uint32(header[17])

	if keySize < 4 || keySize > 127 || valueSize < 4 || valueSize > 127 {
		return nil, fmt.Errorf("key_size=%d value_size=%d out of range: %w", keySize, valueSize, ErrCorrupt)
	}

	if opts.KeySize != 0 && uint32(opts.KeySize) != keySize {
		return nil, fmt.Errorf("key_size=%d, want %d: %w", keySize, opts.KeySize, ErrIncompatible)
	}

	if opts.ValueSize != 0 && uint32(opts.ValueSize) != valueSize {
		return nil, fmt.Errorf("value_size=%d, want %d: %w", valueSize, opts.ValueSize, ErrIncompatible)
	}

	bucketSize := keySize + valueSize

	buckets := make([]byte, uint64(numBuckets)*uint64(bucketSize))
	if _, err := io.ReadFull(r, buckets); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("short bucket array: %w", ErrCorrupt)
		}

		return nil, fmt.Errorf("hashindex: read buckets: %w", err)
	}

	var trailer [1]byte
	switch _, err := io.ReadFull(r, trailer[:]); {
	case err == nil:
		return nil, fmt.Errorf("trailing data after bucket array: %w", ErrCorrupt)
	case !errors.Is(err, io.EOF):
		return nil, fmt.Errorf("hashindex: read trailer: %w", err)
	}

	idx := &Index{
		keySize:    keySize,
		valueSize:  valueSize,
		bucketSize: bucketSize,
		numBuckets: numBuckets,
		numEntries: numEntries,
		buckets:    buckets,
		lowerLim:   lowerLimit(numBuckets),
		upperLim:   upperLimit(numBuckets),
	}

	return idx, nil
}

// ReadFile opens path and parses it as a BORG_IDX file. See Read for opts.
func ReadFile(path string, opts Options) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hashindex: %w", err)
	}
	defer f.Close()

	return Read(f, opts)
}

// WriteAtomic serializes idx and replaces path with the result atomically:
// the new content is written to a temporary file in the same directory and
// then renamed over path, so a crash or concurrent reader never observes a
// partially written file.
func WriteAtomic(idx *Index, path string) error {
	var buf bytes.Buffer

	if err := Write(idx, &buf); err != nil {
		return err
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("hashindex: atomic write %s: %w", path, err)
	}

	return nil
}
