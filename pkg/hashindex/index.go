package hashindex

import "fmt"

// Index is a fixed-width, open-addressing hash table held entirely in
// memory and persisted whole via Read/Write.
//
// An Index is not safe for concurrent use; see the package doc comment.
type Index struct {
	keySize    uint32
	valueSize  uint32
	bucketSize uint32

	numBuckets uint32
	numEntries uint32
	buckets    []byte

	lowerLim uint32
	upperLim uint32

	closed bool
}

// Cursor is an opaque iteration position returned by Next. Its zero value
// means "start from the beginning". A Cursor obtained before a mutation
// that triggers a resize (a Set that grows, or a Delete that shrinks) must
// not be reused afterward — per spec.md §4.2, iteration is not stable
// across mutation.
type Cursor struct {
	pos uint32
}

// Options is the only configuration surface hashindex exposes: no
// file-based or flag-based config, matching the teacher's
// slotcache.Options (KeySize, IndexSize, SlotCapacity).
type Options struct {
	// KeySize and ValueSize are the fixed widths, in bytes, of every key
	// and value New will accept. Each must be in [4, 127]; ValueSize must
	// additionally be >= 4 (I1: the occupancy sentinel is overlaid on the
	// first 4 value bytes) and KeySize must be >= 4 (the hash function
	// reads the first 4 key bytes — see spec.md §9).
	KeySize   int
	ValueSize int

	// Capacity is a hint: New allocates fitSize(Capacity) buckets, the
	// smallest ladder entry >= Capacity. The table grows once it holds
	// more than 75% of that many entries, so fewer than Capacity entries
	// may fit before the first grow. Ignored by Read/ReadFile, which take
	// their sizing from the file header.
	Capacity int
}

func (o Options) validateSizes() error {
	if o.KeySize < 4 || o.KeySize > 127 {
		return fmt.Errorf("key_size must be in [4, 127], got %d: %w", o.KeySize, ErrInvalidInput)
	}

	if o.ValueSize < 4 || o.ValueSize > 127 {
		return fmt.Errorf("value_size must be in [4, 127], got %d: %w", o.ValueSize, ErrInvalidInput)
	}

	return nil
}

// New creates an empty Index per opts. See Options for field contracts.
func New(opts Options) (*Index, error) {
	if opts.Capacity < 0 {
		return nil, fmt.Errorf("capacity must be >= 0, got %d: %w", opts.Capacity, ErrInvalidInput)
	}

	if err := opts.validateSizes(); err != nil {
		return nil, err
	}

	numBuckets := fitSize(uint32(opts.Capacity))
	bucketSize := uint32(opts.KeySize) + uint32(opts.ValueSize)

	idx := &Index{
		keySize:    uint32(opts.KeySize),
		valueSize:  uint32(opts.ValueSize),
		bucketSize: bucketSize,
		numBuckets: numBuckets,
		buckets:    make([]byte, uint64(numBuckets)*uint64(bucketSize)),
		lowerLim:   lowerLimit(numBuckets),
		upperLim:   upperLimit(numBuckets),
	}

	for i := uint32(0); i < numBuckets; i++ {
		bucketMarkEmpty(idx.buckets, bucketOffset(i, bucketSize), idx.keySize)
	}

	return idx, nil
}

// Close releases the Index's backing storage. It is idempotent. After
// Close, Get, Set, Delete, Add, Merge, Summarize and Write return
// ErrClosed; Next does not check for Close and panics on the nil backing
// slice.
func (idx *Index) Close() error {
	idx.closed = true
	idx.buckets = nil

	return nil
}

// Len returns the number of occupied (non-empty, non-deleted) buckets.
func (idx *Index) Len() int {
	return int(idx.numEntries)
}

// KeySize returns the fixed key width this Index was created with.
func (idx *Index) KeySize() int { return int(idx.keySize) }

// ValueSize returns the fixed value width this Index was created with.
func (idx *Index) ValueSize() int { return int(idx.valueSize) }

func (idx *Index) checkKey(key []byte) error {
	if idx.closed {
		return ErrClosed
	}

	if uint32(len(key)) != idx.keySize {
		return fmt.Errorf("key length %d != key_size %d: %w", len(key), idx.keySize, ErrInvalidInput)
	}

	return nil
}

// lookup runs the probe engine described in spec.md §4.2: it walks the
// probe chain starting at hash(key), remembering the first tombstone it
// passes. If it finds the key, and a tombstone was seen on the way, it
// performs in-place compaction (P1): the found bucket is moved to the
// first tombstone slot and the old slot is marked deleted, shortening the
// chain for every future lookup of this key. This mutates idx even though
// lookup itself is read-only from the caller's perspective — see the
// package doc comment on view invalidation.
func (idx *Index) lookup(key []byte) (off uint32, found bool) {
	start := hashKey(key, idx.numBuckets)
	i := start

	var (
		firstTombstone uint32
		hasTombstone   bool
	)

	for {
		o := bucketOffset(i, idx.bucketSize)

		switch {
		case bucketIsEmpty(idx.buckets, o, idx.keySize):
			return 0, false

		case bucketIsDeleted(idx.buckets, o, idx.keySize):
			if !hasTombstone {
				firstTombstone = i
				hasTombstone = true
			}

		case bucketKeyMatches(idx.buckets, o, idx.keySize, key):
			if hasTombstone {
				dst := bucketOffset(firstTombstone, idx.bucketSize)
				copyBucket(idx.buckets, dst, o, idx.bucketSize)
				bucketMarkDeleted(idx.buckets, o, idx.keySize)

				return dst, true
			}

			return o, true
		}

		i = (i + 1) % idx.numBuckets
		if i == start {
			return 0, false
		}
	}
}

// Get returns the value stored for key, or ok=false if key is absent. The
// returned slice aliases the Index's internal storage; see the package
// doc comment for how long it stays valid.
func (idx *Index) Get(key []byte) (value []byte, ok bool, err error) {
	if err := idx.checkKey(key); err != nil {
		return nil, false, err
	}

	off, found := idx.lookup(key)
	if !found {
		return nil, false, nil
	}

	return bucketValue(idx.buckets, off, idx.keySize, idx.valueSize), true, nil
}

// Set inserts or overwrites the value for key. Before inserting a new key,
// the table grows if num_entries already exceeds the upper load-factor
// limit; the insert that first takes num_entries past the limit does not
// itself grow the table (see spec.md §4.2 and §4.3).
func (idx *Index) Set(key, value []byte) error {
	if err := idx.checkKey(key); err != nil {
		return err
	}

	if uint32(len(value)) != idx.valueSize {
		return fmt.Errorf("value length %d != value_size %d: %w", len(value), idx.valueSize, ErrInvalidInput)
	}

	if off, found := idx.lookup(key); found {
		copy(bucketValue(idx.buckets, off, idx.keySize, idx.valueSize), value)

		return nil
	}

	if idx.numEntries > idx.upperLim {
		idx.resize(growSize(idx.numBuckets))
	}

	i := hashKey(key, idx.numBuckets)
	for {
		o := bucketOffset(i, idx.bucketSize)
		if bucketIsEmpty(idx.buckets, o, idx.keySize) || bucketIsDeleted(idx.buckets, o, idx.keySize) {
			copy(bucketKey(idx.buckets, o, idx.keySize), key)
			copy(bucketValue(idx.buckets, o, idx.keySize, idx.valueSize), value)
			idx.numEntries++

			return nil
		}

		i = (i + 1) % idx.numBuckets
	}
}

// Delete removes key if present. Deleting an absent key is a successful
// no-op (spec.md §4.2, §7). If the deletion drops num_entries below the
// lower load-factor limit, the table shrinks.
func (idx *Index) Delete(key []byte) error {
	if err := idx.checkKey(key); err != nil {
		return err
	}

	off, found := idx.lookup(key)
	if !found {
		return nil
	}

	bucketMarkDeleted(idx.buckets, off, idx.keySize)
	idx.numEntries--

	if idx.numEntries < idx.lowerLim {
		idx.resize(shrinkSize(idx.numBuckets))
	}

	return nil
}

// Next returns the first occupied bucket strictly after the position c
// refers to (or the first occupied bucket overall, for the zero Cursor),
// in bucket-index order. ok is false once iteration reaches the end.
//
// Iteration is not stable across mutation (spec.md §4.2): a Cursor
// obtained before a Set/Delete that triggers a resize must be discarded.
func (idx *Index) Next(c Cursor) (key, value []byte, next Cursor, ok bool) {
	for i := c.pos; i < idx.numBuckets; i++ {
		o := bucketOffset(i, idx.bucketSize)
		if bucketIsEmpty(idx.buckets, o, idx.keySize) || bucketIsDeleted(idx.buckets, o, idx.keySize) {
			continue
		}

		return bucketKey(idx.buckets, o, idx.keySize),
			bucketValue(idx.buckets, o, idx.keySize, idx.valueSize),
			Cursor{pos: i + 1},
			true
	}

	return nil, nil, Cursor{pos: idx.numBuckets}, false
}

// resize rebuilds the bucket array at newNumBuckets, re-inserting every
// occupied (key, value) pair and discarding tombstones. Grounded on
// hashindex_resize in the original C implementation: allocate fresh,
// re-insert, swap in. Go's allocator panics rather than returning an error
// on exhaustion, so unlike the C original this cannot "fail and leave the
// Index unmodified" — see SPEC_FULL.md §8 for why that's not emulated.
func (idx *Index) resize(newNumBuckets uint32) {
	newBuckets := make([]byte, uint64(newNumBuckets)*uint64(idx.bucketSize))

	for i := uint32(0); i < newNumBuckets; i++ {
		bucketMarkEmpty(newBuckets, bucketOffset(i, idx.bucketSize), idx.keySize)
	}

	var c Cursor

	for {
		key, value, next, ok := idx.Next(c)
		if !ok {
			break
		}

		rawInsert(newBuckets, newNumBuckets, idx.bucketSize, idx.keySize, idx.valueSize, key, value)

		c = next
	}

	idx.buckets = newBuckets
	idx.numBuckets = newNumBuckets
	idx.lowerLim = lowerLimit(newNumBuckets)
	idx.upperLim = upperLimit(newNumBuckets)
}

// rawInsert inserts key/value into an all-empty-or-tombstone bucket array
// without checking for an existing key and without triggering a resize.
// Used only to rebuild a table during resize, where every key is already
// known distinct.
func rawInsert(buckets []byte, numBuckets, bucketSize, keySize, valueSize uint32, key, value []byte) {
	i := hashKey(key, numBuckets)
	for {
		o := bucketOffset(i, bucketSize)
		if bucketIsEmpty(buckets, o, keySize) || bucketIsDeleted(buckets, o, keySize) {
			copy(bucketKey(buckets, o, keySize), key)
			copy(bucketValue(buckets, o, keySize, valueSize), value)

			return
		}

		i = (i + 1) % numBuckets
	}
}
