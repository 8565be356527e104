package hashindex

import "encoding/binary"

// Bucket occupancy sentinels, encoded over the first 4 little-endian bytes
// of a bucket's value region (I1: value_size must be >= 4 so this overlay
// always has room).
const (
	sentinelEmpty   uint32 = 0xFFFFFFFF
	sentinelDeleted uint32 = 0xFFFFFFFE
)

// bucketOffset returns the byte offset of bucket idx within the flat
// buckets array.
func bucketOffset(idx, bucketSize uint32) uint32 {
	return idx * bucketSize
}

// bucketKey returns the key region of the bucket at off.
func bucketKey(buckets []byte, off, keySize uint32) []byte {
	return buckets[off : off+keySize]
}

// bucketValue returns the value region of the bucket at off.
func bucketValue(buckets []byte, off, keySize, valueSize uint32) []byte {
	return buckets[off+keySize : off+keySize+valueSize]
}

// sentinelAt reads the 4-byte little-endian sentinel overlaid on a
// bucket's value region.
func sentinelAt(buckets []byte, off, keySize uint32) uint32 {
	return binary.LittleEndian.Uint32(buckets[off+keySize : off+keySize+4])
}

// bucketIsEmpty reports whether the bucket at off has never been occupied.
func bucketIsEmpty(buckets []byte, off, keySize uint32) bool {
	return sentinelAt(buckets, off, keySize) == sentinelEmpty
}

// bucketIsDeleted reports whether the bucket at off holds a tombstone.
func bucketIsDeleted(buckets []byte, off, keySize uint32) bool {
	return sentinelAt(buckets, off, keySize) == sentinelDeleted
}

// bucketMarkEmpty resets the bucket at off to the Empty sentinel.
func bucketMarkEmpty(buckets []byte, off, keySize uint32) {
	binary.LittleEndian.PutUint32(buckets[off+keySize:off+keySize+4], sentinelEmpty)
}

// bucketMarkDeleted marks the bucket at off as a tombstone.
func bucketMarkDeleted(buckets []byte, off, keySize uint32) {
	binary.LittleEndian.PutUint32(buckets[off+keySize:off+keySize+4], sentinelDeleted)
}

// bucketKeyMatches reports whether the bucket at off holds the given key.
func bucketKeyMatches(buckets []byte, off, keySize uint32, key []byte) bool {
	stored := bucketKey(buckets, off, keySize)

	for i := range stored {
		if stored[i] != key[i] {
			return false
		}
	}

	return true
}

// copyBucket copies an entire bucket (key and value region) from src to dst
// offsets within the same buckets array.
func copyBucket(buckets []byte, dstOff, srcOff, bucketSize uint32) {
	copy(buckets[dstOff:dstOff+bucketSize], buckets[srcOff:srcOff+bucketSize])
}

// hashKey computes the bucket hash of a key: its first 4 bytes read as a
// little-endian uint32, modulo numBuckets. Keys are assumed to already be
// uniformly distributed (e.g. truncated cryptographic hashes); no
// additional mixing is applied, so low-entropy keys produce pathological
// probe chains. This is by design (see spec.md §4.1).
func hashKey(key []byte, numBuckets uint32) uint32 {
	return binary.LittleEndian.Uint32(key[:4]) % numBuckets
}
