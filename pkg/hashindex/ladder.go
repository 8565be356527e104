package hashindex

import "sort"

// sizeLadder is the fixed ascending list of prime (or large-prime-factor)
// bucket counts that num_buckets is always drawn from. Linear probing
// degrades badly on sizes with small factors, so this table is load-bearing
// for performance, not just bookkeeping.
//
// This is a literal port of hash_sizes[] from the original C hashindex
// implementation. It must never change: num_buckets is part of the
// persisted file format, so any reader of a BORG_IDX file (including ones
// not written by this package) assumes this exact table.
var sizeLadder = [...]uint32{
	1031, 2053, 4099, 8209, 16411, 32771, 65537, 131101, 262147, 445649,
	757607, 1287917, 2189459, 3065243, 4291319, 6007867, 8410991,
	11775359, 16485527, 23079703, 27695653, 33234787, 39881729, 47858071,
	57429683, 68915617, 82698751, 99238507, 119086189, 144378011, 157223263,
	173476439, 190253911, 209915011, 230493629, 253169431, 278728861,
	306647623, 337318939, 370742809, 408229973, 449387209, 493428073,
	543105119, 596976533, 657794869, 722676499, 795815791, 874066969,
	962279771, 1057701643, 1164002657, 1280003147, 1407800297, 1548442699,
	1703765389, 1873768367, 2062383853, // 32-bit int ends about here
}

// ladderMin and ladderMax are the first and last entries of sizeLadder,
// duplicated as named constants since Go doesn't allow indexing a var in a
// const declaration even though the table is fixed.
const (
	ladderMin = 1031
	ladderMax = 2062383853

	// hashMinLoad and hashMaxLoad bound num_entries/num_buckets to the
	// half-open interval they produce, except at the ladder extremes
	// where grow/shrink is impossible.
	hashMinLoad = 0.25
	hashMaxLoad = 0.75
)

// ladderIndex returns the index into sizeLadder of the smallest entry >= n,
// saturating at the last index when n exceeds every entry.
func ladderIndex(n uint32) int {
	i := sort.Search(len(sizeLadder), func(i int) bool { return sizeLadder[i] >= n })
	if i == len(sizeLadder) {
		return len(sizeLadder) - 1
	}

	return i
}

// fitSize returns the smallest ladder entry >= n, or the ladder maximum if
// n exceeds it.
func fitSize(n uint32) uint32 {
	return sizeLadder[ladderIndex(n)]
}

// growSize returns the next ladder entry strictly greater than fitSize(n),
// saturating at the ladder maximum.
func growSize(n uint32) uint32 {
	i := ladderIndex(n) + 1
	if i >= len(sizeLadder) {
		return ladderMax
	}

	return sizeLadder[i]
}

// shrinkSize returns the previous ladder entry strictly less than
// fitSize(n), saturating at the ladder minimum.
func shrinkSize(n uint32) uint32 {
	i := ladderIndex(n) - 1
	if i < 0 {
		return ladderMin
	}

	return sizeLadder[i]
}

// lowerLimit is the num_entries floor below which a Delete triggers a
// shrink. Zero at the ladder minimum, since shrinking further is
// impossible.
func lowerLimit(numBuckets uint32) uint32 {
	if numBuckets <= ladderMin {
		return 0
	}

	return uint32(float64(numBuckets) * hashMinLoad)
}

// upperLimit is the num_entries ceiling above which a Set triggers a grow.
// Equal to numBuckets at the ladder maximum, since growing further is
// impossible and the table must be allowed to fill.
func upperLimit(numBuckets uint32) uint32 {
	if numBuckets >= ladderMax {
		return numBuckets
	}

	return uint32(float64(numBuckets) * hashMaxLoad)
}
