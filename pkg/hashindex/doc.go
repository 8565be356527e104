// Package hashindex implements a fixed-width, open-addressing hash table
// that is persisted whole to a single file.
//
// hashindex is the fast lookup layer of a content-addressed store: it maps
// opaque fixed-size keys (typically truncated cryptographic chunk hashes)
// to fixed-size values (typically reference-count and size accounting). It
// does not hash, store, or validate chunk content itself — that is the
// caller's job.
//
// # Basic usage
//
//	idx, err := hashindex.New(hashindex.Options{KeySize: 32, ValueSize: 12})
//	if err != nil {
//	    // handle error
//	}
//	defer idx.Close()
//
//	idx.Set(key, value)
//	v, ok, err := idx.Get(key)
//
//	err = hashindex.WriteAtomic(idx, "/tmp/my.idx")
//
// # Concurrency
//
// An Index is not safe for concurrent use. Callers that share an Index
// across goroutines must serialize access with their own lock; hashindex
// does not attempt to detect or prevent concurrent misuse.
//
// # Views and mutation
//
// []byte views returned by Get and iteration alias the Index's internal
// storage. They are valid only until the next mutating call (Set, Delete,
// Add, Merge) or even another Get — a successful Get may opportunistically
// compact the probe chain, moving the found entry in memory (see the
// note on in-place compaction on lookup in index.go). Callers that
// need a value beyond the next call must copy it out.
package hashindex
