package hashindex

import "errors"

// Error classification.
//
// ErrCorrupt and ErrIncompatible are rebuild-class: the file cannot be
// trusted and should be discarded and rebuilt from the source of truth.
// ErrInvalidInput and ErrClosed are programmer-error class: the caller
// passed arguments, or used a handle, outside the documented contract.
//
// "Not found" on Get or Delete is not an error at all (see spec.md §7): Get
// reports it via its ok return, and Delete of an absent key returns nil.
var (
	// ErrCorrupt indicates the index file's bytes are internally
	// inconsistent (bad length, unreadable bucket blob).
	ErrCorrupt = errors.New("hashindex: corrupt")

	// ErrIncompatible indicates the file's header does not match what the
	// caller asked to open (bad magic, key_size/value_size mismatch).
	ErrIncompatible = errors.New("hashindex: incompatible")

	// ErrInvalidInput indicates a caller-supplied argument is outside the
	// documented contract (key/value size out of range, wrong-length key
	// or value, negative capacity).
	ErrInvalidInput = errors.New("hashindex: invalid input")

	// ErrClosed indicates an operation was attempted on an Index after
	// Close.
	ErrClosed = errors.New("hashindex: closed")
)
