package object

import "errors"

// Sentinel errors returned by the store and codecs. Callers match them with
// errors.Is; messages carry the object id or offending value.
var (
	// ErrNotFound reports that no object exists for the requested id.
	ErrNotFound = errors.New("object not found")

	// ErrCorrupt reports an object whose on-disk bytes cannot be decoded:
	// failed decompression, a malformed envelope, or a truncated body.
	ErrCorrupt = errors.New("corrupt object")

	// ErrTypeMismatch reports a typed read that found a different object kind.
	ErrTypeMismatch = errors.New("object type mismatch")

	// ErrInvalidCommit reports a commit whose tree or parent id is not a
	// well-formed digest of the expected length.
	ErrInvalidCommit = errors.New("invalid commit")

	// ErrInvalidHash reports a syntactically invalid object id supplied by a
	// caller.
	ErrInvalidHash = errors.New("invalid object id")
)
