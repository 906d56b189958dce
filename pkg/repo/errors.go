package repo

import "errors"

// Error kinds surfaced by the repository layer. Callers match with
// errors.Is; call sites wrap these with the offending path or name.
var (
	ErrNotRepository      = errors.New("not a grit repository")
	ErrAlreadyInitialized = errors.New("repository already initialized")
	ErrRefNotFound        = errors.New("ref not found")

	// Commit refusals. The messages double as the user-facing text, so
	// the CLI prints them verbatim.
	ErrNothingToCommit = errors.New("nothing to commit")
	ErrNoChanges       = errors.New("nothing to commit, working tree clean")
)
