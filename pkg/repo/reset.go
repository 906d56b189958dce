package repo

import (
	"github.com/odvcencio/grit/pkg/object"
)

// ResetHead moves the current branch (or HEAD itself when detached) to
// the commit named by rev and clears the index. The worktree is left
// untouched, so prior content shows up as untracked or staged-deleted
// in the next status. Returns the commit HEAD now points at.
func (r *Repo) ResetHead(rev string) (object.Hash, error) {
	commit, err := r.ResolveRevision(rev)
	if err != nil {
		return "", err
	}
	// Resolve the target before moving anything so a bogus id fails
	// with the ref still intact.
	if _, err := r.Store.ReadCommit(commit); err != nil {
		return "", err
	}
	if err := r.UpdateHead(commit); err != nil {
		return "", err
	}

	ix, err := r.LoadIndex()
	if err != nil {
		return "", err
	}
	ix.Clear()
	if err := r.SaveIndex(ix); err != nil {
		return "", err
	}
	return commit, nil
}
