package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/grit/pkg/object"
)

// Checkout switches the worktree to target, a branch name or a full
// commit id (the latter detaches HEAD). The worktree must be clean.
// Files of the target tree are written out, files tracked only by the
// old position are removed, and the index is rebuilt from the fresh
// checkout. Switching to an unborn branch flips HEAD without touching
// files.
func (r *Repo) Checkout(target string) error {
	if err := r.ensureClean(); err != nil {
		return fmt.Errorf("checkout %s: %w", target, err)
	}

	var commit object.Hash
	toBranch := r.BranchExists(target)
	if toBranch {
		c, err := r.BranchCommit(target)
		if err != nil {
			return err
		}
		commit = c
	} else {
		if !r.Store.Algorithm().ValidHex(target) {
			return fmt.Errorf("checkout %s: %w", target, ErrRefNotFound)
		}
		commit = object.Hash(target)
	}

	if commit != "" {
		if err := r.materialize(commit); err != nil {
			return err
		}
	}

	if toBranch {
		return r.setHeadBranch(target)
	}
	return r.setHeadDetached(commit)
}

// CheckoutNewBranch creates name at the current commit and attaches
// HEAD to it without touching the worktree or the index. On an unborn
// HEAD the new branch starts unborn too.
func (r *Repo) CheckoutNewBranch(name string) error {
	head, err := r.Head()
	if err != nil {
		return err
	}
	if err := r.CreateBranch(name, head.Commit); err != nil {
		return err
	}
	return r.setHeadBranch(name)
}

// ensureClean fails when any tracked file has staged or unstaged
// changes. Untracked files never block a checkout.
func (r *Repo) ensureClean() error {
	entries, err := r.Status()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Status != StatusUntracked {
			return fmt.Errorf("uncommitted changes in %s", e.Path)
		}
	}
	return nil
}

// materialize replaces the worktree and the index with commit's tree.
func (r *Repo) materialize(commit object.Hash) error {
	target, err := r.commitTreeFiles(commit)
	if err != nil {
		return err
	}
	tracked, err := r.trackedFiles()
	if err != nil {
		return err
	}

	for rel := range tracked {
		if _, keep := target[rel]; keep {
			continue
		}
		abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
		if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checkout: remove %s: %w", rel, err)
		}
		r.removeEmptyParents(filepath.Dir(abs))
	}

	ix := NewIndex(r.Store.Algorithm())
	for rel, e := range target {
		abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		b, err := r.Store.ReadBlob(e.Hash)
		if err != nil {
			return err
		}
		if err := os.WriteFile(abs, b.Data, filePermFromMode(e.Mode)); err != nil {
			return fmt.Errorf("checkout: write %s: %w", rel, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		meta := probeFileMeta(info)
		if err := ix.AddOrUpdate(IndexEntry{
			Path:  rel,
			Hash:  e.Hash,
			Size:  meta.Size,
			MTime: meta.MTimeNano,
			Mode:  e.Mode,
			CTime: meta.CTimeNano,
		}); err != nil {
			return err
		}
	}
	return r.SaveIndex(ix)
}

// trackedFiles is the union of paths known to HEAD's tree and to the
// index, the set a checkout is allowed to remove.
func (r *Repo) trackedFiles() (map[string]struct{}, error) {
	out := make(map[string]struct{})
	head, err := r.Head()
	if err != nil {
		return nil, err
	}
	headFiles, err := r.commitTreeFiles(head.Commit)
	if err != nil {
		return nil, err
	}
	for rel := range headFiles {
		out[rel] = struct{}{}
	}
	ix, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}
	for rel := range ix.Entries {
		out[rel] = struct{}{}
	}
	return out, nil
}

// removeEmptyParents prunes directories left empty by a removal,
// stopping at the repository root.
func (r *Repo) removeEmptyParents(dir string) {
	for dir != r.RootDir {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
