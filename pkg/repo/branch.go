package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

func validBranchName(name string) error {
	if name == "" || name == "HEAD" ||
		strings.ContainsAny(name, "/\\ \t\n~") ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "-") {
		return fmt.Errorf("invalid branch name %q", name)
	}
	return nil
}

// CreateBranch records a new branch at commit. An empty commit is
// allowed and produces an unborn branch. Fails when a branch of that
// name already exists.
func (r *Repo) CreateBranch(name string, commit object.Hash) error {
	if err := validBranchName(name); err != nil {
		return err
	}
	if r.BranchExists(name) {
		return fmt.Errorf("branch '%s' already exists", name)
	}
	content := ""
	if commit != "" {
		if !r.Store.Algorithm().ValidHex(string(commit)) {
			return fmt.Errorf("branch %s: %w: %q", name, object.ErrInvalidHash, commit)
		}
		content = string(commit) + "\n"
	}
	return writeRefFile(r.refPath(name), content)
}

// DeleteBranch removes a branch ref. The current branch cannot be
// deleted.
func (r *Repo) DeleteBranch(name string) error {
	cur, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	if name == cur {
		return fmt.Errorf("cannot delete the current branch '%s'", name)
	}
	if err := os.Remove(r.refPath(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("branch %s: %w", name, ErrRefNotFound)
		}
		return err
	}
	return nil
}

// BranchExists reports whether a ref file exists for name.
func (r *Repo) BranchExists(name string) bool {
	info, err := os.Stat(r.refPath(name))
	return err == nil && !info.IsDir()
}

// ListBranches returns every branch name, sorted ascending.
func (r *Repo) ListBranches() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.GritDir, "refs", "heads"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch returns the branch HEAD is attached to, or "" when
// detached.
func (r *Repo) CurrentBranch() (string, error) {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, headRefPrefix) {
		return strings.TrimPrefix(content, headRefPrefix), nil
	}
	return "", nil
}

// BranchCommit returns the commit a branch points at, empty when the
// branch is unborn. Unknown branches fail with ErrRefNotFound.
func (r *Repo) BranchCommit(name string) (object.Hash, error) {
	if !r.BranchExists(name) {
		return "", fmt.Errorf("branch %s: %w", name, ErrRefNotFound)
	}
	return r.readRefHash(name)
}

// SwitchBranch attaches HEAD to an existing branch without touching the
// worktree or the index. Checkout layers the tree materialization on
// top of this.
func (r *Repo) SwitchBranch(name string) error {
	if !r.BranchExists(name) {
		return fmt.Errorf("branch %s: %w", name, ErrRefNotFound)
	}
	return r.setHeadBranch(name)
}
