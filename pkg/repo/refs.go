package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

const headRefPrefix = "ref: refs/heads/"

// HeadState describes where HEAD points. Branch is empty when HEAD is
// detached at a commit; Commit is empty when the branch is unborn.
type HeadState struct {
	Commit object.Hash
	Branch string
}

// Detached reports whether HEAD points directly at a commit.
func (h HeadState) Detached() bool { return h.Branch == "" }

// Unborn reports whether HEAD is on a branch with no commits yet.
func (h HeadState) Unborn() bool { return h.Branch != "" && h.Commit == "" }

func (r *Repo) headPath() string { return filepath.Join(r.GritDir, "HEAD") }

func (r *Repo) refPath(branch string) string {
	return filepath.Join(r.GritDir, "refs", "heads", branch)
}

// Head reads .grit/HEAD and resolves it. The symbolic form follows the
// branch ref file; a missing or empty ref file means the branch is
// unborn, which is a valid state, not an error. Any other content is a
// detached commit id.
func (r *Repo) Head() (HeadState, error) {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		return HeadState{}, fmt.Errorf("read HEAD: %w", err)
	}
	content := strings.TrimSpace(string(data))

	if strings.HasPrefix(content, headRefPrefix) {
		branch := strings.TrimPrefix(content, headRefPrefix)
		commit, err := r.readRefHash(branch)
		if err != nil {
			return HeadState{}, err
		}
		return HeadState{Commit: commit, Branch: branch}, nil
	}

	if !r.Store.Algorithm().ValidHex(content) {
		return HeadState{}, fmt.Errorf("corrupt HEAD content %q", content)
	}
	return HeadState{Commit: object.Hash(content)}, nil
}

// readRefHash returns the commit recorded for branch. A missing or
// empty ref file yields "" so callers see the unborn state directly.
func (r *Repo) readRefHash(branch string) (object.Hash, error) {
	data, err := os.ReadFile(r.refPath(branch))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read ref %s: %w", branch, err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", nil
	}
	if !r.Store.Algorithm().ValidHex(content) {
		return "", fmt.Errorf("ref %s: corrupt commit id %q", branch, content)
	}
	return object.Hash(content), nil
}

// UpdateHead records commit as the new HEAD position: in the current
// branch's ref file when attached, in HEAD itself when detached.
func (r *Repo) UpdateHead(commit object.Hash) error {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		return fmt.Errorf("read HEAD: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, headRefPrefix) {
		branch := strings.TrimPrefix(content, headRefPrefix)
		return r.writeRef(branch, commit)
	}
	return r.setHeadDetached(commit)
}

func (r *Repo) writeRef(branch string, commit object.Hash) error {
	return writeRefFile(r.refPath(branch), string(commit)+"\n")
}

func (r *Repo) setHeadBranch(branch string) error {
	return writeRefFile(r.headPath(), headRefPrefix+branch+"\n")
}

func (r *Repo) setHeadDetached(commit object.Hash) error {
	return writeRefFile(r.headPath(), string(commit)+"\n")
}

// writeRefFile replaces path atomically through a temp file in the same
// directory, so a concurrent reader never observes a partial write.
func writeRefFile(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ref-tmp-*")
	if err != nil {
		return fmt.Errorf("write ref: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ref: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write ref: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write ref: %w", err)
	}
	return nil
}

// ResolveRevision turns a user-supplied revision into a commit id.
// Supported forms: "HEAD", a branch name, a full hex id, each
// optionally followed by ~N for the Nth first-parent ancestor.
func (r *Repo) ResolveRevision(rev string) (object.Hash, error) {
	base := rev
	ancestors := 0
	if i := strings.IndexByte(rev, '~'); i >= 0 {
		base = rev[:i]
		n, err := strconv.Atoi(rev[i+1:])
		if err != nil || n < 0 {
			return "", fmt.Errorf("revision %q: bad ancestor count", rev)
		}
		ancestors = n
	}

	var commit object.Hash
	switch {
	case base == "" || base == "HEAD":
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		if head.Commit == "" {
			return "", fmt.Errorf("revision %q: no commits yet", rev)
		}
		commit = head.Commit
	case r.BranchExists(base):
		c, err := r.readRefHash(base)
		if err != nil {
			return "", err
		}
		if c == "" {
			return "", fmt.Errorf("revision %q: branch has no commits yet", rev)
		}
		commit = c
	case r.Store.Algorithm().ValidHex(base):
		commit = object.Hash(base)
	default:
		return "", fmt.Errorf("revision %q: %w", rev, ErrRefNotFound)
	}

	if ancestors > 0 {
		return r.NthAncestor(commit, ancestors)
	}
	return commit, nil
}
