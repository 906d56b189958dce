package repo

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/odvcencio/grit/pkg/object"
)

// Commit writes the staged tree as a new commit and advances HEAD. It
// refuses an empty index (ErrNothingToCommit) and a tree identical to
// the parent commit's (ErrNoChanges). The message gets a trailing
// newline if it lacks one; beyond that it is stored verbatim.
func (r *Repo) Commit(message string) (object.Hash, error) {
	ix, err := r.LoadIndex()
	if err != nil {
		return "", err
	}
	if len(ix.Entries) == 0 {
		return "", ErrNothingToCommit
	}

	tree, err := r.BuildTree(ix)
	if err != nil {
		return "", err
	}

	head, err := r.Head()
	if err != nil {
		return "", err
	}

	var parents []object.Hash
	if head.Commit != "" {
		parent, err := r.Store.ReadCommit(head.Commit)
		if err != nil {
			return "", err
		}
		if parent.TreeHash == tree {
			return "", ErrNoChanges
		}
		parents = append(parents, head.Commit)
	}

	ident := r.identity(time.Now())
	c := &object.CommitObj{
		TreeHash:  tree,
		Parents:   parents,
		Author:    ident,
		Committer: ident,
		Message:   normalizeMessage(message),
	}
	id, err := r.Store.WriteCommit(c)
	if err != nil {
		return "", err
	}
	if err := r.UpdateHead(id); err != nil {
		return "", err
	}
	return id, nil
}

func normalizeMessage(msg string) string {
	if strings.HasSuffix(msg, "\n") {
		return msg
	}
	return msg + "\n"
}

// identity resolves the commit author: config [user], then the
// GRIT_AUTHOR_NAME / GRIT_AUTHOR_EMAIL environment, then a built-in
// fallback so commit never fails on a missing identity.
func (r *Repo) identity(now time.Time) object.Ident {
	var name, email string
	if cfg, err := loadConfig(r.GritDir); err == nil {
		name = cfg.User.Name
		email = cfg.User.Email
	}
	if name == "" {
		name = os.Getenv("GRIT_AUTHOR_NAME")
	}
	if email == "" {
		email = os.Getenv("GRIT_AUTHOR_EMAIL")
	}
	if name == "" {
		name = "Grit User"
	}
	if email == "" {
		email = "user@example.com"
	}
	return object.Ident{
		Name:  name,
		Email: email,
		Unix:  now.Unix(),
		TZ:    tzOffset(now),
	}
}

// tzOffset renders now's zone as a commit timezone token like "+0200".
func tzOffset(now time.Time) string {
	_, secs := now.Zone()
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d%02d", sign, secs/3600, (secs%3600)/60)
}

// LogEntry pairs a commit with its id for history listings.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks first parents starting at from ("" means HEAD) and returns
// up to limit entries; limit <= 0 means unbounded. An unborn HEAD
// yields an empty log.
func (r *Repo) Log(from object.Hash, limit int) ([]LogEntry, error) {
	if from == "" {
		head, err := r.Head()
		if err != nil {
			return nil, err
		}
		if head.Commit == "" {
			return nil, nil
		}
		from = head.Commit
	}

	var entries []LogEntry
	cur := from
	for cur != "" {
		if limit > 0 && len(entries) >= limit {
			break
		}
		c, err := r.Store.ReadCommit(cur)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LogEntry{Hash: cur, Commit: c})
		if len(c.Parents) == 0 {
			break
		}
		cur = c.Parents[0]
	}
	return entries, nil
}

// NthAncestor follows first parents n steps from id.
func (r *Repo) NthAncestor(id object.Hash, n int) (object.Hash, error) {
	cur := id
	for i := 0; i < n; i++ {
		c, err := r.Store.ReadCommit(cur)
		if err != nil {
			return "", err
		}
		if len(c.Parents) == 0 {
			return "", fmt.Errorf("%s~%d: ran out of history after %d steps", id, n, i)
		}
		cur = c.Parents[0]
	}
	return cur, nil
}
