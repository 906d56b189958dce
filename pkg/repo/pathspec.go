package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// IsPattern reports whether spec contains glob metacharacters.
func IsPattern(spec string) bool {
	return strings.ContainsAny(spec, "*?[{")
}

// compileSpec builds a matcher for a repo-relative glob. The separator
// keeps * and ? inside one path segment; ** crosses segments.
func compileSpec(spec string) (glob.Glob, error) {
	g, err := glob.Compile(spec, '/')
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", spec, err)
	}
	return g, nil
}

// walkWorktreeFiles visits every non-ignored regular file under the
// repository root with its repo-relative slash path. Ignored
// directories are pruned whole.
func (r *Repo) walkWorktreeFiles(ign *IgnoreChecker, fn func(rel string, info os.FileInfo) error) error {
	return filepath.WalkDir(r.RootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(r.RootDir, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if ign.IsIgnored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ign.IsIgnored(rel, false) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		return fn(rel, info)
	})
}

// matchWorktree returns the non-ignored worktree files matching spec,
// sorted.
func (r *Repo) matchWorktree(spec string, ign *IgnoreChecker) ([]string, error) {
	g, err := compileSpec(spec)
	if err != nil {
		return nil, err
	}
	var out []string
	err = r.walkWorktreeFiles(ign, func(rel string, info os.FileInfo) error {
		if g.Match(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// matchIndex returns the staged paths selected by spec: a glob matched
// against every entry, or one literal path.
func (r *Repo) matchIndex(ix *Index, spec string) ([]string, error) {
	if IsPattern(spec) {
		g, err := compileSpec(spec)
		if err != nil {
			return nil, err
		}
		var out []string
		for p := range ix.Entries {
			if g.Match(p) {
				out = append(out, p)
			}
		}
		sort.Strings(out)
		return out, nil
	}

	rel, err := r.repoRelPath(spec)
	if err != nil {
		return nil, err
	}
	if _, ok := ix.Entries[rel]; !ok {
		return nil, nil
	}
	return []string{rel}, nil
}

// expandAddSpec resolves one add argument to repo-relative file paths.
// Directories walk recursively; explicit file paths bypass the ignore
// rules; a path present in the index but gone from disk selects itself
// so the deletion can be staged.
func (r *Repo) expandAddSpec(spec string, ign *IgnoreChecker, ix *Index) ([]string, error) {
	if IsPattern(spec) {
		return r.matchWorktree(spec, ign)
	}

	rel, err := r.repoRelPath(spec)
	if err != nil {
		return nil, err
	}
	if rel == "" {
		// The root itself ("." or the repo dir): stage everything.
		return r.matchWorktree("**", ign)
	}

	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if _, staged := ix.Entries[rel]; staged {
				return []string{rel}, nil
			}
			return nil, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return r.matchWorktree(rel+"/**", ign)
	}
	return []string{rel}, nil
}
