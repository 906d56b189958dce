package repo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

const indexFile = "index"

// IndexEntry is one staged file: the blob written for its content plus
// the stat snapshot backing the status fast path.
type IndexEntry struct {
	Path  string
	Hash  object.Hash
	Size  int64
	MTime int64 // unix nanoseconds
	Mode  object.FileMode
	CTime int64 // unix nanoseconds
}

// Index is the staging area: one entry per normalized repo-relative
// path. Entries is exported because status, checkout and the tree
// builder all iterate and mutate it directly.
type Index struct {
	Entries map[string]*IndexEntry

	alg object.Algorithm
}

// NewIndex returns an empty index that validates entry hashes against
// alg.
func NewIndex(alg object.Algorithm) *Index {
	return &Index{Entries: make(map[string]*IndexEntry), alg: alg}
}

// normalizePath rewrites p to the index's canonical form: forward
// slashes, "." and ".." resolved lexically, no leading "./". Paths that
// escape the root, are absolute, or reduce to "." come back empty.
func normalizePath(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	if p == "." || p == ".." || p == "/" ||
		strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
		return ""
	}
	return p
}

// AddOrUpdate normalizes the entry path, validates the hash and
// replaces any previous entry for that path. Unlike load, a bad hash
// here is a hard error: it can only come from a caller bug.
func (ix *Index) AddOrUpdate(e IndexEntry) error {
	p := normalizePath(e.Path)
	if p == "" {
		return fmt.Errorf("index add: unusable path %q", e.Path)
	}
	if !ix.alg.ValidHex(string(e.Hash)) {
		return fmt.Errorf("index add %s: %w: %q", p, object.ErrInvalidHash, e.Hash)
	}
	e.Path = p
	if e.Mode == 0 {
		e.Mode = object.ModeRegular
	}
	ix.Entries[p] = &e
	return nil
}

// Remove drops the entry for p. Removing an absent path is a no-op.
func (ix *Index) Remove(p string) {
	delete(ix.Entries, normalizePath(p))
}

// Clear empties the index in memory. Callers persist with SaveIndex.
func (ix *Index) Clear() {
	ix.Entries = make(map[string]*IndexEntry)
}

// Paths returns the entry paths sorted ascending.
func (ix *Index) Paths() []string {
	paths := make([]string, 0, len(ix.Entries))
	for p := range ix.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (r *Repo) indexPath() string { return filepath.Join(r.GritDir, indexFile) }

// LoadIndex reads .grit/index, one tab-separated record per line. A
// missing file is an empty index. A record whose fields fail to parse,
// including one with a malformed hash, is skipped on its own; a corrupt
// line never fails the whole load.
func (r *Repo) LoadIndex() (*Index, error) {
	ix := NewIndex(r.Store.Algorithm())

	f, err := os.Open(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ix, nil
		}
		return nil, fmt.Errorf("load index: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		e, ok := parseIndexLine(scanner.Text(), ix.alg)
		if !ok {
			continue
		}
		ix.Entries[e.Path] = e
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return ix, nil
}

func parseIndexLine(line string, alg object.Algorithm) (*IndexEntry, bool) {
	if line == "" {
		return nil, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) != 6 {
		return nil, false
	}
	p := normalizePath(fields[0])
	if p == "" {
		return nil, false
	}
	if !alg.ValidHex(fields[1]) {
		return nil, false
	}
	size, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, false
	}
	mtime, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, false
	}
	mode, err := object.ParseFileMode(fields[4])
	if err != nil || mode.IsDir() {
		return nil, false
	}
	ctime, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return nil, false
	}
	return &IndexEntry{
		Path:  p,
		Hash:  object.Hash(fields[1]),
		Size:  size,
		MTime: mtime,
		Mode:  mode,
		CTime: ctime,
	}, true
}

// SaveIndex writes ix to .grit/index through a temp file and a single
// rename, so a failed save leaves the previous index intact.
func (r *Repo) SaveIndex(ix *Index) error {
	tmp, err := os.CreateTemp(r.GritDir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	tmpName := tmp.Name()

	for _, p := range ix.Paths() {
		e := ix.Entries[p]
		line := fmt.Sprintf("%s\t%s\t%d\t%d\t%s\t%d\n", e.Path, e.Hash, e.Size, e.MTime, e.Mode, e.CTime)
		if _, err := tmp.WriteString(line); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("save index: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index: %w", err)
	}
	if err := os.Rename(tmpName, r.indexPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// repoRelPath converts a caller-supplied path, absolute or relative to
// the current working directory, to a repo-relative slash path. A
// relative path that does not land under the root from the current
// directory is taken as already repo-relative; library callers pass
// such paths when their working directory is elsewhere.
func (r *Repo) repoRelPath(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(p) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		abs = filepath.Join(cwd, p)
	}
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return "", fmt.Errorf("path %q is outside the repository", p)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		if filepath.IsAbs(p) {
			return "", fmt.Errorf("path %q is outside the repository", p)
		}
		return normalizePath(p), nil
	}
	if rel == "." {
		return "", nil
	}
	return normalizePath(rel), nil
}

// Add stages the files selected by specs: plain paths, directories
// (recursive, ignore-aware) and glob patterns. Blobs are written as
// files are read; the index is saved once at the end. Specs that select
// nothing come back in missing rather than failing the whole batch.
func (r *Repo) Add(specs []string) (staged []string, missing []string, err error) {
	ix, err := r.LoadIndex()
	if err != nil {
		return nil, nil, err
	}
	ign := NewIgnoreChecker(r.RootDir)

	seen := make(map[string]struct{})
	for _, spec := range specs {
		paths, err := r.expandAddSpec(spec, ign, ix)
		if err != nil {
			return nil, nil, err
		}
		if len(paths) == 0 {
			missing = append(missing, spec)
			continue
		}
		for _, rel := range paths {
			if _, dup := seen[rel]; dup {
				continue
			}
			seen[rel] = struct{}{}
			if err := r.stageFile(ix, rel); err != nil {
				return nil, nil, err
			}
			staged = append(staged, rel)
		}
	}

	if len(staged) > 0 {
		if err := r.SaveIndex(ix); err != nil {
			return nil, nil, err
		}
	}
	return staged, missing, nil
}

// stageFile writes the blob for one worktree file and records its index
// entry. A path that no longer exists on disk has its entry removed,
// staging the deletion.
func (r *Repo) stageFile(ix *Index, rel string) error {
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ix.Remove(rel)
			return nil
		}
		return fmt.Errorf("add %s: %w", rel, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("add %s: %w", rel, err)
	}
	h, err := r.Store.WriteBlob(&object.Blob{Data: data})
	if err != nil {
		return err
	}
	meta := probeFileMeta(info)
	return ix.AddOrUpdate(IndexEntry{
		Path:  rel,
		Hash:  h,
		Size:  meta.Size,
		MTime: meta.MTimeNano,
		Mode:  meta.Mode,
		CTime: meta.CTimeNano,
	})
}
