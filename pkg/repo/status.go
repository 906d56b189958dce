package repo

import (
	"os"
	"path/filepath"
	"sort"
)

// FileStatus classifies one path in the status report.
type FileStatus int

const (
	StatusClean     FileStatus = iota
	StatusNew                  // staged, absent from the HEAD tree
	StatusModified             // staged with different content than HEAD
	StatusDeleted              // in the HEAD tree, absent from the index
	StatusDirty                // worktree content differs from the index
	StatusMissing              // staged, absent from the worktree
	StatusUntracked            // on disk, unknown to the index
)

// StatusEntry is one path and its classification. A path staged with
// further worktree edits appears twice, once per comparison axis.
type StatusEntry struct {
	Path   string
	Status FileStatus
}

// Status compares the worktree against the index and the index against
// the HEAD tree, returning the non-clean paths sorted.
//
// A tracked file whose size and mtime both match the index snapshot is
// assumed clean without reading it; only a mismatch triggers a re-hash.
// A same-size edit landing within one mtime tick can therefore go
// unreported until the file is touched again. That narrow window is the
// accepted price of not hashing the whole tree on every status.
func (r *Repo) Status() ([]StatusEntry, error) {
	ix, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}
	head, err := r.Head()
	if err != nil {
		return nil, err
	}
	headFiles, err := r.commitTreeFiles(head.Commit)
	if err != nil {
		return nil, err
	}

	ign := NewIgnoreChecker(r.RootDir)
	workFiles := make(map[string]os.FileInfo)
	err = r.walkWorktreeFiles(ign, func(rel string, info os.FileInfo) error {
		workFiles[rel] = info
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []StatusEntry

	// Worktree against the index.
	for rel, info := range workFiles {
		e, tracked := ix.Entries[rel]
		if !tracked {
			out = append(out, StatusEntry{Path: rel, Status: StatusUntracked})
			continue
		}
		clean, err := r.worktreeMatchesEntry(rel, info, e)
		if err != nil {
			return nil, err
		}
		if !clean {
			out = append(out, StatusEntry{Path: rel, Status: StatusDirty})
		}
	}
	for rel := range ix.Entries {
		if _, onDisk := workFiles[rel]; !onDisk {
			out = append(out, StatusEntry{Path: rel, Status: StatusMissing})
		}
	}

	// Index against the HEAD tree.
	for rel, e := range ix.Entries {
		h, inHead := headFiles[rel]
		switch {
		case !inHead:
			out = append(out, StatusEntry{Path: rel, Status: StatusNew})
		case h.Hash != e.Hash || h.Mode != e.Mode:
			out = append(out, StatusEntry{Path: rel, Status: StatusModified})
		}
	}
	for rel := range headFiles {
		if _, staged := ix.Entries[rel]; !staged {
			out = append(out, StatusEntry{Path: rel, Status: StatusDeleted})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

// worktreeMatchesEntry is the status fast path: size and mtime both
// matching the snapshot means clean without reading the file. Anything
// else re-hashes the content and compares blob id and mode.
func (r *Repo) worktreeMatchesEntry(rel string, info os.FileInfo, e *IndexEntry) (bool, error) {
	if info.Size() == e.Size && info.ModTime().UnixNano() == e.MTime {
		return true, nil
	}
	h, err := r.Store.HashFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		return false, err
	}
	return h == e.Hash && modeFromFileInfo(info) == e.Mode, nil
}
