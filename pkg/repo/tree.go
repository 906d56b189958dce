package repo

import (
	"path"
	"sort"
	"strings"

	"github.com/odvcencio/grit/pkg/object"
)

// BuildTree writes the tree objects for every directory level reachable
// from ix and returns the root tree id. An empty index yields the empty
// id and writes nothing; the caller decides whether that is an error.
func (r *Repo) BuildTree(ix *Index) (object.Hash, error) {
	if len(ix.Entries) == 0 {
		return "", nil
	}
	return r.buildTreeDir(ix, "")
}

// buildTreeDir emits the tree object for one directory level. prefix is
// "" for the root or "<dir>/" for a subdirectory. Each direct child
// becomes exactly one entry; a subdirectory recurses once however many
// of its descendants are staged.
func (r *Repo) buildTreeDir(ix *Index, prefix string) (object.Hash, error) {
	files := make(map[string]*IndexEntry)
	subdirs := make(map[string]struct{})

	for p, e := range ix.Entries {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			subdirs[rest[:i]] = struct{}{}
		} else {
			files[rest] = e
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		if _, isFile := files[name]; !isFile {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	entries := make([]object.TreeEntry, 0, len(names))
	for _, name := range names {
		if e, ok := files[name]; ok {
			entries = append(entries, object.TreeEntry{
				Mode: e.Mode,
				Name: name,
				Hash: e.Hash,
			})
			continue
		}
		sub, err := r.buildTreeDir(ix, prefix+name+"/")
		if err != nil {
			return "", err
		}
		entries = append(entries, object.TreeEntry{
			Mode: object.ModeDir,
			Name: name,
			Hash: sub,
		})
	}

	return r.Store.WriteTree(&object.TreeObj{Entries: entries})
}

// TreeFileEntry is one file reachable from a tree, keyed by its repo
// relative path.
type TreeFileEntry struct {
	Path string
	Hash object.Hash
	Mode object.FileMode
}

// FlattenTree expands a tree into the files beneath it, depth first.
func (r *Repo) FlattenTree(tree object.Hash) ([]TreeFileEntry, error) {
	var out []TreeFileEntry
	if err := r.flattenTreeRec(tree, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) flattenTreeRec(tree object.Hash, dir string, out *[]TreeFileEntry) error {
	t, err := r.Store.ReadTree(tree)
	if err != nil {
		return err
	}
	for _, e := range t.Entries {
		p := path.Join(dir, e.Name)
		if e.Mode.IsDir() {
			if err := r.flattenTreeRec(e.Hash, p, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, TreeFileEntry{Path: p, Hash: e.Hash, Mode: e.Mode})
	}
	return nil
}

// commitTreeFiles returns the files of a commit's tree keyed by path.
// An empty commit id (unborn HEAD) yields an empty map.
func (r *Repo) commitTreeFiles(commit object.Hash) (map[string]TreeFileEntry, error) {
	files := make(map[string]TreeFileEntry)
	if commit == "" {
		return files, nil
	}
	c, err := r.Store.ReadCommit(commit)
	if err != nil {
		return nil, err
	}
	entries, err := r.FlattenTree(c.TreeHash)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		files[e.Path] = e
	}
	return files, nil
}
