package repo

import (
	"testing"

	"github.com/odvcencio/grit/pkg/object"
)

func stageBlob(t *testing.T, r *Repo, ix *Index, path, content string) object.Hash {
	t.Helper()
	h, err := r.Store.WriteBlob(&object.Blob{Data: []byte(content)})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	if err := ix.AddOrUpdate(IndexEntry{Path: path, Hash: h, Size: int64(len(content))}); err != nil {
		t.Fatalf("AddOrUpdate %s: %v", path, err)
	}
	return h
}

// Test 1: a two-level index produces a root tree referencing a file
// entry and a subtree, with the file hash carried through.
func TestBuildTree_Nested(t *testing.T) {
	r := newTestRepo(t)
	ix := NewIndex(r.Store.Algorithm())
	h1 := stageBlob(t, r, ix, "a.txt", "alpha\n")
	h2 := stageBlob(t, r, ix, "dir/b.txt", "beta\n")

	root, err := r.BuildTree(ix)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	tr, err := r.Store.ReadTree(root)
	if err != nil {
		t.Fatalf("ReadTree root: %v", err)
	}
	if len(tr.Entries) != 2 {
		t.Fatalf("root entries = %d, want 2", len(tr.Entries))
	}
	if tr.Entries[0].Name != "a.txt" || tr.Entries[0].Hash != h1 || tr.Entries[0].Mode != object.ModeRegular {
		t.Errorf("entry 0 = %+v, want a.txt regular %s", tr.Entries[0], h1)
	}
	if tr.Entries[1].Name != "dir" || tr.Entries[1].Mode != object.ModeDir {
		t.Errorf("entry 1 = %+v, want dir subtree", tr.Entries[1])
	}

	sub, err := r.Store.ReadTree(tr.Entries[1].Hash)
	if err != nil {
		t.Fatalf("ReadTree dir: %v", err)
	}
	if len(sub.Entries) != 1 || sub.Entries[0].Name != "b.txt" || sub.Entries[0].Hash != h2 {
		t.Errorf("dir entries = %+v, want a single b.txt -> %s", sub.Entries, h2)
	}
}

// Test 2: insertion order does not change the result.
func TestBuildTree_OrderIndependent(t *testing.T) {
	r := newTestRepo(t)

	forward := NewIndex(r.Store.Algorithm())
	stageBlob(t, r, forward, "a.txt", "alpha\n")
	stageBlob(t, r, forward, "z.txt", "omega\n")
	stageBlob(t, r, forward, "dir/b.txt", "beta\n")

	reverse := NewIndex(r.Store.Algorithm())
	stageBlob(t, r, reverse, "dir/b.txt", "beta\n")
	stageBlob(t, r, reverse, "z.txt", "omega\n")
	stageBlob(t, r, reverse, "a.txt", "alpha\n")

	t1, err := r.BuildTree(forward)
	if err != nil {
		t.Fatalf("BuildTree forward: %v", err)
	}
	t2, err := r.BuildTree(reverse)
	if err != nil {
		t.Fatalf("BuildTree reverse: %v", err)
	}
	if t1 != t2 {
		t.Errorf("tree ids differ: %s vs %s", t1, t2)
	}
}

// Test 3: an empty index produces no tree at all.
func TestBuildTree_Empty(t *testing.T) {
	r := newTestRepo(t)
	root, err := r.BuildTree(NewIndex(r.Store.Algorithm()))
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if root != "" {
		t.Errorf("root = %q, want empty id for empty index", root)
	}
}

// Test 4: directories with identical contents share one subtree id.
func TestBuildTree_SharedSubtrees(t *testing.T) {
	r := newTestRepo(t)
	ix := NewIndex(r.Store.Algorithm())
	stageBlob(t, r, ix, "one/data.txt", "same bytes\n")
	stageBlob(t, r, ix, "two/data.txt", "same bytes\n")

	root, err := r.BuildTree(ix)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	tr, err := r.Store.ReadTree(root)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if len(tr.Entries) != 2 {
		t.Fatalf("root entries = %d, want 2", len(tr.Entries))
	}
	if tr.Entries[0].Hash != tr.Entries[1].Hash {
		t.Errorf("subtree ids differ: %s vs %s", tr.Entries[0].Hash, tr.Entries[1].Hash)
	}
}

// Test 5: FlattenTree walks back out to the full path list.
func TestFlattenTree(t *testing.T) {
	r := newTestRepo(t)
	ix := NewIndex(r.Store.Algorithm())
	h1 := stageBlob(t, r, ix, "a.txt", "alpha\n")
	h2 := stageBlob(t, r, ix, "dir/sub/b.txt", "beta\n")

	root, err := r.BuildTree(ix)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	files, err := r.FlattenTree(root)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("flattened %d files, want 2: %+v", len(files), files)
	}
	if files[0].Path != "a.txt" || files[0].Hash != h1 {
		t.Errorf("files[0] = %+v, want a.txt -> %s", files[0], h1)
	}
	if files[1].Path != "dir/sub/b.txt" || files[1].Hash != h2 {
		t.Errorf("files[1] = %+v, want dir/sub/b.txt -> %s", files[1], h2)
	}
}

// Test 6: executable mode survives the tree round trip.
func TestBuildTree_ExecutableMode(t *testing.T) {
	r := newTestRepo(t)
	ix := NewIndex(r.Store.Algorithm())
	h, err := r.Store.WriteBlob(&object.Blob{Data: []byte("#!/bin/sh\n")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	if err := ix.AddOrUpdate(IndexEntry{Path: "run.sh", Hash: h, Mode: object.ModeExecutable}); err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}

	root, err := r.BuildTree(ix)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	files, err := r.FlattenTree(root)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	if len(files) != 1 || files[0].Mode != object.ModeExecutable {
		t.Errorf("files = %+v, want run.sh executable", files)
	}
}
