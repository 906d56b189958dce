package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/grit/pkg/object"
)

// Test 1: Add stages a file; the blob is in the store and the entry
// carries the stat snapshot.
func TestAdd_SingleFile(t *testing.T) {
	r := newTestRepo(t)
	content := "hello staging\n"
	writeWorkFile(t, r, "main.txt", content)

	staged, missing, err := r.Add([]string{"main.txt"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("missing = %v, want none", missing)
	}
	if len(staged) != 1 || staged[0] != "main.txt" {
		t.Fatalf("staged = %v, want [main.txt]", staged)
	}

	ix, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	e, ok := ix.Entries["main.txt"]
	if !ok {
		t.Fatalf("index missing entry for main.txt; entries: %v", ix.Paths())
	}
	if e.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", e.Size, len(content))
	}
	if e.MTime == 0 || e.CTime == 0 {
		t.Errorf("stat snapshot incomplete: mtime=%d ctime=%d", e.MTime, e.CTime)
	}
	if e.Mode != object.ModeRegular {
		t.Errorf("Mode = %v, want regular", e.Mode)
	}

	b, err := r.Store.ReadBlob(e.Hash)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(b.Data) != content {
		t.Errorf("blob = %q, want %q", b.Data, content)
	}
}

// Test 2: a missing index file loads as an empty index.
func TestLoadIndex_Missing(t *testing.T) {
	r := newTestRepo(t)
	ix, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if len(ix.Entries) != 0 {
		t.Errorf("entries = %v, want none", ix.Paths())
	}
}

// Test 3: one corrupt record among N valid ones is skipped on its own;
// the load yields exactly N-1 entries.
func TestLoadIndex_SkipsCorruptLine(t *testing.T) {
	r := newTestRepo(t)
	h := object.SHA1.HashBytes([]byte("x"))
	lines := []string{
		fmt.Sprintf("a.txt\t%s\t1\t2\t33188\t3", h),
		fmt.Sprintf("bad.txt\t%s\t1\t2\t33188\t3", "not-a-hash"),
		fmt.Sprintf("c.txt\t%s\t4\t5\t33261\t6", h),
	}
	if err := os.WriteFile(r.indexPath(), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	ix, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if len(ix.Entries) != 2 {
		t.Fatalf("loaded %d entries, want 2; paths: %v", len(ix.Entries), ix.Paths())
	}
	if _, ok := ix.Entries["bad.txt"]; ok {
		t.Error("corrupt record for bad.txt survived the load")
	}
	if ix.Entries["c.txt"].Mode != object.ModeExecutable {
		t.Errorf("c.txt mode = %v, want executable", ix.Entries["c.txt"].Mode)
	}
}

// Test 4: other malformed shapes are skipped as well: wrong field
// count, bad integers, directory mode, unparsable path.
func TestLoadIndex_MalformedShapes(t *testing.T) {
	r := newTestRepo(t)
	h := object.SHA1.HashBytes([]byte("x"))
	lines := []string{
		"too\tfew\tfields",
		fmt.Sprintf("a.txt\t%s\tNaN\t2\t33188\t3", h),
		fmt.Sprintf("b.txt\t%s\t1\t2\t16384\t3", h),
		fmt.Sprintf("..\t%s\t1\t2\t33188\t3", h),
		fmt.Sprintf("ok.txt\t%s\t1\t2\t33188\t3", h),
	}
	if err := os.WriteFile(r.indexPath(), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	ix, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if len(ix.Entries) != 1 {
		t.Fatalf("loaded %d entries, want 1; paths: %v", len(ix.Entries), ix.Paths())
	}
	if _, ok := ix.Entries["ok.txt"]; !ok {
		t.Error("ok.txt missing from load")
	}
}

// Test 5: AddOrUpdate is strict about hashes, unlike load.
func TestIndexAddOrUpdate_RejectsBadHash(t *testing.T) {
	ix := NewIndex(object.SHA1)
	err := ix.AddOrUpdate(IndexEntry{Path: "a.txt", Hash: "zz"})
	if !errors.Is(err, object.ErrInvalidHash) {
		t.Fatalf("error = %v, want ErrInvalidHash", err)
	}
	if len(ix.Entries) != 0 {
		t.Error("rejected entry was stored anyway")
	}

	// A sha256-length id is invalid for a sha1 index too.
	h256 := object.SHA256.HashBytes([]byte("x"))
	if err := ix.AddOrUpdate(IndexEntry{Path: "a.txt", Hash: h256}); !errors.Is(err, object.ErrInvalidHash) {
		t.Fatalf("error = %v, want ErrInvalidHash for wrong-length id", err)
	}
}

// Test 6: paths normalize on insert; the last write wins.
func TestIndexAddOrUpdate_NormalizesPaths(t *testing.T) {
	ix := NewIndex(object.SHA1)
	h1 := object.SHA1.HashBytes([]byte("one"))
	h2 := object.SHA1.HashBytes([]byte("two"))

	if err := ix.AddOrUpdate(IndexEntry{Path: "./dir/../a.txt", Hash: h1}); err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}
	if err := ix.AddOrUpdate(IndexEntry{Path: "a.txt", Hash: h2}); err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}

	if len(ix.Entries) != 1 {
		t.Fatalf("entries = %v, want a single a.txt", ix.Paths())
	}
	if ix.Entries["a.txt"].Hash != h2 {
		t.Errorf("hash = %s, want the later write %s", ix.Entries["a.txt"].Hash, h2)
	}
	if ix.Entries["a.txt"].Mode != object.ModeRegular {
		t.Errorf("zero mode not defaulted: %v", ix.Entries["a.txt"].Mode)
	}

	if err := ix.AddOrUpdate(IndexEntry{Path: "../escape.txt", Hash: h1}); err == nil {
		t.Error("AddOrUpdate accepted a path escaping the root")
	}
}

// Test 7: Remove is a no-op for absent paths and normalizes too.
func TestIndexRemove(t *testing.T) {
	ix := NewIndex(object.SHA1)
	h := object.SHA1.HashBytes([]byte("one"))
	if err := ix.AddOrUpdate(IndexEntry{Path: "dir/a.txt", Hash: h}); err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}

	ix.Remove("nope.txt")
	if len(ix.Entries) != 1 {
		t.Error("removing an absent path changed the index")
	}
	ix.Remove("./dir/a.txt")
	if len(ix.Entries) != 0 {
		t.Errorf("entries = %v, want none", ix.Paths())
	}
}

// Test 8: save/load round trip preserves every field, and the save
// leaves no temp files behind.
func TestIndexSaveLoad_RoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ix := NewIndex(r.Store.Algorithm())
	h := object.SHA1.HashBytes([]byte("payload"))
	want := IndexEntry{Path: "dir/a.txt", Hash: h, Size: 7, MTime: 1234567890123456789, Mode: object.ModeExecutable, CTime: 987654321}
	if err := ix.AddOrUpdate(want); err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}
	if err := r.SaveIndex(ix); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}

	loaded, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	got, ok := loaded.Entries["dir/a.txt"]
	if !ok {
		t.Fatalf("entry missing after reload; paths: %v", loaded.Paths())
	}
	if *got != want {
		t.Errorf("entry = %+v, want %+v", *got, want)
	}

	matches, err := filepath.Glob(filepath.Join(r.GritDir, ".index-tmp-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

// Test 9: Add on a directory stages its files recursively, skipping
// ignored ones.
func TestAdd_DirectoryRecursive(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "src/a.go", "package a\n")
	writeWorkFile(t, r, "src/sub/b.go", "package sub\n")
	writeWorkFile(t, r, "src/debug.log", "noise\n")
	writeWorkFile(t, r, ".gritignore", "*.log\n")

	staged, missing, err := r.Add([]string{"src"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("missing = %v, want none", missing)
	}
	if len(staged) != 2 {
		t.Fatalf("staged = %v, want the two .go files", staged)
	}

	ix, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	for _, p := range []string{"src/a.go", "src/sub/b.go"} {
		if _, ok := ix.Entries[p]; !ok {
			t.Errorf("index missing %s", p)
		}
	}
	if _, ok := ix.Entries["src/debug.log"]; ok {
		t.Error("ignored file was staged")
	}
}

// Test 10: specs that match nothing are reported, not fatal.
func TestAdd_MissingSpec(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "a.txt", "one\n")

	staged, missing, err := r.Add([]string{"a.txt", "ghost.txt"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(staged) != 1 || staged[0] != "a.txt" {
		t.Errorf("staged = %v, want [a.txt]", staged)
	}
	if len(missing) != 1 || missing[0] != "ghost.txt" {
		t.Errorf("missing = %v, want [ghost.txt]", missing)
	}
}

// Test 11: adding a path that was deleted from disk stages the
// deletion by dropping its entry.
func TestAdd_StagesDeletion(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "a.txt", "one\n")
	if _, _, err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := os.Remove(filepath.Join(r.RootDir, "a.txt")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	staged, missing, err := r.Add([]string{"a.txt"})
	if err != nil {
		t.Fatalf("Add after delete: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("missing = %v, want none (deletion staged)", missing)
	}
	if len(staged) != 1 {
		t.Errorf("staged = %v, want the deleted path", staged)
	}

	ix, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if _, ok := ix.Entries["a.txt"]; ok {
		t.Error("deleted file still staged")
	}
}

// Test 12: glob specs stage every match.
func TestAdd_GlobSpec(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "a.txt", "one\n")
	writeWorkFile(t, r, "b.txt", "two\n")
	writeWorkFile(t, r, "dir/c.txt", "three\n")

	staged, _, err := r.Add([]string{"*.txt"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(staged) != 2 {
		t.Fatalf("staged = %v, want the two root-level files", staged)
	}
	ix, err := r.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if _, ok := ix.Entries["dir/c.txt"]; ok {
		t.Error("* crossed a path separator")
	}
}
