package repo

import (
	"os"
	"strings"
	"testing"

	"github.com/odvcencio/grit/pkg/object"
)

// Test 1: only glob metacharacters make a spec a pattern.
func TestIsPattern(t *testing.T) {
	tests := []struct {
		spec string
		want bool
	}{
		{"a.txt", false},
		{"dir/sub/file.go", false},
		{"*.go", true},
		{"cmd/**", true},
		{"file?.txt", true},
		{"[ab].txt", true},
		{"{a,b}.txt", true},
	}
	for _, tt := range tests {
		if got := IsPattern(tt.spec); got != tt.want {
			t.Errorf("IsPattern(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

// Test 2: * stays inside one path segment, ** crosses them.
func TestCompileSpec_Separators(t *testing.T) {
	star, err := compileSpec("*.txt")
	if err != nil {
		t.Fatalf("compileSpec: %v", err)
	}
	if !star.Match("a.txt") {
		t.Error("*.txt missed a.txt")
	}
	if star.Match("dir/a.txt") {
		t.Error("*.txt crossed a separator")
	}

	doublestar, err := compileSpec("**.txt")
	if err != nil {
		t.Fatalf("compileSpec: %v", err)
	}
	if !doublestar.Match("dir/sub/a.txt") {
		t.Error("**.txt failed to cross separators")
	}

	prefixed, err := compileSpec("src/**")
	if err != nil {
		t.Fatalf("compileSpec: %v", err)
	}
	if !prefixed.Match("src/deep/nested.go") {
		t.Error("src/** missed a nested path")
	}
	if prefixed.Match("other/file.go") {
		t.Error("src/** matched outside its prefix")
	}

	if _, err := compileSpec("[unclosed"); err == nil {
		t.Error("compileSpec accepted a malformed pattern")
	}
}

// Test 3: matchIndex selects staged paths by glob or by literal.
func TestMatchIndex(t *testing.T) {
	r := newTestRepo(t)
	ix := NewIndex(r.Store.Algorithm())
	h := object.SHA1.HashBytes([]byte("x"))
	for _, p := range []string{"a.go", "b.go", "docs/c.md", "docs/d.md"} {
		if err := ix.AddOrUpdate(IndexEntry{Path: p, Hash: h}); err != nil {
			t.Fatalf("AddOrUpdate %s: %v", p, err)
		}
	}

	got, err := r.matchIndex(ix, "*.go")
	if err != nil {
		t.Fatalf("matchIndex glob: %v", err)
	}
	if len(got) != 2 || got[0] != "a.go" || got[1] != "b.go" {
		t.Errorf("glob match = %v, want [a.go b.go]", got)
	}

	got, err = r.matchIndex(ix, "docs/c.md")
	if err != nil {
		t.Fatalf("matchIndex literal: %v", err)
	}
	if len(got) != 1 || got[0] != "docs/c.md" {
		t.Errorf("literal match = %v", got)
	}

	got, err = r.matchIndex(ix, "ghost.go")
	if err != nil {
		t.Fatalf("matchIndex missing: %v", err)
	}
	if got != nil {
		t.Errorf("missing literal matched %v", got)
	}
}

// Test 4: the worktree walk prunes ignored directories and never
// yields repository metadata.
func TestWalkWorktreeFiles(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "a.go", "package a\n")
	writeWorkFile(t, r, "vendor/dep.go", "package dep\n")
	writeWorkFile(t, r, ".gritignore", "vendor/\n")

	ign := NewIgnoreChecker(r.RootDir)
	seen := make(map[string]bool)
	err := r.walkWorktreeFiles(ign, func(rel string, info os.FileInfo) error {
		seen[rel] = true
		return nil
	})
	if err != nil {
		t.Fatalf("walkWorktreeFiles: %v", err)
	}

	if !seen["a.go"] || !seen[".gritignore"] {
		t.Errorf("seen = %v, missing plain files", seen)
	}
	if seen["vendor/dep.go"] {
		t.Error("walk descended into an ignored directory")
	}
	for rel := range seen {
		if strings.HasPrefix(rel, markerDir+"/") {
			t.Errorf("walk yielded metadata path %s", rel)
		}
	}
}

// Test 5: matchWorktree pairs the walk with a glob.
func TestMatchWorktree(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "a.go", "package a\n")
	writeWorkFile(t, r, "b.txt", "text\n")
	writeWorkFile(t, r, "cmd/main.go", "package main\n")

	ign := NewIgnoreChecker(r.RootDir)
	got, err := r.matchWorktree("**.go", ign)
	if err != nil {
		t.Fatalf("matchWorktree: %v", err)
	}
	if len(got) != 2 || got[0] != "a.go" || got[1] != "cmd/main.go" {
		t.Errorf("matches = %v, want [a.go cmd/main.go]", got)
	}
}
