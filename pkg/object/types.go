package object

import (
	"fmt"
	"strconv"
)

// Hash is a lowercase hex-encoded object id: 40 characters in sha1
// repositories, 64 in sha256 ones.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// FileMode is the numeric mode recorded for a tree entry. Exactly three
// values occur. Tree bodies and the staging index render the mode in
// decimal: 33188, 33261, 16384.
type FileMode uint32

const (
	ModeRegular    FileMode = 0o100644
	ModeExecutable FileMode = 0o100755
	ModeDir        FileMode = 0o40000
)

// String returns the decimal rendering used in serialized trees and the
// staging index.
func (m FileMode) String() string {
	return strconv.FormatUint(uint64(m), 10)
}

// IsDir reports whether the mode marks a directory entry.
func (m FileMode) IsDir() bool {
	return m == ModeDir
}

// ParseFileMode parses the decimal rendering back into a FileMode.
func ParseFileMode(s string) (FileMode, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	switch m := FileMode(n); m {
	case ModeRegular, ModeExecutable, ModeDir:
		return m, nil
	}
	return 0, fmt.Errorf("unknown file mode %q", s)
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object: a file blob or a subtree.
type TreeEntry struct {
	Mode FileMode
	Name string
	Hash Hash // blob hash for files, subtree hash for directories
}

// TreeObj holds the entries of one directory level, sorted by Name.
type TreeObj struct {
	Entries []TreeEntry
}

// Ident names the person behind a commit stamp, with the recorded
// second-resolution timestamp and UTC offset.
type Ident struct {
	Name  string
	Email string
	Unix  int64
	TZ    string // "+0000" style offset
}

// String renders the ident the way commit header lines store it.
func (i Ident) String() string {
	return fmt.Sprintf("%s <%s> %d %s", i.Name, i.Email, i.Unix, i.TZ)
}

// CommitObj represents a commit pointing to a tree with metadata. Parents
// are ordered; the first parent is the mainline.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Ident
	Committer Ident
	Message   string
}
