package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are sorted by Name so the body
// is a pure function of the entry set. Each entry is encoded as
//
//	<decimal-mode> <name>\0<digest>
//
// where the digest is the entry hash as raw bytes, not hex.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		mode := e.Mode
		if mode == 0 {
			mode = ModeRegular
		}
		raw, err := hex.DecodeString(string(e.Hash))
		if err != nil {
			return nil, fmt.Errorf("marshal tree: entry %q: bad hash %q: %w", e.Name, e.Hash, err)
		}
		buf.WriteString(mode.String())
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a tree body left to right: decimal mode up to the
// space, name up to the NUL, then exactly one digest worth of raw bytes.
// The algorithm fixes the digest width. Any missing delimiter or truncated
// digest reports ErrCorrupt.
func UnmarshalTree(data []byte, alg Algorithm) (*TreeObj, error) {
	tr := &TreeObj{}
	digestLen := alg.Size()

	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: entry missing space delimiter", ErrCorrupt)
		}
		mode, err := ParseFileMode(string(rest[:sp]))
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w: %v", ErrCorrupt, err)
		}
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: entry missing NUL delimiter", ErrCorrupt)
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]

		if len(rest) < digestLen {
			return nil, fmt.Errorf("unmarshal tree: %w: truncated digest for entry %q", ErrCorrupt, name)
		}
		tr.Entries = append(tr.Entries, TreeEntry{
			Mode: mode,
			Name: name,
			Hash: Hash(hex.EncodeToString(rest[:digestLen])),
		})
		rest = rest[digestLen:]
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (zero or more, first parent is the mainline)
//	author Name <email> <unix> <tz>
//	committer Name <email> <unix> <tz>
//
//	message
//
// The message is written exactly as given; callers normalize the trailing
// newline before committing.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form. Headers end
// at the first blank line; everything after it is the message, preserved
// verbatim including embedded blank lines and the trailing newline. Unknown
// header lines are skipped so newer writers stay readable. A tree or parent
// value that is not exactly one digest of hex reports ErrInvalidCommit.
func UnmarshalCommit(data []byte, alg Algorithm) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: %w: missing header/message separator", ErrInvalidCommit)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, _ := strings.Cut(line, " ")
		switch key {
		case "tree":
			id := strings.TrimSpace(val)
			if !alg.ValidHex(id) {
				return nil, fmt.Errorf("unmarshal commit: %w: bad tree id %q", ErrInvalidCommit, id)
			}
			c.TreeHash = Hash(id)
		case "parent":
			id := strings.TrimSpace(val)
			if !alg.ValidHex(id) {
				return nil, fmt.Errorf("unmarshal commit: %w: bad parent id %q", ErrInvalidCommit, id)
			}
			c.Parents = append(c.Parents, Hash(id))
		case "author":
			c.Author = parseIdent(val)
		case "committer":
			c.Committer = parseIdent(val)
		}
	}
	return c, nil
}

// parseIdent parses "Name <email> <unix> <tz>". The email sits between the
// angle brackets; timestamp and timezone are the two whitespace-delimited
// tokens after the closing bracket. Parsing is best-effort: absent pieces
// stay zero rather than failing the whole commit.
func parseIdent(s string) Ident {
	open := strings.Index(s, "<")
	end := strings.Index(s, ">")
	if open < 0 || end < 0 || end < open {
		return Ident{Name: strings.TrimSpace(s)}
	}

	ident := Ident{
		Name:  strings.TrimSpace(s[:open]),
		Email: s[open+1 : end],
	}
	fields := strings.Fields(s[end+1:])
	if len(fields) >= 1 {
		if ts, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
			ident.Unix = ts
		}
	}
	if len(fields) >= 2 {
		ident.TZ = fields[1]
	}
	return ident
}
