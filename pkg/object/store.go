package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	lru "github.com/hnlq715/golang-lru"
	"github.com/klauspost/compress/zlib"
)

// objectCacheEntries bounds the in-process read cache. Objects are immutable
// once written, so a cached entry never goes stale.
const objectCacheEntries = 512

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Files hold the zlib-compressed
// envelope "type len\0content".
type Store struct {
	root  string
	alg   Algorithm
	cache *lru.Cache
}

type cachedObject struct {
	typ  ObjectType
	data []byte
}

// NewStore creates a Store rooted at the repository metadata directory,
// addressing objects with the default algorithm. The objects/ subdirectory
// is created lazily on first write.
func NewStore(root string) *Store {
	return NewStoreWith(root, DefaultAlgorithm)
}

// NewStoreWith creates a Store using an explicit hash algorithm.
func NewStoreWith(root string, alg Algorithm) *Store {
	cache, err := lru.New(objectCacheEntries)
	if err != nil {
		// Only possible for a non-positive size; run uncached.
		cache = nil
	}
	return &Store{root: root, alg: alg, cache: cache}
}

// Algorithm returns the digest algorithm the store addresses objects with.
func (s *Store) Algorithm() Algorithm {
	return s.alg
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. Writing is
// idempotent: identical content always maps to the same id, and an object
// that already exists on disk is never rewritten. New objects are
// zlib-compressed in memory first, then written atomically via a temp file
// renamed into place; every failure path removes the temp file.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	h := s.alg.HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write([]byte(envelope)); err != nil {
		zw.Close()
		return "", fmt.Errorf("object write %s: compress: %w", h, err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return "", fmt.Errorf("object write %s: compress: %w", h, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("object write %s: compress: %w", h, err)
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	// Atomic write via temp + rename.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its type and content bytes.
// A missing object reports ErrNotFound; an empty, undecompressable, or
// malformed file reports ErrCorrupt. Callers must not modify the returned
// bytes: they may be shared with the read cache.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(h); ok {
			obj := v.(cachedObject)
			return obj.typ, obj.data, nil
		}
	}

	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	if len(raw) == 0 {
		return "", nil, fmt.Errorf("object read %s: %w: empty object file", h, ErrCorrupt)
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w: decompress: %v", h, ErrCorrupt, err)
	}
	decompressed, err := io.ReadAll(zr)
	zr.Close()
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w: decompress: %v", h, ErrCorrupt, err)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(decompressed, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: %w: envelope missing NUL", h, ErrCorrupt)
	}
	header := string(decompressed[:nulIdx])
	content := decompressed[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: %w: invalid header %q", h, ErrCorrupt, header)
	}
	objType := ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w: invalid length %q", h, ErrCorrupt, parts[1])
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: %w: length mismatch (header=%d, actual=%d)", h, ErrCorrupt, length, len(content))
	}

	if s.cache != nil {
		s.cache.Add(h, cachedObject{typ: objType, data: content})
	}

	return objType, content, nil
}

// HashFile computes the blob id a file's current content would receive,
// without writing anything to the store.
func (s *Store) HashFile(path string) (Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hash file %s: %w", path, err)
	}
	return s.alg.HashObject(TypeBlob, data), nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrTypeMismatch, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	data, err := MarshalTree(tr)
	if err != nil {
		return "", err
	}
	return s.Write(TypeTree, data)
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrTypeMismatch, objType, TypeTree)
	}
	return UnmarshalTree(data, s.alg)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrTypeMismatch, objType, TypeCommit)
	}
	return UnmarshalCommit(data, s.alg)
}
