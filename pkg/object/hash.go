package object

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
)

// Algorithm selects the digest used for object ids. Exactly two are
// supported. SHA1 is the default and matches existing on-disk repositories;
// SHA256 doubles the id length to 64 hex characters.
type Algorithm string

const (
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
)

// DefaultAlgorithm is used when a repository does not configure one.
const DefaultAlgorithm = SHA1

// ParseAlgorithm maps a configured name to an Algorithm. The empty name
// selects the default.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "":
		return DefaultAlgorithm, nil
	case string(SHA1):
		return SHA1, nil
	case string(SHA256):
		return SHA256, nil
	}
	return "", fmt.Errorf("unknown hash algorithm %q", name)
}

// New returns a fresh streaming digest state for the algorithm.
func (a Algorithm) New() hash.Hash {
	if a == SHA256 {
		return sha256.New()
	}
	return sha1.New()
}

// Size returns the digest length in bytes: 20 for sha1, 32 for sha256.
func (a Algorithm) Size() int {
	if a == SHA256 {
		return sha256.Size
	}
	return sha1.Size
}

// HexLen returns the length of a hex-encoded digest.
func (a Algorithm) HexLen() int {
	return a.Size() * 2
}

func (a Algorithm) String() string {
	return string(a)
}

// HashBytes digests data directly and returns it as a lowercase hex Hash.
func (a Algorithm) HashBytes(data []byte) Hash {
	h := a.New()
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashObject computes an object id as the digest of the envelope
// "type len\0content", mirroring Git's object hashing.
func (a Algorithm) HashObject(objType ObjectType, data []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	h := a.New()
	h.Write([]byte(header))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ValidHex reports whether s is a well-formed lowercase hex digest of the
// algorithm's length.
func (a Algorithm) ValidHex(s string) bool {
	if len(s) != a.HexLen() {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
