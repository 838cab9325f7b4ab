package core

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	FileHash   Hash
	CohortHash Hash
)

func (h FileHash) String() string   { return Hash(h).String() }
func (h CohortHash) String() string { return Hash(h).String() }

// HashFile computes the SHA-256 of a file's contents
func HashFile(path string) (FileHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return FileHash(hex.EncodeToString(h.Sum(nil))), nil
}

// ComputeCohortHash hashes a set of subject identifiers independent of their order
func ComputeCohortHash(subjectIDs []string) CohortHash {
	ids := append([]string(nil), subjectIDs...)
	sort.Strings(ids)

	var data strings.Builder
	for _, id := range ids {
		data.WriteString(id)
		data.WriteByte(0)
	}
	return CohortHash(NewHash([]byte(data.String())))
}
