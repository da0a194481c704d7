package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
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

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns the first 12 hex characters, for logs
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeMappingHash hashes a string->float mapping independent of map order.
// Floats are encoded with the shortest exact representation so identical
// tables always hash identically.
func ComputeMappingHash(name string, mapping map[string]float64) Hash {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(name)
	for _, key := range keys {
		data.WriteString("|")
		data.WriteString(strconv.Quote(key))
		data.WriteString("=")
		data.WriteString(strconv.FormatFloat(mapping[key], 'g', -1, 64))
	}

	return NewHash([]byte(data.String()))
}

// CombineHashes folds several hashes into one, order-sensitive
func CombineHashes(hashes ...Hash) Hash {
	parts := make([]string, len(hashes))
	for i, h := range hashes {
		parts[i] = h.String()
	}
	return NewHash([]byte(strings.Join(parts, ":")))
}
