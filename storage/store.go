// Package storage keeps encrypted artifacts on local disk, addressed by the
// SHA-256 digest of their ciphertext.
package storage

import (
	"encoding/hex"
	"fmt"
	"io"
)

// KeyHashSize is the length of a content address in bytes.
const KeyHashSize = 32

// Store is the artifact store a vault writes uploads to and reads downloads
// from. Keys are SHA-256(ciphertext).
type Store interface {
	// Stage opens a write whose key is decided once the ciphertext is complete.
	Stage() (*Staged, error)

	// Open returns a reader over the stored ciphertext. The caller closes it.
	Open(keyHash []byte) (io.ReadCloser, error)

	// Has reports whether an artifact is stored under keyHash.
	Has(keyHash []byte) (bool, error)

	// Delete removes the artifact stored under keyHash.
	Delete(keyHash []byte) error

	// Size returns the stored length of the artifact in bytes.
	Size(keyHash []byte) (int64, error)

	// List returns every committed key hash.
	List() ([][]byte, error)
}

// HexKey renders a key hash as the lowercase hex digest recorded in ledger
// entries.
func HexKey(keyHash []byte) string {
	return hex.EncodeToString(keyHash)
}

// ParseHexKey parses a ledger digest into a key hash.
func ParseHexKey(s string) ([]byte, error) {
	keyHash, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyHash, err)
	}
	if err := validateKeyHash(keyHash); err != nil {
		return nil, err
	}
	return keyHash, nil
}
