// Package filecrypt implements the per-file symmetric encryption applied to
// every artifact before it is stored and recorded on the ledger.
//
// Key derivation and cipher:
//
//	key        = PBKDF2-HMAC-SHA256(secret, salt, 100000 iterations, 32 bytes)
//	ciphertext = AES-256-CTR(key, iv, plaintext)
//
// The stored representation is salt(16B) || iv(16B) || ciphertext.
//
// CTR mode provides confidentiality only. There is no authentication tag:
// corrupted ciphertext decrypts to garbage without an error. Integrity of a
// stored artifact is established by comparing its SHA-256 digest with the
// digest committed on the ledger, not by this package.
package filecrypt

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLen is the length of the PBKDF2 salt in bytes.
	SaltLen = 16

	// IVLen is the length of the CTR initial counter block in bytes.
	IVLen = 16

	// HeaderLen is the length of the salt || iv prefix.
	HeaderLen = SaltLen + IVLen

	// KeyLen is the derived key length (AES-256).
	KeyLen = 32

	// Iterations is the PBKDF2 iteration count.
	Iterations = 100000
)

// DeriveKey derives a 32-byte AES-256 key from secret and a 16-byte salt.
//
// The derivation is deterministic: the same (secret, salt) pair always yields
// the same key, which is what allows Decrypt to recover it from the salt
// stored in the artifact header.
func DeriveKey(secret string, salt []byte) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSalt, len(salt))
	}
	return pbkdf2.Key([]byte(secret), salt, Iterations, KeyLen, sha256.New), nil
}
