package filecrypt

import "errors"

var (
	// ErrEmptySecret indicates an empty secret was supplied for key derivation.
	ErrEmptySecret = errors.New("filecrypt: secret is empty")

	// ErrInvalidSalt indicates the salt is not exactly SaltLen bytes.
	ErrInvalidSalt = errors.New("filecrypt: salt must be 16 bytes")

	// ErrInvalidCiphertext indicates the input is shorter than the salt || iv header.
	// Minimum length: 16 (salt) + 16 (iv) = 32 bytes.
	ErrInvalidCiphertext = errors.New("filecrypt: invalid ciphertext")

	// ErrNotFound indicates the source file does not exist.
	ErrNotFound = errors.New("filecrypt: file not found")

	// ErrIOFailure indicates a read/write error while streaming.
	ErrIOFailure = errors.New("filecrypt: I/O failure")

	// ErrRandFailure indicates salt or IV generation failed.
	ErrRandFailure = errors.New("filecrypt: random generation failed")
)
