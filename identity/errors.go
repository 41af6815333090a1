package identity

import "errors"

var (
	// ErrInvalidPEM indicates the input is not a PEM-armored public key.
	ErrInvalidPEM = errors.New("identity: invalid PEM public key")

	// ErrInvalidPrivateKey indicates a private key that is not 32 hex-encoded bytes.
	ErrInvalidPrivateKey = errors.New("identity: invalid private key")

	// ErrKeyGeneration indicates the key pair could not be generated.
	ErrKeyGeneration = errors.New("identity: key generation failed")

	// ErrIOFailure indicates a key file read error.
	ErrIOFailure = errors.New("identity: I/O failure")
)
