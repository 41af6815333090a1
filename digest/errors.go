package digest

import "errors"

var (
	// ErrNotFound indicates the file to be hashed does not exist.
	ErrNotFound = errors.New("digest: file not found")

	// ErrIOFailure indicates a read error while hashing.
	ErrIOFailure = errors.New("digest: I/O failure")
)
