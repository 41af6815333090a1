package storage

import "errors"

var (
	// ErrNotFound indicates no artifact exists for the given key hash.
	ErrNotFound = errors.New("storage: artifact not found")

	// ErrInvalidKeyHash indicates the key hash is not exactly 32 bytes.
	ErrInvalidKeyHash = errors.New("storage: key hash must be 32 bytes")

	// ErrIOFailure indicates a file read/write error.
	ErrIOFailure = errors.New("storage: I/O failure")

	// ErrInvalidBaseDir indicates the base directory path is invalid.
	ErrInvalidBaseDir = errors.New("storage: invalid base directory")

	// ErrStagingClosed indicates a staged artifact was already committed or aborted.
	ErrStagingClosed = errors.New("storage: staged artifact already closed")
)
