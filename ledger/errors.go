package ledger

import "errors"

var (
	// ErrInvalidState indicates an operation on a chain without blocks.
	ErrInvalidState = errors.New("ledger: chain is not initialized")

	// ErrIntegrityViolation indicates the chain failed verification.
	// It is always accompanied by ErrHashMismatch, ErrBrokenLink or ErrInvalidGenesis.
	ErrIntegrityViolation = errors.New("ledger: integrity violation")

	// ErrHashMismatch indicates a block's stored hash differs from its recomputed hash.
	ErrHashMismatch = errors.New("ledger: block hash mismatch")

	// ErrBrokenLink indicates a block's previous hash does not match its predecessor.
	ErrBrokenLink = errors.New("ledger: previous hash does not match predecessor")

	// ErrInvalidGenesis indicates the first block is not a well-formed genesis block.
	ErrInvalidGenesis = errors.New("ledger: invalid genesis block")

	// ErrMalformedDocument indicates a persisted chain could not be parsed.
	ErrMalformedDocument = errors.New("ledger: malformed chain document")

	// ErrMiningAborted indicates mining stopped before a qualifying hash was found.
	ErrMiningAborted = errors.New("ledger: mining aborted")

	// ErrInvalidDifficulty indicates a difficulty larger than the hash length.
	ErrInvalidDifficulty = errors.New("ledger: difficulty exceeds hash length")

	// ErrInvalidEntry indicates a malformed file entry or an empty entry list.
	ErrInvalidEntry = errors.New("ledger: invalid file entry")

	// ErrNotFound indicates the chain file does not exist.
	ErrNotFound = errors.New("ledger: chain file not found")

	// ErrIOFailure indicates a chain file read/write error.
	ErrIOFailure = errors.New("ledger: I/O failure")
)
