package vault

import "errors"

var (
	// ErrNoChain indicates the data directory holds no chain document.
	ErrNoChain = errors.New("vault: no chain in data directory")

	// ErrChainExists indicates Create found an existing chain document.
	ErrChainExists = errors.New("vault: chain already exists")

	// ErrNoIdentity indicates an operation was invoked without an owner fingerprint.
	ErrNoIdentity = errors.New("vault: owner fingerprint is required")

	// ErrNotOwner indicates the requested file is recorded under a different owner.
	ErrNotOwner = errors.New("vault: file is not owned by this identity")

	// ErrFileNotOnChain indicates no block records the requested ciphertext digest.
	ErrFileNotOnChain = errors.New("vault: file not found on chain")

	// ErrLocked indicates another process holds the data directory lock.
	ErrLocked = errors.New("vault: ledger locked by another process")

	// ErrWrongSecret indicates a download decrypted to content whose digest
	// is not the secret it was decrypted with.
	ErrWrongSecret = errors.New("vault: secret does not match decrypted content")

	// ErrArtifactMissing indicates a file recorded on chain has no stored artifact.
	ErrArtifactMissing = errors.New("vault: recorded file has no stored artifact")

	// ErrArtifactMismatch indicates a stored artifact no longer hashes to its digest.
	ErrArtifactMismatch = errors.New("vault: stored artifact does not match its digest")
)
