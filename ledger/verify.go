package ledger

import "fmt"

// Verify reports whether the chain is intact. It is a pure check: callers
// decide whether to reject the chain, resync or alert.
func (c *Chain) Verify() bool {
	return c.VerifyDetailed() == nil
}

// VerifyDetailed checks every block and returns the first failure wrapped in
// ErrIntegrityViolation, or nil.
//
// Per block i > 0:
//  1. Tamper check: stored hash equals the recomputed hash.
//  2. Linkage check: previous hash equals the recomputed hash of block i-1,
//     so a corrupted but self-consistent predecessor is still caught.
//
// The genesis block must have an empty previous hash, no entries and a
// self-consistent hash.
func (c *Chain) VerifyDetailed() error {
	if len(c.Blocks) == 0 {
		return ErrInvalidState
	}

	genesis := c.Blocks[0]
	if genesis == nil {
		return fmt.Errorf("%w: %w: block 0 is nil", ErrIntegrityViolation, ErrInvalidGenesis)
	}
	if genesis.PreviousHash != "" || len(genesis.Data.Files) != 0 {
		return fmt.Errorf("%w: %w: previous hash or entries set", ErrIntegrityViolation, ErrInvalidGenesis)
	}
	if !genesis.IsConsistent() {
		return fmt.Errorf("%w: %w: block 0", ErrIntegrityViolation, ErrHashMismatch)
	}

	for i := 1; i < len(c.Blocks); i++ {
		prev := c.Blocks[i-1]
		curr := c.Blocks[i]
		if curr == nil {
			return fmt.Errorf("%w: %w: block %d is nil", ErrIntegrityViolation, ErrHashMismatch, i)
		}

		if curr.Hash != curr.CalculateHash() {
			return fmt.Errorf("%w: %w: block %d", ErrIntegrityViolation, ErrHashMismatch, i)
		}
		if curr.PreviousHash != prev.CalculateHash() {
			return fmt.Errorf("%w: %w: block %d does not link to block %d", ErrIntegrityViolation, ErrBrokenLink, i, i-1)
		}
	}
	return nil
}
