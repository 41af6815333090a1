package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bitfsorg/fileledger-go/digest"
)

// ctxCheckInterval is how many attempts pass between context checks.
const ctxCheckInterval = 4096

// MineResult describes a completed mining run.
type MineResult struct {
	Nonce    uint64
	Hash     string
	Attempts uint64
	Elapsed  time.Duration
}

// MeetsDifficulty reports whether the first difficulty characters of hash
// are all '0'. A difficulty larger than the hash never matches.
func MeetsDifficulty(hash string, difficulty uint) bool {
	if difficulty > uint(len(hash)) {
		return false
	}
	for i := uint(0); i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}

// Mine searches nonces until the block hash meets difficulty. It has no
// attempt budget and cannot be cancelled; use MineContext for that.
func (b *Block) Mine(difficulty uint) (MineResult, error) {
	return b.MineContext(context.Background(), difficulty, 0)
}

// MineContext increments Nonce and recomputes Hash until the hash has
// difficulty leading '0' hex characters. With difficulty 0 it returns
// immediately without touching the nonce.
//
// maxAttempts bounds the number of nonces tried (0 = unbounded). When the
// budget runs out or ctx ends, the block's nonce and hash are restored and
// ErrMiningAborted is returned.
func (b *Block) MineContext(ctx context.Context, difficulty uint, maxAttempts uint64) (MineResult, error) {
	if difficulty > digest.HexSize {
		return MineResult{}, fmt.Errorf("%w: %d > %d", ErrInvalidDifficulty, difficulty, digest.HexSize)
	}

	start := time.Now()
	origNonce, origHash := b.Nonce, b.Hash
	var attempts uint64

	for !MeetsDifficulty(b.Hash, difficulty) {
		if maxAttempts > 0 && attempts >= maxAttempts {
			b.Nonce, b.Hash = origNonce, origHash
			return MineResult{Attempts: attempts, Elapsed: time.Since(start)},
				fmt.Errorf("%w: no hash with %d leading zeros after %d attempts", ErrMiningAborted, difficulty, attempts)
		}
		if attempts%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				b.Nonce, b.Hash = origNonce, origHash
				return MineResult{Attempts: attempts, Elapsed: time.Since(start)},
					fmt.Errorf("%w: %w", ErrMiningAborted, err)
			}
		}
		b.Nonce++
		b.Hash = b.CalculateHash()
		attempts++
	}

	res := MineResult{
		Nonce:    b.Nonce,
		Hash:     b.Hash,
		Attempts: attempts,
		Elapsed:  time.Since(start),
	}
	slog.Info("Block mined",
		"hash", res.Hash,
		"nonce", res.Nonce,
		"difficulty", difficulty,
		"attempts", res.Attempts,
		"elapsed", res.Elapsed)
	return res, nil
}
