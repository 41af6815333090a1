// Package ledger implements the proof-of-work hash chain that records
// uploaded files.
//
// Each Block carries an ordered list of FileEntry values and is linked to its
// predecessor by hash. A block's hash is
//
//	SHA256_hex(previous_hash || timestamp || canonical(entries) || nonce)
//
// where timestamp is rendered by FormatTimestamp, canonical(entries) is the
// compact JSON {"Files":[{"User":...,"File":...}]} and nonce is decimal.
// Including the nonce is what lets mining search for a qualifying hash.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Block is one element of the chain. After construction only mining writes
// Nonce and Hash.
type Block struct {
	Timestamp    float64
	Data         BlockData
	PreviousHash string
	Nonce        uint64
	Hash         string
}

// NewBlock constructs an unmined block (nonce 0) with its initial hash.
// The entries slice is copied.
func NewBlock(timestamp float64, entries []FileEntry, previousHash string) *Block {
	b := &Block{
		Timestamp:    timestamp,
		Data:         newBlockData(entries),
		PreviousHash: previousHash,
	}
	b.Hash = b.CalculateHash()
	return b
}

// Entries returns a copy of the block's file entries.
func (b *Block) Entries() []FileEntry {
	out := make([]FileEntry, len(b.Data.Files))
	copy(out, b.Data.Files)
	return out
}

// CalculateHash recomputes the block hash from its current fields.
// It has no side effects.
func (b *Block) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(b.PreviousHash))
	h.Write([]byte(FormatTimestamp(b.Timestamp)))
	h.Write(b.Data.canonical())
	h.Write([]byte(strconv.FormatUint(b.Nonce, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// IsConsistent reports whether the stored hash equals the recomputed hash.
func (b *Block) IsConsistent() bool {
	return b.Hash == b.CalculateHash()
}

// FormatTimestamp renders seconds-since-epoch as the shortest decimal string
// that round-trips to the same float64, without an exponent.
func FormatTimestamp(ts float64) string {
	return strconv.FormatFloat(ts, 'f', -1, 64)
}

// Timestamp converts t to fractional seconds since the Unix epoch.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
