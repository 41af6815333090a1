// Package index provides lookups over a ledger chain: blocks by hash or
// height, file entries by ciphertext digest or owner. An index is derived
// data; the chain document stays authoritative and Sync rebuilds an index
// that disagrees with it.
package index

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/fileledger-go/ledger"
)

// FileRecord is one file entry together with where it sits in the chain.
type FileRecord struct {
	Owner     string
	File      string
	Height    uint64
	BlockHash string
	Position  int
}

// Index stores blocks in height order and the file entries they carry.
type Index interface {
	// PutBlock indexes b at height. Heights must be put in order from 0.
	PutBlock(height uint64, b *ledger.Block) error

	// GetBlock retrieves a block and its height by block hash.
	GetBlock(hash string) (uint64, *ledger.Block, error)

	// GetBlockByHeight retrieves a block by height.
	GetBlockByHeight(height uint64) (*ledger.Block, error)

	// Tip returns the block with the greatest height.
	Tip() (uint64, *ledger.Block, error)

	// Count returns the number of indexed blocks.
	Count() (uint64, error)

	// FindFile returns every record of the ciphertext digest in chain order.
	FindFile(fileDigest string) ([]FileRecord, error)

	// FilesByOwner returns every record for owner in chain order.
	// An empty owner returns all records.
	FilesByOwner(owner string) ([]FileRecord, error)

	// Reset drops everything.
	Reset() error
}

func fileRecords(height uint64, b *ledger.Block) []FileRecord {
	out := make([]FileRecord, len(b.Data.Files))
	for i, e := range b.Data.Files {
		out[i] = FileRecord{
			Owner:     e.Owner,
			File:      e.File,
			Height:    height,
			BlockHash: b.Hash,
			Position:  i,
		}
	}
	return out
}

// Sync brings idx in line with c. Blocks the index already holds are kept
// when they match the chain at the same height; otherwise the index is
// reset and rebuilt. It returns the number of blocks written.
func Sync(idx Index, c *ledger.Chain) (int, error) {
	if idx == nil || c == nil {
		return 0, ErrNilParam
	}

	count, err := idx.Count()
	if err != nil {
		return 0, err
	}

	start := uint64(0)
	if count > 0 && count <= uint64(c.Len()) {
		tipHeight, tip, err := idx.Tip()
		if err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
		if err == nil && tipHeight == count-1 && tip.Hash == c.Blocks[tipHeight].Hash {
			start = count
		}
	}
	if start == 0 && count > 0 {
		if err := idx.Reset(); err != nil {
			return 0, err
		}
	}

	written := 0
	for h := start; h < uint64(c.Len()); h++ {
		if err := idx.PutBlock(h, c.Blocks[h]); err != nil {
			return written, fmt.Errorf("index: sync height %d: %w", h, err)
		}
		written++
	}
	return written, nil
}
