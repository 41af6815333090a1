package index

import (
	"fmt"
	"sync"

	"github.com/bitfsorg/fileledger-go/ledger"
)

// MemIndex is an in-memory implementation of Index.
type MemIndex struct {
	mu       sync.RWMutex
	byHeight []*ledger.Block
	byHash   map[string]uint64
	records  []FileRecord
}

// Compile-time interface check.
var _ Index = (*MemIndex)(nil)

// NewMemIndex creates an empty in-memory index.
func NewMemIndex() *MemIndex {
	return &MemIndex{byHash: make(map[string]uint64)}
}

// PutBlock indexes b at height.
func (m *MemIndex) PutBlock(height uint64, b *ledger.Block) error {
	if b == nil {
		return fmt.Errorf("%w: block", ErrNilParam)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := uint64(len(m.byHeight))
	if height < next {
		return fmt.Errorf("%w: height %d", ErrDuplicateBlock, height)
	}
	if height > next {
		return fmt.Errorf("%w: got %d, want %d", ErrHeightGap, height, next)
	}

	cp := *b
	cp.Data.Files = b.Entries()
	m.byHeight = append(m.byHeight, &cp)
	m.byHash[b.Hash] = height
	m.records = append(m.records, fileRecords(height, &cp)...)
	return nil
}

// GetBlock retrieves a block and its height by block hash.
func (m *MemIndex) GetBlock(hash string) (uint64, *ledger.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.byHash[hash]
	if !ok {
		return 0, nil, ErrNotFound
	}
	return h, m.byHeight[h], nil
}

// GetBlockByHeight retrieves a block by height.
func (m *MemIndex) GetBlockByHeight(height uint64) (*ledger.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if height >= uint64(len(m.byHeight)) {
		return nil, ErrNotFound
	}
	return m.byHeight[height], nil
}

// Tip returns the block with the greatest height.
func (m *MemIndex) Tip() (uint64, *ledger.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.byHeight) == 0 {
		return 0, nil, ErrNotFound
	}
	h := uint64(len(m.byHeight) - 1)
	return h, m.byHeight[h], nil
}

// Count returns the number of indexed blocks.
func (m *MemIndex) Count() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.byHeight)), nil
}

// FindFile returns every record of the ciphertext digest.
func (m *MemIndex) FindFile(fileDigest string) ([]FileRecord, error) {
	return m.filter(func(r FileRecord) bool { return r.File == fileDigest }), nil
}

// FilesByOwner returns every record for owner, or all records when owner is empty.
func (m *MemIndex) FilesByOwner(owner string) ([]FileRecord, error) {
	return m.filter(func(r FileRecord) bool { return owner == "" || r.Owner == owner }), nil
}

func (m *MemIndex) filter(match func(FileRecord) bool) []FileRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []FileRecord
	for _, r := range m.records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Reset drops everything.
func (m *MemIndex) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byHeight = nil
	m.byHash = make(map[string]uint64)
	m.records = nil
	return nil
}
