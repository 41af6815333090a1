package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// chainDocument mirrors the persisted chain layout. Pointer fields detect
// keys that are missing from the input.
type chainDocument struct {
	ID         *string          `json:"ID"`
	Difficulty *uint            `json:"Difficulty"`
	Chain      []*blockDocument `json:"Chain"`
}

type blockDocument struct {
	Timestamp    *float64      `json:"Time Stamp"`
	Data         *dataDocument `json:"Block Data"`
	PreviousHash *string       `json:"Previous Hash"`
	Hash         *string       `json:"Block Hash"`
	Nonce        *uint64       `json:"Nonce"`
}

type dataDocument struct {
	Files []FileEntry `json:"Files"`
}

// Marshal serializes the chain to its JSON document, indented four spaces.
func Marshal(c *Chain) ([]byte, error) {
	if c == nil || len(c.Blocks) == 0 {
		return nil, ErrInvalidState
	}

	doc := chainDocument{
		ID:         &c.ID,
		Difficulty: &c.Difficulty,
		Chain:      make([]*blockDocument, len(c.Blocks)),
	}
	for i, b := range c.Blocks {
		files := b.Data.Files
		if files == nil {
			files = []FileEntry{}
		}
		doc.Chain[i] = &blockDocument{
			Timestamp:    &b.Timestamp,
			Data:         &dataDocument{Files: files},
			PreviousHash: &b.PreviousHash,
			Hash:         &b.Hash,
			Nonce:        &b.Nonce,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("ledger: encode chain: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a chain document. Stored hashes and nonces are taken as-is
// (nothing is re-mined or re-derived); call Verify to detect tampering.
func Unmarshal(data []byte) (*Chain, error) {
	var doc chainDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if doc.ID == nil {
		return nil, fmt.Errorf("%w: missing \"ID\"", ErrMalformedDocument)
	}
	if doc.Difficulty == nil {
		return nil, fmt.Errorf("%w: missing \"Difficulty\"", ErrMalformedDocument)
	}
	if len(doc.Chain) == 0 {
		return nil, fmt.Errorf("%w: \"Chain\" has no blocks", ErrMalformedDocument)
	}

	c := &Chain{
		ID:         *doc.ID,
		Difficulty: *doc.Difficulty,
		Blocks:     make([]*Block, len(doc.Chain)),
	}
	for i, bd := range doc.Chain {
		b, err := bd.toBlock()
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %w", ErrMalformedDocument, i, err)
		}
		c.Blocks[i] = b
	}
	return c, nil
}

func (bd *blockDocument) toBlock() (*Block, error) {
	if bd == nil {
		return nil, fmt.Errorf("block is null")
	}
	switch {
	case bd.Timestamp == nil:
		return nil, fmt.Errorf("missing \"Time Stamp\"")
	case bd.Data == nil:
		return nil, fmt.Errorf("missing \"Block Data\"")
	case bd.PreviousHash == nil:
		return nil, fmt.Errorf("missing \"Previous Hash\"")
	case bd.Hash == nil:
		return nil, fmt.Errorf("missing \"Block Hash\"")
	case bd.Nonce == nil:
		return nil, fmt.Errorf("missing \"Nonce\"")
	}
	files := bd.Data.Files
	if files == nil {
		files = []FileEntry{}
	}
	return &Block{
		Timestamp:    *bd.Timestamp,
		Data:         BlockData{Files: files},
		PreviousHash: *bd.PreviousHash,
		Nonce:        *bd.Nonce,
		Hash:         *bd.Hash,
	}, nil
}
