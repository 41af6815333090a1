package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const tempSuffix = ".wip"

// SaveFile writes the chain document to path. The document is written to a
// sibling temp file first and renamed into place, so readers never observe a
// partial chain.
func SaveFile(path string, c *Chain) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: create chain directory: %w", ErrIOFailure, err)
	}

	tmp := path + tempSuffix
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: write chain: %w", ErrIOFailure, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replace chain: %w", ErrIOFailure, err)
	}
	return nil
}

// LoadFile reads and parses the chain document at path.
func LoadFile(path string) (*Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: read chain: %w", ErrIOFailure, err)
	}
	return Unmarshal(data)
}
