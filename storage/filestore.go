package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// stagingDir holds artifacts whose digest is not yet known.
const stagingDir = ".staging"

// FileStore is a Store on the local filesystem. An artifact lives at
// {baseDir}/{first two hex chars}/{hex key}.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens the store rooted at baseDir, usually "{data dir}/objects",
// creating the directory when needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, ErrInvalidBaseDir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func validateKeyHash(keyHash []byte) error {
	if len(keyHash) != KeyHashSize {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidKeyHash, len(keyHash))
	}
	return nil
}

// keyPath shards keyHash by its first byte under baseDir.
func keyPath(baseDir string, keyHash []byte) string {
	name := HexKey(keyHash)
	return filepath.Join(baseDir, name[:2], name)
}

// ioError maps a filesystem error onto the store's sentinels.
func ioError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrIOFailure, err)
}

// stat looks up the committed artifact for keyHash.
func (s *FileStore) stat(keyHash []byte) (fs.FileInfo, error) {
	if err := validateKeyHash(keyHash); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(keyPath(s.baseDir, keyHash))
	if err != nil {
		return nil, ioError(err)
	}
	return info, nil
}

// Open returns a reader over the stored ciphertext.
func (s *FileStore) Open(keyHash []byte) (io.ReadCloser, error) {
	if err := validateKeyHash(keyHash); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(keyPath(s.baseDir, keyHash))
	if err != nil {
		return nil, ioError(err)
	}
	return f, nil
}

// Has reports whether an artifact is stored under keyHash.
func (s *FileStore) Has(keyHash []byte) (bool, error) {
	_, err := s.stat(keyHash)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Size returns the stored length of the artifact in bytes.
func (s *FileStore) Size(keyHash []byte) (int64, error) {
	info, err := s.stat(keyHash)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Delete removes the artifact stored under keyHash. The shard directory is
// left in place.
func (s *FileStore) Delete(keyHash []byte) error {
	if err := validateKeyHash(keyHash); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(keyPath(s.baseDir, keyHash)); err != nil {
		return ioError(err)
	}
	return nil
}

// List walks the shard directories and returns every committed key. Staged
// writes and names that are not a full hex key are ignored.
func (s *FileStore) List() ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shards, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, ioError(err)
	}

	var keys [][]byte
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		names, err := os.ReadDir(filepath.Join(s.baseDir, shard.Name()))
		if err != nil {
			return nil, ioError(err)
		}
		for _, n := range names {
			if n.IsDir() {
				continue
			}
			keyHash, err := ParseHexKey(n.Name())
			if err != nil || HexKey(keyHash[:1]) != shard.Name() {
				continue
			}
			keys = append(keys, keyHash)
		}
	}
	return keys, nil
}
