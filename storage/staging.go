package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Staged is an artifact being written before its key is known. Write the
// ciphertext, then Commit it under its digest or Abort it.
type Staged struct {
	store  *FileStore
	f      *os.File
	closed bool
}

// Stage opens a new temp file in the store's staging area.
func (s *FileStore) Stage() (*Staged, error) {
	dir := filepath.Join(s.baseDir, stagingDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	f, err := os.CreateTemp(dir, "artifact-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return &Staged{store: s, f: f}, nil
}

// Name returns the temp file path.
func (s *Staged) Name() string { return s.f.Name() }

// Write appends to the staged artifact.
func (s *Staged) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrStagingClosed
	}
	n, err := s.f.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return n, nil
}

// Commit moves the staged artifact to its content address, replacing any
// artifact already stored there.
func (s *Staged) Commit(keyHash []byte) error {
	if s.closed {
		return ErrStagingClosed
	}
	if err := validateKeyHash(keyHash); err != nil {
		s.Abort()
		return err
	}
	s.closed = true

	tmp := s.f.Name()
	if err := s.f.Sync(); err != nil {
		_ = s.f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := s.f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	store := s.store
	store.mu.Lock()
	defer store.mu.Unlock()

	dst := keyPath(store.baseDir, keyHash)
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Abort discards the staged artifact. It is safe to call more than once and
// after Commit.
func (s *Staged) Abort() {
	if s.closed {
		return
	}
	s.closed = true
	_ = s.f.Close()
	_ = os.Remove(s.f.Name())
}
