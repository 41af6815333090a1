// Package digest computes the content digests used for file identity and
// block hashing.
//
// A digest is the lowercase hex encoding of SHA-256 over the raw bytes, so
// identical content always yields the identical 64-character string
// regardless of file name or location. Input is consumed in ChunkSize pieces,
// keeping memory use independent of input size.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
)

const (
	// ChunkSize is the read buffer size used when hashing streams.
	ChunkSize = 4096

	// Size is the raw digest length in bytes (SHA-256).
	Size = sha256.Size

	// HexSize is the length of a hex-encoded digest.
	HexSize = 2 * Size
)

// Writer is an io.Writer that hashes everything written to it.
// It lets callers digest a stream while it is being copied elsewhere.
type Writer struct {
	h hash.Hash
	n int64
}

// New returns an empty digest Writer.
func New() *Writer {
	return &Writer{h: sha256.New()}
}

// Write adds p to the running digest. It never returns an error.
func (w *Writer) Write(p []byte) (int, error) {
	n, _ := w.h.Write(p)
	w.n += int64(n)
	return n, nil
}

// Len returns the number of bytes hashed so far.
func (w *Writer) Len() int64 { return w.n }

// Sum returns the hex digest of the bytes written so far.
func (w *Writer) Sum() string {
	return hex.EncodeToString(w.h.Sum(nil))
}

// Bytes returns the hex digest of b.
func Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// String returns the hex digest of the UTF-8 bytes of s.
func String(s string) string {
	return Bytes([]byte(s))
}

// Reader hashes r to EOF in ChunkSize reads and returns the hex digest.
func Reader(r io.Reader) (string, error) {
	w := New()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(w, r, buf); err != nil {
		return "", fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return w.Sum(), nil
}

// File returns the hex digest of the file at path.
// Returns ErrNotFound if the file does not exist.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer func() { _ = f.Close() }()

	return Reader(f)
}

// Valid reports whether s is a well-formed digest: exactly HexSize
// lowercase hexadecimal characters.
func Valid(s string) bool {
	if len(s) != HexSize {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
