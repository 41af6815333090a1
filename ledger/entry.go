package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bitfsorg/fileledger-go/digest"
)

// FileEntry records one uploaded artifact: the owner's public-key
// fingerprint and the digest of the encrypted file. Entries are values and
// are never modified after creation.
type FileEntry struct {
	Owner string `json:"User"`
	File  string `json:"File"`
}

// NewFileEntry validates and returns a FileEntry.
// owner must be non-empty and ciphertextDigest a 64-character lowercase hex digest.
func NewFileEntry(owner, ciphertextDigest string) (FileEntry, error) {
	e := FileEntry{Owner: owner, File: ciphertextDigest}
	if err := e.Validate(); err != nil {
		return FileEntry{}, err
	}
	return e, nil
}

// Validate checks the entry fields.
func (e FileEntry) Validate() error {
	if e.Owner == "" {
		return fmt.Errorf("%w: owner fingerprint is empty", ErrInvalidEntry)
	}
	if !digest.Valid(e.File) {
		return fmt.Errorf("%w: file digest %q is not a %d-char hex digest", ErrInvalidEntry, e.File, digest.HexSize)
	}
	return nil
}

// BlockData is the payload carried by a block.
type BlockData struct {
	Files []FileEntry `json:"Files"`
}

// newBlockData copies entries so the block owns its list.
func newBlockData(entries []FileEntry) BlockData {
	files := make([]FileEntry, len(entries))
	copy(files, entries)
	return BlockData{Files: files}
}

// canonical returns the stable encoding of the payload used as hash input:
// compact JSON, insertion order preserved, HTML escaping disabled, and an
// empty list rendered as [] rather than null.
func (d BlockData) canonical() []byte {
	files := d.Files
	if files == nil {
		files = []FileEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Only string fields: Encode cannot fail.
	_ = enc.Encode(BlockData{Files: files})
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
