package vault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bitfsorg/fileledger-go/digest"
	"github.com/bitfsorg/fileledger-go/ledger"
	"github.com/bitfsorg/fileledger-go/storage"
)

// staged is one encrypted file waiting for its block to be mined.
type staged struct {
	file UploadedFile
	art  *storage.Staged
}

// Upload encrypts each file under its own plaintext digest, records the
// ciphertext digests for owner in one new block and stores the artifacts.
// Either every file is recorded or none is. progress, when set, is called
// after each file is encrypted.
func (v *Vault) Upload(ctx context.Context, paths []string, owner string, progress func(path string)) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", ledger.ErrInvalidEntry)
	}
	if owner == "" {
		return nil, ErrNoIdentity
	}

	var result *Result
	err := v.withWriteLock(func() error {
		if err := v.verify(); err != nil {
			return err
		}

		pending := make([]staged, 0, len(paths))
		defer func() {
			for _, p := range pending {
				p.art.Abort()
			}
		}()

		entries := make([]ledger.FileEntry, 0, len(paths))
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := v.stage(path)
			if err != nil {
				return err
			}
			pending = append(pending, p)

			e, err := ledger.NewFileEntry(owner, p.file.Digest)
			if err != nil {
				return err
			}
			entries = append(entries, e)
			if progress != nil {
				progress(path)
			}
		}

		b, err := v.Chain.AppendContext(ctx, entries)
		if err != nil {
			return err
		}

		files := make([]UploadedFile, 0, len(pending))
		for _, p := range pending {
			key, err := storage.ParseHexKey(p.file.Digest)
			if err != nil {
				return err
			}
			if err := p.art.Commit(key); err != nil {
				return fmt.Errorf("vault: store %s: %w", p.file.Path, err)
			}
			files = append(files, p.file)
		}

		result = &Result{
			Block:   b,
			Files:   files,
			Message: fmt.Sprintf("recorded %d file(s) in block %d (%s)", len(files), v.Chain.Len()-1, b.Hash),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	v.Metrics.AddUploaded(len(result.Files))
	slog.Info("Files uploaded", "count", len(result.Files), "block", result.Block.Hash, "height", v.Chain.Len()-1)
	return result, nil
}

// stage hashes the plaintext at path and encrypts it into the staging area
// with that digest as secret, hashing the ciphertext as it is written.
func (v *Vault) stage(path string) (staged, error) {
	secret, err := digest.File(path)
	if err != nil {
		return staged{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return staged{}, fmt.Errorf("vault: open %s: %w", path, err)
	}
	defer f.Close()

	art, err := v.Store.Stage()
	if err != nil {
		return staged{}, err
	}
	h := digest.New()
	if _, err := v.Cipher.EncryptStream(io.MultiWriter(art, h), f, secret); err != nil {
		art.Abort()
		return staged{}, fmt.Errorf("vault: encrypt %s: %w", path, err)
	}

	return staged{
		file: UploadedFile{Path: path, Secret: secret, Digest: h.Sum()},
		art:  art,
	}, nil
}
