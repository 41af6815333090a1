package vault

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bitfsorg/fileledger-go/digest"
	"github.com/bitfsorg/fileledger-go/storage"
)

// Download decrypts the artifact recorded under ciphertextDigest into dst.
// The chain is verified first and the file must be recorded for owner. The
// stored artifact is re-hashed before decryption because the cipher does not
// detect tampering, and the plaintext is checked against secret, which is its
// digest. dst is removed when either check fails.
func (v *Vault) Download(ciphertextDigest, owner, secret, dst string) error {
	if owner == "" {
		return ErrNoIdentity
	}
	key, err := storage.ParseHexKey(ciphertextDigest)
	if err != nil {
		return err
	}
	if !digest.Valid(secret) {
		return fmt.Errorf("%w: %q is not a digest", ErrWrongSecret, secret)
	}
	if err := v.load(); err != nil {
		return err
	}
	if err := v.checkOwner(ciphertextDigest, owner); err != nil {
		return err
	}

	if err := v.checkArtifact(key, ciphertextDigest); err != nil {
		return err
	}
	if err := v.decrypt(key, secret, dst); err != nil {
		return err
	}
	slog.Info("File downloaded", "digest", ciphertextDigest, "dst", dst)
	return nil
}

// checkOwner requires ciphertextDigest to be recorded on chain for owner.
func (v *Vault) checkOwner(ciphertextDigest, owner string) error {
	records, err := v.Index.FindFile(ciphertextDigest)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: %s", ErrFileNotOnChain, ciphertextDigest)
	}
	for _, r := range records {
		if r.Owner == owner {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotOwner, ciphertextDigest)
}

// checkArtifact re-hashes the stored ciphertext for key.
func (v *Vault) checkArtifact(key []byte, want string) error {
	rc, err := v.Store.Open(key)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrArtifactMissing, want, err)
	}
	if err != nil {
		return fmt.Errorf("vault: read artifact: %w", err)
	}
	defer rc.Close()

	got, err := digest.Reader(rc)
	if err != nil {
		return fmt.Errorf("vault: read artifact: %w", err)
	}
	if got != want {
		return fmt.Errorf("%w: %s", ErrArtifactMismatch, want)
	}
	return nil
}

// decrypt streams the artifact for key through the cipher into dst, hashing
// the plaintext on the way.
func (v *Vault) decrypt(key []byte, secret, dst string) (err error) {
	rc, err := v.Store.Open(key)
	if err != nil {
		return fmt.Errorf("vault: read artifact: %w", err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("vault: create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("vault: write %s: %w", dst, cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	h := digest.New()
	if _, err := v.Cipher.DecryptStream(io.MultiWriter(out, h), rc, secret); err != nil {
		return err
	}
	if h.Sum() != secret {
		return fmt.Errorf("%w: plaintext digest %s", ErrWrongSecret, h.Sum())
	}
	return nil
}
