package filecrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
)

// streamBufSize is the copy buffer used for streaming encryption.
const streamBufSize = 32 * 1024

// Fixed salt and IV used when Cipher.FixedSaltIV is set. Artifacts written in
// this mode are byte-for-byte reproducible for a given (plaintext, secret).
var (
	LegacySalt = [SaltLen]byte{'f', 'i', 'l', 'e', 'l', 'e', 'd', 'g', 'e', 'r', '-', 's', 'a', 'l', 't', '!'}
	LegacyIV   = [IVLen]byte{'f', 'i', 'l', 'e', 'l', 'e', 'd', 'g', 'e', 'r', '-', 'i', 'v', '-', '0', '1'}
)

// Cipher encrypts and decrypts artifacts. It holds no mutable state; the zero
// value samples a fresh random salt and IV for every encryption.
//
// FixedSaltIV reproduces the deterministic header (LegacySalt, LegacyIV) of
// older stores. With a fixed IV every file encrypted under the same secret
// reuses one keystream, so it must only be enabled for compatibility.
type Cipher struct {
	FixedSaltIV bool
}

// Encrypt encrypts plaintext with the zero-value Cipher.
func Encrypt(plaintext []byte, secret string) ([]byte, error) {
	return Cipher{}.Encrypt(plaintext, secret)
}

// Decrypt decrypts data produced by any Cipher.
func Decrypt(data []byte, secret string) ([]byte, error) {
	return Cipher{}.Decrypt(data, secret)
}

// header returns the salt and IV for a new artifact.
func (c Cipher) header() ([]byte, []byte, error) {
	salt := make([]byte, SaltLen)
	iv := make([]byte, IVLen)
	if c.FixedSaltIV {
		copy(salt, LegacySalt[:])
		copy(iv, LegacyIV[:])
		return salt, iv, nil
	}
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("%w: salt: %w", ErrRandFailure, err)
	}
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("%w: iv: %w", ErrRandFailure, err)
	}
	return salt, iv, nil
}

// newStream derives the key for (secret, salt) and returns the CTR keystream.
func newStream(secret string, salt, iv []byte) (cipher.Stream, error) {
	key, err := DeriveKey(secret, salt)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("filecrypt: AES cipher creation failed: %w", err)
	}
	return cipher.NewCTR(block, iv), nil
}

// Encrypt returns salt || iv || AES-256-CTR(plaintext).
func (c Cipher) Encrypt(plaintext []byte, secret string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(HeaderLen + len(plaintext))
	if _, err := c.EncryptStream(&buf, bytes.NewReader(plaintext), secret); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decrypt parses salt || iv || ciphertext and returns the plaintext.
// Input shorter than HeaderLen returns ErrInvalidCiphertext.
func (c Cipher) Decrypt(data []byte, secret string) ([]byte, error) {
	if len(data) < HeaderLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidCiphertext, len(data))
	}
	stream, err := newStream(secret, data[:SaltLen], data[SaltLen:HeaderLen])
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(data)-HeaderLen)
	stream.XORKeyStream(plaintext, data[HeaderLen:])
	return plaintext, nil
}

// EncryptStream writes salt || iv to dst followed by the encryption of src,
// processed in fixed-size chunks. Returns the total bytes written.
func (c Cipher) EncryptStream(dst io.Writer, src io.Reader, secret string) (int64, error) {
	if secret == "" {
		return 0, ErrEmptySecret
	}
	salt, iv, err := c.header()
	if err != nil {
		return 0, err
	}
	stream, err := newStream(secret, salt, iv)
	if err != nil {
		return 0, err
	}

	if _, err := dst.Write(salt); err != nil {
		return 0, fmt.Errorf("%w: write salt: %w", ErrIOFailure, err)
	}
	if _, err := dst.Write(iv); err != nil {
		return SaltLen, fmt.Errorf("%w: write iv: %w", ErrIOFailure, err)
	}

	w := cipher.StreamWriter{S: stream, W: dst}
	n, err := io.CopyBuffer(w, src, make([]byte, streamBufSize))
	if err != nil {
		return HeaderLen + n, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return HeaderLen + n, nil
}

// DecryptStream reads salt || iv from src and writes the decryption of the
// remainder to dst. Returns the plaintext bytes written.
func (c Cipher) DecryptStream(dst io.Writer, src io.Reader, secret string) (int64, error) {
	header := make([]byte, HeaderLen)
	if _, err := io.ReadFull(src, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: short header", ErrInvalidCiphertext)
		}
		return 0, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	stream, err := newStream(secret, header[:SaltLen], header[SaltLen:])
	if err != nil {
		return 0, err
	}

	r := cipher.StreamReader{S: stream, R: src}
	n, err := io.CopyBuffer(dst, r, make([]byte, streamBufSize))
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return n, nil
}

// EncryptFile encrypts the file at srcPath into dstPath (mode 0600).
func (c Cipher) EncryptFile(srcPath, dstPath, secret string) error {
	return transformFile(srcPath, dstPath, func(dst io.Writer, src io.Reader) error {
		_, err := c.EncryptStream(dst, src, secret)
		return err
	})
}

// DecryptFile decrypts the artifact at srcPath into dstPath (mode 0600).
func (c Cipher) DecryptFile(srcPath, dstPath, secret string) error {
	return transformFile(srcPath, dstPath, func(dst io.Writer, src io.Reader) error {
		_, err := c.DecryptStream(dst, src, secret)
		return err
	})
}

// transformFile streams srcPath through fn into dstPath. A partially written
// dstPath is removed when fn fails.
func transformFile(srcPath, dstPath string, fn func(io.Writer, io.Reader) error) (err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, srcPath)
		}
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrIOFailure, cerr)
		}
		if err != nil {
			_ = os.Remove(dstPath)
		}
	}()

	return fn(dst, src)
}
