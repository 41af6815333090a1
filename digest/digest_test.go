package digest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	abcSHA256   = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
)

// errReader fails on the first read.
type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

// --- Bytes / String ---

func TestBytes_KnownVectors(t *testing.T) {
	assert.Equal(t, emptySHA256, Bytes(nil))
	assert.Equal(t, emptySHA256, Bytes([]byte{}))
	assert.Equal(t, abcSHA256, Bytes([]byte("abc")))
	assert.Equal(t, abcSHA256, String("abc"))
}

func TestBytes_Stable(t *testing.T) {
	data := []byte("the same content twice")
	assert.Equal(t, Bytes(data), Bytes(data))
}

// --- Reader ---

func TestReader_MatchesBytesAcrossChunkBoundaries(t *testing.T) {
	for _, size := range []int{0, 1, ChunkSize - 1, ChunkSize, ChunkSize + 1, 3*ChunkSize + 17} {
		data := bytes.Repeat([]byte{0x5a}, size)
		got, err := Reader(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, Bytes(data), got, "size %d", size)
		assert.Len(t, got, HexSize)
	}
}

func TestReader_ReadError(t *testing.T) {
	_, err := Reader(errReader{})
	assert.ErrorIs(t, err, ErrIOFailure)
}

// --- File ---

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0600))

	got, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, abcSHA256, got)
}

func TestFile_IndependentOfName(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "nested-b.bin")
	require.NoError(t, os.WriteFile(a, []byte("payload"), 0600))
	require.NoError(t, os.WriteFile(b, []byte("payload"), 0600))

	da, err := File(a)
	require.NoError(t, err)
	db, err := File(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	got, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, emptySHA256, got)
}

func TestFile_NotFound(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFile_Directory(t *testing.T) {
	_, err := File(t.TempDir())
	assert.ErrorIs(t, err, ErrIOFailure)
}

// --- Writer ---

func TestWriter_IncrementalEqualsOneShot(t *testing.T) {
	w := New()
	_, _ = w.Write([]byte("a"))
	_, _ = w.Write([]byte("bc"))
	assert.Equal(t, abcSHA256, w.Sum())
	assert.Equal(t, int64(3), w.Len())
}

// --- Valid ---

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"sha256", abcSHA256, true},
		{"uppercase", strings.ToUpper(abcSHA256), false},
		{"short", abcSHA256[:63], false},
		{"long", abcSHA256 + "0", false},
		{"non_hex", strings.Repeat("g", HexSize), false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Valid(tc.in))
		})
	}
}
