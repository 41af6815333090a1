package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/fileledger-go/config"
	"github.com/bitfsorg/fileledger-go/digest"
	"github.com/bitfsorg/fileledger-go/filecrypt"
	"github.com/bitfsorg/fileledger-go/identity"
	"github.com/bitfsorg/fileledger-go/ledger"
	"github.com/bitfsorg/fileledger-go/index"
	"github.com/bitfsorg/fileledger-go/metrics"
	"github.com/bitfsorg/fileledger-go/storage"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Difficulty = 1
	cfg.FixedSaltIV = true
	return cfg
}

// initTestVault creates a chain in a temporary data directory.
func initTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := Create(t.TempDir(), testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })
	return v
}

func testOwner(t *testing.T) string {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id.Fingerprint()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func stagingEntries(t *testing.T, v *Vault) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(v.DataDir, objectsDir, ".staging"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

// artifactPath is where the store keeps the artifact for a ciphertext digest.
func artifactPath(v *Vault, d string) string {
	return filepath.Join(v.DataDir, objectsDir, d[:2], d)
}

func storedKeys(t *testing.T, v *Vault) [][]byte {
	t.Helper()
	keys, err := v.Store.List()
	require.NoError(t, err)
	return keys
}

// --- Create / Open ---

func TestCreate(t *testing.T) {
	dataDir := t.TempDir()
	v, err := Create(dataDir, testConfig())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dataDir, config.DefaultChainFile), v.ChainPath)
	assert.FileExists(t, v.ChainPath)
	assert.Equal(t, 1, v.Chain.Len())
	assert.Equal(t, uint(1), v.Chain.Difficulty)
	assert.NoError(t, v.Verify())
	require.NoError(t, v.Close())

	_, err = Create(dataDir, testConfig())
	assert.ErrorIs(t, err, ErrChainExists)
}

func TestOpen(t *testing.T) {
	dataDir := t.TempDir()
	v, err := Create(dataDir, testConfig())
	require.NoError(t, err)
	id := v.Chain.ID
	require.NoError(t, v.Close())

	v, err = Open(dataDir, testConfig())
	require.NoError(t, err)
	defer v.Close()
	assert.Equal(t, id, v.Chain.ID)
}

func TestOpen_NoChain(t *testing.T) {
	_, err := Open(t.TempDir(), testConfig())
	assert.ErrorIs(t, err, ErrNoChain)
}

func TestCreate_EmptyDataDir(t *testing.T) {
	_, err := Create("", testConfig())
	assert.ErrorIs(t, err, config.ErrEmptyDataDir)
}

// --- Upload ---

func TestUpload_EndToEnd(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	content := "hello, ledger"
	path := writeFile(t, t.TempDir(), "note.txt", content)

	res, err := v.Upload(context.Background(), []string{path}, owner, nil)
	require.NoError(t, err)

	require.Equal(t, 2, v.Chain.Len())
	entries := v.Chain.Blocks[1].Entries()
	require.Len(t, entries, 1)

	secret := digest.String(content)
	ciphertext, err := filecrypt.Cipher{FixedSaltIV: true}.Encrypt([]byte(content), secret)
	require.NoError(t, err)
	want := digest.Bytes(ciphertext)

	assert.Equal(t, want, entries[0].File)
	assert.Equal(t, owner, entries[0].Owner)
	assert.True(t, v.Chain.Verify())

	require.Len(t, res.Files, 1)
	assert.Equal(t, UploadedFile{Path: path, Secret: secret, Digest: want}, res.Files[0])
	assert.Equal(t, v.Chain.Blocks[1], res.Block)
	assert.Contains(t, res.Message, "block 1")

	stored, err := os.ReadFile(artifactPath(v, want))
	require.NoError(t, err)
	assert.Equal(t, ciphertext, stored)
	assert.Empty(t, stagingEntries(t, v))

	// The saved document carries the new block.
	saved, err := ledger.LoadFile(v.ChainPath)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Len())
	assert.True(t, saved.Verify())
}

func TestUpload_ManyFilesOneBlock(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a", "alpha"),
		writeFile(t, dir, "b", "bravo"),
		writeFile(t, dir, "c", ""),
	}

	var seen []string
	res, err := v.Upload(context.Background(), paths, owner, func(p string) { seen = append(seen, p) })
	require.NoError(t, err)

	assert.Equal(t, paths, seen)
	assert.Equal(t, 2, v.Chain.Len())
	assert.Len(t, v.Chain.Blocks[1].Entries(), 3)
	assert.Len(t, res.Files, 3)
	assert.True(t, ledger.MeetsDifficulty(res.Block.Hash, 1))

	assert.Len(t, storedKeys(t, v), 3)
}

func TestUpload_SequentialBlocksLink(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	dir := t.TempDir()

	first, err := v.Upload(context.Background(), []string{writeFile(t, dir, "1", "one")}, owner, nil)
	require.NoError(t, err)
	second, err := v.Upload(context.Background(), []string{writeFile(t, dir, "2", "two")}, owner, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, v.Chain.Len())
	assert.Equal(t, first.Block.Hash, second.Block.PreviousHash)
	assert.NoError(t, v.Verify())
}

func TestUpload_InvalidInput(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)

	_, err := v.Upload(context.Background(), nil, owner, nil)
	assert.ErrorIs(t, err, ledger.ErrInvalidEntry)

	path := writeFile(t, t.TempDir(), "f", "data")
	_, err = v.Upload(context.Background(), []string{path}, "", nil)
	assert.ErrorIs(t, err, ErrNoIdentity)

	assert.Equal(t, 1, v.Chain.Len())
}

func TestUpload_MissingFileRecordsNothing(t *testing.T) {
	v := initTestVault(t)
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "present", "here"),
		filepath.Join(dir, "absent"),
	}

	_, err := v.Upload(context.Background(), paths, testOwner(t), nil)
	assert.ErrorIs(t, err, digest.ErrNotFound)

	assert.Equal(t, 1, v.Chain.Len())
	assert.Empty(t, storedKeys(t, v))
	assert.Empty(t, stagingEntries(t, v))

	saved, err := ledger.LoadFile(v.ChainPath)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Len())
}

func TestUpload_Cancelled(t *testing.T) {
	v := initTestVault(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeFile(t, t.TempDir(), "f", "data")
	_, err := v.Upload(ctx, []string{path}, testOwner(t), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, v.Chain.Len())
}

func TestUpload_MineBudgetExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.Difficulty = config.MaxDifficulty
	v, err := Create(t.TempDir(), cfg)
	require.NoError(t, err)
	defer v.Close()
	v.MineBudget = 1

	path := writeFile(t, t.TempDir(), "f", "data")
	_, err = v.Upload(context.Background(), []string{path}, testOwner(t), nil)
	assert.ErrorIs(t, err, ledger.ErrMiningAborted)

	assert.Equal(t, 1, v.Chain.Len())
	assert.Empty(t, stagingEntries(t, v))
}

func TestUpload_RecordsMetrics(t *testing.T) {
	v := initTestVault(t)
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)
	v.Metrics = rec

	dir := t.TempDir()
	_, err = v.Upload(context.Background(), []string{writeFile(t, dir, "a", "a"), writeFile(t, dir, "b", "b")}, testOwner(t), nil)
	require.NoError(t, err)

	values := make(map[string]float64)
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		m := f.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			values[f.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			values[f.GetName()] = m.GetGauge().GetValue()
		}
	}
	assert.Equal(t, 2.0, values["fileledger_files_uploaded_total"])
	assert.Equal(t, 1.0, values["fileledger_blocks_mined_total"])
	assert.Equal(t, 2.0, values["fileledger_chain_length"])
}

// --- Download ---

func uploadOne(t *testing.T, v *Vault, owner, content string) UploadedFile {
	t.Helper()
	path := writeFile(t, t.TempDir(), "upload", content)
	res, err := v.Upload(context.Background(), []string{path}, owner, nil)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	return res.Files[0]
}

func TestDownload_RoundTrip(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	up := uploadOne(t, v, owner, "the quick brown fox")

	dst := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, v.Download(up.Digest, owner, up.Secret, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", string(got))
}

func TestDownload_RandomSaltIV(t *testing.T) {
	cfg := testConfig()
	cfg.FixedSaltIV = false
	v, err := Create(t.TempDir(), cfg)
	require.NoError(t, err)
	defer v.Close()

	owner := testOwner(t)
	up := uploadOne(t, v, owner, "random header")

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, v.Download(up.Digest, owner, up.Secret, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "random header", string(got))
}

func TestDownload_Errors(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	up := uploadOne(t, v, owner, "secret contents")
	dst := filepath.Join(t.TempDir(), "out")

	err := v.Download(up.Digest, testOwner(t), up.Secret, dst)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = v.Download(digest.String("never uploaded"), owner, up.Secret, dst)
	assert.ErrorIs(t, err, ErrFileNotOnChain)

	err = v.Download("not-a-digest", owner, up.Secret, dst)
	assert.ErrorIs(t, err, storage.ErrInvalidKeyHash)

	err = v.Download(up.Digest, owner, "not-a-secret", dst)
	assert.ErrorIs(t, err, ErrWrongSecret)

	err = v.Download(up.Digest, "", up.Secret, dst)
	assert.ErrorIs(t, err, ErrNoIdentity)

	assert.NoFileExists(t, dst)
}

func TestDownload_TamperedArtifact(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	up := uploadOne(t, v, owner, "original bytes")

	path := artifactPath(v, up.Digest)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0600))

	dst := filepath.Join(t.TempDir(), "out")
	err = v.Download(up.Digest, owner, up.Secret, dst)
	assert.ErrorIs(t, err, ErrArtifactMismatch)
	assert.NoFileExists(t, dst)
}

func TestDownload_WrongSecret(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	up := uploadOne(t, v, owner, "only the right secret opens this")

	dst := filepath.Join(t.TempDir(), "out")
	err := v.Download(up.Digest, owner, digest.String("a different file"), dst)
	assert.ErrorIs(t, err, ErrWrongSecret)
	assert.NoFileExists(t, dst)

	// A stale file at dst is not left holding garbage either.
	require.NoError(t, os.WriteFile(dst, []byte("stale"), 0600))
	err = v.Download(up.Digest, owner, digest.String("a different file"), dst)
	assert.ErrorIs(t, err, ErrWrongSecret)
	assert.NoFileExists(t, dst)

	require.NoError(t, v.Download(up.Digest, owner, up.Secret, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "only the right secret opens this", string(got))
}

func TestDownload_MissingArtifact(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	up := uploadOne(t, v, owner, "will vanish")

	key, err := storage.ParseHexKey(up.Digest)
	require.NoError(t, err)
	require.NoError(t, v.Store.Delete(key))

	dst := filepath.Join(t.TempDir(), "out")
	err = v.Download(up.Digest, owner, up.Secret, dst)
	assert.ErrorIs(t, err, ErrArtifactMissing)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoFileExists(t, dst)
}

// --- Files ---

func TestFiles(t *testing.T) {
	v := initTestVault(t)
	alice, bob := testOwner(t), testOwner(t)
	a := uploadOne(t, v, alice, "alice's file")
	b := uploadOne(t, v, bob, "bob's file")

	all, err := v.Files("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.Digest, all[0].File)
	assert.Equal(t, uint64(1), all[0].Height)
	assert.Equal(t, b.Digest, all[1].File)
	assert.Equal(t, uint64(2), all[1].Height)

	mine, err := v.Files(bob)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b.Digest, mine[0].File)
	assert.Equal(t, v.Chain.Blocks[2].Hash, mine[0].BlockHash)

	none, err := v.Files(testOwner(t))
	require.NoError(t, err)
	assert.Empty(t, none)
}

// --- Integrity ---

// tamperSaved flips the stored hash of block height in the saved document.
func tamperSaved(t *testing.T, v *Vault, height int) {
	t.Helper()
	c, err := ledger.LoadFile(v.ChainPath)
	require.NoError(t, err)
	h := []byte(c.Blocks[height].Hash)
	if h[len(h)-1] == 'a' {
		h[len(h)-1] = 'b'
	} else {
		h[len(h)-1] = 'a'
	}
	c.Blocks[height].Hash = string(h)
	require.NoError(t, ledger.SaveFile(v.ChainPath, c))
}

func TestIntegrityViolationBlocksOperations(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	up := uploadOne(t, v, owner, "trusted")

	good, err := ledger.LoadFile(v.ChainPath)
	require.NoError(t, err)

	tamperSaved(t, v, 1)

	assert.ErrorIs(t, v.Verify(), ledger.ErrIntegrityViolation)

	path := writeFile(t, t.TempDir(), "next", "more")
	_, err = v.Upload(context.Background(), []string{path}, owner, nil)
	assert.ErrorIs(t, err, ledger.ErrIntegrityViolation)

	err = v.Download(up.Digest, owner, up.Secret, filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, ledger.ErrIntegrityViolation)

	_, err = v.Files("")
	assert.ErrorIs(t, err, ledger.ErrIntegrityViolation)

	// A verified chain replaces the tampered one.
	require.NoError(t, v.Replace(good))
	assert.NoError(t, v.Verify())
	_, err = v.Upload(context.Background(), []string{path}, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Chain.Len())
}

func TestReplace_RecoversMalformedChain(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	up := uploadOne(t, v, owner, "kept safe")

	good, err := ledger.LoadFile(v.ChainPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(v.ChainPath, []byte("{not json"), 0600))

	assert.ErrorIs(t, v.Verify(), ledger.ErrMalformedDocument)
	_, err = v.Files("")
	assert.ErrorIs(t, err, ledger.ErrMalformedDocument)

	require.NoError(t, v.Replace(good))
	require.NoError(t, v.Verify())
	assert.Equal(t, good.ID, v.Chain.ID)

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, v.Download(up.Digest, owner, up.Secret, dst))

	path := writeFile(t, t.TempDir(), "after", "after recovery")
	_, err = v.Upload(context.Background(), []string{path}, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Chain.Len())
}

func TestRestore(t *testing.T) {
	v := initTestVault(t)
	uploadOne(t, v, testOwner(t), "backed up")
	dataDir := v.DataDir
	backup, err := ledger.LoadFile(v.ChainPath)
	require.NoError(t, err)
	require.NoError(t, v.Close())

	require.NoError(t, os.WriteFile(v.ChainPath, []byte("{not json"), 0600))
	_, err = Open(dataDir, testConfig())
	require.ErrorIs(t, err, ledger.ErrMalformedDocument)

	tampered, err := ledger.Unmarshal(mustMarshal(t, backup))
	require.NoError(t, err)
	tampered.Blocks[1].Nonce++
	_, err = Restore(dataDir, testConfig(), tampered)
	require.ErrorIs(t, err, ledger.ErrIntegrityViolation)

	restored, err := Restore(dataDir, testConfig(), backup)
	require.NoError(t, err)
	require.NoError(t, restored.Close())

	reopened, err := Open(dataDir, testConfig())
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Verify())
	assert.Equal(t, backup.ID, reopened.Chain.ID)
	assert.Equal(t, 2, reopened.Chain.Len())
}

func mustMarshal(t *testing.T, c *ledger.Chain) []byte {
	t.Helper()
	data, err := ledger.Marshal(c)
	require.NoError(t, err)
	return data
}

func TestReplace_RejectsUnverifiedChain(t *testing.T) {
	v := initTestVault(t)
	uploadOne(t, v, testOwner(t), "content")

	bad, err := ledger.LoadFile(v.ChainPath)
	require.NoError(t, err)
	bad.Blocks[1].PreviousHash = bad.Blocks[1].Hash

	assert.ErrorIs(t, v.Replace(bad), ledger.ErrIntegrityViolation)
	assert.ErrorIs(t, v.Replace(nil), ErrNoChain)
	assert.NoError(t, v.Verify())
	assert.Equal(t, 2, v.Chain.Len())
}

func TestIndexRebuildsAfterReplace(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	uploadOne(t, v, owner, "first chain file")

	fresh, err := ledger.NewChain(0)
	require.NoError(t, err)
	require.NoError(t, v.Replace(fresh))

	files, err := v.Files("")
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, fresh.ID, v.Chain.ID)
}

// --- Failed saves ---

// blockSave puts a non-empty directory where the chain's temp document is
// written, so saving fails until it is removed.
func blockSave(t *testing.T, v *Vault) string {
	t.Helper()
	blocker := v.ChainPath + ".wip"
	require.NoError(t, os.Mkdir(blocker, 0700))
	writeFile(t, blocker, "keep", "x")
	return blocker
}

func TestUpload_SaveFailureKeepsSavedChain(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	uploadOne(t, v, owner, "first")

	blocker := blockSave(t, v)

	path := writeFile(t, t.TempDir(), "second", "second")
	_, err := v.Upload(context.Background(), []string{path}, owner, nil)
	require.ErrorIs(t, err, ledger.ErrIOFailure)
	assert.Equal(t, 2, v.Chain.Len())

	require.NoError(t, os.RemoveAll(blocker))
	res, err := v.Upload(context.Background(), []string{path}, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Chain.Len())
	assert.Equal(t, v.Chain.Blocks[1].Hash, res.Block.PreviousHash)
	assert.NoError(t, v.Verify())
}

func TestUpload_IndexSyncFailureKeepsBlock(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	require.NoError(t, v.Close())

	path := writeFile(t, t.TempDir(), "unindexed", "recorded without the index")
	res, err := v.Upload(context.Background(), []string{path}, owner, nil)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	saved, err := ledger.LoadFile(v.ChainPath)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Len())

	// The next read catches the index up.
	v.Index, err = index.OpenBoltIndex(filepath.Join(v.DataDir, indexFile))
	require.NoError(t, err)
	files, err := v.Files(owner)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, res.Files[0].Digest, files[0].File)
}

// --- Artifacts ---

func TestCheckArtifacts(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	a := uploadOne(t, v, owner, "present")
	b := uploadOne(t, v, owner, "about to go missing")
	uploadOne(t, v, testOwner(t), "present") // same ciphertext, counted once

	report, err := v.CheckArtifacts()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Recorded)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Orphans)

	require.NoError(t, os.Remove(artifactPath(v, b.Digest)))

	report, err = v.CheckArtifacts()
	require.NoError(t, err)
	assert.Equal(t, []string{b.Digest}, report.Missing)

	size, err := v.Store.Size(mustKey(t, a.Digest))
	require.NoError(t, err)
	assert.Equal(t, size, report.Bytes)
}

func TestPruneOrphans(t *testing.T) {
	v := initTestVault(t)
	owner := testOwner(t)
	kept := uploadOne(t, v, owner, "recorded")

	// An upload whose chain save fails leaves its artifact behind.
	blocker := blockSave(t, v)
	path := writeFile(t, t.TempDir(), "lost", "never recorded")
	_, err := v.Upload(context.Background(), []string{path}, owner, nil)
	require.Error(t, err)
	require.NoError(t, os.RemoveAll(blocker))

	report, err := v.CheckArtifacts()
	require.NoError(t, err)
	require.Len(t, report.Orphans, 1)
	orphan := report.Orphans[0]
	assert.NotEqual(t, kept.Digest, orphan)
	assert.FileExists(t, artifactPath(v, orphan))

	report, err = v.PruneOrphans()
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, report.Orphans)
	assert.NoFileExists(t, artifactPath(v, orphan))
	assert.FileExists(t, artifactPath(v, kept.Digest))

	report, err = v.CheckArtifacts()
	require.NoError(t, err)
	assert.Empty(t, report.Orphans)
	assert.Equal(t, 1, report.Recorded)
}

func mustKey(t *testing.T, d string) []byte {
	t.Helper()
	key, err := storage.ParseHexKey(d)
	require.NoError(t, err)
	return key
}

// --- Block ---

func TestBlock(t *testing.T) {
	v := initTestVault(t)
	up := uploadOne(t, v, testOwner(t), "in block one")

	height, b, err := v.Block("1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), height)
	assert.Equal(t, v.Chain.Blocks[1].Hash, b.Hash)
	require.Len(t, b.Data.Files, 1)
	assert.Equal(t, up.Digest, b.Data.Files[0].File)

	height, b, err = v.Block(v.Chain.Blocks[0].Hash)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), height)
	assert.Equal(t, v.Chain.Blocks[0].Hash, b.Hash)

	_, _, err = v.Block("7")
	assert.ErrorIs(t, err, index.ErrNotFound)
	_, _, err = v.Block(digest.String("no such block"))
	assert.ErrorIs(t, err, index.ErrNotFound)

	tamperSaved(t, v, 1)
	_, _, err = v.Block("1")
	assert.ErrorIs(t, err, ledger.ErrIntegrityViolation)
}
