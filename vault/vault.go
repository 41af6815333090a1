// Package vault ties the ledger to a data directory: the chain document,
// the encrypted artifact store and the file index. CLI commands call Vault
// methods to create chains, upload and download files, and verify.
package vault

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bitfsorg/fileledger-go/config"
	"github.com/bitfsorg/fileledger-go/filecrypt"
	"github.com/bitfsorg/fileledger-go/index"
	"github.com/bitfsorg/fileledger-go/ledger"
	"github.com/bitfsorg/fileledger-go/metrics"
	"github.com/bitfsorg/fileledger-go/storage"
)

const (
	objectsDir   = "objects"
	indexFile    = "index.db"
	lockFileName = "ledger.lock"
)

// Vault is the working state of one data directory.
type Vault struct {
	DataDir   string
	ChainPath string
	Store     storage.Store
	Index     index.Index
	Cipher    filecrypt.Cipher
	Metrics   *metrics.Recorder // optional
	Chain     *ledger.Chain     // nil until a chain is created or loaded

	// MineBudget bounds the nonces tried per uploaded block (0 = unbounded).
	MineBudget uint64

	difficulty uint
}

// Result holds the output of a vault operation.
type Result struct {
	Block   *ledger.Block
	Files   []UploadedFile
	Message string // human-readable summary
}

// UploadedFile describes one file recorded by Upload.
type UploadedFile struct {
	Path   string
	Secret string // plaintext digest; the decryption secret
	Digest string // ciphertext digest recorded on chain
}

// Create initializes a new chain in dataDir using cfg's difficulty and
// cipher settings. It fails with ErrChainExists when a chain is present.
func Create(dataDir string, cfg config.Config) (*Vault, error) {
	v, err := newVault(dataDir, cfg)
	if err != nil {
		return nil, err
	}

	err = v.withWriteLock(func() error {
		if v.Chain != nil {
			return fmt.Errorf("%w: %s", ErrChainExists, v.ChainPath)
		}
		c, err := ledger.NewChain(v.difficulty)
		if err != nil {
			return err
		}
		v.Chain = v.attach(c)
		return nil
	})
	if err != nil {
		_ = v.Close()
		return nil, err
	}

	slog.Info("Chain created", "id", v.Chain.ID, "difficulty", v.Chain.Difficulty, "path", v.ChainPath)
	return v, nil
}

// Open loads the existing chain in dataDir. The chain is not verified;
// operations that trust it verify before use.
func Open(dataDir string, cfg config.Config) (*Vault, error) {
	v, err := newVault(dataDir, cfg)
	if err != nil {
		return nil, err
	}
	if err := v.Reload(); err != nil {
		_ = v.Close()
		return nil, err
	}
	return v, nil
}

// Restore opens dataDir and replaces its chain with c, whatever state the
// saved chain is in.
func Restore(dataDir string, cfg config.Config, c *ledger.Chain) (*Vault, error) {
	v, err := newVault(dataDir, cfg)
	if err != nil {
		return nil, err
	}
	if err := v.Replace(c); err != nil {
		_ = v.Close()
		return nil, err
	}
	return v, nil
}

func newVault(dataDir string, cfg config.Config) (*Vault, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("vault: %w", config.ErrEmptyDataDir)
	}
	cfg.DataDir = dataDir
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("vault: create data directory: %w", err)
	}

	store, err := storage.NewFileStore(filepath.Join(dataDir, objectsDir))
	if err != nil {
		return nil, fmt.Errorf("vault: init storage: %w", err)
	}
	idx, err := index.OpenBoltIndex(filepath.Join(dataDir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("vault: open index: %w", err)
	}

	return &Vault{
		DataDir:    dataDir,
		ChainPath:  cfg.ChainPath(),
		Store:      store,
		Index:      idx,
		Cipher:     filecrypt.Cipher{FixedSaltIV: cfg.FixedSaltIV},
		difficulty: cfg.Difficulty,
	}, nil
}

// attach wires the vault's mining budget and metrics into c.
func (v *Vault) attach(c *ledger.Chain) *ledger.Chain {
	c.MineBudget = v.MineBudget
	c.OnMined = func(_ *ledger.Block, res ledger.MineResult) {
		v.Metrics.ObserveMined(res)
	}
	return c
}

// withWriteLock runs fn under the data directory lock against the latest
// saved chain, then saves the chain and syncs the index. A missing chain is
// tolerated so Create can start one.
func (v *Vault) withWriteLock(fn func() error) error {
	return v.update(true, fn)
}

// update holds the data directory lock around fn. With reload set, the saved
// chain is loaded before fn runs. When fn or the save fails, the in-memory
// chain is restored from disk. Once the chain is saved the update stands: an
// index that fails to sync is rebuilt by the next load.
func (v *Vault) update(reload bool, fn func() error) error {
	fl, err := v.lock()
	if err != nil {
		return fmt.Errorf("vault lock: %w", err)
	}
	defer releaseLock(fl)

	if reload {
		if err := v.Reload(); err != nil && !errors.Is(err, ErrNoChain) {
			return fmt.Errorf("reload chain: %w", err)
		}
	}

	if err := fn(); err != nil {
		_ = v.Reload()
		return err
	}

	if err := ledger.SaveFile(v.ChainPath, v.Chain); err != nil {
		_ = v.Reload()
		return err
	}
	if err := v.sync(); err != nil {
		slog.Warn("Index sync failed after save", "path", v.ChainPath, "error", err)
	}
	return nil
}

// lock takes the data directory lock, waiting for another process to
// release it when necessary.
func (v *Vault) lock() (*os.File, error) {
	path := filepath.Join(v.DataDir, lockFileName)
	fl, err := tryLock(path)
	if !errors.Is(err, ErrLocked) {
		return fl, err
	}
	slog.Info("Waiting for ledger lock", "path", path)
	return acquireLock(path)
}

// Reload replaces the in-memory chain with the saved document.
func (v *Vault) Reload() error {
	c, err := ledger.LoadFile(v.ChainPath)
	if err != nil {
		v.Chain = nil
		if errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNoChain, v.ChainPath)
		}
		return err
	}
	v.Chain = v.attach(c)
	v.Metrics.SetChainLength(c.Len())
	return nil
}

// Verify reloads the chain and checks its integrity.
func (v *Vault) Verify() error {
	if err := v.Reload(); err != nil {
		return err
	}
	return v.verify()
}

func (v *Vault) verify() error {
	if v.Chain == nil {
		return ErrNoChain
	}
	if err := v.Chain.VerifyDetailed(); err != nil {
		v.Metrics.VerifyFailed()
		slog.Warn("Chain verification failed", "path", v.ChainPath, "error", err)
		return err
	}
	return nil
}

// sync brings the index in line with the in-memory chain.
func (v *Vault) sync() error {
	n, err := index.Sync(v.Index, v.Chain)
	if err != nil {
		return fmt.Errorf("vault: sync index: %w", err)
	}
	if n > 0 {
		slog.Debug("Index synced", "blocks", n)
	}
	v.Metrics.SetChainLength(v.Chain.Len())
	return nil
}

// load reloads, verifies and indexes the chain for read operations.
func (v *Vault) load() error {
	if err := v.Verify(); err != nil {
		return err
	}
	return v.sync()
}

// Files lists the files on chain recorded for owner, or all files when
// owner is empty.
func (v *Vault) Files(owner string) ([]index.FileRecord, error) {
	if err := v.load(); err != nil {
		return nil, err
	}
	return v.Index.FilesByOwner(owner)
}

// Replace swaps in c, for example a freshly synced copy or a backup, after
// verifying it. A chain that fails verification is rejected and the saved one
// kept. The saved document is not read first, so Replace also recovers a data
// directory whose chain file is damaged.
func (v *Vault) Replace(c *ledger.Chain) error {
	if c == nil {
		return ErrNoChain
	}
	if err := c.VerifyDetailed(); err != nil {
		v.Metrics.VerifyFailed()
		return fmt.Errorf("vault: replacement rejected: %w", err)
	}
	if err := v.update(false, func() error {
		v.Chain = v.attach(c)
		return nil
	}); err != nil {
		return err
	}
	slog.Info("Chain replaced", "id", c.ID, "blocks", c.Len(), "path", v.ChainPath)
	return nil
}

// Close releases the index.
func (v *Vault) Close() error {
	if c, ok := v.Index.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
