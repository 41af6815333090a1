package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/bitfsorg/fileledger-go/ledger"
	"github.com/bitfsorg/fileledger-go/storage"
)

// ArtifactReport compares the artifact store with the files on chain.
type ArtifactReport struct {
	Recorded int      // distinct ciphertext digests on chain
	Bytes    int64    // stored size of the recorded artifacts
	Missing  []string // recorded digests with no stored artifact
	Orphans  []string // stored artifacts no block records
}

// CheckArtifacts verifies the chain and reports which recorded files have no
// artifact and which artifacts are not recorded. Orphans are left behind by
// an upload that stored its artifacts but failed to save the chain.
func (v *Vault) CheckArtifacts() (*ArtifactReport, error) {
	if err := v.load(); err != nil {
		return nil, err
	}
	records, err := v.Index.FilesByOwner("")
	if err != nil {
		return nil, err
	}

	report := &ArtifactReport{}
	recorded := make(map[string]bool, len(records))
	for _, r := range records {
		if recorded[r.File] {
			continue
		}
		recorded[r.File] = true

		key, err := storage.ParseHexKey(r.File)
		if err != nil {
			return nil, fmt.Errorf("vault: block %d: %w", r.Height, err)
		}
		ok, err := v.Store.Has(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.Missing = append(report.Missing, r.File)
			continue
		}
		size, err := v.Store.Size(key)
		if err != nil {
			return nil, err
		}
		report.Bytes += size
	}
	report.Recorded = len(recorded)

	keys, err := v.Store.List()
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if d := storage.HexKey(key); !recorded[d] {
			report.Orphans = append(report.Orphans, d)
		}
	}
	slices.Sort(report.Orphans)

	if len(report.Missing) > 0 {
		slog.Warn("Recorded files missing from store", "count", len(report.Missing))
	}
	return report, nil
}

// PruneOrphans deletes the artifacts CheckArtifacts reports as orphans. The
// data directory lock is held so artifacts of an upload still in progress
// are not removed.
func (v *Vault) PruneOrphans() (*ArtifactReport, error) {
	fl, err := v.lock()
	if err != nil {
		return nil, fmt.Errorf("vault lock: %w", err)
	}
	defer releaseLock(fl)

	report, err := v.CheckArtifacts()
	if err != nil {
		return nil, err
	}
	for _, d := range report.Orphans {
		key, err := storage.ParseHexKey(d)
		if err != nil {
			return nil, err
		}
		if err := v.Store.Delete(key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("vault: prune %s: %w", d, err)
		}
	}
	if len(report.Orphans) > 0 {
		slog.Info("Orphaned artifacts pruned", "count", len(report.Orphans))
	}
	return report, nil
}

// Block looks up a block of the verified chain by hash or decimal height.
func (v *Vault) Block(ref string) (uint64, *ledger.Block, error) {
	if err := v.load(); err != nil {
		return 0, nil, err
	}
	if height, err := strconv.ParseUint(ref, 10, 64); err == nil {
		b, err := v.Index.GetBlockByHeight(height)
		if err != nil {
			return 0, nil, fmt.Errorf("vault: block at height %d: %w", height, err)
		}
		return height, b, nil
	}
	height, b, err := v.Index.GetBlock(ref)
	if err != nil {
		return 0, nil, fmt.Errorf("vault: block %s: %w", ref, err)
	}
	return height, b, nil
}

