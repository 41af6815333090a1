package index

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/fileledger-go/ledger"
)

var (
	bucketBlocks       = []byte("blocks")
	bucketBlocksHeight = []byte("blocks_height")
	bucketFiles        = []byte("files")
	bucketOwners       = []byte("owners")

	allBuckets = [][]byte{bucketBlocks, bucketBlocksHeight, bucketFiles, bucketOwners}
)

// storedBlock is the gob value of the blocks bucket.
type storedBlock struct {
	Height uint64
	Block  ledger.Block
}

// BoltIndex persists the index in a bbolt database.
type BoltIndex struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Index = (*BoltIndex)(nil)

// OpenBoltIndex opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltIndex(dbPath string) (*BoltIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("index: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("index: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		return createBuckets(tx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("index: create buckets: %w", err)
	}
	return &BoltIndex{db: db}, nil
}

func createBuckets(tx *bbolt.Tx) error {
	for _, name := range allBuckets {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("boltindex: create bucket %q: %w", name, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *BoltIndex) Close() error { return s.db.Close() }

// heightKey encodes a height as an 8-byte big-endian key for sorted storage.
func heightKey(h uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, h)
	return k
}

// positionKey appends height and entry position to prefix so that a prefix
// scan yields entries in chain order.
func positionKey(prefix []byte, height uint64, pos int) []byte {
	k := make([]byte, 0, len(prefix)+12)
	k = append(k, prefix...)
	k = binary.BigEndian.AppendUint64(k, height)
	k = binary.BigEndian.AppendUint32(k, uint32(pos))
	return k
}

// ownerPrefix terminates the owner so one fingerprint is never a prefix of another.
func ownerPrefix(owner string) []byte {
	return append([]byte(owner), 0x00)
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func nextHeight(tx *bbolt.Tx) uint64 {
	k, _ := tx.Bucket(bucketBlocksHeight).Cursor().Last()
	if k == nil {
		return 0
	}
	return binary.BigEndian.Uint64(k) + 1
}

// PutBlock indexes b at height together with its file entries.
func (s *BoltIndex) PutBlock(height uint64, b *ledger.Block) error {
	if b == nil {
		return fmt.Errorf("%w: block", ErrNilParam)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		next := nextHeight(tx)
		if height < next {
			return fmt.Errorf("%w: height %d", ErrDuplicateBlock, height)
		}
		if height > next {
			return fmt.Errorf("%w: got %d, want %d", ErrHeightGap, height, next)
		}

		data, err := encodeGob(storedBlock{Height: height, Block: *b})
		if err != nil {
			return fmt.Errorf("encode block: %w", err)
		}
		if err := tx.Bucket(bucketBlocks).Put([]byte(b.Hash), data); err != nil {
			return fmt.Errorf("boltindex: put block by hash: %w", err)
		}
		if err := tx.Bucket(bucketBlocksHeight).Put(heightKey(height), []byte(b.Hash)); err != nil {
			return fmt.Errorf("boltindex: put block by height: %w", err)
		}

		files := tx.Bucket(bucketFiles)
		owners := tx.Bucket(bucketOwners)
		for _, rec := range fileRecords(height, b) {
			fileKey := positionKey([]byte(rec.File), height, rec.Position)
			data, err := encodeGob(rec)
			if err != nil {
				return fmt.Errorf("encode file record: %w", err)
			}
			if err := files.Put(fileKey, data); err != nil {
				return fmt.Errorf("boltindex: put file record: %w", err)
			}
			if err := owners.Put(positionKey(ownerPrefix(rec.Owner), height, rec.Position), fileKey); err != nil {
				return fmt.Errorf("boltindex: put owner index entry: %w", err)
			}
		}
		return nil
	})
}

func getBlock(tx *bbolt.Tx, hash []byte) (*storedBlock, error) {
	data := tx.Bucket(bucketBlocks).Get(hash)
	if data == nil {
		return nil, ErrNotFound
	}
	var sb storedBlock
	if err := decodeGob(data, &sb); err != nil {
		return nil, fmt.Errorf("boltindex: decode block: %w", err)
	}
	if sb.Block.Data.Files == nil {
		sb.Block.Data.Files = []ledger.FileEntry{}
	}
	return &sb, nil
}

// GetBlock retrieves a block and its height by block hash.
func (s *BoltIndex) GetBlock(hash string) (uint64, *ledger.Block, error) {
	var sb *storedBlock
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		sb, err = getBlock(tx, []byte(hash))
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return sb.Height, &sb.Block, nil
}

// GetBlockByHeight retrieves a block by height.
func (s *BoltIndex) GetBlockByHeight(height uint64) (*ledger.Block, error) {
	var sb *storedBlock
	err := s.db.View(func(tx *bbolt.Tx) error {
		hash := tx.Bucket(bucketBlocksHeight).Get(heightKey(height))
		if hash == nil {
			return ErrNotFound
		}
		var err error
		sb, err = getBlock(tx, hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &sb.Block, nil
}

// Tip returns the block with the greatest height.
func (s *BoltIndex) Tip() (uint64, *ledger.Block, error) {
	var sb *storedBlock
	err := s.db.View(func(tx *bbolt.Tx) error {
		k, hash := tx.Bucket(bucketBlocksHeight).Cursor().Last()
		if k == nil {
			return ErrNotFound
		}
		var err error
		sb, err = getBlock(tx, hash)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return sb.Height, &sb.Block, nil
}

// Count returns the number of indexed blocks.
func (s *BoltIndex) Count() (uint64, error) {
	var count uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = uint64(tx.Bucket(bucketBlocksHeight).Stats().KeyN)
		return nil
	})
	return count, err
}

// FindFile returns every record of the ciphertext digest in chain order.
func (s *BoltIndex) FindFile(fileDigest string) ([]FileRecord, error) {
	if fileDigest == "" {
		return nil, nil
	}
	prefix := []byte(fileDigest)

	var out []FileRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketFiles).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			// Keys are digest + 12 bytes; longer digests sharing the prefix are skipped.
			if len(k) != len(prefix)+12 {
				continue
			}
			var rec FileRecord
			if err := decodeGob(v, &rec); err != nil {
				return fmt.Errorf("boltindex: decode file record: %w", err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FilesByOwner returns every record for owner in chain order. An empty
// owner walks all blocks by height.
func (s *BoltIndex) FilesByOwner(owner string) ([]FileRecord, error) {
	var out []FileRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		if owner == "" {
			return tx.Bucket(bucketBlocksHeight).ForEach(func(_, hash []byte) error {
				sb, err := getBlock(tx, hash)
				if err != nil {
					return err
				}
				out = append(out, fileRecords(sb.Height, &sb.Block)...)
				return nil
			})
		}

		prefix := ownerPrefix(owner)
		files := tx.Bucket(bucketFiles)
		c := tx.Bucket(bucketOwners).Cursor()
		for k, fileKey := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, fileKey = c.Next() {
			data := files.Get(fileKey)
			if data == nil {
				continue // stale index entry
			}
			var rec FileRecord
			if err := decodeGob(data, &rec); err != nil {
				return fmt.Errorf("boltindex: decode file record by owner: %w", err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reset drops all buckets and recreates them empty.
func (s *BoltIndex) Reset() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("boltindex: drop bucket %q: %w", name, err)
			}
		}
		return createBuckets(tx)
	})
}
