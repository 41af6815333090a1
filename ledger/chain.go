package ledger

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/bitfsorg/fileledger-go/digest"
)

// Chain is the ordered sequence of blocks, starting with exactly one genesis
// block. It is not safe for concurrent mutation; cross-process writers must
// serialize through an external lock.
type Chain struct {
	ID         string
	Difficulty uint
	Blocks     []*Block

	// MineBudget bounds the nonces tried per appended block (0 = unbounded).
	MineBudget uint64

	// OnMined, when set, is called after each block is mined and appended.
	OnMined func(b *Block, res MineResult)

	now func() time.Time
}

// NewChain creates a chain with a fresh random ID and a genesis block.
func NewChain(difficulty uint) (*Chain, error) {
	if difficulty > digest.HexSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, difficulty)
	}
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("ledger: generate chain id: %w", err)
	}
	c := &Chain{
		ID:         digest.Bytes(seed),
		Difficulty: difficulty,
		now:        time.Now,
	}
	c.Blocks = []*Block{c.CreateGenesis()}
	return c, nil
}

func (c *Chain) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// CreateGenesis returns an unmined block with no entries and an empty
// previous hash, stamped with the current time.
func (c *Chain) CreateGenesis() *Block {
	return NewBlock(Timestamp(c.clock()), nil, "")
}

// Len returns the number of blocks including genesis.
func (c *Chain) Len() int { return len(c.Blocks) }

// Latest returns the last block. It fails only on an uninitialized chain.
func (c *Chain) Latest() (*Block, error) {
	if len(c.Blocks) == 0 {
		return nil, ErrInvalidState
	}
	return c.Blocks[len(c.Blocks)-1], nil
}

// Append builds a block carrying entries, links it to the latest block,
// mines it at the chain difficulty and appends it.
func (c *Chain) Append(entries []FileEntry) (*Block, error) {
	return c.AppendContext(context.Background(), entries)
}

// AppendContext is Append with cancellable mining. It is the only operation
// that grows the chain. A chain that fails verification refuses appends with
// ErrIntegrityViolation until it is replaced.
func (c *Chain) AppendContext(ctx context.Context, entries []FileEntry) (*Block, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidEntry)
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	if err := c.VerifyDetailed(); err != nil {
		return nil, err
	}

	latest, err := c.Latest()
	if err != nil {
		return nil, err
	}

	b := NewBlock(Timestamp(c.clock()), entries, latest.Hash)
	res, err := b.MineContext(ctx, c.Difficulty, c.MineBudget)
	if err != nil {
		return nil, err
	}

	c.Blocks = append(c.Blocks, b)
	if c.OnMined != nil {
		c.OnMined(b, res)
	}
	return b, nil
}
