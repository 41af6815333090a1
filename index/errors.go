package index

import "errors"

var (
	// ErrNotFound indicates the block or height is not in the index.
	ErrNotFound = errors.New("index: not found")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("index: required parameter is nil")

	// ErrDuplicateBlock indicates a block is already indexed at this height.
	ErrDuplicateBlock = errors.New("index: duplicate block")

	// ErrHeightGap indicates a block was put out of order.
	ErrHeightGap = errors.New("index: block height is not the next height")
)
