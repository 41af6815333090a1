// Package output renders chains and upload progress for the terminal.
package output

import (
	"fmt"

	"github.com/disiqueira/gotree/v3"

	"github.com/bitfsorg/fileledger-go/ledger"
)

// DefaultShort is the default number of characters shown per hash.
const DefaultShort = 8

// RenderChain draws the chain as a tree: one node per block, labelled with
// its height and hash prefix and linked to its predecessor's hash prefix,
// with one child per recorded file. short <= 0 shows full values.
func RenderChain(c *ledger.Chain, short int) string {
	root := gotree.New(fmt.Sprintf("chain %s (difficulty %d, %d blocks)",
		head(c.ID, short), c.Difficulty, c.Len()))

	for h, b := range c.Blocks {
		var label string
		if h == 0 {
			label = fmt.Sprintf("#%d %s genesis", h, head(b.Hash, short))
		} else {
			label = fmt.Sprintf("#%d %s <- %s nonce=%d", h, head(b.Hash, short), head(b.PreviousHash, short), b.Nonce)
		}
		node := root.Add(label)
		for _, e := range b.Data.Files {
			node.Add(fmt.Sprintf("%s -> %s", tail(e.Owner, short), head(e.File, short)))
		}
	}
	return root.Print()
}

func head(s string, n int) string {
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// tail is used for owner fingerprints: keys of one curve share their
// encoding prefix, so the distinguishing bytes are at the end.
func tail(s string, n int) string {
	if n <= 0 || n >= len(s) {
		return s
	}
	return "…" + s[len(s)-n:]
}
