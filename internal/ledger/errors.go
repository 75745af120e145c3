package ledger

import "errors"

var (
	// ErrChainLinkage is returned when an appended block does not extend the
	// current head. The caller must re-read the head and retry.
	ErrChainLinkage = errors.New("block does not link to the current head")

	// ErrEmptyChain is returned when a replacement chain has no blocks.
	ErrEmptyChain = errors.New("chain is empty")
)
