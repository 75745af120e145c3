package ledger

import (
	"fmt"
	"time"
)

// Store owns the ordered block sequence. It is a plain data structure; the
// node context object serializes access to it (see internal/node).
type Store struct {
	blocks     []Block
	difficulty int
}

// NewStore creates a store holding a fresh genesis block.
func NewStore(difficulty int) *Store {
	return &Store{
		blocks:     []Block{NewGenesisBlock(now())},
		difficulty: difficulty,
	}
}

// NewStoreFromBlocks restores a store from previously persisted blocks. The
// chain is validated before being accepted.
func NewStoreFromBlocks(blocks []Block, difficulty int) (*Store, error) {
	if err := ValidateChain(blocks, difficulty); err != nil {
		return nil, err
	}
	return &Store{blocks: blocks, difficulty: difficulty}, nil
}

func now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Head returns the last block of the chain.
func (s *Store) Head() Block {
	return s.blocks[len(s.blocks)-1]
}

// Length returns the number of blocks in the chain.
func (s *Store) Length() int {
	return len(s.blocks)
}

// Difficulty returns the fixed proof-of-work difficulty of this ledger.
func (s *Store) Difficulty() int {
	return s.difficulty
}

// Blocks returns a copy of the block sequence.
func (s *Store) Blocks() []Block {
	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// Append adds a block on top of the current head. It fails with
// ErrChainLinkage when the block's previous hash or index does not match the
// head at append time; callers racing against a chain replacement must
// re-read the head and retry.
func (s *Store) Append(b Block) error {
	head := s.Head()
	if b.PreviousHash != head.Hash {
		return fmt.Errorf("previous hash %q does not match head %q: %w", b.PreviousHash, head.Hash, ErrChainLinkage)
	}
	if b.Index != head.Index+1 {
		return fmt.Errorf("index %d does not follow head index %d: %w", b.Index, head.Index, ErrChainLinkage)
	}
	s.blocks = append(s.blocks, b)
	return nil
}

// Replace swaps the whole chain for a validated candidate. Position-level
// immutability only ever yields to this whole-chain replacement.
func (s *Store) Replace(blocks []Block) error {
	if err := ValidateChain(blocks, s.difficulty); err != nil {
		return err
	}
	s.blocks = make([]Block, len(blocks))
	copy(s.blocks, blocks)
	return nil
}

// ValidateChain checks a whole candidate chain: genesis sentinel, strictly
// increasing indices, hash linkage, per-block tamper check against the
// recorded content, and the proof-of-work of every adjacent pair.
func ValidateChain(blocks []Block, difficulty int) error {
	if len(blocks) == 0 {
		return ErrEmptyChain
	}

	genesis := blocks[0]
	if genesis.PreviousHash != GenesisPreviousHash {
		return fmt.Errorf("genesis previous hash is %q, want %q", genesis.PreviousHash, GenesisPreviousHash)
	}
	if genesis.Index != 1 {
		return fmt.Errorf("genesis index is %d, want 1", genesis.Index)
	}
	if got := genesis.ComputeHash(); got != genesis.Hash {
		return fmt.Errorf("block 1: recorded hash %q does not match content hash %q", genesis.Hash, got)
	}

	for i := 1; i < len(blocks); i++ {
		prev, curr := blocks[i-1], blocks[i]
		if curr.Index != prev.Index+1 {
			return fmt.Errorf("block %d: index %d does not follow %d", i+1, curr.Index, prev.Index)
		}
		if curr.PreviousHash != prev.Hash {
			return fmt.Errorf("block %d: previous hash %q does not match block %d hash %q", i+1, curr.PreviousHash, i, prev.Hash)
		}
		if got := curr.ComputeHash(); got != curr.Hash {
			return fmt.Errorf("block %d: recorded hash %q does not match content hash %q", i+1, curr.Hash, got)
		}
		if !ValidProof(prev.Proof, curr.Proof, difficulty) {
			return fmt.Errorf("block %d: proof %d does not satisfy difficulty %d", i+1, curr.Proof, difficulty)
		}
	}

	return nil
}
