// Package node ties the ledger, mempool and peer registry together behind a
// single coordinating object. All shared mutable state is owned here and
// every read-modify-write sequence runs under one coarse lock; the HTTP layer
// and the background sync loop only ever hold a *Node handle.
package node

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tanahlink/tanahd/internal/ledger"
	"github.com/tanahlink/tanahd/internal/mempool"
	"github.com/tanahlink/tanahd/internal/peers"
	"github.com/tanahlink/tanahd/internal/storage"
)

var (
	// ErrEmptyMempool is returned by Mine when there is nothing to commit.
	ErrEmptyMempool = errors.New("mempool is empty, nothing to mine")

	// ErrNotLonger is returned when a candidate chain does not strictly
	// exceed the local chain length. Ties favor the chain already held.
	ErrNotLonger = errors.New("candidate chain is not longer than the local chain")
)

// Options configures a node. Store may be nil for a purely in-memory node
// (used by tests); Difficulty defaults to ledger.DefaultDifficulty.
type Options struct {
	Difficulty int
	Store      *storage.Store
}

// Node is the single context object owning chain, mempool and peer set.
type Node struct {
	mu    sync.Mutex
	chain *ledger.Store
	pool  *mempool.Pool
	peers *peers.Registry
	store *storage.Store

	identifier string
	difficulty int

	// pow is the proof-of-work search; swappable so tests can interleave a
	// chain replacement with an in-flight mining attempt.
	pow func(lastProof uint64, difficulty int) uint64
}

// New restores a node from its durable store, or boots a fresh genesis chain
// when no (or corrupt) state exists.
func New(opts Options) (*Node, error) {
	difficulty := opts.Difficulty
	if difficulty <= 0 {
		difficulty = ledger.DefaultDifficulty
	}

	n := &Node{
		pool:       mempool.New(),
		peers:      peers.NewRegistry(),
		store:      opts.Store,
		identifier: strings.ReplaceAll(uuid.NewString(), "-", ""),
		difficulty: difficulty,
		pow:        ledger.ProofOfWork,
	}

	if err := n.restore(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) restore() error {
	if n.store == nil {
		n.chain = ledger.NewStore(n.difficulty)
		return nil
	}

	blocks, err := n.store.LoadChain()
	if err == nil && len(blocks) > 0 {
		chain, verr := ledger.NewStoreFromBlocks(blocks, n.difficulty)
		if verr == nil {
			n.chain = chain
		} else {
			slog.Warn("Persisted chain is invalid, rebuilding genesis", "error", verr)
		}
	} else if err != nil {
		slog.Warn("Failed to load persisted chain, rebuilding genesis", "error", err)
	}

	if n.chain == nil {
		n.chain = ledger.NewStore(n.difficulty)
		if err := n.store.SaveChain(n.chain.Blocks()); err != nil {
			return err
		}
	}

	txs, err := n.store.LoadMempool()
	if err != nil {
		slog.Warn("Failed to load persisted mempool, starting empty", "error", err)
	} else {
		n.pool.Merge(txs)
	}
	return nil
}

// Identifier returns the unique id of this node instance.
func (n *Node) Identifier() string {
	return n.identifier
}

// Difficulty returns the fixed proof-of-work difficulty.
func (n *Node) Difficulty() int {
	return n.difficulty
}

// Chain returns a snapshot of the block sequence.
func (n *Node) Chain() []ledger.Block {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain.Blocks()
}

// Length returns the current chain length.
func (n *Node) Length() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain.Length()
}

// Mempool returns a snapshot of the pending transactions.
func (n *Node) Mempool() []ledger.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pool.Snapshot()
}

// MempoolLen returns the number of pending transactions.
func (n *Node) MempoolLen() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pool.Len()
}

// RegisterPeer adds a peer address to the registry.
func (n *Node) RegisterPeer(raw string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.peers.Register(raw)
}

// Peers returns a snapshot of the registered peer addresses.
func (n *Node) Peers() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.peers.List()
}

// PeerLen returns the number of registered peers.
func (n *Node) PeerLen() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.peers.Len()
}

// Submit buffers a new land-certificate record, assigning its txid, and
// persists the mempool.
func (n *Node) Submit(tx ledger.Transaction) (ledger.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tx = n.pool.Add(tx)
	if err := n.persistMempoolLocked(); err != nil {
		return tx, err
	}
	return tx, nil
}

// MergeMempool unions remote pending transactions into the local pool
// (first-writer-wins by txid) and persists when anything was added.
func (n *Node) MergeMempool(remote []ledger.Transaction) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	added := n.pool.Merge(remote)
	if added == 0 {
		return 0, nil
	}
	return added, n.persistMempoolLocked()
}

// Mine runs the proof-of-work search over the current head and appends the
// resulting block. The CPU-bound search runs without the lock; linkage is
// re-validated against the head at append time, so a chain replaced mid-search
// rejects the stale block with ledger.ErrChainLinkage instead of being
// corrupted. Committed transactions leave the mempool only after the append
// succeeds.
func (n *Node) Mine() (ledger.Block, error) {
	n.mu.Lock()
	if n.pool.Len() == 0 {
		n.mu.Unlock()
		return ledger.Block{}, ErrEmptyMempool
	}
	head := n.chain.Head()
	txs := n.pool.Snapshot()
	n.mu.Unlock()

	proof := n.pow(head.Proof, n.difficulty)

	n.mu.Lock()
	defer n.mu.Unlock()

	block := ledger.NewBlock(head.Index+1, nowSeconds(), txs, proof, head.Hash)
	if err := n.chain.Append(block); err != nil {
		return ledger.Block{}, err
	}

	txids := make([]string, len(txs))
	for i, tx := range txs {
		txids[i] = tx.TxID
	}
	n.pool.Commit(txids)

	if err := n.persistLocked(); err != nil {
		return block, err
	}
	return block, nil
}

// AdoptChain replaces the local chain with a candidate that strictly exceeds
// the local length and passes full validation. The mempool is reconciled by
// committing every transaction the adopted chain already embeds, so none are
// re-mined.
func (n *Node) AdoptChain(blocks []ledger.Block) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(blocks) <= n.chain.Length() {
		return ErrNotLonger
	}
	if err := n.chain.Replace(blocks); err != nil {
		return err
	}

	var embedded []string
	for _, b := range blocks {
		for _, tx := range b.Transactions {
			embedded = append(embedded, tx.TxID)
		}
	}
	n.pool.Commit(embedded)

	return n.persistLocked()
}

func (n *Node) persistLocked() error {
	if n.store == nil {
		return nil
	}
	if err := n.store.SaveChain(n.chain.Blocks()); err != nil {
		return err
	}
	return n.store.SaveMempool(n.pool.Snapshot())
}

func (n *Node) persistMempoolLocked() error {
	if n.store == nil {
		return nil
	}
	return n.store.SaveMempool(n.pool.Snapshot())
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
