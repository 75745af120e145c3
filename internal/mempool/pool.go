// Package mempool buffers land-certificate transactions that are not yet
// embedded in a committed block.
package mempool

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tanahlink/tanahd/internal/ledger"
)

// Pool keeps pending transactions keyed by txid, preserving insertion order
// for deterministic block assembly. It is not internally locked; the node
// context object serializes access to it.
type Pool struct {
	order []string
	txs   map[string]ledger.Transaction
}

func New() *Pool {
	return &Pool{txs: make(map[string]ledger.Transaction)}
}

// NewTxID returns a fresh transaction identifier.
func NewTxID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Add buffers a transaction, assigning a txid and timestamp when absent. A
// transaction whose txid is already buffered is left untouched.
func (p *Pool) Add(tx ledger.Transaction) ledger.Transaction {
	if tx.TxID == "" {
		tx.TxID = NewTxID()
	}
	if tx.Timestamp == 0 {
		tx.Timestamp = float64(time.Now().UnixNano()) / float64(time.Second)
	}
	if _, ok := p.txs[tx.TxID]; ok {
		return p.txs[tx.TxID]
	}
	p.txs[tx.TxID] = tx
	p.order = append(p.order, tx.TxID)
	return tx
}

// Snapshot returns the buffered transactions in insertion order without
// removing them. Clearing happens only through Commit.
func (p *Pool) Snapshot() []ledger.Transaction {
	out := make([]ledger.Transaction, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.txs[id])
	}
	return out
}

// Len returns the number of buffered transactions.
func (p *Pool) Len() int {
	return len(p.order)
}

// Commit removes exactly the given txids. It is called only after a block
// containing them has been successfully appended or adopted, so an
// interrupted mining attempt never loses transactions.
func (p *Pool) Commit(txids []string) {
	if len(txids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(txids))
	for _, id := range txids {
		drop[id] = struct{}{}
	}
	kept := p.order[:0]
	for _, id := range p.order {
		if _, ok := drop[id]; ok {
			delete(p.txs, id)
			continue
		}
		kept = append(kept, id)
	}
	p.order = kept
}

// Merge unions a remote pool into the local one by txid. An incoming
// transaction whose txid already exists locally is ignored (first-writer
// wins). Returns the number of transactions added.
func (p *Pool) Merge(remote []ledger.Transaction) int {
	added := 0
	for _, tx := range remote {
		if tx.TxID == "" {
			continue
		}
		if _, ok := p.txs[tx.TxID]; ok {
			continue
		}
		p.txs[tx.TxID] = tx
		p.order = append(p.order, tx.TxID)
		added++
	}
	return added
}
