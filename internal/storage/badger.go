// Package storage persists the chain and mempool of a single node in an
// embedded badger database. State is keyed to the node's listening port so
// multiple local instances never collide.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger"

	"github.com/tanahlink/tanahd/internal/ledger"
)

const (
	chainLengthKey = "chain/length"
	mempoolKey     = "mempool"
)

func blockKey(index uint64) []byte {
	return []byte(fmt.Sprintf("block/%010d", index))
}

// Store is the durable backing of one node. Blocks are stored under ordered
// per-index keys, the mempool as a single record preserving insertion order.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database for the node listening on port.
func Open(dataDir string, port int) (*Store, error) {
	path := filepath.Join(dataDir, fmt.Sprintf("node-%d", port))
	opts := badger.DefaultOptions(path)
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open node database at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveChain writes the whole block sequence, removing any stale suffix left
// over from a longer pre-replacement chain.
func (s *Store) SaveChain(blocks []ledger.Block) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		oldLength, err := readLength(txn)
		if err != nil {
			return err
		}

		for _, b := range blocks {
			payload, err := json.Marshal(b)
			if err != nil {
				return fmt.Errorf("failed to encode block %d: %w", b.Index, err)
			}
			if err := txn.Set(blockKey(b.Index), payload); err != nil {
				return err
			}
		}

		for i := uint64(len(blocks)) + 1; i <= oldLength; i++ {
			if err := txn.Delete(blockKey(i)); err != nil {
				return err
			}
		}

		return txn.Set([]byte(chainLengthKey), []byte(fmt.Sprintf("%d", len(blocks))))
	})
	if err != nil {
		return fmt.Errorf("failed to persist chain: %w", err)
	}
	return nil
}

// LoadChain reads the persisted block sequence. A nil slice with no error
// means no chain has been persisted yet.
func (s *Store) LoadChain() ([]ledger.Block, error) {
	var blocks []ledger.Block
	err := s.db.View(func(txn *badger.Txn) error {
		length, err := readLength(txn)
		if err != nil {
			return err
		}
		for i := uint64(1); i <= length; i++ {
			item, err := txn.Get(blockKey(i))
			if err != nil {
				return fmt.Errorf("failed to read block %d: %w", i, err)
			}
			var b ledger.Block
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &b)
			}); err != nil {
				return fmt.Errorf("failed to decode block %d: %w", i, err)
			}
			blocks = append(blocks, b)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load chain: %w", err)
	}
	return blocks, nil
}

// SaveMempool writes the pending transactions in insertion order.
func (s *Store) SaveMempool(txs []ledger.Transaction) error {
	payload, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("failed to encode mempool: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(mempoolKey), payload)
	})
	if err != nil {
		return fmt.Errorf("failed to persist mempool: %w", err)
	}
	return nil
}

// LoadMempool reads the persisted pending transactions.
func (s *Store) LoadMempool() ([]ledger.Transaction, error) {
	var txs []ledger.Transaction
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(mempoolKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &txs)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load mempool: %w", err)
	}
	return txs, nil
}

func readLength(txn *badger.Txn) (uint64, error) {
	item, err := txn.Get([]byte(chainLengthKey))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var length uint64
	err = item.Value(func(val []byte) error {
		_, err := fmt.Sscanf(string(val), "%d", &length)
		return err
	})
	return length, err
}
