package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// GenesisPreviousHash is the sentinel previous-hash carried by the genesis block.
const GenesisPreviousHash = "0"

// Transaction is a single land-certificate record. It is immutable once
// created; the txid is assigned when the record enters the mempool.
type Transaction struct {
	TxID            string  `json:"txid"`
	Nama            string  `json:"nama"`
	NomorSertifikat string  `json:"nomor_sertifikat"`
	Lokasi          string  `json:"lokasi"`
	Luas            string  `json:"luas"`
	FileHash        string  `json:"file_hash,omitempty"`
	Timestamp       float64 `json:"timestamp"`
}

// Block bundles the transactions committed at one point in chain history.
// Hash is derived from the canonical content (index, timestamp, transactions,
// previous_hash, proof) and recorded alongside it.
type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    float64       `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	Proof        uint64        `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Hash         string        `json:"hash"`
}

// NewBlock assembles a block and computes its hash.
func NewBlock(index uint64, timestamp float64, transactions []Transaction, proof uint64, previousHash string) Block {
	b := Block{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: transactions,
		Proof:        proof,
		PreviousHash: previousHash,
	}
	b.Hash = b.ComputeHash()
	return b
}

// NewGenesisBlock returns the fixed first block of a fresh chain.
func NewGenesisBlock(timestamp float64) Block {
	return NewBlock(1, timestamp, nil, 0, GenesisPreviousHash)
}

// ComputeHash digests the block's canonical content with SHA-256. The content
// is serialized through maps so that JSON object keys are always sorted; two
// logically identical blocks hash identically regardless of how their fields
// are laid out in memory. The recorded Hash field is never part of the digest.
func (b *Block) ComputeHash() string {
	txs := make([]map[string]interface{}, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = map[string]interface{}{
			"txid":             tx.TxID,
			"nama":             tx.Nama,
			"nomor_sertifikat": tx.NomorSertifikat,
			"lokasi":           tx.Lokasi,
			"luas":             tx.Luas,
			"file_hash":        tx.FileHash,
			"timestamp":        tx.Timestamp,
		}
	}

	// Marshalling a map of plain strings and numbers cannot fail.
	payload, _ := json.Marshal(map[string]interface{}{
		"index":         b.Index,
		"timestamp":     b.Timestamp,
		"transactions":  txs,
		"previous_hash": b.PreviousHash,
		"proof":         b.Proof,
	})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
