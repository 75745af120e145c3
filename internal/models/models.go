package models

import "github.com/tanahlink/tanahd/internal/ledger"

// ChainResponse is the wire shape peers exchange for full chains.
type ChainResponse struct {
	Chain  []ledger.Block `json:"chain"`
	Length int            `json:"length"`
}

// RegisterRequest is the body of a peer registration call.
type RegisterRequest struct {
	Nodes []string `json:"nodes"`
}

// RegisterResponse reports the peer set after a registration call.
type RegisterResponse struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
}

// SubmitRequest is the body of a transaction submission. The file hash, when
// present, is the fingerprint computed by the upload collaborator.
type SubmitRequest struct {
	Nama            string `json:"nama"`
	NomorSertifikat string `json:"nomor_sertifikat"`
	Lokasi          string `json:"lokasi"`
	Luas            string `json:"luas"`
	FileHash        string `json:"file_hash,omitempty"`
}

// MineResponse summarizes a freshly mined block.
type MineResponse struct {
	Message      string               `json:"message"`
	Index        uint64               `json:"index"`
	Transactions []ledger.Transaction `json:"transactions"`
	Proof        uint64               `json:"proof"`
	PreviousHash string               `json:"previous_hash"`
	Hash         string               `json:"hash"`
	Miner        string               `json:"miner"`
}

// ResolveResponse reports the outcome of a consensus round.
type ResolveResponse struct {
	Message  string         `json:"message"`
	Replaced bool           `json:"replaced"`
	Chain    []ledger.Block `json:"chain"`
}
