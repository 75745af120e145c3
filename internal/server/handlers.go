package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tanahlink/tanahd/internal/ledger"
	"github.com/tanahlink/tanahd/internal/models"
	"github.com/tanahlink/tanahd/internal/node"
	"github.com/tanahlink/tanahd/internal/peers"
)

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	chain := s.node.Chain()
	writeJSON(w, http.StatusOK, models.ChainResponse{
		Chain:  chain,
		Length: len(chain),
	})
}

func (s *Server) handleMempool(w http.ResponseWriter, r *http.Request) {
	txs := s.node.Mempool()
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleRegisterNodes(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Nodes) == 0 {
		writeError(w, http.StatusBadRequest, "please supply a list of nodes")
		return
	}

	for _, raw := range req.Nodes {
		addr, err := s.node.RegisterPeer(raw)
		if err != nil {
			if errors.Is(err, peers.ErrInvalidAddress) {
				writeError(w, http.StatusBadRequest, "invalid node address: "+raw)
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		slog.Info("Registered peer", "peer", addr)
	}

	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Message:    "nodes registered",
		TotalNodes: s.node.Peers(),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	replaced, err := s.resolver.Resolve(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	msg := "local chain is authoritative"
	if replaced {
		msg = "chain replaced by longer peer chain"
	}
	writeJSON(w, http.StatusOK, models.ResolveResponse{
		Message:  msg,
		Replaced: replaced,
		Chain:    s.node.Chain(),
	})
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	block, err := s.node.Mine()
	if err != nil {
		switch {
		case errors.Is(err, node.ErrEmptyMempool):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrChainLinkage):
			// The chain moved under the miner (peer adoption); the caller can
			// simply mine again on the new head.
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, models.MineResponse{
		Message:      "new block mined",
		Index:        block.Index,
		Transactions: block.Transactions,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
		Hash:         block.Hash,
		Miner:        s.node.Identifier(),
	})
}

func (s *Server) handleNewTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeSubmission(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Nama == "" || req.NomorSertifikat == "" || req.Lokasi == "" || req.Luas == "" {
		writeError(w, http.StatusBadRequest, "nama, nomor_sertifikat, lokasi and luas are required")
		return
	}

	tx, err := s.node.Submit(ledger.Transaction{
		Nama:            req.Nama,
		NomorSertifikat: req.NomorSertifikat,
		Lokasi:          req.Lokasi,
		Luas:            req.Luas,
		FileHash:        req.FileHash,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "transaction accepted",
		"txid":    tx.TxID,
	})
}
