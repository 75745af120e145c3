// Package server is the thin HTTP boundary of a node. Handlers only decode
// requests, call into the node context object and encode responses; peers
// interoperate through the /chain and /mempool shapes.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tanahlink/tanahd/internal/consensus"
	"github.com/tanahlink/tanahd/internal/node"
)

type Server struct {
	node      *node.Node
	resolver  *consensus.Resolver
	uploadDir string
}

func New(n *node.Node, resolver *consensus.Resolver, uploadDir string) *Server {
	return &Server{node: n, resolver: resolver, uploadDir: uploadDir}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleChain)
	mux.HandleFunc("GET /chain", s.handleChain)
	mux.HandleFunc("GET /mempool", s.handleMempool)
	mux.HandleFunc("POST /nodes/register", s.handleRegisterNodes)
	mux.HandleFunc("GET /nodes/resolve", s.handleResolve)
	mux.HandleFunc("GET /mine", s.handleMine)
	mux.HandleFunc("POST /transactions/new", s.handleNewTransaction)
	if s.uploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))
	}
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
