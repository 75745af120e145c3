package consensus_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanahlink/tanahd/internal/client"
	"github.com/tanahlink/tanahd/internal/consensus"
	"github.com/tanahlink/tanahd/internal/ledger"
	"github.com/tanahlink/tanahd/internal/models"
	"github.com/tanahlink/tanahd/internal/node"
)

func newTestNode(t *testing.T, difficulty int) *node.Node {
	t.Helper()
	n, err := node.New(node.Options{Difficulty: difficulty})
	require.NoError(t, err)
	return n
}

func minedChain(t *testing.T, difficulty, length int) []ledger.Block {
	t.Helper()
	chain := ledger.NewStore(difficulty)
	for chain.Length() < length {
		head := chain.Head()
		proof := ledger.ProofOfWork(head.Proof, difficulty)
		block := ledger.NewBlock(head.Index+1, 1700000100, []ledger.Transaction{{
			TxID: "peer-tx", Nama: "Siti Aminah", Luas: "400", Timestamp: 1700000000,
		}}, proof, head.Hash)
		require.NoError(t, chain.Append(block))
	}
	return chain.Blocks()
}

// peerServer serves a fixed chain and mempool the way a real node does.
func peerServer(t *testing.T, chain []ledger.Block, pool []ledger.Transaction) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /chain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.ChainResponse{Chain: chain, Length: len(chain)})
	})
	mux.HandleFunc("GET /mempool", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pool)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestResolveAdoptsLongerValidChain(t *testing.T) {
	// Local node holds only genesis; the peer reports a valid 3-block chain
	// mined at difficulty 2.
	n := newTestNode(t, 2)
	ts := peerServer(t, minedChain(t, 2, 3), nil)

	_, err := n.RegisterPeer(ts.URL)
	require.NoError(t, err)

	r := consensus.NewResolver(n, client.NewPeerClient(0))
	replaced, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, 3, n.Length())
}

func TestResolveKeepsChainOnEqualLength(t *testing.T) {
	n := newTestNode(t, 1)
	require.NoError(t, n.AdoptChain(minedChain(t, 1, 3)))
	localHead := n.Chain()[2].Hash

	// A different peer chain of the same length must not replace ours.
	ts := peerServer(t, minedChain(t, 1, 3), nil)
	_, err := n.RegisterPeer(ts.URL)
	require.NoError(t, err)

	r := consensus.NewResolver(n, client.NewPeerClient(0))
	replaced, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, localHead, n.Chain()[2].Hash)
}

func TestResolveDiscardsInvalidChainRegardlessOfLength(t *testing.T) {
	n := newTestNode(t, 1)

	tampered := minedChain(t, 1, 4)
	tampered[2].Transactions[0].Luas = "99999"
	ts := peerServer(t, tampered, nil)

	_, err := n.RegisterPeer(ts.URL)
	require.NoError(t, err)

	r := consensus.NewResolver(n, client.NewPeerClient(0))
	replaced, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, 1, n.Length())
}

func TestResolveSkipsUnreachablePeer(t *testing.T) {
	n := newTestNode(t, 2)

	// One dead peer must not block resolution against the live one.
	_, err := n.RegisterPeer("localhost:1")
	require.NoError(t, err)
	ts := peerServer(t, minedChain(t, 2, 3), nil)
	_, err = n.RegisterPeer(ts.URL)
	require.NoError(t, err)

	r := consensus.NewResolver(n, client.NewPeerClient(0))
	replaced, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, 3, n.Length())
}

func TestResolveAdoptsLongestAmongPeers(t *testing.T) {
	n := newTestNode(t, 1)

	tsShort := peerServer(t, minedChain(t, 1, 2), nil)
	tsLong := peerServer(t, minedChain(t, 1, 5), nil)
	for _, ts := range []*httptest.Server{tsShort, tsLong} {
		_, err := n.RegisterPeer(ts.URL)
		require.NoError(t, err)
	}

	r := consensus.NewResolver(n, client.NewPeerClient(0))
	replaced, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, 5, n.Length())
}

func TestResolveNoPeers(t *testing.T) {
	n := newTestNode(t, 1)
	r := consensus.NewResolver(n, client.NewPeerClient(0))

	replaced, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.False(t, replaced)
}
