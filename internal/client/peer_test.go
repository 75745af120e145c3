package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanahlink/tanahd/internal/client"
	"github.com/tanahlink/tanahd/internal/ledger"
	"github.com/tanahlink/tanahd/internal/models"
)

func TestFetchChain(t *testing.T) {
	chain := []ledger.Block{ledger.NewGenesisBlock(1700000000)}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chain", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.ChainResponse{Chain: chain, Length: 1})
	}))
	defer ts.Close()

	c := client.NewPeerClient(0)
	resp, err := c.FetchChain(context.Background(), strings.TrimPrefix(ts.URL, "http://"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Length)
	require.Len(t, resp.Chain, 1)
	assert.Equal(t, chain[0].Hash, resp.Chain[0].Hash)
}

func TestFetchMempoolErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := client.NewPeerClient(0)
	_, err := c.FetchMempool(context.Background(), strings.TrimPrefix(ts.URL, "http://"))
	assert.ErrorContains(t, err, "status 500")
}

func TestFetchChainUnreachablePeer(t *testing.T) {
	c := client.NewPeerClient(500 * time.Millisecond)
	_, err := c.FetchChain(context.Background(), "localhost:1")
	assert.Error(t, err)
}
