// Package client implements the HTTP client used to fetch chains and
// mempools from peer nodes.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/tanahlink/tanahd/internal/ledger"
	"github.com/tanahlink/tanahd/internal/models"
)

// DefaultTimeout bounds every peer fetch. An unreachable peer costs at most
// this long per sync cycle.
const DefaultTimeout = 3 * time.Second

// PeerClient fetches chain and mempool state from peer nodes. Peers are
// addressed by their canonical host:port form.
type PeerClient struct {
	http *resty.Client
}

func NewPeerClient(timeout time.Duration) *PeerClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PeerClient{
		http: resty.New().SetTimeout(timeout),
	}
}

// FetchChain retrieves a peer's full chain and reported length.
func (c *PeerClient) FetchChain(ctx context.Context, peer string) (*models.ChainResponse, error) {
	var out models.ChainResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&out).
		Get(fmt.Sprintf("http://%s/chain", peer))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to fetch chain from %s", peer)
	}
	if resp.IsError() {
		return nil, errors.Errorf("peer %s returned status %d for chain fetch", peer, resp.StatusCode())
	}
	return &out, nil
}

// FetchMempool retrieves a peer's pending transactions.
func (c *PeerClient) FetchMempool(ctx context.Context, peer string) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&out).
		Get(fmt.Sprintf("http://%s/mempool", peer))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to fetch mempool from %s", peer)
	}
	if resp.IsError() {
		return nil, errors.Errorf("peer %s returned status %d for mempool fetch", peer, resp.StatusCode())
	}
	return out, nil
}
