// Package consensus implements the longest-valid-chain resolver, the mempool
// synchronizer and the background scheduler that drives both.
package consensus

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tanahlink/tanahd/internal/client"
	"github.com/tanahlink/tanahd/internal/ledger"
	"github.com/tanahlink/tanahd/internal/models"
	"github.com/tanahlink/tanahd/internal/node"
)

// Resolver applies the longest valid chain rule across the registered peers.
// Peer trust is assumed, not verified: any internally consistent longer chain
// from a registered peer is adopted.
type Resolver struct {
	node   *node.Node
	client *client.PeerClient
}

func NewResolver(n *node.Node, c *client.PeerClient) *Resolver {
	return &Resolver{node: n, client: c}
}

// Resolve fetches every registered peer's chain, validates the candidates and
// adopts the longest one that strictly exceeds the longest chain seen so far
// (starting from the local length, so ties keep the chain already held).
// Unreachable peers and invalid chains are skipped; only a failure to persist
// an adopted chain is returned as an error. Reports whether the local chain
// was replaced.
func (r *Resolver) Resolve(ctx context.Context) (bool, error) {
	peerList := r.node.Peers()
	if len(peerList) == 0 {
		return false, nil
	}

	// Fetch phase: all network waits happen here, concurrently and without
	// touching the shared-state lock. Per-peer failures are logged and the
	// peer is skipped for this cycle.
	candidates := make([]*models.ChainResponse, len(peerList))
	g, gctx := errgroup.WithContext(ctx)
	for i, peer := range peerList {
		g.Go(func() error {
			resp, err := r.client.FetchChain(gctx, peer)
			if err != nil {
				slog.Warn("Skipping unreachable peer", "peer", peer, "error", err)
				return nil
			}
			candidates[i] = resp
			return nil
		})
	}
	_ = g.Wait()

	maxLength := r.node.Length()
	var best []ledger.Block

	for i, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if len(candidate.Chain) <= maxLength {
			continue
		}
		if err := ledger.ValidateChain(candidate.Chain, r.node.Difficulty()); err != nil {
			slog.Warn("Discarding invalid peer chain", "peer", peerList[i], "error", err)
			continue
		}
		maxLength = len(candidate.Chain)
		best = candidate.Chain
	}

	if best == nil {
		return false, nil
	}

	if err := r.node.AdoptChain(best); err != nil {
		// The local chain may have grown past the candidate while we were
		// validating; that is not a failure of this cycle.
		if errors.Is(err, node.ErrNotLonger) {
			return false, nil
		}
		return false, err
	}

	slog.Info("Adopted longer peer chain", "length", maxLength)
	return true, nil
}
