package consensus

import (
	"context"
	"log/slog"

	"github.com/tanahlink/tanahd/internal/client"
	"github.com/tanahlink/tanahd/internal/node"
)

// Syncer merges peer mempools into the local pool. Existing local entries win
// over remote ones with the same txid; there is no expiry of stale entries.
type Syncer struct {
	node   *node.Node
	client *client.PeerClient
}

func NewSyncer(n *node.Node, c *client.PeerClient) *Syncer {
	return &Syncer{node: n, client: c}
}

// Sync fetches and merges every registered peer's mempool. Unreachable peers
// are skipped without failing the cycle; only a persistence failure after a
// merge is returned.
func (s *Syncer) Sync(ctx context.Context) error {
	for _, peer := range s.node.Peers() {
		remote, err := s.client.FetchMempool(ctx, peer)
		if err != nil {
			slog.Warn("Skipping unreachable peer mempool", "peer", peer, "error", err)
			continue
		}
		added, err := s.node.MergeMempool(remote)
		if err != nil {
			return err
		}
		if added > 0 {
			slog.Debug("Merged peer mempool", "peer", peer, "added", added)
		}
	}
	return nil
}
