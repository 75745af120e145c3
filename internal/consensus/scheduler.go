package consensus

import (
	"context"
	"log/slog"
	"time"

	"github.com/tanahlink/tanahd/internal/metrics"
)

// DefaultSyncInterval is the nominal pause between sync cycles.
const DefaultSyncInterval = 5 * time.Second

// Scheduler runs the resolver and the mempool syncer in a single repeating
// cycle. Cycles never overlap: the next wait starts only after the previous
// cycle fully completes, drifting past the nominal interval if it has to.
// Phase errors are logged and counted, never propagated; the loop runs for
// the lifetime of the process.
type Scheduler struct {
	resolver *Resolver
	syncer   *Syncer
	interval time.Duration
	metrics  *metrics.SyncMetrics
}

func NewScheduler(resolver *Resolver, syncer *Syncer, interval time.Duration, m *metrics.SyncMetrics) *Scheduler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Scheduler{resolver: resolver, syncer: syncer, interval: interval, metrics: m}
}

// Run blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("Background sync started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Background sync stopped")
			return
		case <-time.After(s.interval):
		}

		s.metrics.CycleStarted()

		replaced, err := s.resolver.Resolve(ctx)
		if err != nil {
			slog.Error("Consensus resolution failed", "error", err)
			s.metrics.CycleFailed()
		}
		if replaced {
			s.metrics.ChainAdopted()
		}

		if err := s.syncer.Sync(ctx); err != nil {
			slog.Error("Mempool sync failed", "error", err)
			s.metrics.CycleFailed()
		}
	}
}
