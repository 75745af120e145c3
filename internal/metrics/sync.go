package metrics

import "github.com/prometheus/client_golang/prometheus"

// SyncMetrics counts background sync activity. A nil receiver is a no-op so
// callers need no metrics wiring when the metrics server is disabled.
type SyncMetrics struct {
	cycles    prometheus.Counter
	failures  prometheus.Counter
	adoptions prometheus.Counter
}

func NewSyncMetrics() *SyncMetrics {
	return &SyncMetrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName("tanahd", "sync", "cycles_total"),
			Help: "Total background sync cycles started",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName("tanahd", "sync", "failures_total"),
			Help: "Total sync phases that reported an error",
		}),
		adoptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName("tanahd", "sync", "chain_adoptions_total"),
			Help: "Total times a longer peer chain replaced the local chain",
		}),
	}
}

func (m *SyncMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.cycles, m.failures, m.adoptions}
}

func (m *SyncMetrics) CycleStarted() {
	if m == nil {
		return
	}
	m.cycles.Inc()
}

func (m *SyncMetrics) CycleFailed() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

func (m *SyncMetrics) ChainAdopted() {
	if m == nil {
		return
	}
	m.adoptions.Inc()
}
