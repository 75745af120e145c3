package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tanahlink/tanahd/internal/metrics/collectors"
)

// CreateMetricsServer registers the node collectors plus the sync counters
// and serves them on addr. The returned SyncMetrics is handed to the
// background scheduler.
func CreateMetricsServer(stats collectors.NodeStats, addr string) (*SyncMetrics, error) {
	sync := NewSyncMetrics()

	cs := append([]prometheus.Collector{collectors.NewNodeCollector(stats)}, sync.Collectors()...)
	prometheus.MustRegister(cs...)

	errChan := listen(addr)

	select {
	case err := <-errChan:
		if err != nil {
			return nil, err
		}
	default:
	}

	return sync, nil
}

func listen(addr string) chan error {
	errChan := make(chan error)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("Failed to start metrics server", "error", err)
			errChan <- err
		}
	}()

	return errChan
}
