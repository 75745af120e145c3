package tanahd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tanahlink/tanahd/internal/client"
	"github.com/tanahlink/tanahd/internal/config"
	"github.com/tanahlink/tanahd/internal/consensus"
	"github.com/tanahlink/tanahd/internal/metrics"
	"github.com/tanahlink/tanahd/internal/node"
	"github.com/tanahlink/tanahd/internal/server"
	"github.com/tanahlink/tanahd/internal/storage"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a ledger node",
	Long:  `Run a land-certificate ledger node: HTTP API, proof-of-work mining and background peer synchronization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveConfig := config.LoadServeConfigFromCLI()
		if err := serveConfig.Validate(); err != nil {
			return fmt.Errorf("invalid serve configuration: %w", err)
		}

		slog.Debug("Command-line arguments", "serveConfig", serveConfig)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		handleInterrupt(cancel)

		return runNode(ctx, serveConfig)
	},
}

func init() {
	ServeCmd.Flags().IntP("port", "p", 5000, "HTTP listening port (also keys the durable state)")
	ServeCmd.Flags().IntP("difficulty", "d", 3, "Proof-of-work difficulty (leading zero hex characters)")
	ServeCmd.Flags().String("data-dir", "data", "Directory holding per-node durable state")
	ServeCmd.Flags().String("upload-dir", "uploads", "Directory holding uploaded certificate files")
	ServeCmd.Flags().StringSlice("peer", nil, "Peer address to register at startup (repeatable)")
	ServeCmd.Flags().Uint("sync-interval", 5, "Seconds between background sync cycles")
	ServeCmd.Flags().Uint("peer-timeout", 3, "Timeout in seconds for peer fetches")
	ServeCmd.Flags().Bool("enable-prometheus", false, "Enable Prometheus metrics server")
	ServeCmd.Flags().String("prometheus-addr", "0.0.0.0:2112", "Address and port of the Prometheus metrics server")

	if err := viper.BindPFlags(ServeCmd.Flags()); err != nil {
		slog.Error("Failed to bind ServeCmd flags", "error", err)
	}
}

func runNode(ctx context.Context, cfg config.ServeConfig) error {
	store, err := storage.Open(cfg.DataDir, cfg.Port)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("Closing node database")
		if err := store.Close(); err != nil {
			slog.Error("Failed to close node database", "error", err)
		}
	}()

	n, err := node.New(node.Options{
		Difficulty: cfg.Difficulty,
		Store:      store,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize node: %w", err)
	}
	slog.Info("Node initialized", "identifier", n.Identifier(), "height", n.Length(), "difficulty", n.Difficulty())

	for _, peer := range cfg.Peers {
		addr, err := n.RegisterPeer(peer)
		if err != nil {
			return fmt.Errorf("failed to register peer %q: %w", peer, err)
		}
		slog.Info("Registered peer", "peer", addr)
	}

	var syncMetrics *metrics.SyncMetrics
	if cfg.EnablePrometheus {
		syncMetrics, err = metrics.CreateMetricsServer(n, cfg.PrometheusAddr)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		slog.Info("Metrics server started", "address", cfg.PrometheusAddr)
	}

	peerClient := client.NewPeerClient(time.Duration(cfg.PeerTimeout) * time.Second)
	resolver := consensus.NewResolver(n, peerClient)
	syncer := consensus.NewSyncer(n, peerClient)
	scheduler := consensus.NewScheduler(resolver, syncer, time.Duration(cfg.SyncInterval)*time.Second, syncMetrics)
	go scheduler.Run(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.New(n, resolver, cfg.UploadDir).Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleInterrupt handles interrupt signals for graceful shutdown.
func handleInterrupt(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		slog.Info("Received interrupt signal, shutting down...")
		cancel()
	}()
}
