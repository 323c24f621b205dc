package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/types"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/semdossier/ontology"
	dossierwriter "github.com/c360studio/semdossier/processor/dossier-writer"
)

// StreamName is the JetStream stream carrying save requests and outcomes.
const StreamName = "DOSSIER"

func runCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Serve dossier saves over NATS JetStream",
		Long: `Consume save requests from the DOSSIER stream, publish their outcomes,
reload the ontology when its files change (ontology.watch) and expose
Prometheus metrics (metrics.listen).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return g.withApp(ctx, func(a *App) error {
				return serve(ctx, a)
			}, WithNATS())
		},
	}
}

// serve runs the writer, watcher and metrics server until ctx is done.
func serve(ctx context.Context, a *App) error {
	logger := a.logger

	if err := ensureStream(ctx, a); err != nil {
		return err
	}

	writer, err := newWriter(a, dossierwriter.DefaultConfig())
	if err != nil {
		return err
	}
	if err := writer.Initialize(); err != nil {
		return fmt.Errorf("initialize dossier-writer: %w", err)
	}
	if err := writer.Start(ctx); err != nil {
		return fmt.Errorf("start dossier-writer: %w", err)
	}
	defer func() {
		if err := writer.Stop(5 * time.Second); err != nil {
			logger.Warn("Failed to stop dossier-writer", "error", err)
		}
	}()

	if a.cfg.Ontology.Watch {
		watcher, err := ontology.NewWatcher(a.Loader(), a.cfg.Ontology.Debounce, logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			_ = watcher.Stop()
			return fmt.Errorf("start ontology watcher: %w", err)
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				logger.Warn("Failed to stop ontology watcher", "error", err)
			}
		}()
	}

	if a.cfg.Metrics.Listen != "" {
		srv := newMetricsServer(a.cfg.Metrics.Listen, a.Registry())
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		logger.Info("Metrics server listening", "addr", a.cfg.Metrics.Listen)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("Semdossier ready",
		"version", Version,
		"backend", a.cfg.Store.Backend,
		"stream", StreamName)

	// Block until shutdown signal
	<-ctx.Done()
	logger.Info("Received shutdown signal")
	return nil
}

// newWriter builds the dossier-writer through the component registry.
func newWriter(a *App, cfg dossierwriter.Config) (component.LifecycleComponent, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal dossier-writer config: %w", err)
	}
	d, err := a.Components().CreateComponent("dossier-writer", types.ComponentConfig{
		Type:    types.ComponentTypeProcessor,
		Name:    "dossier-writer",
		Enabled: true,
		Config:  raw,
	}, component.Dependencies{
		NATSClient:      a.NATS(),
		Logger:          a.logger,
		PayloadRegistry: a.Payloads(),
	})
	if err != nil {
		return nil, fmt.Errorf("create dossier-writer: %w", err)
	}
	writer, ok := component.AsLifecycleComponent(d)
	if !ok {
		return nil, fmt.Errorf("dossier-writer does not support lifecycle management")
	}
	return writer, nil
}

// ensureStream creates or updates the stream the writer consumes from.
func ensureStream(ctx context.Context, a *App) error {
	js, err := a.NATS().JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"dossier.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", StreamName, err)
	}
	a.logger.Debug("JetStream stream ready", slog.String("stream", StreamName))
	return nil
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
