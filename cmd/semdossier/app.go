package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/c360studio/semstreams/payloadregistry"
	"github.com/c360studio/semstreams/pkg/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360studio/semdossier/block"
	"github.com/c360studio/semdossier/config"
	"github.com/c360studio/semdossier/document"
	"github.com/c360studio/semdossier/dossier"
	"github.com/c360studio/semdossier/ontology"
	"github.com/c360studio/semdossier/pipeline"
	dossierwriter "github.com/c360studio/semdossier/processor/dossier-writer"
	"github.com/c360studio/semdossier/store"
)

// App wires the ontology, stores and save pipeline from one Config.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	loader   *ontology.Loader
	catalog  *block.Catalog

	records *dossier.SQLiteRepository
	graphs  store.Store
	service *pipeline.Service

	payloads   *payloadregistry.Registry
	components *component.Registry

	nats      *natsclient.Client
	ownsNATS  bool
	needsNATS bool
}

// AppOption configures NewApp.
type AppOption func(*App)

// WithNATSClient uses an existing connection instead of dialing cfg.NATS.URL.
func WithNATSClient(nc *natsclient.Client) AppOption {
	return func(a *App) {
		a.nats = nc
		a.needsNATS = true
	}
}

// WithNATS connects to NATS even when the store backend does not need it.
func WithNATS() AppOption {
	return func(a *App) { a.needsNATS = true }
}

// NewApp loads the ontology and opens the stores. The caller must Close it.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...AppOption) (_ *App, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	defer func() {
		if err != nil {
			a.Close(ctx)
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Ontology
	a.loader = ontology.NewLoader(cfg.Ontology.Sources, logger)
	if _, err := a.loader.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}
	a.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "semdossier",
			Subsystem: "ontology",
			Name:      "loads_total",
			Help:      "Successful ontology loads",
		}, func() float64 {
			loads, _ := a.loader.Stats()
			return float64(loads)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "semdossier",
			Subsystem: "ontology",
			Name:      "load_failures_total",
			Help:      "Failed ontology loads",
		}, func() float64 {
			_, failures := a.loader.Stats()
			return float64(failures)
		}),
	)
	a.catalog = block.NewCatalog(a.loader, cfg.OrderPolicy(), logger)

	var mapping *document.Mapping
	if cfg.Mapping.Path != "" {
		if mapping, err = document.LoadMapping(cfg.Mapping.Path); err != nil {
			return nil, err
		}
		logger.Debug("Loaded mapping overlay", "path", cfg.Mapping.Path)
	}
	transformer := document.NewTransformer(mapping, logger)

	// Stores
	if cfg.Store.Backend == config.BackendNATS {
		a.needsNATS = true
	}
	if a.needsNATS && a.nats == nil {
		if a.nats, err = connectToNATS(ctx, cfg.NATS.URL, logger); err != nil {
			return nil, err
		}
		a.ownsNATS = true
	}
	if err := a.openStores(ctx); err != nil {
		return nil, err
	}

	storeMetrics, err := store.NewMetrics(a.registry)
	if err != nil {
		return nil, fmt.Errorf("register store metrics: %w", err)
	}
	pipelineMetrics, err := pipeline.NewMetrics(a.registry)
	if err != nil {
		return nil, fmt.Errorf("register pipeline metrics: %w", err)
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Store.RetryAttempts
	committer := store.NewCommitter(a.graphs,
		store.WithRetry(retryCfg),
		store.WithMetrics(storeMetrics),
		store.WithLogger(logger))

	a.service = pipeline.New(a.catalog, transformer, committer, a.records, pipeline.Config{
		BaseURI:          cfg.Dossier.BaseURI,
		Namespaces:       cfg.Dossier.Namespaces,
		StrictValidation: cfg.Dossier.StrictValidation,
		RangePolicy:      cfg.RangePolicy(),
		LexicalPolicy:    cfg.LexicalPolicy(),
	}, pipeline.WithMetrics(pipelineMetrics), pipeline.WithLogger(logger))

	a.payloads = payloadregistry.New()
	if err := errors.Join(
		message.RegisterPayloads(a.payloads),
		dossierwriter.RegisterPayloads(a.payloads),
	); err != nil {
		return nil, fmt.Errorf("register payloads: %w", err)
	}
	a.components = component.NewRegistry(component.WithLogger(logger))
	if err := dossierwriter.Register(a.components, a.service); err != nil {
		return nil, fmt.Errorf("register dossier-writer: %w", err)
	}

	logger.Debug("Application wired",
		"backend", cfg.Store.Backend,
		"records", cfg.Store.Path,
		"ontology_files", len(a.loader.Sources()))
	return a, nil
}

// openStores opens the record database and the graph store. The sqlite
// backend keeps both in one database file.
func (a *App) openStores(ctx context.Context) error {
	switch a.cfg.Store.Backend {
	case config.BackendNATS:
		js, err := a.nats.JetStream()
		if err != nil {
			return fmt.Errorf("get jetstream: %w", err)
		}
		kv, err := store.NewKVStore(ctx, js, a.cfg.Store.Bucket)
		if err != nil {
			return err
		}
		a.graphs = kv
		records, err := dossier.OpenSQLiteRepository(a.cfg.Store.Path)
		if err != nil {
			return err
		}
		a.records = records
	default:
		graphs, err := store.OpenSQLite(a.cfg.Store.Path)
		if err != nil {
			return err
		}
		a.graphs = graphs
		records, err := dossier.NewSQLiteRepository(graphs.DB())
		if err != nil {
			return err
		}
		a.records = records
	}
	return nil
}

// Service returns the save pipeline.
func (a *App) Service() *pipeline.Service {
	return a.service
}

// Payloads returns the registry used to decode message payloads.
func (a *App) Payloads() *payloadregistry.Registry {
	return a.payloads
}

// Components returns the registry of component factories.
func (a *App) Components() *component.Registry {
	return a.components
}

// Loader returns the ontology loader.
func (a *App) Loader() *ontology.Loader {
	return a.loader
}

// Registry returns the Prometheus registry holding every collector.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// NATS returns the connection, or nil when none was needed.
func (a *App) NATS() *natsclient.Client {
	return a.nats
}

// Close releases the stores and any connection the App dialed itself.
func (a *App) Close(ctx context.Context) {
	if a.records != nil {
		if err := a.records.Close(); err != nil {
			a.logger.Warn("Failed to close record store", "error", err)
		}
	}
	if a.graphs != nil {
		if err := a.graphs.Close(); err != nil {
			a.logger.Warn("Failed to close graph store", "error", err)
		}
	}
	if a.nats != nil && a.ownsNATS {
		if err := a.nats.Close(ctx); err != nil {
			a.logger.Warn("Failed to close NATS connection", "error", err)
		}
	}
}

func connectToNATS(ctx context.Context, url string, logger *slog.Logger) (*natsclient.Client, error) {
	logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName("semdossier"),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		_ = client.Close(ctx)
		return nil, wrapNATSError(err, url)
	}

	logger.Info("Connected to NATS", "url", url)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker compose up -d nats

Or set nats.url in semdossier.yaml to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
