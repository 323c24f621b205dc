// Package config provides configuration loading and management for semdossier.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semdossier/block"
	"github.com/c360studio/semdossier/document"
	"github.com/c360studio/semdossier/reconcile"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendNATS   = "nats"
)

// Config represents the complete semdossier configuration
type Config struct {
	Ontology  OntologyConfig  `yaml:"ontology"`
	Dossier   DossierConfig   `yaml:"dossier"`
	Mapping   MappingConfig   `yaml:"mapping"`
	Ordering  OrderingConfig  `yaml:"ordering"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Store     StoreConfig     `yaml:"store"`
	NATS      NATSConfig      `yaml:"nats"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// OntologyConfig configures where the ontology is read from
type OntologyConfig struct {
	// Sources are file paths or doublestar globs (e.g. "ontology/**/*.ttl")
	Sources []string `yaml:"sources"`
	// Watch reloads the ontology when a source file changes
	Watch bool `yaml:"watch"`
	// Debounce is the quiet period before a reload
	Debounce time.Duration `yaml:"debounce"`
}

// DossierConfig configures dossier identity and documents
type DossierConfig struct {
	// BaseURI prefixes every named-graph IRI
	BaseURI string `yaml:"base_uri"`
	// Namespaces are stripped from editor documents
	Namespaces []string `yaml:"namespaces"`
	// StrictValidation refuses documents with undeclared blocks or fields
	StrictValidation bool `yaml:"strict_validation"`
}

// MappingConfig points at an optional structural mapping overlay
type MappingConfig struct {
	Path string `yaml:"path"`
}

// OrderingConfig selects the attribute order comparator
type OrderingConfig struct {
	// Policy is lexical (default) or numeric
	Policy string `yaml:"policy"`
}

// ReconcileConfig configures literal typing
type ReconcileConfig struct {
	// RangePolicy is first (default) or reject
	RangePolicy string `yaml:"range_policy"`
	// LexicalPolicy is strict (default) or lenient
	LexicalPolicy string `yaml:"lexical_policy"`
}

// StoreConfig configures persistence
type StoreConfig struct {
	// Backend holds named graphs: sqlite (default) or nats
	Backend string `yaml:"backend"`
	// Path is the SQLite database for records, and for graphs with the sqlite backend
	Path string `yaml:"path"`
	// Bucket is the KV bucket for graphs with the nats backend
	Bucket string `yaml:"bucket"`
	// RetryAttempts bounds commit attempts on transient failures
	RetryAttempts int `yaml:"retry_attempts"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	URL string `yaml:"url"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Listen is the address of the /metrics server (empty = disabled)
	Listen string `yaml:"listen"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ontology: OntologyConfig{
			Sources:  []string{"ontology/*.ttl"},
			Debounce: 500 * time.Millisecond,
		},
		Dossier: DossierConfig{
			BaseURI:    "http://wise10.vub.ac.be",
			Namespaces: append([]string(nil), document.DefaultNamespaces...),
		},
		Ordering: OrderingConfig{
			Policy: string(block.OrderLexical),
		},
		Reconcile: ReconcileConfig{
			RangePolicy:   string(reconcile.RangeFirst),
			LexicalPolicy: string(reconcile.LexicalStrict),
		},
		Store: StoreConfig{
			Backend:       BackendSQLite,
			Path:          "semdossier.db",
			Bucket:        "SEMDOSSIER_GRAPHS",
			RetryAttempts: 3,
		},
		NATS: NATSConfig{
			URL: "nats://localhost:4222",
		},
		Metrics: MetricsConfig{
			Listen: ":9090",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Ontology.Sources) == 0 {
		return fmt.Errorf("ontology.sources is required")
	}
	if c.Ontology.Debounce < 0 {
		return fmt.Errorf("ontology.debounce must not be negative")
	}
	u, err := url.Parse(c.Dossier.BaseURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("dossier.base_uri must be an absolute URI, got %q", c.Dossier.BaseURI)
	}
	if _, err := block.ParseOrderPolicy(c.Ordering.Policy); err != nil {
		return fmt.Errorf("ordering.policy: %w", err)
	}
	if _, err := reconcile.ParseRangePolicy(c.Reconcile.RangePolicy); err != nil {
		return fmt.Errorf("reconcile.range_policy: %w", err)
	}
	if _, err := reconcile.ParseLexicalPolicy(c.Reconcile.LexicalPolicy); err != nil {
		return fmt.Errorf("reconcile.lexical_policy: %w", err)
	}
	switch c.Store.Backend {
	case BackendSQLite:
	case BackendNATS:
		if c.NATS.URL == "" {
			return fmt.Errorf("nats.url is required for the nats store backend")
		}
		if c.Store.Bucket == "" {
			return fmt.Errorf("store.bucket is required for the nats store backend")
		}
	default:
		return fmt.Errorf("store.backend must be %s or %s, got %q", BackendSQLite, BackendNATS, c.Store.Backend)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Store.RetryAttempts < 1 {
		return fmt.Errorf("store.retry_attempts must be at least 1")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := decodeFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// readOverlay loads only the keys present in a YAML file
func readOverlay(path string) (*Config, error) {
	config := &Config{}
	if err := decodeFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

func decodeFile(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Ontology
	if len(other.Ontology.Sources) > 0 {
		c.Ontology.Sources = other.Ontology.Sources
	}
	if other.Ontology.Watch {
		c.Ontology.Watch = true
	}
	if other.Ontology.Debounce != 0 {
		c.Ontology.Debounce = other.Ontology.Debounce
	}

	// Dossier
	if other.Dossier.BaseURI != "" {
		c.Dossier.BaseURI = other.Dossier.BaseURI
	}
	if len(other.Dossier.Namespaces) > 0 {
		c.Dossier.Namespaces = other.Dossier.Namespaces
	}
	if other.Dossier.StrictValidation {
		c.Dossier.StrictValidation = true
	}

	// Mapping
	if other.Mapping.Path != "" {
		c.Mapping.Path = other.Mapping.Path
	}

	// Ordering
	if other.Ordering.Policy != "" {
		c.Ordering.Policy = other.Ordering.Policy
	}

	// Reconcile
	if other.Reconcile.RangePolicy != "" {
		c.Reconcile.RangePolicy = other.Reconcile.RangePolicy
	}
	if other.Reconcile.LexicalPolicy != "" {
		c.Reconcile.LexicalPolicy = other.Reconcile.LexicalPolicy
	}

	// Store
	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Store.Bucket != "" {
		c.Store.Bucket = other.Store.Bucket
	}
	if other.Store.RetryAttempts != 0 {
		c.Store.RetryAttempts = other.Store.RetryAttempts
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// Metrics
	if other.Metrics.Listen != "" {
		c.Metrics.Listen = other.Metrics.Listen
	}
}

// OrderPolicy returns the parsed ordering policy.
func (c *Config) OrderPolicy() block.OrderPolicy {
	p, err := block.ParseOrderPolicy(c.Ordering.Policy)
	if err != nil {
		return block.OrderLexical
	}
	return p
}

// RangePolicy returns the parsed multiple-range policy.
func (c *Config) RangePolicy() reconcile.RangePolicy {
	p, err := reconcile.ParseRangePolicy(c.Reconcile.RangePolicy)
	if err != nil {
		return reconcile.RangeFirst
	}
	return p
}

// LexicalPolicy returns the parsed lexical policy.
func (c *Config) LexicalPolicy() reconcile.LexicalPolicy {
	p, err := reconcile.ParseLexicalPolicy(c.Reconcile.LexicalPolicy)
	if err != nil {
		return reconcile.LexicalStrict
	}
	return p
}
