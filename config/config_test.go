package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c360studio/semdossier/block"
	"github.com/c360studio/semdossier/reconcile"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dossier.BaseURI != "http://wise10.vub.ac.be" {
		t.Errorf("expected default base URI http://wise10.vub.ac.be, got %s", cfg.Dossier.BaseURI)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("expected sqlite backend by default, got %s", cfg.Store.Backend)
	}
	if cfg.Ontology.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %v", cfg.Ontology.Debounce)
	}
	if cfg.OrderPolicy() != block.OrderLexical {
		t.Errorf("expected lexical ordering by default, got %s", cfg.OrderPolicy())
	}
	if cfg.RangePolicy() != reconcile.RangeFirst {
		t.Errorf("expected first-range policy by default, got %s", cfg.RangePolicy())
	}
	if cfg.LexicalPolicy() != reconcile.LexicalStrict {
		t.Errorf("expected strict lexical policy by default, got %s", cfg.LexicalPolicy())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing ontology sources",
			modify:  func(c *Config) { c.Ontology.Sources = nil },
			wantErr: true,
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Ontology.Debounce = -time.Second },
			wantErr: true,
		},
		{
			name:    "relative base URI",
			modify:  func(c *Config) { c.Dossier.BaseURI = "dossiers/" },
			wantErr: true,
		},
		{
			name:    "unknown ordering policy",
			modify:  func(c *Config) { c.Ordering.Policy = "random" },
			wantErr: true,
		},
		{
			name:    "numeric ordering policy",
			modify:  func(c *Config) { c.Ordering.Policy = "numeric" },
			wantErr: false,
		},
		{
			name:    "unknown range policy",
			modify:  func(c *Config) { c.Reconcile.RangePolicy = "last" },
			wantErr: true,
		},
		{
			name:    "unknown lexical policy",
			modify:  func(c *Config) { c.Reconcile.LexicalPolicy = "loose" },
			wantErr: true,
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Store.Backend = "postgres" },
			wantErr: true,
		},
		{
			name: "nats backend without url",
			modify: func(c *Config) {
				c.Store.Backend = BackendNATS
				c.NATS.URL = ""
			},
			wantErr: true,
		},
		{
			name:    "nats backend",
			modify:  func(c *Config) { c.Store.Backend = BackendNATS },
			wantErr: false,
		},
		{
			name:    "missing store path",
			modify:  func(c *Config) { c.Store.Path = "" },
			wantErr: true,
		},
		{
			name:    "zero retry attempts",
			modify:  func(c *Config) { c.Store.RetryAttempts = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp file with config
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
ontology:
  sources:
    - "ontology/**/*.ttl"
  watch: true
  debounce: 2s
dossier:
  base_uri: "http://example.org"
  strict_validation: true
ordering:
  policy: numeric
reconcile:
  range_policy: reject
store:
  backend: nats
  bucket: GRAPHS
nats:
  url: "nats://test:4222"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if len(cfg.Ontology.Sources) != 1 || cfg.Ontology.Sources[0] != "ontology/**/*.ttl" {
		t.Errorf("expected one glob source, got %v", cfg.Ontology.Sources)
	}
	if !cfg.Ontology.Watch {
		t.Error("expected watch enabled")
	}
	if cfg.Ontology.Debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", cfg.Ontology.Debounce)
	}
	if cfg.Dossier.BaseURI != "http://example.org" {
		t.Errorf("expected base URI http://example.org, got %s", cfg.Dossier.BaseURI)
	}
	if !cfg.Dossier.StrictValidation {
		t.Error("expected strict validation")
	}
	if cfg.OrderPolicy() != block.OrderNumeric {
		t.Errorf("expected numeric ordering, got %s", cfg.OrderPolicy())
	}
	if cfg.RangePolicy() != reconcile.RangeReject {
		t.Errorf("expected reject range policy, got %s", cfg.RangePolicy())
	}
	if cfg.Store.Backend != BackendNATS || cfg.Store.Bucket != "GRAPHS" {
		t.Errorf("expected nats backend with bucket GRAPHS, got %s/%s", cfg.Store.Backend, cfg.Store.Bucket)
	}
	// Keys absent from the file keep their defaults
	if cfg.Store.Path != "semdossier.db" {
		t.Errorf("expected default store path, got %s", cfg.Store.Path)
	}
	if cfg.NATS.URL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.NATS.URL)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badPath, []byte("store: [unterminated"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFromFile(badPath); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Dossier: DossierConfig{
			BaseURI: "http://override.example",
		},
		Store: StoreConfig{
			Path: "/override/records.db",
		},
	}

	base.Merge(override)

	if base.Dossier.BaseURI != "http://override.example" {
		t.Errorf("expected base URI http://override.example, got %s", base.Dossier.BaseURI)
	}
	// Backend should remain from base since override didn't set it
	if base.Store.Backend != BackendSQLite {
		t.Errorf("expected backend to remain default, got %s", base.Store.Backend)
	}
	if base.Store.Path != "/override/records.db" {
		t.Errorf("expected store path /override/records.db, got %s", base.Store.Path)
	}

	base.Merge(nil)
	if base.Store.Path != "/override/records.db" {
		t.Error("merging nil should not change config")
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Dossier.BaseURI = "http://saved.example"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	// Load and verify
	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Dossier.BaseURI != "http://saved.example" {
		t.Errorf("expected base URI http://saved.example, got %s", loaded.Dossier.BaseURI)
	}
	if loaded.Ontology.Debounce != cfg.Ontology.Debounce {
		t.Errorf("expected debounce %v, got %v", cfg.Ontology.Debounce, loaded.Ontology.Debounce)
	}
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	nested := filepath.Join(project, "dossiers", "lab")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create project tree: %v", err)
	}

	user := "dossier:\n  base_uri: \"http://user.example\"\nstore:\n  path: user.db\n"
	if err := os.MkdirAll(filepath.Join(home, UserConfigDir), 0755); err != nil {
		t.Fatalf("failed to create user config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, UserConfigDir, UserConfigFile), []byte(user), 0644); err != nil {
		t.Fatalf("failed to write user config: %v", err)
	}
	proj := "store:\n  path: project.db\n"
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte(proj), 0644); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}

	l := NewLoader(slog.Default())
	l.home = home
	l.workdir = nested

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Dossier.BaseURI != "http://user.example" {
		t.Errorf("expected user base URI, got %s", cfg.Dossier.BaseURI)
	}
	if cfg.Store.Path != "project.db" {
		t.Errorf("expected project store path, got %s", cfg.Store.Path)
	}
	if cfg.Store.RetryAttempts != 3 {
		t.Errorf("expected default retry attempts to survive layering, got %d", cfg.Store.RetryAttempts)
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("store:\n  path: explicit.db\n"), 0644); err != nil {
		t.Fatalf("failed to write explicit config: %v", err)
	}
	cfg, err = l.LoadWithOverride(explicit)
	if err != nil {
		t.Fatalf("LoadWithOverride() error = %v", err)
	}
	if cfg.Store.Path != "explicit.db" {
		t.Errorf("expected explicit store path, got %s", cfg.Store.Path)
	}

	if _, err := l.LoadWithOverride(filepath.Join(project, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoaderRejectsInvalidLayer(t *testing.T) {
	project := t.TempDir()
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("store:\n  backend: postgres\n"), 0644); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}

	l := NewLoader(nil)
	l.home = t.TempDir()
	l.workdir = project

	if _, err := l.Load(); err == nil {
		t.Error("expected validation error for unknown backend")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	l := NewLoader(nil)
	l.home = t.TempDir()

	if err := l.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	path := filepath.Join(l.home, UserConfigDir, UserConfigFile)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("failed to load created config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("created config should validate: %v", err)
	}

	// Second call leaves the file alone
	if err := l.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() second call error = %v", err)
	}
}
