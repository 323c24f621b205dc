// Package main provides the semdossier binary entry point.
// Semdossier serves an ontology-driven block palette for dossier editing
// and stores edited documents as typed RDF named graphs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semdossier/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semdossier"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	logger     *slog.Logger
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Ontology-driven dossier editor backend",
		Long: `Semdossier derives a block palette from an OWL/RDFS ontology and
stores edited dossier documents as typed RDF named graphs.

It provides:
- Block and attribute definitions for the editor palette
- Dossier and domain concept records
- A save pipeline: XML document to RDF/XML, typed literals, atomic graph replace

The run command serves saves over NATS JetStream.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.logger = newLogger(cmd.ErrOrStderr(), g.logLevel)
			slog.SetDefault(g.logger)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		paletteCmd(g),
		attributesCmd(g),
		namesCmd(g),
		dossierCmd(g),
		conceptCmd(g),
		runCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig layers the user, project and --config files over the defaults.
func (g *globals) loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(g.logger).LoadWithOverride(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withApp builds an App for the duration of fn.
func (g *globals) withApp(ctx context.Context, fn func(*App) error, opts ...AppOption) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	app, err := NewApp(ctx, cfg, g.logger, opts...)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	return fn(app)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dossier id %q", s)
	}
	return id, nil
}
