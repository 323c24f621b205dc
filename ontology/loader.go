package ontology

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Source hands out the current ontology snapshot.
type Source interface {
	Snapshot() *Snapshot
}

// Static is a Source that always returns the same snapshot.
type Static struct {
	snap *Snapshot
}

// NewStatic wraps snap as a Source.
func NewStatic(snap *Snapshot) *Static {
	return &Static{snap: snap}
}

// Snapshot returns the wrapped snapshot.
func (s *Static) Snapshot() *Snapshot {
	return s.snap
}

// Loader owns the current snapshot of a set of ontology files.
type Loader struct {
	patterns []string
	logger   *slog.Logger

	current atomic.Pointer[Snapshot]
	sources atomic.Pointer[[]string]

	// reloadMu serializes reloads; readers never take it.
	reloadMu sync.Mutex
	reloads  atomic.Int64
	failures atomic.Int64
}

// NewLoader creates a loader for the given glob patterns.
func NewLoader(patterns []string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		patterns: append([]string(nil), patterns...),
		logger:   logger,
	}
}

// Snapshot returns the current snapshot, or nil before the first
// successful load.
func (l *Loader) Snapshot() *Snapshot {
	return l.current.Load()
}

// Sources returns the files behind the current snapshot.
func (l *Loader) Sources() []string {
	if p := l.sources.Load(); p != nil {
		return append([]string(nil), (*p)...)
	}
	return nil
}

// Reload resolves the patterns, parses every file and swaps in the new
// snapshot. On failure the previous snapshot stays current.
func (l *Loader) Reload(ctx context.Context) (*Snapshot, error) {
	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths, err := ResolveSources(l.patterns)
	if err != nil {
		l.failures.Add(1)
		l.logger.Error("Ontology sources unavailable", "patterns", l.patterns, "error", err)
		return nil, err
	}

	snap, err := Load(paths)
	if err != nil {
		l.failures.Add(1)
		l.logger.Error("Ontology load failed", "error", err)
		return nil, err
	}

	l.current.Store(snap)
	l.sources.Store(&paths)
	n := l.reloads.Add(1)
	l.logger.Info("Ontology loaded",
		"files", len(paths),
		"statements", snap.Len(),
		"generation", n)
	return snap, nil
}

// Stats returns the number of successful and failed loads.
func (l *Loader) Stats() (loads, failures int64) {
	return l.reloads.Load(), l.failures.Load()
}
