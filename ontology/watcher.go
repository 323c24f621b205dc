package ontology

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when a Watcher is created with a zero debounce.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a Loader when one of its ontology files changes.
// Bursts of events are collapsed into a single reload per debounce tick.
type Watcher struct {
	loader   *Loader
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// reloaded receives the result of every reload; tests read it.
	reloaded chan error
	done     chan struct{}
	started  atomic.Bool
}

// NewWatcher creates a watcher for the loader's patterns.
func NewWatcher(loader *Loader, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		loader:   loader,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		reloaded: make(chan error, 16),
		done:     make(chan struct{}),
	}, nil
}

// Reloaded delivers the outcome of each reload triggered by a file change.
// Results are dropped when nobody reads them.
func (w *Watcher) Reloaded() <-chan error {
	return w.reloaded
}

// Start watches the directories holding the current ontology files.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for _, src := range w.loader.Sources() {
		dirs[filepath.Dir(src)] = true
	}
	if len(dirs) == 0 {
		return fmt.Errorf("%w: nothing to watch before the first load", ErrOntologyLoad)
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Debug("Watching ontology directory", "path", dir)
	}

	w.started.Store(true)
	go w.processEvents(ctx)

	w.logger.Info("Ontology watcher started",
		"directories", len(dirs),
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	if w.started.Load() {
		<-w.done
	}
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Ontology watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Ontology change detected", "path", event.Name, "op", event.Op.String())
}

func (w *Watcher) matches(path string) bool {
	for _, pattern := range w.loader.patterns {
		ok, err := doublestar.PathMatch(filepath.Clean(pattern), filepath.Clean(path))
		if err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	changed := len(w.pending)
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	_, err := w.loader.Reload(ctx)
	if err != nil {
		w.logger.Warn("Ontology reload failed, keeping previous snapshot",
			"changed_files", changed,
			"error", err)
	}

	select {
	case w.reloaded <- err:
	default:
	}
}
