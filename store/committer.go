package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semstreams/pkg/retry"
)

// Committer replaces named graphs one writer per graph at a time.
// Commits to different graphs proceed in parallel.
type Committer struct {
	store   Store
	locks   *keyedMutex
	retry   retry.Config
	metrics *Metrics
	logger  *slog.Logger
}

// CommitterOption configures a Committer.
type CommitterOption func(*Committer)

// WithRetry overrides the retry policy for transient store failures.
// Failures matching ErrInvalidGraph are never retried.
func WithRetry(cfg retry.Config) CommitterOption {
	return func(c *Committer) { c.retry = cfg }
}

// WithMetrics records commit outcomes.
func WithMetrics(m *Metrics) CommitterOption {
	return func(c *Committer) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CommitterOption {
	return func(c *Committer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCommitter wraps s.
func NewCommitter(s Store, opts ...CommitterOption) *Committer {
	c := &Committer{
		store:  s,
		locks:  newKeyedMutex(),
		retry:  retry.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the wrapped backend.
func (c *Committer) Store() Store {
	return c.store
}

// Commit replaces the content of the named graph with g.
// On failure the returned error matches ErrCommit and the graph keeps its
// previous content.
func (c *Committer) Commit(ctx context.Context, name string, g *graph.Graph) error {
	if name == "" {
		return &CommitError{Graph: name, Err: errors.New("empty graph name")}
	}
	if g == nil {
		g = graph.New()
	}

	unlock := c.locks.Lock(name)
	defer unlock()

	start := time.Now()
	attempts := 0
	err := retry.Do(ctx, c.retry, func() error {
		attempts++
		if err := ctx.Err(); err != nil {
			return retry.NonRetryable(err)
		}
		err := c.store.ReplaceGraph(ctx, name, g)
		if err != nil && (errors.Is(err, ErrInvalidGraph) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return retry.NonRetryable(err)
		}
		return err
	})
	c.metrics.observe(err == nil, time.Since(start).Seconds(), g.Len())

	if err != nil {
		c.logger.Error("Graph commit failed",
			"graph", name,
			"attempts", attempts,
			"error", err)
		var ce *CommitError
		if errors.As(err, &ce) {
			return ce
		}
		return &CommitError{Graph: name, Err: err}
	}

	c.logger.Debug("Graph committed",
		"graph", name,
		"triples", g.Len(),
		"attempts", attempts)
	return nil
}
