package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/c360studio/semdossier/graph"
)

// Sentinel errors.
var (
	// ErrCommit wraps every failed commit.
	ErrCommit = errors.New("graph commit failed")

	// ErrGraphNotFound is returned when a named graph has no content.
	ErrGraphNotFound = errors.New("named graph not found")

	// ErrInvalidGraph marks content a backend can never store. Commits
	// failing with it are not retried.
	ErrInvalidGraph = errors.New("graph cannot be stored")
)

// Store is a persistent named-graph store.
type Store interface {
	// ReplaceGraph atomically replaces the content of the named graph.
	ReplaceGraph(ctx context.Context, name string, g *graph.Graph) error

	// Graph returns the content of the named graph in insertion order.
	Graph(ctx context.Context, name string) (*graph.Graph, error)

	// DropGraph removes the named graph. Dropping a missing graph is not an error.
	DropGraph(ctx context.Context, name string) error

	// Graphs lists the stored graph names.
	Graphs(ctx context.Context) ([]string, error)

	// Close releases the backend.
	Close() error
}

// CommitError describes a failed named-graph replacement.
type CommitError struct {
	Graph string
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit graph %s: %v", e.Graph, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Is reports ErrCommit so callers can match on the sentinel.
func (e *CommitError) Is(target error) bool {
	return target == ErrCommit
}

// checkGraph rejects triples that no backend can store.
func checkGraph(g *graph.Graph) error {
	for i, t := range g.Triples() {
		switch graph.TermOf(t.Subject).Kind {
		case graph.KindIRI, graph.KindBlank:
		default:
			return fmt.Errorf("%w: triple %d: subject must be an IRI or blank node", ErrInvalidGraph, i)
		}
		if _, ok := graph.IRIOf(t.Predicate); !ok {
			return fmt.Errorf("%w: triple %d: predicate must be an IRI", ErrInvalidGraph, i)
		}
		if t.Object == nil {
			return fmt.Errorf("%w: triple %d: missing object", ErrInvalidGraph, i)
		}
	}
	return nil
}

// record is the serialized form of a triple.
type record struct {
	S graph.Term `json:"s"`
	P graph.Term `json:"p"`
	O graph.Term `json:"o"`
}

func toRecords(g *graph.Graph) []record {
	ts := g.Triples()
	out := make([]record, len(ts))
	for i, t := range ts {
		out[i] = record{
			S: graph.TermOf(t.Subject),
			P: graph.TermOf(t.Predicate),
			O: graph.TermOf(t.Object),
		}
	}
	return out
}

func fromRecords(rs []record) *graph.Graph {
	g := graph.New()
	for _, r := range rs {
		g.Add(graph.Triple{
			Subject:   r.S.Quad(),
			Predicate: r.P.Quad(),
			Object:    r.O.Quad(),
		})
	}
	return g
}
