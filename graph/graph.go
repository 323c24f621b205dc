package graph

import (
	"github.com/cayleygraph/quad"
)

// Triple is a single RDF statement.
type Triple struct {
	Subject   quad.Value
	Predicate quad.Value
	Object    quad.Value
}

// Key returns the canonical key of the triple.
func (t Triple) Key() string {
	return Key(t.Subject) + " " + Key(t.Predicate) + " " + Key(t.Object)
}

// Quad places the triple in the named graph label. A nil label yields a
// triple in the default graph.
func (t Triple) Quad(label quad.Value) quad.Quad {
	return quad.Quad{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object, Label: label}
}

// Graph is an insertion-ordered set of triples. A Graph is not safe for
// concurrent mutation.
type Graph struct {
	triples []Triple
	keys    map[string]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{keys: make(map[string]struct{})}
}

// FromTriples creates a graph holding ts, dropping duplicates.
func FromTriples(ts []Triple) *Graph {
	g := New()
	for _, t := range ts {
		g.Add(t)
	}
	return g
}

// Add inserts t and reports whether it was not already present.
func (g *Graph) Add(t Triple) bool {
	k := t.Key()
	if _, ok := g.keys[k]; ok {
		return false
	}
	g.keys[k] = struct{}{}
	g.triples = append(g.triples, t)
	return true
}

// Remove deletes t and reports whether it was present.
func (g *Graph) Remove(t Triple) bool {
	k := t.Key()
	if _, ok := g.keys[k]; !ok {
		return false
	}
	delete(g.keys, k)
	for i := range g.triples {
		if g.triples[i].Key() == k {
			g.triples = append(g.triples[:i], g.triples[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether t is in the graph.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.keys[t.Key()]
	return ok
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns a copy of the triples in insertion order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Match returns the triples matching the pattern in insertion order.
// A nil position matches any term.
func (g *Graph) Match(s, p, o quad.Value) []Triple {
	var sk, pk, ok string
	if s != nil {
		sk = Key(s)
	}
	if p != nil {
		pk = Key(p)
	}
	if o != nil {
		ok = Key(o)
	}
	var out []Triple
	for _, t := range g.triples {
		if s != nil && Key(t.Subject) != sk {
			continue
		}
		if p != nil && Key(t.Predicate) != pk {
			continue
		}
		if o != nil && Key(t.Object) != ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Clone returns an independent copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		triples: make([]Triple, len(g.triples)),
		keys:    make(map[string]struct{}, len(g.keys)),
	}
	copy(c.triples, g.triples)
	for k := range g.keys {
		c.keys[k] = struct{}{}
	}
	return c
}
