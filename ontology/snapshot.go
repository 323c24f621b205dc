package ontology

import (
	"time"

	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semdossier/vocabulary/dossier"
	"github.com/cayleygraph/quad"
)

// Snapshot is an immutable, indexed view of a loaded ontology.
type Snapshot struct {
	triples     []graph.Triple
	bySubject   map[string][]int
	byPredicate map[string][]int
	byObject    map[string][]int

	sources  []string
	loadedAt time.Time
}

// NewSnapshot indexes g. The graph is copied; later changes to g are not
// visible through the snapshot.
func NewSnapshot(g *graph.Graph, sources ...string) *Snapshot {
	s := &Snapshot{
		triples:     g.Triples(),
		bySubject:   make(map[string][]int),
		byPredicate: make(map[string][]int),
		byObject:    make(map[string][]int),
		sources:     append([]string(nil), sources...),
		loadedAt:    time.Now(),
	}
	for i, t := range s.triples {
		sk, pk, ok := graph.Key(t.Subject), graph.Key(t.Predicate), graph.Key(t.Object)
		s.bySubject[sk] = append(s.bySubject[sk], i)
		s.byPredicate[pk] = append(s.byPredicate[pk], i)
		s.byObject[ok] = append(s.byObject[ok], i)
	}
	return s
}

// Len returns the number of statements.
func (s *Snapshot) Len() int {
	return len(s.triples)
}

// Sources returns the files the snapshot was loaded from.
func (s *Snapshot) Sources() []string {
	return append([]string(nil), s.sources...)
}

// LoadedAt returns the snapshot construction time.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Statements returns the statements matching the pattern in load order.
// A nil position matches anything.
func (s *Snapshot) Statements(subj, pred, obj quad.Value) []graph.Triple {
	candidates, indexed := s.narrowest(subj, pred, obj)
	var out []graph.Triple
	match := func(t graph.Triple) bool {
		return (subj == nil || graph.Key(t.Subject) == graph.Key(subj)) &&
			(pred == nil || graph.Key(t.Predicate) == graph.Key(pred)) &&
			(obj == nil || graph.Key(t.Object) == graph.Key(obj))
	}
	if !indexed {
		for _, t := range s.triples {
			if match(t) {
				out = append(out, t)
			}
		}
		return out
	}
	for _, i := range candidates {
		if t := s.triples[i]; match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Snapshot) narrowest(subj, pred, obj quad.Value) ([]int, bool) {
	var best []int
	found := false
	consider := func(idx map[string][]int, v quad.Value) {
		if v == nil {
			return
		}
		c := idx[graph.Key(v)]
		if !found || len(c) < len(best) {
			best, found = c, true
		}
	}
	consider(s.bySubject, subj)
	consider(s.byPredicate, pred)
	consider(s.byObject, obj)
	return best, found
}

// Objects returns the objects of (subj, pred, *) in load order.
func (s *Snapshot) Objects(subj, pred quad.Value) []quad.Value {
	ts := s.Statements(subj, pred, nil)
	out := make([]quad.Value, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Object)
	}
	return out
}

// Object returns the first object of (subj, pred, *).
func (s *Snapshot) Object(subj, pred quad.Value) (quad.Value, bool) {
	ts := s.Statements(subj, pred, nil)
	if len(ts) == 0 {
		return nil, false
	}
	return ts[0].Object, true
}

// Subjects returns the distinct subjects of (*, pred, obj) in load order.
func (s *Snapshot) Subjects(pred, obj quad.Value) []quad.Value {
	seen := make(map[string]bool)
	var out []quad.Value
	for _, t := range s.Statements(nil, pred, obj) {
		k := graph.Key(t.Subject)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t.Subject)
	}
	return out
}

// Has reports whether res has at least one value for pred.
func (s *Snapshot) Has(res, pred quad.Value) bool {
	_, ok := s.Object(res, pred)
	return ok
}

// Label returns the lexical value of the first rdfs:label of res.
func (s *Snapshot) Label(res quad.Value) (string, bool) {
	for _, o := range s.Objects(res, quad.IRI(dossier.RDFSLabel)) {
		if lex, ok := graph.Lexical(o); ok {
			return lex, true
		}
	}
	return "", false
}

// Ranges returns the IRI ranges declared for a property, in load order.
// Blank-node ranges (class expressions) are skipped.
func (s *Snapshot) Ranges(property string) []string {
	var out []string
	for _, o := range s.Objects(quad.IRI(property), quad.IRI(dossier.RDFSRange)) {
		if iri, ok := graph.IRIOf(o); ok {
			out = append(out, iri)
		}
	}
	return out
}

// Parents returns the direct superclasses of class.
func (s *Snapshot) Parents(class quad.Value) []quad.Value {
	return s.Objects(class, quad.IRI(dossier.RDFSSubClassOf))
}

// Ancestors walks rdfs:subClassOf upward from class depth-first and returns
// every ancestor once, nearest first along each branch. Reaching a class that
// is still on the walk path fails with a *CycleError.
func (s *Snapshot) Ancestors(class quad.Value) ([]quad.Value, error) {
	const (
		open = iota + 1
		done
	)
	state := make(map[string]int)
	var out []quad.Value
	var path []string

	var visit func(node quad.Value) error
	visit = func(node quad.Value) error {
		k := graph.Key(node)
		state[k] = open
		path = append(path, k)
		for _, p := range s.Parents(node) {
			pk := graph.Key(p)
			switch state[pk] {
			case open:
				return &CycleError{
					Relation: dossier.RDFSSubClassOf,
					Path:     append(append([]string(nil), path...), pk),
				}
			case done:
				continue
			}
			out = append(out, p)
			if err := visit(p); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[k] = done
		return nil
	}

	if err := visit(class); err != nil {
		return nil, err
	}
	return out, nil
}

// IsSubClassOf reports whether class reaches ancestor through
// rdfs:subClassOf.
func (s *Snapshot) IsSubClassOf(class, ancestor quad.Value) (bool, error) {
	as, err := s.Ancestors(class)
	if err != nil {
		return false, err
	}
	k := graph.Key(ancestor)
	for _, a := range as {
		if graph.Key(a) == k {
			return true, nil
		}
	}
	return false, nil
}
