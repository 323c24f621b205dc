package ontology

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cayleygraph/quad"
	"github.com/c360studio/semdossier/graph"
)

// ResolveSources expands glob patterns (doublestar syntax) into an ordered,
// duplicate-free list of ontology files. Patterns are expanded in the order
// given; matches of a single pattern are sorted. A pattern without glob
// metacharacters must name an existing file.
func ResolveSources(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: bad pattern %q: %v", ErrOntologyLoad, pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no ontology files match %q", ErrOntologyLoad, pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no ontology sources configured", ErrOntologyLoad)
	}
	return out, nil
}

// Load parses every file into one snapshot. The format of each file is
// chosen from its extension. Blank node labels are scoped to their file.
func Load(paths []string) (*Snapshot, error) {
	g := graph.New()
	for i, path := range paths {
		if err := loadFile(g, path, "f"+strconv.Itoa(i)+"_"); err != nil {
			return nil, err
		}
	}
	return NewSnapshot(g, paths...), nil
}

func loadFile(g *graph.Graph, path, bnodePrefix string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrOntologyLoad, path, err)
	}
	defer f.Close()

	fg, err := graph.Decode(f, graph.FormatForPath(path))
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrOntologyLoad, path, err)
	}
	for _, t := range fg.Triples() {
		t.Subject = scopeBlank(t.Subject, bnodePrefix)
		t.Object = scopeBlank(t.Object, bnodePrefix)
		g.Add(t)
	}
	return nil
}

func scopeBlank(v quad.Value, prefix string) quad.Value {
	if b, ok := v.(quad.BNode); ok {
		return quad.BNode(prefix + string(b))
	}
	return v
}

// Parse builds a snapshot from a single serialized ontology.
func Parse(r io.Reader, format graph.Format) (*Snapshot, error) {
	g, err := graph.Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOntologyLoad, err)
	}
	return NewSnapshot(g), nil
}
