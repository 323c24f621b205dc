package graph

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// WriteNQuads writes g to w, placing every triple in the named graph label.
// A nil label writes N-Triples.
func WriteNQuads(w io.Writer, g *Graph, label quad.Value) error {
	qw := nquads.NewWriter(w)
	for _, t := range g.Triples() {
		if err := qw.WriteQuad(t.Quad(label)); err != nil {
			return fmt.Errorf("write quad: %w", err)
		}
	}
	return qw.Close()
}

// NTriples renders g as an N-Triples document.
func NTriples(g *Graph) (string, error) {
	var buf bytes.Buffer
	if err := WriteNQuads(&buf, g, nil); err != nil {
		return "", err
	}
	return buf.String(), nil
}
