package graph

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/knakk/rdf"
)

const (
	xsdString     = "http://www.w3.org/2001/XMLSchema#string"
	rdfLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Format is a serialization accepted by Decode.
type Format string

// Supported formats.
const (
	FormatTurtle   Format = "turtle"
	FormatRDFXML   Format = "rdfxml"
	FormatNTriples Format = "ntriples"
)

// FormatForPath picks a format from a file extension, defaulting to Turtle.
func FormatForPath(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".rdf"), strings.HasSuffix(lower, ".owl"), strings.HasSuffix(lower, ".xml"):
		return FormatRDFXML
	case strings.HasSuffix(lower, ".nt"):
		return FormatNTriples
	default:
		return FormatTurtle
	}
}

func (f Format) rdfFormat() (rdf.Format, error) {
	switch f {
	case FormatTurtle:
		return rdf.Turtle, nil
	case FormatRDFXML:
		return rdf.RDFXML, nil
	case FormatNTriples:
		return rdf.NTriples, nil
	default:
		return 0, fmt.Errorf("unsupported format %q", f)
	}
}

// Decode reads every triple of r into a new graph. Triples keep document
// order and duplicates collapse.
func Decode(r io.Reader, f Format) (*Graph, error) {
	rf, err := f.rdfFormat()
	if err != nil {
		return nil, err
	}
	g := New()
	if err := DecodeInto(g, r, rf); err != nil {
		return nil, err
	}
	return g, nil
}

// DecodeInto appends every triple of r to g.
func DecodeInto(g *Graph, r io.Reader, f rdf.Format) error {
	dec := rdf.NewTripleDecoder(r, f)
	for {
		tr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode triple %d: %w", g.Len()+1, err)
		}
		g.Add(FromRDF(tr))
	}
}

// FromRDF converts a decoded triple into the quad value model.
func FromRDF(t rdf.Triple) Triple {
	return Triple{
		Subject:   valueOf(t.Subj),
		Predicate: valueOf(t.Pred),
		Object:    valueOf(t.Obj),
	}
}

func valueOf(t rdf.Term) quad.Value {
	switch v := t.(type) {
	case rdf.IRI:
		return quad.IRI(v.String())
	case rdf.Blank:
		return quad.BNode(strings.TrimPrefix(v.String(), "_:"))
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return quad.LangString{Value: quad.String(v.String()), Lang: lang}
		}
		switch dt := v.DataType.String(); dt {
		case "", xsdString, rdfLangString:
			return quad.String(v.String())
		default:
			return quad.TypedString{Value: quad.String(v.String()), Type: quad.IRI(dt)}
		}
	default:
		return quad.String(t.String())
	}
}
