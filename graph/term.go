package graph

import (
	"fmt"
	"strconv"

	"github.com/cayleygraph/quad"
)

// TermKind discriminates the three RDF term kinds.
type TermKind string

// Term kinds.
const (
	KindIRI     TermKind = "iri"
	KindBlank   TermKind = "bnode"
	KindLiteral TermKind = "literal"
)

// Term is the flat, serializable form of a quad value.
// Datatype and Lang are only set on literals and never both.
type Term struct {
	Kind     TermKind `json:"kind"`
	Value    string   `json:"value"`
	Datatype string   `json:"datatype,omitempty"`
	Lang     string   `json:"lang,omitempty"`
}

// TermOf flattens a quad value.
func TermOf(v quad.Value) Term {
	switch x := v.(type) {
	case quad.IRI:
		return Term{Kind: KindIRI, Value: string(x)}
	case quad.BNode:
		return Term{Kind: KindBlank, Value: string(x)}
	case quad.String:
		return Term{Kind: KindLiteral, Value: string(x)}
	case quad.TypedString:
		return Term{Kind: KindLiteral, Value: string(x.Value), Datatype: string(x.Type)}
	case quad.LangString:
		return Term{Kind: KindLiteral, Value: string(x.Value), Lang: x.Lang}
	case nil:
		return Term{}
	default:
		return Term{Kind: KindLiteral, Value: fmt.Sprint(v.Native())}
	}
}

// Quad rebuilds the quad value of a term.
func (t Term) Quad() quad.Value {
	switch t.Kind {
	case KindIRI:
		return quad.IRI(t.Value)
	case KindBlank:
		return quad.BNode(t.Value)
	case KindLiteral:
		if t.Lang != "" {
			return quad.LangString{Value: quad.String(t.Value), Lang: t.Lang}
		}
		if t.Datatype != "" {
			return quad.TypedString{Value: quad.String(t.Value), Type: quad.IRI(t.Datatype)}
		}
		return quad.String(t.Value)
	default:
		return nil
	}
}

// Key returns a canonical string for a term, used for indexing and
// deduplication. Distinct terms never share a key.
func Key(v quad.Value) string {
	t := TermOf(v)
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := strconv.Quote(t.Value)
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return ""
	}
}

// IsLiteral reports whether v is a literal term.
func IsLiteral(v quad.Value) bool {
	return v != nil && TermOf(v).Kind == KindLiteral
}

// IRIOf returns the IRI of v, or false when v is not an IRI.
func IRIOf(v quad.Value) (string, bool) {
	iri, ok := v.(quad.IRI)
	return string(iri), ok
}

// Lexical returns the lexical form of a literal, or false for IRIs and
// blank nodes.
func Lexical(v quad.Value) (string, bool) {
	t := TermOf(v)
	if t.Kind != KindLiteral {
		return "", false
	}
	return t.Value, true
}

// LocalName returns the part of an IRI after the last '#', '/' or ':'.
func LocalName(iri string) string {
	for i := len(iri) - 1; i >= 0; i-- {
		switch iri[i] {
		case '#', '/', ':':
			return iri[i+1:]
		}
	}
	return iri
}
