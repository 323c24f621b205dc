package graph

import (
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triple(s, p string, o quad.Value) Triple {
	return Triple{Subject: quad.IRI(s), Predicate: quad.IRI(p), Object: o}
}

func TestGraphAddDeduplicates(t *testing.T) {
	g := New()
	assert.True(t, g.Add(triple("urn:a", "urn:p", quad.String("x"))))
	assert.False(t, g.Add(triple("urn:a", "urn:p", quad.String("x"))))
	assert.True(t, g.Add(triple("urn:a", "urn:p", quad.TypedString{Value: "x", Type: "urn:t"})))
	assert.Equal(t, 2, g.Len())
}

func TestGraphRemoveKeepsOrder(t *testing.T) {
	g := FromTriples([]Triple{
		triple("urn:a", "urn:p", quad.String("1")),
		triple("urn:a", "urn:p", quad.String("2")),
		triple("urn:a", "urn:p", quad.String("3")),
	})

	assert.True(t, g.Remove(triple("urn:a", "urn:p", quad.String("2"))))
	assert.False(t, g.Remove(triple("urn:a", "urn:p", quad.String("2"))))

	got := g.Triples()
	require.Len(t, got, 2)
	assert.Equal(t, quad.String("1"), got[0].Object)
	assert.Equal(t, quad.String("3"), got[1].Object)
}

func TestGraphMatch(t *testing.T) {
	g := FromTriples([]Triple{
		triple("urn:a", "urn:p", quad.IRI("urn:b")),
		triple("urn:a", "urn:q", quad.String("x")),
		triple("urn:c", "urn:p", quad.IRI("urn:b")),
	})

	assert.Len(t, g.Match(quad.IRI("urn:a"), nil, nil), 2)
	assert.Len(t, g.Match(nil, quad.IRI("urn:p"), nil), 2)
	assert.Len(t, g.Match(nil, nil, quad.IRI("urn:b")), 2)
	assert.Len(t, g.Match(quad.IRI("urn:c"), quad.IRI("urn:q"), nil), 0)
	assert.Len(t, g.Match(nil, nil, nil), 3)
}

func TestGraphCloneIsIndependent(t *testing.T) {
	g := FromTriples([]Triple{triple("urn:a", "urn:p", quad.String("x"))})
	c := g.Clone()
	c.Add(triple("urn:a", "urn:p", quad.String("y")))

	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 2, c.Len())
}

func TestKeyDistinguishesTerms(t *testing.T) {
	values := []quad.Value{
		quad.IRI("urn:x"),
		quad.BNode("x"),
		quad.String("urn:x"),
		quad.String("x"),
		quad.TypedString{Value: "x", Type: "urn:t"},
		quad.LangString{Value: "x", Lang: "en"},
	}
	seen := make(map[string]bool)
	for _, v := range values {
		k := Key(v)
		if seen[k] {
			t.Errorf("duplicate key %q for %v", k, v)
		}
		seen[k] = true
	}
}

func TestTermRoundTrip(t *testing.T) {
	values := []quad.Value{
		quad.IRI("urn:x"),
		quad.BNode("b0"),
		quad.String("plain"),
		quad.TypedString{Value: "1", Type: "http://www.w3.org/2001/XMLSchema#integer"},
		quad.LangString{Value: "hallo", Lang: "nl"},
	}
	for _, v := range values {
		assert.Equal(t, v, TermOf(v).Quad())
	}
}

func TestLocalName(t *testing.T) {
	tests := map[string]string{
		"http://ontologies.vub.be/oecd#Report": "Report",
		"http://example.org/a/b":               "b",
		"urn:thing":                            "thing",
		"plain":                                "plain",
	}
	for in, want := range tests {
		if got := LocalName(in); got != want {
			t.Errorf("LocalName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeTurtle(t *testing.T) {
	doc := `@prefix ex: <http://example.org/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
ex:a ex:p "x" ;
     ex:q ex:b ;
     ex:n "4"^^xsd:integer .
ex:a ex:p "x" .
`
	g, err := Decode(strings.NewReader(doc), FormatTurtle)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())

	n := g.Match(nil, quad.IRI("http://example.org/n"), nil)
	require.Len(t, n, 1)
	assert.Equal(t, quad.TypedString{Value: "4", Type: "http://www.w3.org/2001/XMLSchema#integer"}, n[0].Object)

	p := g.Match(nil, quad.IRI("http://example.org/p"), nil)
	require.Len(t, p, 1)
	lex, ok := Lexical(p[0].Object)
	assert.True(t, ok)
	assert.Equal(t, "x", lex)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("this is not turtle"), FormatTurtle)
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatTurtle, FormatForPath("onto/report.ttl"))
	assert.Equal(t, FormatRDFXML, FormatForPath("onto/report.OWL"))
	assert.Equal(t, FormatNTriples, FormatForPath("dump.nt"))
}

func TestNTriples(t *testing.T) {
	g := FromTriples([]Triple{triple("http://example.org/a", "http://example.org/p", quad.String("x"))})
	out, err := NTriples(g)
	require.NoError(t, err)
	assert.Contains(t, out, "<http://example.org/a>")
	assert.Contains(t, out, `"x"`)
}
