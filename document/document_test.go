package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/semdossier/block"
	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semdossier/ontology"
	"github.com/c360studio/semdossier/vocabulary/dossier"
	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ns       = dossier.Namespace
	rootIRI  = "http://wise10.vub.ac.be/resource/dossier/7"
	blockIRI = rootIRI + "/block/"
)

func readFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/dossier.xml")
	require.NoError(t, err)
	return string(data)
}

func parseFixture(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(readFixture(t), DefaultNamespaces)
	require.NoError(t, err)
	return doc
}

func TestNormalize(t *testing.T) {
	raw := "<xml xmlns=\"http://www.w3.org/1999/xhtml\">\r\n  <block type=\"OPINION\"></block>\n</xml>"
	assert.Equal(t, `<xml>  <block type="OPINION"></block></xml>`, Normalize(raw, DefaultNamespaces))
}

func TestParseKeepsLineBreaksInFields(t *testing.T) {
	raw := "<xml xmlns=\"https://developers.google.com/blockly/xml\">\r\n" +
		"<block type=\"OPINION\"><field name=\"ID\">first line\nsecond line</field></block>\n</xml>"

	doc, err := Parse(raw, DefaultNamespaces)
	require.NoError(t, err)
	v, ok := doc.Root("OPINION").Field("ID")
	require.True(t, ok)
	assert.Equal(t, "first line\nsecond line", v)

	assert.NotContains(t, Normalize(raw, DefaultNamespaces), "\n")
	assert.Equal(t, strings.Count(raw, "\n"), strings.Count(StripNamespaces(raw, DefaultNamespaces), "\n"))
}

func TestParseFlattensChains(t *testing.T) {
	doc := parseFixture(t)
	require.Len(t, doc.Blocks, 1)

	root := doc.Root("OPINION")
	require.NotNil(t, root)
	title, ok := root.Field("ID")
	assert.True(t, ok)
	assert.Equal(t, "Acute toxicity", title)

	require.Len(t, root.Inputs, 1)
	reports := root.Inputs[0]
	assert.Equal(t, InputStatementKind, reports.Kind)
	require.Len(t, reports.Blocks, 2, "next-chain becomes siblings")
	assert.Equal(t, "r1", reports.Blocks[0].ID)
	assert.Equal(t, "r2", reports.Blocks[1].ID)

	var visited []string
	doc.Walk(func(n *Node, _ *Node) { visited = append(visited, n.ID) })
	assert.Equal(t, []string{"root", "r1", "s1", "r2"}, visited)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"empty":      "  \r\n",
		"malformed":  "<xml><block type=\"OPINION\">",
		"untyped":    "<xml><block id=\"x\"></block></xml>",
		"wrong root": "<dossier></dossier>",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw, DefaultNamespaces)
			assert.ErrorIs(t, err, ErrTransform)
		})
	}
}

func TestSetField(t *testing.T) {
	n := &Node{Type: "OPINION"}
	n.SetField("URL", "a")
	n.SetField("URL", "b")
	v, _ := n.Field("URL")
	assert.Equal(t, "b", v)
	assert.Len(t, n.Fields, 1)
}

func TestTransform(t *testing.T) {
	tr := NewTransformer(nil, nil)
	res, err := tr.Transform(parseFixture(t))
	require.NoError(t, err)

	assert.Equal(t, rootIRI, res.Subject)
	g := res.Graph
	assert.Equal(t, 12, g.Len())

	has := func(s, p string, o quad.Value) {
		t.Helper()
		want := graph.Triple{Subject: quad.IRI(s), Predicate: quad.IRI(p), Object: o}
		assert.True(t, g.Has(want), "missing %s", want.Key())
	}
	has(rootIRI, dossier.RDFType, quad.IRI(dossier.ClassOpinion))
	has(rootIRI, dossier.DcTitle, quad.String("Acute toxicity"))
	has(rootIRI, dossier.PropContains, quad.IRI(blockIRI+"r1"))
	has(rootIRI, dossier.PropContains, quad.IRI(blockIRI+"r2"))
	has(blockIRI+"r1", dossier.RDFType, quad.IRI(ns+"TestReport"))
	has(blockIRI+"r1", ns+"glpCompliant", quad.String("TRUE"))
	has(blockIRI+"r1", ns+"studyDate", quad.String("2024-01-01"))
	has(blockIRI+"r1", dossier.PropContains, quad.IRI(blockIRI+"s1"))
	has(blockIRI+"s1", ns+"animalCount", quad.String("10"))
	has(blockIRI+"r2", ns+"notes", quad.String("free text"))

	assert.Empty(t, g.Match(nil, nil, quad.String(rootIRI)), "the identity field is not a literal")
	assert.Contains(t, string(res.RDFXML), "<rdf:RDF")
}

func TestTransformIgnoresEditorNamespace(t *testing.T) {
	with := readFixture(t)
	without := strings.Replace(with, ` xmlns="https://developers.google.com/blockly/xml"`, "", 1)
	require.NotEqual(t, with, without)

	tr := NewTransformer(nil, nil)
	docA, err := Parse(with, DefaultNamespaces)
	require.NoError(t, err)
	docB, err := Parse(without, DefaultNamespaces)
	require.NoError(t, err)

	a, err := tr.Transform(docA)
	require.NoError(t, err)
	b, err := tr.Transform(docB)
	require.NoError(t, err)

	assert.Equal(t, a.RDFXML, b.RDFXML)
	assert.Equal(t, a.Graph.Triples(), b.Graph.Triples())
}

func TestTransformRequiresIdentity(t *testing.T) {
	tr := NewTransformer(nil, nil)

	doc, err := Parse(`<xml><block type="OPINION"><field name="ID">x</field></block></xml>`, DefaultNamespaces)
	require.NoError(t, err)
	_, err = tr.Transform(doc)
	assert.ErrorIs(t, err, ErrTransform)

	doc, err = Parse(`<xml><block type="OPINION"><field name="URL">not-an-iri</field></block></xml>`, DefaultNamespaces)
	require.NoError(t, err)
	_, err = tr.Transform(doc)
	assert.ErrorIs(t, err, ErrTransform)

	_, err = tr.Transform(&Document{})
	assert.ErrorIs(t, err, ErrTransform)
}

func TestTransformEscapesValues(t *testing.T) {
	doc, err := Parse(`<xml><block type="OPINION">
<field name="URL">http://example.org/d/1</field>
<field name="my field">a &lt;b&gt; &amp; "c"</field>
<statement name="s"><block type="Custom Block"></block></statement>
</block></xml>`, DefaultNamespaces)
	require.NoError(t, err)

	res, err := NewTransformer(nil, nil).Transform(doc)
	require.NoError(t, err)

	lit := res.Graph.Match(nil, quad.IRI(ns+"my_field"), nil)
	require.Len(t, lit, 1)
	assert.Equal(t, quad.String(`a <b> & "c"`), lit[0].Object)

	child := res.Graph.Match(quad.IRI("http://example.org/d/1/block/n0.0.0"), quad.IRI(dossier.RDFType), nil)
	require.Len(t, child, 1)
	assert.Equal(t, quad.IRI(ns+"Custom_Block"), child[0].Object)
}

func TestTransformDigitLedPredicate(t *testing.T) {
	doc, err := Parse(`<xml><block type="OPINION">
<field name="URL">http://example.org/d/1</field>
<field name="http://ex.org/prop/2024">yes</field>
<field name="http://ex.org/prop/">slash</field>
<field name="http://ex.org/prop/title">kept</field>
</block></xml>`, DefaultNamespaces)
	require.NoError(t, err)

	res, err := NewTransformer(nil, nil).Transform(doc)
	require.NoError(t, err)

	subject := quad.IRI("http://example.org/d/1")
	g := res.Graph
	assert.True(t, g.Has(graph.Triple{Subject: subject, Predicate: quad.IRI("http://ex.org/prop/2024"), Object: quad.String("yes")}))
	assert.True(t, g.Has(graph.Triple{Subject: subject, Predicate: quad.IRI("http://ex.org/prop/"), Object: quad.String("slash")}))
	assert.True(t, g.Has(graph.Triple{Subject: subject, Predicate: quad.IRI("http://ex.org/prop/title"), Object: quad.String("kept")}))

	for _, tr := range g.Triples() {
		iri, _ := graph.IRIOf(tr.Predicate)
		assert.False(t, strings.HasPrefix(iri, SurrogateNamespace), "stand-in predicate %s left in graph", iri)
	}
	assert.Contains(t, string(res.RDFXML), SurrogateNamespace)
}

func TestSplitIRI(t *testing.T) {
	tests := []struct {
		iri, ns, local string
		ok             bool
	}{
		{ns + "glpCompliant", ns, "glpCompliant", true},
		{"http://purl.org/dc/terms/title", "http://purl.org/dc/terms/", "title", true},
		{"urn:x:1abc", "urn:x:1", "abc", true},
		{"http://example.org/", "", "", false},
		{"http://ex.org/prop/2024", "", "", false},
		{"title", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.iri, func(t *testing.T) {
			gotNS, gotLocal, ok := splitIRI(tt.iri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ns, gotNS)
			assert.Equal(t, tt.local, gotLocal)
		})
	}
}

func TestLoadMappingOverlays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fields:
  NOTE: "http://example.org/note"
child_subject: "{root}#{id}"
`), 0644))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/note", m.PredicateFor("NOTE"))
	assert.Equal(t, dossier.DcTitle, m.PredicateFor("ID"), "built-in fields are kept")
	assert.Equal(t, "http://x/d/1#a%20b", m.ChildSubjectFor("http://x/d/1", "a b"))
	assert.Equal(t, dossier.ClassOpinion, m.ClassFor("OPINION"))
}

func TestParseMappingValidates(t *testing.T) {
	_, err := ParseMapping([]byte(`vocabulary: "relative#"`))
	assert.Error(t, err)

	_, err = ParseMapping([]byte(`
vocabulary: "http://example.org/#"
subject_field: URL
child_subject: "{root}/x"
type_predicate: a
link_predicate: b
`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	snap, err := ontology.Load([]string{"../ontology/testdata/dossier.ttl"})
	require.NoError(t, err)
	catalog := block.NewCatalog(ontology.NewStatic(snap), block.OrderLexical, nil)
	v := NewValidator(catalog, nil)

	issues, err := v.Validate(parseFixture(t))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "r2", issues[0].BlockID)
	assert.Equal(t, "notes", issues[0].Field)
}

func TestValidateReportsUnknownTypesAndInputs(t *testing.T) {
	snap, err := ontology.Load([]string{"../ontology/testdata/dossier.ttl"})
	require.NoError(t, err)
	catalog := block.NewCatalog(ontology.NewStatic(snap), block.OrderLexical, nil)
	v := NewValidator(catalog, nil)

	doc, err := Parse(`<xml><block type="OPINION" id="root">
<field name="URL">http://example.org/d/1</field>
<field name="COLOR">red</field>
<statement name="reports">
  <block type="http://ontologies.vub.be/oecd#Nope" id="a"></block>
  <block type="http://ontologies.vub.be/oecd#TestReport" id="b">
    <value name="Test subject"><block type="http://ontologies.vub.be/oecd#Dose" id="c"></block></value>
    <value name="Elsewhere"></value>
  </block>
</statement>
</block></xml>`, DefaultNamespaces)
	require.NoError(t, err)

	issues, err := v.Validate(doc)
	require.NoError(t, err)

	reasons := make(map[string]string)
	for _, is := range issues {
		reasons[is.BlockID+"/"+is.Field] = is.Reason
	}
	assert.Contains(t, reasons, "root/COLOR")
	assert.Equal(t, "unknown block type", reasons["a/"])
	assert.Contains(t, reasons, "c/Test subject")
	assert.Contains(t, reasons, "b/Elsewhere")
	assert.Len(t, issues, 4)

	verr := &ValidationError{Issues: issues}
	assert.ErrorIs(t, verr, ErrValidation)
	assert.Contains(t, verr.Error(), "4 validation issue(s)")
}
