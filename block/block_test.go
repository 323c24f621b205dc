package block

import (
	"strings"
	"sync"
	"testing"

	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semdossier/ontology"
	"github.com/c360studio/semdossier/vocabulary/dossier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ns = dossier.Namespace

func testSnapshot(t *testing.T) *ontology.Snapshot {
	t.Helper()
	snap, err := ontology.Load([]string{"../ontology/testdata/dossier.ttl"})
	require.NoError(t, err)
	return snap
}

func testCatalog(t *testing.T, order OrderPolicy) *Catalog {
	t.Helper()
	return NewCatalog(ontology.NewStatic(testSnapshot(t)), order, nil)
}

func types(defs []Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Type
	}
	return out
}

func orders(attrs []Attribute) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Common().Order
	}
	return out
}

func TestRootBlockTypes(t *testing.T) {
	r := NewResolver(testSnapshot(t), OrderLexical)

	roots, err := r.RootBlockTypes()
	require.NoError(t, err)
	require.Len(t, roots, 2)

	assert.Equal(t, ns+"TestReport", roots[0].Type)
	assert.Equal(t, "TESTREPORT", roots[0].Name)
	assert.Equal(t, "Test report", roots[0].Message)
	assert.Equal(t, 48, roots[0].Hue)

	assert.Equal(t, ns+"SummaryReport", roots[1].Type)
	assert.Equal(t, "SummaryReport", roots[1].Message, "unlabelled classes use their local name")
}

func TestResolveChildren(t *testing.T) {
	r := NewResolver(testSnapshot(t), OrderLexical)

	direct, err := r.ResolveChildren(ns+"TestReport", false)
	require.NoError(t, err)
	assert.Equal(t, []string{ns + "TestSubject"}, types(direct))

	all, err := r.ResolveChildren(ns+"TestReport", true)
	require.NoError(t, err)
	assert.Equal(t, []string{ns + "TestSubject", ns + "Dose"}, types(all))

	unknown, err := r.ResolveChildren(ns+"NoSuchType", true)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestAnonymousGroupType(t *testing.T) {
	r := NewResolver(testSnapshot(t), OrderLexical)

	children, err := r.ResolveChildren(ns+"SummaryReport", true)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, ns+"SummaryReport-Reviewer", children[0].Type)
	assert.Equal(t, "REVIEWER", children[0].Name)

	attrs, err := r.ResolveAttributes(ns + "SummaryReport-Reviewer")
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, ns+"reviewerName", attrs[0].Common().Name)
}

func TestAllDefinitions(t *testing.T) {
	r := NewResolver(testSnapshot(t), OrderLexical)

	all, err := r.AllDefinitions()
	require.NoError(t, err)
	assert.Equal(t, []string{
		ns + "TestReport",
		ns + "TestSubject",
		ns + "Dose",
		ns + "SummaryReport",
		ns + "SummaryReport-Reviewer",
	}, types(all))
}

func TestAttributesLexicalOrder(t *testing.T) {
	r := NewResolver(testSnapshot(t), OrderLexical)

	attrs, err := r.ResolveAttributes(ns + "TestReport")
	require.NoError(t, err)
	require.Len(t, attrs, 4)
	assert.Equal(t, []string{"1", "10", "2", "3"}, orders(attrs))

	for i, a := range attrs {
		assert.Equal(t, i+1, a.Common().Position)
	}

	glp, ok := attrs[0].(*SimpleAttribute)
	require.True(t, ok)
	assert.Equal(t, ns+"glpCompliant", glp.Predicate)
	assert.Equal(t, FieldCheckbox, glp.Kind)
	assert.Equal(t, "glpCompliant", glp.Message)

	date := attrs[1].(*SimpleAttribute)
	assert.Equal(t, FieldDate, date.Kind)
	assert.Equal(t, "Study date", date.Message)

	guideline := attrs[2].(*SimpleAttribute)
	assert.Equal(t, FieldInput, guideline.Kind)

	group, ok := attrs[3].(*GroupAttribute)
	require.True(t, ok)
	assert.Equal(t, InputValue, group.Kind)
	assert.Equal(t, ns+"TestSubject", group.BlockType)
	assert.Equal(t, ns+"TestSubject", group.Constraints.NestedType)
	assert.Equal(t, "Test subject", group.Message)
}

func TestAttributesNumericOrder(t *testing.T) {
	r := NewResolver(testSnapshot(t), OrderNumeric)

	attrs, err := r.ResolveAttributes(ns + "TestReport")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "10"}, orders(attrs))
}

func TestAttributesMissingOrderSortsFirst(t *testing.T) {
	r := NewResolver(testSnapshot(t), OrderLexical)

	attrs, err := r.ResolveAttributes(ns + "TestSubject")
	require.NoError(t, err)
	require.Len(t, attrs, 3)
	assert.Equal(t, []string{"", "1", "2"}, orders(attrs))

	_, isGroup := attrs[0].(*GroupAttribute)
	assert.True(t, isGroup)

	count := attrs[1].(*SimpleAttribute)
	assert.Equal(t, FieldNumber, count.Kind)
	require.NotNil(t, count.Constraints.Precision)
	require.NotNil(t, count.Constraints.Min)
	assert.Equal(t, 1, *count.Constraints.Precision)
	assert.Equal(t, 1, *count.Constraints.Min)

	colour := attrs[2].(*SimpleAttribute)
	assert.Equal(t, FieldColour, colour.Kind)
}

func TestDropdownOptionsUseLabels(t *testing.T) {
	r := NewResolver(testSnapshot(t), OrderLexical)

	attrs, err := r.ResolveAttributes(ns + "Dose")
	require.NoError(t, err)
	require.Len(t, attrs, 3)

	level := attrs[0].(*SimpleAttribute)
	assert.Equal(t, FieldNumber, level.Kind)
	assert.Nil(t, level.Constraints.Precision, "double has no precision")

	unit := attrs[1].(*SimpleAttribute)
	assert.Equal(t, FieldDropdown, unit.Kind)
	assert.Equal(t, []Option{
		{Value: "mg/kg", Label: "mg/kg"},
		{Value: "ml/kg", Label: "ml/kg"},
	}, unit.Constraints.Options)

	angle := attrs[2].(*SimpleAttribute)
	assert.Equal(t, FieldAngle, angle.Kind)
}

func TestResolveAttributesIsIdempotent(t *testing.T) {
	r := NewResolver(testSnapshot(t), OrderLexical)

	first, err := r.ResolveAttributes(ns + "TestReport")
	require.NoError(t, err)
	second, err := r.ResolveAttributes(ns + "TestReport")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestKindForRange(t *testing.T) {
	tests := []struct {
		rng  string
		want FieldKind
	}{
		{dossier.XSDDateTime, FieldDate},
		{dossier.XSDBoolean, FieldCheckbox},
		{dossier.XSDInteger, FieldNumber},
		{dossier.XSDInt, FieldNumber},
		{dossier.XSDDouble, FieldNumber},
		{dossier.XSDPositiveInt, FieldNumber},
		{dossier.XSDLong, FieldNumber},
		{dossier.XSDFloat, FieldNumber},
		{dossier.XSDAnyURI, FieldInput},
		{ns + "eye_colour", FieldColour},
		{ns + "view_angle", FieldAngle},
		{ns + "species_dropdown", FieldDropdown},
		{dossier.XSDString, FieldInput},
		{dossier.XSDDecimal, FieldInput},
		{"", FieldInput},
	}

	for _, tt := range tests {
		name := tt.rng
		if name == "" {
			name = "no range"
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindForRange(tt.rng))
		})
	}
}

func TestConstraintsForRange(t *testing.T) {
	assert.Equal(t, 1, *ConstraintsForRange(dossier.XSDLong).Precision)
	assert.Nil(t, ConstraintsForRange(dossier.XSDLong).Min)
	assert.Equal(t, 1, *ConstraintsForRange(dossier.XSDPositiveInt).Min)
	assert.Equal(t, Constraints{}, ConstraintsForRange(dossier.XSDFloat))
}

func TestOrderPolicy(t *testing.T) {
	assert.True(t, OrderLexical.Less("10", "2"))
	assert.True(t, OrderLexical.Less("", "1"))
	assert.True(t, OrderNumeric.Less("2", "10"))
	assert.True(t, OrderNumeric.Less("10", "a"))
	assert.False(t, OrderNumeric.Less("", "1"))

	p, err := ParseOrderPolicy("Numeric")
	require.NoError(t, err)
	assert.Equal(t, OrderNumeric, p)
	p, err = ParseOrderPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OrderLexical, p)
	_, err = ParseOrderPolicy("random")
	assert.Error(t, err)
}

func TestHue(t *testing.T) {
	assert.Equal(t, 0, Hue(""))
	assert.Equal(t, 97, Hue("a"))
	assert.Equal(t, 62, Hue("OPINION"))
	assert.Equal(t, -128, Hue("polygenelubricants"), "hash of MinInt32 keeps its sign")
}

func TestAttributeGroupCycle(t *testing.T) {
	snap, err := ontology.Parse(strings.NewReader(`@prefix oecd: <http://ontologies.vub.be/oecd#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
oecd:Loop rdfs:subClassOf oecd:Report ; oecd:attributeGroup oecd:A .
oecd:A oecd:attributeGroup oecd:B .
oecd:B oecd:attributeGroup oecd:A .
`), graph.FormatTurtle)
	require.NoError(t, err)
	r := NewResolver(snap, OrderLexical)

	direct, err := r.ResolveChildren(ns+"Loop", false)
	assert.Error(t, err, "lookup walks every descendant")
	assert.Nil(t, direct)

	roots, err := r.RootBlockTypes()
	require.NoError(t, err)
	_, err = r.Children(roots[0], true)
	assert.ErrorIs(t, err, ontology.ErrMalformedOntology)

	shallow, err := r.Children(roots[0], false)
	require.NoError(t, err)
	assert.Equal(t, []string{ns + "A"}, types(shallow))
}

func TestReportHierarchyCycle(t *testing.T) {
	snap, err := ontology.Parse(strings.NewReader(`@prefix oecd: <http://ontologies.vub.be/oecd#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
oecd:Report rdfs:subClassOf oecd:Bad .
oecd:Bad rdfs:subClassOf oecd:Report .
`), graph.FormatTurtle)
	require.NoError(t, err)

	c := NewCatalog(ontology.NewStatic(snap), OrderLexical, nil)
	_, err = c.RootBlockTypes()
	assert.ErrorIs(t, err, ontology.ErrMalformedOntology)
}

func TestCatalogTypeList(t *testing.T) {
	c := testCatalog(t, OrderLexical)

	list, err := c.TypeList()
	require.NoError(t, err)
	assert.Equal(t, `["`+ns+`TestReport", "`+ns+`SummaryReport"]`, list)
}

func TestCatalogNoSnapshot(t *testing.T) {
	c := NewCatalog(ontology.NewStatic(nil), OrderLexical, nil)
	_, err := c.RootBlockTypes()
	assert.ErrorIs(t, err, ontology.ErrOntologyLoad)
}

type swapSource struct {
	mu   sync.Mutex
	snap *ontology.Snapshot
}

func (s *swapSource) Snapshot() *ontology.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *swapSource) set(snap *ontology.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func TestCatalogRebuildsAfterReload(t *testing.T) {
	src := &swapSource{snap: testSnapshot(t)}
	c := NewCatalog(src, OrderLexical, nil)

	roots, err := c.RootBlockTypes()
	require.NoError(t, err)
	assert.Len(t, roots, 2)
	_, err = c.TypeList()
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Builds(), "views share one build")

	next, err := ontology.Parse(strings.NewReader(`@prefix oecd: <http://ontologies.vub.be/oecd#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
oecd:OnlyReport rdfs:subClassOf oecd:Report .
`), graph.FormatTurtle)
	require.NoError(t, err)
	src.set(next)

	roots, err = c.RootBlockTypes()
	require.NoError(t, err)
	assert.Equal(t, []string{ns + "OnlyReport"}, types(roots))
	assert.Equal(t, int64(2), c.Builds())
}

func TestCatalogConcurrentReads(t *testing.T) {
	c := testCatalog(t, OrderLexical)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			roots, err := c.RootBlockTypes()
			assert.NoError(t, err)
			assert.Len(t, roots, 2)
			_, err = c.ResolveAttributes(ns + "TestReport")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), c.Builds())
}

func TestSessionChildren(t *testing.T) {
	s := NewSession(testCatalog(t, OrderLexical))

	defs, err := s.Children()
	require.NoError(t, err)
	assert.Len(t, defs, 2, "nothing selected shows the reports")

	s.Select(RootSelection)
	defs, err = s.Children()
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	s.Select(ns + "TestReport")
	defs, err = s.Children()
	require.NoError(t, err)
	assert.Equal(t, []string{ns + "TestSubject"}, types(defs))

	s.Select(ns + "Nothing")
	defs, err = s.Children()
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestSessionsAreIsolated(t *testing.T) {
	c := testCatalog(t, OrderLexical)
	a, b := NewSession(c), NewSession(c)

	a.Select(ns + "TestReport")
	assert.Equal(t, ns+"TestReport", a.Selected())
	assert.Equal(t, "", b.Selected())
}
