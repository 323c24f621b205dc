package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/cayleygraph/quad"

	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semdossier/vocabulary/dossier"
)

// Statement is one triple produced by the structural walk, before it is
// serialized.
type Statement struct {
	Subject   string
	Predicate string
	Object    string
	// Literal marks Object as a plain literal rather than an IRI.
	Literal bool
}

// Result is the output of a transform.
type Result struct {
	// Subject is the IRI of the root block.
	Subject string
	// RDFXML is the intermediate serialization. Predicates that have no
	// QName form appear in it under SurrogateNamespace.
	RDFXML []byte
	// Graph is the decoded candidate graph. Literals are untyped.
	Graph *graph.Graph
}

// Transformer maps documents to candidate graphs. It is stateless and safe
// for concurrent use.
type Transformer struct {
	mapping *Mapping
	logger  *slog.Logger
}

// NewTransformer creates a transformer. A nil mapping selects the
// built-in one.
func NewTransformer(m *Mapping, logger *slog.Logger) *Transformer {
	if m == nil {
		m = DefaultMapping()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{mapping: m, logger: logger}
}

// Mapping returns the transformer's mapping.
func (t *Transformer) Mapping() *Mapping {
	return t.mapping
}

// Transform maps doc to a candidate graph. The root block must carry an
// absolute IRI in the mapping's subject field.
func (t *Transformer) Transform(doc *Document) (*Result, error) {
	subject, stmts, err := t.Statements(doc)
	if err != nil {
		return nil, err
	}
	rdfxml, surrogates := renderRDFXML(stmts)
	g, err := graph.Decode(bytes.NewReader(rdfxml), graph.FormatRDFXML)
	if err != nil {
		return nil, fmt.Errorf("%w: decode intermediate RDF/XML: %v", ErrTransform, err)
	}
	if len(surrogates) > 0 {
		g = restorePredicates(g, surrogates)
	}
	t.logger.Debug("Document transformed",
		"subject", subject,
		"statements", len(stmts),
		"triples", g.Len())
	return &Result{Subject: subject, RDFXML: rdfxml, Graph: g}, nil
}

// Statements walks doc and returns the root subject and the statements in
// document order.
func (t *Transformer) Statements(doc *Document) (string, []Statement, error) {
	m := t.mapping
	root := doc.Root(m.RootType)
	if root == nil {
		return "", nil, fmt.Errorf("%w: document has no blocks", ErrTransform)
	}
	subject, _ := root.Field(m.SubjectField)
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", nil, fmt.Errorf("%w: root block has no %s field", ErrTransform, m.SubjectField)
	}
	if !isAbsoluteIRI(subject) {
		return "", nil, fmt.Errorf("%w: root identity %q is not an absolute IRI", ErrTransform, subject)
	}

	w := &walker{mapping: m, root: subject, typeIRI: m.TypeIRI(), linkIRI: m.LinkIRI()}
	for i, b := range doc.Blocks {
		s := subject
		if b != root {
			s = w.childSubject(b, "n"+strconv.Itoa(i))
		}
		w.visit(b, s, "n"+strconv.Itoa(i))
	}
	return subject, w.out, nil
}

type walker struct {
	mapping *Mapping
	root    string
	typeIRI string
	linkIRI string
	out     []Statement
}

func (w *walker) childSubject(n *Node, path string) string {
	id := n.ID
	if id == "" {
		id = path
	}
	return w.mapping.ChildSubjectFor(w.root, id)
}

func (w *walker) visit(n *Node, subject, path string) {
	m := w.mapping
	w.out = append(w.out, Statement{Subject: subject, Predicate: w.typeIRI, Object: m.ClassFor(n.Type)})

	for _, f := range n.Fields {
		if m.Skip(f.Name) {
			continue
		}
		if m.SkipEmpty && strings.TrimSpace(f.Value) == "" {
			continue
		}
		w.out = append(w.out, Statement{
			Subject:   subject,
			Predicate: m.PredicateFor(f.Name),
			Object:    f.Value,
			Literal:   true,
		})
	}

	for i, in := range n.Inputs {
		for j, c := range in.Blocks {
			childPath := path + "." + strconv.Itoa(i) + "." + strconv.Itoa(j)
			cs := w.childSubject(c, childPath)
			w.out = append(w.out, Statement{Subject: subject, Predicate: w.linkIRI, Object: cs})
			w.visit(c, cs, childPath)
		}
	}
}

// SurrogateNamespace holds stand-in predicates for IRIs that RDF/XML cannot
// write, such as those ending in a digit-led segment.
const SurrogateNamespace = "urn:semdossier:predicate#"

// renderRDFXML serializes statements as RDF/XML, one rdf:Description per
// subject in first-seen order. Predicates without a QName form are written
// under SurrogateNamespace; the returned map leads back to the originals.
func renderRDFXML(stmts []Statement) ([]byte, map[string]string) {
	prefixes := map[string]string{dossier.RDFNamespace: "rdf"}
	var nsOrder []string
	var surrogates map[string]string
	byPredicate := make(map[string]string)
	qnames := make([]string, len(stmts))
	for i, s := range stmts {
		ns, local, ok := splitIRI(s.Predicate)
		if !ok {
			if byPredicate[s.Predicate] == "" {
				byPredicate[s.Predicate] = "p" + strconv.Itoa(len(byPredicate))
			}
			if surrogates == nil {
				surrogates = make(map[string]string)
			}
			ns, local = SurrogateNamespace, byPredicate[s.Predicate]
			surrogates[ns+local] = s.Predicate
		}
		p, seen := prefixes[ns]
		if !seen {
			p = "ns" + strconv.Itoa(len(nsOrder))
			prefixes[ns] = p
			nsOrder = append(nsOrder, ns)
		}
		qnames[i] = p + ":" + local
	}

	var subjects []string
	bySubject := make(map[string][]int)
	for i, s := range stmts {
		if _, ok := bySubject[s.Subject]; !ok {
			subjects = append(subjects, s.Subject)
		}
		bySubject[s.Subject] = append(bySubject[s.Subject], i)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<rdf:RDF xmlns:rdf="` + dossier.RDFNamespace + `"`)
	for _, ns := range nsOrder {
		buf.WriteString(" xmlns:" + prefixes[ns] + `="`)
		escape(&buf, ns)
		buf.WriteString(`"`)
	}
	buf.WriteString(">\n")

	for _, subj := range subjects {
		buf.WriteString(`  <rdf:Description rdf:about="`)
		escape(&buf, subj)
		buf.WriteString("\">\n")
		for _, i := range bySubject[subj] {
			s := stmts[i]
			buf.WriteString("    <" + qnames[i])
			if s.Literal {
				buf.WriteString(">")
				escape(&buf, s.Object)
				buf.WriteString("</" + qnames[i] + ">\n")
			} else {
				buf.WriteString(` rdf:resource="`)
				escape(&buf, s.Object)
				buf.WriteString("\"/>\n")
			}
		}
		buf.WriteString("  </rdf:Description>\n")
	}
	buf.WriteString("</rdf:RDF>\n")
	return buf.Bytes(), surrogates
}

// restorePredicates rewrites surrogate predicates to the IRIs they stand for,
// keeping triple order.
func restorePredicates(g *graph.Graph, surrogates map[string]string) *graph.Graph {
	out := graph.New()
	for _, t := range g.Triples() {
		if iri, ok := graph.IRIOf(t.Predicate); ok {
			if orig, ok := surrogates[iri]; ok {
				t.Predicate = quad.IRI(orig)
			}
		}
		out.Add(t)
	}
	return out
}

func escape(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}

// splitIRI splits an IRI into a namespace and the longest suffix that is a
// valid XML local name.
func splitIRI(iri string) (ns, local string, ok bool) {
	runes := []rune(iri)
	start := len(runes)
	for start > 0 && isNameChar(runes[start-1]) {
		start--
	}
	for start < len(runes) && !isNameStart(runes[start]) {
		start++
	}
	if start >= len(runes) || start == 0 {
		return "", "", false
	}
	return string(runes[:start]), string(runes[start:]), true
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isNameChar(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r) || r == '-' || r == '.'
}
