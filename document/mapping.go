package document

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"
	"unicode"

	"github.com/c360studio/semdossier/vocabulary/dossier"
	"gopkg.in/yaml.v3"
)

//go:embed mapping.yaml
var defaultMapping []byte

// Mapping is the declarative structural mapping from documents to triples.
type Mapping struct {
	Vocabulary    string            `yaml:"vocabulary"`
	RootType      string            `yaml:"root_type"`
	SubjectField  string            `yaml:"subject_field"`
	ChildSubject  string            `yaml:"child_subject"`
	TypePredicate string            `yaml:"type_predicate"`
	LinkPredicate string            `yaml:"link_predicate"`
	Types         map[string]string `yaml:"types"`
	Fields        map[string]string `yaml:"fields"`
	SkipFields    []string          `yaml:"skip_fields"`
	SkipEmpty     bool              `yaml:"skip_empty"`
}

// DefaultMapping returns the built-in mapping.
func DefaultMapping() *Mapping {
	m, err := ParseMapping(defaultMapping)
	if err != nil {
		panic("invalid built-in document mapping: " + err.Error())
	}
	return m
}

// ParseMapping decodes a mapping and validates it.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadMapping reads a mapping file. Keys missing from the file keep their
// built-in values; types and fields are merged.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	var overlay Mapping
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	m := DefaultMapping()
	m.merge(&overlay)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	return m, nil
}

func (m *Mapping) merge(o *Mapping) {
	if o.Vocabulary != "" {
		m.Vocabulary = o.Vocabulary
	}
	if o.RootType != "" {
		m.RootType = o.RootType
	}
	if o.SubjectField != "" {
		m.SubjectField = o.SubjectField
	}
	if o.ChildSubject != "" {
		m.ChildSubject = o.ChildSubject
	}
	if o.TypePredicate != "" {
		m.TypePredicate = o.TypePredicate
	}
	if o.LinkPredicate != "" {
		m.LinkPredicate = o.LinkPredicate
	}
	for k, v := range o.Types {
		m.Types[k] = v
	}
	for k, v := range o.Fields {
		m.Fields[k] = v
	}
	if len(o.SkipFields) > 0 {
		m.SkipFields = o.SkipFields
	}
	if o.SkipEmpty {
		m.SkipEmpty = true
	}
}

// Validate checks that the mapping can mint subjects and predicates.
func (m *Mapping) Validate() error {
	if !isAbsoluteIRI(m.Vocabulary) {
		return fmt.Errorf("mapping vocabulary must be an absolute IRI, got %q", m.Vocabulary)
	}
	if m.SubjectField == "" {
		return fmt.Errorf("mapping subject_field is required")
	}
	if !strings.Contains(m.ChildSubject, "{root}") || !strings.Contains(m.ChildSubject, "{id}") {
		return fmt.Errorf("mapping child_subject must contain {root} and {id}, got %q", m.ChildSubject)
	}
	if m.TypePredicate == "" || m.LinkPredicate == "" {
		return fmt.Errorf("mapping type_predicate and link_predicate are required")
	}
	if m.Types == nil {
		m.Types = make(map[string]string)
	}
	if m.Fields == nil {
		m.Fields = make(map[string]string)
	}
	return nil
}

func isAbsoluteIRI(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "urn:")
}

// resolve turns a mapping term into an IRI.
func (m *Mapping) resolve(term string) string {
	if isAbsoluteIRI(term) {
		return term
	}
	if iri := dossier.IRI(term); iri != "" {
		return iri
	}
	return m.Vocabulary + localName(term)
}

// ClassFor returns the class IRI of a block type.
func (m *Mapping) ClassFor(blockType string) string {
	if c, ok := m.Types[blockType]; ok {
		return m.resolve(c)
	}
	if isAbsoluteIRI(blockType) {
		return escapeIRI(blockType)
	}
	return m.Vocabulary + localName(blockType)
}

// PredicateFor returns the predicate IRI of a field. Unknown names pass
// through: absolute IRIs as-is, anything else under the vocabulary.
func (m *Mapping) PredicateFor(field string) string {
	if p, ok := m.Fields[field]; ok {
		return m.resolve(p)
	}
	if isAbsoluteIRI(field) {
		return field
	}
	return m.Vocabulary + localName(field)
}

// TypeIRI returns the IRI of the type predicate.
func (m *Mapping) TypeIRI() string {
	return m.resolve(m.TypePredicate)
}

// LinkIRI returns the IRI of the nesting predicate.
func (m *Mapping) LinkIRI() string {
	return m.resolve(m.LinkPredicate)
}

// Skip reports whether a field is left out of the graph.
func (m *Mapping) Skip(field string) bool {
	if field == m.SubjectField {
		return true
	}
	for _, f := range m.SkipFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsRootField reports whether the mapping itself defines field for the
// root block.
func (m *Mapping) IsRootField(field string) bool {
	_, ok := m.Fields[field]
	return ok || m.Skip(field)
}

// ChildSubjectFor mints the subject of a nested block.
func (m *Mapping) ChildSubjectFor(root, id string) string {
	s := strings.ReplaceAll(m.ChildSubject, "{root}", root)
	return strings.ReplaceAll(s, "{id}", url.PathEscape(id))
}

// localName makes s usable as the local part of an RDF/XML element name.
func localName(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r) || r == '-' || r == '.':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// escapeIRI percent-encodes characters that may not appear in an IRI.
func escapeIRI(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r <= 0x20, strings.ContainsRune("<>\"{}|\\^`", r):
			fmt.Fprintf(&b, "%%%02X", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
