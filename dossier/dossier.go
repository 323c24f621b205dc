package dossier

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	vocab "github.com/c360studio/semdossier/vocabulary/dossier"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Dossier is one editable document.
type Dossier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	XML  string `json:"xml,omitempty"`
}

// ConceptType classifies a domain concept.
type ConceptType string

// Concept types.
const (
	ConceptReport    ConceptType = "report"
	ConceptComponent ConceptType = "component"
)

// ParseConceptType parses a concept type, defaulting to component.
func ParseConceptType(s string) (ConceptType, error) {
	switch ConceptType(strings.ToLower(strings.TrimSpace(s))) {
	case ConceptReport:
		return ConceptReport, nil
	case ConceptComponent, "":
		return ConceptComponent, nil
	default:
		return "", fmt.Errorf("unknown concept type %q", s)
	}
}

// DomainConcept is a user-defined block built from existing blocks.
type DomainConcept struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Type ConceptType `json:"type"`
	URL  string      `json:"url,omitempty"`
	// XML holds the field values chosen in the workspace.
	XML string `json:"xml,omitempty"`
	// Script is the editor code that defines the block.
	Script string `json:"script,omitempty"`
}

// GraphURI returns the named-graph IRI of dossier id under base.
func GraphURI(base string, id int64) string {
	return strings.TrimRight(base, "/") + vocab.GraphPath + strconv.FormatInt(id, 10)
}

// DefaultXML returns the editor document for a dossier that has none yet:
// a single fixed root block carrying the dossier name and graph IRI.
func DefaultXML(d *Dossier, base string) string {
	var b strings.Builder
	b.WriteString(`<xml><block type="OPINION" id="`)
	b.WriteString(uuid.NewString())
	b.WriteString(`" deletable="false" collapse="true" movable="false"><field name="ID">`)
	b.WriteString(escapeText(d.Name))
	b.WriteString(`</field><field name="URL">`)
	b.WriteString(escapeText(GraphURI(base, d.ID)))
	b.WriteString(`</field></block></xml>`)
	return b.String()
}

// DefaultConceptXML is the editor document of a domain concept that has none yet.
const DefaultConceptXML = `<xml><block type="DOMAINCONCEPT" deletable="false" movable="false"></block></xml>`

// NormalizeScript flattens a block script to one line and swaps single
// quotes for double quotes, the form the editor expects when evaluating it.
func NormalizeScript(script string) string {
	script = strings.ReplaceAll(script, "\r", "")
	script = strings.ReplaceAll(script, "\n", "")
	return strings.ReplaceAll(script, "'", `"`)
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
