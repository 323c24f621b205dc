package block

import (
	"strings"

	"github.com/c360studio/semdossier/vocabulary/dossier"
)

var numberRanges = map[string]bool{
	dossier.XSDInteger:     true,
	dossier.XSDInt:         true,
	dossier.XSDDouble:      true,
	dossier.XSDPositiveInt: true,
	dossier.XSDLong:        true,
	dossier.XSDFloat:       true,
}

// KindForRange maps the declared range of a property to a field kind.
// The checks run in a fixed priority order and the first match wins.
func KindForRange(rangeIRI string) FieldKind {
	switch {
	case rangeIRI == "":
		return FieldInput
	case rangeIRI == dossier.XSDDateTime:
		return FieldDate
	case rangeIRI == dossier.XSDBoolean:
		return FieldCheckbox
	case numberRanges[rangeIRI]:
		return FieldNumber
	case rangeIRI == dossier.XSDAnyURI:
		return FieldInput
	case strings.Contains(rangeIRI, "colour"):
		return FieldColour
	case strings.Contains(rangeIRI, "angle"):
		return FieldAngle
	case strings.Contains(rangeIRI, "dropdown"):
		return FieldDropdown
	default:
		return FieldInput
	}
}

// ConstraintsForRange returns the numeric constraints implied by a range.
// Dropdown options are resolved separately from the ontology.
func ConstraintsForRange(rangeIRI string) Constraints {
	switch rangeIRI {
	case dossier.XSDInteger, dossier.XSDInt, dossier.XSDLong:
		return Constraints{Precision: intPtr(1)}
	case dossier.XSDPositiveInt:
		return Constraints{Precision: intPtr(1), Min: intPtr(1)}
	default:
		return Constraints{}
	}
}
