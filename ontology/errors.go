package ontology

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOntologyLoad is returned when an ontology source is missing or cannot
	// be parsed, and when no snapshot has been loaded yet.
	ErrOntologyLoad = errors.New("ontology load failed")

	// ErrMalformedOntology is returned when the ontology is structurally
	// invalid, for example when the class hierarchy cycles.
	ErrMalformedOntology = errors.New("malformed ontology")
)

// CycleError reports a revisited node during a hierarchy walk.
type CycleError struct {
	// Relation is the IRI of the relation being followed.
	Relation string
	// Path lists the visited nodes, ending with the revisited one.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle following %s: %s", e.Relation, strings.Join(e.Path, " -> "))
}

// Is makes a CycleError match ErrMalformedOntology.
func (e *CycleError) Is(target error) bool {
	return target == ErrMalformedOntology
}
