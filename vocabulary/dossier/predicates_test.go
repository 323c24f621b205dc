package dossier

import (
	"testing"

	"github.com/c360studio/semstreams/vocabulary"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		RecordTitle,
		RecordIdentifier,
		RecordModified,
		BlockType,
		BlockContains,
	}

	for _, pred := range predicates {
		t.Run(pred, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(pred)
			if meta == nil || meta.Description == "" {
				t.Errorf("predicate %s not registered or missing description", pred)
			}
		})
	}
}

func TestIRI(t *testing.T) {
	tests := []struct {
		predicate string
		want      string
	}{
		{RecordTitle, DcTitle},
		{BlockType, RDFType},
		{BlockContains, PropContains},
		{"dossier.unknown.thing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.predicate, func(t *testing.T) {
			if got := IRI(tt.predicate); got != tt.want {
				t.Errorf("IRI(%q) = %q, want %q", tt.predicate, got, tt.want)
			}
		})
	}
}
