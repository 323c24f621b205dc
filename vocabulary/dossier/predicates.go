package dossier

import "github.com/c360studio/semstreams/vocabulary"

// Record predicates describe the dossier root block.
const (
	// RecordTitle is the human readable dossier name.
	// Bound to the root block's ID field.
	RecordTitle = "dossier.record.title"

	// RecordIdentifier is the dossier's resource IRI.
	RecordIdentifier = "dossier.record.identifier"

	// RecordModified is the last save time of the dossier graph.
	RecordModified = "dossier.record.modified"
)

// Block predicates describe nested block instances.
const (
	// BlockType is the ontology class of a block instance.
	BlockType = "dossier.block.type"

	// BlockContains links a block instance to a nested one.
	BlockContains = "dossier.block.contains"
)

func init() {
	vocabulary.Register(RecordTitle,
		vocabulary.WithDescription("Dossier name as entered in the root block"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DcTitle))

	vocabulary.Register(RecordIdentifier,
		vocabulary.WithDescription("Resource IRI of the dossier"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DcIdentifier))

	vocabulary.Register(RecordModified,
		vocabulary.WithDescription("Time the dossier graph was last committed"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(DcModified))

	vocabulary.Register(BlockType,
		vocabulary.WithDescription("Ontology class of a block instance"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(RDFType))

	vocabulary.Register(BlockContains,
		vocabulary.WithDescription("Nested block instance"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(PropContains))
}

// IRI returns the standard IRI registered for a dotted predicate, or "" when
// the predicate is unknown.
func IRI(predicate string) string {
	meta := vocabulary.GetPredicateMetadata(predicate)
	if meta == nil {
		return ""
	}
	return meta.StandardIRI
}
