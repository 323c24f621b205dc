// Package block derives the editor's block palette from the ontology.
//
// A Resolver answers palette questions against one immutable ontology
// snapshot: the report block types, the attribute-group children of a type
// and the ordered attributes of a type with their UI field kinds. A Catalog
// caches the aggregate views per snapshot and rebuilds them after a reload.
// A Session holds the block type a single editor has selected.
package block
