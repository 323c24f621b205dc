// Package graph provides the typed triple model shared by the ontology,
// the document transformer, the reconciler and the graph stores.
//
// Terms are cayleygraph/quad values. A Graph is an insertion-ordered set of
// triples: adding a triple that is already present is a no-op, so decoding the
// same statement twice never duplicates it.
package graph
