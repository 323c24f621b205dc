// Package document parses the block editor's XML documents and turns them
// into candidate RDF graphs.
//
// Transformation is purely structural and driven by a declarative Mapping:
// every block becomes a typed resource, every field a literal statement and
// every nested block a linked resource. The document is first rendered as
// RDF/XML and then decoded, so the output is exactly what an RDF/XML
// consumer would read. Datatypes are never inferred here.
package document
