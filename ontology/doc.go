// Package ontology loads the dossier ontology and exposes it as an immutable,
// indexed snapshot.
//
// A Snapshot is never mutated after construction, so any number of goroutines
// may query it. Reloading builds a new Snapshot and swaps it into the Loader;
// readers holding the old one keep a consistent view.
package ontology
