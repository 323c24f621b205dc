// Package dossier provides the IRIs and vocabulary predicates of the dossier
// ontology.
//
// The ontology declares report block types as subclasses of ClassReport and
// attaches attributes to them through PropAttribute and PropAttributeGroup.
// Attribute nodes carry an ordering key (PropOrder) and the data property they
// edit (PropPredicate).
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/semdossier/vocabulary/dossier"
package dossier
