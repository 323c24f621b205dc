// Package dossier holds the persisted editor records: dossiers and the
// domain concepts users compose from report blocks.
//
// Records are plain CRUD data. A dossier's editor document is stored in
// normalized form (see document.Normalize); its typed graph lives in the
// named graph returned by GraphURI.
package dossier
