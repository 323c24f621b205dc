// Package pipeline ties the palette and the write path together.
//
// Reads answer palette questions from the block catalog. A save runs the
// edited document through parsing, validation, structural transformation,
// literal reconciliation and the named-graph commit, then stores the
// normalized document with its dossier record. Any failure before the commit
// leaves the stored graph untouched; a failed commit is reported, never
// hidden. A record inserted by a save that fails is removed again.
package pipeline
