// Package store persists typed graphs as named graphs.
//
// A named graph is replaced as a whole on every commit. Backends implement
// Store so that a replacement is atomic: readers observe either the previous
// content or the new content, never a mix of both.
//
// Two backends are provided: SQLiteStore keeps quads in a single table and
// replaces a graph inside one transaction; KVStore keeps each graph as one
// value in a NATS JetStream key-value bucket. Committer adds per-graph write
// exclusion, retries and metrics on top of either backend.
package store
