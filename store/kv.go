package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the KV bucket holding named graphs.
const DefaultBucket = "SEMDOSSIER_GRAPHS"

// KVStore keeps each named graph as one JSON value in a JetStream KV bucket.
// A single Put replaces the whole graph, so readers never see a partial one.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore opens the bucket, creating it when missing.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string) (*KVStore, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucket, err)
	}
	return &KVStore{kv: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}

	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Semdossier named graphs",
		History:     5,
	})
}

// graphKey encodes a graph IRI into a valid KV key.
func graphKey(name string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(name))
}

func graphName(key string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("decode key %s: %w", key, err)
	}
	return string(b), nil
}

// ReplaceGraph stores g under name in a single put.
func (s *KVStore) ReplaceGraph(ctx context.Context, name string, g *graph.Graph) error {
	if err := checkGraph(g); err != nil {
		return &CommitError{Graph: name, Err: err}
	}
	data, err := json.Marshal(toRecords(g))
	if err != nil {
		return &CommitError{Graph: name, Err: fmt.Errorf("%w: marshal: %w", ErrInvalidGraph, err)}
	}
	if _, err := s.kv.Put(ctx, graphKey(name), data); err != nil {
		return &CommitError{Graph: name, Err: fmt.Errorf("put: %w", err)}
	}
	return nil
}

// Graph loads the named graph.
func (s *KVStore) Graph(ctx context.Context, name string) (*graph.Graph, error) {
	entry, err := s.kv.Get(ctx, graphKey(name))
	if err != nil {
		if natsclient.IsKVNotFoundError(err) || errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrGraphNotFound
		}
		return nil, fmt.Errorf("get graph %s: %w", name, err)
	}

	var recs []record
	if err := json.Unmarshal(entry.Value(), &recs); err != nil {
		return nil, fmt.Errorf("unmarshal graph %s: %w", name, err)
	}
	if len(recs) == 0 {
		return nil, ErrGraphNotFound
	}
	return fromRecords(recs), nil
}

// DropGraph deletes the named graph.
func (s *KVStore) DropGraph(ctx context.Context, name string) error {
	if err := s.kv.Delete(ctx, graphKey(name)); err != nil && !natsclient.IsKVNotFoundError(err) {
		return fmt.Errorf("drop graph %s: %w", name, err)
	}
	return nil
}

// Graphs lists the stored graph names in lexical order.
func (s *KVStore) Graphs(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list graph keys: %w", err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name, err := graphName(key)
		if err != nil {
			continue // Skip keys written by other tools
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op; the NATS connection is owned by the caller.
func (s *KVStore) Close() error {
	return nil
}
