//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdossier/graph"
	"github.com/c360studio/semdossier/vocabulary/dossier"
)

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	tc := natsclient.NewTestClient(t, natsclient.WithJetStream())
	js, err := tc.Client.JetStream()
	require.NoError(t, err)

	s, err := NewKVStore(context.Background(), js, "TEST_GRAPHS")
	require.NoError(t, err)
	return s
}

func TestKVStore_ReplaceAndRead(t *testing.T) {
	ctx := context.Background()
	s := newTestKVStore(t)

	g := sampleGraph()
	require.NoError(t, s.ReplaceGraph(ctx, testGraph, g))

	got, err := s.Graph(ctx, testGraph)
	require.NoError(t, err)
	assert.Equal(t, g.Triples(), got.Triples())

	names, err := s.Graphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testGraph}, names)
}

func TestKVStore_InvalidGraphKeepsPriorContent(t *testing.T) {
	ctx := context.Background()
	s := newTestKVStore(t)
	require.NoError(t, s.ReplaceGraph(ctx, testGraph, sampleGraph()))

	bad := graph.FromTriples([]graph.Triple{
		{Subject: quad.String("literal"), Predicate: quad.IRI(dossier.DcTitle), Object: quad.String("x")},
	})
	err := s.ReplaceGraph(ctx, testGraph, bad)
	assert.ErrorIs(t, err, ErrCommit)

	got, err := s.Graph(ctx, testGraph)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len())
}

func TestKVStore_DropAndMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestKVStore(t)

	_, err := s.Graph(ctx, testGraph)
	assert.ErrorIs(t, err, ErrGraphNotFound)

	names, err := s.Graphs(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.ReplaceGraph(ctx, testGraph, sampleGraph()))
	require.NoError(t, s.DropGraph(ctx, testGraph))

	_, err = s.Graph(ctx, testGraph)
	assert.ErrorIs(t, err, ErrGraphNotFound)
}
