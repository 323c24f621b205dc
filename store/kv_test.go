package store

import (
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdossier/graph"
)

func TestGraphKey(t *testing.T) {
	key := graphKey(testGraph)
	assert.NotContains(t, key, "/")
	assert.NotContains(t, key, ":")

	name, err := graphName(key)
	require.NoError(t, err)
	assert.Equal(t, testGraph, name)

	_, err = graphName("not base64!")
	assert.Error(t, err)
}

func TestCheckGraph(t *testing.T) {
	assert.NoError(t, checkGraph(sampleGraph()))

	bad := []graph.Triple{
		{Subject: quad.String("s"), Predicate: quad.IRI("p"), Object: quad.String("o")},
		{Subject: quad.IRI("s"), Predicate: quad.BNode("p"), Object: quad.String("o")},
		{Subject: quad.IRI("s"), Predicate: quad.IRI("p")},
	}
	for _, tr := range bad {
		assert.ErrorIs(t, checkGraph(graph.FromTriples([]graph.Triple{tr})), ErrInvalidGraph, tr.Key())
	}
}
