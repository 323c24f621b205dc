package dossierwriter

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/c360studio/semstreams/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	assert.Error(t, Register(nil, &fakeSaver{}))

	registry := component.NewRegistry(component.WithLogger(slog.Default()))
	require.NoError(t, Register(registry, &fakeSaver{}))

	info, ok := registry.ListAvailable()["dossier-writer"]
	require.True(t, ok)
	assert.Equal(t, "processor", info.Type)
	assert.Equal(t, "dossier", info.Domain)

	schema, err := registry.GetComponentSchema("dossier-writer")
	require.NoError(t, err)
	assert.Contains(t, schema.Properties, "consumer_name")

	factory, ok := registry.GetFactory("dossier-writer")
	require.True(t, ok)
	d, err := factory(json.RawMessage(`{"consumer_name":"writer-3"}`), component.Dependencies{
		Logger:          slog.Default(),
		PayloadRegistry: newPayloads(t),
	})
	require.NoError(t, err)
	lc, ok := component.AsLifecycleComponent(d)
	require.True(t, ok)
	assert.Equal(t, "dossier-writer", lc.Meta().Name)

	assert.Error(t, Register(registry, &fakeSaver{}), "factory names are unique")
}
