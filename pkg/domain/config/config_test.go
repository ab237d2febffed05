package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-pipeline/pkg/domain/options"
)

func TestStoreOptions(t *testing.T) {
	defaults := DefaultSettings()

	var o StoreOptions
	require.NoError(t, options.Apply(&o,
		WithConfigFile("config/pipeline.yaml"),
		WithEnvPrefix("PIPELINE"),
		WithDefaults(defaults),
	))

	assert.Equal(t, "config/pipeline.yaml", o.ConfigFile)
	assert.Equal(t, "PIPELINE", o.EnvPrefix)
	assert.Equal(t, "file_store", o.Defaults["cache_store"])
}

func TestStoreOptions_LastWins(t *testing.T) {
	var o StoreOptions
	require.NoError(t, options.Apply(&o,
		WithEnvPrefix("APP"),
		WithEnvPrefix(""),
		WithDefaults(map[string]interface{}{"static_root": "public"}),
		WithDefaults(nil),
	))

	assert.Empty(t, o.EnvPrefix)
	assert.Nil(t, o.Defaults)
}
