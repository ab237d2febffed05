package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainconfig "github.com/damianoneill/go-pipeline/pkg/domain/config"
)

func TestFactory_NewStore_WithFile(t *testing.T) {
	path := writeConfig(t, `
static_root: public
allow_concurrency: true
database:
  max_conns: 8
server:
  http:
    read_timeout: 5s
observability:
  tracing_sample_rate: 0.25
  silenced_paths:
    - /internal/*
    - /metrics
`)

	store, err := NewFactory().NewStore(domainconfig.WithConfigFile(path))
	require.NoError(t, err)

	root, ok := store.GetString("static_root")
	assert.True(t, ok)
	assert.Equal(t, "public", root)

	concurrent, ok := store.GetBool("allow_concurrency")
	assert.True(t, ok)
	assert.True(t, concurrent)

	conns, ok := store.GetInt("database.max_conns")
	assert.True(t, ok)
	assert.Equal(t, 8, conns)

	timeout, ok := store.GetDuration("server.http.read_timeout")
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, timeout)

	rate, ok := store.GetFloat64("observability.tracing_sample_rate")
	assert.True(t, ok)
	assert.Equal(t, 0.25, rate)

	paths, ok := store.GetStringSlice("observability.silenced_paths")
	assert.True(t, ok)
	assert.Equal(t, []string{"/internal/*", "/metrics"}, paths)

	_, ok = store.GetString("session.key")
	assert.False(t, ok)
}

func TestFactory_NewStore_MissingFile(t *testing.T) {
	_, err := NewFactory().NewStore(domainconfig.WithConfigFile("/nonexistent/pipeline.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestFactory_NewStore_WithEnv(t *testing.T) {
	t.Setenv("PIPELINE_TEST_CACHE_STORE", "null_store")
	t.Setenv("PIPELINE_TEST_ACTION_DISPATCH_X_SENDFILE_HEADER", "X-Sendfile")

	store, err := NewFactory().NewStore(
		domainconfig.WithEnvPrefix("PIPELINE_TEST"),
		domainconfig.WithDefaults(map[string]interface{}{
			"cache_store":                       "file_store",
			"action_dispatch.x_sendfile_header": "",
		}),
	)
	require.NoError(t, err)

	kind, _ := store.GetString("cache_store")
	assert.Equal(t, "null_store", kind)

	header, _ := store.GetString("action_dispatch.x_sendfile_header")
	assert.Equal(t, "X-Sendfile", header)
}

func TestFactory_NewStore_SetOverridesDefault(t *testing.T) {
	store, err := NewFactory().NewStore(domainconfig.WithDefaults(map[string]interface{}{
		"session.key": "_app_session",
	}))
	require.NoError(t, err)
	assert.True(t, store.IsSet("session.key"))

	require.NoError(t, store.Set("session.key", "_shop_session"))
	key, ok := store.GetString("session.key")
	assert.True(t, ok)
	assert.Equal(t, "_shop_session", key)
}

func TestStore_UnmarshalKey(t *testing.T) {
	path := writeConfig(t, `
action_dispatch:
  show_exceptions: false
  best_standards_support: builtin
`)

	store, err := NewFactory().NewStore(domainconfig.WithConfigFile(path))
	require.NoError(t, err)

	var dispatch struct {
		ShowExceptions       bool   `mapstructure:"show_exceptions"`
		BestStandardsSupport string `mapstructure:"best_standards_support"`
	}
	require.NoError(t, store.UnmarshalKey("action_dispatch", &dispatch))

	assert.False(t, dispatch.ShowExceptions)
	assert.Equal(t, "builtin", dispatch.BestStandardsSupport)
}
