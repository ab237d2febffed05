package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeConfig struct {
	Kind     string
	Path     string
	MaxConns int
}

func withKind(kind string) Option[storeConfig] {
	return OptionFunc[storeConfig](func(c *storeConfig) error {
		if kind == "" {
			return errors.New("kind cannot be empty")
		}
		c.Kind = kind
		return nil
	})
}

func withPath(path string) Option[storeConfig] {
	return OptionFunc[storeConfig](func(c *storeConfig) error {
		c.Path = path
		return nil
	})
}

func withMaxConns(n int) Option[storeConfig] {
	return OptionFunc[storeConfig](func(c *storeConfig) error {
		if n <= 0 {
			return errors.New("max conns must be positive")
		}
		c.MaxConns = n
		return nil
	})
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option[storeConfig]
		want    storeConfig
		wantErr string
	}{
		{
			name: "no options keeps defaults",
			want: storeConfig{Kind: "file_store", MaxConns: 4},
		},
		{
			name: "applied in order",
			opts: []Option[storeConfig]{withKind("memory_store"), withKind("null_store"), withPath("tmp/cache")},
			want: storeConfig{Kind: "null_store", Path: "tmp/cache", MaxConns: 4},
		},
		{
			name: "nil entries skipped",
			opts: []Option[storeConfig]{nil, OptionFunc[storeConfig](nil), withMaxConns(8)},
			want: storeConfig{Kind: "file_store", MaxConns: 8},
		},
		{
			name:    "first error stops the rest",
			opts:    []Option[storeConfig]{withPath("a"), withMaxConns(0), withPath("b")},
			want:    storeConfig{Kind: "file_store", Path: "a", MaxConns: 4},
			wantErr: "max conns must be positive",
		},
		{
			name:    "empty kind rejected",
			opts:    []Option[storeConfig]{withKind("")},
			want:    storeConfig{Kind: "file_store", MaxConns: 4},
			wantErr: "kind cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := storeConfig{Kind: "file_store", MaxConns: 4}
			err := Apply(&cfg, tt.opts...)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestOptionFunc_ApplyOption(t *testing.T) {
	var nilFn OptionFunc[storeConfig]
	cfg := storeConfig{Kind: "memory_store"}
	require.NoError(t, nilFn.ApplyOption(&cfg))
	assert.Equal(t, "memory_store", cfg.Kind)

	require.NoError(t, withPath("public").ApplyOption(&cfg))
	assert.Equal(t, "public", cfg.Path)
}
