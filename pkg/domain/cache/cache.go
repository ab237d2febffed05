// pkg/domain/cache/cache.go

// Package cache defines the application cache store and the per-request
// local cache some stores put in front of themselves.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/damianoneill/go-pipeline/pkg/domain/options"
	"github.com/damianoneill/go-pipeline/pkg/domain/pipeline"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key/value cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl uses the store default; a
	// negative ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// MiddlewareProvider is implemented by stores that keep a local cache for
// the duration of a request. The returned middleware installs and discards
// that local cache; the boot sequence adds it to the stack as local_cache.
type MiddlewareProvider interface {
	Middleware() pipeline.Middleware
}

// Options configures a store.
type Options struct {
	// Kind is one of memory_store, file_store or null_store
	Kind string

	// Path is the directory used by the file store
	Path string

	// DefaultTTL applies when Set is called with a zero ttl. Zero means
	// entries do not expire.
	DefaultTTL time.Duration
}

// Option is a function that modifies Options
type Option = options.Option[Options]

// WithKind selects the store implementation.
func WithKind(kind string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Kind = kind
		return nil
	})
}

// WithPath sets the file store directory.
func WithPath(path string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Path = path
		return nil
	})
}

// WithDefaultTTL sets the expiry used when Set is given a zero ttl.
func WithDefaultTTL(ttl time.Duration) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.DefaultTTL = ttl
		return nil
	})
}

// Factory creates stores.
type Factory interface {
	NewStore(opts ...Option) (Store, error)
}
