package cache

import (
	"context"
	"time"

	domaincache "github.com/damianoneill/go-pipeline/pkg/domain/cache"
)

var (
	_ domaincache.Store              = (*NullStore)(nil)
	_ domaincache.MiddlewareProvider = (*NullStore)(nil)
)

// NullStore stores nothing beyond the current request's local cache.
type NullStore struct {
	localStrategy
}

func NewNullStore() *NullStore {
	return &NullStore{}
}

func (s *NullStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.read(ctx, key, func() ([]byte, error) {
		return nil, domaincache.ErrMiss
	})
}

func (s *NullStore) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	s.write(ctx, key, value)
	return nil
}

func (s *NullStore) Delete(ctx context.Context, key string) error {
	s.forget(ctx, key)
	return nil
}

func (s *NullStore) Clear(ctx context.Context) error {
	s.reset(ctx)
	return nil
}
