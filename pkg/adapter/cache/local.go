package cache

import (
	"bytes"
	"context"
	"net/http"
	"sync"

	domaincache "github.com/damianoneill/go-pipeline/pkg/domain/cache"
	"github.com/damianoneill/go-pipeline/pkg/domain/pipeline"
)

type localKey struct{}

// localCache holds values read or written during a single request. A
// deleted key is kept with a nil value so the backing store is not consulted
// again. Callers always receive their own copy of a value.
type localCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newLocalCache() *localCache {
	return &localCache{entries: make(map[string][]byte)}
}

func (l *localCache) get(key string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.entries[key]
	return bytes.Clone(v), ok
}

func (l *localCache) set(key string, value []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = value
}

func (l *localCache) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.entries)
}

func localFrom(ctx context.Context) *localCache {
	lc, _ := ctx.Value(localKey{}).(*localCache)
	return lc
}

// WithLocalCache returns a context carrying a fresh local cache.
func WithLocalCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, localKey{}, newLocalCache())
}

// localCacheMiddleware scopes a local cache to each request.
type localCacheMiddleware struct{}

func (localCacheMiddleware) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := WithLocalCache(r.Context())
	defer localFrom(ctx).clear()
	next.ServeHTTP(w, r.WithContext(ctx))
}

var _ pipeline.Middleware = localCacheMiddleware{}

// localStrategy is embedded by stores that provide the local cache.
type localStrategy struct{}

func (localStrategy) Middleware() pipeline.Middleware {
	return localCacheMiddleware{}
}

// read consults the request's local cache before calling load, and
// remembers what load returned.
func (localStrategy) read(ctx context.Context, key string, load func() ([]byte, error)) ([]byte, error) {
	lc := localFrom(ctx)
	if lc != nil {
		if v, ok := lc.get(key); ok {
			if v == nil {
				return nil, domaincache.ErrMiss
			}
			return v, nil
		}
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	if lc != nil {
		lc.set(key, bytes.Clone(v))
	}
	return v, nil
}

func (localStrategy) write(ctx context.Context, key string, value []byte) {
	if lc := localFrom(ctx); lc != nil {
		lc.set(key, bytes.Clone(value))
	}
}

func (localStrategy) forget(ctx context.Context, key string) {
	if lc := localFrom(ctx); lc != nil {
		lc.set(key, nil)
	}
}

func (localStrategy) reset(ctx context.Context) {
	if lc := localFrom(ctx); lc != nil {
		lc.clear()
	}
}
