package database

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync"

	"github.com/damianoneill/go-pipeline/pkg/domain/database"
	"github.com/damianoneill/go-pipeline/pkg/domain/pipeline"
)

type requestConnKey struct{}

// RequestConn is the database handle for one request. The underlying
// connection is acquired on first use and released when the request ends.
type RequestConn struct {
	pool database.Pool

	mu      sync.Mutex
	conn    database.Conn
	caching bool
	cache   map[string][]database.Row
}

// FromContext returns the request's connection handle, or nil outside
// connection_management.
func FromContext(ctx context.Context) *RequestConn {
	rc, _ := ctx.Value(requestConnKey{}).(*RequestConn)
	return rc
}

func (rc *RequestConn) acquire(ctx context.Context) (database.Conn, error) {
	if rc.conn != nil {
		return rc.conn, nil
	}
	conn, err := rc.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	rc.conn = conn
	return conn, nil
}

// Exec runs a statement. Any write empties the query cache.
func (rc *RequestConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	conn, err := rc.acquire(ctx)
	if err != nil {
		return 0, err
	}
	if rc.caching {
		clear(rc.cache)
	}
	return conn.Exec(ctx, sql, args...)
}

// Query runs a query, answering repeated identical queries from the cache
// while query_cache is active.
func (rc *RequestConn) Query(ctx context.Context, sql string, args ...any) ([]database.Row, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	key := cacheKey(sql, args)
	if rc.caching {
		if rows, ok := rc.cache[key]; ok {
			return cloneRows(rows), nil
		}
	}

	conn, err := rc.acquire(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if rc.caching {
		rc.cache[key] = cloneRows(rows)
	}
	return rows, nil
}

func cloneRows(rows []database.Row) []database.Row {
	if rows == nil {
		return nil
	}
	out := make([]database.Row, len(rows))
	for i, row := range rows {
		out[i] = maps.Clone(row)
	}
	return out
}

func (rc *RequestConn) enableCache() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.caching = true
	rc.cache = make(map[string][]database.Row)
}

func (rc *RequestConn) disableCache() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.caching = false
	rc.cache = nil
}

func (rc *RequestConn) release() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.conn != nil {
		rc.conn.Release()
		rc.conn = nil
	}
}

func cacheKey(sql string, args []any) string {
	var b strings.Builder
	b.WriteString(sql)
	for _, a := range args {
		fmt.Fprintf(&b, "\x00%T:%v", a, a)
	}
	return b.String()
}

// ConnectionManagement gives each request a RequestConn and returns its
// connection to the pool when the request completes, even if a later
// middleware panics.
type ConnectionManagement struct {
	Pool database.Pool
}

func (m *ConnectionManagement) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rc := &RequestConn{pool: m.Pool}
	defer rc.release()

	ctx := context.WithValue(r.Context(), requestConnKey{}, rc)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// QueryCache caches query results for the rest of the request. It needs
// connection_management ahead of it and passes through otherwise.
type QueryCache struct{}

func (QueryCache) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rc := FromContext(r.Context())
	if rc == nil {
		next.ServeHTTP(w, r)
		return
	}
	rc.enableCache()
	defer rc.disableCache()
	next.ServeHTTP(w, r)
}

var (
	_ pipeline.Middleware = (*ConnectionManagement)(nil)
	_ pipeline.Middleware = QueryCache{}
)
