// pkg/domain/database/database.go

// Package database defines the connection pool used by the
// connection_management and query_cache entries of the middleware stack.
package database

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=mocks/mock_database.go -package=mocks github.com/damianoneill/go-pipeline/pkg/domain/database Pool,Conn,Factory

// ErrNotConfigured is returned when a connection is requested but no
// database URL was configured.
var ErrNotConfigured = errors.New("database is not configured")

// Row is a single result row keyed by column name.
type Row = map[string]any

// Conn is a connection checked out of a Pool.
type Conn interface {
	// Exec runs a statement and returns the number of rows affected
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	Query(ctx context.Context, sql string, args ...any) ([]Row, error)

	// Release returns the connection to its pool
	Release()
}

// Pool hands out connections.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
	Close()
}

// Factory opens pools. An empty url yields a pool whose operations fail
// with ErrNotConfigured.
type Factory interface {
	NewPool(ctx context.Context, url string, maxConns int32) (Pool, error)
}
