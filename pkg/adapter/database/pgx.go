// Package database provides the pgx connection pool and the request-scoped
// connection handling middleware.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/damianoneill/go-pipeline/pkg/domain/database"
)

var (
	_ database.Pool    = (*PgxPool)(nil)
	_ database.Factory = (*Factory)(nil)
)

// Factory opens pgx pools.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) NewPool(ctx context.Context, url string, maxConns int32) (database.Pool, error) {
	if url == "" {
		return Unconfigured{}, nil
	}
	return NewPgxPool(ctx, url, maxConns)
}

// PgxPool adapts pgxpool. Connections are opened lazily on first Acquire.
type PgxPool struct {
	pool *pgxpool.Pool
}

func NewPgxPool(ctx context.Context, url string, maxConns int32) (*PgxPool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	return &PgxPool{pool: pool}, nil
}

func (p *PgxPool) Acquire(ctx context.Context) (database.Conn, error) {
	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	return &pgxConn{conn: c}, nil
}

func (p *PgxPool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PgxPool) Close() {
	p.pool.Close()
}

type pgxConn struct {
	conn *pgxpool.Conn
}

func (c *pgxConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgxConn) Query(ctx context.Context, sql string, args ...any) ([]database.Row, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToMap)
}

func (c *pgxConn) Release() {
	c.conn.Release()
}

// Unconfigured is the pool used when the database framework is enabled
// without a URL. Requests that never touch the database still succeed.
type Unconfigured struct{}

func (Unconfigured) Acquire(context.Context) (database.Conn, error) {
	return nil, database.ErrNotConfigured
}

func (Unconfigured) Ping(context.Context) error {
	return database.ErrNotConfigured
}

func (Unconfigured) Close() {}
