// Package dbexec abstracts SQL execution behind small interfaces so the
// query engine can be constructed with a real pool, an instrumented wrapper,
// or a test double.
package dbexec

import (
	"context"
	"database/sql"
)

// Rows is the subset of sql.Rows the query engine consumes.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// QueryExecutor runs read queries against the store. The engine receives one
// at construction time; it never opens connections itself.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

// PoolExecutor executes queries against a *sql.DB connection pool.
type PoolExecutor struct {
	db *sql.DB
}

// NewPoolExecutor wraps an externally-managed connection pool.
func NewPoolExecutor(db *sql.DB) *PoolExecutor {
	return &PoolExecutor{db: db}
}

func (e *PoolExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.QueryContext(ctx, query, args...)
}
