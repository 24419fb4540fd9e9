// Package queryengine implements the generic list-query contract shared by
// every domain resolver: declarative filters, deterministic sorts, keyset
// cursor pagination, tenant isolation and the Relay connection shape. The
// engine is stateless per call; it holds only its injected dependencies.
package queryengine

import (
	"context"
	"log/slog"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"

	"bizql/internal/authctx"
	"bizql/internal/dbexec"
	"bizql/internal/entity"
	"bizql/internal/sqlutil"
)

// Metrics receives one observation per store query the engine issues.
// Implemented by the observability package; nil disables recording.
type Metrics interface {
	RecordQuery(ctx context.Context, entityName, op string, elapsed time.Duration, err error)
}

// Engine resolves list and single-row queries for registered entities.
type Engine struct {
	exec    dbexec.QueryExecutor
	logger  *slog.Logger
	metrics Metrics
	limits  PageLimits
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for query debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the query metrics sink.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPageLimits overrides the default and maximum window sizes.
func WithPageLimits(l PageLimits) Option {
	return func(e *Engine) { e.limits = l }
}

// NewEngine builds an engine around an injected query executor. The executor
// owns connection pooling and timeouts; the engine never opens connections.
func NewEngine(exec dbexec.QueryExecutor, opts ...Option) *Engine {
	e := &Engine{exec: exec, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// authorize enforces the per-request preconditions: an authenticated caller
// with a tenant id and, when the entity demands one, the required
// permission. It runs before any store access and never degrades to an
// empty result.
func (eng *Engine) authorize(ctx context.Context, e *entity.Entity) (authctx.Context, error) {
	ac := authctx.FromContext(ctx)
	if !ac.Authenticated || ac.TenantID == "" {
		return ac, ErrUnauthenticated
	}
	if !ac.HasPermission(e.RequiredPermission) {
		return ac, &PermissionError{Entity: e.Name, Permission: e.RequiredPermission}
	}
	return ac, nil
}

// tenantScope is the mandatory predicate restricting a query to the
// caller's tenant. It is always the first clause and caller filters cannot
// override it.
func tenantScope(e *entity.Entity, ac authctx.Context) sq.Sqlizer {
	return sq.Eq{sqlutil.Qualify(e.Table, e.TenantColumn): ac.TenantID}
}

// baseScopeClauses renders the resolver-supplied trusted predicates in a
// deterministic column order.
func baseScopeClauses(e *entity.Entity, base BaseScope) []sq.Sqlizer {
	if len(base) == 0 {
		return nil
	}
	cols := make([]string, 0, len(base))
	for col := range base {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	clauses := make([]sq.Sqlizer, 0, len(cols))
	for _, col := range cols {
		clauses = append(clauses, sq.Eq{sqlutil.Qualify(e.Table, col): base[col]})
	}
	return clauses
}

func (eng *Engine) runQuery(ctx context.Context, e *entity.Entity, op string, builder sq.SelectBuilder) (dbexec.Rows, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, &StoreError{Op: op, Entity: e.Name, Err: err}
	}
	eng.logger.DebugContext(ctx, "executing query", "entity", e.Name, "op", op, "sql", query)

	start := time.Now()
	rows, err := eng.exec.QueryContext(ctx, query, args...)
	if eng.metrics != nil {
		eng.metrics.RecordQuery(ctx, e.Name, op, time.Since(start), err)
	}
	if err != nil {
		return nil, &StoreError{Op: op, Entity: e.Name, Err: err}
	}
	return rows, nil
}
