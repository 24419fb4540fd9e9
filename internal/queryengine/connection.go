package queryengine

import (
	"context"
	"sync"

	sq "github.com/Masterminds/squirrel"

	"bizql/internal/entity"
	"bizql/internal/sqlutil"
)

// Edge is one row of a connection with the cursor that resumes after it.
type Edge struct {
	Cursor string
	Node   map[string]interface{}
}

// PageInfo describes the window's position within the filtered set. Start
// and end cursors are nil when the window is empty.
type PageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     *string
	EndCursor       *string
}

// Connection is the paginated list result. TotalCount and Facets are
// resolved lazily: each runs its own query over the same compiled filter
// (never the same window) the first time it is asked for, and is memoized.
type Connection struct {
	Edges    []Edge
	PageInfo PageInfo

	totalOnce sync.Once
	total     int
	totalErr  error
	countFn   func(ctx context.Context) (int, error)

	facetOnce sync.Once
	facetList []FacetCount
	facetErr  error
	facetFn   func(ctx context.Context) ([]FacetCount, error)
}

// TotalCount returns the size of the filtered set, independent of the
// pagination window.
func (c *Connection) TotalCount(ctx context.Context) (int, error) {
	c.totalOnce.Do(func() {
		c.total, c.totalErr = c.countFn(ctx)
	})
	return c.total, c.totalErr
}

// Facets returns per-value counts for the entity's declared facet fields.
// Entities without facet fields get an empty list, never a missing field.
func (c *Connection) Facets(ctx context.Context) ([]FacetCount, error) {
	c.facetOnce.Do(func() {
		c.facetList, c.facetErr = c.facetFn(ctx)
	})
	return c.facetList, c.facetErr
}

// ResolveConnection runs the full list-query pipeline: precondition check,
// filter and sort compilation, cursor decode, windowed fetch with a one-row
// lookahead probe, and connection assembly.
func (eng *Engine) ResolveConnection(
	ctx context.Context,
	e *entity.Entity,
	base BaseScope,
	filters []FilterDescriptor,
	sorts []SortDescriptor,
	page PaginationRequest,
) (*Connection, error) {
	ac, err := eng.authorize(ctx, e)
	if err != nil {
		return nil, err
	}

	cs, err := compileSort(e, sorts)
	if err != nil {
		return nil, err
	}
	preds, err := compileFilters(e, filters)
	if err != nil {
		return nil, err
	}
	w, err := parseWindow(page, eng.limits)
	if err != nil {
		return nil, err
	}

	where := make([]sq.Sqlizer, 0, len(preds)+len(base)+1)
	where = append(where, tenantScope(e, ac))
	where = append(where, baseScopeClauses(e, base)...)
	where = append(where, preds...)

	builder := eng.selectEntity(e).
		OrderBy(cs.orderClauses(e.Table, w.backward)...).
		Limit(uint64(w.limit) + 1)
	for _, clause := range where {
		builder = builder.Where(clause)
	}
	if w.rawCursor != "" {
		pos, err := decodeSeek(e, cs, w.rawCursor)
		if err != nil {
			return nil, err
		}
		builder = builder.Where(seekCondition(e.Table, cs, pos, w.backward))
	}

	rows, err := eng.runQuery(ctx, e, "list", builder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fetched, err := scanEntityRows(rows, e.Fields)
	if err != nil {
		return nil, &StoreError{Op: "list", Entity: e.Name, Err: err}
	}

	hasMore := len(fetched) > w.limit
	if hasMore {
		fetched = fetched[:w.limit]
	}
	if w.backward {
		reverseRows(fetched)
	}

	conn := &Connection{
		Edges:   eng.buildEdges(e, cs, fetched),
		countFn: eng.countFn(e, where),
		facetFn: eng.facetFn(e, where),
	}
	if w.backward {
		conn.PageInfo.HasPreviousPage = hasMore
		conn.PageInfo.HasNextPage = w.rawCursor != ""
	} else {
		conn.PageInfo.HasNextPage = hasMore
		conn.PageInfo.HasPreviousPage = w.rawCursor != ""
	}
	if len(conn.Edges) > 0 {
		conn.PageInfo.StartCursor = &conn.Edges[0].Cursor
		conn.PageInfo.EndCursor = &conn.Edges[len(conn.Edges)-1].Cursor
	}
	return conn, nil
}

func (eng *Engine) selectEntity(e *entity.Entity) sq.SelectBuilder {
	cols := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		cols[i] = sqlutil.Qualify(e.Table, f.Column)
	}
	return sq.Select(cols...).From(sqlutil.QuoteIdentifier(e.Table))
}

// buildEdges mints one keyset cursor per row from the row's own sort-key
// values, preserving fetch order.
func (eng *Engine) buildEdges(e *entity.Entity, cs compiledSort, rows []map[string]interface{}) []Edge {
	edges := make([]Edge, len(rows))
	fields := cs.fields()
	for i, row := range rows {
		values := make([]interface{}, len(fields))
		for j, f := range fields {
			values[j] = row[f.Name]
		}
		edges[i] = Edge{
			Cursor: encodeRowCursor(e, cs, values),
			Node:   row,
		}
	}
	return edges
}

// countFn builds the lazy total-count query over the same compiled filter.
// The count detaches from the row-fetch cancellation so a response already
// being streamed can still resolve it.
func (eng *Engine) countFn(e *entity.Entity, where []sq.Sqlizer) func(ctx context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		ctx = context.WithoutCancel(ctx)
		builder := sq.Select("COUNT(*)").From(sqlutil.QuoteIdentifier(e.Table))
		for _, clause := range where {
			builder = builder.Where(clause)
		}
		rows, err := eng.runQuery(ctx, e, "count", builder)
		if err != nil {
			return 0, err
		}
		defer rows.Close()

		var total int
		if rows.Next() {
			if err := rows.Scan(&total); err != nil {
				return 0, &StoreError{Op: "count", Entity: e.Name, Err: err}
			}
		}
		if err := rows.Err(); err != nil {
			return 0, &StoreError{Op: "count", Entity: e.Name, Err: err}
		}
		return total, nil
	}
}

func reverseRows(rows []map[string]interface{}) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
