package queryengine

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"bizql/internal/entity"
	"bizql/internal/sqlutil"
)

// FacetCount is the number of rows in the filtered set sharing one distinct
// value of a facet field.
type FacetCount struct {
	Field string
	Value string
	Count int
}

// facetFn builds the lazy facet aggregation: one GROUP BY count query per
// declared facet field, over the same compiled filter as the row fetch.
// Entities with no facet fields resolve to an empty list.
func (eng *Engine) facetFn(e *entity.Entity, where []sq.Sqlizer) func(ctx context.Context) ([]FacetCount, error) {
	return func(ctx context.Context) ([]FacetCount, error) {
		facets := []FacetCount{}
		if len(e.FacetFields) == 0 {
			return facets, nil
		}
		ctx = context.WithoutCancel(ctx)

		for _, name := range e.FacetFields {
			f, _ := e.Field(name)
			col := sqlutil.Qualify(e.Table, f.Column)

			builder := sq.Select(col, "COUNT(*)").
				From(sqlutil.QuoteIdentifier(e.Table)).
				Where(sq.NotEq{col: nil}).
				GroupBy(col).
				OrderBy("COUNT(*) DESC", col+" ASC")
			for _, clause := range where {
				builder = builder.Where(clause)
			}

			counts, err := eng.fetchFacet(ctx, e, f, builder)
			if err != nil {
				return nil, err
			}
			facets = append(facets, counts...)
		}
		return facets, nil
	}
}

func (eng *Engine) fetchFacet(ctx context.Context, e *entity.Entity, f entity.Field, builder sq.SelectBuilder) ([]FacetCount, error) {
	rows, err := eng.runQuery(ctx, e, "facet", builder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []FacetCount
	for rows.Next() {
		var value interface{}
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, &StoreError{Op: "facet", Entity: e.Name, Err: err}
		}
		str, _ := convertStoreValue(f, value).(string)
		counts = append(counts, FacetCount{Field: f.Name, Value: str, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "facet", Entity: e.Name, Err: err}
	}
	return counts, nil
}
