package queryengine

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"bizql/internal/entity"
	"bizql/internal/sqlutil"
)

// ResolveNode fetches a single row by primary key under the tenant scope.
// Absence is not an error: a missing or cross-tenant row returns (nil, nil).
func (eng *Engine) ResolveNode(ctx context.Context, e *entity.Entity, id string) (map[string]interface{}, error) {
	ac, err := eng.authorize(ctx, e)
	if err != nil {
		return nil, err
	}

	pk := e.PrimaryKeyField()
	idVal, err := coerceInput(e, pk, id)
	if err != nil {
		return nil, err
	}

	builder := eng.selectEntity(e).
		Where(tenantScope(e, ac)).
		Where(sq.Eq{sqlutil.Qualify(e.Table, pk.Column): idVal}).
		Limit(1)

	rows, err := eng.runQuery(ctx, e, "node", builder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fetched, err := scanEntityRows(rows, e.Fields)
	if err != nil {
		return nil, &StoreError{Op: "node", Entity: e.Name, Err: err}
	}
	if len(fetched) == 0 {
		return nil, nil
	}
	return fetched[0], nil
}
