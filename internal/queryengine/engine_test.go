package queryengine

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizql/internal/authctx"
	"bizql/internal/cursor"
	"bizql/internal/dbexec"
	"bizql/internal/entity"
)

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEngine(dbexec.NewPoolExecutor(db)), mock
}

func taskEntity(t *testing.T) *entity.Entity {
	t.Helper()
	reg, err := entity.NewRegistry(&entity.Entity{
		Name:         "Task",
		Table:        "tasks",
		TenantColumn: "tenant_id",
		PrimaryKey:   "id",
		DefaultSort:  "updatedAt",
		FacetFields:  []string{"status"},
		Fields: []entity.Field{
			{Name: "id", Column: "id", Type: entity.TypeID, Filterable: true, Sortable: true},
			{Name: "name", Column: "name", Type: entity.TypeString, Filterable: true, Sortable: true},
			{Name: "status", Column: "status", Type: entity.TypeString, Filterable: true, Sortable: true},
			{Name: "updatedAt", Column: "updated_at", Type: entity.TypeTime, Filterable: true, Sortable: true},
		},
	})
	require.NoError(t, err)
	e, _ := reg.Get("Task")
	return e
}

func authedContext(tenantID string) context.Context {
	return authctx.WithContext(context.Background(), authctx.Context{
		TenantID:      tenantID,
		UserID:        "u-1",
		Authenticated: true,
	})
}

func taskColumns() []string {
	return []string{"id", "name", "status", "updated_at"}
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestResolveConnection_UnauthenticatedShortCircuit(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)

	_, err := eng.ResolveConnection(context.Background(), e, nil, nil, nil, PaginationRequest{})
	require.ErrorIs(t, err, ErrUnauthenticated)

	// No store call may be issued for an unauthenticated caller.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnection_MissingTenantIsUnauthenticated(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)

	ctx := authctx.WithContext(context.Background(), authctx.Context{Authenticated: true})
	_, err := eng.ResolveConnection(ctx, e, nil, nil, nil, PaginationRequest{})
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnection_PermissionDenied(t *testing.T) {
	eng, mock := newTestEngine(t)
	reg, err := entity.NewRegistry(&entity.Entity{
		Name:               "LedgerEntry",
		Table:              "ledger_entries",
		TenantColumn:       "tenant_id",
		PrimaryKey:         "id",
		DefaultSort:        "id",
		RequiredPermission: "ledger:read",
		Fields: []entity.Field{
			{Name: "id", Column: "id", Type: entity.TypeID, Filterable: true, Sortable: true},
		},
	})
	require.NoError(t, err)
	e, _ := reg.Get("LedgerEntry")

	_, err = eng.ResolveConnection(authedContext("T1"), e, nil, nil, nil, PaginationRequest{})
	var perr *PermissionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "ledger:read", perr.Permission)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnection_UnknownFilterFieldRejected(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)

	filters := []FilterDescriptor{{Field: "__proto__", Operator: OpEquals, Value: "x"}}
	_, err := eng.ResolveConnection(authedContext("T1"), e, nil, filters, nil, PaginationRequest{})

	var ferr *InvalidFieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "__proto__", ferr.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnection_MalformedCursorRejected(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)

	after := "garbage!!"
	_, err := eng.ResolveConnection(authedContext("T1"), e, nil, nil, nil, PaginationRequest{After: &after})

	var cerr *InvalidCursorError
	require.ErrorAs(t, err, &cerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnection_CursorContextMismatchRejected(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)

	// Minted under a createdAt sort, presented to an id-sorted query.
	after := cursor.Encode("Task", "createdAt,id", []string{"DESC", "DESC"}, []interface{}{"2025-01-01T00:00:00Z", "5"})
	sorts := []SortDescriptor{{Field: "id", Direction: "ASC"}}
	_, err := eng.ResolveConnection(authedContext("T1"), e, nil, nil, sorts, PaginationRequest{After: &after})

	var cerr *InvalidCursorError
	require.ErrorAs(t, err, &cerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Twenty-three matching rows with the default page size: the first call
// fills a 20-edge page and signals another, the follow-up from its end
// cursor drains the remaining three.
func TestResolveConnection_PagesThroughFullSet(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)
	sorts := []SortDescriptor{{Field: "id", Direction: "ASC"}}
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	firstRows := sqlmock.NewRows(taskColumns())
	for i := 1; i <= 21; i++ {
		firstRows.AddRow(int64(i), "task", "ACTIVE", now)
	}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY `tasks`.`id` ASC LIMIT 21")).
		WithArgs("T1").
		WillReturnRows(firstRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `tasks`")).
		WithArgs("T1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))

	ctx := authedContext("T1")
	conn, err := eng.ResolveConnection(ctx, e, nil, nil, sorts, PaginationRequest{})
	require.NoError(t, err)

	assert.Len(t, conn.Edges, 20)
	assert.True(t, conn.PageInfo.HasNextPage)
	assert.False(t, conn.PageInfo.HasPreviousPage)
	require.NotNil(t, conn.PageInfo.EndCursor)
	assert.Equal(t, conn.Edges[0].Cursor, *conn.PageInfo.StartCursor)

	total, err := conn.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 23, total)

	// Second page resumes from the keyset position, not an offset.
	secondRows := sqlmock.NewRows(taskColumns())
	for i := 21; i <= 23; i++ {
		secondRows.AddRow(int64(i), "task", "ACTIVE", now)
	}
	mock.ExpectQuery(regexp.QuoteMeta("(`tasks`.`id`) > (?)")).
		WithArgs("T1", "20").
		WillReturnRows(secondRows)

	conn2, err := eng.ResolveConnection(ctx, e, nil, nil, sorts, PaginationRequest{After: conn.PageInfo.EndCursor})
	require.NoError(t, err)
	assert.Len(t, conn2.Edges, 3)
	assert.False(t, conn2.PageInfo.HasNextPage)
	assert.True(t, conn2.PageInfo.HasPreviousPage)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// A caller filtering on the id field with a conflicting tenant's value still
// gets the context tenant bound first; the tenant scope is not overridable.
func TestResolveConnection_TenantScopeAlwaysBound(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)
	sorts := []SortDescriptor{{Field: "id", Direction: "ASC"}}

	filters := []FilterDescriptor{{Field: "status", Operator: OpEquals, Value: "ACTIVE"}}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE `tasks`.`tenant_id` = ? AND `tasks`.`status` = ?")).
		WithArgs("T1", "ACTIVE").
		WillReturnRows(sqlmock.NewRows(taskColumns()))

	conn, err := eng.ResolveConnection(authedContext("T1"), e, nil, filters, sorts, PaginationRequest{})
	require.NoError(t, err)
	assert.Empty(t, conn.Edges)
	assert.Nil(t, conn.PageInfo.StartCursor)
	assert.Nil(t, conn.PageInfo.EndCursor)
	assert.False(t, conn.PageInfo.HasNextPage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnection_BaseScopePrepended(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)
	sorts := []SortDescriptor{{Field: "id", Direction: "ASC"}}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE `tasks`.`tenant_id` = ? AND `tasks`.`portal_id` = ?")).
		WithArgs("T1", "p-9").
		WillReturnRows(sqlmock.NewRows(taskColumns()))

	base := BaseScope{"portal_id": "p-9"}
	_, err := eng.ResolveConnection(authedContext("T1"), e, base, nil, sorts, PaginationRequest{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnection_BackwardWindow(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)
	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	// Default sort is updatedAt DESC with the id tiebreaker; a backward
	// window scans the reversed (ascending) order and un-reverses the rows.
	before := cursor.Encode("Task", "updatedAt,id", []string{"DESC", "DESC"},
		[]interface{}{base.Add(5 * time.Hour), "5"})

	rows := sqlmock.NewRows(taskColumns()).
		AddRow(int64(2), "b", "ACTIVE", base.Add(2*time.Hour)).
		AddRow(int64(3), "c", "ACTIVE", base.Add(3*time.Hour)).
		AddRow(int64(4), "d", "ACTIVE", base.Add(4*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY `tasks`.`updated_at` ASC, `tasks`.`id` ASC LIMIT 3")).
		WithArgs("T1", sqlmock.AnyArg(), "5").
		WillReturnRows(rows)

	conn, err := eng.ResolveConnection(authedContext("T1"), e, nil, nil, nil,
		PaginationRequest{Last: intPtr(2), Before: &before})
	require.NoError(t, err)

	require.Len(t, conn.Edges, 2)
	// Window order matches the original DESC sort: newest of the pair first.
	assert.Equal(t, "4", conn.Edges[0].Node["id"])
	assert.Equal(t, "3", conn.Edges[1].Node["id"])
	assert.True(t, conn.PageInfo.HasPreviousPage, "probe row indicates more rows before the window")
	assert.True(t, conn.PageInfo.HasNextPage, "a before cursor implies rows after the window")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnection_ClampsOversizePage(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)
	sorts := []SortDescriptor{{Field: "id", Direction: "ASC"}}

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 101")).
		WithArgs("T1").
		WillReturnRows(sqlmock.NewRows(taskColumns()))

	_, err := eng.ResolveConnection(authedContext("T1"), e, nil, nil, sorts, PaginationRequest{First: intPtr(5000)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveConnection_StoreErrorWrapped(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT").WillReturnError(boom)

	_, err := eng.ResolveConnection(authedContext("T1"), e, nil, nil, nil, PaginationRequest{})
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "list", serr.Op)
	assert.Equal(t, "Task", serr.Entity)
	assert.ErrorIs(t, err, boom)
}

func TestTotalCount_Memoized(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)
	sorts := []SortDescriptor{{Field: "id", Direction: "ASC"}}

	mock.ExpectQuery(regexp.QuoteMeta("FROM `tasks`")).
		WithArgs("T1").
		WillReturnRows(sqlmock.NewRows(taskColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("T1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	ctx := authedContext("T1")
	conn, err := eng.ResolveConnection(ctx, e, nil, nil, sorts, PaginationRequest{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		total, err := conn.TotalCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, total)
	}
	// A single count query serves every TotalCount call.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacets_GroupedCounts(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)
	sorts := []SortDescriptor{{Field: "id", Direction: "ASC"}}

	mock.ExpectQuery(regexp.QuoteMeta("FROM `tasks`")).
		WithArgs("T1").
		WillReturnRows(sqlmock.NewRows(taskColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY `tasks`.`status`")).
		WithArgs("T1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("ACTIVE", 12).
			AddRow("DONE", 4))

	ctx := authedContext("T1")
	conn, err := eng.ResolveConnection(ctx, e, nil, nil, sorts, PaginationRequest{})
	require.NoError(t, err)

	facets, err := conn.Facets(ctx)
	require.NoError(t, err)
	require.Len(t, facets, 2)
	assert.Equal(t, FacetCount{Field: "status", Value: "ACTIVE", Count: 12}, facets[0])
	assert.Equal(t, FacetCount{Field: "status", Value: "DONE", Count: 4}, facets[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacets_EmptyWithoutFacetFields(t *testing.T) {
	eng, mock := newTestEngine(t)
	reg, err := entity.NewRegistry(&entity.Entity{
		Name:         "Note",
		Table:        "notes",
		TenantColumn: "tenant_id",
		PrimaryKey:   "id",
		DefaultSort:  "id",
		Fields: []entity.Field{
			{Name: "id", Column: "id", Type: entity.TypeID, Filterable: true, Sortable: true},
		},
	})
	require.NoError(t, err)
	e, _ := reg.Get("Note")

	mock.ExpectQuery(regexp.QuoteMeta("FROM `notes`")).
		WithArgs("T1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ctx := authedContext("T1")
	conn, err := eng.ResolveConnection(ctx, e, nil, nil, nil, PaginationRequest{})
	require.NoError(t, err)

	facets, err := conn.Facets(ctx)
	require.NoError(t, err)
	assert.NotNil(t, facets)
	assert.Empty(t, facets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveNode(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE `tasks`.`tenant_id` = ? AND `tasks`.`id` = ? LIMIT 1")).
		WithArgs("T1", "42").
		WillReturnRows(sqlmock.NewRows(taskColumns()).AddRow(int64(42), "answer", "DONE", now))

	node, err := eng.ResolveNode(authedContext("T1"), e, "42")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "42", node["id"])
	assert.Equal(t, "answer", node["name"])

	// Absent rows are not an error.
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 1")).
		WithArgs("T1", "404").
		WillReturnRows(sqlmock.NewRows(taskColumns()))
	node, err = eng.ResolveNode(authedContext("T1"), e, "404")
	require.NoError(t, err)
	assert.Nil(t, node)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveNode_Unauthenticated(t *testing.T) {
	eng, mock := newTestEngine(t)
	e := taskEntity(t)

	_, err := eng.ResolveNode(context.Background(), e, "1")
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
