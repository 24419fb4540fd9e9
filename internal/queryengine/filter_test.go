package queryengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizql/internal/entity"
)

func compileSingle(t *testing.T, d FilterDescriptor) (string, []interface{}) {
	t.Helper()
	e := taskEntity(t)
	preds, err := compileFilters(e, []FilterDescriptor{d})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	sql, args, err := preds[0].ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestCompileFilters_Operators(t *testing.T) {
	tests := []struct {
		name       string
		descriptor FilterDescriptor
		wantSQL    string
		wantArgs   []interface{}
	}{
		{
			name:       "equals",
			descriptor: FilterDescriptor{Field: "status", Operator: OpEquals, Value: "ACTIVE"},
			wantSQL:    "`tasks`.`status` = ?",
			wantArgs:   []interface{}{"ACTIVE"},
		},
		{
			name:       "not equals",
			descriptor: FilterDescriptor{Field: "status", Operator: OpNotEquals, Value: "DONE"},
			wantSQL:    "`tasks`.`status` <> ?",
			wantArgs:   []interface{}{"DONE"},
		},
		{
			name:       "greater than",
			descriptor: FilterDescriptor{Field: "name", Operator: OpGreaterThan, Value: "m"},
			wantSQL:    "`tasks`.`name` > ?",
			wantArgs:   []interface{}{"m"},
		},
		{
			name:       "less than or equal",
			descriptor: FilterDescriptor{Field: "name", Operator: OpLessThanOrEqual, Value: "m"},
			wantSQL:    "`tasks`.`name` <= ?",
			wantArgs:   []interface{}{"m"},
		},
		{
			name:       "contains escapes wildcards",
			descriptor: FilterDescriptor{Field: "name", Operator: OpContains, Value: "50%_done\\"},
			wantSQL:    "`tasks`.`name` LIKE ?",
			wantArgs:   []interface{}{`%50\%\_done\\%`},
		},
		{
			name:       "starts with",
			descriptor: FilterDescriptor{Field: "name", Operator: OpStartsWith, Value: "inv"},
			wantSQL:    "`tasks`.`name` LIKE ?",
			wantArgs:   []interface{}{"inv%"},
		},
		{
			name:       "ends with",
			descriptor: FilterDescriptor{Field: "name", Operator: OpEndsWith, Value: ".pdf"},
			wantSQL:    "`tasks`.`name` LIKE ?",
			wantArgs:   []interface{}{"%.pdf"},
		},
		{
			name:       "in",
			descriptor: FilterDescriptor{Field: "status", Operator: OpIn, Values: []string{"ACTIVE", "PAUSED"}},
			wantSQL:    "`tasks`.`status` IN (?,?)",
			wantArgs:   []interface{}{"ACTIVE", "PAUSED"},
		},
		{
			name:       "not in",
			descriptor: FilterDescriptor{Field: "status", Operator: OpNotIn, Values: []string{"DONE"}},
			wantSQL:    "`tasks`.`status` NOT IN (?)",
			wantArgs:   []interface{}{"DONE"},
		},
		{
			name:       "between",
			descriptor: FilterDescriptor{Field: "name", Operator: OpBetween, Min: "a", Max: "f"},
			wantSQL:    "`tasks`.`name` BETWEEN ? AND ?",
			wantArgs:   []interface{}{"a", "f"},
		},
		{
			name:       "is null",
			descriptor: FilterDescriptor{Field: "status", Operator: OpIsNull},
			wantSQL:    "`tasks`.`status` IS NULL",
			wantArgs:   nil,
		},
		{
			name:       "is not null",
			descriptor: FilterDescriptor{Field: "status", Operator: OpIsNotNull},
			wantSQL:    "`tasks`.`status` IS NOT NULL",
			wantArgs:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := compileSingle(t, tt.descriptor)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestCompileFilters_TypedValueCoercion(t *testing.T) {
	e := taskEntity(t)

	preds, err := compileFilters(e, []FilterDescriptor{
		{Field: "updatedAt", Operator: OpGreaterThan, Value: "2025-08-01T00:00:00Z"},
	})
	require.NoError(t, err)
	_, args, err := preds[0].ToSql()
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.IsType(t, time.Time{}, args[0], "time fields bind native timestamps")

	_, err = compileFilters(e, []FilterDescriptor{
		{Field: "updatedAt", Operator: OpEquals, Value: "not a date"},
	})
	var ferr *InvalidFieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "updatedAt", ferr.Field)
}

func TestCompileFilters_Invalid(t *testing.T) {
	e := taskEntity(t)

	tests := []struct {
		name       string
		descriptor FilterDescriptor
	}{
		{"unknown field", FilterDescriptor{Field: "password", Operator: OpEquals, Value: "x"}},
		{"prototype pollution probe", FilterDescriptor{Field: "__proto__", Operator: OpEquals, Value: "x"}},
		{"empty in list", FilterDescriptor{Field: "status", Operator: OpIn}},
		{"between without max", FilterDescriptor{Field: "name", Operator: OpBetween, Min: "a"}},
		{"unsupported operator", FilterDescriptor{Field: "status", Operator: Operator("REGEX"), Value: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileFilters(e, []FilterDescriptor{tt.descriptor})
			var ferr *InvalidFieldError
			require.ErrorAs(t, err, &ferr)
		})
	}
}

func TestCompileFilters_NotFilterableField(t *testing.T) {
	reg, err := entity.NewRegistry(&entity.Entity{
		Name:         "Doc",
		Table:        "docs",
		TenantColumn: "tenant_id",
		PrimaryKey:   "id",
		DefaultSort:  "id",
		Fields: []entity.Field{
			{Name: "id", Column: "id", Type: entity.TypeID, Filterable: true, Sortable: true},
			{Name: "body", Column: "body", Type: entity.TypeString},
		},
	})
	require.NoError(t, err)
	e, _ := reg.Get("Doc")

	_, err = compileFilters(e, []FilterDescriptor{{Field: "body", Operator: OpEquals, Value: "x"}})
	var ferr *InvalidFieldError
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Reason, "not filterable")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
