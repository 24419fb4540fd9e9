package queryengine

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"bizql/internal/entity"
	"bizql/internal/sqlutil"
)

// Operator enumerates the filter predicate forms of the list-query contract.
type Operator string

const (
	OpEquals             Operator = "EQUALS"
	OpNotEquals          Operator = "NOT_EQUALS"
	OpGreaterThan        Operator = "GREATER_THAN"
	OpGreaterThanOrEqual Operator = "GREATER_THAN_OR_EQUAL"
	OpLessThan           Operator = "LESS_THAN"
	OpLessThanOrEqual    Operator = "LESS_THAN_OR_EQUAL"
	OpContains           Operator = "CONTAINS"
	OpStartsWith         Operator = "STARTS_WITH"
	OpEndsWith           Operator = "ENDS_WITH"
	OpIn                 Operator = "IN"
	OpNotIn              Operator = "NOT_IN"
	OpBetween            Operator = "BETWEEN"
	OpIsNull             Operator = "IS_NULL"
	OpIsNotNull          Operator = "IS_NOT_NULL"
)

// FilterDescriptor is one caller-supplied predicate. Which value slot is
// consulted depends on the operator: Value for scalar comparisons, Values
// for IN/NOT_IN, Min/Max for BETWEEN; IS_NULL/IS_NOT_NULL use none.
type FilterDescriptor struct {
	Field    string   `mapstructure:"field"`
	Operator Operator `mapstructure:"operator"`
	Value    string   `mapstructure:"value"`
	Values   []string `mapstructure:"values"`
	Min      string   `mapstructure:"min"`
	Max      string   `mapstructure:"max"`
}

// BaseScope carries the resolver-supplied trusted predicates (column name to
// value) prepended to every query. It is exempt from the field allow-list:
// the resolver is trusted, caller filters are not. The tenant scope is added
// by the engine itself and cannot be overridden from here.
type BaseScope map[string]interface{}

// compileFilters validates each descriptor against the entity's filterable
// allow-list and maps it to a squirrel predicate. Descriptors combine with
// AND; OR-grouping is not supported.
func compileFilters(e *entity.Entity, descriptors []FilterDescriptor) ([]sq.Sqlizer, error) {
	preds := make([]sq.Sqlizer, 0, len(descriptors))
	for _, d := range descriptors {
		f, ok := e.Field(d.Field)
		if !ok {
			return nil, &InvalidFieldError{Entity: e.Name, Field: d.Field, Reason: "unknown field"}
		}
		if !f.Filterable {
			return nil, &InvalidFieldError{Entity: e.Name, Field: d.Field, Reason: "field is not filterable"}
		}
		pred, err := compileOne(e, f, d)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func compileOne(e *entity.Entity, f entity.Field, d FilterDescriptor) (sq.Sqlizer, error) {
	col := sqlutil.Qualify(e.Table, f.Column)

	switch d.Operator {
	case OpEquals, OpNotEquals, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		v, err := coerceInput(e, f, d.Value)
		if err != nil {
			return nil, err
		}
		switch d.Operator {
		case OpEquals:
			return sq.Eq{col: v}, nil
		case OpNotEquals:
			return sq.NotEq{col: v}, nil
		case OpGreaterThan:
			return sq.Gt{col: v}, nil
		case OpGreaterThanOrEqual:
			return sq.GtOrEq{col: v}, nil
		case OpLessThan:
			return sq.Lt{col: v}, nil
		default:
			return sq.LtOrEq{col: v}, nil
		}

	case OpContains:
		return sq.Like{col: "%" + escapeLike(d.Value) + "%"}, nil
	case OpStartsWith:
		return sq.Like{col: escapeLike(d.Value) + "%"}, nil
	case OpEndsWith:
		return sq.Like{col: "%" + escapeLike(d.Value)}, nil

	case OpIn, OpNotIn:
		if len(d.Values) == 0 {
			return nil, &InvalidFieldError{Entity: e.Name, Field: f.Name, Reason: string(d.Operator) + " requires at least one value"}
		}
		vals := make([]interface{}, len(d.Values))
		for i, raw := range d.Values {
			v, err := coerceInput(e, f, raw)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		if d.Operator == OpIn {
			return sq.Eq{col: vals}, nil
		}
		return sq.NotEq{col: vals}, nil

	case OpBetween:
		if d.Min == "" || d.Max == "" {
			return nil, &InvalidFieldError{Entity: e.Name, Field: f.Name, Reason: "BETWEEN requires min and max"}
		}
		lo, err := coerceInput(e, f, d.Min)
		if err != nil {
			return nil, err
		}
		hi, err := coerceInput(e, f, d.Max)
		if err != nil {
			return nil, err
		}
		return sq.Expr(col+" BETWEEN ? AND ?", lo, hi), nil

	case OpIsNull:
		return sq.Eq{col: nil}, nil
	case OpIsNotNull:
		return sq.NotEq{col: nil}, nil
	}

	return nil, &InvalidFieldError{Entity: e.Name, Field: f.Name, Reason: "unsupported operator " + string(d.Operator)}
}

// escapeLike neutralizes LIKE pattern metacharacters in caller input so a
// literal "%" or "_" never acts as a wildcard.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
