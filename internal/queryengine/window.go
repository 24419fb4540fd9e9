package queryengine

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"bizql/internal/cursor"
	"bizql/internal/entity"
	"bizql/internal/sqlutil"
)

const (
	// DefaultPageSize applies when the caller supplies neither first nor last.
	DefaultPageSize = 20
	// MaxPageSize bounds resource use; larger requests are clamped, not
	// rejected.
	MaxPageSize = 100
)

// PageLimits overrides the built-in window bounds. Zero fields fall back to
// the package defaults.
type PageLimits struct {
	Default int
	Max     int
}

func (l PageLimits) normalized() PageLimits {
	if l.Default <= 0 {
		l.Default = DefaultPageSize
	}
	if l.Max <= 0 {
		l.Max = MaxPageSize
	}
	return l
}

// PaginationRequest is the Relay-style window selection. first/after and
// last/before are mutually exclusive usage modes.
type PaginationRequest struct {
	First  *int
	After  *string
	Last   *int
	Before *string
}

type window struct {
	limit    int
	backward bool
	// rawCursor is the after (forward) or before (backward) cursor, empty
	// when paginating from the edge of the set.
	rawCursor string
}

func parseWindow(p PaginationRequest, limits PageLimits) (window, error) {
	limits = limits.normalized()
	if p.First != nil && p.Last != nil {
		return window{}, &InvalidPaginationError{Reason: "cannot use both first and last"}
	}
	if p.After != nil && p.Before != nil {
		return window{}, &InvalidPaginationError{Reason: "cannot use both after and before"}
	}
	if p.Before != nil && p.First != nil {
		return window{}, &InvalidPaginationError{Reason: "before cannot be combined with first"}
	}
	if p.After != nil && p.Last != nil {
		return window{}, &InvalidPaginationError{Reason: "after cannot be combined with last"}
	}
	if p.Before != nil && p.Last == nil {
		return window{}, &InvalidPaginationError{Reason: "before requires last"}
	}

	w := window{limit: limits.Default}
	switch {
	case p.Last != nil:
		if *p.Last < 0 {
			return window{}, &InvalidPaginationError{Reason: "last must not be negative"}
		}
		w.backward = true
		w.limit = clampPageSize(*p.Last, limits.Max)
		if p.Before != nil {
			w.rawCursor = *p.Before
		}
	default:
		if p.First != nil {
			if *p.First < 0 {
				return window{}, &InvalidPaginationError{Reason: "first must not be negative"}
			}
			w.limit = clampPageSize(*p.First, limits.Max)
		}
		if p.After != nil {
			w.rawCursor = *p.After
		}
	}
	return w, nil
}

func clampPageSize(n, max int) int {
	if n > max {
		return max
	}
	return n
}

// encodeRowCursor mints a keyset cursor for the row whose sort-key values
// are given, bound to the current entity and sort context.
func encodeRowCursor(e *entity.Entity, cs compiledSort, values []interface{}) string {
	return cursor.Encode(e.Name, cs.Key(), cs.directions(), values)
}

// seekPosition is the decoded keyset tuple pagination resumes from.
type seekPosition struct {
	values []interface{}
}

// decodeSeek validates the cursor against the current entity and sort
// context and coerces its values to the sort-key field types.
func decodeSeek(e *entity.Entity, cs compiledSort, raw string) (seekPosition, error) {
	p, err := cursor.Decode(raw)
	if err != nil {
		return seekPosition{}, &InvalidCursorError{Reason: "malformed cursor", Err: err}
	}
	if err := p.Matches(e.Name, cs.Key(), cs.directions()); err != nil {
		return seekPosition{}, &InvalidCursorError{Reason: "cursor does not match this query", Err: err}
	}
	fields := cs.fields()
	values := make([]interface{}, len(fields))
	for i, f := range fields {
		v, err := coerceInput(e, f, p.Values[i])
		if err != nil {
			return seekPosition{}, &InvalidCursorError{Reason: "cursor value for " + f.Name + " has the wrong type", Err: err}
		}
		values[i] = v
	}
	return seekPosition{values: values}, nil
}

// seekCondition builds the predicate selecting rows strictly after the seek
// position in the effective scan order. When all keys share one direction it
// renders a single row-value comparison; mixed directions expand
// lexicographically:
//
//	(k1 op1 v1) OR (k1 = v1 AND k2 op2 v2) OR ...
func seekCondition(table string, cs compiledSort, pos seekPosition, backward bool) sq.Sqlizer {
	cols := make([]string, len(cs.keys))
	ops := make([]string, len(cs.keys))
	for i, k := range cs.keys {
		cols[i] = sqlutil.Qualify(table, k.field.Column)
		dir := k.direction
		if backward {
			dir = dir.flip()
		}
		if dir == Ascending {
			ops[i] = ">"
		} else {
			ops[i] = "<"
		}
	}

	if cs.uniform() {
		placeholders := make([]string, len(cols))
		for i := range placeholders {
			placeholders[i] = "?"
		}
		expr := "(" + strings.Join(cols, ", ") + ") " + ops[0] + " (" + strings.Join(placeholders, ", ") + ")"
		return sq.Expr(expr, pos.values...)
	}

	or := make(sq.Or, 0, len(cols))
	for i := range cols {
		and := make(sq.And, 0, i+1)
		for j := 0; j < i; j++ {
			and = append(and, sq.Expr(cols[j]+" = ?", pos.values[j]))
		}
		and = append(and, sq.Expr(cols[i]+" "+ops[i]+" ?", pos.values[i]))
		or = append(or, and)
	}
	return or
}
