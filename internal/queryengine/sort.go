package queryengine

import (
	"strings"

	"bizql/internal/entity"
	"bizql/internal/sqlutil"
)

// Direction is a sort direction, ASC or DESC.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// SortDescriptor is one caller-supplied ordering key; descriptors are
// applied in order, first key outermost.
type SortDescriptor struct {
	Field     string `mapstructure:"field"`
	Direction string `mapstructure:"direction"`
}

type sortKey struct {
	field     entity.Field
	direction Direction
}

// compiledSort is a validated, total ordering: the caller's keys (or the
// entity default) with the primary key appended as tiebreaker.
type compiledSort struct {
	keys []sortKey
}

// compileSort validates descriptors against the sortable allow-list. An
// empty descriptor list falls back to the entity default ordered DESC. The
// primary key is always appended so equal sort values never make pagination
// nondeterministic.
func compileSort(e *entity.Entity, descriptors []SortDescriptor) (compiledSort, error) {
	var cs compiledSort
	for _, d := range descriptors {
		f, ok := e.Field(d.Field)
		if !ok {
			return cs, &InvalidFieldError{Entity: e.Name, Field: d.Field, Reason: "unknown field"}
		}
		if !f.Sortable {
			return cs, &InvalidFieldError{Entity: e.Name, Field: d.Field, Reason: "field is not sortable"}
		}
		dir, err := parseDirection(d.Direction)
		if err != nil {
			return cs, &InvalidFieldError{Entity: e.Name, Field: d.Field, Reason: err.Error()}
		}
		cs.keys = append(cs.keys, sortKey{field: f, direction: dir})
	}

	if len(cs.keys) == 0 {
		cs.keys = append(cs.keys, sortKey{field: e.DefaultSortField(), direction: Descending})
	}

	pk := e.PrimaryKeyField()
	for _, k := range cs.keys {
		if k.field.Name == pk.Name {
			return cs, nil
		}
	}
	// Tiebreaker follows the trailing key's direction so uniform sorts stay
	// uniform and can seek with a single row-value comparison.
	cs.keys = append(cs.keys, sortKey{field: pk, direction: cs.keys[len(cs.keys)-1].direction})
	return cs, nil
}

func parseDirection(s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case "", string(Ascending):
		return Ascending, nil
	case string(Descending):
		return Descending, nil
	}
	return "", &InvalidPaginationError{Reason: "sort direction must be ASC or DESC"}
}

// Key identifies the sort context for cursor minting and validation.
func (cs compiledSort) Key() string {
	names := make([]string, len(cs.keys))
	for i, k := range cs.keys {
		names[i] = k.field.Name
	}
	return strings.Join(names, ",")
}

func (cs compiledSort) directions() []string {
	dirs := make([]string, len(cs.keys))
	for i, k := range cs.keys {
		dirs[i] = string(k.direction)
	}
	return dirs
}

func (cs compiledSort) fields() []entity.Field {
	fields := make([]entity.Field, len(cs.keys))
	for i, k := range cs.keys {
		fields[i] = k.field
	}
	return fields
}

// uniform reports whether every key shares one direction, enabling the
// row-value seek predicate instead of the lexicographic expansion.
func (cs compiledSort) uniform() bool {
	for _, k := range cs.keys[1:] {
		if k.direction != cs.keys[0].direction {
			return false
		}
	}
	return true
}

// orderClauses renders the ORDER BY terms. Backward windows scan in the
// reversed ordering and un-reverse rows after the fetch.
func (cs compiledSort) orderClauses(table string, reversed bool) []string {
	clauses := make([]string, len(cs.keys))
	for i, k := range cs.keys {
		dir := k.direction
		if reversed {
			dir = dir.flip()
		}
		clauses[i] = sqlutil.Qualify(table, k.field.Column) + " " + string(dir)
	}
	return clauses
}

func (d Direction) flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}
