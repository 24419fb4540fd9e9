// Package entity defines the metadata that parameterizes the generic query
// engine: table references, typed field allow-lists, tenant scoping columns,
// default sorts and cache hints. The registry is static; the GraphQL schema
// and every compiled query derive from it.
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/inflection"
)

// FieldType describes how a field's values are coerced when binding filter
// arguments and scanning rows.
type FieldType string

const (
	TypeID     FieldType = "ID"
	TypeString FieldType = "String"
	TypeInt    FieldType = "Int"
	TypeFloat  FieldType = "Float"
	TypeBool   FieldType = "Bool"
	TypeTime   FieldType = "Time"
)

// Field is one exposed attribute of an entity. Name is the API-facing
// camelCase name; Column is the backing store column.
type Field struct {
	Name       string
	Column     string
	Type       FieldType
	Filterable bool
	Sortable   bool
	Nullable   bool
}

// Entity describes one queryable business object.
type Entity struct {
	// Name is the GraphQL type name (PascalCase, singular).
	Name  string
	Table string

	// TenantColumn scopes every query to the caller's tenant. Required.
	TenantColumn string

	// PrimaryKey names the Field used for single-row lookup and as the
	// pagination tiebreaker.
	PrimaryKey string

	// DefaultSort names the Field ordered DESC when the caller supplies
	// no sort descriptors.
	DefaultSort string

	// RequiredPermission, when set, must be present in the caller's
	// permission set for any query against this entity.
	RequiredPermission string

	// FacetFields lists fields eligible for facet count aggregation.
	FacetFields []string

	// ScopeFields are fields exposed as direct arguments on the list query
	// and applied as trusted base-scope equality predicates, outside the
	// caller filter allow-list path.
	ScopeFields []string

	// CacheMaxAge is an advisory freshness hint for list responses.
	CacheMaxAge time.Duration

	Fields []Field

	byName map[string]Field
}

// Field looks up a field by API name.
func (e *Entity) Field(name string) (Field, bool) {
	f, ok := e.byName[name]
	return f, ok
}

// PrimaryKeyField returns the primary key field. The registry guarantees
// it exists.
func (e *Entity) PrimaryKeyField() Field {
	return e.byName[e.PrimaryKey]
}

// DefaultSortField returns the field used for the implicit default sort.
func (e *Entity) DefaultSortField() Field {
	return e.byName[e.DefaultSort]
}

// Columns returns the backing columns of all fields, in declaration order.
func (e *Entity) Columns() []string {
	cols := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		cols[i] = f.Column
	}
	return cols
}

// ListQueryName is the camelCase pluralized connection field name,
// e.g. "payRuns" for entity PayRun.
func (e *Entity) ListQueryName() string {
	return lowerFirst(inflection.Plural(e.Name))
}

// SingleQueryName is the camelCase singular lookup field name.
func (e *Entity) SingleQueryName() string {
	return lowerFirst(e.Name)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (e *Entity) validate() error {
	if e.Name == "" || e.Table == "" {
		return fmt.Errorf("entity %q: name and table are required", e.Name)
	}
	if e.TenantColumn == "" {
		return fmt.Errorf("entity %s: tenant column is required", e.Name)
	}
	if len(e.Fields) == 0 {
		return fmt.Errorf("entity %s: no fields declared", e.Name)
	}
	e.byName = make(map[string]Field, len(e.Fields))
	for _, f := range e.Fields {
		if f.Name == "" || f.Column == "" {
			return fmt.Errorf("entity %s: field name and column are required", e.Name)
		}
		if _, dup := e.byName[f.Name]; dup {
			return fmt.Errorf("entity %s: duplicate field %q", e.Name, f.Name)
		}
		e.byName[f.Name] = f
	}
	if _, ok := e.byName[e.PrimaryKey]; !ok {
		return fmt.Errorf("entity %s: primary key field %q not declared", e.Name, e.PrimaryKey)
	}
	if _, ok := e.byName[e.DefaultSort]; !ok {
		return fmt.Errorf("entity %s: default sort field %q not declared", e.Name, e.DefaultSort)
	}
	for _, name := range e.FacetFields {
		f, ok := e.byName[name]
		if !ok {
			return fmt.Errorf("entity %s: facet field %q not declared", e.Name, name)
		}
		if !f.Filterable {
			return fmt.Errorf("entity %s: facet field %q must be filterable", e.Name, name)
		}
	}
	for _, name := range e.ScopeFields {
		if _, ok := e.byName[name]; !ok {
			return fmt.Errorf("entity %s: scope field %q not declared", e.Name, name)
		}
	}
	return nil
}

// Registry holds the set of queryable entities.
type Registry struct {
	entities []*Entity
	byName   map[string]*Entity
}

// NewRegistry validates and indexes the given entities.
func NewRegistry(entities ...*Entity) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Entity, len(entities))}
	for _, e := range entities {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate entity %q", e.Name)
		}
		r.byName[e.Name] = e
		r.entities = append(r.entities, e)
	}
	return r, nil
}

// Get looks up an entity by type name.
func (r *Registry) Get(name string) (*Entity, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// All returns entities in registration order.
func (r *Registry) All() []*Entity {
	return r.entities
}
