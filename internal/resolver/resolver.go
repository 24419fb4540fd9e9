// Package resolver builds the GraphQL schema from the entity registry and
// bridges it to the query engine. Every entity gets one connection field and
// one single-row lookup; all of them share the same filter, sort and
// pagination input types and delegate to the engine for execution.
package resolver

import (
	"context"
	"log/slog"

	"github.com/graphql-go/graphql"

	"bizql/internal/entity"
	"bizql/internal/gqlrequest"
	"bizql/internal/queryengine"
)

// Resolver owns the schema types and the engine handle.
type Resolver struct {
	engine   *queryengine.Engine
	registry *entity.Registry
	logger   *slog.Logger

	pageInfoType  *graphql.Object
	facetType     *graphql.Object
	operatorEnum  *graphql.Enum
	directionEnum *graphql.Enum
	filterInput   *graphql.InputObject
	sortInput     *graphql.InputObject
}

// New builds a resolver for the given registry. The shared input and output
// types are constructed eagerly; the registry is static so the schema is
// too.
func New(engine *queryengine.Engine, registry *entity.Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{engine: engine, registry: registry, logger: logger}
	r.buildSharedTypes()
	return r
}

// BuildSchema assembles the root query type with the per-entity fields.
func (r *Resolver) BuildSchema() (graphql.Schema, error) {
	fields := graphql.Fields{}
	for _, e := range r.registry.All() {
		objType := r.buildEntityType(e)
		connType := r.buildConnectionType(e, objType)

		fields[e.ListQueryName()] = &graphql.Field{
			Type:    graphql.NewNonNull(connType),
			Args:    r.connectionArgs(e),
			Resolve: r.makeConnectionResolver(e),
		}
		fields[e.SingleQueryName()] = &graphql.Field{
			Type: objType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: r.makeNodeResolver(e),
		}
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: fields,
		}),
	})
}

func (r *Resolver) makeConnectionResolver(e *entity.Entity) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		filters, sorts, page, err := decodeConnectionArgs(p.Args)
		if err != nil {
			return nil, asGraphQLError(err, r.logger, p.Context)
		}
		base := scopeFromArgs(e, p.Args)

		conn, err := r.engine.ResolveConnection(p.Context, e, base, filters, sorts, page)
		if err != nil {
			return nil, asGraphQLError(err, r.logger, p.Context)
		}
		recordCacheHint(p.Context, e)
		return conn, nil
	}
}

func (r *Resolver) makeNodeResolver(e *entity.Entity) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		id, _ := p.Args["id"].(string)
		node, err := r.engine.ResolveNode(p.Context, e, id)
		if err != nil {
			return nil, asGraphQLError(err, r.logger, p.Context)
		}
		if node == nil {
			return nil, nil
		}
		recordCacheHint(p.Context, e)
		return node, nil
	}
}

// scopeFromArgs lifts the entity's declared scope arguments into the trusted
// base scope. These travel outside the caller filter path.
func scopeFromArgs(e *entity.Entity, args map[string]interface{}) queryengine.BaseScope {
	var base queryengine.BaseScope
	for _, name := range e.ScopeFields {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		f, _ := e.Field(name)
		if base == nil {
			base = queryengine.BaseScope{}
		}
		base[f.Column] = v
	}
	return base
}

func recordCacheHint(ctx context.Context, e *entity.Entity) {
	gqlrequest.CacheHintFromContext(ctx).Record(e.CacheMaxAge)
}
