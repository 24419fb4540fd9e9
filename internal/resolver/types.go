package resolver

import (
	"context"

	"github.com/graphql-go/graphql"

	"bizql/internal/entity"
	"bizql/internal/queryengine"
)

func (r *Resolver) buildSharedTypes() {
	r.pageInfoType = graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"startCursor":     &graphql.Field{Type: graphql.String},
			"endCursor":       &graphql.Field{Type: graphql.String},
		},
	})

	r.facetType = graphql.NewObject(graphql.ObjectConfig{
		Name: "FacetCount",
		Fields: graphql.Fields{
			"field": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"value": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"count": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	operators := []queryengine.Operator{
		queryengine.OpEquals, queryengine.OpNotEquals,
		queryengine.OpGreaterThan, queryengine.OpGreaterThanOrEqual,
		queryengine.OpLessThan, queryengine.OpLessThanOrEqual,
		queryengine.OpContains, queryengine.OpStartsWith, queryengine.OpEndsWith,
		queryengine.OpIn, queryengine.OpNotIn,
		queryengine.OpBetween,
		queryengine.OpIsNull, queryengine.OpIsNotNull,
	}
	operatorValues := graphql.EnumValueConfigMap{}
	for _, op := range operators {
		operatorValues[string(op)] = &graphql.EnumValueConfig{Value: string(op)}
	}
	r.operatorEnum = graphql.NewEnum(graphql.EnumConfig{
		Name:   "FilterOperator",
		Values: operatorValues,
	})

	r.directionEnum = graphql.NewEnum(graphql.EnumConfig{
		Name: "SortDirection",
		Values: graphql.EnumValueConfigMap{
			"ASC":  &graphql.EnumValueConfig{Value: "ASC"},
			"DESC": &graphql.EnumValueConfig{Value: "DESC"},
		},
	})

	r.filterInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "FilterInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"field":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"operator": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(r.operatorEnum)},
			"value":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"values":   &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
			"min":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"max":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	r.sortInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SortInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"field":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"direction": &graphql.InputObjectFieldConfig{Type: r.directionEnum},
		},
	})
}

func (r *Resolver) buildEntityType(e *entity.Entity) *graphql.Object {
	fields := graphql.Fields{}
	for _, f := range e.Fields {
		fields[f.Name] = &graphql.Field{Type: fieldOutputType(f)}
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name:   e.Name,
		Fields: fields,
	})
}

func fieldOutputType(f entity.Field) graphql.Output {
	var t graphql.Output
	switch f.Type {
	case entity.TypeID:
		t = graphql.ID
	case entity.TypeInt:
		t = graphql.Int
	case entity.TypeFloat:
		t = graphql.Float
	case entity.TypeBool:
		t = graphql.Boolean
	case entity.TypeTime:
		t = graphql.DateTime
	default:
		t = graphql.String
	}
	if !f.Nullable {
		t = graphql.NewNonNull(t)
	}
	return t
}

func (r *Resolver) buildConnectionType(e *entity.Entity, objType *graphql.Object) *graphql.Object {
	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: e.Name + "Edge",
		Fields: graphql.Fields{
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"node":   &graphql.Field{Type: graphql.NewNonNull(objType)},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: e.Name + "Connection",
		Fields: graphql.Fields{
			"edges": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(edgeType))),
			},
			"pageInfo": &graphql.Field{
				Type: graphql.NewNonNull(r.pageInfoType),
			},
			"totalCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					conn := p.Source.(*queryengine.Connection)
					total, err := conn.TotalCount(context.WithoutCancel(p.Context))
					if err != nil {
						return nil, asGraphQLError(err, r.logger, p.Context)
					}
					return total, nil
				},
			},
			"facets": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(r.facetType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					conn := p.Source.(*queryengine.Connection)
					facets, err := conn.Facets(context.WithoutCancel(p.Context))
					if err != nil {
						return nil, asGraphQLError(err, r.logger, p.Context)
					}
					return facets, nil
				},
			},
		},
	})
}

func (r *Resolver) connectionArgs(e *entity.Entity) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"first":   &graphql.ArgumentConfig{Type: graphql.Int},
		"after":   &graphql.ArgumentConfig{Type: graphql.String},
		"last":    &graphql.ArgumentConfig{Type: graphql.Int},
		"before":  &graphql.ArgumentConfig{Type: graphql.String},
		"where":   &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(r.filterInput))},
		"orderBy": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(r.sortInput))},
	}
	for _, name := range e.ScopeFields {
		f, _ := e.Field(name)
		var t graphql.Input = graphql.String
		if f.Type == entity.TypeID {
			t = graphql.ID
		}
		args[name] = &graphql.ArgumentConfig{Type: t}
	}
	return args
}
