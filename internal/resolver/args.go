package resolver

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"bizql/internal/queryengine"
)

// decodeConnectionArgs converts raw GraphQL arguments into the engine's
// descriptor types. Filter and sort lists arrive as []interface{} of
// map[string]interface{}; mapstructure handles the shape.
func decodeConnectionArgs(args map[string]interface{}) ([]queryengine.FilterDescriptor, []queryengine.SortDescriptor, queryengine.PaginationRequest, error) {
	var (
		filters []queryengine.FilterDescriptor
		sorts   []queryengine.SortDescriptor
		page    queryengine.PaginationRequest
	)

	if raw, ok := args["where"]; ok && raw != nil {
		if err := mapstructure.Decode(raw, &filters); err != nil {
			return nil, nil, page, fmt.Errorf("malformed where argument: %w", err)
		}
	}
	if raw, ok := args["orderBy"]; ok && raw != nil {
		if err := mapstructure.Decode(raw, &sorts); err != nil {
			return nil, nil, page, fmt.Errorf("malformed orderBy argument: %w", err)
		}
	}

	if v, ok := args["first"].(int); ok {
		page.First = &v
	}
	if v, ok := args["last"].(int); ok {
		page.Last = &v
	}
	if v, ok := args["after"].(string); ok && v != "" {
		page.After = &v
	}
	if v, ok := args["before"].(string); ok && v != "" {
		page.Before = &v
	}
	return filters, sorts, page, nil
}
