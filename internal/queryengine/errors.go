package queryengine

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned before any store access when the request
// context lacks an authenticated caller. It is a precondition failure, never
// degraded to an empty result.
var ErrUnauthenticated = errors.New("caller is not authenticated")

// PermissionError is returned when the caller lacks the permission an entity
// requires. Like ErrUnauthenticated it short-circuits before store access.
type PermissionError struct {
	Entity     string
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s requires permission %q", e.Entity, e.Permission)
}

// InvalidFieldError reports a filter or sort referencing a field outside the
// entity's allow-list. Unknown fields are rejected before query compilation,
// never passed through to the store.
type InvalidFieldError struct {
	Entity string
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid field %q on %s: %s", e.Field, e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid field %q on %s", e.Field, e.Entity)
}

// InvalidCursorError reports a pagination cursor that could not be decoded or
// that was minted under a different query context. It is distinct from an
// empty result.
type InvalidCursorError struct {
	Reason string
	Err    error
}

func (e *InvalidCursorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid cursor: %s: %v", e.Reason, e.Err)
	}
	return "invalid cursor: " + e.Reason
}

func (e *InvalidCursorError) Unwrap() error { return e.Err }

// InvalidPaginationError reports a pagination request violating the
// first/after vs last/before usage rules.
type InvalidPaginationError struct {
	Reason string
}

func (e *InvalidPaginationError) Error() string {
	return "invalid pagination: " + e.Reason
}

// StoreError wraps a failed store call with the operation and entity it was
// serving. Store failures surface to the caller; they are never retried here
// and never swallowed into an empty list.
type StoreError struct {
	Op     string
	Entity string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s for %s failed: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
