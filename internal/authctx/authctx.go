// Package authctx carries the per-request tenant and identity context.
//
// The context value is minted by the authentication middleware and consumed
// by every resolver and by the query engine. The engine refuses to touch the
// store without an authenticated context carrying a tenant id.
package authctx

import "context"

// Context identifies the caller for the duration of one request.
type Context struct {
	TenantID      string
	UserID        string
	Permissions   map[string]struct{}
	Authenticated bool
}

// HasPermission reports whether the caller holds the named permission.
// An empty name is always allowed.
func (c Context) HasPermission(name string) bool {
	if name == "" {
		return true
	}
	_, ok := c.Permissions[name]
	return ok
}

// NewPermissions builds a permission set from a claim list.
func NewPermissions(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}

type contextKey struct{}

// WithContext attaches the auth context to ctx.
func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// FromContext extracts the auth context. The zero value (unauthenticated)
// is returned when none is attached.
func FromContext(ctx context.Context) Context {
	ac, _ := ctx.Value(contextKey{}).(Context)
	return ac
}
