package resolver

import (
	"context"
	"errors"
	"log/slog"

	"bizql/internal/queryengine"
)

// Error codes surfaced in GraphQL error extensions. These are part of the
// wire contract and must stay stable.
const (
	codeUnauthenticated   = "UNAUTHENTICATED"
	codePermissionDenied  = "PERMISSION_DENIED"
	codeInvalidField      = "INVALID_FIELD"
	codeInvalidCursor     = "INVALID_CURSOR"
	codeInvalidPagination = "INVALID_PAGINATION"
	codeStoreError        = "STORE_ERROR"
	codeBadRequest        = "BAD_REQUEST"
)

// apiError carries a stable machine-readable code in GraphQL error
// extensions alongside the human-readable message.
type apiError struct {
	msg  string
	code string
}

func (e *apiError) Error() string { return e.msg }

// Extensions implements gqlerrors.ExtendedError.
func (e *apiError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// asGraphQLError maps engine errors onto the wire taxonomy. Store failures
// are logged in full and surfaced with a generic message; validation and
// auth failures pass their message through so callers can fix the request.
func asGraphQLError(err error, logger *slog.Logger, ctx context.Context) error {
	var (
		permErr   *queryengine.PermissionError
		fieldErr  *queryengine.InvalidFieldError
		cursorErr *queryengine.InvalidCursorError
		pageErr   *queryengine.InvalidPaginationError
		storeErr  *queryengine.StoreError
	)

	switch {
	case errors.Is(err, queryengine.ErrUnauthenticated):
		return &apiError{msg: "authentication required", code: codeUnauthenticated}
	case errors.As(err, &permErr):
		return &apiError{msg: permErr.Error(), code: codePermissionDenied}
	case errors.As(err, &fieldErr):
		return &apiError{msg: fieldErr.Error(), code: codeInvalidField}
	case errors.As(err, &cursorErr):
		return &apiError{msg: cursorErr.Error(), code: codeInvalidCursor}
	case errors.As(err, &pageErr):
		return &apiError{msg: pageErr.Error(), code: codeInvalidPagination}
	case errors.As(err, &storeErr):
		logger.ErrorContext(ctx, "store query failed",
			"entity", storeErr.Entity, "op", storeErr.Op, "error", storeErr.Err)
		return &apiError{msg: "the data store could not serve this request", code: codeStoreError}
	default:
		return &apiError{msg: err.Error(), code: codeBadRequest}
	}
}
