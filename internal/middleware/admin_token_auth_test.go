package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminHandler(t *testing.T, cfg AdminTokenConfig) http.Handler {
	t.Helper()
	mw, err := AdminTokenMiddleware(cfg)
	require.NoError(t, err)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAdminTokenMiddleware_MissingHeaderReturnsUnauthorized(t *testing.T) {
	handler := adminHandler(t, AdminTokenConfig{Token: "secret-token"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestAdminTokenMiddleware_WrongTokenReturnsUnauthorized(t *testing.T) {
	handler := adminHandler(t, AdminTokenConfig{Token: "secret-token"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set(defaultAdminTokenHeader, "wrong-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminTokenMiddleware_ValidTokenInvokesNext(t *testing.T) {
	handler := adminHandler(t, AdminTokenConfig{Token: "secret-token"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set(defaultAdminTokenHeader, "secret-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminTokenMiddleware_CustomHeaderName(t *testing.T) {
	handler := adminHandler(t, AdminTokenConfig{Token: "secret-token", HeaderName: "X-Ops-Token"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Ops-Token", "secret-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminTokenMiddleware_RequiresToken(t *testing.T) {
	_, err := AdminTokenMiddleware(AdminTokenConfig{})
	assert.Error(t, err)
}
