package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizql/internal/authctx"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthHandler(t *testing.T, cfg JWTAuthConfig, inner http.HandlerFunc) http.Handler {
	t.Helper()
	mw, err := JWTAuthMiddleware(cfg)
	require.NoError(t, err)
	return mw(inner)
}

func TestJWTAuthMiddleware_ValidTokenSetsTenantContext(t *testing.T) {
	var captured authctx.Context
	handler := newAuthHandler(t, JWTAuthConfig{Enabled: true, Secret: testSecret}, func(w http.ResponseWriter, r *http.Request) {
		captured = authctx.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"tid":   "acme",
		"sub":   "user-7",
		"perms": []string{"payroll:read", "cases:read"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, captured.Authenticated)
	assert.Equal(t, "acme", captured.TenantID)
	assert.Equal(t, "user-7", captured.UserID)
	assert.True(t, captured.HasPermission("payroll:read"))
	assert.False(t, captured.HasPermission("service:read"))
}

func TestJWTAuthMiddleware_MissingTokenPassesThroughUnauthenticated(t *testing.T) {
	var captured authctx.Context
	handler := newAuthHandler(t, JWTAuthConfig{Enabled: true, Secret: testSecret}, func(w http.ResponseWriter, r *http.Request) {
		captured = authctx.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The engine, not the edge, rejects unauthenticated requests.
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, captured.Authenticated)
}

func TestJWTAuthMiddleware_BadSignatureRejected(t *testing.T) {
	handler := newAuthHandler(t, JWTAuthConfig{Enabled: true, Secret: testSecret}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a forged token")
	})

	token := signToken(t, "other-secret", jwt.MapClaims{
		"tid": "acme",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
}

func TestJWTAuthMiddleware_ExpiredTokenRejected(t *testing.T) {
	handler := newAuthHandler(t, JWTAuthConfig{Enabled: true, Secret: testSecret}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an expired token")
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"tid": "acme",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddleware_TokenWithoutTenantRejected(t *testing.T) {
	handler := newAuthHandler(t, JWTAuthConfig{Enabled: true, Secret: testSecret}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a tenantless token")
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user-7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token has no tenant claim"}`, rec.Body.String())
}

func TestJWTAuthMiddleware_IssuerMismatchRejected(t *testing.T) {
	handler := newAuthHandler(t, JWTAuthConfig{Enabled: true, Secret: testSecret, Issuer: "https://auth.example.com"}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for a wrong issuer")
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"tid": "acme",
		"iss": "https://rogue.example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddleware_DisabledPassesThrough(t *testing.T) {
	handler := newAuthHandler(t, JWTAuthConfig{Enabled: false}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestJWTAuthMiddleware_RequiresSecret(t *testing.T) {
	_, err := JWTAuthMiddleware(JWTAuthConfig{Enabled: true})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken(""))
}
