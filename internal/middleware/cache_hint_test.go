package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizql/internal/gqlrequest"
)

func TestCacheHintMiddleware_EmitsMinimumMaxAge(t *testing.T) {
	handler := CacheHintMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hint := gqlrequest.CacheHintFromContext(r.Context())
		require.NotNil(t, hint)
		hint.Record(5 * time.Minute)
		hint.Record(30 * time.Second)
		w.Write([]byte(`{}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	assert.Equal(t, "private, max-age=30", rec.Header().Get("Cache-Control"))
}

func TestCacheHintMiddleware_ZeroMaxAgeMeansNoStore(t *testing.T) {
	handler := CacheHintMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gqlrequest.CacheHintFromContext(r.Context()).Record(0)
		w.Write([]byte(`{}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestCacheHintMiddleware_NoHintNoHeader(t *testing.T) {
	handler := CacheHintMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestCacheHintMiddleware_ErrorResponseNotCacheable(t *testing.T) {
	handler := CacheHintMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gqlrequest.CacheHintFromContext(r.Context()).Record(time.Minute)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}
