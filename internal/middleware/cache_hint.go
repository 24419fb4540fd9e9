package middleware

import (
	"fmt"
	"net/http"

	"bizql/internal/gqlrequest"
)

// CacheHintMiddleware attaches a cache-hint accumulator to the request
// context and, when resolvers recorded one, emits it as a Cache-Control
// header. Responses touching tenant data are always private. Hints only
// apply to successful responses.
func CacheHintMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, hint := gqlrequest.WithCacheHint(r.Context())
		wrapped := &cacheHintWriter{ResponseWriter: w, hint: hint}
		next.ServeHTTP(wrapped, r.WithContext(ctx))
	})
}

// cacheHintWriter injects the Cache-Control header just before the first
// byte of the response is committed, after all resolvers have run.
type cacheHintWriter struct {
	http.ResponseWriter
	hint      *gqlrequest.CacheHint
	committed bool
}

func (w *cacheHintWriter) WriteHeader(statusCode int) {
	if !w.committed {
		w.committed = true
		if statusCode < 400 {
			if maxAge, ok := w.hint.MaxAge(); ok {
				if maxAge > 0 {
					w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(maxAge.Seconds())))
				} else {
					w.Header().Set("Cache-Control", "no-store")
				}
			}
		}
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *cacheHintWriter) Write(b []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
