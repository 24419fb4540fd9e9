package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const defaultAdminTokenHeader = "X-Admin-Token"

// AdminTokenConfig guards operational endpoints (metrics, debug) with a
// shared token.
type AdminTokenConfig struct {
	Token      string
	HeaderName string
}

// AdminTokenMiddleware rejects requests whose admin token header does not
// match the configured token. Comparison is constant-time over digests so
// token length is not observable.
func AdminTokenMiddleware(cfg AdminTokenConfig) (func(http.Handler) http.Handler, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("admin token is required")
	}
	header := strings.TrimSpace(cfg.HeaderName)
	if header == "" {
		header = defaultAdminTokenHeader
	}
	expected := sha256.Sum256([]byte(token))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := sha256.Sum256([]byte(strings.TrimSpace(r.Header.Get(header))))
			if subtle.ConstantTimeCompare(provided[:], expected[:]) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"unauthorized"}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
