// Package middleware applies the cross-cutting HTTP policies in front of
// the GraphQL handler: authentication, CORS, rate limiting, request logging
// and cache hints.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"bizql/internal/authctx"
)

// Claim names carried by access tokens. TenantClaim is mandatory; a token
// without a tenant cannot be scoped and is rejected.
const (
	TenantClaim      = "tid"
	PermissionsClaim = "perms"
)

// JWTAuthConfig controls bearer-token verification with a shared HMAC
// secret.
type JWTAuthConfig struct {
	Enabled  bool
	Secret   string
	Issuer   string
	Audience string
}

// JWTAuthMiddleware verifies Authorization bearer tokens and mints the
// tenant/auth context consumed by the query engine. Requests without a
// token pass through unauthenticated; the engine rejects them before any
// store access. Requests with a bad token are refused at the edge.
func JWTAuthMiddleware(cfg JWTAuthConfig) (func(http.Handler) http.Handler, error) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("jwt auth enabled but no secret configured")
	}

	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(parserOpts...)
	keyFn := func(t *jwt.Token) (interface{}, error) { return []byte(cfg.Secret), nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			var claims jwt.MapClaims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFn); err != nil {
				writeAuthError(w, "invalid token")
				return
			}

			ac, err := contextFromClaims(claims)
			if err != nil {
				writeAuthError(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(authctx.WithContext(r.Context(), ac)))
		})
	}, nil
}

// contextFromClaims maps verified token claims onto the tenant/auth context.
func contextFromClaims(claims map[string]interface{}) (authctx.Context, error) {
	tenant, _ := claims[TenantClaim].(string)
	if tenant == "" {
		return authctx.Context{}, errors.New("token has no tenant claim")
	}

	sub, _ := claims["sub"].(string)

	var perms []string
	if rawPerms, ok := claims[PermissionsClaim].([]interface{}); ok {
		for _, p := range rawPerms {
			if s, ok := p.(string); ok {
				perms = append(perms, s)
			}
		}
	}

	return authctx.Context{
		TenantID:      tenant,
		UserID:        sub,
		Permissions:   authctx.NewPermissions(perms),
		Authenticated: true,
	}, nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
