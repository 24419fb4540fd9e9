package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin access to the API.
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

type corsPolicy struct {
	allowAll bool
	origins  map[string]struct{}
	methods  string
	headers  string
	expose   string
	maxAge   string
	creds    bool
}

// CORSMiddleware adds CORS response headers and answers preflight requests.
func CORSMiddleware(cfg CORSConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	p := corsPolicy{
		origins: map[string]struct{}{},
		methods: strings.Join(cfg.AllowedMethods, ", "),
		headers: strings.Join(cfg.AllowedHeaders, ", "),
		expose:  strings.Join(cfg.ExposeHeaders, ", "),
		creds:   cfg.AllowCredentials,
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			p.allowAll = true
		} else if origin != "" {
			p.origins[origin] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed := p.allowAll
			if !allowed {
				_, allowed = p.origins[origin]
			}
			if allowed {
				if p.allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
					if p.creds {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
				}
				if p.expose != "" {
					w.Header().Set("Access-Control-Expose-Headers", p.expose)
				}
			}

			if r.Method == http.MethodOptions {
				if allowed {
					if p.methods != "" {
						w.Header().Set("Access-Control-Allow-Methods", p.methods)
					}
					if p.headers != "" {
						w.Header().Set("Access-Control-Allow-Headers", p.headers)
					}
					if p.maxAge != "" {
						w.Header().Set("Access-Control-Max-Age", p.maxAge)
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
