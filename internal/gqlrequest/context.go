package gqlrequest

import (
	"context"
	"sync"
	"time"
)

type cacheHintKey struct{}

// CacheHint accumulates the advisory freshness of one response. Resolvers
// record the max-age of every entity they touch; the response may be cached
// only as long as its most volatile entity allows, so the minimum wins.
type CacheHint struct {
	mu     sync.Mutex
	maxAge time.Duration
	set    bool
}

// Record narrows the hint. A zero max-age marks the response uncacheable.
func (h *CacheHint) Record(maxAge time.Duration) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.set || maxAge < h.maxAge {
		h.maxAge = maxAge
		h.set = true
	}
}

// MaxAge returns the recorded hint; ok is false when no resolver recorded
// one.
func (h *CacheHint) MaxAge() (time.Duration, bool) {
	if h == nil {
		return 0, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxAge, h.set
}

// WithCacheHint attaches a fresh hint accumulator to the request context.
func WithCacheHint(ctx context.Context) (context.Context, *CacheHint) {
	h := &CacheHint{}
	return context.WithValue(ctx, cacheHintKey{}, h), h
}

// CacheHintFromContext returns the request's hint accumulator, or nil.
func CacheHintFromContext(ctx context.Context) *CacheHint {
	h, _ := ctx.Value(cacheHintKey{}).(*CacheHint)
	return h
}
