package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"taxpro/internal/common"
	"taxpro/internal/http/response"
)

// Limiter admits at most limit events per key within window.
type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// RateLimiter is the in-process fixed-window limiter used when Redis is not
// configured. Expired windows are swept on every sweepEvery-th call.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
	calls   int
}

type rateBucket struct {
	count     int
	windowEnd time.Time
}

const sweepEvery = 1024

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: time.Now}
}

func (r *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.calls++
	if r.calls%sweepEvery == 0 {
		for k, bucket := range r.buckets {
			if now.After(bucket.windowEnd) {
				delete(r.buckets, k)
			}
		}
	}
	bucket, ok := r.buckets[key]
	if !ok || now.After(bucket.windowEnd) {
		r.buckets[key] = &rateBucket{count: 1, windowEnd: now.Add(window)}
		return true
	}
	if bucket.count >= limit {
		return false
	}
	bucket.count++
	return true
}

// RateLimit guards a route. Requests for which keyFn returns "" pass through.
func RateLimit(limiter Limiter, keyFn func(*http.Request) string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(key, limit, window) {
				response.Error(w, common.NewError(common.CodeRateLimited, "rate limit exceeded", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProfileKey scopes a limit to the authenticated profile.
func ProfileKey(scope string) func(*http.Request) string {
	return func(r *http.Request) string {
		id, ok := ProfileIDFromContext(r.Context())
		if !ok {
			return ""
		}
		return scope + ":" + id.String()
	}
}

func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
