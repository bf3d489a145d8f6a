package handler

import (
	"net/http"
	"sync"
	"time"

	"diradmin/internal/util"

	"golang.org/x/time/rate"
)

// IPRateLimiter throttles a route per client address. The login form gets
// one of these so credential stuffing burns out at the edge.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	rate     rate.Limit
	burst    int
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*entry),
		rate:     r,
		burst:    burst,
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.limiters[ip]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = time.Now()

	// Drop stale per-IP state once the map grows.
	if len(l.limiters) > 1000 {
		cutoff := time.Now().Add(-10 * time.Minute)
		for k, v := range l.limiters {
			if v.lastSeen.Before(cutoff) {
				delete(l.limiters, k)
			}
		}
	}

	return e.limiter.Allow()
}

// Limit wraps a handler with the per-IP limiter, answering 429 when the
// client is over budget.
func (l *IPRateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(util.ClientIP(r)) {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
