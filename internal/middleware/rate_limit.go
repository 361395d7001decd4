package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"infinite-experiment/hangar/internal/common"
	"infinite-experiment/hangar/internal/constants"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	rps         rate.Limit
	burst       int
	whitelisted map[string]bool
}

func NewRateLimiter(rps float64, burst int, whitelist ...string) *RateLimiter {
	whitelisted := make(map[string]bool, len(whitelist))
	for _, ip := range whitelist {
		whitelisted[ip] = true
	}
	return &RateLimiter{
		limiters:    make(map[string]*rate.Limiter),
		rps:         rate.Limit(rps),
		burst:       burst,
		whitelisted: whitelisted,
	}
}

func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[ip]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	l.limiters[ip] = limiter
	return limiter
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if l.whitelisted[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !l.getLimiter(ip).Allow() {
			common.RespondError(w, time.Now(), constants.ErrCodeRateLimited, constants.GetErrorMessage(constants.ErrCodeRateLimited), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
