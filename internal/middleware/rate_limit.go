package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/logging"
)

// RateLimiter throttles form submissions per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int

	whitelist map[string]bool
}

func NewRateLimiter(limit rate.Limit, burst int, whitelist ...string) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		limit:     limit,
		burst:     burst,
		whitelist: make(map[string]bool, len(whitelist)),
	}
	for _, ip := range whitelist {
		rl.whitelist[ip] = true
	}
	return rl
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[ip]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[ip] = limiter
	return limiter
}

// Limit applies the limiter to POST requests only; page views pass through.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if rl.whitelist[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.getLimiter(ip).Allow() {
			logging.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			http.Error(w, constants.MsgTooManyRequests, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
