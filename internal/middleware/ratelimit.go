package middleware

import (
	"net/http"
	"sync"
	"time"
)

// loginCounter tracks how many attempts an IP has made in the current window.
type loginCounter struct {
	hits    int
	resetAt time.Time
}

// RateLimit caps requests per client IP at limit per window. Only the login
// form runs behind it; the rest of the site is not rate limited.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		counters = make(map[string]*loginCounter)
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			now := time.Now()

			mu.Lock()
			c := counters[key]
			if c == nil || now.After(c.resetAt) {
				c = &loginCounter{resetAt: now.Add(window)}
				counters[key] = c
			}
			c.hits++
			allowed := c.hits <= limit
			mu.Unlock()

			if !allowed {
				http.Error(w, "Demasiados intentos. Intenta de nuevo más tarde.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
