package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"bookstore/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterEntry pairs a per-IP token bucket with its last-seen time so
// stale entries can be evicted.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies per-IP token-bucket rate limiting. Each unique IP
// gets its own limiter; entries idle for more than three minutes are
// cleaned up by a background goroutine.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*limiterEntry)
	)

	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, entry := range clients {
				if time.Since(entry.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			ip = c.Request.RemoteAddr
		}

		mu.Lock()
		entry, found := clients[ip]
		if !found {
			entry = &limiterEntry{limiter: rate.NewLimiter(rps, burst)}
			clients[ip] = entry
		}
		entry.lastSeen = time.Now()
		allowed := entry.limiter.Allow()
		mu.Unlock()

		if !allowed {
			response.AbortError(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		c.Next()
	}
}
