package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"sunrisestay/internal/web"
)

const msgSlowDown = "You're doing that too often. Please wait a moment and try again."

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	clients map[string]*client
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
// rps: requests per second
// burst: maximum burst size
// ttl: how long an idle client's bucket is kept
func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		rate:    rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Prune drops buckets idle for longer than ttl and returns how many were dropped.
func (rl *RateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	dropped := 0
	for ip, cl := range rl.clients {
		if rl.now().Sub(cl.lastSeen) > rl.ttl {
			delete(rl.clients, ip)
			dropped++
		}
	}
	return dropped
}

func (rl *RateLimiter) getClient(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, exists := rl.clients[ip]
	if !exists {
		cl = &client{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = rl.now()
	return cl.limiter
}

func (rl *RateLimiter) Allow(ip string) bool {
	return rl.getClient(ip).Allow()
}

// RateLimitMiddleware limits form submissions per client IP. Idle buckets are
// pruned as requests arrive, at most once a minute.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(rps, burst, 3*time.Minute)

	var (
		pruneMu   sync.Mutex
		lastPrune = time.Now()
	)

	return func(c *gin.Context) {
		pruneMu.Lock()
		if time.Since(lastPrune) > time.Minute {
			lastPrune = time.Now()
			limiter.Prune()
		}
		pruneMu.Unlock()

		if !limiter.Allow(c.ClientIP()) {
			web.Render(c, http.StatusTooManyRequests, "error.html", gin.H{
				"Status":  http.StatusTooManyRequests,
				"Message": msgSlowDown,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
