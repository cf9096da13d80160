// Package middleware provides Fiber middleware shared by the API routes.
package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// ipLimiterEntry tracks a rate limiter and its last use time
type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimit manages one token bucket per client IP
type IPRateLimit struct {
	limiters map[string]*ipLimiterEntry
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

// NewIPRateLimit creates a limiter allowing rps requests per second per IP
// with the given burst. rps <= 0 disables limiting.
func NewIPRateLimit(rps float64, burst int) *IPRateLimit {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimit{
		limiters: make(map[string]*ipLimiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Enabled reports whether requests are limited at all.
func (iprl *IPRateLimit) Enabled() bool {
	return iprl.rps > 0
}

// Allow checks if an IP is allowed to make a request
func (iprl *IPRateLimit) Allow(ip string) bool {
	if !iprl.Enabled() {
		return true
	}
	iprl.mu.Lock()
	defer iprl.mu.Unlock()

	entry, exists := iprl.limiters[ip]
	if !exists {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(iprl.rps, iprl.burst)}
		iprl.limiters[ip] = entry
	}
	entry.lastSeen = iprl.now()

	return entry.limiter.AllowN(entry.lastSeen, 1)
}

// Cleanup removes limiters idle for longer than maxIdle
func (iprl *IPRateLimit) Cleanup(maxIdle time.Duration) {
	iprl.mu.Lock()
	defer iprl.mu.Unlock()

	now := iprl.now()
	for ip, entry := range iprl.limiters {
		if now.Sub(entry.lastSeen) > maxIdle {
			delete(iprl.limiters, ip)
		}
	}
}

// Size returns the number of tracked IPs.
func (iprl *IPRateLimit) Size() int {
	iprl.mu.Lock()
	defer iprl.mu.Unlock()
	return len(iprl.limiters)
}

// RunCleanup prunes idle limiters every interval until ctx is done.
func (iprl *IPRateLimit) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			iprl.Cleanup(time.Hour)
		}
	}
}

// Handler rejects requests over the limit with 429.
func (iprl *IPRateLimit) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if iprl.Allow(c.IP()) {
			return c.Next()
		}
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success": false,
			"error":   "Too many requests",
		})
	}
}
