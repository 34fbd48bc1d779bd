package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kbukum/tokengate/auth/authctx"
	apperrors "github.com/kbukum/tokengate/errors"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate allowed per key.
	RequestsPerMinute int
	// Burst is how many requests a fresh key may send at once.
	// Defaults to RequestsPerMinute.
	Burst int
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string
	// EntryTTL evicts limiters idle for longer than this. Defaults to 10m.
	EntryTTL time.Duration
	// Context stops the cleanup goroutine when canceled. Defaults to a
	// context that is never canceled.
	Context context.Context

	now func() time.Time
}

// RateLimit returns a Gin middleware that applies a per-key token bucket.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerMinute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = 10 * time.Minute
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	rl := newKeyedLimiter(cfg)
	go rl.cleanup(cfg.Context, cfg.EntryTTL/2)

	return func(c *gin.Context) {
		if wait, ok := rl.allow(cfg.KeyFunc(c)); !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abortWithError(c, apperrors.RateLimited())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// SubjectBasedKey keys authenticated requests by token subject, falling back
// to client IP.
func SubjectBasedKey(c *gin.Context) string {
	if name := authctx.Username(c.Request.Context()); name != "" {
		return "sub:" + name
	}
	return c.ClientIP()
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type keyedLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

func newKeyedLimiter(cfg RateLimitConfig) *keyedLimiter {
	return &keyedLimiter{
		limit:   rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute)),
		burst:   cfg.Burst,
		ttl:     cfg.EntryTTL,
		now:     cfg.now,
		entries: map[string]*limiterEntry{},
	}
}

// allow takes a token for key. When none is available it reports how long
// until one is, without consuming it.
func (l *keyedLimiter) allow(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return l.ttl, false
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return wait, false
	}
	return 0, true
}

func (l *keyedLimiter) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.prune()
		}
	}
}

func (l *keyedLimiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.ttl)
	for key, entry := range l.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}
