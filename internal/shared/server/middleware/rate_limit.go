package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/respond"
)

const rateLimitMessage = "Too many requests from this IP, please try again later"

// RateLimitRule allows Limit requests per Window. A zero rule disables
// limiting.
type RateLimitRule struct {
	Limit  int
	Window time.Duration
}

func (r RateLimitRule) disabled() bool { return r.Limit <= 0 || r.Window <= 0 }

// Limiter decides whether key may proceed under rule. When it may not, the
// duration says how long until the window resets.
type Limiter interface {
	Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration)
}

// RateLimit counts requests per client IP. Rejected requests get a 429 with
// Retry-After in whole seconds.
func RateLimit(limiter Limiter, rule RateLimitRule) gin.HandlerFunc {
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	return func(c *gin.Context) {
		ok, wait := limiter.Allow(c.Request.Context(), c.ClientIP(), rule)
		if ok {
			c.Next()
			return
		}
		secs := int((wait + time.Second - 1) / time.Second)
		c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
		respond.Error(c, apierr.TooManyRequests(rateLimitMessage))
	}
}

// RateLimiter is the in-process fixed-window limiter. It matches
// RedisLimiter but only counts requests seen by this replica.
type RateLimiter struct {
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*window
	swept   time.Time
}

type window struct {
	count int
	reset time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{now: now, windows: map[string]*window{}}
}

func (l *RateLimiter) Allow(_ context.Context, key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.disabled() {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now, rule.Window)

	w := l.windows[key]
	if w == nil || !now.Before(w.reset) {
		w = &window{reset: now.Add(rule.Window)}
		l.windows[key] = w
	}
	w.count++
	if w.count <= rule.Limit {
		return true, 0
	}
	return false, w.reset.Sub(now)
}

// sweep drops expired windows at most once per window length.
func (l *RateLimiter) sweep(now time.Time, every time.Duration) {
	if now.Sub(l.swept) < every {
		return
	}
	for k, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, k)
		}
	}
	l.swept = now
}
