// Package ratelimit throttles MCP tool calls per tool name.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per key. Every bucket shares the same
// refill rate and burst, and starts full. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	keys    map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	nowFunc func() time.Time
}

// NewLimiter returns a Limiter refilling perSecond tokens per second up to burst.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{
		keys:    make(map[string]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow reports whether one more call for key fits in its bucket.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.keys[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.keys[key] = lim
	}
	now := l.nowFunc()
	l.mu.Unlock()

	return lim.AllowN(now, 1)
}

// Burst returns the bucket capacity.
func (l *Limiter) Burst() int { return l.burst }

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default set of per-tool rate limiters.
// Rendering rewrites files on disk, so it gets the tightest budget.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"fliplot_scripts": NewLimiter(1.0, 10),      // 60/minute
		"fliplot_render":  NewLimiter(10.0/60.0, 3), // 10/minute
		"fliplot_history": NewLimiter(1.0, 10),
	}
}

// CheckLimit returns an error when toolName is over budget.
// Tools without a limiter are never throttled.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.Allow(toolName) {
		return fmt.Errorf("rate limit exceeded for %s, please try again shortly", toolName)
	}
	return nil
}
