// Package ratelimit provides the throttle gate that spaces out requests to
// the review site.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a name for logging/debugging.
type Limiter struct {
	limiter  *rate.Limiter
	name     string
	interval time.Duration
}

// New creates a gate that lets one request through per interval.
// A zero or negative interval disables throttling.
func New(name string, interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{
		limiter:  rate.NewLimiter(limit, 1),
		name:     name,
		interval: interval,
	}
}

// Wait blocks until the rate limiter allows a request to proceed.
// Returns an error if the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

// Interval returns the configured spacing between requests.
func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}
