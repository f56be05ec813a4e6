package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles external process launches.
type Limiter struct {
	limiter *rate.Limiter
}

// New allows perSecond launches with up to burst of them back to back.
// Zero or negative perSecond disables throttling.
func New(perSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	if perSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, burst)}
	}

	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a launch is permitted or ctx is done.
// A nil limiter never blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}
