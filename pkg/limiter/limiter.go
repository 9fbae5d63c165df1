// Package limiter provides the token bucket shared by the HTTP and gRPC front ends.
package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a request may proceed.
type Limiter interface {
	Allow() bool
	Wait(ctx context.Context) error
}

// TokenBucket allows maxRequests per window with bursts up to burst.
type TokenBucket struct {
	limiter *rate.Limiter
}

// New returns nil when maxRequests is not positive, meaning no limit.
func New(maxRequests, burst int, window time.Duration) *TokenBucket {
	if maxRequests <= 0 {
		return nil
	}

	rps := rate.Inf
	if window > 0 {
		rps = rate.Limit(float64(maxRequests) / window.Seconds())
	}
	if burst <= 0 {
		burst = 1
	}

	return &TokenBucket{limiter: rate.NewLimiter(rps, burst)}
}

// Allow reports whether a request can proceed now. A nil bucket always allows.
func (tb *TokenBucket) Allow() bool {
	if tb == nil {
		return true
	}
	return tb.limiter.Allow()
}

// Wait blocks until a request can proceed or ctx ends.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	if tb == nil {
		return nil
	}
	return tb.limiter.Wait(ctx)
}
