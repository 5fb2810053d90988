package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/tthomas/go-rpc/payload"
)

// RateLimitMiddleware creates a rate limiter using the token bucket algorithm
// and guards every CALL's handler invocation with it, across all connections.
//
// Token bucket: tokens are added at rate r per second, up to a burst size.
// Each request consumes one token. If the bucket is empty, the request is
// rejected. Unlike a leaky bucket (constant drain rate), token bucket allows
// short bursts of traffic.
//
// CRITICAL: the limiter is created in the OUTER closure (once per middleware
// creation), NOT in the inner handler function, so the bucket state is
// shared across requests instead of resetting on every call.
//
// Parameters:
//   - r: token refill rate (tokens per second)
//   - burst: maximum bucket size (allows this many requests in a burst)
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst) // shared across all requests
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, name string, req payload.Payload) (payload.Payload, bool) {
			if !limiter.Allow() {
				// No tokens available — reject immediately (short-circuit, don't call next).
				return payload.Payload{}, false
			}
			return next(ctx, name, req)
		}
	}
}
