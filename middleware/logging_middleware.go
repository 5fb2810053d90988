package middleware

import (
	"context"
	"log"
	"time"

	"github.com/tthomas/go-rpc/payload"
)

// LoggingMiddleware records the procedure name, duration, and outcome of
// each CALL. It captures the start time before calling next, and logs the
// elapsed time after next returns.
//
// Example output:
//
//	procedure=add2 duration=42µs ok=true
func LoggingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, name string, req payload.Payload) (payload.Payload, bool) {
			start := time.Now()

			resp, ok := next(ctx, name, req)

			log.Printf("procedure=%s duration=%s ok=%t", name, time.Since(start), ok)
			return resp, ok
		}
	}
}
