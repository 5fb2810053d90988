package middleware

import (
	"context"
	"time"

	"github.com/tthomas/go-rpc/payload"
)

// result carries a handler's return values through the race against the
// timeout in TimeOutMiddleware.
type result struct {
	resp payload.Payload
	ok   bool
}

// TimeOutMiddleware enforces a maximum duration for each CALL's handler
// invocation.
//
// Implementation:
//  1. Create a context with timeout (ctx.Done() fires when the timeout expires)
//  2. Run the next handler in a goroutine, sending its result to a channel
//  3. Select between the result channel and ctx.Done()
//
// Note: the handler goroutine is NOT cancelled — it continues running in the
// background. The timeout only controls when the caller gives up waiting; a
// fired timeout is reported as ok=false (INCONSISTENT on the wire), not an
// error value, since registry.Handler has no error channel of its own.
func TimeOutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, name string, req payload.Payload) (payload.Payload, bool) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan result, 1) // buffered: never blocks if the timeout wins
			go func() {
				resp, ok := next(ctx, name, req)
				done <- result{resp: resp, ok: ok}
			}()

			select {
			case r := <-done:
				return r.resp, r.ok
			case <-ctx.Done():
				return payload.Payload{}, false
			}
		}
	}
}
