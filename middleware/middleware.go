// Package middleware implements the onion-model middleware chain around a
// registered procedure's invocation.
//
// Unlike the wire protocol's FIND/CALL framing, which is fixed and never
// wrapped, the handler invocation a CALL unit performs is a plain Go
// function call — exactly the kind of call-site the decorator pattern wraps
// cleanly. Middleware wraps registry.Handler, not the connection handler
// itself, so cross-cutting concerns (logging, timeout, rate limiting) never
// see wire bytes, only payloads.
//
// Onion model execution order:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
//	Request:   A.before → B.before → C.before → handler
//	Response:  handler → C.after → B.after → A.after
//
// Each middleware can do pre-processing, call next to continue the chain,
// do post-processing, or short-circuit by returning without calling next
// (e.g. an exhausted rate limiter never invokes the wrapped handler).
package middleware

import (
	"context"

	"github.com/tthomas/go-rpc/payload"
	"github.com/tthomas/go-rpc/registry"
)

// HandlerFunc is the function signature middleware wraps: a procedure name
// (for logging/metrics), a context carrying any deadline, and the request
// payload in; a response payload and success flag out.
type HandlerFunc func(ctx context.Context, name string, req payload.Payload) (payload.Payload, bool)

// Middleware takes a handler and returns a new handler that wraps it.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes multiple middlewares into a single middleware, built from
// right to left so the first middleware listed is the outermost layer.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// FromHandler adapts a registry.Handler into the base HandlerFunc a chain
// wraps, discarding ctx and name since registry.Handler only sees payloads.
func FromHandler(h registry.Handler) HandlerFunc {
	return func(_ context.Context, _ string, req payload.Payload) (payload.Payload, bool) {
		return h.Invoke(req)
	}
}
