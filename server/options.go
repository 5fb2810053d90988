package server

import (
	"time"

	"github.com/tthomas/go-rpc/discovery"
	"github.com/tthomas/go-rpc/middleware"
)

// Option configures a Server at construction time, following the functional
// options pattern, covering middleware composition plus the other
// per-server knobs.
type Option func(*Server)

// WithMiddleware appends a middleware layer around every CALL's handler
// invocation, applied in the order given (the first one listed is outermost).
func WithMiddleware(mw middleware.Middleware) Option {
	return func(s *Server) { s.middlewares = append(s.middlewares, mw) }
}

// WithReadTimeout sets a per-unit read deadline on every accepted connection.
// Left unset (the default), a stuck peer blocks its worker goroutine
// indefinitely; see DESIGN.md for why this stays opt-in.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) { s.readTimeout = d }
}

// WithDiscovery registers the server's advertised address with reg under
// serviceName once ServeAll starts listening, and deregisters it on
// Shutdown. This is a client-side-discovery convenience (see discovery
// package) layered entirely outside the FIND/CALL wire path.
func WithDiscovery(reg discovery.Registry, serviceName, advertiseAddr string) Option {
	return func(s *Server) {
		s.discoveryReg = reg
		s.serviceName = serviceName
		s.advertiseAddr = advertiseAddr
	}
}
