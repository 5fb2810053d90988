// Package server implements the RPC server: procedure registration, the
// accept loop, and the per-connection FIND/CALL handler.
//
// Request processing pipeline, one goroutine per accepted connection:
//
//	Accept conn → handleConn (serial read/dispatch/respond loop, no per-request fan-out)
//	  → FIND: wire.ReadFlag → registry.Find → wire.WriteFlag/WriteInt64
//	  → CALL: wire.ReadInt64 → payload.Decode → middleware chain → registry.Resolve → payload.Encode
//
// A connection never forks a goroutine per request: responses on one
// connection must come back in the order their requests arrived, so one
// read, one dispatch, one write happen before the next read.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tthomas/go-rpc/discovery"
	"github.com/tthomas/go-rpc/middleware"
	"github.com/tthomas/go-rpc/payload"
	"github.com/tthomas/go-rpc/registry"
	"github.com/tthomas/go-rpc/rpcerr"
	"github.com/tthomas/go-rpc/wire"
)

// Server hosts named procedures and serves FIND/CALL requests over accepted
// TCP connections.
type Server struct {
	reg      *registry.Registry
	listener net.Listener
	wg       sync.WaitGroup
	shutdown atomic.Bool

	middlewares []middleware.Middleware
	chain       middleware.Middleware
	readTimeout time.Duration

	discoveryReg  discovery.Registry
	serviceName   string
	advertiseAddr string
}

// NewServer creates a Server with an empty procedure registry, configured by
// the given Options.
func NewServer(opts ...Option) *Server {
	s := &Server{reg: registry.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register binds name to handler in the procedure registry. See
// registry.Registry.Register for the duplicate-name and validation rules.
func (s *Server) Register(name string, handler registry.Handler) (uint32, error) {
	return s.reg.Register(name, handler)
}

// ServeAll binds network/address, preferring an IPv6/dual-stack listener and
// falling back to plain tcp so IPv4-mapped clients still connect, then runs
// the accept loop until Shutdown closes the listener. It blocks.
func (s *Server) ServeAll(network, address string) error {
	listener, err := s.listen(network, address)
	if err != nil {
		return fmt.Errorf("%w: %v", rpcerr.ErrSocketCreation, err)
	}
	s.listener = listener

	// Composed once at startup, not per-call: handleCall applies it to a
	// fresh base handler closing over that call's resolved id, since the
	// resolution itself (and the S7 replace-in-place semantics it must
	// observe) happens per CALL, not once at startup.
	s.chain = middleware.Chain(s.middlewares...)

	if s.discoveryReg != nil && s.serviceName != "" {
		if err := s.discoveryReg.Register(s.serviceName, discovery.ServiceInstance{Addr: s.advertiseAddr}, 10); err != nil {
			log.Printf("discovery: register %s failed: %v", s.serviceName, err)
		}
	}

	log.Printf("rpc: listening on %s", listener.Addr())
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			return fmt.Errorf("%w: %v", rpcerr.ErrNetworkFailure, err)
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// listen tries network (typically "tcp6" for a dual-stack wildcard bind)
// first and falls back to plain "tcp" so the caller is never stuck behind a
// host with IPv6 disabled, mirroring the client session's own tcp6-then-tcp
// dial preference.
func (s *Server) listen(network, address string) (net.Listener, error) {
	if network == "" {
		network = "tcp6"
	}
	listener, err := net.Listen(network, address)
	if err == nil {
		return listener, nil
	}
	if network == "tcp6" {
		return net.Listen("tcp", address)
	}
	return nil, err
}

// handleConn runs the serial FIND/CALL loop for one accepted connection:
// read one unit's flag, dispatch it fully (including writing its response),
// then read the next. No request ever overlaps another on the same
// connection.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	for {
		if s.readTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}

		flag, err := wire.ReadFlag(conn)
		if err != nil {
			return
		}

		switch flag {
		case wire.Find:
			if err := s.handleFind(conn); err != nil {
				return
			}
		case wire.Call:
			if err := s.handleCall(conn); err != nil {
				return
			}
		default:
			// wire.ReadFlag already rejects unknown bytes; a Found/NotFound/
			// Consistent/Inconsistent flag arriving from a client is a
			// protocol violation this server never expects to originate.
			return
		}
	}
}

// handleFind implements the FIND unit: read the name, look it up, and reply
// FOUND+id or NOT_FOUND.
func (s *Server) handleFind(conn net.Conn) error {
	n, err := wire.ReadSize(conn)
	if err != nil {
		return err
	}
	if n > wire.MaxNameLen {
		return fmt.Errorf("%w: name length %d exceeds %d", rpcerr.ErrOverlength, n, wire.MaxNameLen)
	}
	nameBytes, err := wire.ReadBytes(conn, n)
	if err != nil {
		return err
	}
	name := string(nameBytes)

	id, ok := s.reg.Find(name)
	if !ok {
		return wire.WriteFlag(conn, wire.NotFound)
	}
	if err := wire.WriteFlag(conn, wire.Found); err != nil {
		return err
	}
	return wire.WriteInt64(conn, int64(id))
}

// handleCall implements the CALL unit: read the id and payload, run the
// middleware-wrapped handler, and reply CONSISTENT+payload or INCONSISTENT.
func (s *Server) handleCall(conn net.Conn) error {
	idVal, err := wire.ReadInt64(conn)
	if err != nil {
		return err
	}
	id := uint32(idVal)

	req, err := payload.Decode(conn)
	if err != nil {
		// A malformed payload from the client is a protocol-level problem
		// with this connection, not a handler failure to report INCONSISTENT
		// for — the client already violated the framing contract.
		return err
	}

	// Resolved fresh on every call (not cached from FIND time) so a
	// duplicate Register's handler swap takes effect immediately, per S7.
	// An id never bound by a prior Find on this or any connection misses
	// here, which folds into INCONSISTENT below rather than invoking
	// anything, per S8.
	h, resolved := s.reg.Resolve(id)
	base := func(ctx context.Context, name string, req payload.Payload) (payload.Payload, bool) {
		if !resolved {
			return payload.Payload{}, false
		}
		return h.Invoke(req)
	}

	resp, ok := s.chain(base)(context.Background(), fmt.Sprintf("#%d", id), req)
	if !ok || !resp.Consistent() {
		return wire.WriteFlag(conn, wire.Inconsistent)
	}
	if err := wire.WriteFlag(conn, wire.Consistent); err != nil {
		return err
	}
	return payload.Encode(conn, resp)
}

// Shutdown stops the server: deregisters from discovery (if configured) so
// clients route elsewhere first, stops accepting new connections, then waits
// up to ctx's deadline for in-flight connection handlers to finish their
// current unit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.discoveryReg != nil && s.serviceName != "" {
		if err := s.discoveryReg.Deregister(s.serviceName, s.advertiseAddr); err != nil {
			log.Printf("discovery: deregister %s failed: %v", s.serviceName, err)
		}
	}

	s.shutdown.Store(true)
	if s.listener != nil {
		s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: timeout waiting for connections to finish", rpcerr.ErrNetworkFailure)
	}
}
