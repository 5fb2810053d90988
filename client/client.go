// Package client implements the RPC client session: one persistent TCP
// connection issuing FIND then CALL requests strictly in order.
//
// Call flow:
//
//	Dial(addr, port)   → connect one socket, preferring tcp6 with a tcp fallback
//	Find(name)         → FIND unit → *Handle (opaque procedure id) or absence
//	Call(handle, req)  → CALL unit → response Payload or absence
//	Close()            → release the socket, safe to call once from any goroutine
//
// A Session is not safe for concurrent use by multiple callers: the caller
// must serialize its own Find/Call sequence, since nothing here guards
// against concurrent writers sharing one net.Conn.
package client

import (
	"fmt"
	"net"
	"sync"

	"github.com/tthomas/go-rpc/payload"
	"github.com/tthomas/go-rpc/procname"
	"github.com/tthomas/go-rpc/rpcerr"
	"github.com/tthomas/go-rpc/wire"
)

// Handle is the resolved procedure id returned by a successful Find. It is
// opaque to the caller and has no meaning on a different Session.
type Handle struct {
	id uint32
}

// Session owns one stream socket for its entire lifetime; there is no
// per-call dialing.
type Session struct {
	conn     net.Conn
	closeOne sync.Once
}

// Option configures a Session at Dial time.
type Option func(*session)

type session struct {
	network string
}

// Dial connects to addr:port, preferring an IPv6/dual-stack dial and falling
// back to plain tcp, mirroring the server acceptor's own tcp6-then-tcp
// preference so a client and server on the same host always agree on which
// stack to try first.
func Dial(addr string, port int, opts ...Option) (*Session, error) {
	cfg := &session{network: "tcp6"}
	for _, opt := range opts {
		opt(cfg)
	}

	target := fmt.Sprintf("%s:%d", addr, port)
	conn, err := net.Dial(cfg.network, target)
	if err != nil && cfg.network == "tcp6" {
		conn, err = net.Dial("tcp", target)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rpcerr.ErrSocketCreation, err)
	}
	return &Session{conn: conn}, nil
}

// Find validates name against the shared alphabet rule, sends a FIND unit,
// and returns a Handle on FOUND. NOT_FOUND is reported as
// rpcerr.ErrHandlerNotFound (errors.Is-comparable), the same sentinel a
// server-side CALL against an unresolved id reports, so both "the name never
// existed" and "the id was never resolved" share one vocabulary.
func (s *Session) Find(name string) (*Handle, error) {
	if err := procname.Validate(name); err != nil {
		return nil, err
	}

	if err := wire.WriteFlag(s.conn, wire.Find); err != nil {
		return nil, err
	}
	if err := wire.WriteSize(s.conn, uint32(len(name))); err != nil {
		return nil, err
	}
	if err := wire.WriteBytes(s.conn, []byte(name)); err != nil {
		return nil, err
	}

	flag, err := wire.ReadFlag(s.conn)
	if err != nil {
		return nil, err
	}
	if flag == wire.NotFound {
		return nil, rpcerr.ErrHandlerNotFound
	}
	if flag != wire.Found {
		return nil, fmt.Errorf("%w: unexpected find response flag %v", rpcerr.ErrProtocol, flag)
	}

	id, err := wire.ReadInt64(s.conn)
	if err != nil {
		return nil, err
	}
	return &Handle{id: uint32(id)}, nil
}

// Call validates the request payload's consistency invariant before writing
// anything, sends a CALL unit for h, and returns the decoded response
// payload on CONSISTENT. An INCONSISTENT response is reported as
// rpcerr.ErrInconsistentData, the same sentinel a locally-invalid request
// payload is rejected with before anything is written.
func (s *Session) Call(h *Handle, req payload.Payload) (payload.Payload, error) {
	if !req.Consistent() {
		return payload.Payload{}, rpcerr.ErrInconsistentData
	}

	if err := wire.WriteFlag(s.conn, wire.Call); err != nil {
		return payload.Payload{}, err
	}
	if err := wire.WriteInt64(s.conn, int64(h.id)); err != nil {
		return payload.Payload{}, err
	}
	if err := payload.Encode(s.conn, req); err != nil {
		return payload.Payload{}, err
	}

	flag, err := wire.ReadFlag(s.conn)
	if err != nil {
		return payload.Payload{}, err
	}
	if flag == wire.Inconsistent {
		return payload.Payload{}, rpcerr.ErrInconsistentData
	}
	if flag != wire.Consistent {
		return payload.Payload{}, fmt.Errorf("%w: unexpected call response flag %v", rpcerr.ErrProtocol, flag)
	}

	return payload.Decode(s.conn)
}

// Close releases the session's socket. Safe to call more than once, and from
// any goroutine, via sync.Once — the one exception to the "not safe for
// concurrent use" rule, since a caller who is done with a session should
// always be able to close it without coordinating with whoever else might
// still hold the pointer.
func (s *Session) Close() error {
	var err error
	s.closeOne.Do(func() {
		err = s.conn.Close()
	})
	return err
}
