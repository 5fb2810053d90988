// pool.go pools whole client.Session values, using a channel as a FIFO
// free list. A Session cannot be shared across concurrent callers, so a
// process with many logical callers against the same address still benefits
// from keeping several ready-made sessions around instead of paying a fresh
// Dial (and its retry/backoff path) on every call.
package discovery

import (
	"fmt"
	"sync"

	"github.com/tthomas/go-rpc/client"
)

// SessionPool manages a pool of client.Session values dialed against a
// single address, borrowed exclusively by one caller at a time.
type SessionPool struct {
	mu       sync.Mutex
	sessions chan *client.Session
	addr     string
	maxSize  int
	cur      int
	factory  func() (*client.Session, error)
}

// NewSessionPool creates a pool that lazily dials up to maxSize sessions
// against addr using dial, the same factory-function shape as
// transport.NewConnPool.
func NewSessionPool(addr string, maxSize int, dial func() (*client.Session, error)) *SessionPool {
	return &SessionPool{
		sessions: make(chan *client.Session, maxSize),
		addr:     addr,
		maxSize:  maxSize,
		factory:  dial,
	}
}

// Get borrows a session from the pool, dialing a new one if the pool has
// room and is currently empty, or blocking until one is returned if the pool
// is already at capacity.
func (p *SessionPool) Get() (*client.Session, error) {
	select {
	case sess := <-p.sessions:
		return sess, nil
	default:
		p.mu.Lock()
		if p.cur < p.maxSize {
			p.cur++
			p.mu.Unlock()
			sess, err := p.factory()
			if err != nil {
				p.mu.Lock()
				p.cur--
				p.mu.Unlock()
				return nil, fmt.Errorf("dial session for %s: %w", p.addr, err)
			}
			return sess, nil
		}
		p.mu.Unlock()
		return <-p.sessions, nil
	}
}

// Put returns a borrowed session to the pool for reuse. The caller must not
// use sess again after calling Put.
func (p *SessionPool) Put(sess *client.Session) {
	p.sessions <- sess
}

// Close closes every session currently idle in the pool. Sessions still
// borrowed by a caller are unaffected and should be closed by that caller.
func (p *SessionPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	close(p.sessions)
	for sess := range p.sessions {
		sess.Close()
		p.cur--
	}
}
