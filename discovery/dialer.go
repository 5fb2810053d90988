// dialer.go wraps "discover -> pick -> dial" into one call, with a retry
// loop around the dial attempt only. The core client session (package
// client) never retries a FIND or CALL itself — the wire protocol has no
// failure classification that would make retrying a handler invocation
// safe — but retrying a *connection* attempt against a freshly-picked
// instance is ordinary dial-time flakiness, the same class of error
// middleware/retry_middleware.go retried for "timeout"/"connection refused"
// strings. That exponential-backoff shape is reused here, applied to
// client.Dial instead of a handler round-trip.
package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tthomas/go-rpc/client"
)

// Dialer resolves a service name to an address via Registry and Balancer,
// then dials a fresh client.Session against it, retrying the dial with
// exponential backoff on failure.
type Dialer struct {
	Registry   Registry
	Balancer   Balancer
	MaxRetries int
	BaseDelay  time.Duration
}

// NewDialer builds a Dialer with the given registry and balancer, and the
// teacher's retry defaults (3 attempts, 100ms base delay).
func NewDialer(reg Registry, bal Balancer) *Dialer {
	return &Dialer{
		Registry:   reg,
		Balancer:   bal,
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
	}
}

// Dial discovers instances for serviceName, picks one via the balancer, and
// dials it, retrying with exponential backoff (baseDelay * 2^attempt) on
// dial failure up to MaxRetries times before giving up.
func (d *Dialer) Dial(serviceName string) (*client.Session, error) {
	instances, err := d.Registry.Discover(serviceName)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", serviceName, err)
	}

	var lastErr error
	for attempt := 0; attempt <= d.MaxRetries; attempt++ {
		instance, err := d.Balancer.Pick(instances)
		if err != nil {
			return nil, fmt.Errorf("pick instance for %s: %w", serviceName, err)
		}

		host, port, err := splitHostPort(instance.Addr)
		if err != nil {
			return nil, err
		}

		sess, err := client.Dial(host, port)
		if err == nil {
			return sess, nil
		}
		lastErr = err

		if attempt < d.MaxRetries {
			time.Sleep(d.BaseDelay * time.Duration(1<<attempt))
		}
	}
	return nil, fmt.Errorf("dial %s after %d attempts: %w", serviceName, d.MaxRetries+1, lastErr)
}

// splitHostPort breaks a "host:port" address into client.Dial's
// (addr string, port int) shape.
func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid instance address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in address %q: %w", addr, err)
	}
	return host, port, nil
}
