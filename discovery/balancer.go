// balancer.go provides load balancing strategies for picking one server
// address out of several discovered ServiceInstances, before the client
// opens the one RPC session package client describes.
//
// Three strategies are implemented:
//   - RoundRobin:      equal-capacity server processes
//   - WeightedRandom:  heterogeneous server processes (different CPU/memory)
//   - ConsistentHash:  cache-affinity-sensitive procedures
package discovery

// Balancer is the interface for load balancing strategies. The discovery
// Dialer calls Pick() before each Dial to select a target instance.
type Balancer interface {
	// Pick selects one instance from the available list. Must be
	// goroutine-safe: called concurrently by every caller dialing a session.
	Pick(instances []ServiceInstance) (*ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}
