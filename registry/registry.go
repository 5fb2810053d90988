// Package registry implements the server-side procedure registry: the
// primary name->entry map populated by Register, and the secondary
// id->handler map populated lazily as clients FIND procedures.
//
// Both maps are backed by chainmap.Map. The two maps are guarded by a
// single RWMutex rather than relying on chainmap for its own concurrency
// safety, so one mutex covering both maps keeps register/replace atomic
// with respect to concurrent finds.
package registry

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tthomas/go-rpc/internal/chainmap"
	"github.com/tthomas/go-rpc/payload"
	"github.com/tthomas/go-rpc/procname"
	"github.com/tthomas/go-rpc/rpcerr"
)

// Handler is the capability a registered procedure implements: given a
// request Payload, produce a response Payload, or report failure via ok=false
// (translated by the connection handler into the INCONSISTENT response flag).
type Handler interface {
	Invoke(req payload.Payload) (resp payload.Payload, ok bool)
}

// HandlerFunc adapts a plain function to the Handler interface, the same
// idiom as http.HandlerFunc.
type HandlerFunc func(req payload.Payload) (payload.Payload, bool)

// Invoke calls f.
func (f HandlerFunc) Invoke(req payload.Payload) (payload.Payload, bool) { return f(req) }

// entry is one registered procedure, owned by the Registry from Register
// until process shutdown; entries are never removed.
type entry struct {
	name         string
	id           uint32
	handler      Handler
	registeredAt time.Time
	calls        atomic.Uint64
}

// Registry is the server's procedure directory: a primary name->entry map
// and a secondary id->handler map, shared across every connection handler.
type Registry struct {
	mu      sync.RWMutex
	byName  *chainmap.Map[string, *entry]
	byID    *chainmap.Map[uint32, *entry]
	counter atomic.Uint32
}

// New creates an empty registry with its identifier counter seeded from a
// cryptographically random 32-bit value — the Design Notes' recommended
// replacement for "wall-clock seconds + counter", guaranteeing uniqueness
// within one process run without depending on clock resolution.
func New() *Registry {
	r := &Registry{
		byName: chainmap.New[string, *entry](hashString, func(a, b string) bool { return a == b }),
		byID:   chainmap.New[uint32, *entry](hashUint32, func(a, b uint32) bool { return a == b }),
	}
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err == nil {
		r.counter.Store(binary.BigEndian.Uint32(seed[:]))
	}
	return r
}

// Register binds name to handler. A name that is already registered keeps
// its existing procedure id and swaps only the handler binding, atomically
// with respect to concurrent Find/Resolve calls (see DESIGN.md).
func (r *Registry) Register(name string, handler Handler) (uint32, error) {
	if handler == nil {
		return 0, rpcerr.ErrInvalidArguments
	}
	if err := procname.Validate(name); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName.Lookup(name); ok {
		existing.handler = handler
		if bound, ok := r.byID.Lookup(existing.id); ok {
			bound.handler = handler
		}
		return existing.id, nil
	}

	e := &entry{
		name:         name,
		id:           r.nextID(),
		handler:      handler,
		registeredAt: time.Now(),
	}
	r.byName.Insert(name, e)
	return e.id, nil
}

// nextID returns the next process-unique identifier. Must be called with
// r.mu held.
func (r *Registry) nextID() uint32 {
	return r.counter.Add(1)
}

// Find looks up name in the primary registry and, on success, binds the
// secondary id->handler map (idempotent if already bound) so a subsequent
// CALL can resolve purely by id without touching the name map. This mirrors
// the connection handler's FIND-unit step 3.
func (r *Registry) Find(name string) (id uint32, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, found := r.byName.Lookup(name)
	if !found {
		return 0, false
	}
	r.byID.Insert(e.id, e)
	return e.id, true
}

// Resolve looks up a handler by procedure id in the secondary registry,
// used only during CALL. An id never bound via a prior Find (because the
// client fabricated it, or FIND preceded a replacement on a connection that
// never re-found it) misses here; the connection handler must respond with
// INCONSISTENT rather than invoke anything.
func (r *Registry) Resolve(id uint32) (Handler, bool) {
	r.mu.RLock()
	e, ok := r.byID.Lookup(id)
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	e.calls.Add(1)
	return e.handler, true
}

func hashString(s string) uint64 {
	var h uint64 = 1469598103934665603 // FNV-1a offset basis
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211 // FNV-1a prime
	}
	return h
}

func hashUint32(n uint32) uint64 { return uint64(n) }
