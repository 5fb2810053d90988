// Package chainmap implements a minimal separately-chained hash map, used by
// the procedure registry as its keyed-map collaborator.
//
// This is deliberately the simplest possible implementation of a keyed map
// with external hash/equal callables and chaining for collisions, rather
// than a general-purpose container: it is glue around the registry, not
// core RPC engineering, so it carries no third-party dependency and no
// concurrency guarantees of its own — callers that mutate it from multiple
// goroutines must hold their own lock, exactly as the procedure registry
// does.
package chainmap

// entry is one link in a bucket's chain.
type entry[K, V any] struct {
	key   K
	value V
}

// Map is a generic separately-chained hash map keyed by an externally
// supplied hash function and equality predicate, so it can be used with key
// types that are not comparable via Go's built-in == (e.g. []byte-derived
// keys), matching the collaborator contract's "external hash and compare".
type Map[K, V any] struct {
	buckets [][]entry[K, V]
	hash    func(K) uint64
	equal   func(a, b K) bool
	count   int
}

// New creates an empty map with the given hash and equality functions and an
// initial bucket count.
func New[K, V any](hash func(K) uint64, equal func(a, b K) bool) *Map[K, V] {
	const initialBuckets = 16
	return &Map[K, V]{
		buckets: make([][]entry[K, V], initialBuckets),
		hash:    hash,
		equal:   equal,
	}
}

// Len returns the number of key/value pairs currently stored.
func (m *Map[K, V]) Len() int { return m.count }

func (m *Map[K, V]) bucketIndex(k K) int {
	return int(m.hash(k) % uint64(len(m.buckets)))
}

// Insert stores value under key, replacing any existing value for an equal
// key in place (the existing chain link is reused, not removed and
// re-appended) and returning true if a replacement occurred.
func (m *Map[K, V]) Insert(key K, value V) (replaced bool) {
	idx := m.bucketIndex(key)
	chain := m.buckets[idx]
	for i := range chain {
		if m.equal(chain[i].key, key) {
			chain[i].value = value
			return true
		}
	}
	m.buckets[idx] = append(chain, entry[K, V]{key: key, value: value})
	m.count++
	if m.count > len(m.buckets)*4 {
		m.grow()
	}
	return false
}

// Lookup returns the value stored under key, if any.
func (m *Map[K, V]) Lookup(key K) (value V, ok bool) {
	idx := m.bucketIndex(key)
	for _, e := range m.buckets[idx] {
		if m.equal(e.key, key) {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Delete removes the entry for key, if present.
func (m *Map[K, V]) Delete(key K) (removed bool) {
	idx := m.bucketIndex(key)
	chain := m.buckets[idx]
	for i := range chain {
		if m.equal(chain[i].key, key) {
			m.buckets[idx] = append(chain[:i], chain[i+1:]...)
			m.count--
			return true
		}
	}
	return false
}

// grow doubles the bucket count and rehashes every entry, keeping average
// chain length bounded as the map fills up.
func (m *Map[K, V]) grow() {
	old := m.buckets
	m.buckets = make([][]entry[K, V], len(old)*2)
	for _, chain := range old {
		for _, e := range chain {
			idx := m.bucketIndex(e.key)
			m.buckets[idx] = append(m.buckets[idx], e)
		}
	}
}
