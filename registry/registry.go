// Package registry provides the process-wide named counter store that
// thread-local stat containers drain into during aggregation.
package registry

import (
	"sync"

	"github.com/cespare/xxhash"
)

const shardCount = 16

// Registry is a sharded map from counter key to cumulative value. Every
// operation is individually atomic and safe for concurrent use from any
// goroutine; absent keys read as 0. Keys are created on first write.
type Registry struct {
	shards [shardCount]shard
}

type shard struct {
	mu     sync.RWMutex
	values map[string]int64
}

// New returns an empty registry.
func New() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].values = make(map[string]int64)
	}
	return r
}

func (r *Registry) shard(key string) *shard {
	return &r.shards[xxhash.Sum64String(key)%shardCount]
}

// Get returns the cumulative value for key, or 0 if the key has never been
// written.
func (r *Registry) Get(key string) int64 {
	s := r.shard(key)
	s.mu.RLock()
	v := s.values[key]
	s.mu.RUnlock()
	return v
}

// Lookup returns the value for key and whether the key exists.
func (r *Registry) Lookup(key string) (int64, bool) {
	s := r.shard(key)
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	return v, ok
}

// Increment atomically adds delta to the value for key.
func (r *Registry) Increment(key string, delta int64) {
	s := r.shard(key)
	s.mu.Lock()
	s.values[key] += delta
	s.mu.Unlock()
}

// Set atomically replaces the value for key.
func (r *Registry) Set(key string, value int64) {
	s := r.shard(key)
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Len returns the number of keys in the registry.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		n += len(s.values)
		s.mu.RUnlock()
	}
	return n
}

// Snapshot returns a point-in-time copy of every key and value. Each shard
// is copied atomically; the snapshot as a whole is best-effort when writers
// are concurrent.
func (r *Registry) Snapshot() map[string]int64 {
	out := make(map[string]int64, r.Len())
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		for k, v := range s.values {
			out[k] = v
		}
		s.mu.RUnlock()
	}
	return out
}
