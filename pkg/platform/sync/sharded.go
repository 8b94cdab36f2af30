package sync

import (
	"sync"
)

const shardCount = 32

// ShardedMap is a string-keyed map split across 32 independently locked shards.
// Every operation on a single key runs under that key's shard lock, so
// read-modify-write sequences passed to Update are atomic per key while
// unrelated keys rarely contend.
type ShardedMap[V any] struct {
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu    sync.Mutex
	items map[string]V
}

// NewShardedMap creates an empty ShardedMap.
func NewShardedMap[V any]() *ShardedMap[V] {
	m := &ShardedMap[V]{}
	for i := range m.shards {
		m.shards[i].items = make(map[string]V)
	}
	return m
}

// Update runs fn with the current value for key (ok is false when absent) and
// stores the value it returns. fn must not call back into the map.
func (m *ShardedMap[V]) Update(key string, fn func(current V, ok bool) V) V {
	s := &m.shards[shardFor(key)]
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[key]
	next := fn(current, ok)
	s.items[key] = next
	return next
}

// Get returns the value stored for key.
func (m *ShardedMap[V]) Get(key string) (V, bool) {
	s := &m.shards[shardFor(key)]
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[key]
	return v, ok
}

// Delete removes key.
func (m *ShardedMap[V]) Delete(key string) {
	s := &m.shards[shardFor(key)]
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
}

// DeleteFunc removes every entry for which remove returns true and reports how
// many were removed. Shards are visited one at a time.
func (m *ShardedMap[V]) DeleteFunc(remove func(key string, v V) bool) int {
	removed := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.items {
			if remove(k, v) {
				delete(s.items, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of entries across all shards.
func (m *ShardedMap[V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		n += len(s.items)
		s.mu.Unlock()
	}
	return n
}

// shardFor returns the shard index for the given key.
// Empty keys default to shard 0.
func shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(hashString(key) % shardCount)
}

// hashString is a djb2-style hash used only for shard selection.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
