package pool

import "sync"

// MapPool provides pooled maps for temporary use.
type MapPool[K comparable, V any] struct {
	pool sync.Pool
	cap  int
}

// NewMapPool creates a new pool for maps with the given initial capacity.
func NewMapPool[K comparable, V any](initialCap int) *MapPool[K, V] {
	return &MapPool[K, V]{
		pool: sync.Pool{
			New: func() any {
				return make(map[K]V, initialCap)
			},
		},
		cap: initialCap,
	}
}

// Acquire gets an empty map from the pool.
func (p *MapPool[K, V]) Acquire() map[K]V {
	return p.pool.Get().(map[K]V)
}

// Release clears m and returns it to the pool.
func (p *MapPool[K, V]) Release(m map[K]V) {
	if m == nil {
		return
	}
	// Large maps keep their buckets after clear; let them go.
	oversized := len(m) > p.cap*4
	clear(m)
	if !oversized {
		p.pool.Put(m)
	}
}
