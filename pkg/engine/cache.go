package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// memoCache is an append-only memoization table keyed by path. Loads are
// deduplicated with singleflight so concurrent renders requesting the same
// path trigger exactly one underlying fetch. Successful results are cached
// for the lifetime of the owning engine; failures are not cached, so a
// transient read error does not poison the key.
type memoCache[V any] struct {
	mu    sync.RWMutex
	done  map[string]V
	group singleflight.Group
}

func newMemoCache[V any]() *memoCache[V] {
	return &memoCache[V]{done: make(map[string]V)}
}

// get returns the cached value for key, fetching it at most once across
// concurrent callers. A canceled context abandons the wait without canceling
// the in-flight fetch for other waiters.
func (c *memoCache[V]) get(ctx context.Context, key string, fetch func() (V, error)) (V, error) {
	c.mu.RLock()
	v, ok := c.done[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.done[key] = v
		c.mu.Unlock()
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}
