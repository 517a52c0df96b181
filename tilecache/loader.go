// Package tilecache implements bounded, single-flight-coalescing loading
// caches: metadata (Store,path)→attrs, array handle (Store,path)→*zarr.Array,
// and per-buffer tile (level,z,c,t,x,y,w,h)→bytes. One generic type serves
// all three so the coalescing discipline, at most one concurrent load per
// key, is implemented exactly once.
package tilecache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/go-logr/logr"
)

// Loader is a bounded associative cache with asynchronous single-flight
// loading: concurrent misses on the same key coalesce into one call to
// load.
type Loader[K comparable, V any] struct {
	cache  *lru.Cache[K, V]
	group  singleflight.Group
	load   func(ctx context.Context, key K) (V, error)
	logger logr.Logger
}

// Option configures a Loader.
type Option func(*options)

type options struct {
	logger logr.Logger
}

// WithLogger attaches a structured logger for cache hit/miss diagnostics.
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewLoader builds a Loader bounded to size entries, using load to
// materialize a value on miss.
func NewLoader[K comparable, V any](size int, load func(ctx context.Context, key K) (V, error), opts ...Option) (*Loader[K, V], error) {
	o := options{logger: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	c, err := lru.New[K, V](size)
	if err != nil {
		return nil, fmt.Errorf("tilecache: new LRU: %w", err)
	}
	return &Loader[K, V]{cache: c, load: load, logger: o.logger}, nil
}

// Get returns the cached value for key, loading it (once, even under
// concurrent callers) on miss.
func (l *Loader[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := l.cache.Get(key); ok {
		l.logger.V(1).Info("cache hit", "key", key)
		return v, nil
	}

	sfKey := fmt.Sprintf("%v", key)
	v, err, shared := l.group.Do(sfKey, func() (any, error) {
		// Re-check: another goroutine may have populated the entry
		// while this one waited to enter Do for a different sfKey
		// collision epoch, or raced the first Get above.
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		l.logger.V(1).Info("cache miss, loading", "key", key)
		loaded, err := l.load(ctx, key)
		if err != nil {
			return nil, err
		}
		l.cache.Add(key, loaded)
		return loaded, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	if shared {
		l.logger.V(1).Info("load request coalesced", "key", key)
	}
	return v.(V), nil
}

// Invalidate drops key from the cache, if present.
func (l *Loader[K, V]) Invalidate(key K) {
	l.cache.Remove(key)
}

// Peek returns the cached value for key without triggering a load and
// without affecting LRU recency. Used by callers that need to test
// cache membership before deciding whether to populate several related
// keys at once (the RGB-triplet coalescing policy).
func (l *Loader[K, V]) Peek(key K) (V, bool) {
	return l.cache.Peek(key)
}

// Add inserts value for key directly, bypassing load.
func (l *Loader[K, V]) Add(key K, value V) {
	l.cache.Add(key, value)
}

// Purge drops every cached entry. Used by the RGB-prefetch coalescing
// policy: when a channel of an RGB triplet is not already cached, the
// whole tile cache is invalidated rather than relying on LRU eviction to
// roll the previous triplet off.
func (l *Loader[K, V]) Purge() {
	l.cache.Purge()
}

// Len reports the number of entries currently cached.
func (l *Loader[K, V]) Len() int {
	return l.cache.Len()
}
