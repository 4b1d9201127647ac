package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/fx"
)

// Cache is a small keyed store with per-entry expiry. Expired entries are
// evicted in the background, whether or not they are read again.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	// GetOrSet returns the live value for key, storing value first when
	// there is none. The second result is true when the value already existed.
	GetOrSet(key K, value V, ttl time.Duration) (V, bool)
	Delete(key K)
	Len() int
	Close()
}

type ttlCache[K comparable, V any] struct {
	items *ttlcache.Cache[K, V]
	stop  sync.Once
}

// NewTTLCache returns an in-memory cache and starts its eviction loop. A
// non-positive ttl keeps the entry until it is deleted or overwritten. Close
// stops the loop.
func NewTTLCache[K comparable, V any]() Cache[K, V] {
	items := ttlcache.New[K, V](
		ttlcache.WithDisableTouchOnHit[K, V](),
	)
	go items.Start()
	return &ttlCache[K, V]{items: items}
}

// Bind stops the cache when the application shuts down. A nil lifecycle is
// ignored so callers outside fx can still construct caches.
func Bind[K comparable, V any](lc fx.Lifecycle, c Cache[K, V]) Cache[K, V] {
	if lc == nil {
		return c
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			c.Close()
			return nil
		},
	})
	return c
}

func (c *ttlCache[K, V]) Get(key K) (V, bool) {
	item := c.items.Get(key)
	if item == nil {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

func (c *ttlCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.items.Set(key, value, entryTTL(ttl))
}

func (c *ttlCache[K, V]) GetOrSet(key K, value V, ttl time.Duration) (V, bool) {
	item, found := c.items.GetOrSet(key, value, ttlcache.WithTTL[K, V](entryTTL(ttl)))
	return item.Value(), found
}

func (c *ttlCache[K, V]) Delete(key K) {
	c.items.Delete(key)
}

func (c *ttlCache[K, V]) Len() int {
	return c.items.Len()
}

// Close stops the eviction loop. Only the first call has an effect.
func (c *ttlCache[K, V]) Close() {
	c.stop.Do(c.items.Stop)
}

func entryTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttlcache.NoTTL
	}
	return ttl
}
