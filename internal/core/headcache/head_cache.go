// Package headcache caches one-shot latest-height lookups so that frequent
// status polling does not hit the provider on every call.
package headcache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Source reports the latest chain height.
type Source interface {
	LatestHeight(ctx context.Context) (uint64, error)
}

// HeadCache caches heights per client. Entries are keyed by client ID so a
// swapped-in client never sees the previous client's height.
type HeadCache struct {
	ttl   time.Duration
	store *cache.Cache
}

// New creates a head cache. A non-positive ttl disables caching.
func New(ttl time.Duration) *HeadCache {
	h := &HeadCache{ttl: ttl}
	if ttl > 0 {
		h.store = cache.New(ttl, 2*ttl)
	}
	return h
}

// LatestHeight returns the cached height for key if within TTL, otherwise
// fetches fresh from src. Errors are never cached.
func (h *HeadCache) LatestHeight(ctx context.Context, key string, src Source) (uint64, error) {
	if h.store != nil {
		if v, ok := h.store.Get(key); ok {
			return v.(uint64), nil
		}
	}

	height, err := src.LatestHeight(ctx)
	if err != nil {
		return 0, err
	}

	if h.store != nil {
		h.store.Set(key, height, cache.DefaultExpiration)
	}
	return height, nil
}

// Invalidate drops the cached height for key.
func (h *HeadCache) Invalidate(key string) {
	if h.store != nil {
		h.store.Delete(key)
	}
}
