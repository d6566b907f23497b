// internal/product/cached.go
//
// Read-through cache in front of any Lookup.
//
// Context
// -------
// Crawlers tend to hit the same product many times in a burst.  Cached
// wraps a Lookup, stores JSON-encoded products in a cache.Store (memory LRU
// or Redis), and collapses concurrent misses for the same key with
// singleflight so the backend sees one query per key at a time.
//
// Notes
// -----
// • Only hits are stored.  Misses and errors always go to the backend.
// • Store errors are logged and treated as a miss; they never fail a lookup.
package product

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/uni10/storefront-seo/internal/cache"
	"github.com/uni10/storefront-seo/internal/metrics"
)

// Cached decorates a Lookup with a Store.
type Cached struct {
	next  Lookup
	store cache.Store
	ttl   time.Duration
	sfg   singleflight.Group
	log   *zap.Logger
}

// NewCached returns a read-through cache.  A nil logger uses zap.L().
func NewCached(next Lookup, store cache.Store, ttl time.Duration, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.L()
	}
	return &Cached{next: next, store: store, ttl: ttl, log: log}
}

// BySlug implements Lookup.
func (c *Cached) BySlug(ctx context.Context, slug string) (*Product, error) {
	return c.get(ctx, "slug:"+slug, func(ctx context.Context) (*Product, error) {
		return c.next.BySlug(ctx, slug)
	})
}

// ByID implements Lookup.
func (c *Cached) ByID(ctx context.Context, id string) (*Product, error) {
	return c.get(ctx, "id:"+id, func(ctx context.Context) (*Product, error) {
		return c.next.ByID(ctx, id)
	})
}

func (c *Cached) get(ctx context.Context, key string, load func(context.Context) (*Product, error)) (*Product, error) {
	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.ProductCacheTotal.WithLabelValues("error").Inc()
		c.log.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		var p Product
		if err := json.Unmarshal(raw, &p); err == nil {
			metrics.ProductCacheTotal.WithLabelValues("hit").Inc()
			return &p, nil
		}
		c.log.Warn("product cache entry undecodable", zap.String("key", key))
	default:
		metrics.ProductCacheTotal.WithLabelValues("miss").Inc()
	}

	v, err, _ := c.sfg.Do(key, func() (any, error) {
		p, err := load(ctx)
		if err != nil || p == nil {
			return p, err
		}
		if b, err := json.Marshal(p); err == nil {
			if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
				c.log.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p, _ := v.(*Product)
	return p, nil
}
