// internal/cache/lru.go
//
// Tiny LRU store with per-entry expiry.  Holds encoded product payloads
// for the cached lookup when no Redis address is configured.  No external
// deps; good for a few thousand entries.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Store is the byte-oriented contract shared by the memory and Redis
// backends.  A miss is (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// LRU is a least-recently-used store guarded by a mutex.
type LRU struct {
	mu   sync.Mutex
	cap  int
	ll   *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type pair struct {
	key string
	val []byte
	exp time.Time // zero means no expiry
}

// New returns an LRU with the given capacity.  Panics on cap < 1.
func New(capacity int) *LRU {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[string]*list.Element, capacity),
		now:  time.Now,
	}
}

// Get retrieves a value and marks it MRU.  Expired entries are dropped.
func (c *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, hit := c.dict[key]
	if !hit {
		return nil, false, nil
	}
	p := ele.Value.(pair)
	if !p.exp.IsZero() && c.now().After(p.exp) {
		c.ll.Remove(ele)
		delete(c.dict, key)
		return nil, false, nil
	}
	c.ll.MoveToFront(ele)
	return p.val, true, nil
}

// Set inserts or updates a value.  ttl ≤ 0 keeps the entry until evicted.
func (c *LRU) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.dict[key]; hit {
		ele.Value = pair{key, val, exp}
		c.ll.MoveToFront(ele)
		return nil
	}
	ele := c.ll.PushFront(pair{key, val, exp})
	c.dict[key] = ele
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(pair).key)
	}
	return nil
}

// Len reports current size.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
