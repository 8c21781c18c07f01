package cache

import (
	"container/list"
	"sync"
	"time"
)

// Stats counts lookups and removals since the cache was created.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
}

// LRUCache holds at most capacity entries, each valid for ttl after it was stored.
// Storing past capacity drops the least recently read entry.
type LRUCache[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	index    map[string]*list.Element
	order    *list.List // front is most recently used
	stats    Stats
}

var _ Cache[int] = (*LRUCache[int])(nil)

type entry[T any] struct {
	key      string
	value    T
	storedAt time.Time
}

// NewLRUCache returns an empty cache. A capacity below 1 is treated as 1.
func NewLRUCache[T any](capacity int, ttl time.Duration) *LRUCache[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache[T]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *LRUCache[T]) expired(e *entry[T], now time.Time) bool {
	return now.Sub(e.storedAt) >= c.ttl
}

// lookup returns the live entry for key, dropping it if it has expired. Callers hold mu.
func (c *LRUCache[T]) lookup(key string) *entry[T] {
	el, ok := c.index[key]
	if !ok {
		c.stats.Misses++
		return nil
	}
	e := el.Value.(*entry[T])
	if c.expired(e, c.now()) {
		c.remove(el)
		c.stats.Expirations++
		c.stats.Misses++
		return nil
	}
	c.stats.Hits++
	c.order.MoveToFront(el)
	return e
}

// Get returns the value stored under key if it has not expired.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.lookup(key); e != nil {
		return e.value, true
	}
	var zero T
	return zero, false
}

// GetWithAge is Get plus how long ago the value was stored.
func (c *LRUCache[T]) GetWithAge(key string) (T, time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.lookup(key); e != nil {
		return e.value, c.now().Sub(e.storedAt), true
	}
	var zero T
	return zero, 0, false
}

// Set stores data under key, replacing any previous value and restarting its TTL.
func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: data, storedAt: c.now()}
	if el, ok := c.index[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}

	c.index[key] = c.order.PushFront(e)
	for c.order.Len() > c.capacity {
		c.remove(c.order.Back())
		c.stats.Evictions++
	}
}

// Delete drops key if present.
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.remove(el)
	}
}

func (c *LRUCache[T]) remove(el *list.Element) {
	delete(c.index, el.Value.(*entry[T]).key)
	c.order.Remove(el)
}

// CleanExpired drops every expired entry and reports how many were dropped.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*entry[T]), now) {
			c.remove(el)
			removed++
		}
		el = prev
	}
	c.stats.Expirations += int64(removed)
	return removed
}

// Size reports the number of stored entries, expired or not.
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Stats returns a copy of the counters.
func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
