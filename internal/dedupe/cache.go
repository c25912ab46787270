package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key string
	ts  time.Time
}

// Cache remembers recently observed keys (change event ids, ingest record ids) for a
// bounded time and size. Oldest keys are evicted first.
type Cache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// IsSeen reports whether key was marked inside the ttl window without marking it.
func (c *Cache) IsSeen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveLocked(key, c.now())
}

// MarkSeen records key, refreshing its position if it was already present.
func (c *Cache) MarkSeen(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markLocked(key, c.now())
}

// Observe marks key and reports whether it had already been seen. It is the atomic
// form of IsSeen followed by MarkSeen.
func (c *Cache) Observe(key string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := c.liveLocked(key, now)
	c.markLocked(key, now)
	return seen
}

// Len returns the number of tracked keys, expired ones included until compaction.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) liveLocked(key string, now time.Time) bool {
	el, ok := c.items[key]
	if !ok {
		return false
	}
	return now.Sub(el.Value.(entry).ts) <= c.ttl
}

func (c *Cache) markLocked(key string, now time.Time) {
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
	}
	c.items[key] = c.order.PushBack(entry{key: key, ts: now})
	c.compact(now)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for front := c.order.Front(); front != nil; front = c.order.Front() {
		oldest := front.Value.(entry)
		if len(c.items) <= c.capacity && !oldest.ts.Before(cutoff) {
			return
		}
		c.order.Remove(front)
		delete(c.items, oldest.key)
	}
}
