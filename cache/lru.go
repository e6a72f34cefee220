package cache

import (
	"container/list"
	"sync"
)

type lruItem struct {
	key   Key
	entry Entry
}

// LRU is a fixed-capacity least-recently-used response cache.
//
// A single mutex guards the index, the recency list and the counters, so
// Stats is always consistent with the entries it describes. The zero value
// is not usable; create one with NewLRU.
type LRU struct {
	cfg Config

	mu      sync.Mutex
	ll      *list.List
	index   map[Key]*list.Element
	hits    uint64
	misses  uint64
	evicted uint64
	expired uint64
}

// NewLRU creates an empty cache.
func NewLRU(cfg Config) *LRU {
	cfg = cfg.withDefaults()
	return &LRU{
		cfg:   cfg,
		ll:    list.New(),
		index: make(map[Key]*list.Element, cfg.Capacity),
	}
}

// Capacity returns the configured maximum number of entries.
func (c *LRU) Capacity() int { return c.cfg.Capacity }

// Get returns the entry for key and marks it most recently used. The
// returned entry always reports SourceCached.
func (c *LRU) Get(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		c.misses++
		return Entry{}, false
	}
	it := el.Value.(*lruItem)
	if c.cfg.Retention > 0 && c.cfg.Now().Sub(it.entry.CreatedAt) > c.cfg.Retention {
		c.removeElement(el)
		c.misses++
		c.expired++
		return Entry{}, false
	}

	c.ll.MoveToFront(el)
	c.hits++
	e := it.entry
	e.Source = SourceCached
	return e, true
}

// Put inserts or replaces the entry for key. When the cache is full the
// least recently used entry is evicted. A zero CreatedAt is stamped with
// the cache clock.
func (c *LRU) Put(key Key, entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.cfg.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*lruItem).entry = entry
		c.ll.MoveToFront(el)
		return
	}

	c.index[key] = c.ll.PushFront(&lruItem{key: key, entry: entry})
	for c.ll.Len() > c.cfg.Capacity {
		c.removeElement(c.ll.Back())
		c.evicted++
	}
}

// Delete removes key. It does not count as an eviction.
func (c *LRU) Delete(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if ok {
		c.removeElement(el)
	}
	return ok
}

// Len returns the number of entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats returns a snapshot of the counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		TotalEntries:    c.ll.Len(),
		HitCount:        c.hits,
		MissCount:       c.misses,
		EvictionCount:   c.evicted,
		ExpirationCount: c.expired,
	}
}

// Purge drops every entry and resets the counters.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	clear(c.index)
	c.hits, c.misses, c.evicted, c.expired = 0, 0, 0, 0
}

func (c *LRU) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.index, el.Value.(*lruItem).key)
}
