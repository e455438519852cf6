// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/tomtom215/campusrec/internal/metrics"
	"github.com/tomtom215/campusrec/internal/recommend"
)

const (
	backendMemory = "memory"

	defaultMemoryCapacity = 10000
	defaultMemoryTTL      = 30 * time.Second
)

type memoryItem struct {
	key       string
	resp      *recommend.Response
	expiresAt time.Time
}

// MemoryCache is an in-process LRU of recommendation responses with a
// per-entry TTL. Expired entries are dropped when read and by the sweep
// started with StartCleanup.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	// recency holds *memoryItem values, most recently used at the front.
	recency *list.List
	index   map[string]*list.Element
	stats   Stats
}

var _ recommend.ResponseCache = (*MemoryCache)(nil)

// NewMemoryCache holds up to capacity responses for ttl each. Non-positive
// arguments select 10000 entries and 30s.
func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	return &MemoryCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		recency:  list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*recommend.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if ok && c.expired(el, c.now()) {
		c.evict(el, true)
		ok = false
	}
	if !ok {
		c.stats.Misses++
		metrics.RecordCacheLookup(backendMemory, false)
		return nil, false
	}

	c.recency.MoveToFront(el)
	c.stats.Hits++
	metrics.RecordCacheLookup(backendMemory, true)
	return el.Value.(*memoryItem).resp, true
}

// Set stores resp and restarts its TTL. Inserting past capacity evicts the
// least recently used entry.
func (c *MemoryCache) Set(_ context.Context, key string, resp *recommend.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &memoryItem{key: key, resp: resp, expiresAt: c.now().Add(c.ttl)}
	if el, ok := c.index[key]; ok {
		el.Value = item
		c.recency.MoveToFront(el)
		return
	}

	c.index[key] = c.recency.PushFront(item)
	for c.recency.Len() > c.capacity {
		c.evict(c.recency.Back(), true)
	}
	c.reportSize()
}

// Len counts stored entries, including expired ones not yet swept.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(c.recency.Len())
	c.recency.Init()
	clear(c.index)
	c.reportSize()
}

// CleanupExpired sweeps expired entries and reports how many it removed.
func (c *MemoryCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.recency.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el, now) {
			c.evict(el, false)
			removed++
		}
		el = prev
	}

	c.stats.Evictions += int64(removed)
	c.stats.LastCleanup = now
	metrics.CacheEvictions.WithLabelValues(backendMemory).Add(float64(removed))
	c.reportSize()
	return removed
}

// StartCleanup runs CleanupExpired every interval until ctx is done.
func (c *MemoryCache) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.CleanupExpired()
			}
		}
	}()
}

func (c *MemoryCache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.TotalKeys = int64(c.recency.Len())
	return s
}

// HitRate is hits as a percentage of lookups.
func (c *MemoryCache) HitRate() float64 {
	return c.GetStats().HitRate()
}

func (c *MemoryCache) Close() error {
	c.Clear()
	return nil
}

func (c *MemoryCache) expired(el *list.Element, now time.Time) bool {
	return now.After(el.Value.(*memoryItem).expiresAt)
}

// evict unlinks el. Caller holds mu. Sweeps count their removals in bulk
// and pass count=false.
func (c *MemoryCache) evict(el *list.Element, count bool) {
	item := c.recency.Remove(el).(*memoryItem)
	delete(c.index, item.key)
	if count {
		c.stats.Evictions++
		metrics.CacheEvictions.WithLabelValues(backendMemory).Inc()
	}
	c.reportSize()
}

func (c *MemoryCache) reportSize() {
	metrics.CacheSize.WithLabelValues(backendMemory).Set(float64(c.recency.Len()))
}
