// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

// Package cache provides the thread-safe result cache that sits in front of
// the targeting engine. Entries expire after a TTL and the least recently used
// entry is evicted once the capacity is reached. The whole cache is cleared
// whenever the dataset is rebuilt.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// DefaultCleanupInterval is how often Serve sweeps expired entries.
const DefaultCleanupInterval = time.Minute

type entry struct {
	key       string
	value     interface{}
	expiresAt time.Time
	prev      *entry
	next      *entry
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a TTL cache with LRU eviction. Get, Set and Delete are O(1).
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*entry

	// head.next is the most recently used entry, tail.prev the least.
	head *entry
	tail *entry

	stats Stats

	// onEvict is called with the number of entries dropped by expiry,
	// capacity or Clear. It runs with the lock held and must not call back.
	onEvict func(n int)
}

// New creates a cache holding at most capacity entries for ttl each.
//
//	c := cache.New(1000, 5*time.Minute)
//	c.Set(cache.GenerateKey("recommend", req), recs)
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	c.stats.LastCleanup = time.Now()
	return c
}

// OnEvict registers a callback receiving eviction counts, used for metrics.
func (c *Cache) OnEvict(fn func(n int)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the cached value and true if the key is present and fresh.
// Expired entries are removed and reported as misses.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		c.recordEvictions(1)
		c.stats.Misses++
		return nil, false
	}
	c.moveToFront(e)
	c.stats.Hits++
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	evicted := 0
	for len(c.items) > c.capacity {
		c.removeEntry(c.tail.prev)
		evicted++
	}
	c.recordEvictions(evicted)
}

// Delete removes key. It is a no-op for missing keys.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
		c.recordEvictions(1)
	}
}

// Clear removes every entry and returns how many were dropped.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.recordEvictions(n)
	return n
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}
	c.recordEvictions(removed)
	c.stats.LastCleanup = now
	return removed
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.TotalKeys = int64(len(c.items))
	return s
}

// HitRate returns hits as a percentage of lookups, or 0 with no lookups.
func (c *Cache) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Serve sweeps expired entries every DefaultCleanupInterval until ctx is
// done. It satisfies suture.Service.
func (c *Cache) Serve(ctx context.Context) error {
	ticker := time.NewTicker(DefaultCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.CleanupExpired()
		}
	}
}

// String identifies the cache in supervisor logs.
func (c *Cache) String() string {
	return "result-cache"
}

func (c *Cache) recordEvictions(n int) {
	if n == 0 {
		return
	}
	c.stats.Evictions += int64(n)
	if c.onEvict != nil {
		c.onEvict(n)
	}
}

func (c *Cache) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *Cache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *Cache) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

// GenerateKey creates a cache key from a method name and its parameters.
// Parameters are JSON-encoded and hashed so keys stay short.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
