// Copyright 2025 The Agentspace Neo4j Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache provides a small thread-safe in-memory cache with optional
// TTL-based expiry and a background janitor.
package cache

import (
	"sync"
	"time"
)

const (
	// DefaultJanitorInterval is the default interval for the janitor to clean up expired entries.
	DefaultJanitorInterval = 1 * time.Minute
)

// entry holds a cached value and its expiration time.
type entry struct {
	value      any
	expiration int64 // Unix nano timestamp. 0 means no expiration.
}

func (e entry) expired() bool {
	if e.expiration == 0 {
		return false
	}
	return time.Now().UnixNano() > e.expiration
}

// Cache is a thread-safe in-memory key/value store.
type Cache struct {
	entries map[string]entry
	mu      sync.RWMutex
	stop    chan struct{}
}

// New creates an empty cache. No janitor goroutine runs until WithJanitor
// is called; entries stored without a TTL never expire.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
	}
}

// WithJanitor starts a background goroutine that evicts expired entries at
// the given interval. Calling it again restarts the janitor.
func (c *Cache) WithJanitor(interval time.Duration) *Cache {
	if c.stop != nil {
		close(c.stop)
	}
	c.stop = make(chan struct{})

	if interval <= 0 {
		interval = DefaultJanitorInterval
	}

	go c.janitor(interval)
	return c
}

// Get retrieves a value. The second return reports whether the key was
// present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, found := c.entries[key]
	if !found || e.expired() {
		return nil, false
	}
	return e.value, true
}

// Set stores a value with the given time-to-live. A ttl of 0 or less means
// the entry never expires.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}

	c.entries[key] = entry{
		value:      value,
		expiration: expiration,
	}
}

// Delete removes a key. Deleting a missing key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stop terminates the janitor goroutine. Safe to call multiple times.
func (c *Cache) Stop() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Cache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.expired() {
			delete(c.entries, k)
		}
	}
}
