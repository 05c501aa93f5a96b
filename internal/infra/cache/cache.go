// Package cache keeps recently rendered read-model responses in memory.
// Entries are never the source of truth: the engine and the ledger are.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/metrics"
)

// ResponseCache stores JSON bodies for the read endpoints (recap, ledger
// pages) so repeated polls do not hit SQLite.
type ResponseCache struct {
	lru     *expirable.LRU[string, []byte]
	metrics *metrics.Collector
}

// NewResponseCache creates a cache holding at most size entries for ttl.
func NewResponseCache(size int, ttl time.Duration, m *metrics.Collector) *ResponseCache {
	if size <= 0 {
		size = 64
	}
	return &ResponseCache{
		lru:     expirable.NewLRU[string, []byte](size, nil, ttl),
		metrics: m,
	}
}

// Get returns a cached body.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	body, ok := c.lru.Get(key)
	if c.metrics != nil {
		c.metrics.RecordCache(ok)
	}
	return body, ok
}

// Set stores a body.
func (c *ResponseCache) Set(key string, body []byte) {
	c.lru.Add(key, body)
}

// GetOrLoad returns the cached body for key, or calls load, encodes its
// result and caches it. Load errors are not cached.
func (c *ResponseCache) GetOrLoad(key string, load func() (interface{}, error)) ([]byte, error) {
	if body, ok := c.Get(key); ok {
		return body, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	c.Set(key, body)
	return body, nil
}

// InvalidatePlayer drops every entry keyed under the player.
func (c *ResponseCache) InvalidatePlayer(playerID string) {
	prefix := PlayerKey(playerID, "")
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
}

// Len returns the number of live entries.
func (c *ResponseCache) Len() int {
	return c.lru.Len()
}

// PlayerKey builds the key for one of a player's responses.
func PlayerKey(playerID, view string) string {
	return fmt.Sprintf("player:%s:%s", playerID, view)
}
