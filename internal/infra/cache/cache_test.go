package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/platform/metrics"
)

func TestGetOrLoadCachesOnlySuccess(t *testing.T) {
	// Setup
	m := metrics.New()
	c := NewResponseCache(4, time.Minute, m)
	calls := 0
	load := func() (interface{}, error) {
		calls++
		return map[string]int{"depth": 120}, nil
	}

	// Act
	first, err := c.GetOrLoad(PlayerKey("pilot", "recap"), load)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, _ := c.GetOrLoad(PlayerKey("pilot", "recap"), load)
	_, err = c.GetOrLoad(PlayerKey("pilot", "ledger"), func() (interface{}, error) {
		return nil, errors.New("db closed")
	})

	// Assert
	if calls != 1 {
		t.Errorf("expected one load, got %d", calls)
	}
	if string(first) != `{"depth":120}` || string(second) != string(first) {
		t.Errorf("unexpected bodies %s / %s", first, second)
	}
	if err == nil {
		t.Fatalf("expected load error to surface")
	}
	if c.Len() != 1 {
		t.Errorf("failed load must not be cached, len=%d", c.Len())
	}
	if m.CacheHits != 1 || m.CacheMisses != 2 {
		t.Errorf("expected 1 hit and 2 misses, got %d/%d", m.CacheHits, m.CacheMisses)
	}
}

func TestInvalidatePlayerLeavesOthers(t *testing.T) {
	// Setup
	c := NewResponseCache(8, time.Minute, nil)
	c.Set(PlayerKey("pilot", "recap"), []byte("a"))
	c.Set(PlayerKey("pilot", "ledger:0:100"), []byte("b"))
	c.Set(PlayerKey("rival", "recap"), []byte("c"))

	// Act
	c.InvalidatePlayer("pilot")

	// Assert
	if _, ok := c.Get(PlayerKey("pilot", "recap")); ok {
		t.Errorf("pilot recap should be gone")
	}
	if body, ok := c.Get(PlayerKey("rival", "recap")); !ok || string(body) != "c" {
		t.Errorf("rival entry should survive")
	}
}

func TestEntriesExpire(t *testing.T) {
	// Setup
	c := NewResponseCache(8, 20*time.Millisecond, nil)
	c.Set("k", []byte("v"))

	// Act
	time.Sleep(60 * time.Millisecond)

	// Assert
	if _, ok := c.Get("k"); ok {
		t.Errorf("entry should have expired")
	}
}
