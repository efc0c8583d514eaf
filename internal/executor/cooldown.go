package executor

import (
	"sync"
	"time"
)

// Cooldown suppresses repeated execution attempts for the same key (market)
// within a time-to-live window. Safe for concurrent use.
type Cooldown struct {
	seen map[string]time.Time
	ttl  time.Duration
	mu   sync.Mutex
}

// NewCooldown creates a Cooldown with the given window.
func NewCooldown(ttl time.Duration) *Cooldown {
	return &Cooldown{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// Allow returns true when the key has not been seen within the TTL window and
// records the attempt. A zero TTL disables the cooldown entirely.
func (c *Cooldown) Allow(key string) bool {
	if c.ttl <= 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if last, ok := c.seen[key]; ok && now.Sub(last) < c.ttl {
		return false
	}
	c.seen[key] = now
	return true
}

// Cleanup removes expired entries. Call periodically to bound memory.
func (c *Cooldown) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, ts := range c.seen {
		if now.Sub(ts) >= c.ttl {
			delete(c.seen, key)
		}
	}
}
