// ABOUTME: Thread-safe TTL cache for suppressing duplicate task updates.
// ABOUTME: Agents may redeliver push notifications; only the first sighting passes.

package notify

import (
	"container/list"
	"sync"
	"time"

	"github.com/2389/parley/internal/a2a"
)

// seenEntry stores the timestamp and list element for a cached key.
type seenEntry struct {
	timestamp time.Time
	element   *list.Element
}

// SeenCache tracks task/state pairs already delivered to the user. It is
// TTL-based and size-limited, with a doubly-linked list maintaining
// insertion order for O(1) eviction. Safe for concurrent use.
type SeenCache struct {
	mu      sync.Mutex
	entries map[string]*seenEntry
	order   *list.List // keys in insertion order, oldest at front
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// NewSeenCache creates a cache with the given TTL and maximum size. A
// background goroutine periodically removes expired entries.
func NewSeenCache(ttl time.Duration, maxSize int) *SeenCache {
	c := &SeenCache{
		entries: make(map[string]*seenEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// FirstSighting atomically checks whether the task/state pair has been seen
// within the TTL and marks it if not. Returns true only for the first
// sighting. The single locked check-and-mark avoids TOCTOU races between
// concurrent deliveries of the same update.
func (c *SeenCache) FirstSighting(taskID string, state a2a.TaskState) bool {
	key := taskID + "|" + string(state)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok && time.Since(entry.timestamp) < c.ttl {
		return false
	}

	c.markLocked(key)
	return true
}

// markLocked records a key. Must be called with mu held.
func (c *SeenCache) markLocked(key string) {
	now := time.Now()

	if entry, exists := c.entries[key]; exists {
		entry.timestamp = now
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(key)
	c.entries[key] = &seenEntry{
		timestamp: now,
		element:   elem,
	}
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (c *SeenCache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}

	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, key)
}

// cleanup periodically removes expired entries until Close is called.
func (c *SeenCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

func (c *SeenCache) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) > c.ttl {
			c.order.Remove(entry.element)
			delete(c.entries, key)
		}
	}
}

// Close stops the background cleanup goroutine. Safe to call multiple times.
func (c *SeenCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
