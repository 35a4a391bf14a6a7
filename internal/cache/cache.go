package cache

import "svgod/internal/artifact"

// DefaultCapacity mirrors the number of settings combinations a user
// plausibly flips between in one session.
const DefaultCapacity = 10

type slot struct {
	fingerprint string
	artifact    *artifact.Artifact
}

// Cache is a fixed-capacity ring of (fingerprint, artifact) pairs with a
// write cursor. Eviction is strictly by insertion order, not access order:
// Add overwrites whatever sits at the cursor and releases it. Duplicate
// fingerprints are not deduplicated; stale copies simply age out by write
// order.
//
// Not safe for concurrent use. The orchestrator is the single writer and
// confines access behind its own lock.
type Cache struct {
	slots  []slot
	cursor int
}

func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{slots: make([]slot, capacity)}
}

// Add writes the pair at the cursor, releasing the artifact previously
// stored there, and advances the cursor. Returns true when an eviction
// happened. O(1).
func (c *Cache) Add(fingerprint string, art *artifact.Artifact) bool {
	evicted := false
	if prev := c.slots[c.cursor].artifact; prev != nil {
		prev.Release()
		evicted = true
	}
	c.slots[c.cursor] = slot{fingerprint: fingerprint, artifact: art}
	c.cursor = (c.cursor + 1) % len(c.slots)
	return evicted
}

// Match returns the stored artifact for an exact fingerprint match among
// live slots, or nil. O(capacity).
func (c *Cache) Match(fingerprint string) *artifact.Artifact {
	for i := range c.slots {
		if c.slots[i].artifact != nil && c.slots[i].fingerprint == fingerprint {
			return c.slots[i].artifact
		}
	}
	return nil
}

// Purge drops every entry without releasing the artifacts. This is for
// input-identity changes: the whole cache belongs to a now-irrelevant
// document, and any still-displayed artifact is released by the display
// layer when it is superseded, not here. Capacity-pressure eviction in Add
// is the path that must dispose, because there the artifact is truly gone.
func (c *Cache) Purge() {
	for i := range c.slots {
		c.slots[i] = slot{}
	}
	c.cursor = 0
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	n := 0
	for i := range c.slots {
		if c.slots[i].artifact != nil {
			n++
		}
	}
	return n
}

// Cap reports the fixed capacity.
func (c *Cache) Cap() int { return len(c.slots) }
