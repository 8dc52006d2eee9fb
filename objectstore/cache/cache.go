// Package cache provides the object store's per-process LRU (spec §4.E
// "Cache"): keyed by CID string, storing decoded payload bytes after
// decompression/decryption but before typed decoding.
package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCapacity is the default number of entries held (spec §4.E:
// "Configurable capacity; default 1,000 entries").
const DefaultCapacity = 1000

// Cache is a single-writer, multi-reader LRU of CID string to payload
// bytes. It carries no cross-process coherence guarantees beyond the
// object store's ground truth, matching the spec's stated scope.
type Cache struct {
	inner *lru.Cache
}

// New constructs a Cache with the given capacity; capacity <= 0 selects
// DefaultCapacity.
func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	inner, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Get returns the cached payload for cidString, if present.
func (c *Cache) Get(cidString string) ([]byte, bool) {
	v, ok := c.inner.Get(cidString)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// Put caches payload under cidString. A failed store or get must never
// call Put (spec §4.E "Failure model").
func (c *Cache) Put(cidString string, payload []byte) {
	c.inner.Add(cidString, payload)
}

// Remove evicts cidString, used after an explicit delete.
func (c *Cache) Remove(cidString string) {
	c.inner.Remove(cidString)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int { return c.inner.Len() }
