package siteforge

import (
	"sync"
	"time"
)

// SectionCache is an in-memory TTL cache over stored section documents. It
// serves the public read path (the embedding site rendering its sections);
// editor sessions always go to the backend directly.
type SectionCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	store   *SectionStore
}

type cacheEntry struct {
	doc     Document
	fetched time.Time
}

// NewSectionCache creates a SectionCache backed by the given store.
func NewSectionCache(s *SectionStore, ttl time.Duration) *SectionCache {
	return &SectionCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		store:   s,
	}
}

// Get returns the document for key, loading it from the store when the
// cached copy is missing or stale.
func (c *SectionCache) Get(key string) (Document, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Since(e.fetched) < c.ttl {
		return e.doc, nil
	}

	doc, err := c.store.GetSection(key)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{doc: doc, fetched: time.Now()}
	c.mu.Unlock()
	return doc, nil
}

// Invalidate drops the cached copy of key so the next read reloads it.
func (c *SectionCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every cached section.
func (c *SectionCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
