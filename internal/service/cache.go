package service

import (
	"sync"

	"github.com/protein-atlas-server/internal/domain"
)

// QueryCache is the process-lifetime record cache. Keys are raw,
// case-sensitive query strings. Entries are never evicted, expired, or
// invalidated: a repeated query returns the originally reconciled record
// even if upstream data has since changed.
type QueryCache struct {
	mu      sync.RWMutex
	records map[string]*domain.ProteinRecord
}

// NewQueryCache creates an empty query cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{
		records: make(map[string]*domain.ProteinRecord),
	}
}

// Get returns the cached record for a key, if present.
func (c *QueryCache) Get(key string) (*domain.ProteinRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.records[key]
	return record, ok
}

// Put stores a record under a key. Concurrent writers for the same key are
// last-write-wins; both would have computed equivalent data.
func (c *QueryCache) Put(key string, record *domain.ProteinRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[key] = record
}

// Len returns the number of cached records.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
