package app

import (
	"sync"

	"jobmetrics/domain/core"
)

// ReportCache memoizes loaded datasets by the content hash of the workbook.
// Cached tables are shared, so callers must treat them as read-only. A nil
// cache is valid and never hits.
type ReportCache struct {
	mu      sync.RWMutex
	entries map[core.Hash]*Dataset
	order   []core.Hash
	limit   int
}

// NewReportCache creates a cache holding at most limit datasets; the oldest
// entry is evicted first.
func NewReportCache(limit int) *ReportCache {
	if limit <= 0 {
		limit = 16
	}
	return &ReportCache{
		entries: make(map[core.Hash]*Dataset),
		limit:   limit,
	}
}

// Get returns the dataset loaded from identical bytes, if any.
func (c *ReportCache) Get(hash core.Hash) (*Dataset, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.entries[hash]
	return ds, ok
}

// Put stores a dataset under its hash.
func (c *ReportCache) Put(ds *Dataset) {
	if c == nil || ds == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[ds.Hash]; ok {
		c.entries[ds.Hash] = ds
		return
	}
	for len(c.order) >= c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[ds.Hash] = ds
	c.order = append(c.order, ds.Hash)
}

// Len returns the number of cached datasets.
func (c *ReportCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
