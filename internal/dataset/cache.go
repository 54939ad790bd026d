// Package dataset keeps the incident table in memory for the life of the
// process and reloads it only when the source file changes.
package dataset

import (
	"context"
	"log"
	"sync"
	"time"

	"gundash/domain/incident"
	"gundash/internal/errors"
	"gundash/ports"
)

// EventReloaded is published after every successful (re)load
const EventReloaded = "dataset_reloaded"

// Cache is a process-wide cached dataset
type Cache struct {
	source    ports.DatasetSource
	publisher ports.EventPublisher

	mu      sync.Mutex
	table   *incident.Table
	size    int64
	modTime time.Time
	loads   int
}

// NewCache creates a cache over source. publisher may be nil.
func NewCache(source ports.DatasetSource, publisher ports.EventPublisher) *Cache {
	return &Cache{source: source, publisher: publisher}
}

// Get returns the cached table, reloading it first when the source's size or
// modification time differs from the last load
func (c *Cache) Get(ctx context.Context) (*incident.Table, error) {
	size, modTime, err := c.source.Stat()
	if err != nil {
		c.Invalidate()
		return nil, errors.DataError("dataset unavailable: "+c.source.Path(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.table != nil && size == c.size && modTime.Equal(c.modTime) {
		return c.table, nil
	}

	start := time.Now()
	table, err := c.source.Read(ctx)
	if err != nil {
		c.table = nil
		return nil, errors.DataError("failed to load dataset "+c.source.Path(), err)
	}

	reload := c.table != nil
	c.table = table
	c.size = size
	c.modTime = modTime
	c.loads++

	log.Printf("[DatasetCache] loaded %s: %d rows, %d columns in %v",
		c.source.Path(), table.Len(), len(table.Fields()), time.Since(start).Round(time.Millisecond))

	if c.publisher != nil {
		c.publisher.Publish(EventReloaded, map[string]any{
			"path":        c.source.Path(),
			"rows":        table.Len(),
			"fingerprint": table.Fingerprint().Short(),
			"reload":      reload,
		})
	}
	return table, nil
}

// Invalidate forces the next Get to reload
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.table = nil
	c.mu.Unlock()
}

// Loads reports how many times the source has been read
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// Path returns the source path
func (c *Cache) Path() string { return c.source.Path() }
