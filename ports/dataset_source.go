package ports

import (
	"context"
	"time"

	"gundash/domain/incident"
)

// DatasetSource loads the incident table from durable storage
type DatasetSource interface {
	// Path identifies the source for logs and fingerprints
	Path() string
	// Stat reports size and modification time without reading the data
	Stat() (size int64, modTime time.Time, err error)
	// Read loads and parses the full table
	Read(ctx context.Context) (*incident.Table, error)
}

// EventPublisher fans dashboard events out to subscribers (SSE clients)
type EventPublisher interface {
	Publish(eventType string, data map[string]any)
}
