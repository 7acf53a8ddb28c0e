// Package publisher defines the interface for notifying downstreams about
// ingestion activity. By using an interface, we decouple the pipeline from
// a specific messaging implementation.
package publisher

import (
	"context"
	"time"
)

// Event describes one completed ingestion run that persisted articles.
type Event struct {
	Category string    `json:"category"`
	Count    int       `json:"count"`
	At       time.Time `json:"at"`
}

// Provider is the common interface for the notification layer.
type Provider interface {
	// PublishIngested announces newly persisted articles. Implementations
	// are fire-and-forget; delivery failures must not fail ingestion.
	PublishIngested(ctx context.Context, evt Event) error

	// Close releases any client resources.
	Close() error
}

// NoOpProvider is a publisher that performs no operations. It is the
// default when no messaging backend is configured.
type NoOpProvider struct{}

// PublishIngested for NoOpProvider does nothing and returns no error.
func (NoOpProvider) PublishIngested(_ context.Context, _ Event) error { return nil }

// Close for NoOpProvider does nothing and returns no error.
func (NoOpProvider) Close() error { return nil }
