package ports

import (
	"context"
	"time"

	"strategymap/domain/core/entities"
	"strategymap/domain/events"
)

// StrategyRepository persists whole node collections keyed by client.
// This is the server-side port; the domain doesn't know about the implementation.
type StrategyRepository interface {
	// Load returns the stored collection, or an empty slice when none exists
	Load(ctx context.Context, clientID string) ([]entities.Node, error)

	// Save overwrites the stored collection
	Save(ctx context.Context, clientID string, nodes []entities.Node, savedAt time.Time) error
}

// StrategyStore is the editor-side view of the remote persistence service
type StrategyStore interface {
	// Load reads the full collection for a client
	Load(ctx context.Context, clientID string) ([]entities.Node, error)

	// Sync pushes the full collection and returns the server's save time
	Sync(ctx context.Context, clientID string, nodes []entities.Node) (time.Time, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
