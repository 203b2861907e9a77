package storage

import (
	"context"

	"github.com/iudanet/cardvault/internal/models"
)

// CollectionStorage defines the contract for the collection table.
type CollectionStorage interface {
	// SaveCollection creates or updates a collection. Every write
	// refreshes UpdatedAt; CreatedAt is stamped on first save; CardIDs
	// defaults to an empty (non-nil) sequence and SchemaVersion to 1.
	SaveCollection(ctx context.Context, col *models.CollectionRecord) error

	// GetCollection retrieves a collection by id, nil when absent.
	GetCollection(ctx context.Context, id string) (*models.CollectionRecord, error)

	// ListCollections returns all collections sorted by name.
	ListCollections(ctx context.Context) ([]*models.CollectionRecord, error)

	// DeleteCollection removes a collection by id. Missing id is a no-op.
	DeleteCollection(ctx context.Context, id string) error

	// AddCardToCollection appends cardID to the collection's ordered
	// sequence (no-op when already present). Returns ErrNotFound when the
	// collection does not exist.
	AddCardToCollection(ctx context.Context, collectionID, cardID string) error

	// RemoveCardFromCollection removes cardID from the sequence.
	// Returns ErrNotFound when the collection does not exist.
	RemoveCardFromCollection(ctx context.Context, collectionID, cardID string) error
}

// Store bundles the three table contracts plus engine lifecycle.
// Both the boltdb and sqlite engines satisfy it.
type Store interface {
	AssetStorage
	CardStorage
	CollectionStorage

	// Open idempotently opens and lazily provisions the engine.
	// Concurrent opens converge on the same live handle.
	Open(ctx context.Context) error

	// Close tears the engine down. Operations on a closed store return
	// ErrStorageClosed; Open re-enables it.
	Close() error
}
