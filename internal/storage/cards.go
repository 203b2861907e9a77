package storage

import (
	"context"

	"github.com/iudanet/cardvault/internal/models"
)

// CardStorage defines the contract for the card table.
type CardStorage interface {
	// SaveCard creates or updates a card document. Every write refreshes
	// UpdatedAt and recomputes NameLower; CreatedAt is stamped on first
	// save; Status defaults to draft and SchemaVersion to 1 when unset.
	SaveCard(ctx context.Context, card *models.CardRecord) error

	// GetCard retrieves a card by id, nil when absent.
	GetCard(ctx context.Context, id string) (*models.CardRecord, error)

	// ListCards returns all cards sorted case-insensitively by name.
	ListCards(ctx context.Context) ([]*models.CardRecord, error)

	// SearchCards returns cards whose name contains query,
	// case-insensitively, in the same order as ListCards.
	SearchCards(ctx context.Context, query string) ([]*models.CardRecord, error)

	// DeleteCard removes a card by id. Deleting a missing id is a no-op.
	DeleteCard(ctx context.Context, id string) error
}
