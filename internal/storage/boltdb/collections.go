package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cardvault/internal/models"
	"github.com/iudanet/cardvault/internal/storage"
)

// SaveCollection creates or updates a collection.
func (s *Storage) SaveCollection(ctx context.Context, col *models.CollectionRecord) error {
	if col == nil || col.ID == "" {
		return fmt.Errorf("collection id cannot be empty")
	}

	now := s.now()
	if col.CreatedAt.IsZero() {
		col.CreatedAt = now
	}
	col.UpdatedAt = now
	if col.CardIDs == nil {
		col.CardIDs = []string{}
	}
	if col.SchemaVersion == 0 {
		col.SchemaVersion = 1
	}

	err := s.update(ctx, bucketCollections, func(b *bbolt.Bucket) error {
		data, err := json.Marshal(col)
		if err != nil {
			return fmt.Errorf("failed to marshal collection: %w", err)
		}
		return b.Put([]byte(col.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// GetCollection retrieves a collection by id, nil when absent.
func (s *Storage) GetCollection(ctx context.Context, id string) (*models.CollectionRecord, error) {
	var col *models.CollectionRecord

	err := s.view(ctx, bucketCollections, func(b *bbolt.Bucket) error {
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		col = &models.CollectionRecord{}
		if err := json.Unmarshal(data, col); err != nil {
			return fmt.Errorf("failed to unmarshal collection: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return col, nil
}

// ListCollections returns all collections sorted by name.
func (s *Storage) ListCollections(ctx context.Context) ([]*models.CollectionRecord, error) {
	var cols []*models.CollectionRecord

	err := s.view(ctx, bucketCollections, func(b *bbolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			col := &models.CollectionRecord{}
			if err := json.Unmarshal(v, col); err != nil {
				return fmt.Errorf("failed to unmarshal collection %s: %w", k, err)
			}
			cols = append(cols, col)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}

	sort.Slice(cols, func(i, j int) bool {
		if cols[i].Name != cols[j].Name {
			return cols[i].Name < cols[j].Name
		}
		return cols[i].ID < cols[j].ID
	})
	return cols, nil
}

// DeleteCollection removes a collection by id.
func (s *Storage) DeleteCollection(ctx context.Context, id string) error {
	err := s.update(ctx, bucketCollections, func(b *bbolt.Bucket) error {
		return b.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// AddCardToCollection appends cardID to the collection's ordered card
// sequence. Already-present ids are left alone.
func (s *Storage) AddCardToCollection(ctx context.Context, collectionID, cardID string) error {
	err := s.mutateCollection(ctx, collectionID, func(col *models.CollectionRecord) {
		for _, id := range col.CardIDs {
			if id == cardID {
				return
			}
		}
		col.CardIDs = append(col.CardIDs, cardID)
	})
	if err != nil {
		return fmt.Errorf("failed to add card to collection: %w", err)
	}
	return nil
}

// RemoveCardFromCollection removes cardID from the collection's sequence.
func (s *Storage) RemoveCardFromCollection(ctx context.Context, collectionID, cardID string) error {
	err := s.mutateCollection(ctx, collectionID, func(col *models.CollectionRecord) {
		kept := col.CardIDs[:0]
		for _, id := range col.CardIDs {
			if id != cardID {
				kept = append(kept, id)
			}
		}
		col.CardIDs = kept
	})
	if err != nil {
		return fmt.Errorf("failed to remove card from collection: %w", err)
	}
	return nil
}

// mutateCollection loads, mutates and writes back one collection inside
// a single read-write transaction.
func (s *Storage) mutateCollection(ctx context.Context, id string, mutate func(*models.CollectionRecord)) error {
	return s.update(ctx, bucketCollections, func(b *bbolt.Bucket) error {
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("collection %s: %w", id, storage.ErrNotFound)
		}

		col := &models.CollectionRecord{}
		if err := json.Unmarshal(data, col); err != nil {
			return fmt.Errorf("failed to unmarshal collection: %w", err)
		}

		mutate(col)
		col.UpdatedAt = s.now()

		updated, err := json.Marshal(col)
		if err != nil {
			return fmt.Errorf("failed to marshal collection: %w", err)
		}
		return b.Put([]byte(id), updated)
	})
}
