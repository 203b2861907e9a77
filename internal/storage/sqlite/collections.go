package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

	cardIDs, err := json.Marshal(col.CardIDs)
	if err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}

	db, err := s.handle(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO collections (id, name, description, card_ids,
		                         schema_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			card_ids = excluded.card_ids,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at
	`
	_, err = db.ExecContext(ctx, query,
		col.ID,
		col.Name,
		col.Description,
		string(cardIDs),
		col.SchemaVersion,
		col.CreatedAt.Unix(),
		col.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save collection: %w", tableErr("collections", err))
	}
	return nil
}

// GetCollection retrieves a collection by id, nil when absent.
func (s *Storage) GetCollection(ctx context.Context, id string) (*models.CollectionRecord, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	col, err := scanCollection(db.QueryRowContext(ctx, collectionSelect+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load collection: %w", tableErr("collections", err))
	}
	return col, nil
}

// ListCollections returns all collections sorted by name.
func (s *Storage) ListCollections(ctx context.Context) ([]*models.CollectionRecord, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, collectionSelect+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", tableErr("collections", err))
	}
	defer rows.Close()

	var cols []*models.CollectionRecord
	for rows.Next() {
		col, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to load collections: %w", err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	return cols, nil
}

// DeleteCollection removes a collection by id.
func (s *Storage) DeleteCollection(ctx context.Context, id string) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete collection: %w", tableErr("collections", err))
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
// a single transaction.
func (s *Storage) mutateCollection(ctx context.Context, id string, mutate func(*models.CollectionRecord)) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	col, err := scanCollection(tx.QueryRowContext(ctx, collectionSelect+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection %s: %w", id, storage.ErrNotFound)
		}
		return tableErr("collections", err)
	}

	mutate(col)
	col.UpdatedAt = s.now()

	cardIDs, err := json.Marshal(col.CardIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal card ids: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE collections SET card_ids = ?, updated_at = ? WHERE id = ?`,
		string(cardIDs), col.UpdatedAt.Unix(), id)
	if err != nil {
		return err
	}
	return tx.Commit()
}

const collectionSelect = `
	SELECT id, name, description, card_ids, schema_version, created_at, updated_at
	FROM collections`

func scanCollection(row rowScanner) (*models.CollectionRecord, error) {
	var (
		col                  models.CollectionRecord
		cardIDs              string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&col.ID,
		&col.Name,
		&col.Description,
		&cardIDs,
		&col.SchemaVersion,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	col.CreatedAt = time.Unix(createdAt, 0)
	col.UpdatedAt = time.Unix(updatedAt, 0)
	col.CardIDs = []string{}
	if cardIDs != "" {
		if err := json.Unmarshal([]byte(cardIDs), &col.CardIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal card ids: %w", err)
		}
	}
	return &col, nil
}
