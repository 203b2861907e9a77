package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/cardvault/internal/models"
	"github.com/iudanet/cardvault/internal/storage"
)

// AddAsset writes a new AssetRecord under id.
func (s *Storage) AddAsset(ctx context.Context, id string, blob []byte, meta storage.AssetMeta) error {
	if id == "" {
		return fmt.Errorf("asset id cannot be empty")
	}

	db, err := s.handle(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO assets (id, name, mime_type, content_hash, blob, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(ctx, query,
		id,
		meta.Name,
		meta.MimeType,
		meta.ContentHash,
		blob,
		meta.Width,
		meta.Height,
		s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to add asset: %w", tableErr("assets", err))
	}
	return nil
}

// GetAsset retrieves an asset by id, nil when absent.
func (s *Storage) GetAsset(ctx context.Context, id string) (*models.AssetRecord, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, mime_type, content_hash, blob, width, height, created_at
		FROM assets
		WHERE id = ?
	`
	record, err := scanAsset(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load asset: %w", tableErr("assets", err))
	}
	return record, nil
}

// GetAssetBlob returns the raw payload, nil when the id is absent or the
// record has no payload.
func (s *Storage) GetAssetBlob(ctx context.Context, id string) ([]byte, error) {
	record, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil || len(record.Blob) == 0 {
		return nil, nil
	}
	return record.Blob, nil
}

// AssetObjectURL derives an ephemeral base64 data: URL for display,
// "" when the asset is absent or has no payload.
func (s *Storage) AssetObjectURL(ctx context.Context, id string) (string, error) {
	record, err := s.GetAsset(ctx, id)
	if err != nil {
		return "", err
	}
	if record == nil || len(record.Blob) == 0 {
		return "", nil
	}

	mimeType := record.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(record.Blob), nil
}

// GetAllAssetsWithBlobs returns every asset record including payloads.
func (s *Storage) GetAllAssetsWithBlobs(ctx context.Context) ([]*models.AssetRecord, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, mime_type, content_hash, blob, width, height, created_at
		FROM assets
		ORDER BY created_at, id
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", tableErr("assets", err))
	}
	defer rows.Close()

	var records []*models.AssetRecord
	for rows.Next() {
		record, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to load assets: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	return records, nil
}

// DeleteAssets deletes all given ids inside one transaction.
func (s *Storage) DeleteAssets(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	db, err := s.handle(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to delete assets: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete assets: %w", tableErr("assets", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to delete assets: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*models.AssetRecord, error) {
	var (
		record    models.AssetRecord
		createdAt int64
	)
	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.MimeType,
		&record.ContentHash,
		&record.Blob,
		&record.Width,
		&record.Height,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = time.Unix(createdAt, 0)
	return &record, nil
}
