package boltdb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cardvault/internal/models"
	"github.com/iudanet/cardvault/internal/storage"
)

// AddAsset writes a new AssetRecord under id.
func (s *Storage) AddAsset(ctx context.Context, id string, blob []byte, meta storage.AssetMeta) error {
	if id == "" {
		return fmt.Errorf("asset id cannot be empty")
	}

	record := &models.AssetRecord{
		ID:          id,
		Name:        meta.Name,
		MimeType:    meta.MimeType,
		ContentHash: meta.ContentHash,
		Blob:        blob,
		Width:       meta.Width,
		Height:      meta.Height,
		CreatedAt:   s.now(),
	}

	err := s.update(ctx, bucketAssets, func(b *bbolt.Bucket) error {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal asset: %w", err)
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return fmt.Errorf("failed to add asset: %w", err)
	}
	return nil
}

// GetAsset retrieves an asset by id, nil when absent.
func (s *Storage) GetAsset(ctx context.Context, id string) (*models.AssetRecord, error) {
	var record *models.AssetRecord

	err := s.view(ctx, bucketAssets, func(b *bbolt.Bucket) error {
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		record = &models.AssetRecord{}
		if err := json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("failed to unmarshal asset: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
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
// A payload that fails to decode aborts the read — records are never
// silently dropped.
func (s *Storage) GetAllAssetsWithBlobs(ctx context.Context) ([]*models.AssetRecord, error) {
	var records []*models.AssetRecord

	err := s.view(ctx, bucketAssets, func(b *bbolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			record := &models.AssetRecord{}
			if err := json.Unmarshal(v, record); err != nil {
				return fmt.Errorf("failed to unmarshal asset %s: %w", k, err)
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	return records, nil
}

// DeleteAssets deletes all given ids inside one transaction. The batch
// succeeds or rolls back as a whole; an empty set opens no transaction.
func (s *Storage) DeleteAssets(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := s.update(ctx, bucketAssets, func(b *bbolt.Bucket) error {
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete assets: %w", err)
	}
	return nil
}
