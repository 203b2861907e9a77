package storage

import (
	"context"

	"github.com/iudanet/cardvault/internal/models"
)

// AssetMeta carries the caller-supplied metadata for a new asset.
// ContentHash is optional; importers that consulted the dedup index
// before adding will already have it computed.
type AssetMeta struct {
	Name        string
	MimeType    string
	ContentHash string
	Width       int
	Height      int
}

// AssetStorage defines the contract for the asset table.
//
// Lookups by id resolve to (nil, nil) when the id is absent — a missing
// record is normal control flow, not an error. Two independently-issued
// calls are serialized by the engine but carry no read-after-write
// guarantee unless the caller awaited the first call's completion.
type AssetStorage interface {
	// AddAsset writes a new AssetRecord under id, stamping CreatedAt from
	// the storage clock. Duplicate detection is not performed here;
	// importers consult the DedupIndex first.
	AddAsset(ctx context.Context, id string, blob []byte, meta AssetMeta) error

	// GetAsset retrieves a full record by id, nil when absent.
	GetAsset(ctx context.Context, id string) (*models.AssetRecord, error)

	// GetAssetBlob returns the raw payload, nil when the id is absent or
	// the record has no payload.
	GetAssetBlob(ctx context.Context, id string) ([]byte, error)

	// AssetObjectURL derives an ephemeral display URL (a base64 data: URL)
	// for the asset payload, "" when absent. The store only creates the
	// URL; its lifetime is the caller's concern.
	AssetObjectURL(ctx context.Context, id string) (string, error)

	// GetAllAssetsWithBlobs returns every record including payloads.
	// A record that fails to decode is an error, never a silent drop.
	GetAllAssetsWithBlobs(ctx context.Context) ([]*models.AssetRecord, error)

	// DeleteAssets deletes all given ids inside one transaction, atomically.
	// An empty id set is a no-op that opens no transaction.
	DeleteAssets(ctx context.Context, ids []string) error
}
