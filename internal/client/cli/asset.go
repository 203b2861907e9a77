package cli

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // dimension sniffing
	_ "image/jpeg" // dimension sniffing
	_ "image/png"  // dimension sniffing
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/iudanet/cardvault/internal/hashing"
	"github.com/iudanet/cardvault/internal/storage"
)

var assetUsage = "Usage: cardvault asset <add|list|url|delete> ..."

func (c *Cli) runAsset(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing asset subcommand. %s", assetUsage)
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("missing file path. %s", assetUsage)
		}
		return c.runAssetAdd(ctx, args[1])
	case "list":
		return c.runAssetList(ctx)
	case "url":
		if len(args) < 2 {
			return fmt.Errorf("missing asset id. %s", assetUsage)
		}
		return c.runAssetURL(ctx, args[1])
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("missing asset ids. %s", assetUsage)
		}
		return c.runAssetDelete(ctx, args[1:])
	default:
		return fmt.Errorf("unknown asset subcommand: %s. %s", args[0], assetUsage)
	}
}

// runAssetAdd imports an image file. Identical bytes already in the
// store are recognized through the dedup index and the existing id is
// reused instead of writing a duplicate record.
func (c *Cli) runAssetAdd(ctx context.Context, path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(blob) == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}

	hash, err := hashing.ContentHash(blob)
	if err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	if err := c.ensureDedup(ctx); err != nil {
		return err
	}
	if existingID, ok := c.dedup.Lookup(hash); ok {
		fmt.Fprintf(c.out, "Already imported, reusing asset %s\n", existingID)
		return nil
	}

	// Размеры берем из заголовка изображения; не-изображения получают 0x0
	var width, height int
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(blob)); err == nil {
		width, height = cfg.Width, cfg.Height
	}

	id := uuid.NewString()
	meta := storage.AssetMeta{
		Name:        filepath.Base(path),
		MimeType:    http.DetectContentType(blob),
		ContentHash: hash,
		Width:       width,
		Height:      height,
	}
	if err := c.store.AddAsset(ctx, id, blob, meta); err != nil {
		return err
	}
	c.dedup.Record(hash, id)

	fmt.Fprintf(c.out, "Added asset %s (%s, %dx%d, %d bytes)\n",
		id, meta.Name, width, height, len(blob))
	return nil
}

func (c *Cli) runAssetList(ctx context.Context) error {
	records, err := c.store.GetAllAssetsWithBlobs(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(c.out, "No assets stored.")
		return nil
	}

	for _, r := range records {
		hash := r.ContentHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(c.out, "%s  %-30s %5dx%-5d %8d bytes  %s\n",
			r.ID, r.Name, r.Width, r.Height, len(r.Blob), hash)
	}
	return nil
}

func (c *Cli) runAssetURL(ctx context.Context, id string) error {
	url, err := c.store.AssetObjectURL(ctx, id)
	if err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("asset not found: %s", id)
	}
	fmt.Fprintln(c.out, url)
	return nil
}

func (c *Cli) runAssetDelete(ctx context.Context, ids []string) error {
	if err := c.store.DeleteAssets(ctx, ids); err != nil {
		return err
	}
	c.dedup.Forget(ids...)
	fmt.Fprintf(c.out, "Deleted %d asset(s)\n", len(ids))
	return nil
}
