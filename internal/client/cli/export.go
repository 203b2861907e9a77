package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iudanet/cardvault/internal/export"
	"github.com/iudanet/cardvault/internal/models"
	"github.com/iudanet/cardvault/internal/render"
)

// runExport renders the requested cards (explicit ids or a whole
// collection) into PNG entries of a single zip archive. Cancelling the
// context (Ctrl-C) keeps the items already rendered.
func (c *Cli) runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(c.out)
	collectionID := fs.String("collection", "", "Export every card of this collection")
	outDir := fs.String("out", ".", "Directory for the resulting archive")
	width := fs.Int("width", 0, "Rendered card width (0 = default)")
	height := fs.Int("height", 0, "Rendered card height (0 = default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids := fs.Args()
	var collectionName func() string
	if *collectionID != "" {
		col, err := c.store.GetCollection(ctx, *collectionID)
		if err != nil {
			return err
		}
		if col == nil {
			return fmt.Errorf("collection not found: %s", *collectionID)
		}
		ids = append(ids, col.CardIDs...)
		collectionName = func() string { return col.Name }
	}

	interactive := c.interactive()
	opts := export.Options{
		Renderer:       render.NewFlat(),
		Width:          *width,
		Height:         *height,
		CollectionName: collectionName,
		OnTargetChange: func(card *models.CardRecord) {
			if interactive && card != nil {
				fmt.Fprintf(c.out, "Exporting: %s\n", card.Name)
			}
		},
	}

	exporter, err := export.New(c.store, opts)
	if err != nil {
		return err
	}

	result, err := exporter.Run(ctx, ids)
	if err != nil {
		return err
	}

	switch result.Status {
	case export.StatusEmpty:
		fmt.Fprintln(c.out, "Nothing to export.")
		return nil
	case export.StatusCancelled:
		fmt.Fprintf(c.out, "Export cancelled after %d card(s)\n", result.ExportedCount)
	default:
		fmt.Fprintf(c.out, "Exported %d card(s)\n", result.ExportedCount)
	}

	path := filepath.Join(*outDir, result.ArchiveName)
	if err := os.WriteFile(path, result.Archive, 0o644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	fmt.Fprintf(c.out, "Archive written to %s\n", path)
	return nil
}
