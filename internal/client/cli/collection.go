package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/cardvault/internal/models"
)

var collectionUsage = "Usage: cardvault collection <create|list|add-card|remove-card|delete> ..."

func (c *Cli) runCollection(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing collection subcommand. %s", collectionUsage)
	}

	switch args[0] {
	case "create":
		return c.runCollectionCreate(ctx, args[1:])
	case "list":
		return c.runCollectionList(ctx)
	case "add-card":
		if len(args) < 3 {
			return fmt.Errorf("missing collection/card id. %s", collectionUsage)
		}
		return c.store.AddCardToCollection(ctx, args[1], args[2])
	case "remove-card":
		if len(args) < 3 {
			return fmt.Errorf("missing collection/card id. %s", collectionUsage)
		}
		return c.store.RemoveCardFromCollection(ctx, args[1], args[2])
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("missing collection id. %s", collectionUsage)
		}
		return c.store.DeleteCollection(ctx, args[1])
	default:
		return fmt.Errorf("unknown collection subcommand: %s. %s", args[0], collectionUsage)
	}
}

func (c *Cli) runCollectionCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("collection create", flag.ContinueOnError)
	fs.SetOutput(c.out)
	name := fs.String("name", "", "Collection name (required)")
	description := fs.String("description", "", "Description (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	col := &models.CollectionRecord{
		ID:          uuid.NewString(),
		Name:        *name,
		Description: *description,
	}
	if err := c.store.SaveCollection(ctx, col); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Created collection %s (%s)\n", col.ID, col.Name)
	return nil
}

func (c *Cli) runCollectionList(ctx context.Context) error {
	cols, err := c.store.ListCollections(ctx)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		fmt.Fprintln(c.out, "No collections found.")
		return nil
	}
	for _, col := range cols {
		fmt.Fprintf(c.out, "%s  %-30s %d card(s)\n", col.ID, col.Name, len(col.CardIDs))
	}
	return nil
}
