package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/cardvault/internal/models"
)

var cardUsage = "Usage: cardvault card <add|list|search|delete> ..."

func (c *Cli) runCard(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing card subcommand. %s", cardUsage)
	}

	switch args[0] {
	case "add":
		return c.runCardAdd(ctx, args[1:])
	case "list":
		return c.runCardList(ctx)
	case "search":
		if len(args) < 2 {
			return fmt.Errorf("missing search query. %s", cardUsage)
		}
		return c.runCardSearch(ctx, args[1])
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("missing card id. %s", cardUsage)
		}
		return c.runCardDelete(ctx, args[1])
	default:
		return fmt.Errorf("unknown card subcommand: %s. %s", args[0], cardUsage)
	}
}

func (c *Cli) runCardAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("card add", flag.ContinueOnError)
	fs.SetOutput(c.out)
	name := fs.String("name", "", "Card name (required)")
	template := fs.String("template", "monster", "Template id")
	title := fs.String("title", "", "Display title (optional)")
	save := fs.Bool("save", false, "Mark the card as saved instead of draft")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("card name cannot be empty")
	}

	status := models.CardStatusDraft
	if *save {
		status = models.CardStatusSaved
	}

	card := &models.CardRecord{
		ID:         uuid.NewString(),
		TemplateID: *template,
		Status:     status,
		Name:       *name,
		Title:      *title,
	}
	if err := c.store.SaveCard(ctx, card); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Added card %s (%s)\n", card.ID, card.Name)
	return nil
}

func (c *Cli) runCardList(ctx context.Context) error {
	cards, err := c.store.ListCards(ctx)
	if err != nil {
		return err
	}
	return c.printCards(cards)
}

func (c *Cli) runCardSearch(ctx context.Context, query string) error {
	cards, err := c.store.SearchCards(ctx, query)
	if err != nil {
		return err
	}
	return c.printCards(cards)
}

func (c *Cli) printCards(cards []*models.CardRecord) error {
	if len(cards) == 0 {
		fmt.Fprintln(c.out, "No cards found.")
		return nil
	}
	for _, card := range cards {
		fmt.Fprintf(c.out, "%s  %-30s %-10s %s\n",
			card.ID, card.Name, card.TemplateID, card.Status)
	}
	return nil
}

func (c *Cli) runCardDelete(ctx context.Context, id string) error {
	if err := c.store.DeleteCard(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted card %s\n", id)
	return nil
}
