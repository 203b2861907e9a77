// Package cli implements the cardvault commands over a storage engine.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/iudanet/cardvault/internal/hashing"
	"github.com/iudanet/cardvault/internal/storage"
)

// Cli holds the command dependencies.
type Cli struct {
	store storage.Store
	out   io.Writer

	dedup      *storage.DedupIndex
	dedupReady bool
}

// New creates a Cli over the given store, writing output to out.
func New(store storage.Store, out io.Writer) *Cli {
	return &Cli{
		store: store,
		out:   out,
		dedup: storage.NewDedupIndex(),
	}
}

// Run dispatches one command.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "asset":
		return c.runAsset(ctx, args)
	case "card":
		return c.runCard(ctx, args)
	case "collection":
		return c.runCollection(ctx, args)
	case "export":
		return c.runExport(ctx, args)
	case "help":
		c.printUsage()
		return nil
	default:
		c.printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (c *Cli) printUsage() {
	fmt.Fprint(c.out, `Usage: cardvault [flags] <command>

Commands:
  asset add <file>                    import an image asset (deduplicated)
  asset list                          list stored assets
  asset url <id>                      print a display data: URL for an asset
  asset delete <id> [id...]           delete assets atomically
  card add -name <name> [flags]       create a card document
  card list                           list cards sorted by name
  card search <query>                 case-insensitive name search
  card delete <id>                    delete a card
  collection create -name <name>      create a collection
  collection list                     list collections
  collection add-card <col> <card>    append a card to a collection
  collection remove-card <col> <card> remove a card from a collection
  collection delete <id>              delete a collection
  export [-collection <id>] [id...]   render cards to PNG and zip them
`)
}

// ensureDedup lazily rebuilds the advisory hash index from the asset
// table. Rebuilt once per process; the table stays the source of truth.
func (c *Cli) ensureDedup(ctx context.Context) error {
	if c.dedupReady {
		return nil
	}

	records, err := c.store.GetAllAssetsWithBlobs(ctx)
	if err != nil {
		return err
	}
	if err := c.dedup.Rebuild(records, hashing.ContentHash); err != nil {
		return err
	}
	c.dedupReady = true
	return nil
}

// interactive reports whether out is a terminal, для построчного
// прогресса экспорта.
func (c *Cli) interactive() bool {
	f, ok := c.out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
