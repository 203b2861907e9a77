package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/iudanet/cardvault/internal/client/cli"
	"github.com/iudanet/cardvault/internal/storage"
	"github.com/iudanet/cardvault/internal/storage/boltdb"
	"github.com/iudanet/cardvault/internal/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	dbPath := flag.String("db", "cardvault.db", "Path to local database")
	engine := flag.String("engine", "bolt", "Storage engine: bolt or sqlite")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: cardvault [flags] <command>. Run 'cardvault help' for details.")
		os.Exit(1)
	}
	command := args[0]

	// Ctrl-C кооперативно отменяет долгие операции (экспорт)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store storage.Store
	switch *engine {
	case "bolt":
		store = boltdb.New(*dbPath)
	case "sqlite":
		store = sqlite.New(*dbPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown engine: %s\n", *engine)
		os.Exit(1)
	}

	if err := store.Open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := cli.New(store, os.Stdout).Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		store.Close() //nolint:errcheck // exiting anyway
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("cardvault %s\n", Version)
	fmt.Printf("  build date: %s\n", BuildDate)
	fmt.Printf("  git commit: %s\n", GitCommit)
}
