// Package export implements the bulk export pipeline: resolve each
// requested card, render it, assign a collision-free file name and
// assemble everything into one zip archive.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/iudanet/cardvault/internal/filename"
	"github.com/iudanet/cardvault/internal/models"
	"github.com/iudanet/cardvault/internal/render"
)

// Status is the final outcome of one export batch.
type Status string

const (
	// StatusDone means the batch completed; the count may still be lower
	// than requested when individual items were skipped.
	StatusDone Status = "done"
	// StatusCancelled means the batch stopped on a cancellation signal.
	// Items already collected are kept.
	StatusCancelled Status = "cancelled"
	// StatusEmpty means nothing was eligible: empty input, nothing
	// resolved, or every render failed. Not an error.
	StatusEmpty Status = "empty"
)

// CardLoader resolves a card id to its stored document.
// A (nil, nil) result means the id does not exist.
type CardLoader interface {
	GetCard(ctx context.Context, id string) (*models.CardRecord, error)
}

// Options carries the injectable collaborators of one exporter.
// Only Renderer is mandatory.
type Options struct {
	Renderer render.Renderer

	// Width/Height are passed through to the renderer; zero means the
	// renderer's default.
	Width  int
	Height int

	// Cancelled is polled before each item's render step. Cancellation
	// is cooperative: an in-flight render finishes first.
	Cancelled func() bool

	// OnProgress fires after each successfully rendered item with the
	// running exported count.
	OnProgress func(exported int)

	// OnTargetChange fires with the card about to be processed, and with
	// nil once the run ends.
	OnTargetChange func(card *models.CardRecord)

	// CollectionName names the archive; nil or empty falls back to the
	// default archive slug.
	CollectionName func() string

	// Ledger tracks names assigned within the batch. Nil means a fresh
	// ledger per run.
	Ledger *filename.Ledger

	// Now is the clock used for the archive timestamp, time.Now when nil.
	Now func() time.Time
}

// Result is what one batch hands back to the caller. The caller decides
// the download/write mechanism for the archive bytes.
type Result struct {
	Status        Status
	ArchiveName   string
	Archive       []byte
	ExportedCount int
}

// Exporter runs export batches over a card store.
type Exporter struct {
	cards CardLoader
	opts  Options
}

// New creates an exporter.
func New(cards CardLoader, opts Options) (*Exporter, error) {
	if cards == nil {
		return nil, fmt.Errorf("nil card loader")
	}
	if opts.Renderer == nil {
		return nil, fmt.Errorf("nil renderer")
	}
	return &Exporter{cards: cards, opts: opts}, nil
}

// Run exports the cards behind the given ids.
//
// Ids that fail to load or do not exist are skipped. When nothing
// resolves, the result is StatusEmpty and the rendering phase is never
// entered.
func (e *Exporter) Run(ctx context.Context, ids []string) (*Result, error) {
	// Resolving: собираем документы, пропуская отсутствующие и сбойные
	cards := make([]*models.CardRecord, 0, len(ids))
	for _, id := range ids {
		card, err := e.cards.GetCard(ctx, id)
		if err != nil || card == nil {
			continue
		}
		cards = append(cards, card)
	}
	return e.RunCards(ctx, cards)
}

// RunCards exports already-resolved card records.
func (e *Exporter) RunCards(ctx context.Context, cards []*models.CardRecord) (*Result, error) {
	archiveName := filename.ZipFileName(e.opts.CollectionName, e.opts.Now)

	if len(cards) == 0 {
		e.targetChange(nil)
		return &Result{Status: StatusEmpty, ArchiveName: archiveName}, nil
	}

	ledger := e.opts.Ledger
	if ledger == nil {
		ledger = filename.NewLedger()
	}

	// Rendering: per-item failures skip the item, never the batch
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	exported := 0
	cancelled := false

	for _, card := range cards {
		if e.isCancelled(ctx) {
			cancelled = true
			break
		}
		e.targetChange(card)

		img, err := e.opts.Renderer.Render(ctx, card, e.opts.Width, e.opts.Height)
		if err != nil || len(img) == 0 {
			continue
		}

		entryName := ledger.ResolveExportFileName(card.Name)
		w, err := zw.Create(entryName)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to assemble archive: %w", err)
		}
		if _, err := w.Write(img); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to assemble archive: %w", err)
		}

		exported++
		e.progress(exported)
	}
	e.targetChange(nil)

	// Assembling
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to assemble archive: %w", err)
	}

	if exported == 0 && !cancelled {
		return &Result{Status: StatusEmpty, ArchiveName: archiveName}, nil
	}

	status := StatusDone
	if cancelled {
		status = StatusCancelled
	}
	return &Result{
		Status:        status,
		ArchiveName:   archiveName,
		Archive:       buf.Bytes(),
		ExportedCount: exported,
	}, nil
}

// isCancelled polls the injected check and the context.
func (e *Exporter) isCancelled(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return e.opts.Cancelled != nil && e.opts.Cancelled()
}

func (e *Exporter) progress(exported int) {
	if e.opts.OnProgress != nil {
		e.opts.OnProgress(exported)
	}
}

func (e *Exporter) targetChange(card *models.CardRecord) {
	if e.opts.OnTargetChange != nil {
		e.opts.OnTargetChange(card)
	}
}
