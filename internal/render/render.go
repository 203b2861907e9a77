// Package render defines the card rendering capability consumed by the
// export pipeline, plus a minimal built-in renderer.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/iudanet/cardvault/internal/models"
)

// Default card canvas size (poker-card aspect), used when the caller
// passes no target dimensions.
const (
	DefaultWidth  = 400
	DefaultHeight = 560
)

// Renderer produces the pixel image for a card document.
//
// A nil byte slice with a nil error means "could not render"; the export
// pipeline treats it exactly like a returned error and skips the item.
type Renderer interface {
	Render(ctx context.Context, card *models.CardRecord, width, height int) ([]byte, error)
}

// Flat is the built-in fallback renderer: a flat background with a
// darker frame, PNG-encoded. Real card faces come from an external
// rendering surface; Flat keeps exports working without one.
type Flat struct {
	Background color.NRGBA
	Frame      color.NRGBA
}

// NewFlat creates a Flat renderer with the default parchment palette.
func NewFlat() *Flat {
	return &Flat{
		Background: color.NRGBA{R: 0xEA, G: 0xDD, B: 0xC0, A: 0xFF},
		Frame:      color.NRGBA{R: 0x5A, G: 0x43, B: 0x2E, A: 0xFF},
	}
}

const frameWidth = 6

// Render encodes a flat card-sized PNG. A nil card cannot be rendered.
func (f *Flat) Render(ctx context.Context, card *models.CardRecord, width, height int) ([]byte, error) {
	if card == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			onFrame := x < frameWidth || y < frameWidth ||
				x >= width-frameWidth || y >= height-frameWidth
			if onFrame {
				img.SetNRGBA(x, y, f.Frame)
			} else {
				img.SetNRGBA(x, y, f.Background)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode card image: %w", err)
	}
	return buf.Bytes(), nil
}
