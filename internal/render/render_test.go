package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cardvault/internal/models"
)

func TestFlatRender(t *testing.T) {
	ctx := context.Background()
	r := NewFlat()

	data, err := r.Render(ctx, &models.CardRecord{ID: "c1", Name: "Goblin"}, 100, 140)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 140, img.Bounds().Dy())
}

func TestFlatRenderDefaults(t *testing.T) {
	ctx := context.Background()
	r := NewFlat()

	data, err := r.Render(ctx, &models.CardRecord{ID: "c1"}, 0, 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultHeight, img.Bounds().Dy())
}

// nil-карта нерендерима: (nil, nil), как и требует контракт рендерера
func TestFlatRenderNilCard(t *testing.T) {
	data, err := NewFlat().Render(context.Background(), nil, 100, 140)
	assert.NoError(t, err)
	assert.Nil(t, data)
}
