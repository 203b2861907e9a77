package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cardvault/internal/models"
	"github.com/iudanet/cardvault/internal/storage"
)

func TestSaveGetCollection(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStorage(t)

	col := &models.CollectionRecord{
		ID:          "col-1",
		Name:        "Quest Pack",
		Description: "Cards for the first quest",
	}
	require.NoError(t, store.SaveCollection(ctx, col))

	got, err := store.GetCollection(ctx, "col-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Quest Pack", got.Name)
	// CardIDs по умолчанию — пустая, но не nil последовательность
	assert.NotNil(t, got.CardIDs)
	assert.Empty(t, got.CardIDs)
	assert.Equal(t, 1, got.SchemaVersion)
	assert.True(t, got.CreatedAt.Equal(*now))
}

func TestGetCollection_Missing(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	got, err := store.GetCollection(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAddRemoveCardInCollection(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStorage(t)

	col := &models.CollectionRecord{ID: "col-1", Name: "Quest Pack"}
	require.NoError(t, store.SaveCollection(ctx, col))
	savedAt := col.UpdatedAt

	*now = now.Add(time.Minute)
	require.NoError(t, store.AddCardToCollection(ctx, "col-1", "card-a"))
	require.NoError(t, store.AddCardToCollection(ctx, "col-1", "card-b"))
	// Повторное добавление не дублирует id
	require.NoError(t, store.AddCardToCollection(ctx, "col-1", "card-a"))

	got, err := store.GetCollection(ctx, "col-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	// Порядок добавления сохраняется
	assert.Equal(t, []string{"card-a", "card-b"}, got.CardIDs)
	assert.True(t, got.UpdatedAt.After(savedAt))

	require.NoError(t, store.RemoveCardFromCollection(ctx, "col-1", "card-a"))
	got, err = store.GetCollection(ctx, "col-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"card-b"}, got.CardIDs)
}

func TestMutateMissingCollection(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	// Мутация несуществующей коллекции — различимая ошибка ErrNotFound
	err := store.AddCardToCollection(ctx, "missing", "card-a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.RemoveCardFromCollection(ctx, "missing", "card-a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteCollection(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	require.NoError(t, store.SaveCollection(ctx, &models.CollectionRecord{ID: "col-1", Name: "Quest Pack"}))
	require.NoError(t, store.DeleteCollection(ctx, "col-1"))

	got, err := store.GetCollection(ctx, "col-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListCollections(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	require.NoError(t, store.SaveCollection(ctx, &models.CollectionRecord{ID: "c2", Name: "Undead"}))
	require.NoError(t, store.SaveCollection(ctx, &models.CollectionRecord{ID: "c1", Name: "Greenskins"}))

	cols, err := store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "Greenskins", cols[0].Name)
	assert.Equal(t, "Undead", cols[1].Name)
}
