package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cardvault/internal/models"
	"github.com/iudanet/cardvault/internal/storage"
)

// newTestStorage создает временное SQLite хранилище с управляемыми часами
func newTestStorage(t *testing.T) (*Storage, *time.Time) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "cardvault_test.db")
	current := time.Date(2026, 2, 11, 15, 4, 5, 0, time.UTC)

	store := NewWithClock(dbPath, func() time.Time { return current })
	require.NoError(t, store.Open(context.Background()))

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store, &current
}

func TestAssetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStorage(t)

	blob := []byte("png-bytes")
	meta := storage.AssetMeta{
		Name:        "goblin.png",
		MimeType:    "image/png",
		ContentHash: "abc123",
		Width:       400,
		Height:      560,
	}
	require.NoError(t, store.AddAsset(ctx, "asset-1", blob, meta))

	got, err := store.GetAsset(ctx, "asset-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "goblin.png", got.Name)
	assert.Equal(t, "abc123", got.ContentHash)
	assert.Equal(t, blob, got.Blob)
	assert.Equal(t, 400, got.Width)
	// created_at хранится в unix-секундах
	assert.Equal(t, now.Unix(), got.CreatedAt.Unix())

	// Отсутствующий id — nil, не ошибка
	missing, err := store.GetAsset(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteAssetsAtomic(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	require.NoError(t, store.AddAsset(ctx, "a1", []byte("one"), storage.AssetMeta{}))
	require.NoError(t, store.AddAsset(ctx, "a2", []byte("two"), storage.AssetMeta{}))

	require.NoError(t, store.DeleteAssets(ctx, nil)) // no-op
	require.NoError(t, store.DeleteAssets(ctx, []string{"a1", "missing"}))

	got, err := store.GetAsset(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)

	records, err := store.GetAllAssetsWithBlobs(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a2", records[0].ID)
}

func TestCardRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStorage(t)

	card := &models.CardRecord{
		ID:         "card-1",
		TemplateID: "monster",
		Name:       "Goblin Raider",
		Fields:     map[string]string{"attack": "2"},
	}
	require.NoError(t, store.SaveCard(ctx, card))

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "goblin raider", got.NameLower)
	assert.Equal(t, models.CardStatusDraft, got.Status)
	assert.Equal(t, 1, got.SchemaVersion)
	assert.Equal(t, map[string]string{"attack": "2"}, got.Fields)
	assert.Equal(t, now.Unix(), got.UpdatedAt.Unix())

	// Обновление перезаписывает запись и пересчитывает производные поля
	*now = now.Add(time.Hour)
	card.Name = "GOBLIN ELITE"
	require.NoError(t, store.SaveCard(ctx, card))

	got, err = store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "goblin elite", got.NameLower)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	require.NoError(t, store.DeleteCard(ctx, "card-1"))
	got, err = store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListAndSearchCards(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c1", Name: "zargon"}))
	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c2", Name: "Barbarian"}))
	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c3", Name: "Goblin 100%"}))

	cards, err := store.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "Barbarian", cards[0].Name)
	assert.Equal(t, "zargon", cards[2].Name)

	found, err := store.SearchCards(ctx, "GOBLIN")
	require.NoError(t, err)
	require.Len(t, found, 1)

	// LIKE-метасимволы в запросе экранируются
	found, err = store.SearchCards(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	found, err = store.SearchCards(ctx, "%")
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	col := &models.CollectionRecord{ID: "col-1", Name: "Quest Pack"}
	require.NoError(t, store.SaveCollection(ctx, col))

	got, err := store.GetCollection(ctx, "col-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.CardIDs)
	assert.Empty(t, got.CardIDs)
	assert.Equal(t, 1, got.SchemaVersion)

	require.NoError(t, store.AddCardToCollection(ctx, "col-1", "card-a"))
	require.NoError(t, store.AddCardToCollection(ctx, "col-1", "card-b"))
	require.NoError(t, store.AddCardToCollection(ctx, "col-1", "card-a"))
	require.NoError(t, store.RemoveCardFromCollection(ctx, "col-1", "card-a"))

	got, err = store.GetCollection(ctx, "col-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"card-b"}, got.CardIDs)

	err = store.AddCardToCollection(ctx, "missing", "card-a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.DeleteCollection(ctx, "col-1"))
	got, err = store.GetCollection(ctx, "col-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// Операции на явно закрытом хранилище не пересоздают engine молча
func TestClosedStorageRejectsOperations(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "closed.db")
	store := New(dbPath)

	require.NoError(t, store.Open(ctx))
	require.NoError(t, store.Close())

	_, err := store.GetCard(ctx, "any")
	require.ErrorIs(t, err, storage.ErrStorageClosed)
	err = store.SaveCard(ctx, &models.CardRecord{ID: "c1", Name: "Goblin"})
	require.ErrorIs(t, err, storage.ErrStorageClosed)

	// Явный Open снова включает хранилище
	require.NoError(t, store.Open(ctx))
	card, err := store.GetCard(ctx, "any")
	require.NoError(t, err)
	require.Nil(t, card)
	require.NoError(t, store.Close())
}

// Отсутствующая таблица — различимое состояние store-unavailable
func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	db, err := store.DB(ctx)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DROP TABLE cards`)
	require.NoError(t, err)

	_, err = store.GetCard(ctx, "any")
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)

	err = store.SaveCard(ctx, &models.CardRecord{ID: "c1", Name: "Goblin"})
	assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
}
