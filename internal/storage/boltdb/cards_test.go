package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cardvault/internal/models"
)

func TestSaveGetCard(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStorage(t)

	card := &models.CardRecord{
		ID:         "card-1",
		TemplateID: "monster",
		Name:       "Goblin Raider",
		Title:      "Goblin",
		Fields:     map[string]string{"attack": "2", "defend": "1"},
	}
	require.NoError(t, store.SaveCard(ctx, card))

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Goblin Raider", got.Name)
	// Производные поля и значения по умолчанию проставлены записью
	assert.Equal(t, "goblin raider", got.NameLower)
	assert.Equal(t, models.CardStatusDraft, got.Status)
	assert.Equal(t, 1, got.SchemaVersion)
	assert.Equal(t, map[string]string{"attack": "2", "defend": "1"}, got.Fields)
	assert.True(t, got.CreatedAt.Equal(*now))
	assert.True(t, got.UpdatedAt.Equal(*now))
}

func TestSaveCard_RefreshesDerivedFields(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStorage(t)

	card := &models.CardRecord{ID: "card-1", Name: "Goblin"}
	require.NoError(t, store.SaveCard(ctx, card))
	createdAt := card.CreatedAt

	// Каждая запись обновляет UpdatedAt и пересчитывает NameLower
	*now = now.Add(time.Hour)
	card.Name = "GOBLIN ELITE"
	card.Status = models.CardStatusSaved
	require.NoError(t, store.SaveCard(ctx, card))

	got, err := store.GetCard(ctx, "card-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "goblin elite", got.NameLower)
	assert.Equal(t, models.CardStatusSaved, got.Status)
	assert.True(t, got.CreatedAt.Equal(createdAt), "CreatedAt не меняется при обновлении")
	assert.True(t, got.UpdatedAt.Equal(*now))
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestGetCard_Missing(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	got, err := store.GetCard(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListCardsSorted(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c1", Name: "zargon"}))
	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c2", Name: "Barbarian"}))
	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c3", Name: "elf Scout"}))

	cards, err := store.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 3)

	// Сортировка без учета регистра, по NameLower
	assert.Equal(t, "Barbarian", cards[0].Name)
	assert.Equal(t, "elf Scout", cards[1].Name)
	assert.Equal(t, "zargon", cards[2].Name)
}

func TestSearchCards(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c1", Name: "Goblin Raider"}))
	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c2", Name: "GOBLIN Shaman"}))
	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c3", Name: "Skeleton"}))

	found, err := store.SearchCards(ctx, "goBLin")
	require.NoError(t, err)
	require.Len(t, found, 2)

	found, err = store.SearchCards(ctx, "dragon")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDeleteCard(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStorage(t)

	require.NoError(t, store.SaveCard(ctx, &models.CardRecord{ID: "c1", Name: "Goblin"}))
	require.NoError(t, store.DeleteCard(ctx, "c1"))

	got, err := store.GetCard(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Удаление отсутствующего id — no-op
	require.NoError(t, store.DeleteCard(ctx, "c1"))
}
