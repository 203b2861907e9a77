package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cardvault/internal/models"
)

// fakeHash — детерминированный хеш для тестов индекса
func fakeHash(blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", errors.New("blob cannot be empty")
	}
	return "h-" + string(blob), nil
}

func TestDedupIndexRecordLookup(t *testing.T) {
	idx := NewDedupIndex()

	_, ok := idx.Lookup("h-1")
	assert.False(t, ok)

	idx.Record("h-1", "asset-1")
	id, ok := idx.Lookup("h-1")
	assert.True(t, ok)
	assert.Equal(t, "asset-1", id)

	// Пустой хеш никогда не матчится и не записывается
	idx.Record("", "asset-2")
	_, ok = idx.Lookup("")
	assert.False(t, ok)
}

func TestDedupIndexForget(t *testing.T) {
	idx := NewDedupIndex()
	idx.Record("h-1", "asset-1")
	idx.Record("h-2", "asset-2")

	idx.Forget("asset-1")

	_, ok := idx.Lookup("h-1")
	assert.False(t, ok)
	_, ok = idx.Lookup("h-2")
	assert.True(t, ok)
	assert.Equal(t, 1, idx.Len())
}

func TestDedupIndexRebuild(t *testing.T) {
	idx := NewDedupIndex()
	idx.Record("stale", "gone")

	records := []*models.AssetRecord{
		{ID: "a1", ContentHash: "precomputed"},
		{ID: "a2", Blob: []byte("bytes")}, // хеш не вычислен — хешируем при rebuild
		{ID: "a3"},                        // ни хеша, ни payload — пропускается
	}

	require.NoError(t, idx.Rebuild(records, fakeHash))

	id, ok := idx.Lookup("precomputed")
	assert.True(t, ok)
	assert.Equal(t, "a1", id)

	id, ok = idx.Lookup("h-bytes")
	assert.True(t, ok)
	assert.Equal(t, "a2", id)

	// rebuild полностью заменяет содержимое
	_, ok = idx.Lookup("stale")
	assert.False(t, ok)
	assert.Equal(t, 2, idx.Len())
}

// Дубликаты легитимно делят хеш; индекс консервативно оставляет первый id
func TestDedupIndexRebuildSharedHash(t *testing.T) {
	idx := NewDedupIndex()
	records := []*models.AssetRecord{
		{ID: "first", ContentHash: "shared"},
		{ID: "second", ContentHash: "shared"},
	}

	require.NoError(t, idx.Rebuild(records, fakeHash))

	id, ok := idx.Lookup("shared")
	assert.True(t, ok)
	assert.Equal(t, "first", id)
}
