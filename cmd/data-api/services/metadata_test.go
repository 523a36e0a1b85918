package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msdss/data-api/cmd/data-api/models"
)

func newMetadataFixture(t *testing.T) (*fakeStore, *MetadataService) {
	t.Helper()
	store := newFakeStore()
	service := NewMetadataService(store, "")
	require.NoError(t, service.EnsureTable(context.Background()))
	return store, service
}

func TestMetadataLedgerIsAllowListed(t *testing.T) {
	store, service := newMetadataFixture(t)
	store.tables["t1"] = sampleRows()

	// The ledger manager may touch nothing but the ledger table.
	err := service.data.Insert(context.Background(), "t1", sampleRows())
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
}

func TestMetadataCreateForcesDatasetKey(t *testing.T) {
	_, service := newMetadataFixture(t)
	ctx := context.Background()

	record := models.MetadataRecord{Dataset: "spoofed", Title: "Testing Data"}
	require.NoError(t, service.Create(ctx, "t1", record))

	row, err := service.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "t1", row["dataset"])
	assert.Equal(t, "Testing Data", row["title"])

	row, err = service.Get(ctx, "spoofed")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestMetadataUpdate(t *testing.T) {
	_, service := newMetadataFixture(t)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", models.MetadataRecord{Description: "old"}))

	require.NoError(t, service.Update(ctx, "t1", models.Row{"description": "NEW DESCRIPTION"}))
	row, err := service.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "NEW DESCRIPTION", row["description"])
}

func TestTouchUpdatedAtMonotonic(t *testing.T) {
	_, service := newMetadataFixture(t)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", models.MetadataRecord{}))

	require.NoError(t, service.TouchUpdatedAt(ctx, "t1", time.Time{}))
	row, err := service.Get(ctx, "t1")
	require.NoError(t, err)
	first, ok := row["updated_at"].(time.Time)
	require.True(t, ok)

	require.NoError(t, service.TouchUpdatedAt(ctx, "t1", time.Time{}))
	row, err = service.Get(ctx, "t1")
	require.NoError(t, err)
	second, ok := row["updated_at"].(time.Time)
	require.True(t, ok)

	assert.False(t, second.Before(first))
}

func TestMetadataDelete(t *testing.T) {
	_, service := newMetadataFixture(t)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", models.MetadataRecord{}))
	require.NoError(t, service.Create(ctx, "t2", models.MetadataRecord{}))

	require.NoError(t, service.Delete(ctx, "t1"))

	row, err := service.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, row)
	row, err = service.Get(ctx, "t2")
	require.NoError(t, err)
	assert.NotNil(t, row)
}

func TestMetadataSearch(t *testing.T) {
	_, service := newMetadataFixture(t)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", models.MetadataRecord{Title: "Alpha"}))
	require.NoError(t, service.Create(ctx, "t2", models.MetadataRecord{Title: "Beta"}))

	rows, err := service.Search(ctx, models.QueryOptions{Where: []string{"title = Alpha"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "t1", rows[0]["dataset"])

	rows, err = service.Search(ctx, models.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
