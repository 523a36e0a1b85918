package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msdss/data-api/cmd/data-api/models"
)

func sampleRows() []models.Row {
	return []models.Row{
		{"id": 1, "column_one": "a", "column_two": 2},
		{"id": 2, "column_one": "b", "column_two": 4},
		{"id": 3, "column_one": "c", "column_two": 6},
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, []string{"data", "user"}, nil)
	ctx := context.Background()

	rows := []models.Row{{"a": 1, "b": "x"}}
	require.NoError(t, service.Create(ctx, "t1", rows))

	got, err := service.Get(ctx, "t1", models.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	// A second create for the same name must trip the guard.
	err = service.Create(ctx, "t1", rows)
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))
}

func TestCreateRestricted(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, []string{"data"}, nil)

	err := service.Create(context.Background(), "data", sampleRows())
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
	assert.Empty(t, store.calls, "guard failure must not reach the store")
}

func TestInsertRequiresExistence(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, nil, nil)
	ctx := context.Background()

	err := service.Insert(ctx, "missing", sampleRows())
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))

	require.NoError(t, service.Create(ctx, "t1", sampleRows()))
	require.NoError(t, service.Insert(ctx, "t1", []models.Row{{"id": 4, "column_one": "d", "column_two": 8}}))

	count, err := service.GetRows(ctx, "t1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestGetFilters(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, nil, nil)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", sampleRows()))

	got, err := service.Get(ctx, "t1", models.QueryOptions{Where: []string{"id > 1"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = service.Get(ctx, "t1", models.QueryOptions{
		Where:        []string{"id = 1", "id = 3"},
		WhereBoolean: "OR",
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetRejectsBadFilters(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, nil, nil)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", sampleRows()))

	_, err := service.Get(ctx, "t1", models.QueryOptions{Where: []string{"id >"}})
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))

	_, err = service.Get(ctx, "t1", models.QueryOptions{Where: []string{"id == 1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "==")

	_, err = service.Get(ctx, "t1", models.QueryOptions{
		Where:        []string{"id = 1"},
		WhereBoolean: "XOR",
	})
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))
}

func TestGetRejectsPairingMismatch(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, nil, nil)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", sampleRows()))

	_, err := service.Get(ctx, "t1", models.QueryOptions{
		Aggregate:     []string{"column_two", "id"},
		AggregateFunc: []string{"sum"},
	})
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))

	_, err = service.Get(ctx, "t1", models.QueryOptions{
		OrderBy:     []string{"id"},
		OrderBySort: []string{"asc", "desc"},
	})
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))
}

func TestUpdateUnknownColumn(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, nil, nil)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", []models.Row{{"a": 1, "b": "x"}}))
	store.calls = nil

	err := service.Update(ctx, "t1", models.Row{"c": 5}, []string{"a = 1"}, "AND", false)
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))
	assert.Empty(t, store.calls, "unknown column must fail before any store write")
}

func TestUpdateRequiresFilter(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, nil, nil)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", sampleRows()))

	err := service.Update(ctx, "t1", models.Row{"column_one": "z"}, nil, "AND", false)
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))

	// update_all bypasses the mandatory filter, symmetric with delete_all.
	require.NoError(t, service.Update(ctx, "t1", models.Row{"column_one": "z"}, nil, "AND", true))
	got, err := service.Get(ctx, "t1", models.QueryOptions{Where: []string{"column_one = z"}})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestDeleteSemantics(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, nil, nil)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", sampleRows()))

	// Neither where nor delete_all: missing filter.
	err := service.Delete(ctx, "t1", nil, "AND", false)
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))

	require.NoError(t, service.Delete(ctx, "t1", []string{"id > 1"}, "AND", false))
	count, err := service.GetRows(ctx, "t1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, service.Delete(ctx, "t1", nil, "AND", true))
	ok, err := store.HasTable(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetColumns(t *testing.T) {
	store := newFakeStore()
	service := NewDataService(store, nil, nil)
	ctx := context.Background()
	require.NoError(t, service.Create(ctx, "t1", sampleRows()))

	count, err := service.GetColumns(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = service.GetColumns(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))
}
