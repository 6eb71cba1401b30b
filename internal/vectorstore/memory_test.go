package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
)

func TestMemoryStoreEnsureIndexIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.EnsureIndex(ctx, "idx", 3, MetricCosine))
	require.NoError(t, store.EnsureIndex(ctx, "idx", 3, MetricCosine))
	err := store.EnsureIndex(ctx, "idx", 4, MetricCosine)
	require.Error(t, err)
	require.True(t, appErr.IsVectorStoreError(err))
}

func TestMemoryStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.EnsureIndex(ctx, "idx", 2, MetricCosine))
	require.NoError(t, store.Upsert(ctx, "idx", []Record{
		{ID: "a", Values: []float32{1, 0}, Metadata: map[string]interface{}{"v": "old"}},
	}))
	require.NoError(t, store.Upsert(ctx, "idx", []Record{
		{ID: "a", Values: []float32{1, 0}, Metadata: map[string]interface{}{"v": "new"}},
	}))
	require.Equal(t, 1, store.Count("idx"))
	results, err := store.Search(ctx, "idx", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "new", results[0]["v"])
}

func TestMemoryStoreSearchOrdersByScore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.EnsureIndex(ctx, "idx", 2, MetricCosine))
	require.NoError(t, store.Upsert(ctx, "idx", []Record{
		{ID: "far", Values: []float32{0, 1}, Metadata: map[string]interface{}{"id": "far"}},
		{ID: "near", Values: []float32{1, 0.1}, Metadata: map[string]interface{}{"id": "near"}},
		{ID: "exact", Values: []float32{1, 0}, Metadata: map[string]interface{}{"id": "exact"}},
	}))
	results, err := store.Search(ctx, "idx", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "exact", results[0]["id"])
	require.Equal(t, "near", results[1]["id"])
}

func TestMemoryStoreSearchUnknownIndex(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Search(context.Background(), "missing", []float32{1}, 5)
	require.Error(t, err)
	require.True(t, appErr.IsVectorStoreError(err))
}

func TestMemoryStoreDeleteIndexIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.EnsureIndex(ctx, "idx", 2, MetricCosine))
	require.NoError(t, store.DeleteIndex(ctx, "idx"))
	require.NoError(t, store.DeleteIndex(ctx, "idx"))
}

func TestMemoryStoreUpsertDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.EnsureIndex(ctx, "idx", 2, MetricCosine))
	err := store.Upsert(ctx, "idx", []Record{{ID: "a", Values: []float32{1, 2, 3}}})
	require.Error(t, err)
	require.True(t, appErr.IsVectorStoreError(err))
}

func TestMemoryStoreSearchDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.EnsureIndex(ctx, "idx", 2, MetricCosine))
	require.NoError(t, store.Upsert(ctx, "idx", []Record{
		{ID: "a", Values: []float32{1, 0}, Metadata: map[string]interface{}{"id": "a"}},
	}))
	_, err := store.Search(ctx, "idx", []float32{1, 0, 0}, 5)
	require.Error(t, err)
	require.True(t, appErr.IsVectorStoreError(err))
}
