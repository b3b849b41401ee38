package recommender

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSelfSimilarity(t *testing.T) {
	v := []float64{0.3, -0.5, 0.8, 0.1}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineHandlesUnnormalizedVectors(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{100, 0} // same direction, different magnitude
	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-9)

	c := []float64{0, 3}
	assert.InDelta(t, 0.0, CosineSimilarity(a, c), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity(a, []float64{-2, 0}), 1e-9)
}

func TestCosineZeroNormIsZero(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, []float64{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}))
}

func TestCosineRange(t *testing.T) {
	a := []float64{0.2, -0.7, 0.4}
	b := []float64{-0.9, 0.1, 0.3}
	sim := CosineSimilarity(a, b)
	assert.False(t, math.IsNaN(sim))
	assert.GreaterOrEqual(t, sim, -1.0)
	assert.LessOrEqual(t, sim, 1.0)
}

func TestEmbeddingStoreWardrobeSearchedFirst(t *testing.T) {
	store := NewEmbeddingStore()
	store.AddCatalog("42", []float64{0, 1})
	store.AddWardrobe("42", []float64{1, 0})

	vec, ok := store.Get("42")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0}, vec)
}

func TestEmbeddingStoreMissingIsNotAnError(t *testing.T) {
	store := NewEmbeddingStore()
	store.AddWardrobe("1", []float64{1, 0})

	vec, ok := store.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, vec)
}

func TestEmbeddingStoreCatalogFallback(t *testing.T) {
	store := NewEmbeddingStore()
	store.AddCatalog("c9", []float64{0.5, 0.5})

	vec, ok := store.Get("c9")
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 0.5}, vec)
}
