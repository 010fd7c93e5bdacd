package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/medfind/internal/query"
)

func TestCacheKeyTrimsText(t *testing.T) {
	assert.Equal(t, "symptom:두통", CacheKey(query.CategorySymptom, "  두통 "))
	assert.Equal(t, "name:타이레놀 500", CacheKey(query.CategoryName, "타이레놀 500"))
}

func TestSuggestionCacheGetReturnsCopy(t *testing.T) {
	cache := NewSuggestionCache(0)
	cache.Put(query.CategorySymptom, "두통", []string{"두통", "두근거림"})

	got, ok := cache.Get(query.CategorySymptom, "두통")
	require.True(t, ok)
	got[0] = "changed"

	again, ok := cache.Get(query.CategorySymptom, " 두통")
	require.True(t, ok)
	assert.Equal(t, []string{"두통", "두근거림"}, again)

	_, ok = cache.Get(query.CategoryIngredient, "두통")
	assert.False(t, ok)
}

func TestSuggestionCacheIgnoresEmptyText(t *testing.T) {
	cache := NewSuggestionCache(10)
	cache.Put(query.CategorySymptom, "   ", []string{"x"})
	assert.Equal(t, 0, cache.Len())
}

func TestSuggestionCacheEvictsFirstInsertedEvenAfterOverwrite(t *testing.T) {
	cache := NewSuggestionCache(MaxCacheEntries)
	for i := range MaxCacheEntries {
		cache.Put(query.CategoryName, fmt.Sprintf("q%d", i), []string{fmt.Sprint(i)})
	}
	require.Equal(t, MaxCacheEntries, cache.Len())

	cache.Put(query.CategoryName, "q0", []string{"fresh"})
	assert.Equal(t, "name:q0", cache.Keys()[0])

	cache.Put(query.CategoryName, "q100", []string{"100"})

	assert.Equal(t, MaxCacheEntries, cache.Len())
	_, ok := cache.Get(query.CategoryName, "q0")
	assert.False(t, ok, "oldest key should be evicted")
	_, ok = cache.Get(query.CategoryName, "q1")
	assert.True(t, ok)
	_, ok = cache.Get(query.CategoryName, "q100")
	assert.True(t, ok)
	assert.Equal(t, "name:q1", cache.Keys()[0])
}

func TestSuggestionCacheStoresEmptyLists(t *testing.T) {
	cache := NewSuggestionCache(2)
	cache.Put(query.CategoryManufacturer, "없는회사", []string{})

	got, ok := cache.Get(query.CategoryManufacturer, "없는회사")
	require.True(t, ok)
	assert.Empty(t, got)
}
