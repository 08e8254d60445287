package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protein-atlas-server/internal/domain"
)

func TestQueryCachePutGet(t *testing.T) {
	cache := NewQueryCache()

	_, ok := cache.Get("TP53")
	assert.False(t, ok)

	record := &domain.ProteinRecord{Query: "TP53", DataSource: domain.DataSourceUniProt}
	cache.Put("TP53", record)

	got, ok := cache.Get("TP53")
	require.True(t, ok)
	assert.Same(t, record, got)
	assert.Equal(t, 1, cache.Len())
}

func TestQueryCacheKeysAreCaseSensitive(t *testing.T) {
	cache := NewQueryCache()
	cache.Put("TP53", &domain.ProteinRecord{Query: "TP53"})

	_, ok := cache.Get("tp53")
	assert.False(t, ok, "raw query strings are distinct keys")
}

func TestQueryCacheOverwrite(t *testing.T) {
	cache := NewQueryCache()
	cache.Put("TP53", &domain.ProteinRecord{Query: "TP53", DataSource: domain.DataSourceUniProt})
	cache.Put("TP53", &domain.ProteinRecord{Query: "TP53", DataSource: domain.DataSourceNCBI})

	got, ok := cache.Get("TP53")
	require.True(t, ok)
	assert.Equal(t, domain.DataSourceNCBI, got.DataSource)
	assert.Equal(t, 1, cache.Len())
}

func TestQueryCacheConcurrentAccess(t *testing.T) {
	cache := NewQueryCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("GENE%d", i%10)
			cache.Put(key, &domain.ProteinRecord{Query: key})
			cache.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, cache.Len())
}
