package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protein-atlas-server/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(query string) *SearchRecord {
	return &SearchRecord{
		Query:      query,
		DataSource: domain.DataSourceUniProt,
		Record: &domain.ProteinRecord{
			Query: query,
			Identity: domain.ProteinIdentity{
				Accession:  "P04637",
				GeneSymbol: query,
			},
			Structures: []domain.StructureEntry{
				{ID: "1TUP", Source: domain.SourcePDB},
			},
			DataSource: domain.DataSourceUniProt,
		},
	}
}

func TestSQLiteStoreSaveAssignsID(t *testing.T) {
	store := newTestStore(t)

	record := sampleRecord("TP53")
	require.NoError(t, store.Save(context.Background(), record))

	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved := sampleRecord("TP53")
	require.NoError(t, store.Save(ctx, saved))

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "TP53", got.Query)
	assert.Equal(t, domain.DataSourceUniProt, got.DataSource)
	require.NotNil(t, got.Record)
	assert.Equal(t, "P04637", got.Record.Identity.Accession)
	require.Len(t, got.Record.Structures, 1)
	assert.Equal(t, domain.SourcePDB, got.Record.Structures[0].Source)
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStoreListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := sampleRecord("BRCA1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Save(ctx, older))

	newer := sampleRecord("TP53")
	require.NoError(t, store.Save(ctx, newer))

	records, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "TP53", records[0].Query)
	assert.Equal(t, "BRCA1", records[1].Query)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := sampleRecord("TP53")
	require.NoError(t, store.Save(ctx, record))
	require.NoError(t, store.Delete(ctx, record.ID))

	got, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
