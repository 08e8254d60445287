package external

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protein-atlas-server/internal/domain"
)

func TestFuzzyMatchKey(t *testing.T) {
	keys := []string{"TP53", "BRCA2", "BRCA1", "EGFR"}

	tests := []struct {
		name    string
		query   string
		want    string
		matched bool
	}{
		{
			name:    "exact match",
			query:   "TP53",
			want:    "TP53",
			matched: true,
		},
		{
			name:    "query is substring of key",
			query:   "brca",
			want:    "BRCA1",
			matched: true,
		},
		{
			name:    "key is substring of query",
			query:   "EGFR mutant",
			want:    "EGFR",
			matched: true,
		},
		{
			name:    "no match",
			query:   "XYZ999",
			matched: false,
		},
		{
			name:    "empty query",
			query:   "   ",
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fuzzyMatchKey(tt.query, keys)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFuzzyMatchKeyDeterministic(t *testing.T) {
	// Map iteration order varies; the match must not.
	keys := []string{"BRCA2", "BRCA1"}
	for i := 0; i < 20; i++ {
		got, ok := fuzzyMatchKey("BRCA", keys)
		require.True(t, ok)
		assert.Equal(t, "BRCA1", got)
	}
}

func TestWellKnownIdentity(t *testing.T) {
	identity := wellKnownIdentity("TP53", domain.DataSourceUniProt)
	require.NotNil(t, identity)

	assert.Equal(t, "P04637", identity.Accession)
	assert.Equal(t, "Cellular tumor antigen p53", identity.ProteinName)
	assert.Equal(t, "TP53", identity.GeneSymbol)
	assert.Equal(t, "Homo sapiens", identity.Organism)
	assert.Equal(t, domain.DataSourceUniProt, identity.DataSource)
	assert.NotEmpty(t, identity.Function)
	assert.Equal(t, identity.Function, identity.Summary)
}

func TestWellKnownIdentityUnknownSymbol(t *testing.T) {
	assert.Nil(t, wellKnownIdentity("NOPE999", domain.DataSourceUniProt))
}

func TestStaticTablesAgreeOnKeys(t *testing.T) {
	// Every accession entry needs a gene ID, name, and description so the
	// canned identity block is always complete.
	for symbol := range wellKnownAccessions {
		assert.Contains(t, wellKnownGeneIDs, symbol)
		assert.Contains(t, wellKnownNames, symbol)
		assert.Contains(t, wellKnownDescriptions, symbol)
		assert.Contains(t, wellKnownStructures, symbol)
	}
}
