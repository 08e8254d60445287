package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStructureEntry(t *testing.T) {
	tests := []struct {
		name       string
		entry      StructureEntry
		wantSource StructureSource
		wantErr    bool
	}{
		{
			name:       "explicit source kept",
			entry:      StructureEntry{ID: "1TUP", Source: SourcePDB},
			wantSource: SourcePDB,
		},
		{
			name:       "source normalized to lowercase",
			entry:      StructureEntry{ID: "1TUP", Source: "PDB"},
			wantSource: SourcePDB,
		},
		{
			name:       "pdb id shape inferred",
			entry:      StructureEntry{ID: "5XYZ"},
			wantSource: SourcePDB,
		},
		{
			name:       "accession shape inferred as alphafold",
			entry:      StructureEntry{ID: "P12345"},
			wantSource: SourceAlphaFold,
		},
		{
			name:    "ambiguous id rejected",
			entry:   StructureEntry{ID: "ABCDE"},
			wantErr: true,
		},
		{
			name:    "missing id rejected",
			entry:   StructureEntry{},
			wantErr: true,
		},
		{
			name:    "unknown source rejected",
			entry:   StructureEntry{ID: "1TUP", Source: "cryoem"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStructureEntry(tt.entry)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}
}

func TestStructureEntryDownloadURLs(t *testing.T) {
	pdb := StructureEntry{ID: "1TUP", Source: SourcePDB}
	urls := pdb.DownloadURLs()
	require.Len(t, urls, 1)
	assert.Equal(t, "https://files.rcsb.org/download/1TUP.pdb", urls[0])

	af := StructureEntry{ID: "P04637", Source: SourceAlphaFold}
	urls = af.DownloadURLs()
	require.Len(t, urls, 3)
	assert.Equal(t, "https://alphafold.ebi.ac.uk/files/AF-P04637-F1-model_v4.pdb", urls[0])
	assert.Contains(t, urls[1], "model_v3")
	assert.Contains(t, urls[2], "model_v2")
}

func TestIsUniProtAccession(t *testing.T) {
	assert.True(t, IsUniProtAccession("P04637"))
	assert.True(t, IsUniProtAccession("Q9H999"))
	assert.True(t, IsUniProtAccession("A0A024R161"))
	assert.False(t, IsUniProtAccession("1TUP"))
	assert.False(t, IsUniProtAccession("TP53"))
	assert.False(t, IsUniProtAccession("GENE_7157"))
	assert.False(t, IsUniProtAccession(""))
}

func TestIsPlaceholderAccession(t *testing.T) {
	assert.True(t, IsPlaceholderAccession("GENE_7157"))
	assert.False(t, IsPlaceholderAccession("P04637"))
	assert.False(t, IsPlaceholderAccession(""))
}
