package external

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protein-atlas-server/internal/domain"
)

func newTestDiseaseDrugClient(serverURL string) *DiseaseDrugClient {
	return NewDiseaseDrugClient(domain.DiseaseDrugConfig{
		DisGeNETURL: serverURL,
		Timeout:     2 * time.Second,
	}, testLogger())
}

func TestDiseaseDrugClientStaticHitSkipsNetwork(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestDiseaseDrugClient(server.URL)

	set, err := client.GetAssociations(context.Background(), "TP53", "P04637")
	require.NoError(t, err)
	require.NotNil(t, set)

	require.Len(t, set.Diseases, 3)
	assert.Equal(t, "Li-Fraumeni syndrome", set.Diseases[0].Name)
	assert.InDelta(t, 0.9, set.Diseases[0].Score, 0.001)

	require.Len(t, set.Drugs, 2)
	assert.Equal(t, "APR-246", set.Drugs[0].Name)
	assert.Equal(t, "p53 reactivator", set.Drugs[0].Mechanism)

	assert.Equal(t, int64(0), atomic.LoadInt64(&requests))
}

func TestDiseaseDrugClientLiveDiseasesWithDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gda/gene/XQZV1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"disease_name": "Obscure syndrome", "disease_type": "disease", "score": 0.72},
			{"disease_name": "", "disease_type": "", "score": 0}
		]`)
	}))
	defer server.Close()

	client := newTestDiseaseDrugClient(server.URL)

	set, err := client.GetAssociations(context.Background(), "XQZV1", "")
	require.NoError(t, err)
	require.Len(t, set.Diseases, 2)

	assert.Equal(t, "Obscure syndrome", set.Diseases[0].Name)
	assert.InDelta(t, 0.72, set.Diseases[0].Score, 0.001)

	// Missing fields get placeholders, not zero values.
	assert.Equal(t, "Unknown", set.Diseases[1].Name)
	assert.Equal(t, "No description available", set.Diseases[1].Description)
	assert.InDelta(t, 0.5, set.Diseases[1].Score, 0.001)

	assert.Empty(t, set.Drugs)
	assert.NotNil(t, set.Drugs)
}

func TestDiseaseDrugClientDegradesWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestDiseaseDrugClient(server.URL)

	set, err := client.GetAssociations(context.Background(), "XQZV1", "")
	require.NoError(t, err, "association lookups must never surface errors")
	assert.Empty(t, set.Diseases)
	assert.Empty(t, set.Drugs)
}

func TestDiseaseDrugClientFuzzyFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestDiseaseDrugClient(server.URL)

	set, err := client.GetAssociations(context.Background(), "BRCA", "")
	require.NoError(t, err)
	require.NotEmpty(t, set.Diseases)
	assert.Equal(t, "Hereditary breast and ovarian cancer syndrome", set.Diseases[0].Name)
	require.NotEmpty(t, set.Drugs)
	assert.Equal(t, "Olaparib", set.Drugs[0].Name)
}
