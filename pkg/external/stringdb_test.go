package external

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protein-atlas-server/internal/domain"
)

func newTestStringDBClient(serverURL string) *StringDBClient {
	return NewStringDBClient(domain.StringConfig{
		BaseURL: serverURL,
		Timeout: 2 * time.Second,
	}, testLogger())
}

func TestStringDBClientStaticHitSkipsNetwork(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestStringDBClient(server.URL)

	interactions, err := client.GetInteractions(context.Background(), "TP53", "P04637")
	require.NoError(t, err)
	require.Len(t, interactions, 3)

	assert.Equal(t, "MDM2", interactions[0].TargetName)
	assert.Equal(t, 980, interactions[0].Score)
	assert.Len(t, interactions[0].Evidence, 7)
	assert.Greater(t, interactions[0].Score, interactions[1].Score)
	assert.Equal(t, int64(0), atomic.LoadInt64(&requests))
}

func TestStringDBClientLiveLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/get_string_ids"):
			assert.Equal(t, "XQZV1", r.Form.Get("identifiers"))
			io.WriteString(w, `[{"stringId": "9606.ENSP00000999999", "preferredName": "XQZV1"}]`)
		case strings.HasSuffix(r.URL.Path, "/interactions"):
			assert.Equal(t, "9606.ENSP00000999999", r.Form.Get("identifiers"))
			assert.Equal(t, "400", r.Form.Get("required_score"))
			io.WriteString(w, `[{
				"stringId_A": "9606.ENSP00000999999",
				"stringId_B": "9606.ENSP00000888888",
				"preferredName_A": "XQZV1",
				"preferredName_B": "PARTNER1",
				"score": 0.95,
				"experimental": 0.62,
				"database": 0.9,
				"textmining": 0.31
			}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestStringDBClient(server.URL)

	interactions, err := client.GetInteractions(context.Background(), "XQZV1", "Q12345")
	require.NoError(t, err)
	require.Len(t, interactions, 1)

	edge := interactions[0]
	assert.Equal(t, "XQZV1", edge.SourceName)
	assert.Equal(t, "PARTNER1", edge.TargetName)
	assert.Equal(t, 950, edge.Score)

	byType := map[string]int{}
	for _, ev := range edge.Evidence {
		byType[ev.Type] = ev.Score
	}
	assert.Equal(t, 620, byType["experimental"])
	assert.Equal(t, 900, byType["database"])
	assert.Equal(t, 310, byType["textmining"])
	assert.Equal(t, 0, byType["fusion"])
}

func TestStringDBClientUnknownIdentifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[]`)
	}))
	defer server.Close()

	client := newTestStringDBClient(server.URL)

	interactions, err := client.GetInteractions(context.Background(), "XQZV1", "")
	require.NoError(t, err)
	assert.Empty(t, interactions)
	assert.NotNil(t, interactions)
}

func TestStringDBClientFuzzyFallbackOnLiveFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestStringDBClient(server.URL)

	interactions, err := client.GetInteractions(context.Background(), "EGF", "")
	require.NoError(t, err)
	require.NotEmpty(t, interactions)
	assert.Equal(t, "EGFR", interactions[0].SourceName)
	assert.Equal(t, "GRB2", interactions[0].TargetName)
}

func TestScaleScore(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.4, 400},
		{0.95, 950},
		{1.0, 1000},
		{999, 999},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scaleScore(tt.in))
	}
}
