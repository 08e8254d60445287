package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protein-atlas-server/internal/domain"
	"github.com/protein-atlas-server/internal/history"
	"github.com/protein-atlas-server/internal/service"
)

type fakeIdentity struct{}

func (fakeIdentity) GetProteinSummary(ctx context.Context, query string) (*domain.ProteinIdentity, error) {
	if query != "TP53" {
		return nil, domain.ErrNoData
	}
	return &domain.ProteinIdentity{
		Accession:   "P04637",
		ProteinName: "Cellular tumor antigen p53",
		GeneSymbol:  "TP53",
		Function:    "Acts as a tumor suppressor.",
		Summary:     "TP53 encodes the p53 tumor suppressor.",
		DataSource:  domain.DataSourceUniProt,
	}, nil
}

type fakeMapper struct{}

func (fakeMapper) MapGeneToAccession(ctx context.Context, geneSymbol string) (string, error) {
	return "P04637", nil
}

type fakeStructures struct{}

func (fakeStructures) GetStructures(ctx context.Context, accession, geneSymbol string) ([]domain.StructureEntry, error) {
	return []domain.StructureEntry{{ID: "1TUP", Source: domain.SourcePDB, Method: "X-ray diffraction"}}, nil
}

type fakeInteractions struct{}

func (fakeInteractions) GetInteractions(ctx context.Context, geneSymbol, accession string) ([]domain.InteractionEntry, error) {
	return []domain.InteractionEntry{{TargetName: "MDM2", Score: 980}}, nil
}

type fakeDiseaseDrug struct{}

func (fakeDiseaseDrug) GetAssociations(ctx context.Context, geneSymbol, accession string) (*domain.DiseaseDrugSet, error) {
	return &domain.DiseaseDrugSet{
		Diseases: []domain.DiseaseAssociation{{Name: "Li-Fraumeni syndrome", Score: 0.9}},
		Drugs:    []domain.DrugAssociation{{Name: "APR-246", Mechanism: "p53 reactivator"}},
	}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reconciler := service.NewReconciler(
		fakeIdentity{},
		fakeIdentity{},
		fakeMapper{},
		fakeStructures{},
		fakeInteractions{},
		fakeDiseaseDrug{},
		service.NewQueryCache(),
		logger,
	)

	cfg := &domain.Config{
		Logging: domain.LoggingConfig{Level: "error"},
	}

	return NewServer(cfg, reconciler, service.NewChatFormatter(), store, logger)
}

func doRequest(t *testing.T, server *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGetProteinEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/protein/TP53", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var record domain.ProteinRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))

	assert.Equal(t, "TP53", record.Query)
	assert.Equal(t, "P04637", record.Identity.Accession)
	assert.Equal(t, domain.DataSourceUniProt, record.DataSource)
	require.Len(t, record.Structures, 1)
	require.Len(t, record.Interactions, 1)
}

func TestGetProteinNotFound(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/protein/UNKNOWNGENE123", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrCodeNotFound)
	assert.Contains(t, rec.Body.String(), "UNKNOWNGENE123")
}

func TestChatEndpoint(t *testing.T) {
	server := newTestServer(t)

	body, _ := json.Marshal(map[string]interface{}{
		"query":    "TP53",
		"question": "What does this protein do?",
	})
	rec := doRequest(t, server, http.MethodPost, "/api/v1/chat", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Answer, "Acts as a tumor suppressor.")
	assert.Contains(t, resp.Answer, "This information was retrieved from UniProt.")
}

func TestChatEndpointRejectsMissingFields(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/chat", []byte(`{"query": "TP53"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrCodeInvalidInput)
}

func TestHistoryLifecycle(t *testing.T) {
	server := newTestServer(t)

	// A successful search is archived.
	rec := doRequest(t, server, http.MethodGet, "/api/v1/protein/TP53", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Total   int64                   `json:"total"`
		Results []*history.SearchRecord `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, int64(1), list.Total)
	require.Len(t, list.Results, 1)
	assert.Equal(t, "TP53", list.Results[0].Query)

	id := list.Results[0].ID

	rec = doRequest(t, server, http.MethodGet, "/api/v1/history/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "P04637")

	rec = doRequest(t, server, http.MethodDelete, "/api/v1/history/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/v1/history/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodOptions, "/api/v1/protein/TP53", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
