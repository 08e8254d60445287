package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/protein-atlas-server/internal/domain"
)

// DiseaseDrugClient resolves disease and drug associations for a gene. The
// static tables stand in for the DisGeNET and DrugBank datasets; a live
// DisGeNET-style endpoint is still consulted for diseases of unknown genes.
type DiseaseDrugClient struct {
	disgenetURL string
	httpClient  *http.Client
	logger      *logrus.Logger
}

// disgenetAssociation represents one gene-disease association result.
type disgenetAssociation struct {
	DiseaseName string  `json:"disease_name"`
	DiseaseType string  `json:"disease_type"`
	Score       float64 `json:"score"`
}

// NewDiseaseDrugClient creates a new disease/drug association client
func NewDiseaseDrugClient(config domain.DiseaseDrugConfig, logger *logrus.Logger) *DiseaseDrugClient {
	if config.DisGeNETURL == "" {
		config.DisGeNETURL = "https://www.disgenet.org/api"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &DiseaseDrugClient{
		disgenetURL: strings.TrimRight(config.DisGeNETURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// GetAssociations returns the combined disease and drug associations for a
// gene. Both lists degrade independently; a gene with no associations
// anywhere yields empty lists, not an error.
func (d *DiseaseDrugClient) GetAssociations(ctx context.Context, geneSymbol, accession string) (*domain.DiseaseDrugSet, error) {
	return &domain.DiseaseDrugSet{
		Diseases: d.diseaseAssociations(ctx, geneSymbol),
		Drugs:    d.drugAssociations(geneSymbol),
	}, nil
}

// diseaseAssociations resolves diseases: static table, then the live
// endpoint, then the fuzzy table match, then empty.
func (d *DiseaseDrugClient) diseaseAssociations(ctx context.Context, geneSymbol string) []domain.DiseaseAssociation {
	symbol := strings.ToUpper(strings.TrimSpace(geneSymbol))

	if diseases, ok := wellKnownDiseases[symbol]; ok {
		d.logger.WithField("gene_symbol", symbol).Debug("Disease static table hit")
		return diseases
	}

	diseases, err := d.liveDiseases(ctx, geneSymbol)
	if err == nil && diseases != nil {
		return diseases
	}
	if err != nil {
		d.logger.WithFields(logrus.Fields{
			"gene_symbol": geneSymbol,
			"error":       err.Error(),
		}).Warn("Live disease lookup failed")
	}

	if key, ok := fuzzyMatchKey(symbol, mapKeys(wellKnownDiseases)); ok {
		d.logger.WithFields(logrus.Fields{
			"gene_symbol": geneSymbol,
			"matched":     key,
		}).Info("Using disease data for similar gene")
		return wellKnownDiseases[key]
	}

	return []domain.DiseaseAssociation{}
}

// drugAssociations resolves drugs from the static table with the fuzzy
// fallback. There is no live drug endpoint; the table stands in for
// DrugBank.
func (d *DiseaseDrugClient) drugAssociations(geneSymbol string) []domain.DrugAssociation {
	symbol := strings.ToUpper(strings.TrimSpace(geneSymbol))

	if drugs, ok := wellKnownDrugs[symbol]; ok {
		return drugs
	}

	if key, ok := fuzzyMatchKey(symbol, mapKeys(wellKnownDrugs)); ok {
		d.logger.WithFields(logrus.Fields{
			"gene_symbol": geneSymbol,
			"matched":     key,
		}).Info("Using drug data for similar gene")
		return wellKnownDrugs[key]
	}

	return []domain.DrugAssociation{}
}

// liveDiseases queries the gene-disease association endpoint. A nil slice
// with a nil error never occurs; misses return an error so callers fall
// through to the fuzzy match.
func (d *DiseaseDrugClient) liveDiseases(ctx context.Context, geneSymbol string) ([]domain.DiseaseAssociation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/gda/gene/%s", d.disgenetURL, geneSymbol), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("disease API returned status %d: %s", resp.StatusCode, string(body))
	}

	var raw []disgenetAssociation
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse disease response: %w", err)
	}

	diseases := make([]domain.DiseaseAssociation, 0, len(raw))
	for _, assoc := range raw {
		name := assoc.DiseaseName
		if name == "" {
			name = "Unknown"
		}
		description := assoc.DiseaseType
		if description == "" {
			description = "No description available"
		}
		score := assoc.Score
		if score == 0 {
			score = 0.5
		}
		diseases = append(diseases, domain.DiseaseAssociation{
			Name:        name,
			Description: description,
			Score:       score,
		})
	}
	return diseases, nil
}
