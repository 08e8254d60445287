package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/protein-atlas-server/internal/domain"
)

// UniProtClient handles interactions with the UniProt REST API. It is the
// primary identity source.
type UniProtClient struct {
	baseURL    string
	searchURL  string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// uniProtSearchResponse represents the JSON search response from UniProt.
type uniProtSearchResponse struct {
	Results   []uniProtEntry `json:"results"`
	TotalHits int            `json:"totalHits"`
}

// uniProtEntry represents one UniProtKB entry, limited to the fields consumed
// here.
type uniProtEntry struct {
	PrimaryAccession   string `json:"primaryAccession"`
	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
	} `json:"proteinDescription"`
	Genes []struct {
		GeneName struct {
			Value string `json:"value"`
		} `json:"geneName"`
		Synonyms []struct {
			Value string `json:"value"`
		} `json:"synonyms"`
	} `json:"genes"`
	Organism struct {
		ScientificName string `json:"scientificName"`
	} `json:"organism"`
	Sequence struct {
		Value  string `json:"value"`
		Length int    `json:"length"`
	} `json:"sequence"`
	Comments []struct {
		CommentType string `json:"commentType"`
		Texts       []struct {
			Value string `json:"value"`
		} `json:"texts"`
		SubcellularLocations []struct {
			Location struct {
				Value string `json:"value"`
			} `json:"location"`
		} `json:"subcellularLocations"`
	} `json:"comments"`
}

// NewUniProtClient creates a new UniProt API client
func NewUniProtClient(config domain.UniProtConfig, logger *logrus.Logger) *UniProtClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://rest.uniprot.org/uniprotkb"
	}
	if config.SearchURL == "" {
		config.SearchURL = config.BaseURL + "/search"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 5
	}

	return &UniProtClient{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		searchURL: config.SearchURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		breaker:   newBreaker("UniProt", logger),
		logger:    logger,
	}
}

// GetProteinSummary resolves a query to an identity block. Well-known gene
// symbols are answered from the static table without a network call; live
// lookups that fail fall through to the fuzzy table match; a query nothing
// can answer returns ErrNoData.
func (u *UniProtClient) GetProteinSummary(ctx context.Context, query string) (*domain.ProteinIdentity, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(query))
	if cleaned == "" {
		return nil, domain.ErrNoData
	}

	if identity := wellKnownIdentity(cleaned, domain.DataSourceUniProt); identity != nil {
		u.logger.WithField("query", cleaned).Debug("UniProt static table hit")
		return identity, nil
	}

	result, err := u.breaker.Execute(func() (interface{}, error) {
		return u.liveLookup(ctx, cleaned)
	})
	if err == nil {
		return result.(*domain.ProteinIdentity), nil
	}

	if key, ok := fuzzyMatchKey(cleaned, mapKeys(wellKnownAccessions)); ok {
		u.logger.WithFields(logrus.Fields{
			"query":   query,
			"matched": key,
		}).Info("UniProt live lookup failed, using fuzzy table match")
		return wellKnownIdentity(key, domain.DataSourceUniProt), nil
	}

	if errors.Is(err, domain.ErrNoData) {
		return nil, domain.ErrNoData
	}
	return nil, fmt.Errorf("uniprot lookup for %q failed: %w", query, err)
}

// liveLookup performs the live resolution chain: direct accession fetch for
// accession-shaped queries, then the three search approaches of the upstream
// API in order.
func (u *UniProtClient) liveLookup(ctx context.Context, query string) (*domain.ProteinIdentity, error) {
	if domain.IsUniProtAccession(query) {
		entry, err := u.getByAccession(ctx, query)
		if err == nil {
			return u.extract(entry), nil
		}
		u.logger.WithFields(logrus.Fields{
			"accession": query,
			"error":     err.Error(),
		}).Debug("Direct accession lookup failed, falling back to search")
	}

	searches := []string{
		fmt.Sprintf("%s AND organism_id:9606", query),
		fmt.Sprintf("gene:%s AND organism_id:9606", query),
		fmt.Sprintf("protein_name:%s AND organism_id:9606", query),
	}

	var lastErr error
	for _, term := range searches {
		resp, err := u.search(ctx, term)
		if err != nil {
			lastErr = err
			continue
		}
		// TotalHits can be positive while the results page is empty;
		// only a populated results array is usable.
		if len(resp.Results) == 0 {
			continue
		}
		return u.extract(&resp.Results[0]), nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, domain.ErrNoData
}

// search executes one search request against the UniProt search endpoint.
func (u *UniProtClient) search(ctx context.Context, term string) (*uniProtSearchResponse, error) {
	if err := u.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	params := url.Values{
		"query":  {term},
		"format": {"json"},
		"size":   {"5"},
	}
	searchURL := fmt.Sprintf("%s?%s", u.searchURL, params.Encode())

	body, err := u.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	var resp uniProtSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse UniProt search response: %w", err)
	}
	return &resp, nil
}

// getByAccession fetches a full UniProtKB entry.
func (u *UniProtClient) getByAccession(ctx context.Context, accession string) (*uniProtEntry, error) {
	if err := u.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	body, err := u.get(ctx, fmt.Sprintf("%s/%s", u.baseURL, accession))
	if err != nil {
		return nil, err
	}

	var entry uniProtEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse UniProt entry: %w", err)
	}
	if entry.PrimaryAccession == "" {
		return nil, domain.ErrNoData
	}
	return &entry, nil
}

// extract maps a UniProtKB entry to the shared identity block.
func (u *UniProtClient) extract(entry *uniProtEntry) *domain.ProteinIdentity {
	identity := &domain.ProteinIdentity{
		Accession:   entry.PrimaryAccession,
		ProteinName: entry.ProteinDescription.RecommendedName.FullName.Value,
		Organism:    entry.Organism.ScientificName,
		Sequence:    entry.Sequence.Value,
		Length:      entry.Sequence.Length,
		DataSource:  domain.DataSourceUniProt,
	}

	for _, gene := range entry.Genes {
		if gene.GeneName.Value != "" {
			if identity.GeneSymbol == "" {
				identity.GeneSymbol = gene.GeneName.Value
			}
			identity.GeneNames = append(identity.GeneNames, gene.GeneName.Value)
		}
		for _, syn := range gene.Synonyms {
			if syn.Value != "" {
				identity.GeneNames = append(identity.GeneNames, syn.Value)
			}
		}
	}

	for _, comment := range entry.Comments {
		switch comment.CommentType {
		case "FUNCTION":
			if identity.Function == "" && len(comment.Texts) > 0 {
				identity.Function = comment.Texts[0].Value
			}
		case "SUBCELLULAR LOCATION":
			for _, loc := range comment.SubcellularLocations {
				if loc.Location.Value != "" {
					identity.SubcellularLocations = append(identity.SubcellularLocations, loc.Location.Value)
				}
			}
		}
	}

	return identity
}

// get issues a GET request and returns the response body for 2xx statuses.
func (u *UniProtClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "protein-atlas-server/1.0")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("UniProt API returned status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
