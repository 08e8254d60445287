package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/protein-atlas-server/internal/domain"
)

// StructureClient handles interactions with the RCSB PDB search/data APIs
// and the AlphaFold prediction API.
type StructureClient struct {
	pdbSearchURL string
	pdbDataURL   string
	alphaFoldURL string
	httpClient   *http.Client
	// detailCache holds per-PDB-ID entry details; distinct queries often
	// resolve to overlapping entry sets.
	detailCache *lru.Cache[string, *pdbEntryDetails]
	logger      *logrus.Logger
}

// maxPDBDetails caps how many search hits are dereferenced per query.
const maxPDBDetails = 10

// pdbSearchResponse represents the RCSB search envelope.
type pdbSearchResponse struct {
	ResultSet []struct {
		Identifier string `json:"identifier"`
	} `json:"result_set"`
}

// pdbEntryDetails represents the RCSB core entry fields consumed here.
type pdbEntryDetails struct {
	Exptl []struct {
		Method string `json:"method"`
	} `json:"exptl"`
	RcsbEntryInfo struct {
		ResolutionCombined []float64 `json:"resolution_combined"`
	} `json:"rcsb_entry_info"`
	Struct struct {
		Title string `json:"title"`
	} `json:"struct"`
	PdbxStructAssembly struct {
		OligomericDetails string `json:"oligomeric_details"`
		Details           string `json:"details"`
		MethodDetails     string `json:"method_details"`
	} `json:"pdbx_struct_assembly"`
	RcsbStructSymmetry []struct {
		Type            string `json:"type"`
		Symbol          string `json:"symbol"`
		OligomericState string `json:"oligomeric_state"`
	} `json:"rcsb_struct_symmetry"`
	RcsbAssemblyInfo struct {
		PolymerComposition         string `json:"polymer_composition"`
		SelectedPolymerEntityTypes string `json:"selected_polymer_entity_types"`
		PolymerAtomCount           int    `json:"polymer_atom_count"`
		PolymerMonomerCount        int    `json:"polymer_monomer_count"`
	} `json:"rcsb_assembly_info"`
}

// NewStructureClient creates a new structure API client
func NewStructureClient(config domain.StructureConfig, logger *logrus.Logger) (*StructureClient, error) {
	if config.PDBSearchURL == "" {
		config.PDBSearchURL = "https://search.rcsb.org/rcsbsearch/v2/query"
	}
	if config.PDBDataURL == "" {
		config.PDBDataURL = "https://data.rcsb.org/rest/v1/core/entry"
	}
	if config.AlphaFoldURL == "" {
		config.AlphaFoldURL = "https://alphafold.ebi.ac.uk/api"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.DetailCacheSize == 0 {
		config.DetailCacheSize = 256
	}

	cache, err := lru.New[string, *pdbEntryDetails](config.DetailCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create detail cache: %w", err)
	}

	return &StructureClient{
		pdbSearchURL: config.PDBSearchURL,
		pdbDataURL:   strings.TrimRight(config.PDBDataURL, "/"),
		alphaFoldURL: strings.TrimRight(config.AlphaFoldURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		detailCache: cache,
		logger:      logger,
	}, nil
}

// GetStructures returns solved and predicted structures for a protein.
// Well-known gene symbols answer from the static table without network
// calls; live failures fall through to the fuzzy table match; queries with
// no structures anywhere return an empty slice, not an error.
func (s *StructureClient) GetStructures(ctx context.Context, accession, geneSymbol string) ([]domain.StructureEntry, error) {
	symbol := strings.ToUpper(strings.TrimSpace(geneSymbol))

	if ids, ok := wellKnownStructures[symbol]; ok {
		s.logger.WithField("gene_symbol", symbol).Debug("Structure static table hit")
		return s.cannedEntries(symbol, ids, accession), nil
	}

	structures, err := s.liveLookup(ctx, accession, symbol)
	if err == nil && len(structures) > 0 {
		return structures, nil
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"accession":   accession,
			"gene_symbol": symbol,
			"error":       err.Error(),
		}).Warn("Live structure lookup failed")
	}

	if key, ok := fuzzyMatchKey(symbol, mapKeys(wellKnownStructures)); ok {
		return s.cannedEntries(key, wellKnownStructures[key], accession), nil
	}

	return []domain.StructureEntry{}, nil
}

// liveLookup searches the PDB by accession (falling back to gene symbol),
// dereferences entry details, and probes AlphaFold for a predicted model.
// Invalid entries are dropped, never retried.
func (s *StructureClient) liveLookup(ctx context.Context, accession, geneSymbol string) ([]domain.StructureEntry, error) {
	structures := make([]domain.StructureEntry, 0, maxPDBDetails+1)

	ids, err := s.searchPDB(ctx, accession)
	if (err != nil || len(ids) == 0) && geneSymbol != "" {
		ids, err = s.searchPDB(ctx, geneSymbol)
	}
	if err != nil {
		return nil, err
	}

	if len(ids) > maxPDBDetails {
		ids = ids[:maxPDBDetails]
	}
	for _, pdbID := range ids {
		details, detailErr := s.getEntryDetails(ctx, pdbID)
		if detailErr != nil {
			s.logger.WithFields(logrus.Fields{
				"pdb_id": pdbID,
				"error":  detailErr.Error(),
			}).Debug("Failed to fetch PDB entry details")
			continue
		}

		entry, valErr := domain.NewStructureEntry(s.entryFromDetails(pdbID, details))
		if valErr != nil {
			s.logger.WithFields(logrus.Fields{
				"pdb_id": pdbID,
				"error":  valErr.Error(),
			}).Warn("Dropping invalid structure entry")
			continue
		}
		structures = append(structures, entry)
	}

	if accession != "" && !domain.IsPlaceholderAccession(accession) {
		if s.hasAlphaFoldModel(ctx, accession) {
			entry, valErr := domain.NewStructureEntry(alphaFoldEntry(accession))
			if valErr == nil {
				structures = append(structures, entry)
			}
		}
	}

	return structures, nil
}

// searchPDB returns PDB entry IDs matching a UniProt accession or gene name,
// restricted to human entries.
func (s *StructureClient) searchPDB(ctx context.Context, query string) ([]string, error) {
	attribute := "rcsb_gene_name.value"
	if domain.IsUniProtAccession(query) {
		attribute = "rcsb_polymer_entity_container_identifiers.reference_sequence_identifiers.database_accession"
	}

	searchQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"type":             "group",
			"logical_operator": "and",
			"nodes": []interface{}{
				map[string]interface{}{
					"type":    "terminal",
					"service": "text",
					"parameters": map[string]interface{}{
						"attribute": attribute,
						"operator":  "exact_match",
						"value":     query,
					},
				},
				map[string]interface{}{
					"type":    "terminal",
					"service": "text",
					"parameters": map[string]interface{}{
						"attribute": "rcsb_entity_source_organism.taxonomy_lineage.name",
						"operator":  "exact_match",
						"value":     "Homo sapiens",
					},
				},
			},
		},
		"return_type": "entry",
	}

	payload, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal PDB search query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pdbSearchURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute PDB search: %w", err)
	}
	defer resp.Body.Close()

	// RCSB answers an empty result set with 204.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("PDB search returned status %d: %s", resp.StatusCode, string(body))
	}

	var search pdbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to parse PDB search response: %w", err)
	}

	ids := make([]string, 0, len(search.ResultSet))
	for _, result := range search.ResultSet {
		ids = append(ids, result.Identifier)
	}
	return ids, nil
}

// getEntryDetails fetches the core entry record for one PDB ID, answering
// from the LRU cache when possible.
func (s *StructureClient) getEntryDetails(ctx context.Context, pdbID string) (*pdbEntryDetails, error) {
	if details, ok := s.detailCache.Get(pdbID); ok {
		return details, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", s.pdbDataURL, pdbID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PDB entry %s: %w", pdbID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("PDB data API returned status %d for %s: %s", resp.StatusCode, pdbID, string(body))
	}

	var details pdbEntryDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("failed to parse PDB entry %s: %w", pdbID, err)
	}

	s.detailCache.Add(pdbID, &details)
	return &details, nil
}

// hasAlphaFoldModel probes the AlphaFold prediction API for an accession.
func (s *StructureClient) hasAlphaFoldModel(ctx context.Context, accession string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/prediction/%s", s.alphaFoldURL, accession), nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"accession": accession,
			"error":     err.Error(),
		}).Debug("AlphaFold probe failed")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// entryFromDetails shapes one PDB core entry into a structure entry.
func (s *StructureClient) entryFromDetails(pdbID string, details *pdbEntryDetails) domain.StructureEntry {
	method := "Unknown method"
	if len(details.Exptl) > 0 && details.Exptl[0].Method != "" {
		method = details.Exptl[0].Method
	}

	resolution := "N/A"
	if len(details.RcsbEntryInfo.ResolutionCombined) > 0 {
		resolution = fmt.Sprintf("%.1f Å", details.RcsbEntryInfo.ResolutionCombined[0])
	}

	entry := domain.StructureEntry{
		ID:         pdbID,
		Source:     domain.SourcePDB,
		Method:     method,
		Resolution: resolution,
		Title:      details.Struct.Title,
		Assembly: domain.AssemblyInfo{
			OligomericState: strings.TrimSpace(details.PdbxStructAssembly.OligomericDetails),
			Details:         strings.TrimSpace(details.PdbxStructAssembly.Details),
			Method:          strings.TrimSpace(details.PdbxStructAssembly.MethodDetails),
		},
		Polymer: domain.PolymerInfo{
			Composition:  details.RcsbAssemblyInfo.PolymerComposition,
			EntityTypes:  details.RcsbAssemblyInfo.SelectedPolymerEntityTypes,
			AtomCount:    details.RcsbAssemblyInfo.PolymerAtomCount,
			MonomerCount: details.RcsbAssemblyInfo.PolymerMonomerCount,
		},
		ViewerURL: fmt.Sprintf("https://www.rcsb.org/structure/%s", pdbID),
	}
	if len(details.RcsbStructSymmetry) > 0 {
		sym := details.RcsbStructSymmetry[0]
		entry.Symmetry = domain.SymmetryInfo{
			Type:            sym.Type,
			Symbol:          sym.Symbol,
			OligomericState: sym.OligomericState,
		}
	}
	return entry
}

// cannedEntries builds the static fallback entries for a well-known symbol.
func (s *StructureClient) cannedEntries(symbol string, pdbIDs []string, accession string) []domain.StructureEntry {
	entries := make([]domain.StructureEntry, 0, len(pdbIDs)+1)
	for _, pdbID := range pdbIDs {
		entry, err := domain.NewStructureEntry(domain.StructureEntry{
			ID:         pdbID,
			Source:     domain.SourcePDB,
			Method:     "X-ray diffraction",
			Resolution: "N/A",
			Title:      fmt.Sprintf("Structure of %s (%s)", wellKnownNames[symbol], symbol),
			ViewerURL:  fmt.Sprintf("https://www.rcsb.org/structure/%s", pdbID),
		})
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	acc := accession
	if acc == "" || domain.IsPlaceholderAccession(acc) {
		acc = wellKnownAccessions[symbol]
	}
	if acc != "" {
		if entry, err := domain.NewStructureEntry(alphaFoldEntry(acc)); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// alphaFoldEntry shapes the single predicted-model entry for an accession.
func alphaFoldEntry(accession string) domain.StructureEntry {
	return domain.StructureEntry{
		ID:         accession,
		Source:     domain.SourceAlphaFold,
		Method:     "AI Prediction",
		Resolution: "N/A",
		Title:      fmt.Sprintf("AlphaFold predicted structure for %s", accession),
		Assembly:   domain.AssemblyInfo{OligomericState: "Predicted monomer"},
		Symmetry:   domain.SymmetryInfo{Type: "Predicted", OligomericState: "Monomer"},
		Polymer:    domain.PolymerInfo{Composition: "Predicted protein"},
		ViewerURL:  fmt.Sprintf("https://alphafold.ebi.ac.uk/entry/%s", accession),
	}
}
