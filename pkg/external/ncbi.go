package external

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/protein-atlas-server/internal/domain"
)

// NCBIClient handles interactions with the NCBI E-utilities for gene and
// protein information. It is the secondary identity source and also provides
// the gene-symbol-to-accession mapping used to resolve placeholder
// accessions.
type NCBIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

var (
	ncbiAccessionPattern = regexp.MustCompile(`^[A-Z][0-9][A-Z0-9]{3}[0-9]$`)
	refSeqPattern        = regexp.MustCompile(`^[A-Z]{2,3}_\d+(\.\d+)?$`)
	fastaGenePattern     = regexp.MustCompile(`\[gene=(\w+)\]`)
	fastaOrganismPattern = regexp.MustCompile(`\[([^=\[\]]+)\]`)
)

// eSearchResponse represents the NCBI esearch JSON envelope. Counts arrive as
// strings.
type eSearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (r *eSearchResponse) count() int {
	n, _ := strconv.Atoi(r.ESearchResult.Count)
	return n
}

// eSummaryResponse represents the NCBI esummary JSON envelope. Document
// summaries are keyed by UID, so they are decoded lazily per requested id.
type eSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

// geneSummary holds the gene document summary fields consumed here.
type geneSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
	Organism    struct {
		ScientificName string `json:"scientificname"`
	} `json:"organism"`
}

// proteinSummary holds the protein document summary fields consumed here.
type proteinSummary struct {
	Title            string `json:"title"`
	AccessionVersion string `json:"accessionversion"`
	Comment          string `json:"comment"`
}

// geneDbtag matches the UniProt cross-reference element inside the NCBI gene
// XML record.
type geneDbtag struct {
	DB  string `xml:"Dbtag_db"`
	Str string `xml:"Dbtag_tag>Object-id>Object-id_str"`
}

// NewNCBIClient creates a new NCBI E-utilities client
func NewNCBIClient(config domain.NCBIConfig, logger *logrus.Logger) *NCBIClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 3 // NCBI etiquette without an API key
	}

	return &NCBIClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		breaker:   newBreaker("NCBI", logger),
		logger:    logger,
	}
}

// GetProteinSummary resolves a query via the NCBI gene and protein
// databases. Records resolved through the gene database carry a GENE_
// placeholder accession until the reconciler maps them to a true accession.
func (n *NCBIClient) GetProteinSummary(ctx context.Context, query string) (*domain.ProteinIdentity, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(query))
	if cleaned == "" {
		return nil, domain.ErrNoData
	}

	if _, ok := wellKnownGeneIDs[cleaned]; ok {
		n.logger.WithField("query", cleaned).Debug("NCBI static table hit")
		return wellKnownIdentity(cleaned, domain.DataSourceNCBI), nil
	}

	result, err := n.breaker.Execute(func() (interface{}, error) {
		return n.liveLookup(ctx, cleaned)
	})
	if err == nil {
		return n.formatIdentity(result.(*domain.ProteinIdentity)), nil
	}

	if key, ok := fuzzyMatchKey(cleaned, mapKeys(wellKnownGeneIDs)); ok {
		n.logger.WithFields(logrus.Fields{
			"query":   query,
			"matched": key,
		}).Info("NCBI live lookup failed, using fuzzy table match")
		return wellKnownIdentity(key, domain.DataSourceNCBI), nil
	}

	if errors.Is(err, domain.ErrNoData) {
		return nil, domain.ErrNoData
	}
	return nil, fmt.Errorf("ncbi lookup for %q failed: %w", query, err)
}

// MapGeneToAccession translates a gene symbol into a UniProt accession via
// the static table or the gene database's cross-reference list.
func (n *NCBIClient) MapGeneToAccession(ctx context.Context, geneSymbol string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(geneSymbol))
	if acc, ok := wellKnownAccessions[symbol]; ok {
		return acc, nil
	}

	search, err := n.esearch(ctx, "gene", fmt.Sprintf("%s[Gene Name] AND Homo sapiens[Organism]", symbol), 1)
	if err != nil {
		return "", err
	}
	if len(search.ESearchResult.IDList) == 0 {
		return "", domain.ErrNoData
	}
	geneID := search.ESearchResult.IDList[0]

	params := url.Values{
		"db":      {"gene"},
		"id":      {geneID},
		"retmode": {"xml"},
	}
	body, err := n.get(ctx, fmt.Sprintf("%s/efetch.fcgi?%s", n.baseURL, n.withKey(params).Encode()))
	if err != nil {
		return "", err
	}

	if acc, ok := findUniProtCrossRef(body); ok {
		return acc, nil
	}
	return "", domain.ErrNoData
}

// liveLookup resolves a query against the live E-utilities: direct accession
// lookups first, then the gene database, then the protein database.
func (n *NCBIClient) liveLookup(ctx context.Context, query string) (*domain.ProteinIdentity, error) {
	if ncbiAccessionPattern.MatchString(query) || refSeqPattern.MatchString(query) {
		if identity, err := n.getProteinByAccession(ctx, query); err == nil {
			return identity, nil
		}
	}

	geneSearch, err := n.esearch(ctx, "gene", fmt.Sprintf("%s[Gene Name] AND Human[Organism]", query), 5)
	if err == nil && geneSearch.count() > 0 && len(geneSearch.ESearchResult.IDList) > 0 {
		identity, geneErr := n.getProteinByGeneID(ctx, geneSearch.ESearchResult.IDList[0])
		if geneErr == nil {
			return identity, nil
		}
		n.logger.WithFields(logrus.Fields{
			"gene_id": geneSearch.ESearchResult.IDList[0],
			"error":   geneErr.Error(),
		}).Debug("NCBI gene lookup failed, trying protein database")
	}

	proteinSearch, err2 := n.esearch(ctx, "protein", fmt.Sprintf("%s AND Human[Organism]", query), 5)
	if err2 == nil && proteinSearch.count() > 0 && len(proteinSearch.ESearchResult.IDList) > 0 {
		identity, protErr := n.getProteinByID(ctx, proteinSearch.ESearchResult.IDList[0])
		if protErr == nil {
			return identity, nil
		}
	}

	if err != nil {
		return nil, err
	}
	if err2 != nil {
		return nil, err2
	}
	return nil, domain.ErrNoData
}

// getProteinByGeneID builds an identity block from a gene document summary,
// best-effort enriched with the RefSeq protein sequence. The accession stays
// a GENE_ placeholder; only the reconciler's mapping step replaces it.
func (n *NCBIClient) getProteinByGeneID(ctx context.Context, geneID string) (*domain.ProteinIdentity, error) {
	var gene geneSummary
	if err := n.esummary(ctx, "gene", geneID, &gene); err != nil {
		return nil, err
	}

	proteinName := strings.TrimSpace(strings.SplitN(gene.Description, "[", 2)[0])
	sequence := ""

	if gene.Name != "" {
		search, err := n.esearch(ctx, "protein", fmt.Sprintf("%s[Gene Name] AND refseq[Filter]", gene.Name), 1)
		if err == nil && len(search.ESearchResult.IDList) > 0 {
			if header, seq, fetchErr := n.fetchFASTA(ctx, search.ESearchResult.IDList[0]); fetchErr == nil {
				if name := strings.TrimSpace(strings.SplitN(header, "[", 2)[0]); name != "" {
					proteinName = name
				}
				sequence = seq
			}
		}
	}

	function := gene.Summary
	if function == "" {
		function = fmt.Sprintf("%s is a protein-coding gene.", gene.Description)
	}

	return &domain.ProteinIdentity{
		Accession:   domain.PlaceholderPrefix + geneID,
		ProteinName: proteinName,
		GeneSymbol:  gene.Name,
		GeneNames:   []string{gene.Name},
		Organism:    gene.Organism.ScientificName,
		Sequence:    sequence,
		Length:      len(sequence),
		Function:    function,
		Summary:     gene.Description,
		DataSource:  domain.DataSourceNCBI,
	}, nil
}

// getProteinByID builds an identity block from a protein document summary
// and its FASTA record.
func (n *NCBIClient) getProteinByID(ctx context.Context, proteinID string) (*domain.ProteinIdentity, error) {
	var protein proteinSummary
	if err := n.esummary(ctx, "protein", proteinID, &protein); err != nil {
		return nil, err
	}

	header, sequence, err := n.fetchFASTA(ctx, proteinID)
	if err != nil {
		return nil, err
	}

	geneSymbol := ""
	if m := fastaGenePattern.FindStringSubmatch(header); m != nil {
		geneSymbol = m[1]
	}
	organism := ""
	if m := fastaOrganismPattern.FindStringSubmatch(header); m != nil {
		organism = m[1]
	}

	proteinName := strings.TrimSpace(strings.SplitN(protein.Title, "[", 2)[0])
	accession := protein.AccessionVersion
	if accession == "" {
		accession = proteinID
	}

	identity := &domain.ProteinIdentity{
		Accession:   accession,
		ProteinName: proteinName,
		GeneSymbol:  geneSymbol,
		Organism:    organism,
		Sequence:    sequence,
		Length:      len(sequence),
		Function:    protein.Comment,
		Summary:     proteinName,
		DataSource:  domain.DataSourceNCBI,
	}
	if geneSymbol != "" {
		identity.GeneNames = []string{geneSymbol}
	}
	return identity, nil
}

// getProteinByAccession resolves an accession-shaped query through the
// protein database.
func (n *NCBIClient) getProteinByAccession(ctx context.Context, accession string) (*domain.ProteinIdentity, error) {
	search, err := n.esearch(ctx, "protein", fmt.Sprintf("%s[Accession]", accession), 1)
	if err != nil {
		return nil, err
	}
	if len(search.ESearchResult.IDList) == 0 {
		return nil, domain.ErrNoData
	}
	return n.getProteinByID(ctx, search.ESearchResult.IDList[0])
}

// formatIdentity fills gaps the live sources leave: a synthesized summary
// sentence when none was supplied, and the canned function description for
// well-known genes.
func (n *NCBIClient) formatIdentity(identity *domain.ProteinIdentity) *domain.ProteinIdentity {
	if identity.Summary == "" || identity.Summary == identity.ProteinName {
		summary := identity.ProteinName
		if identity.GeneSymbol != "" {
			summary += fmt.Sprintf(" (%s)", identity.GeneSymbol)
		}
		if identity.Organism != "" {
			summary += fmt.Sprintf(" is a protein found in %s.", identity.Organism)
		} else {
			summary += " is a protein."
		}
		if identity.Function != "" {
			summary += " " + identity.Function
		}
		identity.Summary = strings.TrimSpace(summary)
	}

	if identity.Function == "" {
		if desc, ok := wellKnownDescriptions[strings.ToUpper(identity.GeneSymbol)]; ok {
			identity.Function = desc
		}
	}

	return identity
}

// esearch runs an esearch query against one E-utilities database.
func (n *NCBIClient) esearch(ctx context.Context, db, term string, retmax int) (*eSearchResponse, error) {
	params := url.Values{
		"db":      {db},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(retmax)},
	}
	body, err := n.get(ctx, fmt.Sprintf("%s/esearch.fcgi?%s", n.baseURL, n.withKey(params).Encode()))
	if err != nil {
		return nil, err
	}

	var resp eSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse esearch response: %w", err)
	}
	return &resp, nil
}

// esummary fetches one document summary and decodes it into out.
func (n *NCBIClient) esummary(ctx context.Context, db, id string, out interface{}) error {
	params := url.Values{
		"db":      {db},
		"id":      {id},
		"retmode": {"json"},
	}
	body, err := n.get(ctx, fmt.Sprintf("%s/esummary.fcgi?%s", n.baseURL, n.withKey(params).Encode()))
	if err != nil {
		return err
	}

	var resp eSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse esummary response: %w", err)
	}

	raw, ok := resp.Result[id]
	if !ok {
		return domain.ErrNoData
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse document summary for id %s: %w", id, err)
	}
	return nil
}

// fetchFASTA fetches a protein FASTA record and returns its header line and
// joined sequence.
func (n *NCBIClient) fetchFASTA(ctx context.Context, proteinID string) (string, string, error) {
	params := url.Values{
		"db":      {"protein"},
		"id":      {proteinID},
		"rettype": {"fasta"},
		"retmode": {"text"},
	}
	body, err := n.get(ctx, fmt.Sprintf("%s/efetch.fcgi?%s", n.baseURL, n.withKey(params).Encode()))
	if err != nil {
		return "", "", err
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], ">") {
		return "", "", fmt.Errorf("malformed FASTA response for protein id %s", proteinID)
	}
	return strings.TrimPrefix(lines[0], ">"), strings.Join(lines[1:], ""), nil
}

// findUniProtCrossRef scans a gene XML record for a UniProt Dbtag entry.
func findUniProtCrossRef(body []byte) (string, bool) {
	dec := xml.NewDecoder(strings.NewReader(string(body)))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Dbtag" {
			continue
		}
		var tag geneDbtag
		if err := dec.DecodeElement(&tag, &se); err != nil {
			continue
		}
		if strings.EqualFold(tag.DB, "UniProt") && tag.Str != "" {
			return tag.Str, true
		}
	}
}

// withKey attaches the optional API key to a parameter set.
func (n *NCBIClient) withKey(params url.Values) url.Values {
	if n.apiKey != "" {
		params.Set("api_key", n.apiKey)
	}
	return params
}

// get issues a rate-limited GET request and returns the body for 2xx
// statuses.
func (n *NCBIClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := n.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "protein-atlas-server/1.0")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("NCBI API returned status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
