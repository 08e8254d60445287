package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// StructureSource identifies the database a structure entry came from.
type StructureSource string

const (
	SourcePDB       StructureSource = "pdb"
	SourceAlphaFold StructureSource = "alphafold"
)

// Data source tags for the identity block.
const (
	DataSourceUniProt = "UniProt"
	DataSourceNCBI    = "NCBI"
)

// PlaceholderPrefix marks synthetic accessions produced when only an NCBI
// gene ID could be resolved for a query.
const PlaceholderPrefix = "GENE_"

var (
	pdbIDPattern      = regexp.MustCompile(`^[0-9][A-Za-z0-9]{3}$`)
	uniprotAccPattern = regexp.MustCompile(`^[OPQ][0-9][A-Z0-9]{3}[0-9]$|^[A-NR-Z][0-9]([A-Z][A-Z0-9]{2}[0-9]){1,2}$`)
	looseAccPattern   = regexp.MustCompile(`^[A-Z][0-9][A-Z0-9]{3}[0-9]$`)
)

// IsUniProtAccession reports whether s is shaped like a UniProt accession.
func IsUniProtAccession(s string) bool {
	return uniprotAccPattern.MatchString(s)
}

// IsPlaceholderAccession reports whether an accession is a GENE_ placeholder
// rather than a true cross-referenced identifier.
func IsPlaceholderAccession(acc string) bool {
	return strings.HasPrefix(acc, PlaceholderPrefix)
}

// ProteinIdentity is the identity block shared by both identity adapters.
// Zero values mean "the source did not supply this field"; the reconciler's
// merge fills gaps from the secondary source.
type ProteinIdentity struct {
	Accession            string   `json:"accession"`
	ProteinName          string   `json:"protein_name"`
	GeneSymbol           string   `json:"gene_symbol"`
	GeneNames            []string `json:"gene_names"`
	Organism             string   `json:"organism"`
	Sequence             string   `json:"sequence"`
	Length               int      `json:"length"`
	Function             string   `json:"function"`
	Summary              string   `json:"summary"`
	SubcellularLocations []string `json:"subcellular_location"`
	DataSource           string   `json:"data_source"`
}

// AssemblyInfo describes the biological assembly of a solved structure.
type AssemblyInfo struct {
	OligomericState string `json:"oligomeric_state,omitempty"`
	Details         string `json:"details,omitempty"`
	Method          string `json:"method,omitempty"`
}

// SymmetryInfo describes structure symmetry.
type SymmetryInfo struct {
	Type            string `json:"type,omitempty"`
	Symbol          string `json:"symbol,omitempty"`
	OligomericState string `json:"oligomeric_state,omitempty"`
}

// PolymerInfo describes polymer composition of a structure.
type PolymerInfo struct {
	Composition  string `json:"composition,omitempty"`
	EntityTypes  string `json:"entity_types,omitempty"`
	AtomCount    int    `json:"atom_count,omitempty"`
	MonomerCount int    `json:"monomer_count,omitempty"`
}

// StructureEntry is one experimentally solved or predicted structure.
type StructureEntry struct {
	ID         string          `json:"id"`
	Source     StructureSource `json:"source"`
	Method     string          `json:"method"`
	Resolution string          `json:"resolution"`
	Title      string          `json:"title"`
	Assembly   AssemblyInfo    `json:"assembly"`
	Symmetry   SymmetryInfo    `json:"symmetry"`
	Polymer    PolymerInfo     `json:"polymer"`
	ViewerURL  string          `json:"viewer_url"`
}

// NewStructureEntry validates and normalizes a structure entry. A missing ID
// is a hard failure. A missing source is inferred from the ID's shape: a
// 4-character identifier with a leading digit is a PDB entry, a
// UniProt-accession-shaped identifier is an AlphaFold model. Anything else
// fails validation and the entry is dropped by callers.
func NewStructureEntry(e StructureEntry) (StructureEntry, error) {
	if e.ID == "" {
		return StructureEntry{}, NewValidationError("id", "structure entry is missing an id", e.ID)
	}

	source := StructureSource(strings.ToLower(string(e.Source)))
	if source == "" {
		switch {
		case pdbIDPattern.MatchString(e.ID):
			source = SourcePDB
		case looseAccPattern.MatchString(e.ID):
			source = SourceAlphaFold
		default:
			return StructureEntry{}, NewValidationError("source", fmt.Sprintf("cannot determine source for structure id %q", e.ID), e.ID)
		}
	}

	if source != SourcePDB && source != SourceAlphaFold {
		return StructureEntry{}, NewValidationError("source", fmt.Sprintf("invalid structure source %q", source), string(source))
	}

	e.Source = source
	return e, nil
}

// DownloadURLs returns candidate URLs for the raw structure file, most
// preferred first. PDB entries have a single download; AlphaFold models are
// tried in descending model version order.
func (e StructureEntry) DownloadURLs() []string {
	if e.Source == SourcePDB {
		return []string{fmt.Sprintf("https://files.rcsb.org/download/%s.pdb", e.ID)}
	}
	urls := make([]string, 0, 3)
	for _, version := range []int{4, 3, 2} {
		urls = append(urls, fmt.Sprintf("https://alphafold.ebi.ac.uk/files/AF-%s-F1-model_v%d.pdb", e.ID, version))
	}
	return urls
}

// EvidenceScore is one STRING evidence channel with its sub-score.
type EvidenceScore struct {
	Type  string `json:"type"`
	Score int    `json:"score"`
}

// InteractionEntry is one protein-protein interaction edge. Scores use the
// 0-1000 integer scale of the upstream network.
type InteractionEntry struct {
	SourceID   string          `json:"source"`
	SourceName string          `json:"source_name"`
	TargetID   string          `json:"target"`
	TargetName string          `json:"target_name"`
	Score      int             `json:"score"`
	Evidence   []EvidenceScore `json:"evidence"`
}

// DiseaseAssociation links a protein to a disease with a 0-1 relevance score.
type DiseaseAssociation struct {
	Name        string  `json:"disease_name"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// DrugAssociation links a protein to a drug that targets it.
type DrugAssociation struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Mechanism string   `json:"mechanism"`
	Groups    []string `json:"groups"`
}

// DiseaseDrugSet holds the two independent association lists.
type DiseaseDrugSet struct {
	Diseases []DiseaseAssociation `json:"diseases"`
	Drugs    []DrugAssociation    `json:"drugs"`
}

// ProteinRecord is the unified, immutable output of one reconciled query.
// Section slices are empty when the backing source failed or had no data.
type ProteinRecord struct {
	Query        string             `json:"query"`
	Identity     ProteinIdentity    `json:"basic_info"`
	Structures   []StructureEntry   `json:"structures"`
	Interactions []InteractionEntry `json:"interactions"`
	DiseaseDrug  DiseaseDrugSet     `json:"disease_drug"`
	DataSource   string             `json:"data_source"`
}

// ChatTurn is one prior message in a chat exchange.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
