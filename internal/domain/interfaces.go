package domain

import (
	"context"
)

// IdentityClient resolves a free-text query (gene symbol, protein name, or
// accession-like token) to an identity block. A nil record with a nil error
// never occurs: no-data is reported as ErrNoData, transport failures as any
// other error.
type IdentityClient interface {
	GetProteinSummary(ctx context.Context, query string) (*ProteinIdentity, error)
}

// AccessionMapper translates a gene symbol into a true UniProt accession.
// Used to replace GENE_ placeholder accessions after reconciliation.
type AccessionMapper interface {
	MapGeneToAccession(ctx context.Context, geneSymbol string) (string, error)
}

// StructureClient returns solved and predicted structures for a protein.
// An empty slice with a nil error means the sources had no structures.
type StructureClient interface {
	GetStructures(ctx context.Context, accession, geneSymbol string) ([]StructureEntry, error)
}

// InteractionClient returns interaction partners for a protein.
type InteractionClient interface {
	GetInteractions(ctx context.Context, geneSymbol, accession string) ([]InteractionEntry, error)
}

// DiseaseDrugClient returns disease and drug associations for a gene.
type DiseaseDrugClient interface {
	GetAssociations(ctx context.Context, geneSymbol, accession string) (*DiseaseDrugSet, error)
}

// RecordCache is the process-lifetime query cache. Keys are raw,
// case-sensitive query strings; values are never evicted or invalidated.
type RecordCache interface {
	Get(key string) (*ProteinRecord, bool)
	Put(key string, record *ProteinRecord)
}
