package service

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/protein-atlas-server/internal/domain"
)

// Reconciler merges the identity, structure, interaction, and disease/drug
// sources into one ProteinRecord per query. Records are cached for the
// process lifetime; a key is populated at most once even under concurrent
// requests for the same query.
type Reconciler struct {
	uniprot     domain.IdentityClient
	ncbi        domain.IdentityClient
	mapper      domain.AccessionMapper
	structures  domain.StructureClient
	interactors domain.InteractionClient
	diseaseDrug domain.DiseaseDrugClient
	cache       domain.RecordCache
	logger      *logrus.Logger

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewReconciler wires the adapters and cache into a reconciler.
func NewReconciler(
	uniprot domain.IdentityClient,
	ncbi domain.IdentityClient,
	mapper domain.AccessionMapper,
	structures domain.StructureClient,
	interactors domain.InteractionClient,
	diseaseDrug domain.DiseaseDrugClient,
	cache domain.RecordCache,
	logger *logrus.Logger,
) *Reconciler {
	return &Reconciler{
		uniprot:     uniprot,
		ncbi:        ncbi,
		mapper:      mapper,
		structures:  structures,
		interactors: interactors,
		diseaseDrug: diseaseDrug,
		cache:       cache,
		logger:      logger,
		inflight:    make(map[string]*sync.Mutex),
	}
}

// GetProteinRecord returns the reconciled record for a query, serving from
// the cache when possible. Failed lookups are never cached, so a query can
// succeed later when the upstream sources recover.
func (r *Reconciler) GetProteinRecord(ctx context.Context, query string) (*domain.ProteinRecord, error) {
	if record, ok := r.cache.Get(query); ok {
		r.logger.WithField("query", query).Debug("Cache hit")
		return record, nil
	}

	keyLock := r.lockKey(query)
	defer keyLock.Unlock()

	// Another request may have populated the key while we waited.
	if record, ok := r.cache.Get(query); ok {
		return record, nil
	}

	record, err := r.buildRecord(ctx, query)
	if err != nil {
		return nil, err
	}

	r.cache.Put(query, record)
	return record, nil
}

// lockKey acquires the per-key population lock, creating it on first use.
func (r *Reconciler) lockKey(query string) *sync.Mutex {
	r.mu.Lock()
	keyLock, ok := r.inflight[query]
	if !ok {
		keyLock = &sync.Mutex{}
		r.inflight[query] = keyLock
	}
	r.mu.Unlock()

	keyLock.Lock()
	return keyLock
}

// buildRecord runs the full reconciliation: resolve identity from both
// sources, merge, then fan out to the section adapters.
func (r *Reconciler) buildRecord(ctx context.Context, query string) (*domain.ProteinRecord, error) {
	identity, err := r.resolveIdentity(ctx, query)
	if err != nil {
		return nil, err
	}

	geneSymbol := identity.GeneSymbol
	if geneSymbol == "" {
		geneSymbol = query
	}
	accession := identity.Accession

	record := &domain.ProteinRecord{
		Query:        query,
		Identity:     *identity,
		Structures:   []domain.StructureEntry{},
		Interactions: []domain.InteractionEntry{},
		DiseaseDrug: domain.DiseaseDrugSet{
			Diseases: []domain.DiseaseAssociation{},
			Drugs:    []domain.DrugAssociation{},
		},
		DataSource: identity.DataSource,
	}

	var wg sync.WaitGroup

	if accession != "" && !domain.IsPlaceholderAccession(accession) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			structures, err := r.structures.GetStructures(ctx, accession, geneSymbol)
			if err != nil {
				r.logger.WithFields(logrus.Fields{
					"query": query,
					"error": err.Error(),
				}).Warn("Structure lookup failed, continuing without structures")
				return
			}
			record.Structures = structures
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		interactions, err := r.interactors.GetInteractions(ctx, geneSymbol, accession)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"query": query,
				"error": err.Error(),
			}).Warn("Interaction lookup failed, continuing without interactions")
			return
		}
		record.Interactions = interactions
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		associations, err := r.diseaseDrug.GetAssociations(ctx, geneSymbol, accession)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"query": query,
				"error": err.Error(),
			}).Warn("Disease/drug lookup failed, continuing without associations")
			return
		}
		record.DiseaseDrug = *associations
	}()

	wg.Wait()

	return record, nil
}

// resolveIdentity queries both identity sources, selects the primary, merges
// the secondary in, and upgrades placeholder accessions where possible.
func (r *Reconciler) resolveIdentity(ctx context.Context, query string) (*domain.ProteinIdentity, error) {
	uniprotIdentity, uniprotErr := r.uniprot.GetProteinSummary(ctx, query)
	if uniprotErr != nil && !errors.Is(uniprotErr, domain.ErrNoData) {
		r.logger.WithFields(logrus.Fields{
			"query": query,
			"error": uniprotErr.Error(),
		}).Warn("UniProt identity lookup failed")
	}

	ncbiIdentity, ncbiErr := r.ncbi.GetProteinSummary(ctx, query)
	if ncbiErr != nil && !errors.Is(ncbiErr, domain.ErrNoData) {
		r.logger.WithFields(logrus.Fields{
			"query": query,
			"error": ncbiErr.Error(),
		}).Warn("NCBI identity lookup failed")
	}

	var identity *domain.ProteinIdentity
	switch {
	case uniprotErr == nil:
		identity = mergeIdentity(uniprotIdentity, ncbiIdentity)
	case ncbiErr == nil:
		identity = mergeIdentity(ncbiIdentity, uniprotIdentity)
	default:
		return nil, domain.NewNotFoundError(query)
	}

	r.resolvePlaceholder(ctx, identity)
	return identity, nil
}

// mergeIdentity fills gaps in the primary identity with fields from the
// secondary. The primary always wins on conflicts. Function and summary are
// additionally cross-filled between the two fields so a record never lacks
// one while holding the other.
func mergeIdentity(primary, secondary *domain.ProteinIdentity) *domain.ProteinIdentity {
	merged := *primary

	if secondary != nil {
		if merged.Accession == "" {
			merged.Accession = secondary.Accession
		}
		if merged.ProteinName == "" {
			merged.ProteinName = secondary.ProteinName
		}
		if merged.GeneSymbol == "" {
			merged.GeneSymbol = secondary.GeneSymbol
		}
		if len(merged.GeneNames) == 0 {
			merged.GeneNames = secondary.GeneNames
		}
		if merged.Organism == "" {
			merged.Organism = secondary.Organism
		}
		if merged.Sequence == "" {
			merged.Sequence = secondary.Sequence
			merged.Length = secondary.Length
		}
		if merged.Function == "" {
			merged.Function = secondary.Function
		}
		if merged.Summary == "" {
			merged.Summary = secondary.Summary
		}
		if len(merged.SubcellularLocations) == 0 {
			merged.SubcellularLocations = secondary.SubcellularLocations
		}
	}

	if merged.Function == "" {
		merged.Function = merged.Summary
	}
	if merged.Summary == "" {
		merged.Summary = merged.Function
	}

	return &merged
}

// resolvePlaceholder swaps a GENE_ placeholder accession for a real UniProt
// accession when the mapper can supply one. A failed mapping leaves the
// placeholder in place.
func (r *Reconciler) resolvePlaceholder(ctx context.Context, identity *domain.ProteinIdentity) {
	if !domain.IsPlaceholderAccession(identity.Accession) || identity.GeneSymbol == "" {
		return
	}

	accession, err := r.mapper.MapGeneToAccession(ctx, identity.GeneSymbol)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"gene_symbol": identity.GeneSymbol,
			"error":       err.Error(),
		}).Debug("Accession mapping failed, keeping placeholder")
		return
	}
	if accession != "" {
		identity.Accession = accession
	}
}
