// Package core implements the enrichment query engine: read-only lookups and
// counting aggregations over a pathway/protein backing store.
package core

import (
	"compath/pkg/domain"
	"context"
	"time"
)

// Config binds the engine to the backing-store collections it queries. Both
// bindings are required; construction fails fast when either is missing.
type Config struct {
	Pathways domain.PathwayCollection
	Proteins domain.ProteinCollection
}

// Engine answers gene-set enrichment queries and the supporting pathway
// lookups. It holds no state beyond the injected collections and never
// mutates the store; connection lifecycle belongs to the caller.
type Engine struct {
	pathways domain.PathwayCollection
	proteins domain.ProteinCollection
	logger   Logger
	metrics  MetricsRecorder
}

// Option customises engine construction.
type Option func(*Engine)

// WithLogger installs a logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics installs a metrics recorder. The default discards everything.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// New validates the configuration and constructs an engine. A missing
// binding yields a *domain.ConfigurationError naming the field; no query is
// ever attempted against an incomplete configuration.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Pathways == nil {
		return nil, domain.NewConfigurationError("pathways")
	}
	if cfg.Proteins == nil {
		return nil, domain.NewConfigurationError("proteins")
	}
	e := &Engine{
		pathways: cfg.Pathways,
		proteins: cfg.Proteins,
		logger:   noopLogger{},
		metrics:  noopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewFromStore binds both sides of the contract to a single store.
func NewFromStore(store domain.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, domain.NewConfigurationError("store")
	}
	return New(Config{Pathways: store, Proteins: store}, opts...)
}

func (e *Engine) observe(ctx context.Context, op string, start time.Time, err error) {
	e.metrics.Observe(ctx, op, err == nil, time.Since(start))
}

// IsPopulated reports whether the store contains at least one pathway.
func (e *Engine) IsPopulated(ctx context.Context) (populated bool, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "is_populated", start, err) }()
	n, err := e.pathways.CountPathways(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// QueryGeneSet computes the enrichment of the given gene set: for every
// pathway at least one queried protein maps into, the number of matched
// proteins together with the pathway's metadata and full gene set. Pathways
// with zero matches are omitted; unknown symbols are silently dropped; an
// empty input yields an empty map.
//
// A pathway identifier surfaced by the membership index that no longer
// resolves to a row signals corrupt backing data and surfaces as a
// *domain.NotFoundError.
func (e *Engine) QueryGeneSet(ctx context.Context, geneSet domain.GeneSet) (results map[string]domain.EnrichedPathway, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "query_gene_set", start, err) }()
	proteins, err := e.proteins.ProteinsBySymbols(ctx, geneSet.Sorted())
	if err != nil {
		return nil, err
	}

	// One count per matched protein row per pathway; duplicate input symbols
	// collapsed already by the set type.
	counts := make(map[string]int)
	for _, protein := range proteins {
		ids, err := e.proteins.ProteinPathways(ctx, protein.HGNCSymbol)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			counts[id]++
		}
	}

	results = make(map[string]domain.EnrichedPathway, len(counts))
	for id, mapped := range counts {
		pathway, ok, err := e.pathways.PathwayByIdentifier(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.NotFoundError{Kind: "pathway", Key: id}
		}
		members, err := e.pathways.PathwayMembers(ctx, id)
		if err != nil {
			return nil, err
		}
		gs := domain.NewGeneSet()
		for _, member := range members {
			gs.Add(member.HGNCSymbol)
		}
		results[id] = domain.EnrichedPathway{
			PathwayID:      id,
			PathwayName:    pathway.Name,
			MappedProteins: mapped,
			PathwaySize:    gs.Len(),
			GeneSet:        gs,
		}
	}
	e.logger.Debug("gene set queried", "input_symbols", geneSet.Len(), "matched_proteins", len(proteins), "enriched_pathways", len(results))
	return results, nil
}

// PathwayByIdentifier resolves a pathway by its backend-specific identifier.
// Absence is reported through the boolean, never as an error.
func (e *Engine) PathwayByIdentifier(ctx context.Context, identifier string) (pw domain.Pathway, ok bool, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "pathway_by_identifier", start, err) }()
	return e.pathways.PathwayByIdentifier(ctx, identifier)
}

// PathwayByName resolves a pathway by exact name. Names are not unique; the
// store's stable first match wins, a documented ambiguity.
func (e *Engine) PathwayByName(ctx context.Context, name string) (pw domain.Pathway, ok bool, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "pathway_by_name", start, err) }()
	return e.pathways.PathwayByName(ctx, name)
}

// AllPathways lists every pathway in the store's stable order.
func (e *Engine) AllPathways(ctx context.Context) (pathways []domain.Pathway, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "all_pathways", start, err) }()
	return e.pathways.ListPathways(ctx)
}

// AllHGNCSymbols returns the union of member symbols across all pathways.
// Pathways without members contribute nothing.
func (e *Engine) AllHGNCSymbols(ctx context.Context) (symbols domain.GeneSet, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "all_hgnc_symbols", start, err) }()
	pathways, err := e.pathways.ListPathways(ctx)
	if err != nil {
		return nil, err
	}
	symbols = domain.NewGeneSet()
	for _, pathway := range pathways {
		members, err := e.pathways.PathwayMembers(ctx, pathway.Identifier)
		if err != nil {
			return nil, err
		}
		for _, member := range members {
			symbols.Add(member.HGNCSymbol)
		}
	}
	return symbols, nil
}

// PathwaySizeDistribution maps pathway name to member count, skipping
// pathways with no members. Keying by name risks collisions for duplicate
// names, a documented ambiguity.
func (e *Engine) PathwaySizeDistribution(ctx context.Context) (sizes map[string]int, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "pathway_size_distribution", start, err) }()
	pathways, err := e.pathways.ListPathways(ctx)
	if err != nil {
		return nil, err
	}
	sizes = make(map[string]int, len(pathways))
	for _, pathway := range pathways {
		members, err := e.pathways.PathwayMembers(ctx, pathway.Identifier)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			continue
		}
		sizes[pathway.Name] = len(members)
	}
	return sizes, nil
}

// SearchPathwaysByName returns pathways whose name contains the query
// substring, truncated to limit when positive. Case sensitivity is
// backend-defined.
func (e *Engine) SearchPathwaysByName(ctx context.Context, query string, limit int) (pathways []domain.Pathway, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "search_pathways_by_name", start, err) }()
	return e.pathways.SearchPathwaysByName(ctx, query, limit)
}

// ExportGenesets maps pathway name to its member gene set. When names
// collide the last pathway in store order wins, a documented ambiguity of
// the name-keyed result.
func (e *Engine) ExportGenesets(ctx context.Context) (genesets map[string]domain.GeneSet, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "export_genesets", start, err) }()
	pathways, err := e.pathways.ListPathways(ctx)
	if err != nil {
		return nil, err
	}
	genesets = make(map[string]domain.GeneSet, len(pathways))
	for _, pathway := range pathways {
		members, err := e.pathways.PathwayMembers(ctx, pathway.Identifier)
		if err != nil {
			return nil, err
		}
		gs := domain.NewGeneSet()
		for _, member := range members {
			gs.Add(member.HGNCSymbol)
		}
		genesets[pathway.Name] = gs
	}
	return genesets, nil
}

// GeneDistribution counts, per symbol, the number of pathways it appears in.
func (e *Engine) GeneDistribution(ctx context.Context) (counts map[string]int, err error) {
	start := time.Now()
	defer func() { e.observe(ctx, "gene_distribution", start, err) }()
	pathways, err := e.pathways.ListPathways(ctx)
	if err != nil {
		return nil, err
	}
	counts = make(map[string]int)
	for _, pathway := range pathways {
		members, err := e.pathways.PathwayMembers(ctx, pathway.Identifier)
		if err != nil {
			return nil, err
		}
		for _, member := range members {
			counts[member.HGNCSymbol]++
		}
	}
	return counts, nil
}
