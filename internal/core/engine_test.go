package core

import (
	"compath/internal/infra/persistence/memory"
	"compath/pkg/domain"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func seededEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	store := memory.NewStore()
	err := store.Populate(context.Background(), []domain.PathwayRecord{
		{Identifier: "1", Name: "PW1", Symbols: []string{"TP53", "BRCA1"}},
		{Identifier: "2", Name: "PW2", Symbols: []string{"TP53"}},
		{Identifier: "3", Name: "Empty", Symbols: nil},
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	engine, err := NewFromStore(store, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestNewRejectsMissingBindings(t *testing.T) {
	store := memory.NewStore()

	t.Run("missing pathways", func(t *testing.T) {
		_, err := New(Config{Proteins: store})
		var cfgErr *domain.ConfigurationError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "pathways" {
			t.Fatalf("expected pathways ConfigurationError, got %v", err)
		}
	})

	t.Run("missing proteins", func(t *testing.T) {
		_, err := New(Config{Pathways: store})
		var cfgErr *domain.ConfigurationError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "proteins" {
			t.Fatalf("expected proteins ConfigurationError, got %v", err)
		}
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewFromStore(nil)
		var cfgErr *domain.ConfigurationError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "store" {
			t.Fatalf("expected store ConfigurationError, got %v", err)
		}
	})
}

func TestIsPopulated(t *testing.T) {
	ctx := context.Background()

	engine := seededEngine(t)
	populated, err := engine.IsPopulated(ctx)
	if err != nil || !populated {
		t.Fatalf("populated=%v err=%v", populated, err)
	}

	empty, err := NewFromStore(memory.NewStore())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	populated, err = empty.IsPopulated(ctx)
	if err != nil || populated {
		t.Fatalf("empty store reported populated=%v err=%v", populated, err)
	}
}

func TestQueryGeneSetRoundTrip(t *testing.T) {
	engine := seededEngine(t)
	results, err := engine.QueryGeneSet(context.Background(), domain.NewGeneSet("TP53"))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 enriched pathways, got %+v", results)
	}

	pw1, ok := results["1"]
	if !ok {
		t.Fatalf("pathway 1 missing from results: %+v", results)
	}
	if pw1.PathwayName != "PW1" || pw1.MappedProteins != 1 || pw1.PathwaySize != 2 {
		t.Fatalf("unexpected record for PW1: %+v", pw1)
	}
	if !pw1.GeneSet.Equal(domain.NewGeneSet("TP53", "BRCA1")) {
		t.Fatalf("unexpected gene set for PW1: %v", pw1.GeneSet.Sorted())
	}

	pw2, ok := results["2"]
	if !ok {
		t.Fatalf("pathway 2 missing from results: %+v", results)
	}
	if pw2.PathwayName != "PW2" || pw2.MappedProteins != 1 || pw2.PathwaySize != 1 {
		t.Fatalf("unexpected record for PW2: %+v", pw2)
	}
	if !pw2.GeneSet.Equal(domain.NewGeneSet("TP53")) {
		t.Fatalf("unexpected gene set for PW2: %v", pw2.GeneSet.Sorted())
	}
}

func TestQueryGeneSetProperties(t *testing.T) {
	engine := seededEngine(t)
	ctx := context.Background()

	t.Run("empty input yields empty mapping", func(t *testing.T) {
		results, err := engine.QueryGeneSet(ctx, domain.NewGeneSet())
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(results) != 0 {
			t.Fatalf("expected empty mapping, got %+v", results)
		}
	})

	t.Run("unknown symbols are silently dropped", func(t *testing.T) {
		results, err := engine.QueryGeneSet(ctx, domain.NewGeneSet("NOPE1", "NOPE2"))
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(results) != 0 {
			t.Fatalf("expected empty mapping, got %+v", results)
		}
	})

	t.Run("every record maps at least one protein within pathway size", func(t *testing.T) {
		results, err := engine.QueryGeneSet(ctx, domain.NewGeneSet("TP53", "BRCA1", "UNKNOWN"))
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		for id, rec := range results {
			if rec.MappedProteins < 1 {
				t.Errorf("pathway %s present with zero matches", id)
			}
			if rec.MappedProteins > rec.PathwaySize {
				t.Errorf("pathway %s maps more proteins than its size: %+v", id, rec)
			}
		}
	})

	t.Run("duplicate input symbols count once", func(t *testing.T) {
		results, err := engine.QueryGeneSet(ctx, domain.NewGeneSet("TP53", "TP53"))
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if results["2"].MappedProteins != 1 {
			t.Fatalf("duplicate symbol inflated the count: %+v", results["2"])
		}
	})
}

func TestPathwayLookupsAreDeterministic(t *testing.T) {
	engine := seededEngine(t)
	ctx := context.Background()

	first, ok1, err1 := engine.PathwayByIdentifier(ctx, "1")
	second, ok2, err2 := engine.PathwayByIdentifier(ctx, "1")
	if err1 != nil || err2 != nil || !ok1 || !ok2 {
		t.Fatalf("lookups failed: %v %v", err1, err2)
	}
	if first != second {
		t.Fatalf("repeated lookup diverged: %+v vs %+v", first, second)
	}

	_, ok, err := engine.PathwayByIdentifier(ctx, "absent")
	if err != nil || ok {
		t.Fatalf("absent lookup must be (zero, false, nil), got ok=%v err=%v", ok, err)
	}

	byName, ok, err := engine.PathwayByName(ctx, "PW2")
	if err != nil || !ok || byName.Identifier != "2" {
		t.Fatalf("by name: %+v ok=%v err=%v", byName, ok, err)
	}
}

func TestAllPathwaysAndSymbols(t *testing.T) {
	engine := seededEngine(t)
	ctx := context.Background()

	all, err := engine.AllPathways(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("all=%+v err=%v", all, err)
	}

	symbols, err := engine.AllHGNCSymbols(ctx)
	if err != nil {
		t.Fatalf("symbols: %v", err)
	}
	if !symbols.Equal(domain.NewGeneSet("TP53", "BRCA1")) {
		t.Fatalf("unexpected symbol union: %v", symbols.Sorted())
	}
}

func TestPathwaySizeDistributionSkipsEmpty(t *testing.T) {
	engine := seededEngine(t)
	sizes, err := engine.PathwaySizeDistribution(context.Background())
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	if len(sizes) != 2 || sizes["PW1"] != 2 || sizes["PW2"] != 1 {
		t.Fatalf("unexpected distribution: %v", sizes)
	}
	for name, n := range sizes {
		if n == 0 {
			t.Errorf("pathway %s present with zero members", name)
		}
	}
}

func TestSearchPathwaysByNameLimit(t *testing.T) {
	engine := seededEngine(t)
	hits, err := engine.SearchPathwaysByName(context.Background(), "PW", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected exactly one hit with limit=1, got %+v", hits)
	}
	if hits[0].Name != "PW1" && hits[0].Name != "PW2" {
		t.Fatalf("unexpected hit: %+v", hits[0])
	}
}

func TestExportGenesets(t *testing.T) {
	engine := seededEngine(t)
	genesets, err := engine.ExportGenesets(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(genesets) != 3 {
		t.Fatalf("unexpected geneset map: %v", genesets)
	}
	if !genesets["PW1"].Equal(domain.NewGeneSet("TP53", "BRCA1")) {
		t.Fatalf("PW1 geneset mismatch: %v", genesets["PW1"].Sorted())
	}
	if genesets["Empty"].Len() != 0 {
		t.Fatalf("empty pathway should export an empty set: %v", genesets["Empty"].Sorted())
	}
}

func TestGeneDistribution(t *testing.T) {
	engine := seededEngine(t)
	counts, err := engine.GeneDistribution(context.Background())
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	if counts["TP53"] != 2 || counts["BRCA1"] != 1 {
		t.Fatalf("unexpected gene distribution: %v", counts)
	}
}

// corruptStore wraps the memory store but pretends the membership index knows
// a pathway the pathway collection cannot resolve.
type corruptStore struct {
	*memory.Store
}

func (c *corruptStore) ProteinPathways(ctx context.Context, symbol string) ([]string, error) {
	ids, err := c.Store.ProteinPathways(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return append(ids, "ghost"), nil
}

func TestQueryGeneSetSurfacesCorruptMembership(t *testing.T) {
	store := memory.NewStore()
	err := store.Populate(context.Background(), []domain.PathwayRecord{
		{Identifier: "1", Name: "PW1", Symbols: []string{"TP53"}},
	})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	engine, err := NewFromStore(&corruptStore{Store: store})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = engine.QueryGeneSet(context.Background(), domain.NewGeneSet("TP53"))
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Kind != "pathway" || nf.Key != "ghost" {
		t.Fatalf("unexpected not-found detail: %+v", nf)
	}
}

// failingStore returns a backend error from every query.
type failingStore struct {
	memory.Store
}

var errBackend = fmt.Errorf("backend down")

func (f *failingStore) CountPathways(context.Context) (int64, error) { return 0, errBackend }
func (f *failingStore) ProteinsBySymbols(context.Context, []string) ([]domain.Protein, error) {
	return nil, errBackend
}

func TestBackendErrorsPropagateUnchanged(t *testing.T) {
	engine, err := NewFromStore(&failingStore{})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx := context.Background()

	if _, err := engine.IsPopulated(ctx); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if _, err := engine.QueryGeneSet(ctx, domain.NewGeneSet("TP53")); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

// captureMetrics records observed operations for assertions.
type captureMetrics struct {
	ops       []string
	successes []bool
}

func (c *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.ops = append(c.ops, op)
	c.successes = append(c.successes, success)
}

func TestEngineReportsMetrics(t *testing.T) {
	rec := &captureMetrics{}
	engine := seededEngine(t, WithMetrics(rec))
	ctx := context.Background()

	if _, err := engine.IsPopulated(ctx); err != nil {
		t.Fatalf("is populated: %v", err)
	}
	if _, err := engine.QueryGeneSet(ctx, domain.NewGeneSet("TP53")); err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rec.ops) != 2 || rec.ops[0] != "is_populated" || rec.ops[1] != "query_gene_set" {
		t.Fatalf("unexpected observations: %v", rec.ops)
	}
	for i, ok := range rec.successes {
		if !ok {
			t.Errorf("operation %s reported failure", rec.ops[i])
		}
	}
}

type captureLogger struct {
	msgs []string
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.msgs = append(c.msgs, msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.msgs = append(c.msgs, msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.msgs = append(c.msgs, msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.msgs = append(c.msgs, msg) }

func TestEngineLogsQueries(t *testing.T) {
	logger := &captureLogger{}
	engine := seededEngine(t, WithLogger(logger))
	if _, err := engine.QueryGeneSet(context.Background(), domain.NewGeneSet("TP53")); err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(logger.msgs) == 0 {
		t.Fatalf("expected a debug log entry")
	}
}
