// Package domain defines the pathway and protein value types, the gene-set
// primitives, and the backing-store contracts consumed by the enrichment
// query engine.
package domain

import (
	"encoding/json"
	"sort"
)

// Pathway is a named biological process identified by a backend-specific
// identifier (for example a wikipathways or kegg accession). The identifier is
// unique within a backend; the display name is not required to be.
type Pathway struct {
	// Identifier is the backend-specific pathway identifier, distinct from
	// whatever surrogate key a store keeps private.
	Identifier string `json:"identifier" db:"identifier"`
	// Name is the human-readable pathway name.
	Name string `json:"name" db:"name"`
}

// Protein is a gene product identified by its HGNC symbol. Membership in
// pathways is a many-to-many relation resolved through the store contract.
type Protein struct {
	HGNCSymbol string `json:"hgnc_symbol" db:"hgnc_symbol"`
}

// PathwayRecord is the population input for a store: one pathway together with
// its full member symbol list. Records are produced by external loaders (GMT
// files and the like); the query engine never writes them.
type PathwayRecord struct {
	Identifier string   `json:"identifier"`
	Name       string   `json:"name"`
	Symbols    []string `json:"symbols"`
}

// EnrichedPathway is one row of a gene-set enrichment result: how many of the
// queried proteins map into the pathway, relative to the pathway's total size.
type EnrichedPathway struct {
	PathwayID      string  `json:"pathway_id"`
	PathwayName    string  `json:"pathway_name"`
	MappedProteins int     `json:"mapped_proteins"`
	PathwaySize    int     `json:"pathway_size"`
	GeneSet        GeneSet `json:"pathway_gene_set"`
}

// GeneSet is a set of HGNC gene symbols. The zero value is not usable; build
// instances with NewGeneSet.
type GeneSet map[string]struct{}

// NewGeneSet builds a set from the given symbols, collapsing duplicates.
func NewGeneSet(symbols ...string) GeneSet {
	gs := make(GeneSet, len(symbols))
	for _, s := range symbols {
		gs[s] = struct{}{}
	}
	return gs
}

// Add inserts a symbol into the set.
func (g GeneSet) Add(symbol string) { g[symbol] = struct{}{} }

// Contains reports whether the symbol is in the set.
func (g GeneSet) Contains(symbol string) bool {
	_, ok := g[symbol]
	return ok
}

// Len returns the number of distinct symbols.
func (g GeneSet) Len() int { return len(g) }

// Sorted returns the symbols in lexicographic order.
func (g GeneSet) Sorted() []string {
	out := make([]string, 0, len(g))
	for s := range g {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold exactly the same symbols.
func (g GeneSet) Equal(other GeneSet) bool {
	if len(g) != len(other) {
		return false
	}
	for s := range g {
		if _, ok := other[s]; !ok {
			return false
		}
	}
	return true
}

// MarshalJSON renders the set as a sorted array so payloads are deterministic.
func (g GeneSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Sorted())
}

// UnmarshalJSON accepts the array form produced by MarshalJSON.
func (g *GeneSet) UnmarshalJSON(data []byte) error {
	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		return err
	}
	*g = NewGeneSet(symbols...)
	return nil
}
