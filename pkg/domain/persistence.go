package domain

import "context"

// PathwayCollection is the pathway-side backing-store contract. Lookups that
// find nothing return ok=false with a nil error; errors are reserved for the
// backend itself failing.
type PathwayCollection interface {
	// CountPathways returns the number of pathway rows in the store.
	CountPathways(ctx context.Context) (int64, error)
	// PathwayByIdentifier resolves the designated identifier field exactly.
	// At most one row matches; absence is not an error.
	PathwayByIdentifier(ctx context.Context, identifier string) (Pathway, bool, error)
	// PathwayByName matches the display name exactly. Names are not unique;
	// when several rows collide the first in stable identifier order wins.
	PathwayByName(ctx context.Context, name string) (Pathway, bool, error)
	// ListPathways returns every pathway in stable identifier order.
	ListPathways(ctx context.Context) ([]Pathway, error)
	// SearchPathwaysByName returns pathways whose name contains the query
	// substring. Case sensitivity is backend-defined. A positive limit
	// truncates the result; zero or negative means unbounded.
	SearchPathwaysByName(ctx context.Context, query string, limit int) ([]Pathway, error)
	// PathwayMembers returns the member proteins of a pathway.
	PathwayMembers(ctx context.Context, identifier string) ([]Protein, error)
}

// ProteinCollection is the protein-side backing-store contract.
type ProteinCollection interface {
	// ProteinsBySymbols returns the stored proteins whose HGNC symbol appears
	// in the given set. Unknown symbols are silently absent from the result;
	// duplicate inputs collapse because matching is a set membership test.
	ProteinsBySymbols(ctx context.Context, symbols []string) ([]Protein, error)
	// ProteinPathways returns the identifiers of every pathway the symbol
	// belongs to.
	ProteinPathways(ctx context.Context, symbol string) ([]string, error)
}

// Store combines both collection contracts with the population entry point
// used by external loaders and the lifecycle hook owned by the caller. The
// query engine itself only ever touches the collection methods.
type Store interface {
	PathwayCollection
	ProteinCollection
	// Populate bulk-loads pathway records, upserting pathways and their
	// memberships. Idempotent for identical input.
	Populate(ctx context.Context, records []PathwayRecord) error
	// Close releases backend resources. The engine never calls this; the
	// session is owned by whoever opened the store.
	Close() error
}
