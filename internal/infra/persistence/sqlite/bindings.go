package sqlite

import "compath/pkg/domain"

// Bindings names the relational collections a SQL-backed store operates on:
// the pathway table, the protein table, the membership join table, and the
// designated backend identifier column on the pathway table. All four are
// required; validation happens once when the store is opened.
type Bindings struct {
	PathwayTable     string
	ProteinTable     string
	MembershipTable  string
	IdentifierColumn string
}

// DefaultBindings returns the schema names used by the bundled DDL.
func DefaultBindings() Bindings {
	return Bindings{
		PathwayTable:     "pathways",
		ProteinTable:     "proteins",
		MembershipTable:  "pathway_proteins",
		IdentifierColumn: "identifier",
	}
}

// Validate reports the first missing binding as a ConfigurationError.
func (b Bindings) Validate() error {
	switch {
	case b.PathwayTable == "":
		return domain.NewConfigurationError("pathway table")
	case b.ProteinTable == "":
		return domain.NewConfigurationError("protein table")
	case b.MembershipTable == "":
		return domain.NewConfigurationError("membership table")
	case b.IdentifierColumn == "":
		return domain.NewConfigurationError("identifier column")
	}
	return nil
}
