// Package postgres provides a PostgreSQL-backed pathway store that mirrors
// the sqlite schema in postgres dialect.
package postgres

import (
	"compath/pkg/domain"
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion ensuring the store satisfies the domain
// persistence interface.
var _ domain.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// Default DSN keeps parity with OpenStore defaults while allowing overrides via env.
	defaultDSN = "postgres://localhost/compath?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Bindings names the relational collections the store operates on. All four
// are required; validation happens once when the store is opened.
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

// Store is a postgres-backed pathway store. Name substring search uses LIKE,
// which postgres treats case-sensitively.
type Store struct {
	db *sql.DB
	b  Bindings
}

// NewStore opens a postgres-backed store using the provided DSN (falls back
// to defaultDSN), pings the server, and applies the schema DDL.
func NewStore(dsn string, b Bindings) (*Store, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{db: db, b: b}
	if err := s.applySchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) applySchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			%s TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL
		)`, s.b.PathwayTable, s.b.IdentifierColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			hgnc_symbol TEXT NOT NULL UNIQUE
		)`, s.b.ProteinTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			pathway_id BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			protein_id BIGINT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			PRIMARY KEY (pathway_id, protein_id)
		)`, s.b.MembershipTable, s.b.PathwayTable, s.b.ProteinTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_protein ON %s(protein_id)`,
			s.b.MembershipTable, s.b.MembershipTable),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (s *Store) pathwayColumns() []string {
	return []string{s.b.IdentifierColumn + " AS identifier", "name"}
}

// CountPathways returns the number of pathway rows.
func (s *Store) CountPathways(ctx context.Context) (int64, error) {
	query, args, err := s.builder().Select("COUNT(*)").From(s.b.PathwayTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int64
	if err := sqlscan.Get(ctx, s.db, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count pathways: %w", err)
	}
	return n, nil
}

// PathwayByIdentifier resolves the designated identifier column exactly.
func (s *Store) PathwayByIdentifier(ctx context.Context, identifier string) (domain.Pathway, bool, error) {
	query, args, err := s.builder().Select(s.pathwayColumns()...).
		From(s.b.PathwayTable).
		Where(squirrel.Eq{s.b.IdentifierColumn: identifier}).
		ToSql()
	if err != nil {
		return domain.Pathway{}, false, fmt.Errorf("build select query: %w", err)
	}
	var pw domain.Pathway
	if err := sqlscan.Get(ctx, s.db, &pw, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return domain.Pathway{}, false, nil
		}
		return domain.Pathway{}, false, fmt.Errorf("scan pathway: %w", err)
	}
	return pw, true, nil
}

// PathwayByName matches the name exactly, breaking collisions by identifier
// order.
func (s *Store) PathwayByName(ctx context.Context, name string) (domain.Pathway, bool, error) {
	query, args, err := s.builder().Select(s.pathwayColumns()...).
		From(s.b.PathwayTable).
		Where(squirrel.Eq{"name": name}).
		OrderBy(s.b.IdentifierColumn).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Pathway{}, false, fmt.Errorf("build select query: %w", err)
	}
	var pw domain.Pathway
	if err := sqlscan.Get(ctx, s.db, &pw, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return domain.Pathway{}, false, nil
		}
		return domain.Pathway{}, false, fmt.Errorf("scan pathway: %w", err)
	}
	return pw, true, nil
}

// ListPathways returns every pathway in identifier order.
func (s *Store) ListPathways(ctx context.Context) ([]domain.Pathway, error) {
	query, args, err := s.builder().Select(s.pathwayColumns()...).
		From(s.b.PathwayTable).
		OrderBy(s.b.IdentifierColumn).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	var out []domain.Pathway
	if err := sqlscan.Select(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("scan pathways: %w", err)
	}
	return out, nil
}

// SearchPathwaysByName returns pathways whose name contains the query
// substring (LIKE semantics, case-sensitive), in identifier order.
func (s *Store) SearchPathwaysByName(ctx context.Context, query string, limit int) ([]domain.Pathway, error) {
	qb := s.builder().Select(s.pathwayColumns()...).
		From(s.b.PathwayTable).
		Where(squirrel.Like{"name": "%" + query + "%"}).
		OrderBy(s.b.IdentifierColumn)
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}
	var out []domain.Pathway
	if err := sqlscan.Select(ctx, s.db, &out, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("scan pathways: %w", err)
	}
	return out, nil
}

// PathwayMembers returns the member proteins of a pathway in symbol order.
func (s *Store) PathwayMembers(ctx context.Context, identifier string) ([]domain.Protein, error) {
	query, args, err := s.builder().Select("p.hgnc_symbol AS hgnc_symbol").
		From(s.b.ProteinTable + " p").
		Join(s.b.MembershipTable + " mp ON mp.protein_id = p.id").
		Join(s.b.PathwayTable + " pw ON pw.id = mp.pathway_id").
		Where(squirrel.Eq{"pw." + s.b.IdentifierColumn: identifier}).
		OrderBy("p.hgnc_symbol").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build members query: %w", err)
	}
	var out []domain.Protein
	if err := sqlscan.Select(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("scan members: %w", err)
	}
	return out, nil
}

// ProteinsBySymbols returns stored proteins whose symbol is in the input set.
func (s *Store) ProteinsBySymbols(ctx context.Context, symbols []string) ([]domain.Protein, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	query, args, err := s.builder().Select("hgnc_symbol").
		From(s.b.ProteinTable).
		Where(squirrel.Eq{"hgnc_symbol": symbols}).
		OrderBy("hgnc_symbol").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	var out []domain.Protein
	if err := sqlscan.Select(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("scan proteins: %w", err)
	}
	return out, nil
}

// ProteinPathways returns the pathway identifiers the symbol belongs to, in
// identifier order.
func (s *Store) ProteinPathways(ctx context.Context, symbol string) ([]string, error) {
	query, args, err := s.builder().Select("pw." + s.b.IdentifierColumn).
		From(s.b.PathwayTable + " pw").
		Join(s.b.MembershipTable + " mp ON mp.pathway_id = pw.id").
		Join(s.b.ProteinTable + " p ON p.id = mp.protein_id").
		Where(squirrel.Eq{"p.hgnc_symbol": symbol}).
		OrderBy("pw." + s.b.IdentifierColumn).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pathways query: %w", err)
	}
	var out []string
	if err := sqlscan.Select(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("scan pathway ids: %w", err)
	}
	return out, nil
}

// Populate upserts the given records inside a single transaction.
func (s *Store) Populate(ctx context.Context, records []domain.PathwayRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, rec := range records {
		var pathwayID int64
		upsert := fmt.Sprintf(
			`INSERT INTO %s(%s, name) VALUES($1, $2)
			ON CONFLICT(%s) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			s.b.PathwayTable, s.b.IdentifierColumn, s.b.IdentifierColumn)
		if err := tx.QueryRowContext(ctx, upsert, rec.Identifier, rec.Name).Scan(&pathwayID); err != nil {
			return fmt.Errorf("upsert pathway %s: %w", rec.Identifier, err)
		}
		for _, symbol := range rec.Symbols {
			var proteinID int64
			insert := fmt.Sprintf(
				`INSERT INTO %s(hgnc_symbol) VALUES($1)
				ON CONFLICT(hgnc_symbol) DO UPDATE SET hgnc_symbol = EXCLUDED.hgnc_symbol
				RETURNING id`, s.b.ProteinTable)
			if err := tx.QueryRowContext(ctx, insert, symbol).Scan(&proteinID); err != nil {
				return fmt.Errorf("upsert protein %s: %w", symbol, err)
			}
			link := fmt.Sprintf(
				`INSERT INTO %s(pathway_id, protein_id) VALUES($1, $2)
				ON CONFLICT DO NOTHING`, s.b.MembershipTable)
			if _, err := tx.ExecContext(ctx, link, pathwayID, proteinID); err != nil {
				return fmt.Errorf("link %s to %s: %w", symbol, rec.Identifier, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
