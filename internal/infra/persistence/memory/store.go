// Package memory provides an in-memory implementation of the pathway store
// used for tests and ephemeral environments.
package memory

import (
	"compath/pkg/domain"
	"context"
	"sort"
	"strings"
	"sync"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain
// persistence interface.
var _ domain.Store = (*Store)(nil)

// Store keeps pathways, proteins, and their membership relation in maps.
// Substring search is case-sensitive on this backend.
type Store struct {
	mu sync.RWMutex
	// pathways by identifier
	pathways map[string]domain.Pathway
	// members: pathway identifier -> member symbol set
	members map[string]map[string]struct{}
	// pathwaysBySymbol: hgnc symbol -> pathway identifier set
	pathwaysBySymbol map[string]map[string]struct{}
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		pathways:         make(map[string]domain.Pathway),
		members:          make(map[string]map[string]struct{}),
		pathwaysBySymbol: make(map[string]map[string]struct{}),
	}
}

// Populate upserts the given records. A record seen twice for the same
// identifier replaces the pathway name and adds any new memberships.
func (s *Store) Populate(_ context.Context, records []domain.PathwayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.pathways[rec.Identifier] = domain.Pathway{Identifier: rec.Identifier, Name: rec.Name}
		if s.members[rec.Identifier] == nil {
			s.members[rec.Identifier] = make(map[string]struct{})
		}
		for _, symbol := range rec.Symbols {
			s.members[rec.Identifier][symbol] = struct{}{}
			if s.pathwaysBySymbol[symbol] == nil {
				s.pathwaysBySymbol[symbol] = make(map[string]struct{})
			}
			s.pathwaysBySymbol[symbol][rec.Identifier] = struct{}{}
		}
	}
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error { return nil }

// CountPathways returns the number of stored pathways.
func (s *Store) CountPathways(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.pathways)), nil
}

// PathwayByIdentifier resolves a pathway by its backend identifier.
func (s *Store) PathwayByIdentifier(_ context.Context, identifier string) (domain.Pathway, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pw, ok := s.pathways[identifier]
	return pw, ok, nil
}

// PathwayByName returns the first pathway with the exact name in identifier
// order. Names are not unique; collisions resolve deterministically.
func (s *Store) PathwayByName(_ context.Context, name string) (domain.Pathway, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.sortedIdentifiers() {
		if s.pathways[id].Name == name {
			return s.pathways[id], true, nil
		}
	}
	return domain.Pathway{}, false, nil
}

// ListPathways returns every pathway in identifier order.
func (s *Store) ListPathways(_ context.Context) ([]domain.Pathway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Pathway, 0, len(s.pathways))
	for _, id := range s.sortedIdentifiers() {
		out = append(out, s.pathways[id])
	}
	return out, nil
}

// SearchPathwaysByName returns pathways whose name contains the query
// substring, case-sensitively, in identifier order, truncated to limit when
// limit is positive.
func (s *Store) SearchPathwaysByName(_ context.Context, query string, limit int) ([]domain.Pathway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Pathway
	for _, id := range s.sortedIdentifiers() {
		if !strings.Contains(s.pathways[id].Name, query) {
			continue
		}
		out = append(out, s.pathways[id])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// PathwayMembers returns the member proteins of a pathway in symbol order.
func (s *Store) PathwayMembers(_ context.Context, identifier string) ([]domain.Protein, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	symbols := make([]string, 0, len(s.members[identifier]))
	for symbol := range s.members[identifier] {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	out := make([]domain.Protein, 0, len(symbols))
	for _, symbol := range symbols {
		out = append(out, domain.Protein{HGNCSymbol: symbol})
	}
	return out, nil
}

// ProteinsBySymbols returns stored proteins whose symbol is in the input set,
// in symbol order. Unknown symbols are silently absent.
func (s *Store) ProteinsBySymbols(_ context.Context, symbols []string) ([]domain.Protein, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(symbols))
	var matched []string
	for _, symbol := range symbols {
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		if _, ok := s.pathwaysBySymbol[symbol]; ok {
			matched = append(matched, symbol)
		}
	}
	sort.Strings(matched)
	out := make([]domain.Protein, 0, len(matched))
	for _, symbol := range matched {
		out = append(out, domain.Protein{HGNCSymbol: symbol})
	}
	return out, nil
}

// ProteinPathways returns the identifiers of every pathway the symbol belongs
// to, in identifier order.
func (s *Store) ProteinPathways(_ context.Context, symbol string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.pathwaysBySymbol[symbol]))
	for id := range s.pathwaysBySymbol[symbol] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// sortedIdentifiers must be called with the lock held.
func (s *Store) sortedIdentifiers() []string {
	ids := make([]string, 0, len(s.pathways))
	for id := range s.pathways {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
