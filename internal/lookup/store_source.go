package lookup

import (
	"context"

	"github.com/abelbrown/facetline/internal/store"
	"github.com/abelbrown/facetline/internal/suggest"
)

// StoreSource answers name lookups from the local SQLite catalog.
type StoreSource struct {
	store *store.Store
}

// NewStoreSource creates a StoreSource over the given store.
func NewStoreSource(st *store.Store) *StoreSource {
	return &StoreSource{store: st}
}

// Lookup implements Source.
func (s *StoreSource) Lookup(ctx context.Context, relation string, req Request) ([]suggest.Pair, error) {
	refs, err := s.store.NameSearch(ctx, relation, req.Query, req.Exact, req.Domain, req.Limit)
	if err != nil {
		return nil, err
	}
	pairs := make([]suggest.Pair, len(refs))
	for i, ref := range refs {
		pairs[i] = suggest.Pair{Value: ref.ID, Label: ref.Label}
	}
	return pairs, nil
}
