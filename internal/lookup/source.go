// Package lookup resolves the concrete records an expandable field's
// relation matches, and enforces the keep-last discipline that protects the
// expansion cache from stale responses.
package lookup

import (
	"context"

	"github.com/abelbrown/facetline/internal/suggest"
)

// Request describes one name lookup against a relation.
type Request struct {
	Query  string
	Exact  bool   // equality match instead of containment
	Domain string // optional relation-specific restriction
	Limit  int
}

// Source answers name lookups for a relation, returning (identifier, label)
// pairs ordered stably so a grown limit always returns the previous page as
// a prefix.
type Source interface {
	Lookup(ctx context.Context, relation string, req Request) ([]suggest.Pair, error)
}
