package lookup

import (
	"context"

	"github.com/abelbrown/facetline/internal/logging"
	"github.com/abelbrown/facetline/internal/schema"
	"github.com/abelbrown/facetline/internal/suggest"
)

// Fetcher resolves child suggestions for expandable fields. It never returns
// an error: a failed lookup degrades to a broader one, and a failed broad
// lookup degrades to an empty page. The UI shows at most a "(no results)"
// placeholder.
type Fetcher struct {
	source Source
}

// NewFetcher creates a Fetcher over the given source.
func NewFetcher(source Source) *Fetcher {
	return &Fetcher{source: source}
}

// Fetch resolves up to limit children for the field at the given query.
// It probes for limit+1 rows; if exactly limit+1 come back the extra row is
// dropped and HasMore is set so the compiler appends a "load more" entry.
func (f *Fetcher) Fetch(ctx context.Context, field schema.Field, query string, exact bool, limit int) suggest.ChildPage {
	if limit <= 0 {
		limit = suggest.DefaultLimit
	}
	req := Request{
		Query:  query,
		Exact:  exact,
		Domain: field.Domain,
		Limit:  limit + 1,
	}

	pairs, err := f.source.Lookup(ctx, field.Relation, req)
	if err != nil && field.Domain != "" {
		// A misconfigured domain must not surface as an error; retry the
		// lookup unrestricted.
		logging.Warn("lookup failed, retrying without domain",
			"field", field.ID, "relation", field.Relation, "error", err)
		req.Domain = ""
		pairs, err = f.source.Lookup(ctx, field.Relation, req)
	}
	if err != nil {
		logging.Warn("lookup failed",
			"field", field.ID, "relation", field.Relation, "error", err)
		return suggest.ChildPage{}
	}

	page := suggest.ChildPage{Pairs: pairs}
	if len(pairs) > limit {
		page.Pairs = pairs[:limit]
		page.HasMore = true
	}
	return page
}

// Commit applies a fetched page to the session if and only if gen is still
// the latest generation issued for the field. This is the sole keep-last
// check: superseded responses are dropped here, silently, at the
// task-completion boundary. Returns whether the page was committed.
func Commit(session *suggest.Session, fieldID, query string, gen uint64, page suggest.ChildPage) bool {
	if gen != session.CurrentGeneration(fieldID) {
		return false
	}
	session.SetLoading(fieldID, false)
	session.StoreChildren(fieldID, query, page)
	return true
}

// Begin registers a new fetch for the field: issues its generation and marks
// the field loading. The returned generation must be carried through to
// Commit unchanged.
func Begin(session *suggest.Session, fieldID string) uint64 {
	session.SetLoading(fieldID, true)
	return session.NextGeneration(fieldID)
}
