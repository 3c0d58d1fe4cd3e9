package suggest

// Pagination defaults for child expansion.
const (
	DefaultLimit = 8
	LimitStep    = 8
)

// ChildPage is one cached expansion result for a (field, query) pair.
// HasMore means the lookup returned limit+1 rows and the extra was dropped.
type ChildPage struct {
	Pairs   []Pair
	HasMore bool
}

type cacheKey struct {
	fieldID string
	query   string
}

// Session holds all mutable per-field search-bar state: which parents are
// expanded, the page limit each field has grown to, in-flight markers, the
// expansion cache, and the fetch generation table used for the keep-last
// discipline. One Session lives per search-bar instance; every lookup is an
// explicit method call, there is no package-level state.
//
// A Session is confined to the UI update loop and is not safe for concurrent
// use.
type Session struct {
	expanded map[string]bool
	loading  map[string]bool
	limits   map[string]int
	cache    map[cacheKey]ChildPage
	gens     map[string]uint64
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		expanded: make(map[string]bool),
		loading:  make(map[string]bool),
		limits:   make(map[string]int),
		cache:    make(map[cacheKey]ChildPage),
		gens:     make(map[string]uint64),
	}
}

// Expand marks a parent field expanded.
func (s *Session) Expand(fieldID string) {
	s.expanded[fieldID] = true
}

// Collapse marks a parent field collapsed.
func (s *Session) Collapse(fieldID string) {
	delete(s.expanded, fieldID)
	delete(s.loading, fieldID)
}

// IsExpanded reports whether a parent field is expanded.
func (s *Session) IsExpanded(fieldID string) bool {
	return s.expanded[fieldID]
}

// SetLoading marks a field's child fetch as in flight.
func (s *Session) SetLoading(fieldID string, v bool) {
	if v {
		s.loading[fieldID] = true
	} else {
		delete(s.loading, fieldID)
	}
}

// IsLoading reports whether a child fetch is in flight for the field.
func (s *Session) IsLoading(fieldID string) bool {
	return s.loading[fieldID]
}

// Limit returns the field's current page limit.
func (s *Session) Limit(fieldID string) int {
	if n, ok := s.limits[fieldID]; ok {
		return n
	}
	return DefaultLimit
}

// GrowLimit bumps the field's page limit by LimitStep and returns the new
// value. Invoked by the "load more" row.
func (s *Session) GrowLimit(fieldID string) int {
	n := s.Limit(fieldID) + LimitStep
	s.limits[fieldID] = n
	return n
}

// StoreChildren caches an expansion result for (field, query).
func (s *Session) StoreChildren(fieldID, query string, page ChildPage) {
	s.cache[cacheKey{fieldID, query}] = page
}

// Children returns the cached expansion for (field, query), if any.
func (s *Session) Children(fieldID, query string) (ChildPage, bool) {
	page, ok := s.cache[cacheKey{fieldID, query}]
	return page, ok
}

// InvalidateOtherQueries drops every cached page whose query differs from
// the current one. Called when the free-text query changes so a stale page
// can never be spliced under a parent.
func (s *Session) InvalidateOtherQueries(query string) {
	for key := range s.cache {
		if key.query != query {
			delete(s.cache, key)
		}
	}
}

// InvalidateField drops the field's cached pages regardless of query.
// Used by "load more", which must re-fetch with the grown limit.
func (s *Session) InvalidateField(fieldID string) {
	for key := range s.cache {
		if key.fieldID == fieldID {
			delete(s.cache, key)
		}
	}
}

// NextGeneration issues a new fetch generation for the field. The returned
// value identifies one fetch; a response commits only while it is still the
// latest issued generation.
func (s *Session) NextGeneration(fieldID string) uint64 {
	s.gens[fieldID]++
	return s.gens[fieldID]
}

// CurrentGeneration returns the latest issued generation for the field.
func (s *Session) CurrentGeneration(fieldID string) uint64 {
	return s.gens[fieldID]
}

// Reset clears all expansion, loading, limit, and cache state. Generations
// survive so a response from before the reset still fails its check.
func (s *Session) Reset() {
	s.expanded = make(map[string]bool)
	s.loading = make(map[string]bool)
	s.limits = make(map[string]int)
	s.cache = make(map[cacheKey]ChildPage)
}
