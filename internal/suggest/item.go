// Package suggest compiles a free-text query against the declared searchable
// fields into the ordered suggestion list the search bar renders. Compilation
// is synchronous and deterministic; fetched children enter through the
// session's expansion cache, never through the compiler itself.
package suggest

// Kind discriminates the rows a compiled suggestion list can contain.
type Kind int

const (
	// KindField is a leaf suggestion for a parsed or matched field value.
	KindField Kind = iota
	// KindParent is an expandable suggestion for a reference or properties field.
	KindParent
	// KindChild is a fetched record spliced under an expanded parent.
	KindChild
	// KindLoadMore re-fetches its field with a grown page limit.
	KindLoadMore
	// KindNoResults is an inert placeholder for an empty expansion.
	KindNoResults
	// KindLoading is an inert placeholder while children are in flight.
	KindLoading
	// KindCustomFilter escapes to the full filter-builder dialog.
	KindCustomFilter
)

// Item is one candidate row in the suggestion dropdown. Items are rebuilt
// from scratch on every keystroke and expansion toggle; they are never
// persisted.
type Item struct {
	Kind       Kind
	FieldID    string
	SubFieldID string // set for properties sub-field suggestions
	Label      string
	Operator   string
	Value      any
	Expanded   bool // parents only
	Selectable bool
}

// Pair is one (identifier, label) row returned by a name lookup.
type Pair struct {
	Value string
	Label string
}

// Labels for synthetic rows.
const (
	labelLoadMore     = "Load more…"
	labelNoResults    = "(no results)"
	labelLoading      = "Loading…"
	labelCustomFilter = "Add custom filter…"
)
