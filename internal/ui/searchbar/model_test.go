package searchbar

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/facetline/internal/lookup"
	"github.com/abelbrown/facetline/internal/query"
	"github.com/abelbrown/facetline/internal/schema"
	"github.com/abelbrown/facetline/internal/suggest"
)

// scriptedSource returns a scripted page per call so tests can tell fetches
// apart.
type scriptedSource struct {
	calls int
	pages [][]suggest.Pair
	limit []int
}

func (s *scriptedSource) Lookup(ctx context.Context, relation string, req lookup.Request) ([]suggest.Pair, error) {
	page := s.pages[s.calls%len(s.pages)]
	s.calls++
	s.limit = append(s.limit, req.Limit)
	if len(page) > req.Limit {
		page = page[:req.Limit]
	}
	return page, nil
}

func barRegistry() *schema.Registry {
	return schema.NewRegistry([]schema.Field{
		{ID: "name", Label: "Name", Type: schema.Text},
		{ID: "status", Label: "Status", Type: schema.Selection, Options: []schema.Option{
			{Value: "open", Label: "Open"},
			{Value: "closed", Label: "Closed"},
		}},
		{ID: "owner", Label: "Owner", Type: schema.ManyToOne, Relation: "users"},
	})
}

func newTestBar(src lookup.Source) (Model, *query.Model) {
	search := query.New()
	m := New(barRegistry(), lookup.NewFetcher(src), search)
	m.SetWidth(80)
	return m, search
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd, Event) {
	return m.Update(tea.KeyMsg{Type: key})
}

// moveTo presses down until the focused item satisfies the predicate.
func moveTo(t *testing.T, m Model, match func(suggest.Item) bool) Model {
	t.Helper()
	for i := 0; i <= len(m.Items()); i++ {
		if item := m.Items()[m.Cursor()]; match(item) {
			return m
		}
		m, _, _ = press(m, tea.KeyDown)
	}
	t.Fatal("no matching item reachable")
	return m
}

// drain executes a command tree and returns every message it produces.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func childrenMsg(t *testing.T, cmd tea.Cmd) ChildrenLoadedMsg {
	t.Helper()
	for _, msg := range drain(cmd) {
		if loaded, ok := msg.(ChildrenLoadedMsg); ok {
			return loaded
		}
	}
	t.Fatal("no ChildrenLoadedMsg produced")
	return ChildrenLoadedMsg{}
}

func TestTypingCompilesSuggestions(t *testing.T) {
	m, _ := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})

	m = typeString(m, "op")
	if !m.Browsing() {
		t.Fatal("typing should open the suggestion list")
	}

	items := m.Items()
	// name leaf, status Open, owner parent, custom filter.
	if len(items) != 4 {
		t.Fatalf("got %d items: %+v", len(items), items)
	}
	if items[len(items)-1].Kind != suggest.KindCustomFilter {
		t.Error("custom filter must close the list")
	}
}

func TestCursorWrapsBothWays(t *testing.T) {
	m, _ := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})
	m = typeString(m, "op")
	n := len(m.Items())

	m, _, _ = press(m, tea.KeyUp)
	if m.Cursor() != n-1 {
		t.Errorf("up from first item should wrap to %d, got %d", n-1, m.Cursor())
	}
	m, _, _ = press(m, tea.KeyDown)
	if m.Cursor() != 0 {
		t.Errorf("down from last item should wrap to 0, got %d", m.Cursor())
	}
}

func TestEscapeResets(t *testing.T) {
	m, _ := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})
	m = typeString(m, "op")

	m, _, _ = press(m, tea.KeyEsc)
	if m.Browsing() || m.Query() != "" {
		t.Error("escape must clear the query and the suggestion list")
	}
}

func TestEnterCommitsFacet(t *testing.T) {
	m, search := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})
	m = typeString(m, "op")
	m = moveTo(t, m, func(i suggest.Item) bool { return i.FieldID == "status" })

	m, _, ev := press(m, tea.KeyEnter)
	if ev != EventFacetsChanged {
		t.Fatalf("event = %v, want EventFacetsChanged", ev)
	}

	facets := search.Facets()
	if len(facets) != 1 {
		t.Fatalf("got %d facets", len(facets))
	}
	f := facets[0]
	if f.FieldID != "status" || f.Operator != schema.OpEquals || f.Value != "open" {
		t.Errorf("facet = %+v", f)
	}
	if f.Label != "Status: Open" {
		t.Errorf("facet label = %q", f.Label)
	}
	if m.Query() != "" || m.Browsing() {
		t.Error("commit must reset the bar to idle")
	}
}

func TestEnterOnEmptyQueryRequestsSearch(t *testing.T) {
	m, _ := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})
	_, _, ev := press(m, tea.KeyEnter)
	if ev != EventSearch {
		t.Errorf("event = %v, want EventSearch", ev)
	}
}

func TestCustomFilterEscapeHatch(t *testing.T) {
	m, _ := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})
	m = typeString(m, "op")
	m = moveTo(t, m, func(i suggest.Item) bool { return i.Kind == suggest.KindCustomFilter })

	m, _, ev := press(m, tea.KeyEnter)
	if ev != EventCustomFilter {
		t.Errorf("event = %v, want EventCustomFilter", ev)
	}
	if m.Browsing() {
		t.Error("custom filter selection must reset the bar")
	}
}

func TestExpandFetchesChildren(t *testing.T) {
	src := &scriptedSource{pages: [][]suggest.Pair{
		{{Value: "7", Label: "Alice Smith"}},
	}}
	m, _ := newTestBar(src)
	m = typeString(m, "ali")
	m = moveTo(t, m, func(i suggest.Item) bool { return i.Kind == suggest.KindParent })

	m, cmd, _ := press(m, tea.KeyRight)
	if cmd == nil {
		t.Fatal("expanding a reference field must dispatch a fetch")
	}

	// While in flight the list shows a loading row.
	loading := false
	for _, item := range m.Items() {
		if item.Kind == suggest.KindLoading {
			loading = true
		}
	}
	if !loading {
		t.Error("expected a loading row before the fetch resolves")
	}

	m, _, _ = m.Update(childrenMsg(t, cmd))

	var child *suggest.Item
	for i, item := range m.Items() {
		if item.Kind == suggest.KindChild {
			child = &m.Items()[i]
		}
		if item.Kind == suggest.KindLoading {
			t.Error("loading row must clear after commit")
		}
	}
	if child == nil || child.Label != "Alice Smith" {
		t.Fatalf("child = %+v", child)
	}
}

func TestStaleChildResponseDropped(t *testing.T) {
	src := &scriptedSource{pages: [][]suggest.Pair{
		{{Value: "1", Label: "Stale Row"}},
		{{Value: "7", Label: "Alice Smith"}},
	}}
	m, _ := newTestBar(src)
	m = typeString(m, "ali")
	m = moveTo(t, m, func(i suggest.Item) bool { return i.Kind == suggest.KindParent })

	m, cmd1, _ := press(m, tea.KeyRight)
	first := childrenMsg(t, cmd1)

	// Collapse and re-expand: the second fetch supersedes the first.
	m, _, _ = press(m, tea.KeyLeft)
	time.Sleep(expandRepeatWindow + 10*time.Millisecond)
	m, cmd2, _ := press(m, tea.KeyRight)
	second := childrenMsg(t, cmd2)

	// The superseded response arrives last-minus-one; it must not land.
	m, _, _ = m.Update(first)
	for _, item := range m.Items() {
		if item.Kind == suggest.KindChild {
			t.Fatalf("stale page leaked into the list: %+v", item)
		}
	}

	m, _, _ = m.Update(second)
	found := false
	for _, item := range m.Items() {
		if item.Kind == suggest.KindChild && item.Label == "Alice Smith" {
			found = true
		}
		if item.Kind == suggest.KindChild && item.Label == "Stale Row" {
			t.Error("stale row present after the fresh commit")
		}
	}
	if !found {
		t.Error("fresh page did not land")
	}
}

func TestRightKeyRepeatDoesNotRefetch(t *testing.T) {
	src := &scriptedSource{pages: [][]suggest.Pair{
		{{Value: "7", Label: "Alice Smith"}},
	}}
	m, _ := newTestBar(src)
	m = typeString(m, "ali")
	m = moveTo(t, m, func(i suggest.Item) bool { return i.Kind == suggest.KindParent })

	m, cmd, _ := press(m, tea.KeyRight)
	if cmd == nil {
		t.Fatal("first press should expand")
	}
	m, _, _ = press(m, tea.KeyLeft) // collapse again

	// A press inside the repeat window is a held key, not a fresh intent.
	m, cmd, _ = press(m, tea.KeyRight)
	if cmd != nil {
		t.Error("repeat press must not dispatch another fetch")
	}
	for _, item := range m.Items() {
		if item.Kind == suggest.KindParent && item.Expanded {
			t.Error("repeat press must not expand")
		}
	}
}

func TestLoadMoreGrowsLimit(t *testing.T) {
	// First fetch fills the probe entirely so HasMore is set; the load-more
	// entry then refetches with a grown limit.
	full := make([]suggest.Pair, 0, suggest.DefaultLimit+1)
	for i := 0; i < suggest.DefaultLimit+1; i++ {
		full = append(full, suggest.Pair{Value: fmt.Sprintf("%d", i), Label: fmt.Sprintf("User %02d", i)})
	}
	src := &scriptedSource{pages: [][]suggest.Pair{full}}
	m, _ := newTestBar(src)
	m = typeString(m, "u")
	m = moveTo(t, m, func(i suggest.Item) bool { return i.Kind == suggest.KindParent })

	m, cmd, _ := press(m, tea.KeyRight)
	m, _, _ = m.Update(childrenMsg(t, cmd))

	m = moveTo(t, m, func(i suggest.Item) bool { return i.Kind == suggest.KindLoadMore })
	m, cmd, _ = press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("load more must dispatch a refetch")
	}
	m, _, _ = m.Update(childrenMsg(t, cmd))

	if len(src.limit) != 2 {
		t.Fatalf("expected 2 fetches, got %d", len(src.limit))
	}
	if src.limit[1] != suggest.DefaultLimit+suggest.LimitStep+1 {
		t.Errorf("second probe limit = %d, want %d", src.limit[1], suggest.DefaultLimit+suggest.LimitStep+1)
	}
}

func TestLeftEntersChipZone(t *testing.T) {
	m, search := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})
	search.AddFilterValue("status", "", "Status: Open", "=", "open")
	search.AddFilterValue("name", "", "Name contains x", "ilike", "x")

	// Input is empty and at position 0: left moves into the chips.
	m, _, _ = press(m, tea.KeyLeft)

	// Backspace removes the focused (last) chip.
	m, _, ev := press(m, tea.KeyBackspace)
	if ev != EventFacetsChanged {
		t.Fatalf("event = %v, want EventFacetsChanged", ev)
	}
	facets := search.Facets()
	if len(facets) != 1 || facets[0].FieldID != "status" {
		t.Errorf("facets after chip delete = %+v", facets)
	}
}

func TestChipNavigationReturnsToInput(t *testing.T) {
	m, search := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})
	search.AddFilterValue("status", "", "Status: Open", "=", "open")

	m, _, _ = press(m, tea.KeyLeft)  // into chips
	m, _, _ = press(m, tea.KeyRight) // past the last chip, back to input

	// Typing should work again and compile suggestions.
	m = typeString(m, "op")
	if !m.Browsing() {
		t.Error("focus did not return to the input")
	}
}

func TestQueryChangeRefetchesExpandedParent(t *testing.T) {
	src := &scriptedSource{pages: [][]suggest.Pair{
		{{Value: "7", Label: "Alice Smith"}},
		{{Value: "9", Label: "Alexi Stone"}},
	}}
	m, _ := newTestBar(src)
	m = typeString(m, "ali")
	m = moveTo(t, m, func(i suggest.Item) bool { return i.Kind == suggest.KindParent })
	m, cmd, _ := press(m, tea.KeyRight)
	m, _, _ = m.Update(childrenMsg(t, cmd))

	// Narrowing the query drops the old page and re-issues the fetch for the
	// still-expanded parent; the stale children never reappear.
	m, cmd, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd == nil {
		t.Fatal("query change over an expanded parent must dispatch a refetch")
	}

	loading := false
	for _, item := range m.Items() {
		if item.Kind == suggest.KindChild {
			t.Errorf("child for a stale query still showing: %+v", item)
		}
		if item.Kind == suggest.KindLoading {
			loading = true
		}
	}
	if !loading {
		t.Error("expected a loading row while the refetch is in flight")
	}

	loaded := childrenMsg(t, cmd)
	if loaded.Query != "alix" {
		t.Errorf("refetch query = %q, want alix", loaded.Query)
	}
	m, _, _ = m.Update(loaded)

	found := false
	for _, item := range m.Items() {
		if item.Kind == suggest.KindChild {
			if item.Label != "Alexi Stone" {
				t.Errorf("unexpected child after refetch: %+v", item)
			}
			found = true
		}
	}
	if !found {
		t.Error("refetched children did not splice under the parent")
	}
	if src.calls != 2 {
		t.Errorf("lookup calls = %d, want 2", src.calls)
	}
}

func TestQueryChangeWithoutExpansionDoesNotFetch(t *testing.T) {
	src := &scriptedSource{pages: [][]suggest.Pair{nil}}
	m, _ := newTestBar(src)

	m = typeString(m, "ali")
	if src.calls != 0 {
		t.Errorf("typing with nothing expanded issued %d lookups", src.calls)
	}
}

func TestOutsideClickUsesBarOffset(t *testing.T) {
	m, _ := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})
	m.SetTopOffset(1)
	m = typeString(m, "op")

	// The bar's last row sits at Y = offset + Height - 1.
	inside := tea.MouseMsg{Action: tea.MouseActionPress, Y: m.Height()}
	m, _, _ = m.Update(inside)
	if !m.Browsing() {
		t.Fatal("click on the bar's last row must not reset")
	}

	header := tea.MouseMsg{Action: tea.MouseActionPress, Y: 0}
	m, _, _ = m.Update(header)
	if m.Browsing() {
		t.Error("click on the host header above the bar must reset")
	}
}

func TestOutsideClickBelowBarResets(t *testing.T) {
	m, _ := newTestBar(&scriptedSource{pages: [][]suggest.Pair{nil}})
	m.SetTopOffset(1)
	m = typeString(m, "op")

	below := tea.MouseMsg{Action: tea.MouseActionPress, Y: 1 + m.Height()}
	m, _, _ = m.Update(below)
	if m.Browsing() {
		t.Error("click below the bar must reset")
	}
	if m.Focused() {
		t.Error("click below the bar must blur the input")
	}
}
