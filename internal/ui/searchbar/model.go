// Package searchbar implements the keyboard-driven search bar: a text input
// that compiles its query into typed suggestions, expands reference fields
// into fetched records, and commits accepted suggestions as facet chips.
package searchbar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/facetline/internal/lookup"
	"github.com/abelbrown/facetline/internal/query"
	"github.com/abelbrown/facetline/internal/schema"
	"github.com/abelbrown/facetline/internal/suggest"
)

// Event tells the host model what the search bar just did.
type Event int

const (
	// EventNone: nothing the host needs to act on.
	EventNone Event = iota
	// EventFacetsChanged: a facet was committed or removed.
	EventFacetsChanged
	// EventSearch: enter on an empty query requested a full-text search.
	EventSearch
	// EventCustomFilter: the "add custom filter" escape hatch was chosen.
	EventCustomFilter
)

// ChildrenLoadedMsg carries a completed child fetch back into the update
// loop. Gen is compared against the session's latest generation for the
// field; stale responses are dropped without effect.
type ChildrenLoadedMsg struct {
	FieldID string
	Query   string
	Gen     uint64
	Page    suggest.ChildPage
}

// focusZone says where keyboard focus currently lives.
type focusZone int

const (
	zoneInput focusZone = iota
	zoneChips           // navigating the activated facet chips
)

// Holding the right arrow must not re-trigger expansion fetches; presses
// landing inside this window of the previous one are treated as key repeat.
const expandRepeatWindow = 250 * time.Millisecond

const maxVisibleItems = 10

// Model is the search bar component.
type Model struct {
	input   textinput.Model
	spin    spinner.Model
	reg     *schema.Registry
	session *suggest.Session
	fetcher *lookup.Fetcher
	search  *query.Model

	items      []suggest.Item
	cursor     int
	zone       focusZone
	chipCursor int

	width       int
	topOffset   int
	lastRightAt time.Time
}

// New creates a search bar over the given registry, fetcher, and shared
// search model.
func New(reg *schema.Registry, fetcher *lookup.Fetcher, search *query.Model) Model {
	ti := textinput.New()
	ti.Placeholder = "Search…"
	ti.Prompt = "⌕ "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 128
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = promptStyle

	return Model{
		input:   ti,
		spin:    sp,
		reg:     reg,
		session: suggest.NewSession(),
		fetcher: fetcher,
		search:  search,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetWidth sets the bar width.
func (m *Model) SetWidth(w int) {
	m.width = w
	m.input.Width = w - 6
}

// SetTopOffset tells the bar how many rows the host renders above it, so
// mouse coordinates can be mapped onto the bar's own bounds.
func (m *Model) SetTopOffset(rows int) {
	m.topOffset = rows
}

// Query returns the current free-text query.
func (m Model) Query() string {
	return m.input.Value()
}

// Focused reports whether the text input has keyboard focus. An outside
// click blurs it; Focus restores it.
func (m Model) Focused() bool {
	return m.input.Focused()
}

// Focus returns focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.zone = zoneInput
	return m.input.Focus()
}

// Browsing reports whether a suggestion list is showing.
func (m Model) Browsing() bool {
	return len(m.items) > 0
}

// Items returns the current flattened suggestion list.
func (m Model) Items() []suggest.Item {
	return m.items
}

// Cursor returns the focused index into the flattened item list.
func (m Model) Cursor() int {
	return m.cursor
}

// Update handles messages. The returned Event tells the host what happened.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd, Event) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		// Click outside the bar resets to idle without refocusing the input,
		// unlike escape which keeps focus for further typing.
		if msg.Action == tea.MouseActionPress && (msg.Y < m.topOffset || msg.Y >= m.topOffset+m.Height()) {
			m.reset()
			m.input.Blur()
			return m, nil, EventNone
		}
		return m, nil, EventNone

	case ChildrenLoadedMsg:
		if lookup.Commit(m.session, msg.FieldID, msg.Query, msg.Gen, msg.Page) {
			m.recompile()
		}
		return m, nil, EventNone

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd, EventNone
	}

	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, Event) {
	if m.zone == zoneChips {
		return m.handleChipKey(msg)
	}

	switch msg.String() {
	case "esc":
		m.reset()
		return m, nil, EventNone

	case "up":
		if n := len(m.items); n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
		return m, nil, EventNone

	case "down":
		if n := len(m.items); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
		return m, nil, EventNone

	case "right":
		return m.handleRight()

	case "left":
		return m.handleLeft(msg)

	case "enter":
		return m.handleEnter()
	}

	return m.updateInput(msg)
}

// handleRight expands a collapsed parent under the cursor. Key repeat is
// suppressed so holding the arrow cannot fire a fetch per repeat event.
func (m Model) handleRight() (Model, tea.Cmd, Event) {
	now := time.Now()
	held := now.Sub(m.lastRightAt) < expandRepeatWindow
	m.lastRightAt = now

	item, ok := m.focusedItem()
	if !ok || item.Kind != suggest.KindParent || item.Expanded {
		// Not an expandable row: the key moves the text cursor as usual.
		return m.updateInput(keyRight())
	}
	if held {
		return m, nil, EventNone
	}
	return m.expand(item.FieldID)
}

func (m Model) handleLeft(msg tea.KeyMsg) (Model, tea.Cmd, Event) {
	if item, ok := m.focusedItem(); ok && item.Kind == suggest.KindParent && item.Expanded {
		m.session.Collapse(item.FieldID)
		m.recompile()
		return m, nil, EventNone
	}

	if m.input.Position() == 0 && m.search.Len() > 0 {
		m.zone = zoneChips
		m.chipCursor = m.search.Len() - 1
		m.input.Blur()
		return m, nil, EventNone
	}

	return m.updateInput(msg)
}

// handleChipKey navigates the activated facet chips.
func (m Model) handleChipKey(msg tea.KeyMsg) (Model, tea.Cmd, Event) {
	switch msg.String() {
	case "left":
		if m.chipCursor > 0 {
			m.chipCursor--
		}

	case "right":
		m.chipCursor++
		if m.chipCursor >= m.search.Len() {
			m.focusInput()
		}

	case "backspace", "delete":
		facets := m.search.Facets()
		if m.chipCursor >= 0 && m.chipCursor < len(facets) {
			m.search.DeactivateFacet(facets[m.chipCursor].ID)
		}
		m.focusInput()
		return m, nil, EventFacetsChanged

	case "esc":
		m.reset()
		m.focusInput()

	case "enter":
		m.focusInput()
	}
	return m, nil, EventNone
}

func (m Model) handleEnter() (Model, tea.Cmd, Event) {
	text, _ := suggest.ParseQuery(m.input.Value())
	if text == "" {
		// Empty query commits an immediate full-text search.
		return m, nil, EventSearch
	}

	item, ok := m.focusedItem()
	if !ok {
		return m, nil, EventNone
	}

	switch item.Kind {
	case suggest.KindCustomFilter:
		m.reset()
		return m, nil, EventCustomFilter

	case suggest.KindLoadMore:
		m.session.GrowLimit(item.FieldID)
		m.session.InvalidateField(item.FieldID)
		return m.expand(item.FieldID)

	case suggest.KindNoResults, suggest.KindLoading:
		return m, nil, EventNone

	default:
		m.commitFacet(item)
		m.reset()
		return m, nil, EventFacetsChanged
	}
}

// expand marks the field expanded and, for reference fields, dispatches the
// child fetch as a command. Properties fields expand synchronously.
func (m Model) expand(fieldID string) (Model, tea.Cmd, Event) {
	field, ok := m.reg.Get(fieldID)
	if !ok {
		return m, nil, EventNone
	}

	m.session.Expand(fieldID)

	if field.Type == schema.Properties {
		m.recompile()
		return m, nil, EventNone
	}

	text, exact := suggest.ParseQuery(m.input.Value())
	if _, cached := m.session.Children(fieldID, text); cached {
		m.recompile()
		return m, nil, EventNone
	}

	fetch := m.fetchChildren(field, text, exact)
	m.recompile()
	return m, tea.Batch(fetch, m.spin.Tick), EventNone
}

// fetchChildren issues the field's fetch generation and returns the async
// lookup command. The generation is captured before the command runs so the
// commit check compares against the moment of dispatch.
func (m Model) fetchChildren(field schema.Field, text string, exact bool) tea.Cmd {
	gen := lookup.Begin(m.session, field.ID)
	limit := m.session.Limit(field.ID)
	fetcher := m.fetcher
	fieldID := field.ID

	return func() tea.Msg {
		page := fetcher.Fetch(context.Background(), field, text, exact, limit)
		return ChildrenLoadedMsg{FieldID: fieldID, Query: text, Gen: gen, Page: page}
	}
}

// refetchExpanded re-issues child fetches for reference fields left expanded
// across a query change, where the (field, query) page is no longer cached.
// Without this the parent would sit expanded with neither children nor a
// loading row until collapsed by hand.
func (m Model) refetchExpanded(text string, exact bool) tea.Cmd {
	if text == "" {
		return nil
	}
	var cmds []tea.Cmd
	for _, field := range m.reg.Fields() {
		if !field.CanExpand() || field.Type == schema.Properties {
			continue
		}
		if !m.session.IsExpanded(field.ID) {
			continue
		}
		if _, cached := m.session.Children(field.ID, text); cached {
			continue
		}
		cmds = append(cmds, m.fetchChildren(field, text, exact))
	}
	if len(cmds) == 0 {
		return nil
	}
	cmds = append(cmds, m.spin.Tick)
	return tea.Batch(cmds...)
}

// commitFacet activates the focused item on the shared search model.
func (m *Model) commitFacet(item suggest.Item) {
	field, ok := m.reg.Get(item.FieldID)
	if !ok {
		return
	}

	label := item.Label
	if item.Kind == suggest.KindChild && item.SubFieldID == "" {
		label = fmt.Sprintf("%s: %s", field.Label, item.Label)
	}
	m.search.AddFilterValue(item.FieldID, item.SubFieldID, label, item.Operator, item.Value)
}

// updateInput forwards a message to the text input and recompiles when the
// query changed.
func (m Model) updateInput(msg tea.Msg) (Model, tea.Cmd, Event) {
	oldValue := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != oldValue {
		text, exact := suggest.ParseQuery(m.input.Value())
		m.session.InvalidateOtherQueries(text)
		if refetch := m.refetchExpanded(text, exact); refetch != nil {
			cmd = tea.Batch(cmd, refetch)
		}
		m.recompile()
	}
	return m, cmd, EventNone
}

func (m *Model) recompile() {
	m.items = suggest.Compile(m.reg, m.session, m.input.Value())
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m *Model) reset() {
	m.input.SetValue("")
	m.session.Reset()
	m.items = nil
	m.cursor = 0
	m.zone = zoneInput
}

func (m *Model) focusInput() {
	m.zone = zoneInput
	m.input.Focus()
}

func (m Model) focusedItem() (suggest.Item, bool) {
	if m.cursor >= 0 && m.cursor < len(m.items) {
		return m.items[m.cursor], true
	}
	return suggest.Item{}, false
}

// keyRight synthesizes the right-arrow key for the text input.
func keyRight() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRight}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Height returns the number of terminal rows the bar currently occupies,
// used by the host to detect outside clicks.
func (m Model) Height() int {
	h := 2 // chips row + input row
	if n := len(m.items); n > 0 {
		h += min(n, maxVisibleItems) + 1 // divider
		if n > maxVisibleItems {
			h++ // overflow indicator
		}
	}
	return h
}

// View renders the chips row, the input, and the suggestion dropdown.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderChips())
	b.WriteString("\n")
	b.WriteString(m.input.View())

	if len(m.items) > 0 {
		b.WriteString("\n")
		dividerWidth := max(0, m.width-4)
		b.WriteString(dividerStyle.Render(strings.Repeat("─", dividerWidth)))
		b.WriteString("\n")
		b.WriteString(m.renderItems())
	}

	return b.String()
}

func (m Model) renderChips() string {
	facets := m.search.Facets()
	if len(facets) == 0 {
		return chipHintStyle.Render("  no active filters")
	}

	parts := make([]string, 0, len(facets))
	for i, f := range facets {
		style := chipStyle
		if m.zone == zoneChips && i == m.chipCursor {
			style = chipFocusedStyle
		}
		parts = append(parts, style.Render(f.Label))
	}
	return "  " + strings.Join(parts, " ")
}

func (m Model) renderItems() string {
	visible := min(len(m.items), maxVisibleItems)

	// Scroll to keep the cursor visible.
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.items))

	var b strings.Builder
	for i := start; i < end; i++ {
		item := m.items[i]
		line := m.renderItem(item, i == m.cursor && m.zone == zoneInput)
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if end < len(m.items) {
		b.WriteString("\n")
		b.WriteString(chipHintStyle.Render("  ↓ more below"))
	}
	return b.String()
}

func (m Model) renderItem(item suggest.Item, focused bool) string {
	var prefix string
	switch item.Kind {
	case suggest.KindParent:
		if item.Expanded {
			prefix = "▾ "
		} else {
			prefix = "▸ "
		}
	case suggest.KindChild:
		prefix = "   · "
	case suggest.KindLoadMore:
		prefix = "   "
	case suggest.KindLoading:
		return "   " + m.spin.View() + loadingStyle.Render(item.Label)
	case suggest.KindNoResults:
		return "   " + mutedStyle.Render(item.Label)
	case suggest.KindCustomFilter:
		prefix = "+ "
	default:
		prefix = "  "
	}

	style := itemStyle
	if focused {
		style = focusedItemStyle
	}
	if !item.Selectable {
		style = mutedStyle
	}
	return style.Render(prefix + item.Label)
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#58a6ff")).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c9d1d9")).
			Padding(0, 1)

	focusedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#58a6ff")).
				Background(lipgloss.Color("#21262d")).
				Bold(true).
				Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#484f58")).
			Padding(0, 1)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e"))

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#30363d"))

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c9d1d9")).
			Background(lipgloss.Color("#21262d")).
			Padding(0, 1)

	chipFocusedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0d1117")).
				Background(lipgloss.Color("#58a6ff")).
				Bold(true).
				Padding(0, 1)

	chipHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#484f58"))
)
