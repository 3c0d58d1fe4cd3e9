// Package app wires the search bar, results list, catalog store, and shared
// search model into the root Bubble Tea program.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/facetline/internal/config"
	"github.com/abelbrown/facetline/internal/logging"
	"github.com/abelbrown/facetline/internal/lookup"
	"github.com/abelbrown/facetline/internal/query"
	"github.com/abelbrown/facetline/internal/schema"
	"github.com/abelbrown/facetline/internal/store"
	"github.com/abelbrown/facetline/internal/ui/results"
	"github.com/abelbrown/facetline/internal/ui/searchbar"
)

// View mode
type viewMode int

const (
	modeSearch viewMode = iota
	modeFilterDialog
)

// Model is the root Bubble Tea model
type Model struct {
	bar     searchbar.Model
	results results.Model
	search  *query.Model
	store   *store.Store
	reg     *schema.Registry
	config  *config.Config

	filterInput textinput.Model

	width     int
	height    int
	err       error
	mode      viewMode
	statusMsg string
}

// New creates a new app model
func New() Model {
	// Load configuration. Load always returns a usable config, falling back
	// to defaults when the file is missing or unreadable.
	cfg, err := config.Load()
	if err != nil {
		logging.Warn("Failed to read config, using defaults", "error", err)
	}
	cfg.Save() // Persist defaults on first run

	reg, err := cfg.Registry()
	if err != nil {
		logging.Error("Invalid field configuration", "error", err)
		reg = schema.NewRegistry(nil)
	}

	// Initialize store
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".facetline", "catalog.db")
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	st, err := store.Open(dbPath)
	if err != nil {
		logging.Error("Failed to open catalog", "path", dbPath, "error", err)
		st = nil
	} else if count, _ := st.RecordCount(); count == 0 {
		// First run: give the user something to search
		if n, err := st.SeedDemo(); err == nil {
			logging.Info("Seeded demo catalog", "records", n)
		}
	}

	// Name lookups go to the local catalog unless a remote endpoint is
	// configured
	var source lookup.Source
	if cfg.Lookup.Endpoint != "" {
		source = lookup.NewHTTPSource(cfg.Lookup.Endpoint)
	} else if st != nil {
		source = lookup.NewStoreSource(st)
	}

	search := query.New()

	fi := textinput.New()
	fi.Placeholder = "field operator value  (e.g. status = open)"
	fi.Prompt = "filter: "
	fi.CharLimit = 128

	bar := searchbar.New(reg, lookup.NewFetcher(source), search)
	bar.SetTopOffset(1) // header row renders above the bar

	return Model{
		bar:         bar,
		results:     results.New(),
		search:      search,
		store:       st,
		reg:         reg,
		config:      cfg,
		filterInput: fi,
		mode:        modeSearch,
	}
}

// Init initializes the app
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bar.Init(), m.queryRecords())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == modeFilterDialog {
		return m.updateFilterDialog(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.store != nil {
				m.store.Close()
			}
			return m, tea.Quit

		case "q":
			// Only quits while the input is blurred (after an outside click);
			// a focused input owns the keystroke.
			if !m.bar.Focused() {
				if m.store != nil {
					m.store.Close()
				}
				return m, tea.Quit
			}

		case "/":
			if !m.bar.Focused() {
				return m, m.bar.Focus()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.SetWidth(msg.Width)
		m.layoutResults()
		return m, nil

	case RecordsLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
		} else {
			m.err = nil
			m.results.SetRecords(msg.Records)
			m.layoutResults()
		}
		return m, nil

	case scrollTickMsg:
		m.results.UpdateScroll()
		if m.results.IsScrolling() {
			return m, m.scrollTick()
		}
		return m, nil
	}

	// Everything else flows through the search bar first.
	var cmd tea.Cmd
	var event searchbar.Event
	m.bar, cmd, event = m.bar.Update(msg)

	switch event {
	case searchbar.EventFacetsChanged:
		m.layoutResults()
		return m, tea.Batch(cmd, m.queryRecords())

	case searchbar.EventSearch:
		freeText := m.bar.Query()
		if m.store != nil {
			if err := m.store.SaveSearch(freeText, m.search.Facets()); err != nil {
				logging.Warn("Failed to save search", "error", err)
			}
		}
		return m, tea.Batch(cmd, m.queryRecords())

	case searchbar.EventCustomFilter:
		m.mode = modeFilterDialog
		m.filterInput.SetValue("")
		m.filterInput.Focus()
		return m, tea.Batch(cmd, textinput.Blink)
	}

	// Results navigation when the bar is not showing suggestions.
	if key, ok := msg.(tea.KeyMsg); ok && !m.bar.Browsing() {
		switch key.String() {
		case "ctrl+n":
			m.results.MoveDown()
			return m, tea.Batch(cmd, m.scrollTick())
		case "ctrl+p":
			m.results.MoveUp()
			return m, tea.Batch(cmd, m.scrollTick())
		}
	}

	return m, cmd
}

// updateFilterDialog handles the minimal custom-filter prompt: a single
// "field operator value" line parsed into a facet.
func (m Model) updateFilterDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = modeSearch
			m.filterInput.Blur()
			return m, nil

		case "enter":
			m.mode = modeSearch
			m.filterInput.Blur()
			if err := m.applyCustomFilter(m.filterInput.Value()); err != nil {
				m.statusMsg = err.Error()
				return m, nil
			}
			m.statusMsg = ""
			m.layoutResults()
			return m, m.queryRecords()
		}
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// applyCustomFilter parses "field operator value" into a facet.
func (m *Model) applyCustomFilter(raw string) error {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) < 3 {
		return fmt.Errorf("expected: <field> <operator> <value>")
	}
	fieldID, operator := parts[0], parts[1]
	value := strings.Join(parts[2:], " ")

	field, ok := m.reg.Get(fieldID)
	if !ok {
		return fmt.Errorf("unknown field %q", fieldID)
	}
	if operator != schema.OpEquals && operator != schema.OpContains {
		return fmt.Errorf("unknown operator %q", operator)
	}

	label := fmt.Sprintf("%s %s %s", field.Label, operator, value)
	m.search.AddFilterValue(fieldID, "", label, operator, value)
	return nil
}

// queryRecords re-runs the catalog query for the active facets.
func (m Model) queryRecords() tea.Cmd {
	if m.store == nil {
		return nil
	}
	st := m.store
	facets := m.search.Facets()
	freeText, _ := splitQuery(m.bar.Query())
	limit := m.config.UI.ResultLimit

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		records, err := st.SearchRecords(ctx, facets, freeText, limit)
		return RecordsLoadedMsg{Records: records, Err: err}
	}
}

// splitQuery strips exact-match quotes for the free-text record search.
func splitQuery(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		return strings.TrimSpace(raw[1 : len(raw)-1]), true
	}
	return raw, false
}

func (m *Model) layoutResults() {
	resultsHeight := m.height - m.bar.Height() - 3 // header + status
	if resultsHeight < 1 {
		resultsHeight = 1
	}
	m.results.SetSize(m.width, resultsHeight)
}

func (m Model) scrollTick() tea.Cmd {
	return tea.Tick(time.Second/60, func(time.Time) tea.Msg {
		return scrollTickMsg{}
	})
}

// View renders the UI
func (m Model) View() string {
	var sections []string

	headerText := fmt.Sprintf("  FACETLINE  ·  %d fields  ·  %d filters",
		m.reg.Len(), m.search.Len())
	sections = append(sections, headerStyle.Width(m.width).Render(headerText))

	if m.mode == modeFilterDialog {
		sections = append(sections, m.filterInput.View())
	} else {
		sections = append(sections, m.bar.View())
	}

	sections = append(sections, m.results.View())

	status := m.renderStatusBar()
	sections = append(sections, statusBarStyle.Width(m.width).Render(status))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatusBar() string {
	if m.err != nil {
		return "  Error: " + m.err.Error()
	}
	if m.statusMsg != "" {
		return "  " + m.statusMsg
	}
	return "  [↑↓] suggestions  [→] expand  [←] facets  [enter] commit  [esc] reset  [ctrl+n/p] results  [ctrl+c] quit"
}

// Styles.
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c9d1d9")).
			Background(lipgloss.Color("#161b22")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e")).
			Background(lipgloss.Color("#161b22"))
)
