// Package results renders the catalog records matching the active facets.
package results

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/facetline/internal/store"
)

// Model is the results list under the search bar.
type Model struct {
	records []store.Record
	cursor  int
	width   int
	height  int

	// Smooth scrolling with harmonica spring physics
	scrollSpring   harmonica.Spring
	scrollPos      float64
	scrollVelocity float64
	scrollTarget   float64
}

// New creates an empty results model.
func New() Model {
	// frequency, damping: fast response, little bounce
	spring := harmonica.NewSpring(harmonica.FPS(60), 6.0, 0.8)
	return Model{scrollSpring: spring}
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetRecords replaces the displayed records, keeping the cursor on the same
// record when it survives the update.
func (m *Model) SetRecords(records []store.Record) {
	var selected string
	if m.cursor >= 0 && m.cursor < len(m.records) {
		selected = m.records[m.cursor].Relation + "/" + m.records[m.cursor].ID
	}

	m.records = records

	found := false
	if selected != "" {
		for i, rec := range records {
			if rec.Relation+"/"+rec.ID == selected {
				m.cursor = i
				found = true
				break
			}
		}
	}
	if !found {
		m.cursor = 0
		m.scrollPos = 0
		m.scrollTarget = 0
	}
}

// Records returns the displayed records.
func (m Model) Records() []store.Record {
	return m.records
}

// Selected returns the record under the cursor, or nil.
func (m Model) Selected() *store.Record {
	if m.cursor >= 0 && m.cursor < len(m.records) {
		return &m.records[m.cursor]
	}
	return nil
}

// MoveUp moves the cursor up with smooth scrolling.
func (m *Model) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.scrollTarget = float64(m.cursor)
	}
}

// MoveDown moves the cursor down with smooth scrolling.
func (m *Model) MoveDown() {
	if m.cursor < len(m.records)-1 {
		m.cursor++
		m.scrollTarget = float64(m.cursor)
	}
}

// UpdateScroll advances the spring animation one frame.
func (m *Model) UpdateScroll() {
	m.scrollPos, m.scrollVelocity = m.scrollSpring.Update(m.scrollPos, m.scrollVelocity, m.scrollTarget)
}

// IsScrolling reports whether the scroll animation is still settling.
func (m Model) IsScrolling() bool {
	return math.Abs(m.scrollPos-m.scrollTarget) > 0.01
}

// View renders the list.
func (m Model) View() string {
	if len(m.records) == 0 {
		return emptyStyle.Render("  no matching records")
	}

	visible := m.height
	if visible < 1 {
		visible = 1
	}

	// Window follows the animated scroll position.
	start := int(math.Round(m.scrollPos)) - visible/2
	if start > len(m.records)-visible {
		start = len(m.records) - visible
	}
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(m.records) {
		end = len(m.records)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		rec := m.records[i]
		badge := relationStyle.Render(rec.Relation)
		line := fmt.Sprintf("%s %s", badge, rec.Label)
		if i == m.cursor {
			line = selectedStyle.Render("› " + rec.Label)
			line = badge + " " + line
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if end < len(m.records) {
		b.WriteString("\n")
		b.WriteString(emptyStyle.Render(fmt.Sprintf("  %d more…", len(m.records)-end)))
	}
	return b.String()
}

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#58a6ff")).
			Bold(true)

	relationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e")).
			Background(lipgloss.Color("#21262d")).
			Padding(0, 1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#484f58"))
)
