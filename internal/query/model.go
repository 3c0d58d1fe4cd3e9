// Package query owns the shared search model: the ordered list of activated
// facets and the notification channel views subscribe to. The search bar is
// the only producer; the results view is the main consumer. All mutation
// goes through AddFilterValue and DeactivateFacet, never through direct
// slice access.
package query

import (
	"sync"
)

// Facet is an activated filter condition, displayed as a chip outside the
// search input and removable independently.
type Facet struct {
	ID       int    `json:"id"`
	FieldID  string `json:"field_id"`
	SubField string `json:"sub_field,omitempty"`
	Label    string `json:"label"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Model holds the active facets in activation order.
// Thread-safety: all methods are safe for concurrent use.
type Model struct {
	mu     sync.RWMutex
	facets []Facet
	nextID int

	subscribers   []chan struct{}
	subscribersMu sync.RWMutex
}

// New creates an empty search model.
func New() *Model {
	return &Model{nextID: 1}
}

// AddFilterValue activates a facet and returns it. Facet IDs are unique for
// the model's lifetime and never reused after deactivation.
func (m *Model) AddFilterValue(fieldID, subField, label, operator string, value any) Facet {
	m.mu.Lock()
	facet := Facet{
		ID:       m.nextID,
		FieldID:  fieldID,
		SubField: subField,
		Label:    label,
		Operator: operator,
		Value:    value,
	}
	m.nextID++
	m.facets = append(m.facets, facet)
	m.mu.Unlock()

	m.notify()
	return facet
}

// DeactivateFacet removes the facet with the given ID. Unknown IDs are a
// no-op.
func (m *Model) DeactivateFacet(id int) {
	m.mu.Lock()
	removed := false
	for i, f := range m.facets {
		if f.ID == id {
			m.facets = append(m.facets[:i], m.facets[i+1:]...)
			removed = true
			break
		}
	}
	m.mu.Unlock()

	if removed {
		m.notify()
	}
}

// Clear removes all facets.
func (m *Model) Clear() {
	m.mu.Lock()
	cleared := len(m.facets) > 0
	m.facets = nil
	m.mu.Unlock()

	if cleared {
		m.notify()
	}
}

// Facets returns a copy of the active facets in activation order.
func (m *Model) Facets() []Facet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Facet, len(m.facets))
	copy(out, m.facets)
	return out
}

// Len returns the number of active facets.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.facets)
}

// Subscribe returns a channel that receives a signal after every mutation.
// The channel is buffered; a slow subscriber coalesces signals rather than
// blocking the model.
func (m *Model) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	m.subscribersMu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.subscribersMu.Unlock()
	return ch
}

func (m *Model) notify() {
	m.subscribersMu.RLock()
	defer m.subscribersMu.RUnlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
