// Package schema declares the searchable fields the search bar compiles
// queries against. Fields are loaded once at startup and never mutated.
package schema

import (
	"strconv"
	"strings"
	"time"
)

// FieldType is a closed set of value types a searchable field can hold.
// Each type carries its own parsing and matching behavior; nothing in the
// rest of the codebase branches on type strings.
type FieldType int

const (
	Text FieldType = iota
	Date
	DateTime
	Number
	Boolean
	Selection
	ManyToOne
	ManyToMany
	Properties
)

// String returns the config-file spelling of the type.
func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Selection:
		return "selection"
	case ManyToOne:
		return "many2one"
	case ManyToMany:
		return "many2many"
	case Properties:
		return "properties"
	}
	return "unknown"
}

// ParseFieldType maps a config-file spelling back to a FieldType.
func ParseFieldType(s string) (FieldType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "char":
		return Text, true
	case "date":
		return Date, true
	case "datetime":
		return DateTime, true
	case "number", "integer", "float":
		return Number, true
	case "boolean", "bool":
		return Boolean, true
	case "selection":
		return Selection, true
	case "many2one":
		return ManyToOne, true
	case "many2many":
		return ManyToMany, true
	case "properties":
		return Properties, true
	}
	return Text, false
}

// Option is one entry of a Selection field's fixed option set.
type Option struct {
	Value string
	Label string
}

// Field is one declared searchable field. Relation is set only for
// record-reference types; Sub only for Properties (one level deep).
type Field struct {
	ID       string
	Label    string
	Type     FieldType
	Relation string
	Domain   string
	Operator string // overrides the type default when non-empty
	Options  []Option
	Sub      []Field
}

// Operators.
const (
	OpContains = "ilike"
	OpEquals   = "="
)

// DefaultOperator returns the operator a facet built from this field uses
// when none is declared: containment for text-like types, equality otherwise.
func (f Field) DefaultOperator() string {
	if f.Operator != "" {
		return f.Operator
	}
	switch f.Type {
	case Text, ManyToOne, ManyToMany, Properties:
		return OpContains
	default:
		return OpEquals
	}
}

// CanExpand reports whether the field produces a parent suggestion that
// expands into fetched children (reference types) or sub-fields (properties).
func (f Field) CanExpand() bool {
	switch f.Type {
	case ManyToOne, ManyToMany, Properties:
		return true
	}
	return false
}

// Accepted layouts for date and datetime parsing, tried in order.
var (
	dateLayouts = []string{"2006-01-02", "01/02/2006"}

	dateTimeLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"01/02/2006",
	}
)

// ParseValue attempts to coerce raw free text into the field's native value.
// A false return means the field contributes no suggestion for this query;
// it is never an error.
func (f Field) ParseValue(raw string) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	switch f.Type {
	case Text:
		return raw, true

	case Number:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, true
		}
		if fl, err := strconv.ParseFloat(raw, 64); err == nil {
			return fl, true
		}
		return nil, false

	case Date:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, true
			}
		}
		return nil, false

	case DateTime:
		for _, layout := range dateTimeLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, true
			}
		}
		return nil, false

	default:
		// Boolean and Selection match against their option sets; reference
		// and properties types expand instead of parsing free text.
		return nil, false
	}
}

// BooleanOptions is the static option set boolean fields filter against.
var BooleanOptions = []Option{
	{Value: "true", Label: "Yes"},
	{Value: "false", Label: "No"},
}

// MatchOptions filters an option list by case-insensitive substring
// containment of the query in the label.
func MatchOptions(options []Option, query string) []Option {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var matched []Option
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt.Label), query) {
			matched = append(matched, opt)
		}
	}
	return matched
}

// Registry holds the declared fields in declaration order. Order is
// authoritative: the suggestion compiler walks it front to back.
type Registry struct {
	fields []Field
	byID   map[string]int
}

// NewRegistry builds a registry. Duplicate IDs keep the first declaration.
func NewRegistry(fields []Field) *Registry {
	r := &Registry{byID: make(map[string]int, len(fields))}
	for _, f := range fields {
		if _, exists := r.byID[f.ID]; exists {
			continue
		}
		r.byID[f.ID] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// Fields returns the declared fields in order. Callers must not mutate.
func (r *Registry) Fields() []Field {
	return r.fields
}

// Get looks up a field by ID.
func (r *Registry) Get(id string) (Field, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Field{}, false
	}
	return r.fields[idx], true
}

// Len returns the number of declared fields.
func (r *Registry) Len() int {
	return len(r.fields)
}
