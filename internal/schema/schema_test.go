package schema

import (
	"testing"
	"time"
)

func TestDefaultOperator(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"text uses containment", Field{Type: Text}, OpContains},
		{"many2one uses containment", Field{Type: ManyToOne}, OpContains},
		{"many2many uses containment", Field{Type: ManyToMany}, OpContains},
		{"properties uses containment", Field{Type: Properties}, OpContains},
		{"boolean uses equality", Field{Type: Boolean}, OpEquals},
		{"selection uses equality", Field{Type: Selection}, OpEquals},
		{"date uses equality", Field{Type: Date}, OpEquals},
		{"number uses equality", Field{Type: Number}, OpEquals},
		{"declared operator wins", Field{Type: Text, Operator: OpEquals}, OpEquals},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.DefaultOperator(); got != tt.want {
				t.Errorf("DefaultOperator() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanExpand(t *testing.T) {
	expandable := []FieldType{ManyToOne, ManyToMany, Properties}
	for _, ft := range expandable {
		if !(Field{Type: ft}).CanExpand() {
			t.Errorf("%s should be expandable", ft)
		}
	}
	leaf := []FieldType{Text, Date, DateTime, Number, Boolean, Selection}
	for _, ft := range leaf {
		if (Field{Type: ft}).CanExpand() {
			t.Errorf("%s should not be expandable", ft)
		}
	}
}

func TestParseValueText(t *testing.T) {
	f := Field{Type: Text}

	v, ok := f.ParseValue("  hello world ")
	if !ok {
		t.Fatal("text should always parse")
	}
	if v != "hello world" {
		t.Errorf("got %q, want trimmed %q", v, "hello world")
	}

	if _, ok := f.ParseValue("   "); ok {
		t.Error("whitespace-only should not parse")
	}
}

func TestParseValueNumber(t *testing.T) {
	f := Field{Type: Number}

	if v, ok := f.ParseValue("42"); !ok || v != int64(42) {
		t.Errorf("ParseValue(42) = %v, %v", v, ok)
	}
	if v, ok := f.ParseValue("3.14"); !ok || v != 3.14 {
		t.Errorf("ParseValue(3.14) = %v, %v", v, ok)
	}
	if _, ok := f.ParseValue("forty-two"); ok {
		t.Error("non-numeric text should not parse as number")
	}
}

func TestParseValueDate(t *testing.T) {
	f := Field{Type: Date}

	v, ok := f.ParseValue("2026-03-15")
	if !ok {
		t.Fatal("ISO date should parse")
	}
	ts := v.(time.Time)
	if ts.Year() != 2026 || ts.Month() != time.March || ts.Day() != 15 {
		t.Errorf("wrong date parsed: %v", ts)
	}

	if _, ok := f.ParseValue("03/15/2026"); !ok {
		t.Error("US-style date should parse")
	}
	if _, ok := f.ParseValue("not a date"); ok {
		t.Error("garbage should not parse as date")
	}
}

func TestParseValueDateTime(t *testing.T) {
	f := Field{Type: DateTime}

	for _, raw := range []string{
		"2026-03-15T10:30:00Z",
		"2026-03-15 10:30",
		"2026-03-15",
	} {
		if _, ok := f.ParseValue(raw); !ok {
			t.Errorf("datetime %q should parse", raw)
		}
	}
}

func TestParseValueReferenceTypesNeverParse(t *testing.T) {
	// Reference and option types expand or match options instead of
	// parsing free text.
	for _, ft := range []FieldType{Boolean, Selection, ManyToOne, ManyToMany, Properties} {
		if _, ok := (Field{Type: ft}).ParseValue("anything"); ok {
			t.Errorf("%s should not parse free text", ft)
		}
	}
}

func TestMatchOptions(t *testing.T) {
	options := []Option{
		{Value: "open", Label: "Open"},
		{Value: "closed", Label: "Closed"},
		{Value: "on_hold", Label: "On Hold"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"op", []string{"open"}},
		{"OP", []string{"open"}},
		{"o", []string{"open", "closed", "on_hold"}},
		{"hold", []string{"on_hold"}},
		{"zzz", nil},
		{"   ", nil},
	}

	for _, tt := range tests {
		got := MatchOptions(options, tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("MatchOptions(%q): got %d matches, want %d", tt.query, len(got), len(tt.want))
			continue
		}
		for i, opt := range got {
			if opt.Value != tt.want[i] {
				t.Errorf("MatchOptions(%q)[%d] = %q, want %q", tt.query, i, opt.Value, tt.want[i])
			}
		}
	}
}

func TestParseFieldType(t *testing.T) {
	for raw, want := range map[string]FieldType{
		"text":       Text,
		"char":       Text,
		"DATE":       Date,
		"datetime":   DateTime,
		"number":     Number,
		"boolean":    Boolean,
		"selection":  Selection,
		"many2one":   ManyToOne,
		"many2many":  ManyToMany,
		"properties": Properties,
	} {
		got, ok := ParseFieldType(raw)
		if !ok || got != want {
			t.Errorf("ParseFieldType(%q) = %v, %v; want %v", raw, got, ok, want)
		}
	}

	if _, ok := ParseFieldType("quaternion"); ok {
		t.Error("unknown type should not parse")
	}
}

func TestRegistryOrderAndLookup(t *testing.T) {
	reg := NewRegistry([]Field{
		{ID: "b", Type: Text},
		{ID: "a", Type: Date},
		{ID: "b", Type: Number}, // duplicate, first wins
	})

	if reg.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d", reg.Len())
	}
	if reg.Fields()[0].ID != "b" || reg.Fields()[1].ID != "a" {
		t.Error("declaration order not preserved")
	}

	f, ok := reg.Get("b")
	if !ok || f.Type != Text {
		t.Error("duplicate ID should keep first declaration")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("unknown ID should not resolve")
	}
}
