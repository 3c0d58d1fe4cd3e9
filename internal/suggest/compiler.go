package suggest

import (
	"fmt"
	"strings"

	"github.com/abelbrown/facetline/internal/schema"
)

// ParseQuery splits a raw query into its match text and exact-match flag.
// A query wrapped in matching double quotes requests exact matching; the
// quotes are stripped from every downstream use of the text.
func ParseQuery(raw string) (text string, exact bool) {
	text = strings.TrimSpace(raw)
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		return strings.TrimSpace(text[1 : len(text)-1]), true
	}
	return text, false
}

// Compile produces the ordered suggestion list for the current query.
// Field declaration order is preserved; an expanded parent's children follow
// it directly. A whitespace-only query compiles to an empty list and issues
// no lookups. The result is a pure function of (registry, session, query).
func Compile(reg *schema.Registry, session *Session, rawQuery string) []Item {
	text, exact := ParseQuery(rawQuery)
	if text == "" {
		return nil
	}

	var items []Item
	for _, field := range reg.Fields() {
		items = append(items, compileField(field, session, text, exact, false)...)
	}

	items = append(items, Item{
		Kind:       KindCustomFilter,
		Label:      labelCustomFilter,
		Selectable: true,
	})
	return items
}

// compileField emits the suggestions one field contributes. sub marks
// properties sub-fields, which are leaf-only regardless of their own type.
func compileField(field schema.Field, session *Session, text string, exact bool, sub bool) []Item {
	switch field.Type {
	case schema.Boolean:
		return optionItems(field, schema.MatchOptions(schema.BooleanOptions, text), boolValue)

	case schema.Selection:
		return optionItems(field, schema.MatchOptions(field.Options, text), nil)

	case schema.ManyToOne, schema.ManyToMany, schema.Properties:
		if sub {
			// One level of recursion only: a properties sub-field never
			// expands further, it degrades to a plain text suggestion.
			return []Item{{
				Kind:       KindField,
				FieldID:    field.ID,
				Label:      fmt.Sprintf("Search %s for: %s", field.Label, text),
				Operator:   schema.OpContains,
				Value:      text,
				Selectable: true,
			}}
		}
		return parentItems(field, session, text, exact)

	default:
		return leafItem(field, text)
	}
}

// boolValue converts a boolean option's stored value to a native bool.
func boolValue(v string) any {
	return v == "true"
}

func optionItems(field schema.Field, matched []schema.Option, convert func(string) any) []Item {
	items := make([]Item, 0, len(matched))
	for _, opt := range matched {
		var value any = opt.Value
		if convert != nil {
			value = convert(opt.Value)
		}
		items = append(items, Item{
			Kind:       KindField,
			FieldID:    field.ID,
			Label:      fmt.Sprintf("%s: %s", field.Label, opt.Label),
			Operator:   schema.OpEquals,
			Value:      value,
			Selectable: true,
		})
	}
	return items
}

func leafItem(field schema.Field, text string) []Item {
	value, ok := field.ParseValue(text)
	if !ok {
		return nil
	}
	return []Item{{
		Kind:       KindField,
		FieldID:    field.ID,
		Label:      fmt.Sprintf("Search %s for: %s", field.Label, text),
		Operator:   field.DefaultOperator(),
		Value:      value,
		Selectable: true,
	}}
}

func parentItems(field schema.Field, session *Session, text string, exact bool) []Item {
	expanded := session.IsExpanded(field.ID)
	items := []Item{{
		Kind:       KindParent,
		FieldID:    field.ID,
		Label:      fmt.Sprintf("Search %s for: %s", field.Label, text),
		Operator:   field.DefaultOperator(),
		Value:      text,
		Expanded:   expanded,
		Selectable: true,
	}}
	if !expanded {
		return items
	}

	if field.Type == schema.Properties {
		for _, subField := range field.Sub {
			children := compileField(subField, session, text, exact, true)
			for i := range children {
				children[i].SubFieldID = children[i].FieldID
				children[i].FieldID = field.ID
				children[i].Kind = KindChild
			}
			items = append(items, children...)
		}
		return items
	}

	page, ok := session.Children(field.ID, text)
	if !ok {
		if session.IsLoading(field.ID) {
			items = append(items, Item{
				Kind:    KindLoading,
				FieldID: field.ID,
				Label:   labelLoading,
			})
		}
		return items
	}

	if len(page.Pairs) == 0 {
		items = append(items, Item{
			Kind:    KindNoResults,
			FieldID: field.ID,
			Label:   labelNoResults,
		})
		return items
	}

	operator := field.DefaultOperator()
	if exact {
		operator = schema.OpEquals
	}
	for _, pair := range page.Pairs {
		items = append(items, Item{
			Kind:       KindChild,
			FieldID:    field.ID,
			Label:      pair.Label,
			Operator:   operator,
			Value:      pair.Value,
			Selectable: true,
		})
	}
	if page.HasMore {
		items = append(items, Item{
			Kind:       KindLoadMore,
			FieldID:    field.ID,
			Label:      labelLoadMore,
			Selectable: true,
		})
	}
	return items
}
