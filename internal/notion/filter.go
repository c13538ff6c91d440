package notion

import (
	"slices"
	"strings"
)

// Filter is a database query filter: either a single property condition or an
// "and" of nested filters.
type Filter struct {
	Property string             `json:"property,omitempty"`
	RichText *TextCondition     `json:"rich_text,omitempty"`
	Select   *SelectCondition   `json:"select,omitempty"`
	Relation *RelationCondition `json:"relation,omitempty"`
	Date     *DateCondition     `json:"date,omitempty"`
	And      []Filter           `json:"and,omitempty"`
}

// TextCondition holds either an exact match or a substring. A non-nil
// Equals wins, and an empty Equals matches only empty text.
type TextCondition struct {
	Equals   *string `json:"equals,omitempty"`
	Contains string  `json:"contains,omitempty"`
}

type SelectCondition struct {
	Equals string `json:"equals"`
}

type RelationCondition struct {
	Contains string `json:"contains"`
}

type DateCondition struct {
	Equals string `json:"equals"`
}

// TextEquals matches a rich_text property exactly.
func TextEquals(property, value string) *Filter {
	return &Filter{Property: property, RichText: &TextCondition{Equals: &value}}
}

// TextContains matches a rich_text property by substring.
func TextContains(property, value string) *Filter {
	return &Filter{Property: property, RichText: &TextCondition{Contains: value}}
}

// SelectEquals matches a select option name.
func SelectEquals(property, value string) *Filter {
	return &Filter{Property: property, Select: &SelectCondition{Equals: value}}
}

// RelationContains matches pages related to id.
func RelationContains(property, id string) *Filter {
	return &Filter{Property: property, Relation: &RelationCondition{Contains: id}}
}

// DateEquals matches a date property on a calendar day (YYYY-MM-DD).
func DateEquals(property, day string) *Filter {
	return &Filter{Property: property, Date: &DateCondition{Equals: day}}
}

// And combines filters, dropping nils. It returns nil for no filters and the
// filter itself for exactly one.
func And(filters ...*Filter) *Filter {
	var parts []Filter
	for _, f := range filters {
		if f != nil {
			parts = append(parts, *f)
		}
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return &parts[0]
	}
	return &Filter{And: parts}
}

// Matches evaluates the filter against properties the way the remote store does.
func (f *Filter) Matches(props Properties) bool {
	if f == nil {
		return true
	}
	if len(f.And) > 0 {
		for i := range f.And {
			if !f.And[i].Matches(props) {
				return false
			}
		}
		return true
	}
	switch {
	case f.RichText != nil:
		segs, _ := props.AllPlainText(f.Property)
		if len(segs) == 0 {
			if t, ok := props.TitleText(f.Property); ok {
				segs = []string{t}
			}
		}
		text := strings.Join(segs, "")
		if f.RichText.Equals != nil {
			return text == *f.RichText.Equals
		}
		return strings.Contains(strings.ToLower(text), strings.ToLower(f.RichText.Contains))
	case f.Select != nil:
		name, ok := props.SelectName(f.Property)
		return ok && name == f.Select.Equals
	case f.Relation != nil:
		ids, _ := props.RelationIDs(f.Property)
		return slices.Contains(ids, f.Relation.Contains)
	case f.Date != nil:
		start, ok := props.DateStart(f.Property)
		return ok && len(start) >= 10 && start[:10] == f.Date.Equals
	}
	return true
}
