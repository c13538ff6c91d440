package notion

import (
	"encoding/json"
	"strings"
	"time"
)

// PropertyType names a typed page property on the wire.
type PropertyType string

const (
	TypeTitle       PropertyType = "title"
	TypeRichText    PropertyType = "rich_text"
	TypeSelect      PropertyType = "select"
	TypeMultiSelect PropertyType = "multi_select"
	TypeNumber      PropertyType = "number"
	TypeDate        PropertyType = "date"
	TypeRelation    PropertyType = "relation"
	TypeCheckbox    PropertyType = "checkbox"
	TypeURL         PropertyType = "url"
)

// RichText is one text segment of a title or rich_text property.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// TextContent is the writable body of a text segment.
type TextContent struct {
	Content string `json:"content"`
}

// Plain returns the segment's text, preferring the server-rendered plain_text.
func (r RichText) Plain() string {
	if r.PlainText != "" {
		return r.PlainText
	}
	if r.Text != nil {
		return r.Text.Content
	}
	return ""
}

// Option is a select or multi_select choice.
type Option struct {
	Name string `json:"name"`
}

// DateValue is a date property body; Start is an ISO date or date-time.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// RelationRef references another page by id.
type RelationRef struct {
	ID string `json:"id"`
}

// PropertyValue is a single typed property. Only the field matching Type is meaningful.
type PropertyValue struct {
	Type        PropertyType
	Title       []RichText
	RichText    []RichText
	Select      *Option
	MultiSelect []Option
	Number      *float64
	Date        *DateValue
	Relation    []RelationRef
	Checkbox    bool
	URL         *string
}

// Properties maps property names to values.
type Properties map[string]PropertyValue

// MarshalJSON writes only the typed body, emitting explicit nulls for cleared values.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	var body any
	switch v.Type {
	case TypeTitle:
		body = nonNil(v.Title)
	case TypeRichText:
		body = nonNil(v.RichText)
	case TypeSelect:
		body = v.Select
	case TypeMultiSelect:
		if v.MultiSelect == nil {
			body = []Option{}
		} else {
			body = v.MultiSelect
		}
	case TypeNumber:
		body = v.Number
	case TypeDate:
		body = v.Date
	case TypeRelation:
		if v.Relation == nil {
			body = []RelationRef{}
		} else {
			body = v.Relation
		}
	case TypeCheckbox:
		body = v.Checkbox
	case TypeURL:
		body = v.URL
	default:
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any{string(v.Type): body})
}

type wireProperty struct {
	Type        PropertyType  `json:"type"`
	Title       []RichText    `json:"title"`
	RichText    []RichText    `json:"rich_text"`
	Select      *Option       `json:"select"`
	MultiSelect []Option      `json:"multi_select"`
	Number      *float64      `json:"number"`
	Date        *DateValue    `json:"date"`
	Relation    []RelationRef `json:"relation"`
	Checkbox    bool          `json:"checkbox"`
	URL         *string       `json:"url"`
}

// UnmarshalJSON reads a property as returned by the API. Unknown types keep only Type.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var w wireProperty
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*v = PropertyValue(w)
	return nil
}

func nonNil(in []RichText) []RichText {
	if in == nil {
		return []RichText{}
	}
	return in
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func segment(s string) RichText {
	return RichText{Type: "text", Text: &TextContent{Content: s}, PlainText: s}
}

// Title builds a title property.
func Title(s string) PropertyValue {
	return PropertyValue{Type: TypeTitle, Title: []RichText{segment(s)}}
}

// Text builds a single-segment rich_text property. An empty string clears it.
func Text(s string) PropertyValue {
	if s == "" {
		return PropertyValue{Type: TypeRichText, RichText: []RichText{}}
	}
	return PropertyValue{Type: TypeRichText, RichText: []RichText{segment(s)}}
}

// Texts builds a rich_text property with one segment per value.
func Texts(values ...string) PropertyValue {
	segs := make([]RichText, 0, len(values))
	for _, s := range values {
		segs = append(segs, segment(s))
	}
	return PropertyValue{Type: TypeRichText, RichText: segs}
}

// JSONText serializes v into a single rich_text segment.
func JSONText(v any) PropertyValue {
	data, err := json.Marshal(v)
	if err != nil {
		return Text("")
	}
	return Text(string(data))
}

// Select builds a select property. An empty name clears it.
func Select(name string) PropertyValue {
	if name == "" {
		return PropertyValue{Type: TypeSelect}
	}
	return PropertyValue{Type: TypeSelect, Select: &Option{Name: name}}
}

// MultiSelect builds a multi_select property.
func MultiSelect(names ...string) PropertyValue {
	opts := make([]Option, 0, len(names))
	for _, n := range names {
		opts = append(opts, Option{Name: n})
	}
	return PropertyValue{Type: TypeMultiSelect, MultiSelect: opts}
}

// Number builds a number property.
func Number(n float64) PropertyValue {
	return PropertyValue{Type: TypeNumber, Number: &n}
}

// NullNumber clears a number property.
func NullNumber() PropertyValue {
	return PropertyValue{Type: TypeNumber}
}

// Date builds a date property from an ISO date or date-time string.
func Date(start string) PropertyValue {
	return PropertyValue{Type: TypeDate, Date: &DateValue{Start: start}}
}

// NullDate clears a date property.
func NullDate() PropertyValue {
	return PropertyValue{Type: TypeDate}
}

// Relation builds a relation property.
func Relation(ids ...string) PropertyValue {
	rels := make([]RelationRef, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			rels = append(rels, RelationRef{ID: id})
		}
	}
	return PropertyValue{Type: TypeRelation, Relation: rels}
}

// Checkbox builds a checkbox property.
func Checkbox(b bool) PropertyValue {
	return PropertyValue{Type: TypeCheckbox, Checkbox: b}
}

// URL builds a url property. An empty string clears it.
func URL(u string) PropertyValue {
	if u == "" {
		return PropertyValue{Type: TypeURL}
	}
	return PropertyValue{Type: TypeURL, URL: &u}
}

// NullURL clears a url property.
func NullURL() PropertyValue {
	return PropertyValue{Type: TypeURL}
}

// ---------------------------------------------------------------------------
// Readers. Each reports ok=false for absent or wrong-typed properties.
// ---------------------------------------------------------------------------

// TitleText returns the first title segment.
func (p Properties) TitleText(name string) (string, bool) {
	v, found := p[name]
	if !found || v.Type != TypeTitle || len(v.Title) == 0 {
		return "", false
	}
	return v.Title[0].Plain(), true
}

// PlainText returns the first rich_text segment.
func (p Properties) PlainText(name string) (string, bool) {
	v, found := p[name]
	if !found || v.Type != TypeRichText || len(v.RichText) == 0 {
		return "", false
	}
	return v.RichText[0].Plain(), true
}

// AllPlainText returns every rich_text segment.
func (p Properties) AllPlainText(name string) ([]string, bool) {
	v, found := p[name]
	if !found || v.Type != TypeRichText {
		return nil, false
	}
	out := make([]string, 0, len(v.RichText))
	for _, seg := range v.RichText {
		out = append(out, seg.Plain())
	}
	return out, true
}

// SelectName returns the chosen select option.
func (p Properties) SelectName(name string) (string, bool) {
	v, found := p[name]
	if !found || v.Type != TypeSelect || v.Select == nil {
		return "", false
	}
	return v.Select.Name, true
}

// MultiSelectNames returns the chosen multi_select options in order.
func (p Properties) MultiSelectNames(name string) ([]string, bool) {
	v, found := p[name]
	if !found || v.Type != TypeMultiSelect {
		return nil, false
	}
	out := make([]string, 0, len(v.MultiSelect))
	for _, o := range v.MultiSelect {
		out = append(out, o.Name)
	}
	return out, true
}

// NumberValue returns a non-null number.
func (p Properties) NumberValue(name string) (float64, bool) {
	v, found := p[name]
	if !found || v.Type != TypeNumber || v.Number == nil {
		return 0, false
	}
	return *v.Number, true
}

// DateStart returns the start of a date property.
func (p Properties) DateStart(name string) (string, bool) {
	v, found := p[name]
	if !found || v.Type != TypeDate || v.Date == nil || v.Date.Start == "" {
		return "", false
	}
	return v.Date.Start, true
}

// DateTime parses the start of a date property as a date or date-time.
func (p Properties) DateTime(name string) (time.Time, bool) {
	s, ok := p.DateStart(name)
	if !ok {
		return time.Time{}, false
	}
	return ParseDate(s)
}

// RelationIDs returns related page ids.
func (p Properties) RelationIDs(name string) ([]string, bool) {
	v, found := p[name]
	if !found || v.Type != TypeRelation {
		return nil, false
	}
	out := make([]string, 0, len(v.Relation))
	for _, r := range v.Relation {
		out = append(out, r.ID)
	}
	return out, true
}

// FirstRelation returns the first related page id.
func (p Properties) FirstRelation(name string) (string, bool) {
	ids, ok := p.RelationIDs(name)
	if !ok || len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// CheckboxValue returns a checkbox state.
func (p Properties) CheckboxValue(name string) (bool, bool) {
	v, found := p[name]
	if !found || v.Type != TypeCheckbox {
		return false, false
	}
	return v.Checkbox, true
}

// URLValue returns a non-null url.
func (p Properties) URLValue(name string) (string, bool) {
	v, found := p[name]
	if !found || v.Type != TypeURL || v.URL == nil {
		return "", false
	}
	return *v.URL, true
}

// ParseDate accepts "2006-01-02" or RFC 3339 date-times.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
