package notion

import (
	"time"

	"github.com/jomei/notionapi"
)

// sdkValue lets a PropertyValue travel inside notionapi.Properties while
// keeping this package's wire encoding, including explicit nulls.
type sdkValue struct {
	v PropertyValue
}

func (s sdkValue) GetID() string { return "" }

func (s sdkValue) GetType() notionapi.PropertyType { return notionapi.PropertyType(s.v.Type) }

func (s sdkValue) MarshalJSON() ([]byte, error) { return s.v.MarshalJSON() }

func sdkProperties(props Properties) notionapi.Properties {
	out := make(notionapi.Properties, len(props))
	for name, v := range props {
		out[name] = sdkValue{v: v}
	}
	return out
}

func sdkFilter(f *Filter) notionapi.Filter {
	if f == nil {
		return nil
	}
	if len(f.And) > 0 {
		and := make(notionapi.AndCompoundFilter, 0, len(f.And))
		for i := range f.And {
			if part := sdkFilter(&f.And[i]); part != nil {
				and = append(and, part)
			}
		}
		return and
	}
	pf := notionapi.PropertyFilter{Property: f.Property}
	switch {
	case f.RichText != nil:
		cond := &notionapi.TextFilterCondition{Contains: f.RichText.Contains}
		if f.RichText.Equals != nil {
			cond.Contains = ""
			if *f.RichText.Equals == "" {
				cond.IsEmpty = true
			} else {
				cond.Equals = *f.RichText.Equals
			}
		}
		pf.RichText = cond
	case f.Select != nil:
		pf.Select = &notionapi.SelectFilterCondition{Equals: f.Select.Equals}
	case f.Relation != nil:
		pf.Relation = &notionapi.RelationFilterCondition{Contains: f.Relation.Contains}
	case f.Date != nil:
		day, err := time.Parse("2006-01-02", f.Date.Equals)
		if err != nil {
			return nil
		}
		d := notionapi.Date(day)
		pf.Date = &notionapi.DateFilterCondition{Equals: &d}
	default:
		return nil
	}
	return pf
}

func fromSDKPage(p notionapi.Page) Page {
	out := Page{
		Object:         string(p.Object),
		ID:             string(p.ID),
		CreatedTime:    p.CreatedTime,
		LastEditedTime: p.LastEditedTime,
	}
	if p.Properties != nil {
		out.Properties = make(Properties, len(p.Properties))
		for name, prop := range p.Properties {
			out.Properties[name] = fromSDKProperty(prop)
		}
	}
	return out
}

// fromSDKProperty converts a decoded property. The SDK reads a null number
// as 0 and a null select or url as empty; the empty forms map back to null.
func fromSDKProperty(prop notionapi.Property) PropertyValue {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return PropertyValue{Type: TypeTitle, Title: fromSDKText(p.Title)}
	case *notionapi.RichTextProperty:
		return PropertyValue{Type: TypeRichText, RichText: fromSDKText(p.RichText)}
	case *notionapi.SelectProperty:
		v := PropertyValue{Type: TypeSelect}
		if p.Select.Name != "" {
			v.Select = &Option{Name: p.Select.Name}
		}
		return v
	case *notionapi.MultiSelectProperty:
		opts := make([]Option, 0, len(p.MultiSelect))
		for _, o := range p.MultiSelect {
			opts = append(opts, Option{Name: o.Name})
		}
		return PropertyValue{Type: TypeMultiSelect, MultiSelect: opts}
	case *notionapi.NumberProperty:
		n := p.Number
		return PropertyValue{Type: TypeNumber, Number: &n}
	case *notionapi.DateProperty:
		v := PropertyValue{Type: TypeDate}
		if p.Date != nil && p.Date.Start != nil {
			v.Date = &DateValue{Start: formatSDKDate(time.Time(*p.Date.Start))}
			if p.Date.End != nil {
				end := formatSDKDate(time.Time(*p.Date.End))
				v.Date.End = &end
			}
		}
		return v
	case *notionapi.RelationProperty:
		rels := make([]RelationRef, 0, len(p.Relation))
		for _, r := range p.Relation {
			rels = append(rels, RelationRef{ID: string(r.ID)})
		}
		return PropertyValue{Type: TypeRelation, Relation: rels}
	case *notionapi.CheckboxProperty:
		return PropertyValue{Type: TypeCheckbox, Checkbox: p.Checkbox}
	case *notionapi.URLProperty:
		v := PropertyValue{Type: TypeURL}
		if p.URL != "" {
			u := p.URL
			v.URL = &u
		}
		return v
	case nil:
		return PropertyValue{}
	}
	return PropertyValue{Type: PropertyType(prop.GetType())}
}

func fromSDKText(in []notionapi.RichText) []RichText {
	out := make([]RichText, 0, len(in))
	for _, rt := range in {
		seg := RichText{Type: string(rt.Type), PlainText: rt.PlainText}
		if rt.Text != nil {
			seg.Text = &TextContent{Content: rt.Text.Content}
		}
		out = append(out, seg)
	}
	return out
}

// formatSDKDate writes midnight UTC as a bare calendar day, the form
// date-only properties arrive in.
func formatSDKDate(t time.Time) string {
	if t.Location() == time.UTC && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
