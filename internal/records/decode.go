package records

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/patino82/construction-app/internal/notion"
)

func textOr(p notion.Properties, name, fallback string) string {
	if s, ok := p.PlainText(name); ok && s != "" {
		return s
	}
	return fallback
}

func titleOr(p notion.Properties, name, fallback string) string {
	if s, ok := p.TitleText(name); ok && s != "" {
		return s
	}
	return fallback
}

func numberPtr(p notion.Properties, name string) *float64 {
	if n, ok := p.NumberValue(name); ok {
		return &n
	}
	return nil
}

func datePtr(p notion.Properties, name string) *time.Time {
	if t, ok := p.DateTime(name); ok {
		return &t
	}
	return nil
}

func relationOr(p notion.Properties, name string) string {
	id, _ := p.FirstRelation(name)
	return id
}

func multiOrEmpty(p notion.Properties, name string) []string {
	names, ok := p.MultiSelectNames(name)
	if !ok {
		return []string{}
	}
	return names
}

// jsonObject decodes an embedded JSON object. Absent or malformed input yields an empty map.
func jsonObject(p notion.Properties, name string) map[string]any {
	raw := joinedText(p, name)
	if raw == "" {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// joinedText concatenates every rich_text segment. Long JSON payloads may be
// split across segments by the remote editor.
func joinedText(p notion.Properties, name string) string {
	segs, _ := p.AllPlainText(name)
	return strings.Join(segs, "")
}

func createdAt(pg notion.Page) time.Time {
	if pg.CreatedTime.IsZero() {
		return time.Now().UTC()
	}
	return pg.CreatedTime
}

func dateProp(t *time.Time) notion.PropertyValue {
	if t == nil {
		return notion.NullDate()
	}
	return notion.Date(t.UTC().Format("2006-01-02"))
}
