package records

import (
	"strings"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
)

// DefaultConfidence applies to elements stored without a confidence score.
const DefaultConfidence = 0.5

// DecodeElement maps an extracted element page. The element key falls back to
// the identifier and is returned without its document hash prefix.
func DecodeElement(pg notion.Page) models.ExtractedElement {
	p := pg.Properties
	identifier := titleOr(p, PropName, pg.ID)
	typ, _ := p.SelectName(PropType)
	src, _ := p.SelectName(PropSource)
	confidence, ok := p.NumberValue(PropConfidence)
	if !ok {
		confidence = DefaultConfidence
	}
	verified, _ := p.CheckboxValue(PropVerified)
	docHash := textOr(p, PropDocHash, "")
	key := textOr(p, PropElementKey, identifier)
	if docHash != "" {
		key = strings.TrimPrefix(key, docHash+":")
	}
	return models.ExtractedElement{
		ID:         pg.ID,
		SiteID:     relationOr(p, PropProject),
		Type:       models.ParseElementType(typ),
		Identifier: identifier,
		Attributes: jsonObject(p, PropAttributes),
		SheetRef:   textOr(p, PropSheetRef, ""),
		Source:     models.ParseElementSource(src),
		Confidence: confidence,
		Verified:   verified,
		ElementKey: key,
		DocHash:    docHash,
		Notes:      textOr(p, PropNotes, ""),
		PageID:     pg.ID,
		CreatedAt:  createdAt(pg),
		UpdatedAt:  pg.LastEditedTime,
	}
}

// EncodeElement builds element page properties. storedKey is the value written
// to "Element Key".
func EncodeElement(e models.ExtractedElement, storedKey string) notion.Properties {
	attrs := e.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return notion.Properties{
		PropName:       notion.Title(e.Identifier),
		PropType:       notion.Select(string(e.Type)),
		PropSheetRef:   notion.Text(e.SheetRef),
		PropAttributes: notion.JSONText(attrs),
		PropProject:    notion.Relation(e.SiteID),
		PropConfidence: notion.Number(e.Confidence),
		PropVerified:   notion.Checkbox(e.Verified),
		PropDocHash:    notion.Text(e.DocHash),
		PropElementKey: notion.Text(storedKey),
		PropNotes:      notion.Text(e.Notes),
		PropSource:     notion.Select(string(e.Source)),
	}
}
