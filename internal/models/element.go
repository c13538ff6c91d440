package models

import (
	"strings"
	"time"
)

// ElementType classifies an element extracted from a plan sheet.
type ElementType string

const (
	ElementDoor        ElementType = "door"
	ElementWall        ElementType = "wall"
	ElementBaseCabinet ElementType = "base_cabinet"
	ElementNote        ElementType = "note"
	ElementUnknown     ElementType = "unknown"
)

// ParseElementType maps an option name to a type, defaulting to unknown.
func ParseElementType(s string) ElementType {
	switch t := ElementType(strings.ToLower(strings.TrimSpace(s))); t {
	case ElementDoor, ElementWall, ElementBaseCabinet, ElementNote:
		return t
	default:
		return ElementUnknown
	}
}

// ElementSource records how an element entered the system.
type ElementSource string

const (
	SourceUpload ElementSource = "upload"
	SourceManual ElementSource = "manual"
	SourceSync   ElementSource = "sync"
)

// ParseElementSource defaults to upload.
func ParseElementSource(s string) ElementSource {
	switch src := ElementSource(strings.ToLower(strings.TrimSpace(s))); src {
	case SourceManual, SourceSync:
		return src
	default:
		return SourceUpload
	}
}

// ExtractedElement is a typed item lifted from a plan document.
type ExtractedElement struct {
	ID         string         `json:"id"`
	SiteID     string         `json:"projectId"`
	Type       ElementType    `json:"type"`
	Identifier string         `json:"identifier"`
	Attributes map[string]any `json:"attributesJson"`
	SheetRef   string         `json:"sheetRef,omitempty"`
	Source     ElementSource  `json:"source"`
	Confidence float64        `json:"confidence"`
	Verified   bool           `json:"verified"`
	ElementKey string         `json:"elementKey"`
	DocHash    string         `json:"docHash"`
	Notes      string         `json:"notes,omitempty"`
	PageID     string         `json:"pageId"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Validate checks the element schema.
func (e ExtractedElement) Validate() error {
	if e.Confidence < 0 || e.Confidence > 1 {
		return invalid("confidence", "%v is outside [0,1]", e.Confidence)
	}
	if strings.TrimSpace(e.ElementKey) == "" {
		return invalid("elementKey", "is required")
	}
	if strings.TrimSpace(e.DocHash) == "" {
		return invalid("docHash", "is required")
	}
	return nil
}
