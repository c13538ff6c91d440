// Package elements stores and searches typed items extracted from plan sheets.
package elements

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/records"
)

// Query narrows a search. Type, SiteID and SheetRef are sent to the store;
// Q is matched locally.
type Query struct {
	Type     models.ElementType
	SiteID   string
	SheetRef string
	Q        string
}

// IngestRequest is one parsed document and the elements lifted from it.
type IngestRequest struct {
	SiteID   string
	Filename string
	Data     []byte
	DocHash  string
	Elements []models.ExtractedElement
}

// IngestResult summarizes an ingest.
type IngestResult struct {
	DocHash  string   `json:"docHash"`
	Filename string   `json:"filename,omitempty"`
	PageIDs  []string `json:"pageIds"`
}

// Service reads and writes the elements collection.
type Service struct {
	store *notion.Store
	db    string
}

// NewService creates an elements service.
func NewService(store *notion.Store, collectionID string) *Service {
	return &Service{store: store, db: collectionID}
}

// Search lists elements matching q.
func (s *Service) Search(ctx context.Context, q Query) ([]models.ExtractedElement, error) {
	var filters []*notion.Filter
	if q.Type != "" {
		filters = append(filters, notion.SelectEquals(records.PropType, string(q.Type)))
	}
	if q.SiteID != "" {
		filters = append(filters, notion.RelationContains(records.PropProject, q.SiteID))
	}
	if q.SheetRef != "" {
		filters = append(filters, notion.TextEquals(records.PropSheetRef, q.SheetRef))
	}
	pages, err := s.store.ListAll(ctx, s.db, notion.And(filters...))
	if err != nil {
		return nil, fmt.Errorf("search elements: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(q.Q))
	out := make([]models.ExtractedElement, 0, len(pages))
	for _, pg := range pages {
		el := records.DecodeElement(pg)
		if needle != "" && !matchesText(el, needle) {
			continue
		}
		out = append(out, el)
	}
	return out, nil
}

func matchesText(el models.ExtractedElement, needle string) bool {
	if strings.Contains(strings.ToLower(el.Identifier), needle) ||
		strings.Contains(strings.ToLower(el.Notes), needle) {
		return true
	}
	raw, err := json.Marshal(el.Attributes)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(raw)), needle)
}

// DocumentHash is the hex sha256 of data.
func DocumentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// StoredKey is the "Element Key" value for an element of a document.
func StoredKey(docHash, elementKey string) string {
	return docHash + ":" + elementKey
}

// Ingest upserts every element of a document. Re-ingesting the same file
// updates the same pages.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	docHash := strings.TrimSpace(req.DocHash)
	if docHash == "" {
		if len(req.Data) == 0 {
			return IngestResult{}, &models.ValidationError{Field: "docHash", Reason: "is required when no file data is given"}
		}
		docHash = DocumentHash(req.Data)
	}

	res := IngestResult{DocHash: docHash, Filename: req.Filename, PageIDs: make([]string, 0, len(req.Elements))}
	for i, el := range req.Elements {
		el.DocHash = docHash
		if el.SiteID == "" {
			el.SiteID = req.SiteID
		}
		if el.ElementKey == "" {
			el.ElementKey = el.Identifier
		}
		if el.Source == "" {
			el.Source = models.SourceUpload
		}
		if el.Type == "" {
			el.Type = models.ElementUnknown
		}
		if err := el.Validate(); err != nil {
			return res, fmt.Errorf("element %d: %w", i, err)
		}
		key := StoredKey(docHash, el.ElementKey)
		id, err := s.store.UpsertByKey(ctx, s.db, records.PropElementKey, key, func() notion.Properties {
			return records.EncodeElement(el, key)
		})
		if err != nil {
			return res, fmt.Errorf("upsert element %s: %w", key, err)
		}
		res.PageIDs = append(res.PageIDs, id)
	}
	slog.Info("Elements ingested", "doc", docHash, "file", req.Filename, "count", len(res.PageIDs))
	return res, nil
}
