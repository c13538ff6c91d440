package elements

import (
	"context"
	"errors"
	"testing"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/records"
	"github.com/patino82/construction-app/internal/retry"
)

const elementsDB = "elements"

func newService() (*Service, *notion.MemoryBackend) {
	m := notion.NewMemoryBackend()
	return NewService(notion.NewStore(m, notion.WithRetry(retry.Policy{})), elementsDB), m
}

func TestIngestIsIdempotent(t *testing.T) {
	svc, m := newService()
	ctx := context.Background()
	req := IngestRequest{
		SiteID:   "site-1",
		Filename: "A101.pdf",
		Data:     []byte("%PDF-1.7 sheet A101"),
		Elements: []models.ExtractedElement{
			{Identifier: "D-101", Type: models.ElementDoor, Confidence: 0.9, Attributes: map[string]any{"width": "36in"}},
			{Identifier: "W-2", ElementKey: "wall-2", Type: models.ElementWall, Confidence: 0.7},
		},
	}
	first, err := svc.Ingest(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if first.DocHash != DocumentHash(req.Data) || len(first.PageIDs) != 2 {
		t.Fatalf("result = %+v", first)
	}
	second, err := svc.Ingest(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if second.PageIDs[0] != first.PageIDs[0] || len(m.Pages(elementsDB)) != 2 {
		t.Fatalf("re-ingest created new pages: %+v", second)
	}

	pg := m.Pages(elementsDB)[1]
	if key, _ := pg.Properties.PlainText(records.PropElementKey); key != first.DocHash+":wall-2" {
		t.Fatalf("stored key = %q", key)
	}
	if el := records.DecodeElement(pg); el.ElementKey != "wall-2" || el.SiteID != "site-1" || el.Source != models.SourceUpload {
		t.Fatalf("decoded = %+v", el)
	}
}

func TestIngestValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	var verr *models.ValidationError

	if _, err := svc.Ingest(ctx, IngestRequest{}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err := svc.Ingest(ctx, IngestRequest{DocHash: "abc", Elements: []models.ExtractedElement{{Identifier: "x", Confidence: 1.5}}})
	if !errors.As(err, &verr) || verr.Field != "confidence" {
		t.Fatalf("expected confidence error, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, err := svc.Ingest(ctx, IngestRequest{
		SiteID:  "site-1",
		DocHash: "h1",
		Elements: []models.ExtractedElement{
			{Identifier: "D-101", Type: models.ElementDoor, SheetRef: "A101", Confidence: 0.9, Attributes: map[string]any{"hardware": "Panic Bar"}},
			{Identifier: "D-102", Type: models.ElementDoor, SheetRef: "A102", Confidence: 0.9},
			{Identifier: "W-1", Type: models.ElementWall, SheetRef: "A101", Confidence: 0.8, Notes: "fire rated"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ingest(ctx, IngestRequest{SiteID: "site-2", DocHash: "h2", Elements: []models.ExtractedElement{
		{Identifier: "D-900", Type: models.ElementDoor, Confidence: 0.5},
	}}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		q    Query
		want int
	}{
		{"all", Query{}, 4},
		{"type", Query{Type: models.ElementDoor}, 3},
		{"site and type", Query{Type: models.ElementDoor, SiteID: "site-1"}, 2},
		{"sheet", Query{SheetRef: "A101"}, 2},
		{"identifier text", Query{Q: "d-10"}, 2},
		{"notes text", Query{Q: "FIRE"}, 1},
		{"attribute text", Query{Q: "panic"}, 1},
		{"no match", Query{Q: "window"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Search(ctx, tt.q)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d elements, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}
