package lookahead

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/records"
	"github.com/patino82/construction-app/internal/retry"
)

const (
	tasksDB     = "tasks"
	lookaheadDB = "lookahead"
)

func seedTasks(m *notion.MemoryBackend) {
	add := func(name, site, status, start, finish string) {
		props := notion.Properties{
			records.PropName:    notion.Title(name),
			records.PropProject: notion.Relation(site),
			records.PropStatus:  notion.Select(status),
			records.PropTrade:   notion.Text("HVAC"),
		}
		if start != "" {
			props[records.PropStart] = notion.Date(start)
		}
		if finish != "" {
			props[records.PropFinish] = notion.Date(finish)
		}
		m.Seed(tasksDB, props)
	}
	add("Rough-in", "site-a", "in_progress", "2025-01-06", "2025-01-09")
	add("Inspection", "site-b", "blocked", "2025-01-08", "")
	add("Trim", "site-a", "complete", "", "")
}

func newBuilder(m notion.Backend) *Builder {
	store := notion.NewStore(m, notion.WithRetry(retry.Policy{Retries: 0}))
	b := NewBuilder(store, tasksDB, lookaheadDB)
	b.SetClock(func() time.Time { return time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC) })
	return b
}

func TestBuildDerivesAndPersists(t *testing.T) {
	m := notion.NewMemoryBackend()
	seedTasks(m)
	b := newBuilder(m)
	ctx := context.Background()

	rows, err := b.Build(ctx, BuildRequest{WeekStart: "2025-01-06", IdempotencyKey: "week-02-build"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	wantStatus := []models.RowStatus{models.RowCommitted, models.RowAtRisk, models.RowDone}
	for i, r := range rows {
		if r.Status != wantStatus[i] {
			t.Errorf("row %d status = %q, want %q", i, r.Status, wantStatus[i])
		}
		if r.ID != r.TaskID+"-2025-01-06" || r.PageID == "" {
			t.Errorf("row %d identity: %+v", i, r)
		}
	}
	if rows[0].TaskName != "Rough-in" {
		t.Fatalf("rows out of task order: %q", rows[0].TaskName)
	}
	if n := len(m.Pages(lookaheadDB)); n != 3 {
		t.Fatalf("expected 3 stored rows, got %d", n)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	m := notion.NewMemoryBackend()
	seedTasks(m)
	b := newBuilder(m)
	ctx := context.Background()
	req := BuildRequest{WeekStart: "2025-01-06", IdempotencyKey: "week-02-build"}

	first, err := b.Build(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Status != second[i].Status || first[i].PageID != second[i].PageID {
			t.Fatalf("row %d changed across rebuilds: %+v vs %+v", i, first[i], second[i])
		}
	}
	if n := len(m.Pages(lookaheadDB)); n != 3 {
		t.Fatalf("rebuild duplicated rows: %d stored", n)
	}

	if _, err := b.Build(ctx, BuildRequest{WeekStart: "2025-01-06", IdempotencyKey: "week-02-other"}); err != nil {
		t.Fatal(err)
	}
	if n := len(m.Pages(lookaheadDB)); n != 6 {
		t.Fatalf("a different key should store its own rows, got %d", n)
	}
}

func TestBuildFiltersBySite(t *testing.T) {
	m := notion.NewMemoryBackend()
	seedTasks(m)
	b := newBuilder(m)
	ctx := context.Background()

	rows, err := b.Build(ctx, BuildRequest{WeekStart: "2025-01-06", IdempotencyKey: "site-a-build", SiteID: "site-a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 site-a rows, got %d", len(rows))
	}

	stored, err := b.Rows(ctx, "2025-01-06", "site-a", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || stored[0].TaskName != "Rough-in" || stored[0].Start == nil {
		t.Fatalf("stored rows: %+v", stored)
	}
	if other, _ := b.Rows(ctx, "2025-01-13", "", ""); len(other) != 0 {
		t.Fatalf("unexpected rows for another week: %d", len(other))
	}
}

func TestBuildValidatesRequest(t *testing.T) {
	b := newBuilder(notion.NewMemoryBackend())
	var ve *models.ValidationError
	if _, err := b.Build(context.Background(), BuildRequest{WeekStart: "01/06/2025", IdempotencyKey: "week-02-build"}); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for date, got %v", err)
	}
	if _, err := b.Build(context.Background(), BuildRequest{WeekStart: "2025-01-06", IdempotencyKey: "short"}); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for key, got %v", err)
	}
}

type failingCreates struct {
	*notion.MemoryBackend
	allow int
}

func (f *failingCreates) CreatePage(ctx context.Context, id string, props notion.Properties) (*notion.Page, error) {
	if id == lookaheadDB {
		if f.allow == 0 {
			return nil, &notion.APIError{Status: 500, Code: "internal_server_error", Message: "boom"}
		}
		f.allow--
	}
	return f.MemoryBackend.CreatePage(ctx, id, props)
}

func TestBuildAbortsOnPersistFailure(t *testing.T) {
	m := notion.NewMemoryBackend()
	seedTasks(m)
	backend := &failingCreates{MemoryBackend: m, allow: 1}
	b := newBuilder(backend)

	rows, err := b.Build(context.Background(), BuildRequest{WeekStart: "2025-01-06", IdempotencyKey: "week-02-build"})
	if err == nil {
		t.Fatal("expected failure")
	}
	var apiErr *notion.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 500 {
		t.Fatalf("expected wrapped API error, got %v", err)
	}
	if rows != nil {
		t.Fatalf("no rows should be returned on failure, got %d", len(rows))
	}
	if n := len(m.Pages(lookaheadDB)); n != 1 {
		t.Fatalf("expected the first row to remain, got %d", n)
	}
}

func TestBuildSkipsRowsInSharedCollection(t *testing.T) {
	m := notion.NewMemoryBackend()
	seedTasks(m)
	store := notion.NewStore(m, notion.WithRetry(retry.Policy{Retries: 0}))
	b := NewBuilder(store, tasksDB, tasksDB)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rows, err := b.Build(ctx, BuildRequest{WeekStart: "2025-01-06", IdempotencyKey: "shared-build"})
		if err != nil {
			t.Fatalf("build %d: %v", i, err)
		}
		if len(rows) != 3 {
			t.Fatalf("build %d: expected 3 rows, got %d", i, len(rows))
		}
	}
	if n := len(m.Pages(tasksDB)); n != 6 {
		t.Fatalf("expected 3 tasks and 3 rows, got %d pages", n)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day, this, next string
	}{
		{"2025-01-06", "2025-01-06", "2025-01-13"}, // Monday
		{"2025-01-08", "2025-01-06", "2025-01-13"},
		{"2025-01-12", "2025-01-06", "2025-01-13"}, // Sunday
		{"2024-12-31", "2024-12-30", "2025-01-06"},
	}
	for _, tt := range tests {
		day, _ := time.Parse("2006-01-02", tt.day)
		if got := WeekStart(day); got != tt.this {
			t.Errorf("WeekStart(%s) = %s, want %s", tt.day, got, tt.this)
		}
		if got := NextWeekStart(day); got != tt.next {
			t.Errorf("NextWeekStart(%s) = %s, want %s", tt.day, got, tt.next)
		}
	}
}

func TestRowsCollapseAcrossBuildKeys(t *testing.T) {
	m := notion.NewMemoryBackend()
	seedTasks(m)
	b := newBuilder(m)
	ctx := context.Background()

	m.SetClock(func() time.Time { return time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC) })
	if _, err := b.Build(ctx, BuildRequest{WeekStart: "2025-01-06", IdempotencyKey: "lookahead-2025-01-06"}); err != nil {
		t.Fatal(err)
	}
	m.SetClock(func() time.Time { return time.Date(2025, 1, 6, 6, 0, 0, 0, time.UTC) })
	if _, err := b.Build(ctx, BuildRequest{WeekStart: "2025-01-06", IdempotencyKey: "weekly-2025-01-06"}); err != nil {
		t.Fatal(err)
	}

	rows, err := b.Rows(ctx, "2025-01-06", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected one row per task, got %d", len(rows))
	}
	ids := map[string]bool{}
	for _, r := range rows {
		if ids[r.ID] {
			t.Fatalf("duplicate row %s", r.ID)
		}
		ids[r.ID] = true
		if r.IdempotencyKey != "weekly-2025-01-06" {
			t.Fatalf("expected the latest build to win, got %q", r.IdempotencyKey)
		}
	}

	keyed, err := b.Rows(ctx, "2025-01-06", "", "lookahead-2025-01-06")
	if err != nil {
		t.Fatal(err)
	}
	if len(keyed) != 3 || keyed[0].IdempotencyKey != "lookahead-2025-01-06" {
		t.Fatalf("keyed rows = %+v", keyed)
	}
}
