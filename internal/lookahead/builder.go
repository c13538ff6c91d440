// Package lookahead derives weekly look-ahead rows from task records and
// persists them idempotently.
package lookahead

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/records"
)

// MinBuildKeyLength is the shortest accepted build idempotency key.
const MinBuildKeyLength = 8

// BuildRequest selects the week and the key under which rows are stored.
type BuildRequest struct {
	WeekStart      string `json:"weekStartIso"`
	IdempotencyKey string `json:"idempotencyKey"`
	SiteID         string `json:"projectId,omitempty"`
}

// Validate checks the request before any remote call.
func (r BuildRequest) Validate() error {
	if _, err := time.Parse("2006-01-02", r.WeekStart); err != nil {
		return &models.ValidationError{Field: "weekStartIso", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", r.WeekStart)}
	}
	if len(r.IdempotencyKey) < MinBuildKeyLength {
		return &models.ValidationError{Field: "idempotencyKey", Reason: fmt.Sprintf("must be at least %d characters", MinBuildKeyLength)}
	}
	return nil
}

// WeekStart returns the Monday of t's week as YYYY-MM-DD, in t's location.
func WeekStart(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}

// NextWeekStart is the Monday strictly after t's week start.
func NextWeekStart(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, 7-offset).Format("2006-01-02")
}

// Builder turns tasks into look-ahead rows.
type Builder struct {
	store       *notion.Store
	tasksDB     string
	lookaheadDB string
	now         func() time.Time
}

// NewBuilder creates a builder reading tasksDB and writing lookaheadDB.
func NewBuilder(store *notion.Store, tasksDB, lookaheadDB string) *Builder {
	return &Builder{store: store, tasksDB: tasksDB, lookaheadDB: lookaheadDB, now: time.Now}
}

// SetClock overrides the clock used for row update stamps.
func (b *Builder) SetClock(now func() time.Time) { b.now = now }

// Build derives one row per task (optionally limited to req.SiteID), upserts
// each, and returns them in task order. The first persistence failure aborts
// the build; rows already written stay written.
func (b *Builder) Build(ctx context.Context, req BuildRequest) ([]models.ScheduleRow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	pages, err := b.store.ListAll(ctx, b.tasksDB, nil)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	rows := make([]models.ScheduleRow, 0, len(pages))
	for _, pg := range pages {
		// Rows may share the tasks collection; they carry a build key.
		if _, isRow := pg.Properties.PlainText(records.PropBuildKey); isRow {
			continue
		}
		task := records.DecodeTask(pg)
		if req.SiteID != "" && task.SiteID != req.SiteID {
			continue
		}
		row := b.derive(task, req)
		pageID, err := b.store.UpsertByKey(ctx, b.lookaheadDB, records.PropIdempotencyKey,
			records.RowRecordKey(req.IdempotencyKey, row.ID),
			func() notion.Properties { return records.EncodeScheduleRow(row) })
		if err != nil {
			return nil, fmt.Errorf("persist row %s: %w", row.ID, err)
		}
		row.PageID = pageID
		rows = append(rows, row)
	}

	slog.Info("Look-ahead built", "week", req.WeekStart, "site", req.SiteID, "rows", len(rows))
	return rows, nil
}

func (b *Builder) derive(task models.Task, req BuildRequest) models.ScheduleRow {
	return models.ScheduleRow{
		ID:             models.ScheduleRowID(task.ID, req.WeekStart),
		WeekStart:      req.WeekStart,
		SiteID:         task.SiteID,
		TaskID:         task.ID,
		TaskName:       task.Name,
		Trade:          task.Trade,
		Owner:          task.Owner,
		Start:          task.Start,
		Finish:         task.Finish,
		NeedBy:         task.NeedBy,
		Priority:       task.Priority,
		Status:         models.RowStatusFor(task.Status),
		Schedule:       task.Schedule,
		IdempotencyKey: req.IdempotencyKey,
		TaskPageID:     task.PageID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      b.now().UTC(),
	}
}

// Rows reads back the stored rows for a week, optionally limited to one site
// and one build key. Without a key, rows stored under several keys collapse to
// one per row id, keeping the most recently edited.
func (b *Builder) Rows(ctx context.Context, weekStart, siteID, buildKey string) ([]models.ScheduleRow, error) {
	var siteFilter, keyFilter *notion.Filter
	if siteID != "" {
		siteFilter = notion.RelationContains(records.PropProject, siteID)
	}
	if buildKey != "" {
		keyFilter = notion.TextEquals(records.PropBuildKey, buildKey)
	}
	pages, err := b.store.ListAll(ctx, b.lookaheadDB, notion.And(notion.DateEquals(records.PropWeekStart, weekStart), siteFilter, keyFilter))
	if err != nil {
		return nil, fmt.Errorf("list look-ahead rows: %w", err)
	}
	rows := make([]models.ScheduleRow, 0, len(pages))
	seen := make(map[string]int, len(pages))
	for _, pg := range pages {
		row := records.DecodeScheduleRow(pg)
		if i, dup := seen[row.ID]; dup {
			if row.UpdatedAt.After(rows[i].UpdatedAt) {
				rows[i] = row
			}
			continue
		}
		seen[row.ID] = len(rows)
		rows = append(rows, row)
	}
	return rows, nil
}
