// Package dailylog keeps one field log per site and day and appends GPS check-ins to it.
package dailylog

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/records"
)

// CheckInInput is a GPS fix to append to a log. A zero Timestamp means now.
type CheckInInput struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters *float64
	Timestamp      time.Time
}

// Service reads and writes daily logs.
type Service struct {
	store *notion.Store
	db    string
	now   func() time.Time
}

// NewService creates a daily log service over the logs collection.
func NewService(store *notion.Store, collectionID string) *Service {
	return &Service{store: store, db: collectionID, now: time.Now}
}

// SetClock overrides the clock used when a check-in has no timestamp.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// GetOrCreate returns the log for siteID on date's UTC day, creating it under
// the key "{siteId}:{YYYY-MM-DD}" when none exists.
func (s *Service) GetOrCreate(ctx context.Context, siteID string, date time.Time) (models.DailyLog, error) {
	day := models.ISODate(date)
	existing, err := s.store.FindFirst(ctx, s.db, notion.And(
		notion.DateEquals(records.PropLogDate, day),
		notion.RelationContains(records.PropProject, siteID),
	))
	if err != nil {
		return models.DailyLog{}, fmt.Errorf("find daily log: %w", err)
	}
	if existing != nil {
		return records.DecodeDailyLog(*existing), nil
	}

	key := models.DailyLogKey(siteID, date)
	id, err := s.store.UpsertByKey(ctx, s.db, records.PropIdempotencyKey, key, func() notion.Properties {
		return records.EncodeDailyLogKey(siteID, date)
	})
	if err != nil {
		return models.DailyLog{}, fmt.Errorf("create daily log %s: %w", key, err)
	}
	dayStart, _ := time.Parse("2006-01-02", day)
	now := s.now().UTC()
	return models.DailyLog{
		ID:        id,
		SiteID:    siteID,
		Date:      dayStart,
		Issues:    []string{},
		CheckIns:  []models.CheckIn{},
		PageID:    id,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddCheckIn appends in to the log's check-ins and writes the full list back.
// The returned log carries the new list; the argument is left untouched.
func (s *Service) AddCheckIn(ctx context.Context, log models.DailyLog, in CheckInInput) (models.DailyLog, error) {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	next := log
	next.CheckIns = append(slices.Clone(log.CheckIns), models.CheckIn{
		Timestamp:      ts,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		AccuracyMeters: in.AccuracyMeters,
	})
	next.UpdatedAt = ts

	key := models.DailyLogKey(log.SiteID, log.Date)
	id, err := s.store.UpsertByKey(ctx, s.db, records.PropIdempotencyKey, key, func() notion.Properties {
		return records.EncodeCheckIns(next, ts)
	})
	if err != nil {
		return models.DailyLog{}, fmt.Errorf("record check-in on %s: %w", key, err)
	}
	if next.PageID == "" {
		next.ID, next.PageID = id, id
	}
	return next, nil
}
