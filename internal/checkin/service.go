// Package checkin records a field GPS fix against the nearest site's daily log.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patino82/construction-app/internal/channels"
	"github.com/patino82/construction-app/internal/dailylog"
	"github.com/patino82/construction-app/internal/events"
	"github.com/patino82/construction-app/internal/geo"
	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/records"
)

// NotifyTopic receives check-in announcements.
const NotifyTopic = "LOGS"

// ErrNoSite means no site has coordinates to compare against.
var ErrNoSite = errors.New("no site with coordinates")

// OutsideFenceError is returned when the nearest site is too far away.
type OutsideFenceError struct {
	Site     models.Site
	Distance float64
}

func (e *OutsideFenceError) Error() string {
	return fmt.Sprintf("%.1fm from %s is outside its geofence", e.Distance, e.Site.Name)
}

// Request is one GPS fix. A zero At means now.
type Request struct {
	Latitude       float64   `json:"lat"`
	Longitude      float64   `json:"lon"`
	AccuracyMeters *float64  `json:"accuracy,omitempty"`
	At             time.Time `json:"timestamp,omitempty"`
}

// Validate checks coordinate ranges.
func (r Request) Validate() error {
	if r.Latitude < -90 || r.Latitude > 90 {
		return &models.ValidationError{Field: "lat", Reason: fmt.Sprintf("%v is outside [-90,90]", r.Latitude)}
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return &models.ValidationError{Field: "lon", Reason: fmt.Sprintf("%v is outside [-180,180]", r.Longitude)}
	}
	if r.AccuracyMeters != nil && *r.AccuracyMeters < 0 {
		return &models.ValidationError{Field: "accuracy", Reason: "must not be negative"}
	}
	return nil
}

// Result is a recorded check-in.
type Result struct {
	Site     models.Site     `json:"site"`
	Distance float64         `json:"distanceMeters"`
	Log      models.DailyLog `json:"dailyLog"`
}

// Notifier posts to a messaging topic.
type Notifier interface {
	SendTopic(ctx context.Context, topic, message string) channels.Outcome
}

// Service runs the check-in flow.
type Service struct {
	store     *notion.Store
	sitesDB   string
	logs      *dailylog.Service
	engine    *geo.Engine
	notifier  Notifier
	publisher events.Publisher
	now       func() time.Time
}

// NewService wires the flow. notifier and publisher may be nil.
func NewService(store *notion.Store, sitesDB string, logs *dailylog.Service, notifier Notifier, publisher events.Publisher) *Service {
	return &Service{
		store:     store,
		sitesDB:   sitesDB,
		logs:      logs,
		engine:    geo.NewEngine(),
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

// SetClock overrides the clock used for fixes without a timestamp.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetTolerance overrides the geofence tolerance in meters.
func (s *Service) SetTolerance(m float64) { s.engine.Tolerance = m }

// CheckIn matches req to the nearest site and appends it to today's log there.
func (s *Service) CheckIn(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	at := req.At
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()

	pages, err := s.store.ListAll(ctx, s.sitesDB, nil)
	if err != nil {
		return Result{}, fmt.Errorf("list sites: %w", err)
	}
	sites := make([]models.Site, 0, len(pages))
	for _, pg := range pages {
		sites = append(sites, records.DecodeSite(pg))
	}

	p := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	match, ok := s.engine.Nearest(p, sites)
	if !ok {
		return Result{}, ErrNoSite
	}
	if !s.engine.WithinFence(p, match.Site) {
		return Result{}, &OutsideFenceError{Site: match.Site, Distance: match.Distance}
	}

	log, err := s.logs.GetOrCreate(ctx, match.Site.ID, at)
	if err != nil {
		return Result{}, err
	}
	log, err = s.logs.AddCheckIn(ctx, log, dailylog.CheckInInput{
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AccuracyMeters: req.AccuracyMeters,
		Timestamp:      at,
	})
	if err != nil {
		return Result{}, err
	}
	slog.Info("Check-in recorded", "site", match.Site.ID, "distance", match.Distance, "log", log.ID)

	if s.notifier != nil {
		s.notifier.SendTopic(ctx, NotifyTopic, fmt.Sprintf("Check-in at %s (%.1fm from center)", match.Site.Name, match.Distance))
	}
	if s.publisher != nil {
		gps := map[string]any{"lat": req.Latitude, "lon": req.Longitude}
		if req.AccuracyMeters != nil {
			gps["accuracy"] = *req.AccuracyMeters
		}
		ev := events.New(events.CheckIn, map[string]any{
			"project":    match.Site.ID,
			"dailyLogId": log.ID,
			"timestamp":  at.Format(time.RFC3339),
			"gps":        gps,
		})
		if err := s.publisher.Publish(ctx, ev); err != nil {
			slog.Warn("Check-in event not delivered", "event", ev.ID, "error", err)
		}
	}

	return Result{Site: match.Site, Distance: match.Distance, Log: log}, nil
}
