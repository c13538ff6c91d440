package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/patino82/construction-app/internal/channels"
	"github.com/patino82/construction-app/internal/events"
	"github.com/patino82/construction-app/internal/gantt"
	"github.com/patino82/construction-app/internal/lookahead"
	"github.com/patino82/construction-app/internal/models"
)

// DefaultTimelineTitle heads rendered look-ahead charts.
const DefaultTimelineTitle = "3 Week Look Ahead"

// LookaheadTopic is the messaging topic for look-ahead announcements.
const LookaheadTopic = "LOOKAHEAD"

// timelineRequest is one pass of the build, render and publish flow.
type timelineRequest struct {
	Build   *lookahead.BuildRequest // nil renders the rows already stored
	Week    string
	SiteID  string
	Key     string // limits stored rows to one build; ignored with Build
	Render  gantt.Options
	Persist bool
	Notify  bool
}

type timelineRun struct {
	Rows   []models.ScheduleRow `json:"rows"`
	URL    string               `json:"url"`
	Key    string               `json:"key,omitempty"`
	Bytes  int                  `json:"bytes"`
	Stored bool                 `json:"persisted"`
	Notice channels.Outcome     `json:"notification,omitempty"`
	image  []byte
}

// buildLookahead builds rows and publishes LOOKAHEAD_BUILT.
func (a *app) buildLookahead(ctx context.Context, req lookahead.BuildRequest) ([]models.ScheduleRow, error) {
	rows, err := a.builder.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	a.events.Publish(ctx, events.New(events.LookaheadBuilt, map[string]any{
		"weekStartIso":   req.WeekStart,
		"idempotencyKey": req.IdempotencyKey,
		"project":        req.SiteID,
		"rows":           len(rows),
	}))
	return rows, nil
}

// publishTimeline renders the week's rows and optionally records the image
// URL in settings and announces it.
func (a *app) publishTimeline(ctx context.Context, req timelineRequest) (timelineRun, error) {
	var run timelineRun
	var err error
	if req.Build != nil {
		run.Rows, err = a.buildLookahead(ctx, *req.Build)
	} else {
		run.Rows, err = a.builder.Rows(ctx, req.Week, req.SiteID, req.Key)
	}
	if err != nil {
		return run, err
	}

	opts := req.Render
	opts.WeekStart = req.Week
	if opts.Title == "" {
		opts.Title = DefaultTimelineTitle
	}
	res, err := a.renderer.Render(ctx, run.Rows, opts)
	if err != nil {
		return run, fmt.Errorf("render timeline: %w", err)
	}
	run.URL, run.Key, run.Bytes, run.image = res.URL, res.Key, len(res.Image), res.Image

	// Inline data URLs are not persisted; only hosted images are.
	if req.Persist && shareableURL(res.URL) == "" {
		slog.Warn("Timeline not persisted: no image storage configured", "week", req.Week)
	} else if req.Persist {
		current, err := a.settings.Get(ctx, true)
		if err != nil {
			return run, fmt.Errorf("persist timeline url: %w", err)
		}
		urls := current.URLs
		urls.TimelineImage = res.URL
		if _, err := a.settings.Update(ctx, models.SettingsPatch{URLs: &urls}); err != nil {
			return run, fmt.Errorf("persist timeline url: %w", err)
		}
		run.Stored = true
	}

	a.events.Publish(ctx, events.New(events.TimelineStored, map[string]any{
		"weekStartIso": req.Week,
		"url":          shareableURL(res.URL),
		"key":          res.Key,
		"rows":         len(run.Rows),
	}))

	if req.Notify {
		msg := fmt.Sprintf("%s for week of %s: %d tasks", opts.Title, req.Week, len(run.Rows))
		if u := shareableURL(res.URL); u != "" {
			msg += "\n" + u
		}
		run.Notice = a.dispatcher.SendTopic(ctx, LookaheadTopic, msg)
	}
	slog.Info("Timeline published", "week", req.Week, "rows", len(run.Rows), "persisted", run.Stored, "notice", run.Notice)
	return run, nil
}

// shareableURL drops inline data URLs, which are too large to pass around.
func shareableURL(u string) string {
	if strings.HasPrefix(u, "data:") {
		return ""
	}
	return u
}
