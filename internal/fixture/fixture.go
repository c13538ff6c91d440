// Package fixture seeds sites, tasks and admin settings from a YAML file.
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/records"
)

// File is the YAML document layout.
type File struct {
	Settings *Settings `yaml:"settings"`
	Sites    []Site    `yaml:"sites"`
	Tasks    []Task    `yaml:"tasks"`
}

// Settings seeds the admin settings record.
type Settings struct {
	QuietHours struct {
		Start string   `yaml:"start"`
		End   string   `yaml:"end"`
		TZ    string   `yaml:"tz"`
		Allow []string `yaml:"allow"`
	} `yaml:"quietHours"`
	Telegram struct {
		ChatID   *int64           `yaml:"chatId"`
		Topics   map[string]int64 `yaml:"topics"`
		Commands []string         `yaml:"commands"`
	} `yaml:"telegram"`
	Webhooks     map[string]string `yaml:"webhooks"`
	FeatureFlags map[string]bool   `yaml:"featureFlags"`
	Dashboard    string            `yaml:"dashboardUrl"`
}

// Site seeds one project.
type Site struct {
	Name      string   `yaml:"name"`
	Slug      string   `yaml:"slug"`
	Address   string   `yaml:"address"`
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
	Radius    float64  `yaml:"radius"`
	Status    string   `yaml:"status"`
}

// Task seeds one task. Site is the slug of a site in the same file.
type Task struct {
	Key      string         `yaml:"key"`
	Name     string         `yaml:"name"`
	Site     string         `yaml:"site"`
	Stage    string         `yaml:"stage"`
	Sequence int            `yaml:"sequence"`
	Trade    string         `yaml:"trade"`
	Owner    string         `yaml:"owner"`
	Start    string         `yaml:"start"`
	Finish   string         `yaml:"finish"`
	NeedBy   string         `yaml:"needBy"`
	Status   string         `yaml:"status"`
	Priority string         `yaml:"priority"`
	Schedule map[string]any `yaml:"schedule"`
}

// Collections names the target collections.
type Collections struct {
	Settings string
	Sites    string
	Tasks    string
}

// Summary counts what Apply wrote.
type Summary struct {
	Settings bool              `json:"settings"`
	Sites    int               `json:"sites"`
	Tasks    int               `json:"tasks"`
	SiteIDs  map[string]string `json:"siteIds"`
}

// Load reads and decodes a fixture file, rejecting unknown fields.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(raw)
}

// Parse decodes fixture YAML.
func Parse(raw []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	slugs := map[string]bool{}
	for i, s := range f.Sites {
		if strings.TrimSpace(s.Slug) == "" {
			return nil, fmt.Errorf("site %d: slug is required", i)
		}
		if slugs[s.Slug] {
			return nil, fmt.Errorf("site %d: duplicate slug %q", i, s.Slug)
		}
		slugs[s.Slug] = true
	}
	for i, t := range f.Tasks {
		if !slugs[t.Site] {
			return nil, fmt.Errorf("task %d (%s): unknown site %q", i, t.Name, t.Site)
		}
		if len(t.Key) < models.MinTaskKeyLength {
			return nil, fmt.Errorf("task %d (%s): key must be at least %d characters", i, t.Name, models.MinTaskKeyLength)
		}
	}
	return &f, nil
}

// Apply upserts the fixture: sites by slug, tasks by idempotency key, and the
// settings record (created when absent). Running it twice changes nothing.
func Apply(ctx context.Context, store *notion.Store, cols Collections, f *File) (Summary, error) {
	sum := Summary{SiteIDs: map[string]string{}}

	for _, s := range f.Sites {
		site := models.Site{
			Name:           s.Name,
			Slug:           s.Slug,
			Address:        s.Address,
			Latitude:       s.Latitude,
			Longitude:      s.Longitude,
			GeofenceRadius: s.Radius,
			Status:         models.ParseSiteStatus(s.Status),
		}
		if site.GeofenceRadius <= 0 {
			site.GeofenceRadius = models.DefaultGeofenceRadius
		}
		id, err := store.UpsertByKey(ctx, cols.Sites, records.PropSlug, s.Slug, func() notion.Properties {
			return records.EncodeSite(site)
		})
		if err != nil {
			return sum, fmt.Errorf("seed site %s: %w", s.Slug, err)
		}
		sum.SiteIDs[s.Slug] = id
		sum.Sites++
	}

	for _, t := range f.Tasks {
		task, err := t.model(sum.SiteIDs[t.Site])
		if err != nil {
			return sum, err
		}
		if _, err := store.UpsertByKey(ctx, cols.Tasks, records.PropIdempotencyKey, t.Key, func() notion.Properties {
			return records.EncodeTask(task)
		}); err != nil {
			return sum, fmt.Errorf("seed task %s: %w", t.Key, err)
		}
		sum.Tasks++
	}

	if f.Settings != nil {
		if err := applySettings(ctx, store, cols.Settings, *f.Settings); err != nil {
			return sum, err
		}
		sum.Settings = true
	}
	return sum, nil
}

func (t Task) model(siteID string) (models.Task, error) {
	task := models.Task{
		Name:           t.Name,
		SiteID:         siteID,
		Stage:          t.Stage,
		Sequence:       t.Sequence,
		Trade:          t.Trade,
		Owner:          t.Owner,
		Status:         models.ParseTaskStatus(t.Status),
		Priority:       models.ParsePriority(t.Priority),
		Schedule:       t.Schedule,
		IdempotencyKey: t.Key,
	}
	if task.Schedule == nil {
		task.Schedule = map[string]any{}
	}
	for _, d := range []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"start", t.Start, &task.Start},
		{"finish", t.Finish, &task.Finish},
		{"needBy", t.NeedBy, &task.NeedBy},
	} {
		if d.raw == "" {
			continue
		}
		v, ok := notion.ParseDate(d.raw)
		if !ok {
			return models.Task{}, fmt.Errorf("task %s: %s %q is not a date", t.Key, d.name, d.raw)
		}
		*d.dst = &v
	}
	return task, nil
}

func applySettings(ctx context.Context, store *notion.Store, collectionID string, s Settings) error {
	cfg := models.DefaultSettings()
	if s.QuietHours.Start != "" {
		cfg.QuietHours.Start = s.QuietHours.Start
	}
	if s.QuietHours.End != "" {
		cfg.QuietHours.End = s.QuietHours.End
	}
	if s.QuietHours.TZ != "" {
		cfg.QuietHours.TZ = s.QuietHours.TZ
	}
	if s.QuietHours.Allow != nil {
		cfg.QuietHours.Bypass = s.QuietHours.Allow
	}
	cfg.Messaging.ChatID = s.Telegram.ChatID
	if s.Telegram.Topics != nil {
		cfg.Messaging.Topics = s.Telegram.Topics
	}
	cfg.Messaging.Commands = s.Telegram.Commands
	if s.Webhooks != nil {
		cfg.Webhooks = s.Webhooks
	}
	if s.FeatureFlags != nil {
		cfg.FeatureFlags = s.FeatureFlags
	}
	cfg.URLs.DashboardBase = s.Dashboard
	cfg.Normalize()

	existing, err := store.FindFirst(ctx, collectionID, nil)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if existing != nil {
		prior := records.DecodeSettings(*existing, models.DefaultSettings())
		cfg.ID = existing.ID
		cfg.URLs.TimelineImage = prior.URLs.TimelineImage
		cfg.Billing = prior.Billing
	} else {
		cfg.ID = "pending"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if existing != nil {
		return store.Update(ctx, existing.ID, records.EncodeSettings(cfg))
	}
	_, err = store.Create(ctx, collectionID, records.EncodeSettings(cfg))
	return err
}
