// Package settings serves the admin settings singleton through a TTL cache.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patino82/construction-app/internal/cache"
	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/records"
)

// DefaultTTL is how long a fetched settings record is served from memory.
const DefaultTTL = 60 * time.Second

// CacheKey is the cache slot holding the settings record.
const CacheKey = "admin-settings"

// ErrNoSettings means the admin collection holds no settings record.
var ErrNoSettings = errors.New("admin settings not found")

// Service reads and updates the admin settings record.
type Service struct {
	store        *notion.Store
	collectionID string
	defaults     models.AdminSettings
	now          func() time.Time
	ttl          time.Duration
	cache        *cache.TTL[string, models.AdminSettings]
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the cache lifetime.
func WithTTL(d time.Duration) Option { return func(s *Service) { s.ttl = d } }

// WithClock injects the clock used for cache expiry and update stamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithDefaults overrides the values used for fields absent from the record.
func WithDefaults(d models.AdminSettings) Option { return func(s *Service) { s.defaults = d } }

// NewService creates a settings service over the admin collection.
func NewService(store *notion.Store, collectionID string, opts ...Option) *Service {
	s := &Service{
		store:        store,
		collectionID: collectionID,
		defaults:     models.DefaultSettings(),
		now:          time.Now,
		ttl:          DefaultTTL,
	}
	for _, o := range opts {
		o(s)
	}
	s.cache = cache.New[string, models.AdminSettings](s.ttl, s.now)
	return s
}

// Get returns the settings, from cache unless expired or forceRefresh is set.
// Callers get their own copy and may modify it freely.
func (s *Service) Get(ctx context.Context, forceRefresh bool) (models.AdminSettings, error) {
	if !forceRefresh {
		if v, ok := s.cache.Get(CacheKey); ok {
			return v.Clone(), nil
		}
	}

	pages, err := s.store.ListAll(ctx, s.collectionID, nil)
	if err != nil {
		return models.AdminSettings{}, fmt.Errorf("load admin settings: %w", err)
	}
	if len(pages) == 0 {
		return models.AdminSettings{}, ErrNoSettings
	}
	if len(pages) > 1 {
		slog.Warn("Multiple admin settings records; using the first", "collection", s.collectionID, "count", len(pages))
	}

	cfg := records.DecodeSettings(pages[0], s.defaults)
	if err := cfg.Validate(); err != nil {
		return models.AdminSettings{}, fmt.Errorf("admin settings %s: %w", pages[0].ID, err)
	}
	s.cache.Set(CacheKey, cfg.Clone())
	return cfg, nil
}

// Update merges patch into the current settings, validates, persists, and caches the result.
func (s *Service) Update(ctx context.Context, patch models.SettingsPatch) (models.AdminSettings, error) {
	current, err := s.Get(ctx, false)
	if err != nil {
		return models.AdminSettings{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return models.AdminSettings{}, err
	}
	if err := s.store.Update(ctx, current.ID, records.EncodeSettings(next)); err != nil {
		return models.AdminSettings{}, fmt.Errorf("update admin settings: %w", err)
	}
	next.UpdatedAt = s.now().UTC()
	s.cache.Set(CacheKey, next.Clone())
	slog.Info("Admin settings updated", "id", next.ID)
	return next, nil
}

// QuietHours returns the current quiet-hours window.
func (s *Service) QuietHours(ctx context.Context) (models.QuietHours, error) {
	cfg, err := s.Get(ctx, false)
	if err != nil {
		return models.QuietHours{}, err
	}
	return cfg.QuietHours, nil
}

// Invalidate drops the named cache entries, or everything when none are named.
func (s *Service) Invalidate(keys ...string) {
	if len(keys) == 0 {
		s.cache.Clear()
		return
	}
	for _, k := range keys {
		s.cache.Delete(k)
	}
}
