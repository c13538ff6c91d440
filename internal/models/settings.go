package models

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// QuietHours is a local-time suppression window. Start == End disables it.
type QuietHours struct {
	Start  string   `json:"start"`
	End    string   `json:"end"`
	TZ     string   `json:"tz"`
	Bypass []string `json:"allow"`
}

// MessagingConfig routes bot messages: one chat, numeric forum topics per topic name.
type MessagingConfig struct {
	ChatID   *int64           `json:"chatIdExec,omitempty"`
	Topics   map[string]int64 `json:"topics"`
	Commands []string         `json:"commands"`
}

// BillingConfig is the billing plan attached to the workspace.
type BillingConfig struct {
	Plan          string `json:"plan"`
	Tier          string `json:"tier"`
	WebhookSecret string `json:"webhookSecret,omitempty"`
}

// PublicURLs are externally reachable links published by the system.
type PublicURLs struct {
	TimelineImage string `json:"ganttPublicUrl,omitempty"`
	DashboardBase string `json:"dashboardBaseUrl,omitempty"`
}

// AdminSettings is the singleton configuration record.
type AdminSettings struct {
	ID           string            `json:"id"`
	FeatureFlags map[string]bool   `json:"featureFlags"`
	QuietHours   QuietHours        `json:"quietHours"`
	Messaging    MessagingConfig   `json:"telegram"`
	Webhooks     map[string]string `json:"webhooks"`
	Billing      BillingConfig     `json:"stripe"`
	URLs         PublicURLs        `json:"urls"`
	PageID       string            `json:"pageId"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// DefaultSettings returns the schema defaults.
func DefaultSettings() AdminSettings {
	return AdminSettings{
		FeatureFlags: map[string]bool{},
		QuietHours: QuietHours{
			Start: "20:00",
			End:   "06:00",
			TZ:    "America/New_York",
		},
		Messaging: MessagingConfig{Topics: map[string]int64{}},
		Webhooks:  map[string]string{},
		Billing:   BillingConfig{Plan: "single", Tier: "default"},
	}
}

// Clone returns a copy that shares no maps, slices or pointers with s.
func (s AdminSettings) Clone() AdminSettings {
	out := s
	out.FeatureFlags = maps.Clone(s.FeatureFlags)
	out.Webhooks = maps.Clone(s.Webhooks)
	out.QuietHours.Bypass = slices.Clone(s.QuietHours.Bypass)
	out.Messaging.Topics = maps.Clone(s.Messaging.Topics)
	out.Messaging.Commands = slices.Clone(s.Messaging.Commands)
	if s.Messaging.ChatID != nil {
		id := *s.Messaging.ChatID
		out.Messaging.ChatID = &id
	}
	return out
}

// Normalize upper-cases topic names and fills nil collections.
func (s *AdminSettings) Normalize() {
	if s.FeatureFlags == nil {
		s.FeatureFlags = map[string]bool{}
	}
	if s.Webhooks == nil {
		s.Webhooks = map[string]string{}
	}
	topics := make(map[string]int64, len(s.Messaging.Topics))
	for k, v := range s.Messaging.Topics {
		topics[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	s.Messaging.Topics = topics

	bypass := make([]string, 0, len(s.QuietHours.Bypass))
	for _, b := range s.QuietHours.Bypass {
		b = strings.ToUpper(strings.TrimSpace(b))
		if b != "" && !slices.Contains(bypass, b) {
			bypass = append(bypass, b)
		}
	}
	s.QuietHours.Bypass = bypass

	if s.Billing.Plan == "" {
		s.Billing.Plan = "single"
	}
	if s.Billing.Tier == "" {
		s.Billing.Tier = "default"
	}
}

// Validate checks the settings schema.
func (s AdminSettings) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return invalid("id", "is required")
	}
	if _, err := ParseClock(s.QuietHours.Start); err != nil {
		return invalid("quietHours.start", "%v", err)
	}
	if _, err := ParseClock(s.QuietHours.End); err != nil {
		return invalid("quietHours.end", "%v", err)
	}
	if _, err := time.LoadLocation(s.QuietHours.TZ); err != nil || s.QuietHours.TZ == "" {
		return invalid("quietHours.tz", "unknown time zone %q", s.QuietHours.TZ)
	}
	for name, u := range s.Webhooks {
		if !isHTTPURL(u) {
			return invalid("webhooks."+name, "%q is not an http(s) URL", u)
		}
	}
	if u := s.URLs.TimelineImage; u != "" && !isHTTPURL(u) && !strings.HasPrefix(u, "data:") && !strings.HasPrefix(u, "file://") {
		return invalid("urls.ganttPublicUrl", "%q is not a URL", u)
	}
	if u := s.URLs.DashboardBase; u != "" && !isHTTPURL(u) {
		return invalid("urls.dashboardBaseUrl", "%q is not an http(s) URL", u)
	}
	return nil
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%q is not HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%q has an invalid hour", s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%q has an invalid minute", s)
	}
	return hours*60 + minutes, nil
}

func isHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SettingsPatch is a partial update. Nil fields are left untouched; a present
// field replaces the current value wholesale.
type SettingsPatch struct {
	FeatureFlags map[string]bool   `json:"featureFlags,omitempty"`
	QuietHours   *QuietHours       `json:"quietHours,omitempty"`
	Messaging    *MessagingConfig  `json:"telegram,omitempty"`
	Webhooks     map[string]string `json:"webhooks,omitempty"`
	Billing      *BillingConfig    `json:"stripe,omitempty"`
	URLs         *PublicURLs       `json:"urls,omitempty"`
}

// Apply merges the patch over current and returns the result.
func (p SettingsPatch) Apply(current AdminSettings) AdminSettings {
	next := current
	if p.FeatureFlags != nil {
		next.FeatureFlags = maps.Clone(p.FeatureFlags)
	}
	if p.QuietHours != nil {
		next.QuietHours = *p.QuietHours
		next.QuietHours.Bypass = slices.Clone(p.QuietHours.Bypass)
	}
	if p.Messaging != nil {
		next.Messaging = *p.Messaging
		next.Messaging.Topics = maps.Clone(p.Messaging.Topics)
		next.Messaging.Commands = slices.Clone(p.Messaging.Commands)
	}
	if p.Webhooks != nil {
		next.Webhooks = maps.Clone(p.Webhooks)
	}
	if p.Billing != nil {
		next.Billing = *p.Billing
	}
	if p.URLs != nil {
		next.URLs = *p.URLs
	}
	next.Normalize()
	return next
}
