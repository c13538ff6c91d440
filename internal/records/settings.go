package records

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
)

// DecodeSettings maps the admin settings page over defaults. Scalars missing
// from the page keep their default; the bypass list keeps the default only
// when the page has no "Quiet Allow" property at all.
func DecodeSettings(pg notion.Page, defaults models.AdminSettings) models.AdminSettings {
	p := pg.Properties
	s := models.AdminSettings{
		ID:           pg.ID,
		FeatureFlags: map[string]bool{},
		QuietHours: models.QuietHours{
			Start: textOr(p, PropQuietStart, defaults.QuietHours.Start),
			End:   textOr(p, PropQuietEnd, defaults.QuietHours.End),
			TZ:    textOr(p, PropQuietTZ, defaults.QuietHours.TZ),
		},
		Messaging: models.MessagingConfig{
			Topics:   map[string]int64{},
			Commands: multiOrEmpty(p, PropTelegramCommands),
		},
		Webhooks: map[string]string{},
		Billing: models.BillingConfig{
			Plan:          textOr(p, PropStripePlan, defaults.Billing.Plan),
			Tier:          textOr(p, PropStripeTier, defaults.Billing.Tier),
			WebhookSecret: textOr(p, PropStripeWebhook, ""),
		},
		PageID:    pg.ID,
		CreatedAt: createdAt(pg),
		UpdatedAt: pg.LastEditedTime,
	}

	for _, flag := range multiOrEmpty(p, PropFeatureFlags) {
		s.FeatureFlags[flag] = true
	}

	if allow, ok := p.MultiSelectNames(PropQuietAllow); ok {
		s.QuietHours.Bypass = allow
	} else {
		s.QuietHours.Bypass = slices.Clone(defaults.QuietHours.Bypass)
	}

	for _, opt := range multiOrEmpty(p, PropTelegramTopics) {
		name, id, ok := strings.Cut(opt, ":")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			continue
		}
		s.Messaging.Topics[strings.TrimSpace(name)] = n
	}

	if chat, ok := p.NumberValue(PropTelegramChat); ok {
		id := int64(chat)
		s.Messaging.ChatID = &id
	}

	segs, _ := p.AllPlainText(PropWebhooks)
	for _, seg := range segs {
		for _, line := range strings.Split(seg, "\n") {
			key, u, ok := strings.Cut(line, "=")
			key, u = strings.TrimSpace(key), strings.TrimSpace(u)
			if ok && key != "" && u != "" {
				s.Webhooks[key] = u
			}
		}
	}

	if u, ok := p.URLValue(PropGanttURL); ok {
		s.URLs.TimelineImage = u
	}
	if u, ok := p.URLValue(PropDashboardURL); ok {
		s.URLs.DashboardBase = u
	}

	s.Normalize()
	return s
}

// EncodeSettings builds the full admin settings property set.
func EncodeSettings(s models.AdminSettings) notion.Properties {
	var flags []string
	for _, k := range slices.Sorted(maps.Keys(s.FeatureFlags)) {
		if s.FeatureFlags[k] {
			flags = append(flags, k)
		}
	}

	topics := make([]string, 0, len(s.Messaging.Topics))
	for _, k := range slices.Sorted(maps.Keys(s.Messaging.Topics)) {
		topics = append(topics, k+":"+strconv.FormatInt(s.Messaging.Topics[k], 10))
	}

	hooks := make([]string, 0, len(s.Webhooks))
	for _, k := range slices.Sorted(maps.Keys(s.Webhooks)) {
		hooks = append(hooks, k+"="+s.Webhooks[k])
	}

	chat := notion.NullNumber()
	if s.Messaging.ChatID != nil {
		chat = notion.Number(float64(*s.Messaging.ChatID))
	}

	return notion.Properties{
		PropFeatureFlags:     notion.MultiSelect(flags...),
		PropQuietStart:       notion.Text(s.QuietHours.Start),
		PropQuietEnd:         notion.Text(s.QuietHours.End),
		PropQuietTZ:          notion.Text(s.QuietHours.TZ),
		PropQuietAllow:       notion.MultiSelect(s.QuietHours.Bypass...),
		PropTelegramTopics:   notion.MultiSelect(topics...),
		PropTelegramCommands: notion.MultiSelect(s.Messaging.Commands...),
		PropTelegramChat:     chat,
		PropWebhooks:         notion.Texts(hooks...),
		PropStripePlan:       notion.Text(s.Billing.Plan),
		PropStripeTier:       notion.Text(s.Billing.Tier),
		PropStripeWebhook:    notion.Text(s.Billing.WebhookSecret),
		PropGanttURL:         notion.URL(s.URLs.TimelineImage),
		PropDashboardURL:     notion.URL(s.URLs.DashboardBase),
	}
}
