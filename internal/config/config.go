// Package config provides configuration types and loading for sitesync.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/patino82/construction-app/internal/scheduler"
)

// Config is the root configuration struct. Every group is filled from the
// environment; tags carry full variable names.
type Config struct {
	App         AppConfig
	Notion      NotionConfig
	Collections CollectionIDs
	Telegram    TelegramConfig
	Stripe      StripeConfig
	Storage     StorageConfig
	Kafka       KafkaConfig
	Webhooks    WebhookConfig
	Scheduler   scheduler.Config
}

// ---------------------------------------------------------------------------
// App – process-level settings
// ---------------------------------------------------------------------------

// AppConfig groups process settings.
type AppConfig struct {
	Env          string `envconfig:"SITESYNC_ENV" default:"development"`
	LogLevel     string `envconfig:"SITESYNC_LOG_LEVEL" default:"info"`
	LogFile      string `envconfig:"SITESYNC_LOG_FILE"`
	Home         string `envconfig:"SITESYNC_HOME"`
	WeeklyCron   string `envconfig:"SITESYNC_WEEKLY_CRON" default:"0 6 * * MON"`
	DashboardURL string `envconfig:"SITESYNC_DASHBOARD_URL"`
}

// ---------------------------------------------------------------------------
// Notion – remote store
// ---------------------------------------------------------------------------

// NotionConfig holds remote store credentials.
type NotionConfig struct {
	Token    string `envconfig:"NOTION_TOKEN"`
	Version  string `envconfig:"NOTION_VERSION" default:"2022-06-28"`
	Retries  int    `envconfig:"NOTION_RETRIES" default:"3"`
	PageSize int    `envconfig:"NOTION_PAGE_SIZE" default:"100"`
}

// CollectionIDs names each remote collection. Each may be overridden with
// NOTION_DBID_<NAME>.
type CollectionIDs struct {
	AdminSettings string `envconfig:"NOTION_DBID_ADMIN_SETTINGS" default:"2718b7ee283b80939b7cd5d080804e4c"`
	Projects      string `envconfig:"NOTION_DBID_PROJECTS" default:"2608b7ee283b8080b2fed4ea9e15e2f3"`
	Tasks         string `envconfig:"NOTION_DBID_TASKS" default:"2608b7ee283b80e1b7d4d05719293505"`
	DailyLogs     string `envconfig:"NOTION_DBID_DAILY_LOGS" default:"2608b7ee283b805793aaccb78b9ca7db"`
	Plans         string `envconfig:"NOTION_DBID_PLANS" default:"2504a72e226a80588464d4a8f5ab8bc3"`
	Elements      string `envconfig:"NOTION_DBID_ELEMENTS" default:"2504a72e226a80588464d4a8f5ab8bc3"`
	Lookahead     string `envconfig:"NOTION_DBID_LOOKAHEAD" default:"2608b7ee283b80e1b7d4d05719293505"`
}

// ---------------------------------------------------------------------------
// Channels and integrations
// ---------------------------------------------------------------------------

// TelegramConfig configures the messaging bot.
type TelegramConfig struct {
	Token   string `envconfig:"TELEGRAM_BOT_TOKEN"`
	APIBase string `envconfig:"TELEGRAM_API_BASE"`
}

// StripeConfig configures billing.
type StripeConfig struct {
	SecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	APIBase   string `envconfig:"STRIPE_API_BASE"`
}

// StorageConfig selects where rendered timelines go. BucketURL wins over Dir;
// with neither, images are returned inline.
type StorageConfig struct {
	BucketURL  string `envconfig:"STORAGE_BUCKET_URL"`
	WriteToken string `envconfig:"STORAGE_WRITE_TOKEN"`
	PublicURL  string `envconfig:"STORAGE_PUBLIC_URL"`
	Dir        string `envconfig:"STORAGE_DIR"`
}

// KafkaConfig enables the event stream when Brokers is set.
type KafkaConfig struct {
	Brokers string `envconfig:"KAFKA_BROKERS"`
	Topic   string `envconfig:"KAFKA_TOPIC" default:"sitesync.events"`
}

// WebhookConfig holds static webhook endpoints and the delivery ledger path.
type WebhookConfig struct {
	FOCheckin string `envconfig:"FO_CHECKIN_WEBHOOK"`
	COODigest string `envconfig:"COO_DIGEST_WEBHOOK"`
	MealPlan  string `envconfig:"MEAL_PLAN_WEBHOOK"`
	Ledger    string `envconfig:"WEBHOOK_LEDGER"`
}

// Static maps event names to the configured endpoints, skipping blanks.
func (w WebhookConfig) Static() map[string]string {
	out := map[string]string{}
	for name, u := range map[string]string{
		"FO_CHECKIN": w.FOCheckin,
		"COO_DIGEST": w.COODigest,
		"MEAL_PLAN":  w.MealPlan,
	} {
		if u = strings.TrimSpace(u); u != "" {
			out[name] = u
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Derived paths and checks
// ---------------------------------------------------------------------------

// LedgerPath is the webhook ledger file, defaulting under the home dir.
func (c *Config) LedgerPath() string {
	if c.Webhooks.Ledger != "" {
		return c.Webhooks.Ledger
	}
	return filepath.Join(c.App.Home, "deliveries.db")
}

// LockPath is the scheduler lock file, defaulting under the home dir.
func (c *Config) LockPath() string {
	if c.Scheduler.LockPath != "" {
		return c.Scheduler.LockPath
	}
	return filepath.Join(c.App.Home, "scheduler.lock")
}

// Validate checks the settings needed to talk to the remote store.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Notion.Token) == "" {
		return fmt.Errorf("NOTION_TOKEN is required to access the remote store")
	}
	if c.Notion.Retries < 0 {
		return fmt.Errorf("NOTION_RETRIES must not be negative")
	}
	if c.Notion.PageSize <= 0 || c.Notion.PageSize > 100 {
		return fmt.Errorf("NOTION_PAGE_SIZE must be in [1,100], got %d", c.Notion.PageSize)
	}
	if _, err := scheduler.Parse(c.App.WeeklyCron); err != nil {
		return fmt.Errorf("SITESYNC_WEEKLY_CRON: %w", err)
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() Config {
	out := *c
	out.Notion.Token = mask(c.Notion.Token)
	out.Telegram.Token = mask(c.Telegram.Token)
	out.Stripe.SecretKey = mask(c.Stripe.SecretKey)
	out.Storage.WriteToken = mask(c.Storage.WriteToken)
	return out
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****"
	}
}
