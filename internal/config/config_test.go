package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME at a temp dir so no real env file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SITESYNC_ENV_FILE", "")
	for _, k := range []string{
		"SITESYNC_HOME", "NOTION_TOKEN", "NOTION_DBID_TASKS", "NOTION_RETRIES",
		"SITESYNC_WEEKLY_CRON", "SITESYNC_SCHEDULER_TICK", "SITESYNC_SCHEDULER_LOCK_PATH",
		"FO_CHECKIN_WEBHOOK", "COO_DIGEST_WEBHOOK", "MEAL_PLAN_WEBHOOK", "WEBHOOK_LEDGER",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Notion.Version != "2022-06-28" || cfg.Notion.Retries != 3 || cfg.Notion.PageSize != 100 {
		t.Fatalf("notion defaults: %+v", cfg.Notion)
	}
	if cfg.Collections.AdminSettings != "2718b7ee283b80939b7cd5d080804e4c" || cfg.Collections.Tasks == "" {
		t.Fatalf("collection defaults: %+v", cfg.Collections)
	}
	if cfg.App.Home != filepath.Join(home, DefaultHomeDir) {
		t.Fatalf("home = %q", cfg.App.Home)
	}
	if cfg.LedgerPath() != filepath.Join(home, DefaultHomeDir, "deliveries.db") {
		t.Fatalf("ledger = %q", cfg.LedgerPath())
	}
	if cfg.Scheduler.LockPath != filepath.Join(home, DefaultHomeDir, "scheduler.lock") || cfg.Scheduler.Tick != 30*time.Second {
		t.Fatalf("scheduler = %+v", cfg.Scheduler)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "NOTION_TOKEN") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestLoadOverridesFromEnvFile(t *testing.T) {
	home := isolate(t)
	envDir := filepath.Join(home, ".config", "sitesync")
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "NOTION_TOKEN=secret_abcdefgh\nNOTION_DBID_TASKS=tasks-override\nFO_CHECKIN_WEBHOOK=https://hooks.example.com/a\nSITESYNC_HOME=~/state\n"
	if err := os.WriteFile(filepath.Join(envDir, "env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NOTION_RETRIES", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Collections.Tasks != "tasks-override" || cfg.Notion.Retries != 5 {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Collections, cfg.Notion)
	}
	if cfg.App.Home != filepath.Join(home, "state") {
		t.Fatalf("home = %q", cfg.App.Home)
	}
	if got := cfg.Webhooks.Static(); len(got) != 1 || got["FO_CHECKIN"] != "https://hooks.example.com/a" {
		t.Fatalf("static webhooks = %v", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if r := cfg.Redacted(); r.Notion.Token != "secr****" || cfg.Notion.Token != "secret_abcdefgh" {
		t.Fatalf("redacted = %q, original = %q", r.Notion.Token, cfg.Notion.Token)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := Config{
		Notion: NotionConfig{Token: "t", PageSize: 100},
		App:    AppConfig{WeeklyCron: "0 6 * * MON"},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	bad := base
	bad.Notion.PageSize = 500
	if err := bad.Validate(); err == nil {
		t.Fatal("page size above 100 should fail")
	}
	bad = base
	bad.App.WeeklyCron = "every monday"
	if err := bad.Validate(); err == nil {
		t.Fatal("bad cron should fail")
	}
}
