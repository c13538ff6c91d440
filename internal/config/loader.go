package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// DefaultHomeDir is the state directory under the user's home.
const DefaultHomeDir = ".sitesync"

// Load reads env files, then fills every group from the environment. It does
// not validate; callers that need the remote store call Validate.
func Load() (*Config, error) {
	LoadEnvFileCandidates()

	cfg := &Config{}
	specs := []any{
		&cfg.App, &cfg.Notion, &cfg.Collections, &cfg.Telegram, &cfg.Stripe,
		&cfg.Storage, &cfg.Kafka, &cfg.Webhooks, &cfg.Scheduler,
	}
	for _, spec := range specs {
		if err := envconfig.Process("", spec); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	home, err := resolveHome(cfg.App.Home)
	if err != nil {
		return nil, err
	}
	cfg.App.Home = home
	if cfg.Scheduler.LockPath == "" {
		cfg.Scheduler.LockPath = cfg.LockPath()
	}
	return cfg, nil
}

// resolveHome expands a leading "~" and defaults to ~/.sitesync.
func resolveHome(h string) (string, error) {
	h = strings.TrimSpace(h)
	if h != "" && !strings.HasPrefix(h, "~") {
		return h, nil
	}
	base, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	if h == "" {
		return filepath.Join(base, DefaultHomeDir), nil
	}
	return filepath.Join(base, h[1:]), nil
}

// EnsureDir creates path with owner-only permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
