package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// EnvFileCandidates lists env files in load order: SITESYNC_ENV_FILE, then the
// per-user locations.
func EnvFileCandidates() []string {
	var out []string
	if explicit := strings.TrimSpace(os.Getenv("SITESYNC_ENV_FILE")); explicit != "" {
		out = append(out, explicit)
	}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out,
			filepath.Join(home, ".config", "sitesync", "env"),
			filepath.Join(home, ".sitesync", ".env"),
		)
	}
	return out
}

// LoadEnvFileCandidates loads every candidate that exists. Variables already
// in the process environment are never overridden.
func LoadEnvFileCandidates() {
	seen := map[string]struct{}{}
	for _, p := range EnvFileCandidates() {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		_ = loadEnvFile(abs)
	}
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, unquote(strings.TrimSpace(val)))
	}
	return sc.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
