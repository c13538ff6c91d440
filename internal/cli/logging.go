package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/patino82/construction-app/internal/config"
)

var logCloser io.Closer

// setupLogging installs the default slog handler. Logs go to stderr as text,
// or as JSON to a rotating file when a log file is configured.
func setupLogging(app config.AppConfig) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(app.LogLevel))); err != nil {
		return fmt.Errorf("SITESYNC_LOG_LEVEL: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	closeLogging()
	if app.LogFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(app.LogFile), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   app.LogFile,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	logCloser = lj
	slog.SetDefault(slog.New(slog.NewJSONHandler(lj, opts)))
	return nil
}

func closeLogging() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}
