// Package quiethours decides whether a notification falls inside the
// configured quiet window.
package quiethours

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/patino82/construction-app/internal/models"
)

const minutesPerDay = 24 * 60

// IsQuiet reports whether now, converted to the window's time zone, falls in
// the window. A window whose start equals its end never triggers. An
// unloadable zone is evaluated in UTC.
func IsQuiet(cfg models.QuietHours, now time.Time) bool {
	local := now.In(location(cfg.TZ))
	current := local.Hour()*60 + local.Minute()
	start := clockMinutes(cfg.Start)
	end := clockMinutes(cfg.End)

	switch {
	case start == end:
		return false
	case end > start:
		return current >= start && current < end
	default:
		return current >= start || current < end
	}
}

// Bypasses reports whether topic is on the allow list, ignoring case.
func Bypasses(cfg models.QuietHours, topic string) bool {
	t := strings.ToUpper(strings.TrimSpace(topic))
	return slices.ContainsFunc(cfg.Bypass, func(b string) bool {
		return strings.ToUpper(strings.TrimSpace(b)) == t
	})
}

// Suppressed reports whether a message for topic must be held back at now.
func Suppressed(cfg models.QuietHours, topic string, now time.Time) bool {
	return IsQuiet(cfg, now) && !Bypasses(cfg, topic)
}

func location(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("Unknown quiet hours time zone; using UTC", "tz", tz, "error", err)
		return time.UTC
	}
	return loc
}

// clockMinutes reads "HH:MM" leniently: unparsable parts count as zero.
func clockMinutes(s string) int {
	h, m, _ := strings.Cut(strings.TrimSpace(s), ":")
	hours, _ := strconv.Atoi(strings.TrimSpace(h))
	minutes, _ := strconv.Atoi(strings.TrimSpace(m))
	return ((hours*60+minutes)%minutesPerDay + minutesPerDay) % minutesPerDay
}
