package quiethours

import (
	"testing"
	"time"

	"github.com/patino82/construction-app/internal/models"
)

func nyTime(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return time.Date(2025, 6, 10, hour, minute, 0, 0, loc)
}

var overnight = models.QuietHours{Start: "20:00", End: "06:00", TZ: "America/New_York", Bypass: []string{"ALERTS"}}

func TestIsQuietOvernight(t *testing.T) {
	cases := []struct {
		hour, minute int
		want         bool
	}{
		{2, 0, true},
		{12, 0, false},
		{20, 0, true},
		{19, 59, false},
		{5, 59, true},
		{6, 0, false},
	}
	for _, tc := range cases {
		if got := IsQuiet(overnight, nyTime(t, tc.hour, tc.minute)); got != tc.want {
			t.Errorf("IsQuiet at %02d:%02d = %v, want %v", tc.hour, tc.minute, got, tc.want)
		}
	}
}

func TestIsQuietConvertsZone(t *testing.T) {
	// 07:00 UTC is 03:00 in New York during daylight time.
	at := time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC)
	if !IsQuiet(overnight, at) {
		t.Fatal("expected UTC instant to be converted to New York time")
	}
}

func TestIsQuietSameDayAndDisabled(t *testing.T) {
	day := models.QuietHours{Start: "09:00", End: "17:00", TZ: "UTC"}
	if !IsQuiet(day, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatal("start is inclusive")
	}
	if IsQuiet(day, time.Date(2025, 1, 1, 17, 0, 0, 0, time.UTC)) {
		t.Fatal("end is exclusive")
	}
	off := models.QuietHours{Start: "08:00", End: "08:00", TZ: "UTC"}
	for h := 0; h < 24; h++ {
		if IsQuiet(off, time.Date(2025, 1, 1, h, 0, 0, 0, time.UTC)) {
			t.Fatalf("zero-width window triggered at %d:00", h)
		}
	}
}

func TestIsQuietBadZoneUsesUTC(t *testing.T) {
	cfg := models.QuietHours{Start: "01:00", End: "02:00", TZ: "Nowhere/Special"}
	if !IsQuiet(cfg, time.Date(2025, 1, 1, 1, 30, 0, 0, time.UTC)) {
		t.Fatal("expected UTC evaluation for unknown zone")
	}
}

func TestBypassAndSuppressed(t *testing.T) {
	if !Bypasses(overnight, "alerts") || !Bypasses(overnight, "Alerts") {
		t.Fatal("bypass should ignore case")
	}
	if Bypasses(overnight, "marketing") {
		t.Fatal("unlisted topic should not bypass")
	}
	night := nyTime(t, 2, 0)
	if Suppressed(overnight, "ALERTS", night) {
		t.Fatal("allow-listed topic must not be suppressed")
	}
	if !Suppressed(overnight, "LOGS", night) {
		t.Fatal("other topics are suppressed at night")
	}
	if Suppressed(overnight, "LOGS", nyTime(t, 12, 0)) {
		t.Fatal("nothing is suppressed at noon")
	}
}
