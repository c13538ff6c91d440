package records

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
)

func page(id string, props notion.Properties) notion.Page {
	return notion.Page{Object: "page", ID: id, Properties: props, LastEditedTime: time.Unix(1700000000, 0).UTC()}
}

func TestDecodeSiteFallbacks(t *testing.T) {
	s := DecodeSite(page("p1", notion.Properties{
		PropLatitude: notion.Number(40.7),
		PropStatus:   notion.Text("complete"),
	}))
	if s.Name != "Unnamed Project" || s.Slug != "p1" {
		t.Fatalf("name/slug fallbacks: %+v", s)
	}
	if s.Latitude == nil || *s.Latitude != 40.7 || s.Longitude != nil {
		t.Fatalf("coordinates: %v %v", s.Latitude, s.Longitude)
	}
	if s.GeofenceRadius != models.DefaultGeofenceRadius {
		t.Fatalf("radius = %v", s.GeofenceRadius)
	}
	if s.Status != models.SiteActive {
		t.Fatalf("wrong-typed status should default, got %q", s.Status)
	}
	if _, _, ok := s.Coordinates(); ok {
		t.Fatal("half coordinates should not be usable")
	}
}

func TestDecodeSiteZeroCoordinatesAreMissing(t *testing.T) {
	s := DecodeSite(page("p1", notion.Properties{
		PropLatitude:  notion.Number(0),
		PropLongitude: notion.Number(0),
	}))
	if s.Latitude != nil || s.Longitude != nil {
		t.Fatalf("coordinates: %v %v", s.Latitude, s.Longitude)
	}

	s = DecodeSite(page("p2", notion.Properties{
		PropLatitude:  notion.Number(0),
		PropLongitude: notion.Number(-74.0),
	}))
	if _, lon, ok := s.Coordinates(); !ok || lon != -74.0 {
		t.Fatal("a zero latitude alone is a real coordinate")
	}
}

func TestSiteRoundTrip(t *testing.T) {
	lat, lon := 40.0, -74.0
	in := models.Site{Name: "Yard", Slug: "yard", Latitude: &lat, Longitude: &lon, GeofenceRadius: 250, Status: models.SitePlanning}
	out := DecodeSite(page("p2", EncodeSite(in)))
	if out.Name != "Yard" || out.GeofenceRadius != 250 || out.Status != models.SitePlanning || *out.Longitude != -74 {
		t.Fatalf("round trip: %+v", out)
	}
}

func TestDecodeTaskFallbacks(t *testing.T) {
	task := DecodeTask(page("t1", notion.Properties{
		PropSchedule: notion.Text("{not json"),
		PropStatus:   notion.Select("In Progress"),
		PropStart:    notion.Date("2025-01-06"),
	}))
	if task.Name != "t1" {
		t.Fatalf("name fallback = %q", task.Name)
	}
	if task.IdempotencyKey != "t1-idempotent" {
		t.Fatalf("key fallback = %q", task.IdempotencyKey)
	}
	if len(task.Schedule) != 0 || task.Schedule == nil {
		t.Fatalf("malformed schedule should decode empty, got %v", task.Schedule)
	}
	if task.Status != models.TaskInProgress || task.Priority != models.PriorityMedium {
		t.Fatalf("status/priority: %q %q", task.Status, task.Priority)
	}
	if task.Start == nil || task.Start.Day() != 6 || task.Finish != nil {
		t.Fatalf("dates: %v %v", task.Start, task.Finish)
	}
}

func TestScheduleRowRoundTrip(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	row := models.ScheduleRow{
		ID:             "task-1-2025-01-06",
		WeekStart:      "2025-01-06",
		SiteID:         "site-1",
		TaskID:         "task-1",
		TaskName:       "Pour slab",
		Trade:          "STRUCTURE",
		Start:          &start,
		Priority:       models.PriorityHigh,
		Status:         models.RowAtRisk,
		Schedule:       map[string]any{"crew": "A"},
		IdempotencyKey: "build-0001",
		TaskPageID:     "task-1",
	}
	props := EncodeScheduleRow(row)
	if key, _ := props.PlainText(PropIdempotencyKey); key != "build-0001:task-1-2025-01-06" {
		t.Fatalf("row record key = %q", key)
	}
	if _, ok := props[PropOwner]; ok {
		t.Fatal("empty owner should be omitted")
	}

	got := DecodeScheduleRow(page("pg", props))
	if got.ID != row.ID || got.TaskName != "Pour slab" || got.IdempotencyKey != "build-0001" {
		t.Fatalf("decoded row: %+v", got)
	}
	if got.Status != models.RowAtRisk || got.Trade != "STRUCTURE" || got.Schedule["crew"] != "A" {
		t.Fatalf("decoded row fields: %+v", got)
	}
}

func TestDecodeSettings(t *testing.T) {
	defaults := models.DefaultSettings()
	defaults.QuietHours.Bypass = []string{"ALERTS", "OPS"}

	s := DecodeSettings(page("cfg", notion.Properties{
		PropFeatureFlags:   notion.MultiSelect("gantt", "checkin"),
		PropQuietStart:     notion.Text("21:30"),
		PropTelegramTopics: notion.MultiSelect("logs:12", "ops: 7", "broken", "bad:x"),
		PropTelegramChat:   notion.Number(-100123),
		PropWebhooks:       notion.Texts("FO_CHECKIN=https://hooks.example/a?x=1", "junk"),
		PropGanttURL:       notion.URL("https://cdn.example/g.png"),
	}), defaults)

	if s.QuietHours.Start != "21:30" || s.QuietHours.End != "06:00" || s.QuietHours.TZ != "America/New_York" {
		t.Fatalf("quiet hours: %+v", s.QuietHours)
	}
	if len(s.QuietHours.Bypass) != 2 {
		t.Fatalf("absent Quiet Allow should keep defaults: %v", s.QuietHours.Bypass)
	}
	if s.Messaging.Topics["LOGS"] != 12 || s.Messaging.Topics["OPS"] != 7 || len(s.Messaging.Topics) != 2 {
		t.Fatalf("topics: %v", s.Messaging.Topics)
	}
	if s.Messaging.ChatID == nil || *s.Messaging.ChatID != -100123 {
		t.Fatalf("chat id: %v", s.Messaging.ChatID)
	}
	if s.Webhooks["FO_CHECKIN"] != "https://hooks.example/a?x=1" || len(s.Webhooks) != 1 {
		t.Fatalf("webhooks: %v", s.Webhooks)
	}
	if !s.FeatureFlags["gantt"] || s.Billing.Plan != "single" {
		t.Fatalf("flags/billing: %+v", s)
	}
	if s.URLs.TimelineImage != "https://cdn.example/g.png" {
		t.Fatalf("urls: %+v", s.URLs)
	}

	explicit := DecodeSettings(page("cfg", notion.Properties{PropQuietAllow: notion.MultiSelect("alerts")}), defaults)
	if len(explicit.QuietHours.Bypass) != 1 || explicit.QuietHours.Bypass[0] != "ALERTS" {
		t.Fatalf("explicit bypass: %v", explicit.QuietHours.Bypass)
	}
}

func TestSettingsEncodeRoundTrip(t *testing.T) {
	chat := int64(42)
	in := models.DefaultSettings()
	in.ID = "cfg"
	in.Messaging = models.MessagingConfig{ChatID: &chat, Topics: map[string]int64{"LOGS": 3}, Commands: []string{"/status"}}
	in.Webhooks = map[string]string{"A": "https://a.example"}
	in.QuietHours.Bypass = []string{"ALERTS"}

	props := EncodeSettings(in)
	data, err := json.Marshal(props)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire notion.Properties
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// The wire encoding carries no type discriminator; restore it the way the API would.
	for k, v := range props {
		w := wire[k]
		w.Type = v.Type
		wire[k] = w
	}
	out := DecodeSettings(page("cfg", wire), models.DefaultSettings())
	if *out.Messaging.ChatID != 42 || out.Messaging.Topics["LOGS"] != 3 || out.Webhooks["A"] != "https://a.example" {
		t.Fatalf("round trip: %+v", out)
	}
	if out.URLs.TimelineImage != "" {
		t.Fatalf("empty url should stay empty: %q", out.URLs.TimelineImage)
	}
}

func TestDailyLogCheckIns(t *testing.T) {
	acc := 5.0
	at := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	log := models.DailyLog{
		SiteID:   "site-1",
		Date:     at,
		CheckIns: []models.CheckIn{{Timestamp: at, Latitude: 1, Longitude: 2, AccuracyMeters: &acc}},
	}
	props := EncodeCheckIns(log, at)
	if key, _ := props.PlainText(PropIdempotencyKey); key != "site-1:2025-03-05" {
		t.Fatalf("key = %q", key)
	}
	if _, ok := props[PropName]; ok {
		t.Fatal("check-in update should not rename the log")
	}

	got := DecodeDailyLog(page("log", props))
	if len(got.CheckIns) != 1 || *got.CheckIns[0].AccuracyMeters != 5 || !got.CheckIns[0].Timestamp.Equal(at) {
		t.Fatalf("check-ins: %+v", got.CheckIns)
	}

	if n := len(DecodeCheckIns("[{oops")); n != 0 {
		t.Fatalf("malformed check-ins decoded %d entries", n)
	}
}

func TestElementRoundTrip(t *testing.T) {
	in := models.ExtractedElement{
		SiteID:     "site-1",
		Type:       models.ElementDoor,
		Identifier: "D-101",
		Attributes: map[string]any{"width": "36in"},
		Confidence: 0.9,
		ElementKey: "door-101",
		DocHash:    "abc123",
		Source:     models.SourceManual,
	}
	out := DecodeElement(page("e1", EncodeElement(in, "abc123:door-101")))
	if out.ElementKey != "door-101" || out.DocHash != "abc123" || out.Type != models.ElementDoor || out.Source != models.SourceManual {
		t.Fatalf("element: %+v", out)
	}

	bare := DecodeElement(page("e2", notion.Properties{PropName: notion.Title("W-1")}))
	if bare.Confidence != DefaultConfidence || bare.ElementKey != "W-1" || bare.Type != models.ElementUnknown {
		t.Fatalf("element fallbacks: %+v", bare)
	}
}
