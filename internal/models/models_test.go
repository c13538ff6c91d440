package models

import (
	"errors"
	"testing"
	"time"
)

func TestRowStatusForCoversEveryTaskStatus(t *testing.T) {
	want := map[TaskStatus]RowStatus{
		TaskPending:    RowPlanned,
		TaskInProgress: RowCommitted,
		TaskBlocked:    RowAtRisk,
		TaskComplete:   RowDone,
		TaskHold:       RowAtRisk,
	}
	for _, st := range TaskStatuses {
		got := RowStatusFor(st)
		if got != want[st] {
			t.Errorf("RowStatusFor(%q) = %q, want %q", st, got, want[st])
		}
	}
	if got := RowStatusFor(TaskStatus("weird")); got != RowPlanned {
		t.Errorf("unknown status mapped to %q", got)
	}
}

func TestParseTaskStatus(t *testing.T) {
	cases := map[string]TaskStatus{
		"In Progress": TaskInProgress,
		"in_progress": TaskInProgress,
		"COMPLETE":    TaskComplete,
		" hold ":      TaskHold,
		"":            TaskPending,
		"archived":    TaskPending,
	}
	for in, want := range cases {
		if got := ParseTaskStatus(in); got != want {
			t.Errorf("ParseTaskStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnumDefaults(t *testing.T) {
	if ParsePriority("bogus") != PriorityMedium {
		t.Fatal("priority default")
	}
	if ParseSiteStatus("") != SiteActive {
		t.Fatal("site status default")
	}
	if ParseElementType("Window") != ElementUnknown {
		t.Fatal("element type default")
	}
	if ParseElementType("Base_Cabinet") != ElementBaseCabinet {
		t.Fatal("element type parse")
	}
	if ParseElementSource("") != SourceUpload {
		t.Fatal("element source default")
	}
}

func TestTaskValidate(t *testing.T) {
	if err := (Task{IdempotencyKey: "short"}).Validate(); err == nil {
		t.Fatal("expected short key to fail")
	}
	if err := (Task{IdempotencyKey: "task-0001-key"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestElementValidate(t *testing.T) {
	base := ExtractedElement{ElementKey: "door-1", DocHash: "abc", Confidence: 0.5}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := base
	bad.Confidence = 1.2
	var ve *ValidationError
	if err := bad.Validate(); !errors.As(err, &ve) || ve.Field != "confidence" {
		t.Fatalf("expected confidence error, got %v", err)
	}
	bad = base
	bad.DocHash = " "
	if err := bad.Validate(); err == nil {
		t.Fatal("expected doc hash error")
	}
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	s.ID = "cfg"
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	bad := s
	bad.QuietHours.Start = "25:00"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected bad start to fail")
	}

	bad = s
	bad.QuietHours.TZ = "Mars/Olympus"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected bad tz to fail")
	}

	bad = s
	bad.Webhooks = map[string]string{"FO_CHECKIN": "ftp://example.com"}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected bad webhook to fail")
	}

	bad = s
	bad.ID = ""
	if err := bad.Validate(); err == nil {
		t.Fatal("expected missing id to fail")
	}
}

func TestParseClock(t *testing.T) {
	if m, err := ParseClock("06:30"); err != nil || m != 390 {
		t.Fatalf("ParseClock(06:30) = %d, %v", m, err)
	}
	for _, in := range []string{"6", "24:00", "12:60", "ab:cd", ""} {
		if _, err := ParseClock(in); err == nil {
			t.Errorf("ParseClock(%q) should fail", in)
		}
	}
}

func TestSettingsPatchApply(t *testing.T) {
	cur := DefaultSettings()
	cur.ID = "cfg"
	cur.Webhooks = map[string]string{"A": "https://a.example"}
	cur.Billing.Plan = "team"

	patch := SettingsPatch{
		QuietHours: &QuietHours{Start: "21:00", End: "05:00", TZ: "UTC", Bypass: []string{"alerts", "ALERTS", " ops "}},
		URLs:       &PublicURLs{TimelineImage: "https://cdn.example/g.png"},
	}
	next := patch.Apply(cur)

	if next.QuietHours.Start != "21:00" || next.QuietHours.TZ != "UTC" {
		t.Fatalf("quiet hours not replaced: %+v", next.QuietHours)
	}
	if len(next.QuietHours.Bypass) != 2 || next.QuietHours.Bypass[0] != "ALERTS" || next.QuietHours.Bypass[1] != "OPS" {
		t.Fatalf("bypass not normalized: %v", next.QuietHours.Bypass)
	}
	if next.URLs.TimelineImage != "https://cdn.example/g.png" {
		t.Fatalf("urls not replaced: %+v", next.URLs)
	}
	if next.Billing.Plan != "team" || next.Webhooks["A"] != "https://a.example" {
		t.Fatalf("absent fields should be untouched: %+v", next)
	}
	if cur.QuietHours.Start != "20:00" {
		t.Fatal("current value was mutated")
	}
}

func TestNormalizeUppercasesTopics(t *testing.T) {
	s := AdminSettings{Messaging: MessagingConfig{Topics: map[string]int64{"logs": 7}}}
	s.Normalize()
	if s.Messaging.Topics["LOGS"] != 7 {
		t.Fatalf("topics = %v", s.Messaging.Topics)
	}
	if s.Billing.Plan != "single" || s.Billing.Tier != "default" {
		t.Fatalf("billing defaults = %+v", s.Billing)
	}
}

func TestDailyLogKeyUsesUTCDate(t *testing.T) {
	ny, _ := time.LoadLocation("America/New_York")
	at := time.Date(2025, 3, 4, 22, 0, 0, 0, ny)
	if got := DailyLogKey("site-1", at); got != "site-1:2025-03-05" {
		t.Fatalf("DailyLogKey = %q", got)
	}
}

func TestScheduleRowID(t *testing.T) {
	if got := ScheduleRowID("t1", "2025-01-06"); got != "t1-2025-01-06" {
		t.Fatalf("ScheduleRowID = %q", got)
	}
}
