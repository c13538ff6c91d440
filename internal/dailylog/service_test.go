package dailylog

import (
	"context"
	"testing"
	"time"

	"github.com/patino82/construction-app/internal/models"
	"github.com/patino82/construction-app/internal/notion"
	"github.com/patino82/construction-app/internal/records"
	"github.com/patino82/construction-app/internal/retry"
)

const logsDB = "logs"

func newService() (*Service, *notion.MemoryBackend) {
	m := notion.NewMemoryBackend()
	store := notion.NewStore(m, notion.WithRetry(retry.Policy{Retries: 0}))
	svc := NewService(store, logsDB)
	svc.SetClock(func() time.Time { return time.Date(2025, 3, 5, 15, 0, 0, 0, time.UTC) })
	return svc, m
}

func TestGetOrCreateIsStable(t *testing.T) {
	svc, m := newService()
	ctx := context.Background()
	day := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	first, err := svc.GetOrCreate(ctx, "site-1", day)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" || first.SiteID != "site-1" || len(first.CheckIns) != 0 {
		t.Fatalf("created log: %+v", first)
	}
	second, err := svc.GetOrCreate(ctx, "site-1", day.Add(6*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same log, got %s and %s", first.ID, second.ID)
	}
	if _, err := svc.GetOrCreate(ctx, "site-2", day); err != nil {
		t.Fatal(err)
	}
	if n := len(m.Pages(logsDB)); n != 2 {
		t.Fatalf("expected 2 logs, got %d", n)
	}
	pg := m.Pages(logsDB)[0]
	if title, _ := pg.Properties.TitleText(records.PropName); title != "Daily Log :: 2025-03-05" {
		t.Fatalf("title = %q", title)
	}
}

func TestAddCheckInAppendsInOrder(t *testing.T) {
	svc, m := newService()
	ctx := context.Background()
	day := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	log, err := svc.GetOrCreate(ctx, "site-1", day)
	if err != nil {
		t.Fatal(err)
	}
	acc := 4.5
	log1, err := svc.AddCheckIn(ctx, log, CheckInInput{Latitude: 40, Longitude: -74, AccuracyMeters: &acc, Timestamp: day})
	if err != nil {
		t.Fatal(err)
	}
	log2, err := svc.AddCheckIn(ctx, log1, CheckInInput{Latitude: 40.1, Longitude: -74.1})
	if err != nil {
		t.Fatal(err)
	}
	if len(log.CheckIns) != 0 || len(log1.CheckIns) != 1 {
		t.Fatal("AddCheckIn must not mutate its argument")
	}
	if len(log2.CheckIns) != 2 || log2.CheckIns[1].Timestamp.Hour() != 15 {
		t.Fatalf("check-ins = %+v", log2.CheckIns)
	}

	pages := m.Pages(logsDB)
	if len(pages) != 1 {
		t.Fatalf("expected one stored log, got %d", len(pages))
	}
	stored := records.DecodeDailyLog(pages[0])
	if len(stored.CheckIns) != 2 || stored.CheckIns[0].Latitude != 40 || *stored.CheckIns[0].AccuracyMeters != 4.5 {
		t.Fatalf("stored check-ins = %+v", stored.CheckIns)
	}
	if last, ok := pages[0].Properties.DateTime(records.PropLastCheckin); !ok || last.Hour() != 15 {
		t.Fatalf("last checkin = %v", last)
	}

	reread, err := svc.GetOrCreate(ctx, "site-1", day)
	if err != nil {
		t.Fatal(err)
	}
	if reread.ID != log.ID || len(reread.CheckIns) != 2 {
		t.Fatalf("reread = %+v", reread)
	}
	if models.ISODate(reread.Date) != "2025-03-05" {
		t.Fatalf("date = %v", reread.Date)
	}
}
