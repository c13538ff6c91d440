package gantt

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/patino82/construction-app/internal/models"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleRows() []models.ScheduleRow {
	return []models.ScheduleRow{
		{ID: "a", TaskName: "Rough-in", Trade: "hvac", Start: date("2025-01-07"), Finish: date("2025-01-10")},
		{ID: "b", TaskName: "Inspection", Start: date("2025-01-08")},
		{ID: "c", TaskName: "Same day", Trade: "ELECTRICAL", Start: date("2025-01-09"), Finish: date("2025-01-09")},
	}
}

func TestBarGeometry(t *testing.T) {
	dw := DayWidth(DefaultWidth)
	if math.Abs(dw-1400.0/21) > 1e-9 {
		t.Fatalf("day width = %v", dw)
	}
	week := *date("2025-01-06")
	x, w := BarSpan(week, *date("2025-01-07"), *date("2025-01-10"), dw)
	if math.Abs(x-dw) > 1e-9 || math.Abs(w-3*dw) > 1e-9 {
		t.Fatalf("bar = %v,%v", x, w)
	}
	_, w = BarSpan(week, *date("2025-01-09"), *date("2025-01-09"), dw)
	if math.Abs(w-dw) > 1e-9 {
		t.Fatalf("zero-length bar should be one day wide, got %v", w)
	}
	start := date("2025-01-06").Add(12 * time.Hour)
	_, w = BarSpan(week, start, start.Add(30*time.Hour), dw)
	if math.Abs(w-2*dw) > 1e-9 {
		t.Fatalf("partial days round up, got %v", w)
	}
	x, _ = BarSpan(week, date("2025-01-08").Add(15*time.Hour), *date("2025-01-10"), dw)
	if math.Abs(x-2*dw) > 1e-9 {
		t.Fatalf("start offset should drop the time of day, got %v", x)
	}
}

func TestLayout(t *testing.T) {
	now := date("2025-01-13").Add(12 * time.Hour)
	sc, err := Layout(sampleRows(), Options{WeekStart: "2025-01-06", Now: now}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Width != DefaultWidth || sc.Height != MinHeight {
		t.Fatalf("size = %dx%d", sc.Width, sc.Height)
	}

	var bars []Rect
	for _, r := range sc.Rects {
		if r.Label != "" {
			bars = append(bars, r)
		}
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Fill != TradeColor("HVAC") || bars[1].Fill != TradeColor("ELECTRICAL") {
		t.Fatal("bars not colored by trade")
	}
	if math.Abs(bars[0].X-(LabelGutter+DayWidth(DefaultWidth))) > 1e-9 {
		t.Fatalf("bar x = %v", bars[0].X)
	}

	var placeholder, ticks int
	for _, tx := range sc.Texts {
		switch {
		case tx.Value == "No schedule":
			placeholder++
		case strings.HasPrefix(tx.Value, "+") && strings.HasSuffix(tx.Value, "d"):
			ticks++
		}
	}
	if placeholder != 1 || ticks != 4 {
		t.Fatalf("placeholders=%d ticks=%d", placeholder, ticks)
	}

	var today *Line
	for i := range sc.Lines {
		if sc.Lines[i].Dash > 0 {
			today = &sc.Lines[i]
		}
	}
	if today == nil {
		t.Fatal("missing today marker")
	}
	if want := LabelGutter + 7*DayWidth(DefaultWidth); math.Abs(today.X1-want) > 1e-9 {
		t.Fatalf("today x = %v, want %v", today.X1, want)
	}
}

func TestLayoutHeightGrowsWithRows(t *testing.T) {
	rows := make([]models.ScheduleRow, 10)
	sc, err := Layout(rows, Options{WeekStart: "2025-01-06"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Height != HeaderHeight+LaneHeight*10 {
		t.Fatalf("height = %d", sc.Height)
	}
	if _, err := Layout(nil, Options{WeekStart: "next week"}, nil); err == nil {
		t.Fatal("expected bad week start to fail")
	}
}

func TestTradeColorFallback(t *testing.T) {
	if TradeColor("masonry") != DefaultTradeColor {
		t.Fatal("unknown trade should use default color")
	}
	if TradeColor(" structure ") != mustHex("#f472b6") {
		t.Fatal("trade lookup should ignore case and space")
	}
	if TradeColor("  ") != TradeColor("GENERAL") || TradeColor("") == DefaultTradeColor {
		t.Fatal("blank trade should render as GENERAL")
	}
	if _, err := Hex("#12345"); err == nil {
		t.Fatal("expected short hex to fail")
	}
}

func TestRenderInlineWithoutStorage(t *testing.T) {
	r := NewRenderer(WithClock(func() time.Time { return *date("2025-01-08") }))
	res, err := r.Render(context.Background(), sampleRows(), Options{WeekStart: "2025-01-06"})
	if err != nil {
		t.Fatal(err)
	}
	prefix := "data:image/png;base64,"
	if !strings.HasPrefix(res.URL, prefix) || res.Key != "" {
		t.Fatalf("expected data URL, got key=%q url=%.40q", res.Key, res.URL)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(res.URL, prefix))
	if err != nil || !bytes.Equal(raw, res.Image) {
		t.Fatal("data URL does not embed the image")
	}
	img, err := png.Decode(bytes.NewReader(res.Image))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultWidth || b.Dy() != MinHeight {
		t.Fatalf("image size = %v", b)
	}
	// Today is two days in; the dashed marker starts with a painted run.
	x := int(math.Round(LabelGutter + 2*DayWidth(DefaultWidth)))
	if c := img.At(x, HeaderHeight+1); c != colorToday {
		rr, gg, bb, _ := c.RGBA()
		t.Fatalf("expected today marker at x=%d, got %d,%d,%d", x, rr>>8, gg>>8, bb>>8)
	}
}

func TestRenderUploadsToBucket(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		gotPath, gotAuth, gotType = r.URL.Path, r.Header.Get("Authorization"), r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	at := time.UnixMilli(1736300000000)
	bucket := NewBucketStorage(srv.URL+"/", "write-token")
	bucket.PublicURL = "https://cdn.example"
	r := NewRenderer(WithStorage(bucket), WithClock(func() time.Time { return at }), WithDashboardQR("https://dash.example/site-a"))

	res, err := r.Render(context.Background(), sampleRows(), Options{WeekStart: "2025-01-06"})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/gantt/2025-01-06/1736300000000.png" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer write-token" || gotType != ContentType {
		t.Fatalf("headers: %q %q", gotAuth, gotType)
	}
	if !bytes.Equal(gotBody, res.Image) {
		t.Fatal("uploaded body mismatch")
	}
	if res.URL != "https://cdn.example/gantt/2025-01-06/1736300000000.png" {
		t.Fatalf("url = %q", res.URL)
	}
}

func TestBucketStorageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()
	_, err := NewBucketStorage(srv.URL, "").PutObject(context.Background(), "k.png", ContentType, []byte{1})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestDirStorage(t *testing.T) {
	dir := t.TempDir()
	u, err := DirStorage{Dir: dir}.PutObject(context.Background(), "gantt/2025-01-06/1.png", ContentType, []byte("png"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u, "file://") || !strings.HasSuffix(u, "/gantt/2025-01-06/1.png") {
		t.Fatalf("url = %q", u)
	}
	data, err := os.ReadFile(dir + "/gantt/2025-01-06/1.png")
	if err != nil || string(data) != "png" {
		t.Fatalf("stored %q, %v", data, err)
	}
}
