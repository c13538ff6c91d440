package gantt

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/patino82/construction-app/internal/models"
)

// ContentType is the media type of rendered charts.
const ContentType = "image/png"

// Result is a rendered chart and where it can be fetched.
type Result struct {
	Image       []byte
	ContentType string
	URL         string
	Key         string
}

// Renderer draws charts and hands them to an optional Storage.
type Renderer struct {
	storage      Storage
	dashboardURL string
	now          func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithStorage uploads rendered charts. Without it, charts come back as data URLs.
func WithStorage(s Storage) RendererOption { return func(r *Renderer) { r.storage = s } }

// WithDashboardQR adds a QR code linking to the dashboard in the header.
func WithDashboardQR(u string) RendererOption { return func(r *Renderer) { r.dashboardURL = u } }

// WithClock overrides the clock used for the today marker and object keys.
func WithClock(now func() time.Time) RendererOption { return func(r *Renderer) { r.now = now } }

// NewRenderer creates a renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ObjectKey is the storage key for a chart rendered at t.
func ObjectKey(weekStart string, t time.Time) string {
	return fmt.Sprintf("gantt/%s/%d.png", weekStart, t.UnixMilli())
}

// Render lays out rows, rasterizes them, and stores the PNG when storage is configured.
func (r *Renderer) Render(ctx context.Context, rows []models.ScheduleRow, opts Options) (Result, error) {
	now := r.now()
	if opts.Now.IsZero() {
		opts.Now = now
	}

	var qr image.Image
	if r.dashboardURL != "" {
		code, err := qrcode.New(r.dashboardURL, qrcode.Medium)
		if err != nil {
			slog.Warn("Skipping dashboard QR code", "url", r.dashboardURL, "error", err)
		} else {
			qr = code.Image(QRSize)
		}
	}

	sc, err := Layout(rows, opts, qr)
	if err != nil {
		return Result{}, err
	}
	data, err := Rasterize(sc)
	if err != nil {
		return Result{}, err
	}

	res := Result{Image: data, ContentType: ContentType}
	if r.storage == nil {
		res.URL = "data:" + ContentType + ";base64," + base64.StdEncoding.EncodeToString(data)
		return res, nil
	}

	res.Key = ObjectKey(opts.WeekStart, now)
	res.URL, err = r.storage.PutObject(ctx, res.Key, ContentType, data)
	if err != nil {
		return Result{}, fmt.Errorf("store chart: %w", err)
	}
	slog.Info("Timeline stored", "key", res.Key, "url", res.URL, "rows", len(rows))
	return res, nil
}
