package gantt

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/patino82/construction-app/internal/models"
)

// Chart geometry.
const (
	DefaultWidth  = 1600
	MinHeight     = 600
	HeaderHeight  = 120
	LaneHeight    = 60
	LabelGutter   = 200
	SpanDays      = 21
	TickEveryDays = 7
	QRSize        = 96

	barInset = 14
	day      = 24 * time.Hour
)

// Options controls a single render.
type Options struct {
	Title     string
	WeekStart string
	Width     int
	Height    int
	Now       time.Time
}

func (o Options) withDefaults(rowCount int) Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = max(MinHeight, HeaderHeight+LaneHeight*rowCount)
	}
	if o.Title == "" {
		o.Title = "Look-ahead"
	}
	return o
}

// DayWidth is the horizontal pixels per day for a chart width.
func DayWidth(width int) float64 {
	return float64(width-LabelGutter) / SpanDays
}

// OffsetDays is the number of whole days from weekStart to t, rounded down.
func OffsetDays(weekStart, t time.Time) float64 {
	return math.Floor(t.Sub(weekStart).Hours() / 24)
}

// BarSpan returns the bar's x offset within the chart area and its width,
// both in pixels. A bar is at least one day wide.
func BarSpan(weekStart, start, finish time.Time, dayWidth float64) (x, w float64) {
	days := math.Ceil(finish.Sub(start).Hours() / 24)
	return OffsetDays(weekStart, start) * dayWidth, math.Max(1, days) * dayWidth
}

// Layout composes the chart scene. qr, when non-nil, is placed in the header.
func Layout(rows []models.ScheduleRow, opts Options, qr image.Image) (Scene, error) {
	opts = opts.withDefaults(len(rows))
	weekStart, err := time.Parse("2006-01-02", opts.WeekStart)
	if err != nil {
		return Scene{}, fmt.Errorf("week start %q: %w", opts.WeekStart, err)
	}
	dw := DayWidth(opts.Width)
	chartRight := float64(opts.Width)
	chartBottom := float64(opts.Height)

	sc := Scene{Width: opts.Width, Height: opts.Height, Background: colorBackground}
	sc.Rects = append(sc.Rects, Rect{X: 0, Y: 0, W: chartRight, H: HeaderHeight, Fill: colorPanel})
	sc.Texts = append(sc.Texts,
		Text{X: 24, Y: 40, Value: opts.Title, Color: colorText},
		Text{X: 24, Y: 64, Value: "Week of " + opts.WeekStart, Color: colorMuted},
	)

	for d := 0; d <= SpanDays; d += TickEveryDays {
		x := LabelGutter + float64(d)*dw
		sc.Lines = append(sc.Lines, Line{X1: x, Y1: HeaderHeight - 20, X2: x, Y2: chartBottom, Stroke: colorGrid, Width: 1})
		sc.Texts = append(sc.Texts, Text{X: x + 4, Y: HeaderHeight - 6, Value: fmt.Sprintf("+%dd", d), Color: colorMuted})
	}

	for i, row := range rows {
		laneY := float64(HeaderHeight + i*LaneHeight)
		sc.Lines = append(sc.Lines, Line{X1: 0, Y1: laneY, X2: chartRight, Y2: laneY, Stroke: colorGrid, Width: 1})
		sc.Texts = append(sc.Texts, Text{X: 12, Y: laneY + LaneHeight/2 + 4, Value: truncate(row.TaskName, 26), Color: colorText})

		if row.Start == nil || row.Finish == nil {
			sc.Texts = append(sc.Texts, Text{X: LabelGutter + 8, Y: laneY + LaneHeight/2 + 4, Value: "No schedule", Color: colorMuted})
			continue
		}
		x, w := BarSpan(weekStart, *row.Start, *row.Finish, dw)
		sc.Rects = append(sc.Rects, Rect{
			X:     LabelGutter + x,
			Y:     laneY + barInset,
			W:     w,
			H:     LaneHeight - 2*barInset,
			Fill:  TradeColor(row.Trade),
			Label: row.ID,
		})
	}

	if !opts.Now.IsZero() {
		x := LabelGutter + OffsetDays(weekStart, opts.Now)*dw
		sc.Lines = append(sc.Lines, Line{X1: x, Y1: HeaderHeight, X2: x, Y2: chartBottom, Stroke: colorToday, Width: 2, Dash: 6})
	}

	if qr != nil {
		sc.Images = append(sc.Images, Picture{X: opts.Width - QRSize - 12, Y: (HeaderHeight - QRSize) / 2, Size: QRSize, Src: qr})
	}
	return sc, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
